package catalog

import (
	"fmt"
	"reflect"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"
	apperrors "github.com/jrsteele09/go-catalog-server/internal/errors"
)

// CreateProductRequest is the payload accepted when creating a product.
// Image is an optional data URI or base64 payload destined for the image host.
type CreateProductRequest struct {
	Name        string   `json:"name" validate:"required"`
	Description string   `json:"description" validate:"required"`
	Price       *float64 `json:"price" validate:"required,gte=0"`
	Image       string   `json:"image"`
	Category    string   `json:"category" validate:"required"`
}

// normalised trims the text fields so blank values fail the required rule
func (r CreateProductRequest) normalised() CreateProductRequest {
	r.Name = strings.TrimSpace(r.Name)
	r.Description = strings.TrimSpace(r.Description)
	r.Category = strings.TrimSpace(r.Category)
	r.Image = strings.TrimSpace(r.Image)
	return r
}

// ValidationError carries a user facing message per invalid field
type ValidationError struct {
	Errors map[string]string `json:"errors"`
}

func (e *ValidationError) Error() string {
	fields := make([]string, 0, len(e.Errors))
	for field := range e.Errors {
		fields = append(fields, field)
	}
	sort.Strings(fields)

	messages := make([]string, 0, len(fields))
	for _, field := range fields {
		messages = append(messages, e.Errors[field])
	}
	return fmt.Sprintf("validation failed: %s", strings.Join(messages, ", "))
}

func (e *ValidationError) Unwrap() error {
	return apperrors.ErrInvalidProduct
}

type requestValidator struct {
	validate *validator.Validate
}

func newRequestValidator() *requestValidator {
	validate := validator.New(validator.WithRequiredStructEnabled())

	// Use JSON field names for validation error messages
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	return &requestValidator{validate: validate}
}

func (v *requestValidator) Validate(request any) error {
	err := v.validate.Struct(request)
	if err == nil {
		return nil
	}

	validationErrors, ok := err.(validator.ValidationErrors)
	if !ok {
		return apperrors.Wrapf(apperrors.ErrInvalidProduct, "%v", err)
	}

	fields := make(map[string]string, len(validationErrors))
	for _, fe := range validationErrors {
		switch fe.Tag() {
		case "required":
			fields[fe.Field()] = fmt.Sprintf("%s is required", fe.Field())
		case "gte":
			fields[fe.Field()] = fmt.Sprintf("%s must be at least %s", fe.Field(), fe.Param())
		default:
			fields[fe.Field()] = fmt.Sprintf("%s is invalid", fe.Field())
		}
	}
	return &ValidationError{Errors: fields}
}

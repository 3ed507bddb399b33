package errors

import (
	"errors"
	"fmt"
)

// Common error types for the catalog service
var (
	// Catalog errors
	ErrProductNotFound    = errors.New("product not found")
	ErrNoFeaturedProducts = errors.New("no featured products found")
	ErrInvalidProduct     = errors.New("invalid product")

	// Cache errors
	ErrCacheMiss = errors.New("cache miss")

	// Authentication errors
	ErrMissingToken = errors.New("no access token provided")
	ErrTokenExpired = errors.New("access token expired")
	ErrInvalidToken = errors.New("invalid access token")
	ErrForbidden    = errors.New("admin access required")

	// General errors
	ErrNotFound = errors.New("not found")
	ErrInternal = errors.New("internal error")
)

// Wrapf wraps an error with context using fmt.Errorf
func Wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf(format+": %w", append(args, err)...)
}

// Is reports whether any error in err's chain matches target
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As finds the first error in err's chain that matches target
func As(err error, target interface{}) bool {
	return errors.As(err, target)
}

package server

import (
	"encoding/json"
	"net/http"

	"github.com/jrsteele09/go-catalog-server/catalog"
	apperrors "github.com/jrsteele09/go-catalog-server/internal/errors"
	"github.com/jrsteele09/go-catalog-server/products"
	"github.com/rs/zerolog/log"
)

// maxProductBody bounds create requests, which may carry a base64 image
const maxProductBody = 10 << 20

type productsResponse[T any] struct {
	Products []T `json:"products"`
}

type invalidProductResponse struct {
	Message string            `json:"message"`
	Errors  map[string]string `json:"errors"`
}

func (s *Server) AllProductsHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		all, err := s.catalog.ListAll(r.Context())
		if err != nil {
			s.writeCatalogError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, productsResponse[products.Product]{Products: nonNil(all)})
	}
}

func (s *Server) FeaturedProductsHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		featured, err := s.catalog.ListFeatured(r.Context())
		if err != nil {
			s.writeCatalogError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, productsResponse[products.Product]{Products: featured})
	}
}

func (s *Server) ProductsByCategoryHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		matched, err := s.catalog.ListByCategory(r.Context(), r.PathValue("category"))
		if err != nil {
			s.writeCatalogError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, productsResponse[products.Product]{Products: nonNil(matched)})
	}
}

func (s *Server) RecommendationsHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		recommended, err := s.catalog.Recommendations(r.Context())
		if err != nil {
			s.writeCatalogError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, productsResponse[products.RecommendedProduct]{Products: nonNil(recommended)})
	}
}

func (s *Server) CreateProductHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var request catalog.CreateProductRequest
		if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxProductBody)).Decode(&request); err != nil {
			var tooLarge *http.MaxBytesError
			if apperrors.As(err, &tooLarge) {
				writeMessage(w, http.StatusRequestEntityTooLarge, "Request body too large")
				return
			}
			log.Debug().Err(err).Msg("undecodable create product request")
			writeMessage(w, http.StatusBadRequest, "Invalid request body")
			return
		}

		product, err := s.catalog.Create(r.Context(), request)
		if err != nil {
			s.writeCatalogError(w, r, err)
			return
		}
		writeJSON(w, http.StatusCreated, product)
	}
}

func (s *Server) DeleteProductHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := s.catalog.Delete(r.Context(), r.PathValue("id")); err != nil {
			s.writeCatalogError(w, r, err)
			return
		}
		writeMessage(w, http.StatusOK, "Product deleted successfully")
	}
}

func (s *Server) ToggleFeaturedHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		product, err := s.catalog.ToggleFeatured(r.Context(), r.PathValue("id"))
		if err != nil {
			s.writeCatalogError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, product)
	}
}

func (s *Server) writeCatalogError(w http.ResponseWriter, r *http.Request, err error) {
	var validationErr *catalog.ValidationError
	switch {
	case apperrors.As(err, &validationErr):
		writeJSON(w, http.StatusBadRequest, invalidProductResponse{Message: "Invalid product", Errors: validationErr.Errors})
	case apperrors.Is(err, apperrors.ErrInvalidProduct):
		writeJSON(w, http.StatusBadRequest, invalidProductResponse{Message: "Invalid product", Errors: map[string]string{}})
	case apperrors.Is(err, apperrors.ErrProductNotFound):
		writeMessage(w, http.StatusNotFound, "Product not found")
	case apperrors.Is(err, apperrors.ErrNoFeaturedProducts):
		writeMessage(w, http.StatusNotFound, "No featured products found")
	default:
		log.Err(err).Str("method", r.Method).Str("path", r.URL.Path).Msg("error in product handler")
		writeServerError(w, err)
	}
}

func nonNil[T any](items []T) []T {
	if items == nil {
		return []T{}
	}
	return items
}

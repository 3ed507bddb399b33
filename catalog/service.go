// Package catalog implements the product catalog operations on top of the
// product repository, the featured-products cache and the image host.
package catalog

import (
	"context"

	"github.com/jrsteele09/go-catalog-server/images"
	apperrors "github.com/jrsteele09/go-catalog-server/internal/errors"
	"github.com/jrsteele09/go-catalog-server/internal/metrics"
	"github.com/jrsteele09/go-catalog-server/kvcache"
	"github.com/jrsteele09/go-catalog-server/products"
	"github.com/rs/zerolog/log"
)

const recommendationCount = 3

type Service struct {
	repo      products.Repo
	cache     kvcache.Cache
	images    images.Host
	sampler   products.Sampler
	validator *requestValidator
}

type Option func(*Service)

// WithSampler replaces the random selection used by Recommendations
func WithSampler(sampler products.Sampler) Option {
	return func(s *Service) {
		s.sampler = sampler
	}
}

func NewService(repo products.Repo, cache kvcache.Cache, imageHost images.Host, opts ...Option) *Service {
	s := &Service{
		repo:      repo,
		cache:     cache,
		images:    imageHost,
		sampler:   products.RandomSampler(),
		validator: newRequestValidator(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ListAll returns every product
func (s *Service) ListAll(ctx context.Context) ([]products.Product, error) {
	all, err := s.repo.List(ctx)
	if err != nil {
		return nil, apperrors.Wrapf(err, "[catalog ListAll] list products")
	}
	return all, nil
}

// ListByCategory returns the products whose category matches exactly
func (s *Service) ListByCategory(ctx context.Context, category string) ([]products.Product, error) {
	matched, err := s.repo.ListByCategory(ctx, category)
	if err != nil {
		return nil, apperrors.Wrapf(err, "[catalog ListByCategory] category %s", category)
	}
	return matched, nil
}

// Recommendations returns a random sample of products in their reduced form
func (s *Service) Recommendations(ctx context.Context) ([]products.RecommendedProduct, error) {
	all, err := s.repo.List(ctx)
	if err != nil {
		return nil, apperrors.Wrapf(err, "[catalog Recommendations] list products")
	}

	picked := s.sampler(recommendationCount, all)
	recommended := make([]products.RecommendedProduct, 0, len(picked))
	for _, p := range picked {
		recommended = append(recommended, p.Recommended())
	}
	return recommended, nil
}

// Create stores a new product, uploading its image first when one is supplied
func (s *Service) Create(ctx context.Context, request CreateProductRequest) (*products.Product, error) {
	request = request.normalised()
	if err := s.validator.Validate(request); err != nil {
		return nil, err
	}

	imageURL := ""
	if request.Image != "" {
		secureURL, err := s.images.Upload(ctx, request.Image, images.ProductsFolder)
		metrics.RecordImageOperation("upload", err)
		if apperrors.Is(err, images.ErrInvalidImage) {
			return nil, &ValidationError{Errors: map[string]string{"image": err.Error()}}
		}
		if err != nil {
			return nil, apperrors.Wrapf(err, "[catalog Create] upload image")
		}
		imageURL = secureURL
	}

	product := &products.Product{
		Name:        request.Name,
		Description: request.Description,
		Price:       *request.Price,
		Image:       imageURL,
		Category:    request.Category,
	}
	if err := s.repo.Create(ctx, product); err != nil {
		return nil, apperrors.Wrapf(err, "[catalog Create] store product")
	}

	log.Info().Str("product_id", product.ID).Str("category", product.Category).Msg("product created")
	return product, nil
}

// Delete removes a product and its hosted image. Image deletion is best effort.
func (s *Service) Delete(ctx context.Context, id string) error {
	product, err := s.repo.Get(ctx, id)
	if err != nil {
		return err
	}

	if product.Image != "" {
		resourceID := images.ResourceID(images.ProductsFolder, images.PublicID(product.Image))
		err := s.images.Delete(ctx, resourceID)
		metrics.RecordImageOperation("delete", err)
		if err != nil {
			log.Err(err).Str("product_id", id).Str("resource_id", resourceID).Msg("error deleting product image")
		} else {
			log.Debug().Str("resource_id", resourceID).Msg("deleted product image")
		}
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}

	s.RefreshFeaturedCache(ctx)
	log.Info().Str("product_id", id).Msg("product deleted")
	return nil
}

// ToggleFeatured flips the featured flag of a product and returns the updated record
func (s *Service) ToggleFeatured(ctx context.Context, id string) (*products.Product, error) {
	product, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	product.IsFeatured = !product.IsFeatured
	if err := s.repo.Update(ctx, product); err != nil {
		return nil, err
	}

	s.RefreshFeaturedCache(ctx)
	return product, nil
}

package catalog

import (
	"context"
	"encoding/json"

	apperrors "github.com/jrsteele09/go-catalog-server/internal/errors"
	"github.com/jrsteele09/go-catalog-server/internal/metrics"
	"github.com/jrsteele09/go-catalog-server/products"
	"github.com/rs/zerolog/log"
)

// FeaturedProductsKey is the cache key holding the serialized featured set
const FeaturedProductsKey = "featured_products"

// ListFeatured serves the featured set from the cache, falling back to the
// repository and populating the cache on a miss. An empty set is reported as
// errors.ErrNoFeaturedProducts on both paths. Cache failures never fail the call.
func (s *Service) ListFeatured(ctx context.Context) ([]products.Product, error) {
	if featured, ok := s.cachedFeatured(ctx); ok {
		if len(featured) == 0 {
			return nil, apperrors.ErrNoFeaturedProducts
		}
		return featured, nil
	}

	featured, err := s.repo.ListFeatured(ctx)
	if err != nil {
		return nil, apperrors.Wrapf(err, "[catalog ListFeatured] list featured products")
	}
	if len(featured) == 0 {
		return nil, apperrors.ErrNoFeaturedProducts
	}

	s.storeFeatured(ctx, featured)
	return featured, nil
}

// RefreshFeaturedCache recomputes the featured set and overwrites the cache
// entry. Failures are logged and swallowed; the cache may lag the repository.
func (s *Service) RefreshFeaturedCache(ctx context.Context) {
	featured, err := s.repo.ListFeatured(ctx)
	if err != nil {
		metrics.RecordCacheWriteFailure()
		log.Err(err).Msg("error in updating featured products cache")
		return
	}
	s.storeFeatured(ctx, featured)
}

func (s *Service) cachedFeatured(ctx context.Context) ([]products.Product, bool) {
	cached, err := s.cache.Get(ctx, FeaturedProductsKey)
	if err != nil {
		if !apperrors.Is(err, apperrors.ErrCacheMiss) {
			log.Err(err).Msg("featured products cache unavailable, reading from store")
		}
		metrics.RecordCacheLookup(metrics.CacheMiss)
		return nil, false
	}

	var featured []products.Product
	if err := json.Unmarshal(cached, &featured); err != nil {
		metrics.RecordCacheLookup(metrics.CacheCorrupt)
		log.Warn().Err(err).Msg("discarding undecodable featured products cache entry")
		return nil, false
	}

	metrics.RecordCacheLookup(metrics.CacheHit)
	return featured, true
}

func (s *Service) storeFeatured(ctx context.Context, featured []products.Product) {
	if featured == nil {
		featured = []products.Product{}
	}

	payload, err := json.Marshal(featured)
	if err == nil {
		err = s.cache.Set(ctx, FeaturedProductsKey, payload)
	}
	if err != nil {
		metrics.RecordCacheWriteFailure()
		log.Err(err).Msg("error in updating featured products cache")
	}
}

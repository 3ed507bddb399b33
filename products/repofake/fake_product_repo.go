package productrepofake

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"
	apperrors "github.com/jrsteele09/go-catalog-server/internal/errors"
	"github.com/jrsteele09/go-catalog-server/products"
)

var _ products.Repo = (*FakeProductRepo)(nil)

type storedProduct struct {
	product products.Product
	seq     int
}

type FakeProductRepo struct {
	products map[string]*storedProduct
	nextSeq  int
	lock     sync.RWMutex
}

func NewFakeProductRepo() *FakeProductRepo {
	return &FakeProductRepo{
		products: make(map[string]*storedProduct),
	}
}

func (pr *FakeProductRepo) Create(_ context.Context, product *products.Product) error {
	pr.lock.Lock()
	defer pr.lock.Unlock()

	if product.ID == "" {
		product.ID = uuid.New().String()
	}
	product.Stamp()
	pr.nextSeq++
	pr.products[product.ID] = &storedProduct{product: *product, seq: pr.nextSeq}
	return nil
}

func (pr *FakeProductRepo) Get(_ context.Context, id string) (*products.Product, error) {
	pr.lock.RLock()
	defer pr.lock.RUnlock()

	stored, ok := pr.products[id]
	if !ok {
		return nil, apperrors.ErrProductNotFound
	}
	product := stored.product
	return &product, nil
}

func (pr *FakeProductRepo) Update(_ context.Context, product *products.Product) error {
	pr.lock.Lock()
	defer pr.lock.Unlock()

	stored, ok := pr.products[product.ID]
	if !ok {
		return apperrors.ErrProductNotFound
	}
	product.UpdatedAt = products.NowTimeFunc().UTC()
	stored.product = *product
	return nil
}

func (pr *FakeProductRepo) Delete(_ context.Context, id string) error {
	pr.lock.Lock()
	defer pr.lock.Unlock()

	if _, ok := pr.products[id]; !ok {
		return apperrors.ErrProductNotFound
	}
	delete(pr.products, id)
	return nil
}

func (pr *FakeProductRepo) List(_ context.Context) ([]products.Product, error) {
	return pr.filter(func(products.Product) bool { return true }), nil
}

func (pr *FakeProductRepo) ListFeatured(_ context.Context) ([]products.Product, error) {
	return pr.filter(func(p products.Product) bool { return p.IsFeatured }), nil
}

func (pr *FakeProductRepo) ListByCategory(_ context.Context, category string) ([]products.Product, error) {
	return pr.filter(func(p products.Product) bool { return p.Category == category }), nil
}

func (pr *FakeProductRepo) filter(keep func(products.Product) bool) []products.Product {
	pr.lock.RLock()
	defer pr.lock.RUnlock()

	matched := make([]*storedProduct, 0, len(pr.products))
	for _, stored := range pr.products {
		if keep(stored.product) {
			matched = append(matched, stored)
		}
	}

	sort.Slice(matched, func(i, j int) bool {
		if !matched[i].product.CreatedAt.Equal(matched[j].product.CreatedAt) {
			return matched[i].product.CreatedAt.Before(matched[j].product.CreatedAt)
		}
		return matched[i].seq < matched[j].seq
	})

	result := make([]products.Product, 0, len(matched))
	for _, stored := range matched {
		result = append(result, stored.product)
	}
	return result
}

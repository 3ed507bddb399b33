package products

import "context"

// Repo is the document store holding product records.
// Get, Update and Delete return errors.ErrProductNotFound for unknown ids.
// List methods return products ordered by creation time.
type Repo interface {
	Create(ctx context.Context, product *Product) error
	Get(ctx context.Context, id string) (*Product, error)
	Update(ctx context.Context, product *Product) error
	Delete(ctx context.Context, id string) error
	List(ctx context.Context) ([]Product, error)
	ListFeatured(ctx context.Context) ([]Product, error)
	ListByCategory(ctx context.Context, category string) ([]Product, error)
}

package productrepofake_test

import (
	"context"
	"testing"

	apperrors "github.com/jrsteele09/go-catalog-server/internal/errors"
	"github.com/jrsteele09/go-catalog-server/products"
	productrepofake "github.com/jrsteele09/go-catalog-server/products/repofake"
	"github.com/stretchr/testify/require"
)

func TestFakeProductRepo(t *testing.T) {
	ctx := context.Background()
	repo := productrepofake.NewFakeProductRepo()

	jeans := &products.Product{Name: "Jeans", Category: "jeans", Price: 40}
	shoes := &products.Product{Name: "Shoes", Category: "shoes", Price: 90, IsFeatured: true}
	require.NoError(t, repo.Create(ctx, jeans))
	require.NoError(t, repo.Create(ctx, shoes))
	require.NotEmpty(t, jeans.ID)
	require.False(t, jeans.CreatedAt.IsZero())

	all, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)
	require.Equal(t, "Jeans", all[0].Name)

	featured, err := repo.ListFeatured(ctx)
	require.NoError(t, err)
	require.Len(t, featured, 1)
	require.Equal(t, shoes.ID, featured[0].ID)

	byCategory, err := repo.ListByCategory(ctx, "jeans")
	require.NoError(t, err)
	require.Len(t, byCategory, 1)

	got, err := repo.Get(ctx, jeans.ID)
	require.NoError(t, err)
	got.Name = "mutated"
	again, err := repo.Get(ctx, jeans.ID)
	require.NoError(t, err)
	require.Equal(t, "Jeans", again.Name, "Get must return a copy")

	again.IsFeatured = true
	require.NoError(t, repo.Update(ctx, again))
	featured, err = repo.ListFeatured(ctx)
	require.NoError(t, err)
	require.Len(t, featured, 2)

	require.NoError(t, repo.Delete(ctx, jeans.ID))
	_, err = repo.Get(ctx, jeans.ID)
	require.ErrorIs(t, err, apperrors.ErrProductNotFound)
	require.ErrorIs(t, repo.Delete(ctx, jeans.ID), apperrors.ErrProductNotFound)
	require.ErrorIs(t, repo.Update(ctx, &products.Product{ID: "missing"}), apperrors.ErrProductNotFound)
}

// Package pgrepo stores products in PostgreSQL.
package pgrepo

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	apperrors "github.com/jrsteele09/go-catalog-server/internal/errors"
	"github.com/jrsteele09/go-catalog-server/products"
)

// DB is the subset of pgxpool.Pool used by the repository
type DB interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

const schema = `
CREATE TABLE IF NOT EXISTS products (
	id          UUID PRIMARY KEY,
	name        TEXT NOT NULL,
	description TEXT NOT NULL,
	price       DOUBLE PRECISION NOT NULL CHECK (price >= 0),
	image       TEXT NOT NULL DEFAULT '',
	category    TEXT NOT NULL,
	is_featured BOOLEAN NOT NULL DEFAULT FALSE,
	created_at  TIMESTAMPTZ NOT NULL,
	updated_at  TIMESTAMPTZ NOT NULL
);
CREATE INDEX IF NOT EXISTS products_category_idx ON products (category);
CREATE INDEX IF NOT EXISTS products_featured_idx ON products (is_featured) WHERE is_featured;
`

const selectColumns = `SELECT id, name, description, price, image, category, is_featured, created_at, updated_at FROM products`

var _ products.Repo = (*Repo)(nil)

type Repo struct {
	db DB
}

func New(db DB) *Repo {
	return &Repo{db: db}
}

// Connect opens a pgx pool and verifies the connection
func Connect(ctx context.Context, databaseURL string) (*pgxpool.Pool, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, apperrors.Wrapf(err, "pgxpool.New")
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, apperrors.Wrapf(err, "pool.Ping")
	}
	return pool, nil
}

// Migrate creates the products table and its indexes
func (r *Repo) Migrate(ctx context.Context) error {
	if _, err := r.db.Exec(ctx, schema); err != nil {
		return apperrors.Wrapf(err, "[pgrepo Migrate] create schema")
	}
	return nil
}

func (r *Repo) Create(ctx context.Context, product *products.Product) error {
	if product.ID == "" {
		product.ID = uuid.New().String()
	}
	product.Stamp()

	_, err := r.db.Exec(ctx,
		`INSERT INTO products (id, name, description, price, image, category, is_featured, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		product.ID, product.Name, product.Description, product.Price, product.Image,
		product.Category, product.IsFeatured, product.CreatedAt, product.UpdatedAt,
	)
	if err != nil {
		return apperrors.Wrapf(err, "[pgrepo Create] insert product %s", product.ID)
	}
	return nil
}

func (r *Repo) Get(ctx context.Context, id string) (*products.Product, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, apperrors.ErrProductNotFound
	}

	row := r.db.QueryRow(ctx, selectColumns+` WHERE id = $1`, id)
	product, err := scanProduct(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperrors.ErrProductNotFound
	}
	if err != nil {
		return nil, apperrors.Wrapf(err, "[pgrepo Get] product %s", id)
	}
	return product, nil
}

func (r *Repo) Update(ctx context.Context, product *products.Product) error {
	product.UpdatedAt = products.NowTimeFunc().UTC()

	tag, err := r.db.Exec(ctx,
		`UPDATE products
		 SET name = $2, description = $3, price = $4, image = $5, category = $6, is_featured = $7, updated_at = $8
		 WHERE id = $1`,
		product.ID, product.Name, product.Description, product.Price, product.Image,
		product.Category, product.IsFeatured, product.UpdatedAt,
	)
	if err != nil {
		return apperrors.Wrapf(err, "[pgrepo Update] product %s", product.ID)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrProductNotFound
	}
	return nil
}

func (r *Repo) Delete(ctx context.Context, id string) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM products WHERE id = $1`, id)
	if err != nil {
		return apperrors.Wrapf(err, "[pgrepo Delete] product %s", id)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrProductNotFound
	}
	return nil
}

func (r *Repo) List(ctx context.Context) ([]products.Product, error) {
	return r.query(ctx, selectColumns+` ORDER BY created_at, id`)
}

func (r *Repo) ListFeatured(ctx context.Context) ([]products.Product, error) {
	return r.query(ctx, selectColumns+` WHERE is_featured ORDER BY created_at, id`)
}

func (r *Repo) ListByCategory(ctx context.Context, category string) ([]products.Product, error) {
	return r.query(ctx, selectColumns+` WHERE category = $1 ORDER BY created_at, id`, category)
}

func (r *Repo) query(ctx context.Context, sql string, args ...any) ([]products.Product, error) {
	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, apperrors.Wrapf(err, "[pgrepo] query products")
	}
	defer rows.Close()

	result := make([]products.Product, 0)
	for rows.Next() {
		product, err := scanProduct(rows)
		if err != nil {
			return nil, apperrors.Wrapf(err, "[pgrepo] scan product")
		}
		result = append(result, *product)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.Wrapf(err, "[pgrepo] iterate products")
	}
	return result, nil
}

func scanProduct(row pgx.Row) (*products.Product, error) {
	var p products.Product
	err := row.Scan(&p.ID, &p.Name, &p.Description, &p.Price, &p.Image, &p.Category, &p.IsFeatured, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

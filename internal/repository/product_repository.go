package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/kiddeo/kiddeo-core/internal/model"
)

// ProductRepo reads the merchandise catalog.
type ProductRepo struct {
	db *sql.DB
}

// NewProductRepo returns a ProductRepo bound to the provided database.
func NewProductRepo(db *sql.DB) *ProductRepo { return &ProductRepo{db: db} }

// GetByID returns a product or ErrNotFound.
func (r *ProductRepo) GetByID(ctx context.Context, id string) (model.Product, error) {
	var p model.Product
	const q = `SELECT id, name, price, is_active FROM products WHERE id = ?`
	err := r.db.QueryRowContext(ctx, q, id).Scan(&p.ID, &p.Name, &p.Price, &p.IsActive)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Product{}, ErrNotFound
	}
	return p, err
}

package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/kiddeo/kiddeo-core/internal/model"
)

// CityRepo resolves city slugs into internal ids.
type CityRepo struct {
	db *sql.DB
}

// NewCityRepo returns a CityRepo bound to the provided database.
func NewCityRepo(db *sql.DB) *CityRepo { return &CityRepo{db: db} }

// GetBySlug returns the active city with the given slug or ErrNotFound.
func (r *CityRepo) GetBySlug(ctx context.Context, slug string) (model.City, error) {
	var c model.City
	const q = `SELECT id, slug, name FROM cities WHERE slug = ? AND is_active = 1`
	err := r.db.QueryRowContext(ctx, q, strings.ToLower(strings.TrimSpace(slug))).Scan(&c.ID, &c.Slug, &c.Name)
	if errors.Is(err, sql.ErrNoRows) {
		return model.City{}, ErrNotFound
	}
	return c, err
}

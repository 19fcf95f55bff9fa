package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/shopspring/decimal"
)

// ListingRecord is a generic marketplace listing row.
type ListingRecord struct {
	ID          string              // listings.id
	Slug        string              // listings.slug
	Title       string              // listings.title
	Description string              // listings.description
	Price       decimal.NullDecimal // listings.price (nullable)
	Image       string              // first image URL
	Category    string              // categories.name
	Address     string              // listings.address
	CreatedAt   time.Time           // listings.created_at
	UpdatedAt   time.Time           // listings.updated_at
}

// ListingRepo searches the listings table.
type ListingRepo struct {
	db *sql.DB
}

// NewListingRepo returns a ListingRepo bound to the provided database.
func NewListingRepo(db *sql.DB) *ListingRepo { return &ListingRepo{db: db} }

func (r *ListingRepo) where(f SearchFilter) *whereBuilder {
	w := &whereBuilder{}
	w.add("l.is_active = 1")
	if f.CityID != 0 {
		w.add("l.city_id = ?", f.CityID)
	}
	if f.CategoryID != "" {
		w.add("l.category_id = ?", f.CategoryID)
	}
	w.contains(f.Query, "l.title", "l.description")
	return w
}

// Search returns active listings matching the filter, newest first.
func (r *ListingRepo) Search(ctx context.Context, f SearchFilter) ([]ListingRecord, error) {
	w := r.where(f)
	q := `SELECT l.id, l.slug, l.title, COALESCE(l.description, ''), l.price,
			COALESCE(l.image, ''), COALESCE(c.name, ''), COALESCE(l.address, ''),
			l.created_at, l.updated_at
		FROM listings l
		LEFT JOIN categories c ON c.id = l.category_id
		WHERE ` + w.sql() + `
		ORDER BY l.created_at DESC
		LIMIT ? OFFSET ?`
	rows, err := r.db.QueryContext(ctx, q, w.pageArgs(f.Limit, f.Offset)...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]ListingRecord, 0, pageSize(f.Limit))
	for rows.Next() {
		var l ListingRecord
		if err := rows.Scan(&l.ID, &l.Slug, &l.Title, &l.Description, &l.Price,
			&l.Image, &l.Category, &l.Address, &l.CreatedAt, &l.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, l)
	}
	return out, rows.Err()
}

// Count returns the number of listings matching the filter, ignoring paging.
func (r *ListingRepo) Count(ctx context.Context, f SearchFilter) (int64, error) {
	w := r.where(f)
	var n int64
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM listings l WHERE `+w.sql(), w.args...).Scan(&n)
	return n, err
}

package repository

import (
	"context"
	"database/sql"
	"time"
)

// CollectionRecord is a curated collection row.
type CollectionRecord struct {
	ID          string
	Slug        string
	Title       string
	Description string
	CoverImage  string
	CitySlug    string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// CollectionRepo searches active collections.
type CollectionRepo struct {
	db *sql.DB
}

// NewCollectionRepo returns a CollectionRepo bound to the provided database.
func NewCollectionRepo(db *sql.DB) *CollectionRepo { return &CollectionRepo{db: db} }

func (r *CollectionRepo) where(f SearchFilter) *whereBuilder {
	w := &whereBuilder{}
	w.add("k.is_active = 1")
	if f.CityID != 0 {
		w.add("k.city_id = ?", f.CityID)
	}
	w.contains(f.Query, "k.title", "k.description")
	return w
}

// Search returns active collections matching the filter.
func (r *CollectionRepo) Search(ctx context.Context, f SearchFilter) ([]CollectionRecord, error) {
	w := r.where(f)
	q := `SELECT k.id, k.slug, k.title, COALESCE(k.description, ''), COALESCE(k.cover_image, ''),
			COALESCE(ci.slug, ''), k.created_at, k.updated_at
		FROM collections k
		LEFT JOIN cities ci ON ci.id = k.city_id
		WHERE ` + w.sql() + `
		ORDER BY k.sort_order ASC, k.created_at DESC
		LIMIT ? OFFSET ?`
	rows, err := r.db.QueryContext(ctx, q, w.pageArgs(f.Limit, f.Offset)...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]CollectionRecord, 0, pageSize(f.Limit))
	for rows.Next() {
		var k CollectionRecord
		if err := rows.Scan(&k.ID, &k.Slug, &k.Title, &k.Description, &k.CoverImage,
			&k.CitySlug, &k.CreatedAt, &k.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, k)
	}
	return out, rows.Err()
}

// Count returns the number of collections matching the filter.
func (r *CollectionRepo) Count(ctx context.Context, f SearchFilter) (int64, error) {
	w := r.where(f)
	var n int64
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM collections k WHERE `+w.sql(), w.args...).Scan(&n)
	return n, err
}

package repository

import (
	"context"
	"database/sql"
	"time"
)

// ContentRecord is a CMS content row (blog post, article, guide).
type ContentRecord struct {
	ID         string
	Slug       string
	Title      string
	Excerpt    string
	CoverImage string
	Category   string
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// ContentRepo searches published CMS content.  Content is not city scoped.
type ContentRepo struct {
	db *sql.DB
}

// NewContentRepo returns a ContentRepo bound to the provided database.
func NewContentRepo(db *sql.DB) *ContentRepo { return &ContentRepo{db: db} }

func (r *ContentRepo) where(f SearchFilter) *whereBuilder {
	w := &whereBuilder{}
	w.add("p.status <> 'draft'")
	w.contains(f.Query, "p.title", "p.excerpt", "p.body", "p.seo_title", "p.seo_description")
	return w
}

// Search returns non-draft content matching the filter, newest first.
func (r *ContentRepo) Search(ctx context.Context, f SearchFilter) ([]ContentRecord, error) {
	w := r.where(f)
	q := `SELECT p.id, p.slug, p.title, COALESCE(p.excerpt, ''), COALESCE(p.cover_image, ''),
			COALESCE(p.category, ''), p.created_at, p.updated_at
		FROM content p
		WHERE ` + w.sql() + `
		ORDER BY p.created_at DESC
		LIMIT ? OFFSET ?`
	rows, err := r.db.QueryContext(ctx, q, w.pageArgs(f.Limit, f.Offset)...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]ContentRecord, 0, pageSize(f.Limit))
	for rows.Next() {
		var c ContentRecord
		if err := rows.Scan(&c.ID, &c.Slug, &c.Title, &c.Excerpt, &c.CoverImage,
			&c.Category, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// Count returns the number of content rows matching the filter.
func (r *ContentRepo) Count(ctx context.Context, f SearchFilter) (int64, error) {
	w := r.where(f)
	var n int64
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM content p WHERE `+w.sql(), w.args...).Scan(&n)
	return n, err
}

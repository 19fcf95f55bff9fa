package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/shopspring/decimal"
)

// VenuePartnerRecord is a venue partner ("place") row.
type VenuePartnerRecord struct {
	ID          string
	Slug        string
	Name        string
	Description string
	Address     string
	Metro       string
	District    string
	CoverImage  string
	Category    string
	CitySlug    string
	PriceFrom   decimal.NullDecimal
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// VenuePartnerRepo searches and lists venue partners.
type VenuePartnerRepo struct {
	db *sql.DB
}

// NewVenuePartnerRepo returns a VenuePartnerRepo bound to the provided database.
func NewVenuePartnerRepo(db *sql.DB) *VenuePartnerRepo { return &VenuePartnerRepo{db: db} }

const venueColumns = `v.id, v.slug, v.name, COALESCE(v.description, ''), COALESCE(v.address, ''),
			COALESCE(v.metro, ''), COALESCE(v.district, ''), COALESCE(v.cover_image, ''),
			COALESCE(c.name, ''), COALESCE(ci.slug, ''), v.price_from, v.created_at, v.updated_at`

const venueJoins = `FROM venue_partners v
		LEFT JOIN categories c ON c.id = v.category_id
		LEFT JOIN cities ci    ON ci.id = v.city_id`

func (r *VenuePartnerRepo) where(f SearchFilter) *whereBuilder {
	w := &whereBuilder{}
	w.add("v.status = 'active'")
	if f.CityID != 0 {
		w.add("v.city_id = ?", f.CityID)
	}
	if f.CategoryID != "" {
		w.add("v.category_id = ?", f.CategoryID)
	}
	w.contains(f.Query, "v.name", "v.description", "v.address", "v.metro", "v.district")
	return w
}

// Search returns active partners matching the filter, newest first.
func (r *VenuePartnerRepo) Search(ctx context.Context, f SearchFilter) ([]VenuePartnerRecord, error) {
	w := r.where(f)
	q := `SELECT ` + venueColumns + `
		` + venueJoins + `
		WHERE ` + w.sql() + `
		ORDER BY v.created_at DESC
		LIMIT ? OFFSET ?`
	return r.query(ctx, q, w.pageArgs(f.Limit, f.Offset), f.Limit)
}

// Count returns the number of partners matching the filter, ignoring paging.
func (r *VenuePartnerRepo) Count(ctx context.Context, f SearchFilter) (int64, error) {
	w := r.where(f)
	var n int64
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM venue_partners v WHERE `+w.sql(), w.args...).Scan(&n)
	return n, err
}

// ListActiveByCity is the browse listing used when no query is given: every
// active partner in the city, newest first.
func (r *VenuePartnerRepo) ListActiveByCity(ctx context.Context, cityID uint64, limit, offset int) ([]VenuePartnerRecord, error) {
	return r.Search(ctx, SearchFilter{CityID: cityID, Limit: limit, Offset: offset})
}

// CountActiveByCity counts every active partner in the city.
func (r *VenuePartnerRepo) CountActiveByCity(ctx context.Context, cityID uint64) (int64, error) {
	return r.Count(ctx, SearchFilter{CityID: cityID})
}

func (r *VenuePartnerRepo) query(ctx context.Context, q string, args []any, capHint int) ([]VenuePartnerRecord, error) {
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]VenuePartnerRecord, 0, pageSize(capHint))
	for rows.Next() {
		var v VenuePartnerRecord
		if err := rows.Scan(&v.ID, &v.Slug, &v.Name, &v.Description, &v.Address,
			&v.Metro, &v.District, &v.CoverImage, &v.Category, &v.CitySlug,
			&v.PriceFrom, &v.CreatedAt, &v.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, rows.Err()
}

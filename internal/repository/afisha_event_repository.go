package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/shopspring/decimal"

	"github.com/kiddeo/kiddeo-core/internal/pricing"
)

// AfishaEventRecord is an afisha event row together with the price tiers of
// its ticket types.  Tiers is filled by Search in one batched query.
type AfishaEventRecord struct {
	ID          string
	Slug        string
	Title       string
	Description string
	Venue       string
	CoverImage  string
	Category    string
	CitySlug    string
	StartDate   sql.NullTime
	CreatedAt   time.Time
	UpdatedAt   time.Time
	Tiers       []pricing.PricedTier
}

// AfishaEventRepo searches afisha events.
type AfishaEventRepo struct {
	db *sql.DB
}

// NewAfishaEventRepo returns an AfishaEventRepo bound to the provided database.
func NewAfishaEventRepo(db *sql.DB) *AfishaEventRepo { return &AfishaEventRepo{db: db} }

func (r *AfishaEventRepo) where(f SearchFilter) *whereBuilder {
	w := &whereBuilder{}
	w.add("e.status = 'active'")
	if f.CityID != 0 {
		w.add("e.city_id = ?", f.CityID)
	}
	if f.CategoryID != "" {
		w.add("e.category_id = ?", f.CategoryID)
	}
	w.contains(f.Query, "e.title", "e.description", "e.venue", "e.organizer", "e.search_text")
	return w
}

// Search returns active events matching the filter ordered by start date.
func (r *AfishaEventRepo) Search(ctx context.Context, f SearchFilter) ([]AfishaEventRecord, error) {
	w := r.where(f)
	q := `SELECT e.id, e.slug, e.title, COALESCE(e.description, ''), COALESCE(e.venue, ''),
			COALESCE(e.cover_image, ''), COALESCE(c.name, ''), COALESCE(ci.slug, ''),
			e.start_date, e.created_at, e.updated_at
		FROM afisha_events e
		LEFT JOIN categories c ON c.id = e.category_id
		LEFT JOIN cities ci    ON ci.id = e.city_id
		WHERE ` + w.sql() + `
		ORDER BY e.start_date ASC, e.created_at DESC
		LIMIT ? OFFSET ?`
	rows, err := r.db.QueryContext(ctx, q, w.pageArgs(f.Limit, f.Offset)...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]AfishaEventRecord, 0, pageSize(f.Limit))
	for rows.Next() {
		var e AfishaEventRecord
		if err := rows.Scan(&e.ID, &e.Slug, &e.Title, &e.Description, &e.Venue,
			&e.CoverImage, &e.Category, &e.CitySlug, &e.StartDate, &e.CreatedAt, &e.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return out, nil
	}

	ids := make([]string, 0, len(out))
	for _, e := range out {
		ids = append(ids, e.ID)
	}
	tiers, err := r.tiersByEventIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	for i := range out {
		out[i].Tiers = tiers[out[i].ID]
	}
	return out, nil
}

// tiersByEventIDs loads ticket type prices for the given events, keyed by
// event id.
func (r *AfishaEventRepo) tiersByEventIDs(ctx context.Context, ids []string) (map[string][]pricing.PricedTier, error) {
	args := make([]any, 0, len(ids))
	for _, id := range ids {
		args = append(args, id)
	}
	q := `SELECT event_id, price, is_active FROM afisha_ticket_types WHERE event_id IN (` + placeholders(len(ids)) + `)`
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make(map[string][]pricing.PricedTier, len(ids))
	for rows.Next() {
		var (
			eventID string
			price   decimal.Decimal
			active  bool
		)
		if err := rows.Scan(&eventID, &price, &active); err != nil {
			return nil, err
		}
		out[eventID] = append(out[eventID], pricing.PricedTier{Price: price, IsActive: active})
	}
	return out, rows.Err()
}

// Count returns the number of events matching the filter, ignoring paging.
func (r *AfishaEventRepo) Count(ctx context.Context, f SearchFilter) (int64, error) {
	w := r.where(f)
	var n int64
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM afisha_events e WHERE `+w.sql(), w.args...).Scan(&n)
	return n, err
}

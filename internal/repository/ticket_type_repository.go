package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/kiddeo/kiddeo-core/internal/model"
)

// TicketTypeRepo reads the per-event ticket catalog.
type TicketTypeRepo struct {
	db *sql.DB
}

// NewTicketTypeRepo returns a TicketTypeRepo bound to the provided database.
func NewTicketTypeRepo(db *sql.DB) *TicketTypeRepo { return &TicketTypeRepo{db: db} }

const ticketTypeColumns = `id, event_id, name, price, is_active, COALESCE(max_per_order, 0)`

// ListByEvent returns every ticket type of an event in display order,
// including inactive ones.
func (r *TicketTypeRepo) ListByEvent(ctx context.Context, eventID string) ([]model.TicketType, error) {
	q := `SELECT ` + ticketTypeColumns + ` FROM afisha_ticket_types WHERE event_id = ? ORDER BY sort_order ASC, price ASC`
	rows, err := r.db.QueryContext(ctx, q, eventID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.TicketType
	for rows.Next() {
		var t model.TicketType
		if err := rows.Scan(&t.ID, &t.EventID, &t.Name, &t.Price, &t.IsActive, &t.MaxPerOrder); err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

// GetByID returns one ticket type of an event.  A ticket type belonging to a
// different event is reported as ErrNotFound.
func (r *TicketTypeRepo) GetByID(ctx context.Context, eventID, ticketID string) (model.TicketType, error) {
	var t model.TicketType
	q := `SELECT ` + ticketTypeColumns + ` FROM afisha_ticket_types WHERE id = ? AND event_id = ?`
	err := r.db.QueryRowContext(ctx, q, ticketID, eventID).Scan(&t.ID, &t.EventID, &t.Name, &t.Price, &t.IsActive, &t.MaxPerOrder)
	if errors.Is(err, sql.ErrNoRows) {
		return model.TicketType{}, ErrNotFound
	}
	return t, err
}

package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/kiddeo/kiddeo-core/internal/cart"
)

// TicketLister returns the ticket catalog of an event.
type TicketLister interface {
	TicketOptions(ctx context.Context, eventID string) (cart.EventTickets, error)
}

// CatalogHandler serves the ticket calculator data.
type CatalogHandler struct {
	Tickets TicketLister
	Log     *slog.Logger
}

// TicketOption is one tier as shown in the ticket calculator.
type TicketOption struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Price       string `json:"price"`
	IsActive    bool   `json:"isActive"`
	MaxPerOrder *int   `json:"maxPerOrder"`
}

// EventTickets handles GET /api/events/:id/tickets.
func (h *CatalogHandler) EventTickets(c echo.Context) error {
	opts, err := h.Tickets.TicketOptions(c.Request().Context(), c.Param("id"))
	if err != nil {
		h.Log.Error("ticket catalog failed", "event_id", c.Param("id"), "err", err)
		return c.JSON(http.StatusInternalServerError, internalError)
	}

	out := make([]TicketOption, 0, len(opts.Tickets))
	for _, t := range opts.Tickets {
		o := TicketOption{ID: t.ID, Name: t.Name, Price: t.Price.StringFixed(2), IsActive: t.IsActive}
		if t.MaxPerOrder > 0 {
			limit := t.MaxPerOrder
			o.MaxPerOrder = &limit
		}
		out = append(out, o)
	}
	return c.JSON(http.StatusOK, echo.Map{
		"eventId":  opts.EventID,
		"minPrice": opts.MinPrice,
		"tickets":  out,
	})
}

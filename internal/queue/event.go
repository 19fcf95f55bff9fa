// Package queue carries finalized checkouts over RabbitMQ: the event payload
// and its schema, the publisher used by the cart, and the background consumer.
package queue

import (
	"time"

	"github.com/kiddeo/kiddeo-core/internal/cart"
)

const checkoutQueueName = "checkout.finalized"

// CheckoutLine is one line of a finalized order.  Ticket lines carry event
// and ticket ids, merchandise lines a product id.
type CheckoutLine struct {
	EventID   string `json:"event_id,omitempty"`
	TicketID  string `json:"ticket_id,omitempty"`
	ProductID string `json:"product_id,omitempty"`
	Quantity  int    `json:"quantity"`
	UnitPrice string `json:"unit_price"`
}

// CheckoutFinalizedEvent is published once per checkout.  It contains enough
// for the payment flow and analytics to proceed without reading the cart.
// Money is encoded as decimal strings.
type CheckoutFinalizedEvent struct {
	OrderID       string         `json:"order_id"`
	OwnerID       string         `json:"owner_id"`
	Quick         bool           `json:"quick"`
	PaymentMethod string         `json:"payment_method,omitempty"`
	Lines         []CheckoutLine `json:"lines"`
	Total         string         `json:"total"`
	FinalizedAt   string         `json:"finalized_at"`
}

// NewCheckoutFinalizedEvent converts an order into its wire form.
func NewCheckoutFinalizedEvent(o cart.Order) CheckoutFinalizedEvent {
	lines := make([]CheckoutLine, 0, len(o.Lines))
	for _, l := range o.Lines {
		lines = append(lines, CheckoutLine{
			EventID:   l.EventID,
			TicketID:  l.TicketID,
			ProductID: l.ProductID,
			Quantity:  l.Quantity,
			UnitPrice: l.UnitPrice.StringFixed(2),
		})
	}
	return CheckoutFinalizedEvent{
		OrderID:       o.ID,
		OwnerID:       o.OwnerID,
		Quick:         o.Quick,
		PaymentMethod: string(o.PaymentMethod),
		Lines:         lines,
		Total:         o.Total.StringFixed(2),
		FinalizedAt:   o.CreatedAt.UTC().Format(time.RFC3339),
	}
}

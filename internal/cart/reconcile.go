// Package cart keeps per-owner shopping carts: one aggregated line item per
// event for tickets, one per product for merchandise, and the checkout step
// that turns them into an order.
package cart

import (
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/kiddeo/kiddeo-core/internal/model"
)

// TierInput carries the catalog data of the tier being changed.  Name and
// Price always come from the catalog, never from the client.
type TierInput struct {
	TicketID string
	Name     string
	Price    decimal.Decimal
}

// ClampQuantity coerces a quantity to a non-negative integer.
func ClampQuantity(n int) int {
	if n < 0 {
		return 0
	}
	return n
}

// ParseQuantity reads a raw quantity.  Non-numeric and negative input
// becomes 0.
func ParseQuantity(raw string) int {
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return 0
	}
	return ClampQuantity(n)
}

// ApplyTierQuantity sets tier to an absolute quantity inside the ticket line
// item of eventID and returns the resulting item.  current may be nil.  The
// returned item is a fresh value; current is not modified.  A nil result
// means no tier has a positive quantity left and the line item must go.
func ApplyTierQuantity(current *model.CartLineItem, eventID string, tier TierInput, quantity int) *model.CartLineItem {
	quantity = ClampQuantity(quantity)

	var existing []model.TicketTier
	addedAt := time.Now().UTC()
	if current != nil {
		existing = current.Tickets()
		addedAt = current.AddedAt
	}

	tiers := make([]model.TicketTier, 0, len(existing)+1)
	found := false
	for _, t := range existing {
		if t.TicketID == tier.TicketID {
			found = true
			t.Quantity = quantity
			t.Name = tier.Name
			t.Price = tier.Price
		}
		if t.Quantity > 0 {
			tiers = append(tiers, t)
		}
	}
	if !found && quantity > 0 {
		tiers = append(tiers, model.TicketTier{
			TicketID: tier.TicketID,
			Quantity: quantity,
			Name:     tier.Name,
			Price:    tier.Price,
		})
	}
	if len(tiers) == 0 {
		return nil
	}

	price := decimal.Zero
	for _, t := range tiers {
		price = price.Add(t.Subtotal())
	}
	return &model.CartLineItem{
		ID:       eventID,
		Kind:     model.KindTicket,
		EventID:  eventID,
		Price:    price,
		Quantity: 1,
		Metadata: model.TicketMetadata{Tickets: tiers},
		AddedAt:  addedAt,
	}
}

// tierQuantity returns the quantity currently held for ticketID.
func tierQuantity(item *model.CartLineItem, ticketID string) int {
	if item == nil {
		return 0
	}
	for _, t := range item.Tickets() {
		if t.TicketID == ticketID {
			return t.Quantity
		}
	}
	return 0
}

// merchandiseItemID keeps product line ids apart from event ids.
func merchandiseItemID(productID string) string {
	return "product-" + productID
}

func merchandiseItem(p model.Product, quantity int, addedAt time.Time) model.CartLineItem {
	return model.CartLineItem{
		ID:       merchandiseItemID(p.ID),
		Kind:     model.KindMerchandise,
		Price:    p.Price.Mul(decimal.NewFromInt(int64(quantity))),
		Quantity: quantity,
		Metadata: model.MerchandiseMetadata{ProductID: p.ID, Name: p.Name, UnitPrice: p.Price},
		AddedAt:  addedAt,
	}
}

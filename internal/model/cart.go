package model

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// LineItemKind tags a CartLineItem and selects its metadata variant.
type LineItemKind string

const (
	KindTicket      LineItemKind = "ticket"
	KindMerchandise LineItemKind = "merchandise"
)

// TicketTier is one selected ticket type within an event line item.  Price
// is the unit price of the tier.
type TicketTier struct {
	TicketID string          `json:"ticketId"`
	Quantity int             `json:"quantity"`
	Name     string          `json:"name"`
	Price    decimal.Decimal `json:"price"`
}

// Subtotal returns Price × Quantity.
func (t TicketTier) Subtotal() decimal.Decimal {
	return t.Price.Mul(decimal.NewFromInt(int64(t.Quantity)))
}

// LineItemMetadata is the closed set of per-kind payloads.  Only
// TicketMetadata and MerchandiseMetadata implement it.
type LineItemMetadata interface {
	kind() LineItemKind
}

// TicketMetadata holds the per-tier breakdown of a ticket line item.  It
// contains at most one entry per TicketID and never a zero-quantity tier.
type TicketMetadata struct {
	Tickets []TicketTier `json:"tickets"`
}

func (TicketMetadata) kind() LineItemKind { return KindTicket }

// MerchandiseMetadata describes a merchandise line item.
type MerchandiseMetadata struct {
	ProductID string          `json:"productId"`
	Name      string          `json:"name"`
	UnitPrice decimal.Decimal `json:"unitPrice"`
}

func (MerchandiseMetadata) kind() LineItemKind { return KindMerchandise }

// CartLineItem is one aggregated cart entry.
//
// For ticket items ID equals EventID, Quantity is always 1 and Price is the
// sum of tier subtotals.  For merchandise items Quantity is the unit count
// and Price is UnitPrice × Quantity.
type CartLineItem struct {
	ID       string           `json:"id"`
	Kind     LineItemKind     `json:"type"`
	EventID  string           `json:"eventId,omitempty"`
	Price    decimal.Decimal  `json:"price"`
	Quantity int              `json:"quantity"`
	Metadata LineItemMetadata `json:"metadata"`
	AddedAt  time.Time        `json:"addedAt"`
}

// Tickets returns the tier list of a ticket line item, or nil for other kinds.
func (li CartLineItem) Tickets() []TicketTier {
	if md, ok := li.Metadata.(TicketMetadata); ok {
		return md.Tickets
	}
	return nil
}

// Merchandise returns the merchandise payload and whether the item is one.
func (li CartLineItem) Merchandise() (MerchandiseMetadata, bool) {
	md, ok := li.Metadata.(MerchandiseMetadata)
	return md, ok
}

type cartLineItemJSON struct {
	ID       string          `json:"id"`
	Kind     LineItemKind    `json:"type"`
	EventID  string          `json:"eventId,omitempty"`
	Price    decimal.Decimal `json:"price"`
	Quantity int             `json:"quantity"`
	Metadata json.RawMessage `json:"metadata"`
	AddedAt  time.Time       `json:"addedAt"`
}

// MarshalJSON rejects items whose metadata variant disagrees with Kind.
func (li CartLineItem) MarshalJSON() ([]byte, error) {
	if li.Metadata == nil || li.Metadata.kind() != li.Kind {
		return nil, fmt.Errorf("cart line item %q: metadata does not match type %q", li.ID, li.Kind)
	}
	md, err := json.Marshal(li.Metadata)
	if err != nil {
		return nil, err
	}
	return json.Marshal(cartLineItemJSON{
		ID:       li.ID,
		Kind:     li.Kind,
		EventID:  li.EventID,
		Price:    li.Price,
		Quantity: li.Quantity,
		Metadata: md,
		AddedAt:  li.AddedAt,
	})
}

// UnmarshalJSON decodes metadata according to the "type" tag.
func (li *CartLineItem) UnmarshalJSON(b []byte) error {
	var raw cartLineItemJSON
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	var md LineItemMetadata
	switch raw.Kind {
	case KindTicket:
		var t TicketMetadata
		if err := json.Unmarshal(raw.Metadata, &t); err != nil {
			return fmt.Errorf("ticket metadata: %w", err)
		}
		md = t
	case KindMerchandise:
		var m MerchandiseMetadata
		if err := json.Unmarshal(raw.Metadata, &m); err != nil {
			return fmt.Errorf("merchandise metadata: %w", err)
		}
		md = m
	default:
		return fmt.Errorf("unknown cart line item type %q", raw.Kind)
	}
	*li = CartLineItem{
		ID:       raw.ID,
		Kind:     raw.Kind,
		EventID:  raw.EventID,
		Price:    raw.Price,
		Quantity: raw.Quantity,
		Metadata: md,
		AddedAt:  raw.AddedAt,
	}
	return nil
}

// Cart is a snapshot of all line items owned by one cart owner.
type Cart struct {
	OwnerID string          `json:"ownerId"`
	Items   []CartLineItem  `json:"items"`
	Total   decimal.Decimal `json:"total"`
}

// NewCart builds a snapshot and computes its total.
func NewCart(ownerID string, items []CartLineItem) Cart {
	total := decimal.Zero
	for _, it := range items {
		total = total.Add(it.Price)
	}
	if items == nil {
		items = []CartLineItem{}
	}
	return Cart{OwnerID: ownerID, Items: items, Total: total}
}

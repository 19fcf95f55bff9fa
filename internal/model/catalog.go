package model

import "github.com/shopspring/decimal"

// TicketType is one purchasable tier of an afisha event.
//
// Fields:
//
//	MaxPerOrder – optional upper bound on the quantity one cart may hold;
//	              zero means unlimited.
type TicketType struct {
	ID          string          // afisha_ticket_types.id
	EventID     string          // afisha_ticket_types.event_id
	Name        string          // afisha_ticket_types.name
	Price       decimal.Decimal // afisha_ticket_types.price
	IsActive    bool            // afisha_ticket_types.is_active
	MaxPerOrder int             // afisha_ticket_types.max_per_order
}

// Product is a merchandise catalog entry that can be put in a cart.
type Product struct {
	ID       string          // products.id
	Name     string          // products.name
	Price    decimal.Decimal // products.price
	IsActive bool            // products.is_active
}

// City is a resolved city scope for search.
type City struct {
	ID   uint64 // cities.id
	Slug string // cities.slug
	Name string // cities.name
}

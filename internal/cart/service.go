package cart

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/shopspring/decimal"

	"github.com/kiddeo/kiddeo-core/internal/model"
	"github.com/kiddeo/kiddeo-core/internal/pricing"
	"github.com/kiddeo/kiddeo-core/internal/repository"
)

var (
	ErrTicketTypeNotFound = errors.New("ticket type not found")
	ErrTicketTypeInactive = errors.New("ticket type is not on sale")
	ErrProductNotFound    = errors.New("product not found")
	ErrProductInactive    = errors.New("product is not on sale")
)

// TicketCatalog is the read side of afisha ticket types.
type TicketCatalog interface {
	ListByEvent(ctx context.Context, eventID string) ([]model.TicketType, error)
	GetByID(ctx context.Context, eventID, ticketID string) (model.TicketType, error)
}

// ProductCatalog is the read side of merchandise.
type ProductCatalog interface {
	GetByID(ctx context.Context, id string) (model.Product, error)
}

// Service applies cart mutations.  Mutations touching the same line item are
// serialized and end in exactly one Upsert or Remove, so concurrent readers
// see either the old or the new complete item.
type Service struct {
	store     Store
	tickets   TicketCatalog
	products  ProductCatalog
	publisher OrderPublisher
	locks     *keyedMutex
	log       *slog.Logger
	now       func() time.Time
}

func NewService(store Store, tickets TicketCatalog, products ProductCatalog, publisher OrderPublisher, log *slog.Logger) *Service {
	if log == nil {
		log = slog.Default()
	}
	return &Service{
		store:     store,
		tickets:   tickets,
		products:  products,
		publisher: publisher,
		locks:     newKeyedMutex(),
		log:       log.With("component", "cart"),
		now:       func() time.Time { return time.Now().UTC() },
	}
}

func lockKey(ownerID, itemID string) string {
	return ownerID + "/" + itemID
}

// EventTickets is the ticket catalog of one event with its lowest active price.
type EventTickets struct {
	EventID  string
	Tickets  []model.TicketType
	MinPrice *float64
}

// TicketOptions lists the tiers of an event for the ticket calculator.
func (s *Service) TicketOptions(ctx context.Context, eventID string) (EventTickets, error) {
	tts, err := s.tickets.ListByEvent(ctx, eventID)
	if err != nil {
		return EventTickets{}, fmt.Errorf("list ticket types: %w", err)
	}
	tiers := make([]pricing.PricedTier, 0, len(tts))
	for _, t := range tts {
		tiers = append(tiers, pricing.PricedTier{Price: t.Price, IsActive: t.IsActive})
	}
	if tts == nil {
		tts = []model.TicketType{}
	}
	return EventTickets{EventID: eventID, Tickets: tts, MinPrice: pricing.Normalize(pricing.MinActivePrice(tiers))}, nil
}

func (s *Service) ticketType(ctx context.Context, eventID, ticketID string) (model.TicketType, error) {
	tt, err := s.tickets.GetByID(ctx, eventID, ticketID)
	if errors.Is(err, repository.ErrNotFound) {
		return model.TicketType{}, ErrTicketTypeNotFound
	}
	if err != nil {
		return model.TicketType{}, fmt.Errorf("load ticket type: %w", err)
	}
	return tt, nil
}

func (s *Service) current(ctx context.Context, ownerID, itemID string) (*model.CartLineItem, error) {
	it, err := s.store.Get(ctx, ownerID, itemID)
	if errors.Is(err, ErrLineItemNotFound) {
		return nil, nil
	}
	return it, err
}

// updateTier moves one tier to next(current quantity).  Raising a tier above
// its MaxPerOrder leaves the cart unchanged; lowering is always allowed.
func (s *Service) updateTier(ctx context.Context, ownerID, eventID, ticketID string, next func(int) int) (*model.CartLineItem, error) {
	tt, err := s.ticketType(ctx, eventID, ticketID)
	if err != nil {
		return nil, err
	}

	unlock := s.locks.Lock(lockKey(ownerID, eventID))
	defer unlock()

	cur, err := s.current(ctx, ownerID, eventID)
	if err != nil {
		return nil, err
	}
	have := tierQuantity(cur, ticketID)
	want := ClampQuantity(next(have))

	if want == have {
		return cur, nil
	}
	if want > have {
		if !tt.IsActive {
			return nil, ErrTicketTypeInactive
		}
		if tt.MaxPerOrder > 0 && want > tt.MaxPerOrder {
			s.log.Debug("tier max reached", "event_id", eventID, "ticket_id", ticketID, "max", tt.MaxPerOrder)
			return cur, nil
		}
	}

	updated := ApplyTierQuantity(cur, eventID, TierInput{TicketID: tt.ID, Name: tt.Name, Price: tt.Price}, want)
	if updated == nil {
		if err := s.store.Remove(ctx, ownerID, eventID); err != nil {
			return nil, err
		}
		return nil, nil
	}
	if cur == nil {
		updated.AddedAt = s.now()
	}
	if err := s.store.Upsert(ctx, ownerID, *updated); err != nil {
		return nil, err
	}
	return updated, nil
}

// SetTierQuantity sets the absolute quantity of one tier.  The returned item
// is nil when the event no longer has any tickets in the cart.
func (s *Service) SetTierQuantity(ctx context.Context, ownerID, eventID, ticketID string, quantity int) (*model.CartLineItem, error) {
	quantity = ClampQuantity(quantity)
	return s.updateTier(ctx, ownerID, eventID, ticketID, func(int) int { return quantity })
}

func (s *Service) IncrementTier(ctx context.Context, ownerID, eventID, ticketID string) (*model.CartLineItem, error) {
	return s.updateTier(ctx, ownerID, eventID, ticketID, func(q int) int { return q + 1 })
}

func (s *Service) DecrementTier(ctx context.Context, ownerID, eventID, ticketID string) (*model.CartLineItem, error) {
	return s.updateTier(ctx, ownerID, eventID, ticketID, func(q int) int { return q - 1 })
}

// GetLineItem returns the ticket line item of an event, or nil.
func (s *Service) GetLineItem(ctx context.Context, ownerID, eventID string) (*model.CartLineItem, error) {
	it, err := s.current(ctx, ownerID, eventID)
	if err != nil || it == nil {
		return nil, err
	}
	if it.Kind != model.KindTicket {
		return nil, nil
	}
	return it, nil
}

// RemoveEvent drops every ticket of an event.
func (s *Service) RemoveEvent(ctx context.Context, ownerID, eventID string) error {
	return s.RemoveItem(ctx, ownerID, eventID)
}

// RemoveItem drops a line item by id.  Missing items are not an error.
func (s *Service) RemoveItem(ctx context.Context, ownerID, itemID string) error {
	unlock := s.locks.Lock(lockKey(ownerID, itemID))
	defer unlock()
	return s.store.Remove(ctx, ownerID, itemID)
}

func (s *Service) product(ctx context.Context, productID string) (model.Product, error) {
	p, err := s.products.GetByID(ctx, productID)
	if errors.Is(err, repository.ErrNotFound) {
		return model.Product{}, ErrProductNotFound
	}
	if err != nil {
		return model.Product{}, fmt.Errorf("load product: %w", err)
	}
	return p, nil
}

func (s *Service) updateMerchandise(ctx context.Context, ownerID, productID string, next func(int) int) (*model.CartLineItem, error) {
	p, err := s.product(ctx, productID)
	if err != nil {
		return nil, err
	}
	id := merchandiseItemID(productID)

	unlock := s.locks.Lock(lockKey(ownerID, id))
	defer unlock()

	cur, err := s.current(ctx, ownerID, id)
	if err != nil {
		return nil, err
	}
	have := 0
	addedAt := s.now()
	if cur != nil {
		have = cur.Quantity
		addedAt = cur.AddedAt
	}
	want := ClampQuantity(next(have))
	switch {
	case want == have:
		return cur, nil
	case want == 0:
		return nil, s.store.Remove(ctx, ownerID, id)
	case want > have && !p.IsActive:
		return nil, ErrProductInactive
	}

	item := merchandiseItem(p, want, addedAt)
	if err := s.store.Upsert(ctx, ownerID, item); err != nil {
		return nil, err
	}
	return &item, nil
}

// AddMerchandise adds quantity units of a product, merging with a line item
// already holding it.
func (s *Service) AddMerchandise(ctx context.Context, ownerID, productID string, quantity int) (*model.CartLineItem, error) {
	quantity = ClampQuantity(quantity)
	return s.updateMerchandise(ctx, ownerID, productID, func(q int) int { return q + quantity })
}

// SetMerchandiseQuantity sets an absolute unit count; 0 removes the product.
func (s *Service) SetMerchandiseQuantity(ctx context.Context, ownerID, productID string, quantity int) (*model.CartLineItem, error) {
	quantity = ClampQuantity(quantity)
	return s.updateMerchandise(ctx, ownerID, productID, func(int) int { return quantity })
}

// Cart returns a snapshot of every line item of the owner.
func (s *Service) Cart(ctx context.Context, ownerID string) (model.Cart, error) {
	items, err := s.store.List(ctx, ownerID)
	if err != nil {
		return model.Cart{}, err
	}
	return model.NewCart(ownerID, items), nil
}

func sumPrices(items []model.CartLineItem) decimal.Decimal {
	total := decimal.Zero
	for _, it := range items {
		total = total.Add(it.Price)
	}
	return total
}

package cart

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/kiddeo/kiddeo-core/internal/model"
)

// PaymentMethod is the payment option picked before a quick checkout.
type PaymentMethod string

const (
	PaymentCard PaymentMethod = "card"
	PaymentSBP  PaymentMethod = "sbp" // fast payment system
)

// ParsePaymentMethod accepts "card" and "sbp" in any case.
func ParsePaymentMethod(raw string) (PaymentMethod, bool) {
	switch m := PaymentMethod(strings.ToLower(strings.TrimSpace(raw))); m {
	case PaymentCard, PaymentSBP:
		return m, true
	}
	return "", false
}

var (
	ErrEmptyCart             = errors.New("cart is empty")
	ErrPaymentMethodRequired = errors.New("payment method required")
	ErrUnknownPaymentMethod  = errors.New("unknown payment method")
)

// CheckoutRequest selects what to check out.  EventID restricts the order to
// the tickets of one event.
type CheckoutRequest struct {
	Quick         bool
	PaymentMethod string
	EventID       string
}

// OrderLine is one purchasable unit group of an order.  Ticket lines carry
// EventID and TicketID, merchandise lines carry ProductID.
type OrderLine struct {
	EventID   string          `json:"eventId,omitempty"`
	TicketID  string          `json:"ticketId,omitempty"`
	ProductID string          `json:"productId,omitempty"`
	Quantity  int             `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unitPrice"`
}

// Order is the finalized cart handed to the payment flow.
type Order struct {
	ID            string          `json:"id"`
	OwnerID       string          `json:"ownerId"`
	Lines         []OrderLine     `json:"lines"`
	Total         decimal.Decimal `json:"total"`
	PaymentMethod PaymentMethod   `json:"paymentMethod,omitempty"`
	Quick         bool            `json:"quick"`
	CreatedAt     time.Time       `json:"createdAt"`
}

// OrderPublisher hands a finalized order to the downstream payment flow.
type OrderPublisher interface {
	PublishOrder(ctx context.Context, o Order) error
}

func orderLines(items []model.CartLineItem) []OrderLine {
	var lines []OrderLine
	for _, it := range items {
		switch it.Kind {
		case model.KindTicket:
			for _, t := range it.Tickets() {
				lines = append(lines, OrderLine{EventID: it.EventID, TicketID: t.TicketID, Quantity: t.Quantity, UnitPrice: t.Price})
			}
		case model.KindMerchandise:
			md, _ := it.Merchandise()
			lines = append(lines, OrderLine{ProductID: md.ProductID, Quantity: it.Quantity, UnitPrice: md.UnitPrice})
		}
	}
	return lines
}

// Checkout finalizes the cart (or one event of it), publishes the order and
// removes the checked-out line items.  Nothing is removed when publishing
// fails.
func (s *Service) Checkout(ctx context.Context, ownerID string, req CheckoutRequest) (*Order, error) {
	var method PaymentMethod
	if strings.TrimSpace(req.PaymentMethod) != "" {
		m, ok := ParsePaymentMethod(req.PaymentMethod)
		if !ok {
			return nil, ErrUnknownPaymentMethod
		}
		method = m
	}
	if req.Quick && method == "" {
		return nil, ErrPaymentMethodRequired
	}

	ids, err := s.checkoutIDs(ctx, ownerID, req.EventID)
	if err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return nil, ErrEmptyCart
	}

	// ids are sorted, and every other mutation holds a single key, so taking
	// them in order cannot deadlock.
	for _, id := range ids {
		unlock := s.locks.Lock(lockKey(ownerID, id))
		defer unlock()
	}

	items := make([]model.CartLineItem, 0, len(ids))
	for _, id := range ids {
		it, err := s.current(ctx, ownerID, id)
		if err != nil {
			return nil, err
		}
		if it != nil {
			items = append(items, *it)
		}
	}
	if len(items) == 0 {
		return nil, ErrEmptyCart
	}

	order := Order{
		ID:            uuid.NewString(),
		OwnerID:       ownerID,
		Lines:         orderLines(items),
		Total:         sumPrices(items),
		PaymentMethod: method,
		Quick:         req.Quick,
		CreatedAt:     s.now(),
	}
	if err := s.publisher.PublishOrder(ctx, order); err != nil {
		return nil, fmt.Errorf("publish order: %w", err)
	}

	for _, it := range items {
		if err := s.store.Remove(ctx, ownerID, it.ID); err != nil {
			s.log.Error("checked-out item not removed", "owner_id", ownerID, "item_id", it.ID, "order_id", order.ID, "err", err)
		}
	}
	s.log.Info("checkout finalized", "owner_id", ownerID, "order_id", order.ID, "lines", len(order.Lines), "total", order.Total.String(), "quick", order.Quick)
	return &order, nil
}

func (s *Service) checkoutIDs(ctx context.Context, ownerID, eventID string) ([]string, error) {
	if eventID != "" {
		it, err := s.GetLineItem(ctx, ownerID, eventID)
		if err != nil || it == nil {
			return nil, err
		}
		return []string{it.ID}, nil
	}
	items, err := s.store.List(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	ids := make([]string, 0, len(items))
	for _, it := range items {
		ids = append(ids, it.ID)
	}
	sort.Strings(ids)
	return ids, nil
}

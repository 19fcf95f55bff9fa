package cart

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kiddeo/kiddeo-core/internal/model"
	"github.com/kiddeo/kiddeo-core/internal/repository"
)

type fakeTickets map[string]model.TicketType

func (f fakeTickets) ListByEvent(_ context.Context, eventID string) ([]model.TicketType, error) {
	var out []model.TicketType
	for _, id := range []string{"A", "B", "C", "L", "OFF"} {
		if t, ok := f[id]; ok && t.EventID == eventID {
			out = append(out, t)
		}
	}
	return out, nil
}

func (f fakeTickets) GetByID(_ context.Context, eventID, ticketID string) (model.TicketType, error) {
	t, ok := f[ticketID]
	if !ok || t.EventID != eventID {
		return model.TicketType{}, repository.ErrNotFound
	}
	return t, nil
}

type fakeProducts map[string]model.Product

func (f fakeProducts) GetByID(_ context.Context, id string) (model.Product, error) {
	p, ok := f[id]
	if !ok {
		return model.Product{}, repository.ErrNotFound
	}
	return p, nil
}

type recordingPublisher struct {
	mu     sync.Mutex
	orders []Order
	err    error
}

func (p *recordingPublisher) PublishOrder(_ context.Context, o Order) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	p.orders = append(p.orders, o)
	return nil
}

func catalog() fakeTickets {
	return fakeTickets{
		"A":   {ID: "A", EventID: "E", Name: "Взрослый", Price: decimal.NewFromInt(500), IsActive: true},
		"B":   {ID: "B", EventID: "E", Name: "Детский", Price: decimal.NewFromInt(300), IsActive: true},
		"C":   {ID: "C", EventID: "F", Name: "Семейный", Price: decimal.NewFromInt(1200), IsActive: true},
		"L":   {ID: "L", EventID: "E", Name: "Льготный", Price: decimal.NewFromInt(100), IsActive: true, MaxPerOrder: 2},
		"OFF": {ID: "OFF", EventID: "E", Name: "Архив", Price: decimal.NewFromInt(50), IsActive: false},
	}
}

func newTestService(pub *recordingPublisher) (*Service, *MemoryStore) {
	store := NewMemoryStore()
	products := fakeProducts{
		"P1": {ID: "P1", Name: "Раскраска", Price: decimal.RequireFromString("199.90"), IsActive: true},
		"P2": {ID: "P2", Name: "Снято", Price: decimal.NewFromInt(10), IsActive: false},
	}
	if pub == nil {
		pub = &recordingPublisher{}
	}
	return NewService(store, catalog(), products, pub, nil), store
}

func TestSetTierQuantityScenario(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(nil)

	_, err := svc.SetTierQuantity(ctx, "u1", "E", "A", 2)
	require.NoError(t, err)
	item, err := svc.SetTierQuantity(ctx, "u1", "E", "B", 1)
	require.NoError(t, err)
	assert.Equal(t, "1300", item.Price.String())
	assert.Len(t, item.Tickets(), 2)

	item, err = svc.SetTierQuantity(ctx, "u1", "E", "A", 0)
	require.NoError(t, err)
	require.Len(t, item.Tickets(), 1)
	assert.Equal(t, "B", item.Tickets()[0].TicketID)
	assert.Equal(t, "300", item.Price.String())

	item, err = svc.SetTierQuantity(ctx, "u1", "E", "B", 0)
	require.NoError(t, err)
	assert.Nil(t, item)

	got, err := svc.GetLineItem(ctx, "u1", "E")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestSetTierQuantityUnknownAndInactive(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(nil)

	_, err := svc.SetTierQuantity(ctx, "u1", "E", "C", 1)
	assert.ErrorIs(t, err, ErrTicketTypeNotFound)

	_, err = svc.SetTierQuantity(ctx, "u1", "E", "OFF", 1)
	assert.ErrorIs(t, err, ErrTicketTypeInactive)

	item, err := svc.SetTierQuantity(ctx, "u1", "E", "OFF", 0)
	require.NoError(t, err)
	assert.Nil(t, item)
}

func TestTierMaxIsNoOp(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(nil)

	item, err := svc.SetTierQuantity(ctx, "u1", "E", "L", 5)
	require.NoError(t, err)
	assert.Nil(t, item)

	_, err = svc.SetTierQuantity(ctx, "u1", "E", "L", 2)
	require.NoError(t, err)
	item, err = svc.IncrementTier(ctx, "u1", "E", "L")
	require.NoError(t, err)
	assert.Equal(t, 2, item.Tickets()[0].Quantity)
	assert.Equal(t, "200", item.Price.String())
}

func TestLoweredTierMaxStillAllowsStepDown(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(nil)

	roomy := catalog()
	l := roomy["L"]
	l.MaxPerOrder = 10
	roomy["L"] = l
	svc.tickets = roomy
	_, err := svc.SetTierQuantity(ctx, "u1", "E", "L", 5)
	require.NoError(t, err)

	svc.tickets = catalog()
	item, err := svc.DecrementTier(ctx, "u1", "E", "L")
	require.NoError(t, err)
	assert.Equal(t, 4, item.Tickets()[0].Quantity)

	item, err = svc.SetTierQuantity(ctx, "u1", "E", "L", 3)
	require.NoError(t, err)
	assert.Equal(t, 3, item.Tickets()[0].Quantity)
	assert.Equal(t, "300", item.Price.String())

	item, err = svc.IncrementTier(ctx, "u1", "E", "L")
	require.NoError(t, err)
	assert.Equal(t, 3, item.Tickets()[0].Quantity)
}

func TestIncrementDecrement(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(nil)

	for i := 0; i < 3; i++ {
		_, err := svc.IncrementTier(ctx, "u1", "E", "B")
		require.NoError(t, err)
	}
	item, err := svc.DecrementTier(ctx, "u1", "E", "B")
	require.NoError(t, err)
	assert.Equal(t, 2, item.Tickets()[0].Quantity)

	_, _ = svc.DecrementTier(ctx, "u1", "E", "B")
	item, err = svc.DecrementTier(ctx, "u1", "E", "B")
	require.NoError(t, err)
	assert.Nil(t, item)

	item, err = svc.DecrementTier(ctx, "u1", "E", "B")
	require.NoError(t, err)
	assert.Nil(t, item)
}

func TestConcurrentIncrementsAreNotLost(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(nil)

	const n = 50
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			tier := "A"
			if i%2 == 1 {
				tier = "B"
			}
			_, err := svc.IncrementTier(ctx, "u1", "E", tier)
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	item, err := svc.GetLineItem(ctx, "u1", "E")
	require.NoError(t, err)
	require.Len(t, item.Tickets(), 2)
	total := 0
	for _, tr := range item.Tickets() {
		total += tr.Quantity
	}
	assert.Equal(t, n, total)
	assert.Equal(t, "20000", item.Price.String())
	assert.Zero(t, svc.locks.size())
}

func TestMerchandiseMergeOnAdd(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(nil)

	_, err := svc.AddMerchandise(ctx, "u1", "P1", 1)
	require.NoError(t, err)
	item, err := svc.AddMerchandise(ctx, "u1", "P1", 2)
	require.NoError(t, err)
	assert.Equal(t, 3, item.Quantity)
	assert.Equal(t, "599.7", item.Price.String())

	item, err = svc.SetMerchandiseQuantity(ctx, "u1", "P1", 1)
	require.NoError(t, err)
	assert.Equal(t, "199.9", item.Price.String())

	item, err = svc.SetMerchandiseQuantity(ctx, "u1", "P1", 0)
	require.NoError(t, err)
	assert.Nil(t, item)

	_, err = svc.AddMerchandise(ctx, "u1", "nope", 1)
	assert.ErrorIs(t, err, ErrProductNotFound)
	_, err = svc.AddMerchandise(ctx, "u1", "P2", 1)
	assert.ErrorIs(t, err, ErrProductInactive)
}

func TestCartSnapshot(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(nil)

	_, _ = svc.SetTierQuantity(ctx, "u1", "E", "A", 1)
	_, _ = svc.SetTierQuantity(ctx, "u1", "F", "C", 1)
	_, _ = svc.AddMerchandise(ctx, "u1", "P1", 1)
	_, _ = svc.SetTierQuantity(ctx, "u2", "E", "A", 4)

	c, err := svc.Cart(ctx, "u1")
	require.NoError(t, err)
	assert.Len(t, c.Items, 3)
	assert.Equal(t, "1899.9", c.Total.String())

	require.NoError(t, svc.RemoveEvent(ctx, "u1", "F"))
	c, err = svc.Cart(ctx, "u1")
	require.NoError(t, err)
	assert.Len(t, c.Items, 2)

	empty, err := svc.Cart(ctx, "nobody")
	require.NoError(t, err)
	assert.NotNil(t, empty.Items)
	assert.True(t, empty.Total.IsZero())
}

func TestTicketOptions(t *testing.T) {
	svc, _ := newTestService(nil)
	opts, err := svc.TicketOptions(context.Background(), "E")
	require.NoError(t, err)
	assert.Len(t, opts.Tickets, 4)
	require.NotNil(t, opts.MinPrice)
	assert.Equal(t, 100.0, *opts.MinPrice)

	none, err := svc.TicketOptions(context.Background(), "missing")
	require.NoError(t, err)
	assert.Nil(t, none.MinPrice)
	assert.NotNil(t, none.Tickets)
}

func TestCheckoutValidation(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(nil)

	_, err := svc.Checkout(ctx, "u1", CheckoutRequest{})
	assert.ErrorIs(t, err, ErrEmptyCart)

	_, _ = svc.SetTierQuantity(ctx, "u1", "E", "A", 1)

	_, err = svc.Checkout(ctx, "u1", CheckoutRequest{Quick: true})
	assert.ErrorIs(t, err, ErrPaymentMethodRequired)

	_, err = svc.Checkout(ctx, "u1", CheckoutRequest{Quick: true, PaymentMethod: "cash"})
	assert.ErrorIs(t, err, ErrUnknownPaymentMethod)

	_, err = svc.Checkout(ctx, "u1", CheckoutRequest{EventID: "F"})
	assert.ErrorIs(t, err, ErrEmptyCart)
}

func TestQuickCheckoutOfOneEvent(t *testing.T) {
	ctx := context.Background()
	pub := &recordingPublisher{}
	svc, _ := newTestService(pub)

	_, _ = svc.SetTierQuantity(ctx, "u1", "E", "A", 2)
	_, _ = svc.SetTierQuantity(ctx, "u1", "E", "B", 1)
	_, _ = svc.SetTierQuantity(ctx, "u1", "F", "C", 1)

	order, err := svc.Checkout(ctx, "u1", CheckoutRequest{Quick: true, PaymentMethod: "SBP", EventID: "E"})
	require.NoError(t, err)
	assert.Equal(t, PaymentSBP, order.PaymentMethod)
	assert.Equal(t, "1300", order.Total.String())
	assert.Equal(t, []OrderLine{
		{EventID: "E", TicketID: "A", Quantity: 2, UnitPrice: decimal.NewFromInt(500)},
		{EventID: "E", TicketID: "B", Quantity: 1, UnitPrice: decimal.NewFromInt(300)},
	}, order.Lines)
	require.Len(t, pub.orders, 1)
	assert.Equal(t, order.ID, pub.orders[0].ID)

	left, err := svc.Cart(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, left.Items, 1)
	assert.Equal(t, "F", left.Items[0].EventID)
}

func TestCheckoutWholeCart(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(nil)

	_, _ = svc.SetTierQuantity(ctx, "u1", "E", "A", 1)
	_, _ = svc.AddMerchandise(ctx, "u1", "P1", 2)

	order, err := svc.Checkout(ctx, "u1", CheckoutRequest{PaymentMethod: "card"})
	require.NoError(t, err)
	assert.Len(t, order.Lines, 2)
	assert.Equal(t, "899.8", order.Total.String())

	left, err := svc.Cart(ctx, "u1")
	require.NoError(t, err)
	assert.Empty(t, left.Items)
}

func TestCheckoutPublishFailureKeepsCart(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(&recordingPublisher{err: errors.New("broker down")})

	_, _ = svc.SetTierQuantity(ctx, "u1", "E", "A", 1)
	_, err := svc.Checkout(ctx, "u1", CheckoutRequest{})
	require.Error(t, err)

	left, err := svc.Cart(ctx, "u1")
	require.NoError(t, err)
	assert.Len(t, left.Items, 1)
}

func TestParsePaymentMethod(t *testing.T) {
	m, ok := ParsePaymentMethod(" Card ")
	assert.True(t, ok)
	assert.Equal(t, PaymentCard, m)
	_, ok = ParsePaymentMethod("crypto")
	assert.False(t, ok)
}

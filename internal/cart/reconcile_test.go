package cart

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kiddeo/kiddeo-core/internal/model"
)

var (
	tierA = TierInput{TicketID: "A", Name: "Взрослый", Price: decimal.NewFromInt(500)}
	tierB = TierInput{TicketID: "B", Name: "Детский", Price: decimal.NewFromInt(300)}
)

func TestApplyTierQuantityAggregatesTiers(t *testing.T) {
	item := ApplyTierQuantity(nil, "E", tierA, 2)
	item = ApplyTierQuantity(item, "E", tierB, 1)
	require.NotNil(t, item)

	assert.Equal(t, "E", item.ID)
	assert.Equal(t, model.KindTicket, item.Kind)
	assert.Equal(t, 1, item.Quantity)
	assert.Equal(t, "1300", item.Price.String())
	assert.Len(t, item.Tickets(), 2)
}

func TestApplyTierQuantityZeroDropsTier(t *testing.T) {
	item := ApplyTierQuantity(nil, "E", tierA, 2)
	item = ApplyTierQuantity(item, "E", tierB, 1)
	item = ApplyTierQuantity(item, "E", tierA, 0)
	require.NotNil(t, item)

	tickets := item.Tickets()
	require.Len(t, tickets, 1)
	assert.Equal(t, "B", tickets[0].TicketID)
	assert.Equal(t, "300", item.Price.String())
}

func TestApplyTierQuantityAllZeroRemovesItem(t *testing.T) {
	item := ApplyTierQuantity(nil, "E", tierA, 2)
	item = ApplyTierQuantity(item, "E", tierB, 1)
	item = ApplyTierQuantity(item, "E", tierA, 0)
	item = ApplyTierQuantity(item, "E", tierB, 0)
	assert.Nil(t, item)

	assert.Nil(t, ApplyTierQuantity(nil, "E", tierA, 0))
	assert.Nil(t, ApplyTierQuantity(nil, "E", tierA, -4))
}

func TestApplyTierQuantityIsAbsoluteAndIdempotent(t *testing.T) {
	once := ApplyTierQuantity(nil, "E", tierA, 3)
	twice := ApplyTierQuantity(once, "E", tierA, 3)

	assert.Equal(t, once.Price.String(), twice.Price.String())
	assert.Equal(t, once.Tickets(), twice.Tickets())
	assert.Equal(t, "1500", twice.Price.String())
}

func TestApplyTierQuantityDoesNotMutateInput(t *testing.T) {
	cur := ApplyTierQuantity(nil, "E", tierA, 2)
	_ = ApplyTierQuantity(cur, "E", tierA, 5)
	assert.Equal(t, 2, cur.Tickets()[0].Quantity)
	assert.Equal(t, "1000", cur.Price.String())
}

func TestApplyTierQuantityKeepsOrderAndRefreshesPrice(t *testing.T) {
	item := ApplyTierQuantity(nil, "E", tierA, 1)
	item = ApplyTierQuantity(item, "E", tierB, 1)
	repriced := TierInput{TicketID: "A", Name: "Взрослый", Price: decimal.NewFromInt(450)}
	item = ApplyTierQuantity(item, "E", repriced, 2)

	tickets := item.Tickets()
	assert.Equal(t, "A", tickets[0].TicketID)
	assert.Equal(t, "B", tickets[1].TicketID)
	assert.Equal(t, "1200", item.Price.String())
}

func TestQuantityCoercion(t *testing.T) {
	assert.Equal(t, 0, ClampQuantity(-1))
	assert.Equal(t, 7, ClampQuantity(7))

	assert.Equal(t, 3, ParseQuantity(" 3 "))
	assert.Equal(t, 0, ParseQuantity("-2"))
	assert.Equal(t, 0, ParseQuantity("two"))
	assert.Equal(t, 0, ParseQuantity("1.5"))
	assert.Equal(t, 0, ParseQuantity(""))
}

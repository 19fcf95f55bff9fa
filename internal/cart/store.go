package cart

import (
	"context"
	"errors"
	"sort"

	"github.com/kiddeo/kiddeo-core/internal/model"
)

// ErrLineItemNotFound is returned by Store.Get for a missing line item.
var ErrLineItemNotFound = errors.New("cart line item not found")

// Store persists cart line items per owner.  Upsert replaces a whole line
// item in one write, so readers never observe a partially merged tier list.
// Remove and Clear are idempotent.
type Store interface {
	List(ctx context.Context, ownerID string) ([]model.CartLineItem, error)
	Get(ctx context.Context, ownerID, itemID string) (*model.CartLineItem, error)
	Upsert(ctx context.Context, ownerID string, item model.CartLineItem) error
	Remove(ctx context.Context, ownerID, itemID string) error
	Clear(ctx context.Context, ownerID string) error
}

// sortItems orders a cart by insertion time, then id.
func sortItems(items []model.CartLineItem) {
	sort.Slice(items, func(i, j int) bool {
		if !items[i].AddedAt.Equal(items[j].AddedAt) {
			return items[i].AddedAt.Before(items[j].AddedAt)
		}
		return items[i].ID < items[j].ID
	})
}

package cart

import (
	"context"
	"sync"

	"github.com/kiddeo/kiddeo-core/internal/model"
)

// MemoryStore keeps carts in process memory.  It is used when Redis is not
// reachable and in tests.
type MemoryStore struct {
	mu    sync.RWMutex
	carts map[string]map[string]model.CartLineItem
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{carts: make(map[string]map[string]model.CartLineItem)}
}

// clone detaches the tier slice so callers cannot mutate stored state.
func clone(item model.CartLineItem) model.CartLineItem {
	if md, ok := item.Metadata.(model.TicketMetadata); ok {
		item.Metadata = model.TicketMetadata{Tickets: append([]model.TicketTier(nil), md.Tickets...)}
	}
	return item
}

func (s *MemoryStore) List(_ context.Context, ownerID string) ([]model.CartLineItem, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]model.CartLineItem, 0, len(s.carts[ownerID]))
	for _, it := range s.carts[ownerID] {
		out = append(out, clone(it))
	}
	sortItems(out)
	return out, nil
}

func (s *MemoryStore) Get(_ context.Context, ownerID, itemID string) (*model.CartLineItem, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	it, ok := s.carts[ownerID][itemID]
	if !ok {
		return nil, ErrLineItemNotFound
	}
	c := clone(it)
	return &c, nil
}

func (s *MemoryStore) Upsert(_ context.Context, ownerID string, item model.CartLineItem) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cart, ok := s.carts[ownerID]
	if !ok {
		cart = make(map[string]model.CartLineItem)
		s.carts[ownerID] = cart
	}
	cart[item.ID] = clone(item)
	return nil
}

func (s *MemoryStore) Remove(_ context.Context, ownerID, itemID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.carts[ownerID], itemID)
	if len(s.carts[ownerID]) == 0 {
		delete(s.carts, ownerID)
	}
	return nil
}

func (s *MemoryStore) Clear(_ context.Context, ownerID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.carts, ownerID)
	return nil
}

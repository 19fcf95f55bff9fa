package cart

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/kiddeo/kiddeo-core/internal/model"
)

// RedisStore keeps each cart as one Redis hash: field = line item id, value =
// the JSON encoded line item.  Every write refreshes the cart's TTL.
type RedisStore struct {
	rdb    *redis.Client
	prefix string
	ttl    time.Duration
}

// NewRedisStore returns a store using keys "<prefix>:<owner>".  A zero ttl
// keeps carts forever.
func NewRedisStore(rdb *redis.Client, prefix string, ttl time.Duration) *RedisStore {
	if prefix == "" {
		prefix = "cart"
	}
	return &RedisStore{rdb: rdb, prefix: prefix, ttl: ttl}
}

func (s *RedisStore) key(ownerID string) string {
	return s.prefix + ":" + ownerID
}

func (s *RedisStore) List(ctx context.Context, ownerID string) ([]model.CartLineItem, error) {
	raw, err := s.rdb.HGetAll(ctx, s.key(ownerID)).Result()
	if err != nil {
		return nil, fmt.Errorf("load cart: %w", err)
	}
	out := make([]model.CartLineItem, 0, len(raw))
	for field, v := range raw {
		var it model.CartLineItem
		if err := json.Unmarshal([]byte(v), &it); err != nil {
			return nil, fmt.Errorf("decode cart item %s: %w", field, err)
		}
		out = append(out, it)
	}
	sortItems(out)
	return out, nil
}

func (s *RedisStore) Get(ctx context.Context, ownerID, itemID string) (*model.CartLineItem, error) {
	v, err := s.rdb.HGet(ctx, s.key(ownerID), itemID).Result()
	if errors.Is(err, redis.Nil) {
		return nil, ErrLineItemNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load cart item: %w", err)
	}
	var it model.CartLineItem
	if err := json.Unmarshal([]byte(v), &it); err != nil {
		return nil, fmt.Errorf("decode cart item %s: %w", itemID, err)
	}
	return &it, nil
}

// Upsert writes the whole line item and refreshes the TTL in one MULTI/EXEC.
func (s *RedisStore) Upsert(ctx context.Context, ownerID string, item model.CartLineItem) error {
	b, err := json.Marshal(item)
	if err != nil {
		return fmt.Errorf("encode cart item: %w", err)
	}
	key := s.key(ownerID)
	_, err = s.rdb.TxPipelined(ctx, func(p redis.Pipeliner) error {
		p.HSet(ctx, key, item.ID, b)
		if s.ttl > 0 {
			p.Expire(ctx, key, s.ttl)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("store cart item: %w", err)
	}
	return nil
}

func (s *RedisStore) Remove(ctx context.Context, ownerID, itemID string) error {
	if err := s.rdb.HDel(ctx, s.key(ownerID), itemID).Err(); err != nil {
		return fmt.Errorf("remove cart item: %w", err)
	}
	return nil
}

func (s *RedisStore) Clear(ctx context.Context, ownerID string) error {
	return s.rdb.Del(ctx, s.key(ownerID)).Err()
}

package config

import "time"

// CartConfig configures cart persistence.  Carts live in Redis when a client
// is available and in process memory otherwise.
type CartConfig struct {
	TTL       time.Duration
	KeyPrefix string
}

func LoadCartConfig() CartConfig {
	return CartConfig{
		TTL:       envDur("CART_TTL", 72*time.Hour),
		KeyPrefix: envStr("CART_KEY_PREFIX", "kiddeo:cart"),
	}
}

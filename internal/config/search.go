package config

// SearchConfig bounds the aggregator's paging.
type SearchConfig struct {
	DefaultCity  string
	DefaultLimit int
	MaxLimit     int
	// MaxWindow caps how many rows each source is asked for when the merged
	// view is built for deep pages.
	MaxWindow int
}

// LoadSearchConfig reads SEARCH_* variables.
func LoadSearchConfig() SearchConfig {
	c := SearchConfig{
		DefaultCity:  envStr("SEARCH_DEFAULT_CITY", "moscow"),
		DefaultLimit: envInt("SEARCH_DEFAULT_LIMIT", 20),
		MaxLimit:     envInt("SEARCH_MAX_LIMIT", 100),
		MaxWindow:    envInt("SEARCH_MAX_WINDOW", 1000),
	}
	if c.DefaultLimit < 1 {
		c.DefaultLimit = 20
	}
	if c.MaxLimit < c.DefaultLimit {
		c.MaxLimit = c.DefaultLimit
	}
	if c.MaxWindow < c.MaxLimit {
		c.MaxWindow = c.MaxLimit
	}
	return c
}

package config

import (
	"os"
	"strconv"
	"time"

	"github.com/shopspring/decimal"
)

// Config holds all application configuration
type Config struct {
	// Upstream API settings
	GraphQLURL     string
	RequestTimeout time.Duration
	RequestDelay   time.Duration

	// Pagination settings
	PageSize       int
	Skip           int
	PositionsFirst int

	// Filter settings
	LiquidityFloor decimal.Decimal

	// Output settings
	Chain string
	Limit int

	// Resolution settings
	ResolveConcurrency int
}

const (
	// MinLimit and MaxLimit bound the caller-supplied result limit.
	MinLimit = 1
	MaxLimit = 100
)

// NewConfig creates a new configuration with default values
func NewConfig() *Config {
	return &Config{
		GraphQLURL:         "https://api.morpho.org/graphql",
		RequestTimeout:     30 * time.Second,
		PageSize:           500,
		Skip:               0,
		PositionsFirst:     50,
		LiquidityFloor:     decimal.NewFromInt(10_000_000),
		Chain:              "all",
		Limit:              10,
		ResolveConcurrency: 8,
	}
}

// LoadFromEnvironment loads configuration from environment variables
func (c *Config) LoadFromEnvironment() {
	if url := os.Getenv("VAULTBOARD_GRAPHQL_URL"); url != "" {
		c.GraphQLURL = url
	}

	if chain := os.Getenv("VAULTBOARD_CHAIN"); chain != "" {
		c.Chain = chain
	}

	if limit := os.Getenv("VAULTBOARD_LIMIT"); limit != "" {
		if l, err := strconv.Atoi(limit); err == nil {
			c.Limit = l
		}
	}

	if first := os.Getenv("VAULTBOARD_FIRST"); first != "" {
		if f, err := strconv.Atoi(first); err == nil && f > 0 {
			c.PageSize = f
		}
	}

	if skip := os.Getenv("VAULTBOARD_SKIP"); skip != "" {
		if s, err := strconv.Atoi(skip); err == nil && s >= 0 {
			c.Skip = s
		}
	}

	if positions := os.Getenv("VAULTBOARD_POSITIONS_FIRST"); positions != "" {
		if p, err := strconv.Atoi(positions); err == nil && p > 0 {
			c.PositionsFirst = p
		}
	}

	if floor := os.Getenv("VAULTBOARD_LIQUIDITY_FLOOR"); floor != "" {
		if f, err := decimal.NewFromString(floor); err == nil {
			c.LiquidityFloor = f
		}
	}

	if delay := os.Getenv("VAULTBOARD_REQUEST_DELAY_MS"); delay != "" {
		if d, err := strconv.Atoi(delay); err == nil && d >= 0 {
			c.RequestDelay = time.Duration(d) * time.Millisecond
		}
	}

	if timeout := os.Getenv("VAULTBOARD_REQUEST_TIMEOUT"); timeout != "" {
		if t, err := time.ParseDuration(timeout); err == nil && t > 0 {
			c.RequestTimeout = t
		}
	}
}

// ClampLimit bounds the configured limit to [MinLimit, MaxLimit].
// An out-of-range limit is adjusted, never rejected.
func (c *Config) ClampLimit() {
	if c.Limit < MinLimit {
		c.Limit = MinLimit
	}
	if c.Limit > MaxLimit {
		c.Limit = MaxLimit
	}
}

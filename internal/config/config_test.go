package config

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestClampLimit(t *testing.T) {
	tests := []struct {
		name     string
		limit    int
		expected int
	}{
		{name: "above maximum", limit: 500, expected: 100},
		{name: "zero", limit: 0, expected: 1},
		{name: "negative", limit: -3, expected: 1},
		{name: "within range", limit: 10, expected: 10},
		{name: "at maximum", limit: 100, expected: 100},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := NewConfig()
			cfg.Limit = tt.limit
			cfg.ClampLimit()
			assert.Equal(t, tt.expected, cfg.Limit)
		})
	}
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("VAULTBOARD_CHAIN", "base")
	t.Setenv("VAULTBOARD_LIMIT", "25")
	t.Setenv("VAULTBOARD_FIRST", "100")
	t.Setenv("VAULTBOARD_POSITIONS_FIRST", "30")
	t.Setenv("VAULTBOARD_LIQUIDITY_FLOOR", "5000000")
	t.Setenv("VAULTBOARD_REQUEST_DELAY_MS", "250")

	cfg := NewConfig()
	cfg.LoadFromEnvironment()

	assert.Equal(t, "base", cfg.Chain)
	assert.Equal(t, 25, cfg.Limit)
	assert.Equal(t, 100, cfg.PageSize)
	assert.Equal(t, 30, cfg.PositionsFirst)
	assert.True(t, cfg.LiquidityFloor.Equal(decimal.NewFromInt(5_000_000)))
	assert.Equal(t, 250*time.Millisecond, cfg.RequestDelay)
}

func TestLoadFromEnvironmentIgnoresInvalidValues(t *testing.T) {
	t.Setenv("VAULTBOARD_FIRST", "-10")
	t.Setenv("VAULTBOARD_LIMIT", "not-a-number")

	cfg := NewConfig()
	cfg.LoadFromEnvironment()

	assert.Equal(t, 500, cfg.PageSize)
	assert.Equal(t, 10, cfg.Limit)
}

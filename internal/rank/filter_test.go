package rank

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kelsos/vaultboard/internal/chains"
	"github.com/kelsos/vaultboard/internal/exposure"
	"github.com/kelsos/vaultboard/internal/models"
)

const (
	usdcMainnet = "0xa0b86991c6218b36c1d19d4a2e9eb0ce3606eb48"
	wethMainnet = "0xc02aaa39b223fe8d0a0e5c4f27ead9083c756cc2"
	wbtcMainnet = "0x2260fac5e5542a773aa44fbcfedf7c193bc2c599"
	wstethMain  = "0x7f39c581f595b53c5cb19bd0b3f8da6c935e2ca0"
)

func dec(s string) *decimal.Decimal {
	d := decimal.RequireFromString(s)
	return &d
}

func usdcVault() models.Vault {
	return models.Vault{
		Address:        "0x1111",
		Name:           "Steady USDC",
		Chain:          models.ChainRef{ID: chains.EthereumID, Network: "ethereum"},
		Asset:          &models.Asset{Address: usdcMainnet, Symbol: "USDC", Decimals: 6},
		TotalAssetsUsd: dec("25000000"),
		NetApy:         dec("0.05"),
		Whitelisted:    true,
	}
}

var floor = decimal.NewFromInt(10_000_000)

func TestScreenPassingVault(t *testing.T) {
	v := usdcVault()
	c, ok := Screen(&v, chains.EthereumID, floor)
	require.True(t, ok)
	assert.Equal(t, "USDC", c.DepositAsset)
	assert.True(t, c.LiquidityUSD.Equal(decimal.NewFromInt(25_000_000)))
	assert.True(t, c.NetAPY.Equal(decimal.RequireFromString("0.05")))
}

func TestScreenExcludesOnAnySinglePredicate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(v *models.Vault)
	}{
		{
			name:   "not whitelisted",
			mutate: func(v *models.Vault) { v.Whitelisted = false },
		},
		{
			name:   "has warnings",
			mutate: func(v *models.Vault) { v.Warnings = []models.Warning{{Type: "UNRECOGNIZED_ASSET", Level: "YELLOW"}} },
		},
		{
			name:   "deposit asset not in allowlist",
			mutate: func(v *models.Vault) { v.Asset.Address = "0xdeadbeef" },
		},
		{
			name:   "deposit asset allowlisted but not a deposit asset",
			mutate: func(v *models.Vault) { v.Asset.Address = wstethMain },
		},
		{
			name:   "missing asset record",
			mutate: func(v *models.Vault) { v.Asset = nil },
		},
		{
			name:   "liquidity below floor",
			mutate: func(v *models.Vault) { v.TotalAssetsUsd = dec("9999999") },
		},
		{
			name: "liquidity absent with no fallback",
			mutate: func(v *models.Vault) {
				v.TotalAssetsUsd = nil
				v.TotalAssets = nil
			},
		},
		{
			name:   "nil APY",
			mutate: func(v *models.Vault) { v.NetApy = nil },
		},
		{
			name:   "zero APY",
			mutate: func(v *models.Vault) { v.NetApy = dec("0") },
		},
		{
			name:   "negative APY",
			mutate: func(v *models.Vault) { v.NetApy = dec("-0.01") },
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := usdcVault()
			tt.mutate(&v)
			_, ok := Screen(&v, chains.EthereumID, floor)
			assert.False(t, ok)
		})
	}
}

func TestDepositAssetCanonicalization(t *testing.T) {
	tests := []struct {
		name     string
		address  string
		expected string
	}{
		{name: "WETH maps to ETH", address: wethMainnet, expected: "ETH"},
		{name: "WBTC maps to BTC", address: wbtcMainnet, expected: "BTC"},
		{name: "USDC stays USDC", address: usdcMainnet, expected: "USDC"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := usdcVault()
			v.Asset.Address = tt.address
			deposit, ok := DepositAsset(&v, chains.EthereumID)
			require.True(t, ok)
			assert.Equal(t, tt.expected, deposit)
		})
	}
}

func TestLiquidityFallbackStablecoinOnly(t *testing.T) {
	t.Run("USDC vault with null USD uses raw assets", func(t *testing.T) {
		v := usdcVault()
		v.TotalAssetsUsd = nil
		v.TotalAssets = dec("12000000000000")

		liquidity, ok := LiquidityUSD(&v, "USDC")
		require.True(t, ok)
		assert.True(t, liquidity.Equal(decimal.NewFromInt(12_000_000)))
		assert.True(t, MeetsLiquidityFloor(liquidity, floor))
	})

	t.Run("raw units scale down by asset decimals", func(t *testing.T) {
		v := usdcVault()
		v.TotalAssetsUsd = nil
		v.TotalAssets = dec("12000000000")

		liquidity, ok := LiquidityUSD(&v, "USDC")
		require.True(t, ok)
		assert.True(t, liquidity.Equal(decimal.NewFromInt(12_000)))
		assert.False(t, MeetsLiquidityFloor(liquidity, floor))
	})

	t.Run("ETH vault with null USD gets no fallback", func(t *testing.T) {
		v := usdcVault()
		v.Asset = &models.Asset{Address: wethMainnet, Symbol: "WETH", Decimals: 18}
		v.TotalAssetsUsd = nil
		v.TotalAssets = dec("12000000000000000000000")

		_, ok := LiquidityUSD(&v, "ETH")
		assert.False(t, ok)
	})
}

func TestApplyExposure(t *testing.T) {
	tests := []struct {
		name      string
		result    exposure.Result
		passes    bool
		exposures []string
	}{
		{
			name:   "unknown resolution excludes",
			result: exposure.Result{Assets: exposure.Set{usdcMainnet: {}}, Unknown: true},
			passes: false,
		},
		{
			name:   "address outside allowlist excludes",
			result: exposure.Result{Assets: exposure.Set{usdcMainnet: {}, "0xdeadbeef": {}}},
			passes: false,
		},
		{
			name:      "allowlisted exposures pass with sorted symbols",
			result:    exposure.Result{Assets: exposure.Set{wethMainnet: {}, usdcMainnet: {}}},
			passes:    true,
			exposures: []string{"USDC", "WETH"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := &Candidate{}
			ok := ApplyExposure(c, tt.result, chains.EthereumID)
			assert.Equal(t, tt.passes, ok)
			if tt.passes {
				assert.Equal(t, tt.exposures, c.Exposures)
			}
		})
	}
}

func TestRankOrder(t *testing.T) {
	candidate := func(address, apy, liquidity string) Candidate {
		return Candidate{
			Vault:        models.Vault{Address: address},
			NetAPY:       decimal.RequireFromString(apy),
			LiquidityUSD: decimal.RequireFromString(liquidity),
		}
	}

	candidates := []Candidate{
		candidate("0xa", "0.03", "20000000"),
		candidate("0xb", "0.05", "15000000"),
		candidate("0xc", "0.05", "30000000"),
	}

	ranked := Rank(candidates, 10)

	require.Len(t, ranked, 3)
	assert.Equal(t, "0xc", ranked[0].Vault.Address)
	assert.Equal(t, "0xb", ranked[1].Vault.Address)
	assert.Equal(t, "0xa", ranked[2].Vault.Address)
}

func TestRankTruncatesToLimit(t *testing.T) {
	var candidates []Candidate
	for i := 0; i < 5; i++ {
		candidates = append(candidates, Candidate{
			Vault:        models.Vault{Address: string(rune('a' + i))},
			NetAPY:       decimal.NewFromInt(int64(i)),
			LiquidityUSD: decimal.NewFromInt(1),
		})
	}

	ranked := Rank(candidates, 2)
	require.Len(t, ranked, 2)
	assert.True(t, ranked[0].NetAPY.GreaterThan(ranked[1].NetAPY))
}

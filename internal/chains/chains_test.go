package chains

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIDsForSlug(t *testing.T) {
	tests := []struct {
		slug     string
		expected []int
	}{
		{slug: "ethereum", expected: []int{EthereumID}},
		{slug: "base", expected: []int{BaseID}},
		{slug: "arbitrum", expected: []int{ArbitrumID}},
		{slug: "all", expected: []int{EthereumID, BaseID, ArbitrumID}},
		{slug: "Ethereum", expected: []int{EthereumID}},
	}

	for _, tt := range tests {
		t.Run(tt.slug, func(t *testing.T) {
			ids, err := IDsForSlug(tt.slug)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, ids)
		})
	}
}

func TestIDsForSlugRejectsUnknownChain(t *testing.T) {
	_, err := IDsForSlug("solana")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "arbitrum, base, ethereum")
}

func TestCanonicalDeposit(t *testing.T) {
	tests := []struct {
		symbol   string
		expected string
	}{
		{symbol: "WETH", expected: "ETH"},
		{symbol: "WBTC", expected: "BTC"},
		{symbol: "CBBTC", expected: "BTC"},
		{symbol: "USDC", expected: "USDC"},
		{symbol: "WSTETH", expected: "WSTETH"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.expected, CanonicalDeposit(tt.symbol))
	}
}

func TestAllowedSymbolIsCaseInsensitive(t *testing.T) {
	symbol, ok := AllowedSymbol(EthereumID, "0xA0B86991C6218B36C1D19D4A2E9EB0CE3606EB48")
	require.True(t, ok)
	assert.Equal(t, "USDC", symbol)
}

func TestAllowlistUnknownChainIsEmpty(t *testing.T) {
	assert.Empty(t, Allowlist(999))
}

func TestIsDepositAsset(t *testing.T) {
	for _, symbol := range []string{"USDC", "USDT", "ETH", "BTC"} {
		assert.True(t, IsDepositAsset(symbol), symbol)
	}
	for _, symbol := range []string{"WETH", "WSTETH", "SUSDS", ""} {
		assert.False(t, IsDepositAsset(symbol), symbol)
	}
}

// Package chains holds the static registry of supported chains and the
// per-chain allowlists of acceptable exposure assets. The allowlist is the
// single source of truth for the conservative classification: an asset
// address missing from it is never acceptable exposure.
package chains

import (
	"fmt"
	"sort"
	"strings"
)

// Chain identifiers for the supported networks.
const (
	EthereumID = 1
	BaseID     = 8453
	ArbitrumID = 42161
)

// chainIDsBySlug maps the caller-facing chain parameter to chain ids.
// "all" is the union of every configured chain.
var chainIDsBySlug = map[string][]int{
	"ethereum": {EthereumID},
	"base":     {BaseID},
	"arbitrum": {ArbitrumID},
	"all":      {EthereumID, BaseID, ArbitrumID},
}

// allowlists maps chain id -> lowercase token address -> canonical symbol.
var allowlists = map[int]map[string]string{
	EthereumID: {
		"0xa0b86991c6218b36c1d19d4a2e9eb0ce3606eb48": "USDC",
		"0xdac17f958d2ee523a2206206994597c13d831ec7": "USDT",
		"0xc02aaa39b223fe8d0a0e5c4f27ead9083c756cc2": "WETH",
		"0x2260fac5e5542a773aa44fbcfedf7c193bc2c599": "WBTC",
		"0xcbb7c0000ab88b473b1f5afd9ef808440eed33bf": "CBBTC",
		"0xbe9895146f7af43049ca1c1ae358b0541ea49704": "CBETH",
		"0x7f39c581f595b53c5cb19bd0b3f8da6c935e2ca0": "WSTETH",
		"0xdc035d45d973e3ec169d2276ddab16f1e407384f": "USDS",
		"0xa3931d71877c0e7a3148cb7eb4463524fec27fbd": "SUSDS",
	},
	BaseID: {
		"0x833589fcd6edb6e08f4c7c32d4f71b54bda02913": "USDC",
		"0xfde4c96c8593536e31f229ea8f37b2ada2699bb2": "USDT",
		"0x4200000000000000000000000000000000000006": "WETH",
		"0x0555e30da8f98308edb960aa94c0db47230d2b9c": "WBTC",
		"0xcbb7c0000ab88b473b1f5afd9ef808440eed33bf": "CBBTC",
		"0x2ae3f1ec7f1f5012cfeab0185bfc7aa3cf0dec22": "CBETH",
		"0xc1cba3fcea344f92d9239c08c0568f6f2f0ee452": "WSTETH",
		"0x820c137fa70c8691f0e44dc420a5e53c168921dc": "USDS",
		"0x5875eee11cf8398102fdad704c9e96607675467a": "SUSDS",
	},
	ArbitrumID: {
		"0xaf88d065e77c8cc2239327c5edb3a432268e5831": "USDC",
		"0xfd086bc7cd5c481dcc9c85ebe478a1c0b69fcbb9": "USDT",
		"0x82af49447d8a07e3bd95bd0d56f35241523fbab1": "WETH",
		"0x2f2a2543b76a4166549f7aab2e75bef0aefc5b0f": "WBTC",
		"0xcbb7c0000ab88b473b1f5afd9ef808440eed33bf": "CBBTC",
		"0x1debd73e752beaf79865fd6446b0c970eae7732f": "CBETH",
		"0x5979d7b546e38e414f7e9822514be443a4800529": "WSTETH",
	},
}

// depositAssets are the canonical deposit symbols accepted by the filter.
var depositAssets = map[string]bool{
	"USDC": true,
	"USDT": true,
	"ETH":  true,
	"BTC":  true,
}

// names maps chain id to a display name.
var names = map[int]string{
	EthereumID: "Ethereum",
	BaseID:     "Base",
	ArbitrumID: "Arbitrum",
}

// Name returns the display name for a chain id
func Name(chainID int) string {
	if name, ok := names[chainID]; ok {
		return name
	}
	return fmt.Sprintf("chain %d", chainID)
}

// IDsForSlug resolves a chain parameter to the chain ids it covers.
// Unknown slugs are rejected with the list of valid values.
func IDsForSlug(slug string) ([]int, error) {
	ids, ok := chainIDsBySlug[strings.ToLower(slug)]
	if !ok {
		return nil, fmt.Errorf("invalid chain %q, valid values: %s", slug, strings.Join(Slugs(), ", "))
	}
	return ids, nil
}

// Slugs returns the valid chain parameter values in sorted order.
func Slugs() []string {
	slugs := make([]string, 0, len(chainIDsBySlug))
	for slug := range chainIDsBySlug {
		slugs = append(slugs, slug)
	}
	sort.Strings(slugs)
	return slugs
}

// Allowlist returns the address -> symbol allowlist for a chain.
// Chains without an allowlist return an empty map, which excludes everything.
func Allowlist(chainID int) map[string]string {
	allow, ok := allowlists[chainID]
	if !ok {
		return map[string]string{}
	}
	return allow
}

// AllowedSymbol looks up a token address in a chain's allowlist.
func AllowedSymbol(chainID int, address string) (string, bool) {
	symbol, ok := Allowlist(chainID)[strings.ToLower(address)]
	return symbol, ok
}

// CanonicalDeposit folds wrapped assets into their canonical deposit symbol:
// WETH is ETH exposure, WBTC and CBBTC are BTC exposure.
func CanonicalDeposit(symbol string) string {
	switch symbol {
	case "WETH":
		return "ETH"
	case "WBTC", "CBBTC":
		return "BTC"
	}
	return symbol
}

// IsDepositAsset reports whether a canonical symbol is an accepted deposit asset.
func IsDepositAsset(symbol string) bool {
	return depositAssets[symbol]
}

// Package rank turns raw vault records plus exposure resolutions into the
// final ordered leaderboard. Every predicate is a hard exclusion and an
// independently testable function; none of them ever substitutes a default
// for missing data.
package rank

import (
	"sort"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/kelsos/vaultboard/internal/chains"
	"github.com/kelsos/vaultboard/internal/exposure"
	"github.com/kelsos/vaultboard/internal/models"
)

// Candidate is a vault that passed the record-level filters, annotated with
// the computed fields the leaderboard displays.
type Candidate struct {
	Vault        models.Vault
	DepositAsset string
	Exposures    []string
	NetAPY       decimal.Decimal
	LiquidityUSD decimal.Decimal
}

// IsWhitelisted is filter predicate 1.
func IsWhitelisted(v *models.Vault) bool {
	return v.Whitelisted
}

// HasNoWarnings is filter predicate 2.
func HasNoWarnings(v *models.Vault) bool {
	return len(v.Warnings) == 0
}

// DepositAsset maps the vault's declared asset through the chain allowlist
// and canonicalizes it (predicate 3). An unmapped address or a canonical
// symbol outside the accepted deposit set excludes the vault.
func DepositAsset(v *models.Vault, chainID int) (string, bool) {
	if v.Asset == nil || v.Asset.Address == "" {
		return "", false
	}
	symbol, ok := chains.AllowedSymbol(chainID, v.Asset.Address)
	if !ok {
		return "", false
	}
	canonical := chains.CanonicalDeposit(symbol)
	if !chains.IsDepositAsset(canonical) {
		return "", false
	}
	return canonical, true
}

// LiquidityUSD returns the vault's liquidity in USD (predicate 4 input).
// The authoritative totalAssetsUsd field wins when present. When absent,
// rawTotalAssets / 10^decimals stands in for USDC and USDT deposits only;
// ETH and BTC raw units do not map 1:1 to USD, so those vaults get no
// fallback and are excluded.
func LiquidityUSD(v *models.Vault, depositAsset string) (decimal.Decimal, bool) {
	if v.TotalAssetsUsd != nil {
		return *v.TotalAssetsUsd, true
	}

	if depositAsset != "USDC" && depositAsset != "USDT" {
		return decimal.Decimal{}, false
	}
	if v.TotalAssets == nil || v.Asset == nil {
		return decimal.Decimal{}, false
	}

	return v.TotalAssets.Shift(int32(-v.Asset.Decimals)), true
}

// MeetsLiquidityFloor is filter predicate 4.
func MeetsLiquidityFloor(liquidity, floor decimal.Decimal) bool {
	return liquidity.GreaterThanOrEqual(floor)
}

// HasPositiveAPY is filter predicate 5: net APY strictly greater than zero.
func HasPositiveAPY(v *models.Vault) bool {
	return v.NetApy != nil && v.NetApy.IsPositive()
}

// Screen applies the record-level predicates (1-5) and builds a Candidate
// for survivors. The exposure predicate (6) runs later via ApplyExposure
// since it requires a resolved adapter graph.
func Screen(v *models.Vault, chainID int, floor decimal.Decimal) (*Candidate, bool) {
	if !IsWhitelisted(v) || !HasNoWarnings(v) {
		return nil, false
	}

	deposit, ok := DepositAsset(v, chainID)
	if !ok {
		return nil, false
	}

	liquidity, ok := LiquidityUSD(v, deposit)
	if !ok || !MeetsLiquidityFloor(liquidity, floor) {
		return nil, false
	}

	if !HasPositiveAPY(v) {
		return nil, false
	}

	return &Candidate{
		Vault:        *v,
		DepositAsset: deposit,
		NetAPY:       *v.NetApy,
		LiquidityUSD: liquidity,
	}, true
}

// ApplyExposure is filter predicate 6: the resolution must be known and every
// exposure address must be in the chain's allowlist. On success the
// candidate's exposure symbols are filled in, sorted and deduplicated.
func ApplyExposure(c *Candidate, res exposure.Result, chainID int) bool {
	if res.Unknown {
		return false
	}

	symbols := make(map[string]bool, len(res.Assets))
	for addr := range res.Assets {
		symbol, ok := chains.AllowedSymbol(chainID, addr)
		if !ok {
			return false
		}
		symbols[symbol] = true
	}

	sorted := make([]string, 0, len(symbols))
	for symbol := range symbols {
		sorted = append(sorted, symbol)
	}
	sort.Strings(sorted)

	c.Exposures = sorted
	return true
}

// Rank orders candidates by net APY descending, ties broken by liquidity
// descending, and truncates to limit.
func Rank(candidates []Candidate, limit int) []Candidate {
	sort.SliceStable(candidates, func(i, j int) bool {
		byAPY := candidates[i].NetAPY.Cmp(candidates[j].NetAPY)
		if byAPY != 0 {
			return byAPY > 0
		}
		byLiquidity := candidates[i].LiquidityUSD.Cmp(candidates[j].LiquidityUSD)
		if byLiquidity != 0 {
			return byLiquidity > 0
		}
		// Deterministic order for full ties.
		return strings.ToLower(candidates[i].Vault.Address) < strings.ToLower(candidates[j].Vault.Address)
	})

	if limit > 0 && len(candidates) > limit {
		candidates = candidates[:limit]
	}
	return candidates
}

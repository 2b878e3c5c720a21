// Package report renders the final leaderboard as a markdown document.
package report

import (
	"fmt"
	"strings"
	"time"
	"unicode"

	"github.com/shopspring/decimal"

	"github.com/kelsos/vaultboard/internal/rank"
)

var oneMillion = decimal.NewFromInt(1_000_000)

// RenderMarkdown produces the leaderboard document: a header block with the
// scan parameters followed by the ranked vault table. An empty result set
// renders a single placeholder row.
func RenderMarkdown(results []rank.Candidate, chain string, now time.Time, floor decimal.Decimal) string {
	var b strings.Builder

	b.WriteString("# Morpho Protocol Leaderboard (Conservative)\n")
	b.WriteString("\n")
	b.WriteString("> Top Vaults by Net APY\n")
	b.WriteString(fmt.Sprintf("> Chains: %s | Updated: %s\n", title(chain), now.UTC().Format("2006-01-02 15:04 UTC")))
	b.WriteString(fmt.Sprintf("> Filters: Liquidity >$%sM USD | whitelisted only | no warnings\n", floor.Div(oneMillion).String()))
	b.WriteString("\n---\n\n")
	b.WriteString("## Top Vaults\n\n")
	b.WriteString("| Rank | Vault | Deposit Asset | Chain | Net APY | Liquidity | Exposure | Link |\n")
	b.WriteString("|------|-------|---------------|-------|---------|-----------|----------|------|\n")

	if len(results) == 0 {
		b.WriteString("| - | No vaults matched filters | - | - | - | - | - | - |\n")
		return b.String()
	}

	for i, r := range results {
		b.WriteString(fmt.Sprintf("| %d | %s | %s | %s | %s | %s | %s | %s |\n",
			i+1,
			r.Vault.DisplayName(),
			r.DepositAsset,
			r.Vault.Chain.Network,
			formatAPY(r.NetAPY),
			formatLiquidity(r.LiquidityUSD),
			formatExposures(r.Exposures),
			vaultLink(&r),
		))
	}

	return b.String()
}

// formatAPY scales the upstream decimal fraction to a percentage
func formatAPY(apy decimal.Decimal) string {
	return apy.Mul(decimal.NewFromInt(100)).StringFixed(2) + "%"
}

// formatLiquidity abbreviates a USD amount to millions
func formatLiquidity(liquidity decimal.Decimal) string {
	return "$" + liquidity.Div(oneMillion).StringFixed(1) + "M"
}

func formatExposures(exposures []string) string {
	if len(exposures) == 0 {
		return "-"
	}
	return strings.Join(exposures, ", ")
}

func vaultLink(r *rank.Candidate) string {
	slug := strings.ToLower(r.Vault.Chain.Network)
	return fmt.Sprintf("https://app.morpho.org/%s/vault/%s", slug, r.Vault.Address)
}

func title(s string) string {
	if s == "" {
		return s
	}
	runes := []rune(strings.ToLower(s))
	runes[0] = unicode.ToUpper(runes[0])
	return string(runes)
}

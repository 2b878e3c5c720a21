package main

import (
	"context"
	"fmt"
	"os"
	"sort"
	"time"

	"github.com/spf13/cobra"

	"github.com/kelsos/vaultboard/internal/chains"
	"github.com/kelsos/vaultboard/internal/config"
	"github.com/kelsos/vaultboard/internal/logger"
	"github.com/kelsos/vaultboard/internal/rank"
	"github.com/kelsos/vaultboard/internal/report"
	"github.com/kelsos/vaultboard/internal/services"
	"github.com/kelsos/vaultboard/internal/tui"
	"github.com/kelsos/vaultboard/internal/utils"
)

func main() {
	logger.Init()
	utils.LoadEnvironment()

	cfg := config.NewConfig()
	cfg.LoadFromEnvironment()

	var (
		chain  string
		limit  int
		output string
		useTUI bool
	)

	rootCmd := &cobra.Command{
		Use:   "vaultboard",
		Short: "A CLI tool for ranking conservative Morpho vaults",
		Long: `vaultboard builds a leaderboard of Morpho V2 vaults passing a strict
exclude-on-doubt filter: whitelisted, warning-free, allowlisted deposit asset,
deep liquidity, positive net APY, and fully resolved allowlisted exposure.`,
		Run: func(cmd *cobra.Command, args []string) {
			if cmd.Flags().Changed("chain") {
				cfg.Chain = chain
			}
			if cmd.Flags().Changed("limit") {
				cfg.Limit = limit
			}
			cfg.ClampLimit()

			// An invalid chain is rejected before any fetch happens.
			if _, err := chains.IDsForSlug(cfg.Chain); err != nil {
				logger.Fatal("%v", err)
			}

			svc := services.NewLeaderboardService(cfg)

			var results []rank.Candidate
			var err error
			if useTUI {
				if err := logger.InitFileOnly(); err != nil {
					logger.Fatal("Failed to initialize file logging: %v", err)
				}
				defer logger.Close()

				monitor := tui.NewScanMonitor(svc)
				results, err = monitor.Run(context.Background())
			} else {
				results, err = svc.BuildLeaderboard(context.Background())
			}
			if err != nil {
				logger.Fatal("Failed to build leaderboard: %v", err)
			}

			markdown := report.RenderMarkdown(results, cfg.Chain, time.Now(), cfg.LiquidityFloor)
			if output != "" {
				if err := os.WriteFile(output, []byte(markdown), 0644); err != nil {
					logger.Fatal("Failed to write leaderboard to %s: %v", output, err)
				}
				logger.Info("Leaderboard written to %s", output)
			} else {
				fmt.Print(markdown)
			}
		},
	}

	// Add a chains command
	chainsCmd := &cobra.Command{
		Use:   "chains",
		Short: "List supported chains and their allowlisted assets",
		Run: func(cmd *cobra.Command, args []string) {
			for _, id := range []int{chains.EthereumID, chains.BaseID, chains.ArbitrumID} {
				fmt.Printf("%s (chain id %d)\n", chains.Name(id), id)

				allow := chains.Allowlist(id)
				addrs := make([]string, 0, len(allow))
				for addr := range allow {
					addrs = append(addrs, addr)
				}
				sort.Slice(addrs, func(i, j int) bool {
					return allow[addrs[i]] < allow[addrs[j]]
				})

				for _, addr := range addrs {
					fmt.Printf("  %-7s %s\n", allow[addr], addr)
				}
				fmt.Println()
			}
		},
	}

	// Add flags
	rootCmd.Flags().StringVarP(&chain, "chain", "c", cfg.Chain, "Chain to scan (ethereum, base, arbitrum, all)")
	rootCmd.Flags().IntVarP(&limit, "limit", "l", cfg.Limit, "Number of vaults to display (clamped to [1,100])")
	rootCmd.Flags().StringVarP(&output, "output", "o", "", "Write the leaderboard to a file instead of stdout")
	rootCmd.Flags().BoolVarP(&useTUI, "tui", "t", false, "Show a live scan monitor while building the leaderboard")

	// Add subcommands
	rootCmd.AddCommand(chainsCmd)

	// Execute the root command
	if err := rootCmd.Execute(); err != nil {
		logger.Fatal("Failed to execute command: %v", err)
	}
}

package services

import (
	"context"
	"fmt"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/kelsos/vaultboard/internal/chains"
	"github.com/kelsos/vaultboard/internal/client"
	"github.com/kelsos/vaultboard/internal/config"
	"github.com/kelsos/vaultboard/internal/exposure"
	"github.com/kelsos/vaultboard/internal/logger"
	"github.com/kelsos/vaultboard/internal/morpho"
	"github.com/kelsos/vaultboard/internal/rank"
)

// Stage identifies a phase of a chain scan, used for progress reporting
type Stage string

const (
	StageIdle     Stage = "idle"
	StageVaults   Stage = "vaults"
	StageScreen   Stage = "screen"
	StageExposure Stage = "exposure"
	StageComplete Stage = "complete"
)

// Progress is a per-chain scan status update
type Progress struct {
	ChainID int
	Stage   Stage
	Message string
	Done    int
	Total   int
	Err     error
}

// LeaderboardService orchestrates the full pipeline: fetch vault lists,
// screen records, resolve exposures, rank survivors.
type LeaderboardService struct {
	cfg *config.Config
	api *morpho.API

	// OnProgress, when set, receives per-chain status updates. Called from
	// multiple goroutines during exposure resolution.
	OnProgress func(Progress)
}

// NewLeaderboardService creates a service with all dependencies
func NewLeaderboardService(cfg *config.Config) *LeaderboardService {
	gql := client.NewGraphQLClient(cfg)
	return &LeaderboardService{
		cfg: cfg,
		api: morpho.NewAPI(gql, cfg),
	}
}

// ChainIDs resolves the configured chain parameter, validating it before any
// fetch happens.
func (s *LeaderboardService) ChainIDs() ([]int, error) {
	return chains.IDsForSlug(s.cfg.Chain)
}

// BuildLeaderboard runs the pipeline for every configured chain and returns
// the ranked, truncated results. The exposure memo is scoped to this call;
// nothing is cached across runs.
func (s *LeaderboardService) BuildLeaderboard(ctx context.Context) ([]rank.Candidate, error) {
	chainIDs, err := s.ChainIDs()
	if err != nil {
		return nil, err
	}

	resolver := exposure.NewResolver(s.api, s.cfg.PositionsFirst)

	var all []rank.Candidate
	for _, chainID := range chainIDs {
		candidates, err := s.scanChain(ctx, chainID, resolver)
		if err != nil {
			s.report(Progress{ChainID: chainID, Stage: StageComplete, Err: err})
			return nil, err
		}
		all = append(all, candidates...)
		s.report(Progress{ChainID: chainID, Stage: StageComplete, Message: fmt.Sprintf("%d vaults qualified", len(candidates))})
	}

	return rank.Rank(all, s.cfg.Limit), nil
}

func (s *LeaderboardService) scanChain(ctx context.Context, chainID int, resolver *exposure.Resolver) ([]rank.Candidate, error) {
	s.report(Progress{ChainID: chainID, Stage: StageVaults, Message: "fetching vault list"})

	vaults, err := s.api.FetchVaults(ctx, chainID)
	if err != nil {
		return nil, err
	}

	s.report(Progress{ChainID: chainID, Stage: StageScreen, Total: len(vaults)})

	var screened []*rank.Candidate
	for i := range vaults {
		if candidate, ok := rank.Screen(&vaults[i], chainID, s.cfg.LiquidityFloor); ok {
			screened = append(screened, candidate)
		}
	}
	logger.Info("Chain %d: %d of %d vaults passed record filters", chainID, len(screened), len(vaults))

	s.report(Progress{ChainID: chainID, Stage: StageExposure, Total: len(screened)})

	// Exposure resolution is independent per vault: the resolver converts
	// fetch failures to an unknown result, so no goroutine ever returns an
	// error and one unresolved vault cannot cancel the others. The errgroup
	// only bounds concurrency.
	passed := make([]bool, len(screened))
	var done int
	var mu sync.Mutex

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.cfg.ResolveConcurrency)
	for i, candidate := range screened {
		i, candidate := i, candidate
		g.Go(func() error {
			res := resolver.Resolve(gctx, candidate.Vault.Address, chainID)
			if rank.ApplyExposure(candidate, res, chainID) {
				passed[i] = true
			} else {
				logger.Warn("Excluding vault %s on chain %d: exposure unresolved or outside allowlist", candidate.Vault.Address, chainID)
			}

			mu.Lock()
			done++
			current := done
			mu.Unlock()
			s.report(Progress{ChainID: chainID, Stage: StageExposure, Done: current, Total: len(screened)})
			return nil
		})
	}
	g.Wait()

	var candidates []rank.Candidate
	for i, ok := range passed {
		if ok {
			candidates = append(candidates, *screened[i])
		}
	}
	return candidates, nil
}

func (s *LeaderboardService) report(p Progress) {
	if s.OnProgress != nil {
		s.OnProgress(p)
	}
}

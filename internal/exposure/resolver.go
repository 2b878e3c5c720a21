// Package exposure resolves the set of underlying asset addresses a vault is
// economically exposed to by walking its adapter graph. The policy is
// exclude-on-doubt: any gap that cannot be proven safe marks the vault
// unknown instead of guessing.
package exposure

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"golang.org/x/sync/singleflight"

	"github.com/kelsos/vaultboard/internal/logger"
	"github.com/kelsos/vaultboard/internal/models"
)

// minPositionsFirst is the floor for the positions page-size halving retry
// on a failed adapter fetch.
const minPositionsFirst = 25

// AdapterFetcher provides the adapter set of a single vault
type AdapterFetcher interface {
	FetchAdapters(ctx context.Context, address string, chainID, positionsFirst int) ([]models.Adapter, error)
}

// Set is a set of lowercase asset addresses
type Set map[string]struct{}

// Contains reports membership of a lowercase address
func (s Set) Contains(address string) bool {
	_, ok := s[address]
	return ok
}

// Sorted is only used by tests and logging; order is not semantic.
func (s Set) Sorted() []string {
	addrs := make([]string, 0, len(s))
	for addr := range s {
		addrs = append(addrs, addr)
	}
	sort.Strings(addrs)
	return addrs
}

// Result is the outcome of resolving one vault. Unknown means the exposure
// could not be established; callers must exclude the vault rather than use
// a partial set.
type Result struct {
	Assets  Set
	Unknown bool
}

type nodeKey struct {
	chainID int
	address string
}

func (k nodeKey) String() string {
	return fmt.Sprintf("%d:%s", k.chainID, k.address)
}

// Resolver walks vault adapter graphs with cycle protection and a
// run-scoped memo table. Safe for concurrent use: the memo is shared under a
// mutex and concurrent top-level resolutions of the same vault share one
// fetch via singleflight. Create a fresh Resolver per leaderboard run; the
// memo must not outlive one run since upstream data is live.
type Resolver struct {
	fetcher        AdapterFetcher
	positionsFirst int

	mu    sync.Mutex
	memo  map[nodeKey]Result
	group singleflight.Group
}

// NewResolver creates a resolver for a single leaderboard run
func NewResolver(fetcher AdapterFetcher, positionsFirst int) *Resolver {
	if positionsFirst <= 0 {
		positionsFirst = 50
	}
	return &Resolver{
		fetcher:        fetcher,
		positionsFirst: positionsFirst,
		memo:           make(map[nodeKey]Result),
	}
}

// Resolve determines the exposure set of a vault. Fetch failures are
// converted to Unknown, never propagated; one unresolved vault must not
// abort the surrounding run.
func (r *Resolver) Resolve(ctx context.Context, address string, chainID int) Result {
	key := nodeKey{chainID: chainID, address: strings.ToLower(address)}
	if res, ok := r.cached(key); ok {
		return res
	}

	// Only top-level resolutions go through singleflight. Nested recursive
	// calls bypass it (they still hit the memo), so a cycle split across two
	// goroutines cannot deadlock two flights against each other.
	v, _, _ := r.group.Do(key.String(), func() (interface{}, error) {
		return r.resolve(ctx, key, map[nodeKey]bool{}), nil
	})
	return v.(Result)
}

func (r *Resolver) cached(key nodeKey) (Result, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	res, ok := r.memo[key]
	return res, ok
}

// store memoizes a result with first-write-wins semantics so racing
// resolutions of the same node settle on one answer for the run.
func (r *Resolver) store(key nodeKey, res Result) Result {
	r.mu.Lock()
	defer r.mu.Unlock()
	if existing, ok := r.memo[key]; ok {
		return existing
	}
	r.memo[key] = res
	return res
}

func (r *Resolver) resolve(ctx context.Context, key nodeKey, seen map[nodeKey]bool) Result {
	if res, ok := r.cached(key); ok {
		return res
	}
	if seen[key] {
		// Revisiting an ancestor of the current resolution chain: treat the
		// branch as unresolvable instead of looping.
		return r.store(key, Result{Assets: Set{}, Unknown: true})
	}
	seen[key] = true

	adapters, positionsLimit, ok := r.fetchAdapters(ctx, key)
	if !ok {
		return r.store(key, Result{Assets: Set{}, Unknown: true})
	}

	assets := Set{}
	unknown := false

	for _, adapter := range adapters {
		switch adapter.Typename {
		case models.AdapterMetaMorpho:
			if !r.resolveNested(ctx, key, adapter.MetaMorpho, seen, assets) {
				unknown = true
			}
		case models.AdapterMorphoMarketV1:
			if !collectMarketAssets(adapter.Positions, positionsLimit, assets) {
				unknown = true
			}
		default:
			unknown = true
		}
	}

	// An exposure-free vault cannot be asserted safe.
	if len(assets) == 0 {
		unknown = true
	}

	return r.store(key, Result{Assets: assets, Unknown: unknown})
}

// fetchAdapters fetches a node's adapters, halving positionsFirst on failure
// until the floor is reached. The limit actually used is returned so the
// truncation check compares against the page size that was requested.
func (r *Resolver) fetchAdapters(ctx context.Context, key nodeKey) ([]models.Adapter, int, bool) {
	limit := r.positionsFirst
	for {
		adapters, err := r.fetcher.FetchAdapters(ctx, key.address, key.chainID, limit)
		if err == nil {
			return adapters, limit, true
		}
		if limit > minPositionsFirst {
			next := limit / 2
			if next < minPositionsFirst {
				next = minPositionsFirst
			}
			logger.Warn("Exposure query failed for %s on chain %d: %v; retrying with positionsFirst=%d", key.address, key.chainID, err, next)
			limit = next
			continue
		}
		logger.Warn("Exposure query failed for %s on chain %d: %v", key.address, key.chainID, err)
		return nil, 0, false
	}
}

// resolveNested handles a MetaMorpho adapter: recurse into the nested vault,
// falling back to its single declared asset address when the nested vault
// itself cannot be resolved. Returns false when neither path yields exposure.
func (r *Resolver) resolveNested(ctx context.Context, parent nodeKey, meta *models.MetaMorpho, seen map[nodeKey]bool, assets Set) bool {
	var nestedAddr, assetAddr string
	if meta != nil {
		nestedAddr = strings.ToLower(meta.Address)
		if meta.Asset != nil {
			assetAddr = strings.ToLower(meta.Asset.Address)
		}
	}

	if nestedAddr != "" {
		nested := r.resolve(ctx, nodeKey{chainID: parent.chainID, address: nestedAddr}, seen)
		if !nested.Unknown {
			for addr := range nested.Assets {
				assets[addr] = struct{}{}
			}
			return true
		}
	}

	if assetAddr != "" {
		assets[assetAddr] = struct{}{}
		logger.Warn("Nested vault %s on chain %d unresolved; falling back to its declared asset %s", nestedAddr, parent.chainID, assetAddr)
		return true
	}

	return false
}

// collectMarketAssets unions loan and collateral addresses across a market
// adapter's positions. A full page means the listing may be truncated, and a
// position missing an address cannot be proven safe; both report false while
// still collecting what was readable.
func collectMarketAssets(page *models.PositionPage, positionsLimit int, assets Set) bool {
	var positions []models.Position
	if page != nil {
		positions = page.Items
	}

	complete := true
	if len(positions) >= positionsLimit {
		complete = false
	}

	for _, pos := range positions {
		if pos.Market == nil {
			complete = false
			continue
		}
		for _, ref := range []*models.AssetRef{pos.Market.LoanAsset, pos.Market.CollateralAsset} {
			if ref == nil || ref.Address == "" {
				complete = false
				continue
			}
			assets[strings.ToLower(ref.Address)] = struct{}{}
		}
	}
	return complete
}

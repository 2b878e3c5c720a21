// Package morpho wraps the upstream GraphQL queries used by the leaderboard:
// the paginated vaultV2s listing and the per-vault adapter lookup.
package morpho

import (
	"context"
	"fmt"

	"github.com/kelsos/vaultboard/internal/client"
	"github.com/kelsos/vaultboard/internal/config"
	"github.com/kelsos/vaultboard/internal/logger"
	"github.com/kelsos/vaultboard/internal/models"
)

const vaultsQuery = `
query VaultV2s($chainIds: [Int!], $first: Int!, $skip: Int!) {
  vaultV2s(
    where: { chainId_in: $chainIds }
    first: $first
    skip: $skip
    orderBy: TotalAssetsUsd
    orderDirection: Desc
  ) {
    items {
      address
      name
      symbol
      chain { id network }
      asset { address symbol decimals }
      totalAssets
      totalAssetsUsd
      netApy
      whitelisted
      warnings { type level }
    }
    pageInfo { countTotal count skip limit }
  }
}
`

const exposureQuery = `
query VaultV2Exposure($address: String!, $chainId: Int!, $positionsFirst: Int!) {
  vaultV2ByAddress(address: $address, chainId: $chainId) {
    adapters {
      items {
        __typename
        type
        ... on MetaMorphoAdapter {
          metaMorpho {
            address
            asset { address symbol }
          }
        }
        ... on MorphoMarketV1Adapter {
          positions(first: $positionsFirst) {
            items {
              market {
                loanAsset { address symbol }
                collateralAsset { address symbol }
              }
            }
          }
        }
      }
    }
  }
}
`

// minPageSize is the floor for the page-size halving fallback on the
// vault listing.
const minPageSize = 50

// API executes the leaderboard's upstream queries
type API struct {
	client   *client.GraphQLClient
	pageSize int
	skip     int
}

// NewAPI creates an API bound to a client and pagination settings
func NewAPI(gql *client.GraphQLClient, cfg *config.Config) *API {
	return &API{
		client:   gql,
		pageSize: cfg.PageSize,
		skip:     cfg.Skip,
	}
}

// FetchVaults retrieves every vault record for a chain, looping pages until
// a short page is returned. When a page fetch fails with a transient error
// and the page size is still above the floor, the chain is refetched from
// the start with a halved page size.
func (a *API) FetchVaults(ctx context.Context, chainID int) ([]models.Vault, error) {
	pageSize := a.pageSize
	for {
		items, err := a.fetchVaultPages(ctx, chainID, pageSize)
		if err != nil {
			if client.IsRetryable(err) && pageSize > minPageSize {
				newSize := pageSize / 2
				if newSize < minPageSize {
					newSize = minPageSize
				}
				logger.Warn("Vault list query failed on chain %d with page size %d; retrying with %d", chainID, pageSize, newSize)
				pageSize = newSize
				continue
			}
			return nil, fmt.Errorf("failed to fetch vaults for chain %d: %w", chainID, err)
		}
		logger.Info("Fetched %d vaults on chain %d", len(items), chainID)
		return items, nil
	}
}

func (a *API) fetchVaultPages(ctx context.Context, chainID, pageSize int) ([]models.Vault, error) {
	var items []models.Vault
	for page := 0; ; page++ {
		offset := a.skip + page*pageSize
		data, err := client.Query[models.VaultsData](ctx, a.client, vaultsQuery, map[string]interface{}{
			"chainIds": []int{chainID},
			"first":    pageSize,
			"skip":     offset,
		})
		if err != nil {
			return nil, err
		}

		batch := data.VaultV2s.Items
		items = append(items, batch...)
		logger.Debug("Fetched page %d for chain %d: %d vaults", page, chainID, len(batch))

		if len(batch) < pageSize {
			return items, nil
		}
	}
}

// FetchAdapters retrieves the adapter set of a single vault. A vault the
// upstream does not know yields an empty adapter list, not an error.
func (a *API) FetchAdapters(ctx context.Context, address string, chainID, positionsFirst int) ([]models.Adapter, error) {
	data, err := client.Query[models.VaultByAddressData](ctx, a.client, exposureQuery, map[string]interface{}{
		"address":        address,
		"chainId":        chainID,
		"positionsFirst": positionsFirst,
	})
	if err != nil {
		return nil, err
	}

	if data.VaultV2ByAddress == nil || data.VaultV2ByAddress.Adapters == nil {
		return nil, nil
	}
	return data.VaultV2ByAddress.Adapters.Items, nil
}

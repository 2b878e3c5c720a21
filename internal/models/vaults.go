package models

import "github.com/shopspring/decimal"

// Adapter typenames returned by the vaultV2ByAddress adapters query.
// Anything outside this set is an unknown adapter kind.
const (
	AdapterMetaMorpho     = "MetaMorphoAdapter"
	AdapterMorphoMarketV1 = "MorphoMarketV1Adapter"
)

// ChainRef identifies the chain a vault lives on
type ChainRef struct {
	ID      int    `json:"id"`
	Network string `json:"network"`
}

// Asset describes a vault's deposit token. Decimals defaults to zero when
// the upstream omits it.
type Asset struct {
	Address  string `json:"address"`
	Symbol   string `json:"symbol"`
	Decimals int    `json:"decimals"`
}

// Warning is an upstream risk flag attached to a vault
type Warning struct {
	Type  string `json:"type"`
	Level string `json:"level"`
}

// Vault is one vaultV2s record, taken verbatim from the upstream API.
// Numeric fields are pointers: the API distinguishes absent/null from zero,
// and the filter rules treat them differently. Decimal fields absorb the
// BigInt-as-string vs plain-number serialization split across API versions.
type Vault struct {
	Address        string           `json:"address"`
	Name           string           `json:"name"`
	Symbol         string           `json:"symbol"`
	Chain          ChainRef         `json:"chain"`
	Asset          *Asset           `json:"asset"`
	TotalAssets    *decimal.Decimal `json:"totalAssets"`
	TotalAssetsUsd *decimal.Decimal `json:"totalAssetsUsd"`
	NetApy         *decimal.Decimal `json:"netApy"`
	Whitelisted    bool             `json:"whitelisted"`
	Warnings       []Warning        `json:"warnings"`
}

// DisplayName returns the vault's name, falling back to symbol, then address
func (v *Vault) DisplayName() string {
	if v.Name != "" {
		return v.Name
	}
	if v.Symbol != "" {
		return v.Symbol
	}
	return v.Address
}

// PageInfo carries upstream pagination counters
type PageInfo struct {
	CountTotal int `json:"countTotal"`
	Count      int `json:"count"`
	Skip       int `json:"skip"`
	Limit      int `json:"limit"`
}

// VaultPage is one page of the vaultV2s listing
type VaultPage struct {
	Items    []Vault  `json:"items"`
	PageInfo PageInfo `json:"pageInfo"`
}

// VaultsData is the data payload of the vault listing query
type VaultsData struct {
	VaultV2s VaultPage `json:"vaultV2s"`
}

// AssetRef is a bare token reference inside adapter records
type AssetRef struct {
	Address string `json:"address"`
	Symbol  string `json:"symbol"`
}

// MetaMorpho describes the nested vault behind a MetaMorphoAdapter
type MetaMorpho struct {
	Address string    `json:"address"`
	Asset   *AssetRef `json:"asset"`
}

// Market is a loan/collateral pair behind a market position
type Market struct {
	LoanAsset       *AssetRef `json:"loanAsset"`
	CollateralAsset *AssetRef `json:"collateralAsset"`
}

// Position is one market position held through a MorphoMarketV1Adapter
type Position struct {
	Market *Market `json:"market"`
}

// PositionPage is the paginated positions list of a market adapter
type PositionPage struct {
	Items []Position `json:"items"`
}

// Adapter is one entry of a vault's adapter set, tagged by GraphQL typename.
// Only the fields matching the typename are populated.
type Adapter struct {
	Typename   string        `json:"__typename"`
	Type       string        `json:"type"`
	MetaMorpho *MetaMorpho   `json:"metaMorpho"`
	Positions  *PositionPage `json:"positions"`
}

// AdapterPage wraps a vault's adapter items
type AdapterPage struct {
	Items []Adapter `json:"items"`
}

// VaultAdapters is the adapters portion of a single-vault lookup
type VaultAdapters struct {
	Adapters *AdapterPage `json:"adapters"`
}

// VaultByAddressData is the data payload of the exposure query.
// VaultV2ByAddress is nil when the vault is unknown upstream.
type VaultByAddressData struct {
	VaultV2ByAddress *VaultAdapters `json:"vaultV2ByAddress"`
}

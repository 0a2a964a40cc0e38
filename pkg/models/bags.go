package models

import "encoding/json"

// APIEnvelope is the response wrapper used by every Bags API endpoint
type APIEnvelope struct {
	Success  bool            `json:"success"`
	Response json.RawMessage `json:"response,omitempty"`
	Error    string          `json:"error,omitempty"`
}

// ClaimablePosition represents a claimable fee position from the Bags API
type ClaimablePosition struct {
	TokenMint          string `json:"tokenMint"`
	PoolConfigKey      string `json:"poolConfigKey"`
	FeeClaimerVault    string `json:"feeClaimerVault"`
	ClaimableAmount    string `json:"claimableAmount"`    // base units (lamports)
	ClaimableAmountUsd string `json:"claimableAmountUsd"`
}

// ClaimTransaction is a pre-built claim transaction returned by the API
type ClaimTransaction struct {
	Transaction   string `json:"transaction"` // base58 serialized
	PoolConfigKey string `json:"poolConfigKey"`
}

// FeeShareWallet represents fee share wallet info for a token
type FeeShareWallet struct {
	Wallet     string `json:"wallet"`
	Username   string `json:"username"`
	RoyaltyBps int    `json:"royaltyBps"`
	IsCreator  bool   `json:"isCreator"`
}

// TokenLifetimeFees represents lifetime fee totals for a token
type TokenLifetimeFees struct {
	TokenMint             string `json:"tokenMint"`
	TotalFeesCollected    string `json:"totalFeesCollected"`
	TotalFeesCollectedUsd string `json:"totalFeesCollectedUsd"`
}

// TokenClaimStats represents per-holder claim statistics for a token
type TokenClaimStats struct {
	Username         string `json:"username"`
	Pfp              string `json:"pfp"`
	RoyaltyBps       int    `json:"royaltyBps"`
	IsCreator        bool   `json:"isCreator"`
	Wallet           string `json:"wallet"`
	TotalClaimed     string `json:"totalClaimed"`
	Provider         string `json:"provider"`
	ProviderUsername string `json:"providerUsername"`
}

// TradeQuote represents a swap quote from the Bags trade API
type TradeQuote struct {
	InputAmount  string `json:"inputAmount"`
	OutputAmount string `json:"outputAmount"`
	PriceImpact  string `json:"priceImpact"` // percentage
	Fee          string `json:"fee"`
}

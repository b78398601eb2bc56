// Package hapicore defines the chain-agnostic HAPI Core client interfaces.
package hapicore

import (
	"context"

	"github.com/hapi-protocol/hapi-core/pkg/types"
)

// HapiCore is implemented by every chain client
type HapiCore interface {
	// IsValidAddress checks an address against the network's format
	IsValidAddress(address string) error

	// === Authority ===

	// SetAuthority transfers contract authority
	SetAuthority(ctx context.Context, address string) (types.Tx, error)
	// GetAuthority returns the current authority
	GetAuthority(ctx context.Context) (string, error)

	// === Configuration ===

	UpdateStakeConfiguration(ctx context.Context, cfg types.StakeConfiguration) (types.Tx, error)
	GetStakeConfiguration(ctx context.Context) (types.StakeConfiguration, error)
	UpdateRewardConfiguration(ctx context.Context, cfg types.RewardConfiguration) (types.Tx, error)
	GetRewardConfiguration(ctx context.Context) (types.RewardConfiguration, error)

	// === Reporter ===

	CreateReporter(ctx context.Context, in types.CreateReporterInput) (types.Tx, error)
	UpdateReporter(ctx context.Context, in types.UpdateReporterInput) (types.Tx, error)
	GetReporter(ctx context.Context, id types.UUID) (types.Reporter, error)
	GetReporterCount(ctx context.Context) (uint64, error)
	GetReporters(ctx context.Context, skip, take uint64) ([]types.Reporter, error)
	// ActivateReporter stakes the role's amount for the signer's reporter
	ActivateReporter(ctx context.Context) (types.Tx, error)
	DeactivateReporter(ctx context.Context) (types.Tx, error)
	// UnstakeReporter withdraws the stake after the unlock duration
	UnstakeReporter(ctx context.Context) (types.Tx, error)

	// === Case ===

	CreateCase(ctx context.Context, in types.CreateCaseInput) (types.Tx, error)
	UpdateCase(ctx context.Context, in types.UpdateCaseInput) (types.Tx, error)
	GetCase(ctx context.Context, id types.UUID) (types.Case, error)
	GetCaseCount(ctx context.Context) (uint64, error)
	GetCases(ctx context.Context, skip, take uint64) ([]types.Case, error)

	// === Address ===

	CreateAddress(ctx context.Context, in types.CreateAddressInput) (types.Tx, error)
	UpdateAddress(ctx context.Context, in types.UpdateAddressInput) (types.Tx, error)
	ConfirmAddress(ctx context.Context, address string) (types.Tx, error)
	GetAddress(ctx context.Context, address string) (types.Address, error)
	GetAddressCount(ctx context.Context) (uint64, error)
	GetAddresses(ctx context.Context, skip, take uint64) ([]types.Address, error)

	// === Asset ===

	CreateAsset(ctx context.Context, in types.CreateAssetInput) (types.Tx, error)
	UpdateAsset(ctx context.Context, in types.UpdateAssetInput) (types.Tx, error)
	ConfirmAsset(ctx context.Context, address, assetID string) (types.Tx, error)
	GetAsset(ctx context.Context, address, assetID string) (types.Asset, error)
	GetAssetCount(ctx context.Context) (uint64, error)
	GetAssets(ctx context.Context, skip, take uint64) ([]types.Asset, error)
}

// TokenContract is the fungible token used for stakes and rewards
type TokenContract interface {
	// IsApproveNeeded reports whether the chain requires an allowance before staking
	IsApproveNeeded() bool
	Transfer(ctx context.Context, to string, amount types.Amount) (types.Tx, error)
	Approve(ctx context.Context, spender string, amount types.Amount) (types.Tx, error)
	Balance(ctx context.Context, address string) (types.Amount, error)
}

// Options configures a client
type Options struct {
	Network         types.Network
	ProviderURL     string
	ContractAddress string
	PrivateKey      string
	ChainID         uint64
	AccountID       string // NEAR signer account
}

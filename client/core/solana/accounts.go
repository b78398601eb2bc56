package solana

import (
	"math/big"

	bin "github.com/gagliardetto/binary"
	"github.com/gagliardetto/solana-go"

	"github.com/hapi-protocol/hapi-core/pkg/idl"
	"github.com/hapi-protocol/hapi-core/pkg/types"
)

// u128 is a little-endian Borsh u128
type u128 [16]byte

func (v u128) UUID() types.UUID { return types.UUIDFromLE(v) }

func u128FromUUID(id types.UUID) u128 { return u128(id.LittleEndian()) }

// StakeInfo is the network stake configuration
type StakeInfo struct {
	UnlockDuration uint64
	ValidatorStake uint64
	TracerStake    uint64
	PublisherStake uint64
	AuthorityStake uint64
}

// RewardInfo is the network reward configuration
type RewardInfo struct {
	AddressTracerReward       uint64
	AddressConfirmationReward uint64
	AssetTracerReward         uint64
	AssetConfirmationReward   uint64
}

// NetworkAccount is the on-chain network state
type NetworkAccount struct {
	Version    uint16
	Bump       uint8
	Authority  solana.PublicKey
	Name       [32]byte
	Schema     uint8
	StakeMint  solana.PublicKey
	StakeInfo  StakeInfo
	RewardMint solana.PublicKey
	RewardInfo RewardInfo
}

// ReporterAccount is the on-chain reporter state
type ReporterAccount struct {
	Version         uint16
	Bump            uint8
	ID              u128
	Network         solana.PublicKey
	Account         solana.PublicKey
	Name            string
	Role            uint8
	Status          uint8
	Stake           uint64
	UnlockTimestamp uint64
	URL             string
}

// CaseAccount is the on-chain case state
type CaseAccount struct {
	Version  uint16
	Bump     uint8
	ID       u128
	Network  solana.PublicKey
	Name     string
	Reporter solana.PublicKey
	Status   uint8
	URL      string
}

// AddressAccount is the on-chain state of a reported address
type AddressAccount struct {
	Version       uint16
	Bump          uint8
	Network       solana.PublicKey
	Address       [idl.AddressLength]byte
	Category      uint8
	RiskScore     uint8
	CaseID        u128
	ReporterID    u128
	Confirmations uint8
}

// AssetAccount is the on-chain state of a reported asset
type AssetAccount struct {
	Version       uint16
	Bump          uint8
	Network       solana.PublicKey
	Address       [idl.AddressLength]byte
	ID            [32]byte
	Category      uint8
	RiskScore     uint8
	CaseID        u128
	ReporterID    u128
	Confirmations uint8
}

// ConfirmationAccount records one reporter's confirmation
type ConfirmationAccount struct {
	Version    uint16
	Bump       uint8
	Network    solana.PublicKey
	Account    solana.PublicKey
	ReporterID u128
}

// DecodeAccount checks the Anchor discriminator of name and Borsh-decodes the rest into v
func DecodeAccount(name string, data []byte, v any) error {
	if len(data) < idl.DiscriminatorLength {
		return types.NewError(types.KindDeserialization, "%s: account data too short", name)
	}
	if idl.Discriminator(data[:idl.DiscriminatorLength]) != idl.AccountDiscriminator(name) {
		return types.NewError(types.KindDeserialization, "%s: discriminator mismatch", name)
	}
	if err := bin.NewBorshDecoder(data[idl.DiscriminatorLength:]).Decode(v); err != nil {
		return types.WrapError(types.KindDeserialization, err, "%s", name)
	}
	return nil
}

// EncodeAccount is the inverse of DecodeAccount
func EncodeAccount(name string, v any) ([]byte, error) {
	body, err := bin.MarshalBorsh(v)
	if err != nil {
		return nil, types.WrapError(types.KindInvalidData, err, "%s", name)
	}
	d := idl.AccountDiscriminator(name)
	return append(d[:], body...), nil
}

func (n NetworkAccount) stakeConfiguration() types.StakeConfiguration {
	return types.StakeConfiguration{
		Token:          n.StakeMint.String(),
		UnlockDuration: n.StakeInfo.UnlockDuration,
		ValidatorStake: types.NewAmount(n.StakeInfo.ValidatorStake),
		TracerStake:    types.NewAmount(n.StakeInfo.TracerStake),
		PublisherStake: types.NewAmount(n.StakeInfo.PublisherStake),
		AuthorityStake: types.NewAmount(n.StakeInfo.AuthorityStake),
	}
}

func (n NetworkAccount) rewardConfiguration() types.RewardConfiguration {
	return types.RewardConfiguration{
		Token:                     n.RewardMint.String(),
		AddressConfirmationReward: types.NewAmount(n.RewardInfo.AddressConfirmationReward),
		AddressTracerReward:       types.NewAmount(n.RewardInfo.AddressTracerReward),
		AssetConfirmationReward:   types.NewAmount(n.RewardInfo.AssetConfirmationReward),
		AssetTracerReward:         types.NewAmount(n.RewardInfo.AssetTracerReward),
	}
}

func (r ReporterAccount) toReporter() (types.Reporter, error) {
	role, err := types.ReporterRoleFromByte(r.Role)
	if err != nil {
		return types.Reporter{}, err
	}
	status, err := types.ReporterStatusFromByte(r.Status)
	if err != nil {
		return types.Reporter{}, err
	}
	return types.Reporter{
		ID:              r.ID.UUID(),
		Account:         r.Account.String(),
		Role:            role,
		Status:          status,
		Name:            r.Name,
		URL:             r.URL,
		Stake:           types.NewAmount(r.Stake),
		UnlockTimestamp: r.UnlockTimestamp,
	}, nil
}

func (c CaseAccount) toCase(reporterID types.UUID) (types.Case, error) {
	status, err := types.CaseStatusFromByte(c.Status)
	if err != nil {
		return types.Case{}, err
	}
	return types.Case{
		ID:         c.ID.UUID(),
		Name:       c.Name,
		URL:        c.URL,
		Status:     status,
		ReporterID: reporterID,
	}, nil
}

func (a AddressAccount) toAddress() (types.Address, error) {
	category, err := types.CategoryFromByte(a.Category)
	if err != nil {
		return types.Address{}, err
	}
	return types.Address{
		Address:       trimNUL(a.Address[:]),
		CaseID:        a.CaseID.UUID(),
		ReporterID:    a.ReporterID.UUID(),
		Risk:          a.RiskScore,
		Category:      category,
		Confirmations: uint64(a.Confirmations),
	}, nil
}

func (a AssetAccount) toAsset() (types.Asset, error) {
	category, err := types.CategoryFromByte(a.Category)
	if err != nil {
		return types.Asset{}, err
	}
	assetID := trimNUL(a.ID[:])
	if _, ok := new(big.Int).SetString(assetID, 10); !ok {
		return types.Asset{}, types.NewError(types.KindAssetIDParse, "invalid asset id %q", assetID)
	}
	return types.Asset{
		Address:       trimNUL(a.Address[:]),
		AssetID:       assetID,
		CaseID:        a.CaseID.UUID(),
		ReporterID:    a.ReporterID.UUID(),
		Risk:          a.RiskScore,
		Category:      category,
		Confirmations: uint64(a.Confirmations),
	}, nil
}

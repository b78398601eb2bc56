package evm

import (
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"

	"github.com/hapi-protocol/hapi-core/pkg/idl"
	"github.com/hapi-protocol/hapi-core/pkg/types"
)

var (
	hapiCoreABI = mustParseABI(idl.HapiCoreABI)
	erc20ABI    = mustParseABI(idl.ERC20ABI)
)

func mustParseABI(raw string) abi.ABI {
	parsed, err := abi.JSON(strings.NewReader(raw))
	if err != nil {
		panic(err)
	}
	return parsed
}

// HapiCoreABI returns the parsed contract ABI
func HapiCoreABI() abi.ABI {
	return hapiCoreABI
}

// Contract tuples. Field names follow abi.ToCamelCase of the component names.

type evmReporter struct {
	Id              *big.Int
	Account         common.Address
	Name            string
	Url             string
	Role            uint8
	Status          uint8
	Stake           *big.Int
	UnlockTimestamp *big.Int
}

type evmCase struct {
	Id         *big.Int
	Name       string
	ReporterId *big.Int
	Status     uint8
	Url        string
}

type evmAddress struct {
	Addr          common.Address
	CaseId        *big.Int
	ReporterId    *big.Int
	Confirmations *big.Int
	Risk          uint8
	Category      uint8
}

type evmAsset struct {
	Addr          common.Address
	AssetId       *big.Int
	CaseId        *big.Int
	ReporterId    *big.Int
	Confirmations *big.Int
	Risk          uint8
	Category      uint8
}

type evmStakeConfiguration struct {
	Token          common.Address
	UnlockDuration *big.Int
	ValidatorStake *big.Int
	TracerStake    *big.Int
	PublisherStake *big.Int
	AuthorityStake *big.Int
}

type evmRewardConfiguration struct {
	Token                     common.Address
	AddressConfirmationReward *big.Int
	AddressTracerReward       *big.Int
	AssetConfirmationReward   *big.Int
	AssetTracerReward         *big.Int
}

func (r evmReporter) toReporter() (types.Reporter, error) {
	id, err := types.UUIDFromBig(r.Id)
	if err != nil {
		return types.Reporter{}, err
	}
	role, err := types.ReporterRoleFromByte(r.Role)
	if err != nil {
		return types.Reporter{}, err
	}
	status, err := types.ReporterStatusFromByte(r.Status)
	if err != nil {
		return types.Reporter{}, err
	}
	stake, err := types.AmountFromBig(r.Stake)
	if err != nil {
		return types.Reporter{}, err
	}
	return types.Reporter{
		ID:              id,
		Account:         r.Account.Hex(),
		Role:            role,
		Status:          status,
		Name:            r.Name,
		URL:             r.Url,
		Stake:           stake,
		UnlockTimestamp: bigToUint64(r.UnlockTimestamp),
	}, nil
}

func (c evmCase) toCase() (types.Case, error) {
	id, err := types.UUIDFromBig(c.Id)
	if err != nil {
		return types.Case{}, err
	}
	reporterID, err := types.UUIDFromBig(c.ReporterId)
	if err != nil {
		return types.Case{}, err
	}
	status, err := types.CaseStatusFromByte(c.Status)
	if err != nil {
		return types.Case{}, err
	}
	return types.Case{ID: id, Name: c.Name, URL: c.Url, Status: status, ReporterID: reporterID}, nil
}

func (a evmAddress) toAddress() (types.Address, error) {
	caseID, err := types.UUIDFromBig(a.CaseId)
	if err != nil {
		return types.Address{}, err
	}
	reporterID, err := types.UUIDFromBig(a.ReporterId)
	if err != nil {
		return types.Address{}, err
	}
	category, err := types.CategoryFromByte(a.Category)
	if err != nil {
		return types.Address{}, err
	}
	return types.Address{
		Address:       a.Addr.Hex(),
		CaseID:        caseID,
		ReporterID:    reporterID,
		Risk:          a.Risk,
		Category:      category,
		Confirmations: bigToUint64(a.Confirmations),
	}, nil
}

func (a evmAsset) toAsset() (types.Asset, error) {
	caseID, err := types.UUIDFromBig(a.CaseId)
	if err != nil {
		return types.Asset{}, err
	}
	reporterID, err := types.UUIDFromBig(a.ReporterId)
	if err != nil {
		return types.Asset{}, err
	}
	category, err := types.CategoryFromByte(a.Category)
	if err != nil {
		return types.Asset{}, err
	}
	assetID := "0"
	if a.AssetId != nil {
		assetID = a.AssetId.String()
	}
	return types.Asset{
		Address:       a.Addr.Hex(),
		AssetID:       assetID,
		CaseID:        caseID,
		ReporterID:    reporterID,
		Risk:          a.Risk,
		Category:      category,
		Confirmations: bigToUint64(a.Confirmations),
	}, nil
}

func (c evmStakeConfiguration) toStakeConfiguration() (types.StakeConfiguration, error) {
	out := types.StakeConfiguration{
		Token:          c.Token.Hex(),
		UnlockDuration: bigToUint64(c.UnlockDuration),
	}
	var err error
	if out.ValidatorStake, err = types.AmountFromBig(c.ValidatorStake); err != nil {
		return out, err
	}
	if out.TracerStake, err = types.AmountFromBig(c.TracerStake); err != nil {
		return out, err
	}
	if out.PublisherStake, err = types.AmountFromBig(c.PublisherStake); err != nil {
		return out, err
	}
	if out.AuthorityStake, err = types.AmountFromBig(c.AuthorityStake); err != nil {
		return out, err
	}
	return out, nil
}

func (c evmRewardConfiguration) toRewardConfiguration() (types.RewardConfiguration, error) {
	out := types.RewardConfiguration{Token: c.Token.Hex()}
	var err error
	if out.AddressConfirmationReward, err = types.AmountFromBig(c.AddressConfirmationReward); err != nil {
		return out, err
	}
	if out.AddressTracerReward, err = types.AmountFromBig(c.AddressTracerReward); err != nil {
		return out, err
	}
	if out.AssetConfirmationReward, err = types.AmountFromBig(c.AssetConfirmationReward); err != nil {
		return out, err
	}
	if out.AssetTracerReward, err = types.AmountFromBig(c.AssetTracerReward); err != nil {
		return out, err
	}
	return out, nil
}

func bigToUint64(v *big.Int) uint64 {
	if v == nil || !v.IsUint64() {
		return 0
	}
	return v.Uint64()
}

// parseAssetID parses a decimal uint256 asset id
func parseAssetID(s string) (*big.Int, error) {
	id, ok := new(big.Int).SetString(strings.TrimSpace(s), 10)
	if !ok || id.Sign() < 0 || id.BitLen() > 256 {
		return nil, types.NewError(types.KindAssetIDParse, "invalid asset id %q", s)
	}
	return id, nil
}

// parseAddress parses a hex EVM address
func parseAddress(field, s string) (common.Address, error) {
	if !common.IsHexAddress(s) {
		return common.Address{}, types.NewError(types.KindEthAddressParse, "`%s`: invalid address %q", field, s)
	}
	return common.HexToAddress(s), nil
}

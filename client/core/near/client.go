// Package near implements the HAPI Core client for the NEAR contract.
package near

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/hapi-protocol/hapi-core/pkg/interfaces/hapicore"
	"github.com/hapi-protocol/hapi-core/pkg/types"
)

// Client talks to the HAPI Core NEAR contract
type Client struct {
	account
	network  types.Network
	contract string
}

var _ hapicore.HapiCore = (*Client)(nil)

// NewClient creates a client; writes need both a private key and an account id
func NewClient(opts hapicore.Options) (*Client, error) {
	acc, err := newAccount(opts.ProviderURL, opts.AccountID, opts.PrivateKey)
	if err != nil {
		return nil, err
	}
	contract := opts.ContractAddress
	if contract == "" {
		contract, _ = opts.Network.DefaultContractAddress()
	}
	if err := ValidateAccountID("contract_address", contract); err != nil {
		return nil, err
	}
	return &Client{account: acc, network: opts.Network, contract: contract}, nil
}

// ContractAddress returns the contract account id
func (c *Client) ContractAddress() string { return c.contract }

// SignerAddress returns the signing account id, or ""
func (c *Client) SignerAddress() string { return c.id }

// IsValidAddress checks the NEAR account id format
func (c *Client) IsValidAddress(address string) error {
	return ValidateAccountID("address", address)
}

// decimalID is a UUID carried as a decimal u128 string
type decimalID types.UUID

func (d decimalID) MarshalJSON() ([]byte, error) {
	return json.Marshal(types.UUID(d).Decimal())
}

func (d *decimalID) UnmarshalJSON(data []byte) error {
	s := strings.Trim(string(data), `"`)
	id, err := types.UUIDFromDecimal(s)
	if err != nil {
		return err
	}
	*d = decimalID(id)
	return nil
}

type reporterView struct {
	ID              decimalID            `json:"id"`
	AccountID       string               `json:"account_id"`
	Name            string               `json:"name"`
	Role            types.ReporterRole   `json:"role"`
	Status          types.ReporterStatus `json:"status"`
	Stake           types.Amount         `json:"stake"`
	URL             string               `json:"url"`
	UnlockTimestamp uint64               `json:"unlock_timestamp"`
}

func (r reporterView) toReporter() types.Reporter {
	return types.Reporter{
		ID:              types.UUID(r.ID),
		Account:         r.AccountID,
		Role:            r.Role,
		Status:          r.Status,
		Name:            r.Name,
		URL:             r.URL,
		Stake:           r.Stake,
		UnlockTimestamp: r.UnlockTimestamp,
	}
}

type caseView struct {
	ID         decimalID        `json:"id"`
	Name       string           `json:"name"`
	ReporterID decimalID        `json:"reporter_id"`
	Status     types.CaseStatus `json:"status"`
	URL        string           `json:"url"`
}

func (v caseView) toCase() types.Case {
	return types.Case{
		ID:         types.UUID(v.ID),
		Name:       v.Name,
		URL:        v.URL,
		Status:     v.Status,
		ReporterID: types.UUID(v.ReporterID),
	}
}

type addressView struct {
	Address            string         `json:"address"`
	Category           types.Category `json:"category"`
	RiskScore          uint8          `json:"risk_score"`
	CaseID             decimalID      `json:"case_id"`
	ReporterID         decimalID      `json:"reporter_id"`
	ConfirmationsCount uint64         `json:"confirmations_count"`
}

func (v addressView) toAddress() types.Address {
	return types.Address{
		Address:       v.Address,
		CaseID:        types.UUID(v.CaseID),
		ReporterID:    types.UUID(v.ReporterID),
		Risk:          v.RiskScore,
		Category:      v.Category,
		Confirmations: v.ConfirmationsCount,
	}
}

type assetView struct {
	Address            string         `json:"address"`
	ID                 json.Number    `json:"id"`
	Category           types.Category `json:"category"`
	RiskScore          uint8          `json:"risk_score"`
	CaseID             decimalID      `json:"case_id"`
	ReporterID         decimalID      `json:"reporter_id"`
	ConfirmationsCount uint64         `json:"confirmations_count"`
}

func (v assetView) toAsset() types.Asset {
	return types.Asset{
		Address:       v.Address,
		AssetID:       v.ID.String(),
		CaseID:        types.UUID(v.CaseID),
		ReporterID:    types.UUID(v.ReporterID),
		Risk:          v.RiskScore,
		Category:      v.Category,
		Confirmations: v.ConfirmationsCount,
	}
}

type page struct {
	Skip uint64 `json:"skip"`
	Take uint64 `json:"take"`
}

func (c *Client) write(ctx context.Context, method string, args any) (types.Tx, error) {
	return c.call(ctx, c.contract, method, args, types.Amount{})
}

func (c *Client) count(ctx context.Context, method string) (uint64, error) {
	var n uint64
	err := c.view(ctx, c.contract, method, nil, &n)
	return n, err
}

// === Authority ===

func (c *Client) SetAuthority(ctx context.Context, address string) (types.Tx, error) {
	if err := ValidateAccountID("authority", address); err != nil {
		return types.Tx{}, err
	}
	return c.write(ctx, "set_authority", map[string]any{"authority": address})
}

func (c *Client) GetAuthority(ctx context.Context) (string, error) {
	var authority string
	err := c.view(ctx, c.contract, "get_authority", nil, &authority)
	return authority, err
}

// === Configuration ===

func (c *Client) UpdateStakeConfiguration(ctx context.Context, cfg types.StakeConfiguration) (types.Tx, error) {
	if err := ValidateAccountID("token", cfg.Token); err != nil {
		return types.Tx{}, err
	}
	return c.write(ctx, "update_stake_configuration", map[string]any{"stake_configuration": cfg})
}

func (c *Client) GetStakeConfiguration(ctx context.Context) (types.StakeConfiguration, error) {
	var cfg types.StakeConfiguration
	err := c.view(ctx, c.contract, "get_stake_configuration", nil, &cfg)
	return cfg, err
}

func (c *Client) UpdateRewardConfiguration(ctx context.Context, cfg types.RewardConfiguration) (types.Tx, error) {
	if err := ValidateAccountID("token", cfg.Token); err != nil {
		return types.Tx{}, err
	}
	return c.write(ctx, "update_reward_configuration", map[string]any{"reward_configuration": cfg})
}

func (c *Client) GetRewardConfiguration(ctx context.Context) (types.RewardConfiguration, error) {
	var cfg types.RewardConfiguration
	err := c.view(ctx, c.contract, "get_reward_configuration", nil, &cfg)
	return cfg, err
}

// === Reporter ===

type reporterArgs struct {
	ID        decimalID `json:"id"`
	AccountID string    `json:"account_id"`
	Name      string    `json:"name"`
	Role      string    `json:"role"`
	URL       string    `json:"url"`
}

func (c *Client) writeReporter(ctx context.Context, method string, in types.CreateReporterInput) (types.Tx, error) {
	if err := in.Validate(); err != nil {
		return types.Tx{}, err
	}
	if err := ValidateAccountID("account", in.Account); err != nil {
		return types.Tx{}, err
	}
	return c.write(ctx, method, reporterArgs{
		ID:        decimalID(in.ID),
		AccountID: in.Account,
		Name:      in.Name,
		Role:      in.Role.String(),
		URL:       in.URL,
	})
}

func (c *Client) CreateReporter(ctx context.Context, in types.CreateReporterInput) (types.Tx, error) {
	return c.writeReporter(ctx, "create_reporter", in)
}

func (c *Client) UpdateReporter(ctx context.Context, in types.UpdateReporterInput) (types.Tx, error) {
	return c.writeReporter(ctx, "update_reporter", types.CreateReporterInput(in))
}

func (c *Client) GetReporter(ctx context.Context, id types.UUID) (types.Reporter, error) {
	var r reporterView
	if err := c.view(ctx, c.contract, "get_reporter", map[string]any{"id": decimalID(id)}, &r); err != nil {
		return types.Reporter{}, err
	}
	return r.toReporter(), nil
}

// GetReporterByAccount resolves a reporter from its account id
func (c *Client) GetReporterByAccount(ctx context.Context, accountID string) (types.Reporter, error) {
	var r reporterView
	if err := c.view(ctx, c.contract, "get_reporter_by_account", map[string]any{"account_id": accountID}, &r); err != nil {
		return types.Reporter{}, err
	}
	return r.toReporter(), nil
}

func (c *Client) GetReporterCount(ctx context.Context) (uint64, error) {
	return c.count(ctx, "get_reporter_count")
}

func (c *Client) GetReporters(ctx context.Context, skip, take uint64) ([]types.Reporter, error) {
	var views []reporterView
	if err := c.view(ctx, c.contract, "get_reporters", page{Skip: skip, Take: take}, &views); err != nil {
		return nil, err
	}
	out := make([]types.Reporter, 0, len(views))
	for _, v := range views {
		out = append(out, v.toReporter())
	}
	return out, nil
}

// ActivateReporter stakes through ft_transfer_call on the stake token
func (c *Client) ActivateReporter(ctx context.Context) (types.Tx, error) {
	if err := c.signer(); err != nil {
		return types.Tx{}, err
	}
	reporter, err := c.GetReporterByAccount(ctx, c.id)
	if err != nil {
		return types.Tx{}, err
	}
	cfg, err := c.GetStakeConfiguration(ctx)
	if err != nil {
		return types.Tx{}, err
	}
	amount := cfg.StakeFor(reporter.Role)
	return c.call(ctx, cfg.Token, "ft_transfer_call", map[string]any{
		"receiver_id": c.contract,
		"amount":      amount.String(),
		"msg":         "",
	}, types.NewAmount(1))
}

func (c *Client) DeactivateReporter(ctx context.Context) (types.Tx, error) {
	return c.write(ctx, "deactivate_reporter", nil)
}

func (c *Client) UnstakeReporter(ctx context.Context) (types.Tx, error) {
	return c.write(ctx, "unstake", nil)
}

// === Case ===

func (c *Client) CreateCase(ctx context.Context, in types.CreateCaseInput) (types.Tx, error) {
	if err := in.Validate(); err != nil {
		return types.Tx{}, err
	}
	return c.write(ctx, "create_case", map[string]any{
		"id":   decimalID(in.ID),
		"name": in.Name,
		"url":  in.URL,
	})
}

func (c *Client) UpdateCase(ctx context.Context, in types.UpdateCaseInput) (types.Tx, error) {
	if err := in.Validate(); err != nil {
		return types.Tx{}, err
	}
	return c.write(ctx, "update_case", map[string]any{
		"id":     decimalID(in.ID),
		"name":   in.Name,
		"status": in.Status.String(),
		"url":    in.URL,
	})
}

func (c *Client) GetCase(ctx context.Context, id types.UUID) (types.Case, error) {
	var v caseView
	if err := c.view(ctx, c.contract, "get_case", map[string]any{"id": decimalID(id)}, &v); err != nil {
		return types.Case{}, err
	}
	return v.toCase(), nil
}

func (c *Client) GetCaseCount(ctx context.Context) (uint64, error) {
	return c.count(ctx, "get_case_count")
}

func (c *Client) GetCases(ctx context.Context, skip, take uint64) ([]types.Case, error) {
	var views []caseView
	if err := c.view(ctx, c.contract, "get_cases", page{Skip: skip, Take: take}, &views); err != nil {
		return nil, err
	}
	out := make([]types.Case, 0, len(views))
	for _, v := range views {
		out = append(out, v.toCase())
	}
	return out, nil
}

// === Address ===

func (c *Client) writeAddress(ctx context.Context, method string, in types.CreateAddressInput) (types.Tx, error) {
	if err := in.Validate(); err != nil {
		return types.Tx{}, err
	}
	return c.write(ctx, method, map[string]any{
		"address":    in.Address,
		"category":   in.Category.NearName(),
		"case_id":    decimalID(in.CaseID),
		"risk_score": in.Risk,
	})
}

func (c *Client) CreateAddress(ctx context.Context, in types.CreateAddressInput) (types.Tx, error) {
	return c.writeAddress(ctx, "create_address", in)
}

func (c *Client) UpdateAddress(ctx context.Context, in types.UpdateAddressInput) (types.Tx, error) {
	return c.writeAddress(ctx, "update_address", types.CreateAddressInput(in))
}

func (c *Client) ConfirmAddress(ctx context.Context, address string) (types.Tx, error) {
	return c.write(ctx, "confirm_address", map[string]any{"address": address})
}

func (c *Client) GetAddress(ctx context.Context, address string) (types.Address, error) {
	var v addressView
	if err := c.view(ctx, c.contract, "get_address", map[string]any{"address": address}, &v); err != nil {
		return types.Address{}, err
	}
	return v.toAddress(), nil
}

func (c *Client) GetAddressCount(ctx context.Context) (uint64, error) {
	return c.count(ctx, "get_address_count")
}

func (c *Client) GetAddresses(ctx context.Context, skip, take uint64) ([]types.Address, error) {
	var views []addressView
	if err := c.view(ctx, c.contract, "get_addresses", page{Skip: skip, Take: take}, &views); err != nil {
		return nil, err
	}
	out := make([]types.Address, 0, len(views))
	for _, v := range views {
		out = append(out, v.toAddress())
	}
	return out, nil
}

// === Asset ===

func (c *Client) writeAsset(ctx context.Context, method string, in types.CreateAssetInput) (types.Tx, error) {
	if err := in.Validate(); err != nil {
		return types.Tx{}, err
	}
	return c.write(ctx, method, map[string]any{
		"address":    in.Address,
		"id":         in.AssetID,
		"category":   in.Category.NearName(),
		"case_id":    decimalID(in.CaseID),
		"risk_score": in.Risk,
	})
}

func (c *Client) CreateAsset(ctx context.Context, in types.CreateAssetInput) (types.Tx, error) {
	return c.writeAsset(ctx, "create_asset", in)
}

func (c *Client) UpdateAsset(ctx context.Context, in types.UpdateAssetInput) (types.Tx, error) {
	return c.writeAsset(ctx, "update_asset", types.CreateAssetInput(in))
}

func (c *Client) ConfirmAsset(ctx context.Context, address, assetID string) (types.Tx, error) {
	return c.write(ctx, "confirm_asset", map[string]any{"address": address, "id": assetID})
}

func (c *Client) GetAsset(ctx context.Context, address, assetID string) (types.Asset, error) {
	var v assetView
	if err := c.view(ctx, c.contract, "get_asset", map[string]any{"address": address, "id": assetID}, &v); err != nil {
		return types.Asset{}, err
	}
	return v.toAsset(), nil
}

func (c *Client) GetAssetCount(ctx context.Context) (uint64, error) {
	return c.count(ctx, "get_asset_count")
}

func (c *Client) GetAssets(ctx context.Context, skip, take uint64) ([]types.Asset, error) {
	var views []assetView
	if err := c.view(ctx, c.contract, "get_assets", page{Skip: skip, Take: take}, &views); err != nil {
		return nil, err
	}
	out := make([]types.Asset, 0, len(views))
	for _, v := range views {
		out = append(out, v.toAsset())
	}
	return out, nil
}

// Package evm implements the HAPI Core client for EVM chains.
package evm

import (
	"context"
	"crypto/ecdsa"
	"math/big"
	"net/url"
	"strings"
	"sync"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	ethtypes "github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/ethclient"

	"github.com/hapi-protocol/hapi-core/pkg/interfaces/hapicore"
	"github.com/hapi-protocol/hapi-core/pkg/types"
)

// Client talks to the HapiCore contract
type Client struct {
	network  types.Network
	address  common.Address
	eth      *ethclient.Client
	contract *bind.BoundContract
	key      *ecdsa.PrivateKey

	chainMu sync.Mutex
	chainID *big.Int
}

var _ hapicore.HapiCore = (*Client)(nil)

// NewClient creates a client; a private key is only required for writes
func NewClient(opts hapicore.Options) (*Client, error) {
	eth, err := dial(opts.ProviderURL)
	if err != nil {
		return nil, err
	}

	contractAddress := opts.ContractAddress
	if contractAddress == "" {
		if def, ok := opts.Network.DefaultContractAddress(); ok {
			contractAddress = def
		}
	}
	address, err := parseAddress("contract_address", contractAddress)
	if err != nil {
		return nil, err
	}

	key, err := parsePrivateKey(opts.PrivateKey)
	if err != nil {
		return nil, err
	}

	c := &Client{
		network:  opts.Network,
		address:  address,
		eth:      eth,
		contract: bind.NewBoundContract(address, hapiCoreABI, eth, eth, eth),
		key:      key,
	}
	if opts.ChainID != 0 {
		c.chainID = new(big.Int).SetUint64(opts.ChainID)
	}
	return c, nil
}

func dial(providerURL string) (*ethclient.Client, error) {
	u, err := url.Parse(providerURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, types.NewError(types.KindURLParse, "`provider_url`: invalid url %q", providerURL)
	}
	eth, err := ethclient.Dial(providerURL)
	if err != nil {
		return nil, types.WrapError(types.KindURLParse, err, "`provider_url`")
	}
	return eth, nil
}

func parsePrivateKey(s string) (*ecdsa.PrivateKey, error) {
	s = strings.TrimPrefix(strings.TrimSpace(s), "0x")
	if s == "" {
		return nil, nil
	}
	key, err := crypto.HexToECDSA(s)
	if err != nil {
		return nil, types.WrapError(types.KindSigner, err, "`private_key`")
	}
	return key, nil
}

// ContractAddress returns the checksummed contract address
func (c *Client) ContractAddress() string {
	return c.address.Hex()
}

// SignerAddress returns the signer's address, or "" without a key
func (c *Client) SignerAddress() string {
	if c.key == nil {
		return ""
	}
	return crypto.PubkeyToAddress(c.key.PublicKey).Hex()
}

// Backend exposes the underlying ethclient
func (c *Client) Backend() *ethclient.Client {
	return c.eth
}

// ChainID returns the configured chain id or asks the node
func (c *Client) ChainID(ctx context.Context) (*big.Int, error) {
	c.chainMu.Lock()
	defer c.chainMu.Unlock()

	if c.chainID != nil {
		return c.chainID, nil
	}
	id, err := c.eth.ChainID(ctx)
	if err != nil {
		return nil, types.WrapError(types.KindProvider, err, "`chain_id` failed")
	}
	c.chainID = id
	return id, nil
}

// IsValidAddress checks the hex address format
func (c *Client) IsValidAddress(address string) error {
	_, err := parseAddress("address", address)
	return err
}

func (c *Client) callOpts(ctx context.Context) *bind.CallOpts {
	opts := &bind.CallOpts{Context: ctx}
	if c.key != nil {
		opts.From = crypto.PubkeyToAddress(c.key.PublicKey)
	}
	return opts
}

func (c *Client) call(ctx context.Context, method string, args ...any) (any, error) {
	var out []any
	if err := c.contract.Call(c.callOpts(ctx), &out, method, args...); err != nil {
		return nil, mapContractError(method, err)
	}
	if len(out) == 0 {
		return nil, types.NewError(types.KindContractData, "`%s`: empty output", method)
	}
	return out[0], nil
}

// convertOutput copies an anonymous ABI tuple into T
func convertOutput[T any](method string, in any) (out T, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = types.NewError(types.KindContractData, "`%s`: unexpected output: %v", method, r)
		}
	}()
	return *abi.ConvertType(in, new(T)).(*T), nil
}

func callAs[T any](ctx context.Context, c *Client, method string, args ...any) (T, error) {
	raw, err := c.call(ctx, method, args...)
	if err != nil {
		var zero T
		return zero, err
	}
	return convertOutput[T](method, raw)
}

func (c *Client) callCount(ctx context.Context, method string) (uint64, error) {
	n, err := callAs[*big.Int](ctx, c, method)
	if err != nil {
		return 0, err
	}
	if !n.IsUint64() {
		return 0, types.NewError(types.KindContractData, "`%s`: count overflows u64", method)
	}
	return n.Uint64(), nil
}

func (c *Client) transactOpts(ctx context.Context) (*bind.TransactOpts, error) {
	if c.key == nil {
		return nil, types.ErrSigner
	}
	chainID, err := c.ChainID(ctx)
	if err != nil {
		return nil, err
	}
	opts, err := bind.NewKeyedTransactorWithChainID(c.key, chainID)
	if err != nil {
		return nil, types.WrapError(types.KindSigner, err, "transactor")
	}
	opts.Context = ctx
	return opts, nil
}

// transact sends a transaction and waits for a successful receipt
func (c *Client) transact(ctx context.Context, method string, args ...any) (types.Tx, error) {
	opts, err := c.transactOpts(ctx)
	if err != nil {
		return types.Tx{}, err
	}
	tx, err := c.contract.Transact(opts, method, args...)
	if err != nil {
		return types.Tx{}, mapContractError(method, err)
	}
	return waitReceipt(ctx, c.eth, method, tx)
}

func waitReceipt(ctx context.Context, backend bind.DeployBackend, method string, tx *ethtypes.Transaction) (types.Tx, error) {
	receipt, err := bind.WaitMined(ctx, backend, tx)
	if err != nil {
		return types.Tx{}, types.WrapError(types.KindProvider, err, "`%s` failed: no receipt", method)
	}
	if receipt.Status != ethtypes.ReceiptStatusSuccessful {
		return types.Tx{}, types.NewError(types.KindContractRevert,
			"`%s` reverted with: transaction %s failed", method, receipt.TxHash.Hex())
	}
	return types.Tx{Hash: receipt.TxHash.Hex()}, nil
}

// === Authority ===

func (c *Client) SetAuthority(ctx context.Context, address string) (types.Tx, error) {
	authority, err := parseAddress("address", address)
	if err != nil {
		return types.Tx{}, err
	}
	return c.transact(ctx, "setAuthority", authority)
}

func (c *Client) GetAuthority(ctx context.Context) (string, error) {
	authority, err := callAs[common.Address](ctx, c, "authority")
	if err != nil {
		return "", err
	}
	return authority.Hex(), nil
}

// === Configuration ===

func (c *Client) UpdateStakeConfiguration(ctx context.Context, cfg types.StakeConfiguration) (types.Tx, error) {
	token, err := parseAddress("token", cfg.Token)
	if err != nil {
		return types.Tx{}, err
	}
	return c.transact(ctx, "updateStakeConfiguration",
		token,
		new(big.Int).SetUint64(cfg.UnlockDuration),
		cfg.ValidatorStake.Big(),
		cfg.TracerStake.Big(),
		cfg.PublisherStake.Big(),
		cfg.AuthorityStake.Big(),
	)
}

func (c *Client) GetStakeConfiguration(ctx context.Context) (types.StakeConfiguration, error) {
	cfg, err := callAs[evmStakeConfiguration](ctx, c, "stakeConfiguration")
	if err != nil {
		return types.StakeConfiguration{}, err
	}
	return cfg.toStakeConfiguration()
}

func (c *Client) UpdateRewardConfiguration(ctx context.Context, cfg types.RewardConfiguration) (types.Tx, error) {
	token, err := parseAddress("token", cfg.Token)
	if err != nil {
		return types.Tx{}, err
	}
	return c.transact(ctx, "updateRewardConfiguration",
		token,
		cfg.AddressConfirmationReward.Big(),
		cfg.AddressTracerReward.Big(),
		cfg.AssetConfirmationReward.Big(),
		cfg.AssetTracerReward.Big(),
	)
}

func (c *Client) GetRewardConfiguration(ctx context.Context) (types.RewardConfiguration, error) {
	cfg, err := callAs[evmRewardConfiguration](ctx, c, "rewardConfiguration")
	if err != nil {
		return types.RewardConfiguration{}, err
	}
	return cfg.toRewardConfiguration()
}

// === Reporter ===

func (c *Client) CreateReporter(ctx context.Context, in types.CreateReporterInput) (types.Tx, error) {
	return c.writeReporter(ctx, "createReporter", in)
}

func (c *Client) UpdateReporter(ctx context.Context, in types.UpdateReporterInput) (types.Tx, error) {
	return c.writeReporter(ctx, "updateReporter", types.CreateReporterInput(in))
}

func (c *Client) writeReporter(ctx context.Context, method string, in types.CreateReporterInput) (types.Tx, error) {
	if err := in.Validate(); err != nil {
		return types.Tx{}, err
	}
	account, err := parseAddress("account", in.Account)
	if err != nil {
		return types.Tx{}, err
	}
	return c.transact(ctx, method, in.ID.Big(), account, uint8(in.Role), in.Name, in.URL)
}

func (c *Client) GetReporter(ctx context.Context, id types.UUID) (types.Reporter, error) {
	r, err := callAs[evmReporter](ctx, c, "getReporter", id.Big())
	if err != nil {
		return types.Reporter{}, err
	}
	if r.Id == nil || r.Id.Sign() == 0 {
		return types.Reporter{}, types.ErrInvalidReporter
	}
	return r.toReporter()
}

func (c *Client) GetReporterCount(ctx context.Context) (uint64, error) {
	return c.callCount(ctx, "getReporterCount")
}

func (c *Client) GetReporters(ctx context.Context, skip, take uint64) ([]types.Reporter, error) {
	list, err := callAs[[]evmReporter](ctx, c, "getReporters", u256(take), u256(skip))
	if err != nil {
		return nil, err
	}
	out := make([]types.Reporter, 0, len(list))
	for _, r := range list {
		reporter, err := r.toReporter()
		if err != nil {
			return nil, err
		}
		out = append(out, reporter)
	}
	return out, nil
}

// MyReporterID returns the id of the reporter bound to the signer
func (c *Client) MyReporterID(ctx context.Context) (types.UUID, error) {
	if c.key == nil {
		return types.NilUUID, types.ErrSigner
	}
	id, err := callAs[*big.Int](ctx, c, "getMyReporterId")
	if err != nil {
		return types.NilUUID, err
	}
	if id.Sign() == 0 {
		return types.NilUUID, types.ErrInvalidReporter
	}
	return types.UUIDFromBig(id)
}

func (c *Client) ActivateReporter(ctx context.Context) (types.Tx, error) {
	if c.key == nil {
		return types.Tx{}, types.ErrSigner
	}
	cfg, err := c.GetStakeConfiguration(ctx)
	if err != nil {
		return types.Tx{}, err
	}
	id, err := c.MyReporterID(ctx)
	if err != nil {
		return types.Tx{}, err
	}
	reporter, err := c.GetReporter(ctx, id)
	if err != nil {
		return types.Tx{}, err
	}
	stake := cfg.StakeFor(reporter.Role)

	token, err := c.token(cfg.Token)
	if err != nil {
		return types.Tx{}, err
	}
	balance, err := token.Balance(ctx, c.SignerAddress())
	if err != nil {
		return types.Tx{}, err
	}
	if balance.Cmp(stake) < 0 {
		return types.Tx{}, types.NewError(types.KindFailedToParseBalance,
			"insufficient balance: have %s, need %s", balance, stake)
	}
	if !stake.IsZero() {
		if _, err := token.Approve(ctx, c.address.Hex(), stake); err != nil {
			return types.Tx{}, err
		}
	}
	return c.transact(ctx, "activateReporter")
}

func (c *Client) DeactivateReporter(ctx context.Context) (types.Tx, error) {
	return c.transact(ctx, "deactivateReporter")
}

func (c *Client) UnstakeReporter(ctx context.Context) (types.Tx, error) {
	return c.transact(ctx, "unstake")
}

// === Case ===

func (c *Client) CreateCase(ctx context.Context, in types.CreateCaseInput) (types.Tx, error) {
	if err := in.Validate(); err != nil {
		return types.Tx{}, err
	}
	return c.transact(ctx, "createCase", in.ID.Big(), in.Name, in.URL)
}

func (c *Client) UpdateCase(ctx context.Context, in types.UpdateCaseInput) (types.Tx, error) {
	if err := in.Validate(); err != nil {
		return types.Tx{}, err
	}
	return c.transact(ctx, "updateCase", in.ID.Big(), in.Name, in.URL, uint8(in.Status))
}

func (c *Client) GetCase(ctx context.Context, id types.UUID) (types.Case, error) {
	cs, err := callAs[evmCase](ctx, c, "getCase", id.Big())
	if err != nil {
		return types.Case{}, err
	}
	if cs.Id == nil || cs.Id.Sign() == 0 {
		return types.Case{}, types.NewError(types.KindAccountNotFound, "case %s not found", id)
	}
	return cs.toCase()
}

func (c *Client) GetCaseCount(ctx context.Context) (uint64, error) {
	return c.callCount(ctx, "getCaseCount")
}

func (c *Client) GetCases(ctx context.Context, skip, take uint64) ([]types.Case, error) {
	list, err := callAs[[]evmCase](ctx, c, "getCases", u256(take), u256(skip))
	if err != nil {
		return nil, err
	}
	out := make([]types.Case, 0, len(list))
	for _, cs := range list {
		v, err := cs.toCase()
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}

// === Address ===

func (c *Client) CreateAddress(ctx context.Context, in types.CreateAddressInput) (types.Tx, error) {
	return c.writeAddress(ctx, "createAddress", in)
}

func (c *Client) UpdateAddress(ctx context.Context, in types.UpdateAddressInput) (types.Tx, error) {
	return c.writeAddress(ctx, "updateAddress", types.CreateAddressInput(in))
}

func (c *Client) writeAddress(ctx context.Context, method string, in types.CreateAddressInput) (types.Tx, error) {
	if err := in.Validate(); err != nil {
		return types.Tx{}, err
	}
	addr, err := parseAddress("address", in.Address)
	if err != nil {
		return types.Tx{}, err
	}
	return c.transact(ctx, method, addr, in.CaseID.Big(), in.Risk, uint8(in.Category))
}

func (c *Client) ConfirmAddress(ctx context.Context, address string) (types.Tx, error) {
	addr, err := parseAddress("address", address)
	if err != nil {
		return types.Tx{}, err
	}
	return c.transact(ctx, "confirmAddress", addr)
}

func (c *Client) GetAddress(ctx context.Context, address string) (types.Address, error) {
	addr, err := parseAddress("address", address)
	if err != nil {
		return types.Address{}, err
	}
	a, err := callAs[evmAddress](ctx, c, "getAddress", addr)
	if err != nil {
		return types.Address{}, err
	}
	if a.Addr == (common.Address{}) {
		return types.Address{}, types.NewError(types.KindAccountNotFound, "address %s not found", address)
	}
	return a.toAddress()
}

func (c *Client) GetAddressCount(ctx context.Context) (uint64, error) {
	return c.callCount(ctx, "getAddressCount")
}

func (c *Client) GetAddresses(ctx context.Context, skip, take uint64) ([]types.Address, error) {
	list, err := callAs[[]evmAddress](ctx, c, "getAddresses", u256(skip), u256(take))
	if err != nil {
		return nil, err
	}
	out := make([]types.Address, 0, len(list))
	for _, a := range list {
		v, err := a.toAddress()
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}

// === Asset ===

func (c *Client) CreateAsset(ctx context.Context, in types.CreateAssetInput) (types.Tx, error) {
	return c.writeAsset(ctx, "createAsset", in)
}

func (c *Client) UpdateAsset(ctx context.Context, in types.UpdateAssetInput) (types.Tx, error) {
	return c.writeAsset(ctx, "updateAsset", types.CreateAssetInput(in))
}

func (c *Client) writeAsset(ctx context.Context, method string, in types.CreateAssetInput) (types.Tx, error) {
	if err := in.Validate(); err != nil {
		return types.Tx{}, err
	}
	addr, err := parseAddress("address", in.Address)
	if err != nil {
		return types.Tx{}, err
	}
	assetID, err := parseAssetID(in.AssetID)
	if err != nil {
		return types.Tx{}, err
	}
	return c.transact(ctx, method, addr, assetID, in.CaseID.Big(), in.Risk, uint8(in.Category))
}

func (c *Client) ConfirmAsset(ctx context.Context, address, assetID string) (types.Tx, error) {
	addr, err := parseAddress("address", address)
	if err != nil {
		return types.Tx{}, err
	}
	id, err := parseAssetID(assetID)
	if err != nil {
		return types.Tx{}, err
	}
	return c.transact(ctx, "confirmAsset", addr, id)
}

func (c *Client) GetAsset(ctx context.Context, address, assetID string) (types.Asset, error) {
	addr, err := parseAddress("address", address)
	if err != nil {
		return types.Asset{}, err
	}
	id, err := parseAssetID(assetID)
	if err != nil {
		return types.Asset{}, err
	}
	a, err := callAs[evmAsset](ctx, c, "getAsset", addr, id)
	if err != nil {
		return types.Asset{}, err
	}
	if a.Addr == (common.Address{}) {
		return types.Asset{}, types.NewError(types.KindAccountNotFound, "asset %s/%s not found", address, assetID)
	}
	return a.toAsset()
}

func (c *Client) GetAssetCount(ctx context.Context) (uint64, error) {
	return c.callCount(ctx, "getAssetCount")
}

func (c *Client) GetAssets(ctx context.Context, skip, take uint64) ([]types.Asset, error) {
	list, err := callAs[[]evmAsset](ctx, c, "getAssets", u256(skip), u256(take))
	if err != nil {
		return nil, err
	}
	out := make([]types.Asset, 0, len(list))
	for _, a := range list {
		v, err := a.toAsset()
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}

func u256(v uint64) *big.Int {
	return new(big.Int).SetUint64(v)
}

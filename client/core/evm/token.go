package evm

import (
	"context"
	"crypto/ecdsa"
	"math/big"
	"sync"

	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/ethclient"

	"github.com/hapi-protocol/hapi-core/pkg/interfaces/hapicore"
	"github.com/hapi-protocol/hapi-core/pkg/types"
)

// Token is an ERC-20 token contract
type Token struct {
	address  common.Address
	eth      *ethclient.Client
	contract *bind.BoundContract
	key      *ecdsa.PrivateKey

	chainMu sync.Mutex
	chainID *big.Int
}

var _ hapicore.TokenContract = (*Token)(nil)

// NewToken binds the token at opts.ContractAddress
func NewToken(opts hapicore.Options) (*Token, error) {
	eth, err := dial(opts.ProviderURL)
	if err != nil {
		return nil, err
	}
	address, err := parseAddress("token_contract", opts.ContractAddress)
	if err != nil {
		return nil, err
	}
	key, err := parsePrivateKey(opts.PrivateKey)
	if err != nil {
		return nil, err
	}
	t := newToken(eth, address, key)
	if opts.ChainID != 0 {
		t.chainID = new(big.Int).SetUint64(opts.ChainID)
	}
	return t, nil
}

func newToken(eth *ethclient.Client, address common.Address, key *ecdsa.PrivateKey) *Token {
	return &Token{
		address:  address,
		eth:      eth,
		contract: bind.NewBoundContract(address, erc20ABI, eth, eth, eth),
		key:      key,
	}
}

// token binds the stake token sharing the client's connection and signer
func (c *Client) token(address string) (*Token, error) {
	addr, err := parseAddress("token", address)
	if err != nil {
		return nil, err
	}
	t := newToken(c.eth, addr, c.key)
	c.chainMu.Lock()
	t.chainID = c.chainID
	c.chainMu.Unlock()
	return t, nil
}

// IsApproveNeeded is true for ERC-20
func (t *Token) IsApproveNeeded() bool { return true }

func (t *Token) Transfer(ctx context.Context, to string, amount types.Amount) (types.Tx, error) {
	recipient, err := parseAddress("to", to)
	if err != nil {
		return types.Tx{}, err
	}
	return t.transact(ctx, "transfer", recipient, amount.Big())
}

func (t *Token) Approve(ctx context.Context, spender string, amount types.Amount) (types.Tx, error) {
	addr, err := parseAddress("spender", spender)
	if err != nil {
		return types.Tx{}, err
	}
	return t.transact(ctx, "approve", addr, amount.Big())
}

func (t *Token) Balance(ctx context.Context, address string) (types.Amount, error) {
	addr, err := parseAddress("addr", address)
	if err != nil {
		return types.Amount{}, err
	}
	var out []any
	if err := t.contract.Call(&bind.CallOpts{Context: ctx}, &out, "balanceOf", addr); err != nil {
		return types.Amount{}, mapContractError("balance", err)
	}
	if len(out) == 0 {
		return types.Amount{}, types.NewError(types.KindFailedToParseBalance, "`balance`: empty output")
	}
	balance, err := convertOutput[*big.Int]("balance", out[0])
	if err != nil {
		return types.Amount{}, types.WrapError(types.KindFailedToParseBalance, err, "`balance`")
	}
	return types.AmountFromBig(balance)
}

func (t *Token) transact(ctx context.Context, method string, args ...any) (types.Tx, error) {
	if t.key == nil {
		return types.Tx{}, types.ErrSigner
	}
	chainID, err := t.resolveChainID(ctx)
	if err != nil {
		return types.Tx{}, err
	}
	opts, err := bind.NewKeyedTransactorWithChainID(t.key, chainID)
	if err != nil {
		return types.Tx{}, types.WrapError(types.KindSigner, err, "transactor")
	}
	opts.Context = ctx

	tx, err := t.contract.Transact(opts, method, args...)
	if err != nil {
		return types.Tx{}, mapContractError(method, err)
	}
	return waitReceipt(ctx, t.eth, method, tx)
}

func (t *Token) resolveChainID(ctx context.Context) (*big.Int, error) {
	t.chainMu.Lock()
	defer t.chainMu.Unlock()

	if t.chainID != nil {
		return t.chainID, nil
	}
	id, err := t.eth.ChainID(ctx)
	if err != nil {
		return nil, types.WrapError(types.KindProvider, err, "`chain_id` failed")
	}
	t.chainID = id
	return id, nil
}

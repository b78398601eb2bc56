package solana

import (
	"context"
	"errors"
	"time"

	"github.com/gagliardetto/solana-go"
	associatedtokenaccount "github.com/gagliardetto/solana-go/programs/associated-token-account"
	"github.com/gagliardetto/solana-go/programs/token"
	"github.com/gagliardetto/solana-go/rpc"

	"github.com/hapi-protocol/hapi-core/pkg/interfaces/hapicore"
	"github.com/hapi-protocol/hapi-core/pkg/types"
)

// Token is an SPL token identified by its mint
type Token struct {
	mint      solana.PublicKey
	rpc       *rpc.Client
	signer    solana.PrivateKey
	signerErr error

	pollInterval   time.Duration
	confirmTimeout time.Duration
}

var _ hapicore.TokenContract = (*Token)(nil)

// NewToken binds the mint at opts.ContractAddress
func NewToken(opts hapicore.Options) (*Token, error) {
	endpoint, err := parseEndpoint(opts.ProviderURL)
	if err != nil {
		return nil, err
	}
	mint, err := solana.PublicKeyFromBase58(opts.ContractAddress)
	if err != nil {
		return nil, addressError("token_contract", err)
	}
	key, signerErr, err := loadSigner(opts.PrivateKey)
	if err != nil {
		return nil, err
	}
	return &Token{
		mint:           mint,
		rpc:            rpc.New(endpoint),
		signer:         key,
		signerErr:      signerErr,
		pollInterval:   defaultPollInterval,
		confirmTimeout: defaultConfirmTimeout,
	}, nil
}

// IsApproveNeeded is false: the program moves stake with the signer's authority
func (t *Token) IsApproveNeeded() bool { return false }

// Transfer sends amount from the signer's token account, creating the recipient's if needed
func (t *Token) Transfer(ctx context.Context, to string, amount types.Amount) (types.Tx, error) {
	if t.signer == nil {
		if t.signerErr != nil {
			return types.Tx{}, t.signerErr
		}
		return types.Tx{}, types.ErrSigner
	}
	recipient, err := solana.PublicKeyFromBase58(to)
	if err != nil {
		return types.Tx{}, addressError("to", err)
	}
	value, err := toU64("amount", amount)
	if err != nil {
		return types.Tx{}, err
	}
	owner := t.signer.PublicKey()
	fromATA, _, err := solana.FindAssociatedTokenAddress(owner, t.mint)
	if err != nil {
		return types.Tx{}, addressError("from", err)
	}
	toATA, _, err := solana.FindAssociatedTokenAddress(recipient, t.mint)
	if err != nil {
		return types.Tx{}, addressError("to", err)
	}

	var instructions []solana.Instruction
	exists, err := accountExists(ctx, t.rpc, "transfer", toATA)
	if err != nil {
		return types.Tx{}, err
	}
	if !exists {
		instructions = append(instructions, associatedtokenaccount.NewCreateInstruction(owner, recipient, t.mint).Build())
	}
	instructions = append(instructions,
		token.NewTransferInstruction(value, fromATA, toATA, owner, []solana.PublicKey{}).Build())

	sig, err := sendTransaction(ctx, t.rpc, t.signer, "transfer", instructions...)
	if err != nil {
		return types.Tx{}, err
	}
	if err := waitConfirmed(ctx, t.rpc, "transfer", sig, t.pollInterval, t.confirmTimeout); err != nil {
		return types.Tx{}, err
	}
	return types.Tx{Hash: sig.String()}, nil
}

// Approve is not part of the SPL staking flow
func (t *Token) Approve(context.Context, string, types.Amount) (types.Tx, error) {
	return types.Tx{}, types.NewError(types.KindUnsupported, "`approve` is not supported on Solana")
}

// Balance returns the balance of the owner's associated token account
func (t *Token) Balance(ctx context.Context, address string) (types.Amount, error) {
	owner, err := solana.PublicKeyFromBase58(address)
	if err != nil {
		return types.Amount{}, addressError("addr", err)
	}
	ata, _, err := solana.FindAssociatedTokenAddress(owner, t.mint)
	if err != nil {
		return types.Amount{}, addressError("addr", err)
	}
	return tokenBalance(ctx, t.rpc, ata)
}

func accountExists(ctx context.Context, client *rpc.Client, method string, key solana.PublicKey) (bool, error) {
	_, err := client.GetAccountInfoWithOpts(ctx, key, &rpc.GetAccountInfoOpts{Commitment: commitment})
	switch {
	case errors.Is(err, rpc.ErrNotFound):
		return false, nil
	case err != nil:
		return false, mapRPCError(method, err)
	}
	return true, nil
}

func tokenBalance(ctx context.Context, client *rpc.Client, ata solana.PublicKey) (types.Amount, error) {
	exists, err := accountExists(ctx, client, "balance", ata)
	if err != nil {
		return types.Amount{}, err
	}
	if !exists {
		return types.Amount{}, types.NewError(types.KindAbsentTokenAccount, "token account %s does not exist", ata)
	}
	res, err := client.GetTokenAccountBalance(ctx, ata, commitment)
	if err != nil {
		return types.Amount{}, mapRPCError("balance", err)
	}
	if res == nil || res.Value == nil {
		return types.Amount{}, types.NewError(types.KindFailedToParseBalance, "`balance`: empty result")
	}
	amount, err := types.ParseAmount(res.Value.Amount)
	if err != nil {
		return types.Amount{}, types.WrapError(types.KindFailedToParseBalance, err, "`balance`")
	}
	return amount, nil
}

package near

import (
	"context"

	"github.com/hapi-protocol/hapi-core/pkg/interfaces/hapicore"
	"github.com/hapi-protocol/hapi-core/pkg/types"
)

// Token is a NEP-141 fungible token contract
type Token struct {
	account
	contract string
}

var _ hapicore.TokenContract = (*Token)(nil)

// NewToken binds the token contract at opts.ContractAddress
func NewToken(opts hapicore.Options) (*Token, error) {
	acc, err := newAccount(opts.ProviderURL, opts.AccountID, opts.PrivateKey)
	if err != nil {
		return nil, err
	}
	if err := ValidateAccountID("token_contract", opts.ContractAddress); err != nil {
		return nil, err
	}
	return &Token{account: acc, contract: opts.ContractAddress}, nil
}

// IsApproveNeeded is false: stakes move with ft_transfer_call
func (t *Token) IsApproveNeeded() bool { return false }

func (t *Token) Transfer(ctx context.Context, to string, amount types.Amount) (types.Tx, error) {
	if err := ValidateAccountID("to", to); err != nil {
		return types.Tx{}, err
	}
	return t.call(ctx, t.contract, "ft_transfer", map[string]any{
		"receiver_id": to,
		"amount":      amount.String(),
	}, types.NewAmount(1))
}

func (t *Token) Approve(context.Context, string, types.Amount) (types.Tx, error) {
	return types.Tx{}, types.NewError(types.KindUnsupported, "`approve` is not supported on NEAR")
}

func (t *Token) Balance(ctx context.Context, address string) (types.Amount, error) {
	if err := ValidateAccountID("addr", address); err != nil {
		return types.Amount{}, err
	}
	var balance string
	if err := t.view(ctx, t.contract, "ft_balance_of", map[string]any{"account_id": address}, &balance); err != nil {
		return types.Amount{}, err
	}
	amount, err := types.ParseAmount(balance)
	if err != nil {
		return types.Amount{}, types.WrapError(types.KindFailedToParseBalance, err, "`ft_balance_of`")
	}
	return amount, nil
}

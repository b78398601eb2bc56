package main

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/hapi-protocol/hapi-core/pkg/interfaces/hapicore"
)

func (a *app) tokenCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Stake and reward token",
	}
	cmd.AddCommand(
		&cobra.Command{
			Use:   "transfer <token-contract> <to> <amount>",
			Short: "Transfer tokens",
			Args:  cobra.ExactArgs(3),
			RunE: func(cmd *cobra.Command, args []string) error {
				amount, err := parseAmount("amount", args[2])
				if err != nil {
					return err
				}
				return a.callToken(cmd, args[0], true, func(ctx context.Context, t hapicore.TokenContract) (any, error) {
					return t.Transfer(ctx, args[1], amount)
				})
			},
		},
		&cobra.Command{
			Use:   "approve <token-contract> <spender> <amount>",
			Short: "Approve a spender",
			Args:  cobra.ExactArgs(3),
			RunE: func(cmd *cobra.Command, args []string) error {
				amount, err := parseAmount("amount", args[2])
				if err != nil {
					return err
				}
				return a.callToken(cmd, args[0], true, func(ctx context.Context, t hapicore.TokenContract) (any, error) {
					return t.Approve(ctx, args[1], amount)
				})
			},
		},
		&cobra.Command{
			Use:   "balance <token-contract> <address>",
			Short: "Show a token balance",
			Args:  cobra.ExactArgs(2),
			RunE: func(cmd *cobra.Command, args []string) error {
				return a.callToken(cmd, args[0], false, func(ctx context.Context, t hapicore.TokenContract) (any, error) {
					return t.Balance(ctx, args[1])
				})
			},
		},
	)
	return cmd
}

// callToken is call for the token client at contract
func (a *app) callToken(cmd *cobra.Command, contract string, write bool, fn func(ctx context.Context, t hapicore.TokenContract) (any, error)) error {
	opts, err := a.options(write)
	if err != nil {
		return err
	}
	opts.ContractAddress = contract
	t, err := a.newToken(opts)
	if err != nil {
		return err
	}
	ctx := cmd.Context()
	if d := a.timeout(); d > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, d)
		defer cancel()
	}
	result, err := fn(ctx, t)
	if err != nil {
		return err
	}
	return a.formatter.Print(result)
}

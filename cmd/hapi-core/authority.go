package main

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/hapi-protocol/hapi-core/pkg/interfaces/hapicore"
	"github.com/hapi-protocol/hapi-core/pkg/types"
)

func (a *app) authorityCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "authority",
		Short: "Contract authority",
	}
	cmd.AddCommand(
		&cobra.Command{
			Use:   "get",
			Short: "Show the current authority",
			Args:  cobra.NoArgs,
			RunE:  a.getAuthority,
		},
		&cobra.Command{
			Use:   "set <authority>",
			Short: "Transfer authority to a new address",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				return a.call(cmd, true, func(ctx context.Context, c hapicore.HapiCore) (any, error) {
					if err := c.IsValidAddress(args[0]); err != nil {
						return nil, err
					}
					return c.SetAuthority(ctx, args[0])
				})
			},
		},
	)
	return cmd
}

func (a *app) getAuthority(cmd *cobra.Command, _ []string) error {
	return a.call(cmd, false, func(ctx context.Context, c hapicore.HapiCore) (any, error) {
		return c.GetAuthority(ctx)
	})
}

func (a *app) configurationCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "configuration",
		Aliases: []string{"cfg"},
		Short:   "Stake and reward configuration",
	}
	cmd.AddCommand(
		&cobra.Command{
			Use:   "get-stake",
			Short: "Show the stake configuration",
			Args:  cobra.NoArgs,
			RunE:  a.getStakeConfiguration,
		},
		&cobra.Command{
			Use:   "update-stake <token> <unlock-duration> <validator-stake> <tracer-stake> <publisher-stake> <authority-stake>",
			Short: "Replace the stake configuration",
			Args:  cobra.ExactArgs(6),
			RunE: func(cmd *cobra.Command, args []string) error {
				cfg, err := parseStakeConfiguration(args)
				if err != nil {
					return err
				}
				return a.call(cmd, true, func(ctx context.Context, c hapicore.HapiCore) (any, error) {
					return c.UpdateStakeConfiguration(ctx, cfg)
				})
			},
		},
		&cobra.Command{
			Use:   "get-reward",
			Short: "Show the reward configuration",
			Args:  cobra.NoArgs,
			RunE:  a.getRewardConfiguration,
		},
		&cobra.Command{
			Use:   "update-reward <token> <address-confirmation-reward> <address-tracer-reward> <asset-confirmation-reward> <asset-tracer-reward>",
			Short: "Replace the reward configuration",
			Args:  cobra.ExactArgs(5),
			RunE: func(cmd *cobra.Command, args []string) error {
				cfg, err := parseRewardConfiguration(args)
				if err != nil {
					return err
				}
				return a.call(cmd, true, func(ctx context.Context, c hapicore.HapiCore) (any, error) {
					return c.UpdateRewardConfiguration(ctx, cfg)
				})
			},
		},
	)
	return cmd
}

func (a *app) getStakeConfiguration(cmd *cobra.Command, _ []string) error {
	return a.call(cmd, false, func(ctx context.Context, c hapicore.HapiCore) (any, error) {
		return c.GetStakeConfiguration(ctx)
	})
}

func (a *app) getRewardConfiguration(cmd *cobra.Command, _ []string) error {
	return a.call(cmd, false, func(ctx context.Context, c hapicore.HapiCore) (any, error) {
		return c.GetRewardConfiguration(ctx)
	})
}

func parseStakeConfiguration(args []string) (types.StakeConfiguration, error) {
	cfg := types.StakeConfiguration{Token: args[0]}
	var err error
	if cfg.UnlockDuration, err = parseUint("unlock_duration", args[1]); err != nil {
		return cfg, err
	}
	stakes := []struct {
		field string
		dst   *types.Amount
	}{
		{"validator_stake", &cfg.ValidatorStake},
		{"tracer_stake", &cfg.TracerStake},
		{"publisher_stake", &cfg.PublisherStake},
		{"authority_stake", &cfg.AuthorityStake},
	}
	for i, s := range stakes {
		if *s.dst, err = parseAmount(s.field, args[i+2]); err != nil {
			return cfg, err
		}
	}
	return cfg, nil
}

func parseRewardConfiguration(args []string) (types.RewardConfiguration, error) {
	cfg := types.RewardConfiguration{Token: args[0]}
	rewards := []struct {
		field string
		dst   *types.Amount
	}{
		{"address_confirmation_reward", &cfg.AddressConfirmationReward},
		{"address_tracer_reward", &cfg.AddressTracerReward},
		{"asset_confirmation_reward", &cfg.AssetConfirmationReward},
		{"asset_tracer_reward", &cfg.AssetTracerReward},
	}
	var err error
	for i, r := range rewards {
		if *r.dst, err = parseAmount(r.field, args[i+1]); err != nil {
			return cfg, err
		}
	}
	return cfg, nil
}

package main

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/hapi-protocol/hapi-core/pkg/interfaces/hapicore"
	"github.com/hapi-protocol/hapi-core/pkg/types"
)

func (a *app) addressCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "address",
		Short: "Reported addresses",
	}
	cmd.AddCommand(
		&cobra.Command{
			Use:   "create <address> <case-id> <risk> <category>",
			Short: "Report an address",
			Args:  cobra.ExactArgs(4),
			RunE: func(cmd *cobra.Command, args []string) error {
				in, err := parseAddressInput(args)
				if err != nil {
					return err
				}
				return a.call(cmd, true, func(ctx context.Context, c hapicore.HapiCore) (any, error) {
					if err := c.IsValidAddress(in.Address); err != nil {
						return nil, err
					}
					return c.CreateAddress(ctx, in)
				})
			},
		},
		&cobra.Command{
			Use:   "update <address> <case-id> <risk> <category>",
			Short: "Update a reported address",
			Args:  cobra.ExactArgs(4),
			RunE: func(cmd *cobra.Command, args []string) error {
				in, err := parseAddressInput(args)
				if err != nil {
					return err
				}
				return a.call(cmd, true, func(ctx context.Context, c hapicore.HapiCore) (any, error) {
					return c.UpdateAddress(ctx, types.UpdateAddressInput(in))
				})
			},
		},
		&cobra.Command{
			Use:   "confirm <address>",
			Short: "Confirm a reported address",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				return a.call(cmd, true, func(ctx context.Context, c hapicore.HapiCore) (any, error) {
					return c.ConfirmAddress(ctx, args[0])
				})
			},
		},
		&cobra.Command{
			Use:   "get <address>",
			Short: "Show a reported address",
			Args:  cobra.ExactArgs(1),
			RunE:  a.getAddress,
		},
		&cobra.Command{
			Use:   "count",
			Short: "Count reported addresses",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				return a.call(cmd, false, func(ctx context.Context, c hapicore.HapiCore) (any, error) {
					return c.GetAddressCount(ctx)
				})
			},
		},
		&cobra.Command{
			Use:   "list [skip] [take]",
			Short: "List reported addresses",
			Args:  cobra.MaximumNArgs(2),
			RunE: func(cmd *cobra.Command, args []string) error {
				skip, take, err := parsePage(args)
				if err != nil {
					return err
				}
				return a.call(cmd, false, func(ctx context.Context, c hapicore.HapiCore) (any, error) {
					return c.GetAddresses(ctx, skip, take)
				})
			},
		},
	)
	return cmd
}

func (a *app) getAddress(cmd *cobra.Command, args []string) error {
	return a.call(cmd, false, func(ctx context.Context, c hapicore.HapiCore) (any, error) {
		return c.GetAddress(ctx, args[0])
	})
}

func (a *app) assetCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "asset",
		Short: "Reported assets",
	}
	cmd.AddCommand(
		&cobra.Command{
			Use:   "create <address> <asset-id> <case-id> <risk> <category>",
			Short: "Report an asset",
			Args:  cobra.ExactArgs(5),
			RunE: func(cmd *cobra.Command, args []string) error {
				in, err := parseAssetInput(args)
				if err != nil {
					return err
				}
				return a.call(cmd, true, func(ctx context.Context, c hapicore.HapiCore) (any, error) {
					if err := c.IsValidAddress(in.Address); err != nil {
						return nil, err
					}
					return c.CreateAsset(ctx, in)
				})
			},
		},
		&cobra.Command{
			Use:   "update <address> <asset-id> <case-id> <risk> <category>",
			Short: "Update a reported asset",
			Args:  cobra.ExactArgs(5),
			RunE: func(cmd *cobra.Command, args []string) error {
				in, err := parseAssetInput(args)
				if err != nil {
					return err
				}
				return a.call(cmd, true, func(ctx context.Context, c hapicore.HapiCore) (any, error) {
					return c.UpdateAsset(ctx, types.UpdateAssetInput(in))
				})
			},
		},
		&cobra.Command{
			Use:   "confirm <address> <asset-id>",
			Short: "Confirm a reported asset",
			Args:  cobra.ExactArgs(2),
			RunE: func(cmd *cobra.Command, args []string) error {
				return a.call(cmd, true, func(ctx context.Context, c hapicore.HapiCore) (any, error) {
					return c.ConfirmAsset(ctx, args[0], args[1])
				})
			},
		},
		&cobra.Command{
			Use:   "get <address> <asset-id>",
			Short: "Show a reported asset",
			Args:  cobra.ExactArgs(2),
			RunE: func(cmd *cobra.Command, args []string) error {
				return a.call(cmd, false, func(ctx context.Context, c hapicore.HapiCore) (any, error) {
					return c.GetAsset(ctx, args[0], args[1])
				})
			},
		},
		&cobra.Command{
			Use:   "count",
			Short: "Count reported assets",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				return a.call(cmd, false, func(ctx context.Context, c hapicore.HapiCore) (any, error) {
					return c.GetAssetCount(ctx)
				})
			},
		},
		&cobra.Command{
			Use:   "list [skip] [take]",
			Short: "List reported assets",
			Args:  cobra.MaximumNArgs(2),
			RunE: func(cmd *cobra.Command, args []string) error {
				skip, take, err := parsePage(args)
				if err != nil {
					return err
				}
				return a.call(cmd, false, func(ctx context.Context, c hapicore.HapiCore) (any, error) {
					return c.GetAssets(ctx, skip, take)
				})
			},
		},
	)
	return cmd
}

func parseAddressInput(args []string) (types.CreateAddressInput, error) {
	caseID, err := parseID("case_id", args[1])
	if err != nil {
		return types.CreateAddressInput{}, err
	}
	risk, err := parseRisk(args[2])
	if err != nil {
		return types.CreateAddressInput{}, err
	}
	category, err := types.ParseCategory(args[3])
	if err != nil {
		return types.CreateAddressInput{}, err
	}
	in := types.CreateAddressInput{Address: args[0], CaseID: caseID, Risk: risk, Category: category}
	return in, in.Validate()
}

func parseAssetInput(args []string) (types.CreateAssetInput, error) {
	addr, err := parseAddressInput([]string{args[0], args[2], args[3], args[4]})
	if err != nil {
		return types.CreateAssetInput{}, err
	}
	in := types.CreateAssetInput{
		Address:  addr.Address,
		AssetID:  args[1],
		CaseID:   addr.CaseID,
		Risk:     addr.Risk,
		Category: addr.Category,
	}
	return in, in.Validate()
}

package main

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/hapi-protocol/hapi-core/pkg/interfaces/hapicore"
	"github.com/hapi-protocol/hapi-core/pkg/types"
)

func (a *app) reporterCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "reporter",
		Short: "Reporter registry",
	}
	cmd.AddCommand(
		&cobra.Command{
			Use:   "create <id> <account> <role> <name> <url>",
			Short: "Register a reporter",
			Args:  cobra.ExactArgs(5),
			RunE: func(cmd *cobra.Command, args []string) error {
				in, err := parseReporterInput(args)
				if err != nil {
					return err
				}
				return a.call(cmd, true, func(ctx context.Context, c hapicore.HapiCore) (any, error) {
					return c.CreateReporter(ctx, in)
				})
			},
		},
		&cobra.Command{
			Use:   "update <id> <account> <role> <name> <url>",
			Short: "Update a reporter",
			Args:  cobra.ExactArgs(5),
			RunE: func(cmd *cobra.Command, args []string) error {
				in, err := parseReporterInput(args)
				if err != nil {
					return err
				}
				return a.call(cmd, true, func(ctx context.Context, c hapicore.HapiCore) (any, error) {
					return c.UpdateReporter(ctx, types.UpdateReporterInput(in))
				})
			},
		},
		&cobra.Command{
			Use:   "get <id>",
			Short: "Show a reporter",
			Args:  cobra.ExactArgs(1),
			RunE:  a.getReporter,
		},
		&cobra.Command{
			Use:   "count",
			Short: "Count reporters",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				return a.call(cmd, false, func(ctx context.Context, c hapicore.HapiCore) (any, error) {
					return c.GetReporterCount(ctx)
				})
			},
		},
		&cobra.Command{
			Use:   "list [skip] [take]",
			Short: "List reporters",
			Args:  cobra.MaximumNArgs(2),
			RunE: func(cmd *cobra.Command, args []string) error {
				skip, take, err := parsePage(args)
				if err != nil {
					return err
				}
				return a.call(cmd, false, func(ctx context.Context, c hapicore.HapiCore) (any, error) {
					return c.GetReporters(ctx, skip, take)
				})
			},
		},
		&cobra.Command{
			Use:   "activate",
			Short: "Stake and activate the signer's reporter",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				return a.call(cmd, true, func(ctx context.Context, c hapicore.HapiCore) (any, error) {
					return c.ActivateReporter(ctx)
				})
			},
		},
		&cobra.Command{
			Use:   "deactivate",
			Short: "Start the unlock period of the signer's reporter",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				return a.call(cmd, true, func(ctx context.Context, c hapicore.HapiCore) (any, error) {
					return c.DeactivateReporter(ctx)
				})
			},
		},
		&cobra.Command{
			Use:   "unstake",
			Short: "Withdraw the signer's stake after the unlock period",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				return a.call(cmd, true, func(ctx context.Context, c hapicore.HapiCore) (any, error) {
					return c.UnstakeReporter(ctx)
				})
			},
		},
	)
	return cmd
}

func (a *app) getReporter(cmd *cobra.Command, args []string) error {
	id, err := parseID("id", args[0])
	if err != nil {
		return err
	}
	return a.call(cmd, false, func(ctx context.Context, c hapicore.HapiCore) (any, error) {
		return c.GetReporter(ctx, id)
	})
}

func parseReporterInput(args []string) (types.CreateReporterInput, error) {
	id, err := parseID("id", args[0])
	if err != nil {
		return types.CreateReporterInput{}, err
	}
	role, err := types.ParseReporterRole(args[2])
	if err != nil {
		return types.CreateReporterInput{}, err
	}
	in := types.CreateReporterInput{ID: id, Account: args[1], Role: role, Name: args[3], URL: args[4]}
	return in, in.Validate()
}

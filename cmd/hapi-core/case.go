package main

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/hapi-protocol/hapi-core/pkg/interfaces/hapicore"
	"github.com/hapi-protocol/hapi-core/pkg/types"
)

func (a *app) caseCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "case",
		Short: "Investigation cases",
	}
	cmd.AddCommand(
		&cobra.Command{
			Use:   "create <id> <name> <url>",
			Short: "Open a case",
			Args:  cobra.ExactArgs(3),
			RunE: func(cmd *cobra.Command, args []string) error {
				id, err := parseID("id", args[0])
				if err != nil {
					return err
				}
				in := types.CreateCaseInput{ID: id, Name: args[1], URL: args[2]}
				if err := in.Validate(); err != nil {
					return err
				}
				return a.call(cmd, true, func(ctx context.Context, c hapicore.HapiCore) (any, error) {
					return c.CreateCase(ctx, in)
				})
			},
		},
		&cobra.Command{
			Use:   "update <id> <name> <url> <status>",
			Short: "Update a case",
			Args:  cobra.ExactArgs(4),
			RunE: func(cmd *cobra.Command, args []string) error {
				id, err := parseID("id", args[0])
				if err != nil {
					return err
				}
				status, err := types.ParseCaseStatus(args[3])
				if err != nil {
					return err
				}
				in := types.UpdateCaseInput{ID: id, Name: args[1], URL: args[2], Status: status}
				if err := in.Validate(); err != nil {
					return err
				}
				return a.call(cmd, true, func(ctx context.Context, c hapicore.HapiCore) (any, error) {
					return c.UpdateCase(ctx, in)
				})
			},
		},
		&cobra.Command{
			Use:   "get <id>",
			Short: "Show a case",
			Args:  cobra.ExactArgs(1),
			RunE:  a.getCase,
		},
		&cobra.Command{
			Use:   "count",
			Short: "Count cases",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				return a.call(cmd, false, func(ctx context.Context, c hapicore.HapiCore) (any, error) {
					return c.GetCaseCount(ctx)
				})
			},
		},
		&cobra.Command{
			Use:   "list [skip] [take]",
			Short: "List cases",
			Args:  cobra.MaximumNArgs(2),
			RunE: func(cmd *cobra.Command, args []string) error {
				skip, take, err := parsePage(args)
				if err != nil {
					return err
				}
				return a.call(cmd, false, func(ctx context.Context, c hapicore.HapiCore) (any, error) {
					return c.GetCases(ctx, skip, take)
				})
			},
		},
	)
	return cmd
}

func (a *app) getCase(cmd *cobra.Command, args []string) error {
	id, err := parseID("id", args[0])
	if err != nil {
		return err
	}
	return a.call(cmd, false, func(ctx context.Context, c hapicore.HapiCore) (any, error) {
		return c.GetCase(ctx, id)
	})
}

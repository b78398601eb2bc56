package main

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/hapi-protocol/hapi-core/client/core/config"
	"github.com/hapi-protocol/hapi-core/pkg/types"
)

// profileCmd manages connection profiles
func (a *app) profileCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "profile",
		Short: "Connection profiles",
		Long:  "Manage named connection profiles (network, provider, contract, signer account).",
	}
	cmd.AddCommand(
		&cobra.Command{
			Use:   "list",
			Short: "List profiles",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				current := a.profiles.CurrentName()
				var result []map[string]any
				for _, name := range a.profiles.ListProfiles() {
					p, err := a.profiles.GetProfile(name)
					if err != nil {
						continue
					}
					result = append(result, map[string]any{
						"name":         name,
						"network":      p.Network,
						"provider_url": p.ProviderURL,
						"current":      name == current,
					})
				}
				return a.formatter.Print(result)
			},
		},
		&cobra.Command{
			Use:   "show [name]",
			Short: "Show a profile (default: the current one)",
			Args:  cobra.MaximumNArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				var (
					p   *config.Profile
					err error
				)
				if len(args) > 0 {
					p, err = a.profiles.GetProfile(args[0])
				} else {
					p, err = a.profiles.GetCurrentProfile()
				}
				if err != nil {
					return err
				}
				return a.formatter.Print(p)
			},
		},
		&cobra.Command{
			Use:     "use <name>",
			Aliases: []string{"switch"},
			Short:   "Make a profile current",
			Args:    cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				if err := a.profiles.SwitchProfile(args[0]); err != nil {
					return err
				}
				a.formatter.PrintInfo(fmt.Sprintf("Switched to profile '%s'", args[0]))
				return nil
			},
		},
		a.profileCreateCmd(),
		&cobra.Command{
			Use:   "import <file>",
			Short: "Import a profile from a JSON file",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				data, err := os.ReadFile(args[0])
				if err != nil {
					return fmt.Errorf("read profile: %w", err)
				}
				var p config.Profile
				if err := json.Unmarshal(data, &p); err != nil {
					return fmt.Errorf("parse profile: %w", err)
				}
				return a.saveNewProfile(&p)
			},
		},
		&cobra.Command{
			Use:   "delete <name>",
			Short: "Delete a profile",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				return a.profiles.DeleteProfile(args[0])
			},
		},
	)
	return cmd
}

func (a *app) profileCreateCmd() *cobra.Command {
	var p config.Profile
	cmd := &cobra.Command{
		Use:   "create <name>",
		Short: "Create a profile",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p.Name = args[0]
			return a.saveNewProfile(&p)
		},
	}
	// local flags must not shadow the persistent ones
	cmd.Flags().StringVar(&p.Network, "profile-network", "", "network")
	cmd.Flags().StringVar(&p.ProviderURL, "url", defaultProviderURL, "RPC provider URL")
	cmd.Flags().StringVar(&p.ContractAddress, "contract", "", "contract address")
	cmd.Flags().Uint64Var(&p.ChainID, "profile-chain-id", 0, "EVM chain id")
	cmd.Flags().StringVar(&p.AccountID, "near-account", "", "NEAR signer account id")
	cmd.Flags().StringVar(&p.KeypairPath, "keypair", "", "Solana keypair file")
	_ = cmd.MarkFlagRequired("profile-network")
	return cmd
}

func (a *app) saveNewProfile(p *config.Profile) error {
	if p.Name == "" {
		return types.NewError(types.KindInvalidData, "profile name must not be empty")
	}
	if _, err := a.profiles.GetProfile(p.Name); err == nil {
		return fmt.Errorf("profile '%s' already exists", p.Name)
	}
	if _, err := types.ParseNetwork(p.Network); err != nil {
		return err
	}
	if p.Timeout == 0 {
		p.Timeout = config.Duration(30 * time.Second)
	}
	if err := a.profiles.SaveProfile(p); err != nil {
		return fmt.Errorf("save profile: %w", err)
	}
	a.formatter.PrintInfo(fmt.Sprintf("Profile '%s' created", p.Name))
	return nil
}

package main

import (
	"github.com/spf13/cobra"

	"github.com/hapi-protocol/hapi-core/client/core/config"
	"github.com/hapi-protocol/hapi-core/client/core/wallet"
	"github.com/hapi-protocol/hapi-core/pkg/types"
)

// mnemonicResult is what `key new` prints
type mnemonicResult struct {
	Mnemonic string `json:"mnemonic"`
	*wallet.Key
}

func (a *app) keyCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "key",
		Short: "Signer keys",
		Long:  "Generate BIP-39 mnemonics and derive the signer key a network expects from them.",
	}
	cmd.AddCommand(a.keyNewCmd(), a.keyDeriveCmd())
	return cmd
}

func (a *app) keyNewCmd() *cobra.Command {
	var words int
	cmd := &cobra.Command{
		Use:   "new",
		Short: "Generate a mnemonic and its first key",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			strength, err := wallet.StrengthForWords(words)
			if err != nil {
				return types.WrapError(types.KindInvalidData, err, "`words`")
			}
			backend, path, err := a.keyTarget()
			if err != nil {
				return err
			}
			mnemonic, err := wallet.GenerateMnemonic(strength)
			if err != nil {
				return err
			}
			key, err := wallet.FromMnemonic(backend, mnemonic, a.v.GetString("passphrase"), path)
			if err != nil {
				return err
			}
			return a.formatter.Print(mnemonicResult{Mnemonic: mnemonic, Key: key})
		},
	}
	cmd.Flags().IntVar(&words, "words", 12, "mnemonic length: 12, 15, 18, 21 or 24")
	return cmd
}

func (a *app) keyDeriveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "derive [mnemonic]",
		Short: "Derive the key of a mnemonic (default: --mnemonic)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			mnemonic := a.v.GetString("mnemonic")
			if len(args) > 0 {
				mnemonic = args[0]
			}
			if mnemonic == "" {
				return types.NewError(types.KindInvalidData, "`mnemonic` is required")
			}
			backend, path, err := a.keyTarget()
			if err != nil {
				return err
			}
			key, err := wallet.FromMnemonic(backend, mnemonic, a.v.GetString("passphrase"), path)
			if err != nil {
				return err
			}
			return a.formatter.Print(key)
		},
	}
}

// keyTarget is the backend of the selected network (EVM when none is set)
// and the --derivation-path, nil meaning the backend default
func (a *app) keyTarget() (types.Backend, wallet.DerivationPath, error) {
	backend := types.BackendEVM
	if name := a.pick("network", a.profileValue(func(p *config.Profile) string { return p.Network }), ""); name != "" {
		network, err := types.ParseNetwork(name)
		if err != nil {
			return 0, nil, err
		}
		backend = network.Backend()
	}
	path, err := a.derivationPath()
	return backend, path, err
}

func (a *app) derivationPath() (wallet.DerivationPath, error) {
	raw := a.v.GetString("derivation-path")
	if raw == "" {
		return nil, nil
	}
	path, err := wallet.ParseDerivationPath(raw)
	if err != nil {
		return nil, types.WrapError(types.KindInvalidData, err, "`derivation-path`")
	}
	return path, nil
}

package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/term"

	"github.com/hapi-protocol/hapi-core/client"
	"github.com/hapi-protocol/hapi-core/client/core/config"
	"github.com/hapi-protocol/hapi-core/client/core/output"
	"github.com/hapi-protocol/hapi-core/client/core/wallet"
	"github.com/hapi-protocol/hapi-core/internal/app/version"
	logconfig "github.com/hapi-protocol/hapi-core/internal/config/log"
	"github.com/hapi-protocol/hapi-core/internal/core/infrastructure/log"
	logInterface "github.com/hapi-protocol/hapi-core/pkg/interfaces/infrastructure/log"
	"github.com/hapi-protocol/hapi-core/pkg/interfaces/hapicore"
	"github.com/hapi-protocol/hapi-core/pkg/types"
)

const (
	envPrefix          = "HAPI_CORE"
	defaultProviderURL = "http://localhost:8545"
)

// GlobalFlags are the persistent flags; values resolve flag > env > profile > default
type GlobalFlags struct {
	Network         string
	ProviderURL     string
	ContractAddress string
	PrivateKey      string
	Mnemonic        string
	Passphrase      string
	DerivationPath  string
	ChainID         uint64
	AccountID       string
	Output          string
	Profile         string
	ConfigDir       string
	Verbose         bool
}

// app carries per-invocation state shared by the commands
type app struct {
	flags     GlobalFlags
	v         *viper.Viper
	profiles  *config.ProfileManager
	formatter *output.Formatter
	logger    logInterface.Logger

	stdout io.Writer
	stderr io.Writer

	newClient  func(hapicore.Options) (hapicore.HapiCore, error)
	newToken   func(hapicore.Options) (hapicore.TokenContract, error)
	readSecret func() (string, error)
}

func newApp(stdout, stderr io.Writer) *app {
	a := &app{
		v:         viper.New(),
		stdout:    stdout,
		stderr:    stderr,
		newClient: client.New,
		newToken:  client.NewToken,
	}
	a.readSecret = a.promptSecret
	return a
}

func (a *app) rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "hapi-core",
		Short:         "HAPI Core command line client",
		Long:          "hapi-core reads and writes the HAPI Core risk registry on EVM, Solana and NEAR networks.",
		Version:       version.GetBuildInfo().String(),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.init()
		},
	}

	flags := root.PersistentFlags()
	flags.StringVarP(&a.flags.Network, "network", "n", "", "network: "+networkNames())
	flags.StringVarP(&a.flags.ProviderURL, "provider-url", "p", "", "RPC provider URL (default "+defaultProviderURL+")")
	flags.StringVarP(&a.flags.ContractAddress, "contract-address", "c", "", "HAPI Core contract address (default: the network's deployment)")
	flags.StringVarP(&a.flags.PrivateKey, "private-key", "k", "", "signer private key")
	flags.StringVar(&a.flags.Mnemonic, "mnemonic", "", "derive the signer key from a BIP-39 mnemonic")
	flags.StringVar(&a.flags.Passphrase, "passphrase", "", "BIP-39 passphrase of --mnemonic")
	flags.StringVar(&a.flags.DerivationPath, "derivation-path", "", "HD path of the signer key (default: the network's wallet path)")
	flags.Uint64Var(&a.flags.ChainID, "chain-id", 0, "EVM chain id (default: asked from the provider)")
	flags.StringVar(&a.flags.AccountID, "account-id", "", "NEAR signer account id")
	flags.StringVarP(&a.flags.Output, "output", "o", "", "output format: plain|json (default plain)")
	flags.StringVar(&a.flags.Profile, "profile", "", "profile name (default: the current profile)")
	flags.StringVar(&a.flags.ConfigDir, "config-dir", "", "configuration directory (default ~/.hapi-core)")
	flags.BoolVarP(&a.flags.Verbose, "verbose", "v", false, "log diagnostics to stderr")

	a.v.SetEnvPrefix(envPrefix)
	a.v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	a.v.AutomaticEnv()
	_ = a.v.BindPFlags(flags)

	root.AddCommand(
		a.authorityCmd(),
		a.configurationCmd(),
		a.reporterCmd(),
		a.caseCmd(),
		a.addressCmd(),
		a.assetCmd(),
		a.tokenCmd(),
		a.profileCmd(),
		a.keyCmd(),
	)
	root.AddCommand(a.aliasCmds()...)
	return root
}

func networkNames() string {
	names := make([]string, 0, len(types.Networks))
	for _, n := range types.Networks {
		names = append(names, n.String())
	}
	return strings.Join(names, "|")
}

// init prepares profiles, the formatter and the logger
func (a *app) init() error {
	level := log.WarnLevel
	if a.v.GetBool("verbose") {
		level = log.DebugLevel
	}
	logger, err := log.NewWithWriter(logconfig.New(&logconfig.LogOptions{
		Level:     level,
		ToConsole: true,
		Console:   "stderr",
	}), a.stderr)
	if err != nil {
		return err
	}
	a.logger = logger

	a.profiles, err = config.NewProfileManager(a.v.GetString("config-dir"))
	if err != nil {
		return fmt.Errorf("init profiles: %w", err)
	}

	format, err := output.ParseFormat(a.pick("output", a.profileValue(func(p *config.Profile) string { return p.Output }), ""))
	if err != nil {
		return err
	}
	a.formatter = output.NewFormatter(format, a.stdout)
	a.formatter.SetLogWriter(a.stderr)
	return nil
}

// profile returns the selected profile; only an explicit --profile must exist
func (a *app) profile() (*config.Profile, error) {
	if name := a.v.GetString("profile"); name != "" {
		return a.profiles.GetProfile(name)
	}
	p, err := a.profiles.GetCurrentProfile()
	if err != nil {
		return nil, nil
	}
	return p, nil
}

func (a *app) profileValue(get func(*config.Profile) string) string {
	p, err := a.profile()
	if err != nil || p == nil {
		return ""
	}
	return get(p)
}

// pick resolves key: flag or env, then the profile value, then def
func (a *app) pick(key, fromProfile, def string) string {
	if a.v.IsSet(key) {
		return a.v.GetString(key)
	}
	if fromProfile != "" {
		return fromProfile
	}
	return def
}

// options resolves client options; write commands may prompt for a key
func (a *app) options(write bool) (hapicore.Options, error) {
	p, err := a.profile()
	if err != nil {
		return hapicore.Options{}, err
	}
	if p == nil {
		p = &config.Profile{}
	}

	networkName := a.pick("network", p.Network, "")
	if networkName == "" {
		return hapicore.Options{}, types.NewError(types.KindInvalidData, "`network` is required")
	}
	network, err := types.ParseNetwork(networkName)
	if err != nil {
		return hapicore.Options{}, err
	}

	opts := hapicore.Options{
		Network:         network,
		ProviderURL:     a.pick("provider-url", p.ProviderURL, defaultProviderURL),
		ContractAddress: a.pick("contract-address", p.ContractAddress, ""),
		PrivateKey:      a.pick("private-key", "", ""),
		AccountID:       a.pick("account-id", p.AccountID, ""),
	}
	// the profile's chain id only describes the profile's own node
	if !a.v.IsSet("network") && !a.v.IsSet("provider-url") {
		opts.ChainID = p.ChainID
	}
	if a.v.IsSet("chain-id") {
		opts.ChainID = a.v.GetUint64("chain-id")
	}

	if opts.PrivateKey == "" && a.v.GetString("mnemonic") != "" {
		path, err := a.derivationPath()
		if err != nil {
			return hapicore.Options{}, err
		}
		key, err := wallet.FromMnemonic(network.Backend(), a.v.GetString("mnemonic"), a.v.GetString("passphrase"), path)
		if err != nil {
			return hapicore.Options{}, err
		}
		opts.PrivateKey = key.PrivateKey
		if network.Backend() == types.BackendNear && opts.AccountID == "" {
			opts.AccountID = key.Address
		}
	}
	if opts.PrivateKey == "" && network.Backend() == types.BackendSolana && p.KeypairPath != "" {
		key, err := solana.PrivateKeyFromSolanaKeygenFile(p.KeypairPath)
		if err != nil {
			return hapicore.Options{}, types.WrapError(types.KindSolanaKeypairFile, err, "`keypair_path`: %s", p.KeypairPath)
		}
		opts.PrivateKey = key.String()
	}
	if write && opts.PrivateKey == "" && network.Backend() != types.BackendSolana {
		secret, err := a.readSecret()
		if err != nil {
			return hapicore.Options{}, err
		}
		opts.PrivateKey = secret
	}

	a.logger.With("network", opts.Network, "provider_url", opts.ProviderURL, "contract", opts.ContractAddress).
		Debug("resolved client options")
	return opts, nil
}

// promptSecret reads a private key from the terminal; without a TTY it returns ""
func (a *app) promptSecret() (string, error) {
	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		return "", nil
	}
	_, _ = fmt.Fprint(a.stderr, "Private key: ")
	secret, err := term.ReadPassword(fd)
	_, _ = fmt.Fprintln(a.stderr)
	if err != nil {
		return "", fmt.Errorf("read private key: %w", err)
	}
	return strings.TrimSpace(string(secret)), nil
}

func (a *app) timeout() time.Duration {
	p, err := a.profile()
	if err != nil || p == nil || p.Timeout <= 0 {
		return 0
	}
	return time.Duration(p.Timeout)
}

// call resolves a client and prints fn's result
func (a *app) call(cmd *cobra.Command, write bool, fn func(ctx context.Context, c hapicore.HapiCore) (any, error)) error {
	opts, err := a.options(write)
	if err != nil {
		return err
	}
	c, err := a.newClient(opts)
	if err != nil {
		return err
	}
	ctx := cmd.Context()
	if d := a.timeout(); d > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, d)
		defer cancel()
	}
	result, err := fn(ctx, c)
	if err != nil {
		return err
	}
	return a.formatter.Print(result)
}

// execute runs the command line and reports errors as "Error: <reason>"
func (a *app) execute(ctx context.Context, args []string) error {
	root := a.rootCmd()
	root.SetArgs(args)
	root.SetOut(a.stdout)
	root.SetErr(a.stderr)
	err := root.ExecuteContext(ctx)
	if err != nil {
		if a.formatter != nil {
			a.formatter.PrintError(err)
		} else {
			_, _ = fmt.Fprintf(a.stderr, "Error: %v\n", err)
		}
	}
	if a.logger != nil {
		_ = a.logger.Sync()
	}
	return err
}

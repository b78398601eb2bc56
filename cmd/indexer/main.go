// Command indexer follows HAPI Core contract events and pushes them to a webhook.
package main

import (
	"fmt"
	"os"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"

	"github.com/hapi-protocol/hapi-core/configs"
	"github.com/hapi-protocol/hapi-core/internal/app"
	"github.com/hapi-protocol/hapi-core/internal/app/version"
	indexerconfig "github.com/hapi-protocol/hapi-core/internal/config/indexer"
	runtimeutil "github.com/hapi-protocol/hapi-core/pkg/utils/runtime"
)

func main() {
	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "indexer",
		Short: "HAPI Core event indexer",
		Long: "indexer reads " + indexerconfig.DefaultConfigPath + " and " + indexerconfig.DefaultSecretPath +
			" (or the files named by $" + indexerconfig.ConfigPathEnv + " and $" + indexerconfig.SecretPathEnv + ")," +
			" follows the configured HAPI Core contract and pushes its events to the webhook.",
		Version:       version.GetBuildInfo().String(),
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := indexerconfig.Load()
			if err != nil {
				return err
			}
			return run(cfg)
		},
	}
	root.AddCommand(exampleConfigCmd())
	return root
}

func exampleConfigCmd() *cobra.Command {
	var secret bool
	cmd := &cobra.Command{
		Use:   "example-config",
		Short: "Print an example " + indexerconfig.DefaultConfigPath,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			content := configs.ConfigurationExample()
			if secret {
				content = configs.SecretExample()
			}
			_, err := cmd.OutOrStdout().Write(content)
			return err
		},
	}
	cmd.Flags().BoolVar(&secret, "secret", false, "print an example "+indexerconfig.DefaultSecretPath+" instead")
	return cmd
}

func run(cfg *indexerconfig.Config) error {
	gin.SetMode(gin.ReleaseMode)
	if _, _, err := runtimeutil.ApplyCgroupMemoryLimit(runtimeutil.DefaultReserveRatio); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: memory limit not applied: %v\n", err)
	}

	a, err := app.Start(app.WithConfig(cfg))
	if err != nil {
		return err
	}
	_, err = a.Wait()
	return err
}

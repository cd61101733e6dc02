// Package commands implements CLI command handlers for rangeq.
package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/Sumatoshi-tech/rangeq/pkg/config"
	"github.com/Sumatoshi-tech/rangeq/pkg/observability"
	"github.com/Sumatoshi-tech/rangeq/pkg/version"
)

const flagConfig = "config"

// dashPath selects the standard stream for --input and --output.
const dashPath = "-"

// NewRootCommand assembles the rangeq command tree.
func NewRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "rangeq",
		Short: "Order-statistics set with range counting",
		Long: `rangeq reads "k <key>" and "q <lo> <hi>" commands and answers each query
with the number of stored keys in [lo, hi].

Commands:
  run       Execute commands against one engine
  check     Compare every engine on the same input
  dump      Export the red-black tree as Graphviz DOT
  stats     Show tree shape and arena usage`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().String(flagConfig, "", "config file (default: rangeq.yaml in ., ./config, $HOME/.config/rangeq)")

	rootCmd.AddCommand(
		NewRunCommand(),
		NewCheckCommand(),
		NewDumpCommand(),
		NewStatsCommand(),
		NewConfigCommand(),
		newVersionCommand(),
	)

	return rootCmd
}

func newVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintln(cmd.OutOrStdout(), version.String())
		},
	}
}

func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	path, err := cmd.Flags().GetString(flagConfig)
	if err != nil {
		return nil, fmt.Errorf("read --%s: %w", flagConfig, err)
	}

	cfg, err := config.LoadConfig(path)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	return cfg, nil
}

// session bundles what every command needs after startup.
type session struct {
	cfg       *config.Config
	providers observability.Providers
	metrics   *observability.DriverMetrics
}

// startSession loads the configuration, lets override adjust it, validates
// the result and starts observability. The caller must call close.
func startSession(cmd *cobra.Command, override func(cfg *config.Config)) (*session, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}

	if override != nil {
		override(cfg)

		err = cfg.Validate()
		if err != nil {
			return nil, fmt.Errorf("invalid flags: %w", err)
		}
	}

	obsCfg := cfg.Observability(cmd.Name(), version.Version)
	obsCfg.LogOutput = cmd.ErrOrStderr()

	providers, err := observability.Init(obsCfg)
	if err != nil {
		return nil, fmt.Errorf("init observability: %w", err)
	}

	metrics, err := observability.NewDriverMetrics(providers.Meter)
	if err != nil {
		return nil, errors.Join(err, providers.Shutdown(context.Background()))
	}

	return &session{cfg: cfg, providers: providers, metrics: metrics}, nil
}

func (s *session) close() error {
	err := s.providers.Shutdown(context.Background())
	if err != nil {
		return fmt.Errorf("shutdown observability: %w", err)
	}

	return nil
}

// openInput returns the command stream: path, or the command's input when
// path is empty or "-".
func openInput(cmd *cobra.Command, path string) (io.ReadCloser, error) {
	if path == "" || path == dashPath {
		return io.NopCloser(cmd.InOrStdin()), nil
	}

	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open input: %w", err)
	}

	return file, nil
}

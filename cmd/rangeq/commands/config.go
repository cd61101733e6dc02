package commands

import (
	"fmt"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

// NewConfigCommand creates the config subcommand, which prints the
// effective configuration as YAML.
func NewConfigCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Print the effective configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}

			enc := yaml.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent(2)

			err = enc.Encode(cfg)
			if err != nil {
				return fmt.Errorf("encode config: %w", err)
			}

			err = enc.Close()
			if err != nil {
				return fmt.Errorf("encode config: %w", err)
			}

			return nil
		},
	}
}

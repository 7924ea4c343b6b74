package main

import (
	"fmt"

	"github.com/BurntSushi/toml"
	"github.com/bastiangx/keypredict/pkg/config"
	"github.com/spf13/cobra"
)

func newConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect or reset the configuration",
	}
	cmd.AddCommand(
		&cobra.Command{
			Use:   "path",
			Short: "Print the config file in use",
			RunE: func(cmd *cobra.Command, args []string) error {
				e, err := loadEnv(cmd)
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), config.GetActiveConfigPath(e.configPath))
				return nil
			},
		},
		&cobra.Command{
			Use:   "show",
			Short: "Print the effective configuration, overrides applied",
			RunE: func(cmd *cobra.Command, args []string) error {
				e, err := loadEnv(cmd)
				if err != nil {
					return err
				}
				return toml.NewEncoder(cmd.OutOrStdout()).Encode(e.cfg)
			},
		},
		&cobra.Command{
			Use:   "reset",
			Short: "Rewrite the default config file with built-in defaults",
			RunE: func(cmd *cobra.Command, args []string) error {
				path, err := config.RebuildConfigFile()
				if err != nil {
					return fmt.Errorf("failed to rebuild config: %w", err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", path)
				return nil
			},
		},
	)
	return cmd
}

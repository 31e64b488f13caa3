package main

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/c360studio/semprov/config"
)

func configCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage semprov configuration",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "init",
		Short: "Write the default user config if none exists",
		Long: `Init writes the default configuration to the user config file
(~/.config/semprov/config.yaml) unless one is already there, and prints its
path. Project files and SEMPROV_* variables still override it.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := config.NewLoader(slog.Default()).EnsureUserConfig()
			if err != nil {
				return fmt.Errorf("write user config: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), path)
			return nil
		},
	})
	return cmd
}

// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newMigrateCmd(backend *backend) *cobra.Command {
	migrateCmd := &cobra.Command{
		Use:   "migrate",
		Short: "Manage the database schema",
	}

	migrateCmd.AddCommand(&cobra.Command{
		Use:   "up",
		Short: "Apply every pending migration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withMigrator(cmd, backend, func(runner migrator) error {
				return runner.Up()
			})
		},
	})

	var steps int
	downCmd := &cobra.Command{
		Use:   "down",
		Short: "Roll back applied migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withMigrator(cmd, backend, func(runner migrator) error {
				return runner.Down(steps)
			})
		},
	}
	downCmd.Flags().IntVar(&steps, "steps", 1, "Number of migrations to roll back")
	migrateCmd.AddCommand(downCmd)

	migrateCmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print the current schema version",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			runner, err := backend.openMigrator(backend.logger)
			if err != nil {
				return err
			}
			defer runner.Close()

			status, err := runner.Version()
			if err != nil {
				return err
			}
			return printStatus(cmd, status.Version, status.Dirty, status.Empty)
		},
	})

	return migrateCmd
}

// withMigrator runs action and reports the resulting schema version.
func withMigrator(cmd *cobra.Command, backend *backend, action func(runner migrator) error) error {
	runner, err := backend.openMigrator(backend.logger)
	if err != nil {
		return err
	}
	defer runner.Close()

	if err := action(runner); err != nil {
		return err
	}

	status, err := runner.Version()
	if err != nil {
		return err
	}
	return printStatus(cmd, status.Version, status.Dirty, status.Empty)
}

func printStatus(cmd *cobra.Command, version uint, dirty, empty bool) error {
	if getOutputFormat(cmd) == outputJSON {
		return printJSON(cmd.OutOrStdout(), map[string]interface{}{
			"version": version,
			"dirty":   dirty,
			"empty":   empty,
		})
	}

	switch {
	case empty:
		_, err := fmt.Fprintln(cmd.OutOrStdout(), "Schema version: none")
		return err
	case dirty:
		_, err := fmt.Fprintf(cmd.OutOrStdout(), "Schema version: %d (dirty)\n", version)
		return err
	default:
		_, err := fmt.Fprintf(cmd.OutOrStdout(), "Schema version: %d\n", version)
		return err
	}
}

// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package cli implements hearthctl, the operator tool for the membership store.

It runs the same membership services as the API against the database named by
the environment, for operations that should not wait on a client: schema
migrations, forced departures and repairing group administration.

Commands:

  - migrate up|down|version: Schema management.
  - depart: Remove a user from every group, resumable with --cursor.
  - roles: Set the role of members of a group.
  - remove: Remove members from a group.
*/
package cli

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/taibuivan/hearth/internal/platform/apperr"
	"github.com/taibuivan/hearth/internal/platform/constants"
)

// # Output Formats

const (
	outputText = "text"
	outputJSON = "json"
)

// Execute runs the CLI and returns the process exit code.
func Execute() int {
	rootCmd := newRootCmd(defaultBackend())
	if err := rootCmd.Execute(); err != nil {
		reportError(rootCmd, err)
		return 1
	}
	return 0
}

func newRootCmd(backend *backend) *cobra.Command {
	var (
		output  string
		verbose bool
	)

	rootCmd := &cobra.Command{
		Use:           "hearthctl",
		Short:         "Hearth membership operator tool",
		Long:          "Operator commands for the Hearth membership store. Settings are read from the same environment as the API server.",
		Version:       constants.AppVersion,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if err := validateOutputFormat(output); err != nil {
				return err
			}

			level := slog.LevelWarn
			if verbose {
				level = slog.LevelDebug
			}
			backend.logger = slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level})).
				With(slog.String("app", "hearthctl"))

			return nil
		},
	}

	rootCmd.PersistentFlags().StringVarP(&output, "output", "o", outputText, "Output format (text, json)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Log debug events to stderr")

	rootCmd.AddCommand(newMigrateCmd(backend))
	rootCmd.AddCommand(newDepartCmd(backend))
	rootCmd.AddCommand(newRolesCmd(backend))
	rootCmd.AddCommand(newRemoveCmd(backend))

	return rootCmd
}

// reportError prints a failed command's error in the selected format.
func reportError(rootCmd *cobra.Command, err error) {
	if getOutputFormat(rootCmd) == outputJSON {
		errObj := map[string]interface{}{
			"error": err.Error(),
		}
		if appErr := apperr.As(err); appErr != nil {
			errObj["code"] = appErr.Code
		}
		_ = printJSON(rootCmd.OutOrStdout(), errObj)
		return
	}

	writeError(rootCmd.ErrOrStderr(), err)
}

func writeError(writer io.Writer, err error) {
	if appErr := apperr.As(err); appErr != nil {
		_, _ = fmt.Fprintf(writer, "Error: %s (%s)\n", appErr.Message, appErr.Code)
		return
	}
	_, _ = fmt.Fprintf(writer, "Error: %v\n", err)
}

// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/taibuivan/hearth/internal/core/group"
	"github.com/taibuivan/hearth/internal/platform/validate"
)

// getOutputFormat returns the effective output format from the root command's persistent flags.
func getOutputFormat(cmd *cobra.Command) string {
	value, _ := cmd.Root().PersistentFlags().GetString("output")
	return value
}

func validateOutputFormat(output string) error {
	return (&validate.Validator{}).OneOf("output", output, outputText, outputJSON).Err()
}

func printJSON(writer io.Writer, value interface{}) error {
	encoder := json.NewEncoder(writer)
	encoder.SetIndent("", "  ")
	return encoder.Encode(value)
}

// printUserIDs renders the ids touched by roles and remove.
func printUserIDs(cmd *cobra.Command, verb string, userIDs []string) error {
	writer := cmd.OutOrStdout()
	if getOutputFormat(cmd) == outputJSON {
		return printJSON(writer, map[string][]string{"user_ids": userIDs})
	}

	if len(userIDs) == 0 {
		_, err := fmt.Fprintf(writer, "No members %s\n", verb)
		return err
	}

	_, err := fmt.Fprintf(writer, "%s %d member(s): %s\n", capitalize(verb), len(userIDs), strings.Join(userIDs, ", "))
	return err
}

// printDeparture renders one line per group outcome.
func printDeparture(cmd *cobra.Command, result *group.DepartureResult) error {
	writer := cmd.OutOrStdout()
	if getOutputFormat(cmd) == outputJSON {
		return printJSON(writer, result)
	}

	table := tabwriter.NewWriter(writer, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(table, "GROUP\tOUTCOME\tNEW ADMIN")
	for _, groupID := range result.DeletedGroups {
		_, _ = fmt.Fprintf(table, "%s\tdeleted\t-\n", groupID)
	}
	for _, groupID := range result.RemovedFrom {
		_, _ = fmt.Fprintf(table, "%s\tremoved\t-\n", groupID)
	}
	for _, promotion := range result.Promotions {
		_, _ = fmt.Fprintf(table, "%s\tpromoted\t%s\n", promotion.GroupID, promotion.UserID)
	}
	if err := table.Flush(); err != nil {
		return err
	}

	if result.Cursor != "" {
		_, _ = fmt.Fprintf(writer, "Interrupted. Resume with --cursor %s\n", result.Cursor)
	}
	return nil
}

func capitalize(value string) string {
	if value == "" {
		return value
	}
	return strings.ToUpper(value[:1]) + value[1:]
}

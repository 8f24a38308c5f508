// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/taibuivan/hearth/internal/core/group"
	"github.com/taibuivan/hearth/internal/platform/validate"
)

// # Membership Commands

func newDepartCmd(backend *backend) *cobra.Command {
	var cursor string

	departCmd := &cobra.Command{
		Use:   "depart <user-id>",
		Short: "Remove a user from every group",
		Long: "Remove a user from every group. Groups left empty are deleted and groups left without an admin get one.\n" +
			"An interrupted run prints a cursor; pass it back with --cursor to continue.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			userID := args[0]
			if err := (&validate.Validator{}).UUID(group.FieldUserID, userID).Err(); err != nil {
				return err
			}

			return withSession(cmd, backend, func(session *session) error {
				result, err := session.departure.DepartFrom(cmd.Context(), userID, cursor)

				// Committed work is reported even when the run stops early.
				if result != nil && (err == nil || errors.Is(err, group.ErrNotificationFailed) || result.Outcomes() > 0 || result.Cursor != "") {
					if printErr := printDeparture(cmd, result); printErr != nil {
						return printErr
					}
				}
				return err
			})
		},
	}
	departCmd.Flags().StringVar(&cursor, "cursor", "", "Resume an interrupted departure")

	return departCmd
}

func newRolesCmd(backend *backend) *cobra.Command {
	return &cobra.Command{
		Use:   "roles <group-id> <ADMIN|MEMBER> <user-id>...",
		Short: "Set the role of members of a group",
		Args:  cobra.MinimumNArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			groupID, userIDs := args[0], args[2:]
			if err := validateIDs(groupID, userIDs); err != nil {
				return err
			}

			role, err := group.ParseRole(args[1])
			if err != nil {
				return err
			}

			return withSession(cmd, backend, func(session *session) error {
				changed, err := session.roles.ChangeRole(cmd.Context(), groupID, userIDs, role)
				if err != nil {
					return err
				}
				return printUserIDs(cmd, "changed", changed)
			})
		},
	}
}

func newRemoveCmd(backend *backend) *cobra.Command {
	return &cobra.Command{
		Use:   "remove <group-id> <user-id>...",
		Short: "Remove members from a group",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			groupID, userIDs := args[0], args[1:]
			if err := validateIDs(groupID, userIDs); err != nil {
				return err
			}

			return withSession(cmd, backend, func(session *session) error {
				removed, err := session.removal.RemoveMembers(cmd.Context(), groupID, userIDs)
				if err != nil {
					return err
				}
				return printUserIDs(cmd, "removed", removed)
			})
		},
	}
}

// # Helpers

func withSession(cmd *cobra.Command, backend *backend, action func(session *session) error) error {
	session, err := backend.openSession(cmd.Context(), backend.logger)
	if err != nil {
		return fmt.Errorf("hearthctl: open store: %w", err)
	}
	defer session.close()

	return action(session)
}

func validateIDs(groupID string, userIDs []string) error {
	return (&validate.Validator{}).
		UUID(group.FieldGroupID, groupID).
		UUIDs(group.FieldUserIDs, userIDs).
		Err()
}

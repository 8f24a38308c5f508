// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package group

import (
	"net/http"

	"github.com/taibuivan/hearth/internal/platform/apperr"
	"github.com/taibuivan/hearth/internal/platform/validate"
)

// # Domain Errors
//
// Invariant violations are always raised before any write. Notification
// failures are raised after the writes were committed.

var (
	// ErrGroupNotFound is returned when a group has no row or no members.
	ErrGroupNotFound = apperr.NotFound("Group")

	// ErrGroupWithoutAdmins is returned when a change would leave members but no admin.
	ErrGroupWithoutAdmins = apperr.New("GROUP_WITHOUT_ADMINS", http.StatusConflict,
		"The group would be left without an admin")

	// ErrCannotEmptyGroup is returned when a removal would take out every member.
	// Emptying a group is reserved for group deletion.
	ErrCannotEmptyGroup = apperr.New("GROUP_WOULD_BE_EMPTY", http.StatusConflict,
		"Removing these members would empty the group; delete the group instead")

	// ErrNotificationFailed is returned after a committed change that could not be announced.
	ErrNotificationFailed = apperr.BadGateway("NOTIFICATION_FAILED",
		"The change was applied but some members could not be notified")

	// ErrInvalidRole is returned for role tags other than ADMIN and MEMBER.
	ErrInvalidRole = apperr.New("INVALID_ROLE", http.StatusBadRequest, "Role must be one of: ADMIN, MEMBER")

	// ErrEmptyRoleSet is returned when a membership would carry no role.
	ErrEmptyRoleSet = apperr.New("EMPTY_ROLE_SET", http.StatusBadRequest, "A membership needs at least one role")

	// ErrPersonalGroupExists is returned when a user already owns a personal group.
	ErrPersonalGroupExists = apperr.Conflict("Personal group already exists")

	// ErrInvalidCursor is returned for cursors the store did not issue.
	ErrInvalidCursor = validate.RequiredError("cursor", "Malformed pagination cursor")
)

// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package group

import (
	"context"

	"github.com/taibuivan/hearth/pkg/pagination"
)

// # Group Data Access

// Repository defines the data access contract for groups and memberships.
//
// Listings are keyset-paginated: a cursor is opaque to callers and rows are
// returned in insertion order. The services never assume more than this.
type Repository interface {

	/*
		ListGroupMembers returns one page of a group's memberships.

		Parameters:
		  - context: context.Context
		  - groupID: string (UUIDv7)
		  - cursor: string (empty for the first page)
		  - limit: int

		Returns:
		  - pagination.Page[*Membership]: Memberships in insertion order
		  - error: ErrGroupNotFound if the first page is empty
	*/
	ListGroupMembers(context context.Context, groupID, cursor string, limit int) (pagination.Page[*Membership], error)

	/*
		FindGroupMembersByUserIDs returns the memberships of the listed users in one group.

		Parameters:
		  - context: context.Context
		  - groupID: string
		  - userIDs: []string

		Returns:
		  - []*Membership: Matching rows; ids without a membership are skipped
		  - error: Database retrieval failures
	*/
	FindGroupMembersByUserIDs(context context.Context, groupID string, userIDs []string) ([]*Membership, error)

	/*
		FindGroupMembersByRole returns the memberships carrying a role.

		Parameters:
		  - context: context.Context
		  - groupID: string
		  - role: Role

		Returns:
		  - []*Membership: Matching rows in insertion order
		  - error: Database retrieval failures
	*/
	FindGroupMembersByRole(context context.Context, groupID string, role Role) ([]*Membership, error)

	/*
		CountGroupMembers returns the number of memberships in a group.

		Parameters:
		  - context: context.Context
		  - groupID: string

		Returns:
		  - int: Member count
		  - error: Database retrieval failures
	*/
	CountGroupMembers(context context.Context, groupID string) (int, error)

	/*
		ListUserMemberships returns one page of a user's memberships across groups.

		Parameters:
		  - context: context.Context
		  - userID: string
		  - cursor: string (empty for the first page)
		  - limit: int

		Returns:
		  - pagination.Page[*Membership]: Rows with GroupName populated; empty is not an error
		  - error: Database retrieval failures
	*/
	ListUserMemberships(context context.Context, userID, cursor string, limit int) (pagination.Page[*Membership], error)

	/*
		SaveMemberships persists the role sets of existing memberships.

		Description: All rows are written in one transaction. Rows that no longer
		exist are left alone.

		Parameters:
		  - context: context.Context
		  - memberships: []*Membership

		Returns:
		  - error: Persistence failures
	*/
	SaveMemberships(context context.Context, memberships []*Membership) error

	/*
		RemoveMemberships deletes the given memberships in one transaction.

		Parameters:
		  - context: context.Context
		  - memberships: []*Membership (GroupID and UserID are used)

		Returns:
		  - error: Persistence failures
	*/
	RemoveMemberships(context context.Context, memberships []*Membership) error

	/*
		DeleteGroup removes a group together with any membership still referencing it.

		Parameters:
		  - context: context.Context
		  - groupID: string

		Returns:
		  - error: Persistence failures
	*/
	DeleteGroup(context context.Context, groupID string) error

	// # Group Lifecycle

	/*
		CreateGroup persists a group and its founding membership atomically.

		Parameters:
		  - context: context.Context
		  - group: *Group
		  - founder: *Membership

		Returns:
		  - error: ErrPersonalGroupExists-class conflicts or persistence failures
	*/
	CreateGroup(context context.Context, group *Group, founder *Membership) error

	/*
		AddMembership inserts a membership into an existing group.

		Parameters:
		  - context: context.Context
		  - membership: *Membership (Position and JoinedAt are assigned by the store)

		Returns:
		  - error: ErrConflict if the user is already a member
	*/
	AddMembership(context context.Context, membership *Membership) error

	/*
		FindGroupByID retrieves a group by its UUID.

		Parameters:
		  - context: context.Context
		  - id: string (UUIDv7)

		Returns:
		  - *Group: Hydrated entity
		  - error: ErrNotFound if missing
	*/
	FindGroupByID(context context.Context, id string) (*Group, error)

	/*
		FindPersonalGroup retrieves the USER group owned by a user.

		Parameters:
		  - context: context.Context
		  - userID: string

		Returns:
		  - *Group: Hydrated entity
		  - error: ErrNotFound if the user has none
	*/
	FindPersonalGroup(context context.Context, userID string) (*Group, error)
}

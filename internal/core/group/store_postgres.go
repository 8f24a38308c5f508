// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package group

import (
	"context"
	"strconv"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/taibuivan/hearth/internal/platform/dberr"
	"github.com/taibuivan/hearth/pkg/pagination"
)

// PostgresRepository implements [Repository] using pgx.
type PostgresRepository struct {
	db *pgxpool.Pool
}

// NewPostgresRepository constructs a PostgreSQL backed group store.
func NewPostgresRepository(db *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{db: db}
}

const membershipColumns = `m.groupid, m.userid, m.roles, m.position, m.joinedat`

// # Cursor Encoding

// decodeCursor turns an opaque cursor into the last seen position.
func decodeCursor(cursor string) (int64, error) {
	if cursor == "" {
		return 0, nil
	}
	position, err := strconv.ParseInt(cursor, 10, 64)
	if err != nil || position < 0 {
		return 0, ErrInvalidCursor
	}
	return position, nil
}

func encodeCursor(position int64) string {
	return strconv.FormatInt(position, 10)
}

// scanMembership reads one row produced by a query selecting membershipColumns,
// optionally followed by the group name.
func scanMembership(rows pgx.Rows, withGroupName bool) (*Membership, error) {
	var (
		membership = &Membership{}
		roles      []string
	)

	dest := []any{&membership.GroupID, &membership.UserID, &roles, &membership.Position, &membership.JoinedAt}
	if withGroupName {
		dest = append(dest, &membership.GroupName)
	}

	if err := rows.Scan(dest...); err != nil {
		return nil, err
	}

	set, err := ParseRoleSet(roles)
	if err != nil {
		return nil, err
	}
	membership.Roles = set

	return membership, nil
}

/*
listPage runs a keyset query that selects limit+1 rows to learn whether another page exists.

Parameters:
  - context: context.Context
  - query: string ($1 owner id, $2 last position, $3 row limit)
  - ownerID: string
  - cursor: string
  - limit: int
  - withGroupName: bool
  - action: string (dberr label)

Returns:
  - pagination.Page[*Membership]: Page with NextCursor set when more rows remain
  - error: Database retrieval failures
*/
func (repository *PostgresRepository) listPage(context context.Context, query, ownerID, cursor string, limit int, withGroupName bool, action string) (pagination.Page[*Membership], error) {
	var page pagination.Page[*Membership]

	after, err := decodeCursor(cursor)
	if err != nil {
		return page, err
	}
	if limit < 1 {
		limit = pagination.DefaultLimit
	}

	rows, err := repository.db.Query(context, query, ownerID, after, limit+1)
	if err != nil {
		return page, dberr.Wrap(err, action)
	}
	defer rows.Close()

	for rows.Next() {
		membership, err := scanMembership(rows, withGroupName)
		if err != nil {
			return page, dberr.Wrap(err, "scan_membership")
		}
		page.Items = append(page.Items, membership)
	}
	if err := rows.Err(); err != nil {
		return page, dberr.Wrap(err, action)
	}

	if len(page.Items) > limit {
		page.Items = page.Items[:limit]
		page.NextCursor = encodeCursor(page.Items[limit-1].Position)
	}

	return page, nil
}

// collect drains rows into memberships.
func collect(rows pgx.Rows, action string) ([]*Membership, error) {
	defer rows.Close()

	memberships := []*Membership{}
	for rows.Next() {
		membership, err := scanMembership(rows, false)
		if err != nil {
			return nil, dberr.Wrap(err, "scan_membership")
		}
		memberships = append(memberships, membership)
	}
	if err := rows.Err(); err != nil {
		return nil, dberr.Wrap(err, action)
	}
	return memberships, nil
}

// # Membership Retrieval

/*
ListGroupMembers returns one keyset page of a group's memberships.

Description: An empty first page means the group has no members, which the
services treat as the group not existing.

Parameters:
  - context: context.Context
  - groupID: string
  - cursor: string
  - limit: int

Returns:
  - pagination.Page[*Membership]: Memberships ordered by position
  - error: ErrGroupNotFound or database failures
*/
func (repository *PostgresRepository) ListGroupMembers(context context.Context, groupID, cursor string, limit int) (pagination.Page[*Membership], error) {
	const query = `
		SELECT ` + membershipColumns + `
		FROM core.groupmember m
		WHERE m.groupid = $1 AND m.position > $2
		ORDER BY m.position ASC
		LIMIT $3
	`
	page, err := repository.listPage(context, query, groupID, cursor, limit, false, "list_group_members")
	if err != nil {
		return page, err
	}

	if cursor == "" && len(page.Items) == 0 {
		return page, ErrGroupNotFound
	}

	return page, nil
}

// FindGroupMembersByUserIDs returns the memberships of the listed users in one group.
func (repository *PostgresRepository) FindGroupMembersByUserIDs(context context.Context, groupID string, userIDs []string) ([]*Membership, error) {
	const query = `
		SELECT ` + membershipColumns + `
		FROM core.groupmember m
		WHERE m.groupid = $1 AND m.userid = ANY($2::uuid[])
		ORDER BY m.position ASC
	`
	rows, err := repository.db.Query(context, query, groupID, userIDs)
	if err != nil {
		return nil, dberr.Wrap(err, "find_group_members_by_user_ids")
	}
	return collect(rows, "find_group_members_by_user_ids")
}

// FindGroupMembersByRole returns the memberships carrying role.
func (repository *PostgresRepository) FindGroupMembersByRole(context context.Context, groupID string, role Role) ([]*Membership, error) {
	const query = `
		SELECT ` + membershipColumns + `
		FROM core.groupmember m
		WHERE m.groupid = $1 AND $2 = ANY(m.roles)
		ORDER BY m.position ASC
	`
	rows, err := repository.db.Query(context, query, groupID, string(role))
	if err != nil {
		return nil, dberr.Wrap(err, "find_group_members_by_role")
	}
	return collect(rows, "find_group_members_by_role")
}

// CountGroupMembers returns the number of memberships in a group.
func (repository *PostgresRepository) CountGroupMembers(context context.Context, groupID string) (int, error) {
	const query = `SELECT COUNT(*) FROM core.groupmember WHERE groupid = $1`

	var count int
	if err := repository.db.QueryRow(context, query, groupID).Scan(&count); err != nil {
		return 0, dberr.Wrap(err, "count_group_members")
	}
	return count, nil
}

/*
ListUserMemberships returns one keyset page of a user's memberships.

Description: Joins the owning group to carry its name. Rows deleted behind the
cursor do not shift later pages, so the listing can be walked while the
caller is removing the very rows it reads.

Parameters:
  - context: context.Context
  - userID: string
  - cursor: string
  - limit: int

Returns:
  - pagination.Page[*Membership]: Rows with GroupName set
  - error: Database retrieval failures
*/
func (repository *PostgresRepository) ListUserMemberships(context context.Context, userID, cursor string, limit int) (pagination.Page[*Membership], error) {
	const query = `
		SELECT ` + membershipColumns + `, g.name
		FROM core.groupmember m
		JOIN core.householdgroup g ON g.id = m.groupid
		WHERE m.userid = $1 AND m.position > $2
		ORDER BY m.position ASC
		LIMIT $3
	`
	return repository.listPage(context, query, userID, cursor, limit, true, "list_user_memberships")
}

// # Membership Mutation

/*
SaveMemberships writes role sets in a single transaction.

Description: Updates are queued on a [pgx.Batch]. A membership removed
concurrently matches no row and is skipped rather than resurrected.

Parameters:
  - context: context.Context
  - memberships: []*Membership

Returns:
  - error: Persistence failures
*/
func (repository *PostgresRepository) SaveMemberships(context context.Context, memberships []*Membership) error {
	if len(memberships) == 0 {
		return nil
	}

	const query = `UPDATE core.groupmember SET roles = $3 WHERE groupid = $1 AND userid = $2`

	return repository.inTransaction(context, "save_memberships", func(transaction pgx.Tx) error {
		batch := &pgx.Batch{}
		for _, membership := range memberships {
			batch.Queue(query, membership.GroupID, membership.UserID, membership.Roles.Strings())
		}
		return transaction.SendBatch(context, batch).Close()
	})
}

// RemoveMemberships deletes the given (group, user) pairs with one statement.
func (repository *PostgresRepository) RemoveMemberships(context context.Context, memberships []*Membership) error {
	if len(memberships) == 0 {
		return nil
	}

	groupIDs := make([]string, len(memberships))
	userIDs := make([]string, len(memberships))
	for i, membership := range memberships {
		groupIDs[i] = membership.GroupID
		userIDs[i] = membership.UserID
	}

	const query = `
		DELETE FROM core.groupmember m
		USING unnest($1::uuid[], $2::uuid[]) AS t(groupid, userid)
		WHERE m.groupid = t.groupid AND m.userid = t.userid
	`
	if _, err := repository.db.Exec(context, query, groupIDs, userIDs); err != nil {
		return dberr.Wrap(err, "remove_memberships")
	}
	return nil
}

// DeleteGroup removes a group; memberships go with it through ON DELETE CASCADE.
func (repository *PostgresRepository) DeleteGroup(context context.Context, groupID string) error {
	const query = `DELETE FROM core.householdgroup WHERE id = $1`

	if _, err := repository.db.Exec(context, query, groupID); err != nil {
		return dberr.Wrap(err, "delete_group")
	}
	return nil
}

// # Group Lifecycle

/*
CreateGroup inserts the group row and its founding membership.

Parameters:
  - context: context.Context
  - group: *Group
  - founder: *Membership

Returns:
  - error: dberr.ErrConflict on a second personal group, or persistence failures
*/
func (repository *PostgresRepository) CreateGroup(context context.Context, group *Group, founder *Membership) error {
	const groupQuery = `
		INSERT INTO core.householdgroup (id, name, description, image, type, ownerid)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING createdat, updatedat
	`
	const memberQuery = `
		INSERT INTO core.groupmember (groupid, userid, roles)
		VALUES ($1, $2, $3)
		RETURNING position, joinedat
	`

	return repository.inTransaction(context, "create_group", func(transaction pgx.Tx) error {
		err := transaction.QueryRow(context, groupQuery,
			group.ID, group.Name, group.Description, group.Image, string(group.Type), group.OwnerID,
		).Scan(&group.CreatedAt, &group.UpdatedAt)
		if err != nil {
			return err
		}

		return transaction.QueryRow(context, memberQuery,
			founder.GroupID, founder.UserID, founder.Roles.Strings(),
		).Scan(&founder.Position, &founder.JoinedAt)
	})
}

// AddMembership inserts a membership and fills in its position.
func (repository *PostgresRepository) AddMembership(context context.Context, membership *Membership) error {
	const query = `
		INSERT INTO core.groupmember (groupid, userid, roles)
		VALUES ($1, $2, $3)
		RETURNING position, joinedat
	`
	err := repository.db.QueryRow(context, query,
		membership.GroupID, membership.UserID, membership.Roles.Strings(),
	).Scan(&membership.Position, &membership.JoinedAt)
	if err != nil {
		return dberr.Wrap(err, "add_membership")
	}
	return nil
}

const groupColumns = `id, name, description, image, type, ownerid, createdat, updatedat`

func scanGroup(row pgx.Row) (*Group, error) {
	group := &Group{}
	var groupType string

	err := row.Scan(
		&group.ID, &group.Name, &group.Description, &group.Image, &groupType,
		&group.OwnerID, &group.CreatedAt, &group.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	group.Type = Type(groupType)
	return group, nil
}

// FindGroupByID retrieves a single group by primary key.
func (repository *PostgresRepository) FindGroupByID(context context.Context, id string) (*Group, error) {
	const query = `SELECT ` + groupColumns + ` FROM core.householdgroup WHERE id = $1`

	group, err := scanGroup(repository.db.QueryRow(context, query, id))
	if err != nil {
		return nil, dberr.Wrap(err, "get_group_by_id")
	}
	return group, nil
}

// FindPersonalGroup retrieves the USER group owned by userID.
func (repository *PostgresRepository) FindPersonalGroup(context context.Context, userID string) (*Group, error) {
	const query = `SELECT ` + groupColumns + ` FROM core.householdgroup WHERE ownerid = $1 AND type = 'USER'`

	group, err := scanGroup(repository.db.QueryRow(context, query, userID))
	if err != nil {
		return nil, dberr.Wrap(err, "get_personal_group")
	}
	return group, nil
}

// # Transactions

// inTransaction runs fn inside a transaction and classifies its error.
func (repository *PostgresRepository) inTransaction(context context.Context, action string, fn func(pgx.Tx) error) error {
	return dberr.Wrap(pgx.BeginTxFunc(context, repository.db, pgx.TxOptions{}, fn), action)
}

// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package grouptest provides in-memory doubles for the group package.

[Repository] follows the same keyset pagination and not-found rules as the
PostgreSQL store, so services behave identically against either.
*/
package grouptest

import (
	"context"
	"slices"
	"strconv"
	"sync"
	"time"

	"github.com/taibuivan/hearth/internal/core/group"
	"github.com/taibuivan/hearth/internal/platform/dberr"
	"github.com/taibuivan/hearth/pkg/pagination"
)

// Operation names accepted by [Repository.FailOn].
const (
	OpListGroupMembers    = "ListGroupMembers"
	OpListUserMemberships = "ListUserMemberships"
	OpSaveMemberships     = "SaveMemberships"
	OpRemoveMemberships   = "RemoveMemberships"
	OpDeleteGroup         = "DeleteGroup"
	OpCountGroupMembers   = "CountGroupMembers"
)

// Repository is a thread-safe in-memory [group.Repository].
type Repository struct {
	mu       sync.RWMutex
	groups   map[string]*group.Group
	rows     []*group.Membership // ordered by Position
	position int64
	writes   int
	reads    int
	failures map[string]error
}

var _ group.Repository = (*Repository)(nil)

// NewRepository returns an empty store.
func NewRepository() *Repository {
	return &Repository{
		groups:   map[string]*group.Group{},
		failures: map[string]error{},
	}
}

// # Seeding

// Seed describes one membership for [Repository.SeedGroup].
type Seed struct {
	UserID string
	Roles  group.RoleSet
}

// Admin is a seed carrying ADMIN and MEMBER.
func Admin(userID string) Seed {
	return Seed{UserID: userID, Roles: group.Only(group.RoleAdmin).With(group.RoleMember)}
}

// Member is a seed carrying MEMBER only.
func Member(userID string) Seed {
	return Seed{UserID: userID, Roles: group.Only(group.RoleMember)}
}

// SeedGroup inserts a shared group and its members in the given order.
func (repository *Repository) SeedGroup(id, name string, seeds ...Seed) {
	repository.mu.Lock()
	defer repository.mu.Unlock()

	repository.groups[id] = &group.Group{ID: id, Name: name, Type: group.TypeGroup, CreatedAt: time.Now()}
	for _, seed := range seeds {
		repository.insert(&group.Membership{GroupID: id, UserID: seed.UserID, Roles: seed.Roles})
	}
}

// FailOn makes every later call of op return err. A nil err clears it.
func (repository *Repository) FailOn(op string, err error) {
	repository.mu.Lock()
	defer repository.mu.Unlock()

	if err == nil {
		delete(repository.failures, op)
		return
	}
	repository.failures[op] = err
}

// # Inspection

// Snapshot returns copies of a group's memberships in position order.
func (repository *Repository) Snapshot(groupID string) []group.Membership {
	repository.mu.RLock()
	defer repository.mu.RUnlock()

	var snapshot []group.Membership
	for _, row := range repository.rows {
		if row.GroupID == groupID {
			snapshot = append(snapshot, *row)
		}
	}
	return snapshot
}

// HasGroup reports whether the group row exists.
func (repository *Repository) HasGroup(groupID string) bool {
	repository.mu.RLock()
	defer repository.mu.RUnlock()

	_, ok := repository.groups[groupID]
	return ok
}

// Roles returns a member's role set and whether the membership exists.
func (repository *Repository) Roles(groupID, userID string) (group.RoleSet, bool) {
	repository.mu.RLock()
	defer repository.mu.RUnlock()

	if row := repository.find(groupID, userID); row != nil {
		return row.Roles, true
	}
	return 0, false
}

// Writes counts mutating calls that changed or could have changed state.
func (repository *Repository) Writes() int {
	repository.mu.RLock()
	defer repository.mu.RUnlock()
	return repository.writes
}

// Reads counts read calls.
func (repository *Repository) Reads() int {
	repository.mu.RLock()
	defer repository.mu.RUnlock()
	return repository.reads
}

// # group.Repository

func (repository *Repository) ListGroupMembers(_ context.Context, groupID, cursor string, limit int) (pagination.Page[*group.Membership], error) {
	repository.mu.Lock()
	defer repository.mu.Unlock()
	repository.reads++

	if err := repository.failures[OpListGroupMembers]; err != nil {
		return pagination.Page[*group.Membership]{}, err
	}

	page, err := repository.page(cursor, limit, func(row *group.Membership) bool { return row.GroupID == groupID })
	if err != nil {
		return page, err
	}
	if cursor == "" && len(page.Items) == 0 {
		return page, group.ErrGroupNotFound
	}
	return page, nil
}

func (repository *Repository) FindGroupMembersByUserIDs(_ context.Context, groupID string, userIDs []string) ([]*group.Membership, error) {
	repository.mu.Lock()
	defer repository.mu.Unlock()
	repository.reads++

	return repository.filter(func(row *group.Membership) bool {
		return row.GroupID == groupID && slices.Contains(userIDs, row.UserID)
	}), nil
}

func (repository *Repository) FindGroupMembersByRole(_ context.Context, groupID string, role group.Role) ([]*group.Membership, error) {
	repository.mu.Lock()
	defer repository.mu.Unlock()
	repository.reads++

	return repository.filter(func(row *group.Membership) bool {
		return row.GroupID == groupID && row.Roles.Has(role)
	}), nil
}

func (repository *Repository) CountGroupMembers(_ context.Context, groupID string) (int, error) {
	repository.mu.Lock()
	defer repository.mu.Unlock()
	repository.reads++

	if err := repository.failures[OpCountGroupMembers]; err != nil {
		return 0, err
	}

	return len(repository.filter(func(row *group.Membership) bool { return row.GroupID == groupID })), nil
}

func (repository *Repository) ListUserMemberships(_ context.Context, userID, cursor string, limit int) (pagination.Page[*group.Membership], error) {
	repository.mu.Lock()
	defer repository.mu.Unlock()
	repository.reads++

	if err := repository.failures[OpListUserMemberships]; err != nil {
		return pagination.Page[*group.Membership]{}, err
	}

	page, err := repository.page(cursor, limit, func(row *group.Membership) bool { return row.UserID == userID })
	for _, membership := range page.Items {
		if owner, ok := repository.groups[membership.GroupID]; ok {
			membership.GroupName = owner.Name
		}
	}
	return page, err
}

func (repository *Repository) SaveMemberships(_ context.Context, memberships []*group.Membership) error {
	repository.mu.Lock()
	defer repository.mu.Unlock()
	repository.writes++

	if err := repository.failures[OpSaveMemberships]; err != nil {
		return err
	}

	for _, membership := range memberships {
		if row := repository.find(membership.GroupID, membership.UserID); row != nil {
			row.Roles = membership.Roles
		}
	}
	return nil
}

func (repository *Repository) RemoveMemberships(_ context.Context, memberships []*group.Membership) error {
	repository.mu.Lock()
	defer repository.mu.Unlock()
	repository.writes++

	if err := repository.failures[OpRemoveMemberships]; err != nil {
		return err
	}

	repository.rows = slices.DeleteFunc(repository.rows, func(row *group.Membership) bool {
		return slices.ContainsFunc(memberships, func(membership *group.Membership) bool {
			return membership.GroupID == row.GroupID && membership.UserID == row.UserID
		})
	})
	return nil
}

func (repository *Repository) DeleteGroup(_ context.Context, groupID string) error {
	repository.mu.Lock()
	defer repository.mu.Unlock()
	repository.writes++

	if err := repository.failures[OpDeleteGroup]; err != nil {
		return err
	}

	delete(repository.groups, groupID)
	repository.rows = slices.DeleteFunc(repository.rows, func(row *group.Membership) bool {
		return row.GroupID == groupID
	})
	return nil
}

func (repository *Repository) CreateGroup(_ context.Context, newGroup *group.Group, founder *group.Membership) error {
	repository.mu.Lock()
	defer repository.mu.Unlock()
	repository.writes++

	if _, exists := repository.groups[newGroup.ID]; exists {
		return dberr.ErrConflict
	}
	if newGroup.Type == group.TypeUser && newGroup.OwnerID != nil && repository.personal(*newGroup.OwnerID) != nil {
		return dberr.ErrConflict
	}

	now := time.Now()
	newGroup.CreatedAt, newGroup.UpdatedAt = now, now

	stored := *newGroup
	repository.groups[newGroup.ID] = &stored

	row := repository.insert(founder)
	founder.Position, founder.JoinedAt = row.Position, row.JoinedAt
	return nil
}

func (repository *Repository) AddMembership(_ context.Context, membership *group.Membership) error {
	repository.mu.Lock()
	defer repository.mu.Unlock()
	repository.writes++

	if _, ok := repository.groups[membership.GroupID]; !ok {
		return dberr.ErrNotFound
	}
	if repository.find(membership.GroupID, membership.UserID) != nil {
		return dberr.ErrConflict
	}

	row := repository.insert(membership)
	membership.Position, membership.JoinedAt = row.Position, row.JoinedAt
	return nil
}

func (repository *Repository) FindGroupByID(_ context.Context, id string) (*group.Group, error) {
	repository.mu.Lock()
	defer repository.mu.Unlock()
	repository.reads++

	stored, ok := repository.groups[id]
	if !ok {
		return nil, dberr.ErrNotFound
	}
	copied := *stored
	return &copied, nil
}

func (repository *Repository) FindPersonalGroup(_ context.Context, userID string) (*group.Group, error) {
	repository.mu.Lock()
	defer repository.mu.Unlock()
	repository.reads++

	stored := repository.personal(userID)
	if stored == nil {
		return nil, dberr.ErrNotFound
	}
	copied := *stored
	return &copied, nil
}

// # Internals (callers hold mu)

func (repository *Repository) insert(membership *group.Membership) *group.Membership {
	repository.position++

	row := *membership
	row.Position = repository.position
	row.JoinedAt = time.Now()
	row.GroupName = ""

	repository.rows = append(repository.rows, &row)
	return &row
}

func (repository *Repository) find(groupID, userID string) *group.Membership {
	for _, row := range repository.rows {
		if row.GroupID == groupID && row.UserID == userID {
			return row
		}
	}
	return nil
}

func (repository *Repository) personal(userID string) *group.Group {
	for _, stored := range repository.groups {
		if stored.Type == group.TypeUser && stored.OwnerID != nil && *stored.OwnerID == userID {
			return stored
		}
	}
	return nil
}

// filter returns copies so callers cannot mutate stored rows.
func (repository *Repository) filter(match func(*group.Membership) bool) []*group.Membership {
	matched := []*group.Membership{}
	for _, row := range repository.rows {
		if match(row) {
			copied := *row
			matched = append(matched, &copied)
		}
	}
	return matched
}

// page applies the keyset rule: rows after the cursor position, at most limit.
func (repository *Repository) page(cursor string, limit int, match func(*group.Membership) bool) (pagination.Page[*group.Membership], error) {
	var page pagination.Page[*group.Membership]

	var after int64
	if cursor != "" {
		parsed, err := strconv.ParseInt(cursor, 10, 64)
		if err != nil {
			return page, group.ErrInvalidCursor
		}
		after = parsed
	}
	if limit < 1 {
		limit = pagination.DefaultLimit
	}

	candidates := repository.filter(func(row *group.Membership) bool {
		return row.Position > after && match(row)
	})

	if len(candidates) > limit {
		page.Items = candidates[:limit]
		page.NextCursor = strconv.FormatInt(candidates[limit-1].Position, 10)
		return page, nil
	}

	page.Items = candidates
	return page, nil
}

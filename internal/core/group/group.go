// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package group manages household groups and their memberships.

It owns the one hard rule of the sharing domain: a group that still has members
always has at least one administrator. Every operation that mutates membership
goes through a service in this package, which reads the current membership set,
decides in memory, validates the rule, and only then writes.

# Core Responsibility

  - Organization: Defines the [Group] entity and the personal ("USER") group.
  - Membership: Defines [Membership] and its [RoleSet].
  - Invariant: [RoleChangeService], [MemberRemovalService] and [DepartureService]
    refuse or repair any change that would leave a group without an admin.

Persistence and notification delivery are ports ([Repository], [Notifier]).
*/
package group

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// # Group Enums

// Role is a tag granting rights within a group.
type Role string

const (
	RoleAdmin  Role = "ADMIN"
	RoleMember Role = "MEMBER"
)

// ParseRole converts a case-insensitive tag into a [Role].
func ParseRole(value string) (Role, error) {
	switch Role(strings.ToUpper(strings.TrimSpace(value))) {
	case RoleAdmin:
		return RoleAdmin, nil
	case RoleMember:
		return RoleMember, nil
	default:
		return "", ErrInvalidRole
	}
}

// Type distinguishes personal groups from shared ones.
type Type string

const (
	// TypeUser is the personal group created on a user's first login.
	TypeUser Type = "USER"
	// TypeGroup is a shared group created explicitly.
	TypeGroup Type = "GROUP"
)

// # Role Sets

// RoleSet is the set of [Role] tags carried by a membership.
//
// The zero value is empty and never valid on a persisted membership;
// build sets with [NewRoleSet].
type RoleSet uint8

const (
	roleAdminBit RoleSet = 1 << iota
	roleMemberBit
)

// orderedRoles fixes the serialization order of a set.
var orderedRoles = []Role{RoleAdmin, RoleMember}

func (role Role) bit() RoleSet {
	switch role {
	case RoleAdmin:
		return roleAdminBit
	case RoleMember:
		return roleMemberBit
	default:
		return 0
	}
}

// NewRoleSet builds a set from role tags. It fails on unknown tags and on an empty set.
func NewRoleSet(roles ...Role) (RoleSet, error) {
	var set RoleSet
	for _, role := range roles {
		bit := role.bit()
		if bit == 0 {
			return 0, ErrInvalidRole
		}
		set |= bit
	}

	if set.IsEmpty() {
		return 0, ErrEmptyRoleSet
	}

	return set, nil
}

// ParseRoleSet builds a set from stored string tags.
func ParseRoleSet(values []string) (RoleSet, error) {
	roles := make([]Role, 0, len(values))
	for _, value := range values {
		role, err := ParseRole(value)
		if err != nil {
			return 0, err
		}
		roles = append(roles, role)
	}
	return NewRoleSet(roles...)
}

// Only returns the set holding exactly one role.
func Only(role Role) RoleSet {
	return role.bit()
}

// Has reports whether role is in the set.
func (set RoleSet) Has(role Role) bool {
	bit := role.bit()
	return bit != 0 && set&bit == bit
}

// With returns the set plus role.
func (set RoleSet) With(role Role) RoleSet {
	return set | role.bit()
}

// IsEmpty reports whether the set holds no role.
func (set RoleSet) IsEmpty() bool {
	return set&(roleAdminBit|roleMemberBit) == 0
}

// Roles lists the tags in a stable order.
func (set RoleSet) Roles() []Role {
	roles := make([]Role, 0, len(orderedRoles))
	for _, role := range orderedRoles {
		if set.Has(role) {
			roles = append(roles, role)
		}
	}
	return roles
}

// Strings lists the tags as plain strings, as stored in the database.
func (set RoleSet) Strings() []string {
	roles := set.Roles()
	values := make([]string, len(roles))
	for i, role := range roles {
		values[i] = string(role)
	}
	return values
}

func (set RoleSet) String() string {
	return "[" + strings.Join(set.Strings(), ",") + "]"
}

// MarshalJSON encodes the set as an array of tags.
func (set RoleSet) MarshalJSON() ([]byte, error) {
	return json.Marshal(set.Strings())
}

// UnmarshalJSON decodes an array of tags, rejecting empty arrays.
func (set *RoleSet) UnmarshalJSON(data []byte) error {
	var values []string
	if err := json.Unmarshal(data, &values); err != nil {
		return fmt.Errorf("group: role set must be an array of strings: %w", err)
	}

	parsed, err := ParseRoleSet(values)
	if err != nil {
		return err
	}

	*set = parsed
	return nil
}

// # Core Entities

// Group is a named collection of users sharing orders and lists.
type Group struct {
	ID          string    `json:"id"` // UUIDv7
	Name        string    `json:"name"`
	Description *string   `json:"description,omitempty"`
	Image       *string   `json:"image,omitempty"`
	Type        Type      `json:"type"`
	OwnerID     *string   `json:"owner_id,omitempty"` // Set on personal groups only
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Membership associates one user with one group.
type Membership struct {
	GroupID  string    `json:"group_id"`
	UserID   string    `json:"user_id"`
	Roles    RoleSet   `json:"roles"`
	Position int64     `json:"-"` // Insertion sequence; defines iteration order
	JoinedAt time.Time `json:"joined_at"`

	// GroupName is denormalized on user listings so callers can address notifications.
	GroupName string `json:"group_name,omitempty"`
}

// IsAdmin reports whether the membership carries [RoleAdmin].
func (membership *Membership) IsAdmin() bool {
	return membership.Roles.Has(RoleAdmin)
}

// # Operation Results

// Promotion records a member promoted to admin because the last admin left.
type Promotion struct {
	GroupID   string `json:"group_id"`
	GroupName string `json:"group_name"`
	UserID    string `json:"user_id"`
}

// DepartureResult partitions every group a departing user belonged to.
//
// Each group appears in exactly one of the three lists.
type DepartureResult struct {
	// DeletedGroups were emptied by the departure and removed.
	DeletedGroups []string `json:"deleted_groups"`
	// RemovedFrom lost the user's membership without needing a new admin.
	RemovedFrom []string `json:"removed_from"`
	// Promotions lists groups where a replacement admin was appointed.
	Promotions []Promotion `json:"promotions"`
	// Cursor is where an interrupted departure can resume. Empty once complete,
	// or when the first page failed and the departure must restart.
	Cursor string `json:"cursor,omitempty"`
}

// newDepartureResult returns a result with non-nil lists so it encodes as arrays.
func newDepartureResult() *DepartureResult {
	return &DepartureResult{
		DeletedGroups: []string{},
		RemovedFrom:   []string{},
		Promotions:    []Promotion{},
	}
}

// Outcomes is the number of groups the departure touched.
func (result *DepartureResult) Outcomes() int {
	return len(result.DeletedGroups) + len(result.RemovedFrom) + len(result.Promotions)
}

// # Field Identifiers

const (
	FieldName    = "name"
	FieldImage   = "image"
	FieldUserIDs = "user_ids"
	FieldRole    = "role"
	FieldGroupID = "group_id"
	FieldUserID  = "user_id"
)

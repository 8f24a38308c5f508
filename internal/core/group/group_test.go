// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package group_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/hearth/internal/core/group"
)

/*
TestNewRoleSet verifies that a membership can never carry an empty role set.
*/
func TestNewRoleSet(t *testing.T) {
	_, err := group.NewRoleSet()
	assert.ErrorIs(t, err, group.ErrEmptyRoleSet)

	_, err = group.NewRoleSet(group.Role("OWNER"))
	assert.ErrorIs(t, err, group.ErrInvalidRole)

	set, err := group.NewRoleSet(group.RoleMember, group.RoleAdmin, group.RoleMember)
	require.NoError(t, err)
	assert.True(t, set.Has(group.RoleAdmin))
	assert.True(t, set.Has(group.RoleMember))
	assert.Equal(t, []group.Role{group.RoleAdmin, group.RoleMember}, set.Roles())
	assert.Equal(t, "[ADMIN,MEMBER]", set.String())
}

/*
TestRoleSet_With verifies that adding a role keeps the existing ones.
*/
func TestRoleSet_With(t *testing.T) {
	member := group.Only(group.RoleMember)
	promoted := member.With(group.RoleAdmin)

	assert.False(t, member.Has(group.RoleAdmin))
	assert.True(t, promoted.Has(group.RoleAdmin))
	assert.True(t, promoted.Has(group.RoleMember))
	assert.Equal(t, promoted, promoted.With(group.RoleAdmin))
}

/*
TestParseRole covers accepted spellings and rejects unknown tags.
*/
func TestParseRole(t *testing.T) {
	tests := []struct {
		input string
		want  group.Role
		fails bool
	}{
		{"ADMIN", group.RoleAdmin, false},
		{"member", group.RoleMember, false},
		{" Admin ", group.RoleAdmin, false},
		{"owner", "", true},
		{"", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			role, err := group.ParseRole(tt.input)
			if tt.fails {
				assert.ErrorIs(t, err, group.ErrInvalidRole)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, role)
		})
	}
}

/*
TestRoleSet_JSON verifies the array wire form and rejection of empty arrays.
*/
func TestRoleSet_JSON(t *testing.T) {
	payload, err := json.Marshal(group.Membership{UserID: userA, Roles: group.Only(group.RoleAdmin).With(group.RoleMember)})
	require.NoError(t, err)
	assert.Contains(t, string(payload), `"roles":["ADMIN","MEMBER"]`)

	var decoded group.Membership
	require.NoError(t, json.Unmarshal(payload, &decoded))
	assert.True(t, decoded.IsAdmin())

	err = json.Unmarshal([]byte(`{"roles":[]}`), &decoded)
	assert.ErrorIs(t, err, group.ErrEmptyRoleSet)
}

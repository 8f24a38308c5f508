// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package group_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/hearth/internal/core/group"
	"github.com/taibuivan/hearth/internal/core/group/grouptest"
)

/*
TestChangeRole_DemotingSoleAdmin verifies that the last admin cannot be demoted
and that the group is left exactly as it was.
*/
func TestChangeRole_DemotingSoleAdmin(t *testing.T) {
	for _, size := range pageSizes {
		t.Run(pageName(size), func(t *testing.T) {
			repo := seededRepository()
			before := repo.Snapshot(groupG)
			service := group.NewRoleChangeService(repo, options(size), discardLogger)

			changed, err := service.ChangeRole(context.Background(), groupG, []string{userA}, group.RoleMember)

			assert.ErrorIs(t, err, group.ErrGroupWithoutAdmins)
			assert.Nil(t, changed)
			assert.Equal(t, before, repo.Snapshot(groupG))
			assert.Zero(t, repo.Writes())
		})
	}
}

/*
TestChangeRole_DemotingOneOfTwoAdmins verifies that demotion succeeds while
another admin remains, and replaces the role set.
*/
func TestChangeRole_DemotingOneOfTwoAdmins(t *testing.T) {
	for _, size := range pageSizes {
		t.Run(pageName(size), func(t *testing.T) {
			repo := grouptest.NewRepository()
			repo.SeedGroup(groupG, "Kitchen", grouptest.Admin(userA), grouptest.Admin(userB), grouptest.Member(userC))
			service := group.NewRoleChangeService(repo, options(size), discardLogger)

			changed, err := service.ChangeRole(context.Background(), groupG, []string{userA}, group.RoleMember)
			require.NoError(t, err)
			assert.Equal(t, []string{userA}, changed)

			roles, ok := repo.Roles(groupG, userA)
			require.True(t, ok)
			assert.Equal(t, group.Only(group.RoleMember), roles)
			assert.Equal(t, 1, adminCount(repo.Snapshot(groupG)))
		})
	}
}

/*
TestChangeRole_Promote verifies that promoting members always succeeds and
reports matches in membership order.
*/
func TestChangeRole_Promote(t *testing.T) {
	for _, size := range pageSizes {
		t.Run(pageName(size), func(t *testing.T) {
			repo := seededRepository()
			service := group.NewRoleChangeService(repo, options(size), discardLogger)

			changed, err := service.ChangeRole(context.Background(), groupG, []string{userC, userB}, group.RoleAdmin)
			require.NoError(t, err)
			assert.Equal(t, []string{userB, userC}, changed)
			assert.Equal(t, 3, adminCount(repo.Snapshot(groupG)))
		})
	}
}

/*
TestChangeRole_DemoteAllAtOnce verifies that demoting every admin in one call
is refused even when each demotion alone would be allowed.
*/
func TestChangeRole_DemoteAllAtOnce(t *testing.T) {
	repo := grouptest.NewRepository()
	repo.SeedGroup(groupG, "Kitchen", grouptest.Admin(userA), grouptest.Admin(userB), grouptest.Member(userC))
	service := group.NewRoleChangeService(repo, options(2), discardLogger)

	_, err := service.ChangeRole(context.Background(), groupG, []string{userA, userB}, group.RoleMember)
	assert.ErrorIs(t, err, group.ErrGroupWithoutAdmins)
	assert.Equal(t, 2, adminCount(repo.Snapshot(groupG)))
}

/*
TestChangeRole_NoTargets verifies that an empty id list never touches storage.
*/
func TestChangeRole_NoTargets(t *testing.T) {
	tests := []struct {
		name string
		ids  []string
	}{
		{"nil", nil},
		{"empty", []string{}},
		{"blank", []string{""}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := seededRepository()
			service := group.NewRoleChangeService(repo, options(2), discardLogger)

			changed, err := service.ChangeRole(context.Background(), groupG, tt.ids, group.RoleMember)
			require.NoError(t, err)
			assert.Empty(t, changed)
			assert.Zero(t, repo.Reads())
			assert.Zero(t, repo.Writes())
		})
	}
}

/*
TestChangeRole_UnmatchedIDs verifies that ids outside the group are dropped
from the result without affecting it.
*/
func TestChangeRole_UnmatchedIDs(t *testing.T) {
	for _, size := range pageSizes {
		t.Run(pageName(size), func(t *testing.T) {
			withExtra := group.NewRoleChangeService(seededRepository(), options(size), discardLogger)
			withoutExtra := group.NewRoleChangeService(seededRepository(), options(size), discardLogger)

			got, err := withExtra.ChangeRole(context.Background(), groupG, []string{stranger, userB}, group.RoleAdmin)
			require.NoError(t, err)
			want, err := withoutExtra.ChangeRole(context.Background(), groupG, []string{userB}, group.RoleAdmin)
			require.NoError(t, err)

			assert.Equal(t, want, got)

			only, err := withExtra.ChangeRole(context.Background(), groupG, []string{stranger}, group.RoleMember)
			require.NoError(t, err)
			assert.Empty(t, only)
		})
	}
}

/*
TestChangeRole_Failures verifies validation and propagated repository errors.
*/
func TestChangeRole_Failures(t *testing.T) {
	t.Run("invalid_role", func(t *testing.T) {
		repo := seededRepository()
		service := group.NewRoleChangeService(repo, options(2), discardLogger)

		_, err := service.ChangeRole(context.Background(), groupG, []string{userB}, group.Role("OWNER"))
		assert.ErrorIs(t, err, group.ErrInvalidRole)
		assert.Zero(t, repo.Writes())
	})

	t.Run("unknown_group", func(t *testing.T) {
		service := group.NewRoleChangeService(grouptest.NewRepository(), options(2), discardLogger)

		_, err := service.ChangeRole(context.Background(), groupS, []string{userB}, group.RoleAdmin)
		assert.ErrorIs(t, err, group.ErrGroupNotFound)
	})

	t.Run("save_failure", func(t *testing.T) {
		cause := errors.New("connection reset")
		repo := seededRepository()
		repo.FailOn(grouptest.OpSaveMemberships, cause)
		service := group.NewRoleChangeService(repo, options(2), discardLogger)

		_, err := service.ChangeRole(context.Background(), groupG, []string{userB}, group.RoleAdmin)
		assert.ErrorIs(t, err, cause)
	})
}

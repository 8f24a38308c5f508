// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package group_test

import (
	"context"
	"errors"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/hearth/internal/core/group"
	"github.com/taibuivan/hearth/internal/core/group/grouptest"
)

/*
TestRemoveMembers_Refusals covers removals that would break the group, and
checks that nothing is written when they are refused.
*/
func TestRemoveMembers_Refusals(t *testing.T) {
	tests := []struct {
		name  string
		seeds []grouptest.Seed
		ids   []string
		want  error
	}{
		{
			name:  "would_empty_group",
			seeds: []grouptest.Seed{grouptest.Admin(userA), grouptest.Member(userB)},
			ids:   []string{userA, userB},
			want:  group.ErrCannotEmptyGroup,
		},
		{
			name:  "would_remove_sole_admin",
			seeds: []grouptest.Seed{grouptest.Admin(userA), grouptest.Member(userB)},
			ids:   []string{userA},
			want:  group.ErrGroupWithoutAdmins,
		},
		{
			name:  "would_remove_every_admin",
			seeds: []grouptest.Seed{grouptest.Admin(userA), grouptest.Admin(userB), grouptest.Member(userC)},
			ids:   []string{userA, userB},
			want:  group.ErrGroupWithoutAdmins,
		},
		{
			name:  "empty_check_wins",
			seeds: []grouptest.Seed{grouptest.Admin(userA)},
			ids:   []string{userA},
			want:  group.ErrCannotEmptyGroup,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := grouptest.NewRepository()
			repo.SeedGroup(groupG, "Kitchen", tt.seeds...)
			before := repo.Snapshot(groupG)
			service := group.NewMemberRemovalService(repo, options(2), discardLogger)

			removed, err := service.RemoveMembers(context.Background(), groupG, tt.ids)

			assert.ErrorIs(t, err, tt.want)
			assert.Nil(t, removed)
			assert.Equal(t, before, repo.Snapshot(groupG))
			assert.Zero(t, repo.Writes())
		})
	}
}

/*
TestRemoveMembers_Success verifies removal of non-admins and of one of several admins.
*/
func TestRemoveMembers_Success(t *testing.T) {
	repo := grouptest.NewRepository()
	repo.SeedGroup(groupG, "Kitchen", grouptest.Admin(userA), grouptest.Admin(userB), grouptest.Member(userC), grouptest.Member(userW))
	service := group.NewMemberRemovalService(repo, options(2), discardLogger)

	removed, err := service.RemoveMembers(context.Background(), groupG, []string{userC, userA})
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{userA, userC}, removed)

	snapshot := repo.Snapshot(groupG)
	require.Len(t, snapshot, 2)
	assert.Equal(t, userB, snapshot[0].UserID)
	assert.Equal(t, 1, adminCount(snapshot))
}

/*
TestRemoveMembers_NoMatch verifies that unmatched ids never reach the write path.
*/
func TestRemoveMembers_NoMatch(t *testing.T) {
	repo := seededRepository()
	service := group.NewMemberRemovalService(repo, options(2), discardLogger)

	removed, err := service.RemoveMembers(context.Background(), groupG, []string{stranger})
	require.NoError(t, err)
	assert.Empty(t, removed)
	assert.Zero(t, repo.Writes())

	removed, err = service.RemoveMembers(context.Background(), groupG, nil)
	require.NoError(t, err)
	assert.Empty(t, removed)
	assert.Equal(t, 1, repo.Reads())
}

/*
TestRemoveMembers_UnmatchedIDs verifies that extraneous ids do not change the result.
*/
func TestRemoveMembers_UnmatchedIDs(t *testing.T) {
	withExtra := group.NewMemberRemovalService(seededRepository(), options(2), discardLogger)
	withoutExtra := group.NewMemberRemovalService(seededRepository(), options(2), discardLogger)

	got, err := withExtra.RemoveMembers(context.Background(), groupG, []string{userB, stranger})
	require.NoError(t, err)
	want, err := withoutExtra.RemoveMembers(context.Background(), groupG, []string{userB})
	require.NoError(t, err)

	assert.Equal(t, want, got)
}

/*
TestRemoveMembers_RepositoryFailure verifies that storage errors propagate untouched.
*/
func TestRemoveMembers_RepositoryFailure(t *testing.T) {
	cause := errors.New("connection reset")
	repo := seededRepository()
	repo.FailOn(grouptest.OpCountGroupMembers, cause)
	service := group.NewMemberRemovalService(repo, options(2), discardLogger)

	_, err := service.RemoveMembers(context.Background(), groupG, []string{userB})
	assert.ErrorIs(t, err, cause)
	assert.Zero(t, repo.Writes())
}

/*
TestMembershipOperations_PreserveAdmin applies random role changes and removals
and checks after every step that a non-empty group still has an admin.
*/
func TestMembershipOperations_PreserveAdmin(t *testing.T) {
	users := []string{userA, userB, userC, userU, userV, userW}

	for _, size := range pageSizes {
		t.Run(pageName(size), func(t *testing.T) {
			random := rand.New(rand.NewSource(int64(size)))

			repo := grouptest.NewRepository()
			repo.SeedGroup(groupG, "Kitchen",
				grouptest.Admin(userA), grouptest.Member(userB), grouptest.Member(userC),
				grouptest.Member(userU), grouptest.Member(userV), grouptest.Member(userW),
			)
			roles := group.NewRoleChangeService(repo, options(size), discardLogger)
			removal := group.NewMemberRemovalService(repo, options(size), discardLogger)

			for step := 0; step < 200; step++ {
				targets := pick(random, users)
				before := repo.Snapshot(groupG)

				var err error
				switch random.Intn(3) {
				case 0:
					_, err = roles.ChangeRole(context.Background(), groupG, targets, group.RoleMember)
				case 1:
					_, err = roles.ChangeRole(context.Background(), groupG, targets, group.RoleAdmin)
				default:
					_, err = removal.RemoveMembers(context.Background(), groupG, targets)
				}

				after := repo.Snapshot(groupG)
				if errors.Is(err, group.ErrGroupWithoutAdmins) || errors.Is(err, group.ErrCannotEmptyGroup) {
					require.Equal(t, before, after, "step %d: refused call changed state", step)
				} else {
					require.NoError(t, err, "step %d", step)
				}

				require.NotEmpty(t, after, "step %d: group emptied", step)
				require.Positive(t, adminCount(after), "step %d: group without admin", step)
			}
		})
	}
}

// pick returns a random non-empty subset of users.
func pick(random *rand.Rand, users []string) []string {
	var subset []string
	for len(subset) == 0 {
		for _, user := range users {
			if random.Intn(3) == 0 {
				subset = append(subset, user)
			}
		}
	}
	return subset
}

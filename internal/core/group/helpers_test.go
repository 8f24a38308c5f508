// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package group_test

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/taibuivan/hearth/internal/core/group"
	"github.com/taibuivan/hearth/internal/core/group/grouptest"
)

// pageSizes covers one row per page up to everything in a single page.
var pageSizes = []int{1, 2, 3, 7, 1000}

var discardLogger = slog.New(slog.NewTextHandler(io.Discard, nil))

const (
	groupG = "0190a6c2-0000-7000-8000-00000000000a"
	groupP = "0190a6c2-0000-7000-8000-00000000000b"
	groupS = "0190a6c2-0000-7000-8000-00000000000c"

	userA = "0190a6c2-0000-7000-8000-0000000000a1"
	userB = "0190a6c2-0000-7000-8000-0000000000b1"
	userC = "0190a6c2-0000-7000-8000-0000000000c1"
	userU = "0190a6c2-0000-7000-8000-0000000000d1"
	userV = "0190a6c2-0000-7000-8000-0000000000e1"
	userW = "0190a6c2-0000-7000-8000-0000000000f1"

	stranger = "0190a6c2-0000-7000-8000-0000000000ff"
)

func options(pageSize int) group.Options {
	return group.Options{PageSize: pageSize}
}

func pageName(pageSize int) string {
	return fmt.Sprintf("page_size_%d", pageSize)
}

// adminCount counts memberships with ADMIN in a snapshot.
func adminCount(snapshot []group.Membership) int {
	count := 0
	for _, membership := range snapshot {
		if membership.IsAdmin() {
			count++
		}
	}
	return count
}

// seededRepository builds {A(admin), B, C} in group G.
func seededRepository() *grouptest.Repository {
	repo := grouptest.NewRepository()
	repo.SeedGroup(groupG, "Kitchen", grouptest.Admin(userA), grouptest.Member(userB), grouptest.Member(userC))
	return repo
}

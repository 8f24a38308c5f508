// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package dberr_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/hearth/internal/platform/apperr"
	"github.com/taibuivan/hearth/internal/platform/dberr"
)

/*
TestWrap classifies driver errors into application errors.
*/
func TestWrap(t *testing.T) {
	assert.NoError(t, dberr.Wrap(nil, "noop"))

	t.Run("no_rows", func(t *testing.T) {
		err := dberr.Wrap(fmt.Errorf("scan: %w", pgx.ErrNoRows), "find_group")
		assert.ErrorIs(t, err, dberr.ErrNotFound)
	})

	t.Run("unique_violation", func(t *testing.T) {
		err := dberr.Wrap(&pgconn.PgError{Code: pgerrcode.UniqueViolation}, "add_member")
		assert.ErrorIs(t, err, dberr.ErrConflict)
	})

	t.Run("connection_failure", func(t *testing.T) {
		cause := errors.New("connection refused")
		err := dberr.Wrap(cause, "save_memberships")

		ae := apperr.As(err)
		require.NotNil(t, ae)
		assert.Equal(t, "INTERNAL_ERROR", ae.Code)
		assert.ErrorIs(t, err, cause)
		assert.Contains(t, ae.Cause.Error(), "save_memberships")
	})
}

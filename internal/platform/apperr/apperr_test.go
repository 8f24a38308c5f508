// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package apperr_test

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/hearth/internal/platform/apperr"
)

/*
TestAppError_IsByCode verifies that copies of a sentinel still match it.
*/
func TestAppError_IsByCode(t *testing.T) {
	sentinel := apperr.New("GROUP_WITHOUT_ADMINS", http.StatusConflict, "no admin left")
	cause := errors.New("downstream")

	copied := sentinel.WithCause(cause).WithMessage("more specific")
	wrapped := fmt.Errorf("change roles: %w", copied)

	assert.ErrorIs(t, wrapped, sentinel)
	assert.ErrorIs(t, wrapped, cause)
	assert.NotErrorIs(t, wrapped, apperr.NotFound("Group"))

	// The sentinel itself is left untouched
	assert.Equal(t, "no admin left", sentinel.Message)
	assert.Nil(t, sentinel.Cause)
}

/*
TestAs extracts the AppError from a wrapped chain.
*/
func TestAs(t *testing.T) {
	err := fmt.Errorf("outer: %w", apperr.Conflict("duplicate"))

	ae := apperr.As(err)
	require.NotNil(t, ae)
	assert.Equal(t, http.StatusConflict, ae.HTTPStatus)

	assert.Nil(t, apperr.As(errors.New("plain")))
}

/*
TestInternal_HidesCause verifies that the client message never carries the cause.
*/
func TestInternal_HidesCause(t *testing.T) {
	err := apperr.Internal(errors.New("pq: relation does not exist"))

	assert.Equal(t, "An unexpected error occurred", err.Error())
	assert.Equal(t, http.StatusInternalServerError, err.HTTPStatus)
}

// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package group_test

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/hearth/internal/core/group"
	"github.com/taibuivan/hearth/internal/core/group/grouptest"
	"github.com/taibuivan/hearth/internal/platform/ctxutil"
	"github.com/taibuivan/hearth/internal/platform/sec"
)

// newRouter mounts the group routes the way the API server does.
func newRouter(repo *grouptest.Repository, notifier *grouptest.Notifier) http.Handler {
	opts := options(2)
	handler := group.NewHandler(
		group.NewService(repo, discardLogger),
		group.NewRoleChangeService(repo, opts, discardLogger),
		group.NewMemberRemovalService(repo, opts, discardLogger),
		group.NewDepartureService(repo, notifier, opts, discardLogger),
	)

	router := chi.NewRouter()
	router.Mount("/groups", handler.Routes())
	router.Mount("/users/me", handler.UserRoutes())
	return router
}

// serve performs a request as userID; an empty userID is anonymous.
func serve(t *testing.T, router http.Handler, method, path, body, userID string) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()

	request := httptest.NewRequest(method, path, strings.NewReader(body))
	if userID != "" {
		request = request.WithContext(ctxutil.WithAuthUser(request.Context(), &sec.AuthClaims{UserID: userID}))
	}

	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, request)

	var envelope map[string]any
	if recorder.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &envelope))
	}
	return recorder, envelope
}

/*
TestHandler_ChangeRoles covers the role endpoint's success and conflict paths.
*/
func TestHandler_ChangeRoles(t *testing.T) {
	tests := []struct {
		name   string
		body   string
		status int
		code   string
	}{
		{"promote", `{"user_ids":["` + userB + `"],"role":"admin"}`, http.StatusOK, ""},
		{"demote_sole_admin", `{"user_ids":["` + userA + `"],"role":"MEMBER"}`, http.StatusConflict, "GROUP_WITHOUT_ADMINS"},
		{"unknown_role", `{"user_ids":["` + userB + `"],"role":"OWNER"}`, http.StatusBadRequest, "INVALID_ROLE"},
		{"bad_user_id", `{"user_ids":["bob"],"role":"ADMIN"}`, http.StatusBadRequest, "VALIDATION_ERROR"},
		{"bad_json", `{`, http.StatusBadRequest, "VALIDATION_ERROR"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := newRouter(seededRepository(), grouptest.NewNotifier())

			recorder, envelope := serve(t, router, http.MethodPatch, "/groups/"+groupG+"/members/roles", tt.body, userA)

			assert.Equal(t, tt.status, recorder.Code)
			if tt.code != "" {
				assert.Equal(t, tt.code, envelope["code"])
			}
		})
	}
}

/*
TestHandler_RemoveMembers verifies the removal endpoint and its conflict codes.
*/
func TestHandler_RemoveMembers(t *testing.T) {
	router := newRouter(seededRepository(), grouptest.NewNotifier())

	recorder, envelope := serve(t, router, http.MethodDelete, "/groups/"+groupG+"/members",
		`{"user_ids":["`+userA+`","`+userB+`","`+userC+`"]}`, userA)
	assert.Equal(t, http.StatusConflict, recorder.Code)
	assert.Equal(t, "GROUP_WOULD_BE_EMPTY", envelope["code"])

	recorder, envelope = serve(t, router, http.MethodDelete, "/groups/"+groupG+"/members",
		`{"user_ids":["`+userC+`"]}`, userA)
	assert.Equal(t, http.StatusOK, recorder.Code)
	data := envelope["data"].(map[string]any)
	assert.Equal(t, []any{userC}, data["user_ids"])
}

/*
TestHandler_Depart verifies that a notification failure still returns the committed result.
*/
func TestHandler_Depart(t *testing.T) {
	repo := grouptest.NewRepository()
	repo.SeedGroup(groupS, "Shared Kitchen", grouptest.Admin(userU), grouptest.Member(userV))
	notifier := grouptest.NewNotifier()
	notifier.FailFor(userV)
	router := newRouter(repo, notifier)

	recorder, envelope := serve(t, router, http.MethodDelete, "/users/me/memberships", "", userU)

	assert.Equal(t, http.StatusBadGateway, recorder.Code)
	assert.Equal(t, "NOTIFICATION_FAILED", envelope["code"])
	data := envelope["data"].(map[string]any)
	assert.Len(t, data["promotions"], 1)

	recorder, _ = serve(t, router, http.MethodDelete, "/users/me/memberships", "", "")
	assert.Equal(t, http.StatusUnauthorized, recorder.Code)
}

/*
TestHandler_DepartInterrupted verifies that an interrupted departure returns
whatever it committed, and nothing when it committed nothing.
*/
func TestHandler_DepartInterrupted(t *testing.T) {
	tests := []struct {
		name     string
		failOn   string
		wantData bool
	}{
		{"after_deleting_a_group", grouptest.OpSaveMemberships, true},
		{"before_any_write", grouptest.OpListUserMemberships, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := grouptest.NewRepository()
			repo.SeedGroup(groupP, "U's Home", grouptest.Admin(userU))
			repo.SeedGroup(groupS, "Shared Kitchen", grouptest.Admin(userU), grouptest.Member(userV))
			repo.FailOn(tt.failOn, errors.New("connection reset"))
			router := newRouter(repo, grouptest.NewNotifier())

			recorder, envelope := serve(t, router, http.MethodDelete, "/users/me/memberships", "", userU)

			assert.Equal(t, http.StatusInternalServerError, recorder.Code)
			assert.Equal(t, "INTERNAL_ERROR", envelope["code"])
			if !tt.wantData {
				assert.NotContains(t, envelope, "data")
				return
			}

			data := envelope["data"].(map[string]any)
			assert.Equal(t, []any{groupP}, data["deleted_groups"])
			assert.Empty(t, data["promotions"])
		})
	}
}

/*
TestHandler_GroupLifecycle walks create, read, list and personal group endpoints.
*/
func TestHandler_GroupLifecycle(t *testing.T) {
	router := newRouter(grouptest.NewRepository(), grouptest.NewNotifier())

	recorder, envelope := serve(t, router, http.MethodPost, "/groups", `{"name":"Weekend Cabin"}`, userA)
	require.Equal(t, http.StatusCreated, recorder.Code)
	id := envelope["data"].(map[string]any)["id"].(string)

	recorder, _ = serve(t, router, http.MethodGet, "/groups/"+id, "", userA)
	assert.Equal(t, http.StatusOK, recorder.Code)

	recorder, _ = serve(t, router, http.MethodPost, "/groups/"+id+"/members", `{"user_id":"`+userB+`","roles":["MEMBER"]}`, userA)
	assert.Equal(t, http.StatusCreated, recorder.Code)

	recorder, envelope = serve(t, router, http.MethodGet, "/groups/"+id+"/members?limit=1", "", userA)
	assert.Equal(t, http.StatusOK, recorder.Code)
	meta := envelope["meta"].(map[string]any)
	assert.Equal(t, true, meta["has_more"])

	recorder, _ = serve(t, router, http.MethodGet, "/groups/not-a-uuid", "", userA)
	assert.Equal(t, http.StatusBadRequest, recorder.Code)

	recorder, _ = serve(t, router, http.MethodGet, "/groups/"+groupS, "", userA)
	assert.Equal(t, http.StatusNotFound, recorder.Code)

	recorder, _ = serve(t, router, http.MethodPost, "/users/me/personal-group", `{"name":"A's Home"}`, userA)
	assert.Equal(t, http.StatusCreated, recorder.Code)
	recorder, _ = serve(t, router, http.MethodPost, "/users/me/personal-group", `{"name":"A's Home"}`, userA)
	assert.Equal(t, http.StatusOK, recorder.Code)
}

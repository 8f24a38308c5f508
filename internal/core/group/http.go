// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package group

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	requestutil "github.com/taibuivan/hearth/internal/platform/request"
	"github.com/taibuivan/hearth/internal/platform/respond"
	"github.com/taibuivan/hearth/internal/platform/validate"
	"github.com/taibuivan/hearth/pkg/pagination"
	"github.com/taibuivan/hearth/pkg/uuid"
)

// # Handler Implementation

// Handler implements the HTTP layer for groups and memberships.
//
// Every route requires an authenticated caller. Whether the caller may act
// on a given group is decided upstream of this handler.
type Handler struct {
	service   *Service
	roles     *RoleChangeService
	removal   *MemberRemovalService
	departure *DepartureService
}

// NewHandler constructs a new group [Handler].
func NewHandler(service *Service, roles *RoleChangeService, removal *MemberRemovalService, departure *DepartureService) *Handler {
	return &Handler{
		service:   service,
		roles:     roles,
		removal:   removal,
		departure: departure,
	}
}

// Routes returns a [chi.Router] for /groups.
func (handler *Handler) Routes() chi.Router {
	router := chi.NewRouter()

	router.Post("/", handler.createGroup)

	router.Route("/{id}", func(subRouter chi.Router) {
		subRouter.Get("/", handler.getGroup)
		subRouter.Route("/members", func(members chi.Router) {
			members.Get("/", handler.listMembers)
			members.Post("/", handler.addMember)
			members.Delete("/", handler.removeMembers)
			members.Patch("/roles", handler.changeRoles)
		})
	})

	return router
}

// UserRoutes returns a [chi.Router] for /users/me.
func (handler *Handler) UserRoutes() chi.Router {
	router := chi.NewRouter()

	router.Post("/personal-group", handler.ensurePersonalGroup)
	router.Delete("/memberships", handler.depart)

	return router
}

// # Request Bodies

type createGroupRequest struct {
	Name        string  `json:"name"`
	Description *string `json:"description"`
	Image       *string `json:"image"`
}

type addMemberRequest struct {
	UserID string   `json:"user_id"`
	Roles  []string `json:"roles"`
}

type changeRolesRequest struct {
	UserIDs []string `json:"user_ids"`
	Role    string   `json:"role"`
}

type removeMembersRequest struct {
	UserIDs []string `json:"user_ids"`
}

type personalGroupRequest struct {
	Name string `json:"name"`
}

// userIDsResponse reports the members an operation actually touched.
type userIDsResponse struct {
	UserIDs []string `json:"user_ids"`
}

// groupID reads and validates the {id} path parameter.
func groupID(request *http.Request) (string, error) {
	id := requestutil.ID(request, "id")
	if !uuid.Valid(id) {
		return "", validate.RequiredError(FieldGroupID, "Must be a valid UUID")
	}
	return id, nil
}

// # Group Endpoints

/*
POST /api/v1/groups.

Description: Creates a shared group. The caller becomes its first admin.

Request (Body):
  - { "name": "string", "description": "string", "image": "string" }

Response:
  - 201: Group: Created object
  - 400: ErrInvalidJSON/Validation: Invalid input data
  - 401: ErrUnauthorized: Authentication required
*/
func (handler *Handler) createGroup(writer http.ResponseWriter, request *http.Request) {
	userID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var input createGroupRequest
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	group := &Group{Name: input.Name, Description: input.Description, Image: input.Image}
	if err := handler.service.CreateGroup(request.Context(), group, userID); err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Created(writer, group)
}

/*
GET /api/v1/groups/{id}.

Response:
  - 200: Group: Success
  - 400: Validation: Malformed id
  - 404: ErrNotFound: Group not found
*/
func (handler *Handler) getGroup(writer http.ResponseWriter, request *http.Request) {
	id, err := groupID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	group, err := handler.service.GetGroup(request.Context(), id)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, group)
}

// # Membership Endpoints

/*
GET /api/v1/groups/{id}/members.

Description: Lists memberships in join order, one cursor page at a time.

Request:
  - cursor: string (from meta.next_cursor)
  - limit: int

Response:
  - 200: []Membership: Paginated list
  - 404: ErrNotFound: Group not found
*/
func (handler *Handler) listMembers(writer http.ResponseWriter, request *http.Request) {
	id, err := groupID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	params := pagination.FromRequest(request)

	page, err := handler.service.ListMembers(request.Context(), id, params.Cursor, params.Limit)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Paginated(writer, page.Items, pagination.NewMeta(params.Limit, page.NextCursor))
}

/*
POST /api/v1/groups/{id}/members.

Request (Body):
  - { "user_id": "string", "roles": ["MEMBER"] }

Response:
  - 201: Membership: Created affiliation
  - 400: Validation: Bad id or empty role set
  - 404: ErrNotFound: Group not found
  - 409: ErrConflict: Already a member
*/
func (handler *Handler) addMember(writer http.ResponseWriter, request *http.Request) {
	id, err := groupID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var input addMemberRequest
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	if err := (&validate.Validator{}).UUID(FieldUserID, input.UserID).Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	roles := make([]Role, 0, len(input.Roles))
	for _, value := range input.Roles {
		role, err := ParseRole(value)
		if err != nil {
			respond.Error(writer, request, err)
			return
		}
		roles = append(roles, role)
	}

	membership, err := handler.service.AddMember(request.Context(), id, input.UserID, roles)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Created(writer, membership)
}

/*
PATCH /api/v1/groups/{id}/members/roles.

Description: Sets the role of every listed member. Unknown ids are ignored.

Request (Body):
  - { "user_ids": ["string"], "role": "ADMIN|MEMBER" }

Response:
  - 200: { "user_ids": [...] }: Members whose role was set
  - 404: ErrNotFound: Group not found
  - 409: GROUP_WITHOUT_ADMINS: Demotion would leave no admin
*/
func (handler *Handler) changeRoles(writer http.ResponseWriter, request *http.Request) {
	id, err := groupID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var input changeRolesRequest
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	if err := (&validate.Validator{}).UUIDs(FieldUserIDs, input.UserIDs).Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	role, err := ParseRole(input.Role)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	changed, err := handler.roles.ChangeRole(request.Context(), id, input.UserIDs, role)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, userIDsResponse{UserIDs: changed})
}

/*
DELETE /api/v1/groups/{id}/members.

Request (Body):
  - { "user_ids": ["string"] }

Response:
  - 200: { "user_ids": [...] }: Members removed
  - 409: GROUP_WOULD_BE_EMPTY / GROUP_WITHOUT_ADMINS
*/
func (handler *Handler) removeMembers(writer http.ResponseWriter, request *http.Request) {
	id, err := groupID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var input removeMembersRequest
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	if err := (&validate.Validator{}).UUIDs(FieldUserIDs, input.UserIDs).Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	removed, err := handler.removal.RemoveMembers(request.Context(), id, input.UserIDs)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, userIDsResponse{UserIDs: removed})
}

// # Caller Endpoints

/*
POST /api/v1/users/me/personal-group.

Description: Returns the caller's personal group, creating it on first call.

Request (Body):
  - { "name": "string" }

Response:
  - 201: Group: Newly created
  - 200: Group: Already existed
*/
func (handler *Handler) ensurePersonalGroup(writer http.ResponseWriter, request *http.Request) {
	userID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var input personalGroupRequest
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	group, created, err := handler.service.EnsurePersonalGroup(request.Context(), userID, input.Name)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	if created {
		respond.Created(writer, group)
		return
	}
	respond.OK(writer, group)
}

/*
DELETE /api/v1/users/me/memberships.

Description: Removes the caller from every group, deleting emptied groups
and promoting a replacement where the caller was the last admin.

Response:
  - 200: DepartureResult: Every group outcome
  - 502: NOTIFICATION_FAILED: Applied, but a promoted member was not notified (result in data)
  - 500: INTERNAL_ERROR: Interrupted; committed outcomes and the resume cursor in data
*/
func (handler *Handler) depart(writer http.ResponseWriter, request *http.Request) {
	userID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	result, err := handler.departure.Depart(request.Context(), userID)
	if err != nil {
		if result != nil && (errors.Is(err, ErrNotificationFailed) || result.Outcomes() > 0 || result.Cursor != "") {
			respond.ErrorWithData(writer, request, err, result)
			return
		}
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, result)
}

// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package group

import (
	"context"
	"errors"
	"log/slog"

	"github.com/samber/lo"

	"github.com/taibuivan/hearth/internal/notify"
	"github.com/taibuivan/hearth/pkg/pagination"
)

// # Cascading Departure

// DepartureService resolves every membership of a user who leaves the system.
type DepartureService struct {
	repo     Repository
	notifier notify.Notifier
	options  Options
	logger   *slog.Logger
}

// NewDepartureService constructs a [DepartureService].
func NewDepartureService(repo Repository, notifier notify.Notifier, options Options, logger *slog.Logger) *DepartureService {
	return &DepartureService{
		repo:     repo,
		notifier: notifier,
		options:  options,
		logger:   logger,
	}
}

// departurePlan is the set of writes decided for one page of memberships.
type departurePlan struct {
	deleted  []string
	removed  []*Membership
	promoted []*Membership
	result   *DepartureResult
}

// Depart removes userID from every group. See [DepartureService.DepartFrom].
func (service *DepartureService) Depart(context context.Context, userID string) (*DepartureResult, error) {
	return service.DepartFrom(context, userID, "")
}

/*
DepartFrom removes userID from every group, starting after cursor.

Description: The user's memberships are walked page by page. Each page is
planned in memory and persisted before the next page is read:

  - A group where the user is the last member is deleted.
  - Otherwise the user's membership is removed.
  - If the user was the last admin, the earliest remaining member becomes admin.

Changes made for earlier pages are final. When a page fails, the returned
result holds every write already committed, including those of the failed
page, and its Cursor resumes at the failed page. An empty Cursor on error
means the first page failed and the departure restarts from the beginning.
Replaying a page is safe: rows it already removed are no longer listed.

Promoted members are notified once everything is persisted, or once the
departure stops on an error. A failed delivery returns the result together
with [ErrNotificationFailed], joined to the persistence error if any.

Parameters:
  - context: context.Context
  - userID: string
  - cursor: string (empty to start from the beginning)

Returns:
  - *DepartureResult: Deleted, removed and promoted groups
  - error: Persistence failures or ErrNotificationFailed
*/
func (service *DepartureService) DepartFrom(context context.Context, userID, cursor string) (*DepartureResult, error) {
	result := newDepartureResult()
	iterator := pagination.Resume(userMembershipsFetch(service.repo, userID), service.options.pageSize(), cursor)

	// group id -> name, for addressing notifications
	groupNames := map[string]string{}

	for {
		resumeAt := iterator.Cursor()

		memberships, ok, err := iterator.Next(context)
		if err == nil && ok {
			err = service.departPage(context, userID, memberships, groupNames, result)
		}
		if err != nil {
			result.Cursor = resumeAt
			// Promotions already committed are still announced.
			return result, errors.Join(err, service.announce(context, result.Promotions, groupNames))
		}
		if !ok {
			break
		}
	}

	service.logger.Info("user_departed",
		slog.String("user_id", userID),
		slog.Int("deleted", len(result.DeletedGroups)),
		slog.Int("removed", len(result.RemovedFrom)),
		slog.Int("promoted", len(result.Promotions)),
	)

	if err := service.announce(context, result.Promotions, groupNames); err != nil {
		return result, err
	}

	return result, nil
}

// departPage plans and persists one page, recording each write in result as it commits.
func (service *DepartureService) departPage(context context.Context, userID string, memberships []*Membership, groupNames map[string]string, result *DepartureResult) error {
	for _, membership := range memberships {
		groupNames[membership.GroupID] = membership.GroupName
	}

	plan, err := service.planPage(context, userID, memberships)
	if err != nil {
		return err
	}
	return service.persist(context, plan, result)
}

/*
planPage decides the outcome of every membership on one page.

Parameters:
  - context: context.Context
  - userID: string
  - memberships: []*Membership (the user's own rows)

Returns:
  - *departurePlan: Writes to perform and the page-level result
  - error: Read failures
*/
func (service *DepartureService) planPage(context context.Context, userID string, memberships []*Membership) (*departurePlan, error) {
	plan := &departurePlan{result: newDepartureResult()}

	for _, own := range memberships {
		members, err := loadGroupMembers(context, service.repo, own.GroupID, service.options.pageSize())
		if err != nil {
			return nil, err
		}

		self, found := lo.Find(members, func(member *Membership) bool {
			return member.UserID == userID
		})
		if !found {
			// Removed by someone else since the listing was read.
			self = own
		}

		remaining := lo.Reject(members, func(member *Membership, _ int) bool {
			return member.UserID == userID
		})

		if len(remaining) == 0 {
			plan.deleted = append(plan.deleted, own.GroupID)
			continue
		}

		plan.removed = append(plan.removed, self)

		if !self.IsAdmin() || hasAdmin(remaining) {
			plan.result.RemovedFrom = append(plan.result.RemovedFrom, own.GroupID)
			continue
		}

		replacement := *pickReplacementAdmin(remaining)
		replacement.Roles = replacement.Roles.With(RoleAdmin)

		plan.promoted = append(plan.promoted, &replacement)
		plan.result.Promotions = append(plan.result.Promotions, Promotion{
			GroupID:   own.GroupID,
			GroupName: own.GroupName,
			UserID:    replacement.UserID,
		})
	}

	return plan, nil
}

/*
persist applies a page plan and appends each outcome to result once its
write has committed. Promotions are written before the departing rows are
removed, so no committed state lacks an admin.

A promotion saved on a page whose removal then fails is kept in result so it
is announced. Replaying that page reports the group again under RemovedFrom,
since the user is no longer its last admin.
*/
func (service *DepartureService) persist(context context.Context, plan *departurePlan, result *DepartureResult) error {
	for _, groupID := range plan.deleted {
		if err := service.repo.DeleteGroup(context, groupID); err != nil {
			return err
		}
		result.DeletedGroups = append(result.DeletedGroups, groupID)
		service.logger.Info("group_deleted_on_departure", slog.String("group_id", groupID))
	}

	if len(plan.promoted) > 0 {
		if err := service.repo.SaveMemberships(context, plan.promoted); err != nil {
			return err
		}
		result.Promotions = append(result.Promotions, plan.result.Promotions...)
	}

	if len(plan.removed) > 0 {
		if err := service.repo.RemoveMemberships(context, plan.removed); err != nil {
			return err
		}
	}
	result.RemovedFrom = append(result.RemovedFrom, plan.result.RemovedFrom...)

	return nil
}

// announce sends one notification per promotion and reports any failed delivery.
func (service *DepartureService) announce(context context.Context, promotions []Promotion, groupNames map[string]string) error {
	failed := 0

	for _, promotion := range promotions {
		status := service.notifier.Notify(context, notify.Notification{
			Users:     []string{promotion.UserID},
			Event:     notify.EventPromotedToAdmin,
			GroupID:   promotion.GroupID,
			GroupName: groupNames[promotion.GroupID],
		})
		if status != notify.StatusOK {
			failed++
			service.logger.Warn("promotion_notification_failed",
				slog.String("group_id", promotion.GroupID),
				slog.String("user_id", promotion.UserID),
				slog.String("status", status.String()),
			)
		}
	}

	if failed > 0 {
		return ErrNotificationFailed
	}
	return nil
}

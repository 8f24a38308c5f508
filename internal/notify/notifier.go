// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package notify delivers membership events to the users they concern.

Delivery is best effort. A [Notifier] reports a [Status] rather than an error,
so callers decide how a failed delivery surfaces after their own writes have
been committed.

Adapters:

  - [RedisNotifier]: Appends to a Redis stream consumed by the push service.
  - [PubSubNotifier]: Publishes on a watermill topic.
  - [LogNotifier]: Writes to the structured log; local development only.
*/
package notify

import (
	"context"
	"encoding/json"
	"time"
)

// Event names the kind of membership change being announced.
type Event string

const (
	// EventPromotedToAdmin is sent to a member who inherited administration of a group.
	EventPromotedToAdmin Event = "promoted-to-admin"
)

// Status is the outcome of a delivery attempt.
type Status int

const (
	StatusOK Status = iota
	StatusError
)

func (status Status) String() string {
	if status == StatusOK {
		return "OK"
	}
	return "ERROR"
}

// Notification is one event addressed to one or more users.
type Notification struct {
	Users      []string  `json:"users"`
	Event      Event     `json:"event"`
	GroupID    string    `json:"group_id"`
	GroupName  string    `json:"group_name"`
	OccurredAt time.Time `json:"occurred_at"`
}

// Notifier delivers a single notification.
type Notifier interface {
	Notify(context context.Context, notification Notification) Status
}

// stamp fills OccurredAt when the caller left it zero.
func stamp(notification Notification) Notification {
	if notification.OccurredAt.IsZero() {
		notification.OccurredAt = time.Now().UTC()
	}
	return notification
}

// encode is the wire form shared by every transport.
func encode(notification Notification) ([]byte, error) {
	return json.Marshal(notification)
}

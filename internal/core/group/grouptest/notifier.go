// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package grouptest

import (
	"context"
	"sync"

	"github.com/taibuivan/hearth/internal/notify"
)

// Notifier records every notification and answers with a configurable status.
type Notifier struct {
	mu      sync.Mutex
	sent    []notify.Notification
	failFor map[string]bool
}

var _ notify.Notifier = (*Notifier)(nil)

// NewNotifier returns a notifier that accepts everything.
func NewNotifier() *Notifier {
	return &Notifier{failFor: map[string]bool{}}
}

// FailFor makes deliveries addressed to userID report [notify.StatusError].
func (notifier *Notifier) FailFor(userID string) {
	notifier.mu.Lock()
	defer notifier.mu.Unlock()
	notifier.failFor[userID] = true
}

// Notify implements [notify.Notifier].
func (notifier *Notifier) Notify(_ context.Context, notification notify.Notification) notify.Status {
	notifier.mu.Lock()
	defer notifier.mu.Unlock()

	notifier.sent = append(notifier.sent, notification)
	for _, userID := range notification.Users {
		if notifier.failFor[userID] {
			return notify.StatusError
		}
	}
	return notify.StatusOK
}

// Sent returns the notifications received so far.
func (notifier *Notifier) Sent() []notify.Notification {
	notifier.mu.Lock()
	defer notifier.mu.Unlock()
	return append([]notify.Notification(nil), notifier.sent...)
}

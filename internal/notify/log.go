// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package notify

import (
	"context"
	"log/slog"
)

// LogNotifier records notifications in the log and always succeeds.
type LogNotifier struct {
	logger *slog.Logger
}

// NewLogNotifier constructs a [LogNotifier].
func NewLogNotifier(logger *slog.Logger) *LogNotifier {
	return &LogNotifier{logger: logger}
}

// Notify implements [Notifier].
func (notifier *LogNotifier) Notify(context context.Context, notification Notification) Status {
	notifier.logger.InfoContext(context, "notification_logged",
		slog.String("event", string(notification.Event)),
		slog.String("group_id", notification.GroupID),
		slog.String("group_name", notification.GroupName),
		slog.Any("users", notification.Users),
	)
	return StatusOK
}

// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package notify

import (
	"context"
	"log/slog"
	"strings"

	"github.com/redis/go-redis/v9"
)

// RedisNotifier appends notifications to a capped Redis stream.
type RedisNotifier struct {
	client *redis.Client
	stream string
	maxLen int64
	logger *slog.Logger
}

// NewRedisNotifier constructs a [RedisNotifier]. A non-positive maxLen leaves the stream uncapped.
func NewRedisNotifier(client *redis.Client, stream string, maxLen int64, logger *slog.Logger) *RedisNotifier {
	return &RedisNotifier{
		client: client,
		stream: stream,
		maxLen: maxLen,
		logger: logger,
	}
}

// Notify implements [Notifier] with one XADD per notification.
func (notifier *RedisNotifier) Notify(context context.Context, notification Notification) Status {
	args, err := notifier.streamArgs(stamp(notification))
	if err != nil {
		notifier.logger.Error("notification_encode_failed", slog.Any("error", err))
		return StatusError
	}

	id, err := notifier.client.XAdd(context, args).Result()
	if err != nil {
		notifier.logger.Error("notification_publish_failed",
			slog.String("stream", notifier.stream),
			slog.String("group_id", notification.GroupID),
			slog.Any("error", err),
		)
		return StatusError
	}

	notifier.logger.Debug("notification_published",
		slog.String("stream", notifier.stream),
		slog.String("entry_id", id),
	)
	return StatusOK
}

// streamArgs lays out a stream entry. Routing fields stay flat for consumers
// that filter without decoding the payload.
func (notifier *RedisNotifier) streamArgs(notification Notification) (*redis.XAddArgs, error) {
	payload, err := encode(notification)
	if err != nil {
		return nil, err
	}

	args := &redis.XAddArgs{
		Stream: notifier.stream,
		Values: map[string]any{
			"event":    string(notification.Event),
			"group_id": notification.GroupID,
			"users":    strings.Join(notification.Users, ","),
			"payload":  string(payload),
		},
	}
	if notifier.maxLen > 0 {
		args.MaxLen = notifier.maxLen
		args.Approx = true
	}
	return args, nil
}

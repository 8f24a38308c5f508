// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package notify

import (
	"context"
	"log/slog"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
)

// PubSubNotifier publishes notifications as JSON messages on a watermill topic.
type PubSubNotifier struct {
	publisher  message.Publisher
	subscriber message.Subscriber
	topic      string
	logger     *slog.Logger
}

// NewPubSubNotifier constructs a [PubSubNotifier] over any watermill publisher.
func NewPubSubNotifier(publisher message.Publisher, topic string, logger *slog.Logger) *PubSubNotifier {
	return &PubSubNotifier{
		publisher: publisher,
		topic:     topic,
		logger:    logger,
	}
}

// NewInProcessPubSub returns the in-memory transport used when no broker is configured.
func NewInProcessPubSub() *gochannel.GoChannel {
	return gochannel.NewGoChannel(
		gochannel.Config{
			Persistent:          true,
			OutputChannelBuffer: 100,
		},
		watermill.NewStdLogger(false, false),
	)
}

// Subscriber returns the in-process subscriber paired with the publisher, or
// nil when the publisher is an external broker.
func (notifier *PubSubNotifier) Subscriber() message.Subscriber {
	return notifier.subscriber
}

// Close releases the publisher.
func (notifier *PubSubNotifier) Close() error {
	return notifier.publisher.Close()
}

// Notify implements [Notifier].
func (notifier *PubSubNotifier) Notify(context context.Context, notification Notification) Status {
	payload, err := encode(stamp(notification))
	if err != nil {
		notifier.logger.Error("notification_encode_failed", slog.Any("error", err))
		return StatusError
	}

	msg := message.NewMessage(watermill.NewUUID(), payload)
	msg.Metadata.Set("event", string(notification.Event))
	msg.Metadata.Set("group_id", notification.GroupID)
	msg.SetContext(context)

	if err := notifier.publisher.Publish(notifier.topic, msg); err != nil {
		notifier.logger.Error("notification_publish_failed",
			slog.String("topic", notifier.topic),
			slog.String("group_id", notification.GroupID),
			slog.Any("error", err),
		)
		return StatusError
	}

	return StatusOK
}

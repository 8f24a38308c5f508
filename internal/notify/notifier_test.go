// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package notify_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/hearth/internal/notify"
)

var discard = slog.New(slog.NewTextHandler(io.Discard, nil))

func promotion() notify.Notification {
	return notify.Notification{
		Users:     []string{"user-v"},
		Event:     notify.EventPromotedToAdmin,
		GroupID:   "group-s",
		GroupName: "Shared Kitchen",
	}
}

/*
TestPubSubNotifier_Publishes verifies that a notification reaches subscribers of the topic.
*/
func TestPubSubNotifier_Publishes(t *testing.T) {
	pubSub := notify.NewInProcessPubSub()
	t.Cleanup(func() { _ = pubSub.Close() })

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	messages, err := pubSub.Subscribe(ctx, "group.membership")
	require.NoError(t, err)

	notifier := notify.NewPubSubNotifier(pubSub, "group.membership", discard)
	assert.Equal(t, notify.StatusOK, notifier.Notify(ctx, promotion()))

	select {
	case msg := <-messages:
		msg.Ack()

		var got notify.Notification
		require.NoError(t, json.Unmarshal(msg.Payload, &got))
		assert.Equal(t, []string{"user-v"}, got.Users)
		assert.Equal(t, notify.EventPromotedToAdmin, got.Event)
		assert.Equal(t, "Shared Kitchen", got.GroupName)
		assert.False(t, got.OccurredAt.IsZero())
		assert.Equal(t, "group-s", msg.Metadata.Get("group_id"))
	case <-ctx.Done():
		t.Fatal("notification was not delivered")
	}
}

// failingPublisher rejects every message.
type failingPublisher struct{}

func (failingPublisher) Publish(string, ...*message.Message) error { return errors.New("broker down") }
func (failingPublisher) Close() error                              { return nil }

/*
TestPubSubNotifier_PublishFailure verifies that transport errors become StatusError.
*/
func TestPubSubNotifier_PublishFailure(t *testing.T) {
	notifier := notify.NewPubSubNotifier(failingPublisher{}, "group.membership", discard)
	assert.Equal(t, notify.StatusError, notifier.Notify(context.Background(), promotion()))
}

/*
TestRedisNotifier_Unreachable verifies that a dead stream backend reports StatusError.
*/
func TestRedisNotifier_Unreachable(t *testing.T) {
	client := redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 100 * time.Millisecond,
		MaxRetries:  -1,
	})
	t.Cleanup(func() { _ = client.Close() })

	notifier := notify.NewRedisNotifier(client, "hearth:notifications", 100, discard)
	assert.Equal(t, notify.StatusError, notifier.Notify(context.Background(), promotion()))
}

/*
TestLogNotifier verifies the development adapter never fails.
*/
func TestLogNotifier(t *testing.T) {
	notifier := notify.NewLogNotifier(discard)
	assert.Equal(t, notify.StatusOK, notifier.Notify(context.Background(), promotion()))
	assert.Equal(t, "OK", notify.StatusOK.String())
	assert.Equal(t, "ERROR", notify.StatusError.String())
}

/*
TestForDriver verifies driver selection and the in-process subscriber.
*/
func TestForDriver(t *testing.T) {
	_, err := notify.ForDriver(notify.DriverRedis, notify.Transport{}, discard)
	assert.Error(t, err, "redis driver without a client")

	_, err = notify.ForDriver("carrier-pigeon", notify.Transport{}, discard)
	assert.Error(t, err)

	logNotifier, err := notify.ForDriver(notify.DriverLog, notify.Transport{}, discard)
	require.NoError(t, err)
	assert.IsType(t, &notify.LogNotifier{}, logNotifier)

	notifier, err := notify.ForDriver(notify.DriverPubSub, notify.Transport{Topic: "group.membership"}, discard)
	require.NoError(t, err)

	pubSub, ok := notifier.(*notify.PubSubNotifier)
	require.True(t, ok)
	t.Cleanup(func() { _ = pubSub.Close() })

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	messages, err := pubSub.Subscriber().Subscribe(ctx, "group.membership")
	require.NoError(t, err)

	assert.Equal(t, notify.StatusOK, pubSub.Notify(ctx, promotion()))

	select {
	case msg := <-messages:
		msg.Ack()
		assert.Equal(t, string(notify.EventPromotedToAdmin), msg.Metadata.Get("event"))
	case <-ctx.Done():
		t.Fatal("no message delivered")
	}
}

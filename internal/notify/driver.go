// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package notify

import (
	"fmt"
	"log/slog"

	"github.com/redis/go-redis/v9"
)

// # Driver Selection

const (
	DriverRedis  = "redis"
	DriverPubSub = "pubsub"
	DriverLog    = "log"
)

// Transport carries what each driver needs. Only the fields of the chosen
// driver are read.
type Transport struct {
	Redis  *redis.Client
	Stream string
	MaxLen int64
	Topic  string
}

// ForDriver builds the notifier named by driver.
//
// The pubsub driver publishes on an in-process channel; callers that want to
// consume those events subscribe through [PubSubNotifier.Subscriber].
func ForDriver(driver string, transport Transport, logger *slog.Logger) (Notifier, error) {
	switch driver {
	case DriverRedis:
		if transport.Redis == nil {
			return nil, fmt.Errorf("notify: redis driver needs a client")
		}
		return NewRedisNotifier(transport.Redis, transport.Stream, transport.MaxLen, logger), nil
	case DriverPubSub:
		channel := NewInProcessPubSub()
		notifier := NewPubSubNotifier(channel, transport.Topic, logger)
		notifier.subscriber = channel
		return notifier, nil
	case DriverLog:
		return NewLogNotifier(logger), nil
	default:
		return nil, fmt.Errorf("notify: unknown driver %q", driver)
	}
}

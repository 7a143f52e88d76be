package notifications

import (
	"context"
	"encoding/json"
	"fmt"
)

type Publisher interface {
	Publish(ctx context.Context, channel string, payload []byte) (int64, error)
}

// RedisNotifier publishes each event as JSON on a pub/sub channel.
type RedisNotifier struct {
	pub     Publisher
	channel string
}

func NewRedisNotifier(pub Publisher, channel string) *RedisNotifier {
	return &RedisNotifier{pub: pub, channel: channel}
}

func (n *RedisNotifier) NotifyError(ctx context.Context, e ErrorEvent) error {
	payload, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("encode error event: %w", err)
	}

	if _, err := n.pub.Publish(ctx, n.channel, payload); err != nil {
		return fmt.Errorf("publish error event to %s: %w", n.channel, err)
	}
	return nil
}

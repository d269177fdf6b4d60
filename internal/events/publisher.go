package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

// Publisher writes events to a Redis stream. The stream is durable, so the
// settlement pipeline survives a consumer restart between publish and apply.
type Publisher struct {
	client *redis.Client
	log    *logrus.Logger
}

func NewPublisher(client *redis.Client, log *logrus.Logger) *Publisher {
	return &Publisher{client: client, log: log}
}

func (p *Publisher) Publish(ctx context.Context, stream, eventType string, data any) error {
	event := Event{
		Type:      eventType,
		Timestamp: time.Now().UTC(),
		Data:      data,
	}

	eventJSON, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	if _, err := p.client.XAdd(ctx, &redis.XAddArgs{
		Stream: stream,
		Values: map[string]any{"event": eventJSON},
	}).Result(); err != nil {
		return fmt.Errorf("failed to publish event: %w", err)
	}

	p.log.WithFields(logrus.Fields{"stream": stream, "type": eventType}).Debug("event published")
	return nil
}

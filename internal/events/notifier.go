package events

import (
	"context"
	"encoding/json"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

// Notifier pushes user-facing notifications onto a Redis pub/sub channel for
// downstream delivery to account holders' clients. Failures are logged and
// never propagate; a lost notification must not roll back a settlement.
type Notifier struct {
	client *redis.Client
	log    *logrus.Logger
}

func NewNotifier(client *redis.Client, log *logrus.Logger) *Notifier {
	return &Notifier{client: client, log: log}
}

func (n *Notifier) Notify(ctx context.Context, notification Notification) {
	payload, err := json.Marshal(notification)
	if err != nil {
		n.log.WithError(err).Error("failed to marshal notification")
		return
	}
	if err := n.client.Publish(ctx, NotificationChannel, payload).Err(); err != nil {
		n.log.WithError(err).WithField("transactionId", notification.TransactionID).
			Error("failed to publish notification")
	}
}

package repository

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

const settledTxnKeyPrefix = "settled:txn:"

// SettlementMarker records which transaction ids have already had their
// balance effects applied. It guards the settlement listener against
// duplicate delivery under the stream's at-least-once semantics.
type SettlementMarker struct {
	client *redis.Client
	log    *logrus.Logger
}

func NewSettlementMarker(client *redis.Client, log *logrus.Logger) *SettlementMarker {
	return &SettlementMarker{client: client, log: log}
}

// IsSettled returns true if this transaction's balance effects were applied.
func (m *SettlementMarker) IsSettled(ctx context.Context, transactionID string) bool {
	val, err := m.client.Exists(ctx, settledTxnKeyPrefix+transactionID).Result()
	return err == nil && val > 0
}

// MarkSettled records that a transaction has been applied. The key expires
// after 72 hours, long enough to outlive any realistic redelivery window
// from the consumer group.
func (m *SettlementMarker) MarkSettled(ctx context.Context, transactionID string) {
	key := settledTxnKeyPrefix + transactionID
	if err := m.client.Set(ctx, key, "1", 72*time.Hour).Err(); err != nil {
		m.log.WithError(err).WithField("transactionId", transactionID).
			Error("failed to mark transaction as settled")
	}
}

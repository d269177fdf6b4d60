package queue

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

const transactionQueueKey = "transaction:queue"

// TransactionQueue is a durable delay queue backed by a Redis sorted set.
// Members are transaction ids scored by their due instant in unix
// milliseconds, so jobs survive a process restart between enqueue and due
// time. A job is claimed by removing it from the set; ZREM reports whether
// this consumer won the removal, which keeps a claim single-delivery even
// with competing processors.
type TransactionQueue struct {
	client *redis.Client
	log    *logrus.Logger
}

func NewTransactionQueue(client *redis.Client, log *logrus.Logger) *TransactionQueue {
	return &TransactionQueue{client: client, log: log}
}

// Enqueue registers transactionID for dispatch at or after dueAt. A due
// instant in the past collapses to "now": the job becomes claimable on the
// next poll.
func (q *TransactionQueue) Enqueue(ctx context.Context, transactionID string, dueAt time.Time) error {
	now := time.Now()
	if dueAt.Before(now) {
		dueAt = now
	}
	err := q.client.ZAdd(ctx, transactionQueueKey, redis.Z{
		Score:  float64(dueAt.UnixMilli()),
		Member: transactionID,
	}).Err()
	if err != nil {
		return fmt.Errorf("failed to enqueue transaction %s: %w", transactionID, err)
	}
	q.log.WithFields(logrus.Fields{
		"transactionId": transactionID,
		"dueAt":         dueAt.UTC().Format(time.RFC3339),
	}).Info("transaction enqueued for delayed settlement")
	return nil
}

// ClaimDue removes and returns every job due at or before now. Each returned
// id has been claimed by this caller exclusively.
func (q *TransactionQueue) ClaimDue(ctx context.Context, now time.Time) ([]string, error) {
	members, err := q.client.ZRangeByScore(ctx, transactionQueueKey, &redis.ZRangeBy{
		Min: "0",
		Max: fmt.Sprintf("%d", now.UnixMilli()),
	}).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read due jobs: %w", err)
	}

	var claimed []string
	for _, member := range members {
		removed, err := q.client.ZRem(ctx, transactionQueueKey, member).Result()
		if err != nil {
			return claimed, fmt.Errorf("failed to claim job %s: %w", member, err)
		}
		if removed > 0 {
			claimed = append(claimed, member)
		}
	}
	return claimed, nil
}

package queue

import (
	"context"
	"time"
)

// delayQueue is the enqueue side of the transaction queue.
type delayQueue interface {
	Enqueue(ctx context.Context, transactionID string, dueAt time.Time) error
}

// TransactionScheduler is a thin façade over the delay queue. It performs no
// business validation; deciding whether a transaction should be scheduled at
// all belongs to the transaction factory.
type TransactionScheduler struct {
	queue delayQueue
}

func NewTransactionScheduler(queue delayQueue) *TransactionScheduler {
	return &TransactionScheduler{queue: queue}
}

func (s *TransactionScheduler) ScheduleTransaction(ctx context.Context, transactionID string, scheduledAt time.Time) error {
	return s.queue.Enqueue(ctx, transactionID, scheduledAt)
}

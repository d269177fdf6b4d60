package queue

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"
)

// SettlementWorker is invoked once per claimed due job.
type SettlementWorker interface {
	ProcessScheduledTransaction(ctx context.Context, transactionID string) error
}

// TransactionProcessor polls the delay queue and hands each due job to the
// settlement worker, synchronously, one job at a time. Worker failures are
// logged and the job is not re-enqueued; the worker's own idempotency guard
// is what makes any external redelivery safe.
type TransactionProcessor struct {
	queue    *TransactionQueue
	worker   SettlementWorker
	interval time.Duration
	log      *logrus.Logger
}

func NewTransactionProcessor(queue *TransactionQueue, worker SettlementWorker, interval time.Duration, log *logrus.Logger) *TransactionProcessor {
	if interval <= 0 {
		interval = time.Second
	}
	return &TransactionProcessor{
		queue:    queue,
		worker:   worker,
		interval: interval,
		log:      log,
	}
}

func (p *TransactionProcessor) Start(ctx context.Context) error {
	p.log.WithField("interval", p.interval.String()).Info("transaction processor started")

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			p.log.Info("transaction processor stopping")
			return ctx.Err()
		case <-ticker.C:
			p.tick(ctx)
		}
	}
}

func (p *TransactionProcessor) tick(ctx context.Context) {
	due, err := p.queue.ClaimDue(ctx, time.Now())
	if err != nil {
		if ctx.Err() == nil {
			p.log.WithError(err).Error("failed to claim due jobs")
		}
		return
	}
	for _, transactionID := range due {
		p.log.WithField("transactionId", transactionID).Info("processing due transaction")
		if err := p.worker.ProcessScheduledTransaction(ctx, transactionID); err != nil {
			p.log.WithError(err).WithField("transactionId", transactionID).
				Error("failed to process scheduled transaction")
		}
	}
}

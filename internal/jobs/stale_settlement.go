package jobs

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/vinigdesouza/api-financial/internal/models"
)

type overdueFinder interface {
	FindOverdue(ctx context.Context, olderThan time.Time) ([]models.ScheduledTransaction, error)
}

// StaleSettlementReporter periodically logs schedules that are still PENDING
// past their due instant plus a grace period. A transaction can end up here
// when the delay-queue enqueue failed after its row committed; there is no
// automatic remediation for that gap, only this report.
type StaleSettlementReporter struct {
	schedules overdueFinder
	grace     time.Duration
	log       *logrus.Logger
}

func NewStaleSettlementReporter(schedules overdueFinder, grace time.Duration, log *logrus.Logger) *StaleSettlementReporter {
	if grace <= 0 {
		grace = 5 * time.Minute
	}
	return &StaleSettlementReporter{schedules: schedules, grace: grace, log: log}
}

func (r *StaleSettlementReporter) Run(ctx context.Context) {
	overdue, err := r.schedules.FindOverdue(ctx, time.Now().Add(-r.grace))
	if err != nil {
		r.log.WithError(err).Error("stale settlement report failed")
		return
	}
	if len(overdue) == 0 {
		r.log.Debug("stale settlement report: nothing overdue")
		return
	}
	for _, scheduled := range overdue {
		r.log.WithFields(logrus.Fields{
			"transactionId": scheduled.TransactionID,
			"scheduledAt":   scheduled.ScheduledAt.UTC().Format(time.RFC3339),
		}).Warn("scheduled transaction overdue and still pending")
	}
	r.log.WithField("count", len(overdue)).Warn("stale settlement report finished")
}

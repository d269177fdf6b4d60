package command

import (
	"context"
	"errors"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/vinigdesouza/api-financial/internal/events"
	"github.com/vinigdesouza/api-financial/internal/models"
)

type transactionFinder interface {
	FindByID(ctx context.Context, id string) (*models.Transaction, error)
}

type scheduleStore interface {
	FindByTransactionID(ctx context.Context, transactionID string) (*models.ScheduledTransaction, error)
	UpdateStatus(ctx context.Context, transactionID string, status models.ScheduledTransactionStatus) error
}

// SettlementService settles scheduled transactions when their due job fires.
// The PENDING check plus the compare-and-set status flip make a duplicate
// delivery of the same job a no-op, and the flip always happens before the
// settlement event is published.
type SettlementService struct {
	transactions transactionFinder
	schedules    scheduleStore
	publisher    eventPublisher
	log          *logrus.Logger
	now          func() time.Time
}

func NewSettlementService(
	transactions transactionFinder,
	schedules scheduleStore,
	publisher eventPublisher,
	log *logrus.Logger,
) *SettlementService {
	return &SettlementService{
		transactions: transactions,
		schedules:    schedules,
		publisher:    publisher,
		log:          log,
		now:          time.Now,
	}
}

func (s *SettlementService) ProcessScheduledTransaction(ctx context.Context, transactionID string) error {
	logger := s.log.WithField("transactionId", transactionID)
	logger.Info("processing scheduled transaction")

	transaction, err := s.transactions.FindByID(ctx, transactionID)
	if err != nil {
		if errors.Is(err, models.ErrTransactionNotFound) {
			logger.Warn("transaction not found, dropping job")
			return nil
		}
		return err
	}

	scheduled, err := s.schedules.FindByTransactionID(ctx, transactionID)
	if err != nil {
		if errors.Is(err, models.ErrScheduledTransactionNotFound) {
			logger.Warn("scheduled transaction not found, dropping job")
			return nil
		}
		return err
	}

	if scheduled.Status != models.ScheduledTransactionStatusPending {
		logger.Info("scheduled transaction already processed, skipping duplicate job")
		return nil
	}

	if scheduled.ScheduledAt.After(s.now()) {
		logger.WithField("scheduledAt", scheduled.ScheduledAt).Info("job fired early, skipping")
		return nil
	}

	// The status flip must land before the event goes out: it is the mark a
	// redelivered job checks against.
	if err := s.schedules.UpdateStatus(ctx, transactionID, models.ScheduledTransactionStatusProcessed); err != nil {
		logger.WithError(err).Error("failed to mark schedule processed, settlement withheld")
		return err
	}

	if err := s.publisher.Publish(ctx, events.TransactionEventsStream, events.TransactionProcessed, events.TransactionProcessedEvent{
		AccountID:            transaction.AccountID,
		TransactionID:        transaction.ID,
		Amount:               transaction.Amount,
		TransactionType:      string(transaction.Type),
		DestinationAccountID: transaction.DestinationAccountID,
	}); err != nil {
		logger.WithError(err).Error("failed to publish settlement event")
		return err
	}

	logger.Info("scheduled transaction dispatched for settlement")
	return nil
}

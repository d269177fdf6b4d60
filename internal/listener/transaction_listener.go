package listener

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/vinigdesouza/api-financial/internal/events"
	"github.com/vinigdesouza/api-financial/internal/models"
)

type balanceRepository interface {
	Deposit(ctx context.Context, id string, amount decimal.Decimal) (decimal.Decimal, error)
	Withdraw(ctx context.Context, id string, amount decimal.Decimal) (decimal.Decimal, error)
	Transfer(ctx context.Context, sourceID, destinationID string, amount decimal.Decimal) (decimal.Decimal, decimal.Decimal, error)
}

type statusRepository interface {
	UpdateStatus(ctx context.Context, id string, status models.TransactionStatus) error
}

type settlementMarker interface {
	IsSettled(ctx context.Context, transactionID string) bool
	MarkSettled(ctx context.Context, transactionID string)
}

type notifier interface {
	Notify(ctx context.Context, notification events.Notification)
}

// TransactionListener is the sole mutator of account balances. It consumes
// settlement events, applies the balance effect atomically, and marks the
// transaction COMPLETED — or FAILED when the effect cannot apply (funds gone
// or an account vanished since validation). Duplicate deliveries are skipped
// via the settlement marker.
type TransactionListener struct {
	accounts     balanceRepository
	transactions statusRepository
	marker       settlementMarker
	notifier     notifier
	log          *logrus.Logger
}

func NewTransactionListener(
	accounts balanceRepository,
	transactions statusRepository,
	marker settlementMarker,
	notifier notifier,
	log *logrus.Logger,
) *TransactionListener {
	return &TransactionListener{
		accounts:     accounts,
		transactions: transactions,
		marker:       marker,
		notifier:     notifier,
		log:          log,
	}
}

// HandleSettlementEvent is the stream subscriber handler. Returning an error
// leaves the message unacknowledged for redelivery, which is safe: nothing
// was applied, or the marker was already set.
func (l *TransactionListener) HandleSettlementEvent(ctx context.Context, event events.Event) error {
	if event.Type != events.TransactionProcessed {
		return nil
	}

	dataBytes, _ := json.Marshal(event.Data)
	var data events.TransactionProcessedEvent
	if err := json.Unmarshal(dataBytes, &data); err != nil {
		return fmt.Errorf("failed to unmarshal settlement event: %w", err)
	}

	logger := l.log.WithFields(logrus.Fields{
		"transactionId": data.TransactionID,
		"accountId":     data.AccountID,
		"type":          data.TransactionType,
	})
	logger.Info("handling settlement event")

	if l.marker.IsSettled(ctx, data.TransactionID) {
		logger.Info("transaction already settled, skipping duplicate event")
		return nil
	}

	newBalance, err := l.applyBalanceEffect(ctx, data)
	if err != nil {
		if errors.Is(err, models.ErrInsufficientBalance) || errors.Is(err, models.ErrAccountNotFound) {
			return l.failSettlement(ctx, data.TransactionID, err)
		}
		logger.WithError(err).Error("failed to apply balance effect")
		return err
	}

	if err := l.transactions.UpdateStatus(ctx, data.TransactionID, models.TransactionStatusCompleted); err != nil {
		// Balances are applied; do not re-apply on redelivery.
		logger.WithError(err).Error("balances applied but transaction status update failed")
	}
	l.marker.MarkSettled(ctx, data.TransactionID)

	l.notifier.Notify(ctx, events.Notification{
		AccountID:     data.AccountID,
		TransactionID: data.TransactionID,
		Kind:          data.TransactionType,
		Amount:        data.Amount,
		NewBalance:    newBalance,
	})

	logger.WithField("newBalance", newBalance.String()).Info("settlement applied")
	return nil
}

// applyBalanceEffect routes the event to the matching atomic balance
// operation and returns the source account's new balance.
func (l *TransactionListener) applyBalanceEffect(ctx context.Context, data events.TransactionProcessedEvent) (decimal.Decimal, error) {
	switch models.TransactionType(data.TransactionType) {
	case models.TransactionTypeDeposit:
		return l.accounts.Deposit(ctx, data.AccountID, data.Amount)
	case models.TransactionTypeWithdraw:
		return l.accounts.Withdraw(ctx, data.AccountID, data.Amount)
	case models.TransactionTypeTransfer:
		if data.DestinationAccountID == nil {
			return decimal.Zero, fmt.Errorf("%w: transfer event without destination account", models.ErrInvalidRequest)
		}
		sourceBalance, _, err := l.accounts.Transfer(ctx, data.AccountID, *data.DestinationAccountID, data.Amount)
		return sourceBalance, err
	default:
		return decimal.Zero, fmt.Errorf("%w: unknown transaction type %q", models.ErrInvalidRequest, data.TransactionType)
	}
}

// failSettlement marks a terminally unappliable settlement FAILED and records
// it settled so redeliveries stop retrying it.
func (l *TransactionListener) failSettlement(ctx context.Context, transactionID string, cause error) error {
	l.log.WithError(cause).WithField("transactionId", transactionID).
		Warn("settlement cannot apply, failing transaction")
	if err := l.transactions.UpdateStatus(ctx, transactionID, models.TransactionStatusFailed); err != nil {
		l.log.WithError(err).WithField("transactionId", transactionID).
			Error("failed to mark transaction failed")
		return err
	}
	l.marker.MarkSettled(ctx, transactionID)
	return nil
}

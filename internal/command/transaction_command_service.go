package command

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/vinigdesouza/api-financial/internal/events"
	"github.com/vinigdesouza/api-financial/internal/models"
)

type accountFinder interface {
	FindByID(ctx context.Context, id string) (*models.Account, error)
}

type transactionCreator interface {
	Create(ctx context.Context, transaction *models.Transaction) error
}

type scheduleCreator interface {
	Create(ctx context.Context, scheduled *models.ScheduledTransaction) error
}

type currencyConverter interface {
	Convert(ctx context.Context, amount decimal.Decimal, from, to models.Currency) (decimal.Decimal, error)
}

type transactionScheduler interface {
	ScheduleTransaction(ctx context.Context, transactionID string, scheduledAt time.Time) error
}

type eventPublisher interface {
	Publish(ctx context.Context, stream, eventType string, data any) error
}

// CreateTransactionCommand carries a validated-at-the-edge creation request.
// Amount is in the request currency; the service converts it to the
// settlement currency before anything else.
type CreateTransactionCommand struct {
	AccountID            string
	Amount               decimal.Decimal
	Currency             models.Currency
	Type                 models.TransactionType
	Description          string
	DestinationAccountID *string
	ScheduledAt          *time.Time
}

// TransactionCommandService is the transaction factory and validator. It
// produces pending transactions and routes them to immediate or delayed
// settlement. The balance check here is advisory; the settlement listener's
// conditional debit is authoritative.
type TransactionCommandService struct {
	accounts     accountFinder
	transactions transactionCreator
	schedules    scheduleCreator
	converter    currencyConverter
	scheduler    transactionScheduler
	publisher    eventPublisher
	log          *logrus.Logger
}

func NewTransactionCommandService(
	accounts accountFinder,
	transactions transactionCreator,
	schedules scheduleCreator,
	converter currencyConverter,
	scheduler transactionScheduler,
	publisher eventPublisher,
	log *logrus.Logger,
) *TransactionCommandService {
	return &TransactionCommandService{
		accounts:     accounts,
		transactions: transactions,
		schedules:    schedules,
		converter:    converter,
		scheduler:    scheduler,
		publisher:    publisher,
		log:          log,
	}
}

func (s *TransactionCommandService) CreateTransaction(ctx context.Context, cmd CreateTransactionCommand) (*models.Transaction, error) {
	s.log.WithFields(logrus.Fields{
		"accountId": cmd.AccountID,
		"type":      cmd.Type,
		"currency":  cmd.Currency,
	}).Info("creating transaction")

	if err := cmd.validate(); err != nil {
		return nil, err
	}

	amount := cmd.Amount
	if cmd.Currency != models.SettlementCurrency {
		converted, err := s.converter.Convert(ctx, amount, cmd.Currency, models.SettlementCurrency)
		if err != nil {
			s.log.WithError(err).Error("error converting currency")
			return nil, fmt.Errorf("%w: %v", models.ErrConversionFailed, err)
		}
		amount = converted
	}

	account, err := s.accounts.FindByID(ctx, cmd.AccountID)
	if err != nil {
		s.log.WithError(err).WithField("accountId", cmd.AccountID).Warn("could not resolve source account")
		return nil, err
	}

	if cmd.Type == models.TransactionTypeTransfer {
		if _, err := s.accounts.FindByID(ctx, *cmd.DestinationAccountID); err != nil {
			s.log.WithError(err).WithField("accountId", *cmd.DestinationAccountID).
				Warn("could not resolve destination account")
			return nil, err
		}
	}

	if cmd.Type == models.TransactionTypeWithdraw || cmd.Type == models.TransactionTypeTransfer {
		if account.Balance.LessThan(amount) {
			s.log.WithField("accountId", cmd.AccountID).Warn("insufficient balance for transaction")
			return nil, models.ErrInsufficientBalance
		}
	}

	transaction, err := models.NewTransaction(cmd.AccountID, amount, cmd.Type, cmd.Description, cmd.DestinationAccountID)
	if err != nil {
		return nil, err
	}

	if err := s.transactions.Create(ctx, transaction); err != nil {
		s.log.WithError(err).Error("error creating transaction")
		return nil, err
	}

	if cmd.ScheduledAt != nil {
		return s.scheduleSettlement(ctx, transaction, *cmd.ScheduledAt)
	}

	// Immediate settlement: hand the event to the settlement listener. A
	// publish failure leaves the transaction PENDING with no automatic
	// remediation; the stale-settlement report surfaces it.
	if err := s.publisher.Publish(ctx, events.TransactionEventsStream, events.TransactionProcessed, events.TransactionProcessedEvent{
		AccountID:            transaction.AccountID,
		TransactionID:        transaction.ID,
		Amount:               transaction.Amount,
		TransactionType:      string(transaction.Type),
		DestinationAccountID: transaction.DestinationAccountID,
	}); err != nil {
		s.log.WithError(err).WithField("transactionId", transaction.ID).
			Error("failed to publish settlement event; transaction left pending")
	}
	return transaction, nil
}

// scheduleSettlement records the schedule and enqueues the delayed job. If
// either step fails the transaction stays PENDING without a fired schedule,
// a known gap surfaced by the stale-settlement report rather than retried.
func (s *TransactionCommandService) scheduleSettlement(ctx context.Context, transaction *models.Transaction, scheduledAt time.Time) (*models.Transaction, error) {
	scheduled := models.NewScheduledTransaction(transaction.ID, scheduledAt)
	if err := s.schedules.Create(ctx, scheduled); err != nil {
		s.log.WithError(err).WithField("transactionId", transaction.ID).
			Error("failed to persist schedule; transaction left pending")
		return nil, err
	}
	if err := s.scheduler.ScheduleTransaction(ctx, transaction.ID, scheduledAt); err != nil {
		s.log.WithError(err).WithField("transactionId", transaction.ID).
			Error("failed to enqueue delayed settlement; transaction left pending")
		return nil, err
	}
	s.log.WithFields(logrus.Fields{
		"transactionId": transaction.ID,
		"scheduledAt":   scheduledAt.UTC().Format(time.RFC3339),
	}).Info("transaction scheduled")
	return transaction, nil
}

// validate rejects malformed commands before any repository call.
func (c CreateTransactionCommand) validate() error {
	if c.AccountID == "" {
		return fmt.Errorf("%w: account id is required", models.ErrInvalidRequest)
	}
	if !c.Amount.IsPositive() {
		return fmt.Errorf("%w: amount must be greater than zero", models.ErrInvalidRequest)
	}
	if !models.ValidCurrency(c.Currency) {
		return fmt.Errorf("%w: invalid currency %q", models.ErrInvalidRequest, c.Currency)
	}
	switch c.Type {
	case models.TransactionTypeDeposit, models.TransactionTypeWithdraw:
		if c.DestinationAccountID != nil {
			return fmt.Errorf("%w: destination account is only allowed for transfers", models.ErrInvalidRequest)
		}
	case models.TransactionTypeTransfer:
		if c.DestinationAccountID == nil || *c.DestinationAccountID == "" {
			return fmt.Errorf("%w: destination account is required for transfers", models.ErrInvalidRequest)
		}
		if *c.DestinationAccountID == c.AccountID {
			return fmt.Errorf("%w: destination account must differ from source account", models.ErrInvalidRequest)
		}
	default:
		return fmt.Errorf("%w: invalid transaction type %q", models.ErrInvalidRequest, c.Type)
	}
	return nil
}

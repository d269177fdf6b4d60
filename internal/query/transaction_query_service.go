package query

import (
	"context"

	"github.com/sirupsen/logrus"

	"github.com/vinigdesouza/api-financial/internal/models"
)

type transactionReader interface {
	FindByID(ctx context.Context, id string) (*models.Transaction, error)
	FindByAccountID(ctx context.Context, accountID string) ([]models.Transaction, error)
}

// TransactionQueryService serves transaction reads straight from the
// authoritative store.
type TransactionQueryService struct {
	transactions transactionReader
	log          *logrus.Logger
}

func NewTransactionQueryService(transactions transactionReader, log *logrus.Logger) *TransactionQueryService {
	return &TransactionQueryService{transactions: transactions, log: log}
}

func (s *TransactionQueryService) GetTransaction(ctx context.Context, id string) (*models.Transaction, error) {
	s.log.WithField("transactionId", id).Debug("finding transaction")
	return s.transactions.FindByID(ctx, id)
}

func (s *TransactionQueryService) ListTransactionsByAccount(ctx context.Context, accountID string) ([]models.Transaction, error) {
	s.log.WithField("accountId", accountID).Debug("listing transactions for account")
	return s.transactions.FindByAccountID(ctx, accountID)
}

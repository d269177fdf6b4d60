package query

import (
	"context"

	"github.com/sirupsen/logrus"

	"github.com/vinigdesouza/api-financial/internal/models"
)

type accountReader interface {
	FindByID(ctx context.Context, id string) (*models.Account, error)
	FindByNumber(ctx context.Context, accountNumber int64) (*models.Account, error)
}

type AccountQueryService struct {
	accounts accountReader
	log      *logrus.Logger
}

func NewAccountQueryService(accounts accountReader, log *logrus.Logger) *AccountQueryService {
	return &AccountQueryService{accounts: accounts, log: log}
}

func (s *AccountQueryService) GetAccount(ctx context.Context, id string) (*models.Account, error) {
	s.log.WithField("accountId", id).Debug("finding account")
	return s.accounts.FindByID(ctx, id)
}

func (s *AccountQueryService) GetAccountByNumber(ctx context.Context, accountNumber int64) (*models.Account, error) {
	s.log.WithField("accountNumber", accountNumber).Debug("finding account by number")
	return s.accounts.FindByNumber(ctx, accountNumber)
}

package command

import (
	"context"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/vinigdesouza/api-financial/internal/models"
)

type accountStore interface {
	FindByID(ctx context.Context, id string) (*models.Account, error)
	FindByNumber(ctx context.Context, accountNumber int64) (*models.Account, error)
	Create(ctx context.Context, account *models.Account) error
	Update(ctx context.Context, account *models.Account) error
	Delete(ctx context.Context, id string) error
}

type CreateAccountCommand struct {
	Name          string
	AccountNumber int64
	Balance       decimal.Decimal
	AccountType   models.AccountType
}

type UpdateAccountCommand struct {
	AccountID   string
	Name        string
	AccountType models.AccountType
}

// AccountCommandService handles explicit account management. It never touches
// balances beyond the opening deposit; settled transactions are the only
// other balance writer.
type AccountCommandService struct {
	accounts accountStore
	log      *logrus.Logger
}

func NewAccountCommandService(accounts accountStore, log *logrus.Logger) *AccountCommandService {
	return &AccountCommandService{accounts: accounts, log: log}
}

func (s *AccountCommandService) CreateAccount(ctx context.Context, cmd CreateAccountCommand) (*models.Account, error) {
	s.log.WithField("accountNumber", cmd.AccountNumber).Info("creating account")

	account, err := models.NewAccount(cmd.Name, cmd.AccountNumber, cmd.Balance, cmd.AccountType)
	if err != nil {
		return nil, err
	}

	_, err = s.accounts.FindByNumber(ctx, cmd.AccountNumber)
	if err == nil {
		s.log.WithField("accountNumber", cmd.AccountNumber).Warn("account number already exists")
		return nil, fmt.Errorf("%w: account number already exists", models.ErrInvalidRequest)
	}
	if !errors.Is(err, models.ErrAccountNotFound) {
		return nil, err
	}

	if err := s.accounts.Create(ctx, account); err != nil {
		s.log.WithError(err).Error("error creating account")
		return nil, err
	}
	return account, nil
}

func (s *AccountCommandService) UpdateAccount(ctx context.Context, cmd UpdateAccountCommand) (*models.Account, error) {
	account, err := s.accounts.FindByID(ctx, cmd.AccountID)
	if err != nil {
		return nil, err
	}

	if cmd.AccountType != models.AccountTypeChecking && cmd.AccountType != models.AccountTypeSavings {
		return nil, fmt.Errorf("%w: invalid account type %q", models.ErrInvalidRequest, cmd.AccountType)
	}
	if cmd.Name == "" {
		return nil, fmt.Errorf("%w: name is required", models.ErrInvalidRequest)
	}

	account.Name = cmd.Name
	account.AccountType = cmd.AccountType
	if err := s.accounts.Update(ctx, account); err != nil {
		s.log.WithError(err).Error("error updating account")
		return nil, err
	}
	return s.accounts.FindByID(ctx, cmd.AccountID)
}

func (s *AccountCommandService) DeleteAccount(ctx context.Context, id string) error {
	if err := s.accounts.Delete(ctx, id); err != nil {
		s.log.WithError(err).WithField("accountId", id).Error("error deleting account")
		return err
	}
	return nil
}

package models

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type AccountType string

const (
	AccountTypeChecking AccountType = "CHECKING"
	AccountTypeSavings  AccountType = "SAVINGS"
)

type Currency string

const (
	CurrencyBRL Currency = "BRL"
	CurrencyUSD Currency = "USD"
	CurrencyEUR Currency = "EUR"
)

// SettlementCurrency is the single currency every balance is denominated in.
// Amounts arriving in any other currency are converted before validation.
const SettlementCurrency = CurrencyBRL

type TransactionType string

const (
	TransactionTypeDeposit  TransactionType = "DEPOSIT"
	TransactionTypeWithdraw TransactionType = "WITHDRAW"
	TransactionTypeTransfer TransactionType = "TRANSFER"
)

type TransactionStatus string

const (
	TransactionStatusPending   TransactionStatus = "PENDING"
	TransactionStatusCompleted TransactionStatus = "COMPLETED"
	TransactionStatusFailed    TransactionStatus = "FAILED"
)

type ScheduledTransactionStatus string

const (
	ScheduledTransactionStatusPending   ScheduledTransactionStatus = "PENDING"
	ScheduledTransactionStatusProcessed ScheduledTransactionStatus = "PROCESSED"
)

type Account struct {
	ID            string          `json:"id"`
	Name          string          `json:"name"`
	AccountNumber int64           `json:"accountNumber"`
	Balance       decimal.Decimal `json:"balance"`
	AccountType   AccountType     `json:"accountType"`
	CreatedAt     time.Time       `json:"createdAt"`
	UpdatedAt     time.Time       `json:"updatedAt"`
}

type Transaction struct {
	ID                   string            `json:"id"`
	AccountID            string            `json:"accountId"`
	Amount               decimal.Decimal   `json:"amount"`
	Type                 TransactionType   `json:"transactionType"`
	Status               TransactionStatus `json:"status"`
	Description          string            `json:"description,omitempty"`
	DestinationAccountID *string           `json:"destinationAccountId,omitempty"`
	CreatedAt            time.Time         `json:"createdAt"`
	UpdatedAt            *time.Time        `json:"updatedAt,omitempty"`
}

type ScheduledTransaction struct {
	ID            string                     `json:"id"`
	TransactionID string                     `json:"transactionId"`
	ScheduledAt   time.Time                  `json:"scheduledAt"`
	Status        ScheduledTransactionStatus `json:"status"`
	CreatedAt     time.Time                  `json:"createdAt"`
	UpdatedAt     time.Time                  `json:"updatedAt"`
}

// NewAccount builds an account in a valid initial state. The account type must
// belong to the closed set and the opening balance cannot be negative.
func NewAccount(name string, accountNumber int64, balance decimal.Decimal, accountType AccountType) (*Account, error) {
	if name == "" {
		return nil, fmt.Errorf("%w: name is required", ErrInvalidRequest)
	}
	if accountNumber <= 0 {
		return nil, fmt.Errorf("%w: account number must be positive", ErrInvalidRequest)
	}
	if accountType != AccountTypeChecking && accountType != AccountTypeSavings {
		return nil, fmt.Errorf("%w: invalid account type %q", ErrInvalidRequest, accountType)
	}
	if balance.IsNegative() {
		return nil, fmt.Errorf("%w: account balance cannot be negative", ErrInvalidRequest)
	}
	now := time.Now().UTC()
	return &Account{
		ID:            uuid.New().String(),
		Name:          name,
		AccountNumber: accountNumber,
		Balance:       balance,
		AccountType:   accountType,
		CreatedAt:     now,
		UpdatedAt:     now,
	}, nil
}

// NewTransaction builds a pending transaction. A destination account is
// required for transfers, forbidden otherwise, and must differ from the
// source account.
func NewTransaction(accountID string, amount decimal.Decimal, transactionType TransactionType, description string, destinationAccountID *string) (*Transaction, error) {
	if accountID == "" {
		return nil, fmt.Errorf("%w: account id is required", ErrInvalidRequest)
	}
	if !amount.IsPositive() {
		return nil, fmt.Errorf("%w: amount must be greater than zero", ErrInvalidRequest)
	}
	switch transactionType {
	case TransactionTypeDeposit, TransactionTypeWithdraw:
		if destinationAccountID != nil {
			return nil, fmt.Errorf("%w: destination account is only allowed for transfers", ErrInvalidRequest)
		}
	case TransactionTypeTransfer:
		if destinationAccountID == nil || *destinationAccountID == "" {
			return nil, fmt.Errorf("%w: destination account is required for transfers", ErrInvalidRequest)
		}
		if *destinationAccountID == accountID {
			return nil, fmt.Errorf("%w: destination account must differ from source account", ErrInvalidRequest)
		}
	default:
		return nil, fmt.Errorf("%w: invalid transaction type %q", ErrInvalidRequest, transactionType)
	}
	return &Transaction{
		ID:                   uuid.New().String(),
		AccountID:            accountID,
		Amount:               amount,
		Type:                 transactionType,
		Status:               TransactionStatusPending,
		Description:          description,
		DestinationAccountID: destinationAccountID,
		CreatedAt:            time.Now().UTC(),
	}, nil
}

// NewScheduledTransaction builds the pending schedule record tied 1:1 to a
// transaction created with a future settlement instant.
func NewScheduledTransaction(transactionID string, scheduledAt time.Time) *ScheduledTransaction {
	now := time.Now().UTC()
	return &ScheduledTransaction{
		ID:            uuid.New().String(),
		TransactionID: transactionID,
		ScheduledAt:   scheduledAt.UTC(),
		Status:        ScheduledTransactionStatusPending,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
}

// ValidCurrency reports whether c belongs to the closed currency set.
func ValidCurrency(c Currency) bool {
	switch c {
	case CurrencyBRL, CurrencyUSD, CurrencyEUR:
		return true
	}
	return false
}

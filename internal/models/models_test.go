package models

import (
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func strPtr(s string) *string { return &s }

func TestNewTransaction(t *testing.T) {
	tests := []struct {
		name        string
		accountID   string
		amount      decimal.Decimal
		txType      TransactionType
		destination *string
		wantErr     bool
	}{
		{
			name:      "valid deposit",
			accountID: "acc-1", amount: decimal.NewFromInt(50), txType: TransactionTypeDeposit,
		},
		{
			name:      "valid withdraw",
			accountID: "acc-1", amount: decimal.NewFromFloat(10.50), txType: TransactionTypeWithdraw,
		},
		{
			name:      "valid transfer",
			accountID: "acc-1", amount: decimal.NewFromInt(100), txType: TransactionTypeTransfer,
			destination: strPtr("acc-2"),
		},
		{
			name:      "zero amount rejected",
			accountID: "acc-1", amount: decimal.Zero, txType: TransactionTypeDeposit,
			wantErr: true,
		},
		{
			name:      "negative amount rejected",
			accountID: "acc-1", amount: decimal.NewFromInt(-5), txType: TransactionTypeDeposit,
			wantErr: true,
		},
		{
			name:      "transfer without destination rejected",
			accountID: "acc-1", amount: decimal.NewFromInt(10), txType: TransactionTypeTransfer,
			wantErr: true,
		},
		{
			name:      "self transfer rejected",
			accountID: "acc-1", amount: decimal.NewFromInt(10), txType: TransactionTypeTransfer,
			destination: strPtr("acc-1"),
			wantErr:     true,
		},
		{
			name:      "deposit with destination rejected",
			accountID: "acc-1", amount: decimal.NewFromInt(10), txType: TransactionTypeDeposit,
			destination: strPtr("acc-2"),
			wantErr:     true,
		},
		{
			name:      "unknown type rejected",
			accountID: "acc-1", amount: decimal.NewFromInt(10), txType: TransactionType("REFUND"),
			wantErr: true,
		},
		{
			name:   "missing account id rejected",
			amount: decimal.NewFromInt(10), txType: TransactionTypeDeposit,
			wantErr: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tx, err := NewTransaction(tt.accountID, tt.amount, tt.txType, "", tt.destination)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected error, got transaction %+v", tx)
				}
				if !errors.Is(err, ErrInvalidRequest) {
					t.Errorf("expected ErrInvalidRequest, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if tx.Status != TransactionStatusPending {
				t.Errorf("expected status PENDING, got %s", tx.Status)
			}
			if tx.ID == "" {
				t.Error("expected generated id")
			}
		})
	}
}

func TestNewAccount(t *testing.T) {
	tests := []struct {
		name        string
		accountName string
		number      int64
		balance     decimal.Decimal
		accountType AccountType
		wantErr     bool
	}{
		{name: "valid checking", accountName: "Main", number: 123456, balance: decimal.NewFromInt(100), accountType: AccountTypeChecking},
		{name: "valid savings with zero balance", accountName: "Rainy day", number: 654321, balance: decimal.Zero, accountType: AccountTypeSavings},
		{name: "negative balance rejected", accountName: "Main", number: 123456, balance: decimal.NewFromInt(-1), accountType: AccountTypeChecking, wantErr: true},
		{name: "unknown type rejected", accountName: "Main", number: 123456, balance: decimal.Zero, accountType: AccountType("INVESTMENT"), wantErr: true},
		{name: "missing name rejected", number: 123456, balance: decimal.Zero, accountType: AccountTypeChecking, wantErr: true},
		{name: "non-positive number rejected", accountName: "Main", number: 0, balance: decimal.Zero, accountType: AccountTypeChecking, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			account, err := NewAccount(tt.accountName, tt.number, tt.balance, tt.accountType)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected error, got account %+v", account)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if account.ID == "" {
				t.Error("expected generated id")
			}
		})
	}
}

func TestNewScheduledTransaction(t *testing.T) {
	due := time.Now().Add(time.Hour)
	scheduled := NewScheduledTransaction("tx-1", due)
	if scheduled.Status != ScheduledTransactionStatusPending {
		t.Errorf("expected status PENDING, got %s", scheduled.Status)
	}
	if !scheduled.ScheduledAt.Equal(due) {
		t.Errorf("expected scheduledAt %v, got %v", due, scheduled.ScheduledAt)
	}
	if scheduled.TransactionID != "tx-1" {
		t.Errorf("expected transaction id tx-1, got %s", scheduled.TransactionID)
	}
}

func TestValidCurrency(t *testing.T) {
	for _, c := range []Currency{CurrencyBRL, CurrencyUSD, CurrencyEUR} {
		if !ValidCurrency(c) {
			t.Errorf("expected %s to be valid", c)
		}
	}
	if ValidCurrency(Currency("GBP")) {
		t.Error("expected GBP to be invalid")
	}
}

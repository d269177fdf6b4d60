package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/vinigdesouza/api-financial/internal/models"
)

// AccountRepository persists accounts in PostgreSQL, the single authoritative
// store for balances. Balance mutations go through the atomic methods below;
// nothing reads a balance and writes it back.
type AccountRepository struct {
	db  *sql.DB
	log *logrus.Logger
}

func NewAccountRepository(db *sql.DB, log *logrus.Logger) *AccountRepository {
	return &AccountRepository{db: db, log: log}
}

func (r *AccountRepository) Create(ctx context.Context, account *models.Account) error {
	query := `
		INSERT INTO accounts (id, name, account_number, balance, account_type, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	_, err := r.db.ExecContext(ctx, query,
		account.ID, account.Name, account.AccountNumber, account.Balance,
		account.AccountType, account.CreatedAt, account.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("%w: failed to create account: %v", models.ErrPersistence, err)
	}
	return nil
}

func (r *AccountRepository) FindByID(ctx context.Context, id string) (*models.Account, error) {
	query := `
		SELECT id, name, account_number, balance, account_type, created_at, updated_at
		FROM accounts
		WHERE id = $1
	`
	return r.scanAccount(r.db.QueryRowContext(ctx, query, id))
}

func (r *AccountRepository) FindByNumber(ctx context.Context, accountNumber int64) (*models.Account, error) {
	query := `
		SELECT id, name, account_number, balance, account_type, created_at, updated_at
		FROM accounts
		WHERE account_number = $1
	`
	return r.scanAccount(r.db.QueryRowContext(ctx, query, accountNumber))
}

func (r *AccountRepository) scanAccount(row *sql.Row) (*models.Account, error) {
	var account models.Account
	err := row.Scan(
		&account.ID, &account.Name, &account.AccountNumber, &account.Balance,
		&account.AccountType, &account.CreatedAt, &account.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, models.ErrAccountNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: failed to get account: %v", models.ErrPersistence, err)
	}
	return &account, nil
}

func (r *AccountRepository) Update(ctx context.Context, account *models.Account) error {
	query := `
		UPDATE accounts
		SET name = $2, account_type = $3, updated_at = NOW()
		WHERE id = $1
	`
	result, err := r.db.ExecContext(ctx, query, account.ID, account.Name, account.AccountType)
	if err != nil {
		return fmt.Errorf("%w: failed to update account: %v", models.ErrPersistence, err)
	}
	return r.requireRow(result)
}

func (r *AccountRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM accounts WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("%w: failed to delete account: %v", models.ErrPersistence, err)
	}
	return r.requireRow(result)
}

func (r *AccountRepository) requireRow(result sql.Result) error {
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: failed to check rows affected: %v", models.ErrPersistence, err)
	}
	if rows == 0 {
		return models.ErrAccountNotFound
	}
	return nil
}

// Deposit credits amount to the account and returns the new balance.
func (r *AccountRepository) Deposit(ctx context.Context, id string, amount decimal.Decimal) (decimal.Decimal, error) {
	query := `
		UPDATE accounts
		SET balance = balance + $2, updated_at = NOW()
		WHERE id = $1
		RETURNING balance
	`
	var balance decimal.Decimal
	err := r.db.QueryRowContext(ctx, query, id, amount).Scan(&balance)
	if err == sql.ErrNoRows {
		return decimal.Zero, models.ErrAccountNotFound
	}
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: failed to credit account: %v", models.ErrPersistence, err)
	}
	return balance, nil
}

// Withdraw debits amount from the account and returns the new balance. The
// debit is conditional on sufficient funds, which closes the window between
// the validator's advisory balance check and settlement: a concurrent
// settlement can never drive the balance below zero.
func (r *AccountRepository) Withdraw(ctx context.Context, id string, amount decimal.Decimal) (decimal.Decimal, error) {
	query := `
		UPDATE accounts
		SET balance = balance - $2, updated_at = NOW()
		WHERE id = $1 AND balance >= $2
		RETURNING balance
	`
	var balance decimal.Decimal
	err := r.db.QueryRowContext(ctx, query, id, amount).Scan(&balance)
	if err == sql.ErrNoRows {
		return decimal.Zero, r.explainFailedDebit(ctx, id)
	}
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: failed to debit account: %v", models.ErrPersistence, err)
	}
	return balance, nil
}

// explainFailedDebit distinguishes a missing account from insufficient funds
// after a conditional debit matched no row.
func (r *AccountRepository) explainFailedDebit(ctx context.Context, id string) error {
	var exists bool
	err := r.db.QueryRowContext(ctx, `SELECT EXISTS (SELECT 1 FROM accounts WHERE id = $1)`, id).Scan(&exists)
	if err != nil {
		return fmt.Errorf("%w: failed to check account: %v", models.ErrPersistence, err)
	}
	if !exists {
		return models.ErrAccountNotFound
	}
	return models.ErrInsufficientBalance
}

// Transfer debits the source and credits the destination inside one database
// transaction, so the two balance effects commit together (conservation) or
// not at all. Returns the new source and destination balances.
func (r *AccountRepository) Transfer(ctx context.Context, sourceID, destinationID string, amount decimal.Decimal) (decimal.Decimal, decimal.Decimal, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return decimal.Zero, decimal.Zero, fmt.Errorf("%w: failed to begin transfer: %v", models.ErrPersistence, err)
	}
	defer tx.Rollback()

	debit := `
		UPDATE accounts
		SET balance = balance - $2, updated_at = NOW()
		WHERE id = $1 AND balance >= $2
		RETURNING balance
	`
	var sourceBalance decimal.Decimal
	err = tx.QueryRowContext(ctx, debit, sourceID, amount).Scan(&sourceBalance)
	if err == sql.ErrNoRows {
		return decimal.Zero, decimal.Zero, r.explainFailedDebit(ctx, sourceID)
	}
	if err != nil {
		return decimal.Zero, decimal.Zero, fmt.Errorf("%w: failed to debit source account: %v", models.ErrPersistence, err)
	}

	credit := `
		UPDATE accounts
		SET balance = balance + $2, updated_at = NOW()
		WHERE id = $1
		RETURNING balance
	`
	var destinationBalance decimal.Decimal
	err = tx.QueryRowContext(ctx, credit, destinationID, amount).Scan(&destinationBalance)
	if err == sql.ErrNoRows {
		return decimal.Zero, decimal.Zero, fmt.Errorf("destination %w", models.ErrAccountNotFound)
	}
	if err != nil {
		return decimal.Zero, decimal.Zero, fmt.Errorf("%w: failed to credit destination account: %v", models.ErrPersistence, err)
	}

	if err := tx.Commit(); err != nil {
		return decimal.Zero, decimal.Zero, fmt.Errorf("%w: failed to commit transfer: %v", models.ErrPersistence, err)
	}
	return sourceBalance, destinationBalance, nil
}

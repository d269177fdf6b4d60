package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/vinigdesouza/api-financial/internal/models"
)

type TransactionRepository struct {
	db  *sql.DB
	log *logrus.Logger
}

func NewTransactionRepository(db *sql.DB, log *logrus.Logger) *TransactionRepository {
	return &TransactionRepository{db: db, log: log}
}

func (r *TransactionRepository) Create(ctx context.Context, transaction *models.Transaction) error {
	query := `
		INSERT INTO transactions (id, account_id, amount, transaction_type, status, description, destination_account_id, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	_, err := r.db.ExecContext(ctx, query,
		transaction.ID, transaction.AccountID, transaction.Amount,
		transaction.Type, transaction.Status,
		nullString(transaction.Description), transaction.DestinationAccountID,
		transaction.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("%w: failed to create transaction: %v", models.ErrPersistence, err)
	}
	return nil
}

func (r *TransactionRepository) FindByID(ctx context.Context, id string) (*models.Transaction, error) {
	query := `
		SELECT id, account_id, amount, transaction_type, status, description, destination_account_id, created_at, updated_at
		FROM transactions
		WHERE id = $1
	`
	transaction, err := scanTransaction(r.db.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, models.ErrTransactionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: failed to get transaction: %v", models.ErrPersistence, err)
	}
	return transaction, nil
}

func (r *TransactionRepository) FindByAccountID(ctx context.Context, accountID string) ([]models.Transaction, error) {
	query := `
		SELECT id, account_id, amount, transaction_type, status, description, destination_account_id, created_at, updated_at
		FROM transactions
		WHERE account_id = $1
		ORDER BY created_at DESC
	`
	rows, err := r.db.QueryContext(ctx, query, accountID)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to list transactions: %v", models.ErrPersistence, err)
	}
	defer rows.Close()

	var transactions []models.Transaction
	for rows.Next() {
		transaction, err := scanTransaction(rows)
		if err != nil {
			return nil, fmt.Errorf("%w: failed to scan transaction: %v", models.ErrPersistence, err)
		}
		transactions = append(transactions, *transaction)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: failed to list transactions: %v", models.ErrPersistence, err)
	}
	return transactions, nil
}

func (r *TransactionRepository) UpdateStatus(ctx context.Context, id string, status models.TransactionStatus) error {
	query := `UPDATE transactions SET status = $2, updated_at = NOW() WHERE id = $1`
	result, err := r.db.ExecContext(ctx, query, id, status)
	if err != nil {
		return fmt.Errorf("%w: failed to update transaction status: %v", models.ErrPersistence, err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: failed to check rows affected: %v", models.ErrPersistence, err)
	}
	if rows == 0 {
		return models.ErrTransactionNotFound
	}
	return nil
}

func (r *TransactionRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM transactions WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("%w: failed to delete transaction: %v", models.ErrPersistence, err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: failed to check rows affected: %v", models.ErrPersistence, err)
	}
	if rows == 0 {
		return models.ErrTransactionNotFound
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTransaction(row rowScanner) (*models.Transaction, error) {
	var transaction models.Transaction
	var description sql.NullString
	var updatedAt sql.NullTime
	err := row.Scan(
		&transaction.ID, &transaction.AccountID, &transaction.Amount,
		&transaction.Type, &transaction.Status,
		&description, &transaction.DestinationAccountID,
		&transaction.CreatedAt, &updatedAt,
	)
	if err != nil {
		return nil, err
	}
	transaction.Description = description.String
	if updatedAt.Valid {
		t := updatedAt.Time
		transaction.UpdatedAt = &t
	}
	return &transaction, nil
}

func nullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}

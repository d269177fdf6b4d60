package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/vinigdesouza/api-financial/internal/models"
)

type ScheduledTransactionRepository struct {
	db  *sql.DB
	log *logrus.Logger
}

func NewScheduledTransactionRepository(db *sql.DB, log *logrus.Logger) *ScheduledTransactionRepository {
	return &ScheduledTransactionRepository{db: db, log: log}
}

func (r *ScheduledTransactionRepository) Create(ctx context.Context, scheduled *models.ScheduledTransaction) error {
	query := `
		INSERT INTO scheduled_transactions (id, transaction_id, scheduled_at, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	_, err := r.db.ExecContext(ctx, query,
		scheduled.ID, scheduled.TransactionID, scheduled.ScheduledAt,
		scheduled.Status, scheduled.CreatedAt, scheduled.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("%w: failed to create scheduled transaction: %v", models.ErrPersistence, err)
	}
	return nil
}

func (r *ScheduledTransactionRepository) FindByTransactionID(ctx context.Context, transactionID string) (*models.ScheduledTransaction, error) {
	query := `
		SELECT id, transaction_id, scheduled_at, status, created_at, updated_at
		FROM scheduled_transactions
		WHERE transaction_id = $1
	`
	var scheduled models.ScheduledTransaction
	err := r.db.QueryRowContext(ctx, query, transactionID).Scan(
		&scheduled.ID, &scheduled.TransactionID, &scheduled.ScheduledAt,
		&scheduled.Status, &scheduled.CreatedAt, &scheduled.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, models.ErrScheduledTransactionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: failed to get scheduled transaction: %v", models.ErrPersistence, err)
	}
	return &scheduled, nil
}

// UpdateStatus flips a schedule to the given status. The update only matches
// a row still in a different status, so a second PROCESSED flip for the same
// transaction matches nothing and reports not found; callers rely on this as
// the exactly-once compare-and-set.
func (r *ScheduledTransactionRepository) UpdateStatus(ctx context.Context, transactionID string, status models.ScheduledTransactionStatus) error {
	query := `
		UPDATE scheduled_transactions
		SET status = $2, updated_at = NOW()
		WHERE transaction_id = $1 AND status <> $2
	`
	result, err := r.db.ExecContext(ctx, query, transactionID, status)
	if err != nil {
		return fmt.Errorf("%w: failed to update scheduled transaction status: %v", models.ErrPersistence, err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: failed to check rows affected: %v", models.ErrPersistence, err)
	}
	if rows == 0 {
		return models.ErrScheduledTransactionNotFound
	}
	return nil
}

// FindOverdue returns schedules still PENDING whose due instant passed before
// olderThan. Feeds the stale-settlement report; a row here means a due job
// was lost or its worker invocation never completed.
func (r *ScheduledTransactionRepository) FindOverdue(ctx context.Context, olderThan time.Time) ([]models.ScheduledTransaction, error) {
	query := `
		SELECT id, transaction_id, scheduled_at, status, created_at, updated_at
		FROM scheduled_transactions
		WHERE status = $1 AND scheduled_at < $2
		ORDER BY scheduled_at
	`
	rows, err := r.db.QueryContext(ctx, query, models.ScheduledTransactionStatusPending, olderThan)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to list overdue schedules: %v", models.ErrPersistence, err)
	}
	defer rows.Close()

	var overdue []models.ScheduledTransaction
	for rows.Next() {
		var scheduled models.ScheduledTransaction
		if err := rows.Scan(
			&scheduled.ID, &scheduled.TransactionID, &scheduled.ScheduledAt,
			&scheduled.Status, &scheduled.CreatedAt, &scheduled.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("%w: failed to scan scheduled transaction: %v", models.ErrPersistence, err)
		}
		overdue = append(overdue, scheduled)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: failed to list overdue schedules: %v", models.ErrPersistence, err)
	}
	return overdue, nil
}

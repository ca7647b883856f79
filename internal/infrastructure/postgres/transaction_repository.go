package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"cardkeeper/internal/domain/ledger"
)

type TransactionRepository struct {
	db *DB
}

func NewTransactionRepository(db *DB) *TransactionRepository {
	return &TransactionRepository{db: db}
}

const transactionColumns = `id, card_id, transaction_date, label, amount, external, external_multiplier, created_at, updated_at`

func (r *TransactionRepository) Create(ctx context.Context, params ledger.CreateTransactionParams) (*ledger.Transaction, error) {
	query := `
		INSERT INTO card_transactions (id, card_id, transaction_date, label, amount, external, external_multiplier)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING ` + transactionColumns

	var tx ledger.Transaction
	err := r.db.QueryRowContext(
		ctx, query,
		params.ID, params.CardID, params.TransactionDate, params.Label,
		params.Amount, params.External, params.ExternalMultiplier,
	).Scan(
		&tx.ID, &tx.CardID, &tx.TransactionDate, &tx.Label,
		&tx.Amount, &tx.External, &tx.ExternalMultiplier,
		&tx.CreatedAt, &tx.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create transaction: %w", err)
	}

	return &tx, nil
}

func (r *TransactionRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM card_transactions WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete transaction: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check delete result: %w", err)
	}
	if affected == 0 {
		return ledger.ErrTransactionNotFound
	}
	return nil
}

// ListByMonth returns the card's entries for one calendar month ordered
// by transaction date, ties broken by insertion order.
func (r *TransactionRepository) ListByMonth(ctx context.Context, cardID string, year, month int) ([]*ledger.Transaction, error) {
	from := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC)
	to := from.AddDate(0, 1, 0)
	return r.ListBetween(ctx, cardID, from, to)
}

func (r *TransactionRepository) ListBetween(ctx context.Context, cardID string, from, to time.Time) ([]*ledger.Transaction, error) {
	query := `
		SELECT ` + transactionColumns + `
		FROM card_transactions
		WHERE card_id = $1 AND transaction_date >= $2 AND transaction_date < $3
		ORDER BY transaction_date ASC, created_at ASC
	`

	rows, err := r.db.QueryContext(ctx, query, cardID, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to list transactions: %w", err)
	}
	defer rows.Close()

	var transactions []*ledger.Transaction
	for rows.Next() {
		var tx ledger.Transaction
		err := rows.Scan(
			&tx.ID, &tx.CardID, &tx.TransactionDate, &tx.Label,
			&tx.Amount, &tx.External, &tx.ExternalMultiplier,
			&tx.CreatedAt, &tx.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan transaction: %w", err)
		}
		transactions = append(transactions, &tx)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating transactions: %w", err)
	}

	return transactions, nil
}

func (r *TransactionRepository) SumBefore(ctx context.Context, cardID string, before time.Time) (float64, error) {
	query := `
		SELECT COALESCE(SUM(amount), 0)
		FROM card_transactions
		WHERE card_id = $1 AND transaction_date < $2
	`

	var sum float64
	err := r.db.QueryRowContext(ctx, query, cardID, before).Scan(&sum)
	if err != nil {
		return 0, fmt.Errorf("failed to sum transactions: %w", err)
	}
	return sum, nil
}

func (r *TransactionRepository) CountByCard(ctx context.Context, cardID string) (int64, error) {
	var count int64
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM card_transactions WHERE card_id = $1`, cardID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count transactions: %w", err)
	}
	return count, nil
}

func (r *TransactionRepository) DeleteByCard(ctx context.Context, cardID string) (int64, error) {
	result, err := r.db.ExecContext(ctx, `DELETE FROM card_transactions WHERE card_id = $1`, cardID)
	if err != nil {
		return 0, fmt.Errorf("failed to delete transactions: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to check delete result: %w", err)
	}
	return affected, nil
}

// FindByTuple matches an entry by the (date, label, amount) identity the
// CSV importer uses for idempotence.
func (r *TransactionRepository) FindByTuple(ctx context.Context, cardID string, date time.Time, label string, amount float64) (*ledger.Transaction, error) {
	query := `
		SELECT ` + transactionColumns + `
		FROM card_transactions
		WHERE card_id = $1 AND transaction_date = $2 AND label = $3 AND amount = $4
		LIMIT 1
	`

	var tx ledger.Transaction
	err := r.db.QueryRowContext(ctx, query, cardID, date, label, amount).Scan(
		&tx.ID, &tx.CardID, &tx.TransactionDate, &tx.Label,
		&tx.Amount, &tx.External, &tx.ExternalMultiplier,
		&tx.CreatedAt, &tx.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil // Not found
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find transaction: %w", err)
	}

	return &tx, nil
}

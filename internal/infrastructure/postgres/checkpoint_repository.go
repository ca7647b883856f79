package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"cardkeeper/internal/domain/balance"
)

type CheckpointRepository struct {
	db *DB
}

func NewCheckpointRepository(db *DB) *CheckpointRepository {
	return &CheckpointRepository{db: db}
}

const checkpointColumns = `id, card_id, year, month, starting_balance, usage_total, repayment_total, external_points, closing_balance, confirmed_at, created_at, updated_at`

func (r *CheckpointRepository) Get(ctx context.Context, cardID string, year, month int) (*balance.Checkpoint, error) {
	query := `
		SELECT ` + checkpointColumns + `
		FROM monthly_checkpoints
		WHERE card_id = $1 AND year = $2 AND month = $3
	`

	cp, err := scanCheckpoint(r.db.QueryRowContext(ctx, query, cardID, year, month))
	if err == sql.ErrNoRows {
		return nil, nil // Not found
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get checkpoint: %w", err)
	}
	return cp, nil
}

func (r *CheckpointRepository) ListByCard(ctx context.Context, cardID string) ([]*balance.Checkpoint, error) {
	query := `
		SELECT ` + checkpointColumns + `
		FROM monthly_checkpoints
		WHERE card_id = $1
		ORDER BY year ASC, month ASC
	`

	rows, err := r.db.QueryContext(ctx, query, cardID)
	if err != nil {
		return nil, fmt.Errorf("failed to list checkpoints: %w", err)
	}
	defer rows.Close()

	var checkpoints []*balance.Checkpoint
	for rows.Next() {
		cp, err := scanCheckpoint(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan checkpoint: %w", err)
		}
		checkpoints = append(checkpoints, cp)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating checkpoints: %w", err)
	}

	return checkpoints, nil
}

// Upsert inserts or replaces the month's snapshot. The table carries
// UNIQUE(card_id, year, month) so a re-confirmation lands on the
// ON CONFLICT branch and overwrites the stored fields.
func (r *CheckpointRepository) Upsert(ctx context.Context, cardID string, year, month int, params balance.UpsertCheckpointParams) (*balance.Checkpoint, error) {
	query := `
		INSERT INTO monthly_checkpoints
			(id, card_id, year, month, starting_balance, usage_total, repayment_total, external_points, closing_balance, confirmed_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (card_id, year, month) DO UPDATE SET
			starting_balance = EXCLUDED.starting_balance,
			usage_total      = EXCLUDED.usage_total,
			repayment_total  = EXCLUDED.repayment_total,
			external_points  = EXCLUDED.external_points,
			closing_balance  = EXCLUDED.closing_balance,
			confirmed_at     = EXCLUDED.confirmed_at,
			updated_at       = CURRENT_TIMESTAMP
		RETURNING ` + checkpointColumns

	cp, err := scanCheckpoint(r.db.QueryRowContext(
		ctx, query,
		uuid.NewString(), cardID, year, month,
		params.StartingBalance, params.UsageTotal, params.RepaymentTotal,
		params.ExternalPoints, params.ClosingBalance, params.ConfirmedAt,
	))
	if err != nil {
		return nil, fmt.Errorf("failed to upsert checkpoint: %w", err)
	}
	return cp, nil
}

func (r *CheckpointRepository) CountByCard(ctx context.Context, cardID string) (int64, error) {
	var count int64
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM monthly_checkpoints WHERE card_id = $1`, cardID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count checkpoints: %w", err)
	}
	return count, nil
}

func (r *CheckpointRepository) DeleteByCard(ctx context.Context, cardID string) (int64, error) {
	result, err := r.db.ExecContext(ctx, `DELETE FROM monthly_checkpoints WHERE card_id = $1`, cardID)
	if err != nil {
		return 0, fmt.Errorf("failed to delete checkpoints: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to check delete result: %w", err)
	}
	return affected, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanCheckpoint(row rowScanner) (*balance.Checkpoint, error) {
	var cp balance.Checkpoint
	var confirmedAt sql.NullTime

	err := row.Scan(
		&cp.ID, &cp.CardID, &cp.Year, &cp.Month,
		&cp.StartingBalance, &cp.UsageTotal, &cp.RepaymentTotal,
		&cp.ExternalPoints, &cp.ClosingBalance,
		&confirmedAt, &cp.CreatedAt, &cp.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if confirmedAt.Valid {
		t := confirmedAt.Time
		cp.ConfirmedAt = &t
	}
	return &cp, nil
}

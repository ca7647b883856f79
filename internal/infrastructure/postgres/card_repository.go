package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"cardkeeper/internal/domain/card"
)

type CardRepository struct {
	db *DB
}

func NewCardRepository(db *DB) *CardRepository {
	return &CardRepository{db: db}
}

func (r *CardRepository) Create(ctx context.Context, params card.CreateParams) (*card.Card, error) {
	query := `
		INSERT INTO cards (id, name, issued_date, credit_limit, active)
		VALUES ($1, $2, $3, $4, TRUE)
		RETURNING id, name, issued_date, credit_limit, active, created_at, updated_at
	`

	var c card.Card
	var issuedDate sql.NullTime
	var creditLimit sql.NullFloat64

	err := r.db.QueryRowContext(
		ctx, query,
		uuid.NewString(), params.Name, params.IssuedDate, params.CreditLimit,
	).Scan(
		&c.ID, &c.Name, &issuedDate, &creditLimit,
		&c.Active, &c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create card: %w", err)
	}

	applyNullableCardFields(&c, issuedDate, creditLimit)
	return &c, nil
}

func (r *CardRepository) GetByID(ctx context.Context, id string) (*card.Card, error) {
	query := `
		SELECT id, name, issued_date, credit_limit, active, created_at, updated_at
		FROM cards
		WHERE id = $1
	`

	var c card.Card
	var issuedDate sql.NullTime
	var creditLimit sql.NullFloat64

	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&c.ID, &c.Name, &issuedDate, &creditLimit,
		&c.Active, &c.CreatedAt, &c.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil // Not found
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get card: %w", err)
	}

	applyNullableCardFields(&c, issuedDate, creditLimit)
	return &c, nil
}

func (r *CardRepository) ListActive(ctx context.Context) ([]*card.Card, error) {
	query := `
		SELECT id, name, issued_date, credit_limit, active, created_at, updated_at
		FROM cards
		WHERE active = TRUE
		ORDER BY created_at ASC
	`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list cards: %w", err)
	}
	defer rows.Close()

	var cards []*card.Card
	for rows.Next() {
		var c card.Card
		var issuedDate sql.NullTime
		var creditLimit sql.NullFloat64

		err := rows.Scan(
			&c.ID, &c.Name, &issuedDate, &creditLimit,
			&c.Active, &c.CreatedAt, &c.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan card: %w", err)
		}

		applyNullableCardFields(&c, issuedDate, creditLimit)
		cards = append(cards, &c)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating cards: %w", err)
	}

	return cards, nil
}

// ListActiveWithStats also reports whether each card carries any ledger
// entries or monthly checkpoints, used by the UI to gate CSV import.
func (r *CardRepository) ListActiveWithStats(ctx context.Context) ([]*card.Card, error) {
	query := `
		SELECT c.id, c.name, c.issued_date, c.credit_limit, c.active, c.created_at, c.updated_at,
		       EXISTS (SELECT 1 FROM card_transactions t WHERE t.card_id = c.id)  AS has_transactions,
		       EXISTS (SELECT 1 FROM monthly_checkpoints m WHERE m.card_id = c.id) AS has_monthly_balances
		FROM cards c
		WHERE c.active = TRUE
		ORDER BY c.created_at ASC
	`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list cards with stats: %w", err)
	}
	defer rows.Close()

	var cards []*card.Card
	for rows.Next() {
		var c card.Card
		var issuedDate sql.NullTime
		var creditLimit sql.NullFloat64

		err := rows.Scan(
			&c.ID, &c.Name, &issuedDate, &creditLimit,
			&c.Active, &c.CreatedAt, &c.UpdatedAt,
			&c.HasTransactions, &c.HasMonthlyBalances,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan card: %w", err)
		}

		applyNullableCardFields(&c, issuedDate, creditLimit)
		c.HasHistory = c.HasTransactions || c.HasMonthlyBalances
		cards = append(cards, &c)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating cards: %w", err)
	}

	return cards, nil
}

func (r *CardRepository) UpdateCreditLimit(ctx context.Context, id string, limit *float64) (*card.Card, error) {
	query := `
		UPDATE cards
		SET credit_limit = $1,
		    updated_at = CURRENT_TIMESTAMP
		WHERE id = $2
		RETURNING id, name, issued_date, credit_limit, active, created_at, updated_at
	`

	var c card.Card
	var issuedDate sql.NullTime
	var creditLimit sql.NullFloat64

	err := r.db.QueryRowContext(ctx, query, limit, id).Scan(
		&c.ID, &c.Name, &issuedDate, &creditLimit,
		&c.Active, &c.CreatedAt, &c.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, card.ErrCardNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to update credit limit: %w", err)
	}

	applyNullableCardFields(&c, issuedDate, creditLimit)
	return &c, nil
}

func applyNullableCardFields(c *card.Card, issuedDate sql.NullTime, creditLimit sql.NullFloat64) {
	if issuedDate.Valid {
		t := issuedDate.Time
		c.IssuedDate = &t
	}
	if creditLimit.Valid {
		v := creditLimit.Float64
		c.CreditLimit = &v
	}
}

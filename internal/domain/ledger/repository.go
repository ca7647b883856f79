package ledger

import (
	"context"
	"time"

	"cardkeeper/internal/domain/card"
)

// Repository defines the interface for transaction data access.
// Month queries return entries ordered by transaction date ascending,
// ties broken by creation order (insertion order, never renumbered).
type Repository interface {
	Create(ctx context.Context, params CreateTransactionParams) (*Transaction, error)
	// Delete returns ErrTransactionNotFound when the id does not exist.
	Delete(ctx context.Context, id string) error
	// ListByMonth returns the card's entries dated within the given
	// calendar month.
	ListByMonth(ctx context.Context, cardID string, year, month int) ([]*Transaction, error)
	// ListBetween returns the card's entries with from <= date < to.
	ListBetween(ctx context.Context, cardID string, from, to time.Time) ([]*Transaction, error)
	// SumBefore returns the signed sum of all entries dated strictly
	// before the given instant. Zero when the card has no history.
	SumBefore(ctx context.Context, cardID string, before time.Time) (float64, error)
	CountByCard(ctx context.Context, cardID string) (int64, error)
	DeleteByCard(ctx context.Context, cardID string) (int64, error)
	// FindByTuple returns an entry matching (card, date, label, amount)
	// exactly, or nil when none exists. Used by the CSV importer for
	// row-level idempotence.
	FindByTuple(ctx context.Context, cardID string, date time.Time, label string, amount float64) (*Transaction, error)
}

// CardDirectory is the slice of the card registry the ledger needs:
// resolving an id to an (active) card.
type CardDirectory interface {
	GetByID(ctx context.Context, id string) (*card.Card, error)
}

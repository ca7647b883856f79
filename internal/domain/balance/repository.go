package balance

import (
	"context"
	"time"

	"cardkeeper/internal/domain/card"
	"cardkeeper/internal/domain/ledger"
)

// CheckpointRepository defines the interface for checkpoint data access.
//
// Upsert is an insert-or-replace keyed by (cardID, year, month):
// confirming the same month twice overwrites the stored snapshot, it
// never duplicates it. This is the only write path for checkpoints
// besides DeleteByCard.
type CheckpointRepository interface {
	// Get returns nil, nil when no checkpoint exists for the month.
	Get(ctx context.Context, cardID string, year, month int) (*Checkpoint, error)
	ListByCard(ctx context.Context, cardID string) ([]*Checkpoint, error)
	Upsert(ctx context.Context, cardID string, year, month int, params UpsertCheckpointParams) (*Checkpoint, error)
	CountByCard(ctx context.Context, cardID string) (int64, error)
	DeleteByCard(ctx context.Context, cardID string) (int64, error)
}

// TransactionReader is the read-only slice of the ledger store the
// balance engine consumes.
type TransactionReader interface {
	ListByMonth(ctx context.Context, cardID string, year, month int) ([]*ledger.Transaction, error)
	ListBetween(ctx context.Context, cardID string, from, to time.Time) ([]*ledger.Transaction, error)
	SumBefore(ctx context.Context, cardID string, before time.Time) (float64, error)
}

// CardGetter resolves a card id; nil, nil when unknown.
type CardGetter interface {
	GetByID(ctx context.Context, id string) (*card.Card, error)
}

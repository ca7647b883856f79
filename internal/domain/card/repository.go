package card

import "context"

// Repository defines the interface for card data access.
// Defined in the domain layer, implemented in the infrastructure layer.
type Repository interface {
	Create(ctx context.Context, params CreateParams) (*Card, error)
	// GetByID returns nil, nil when the card does not exist.
	GetByID(ctx context.Context, id string) (*Card, error)
	// ListActive returns active cards ordered by creation time.
	ListActive(ctx context.Context) ([]*Card, error)
	// ListActiveWithStats additionally populates the HasTransactions /
	// HasMonthlyBalances / HasHistory flags.
	ListActiveWithStats(ctx context.Context) ([]*Card, error)
	UpdateCreditLimit(ctx context.Context, id string, limit *float64) (*Card, error)
}

// HistoryStore is the slice of the ledger and checkpoint stores the
// card service needs to clear a card's history. Implemented by the
// transaction and checkpoint repositories.
type HistoryStore interface {
	CountByCard(ctx context.Context, cardID string) (int64, error)
	DeleteByCard(ctx context.Context, cardID string) (int64, error)
}

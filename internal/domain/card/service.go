package card

import (
	"context"
	"strings"
)

// Service contains the business logic for card registry operations
type Service struct {
	repo         Repository
	transactions HistoryStore
	checkpoints  HistoryStore
}

// NewService creates a new card service
func NewService(repo Repository, transactions, checkpoints HistoryStore) *Service {
	return &Service{repo: repo, transactions: transactions, checkpoints: checkpoints}
}

// CreateCard registers a new card after validation. A zero credit
// limit is stored as "no limit tracked".
func (s *Service) CreateCard(ctx context.Context, params CreateParams) (*Card, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}
	params.Name = strings.TrimSpace(params.Name)
	return s.repo.Create(ctx, params)
}

// ListCards returns all active cards ordered by creation time.
// With includeStats, each card carries hasTransactions /
// hasMonthlyBalances / hasHistory flags.
func (s *Service) ListCards(ctx context.Context, includeStats bool) ([]*Card, error) {
	if includeStats {
		return s.repo.ListActiveWithStats(ctx)
	}
	return s.repo.ListActive(ctx)
}

// GetCard retrieves a card by ID
func (s *Service) GetCard(ctx context.Context, id string) (*Card, error) {
	if id == "" {
		return nil, ErrCardNotFound
	}
	c, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, ErrCardNotFound
	}
	return c, nil
}

// GetActiveCard retrieves a card by ID and requires it to be active
func (s *Service) GetActiveCard(ctx context.Context, id string) (*Card, error) {
	c, err := s.GetCard(ctx, id)
	if err != nil {
		return nil, err
	}
	if !c.Active {
		return nil, ErrCardNotFound
	}
	return c, nil
}

// UpdateCreditLimit sets or clears the credit limit of an active card
func (s *Service) UpdateCreditLimit(ctx context.Context, id string, limit *float64) (*Card, error) {
	if _, err := s.GetActiveCard(ctx, id); err != nil {
		return nil, err
	}
	normalized, err := NormalizeCreditLimit(limit)
	if err != nil {
		return nil, err
	}
	return s.repo.UpdateCreditLimit(ctx, id, normalized)
}

// ClearCardData removes all transactions and monthly checkpoints for a
// card. The card record itself is kept (soft removal of history).
func (s *Service) ClearCardData(ctx context.Context, id string) (*ClearResult, error) {
	c, err := s.GetActiveCard(ctx, id)
	if err != nil {
		return nil, err
	}

	txDeleted, err := s.transactions.DeleteByCard(ctx, id)
	if err != nil {
		return nil, err
	}
	cpDeleted, err := s.checkpoints.DeleteByCard(ctx, id)
	if err != nil {
		return nil, err
	}

	return &ClearResult{
		Card:                   c,
		TransactionsDeleted:    txDeleted,
		MonthlyBalancesDeleted: cpDeleted,
	}, nil
}

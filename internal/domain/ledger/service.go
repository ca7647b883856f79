package ledger

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"cardkeeper/internal/domain/card"
	"cardkeeper/internal/shared/normalize"
)

// Service contains the business logic for ledger append/delete operations
type Service struct {
	repo  Repository
	cards CardDirectory
}

// NewService creates a new ledger service
func NewService(repo Repository, cards CardDirectory) *Service {
	return &Service{repo: repo, cards: cards}
}

// Append validates and normalizes a new entry, then persists it.
// The amount accepts every form the normalizer does; the date must be
// YYYY-MM-DD. A non-external entry always stores a zero multiplier.
func (s *Service) Append(ctx context.Context, params AppendParams) (*Transaction, error) {
	c, err := s.cards.GetByID(ctx, params.CardID)
	if err != nil {
		return nil, err
	}
	if c == nil || !c.Active {
		return nil, card.ErrCardNotFound
	}

	label := strings.TrimSpace(params.Label)
	if label == "" {
		return nil, ErrLabelRequired
	}
	if strings.TrimSpace(params.Amount) == "" {
		return nil, ErrAmountRequired
	}

	amount, err := normalize.ParseAmount(params.Amount)
	if err != nil {
		return nil, err
	}
	date, err := normalize.ParseDate(params.Date)
	if err != nil {
		return nil, err
	}

	return s.repo.Create(ctx, CreateTransactionParams{
		ID:                 uuid.NewString(),
		CardID:             c.ID,
		TransactionDate:    date,
		Label:              label,
		Amount:             amount,
		External:           params.External,
		ExternalMultiplier: resolveMultiplier(params.External, params.ExternalMultiplier),
	})
}

// Delete removes a single entry by id
func (s *Service) Delete(ctx context.Context, id string) error {
	if id == "" {
		return ErrTransactionNotFound
	}
	return s.repo.Delete(ctx, id)
}

// resolveMultiplier applies the external-multiplier rules: negative
// values clamp to zero, external entries default to 1, non-external
// entries always store 0.
func resolveMultiplier(external bool, multiplier float64) float64 {
	if multiplier < 0 {
		multiplier = 0
	}
	if !external {
		return 0
	}
	if multiplier == 0 {
		return 1
	}
	return multiplier
}

package card

import (
	"errors"
	"math"
	"strings"
	"time"
)

// Domain errors
var (
	ErrCardNotFound        = errors.New("credit card not found")
	ErrNoCardsConfigured   = errors.New("no credit cards configured")
	ErrNameRequired        = errors.New("card name is required")
	ErrNegativeCreditLimit = errors.New("credit limit must be a non-negative number")
)

// Card is a registered credit card. A nil CreditLimit means no limit is
// tracked for the card. Cards are never hard-deleted: clearing a card
// removes its ledger and checkpoint history but keeps the record.
type Card struct {
	ID          string     `json:"id"`
	Name        string     `json:"name"`
	IssuedDate  *time.Time `json:"issuedDate"`
	CreditLimit *float64   `json:"creditLimit"`
	Active      bool       `json:"active"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`

	// Stats populated by ListCards when requested
	HasTransactions    bool `json:"hasTransactions"`
	HasMonthlyBalances bool `json:"hasMonthlyBalances"`
	HasHistory         bool `json:"hasHistory"`
}

// CreateParams contains the fields for registering a new card.
type CreateParams struct {
	Name        string
	IssuedDate  *time.Time
	CreditLimit *float64
}

func (p *CreateParams) Validate() error {
	if strings.TrimSpace(p.Name) == "" {
		return ErrNameRequired
	}
	normalized, err := NormalizeCreditLimit(p.CreditLimit)
	if err != nil {
		return err
	}
	p.CreditLimit = normalized
	return nil
}

// NormalizeCreditLimit validates a raw credit limit. Nil and zero both
// mean "no limit tracked" and normalize to nil; negative or non-finite
// values are rejected.
func NormalizeCreditLimit(limit *float64) (*float64, error) {
	if limit == nil {
		return nil, nil
	}
	v := *limit
	if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
		return nil, ErrNegativeCreditLimit
	}
	if v == 0 {
		return nil, nil
	}
	return &v, nil
}

// EffectiveCreditLimit returns the limit usable for percent-of-limit
// math: nil when no positive limit is configured.
func EffectiveCreditLimit(limit *float64) *float64 {
	if limit == nil || *limit <= 0 {
		return nil
	}
	v := *limit
	return &v
}

// ClearResult reports what a ClearCardData call removed.
type ClearResult struct {
	Card                   *Card `json:"card"`
	TransactionsDeleted    int64 `json:"transactionsDeleted"`
	MonthlyBalancesDeleted int64 `json:"monthlyBalancesDeleted"`
}

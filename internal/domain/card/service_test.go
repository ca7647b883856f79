package card

import (
	"context"
	"errors"
	"math"
	"testing"
)

type MockCardRepo struct {
	CreateFunc              func(ctx context.Context, params CreateParams) (*Card, error)
	GetByIDFunc             func(ctx context.Context, id string) (*Card, error)
	ListActiveFunc          func(ctx context.Context) ([]*Card, error)
	ListActiveWithStatsFunc func(ctx context.Context) ([]*Card, error)
	UpdateCreditLimitFunc   func(ctx context.Context, id string, limit *float64) (*Card, error)
}

func (m *MockCardRepo) Create(ctx context.Context, params CreateParams) (*Card, error) {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, params)
	}
	return nil, nil
}
func (m *MockCardRepo) GetByID(ctx context.Context, id string) (*Card, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}
	return nil, nil
}
func (m *MockCardRepo) ListActive(ctx context.Context) ([]*Card, error) {
	if m.ListActiveFunc != nil {
		return m.ListActiveFunc(ctx)
	}
	return nil, nil
}
func (m *MockCardRepo) ListActiveWithStats(ctx context.Context) ([]*Card, error) {
	if m.ListActiveWithStatsFunc != nil {
		return m.ListActiveWithStatsFunc(ctx)
	}
	return nil, nil
}
func (m *MockCardRepo) UpdateCreditLimit(ctx context.Context, id string, limit *float64) (*Card, error) {
	if m.UpdateCreditLimitFunc != nil {
		return m.UpdateCreditLimitFunc(ctx, id, limit)
	}
	return nil, nil
}

type MockHistoryStore struct {
	CountByCardFunc  func(ctx context.Context, cardID string) (int64, error)
	DeleteByCardFunc func(ctx context.Context, cardID string) (int64, error)
}

func (m *MockHistoryStore) CountByCard(ctx context.Context, cardID string) (int64, error) {
	if m.CountByCardFunc != nil {
		return m.CountByCardFunc(ctx, cardID)
	}
	return 0, nil
}
func (m *MockHistoryStore) DeleteByCard(ctx context.Context, cardID string) (int64, error) {
	if m.DeleteByCardFunc != nil {
		return m.DeleteByCardFunc(ctx, cardID)
	}
	return 0, nil
}

func limitPtr(f float64) *float64 { return &f }

func TestCreateCard_TrimsNameAndNormalizesLimit(t *testing.T) {
	var captured CreateParams
	repo := &MockCardRepo{
		CreateFunc: func(ctx context.Context, params CreateParams) (*Card, error) {
			captured = params
			return &Card{ID: "card-1", Name: params.Name}, nil
		},
	}
	svc := NewService(repo, &MockHistoryStore{}, &MockHistoryStore{})

	_, err := svc.CreateCard(context.Background(), CreateParams{Name: "  Main Card  ", CreditLimit: limitPtr(0)})
	if err != nil {
		t.Fatalf("CreateCard() error = %v", err)
	}
	if captured.Name != "Main Card" {
		t.Errorf("Name = %q, want trimmed", captured.Name)
	}
	if captured.CreditLimit != nil {
		t.Errorf("CreditLimit = %v, want nil for zero input", *captured.CreditLimit)
	}
}

func TestCreateCard_Validation(t *testing.T) {
	svc := NewService(&MockCardRepo{}, &MockHistoryStore{}, &MockHistoryStore{})

	if _, err := svc.CreateCard(context.Background(), CreateParams{Name: "   "}); !errors.Is(err, ErrNameRequired) {
		t.Errorf("blank name error = %v, want ErrNameRequired", err)
	}
	if _, err := svc.CreateCard(context.Background(), CreateParams{Name: "Card", CreditLimit: limitPtr(-100)}); !errors.Is(err, ErrNegativeCreditLimit) {
		t.Errorf("negative limit error = %v, want ErrNegativeCreditLimit", err)
	}
	if _, err := svc.CreateCard(context.Background(), CreateParams{Name: "Card", CreditLimit: limitPtr(math.NaN())}); !errors.Is(err, ErrNegativeCreditLimit) {
		t.Errorf("NaN limit error = %v, want ErrNegativeCreditLimit", err)
	}
}

func TestGetActiveCard(t *testing.T) {
	repo := &MockCardRepo{
		GetByIDFunc: func(ctx context.Context, id string) (*Card, error) {
			switch id {
			case "active":
				return &Card{ID: id, Active: true}, nil
			case "inactive":
				return &Card{ID: id, Active: false}, nil
			}
			return nil, nil
		},
	}
	svc := NewService(repo, &MockHistoryStore{}, &MockHistoryStore{})

	if _, err := svc.GetActiveCard(context.Background(), "active"); err != nil {
		t.Errorf("active card error = %v", err)
	}
	if _, err := svc.GetActiveCard(context.Background(), "inactive"); !errors.Is(err, ErrCardNotFound) {
		t.Errorf("inactive card error = %v, want ErrCardNotFound", err)
	}
	if _, err := svc.GetActiveCard(context.Background(), "missing"); !errors.Is(err, ErrCardNotFound) {
		t.Errorf("missing card error = %v, want ErrCardNotFound", err)
	}
	if _, err := svc.GetActiveCard(context.Background(), ""); !errors.Is(err, ErrCardNotFound) {
		t.Errorf("empty id error = %v, want ErrCardNotFound", err)
	}
}

func TestListCards_StatsFlag(t *testing.T) {
	var plainCalled, statsCalled bool
	repo := &MockCardRepo{
		ListActiveFunc: func(ctx context.Context) ([]*Card, error) {
			plainCalled = true
			return nil, nil
		},
		ListActiveWithStatsFunc: func(ctx context.Context) ([]*Card, error) {
			statsCalled = true
			return nil, nil
		},
	}
	svc := NewService(repo, &MockHistoryStore{}, &MockHistoryStore{})

	if _, err := svc.ListCards(context.Background(), false); err != nil || !plainCalled {
		t.Errorf("ListCards(false): err = %v, plain called = %v", err, plainCalled)
	}
	if _, err := svc.ListCards(context.Background(), true); err != nil || !statsCalled {
		t.Errorf("ListCards(true): err = %v, stats called = %v", err, statsCalled)
	}
}

func TestUpdateCreditLimit_Normalizes(t *testing.T) {
	var captured *float64
	repo := &MockCardRepo{
		GetByIDFunc: func(ctx context.Context, id string) (*Card, error) {
			return &Card{ID: id, Active: true}, nil
		},
		UpdateCreditLimitFunc: func(ctx context.Context, id string, limit *float64) (*Card, error) {
			captured = limit
			return &Card{ID: id, CreditLimit: limit}, nil
		},
	}
	svc := NewService(repo, &MockHistoryStore{}, &MockHistoryStore{})

	if _, err := svc.UpdateCreditLimit(context.Background(), "card-1", limitPtr(300000)); err != nil {
		t.Fatalf("UpdateCreditLimit() error = %v", err)
	}
	if captured == nil || *captured != 300000 {
		t.Errorf("limit = %v, want 300000", captured)
	}

	if _, err := svc.UpdateCreditLimit(context.Background(), "card-1", limitPtr(0)); err != nil {
		t.Fatalf("UpdateCreditLimit(0) error = %v", err)
	}
	if captured != nil {
		t.Errorf("limit = %v, want nil for zero (clears the limit)", *captured)
	}

	if _, err := svc.UpdateCreditLimit(context.Background(), "card-1", limitPtr(-5)); !errors.Is(err, ErrNegativeCreditLimit) {
		t.Errorf("negative error = %v, want ErrNegativeCreditLimit", err)
	}
}

func TestClearCardData(t *testing.T) {
	repo := &MockCardRepo{
		GetByIDFunc: func(ctx context.Context, id string) (*Card, error) {
			return &Card{ID: id, Name: "Main Card", Active: true}, nil
		},
	}
	txs := &MockHistoryStore{
		DeleteByCardFunc: func(ctx context.Context, cardID string) (int64, error) { return 12, nil },
	}
	cps := &MockHistoryStore{
		DeleteByCardFunc: func(ctx context.Context, cardID string) (int64, error) { return 3, nil },
	}
	svc := NewService(repo, txs, cps)

	result, err := svc.ClearCardData(context.Background(), "card-1")
	if err != nil {
		t.Fatalf("ClearCardData() error = %v", err)
	}
	if result.TransactionsDeleted != 12 || result.MonthlyBalancesDeleted != 3 {
		t.Errorf("result = %+v, want 12 transactions and 3 balances deleted", result)
	}
	if result.Card == nil || result.Card.ID != "card-1" {
		t.Errorf("result card = %+v, want card-1", result.Card)
	}
}

func TestNormalizeCreditLimit(t *testing.T) {
	tests := []struct {
		name    string
		input   *float64
		want    *float64
		wantErr bool
	}{
		{"nil passes through", nil, nil, false},
		{"zero clears", limitPtr(0), nil, false},
		{"positive kept", limitPtr(250000), limitPtr(250000), false},
		{"negative rejected", limitPtr(-1), nil, true},
		{"infinity rejected", limitPtr(math.Inf(1)), nil, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NormalizeCreditLimit(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("error = %v, wantErr %v", err, tt.wantErr)
			}
			if (got == nil) != (tt.want == nil) {
				t.Fatalf("got %v, want %v", got, tt.want)
			}
			if got != nil && *got != *tt.want {
				t.Errorf("got %v, want %v", *got, *tt.want)
			}
		})
	}
}

package ledger

import (
	"context"
	"errors"
	"testing"
	"time"

	"cardkeeper/internal/domain/card"
	"cardkeeper/internal/shared/normalize"
)

type MockLedgerRepo struct {
	CreateFunc       func(ctx context.Context, params CreateTransactionParams) (*Transaction, error)
	DeleteFunc       func(ctx context.Context, id string) error
	ListByMonthFunc  func(ctx context.Context, cardID string, year, month int) ([]*Transaction, error)
	ListBetweenFunc  func(ctx context.Context, cardID string, from, to time.Time) ([]*Transaction, error)
	SumBeforeFunc    func(ctx context.Context, cardID string, before time.Time) (float64, error)
	CountByCardFunc  func(ctx context.Context, cardID string) (int64, error)
	DeleteByCardFunc func(ctx context.Context, cardID string) (int64, error)
	FindByTupleFunc  func(ctx context.Context, cardID string, date time.Time, label string, amount float64) (*Transaction, error)
}

func (m *MockLedgerRepo) Create(ctx context.Context, params CreateTransactionParams) (*Transaction, error) {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, params)
	}
	return nil, nil
}
func (m *MockLedgerRepo) Delete(ctx context.Context, id string) error {
	if m.DeleteFunc != nil {
		return m.DeleteFunc(ctx, id)
	}
	return nil
}
func (m *MockLedgerRepo) ListByMonth(ctx context.Context, cardID string, year, month int) ([]*Transaction, error) {
	if m.ListByMonthFunc != nil {
		return m.ListByMonthFunc(ctx, cardID, year, month)
	}
	return nil, nil
}
func (m *MockLedgerRepo) ListBetween(ctx context.Context, cardID string, from, to time.Time) ([]*Transaction, error) {
	if m.ListBetweenFunc != nil {
		return m.ListBetweenFunc(ctx, cardID, from, to)
	}
	return nil, nil
}
func (m *MockLedgerRepo) SumBefore(ctx context.Context, cardID string, before time.Time) (float64, error) {
	if m.SumBeforeFunc != nil {
		return m.SumBeforeFunc(ctx, cardID, before)
	}
	return 0, nil
}
func (m *MockLedgerRepo) CountByCard(ctx context.Context, cardID string) (int64, error) {
	if m.CountByCardFunc != nil {
		return m.CountByCardFunc(ctx, cardID)
	}
	return 0, nil
}
func (m *MockLedgerRepo) DeleteByCard(ctx context.Context, cardID string) (int64, error) {
	if m.DeleteByCardFunc != nil {
		return m.DeleteByCardFunc(ctx, cardID)
	}
	return 0, nil
}
func (m *MockLedgerRepo) FindByTuple(ctx context.Context, cardID string, date time.Time, label string, amount float64) (*Transaction, error) {
	if m.FindByTupleFunc != nil {
		return m.FindByTupleFunc(ctx, cardID, date, label, amount)
	}
	return nil, nil
}

type MockCardDirectory struct {
	GetByIDFunc func(ctx context.Context, id string) (*card.Card, error)
}

func (m *MockCardDirectory) GetByID(ctx context.Context, id string) (*card.Card, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}
	return nil, nil
}

func activeCardDirectory() *MockCardDirectory {
	return &MockCardDirectory{
		GetByIDFunc: func(ctx context.Context, id string) (*card.Card, error) {
			return &card.Card{ID: id, Name: "Main Card", Active: true}, nil
		},
	}
}

func TestAppend_NormalizesAmountAndDate(t *testing.T) {
	var captured CreateTransactionParams
	repo := &MockLedgerRepo{
		CreateFunc: func(ctx context.Context, params CreateTransactionParams) (*Transaction, error) {
			captured = params
			return &Transaction{ID: params.ID, CardID: params.CardID, Amount: params.Amount}, nil
		},
	}
	svc := NewService(repo, activeCardDirectory())

	_, err := svc.Append(context.Background(), AppendParams{
		CardID: "card-1",
		Date:   "2024-03-05",
		Label:  "  Groceries  ",
		Amount: "¥1,200",
	})
	if err != nil {
		t.Fatalf("Append() error = %v", err)
	}

	if captured.Label != "Groceries" {
		t.Errorf("Label = %q, want trimmed %q", captured.Label, "Groceries")
	}
	if captured.Amount != 1200 {
		t.Errorf("Amount = %v, want 1200", captured.Amount)
	}
	want := time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC)
	if !captured.TransactionDate.Equal(want) {
		t.Errorf("TransactionDate = %v, want %v", captured.TransactionDate, want)
	}
	if captured.ID == "" {
		t.Error("ID not assigned")
	}
}

func TestAppend_ParenthesesNegative(t *testing.T) {
	var captured CreateTransactionParams
	repo := &MockLedgerRepo{
		CreateFunc: func(ctx context.Context, params CreateTransactionParams) (*Transaction, error) {
			captured = params
			return &Transaction{}, nil
		},
	}
	svc := NewService(repo, activeCardDirectory())

	_, err := svc.Append(context.Background(), AppendParams{
		CardID: "card-1",
		Date:   "2024-03-10",
		Label:  "Payment",
		Amount: "(5,000)",
	})
	if err != nil {
		t.Fatalf("Append() error = %v", err)
	}
	if captured.Amount != -5000 {
		t.Errorf("Amount = %v, want -5000", captured.Amount)
	}
}

func TestAppend_Validation(t *testing.T) {
	tests := []struct {
		name    string
		params  AppendParams
		wantErr error
	}{
		{
			name:    "blank label",
			params:  AppendParams{CardID: "card-1", Date: "2024-03-05", Label: "   ", Amount: "100"},
			wantErr: ErrLabelRequired,
		},
		{
			name:    "blank amount",
			params:  AppendParams{CardID: "card-1", Date: "2024-03-05", Label: "Groceries", Amount: "  "},
			wantErr: ErrAmountRequired,
		},
	}

	svc := NewService(&MockLedgerRepo{}, activeCardDirectory())
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Append(context.Background(), tt.params)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Append() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestAppend_RejectsMalformedInput(t *testing.T) {
	svc := NewService(&MockLedgerRepo{}, activeCardDirectory())

	_, err := svc.Append(context.Background(), AppendParams{
		CardID: "card-1", Date: "2024-03-05", Label: "Groceries", Amount: "1-2",
	})
	var parseErr *normalize.ParseError
	if !errors.As(err, &parseErr) {
		t.Errorf("Append() error = %v, want ParseError for ambiguous amount", err)
	}

	_, err = svc.Append(context.Background(), AppendParams{
		CardID: "card-1", Date: "03/05/2024", Label: "Groceries", Amount: "100",
	})
	if !errors.As(err, &parseErr) {
		t.Errorf("Append() error = %v, want ParseError for non ISO date", err)
	}
}

func TestAppend_InactiveCard(t *testing.T) {
	cards := &MockCardDirectory{
		GetByIDFunc: func(ctx context.Context, id string) (*card.Card, error) {
			return &card.Card{ID: id, Active: false}, nil
		},
	}
	svc := NewService(&MockLedgerRepo{}, cards)

	_, err := svc.Append(context.Background(), AppendParams{
		CardID: "card-1", Date: "2024-03-05", Label: "Groceries", Amount: "100",
	})
	if !errors.Is(err, card.ErrCardNotFound) {
		t.Errorf("Append() error = %v, want ErrCardNotFound", err)
	}
}

func TestDelete_EmptyID(t *testing.T) {
	svc := NewService(&MockLedgerRepo{}, activeCardDirectory())
	if err := svc.Delete(context.Background(), ""); !errors.Is(err, ErrTransactionNotFound) {
		t.Errorf("Delete(\"\") error = %v, want ErrTransactionNotFound", err)
	}
}

func TestResolveMultiplier(t *testing.T) {
	tests := []struct {
		name       string
		external   bool
		multiplier float64
		want       float64
	}{
		{"non-external stores zero", false, 50, 0},
		{"external zero defaults to 1", true, 0, 1},
		{"external keeps value", true, 50, 50},
		{"negative clamps then defaults", true, -3, 1},
		{"negative non-external", false, -3, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := resolveMultiplier(tt.external, tt.multiplier); got != tt.want {
				t.Errorf("resolveMultiplier(%v, %v) = %v, want %v", tt.external, tt.multiplier, got, tt.want)
			}
		})
	}
}

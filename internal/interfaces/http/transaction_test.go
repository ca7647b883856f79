package http

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"cardkeeper/internal/domain/card"
	"cardkeeper/internal/domain/ledger"
)

type MockLedgerRepo struct {
	CreateFunc      func(ctx context.Context, params ledger.CreateTransactionParams) (*ledger.Transaction, error)
	DeleteFunc      func(ctx context.Context, id string) error
	ListByMonthFunc func(ctx context.Context, cardID string, year, month int) ([]*ledger.Transaction, error)
	ListBetweenFunc func(ctx context.Context, cardID string, from, to time.Time) ([]*ledger.Transaction, error)
	SumBeforeFunc   func(ctx context.Context, cardID string, before time.Time) (float64, error)
	CountByCardFunc func(ctx context.Context, cardID string) (int64, error)
	DeleteByCdFunc  func(ctx context.Context, cardID string) (int64, error)
	FindByTupleFunc func(ctx context.Context, cardID string, date time.Time, label string, amount float64) (*ledger.Transaction, error)
}

func (m *MockLedgerRepo) Create(ctx context.Context, params ledger.CreateTransactionParams) (*ledger.Transaction, error) {
	return m.CreateFunc(ctx, params)
}

func (m *MockLedgerRepo) Delete(ctx context.Context, id string) error {
	return m.DeleteFunc(ctx, id)
}

func (m *MockLedgerRepo) ListByMonth(ctx context.Context, cardID string, year, month int) ([]*ledger.Transaction, error) {
	return m.ListByMonthFunc(ctx, cardID, year, month)
}

func (m *MockLedgerRepo) ListBetween(ctx context.Context, cardID string, from, to time.Time) ([]*ledger.Transaction, error) {
	return m.ListBetweenFunc(ctx, cardID, from, to)
}

func (m *MockLedgerRepo) SumBefore(ctx context.Context, cardID string, before time.Time) (float64, error) {
	return m.SumBeforeFunc(ctx, cardID, before)
}

func (m *MockLedgerRepo) CountByCard(ctx context.Context, cardID string) (int64, error) {
	return m.CountByCardFunc(ctx, cardID)
}

func (m *MockLedgerRepo) DeleteByCard(ctx context.Context, cardID string) (int64, error) {
	return m.DeleteByCdFunc(ctx, cardID)
}

func (m *MockLedgerRepo) FindByTuple(ctx context.Context, cardID string, date time.Time, label string, amount float64) (*ledger.Transaction, error) {
	return m.FindByTupleFunc(ctx, cardID, date, label, amount)
}

type MockCardDirectory struct {
	GetByIDFunc func(ctx context.Context, id string) (*card.Card, error)
}

func (m *MockCardDirectory) GetByID(ctx context.Context, id string) (*card.Card, error) {
	return m.GetByIDFunc(ctx, id)
}

func activeDirectory() *MockCardDirectory {
	return &MockCardDirectory{
		GetByIDFunc: func(ctx context.Context, id string) (*card.Card, error) {
			return &card.Card{ID: id, Name: "Everyday Card", Active: true}, nil
		},
	}
}

func TestTransactionHandler_Append(t *testing.T) {
	repo := &MockLedgerRepo{
		CreateFunc: func(ctx context.Context, params ledger.CreateTransactionParams) (*ledger.Transaction, error) {
			return &ledger.Transaction{
				ID:              params.ID,
				CardID:          params.CardID,
				TransactionDate: params.TransactionDate,
				Label:           params.Label,
				Amount:          params.Amount,
			}, nil
		},
	}
	handler := NewTransactionHandler(ledger.NewService(repo, activeDirectory()))

	body := `{"cardId": "card-1", "date": "2024-03-05", "label": "Groceries", "amount": "¥1,200"}`
	req := httptest.NewRequest("POST", "/api/transactions", strings.NewReader(body))
	rr := httptest.NewRecorder()

	handler.HandleAppend(rr, req)

	if rr.Code != http.StatusCreated {
		t.Fatalf("handler returned wrong status code: got %v want %v, body %s", rr.Code, http.StatusCreated, rr.Body.String())
	}

	var created ledger.Transaction
	if err := json.NewDecoder(rr.Body).Decode(&created); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if created.Amount != 1200 {
		t.Errorf("Amount = %v, want 1200", created.Amount)
	}
	if created.Label != "Groceries" {
		t.Errorf("Label = %q, want %q", created.Label, "Groceries")
	}
}

func TestTransactionHandler_AppendBadInput(t *testing.T) {
	handler := NewTransactionHandler(ledger.NewService(&MockLedgerRepo{}, activeDirectory()))

	tests := []struct {
		name string
		body string
	}{
		{"Missing Label", `{"cardId": "card-1", "date": "2024-03-05", "amount": "100"}`},
		{"Missing Amount", `{"cardId": "card-1", "date": "2024-03-05", "label": "Groceries"}`},
		{"Ambiguous Amount", `{"cardId": "card-1", "date": "2024-03-05", "label": "Groceries", "amount": "1-2"}`},
		{"Non ISO Date", `{"cardId": "card-1", "date": "03/05/2024", "label": "Groceries", "amount": "100"}`},
		{"Malformed JSON", `{"cardId": `},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("POST", "/api/transactions", strings.NewReader(tt.body))
			rr := httptest.NewRecorder()

			handler.HandleAppend(rr, req)

			if rr.Code != http.StatusBadRequest {
				t.Errorf("handler returned wrong status code: got %v want %v", rr.Code, http.StatusBadRequest)
			}
		})
	}
}

func TestTransactionHandler_AppendUnknownCard(t *testing.T) {
	directory := &MockCardDirectory{
		GetByIDFunc: func(ctx context.Context, id string) (*card.Card, error) { return nil, nil },
	}
	handler := NewTransactionHandler(ledger.NewService(&MockLedgerRepo{}, directory))

	body := `{"cardId": "ghost", "date": "2024-03-05", "label": "Groceries", "amount": "100"}`
	req := httptest.NewRequest("POST", "/api/transactions", strings.NewReader(body))
	rr := httptest.NewRecorder()

	handler.HandleAppend(rr, req)

	if rr.Code != http.StatusNotFound {
		t.Errorf("handler returned wrong status code: got %v want %v", rr.Code, http.StatusNotFound)
	}
}

func TestTransactionHandler_Delete(t *testing.T) {
	var deletedID string
	repo := &MockLedgerRepo{
		DeleteFunc: func(ctx context.Context, id string) error {
			deletedID = id
			return nil
		},
	}
	handler := NewTransactionHandler(ledger.NewService(repo, activeDirectory()))

	req := httptest.NewRequest("DELETE", "/api/transactions/tx-9", nil)
	req.SetPathValue("id", "tx-9")
	rr := httptest.NewRecorder()

	handler.HandleDelete(rr, req)

	if rr.Code != http.StatusNoContent {
		t.Fatalf("handler returned wrong status code: got %v want %v", rr.Code, http.StatusNoContent)
	}
	if deletedID != "tx-9" {
		t.Errorf("deleted id = %q, want %q", deletedID, "tx-9")
	}
}

func TestTransactionHandler_DeleteNotFound(t *testing.T) {
	repo := &MockLedgerRepo{
		DeleteFunc: func(ctx context.Context, id string) error { return ledger.ErrTransactionNotFound },
	}
	handler := NewTransactionHandler(ledger.NewService(repo, activeDirectory()))

	req := httptest.NewRequest("DELETE", "/api/transactions/ghost", nil)
	req.SetPathValue("id", "ghost")
	rr := httptest.NewRecorder()

	handler.HandleDelete(rr, req)

	if rr.Code != http.StatusNotFound {
		t.Errorf("handler returned wrong status code: got %v want %v", rr.Code, http.StatusNotFound)
	}
}

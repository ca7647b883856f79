package http

import (
	"encoding/json"
	"net/http"

	"cardkeeper/internal/domain/ledger"
)

type TransactionHandler struct {
	ledgerService *ledger.Service
}

func NewTransactionHandler(ledgerService *ledger.Service) *TransactionHandler {
	return &TransactionHandler{ledgerService: ledgerService}
}

type AppendTransactionRequest struct {
	CardID             string  `json:"cardId"`
	Date               string  `json:"date"`
	Label              string  `json:"label"`
	Amount             string  `json:"amount"`
	External           bool    `json:"external"`
	ExternalMultiplier float64 `json:"externalMultiplier"`
}

// HandleAppend records a new ledger entry. Amount arrives as a raw
// string so the normalizer can accept formatted input ("¥1,200",
// "(5,000)") the same way the CSV importer does.
func (h *TransactionHandler) HandleAppend(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req AppendTransactionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	created, err := h.ledgerService.Append(r.Context(), ledger.AppendParams{
		CardID:             req.CardID,
		Date:               req.Date,
		Label:              req.Label,
		Amount:             req.Amount,
		External:           req.External,
		ExternalMultiplier: req.ExternalMultiplier,
	})
	if err != nil {
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, created)
}

// HandleDelete removes a single ledger entry by path id
func (h *TransactionHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodDelete {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	if err := h.ledgerService.Delete(r.Context(), r.PathValue("id")); err != nil {
		respondError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

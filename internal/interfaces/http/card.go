package http

import (
	"encoding/json"
	"net/http"
	"time"

	"cardkeeper/internal/domain/card"
)

type CardHandler struct {
	cardService *card.Service
}

func NewCardHandler(cardService *card.Service) *CardHandler {
	return &CardHandler{cardService: cardService}
}

type CreateCardRequest struct {
	Name        string   `json:"name"`
	IssuedDate  *string  `json:"issuedDate,omitempty"`
	CreditLimit *float64 `json:"creditLimit,omitempty"`
}

type UpdateCreditLimitRequest struct {
	CreditLimit *float64 `json:"creditLimit"`
}

// HandleCards dispatches list and create on the collection path
func (h *CardHandler) HandleCards(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		h.handleList(w, r)
	case http.MethodPost:
		h.handleCreate(w, r)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

func (h *CardHandler) handleList(w http.ResponseWriter, r *http.Request) {
	includeStats := r.URL.Query().Get("includeStats") == "true"

	cards, err := h.cardService.ListCards(r.Context(), includeStats)
	if err != nil {
		respondError(w, err)
		return
	}
	if cards == nil {
		cards = []*card.Card{}
	}

	respondJSON(w, http.StatusOK, cards)
}

func (h *CardHandler) handleCreate(w http.ResponseWriter, r *http.Request) {
	var req CreateCardRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	params := card.CreateParams{
		Name:        req.Name,
		CreditLimit: req.CreditLimit,
	}
	if req.IssuedDate != nil && *req.IssuedDate != "" {
		issued, err := time.Parse("2006-01-02", *req.IssuedDate)
		if err != nil {
			http.Error(w, "issuedDate must be YYYY-MM-DD", http.StatusBadRequest)
			return
		}
		params.IssuedDate = &issued
	}

	created, err := h.cardService.CreateCard(r.Context(), params)
	if err != nil {
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, created)
}

// HandleCard returns a single card by path id
func (h *CardHandler) HandleCard(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	c, err := h.cardService.GetActiveCard(r.Context(), r.PathValue("id"))
	if err != nil {
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, c)
}

// HandleCreditLimit sets or clears a card's credit limit
func (h *CardHandler) HandleCreditLimit(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPut && r.Method != http.MethodPatch {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req UpdateCreditLimitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	updated, err := h.cardService.UpdateCreditLimit(r.Context(), r.PathValue("id"), req.CreditLimit)
	if err != nil {
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, updated)
}

// HandleClearData deletes all ledger entries and monthly checkpoints
// for a card, keeping the card record itself
func (h *CardHandler) HandleClearData(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	result, err := h.cardService.ClearCardData(r.Context(), r.PathValue("id"))
	if err != nil {
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, result)
}

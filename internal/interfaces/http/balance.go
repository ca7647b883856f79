package http

import (
	"encoding/json"
	"net/http"
	"strconv"

	"cardkeeper/internal/domain/balance"
	"cardkeeper/internal/domain/card"
)

type BalanceHandler struct {
	balanceService *balance.Service
	cardService    *card.Service
}

func NewBalanceHandler(balanceService *balance.Service, cardService *card.Service) *BalanceHandler {
	return &BalanceHandler{balanceService: balanceService, cardService: cardService}
}

type ConfirmMonthRequest struct {
	CardID string `json:"cardId"`
	Year   int    `json:"year"`
	Month  int    `json:"month"`
}

// HandleOverview returns the multi-month overview for a card. When no
// cardId is given the first registered active card is used.
func (h *BalanceHandler) HandleOverview(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	cardID, err := h.resolveCardID(r)
	if err != nil {
		respondError(w, err)
		return
	}

	months := 0
	if monthsStr := r.URL.Query().Get("months"); monthsStr != "" {
		parsed, err := strconv.Atoi(monthsStr)
		if err != nil {
			http.Error(w, "months must be an integer", http.StatusBadRequest)
			return
		}
		months = parsed
	}

	overview, err := h.balanceService.BuildOverview(r.Context(), cardID, months)
	if err != nil {
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, overview)
}

// HandleMonthDetails returns the month drill-down: summary, ordered
// transactions, daily running balance, peak, comparison and navigation.
func (h *BalanceHandler) HandleMonthDetails(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	year, month, err := parseYearMonth(r.PathValue("year"), r.PathValue("month"))
	if err != nil {
		respondError(w, err)
		return
	}

	cardID, err := h.resolveCardID(r)
	if err != nil {
		respondError(w, err)
		return
	}

	details, err := h.balanceService.BuildMonthDetails(r.Context(), cardID, year, month)
	if err != nil {
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, details)
}

// HandleConfirmMonth freezes a month's computed summary as the
// authoritative checkpoint. Re-confirming recomputes and overwrites.
func (h *BalanceHandler) HandleConfirmMonth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req ConfirmMonthRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	cardID := req.CardID
	if cardID == "" {
		resolved, err := h.defaultCardID(r)
		if err != nil {
			respondError(w, err)
			return
		}
		cardID = resolved
	}

	summary, err := h.balanceService.ConfirmMonth(r.Context(), cardID, req.Year, req.Month)
	if err != nil {
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, summary)
}

func (h *BalanceHandler) resolveCardID(r *http.Request) (string, error) {
	if cardID := r.URL.Query().Get("cardId"); cardID != "" {
		return cardID, nil
	}
	return h.defaultCardID(r)
}

func (h *BalanceHandler) defaultCardID(r *http.Request) (string, error) {
	cards, err := h.cardService.ListCards(r.Context(), false)
	if err != nil {
		return "", err
	}
	if len(cards) == 0 {
		return "", card.ErrNoCardsConfigured
	}
	return cards[0].ID, nil
}

func parseYearMonth(yearStr, monthStr string) (int, int, error) {
	year, err := strconv.Atoi(yearStr)
	if err != nil {
		return 0, 0, balance.ErrInvalidYearMonth
	}
	month, err := strconv.Atoi(monthStr)
	if err != nil {
		return 0, 0, balance.ErrInvalidYearMonth
	}
	return year, month, nil
}

package http

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"cardkeeper/internal/domain/balance"
	"cardkeeper/internal/domain/card"
	"cardkeeper/internal/domain/ledger"
	"cardkeeper/internal/domain/notification"
	"cardkeeper/internal/shared/normalize"
)

// respondError maps domain errors to HTTP status codes. Unknown errors
// are logged and surface as a generic 500.
func respondError(w http.ResponseWriter, err error) {
	var parseErr *normalize.ParseError

	switch {
	case errors.Is(err, card.ErrCardNotFound),
		errors.Is(err, card.ErrNoCardsConfigured),
		errors.Is(err, ledger.ErrTransactionNotFound),
		errors.Is(err, notification.ErrDeviceTokenNotFound):
		http.Error(w, err.Error(), http.StatusNotFound)
	case errors.Is(err, ledger.ErrCardHasHistory):
		http.Error(w, err.Error(), http.StatusConflict)
	case errors.Is(err, card.ErrNameRequired),
		errors.Is(err, card.ErrNegativeCreditLimit),
		errors.Is(err, ledger.ErrLabelRequired),
		errors.Is(err, ledger.ErrAmountRequired),
		errors.Is(err, ledger.ErrCardRequired),
		errors.Is(err, ledger.ErrEmptyCSV),
		errors.Is(err, ledger.ErrMissingColumns),
		errors.Is(err, balance.ErrInvalidYearMonth),
		errors.Is(err, notification.ErrInvalidToken),
		errors.Is(err, notification.ErrInvalidDeviceType),
		errors.Is(err, notification.ErrInvalidCategory),
		errors.As(err, &parseErr):
		http.Error(w, err.Error(), http.StatusBadRequest)
	default:
		log.Printf("Internal error: %v", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
	}
}

func respondJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(payload)
}

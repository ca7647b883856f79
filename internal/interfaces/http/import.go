package http

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"

	"cardkeeper/internal/domain/ledger"
	"cardkeeper/internal/domain/notification"
	"cardkeeper/internal/shared/messages"
	"cardkeeper/internal/shared/middleware"
)

type ImportHandler struct {
	importer            *ledger.Importer
	defaults            ledger.ImportDefaults
	notificationService *notification.Service
	messages            *messages.Messages
}

func NewImportHandler(importer *ledger.Importer, defaults ledger.ImportDefaults, notificationService *notification.Service, msgs *messages.Messages) *ImportHandler {
	return &ImportHandler{
		importer:            importer,
		defaults:            defaults,
		notificationService: notificationService,
		messages:            msgs,
	}
}

type ImportCSVRequest struct {
	CardID string `json:"cardId"`
	CSV    string `json:"csv"`

	// Optional overrides for rows without external columns; falls back
	// to the server-configured defaults when omitted.
	DefaultExternal   *bool    `json:"defaultExternal,omitempty"`
	DefaultMultiplier *float64 `json:"defaultMultiplier,omitempty"`
}

// HandleImportCSV performs an idempotent CSV import into a card with no
// existing history
func (h *ImportHandler) HandleImportCSV(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req ImportCSVRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	defaults := h.defaults
	if req.DefaultExternal != nil {
		defaults.External = *req.DefaultExternal
	}
	if req.DefaultMultiplier != nil {
		defaults.ExternalMultiplier = *req.DefaultMultiplier
	}

	result, err := h.importer.ImportCSV(r.Context(), req.CardID, req.CSV, defaults)
	if err != nil {
		respondError(w, err)
		return
	}

	h.notifyImportComplete(r, result)

	respondJSON(w, http.StatusOK, result)
}

// notifyImportComplete sends a best-effort push to the importing user;
// failures are logged and never affect the HTTP response.
func (h *ImportHandler) notifyImportComplete(r *http.Request, result *ledger.ImportResult) {
	if h.notificationService == nil || h.messages == nil {
		return
	}
	userID, ok := r.Context().Value(middleware.UserIDKey).(int64)
	if !ok {
		return
	}

	body := fmt.Sprintf("%s (%d imported, %d skipped)", h.messages.ImportComplete.Body, result.Inserted, result.Skipped)
	err := h.notificationService.SendToUser(r.Context(), userID, h.messages.ImportComplete.Title, body, notification.CategoryImports, nil)
	if err != nil {
		log.Printf("Failed to send import notification: %v", err)
	}
}

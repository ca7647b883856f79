package http

import (
	"encoding/json"
	"net/http"

	"cardkeeper/internal/domain/notification"
	"cardkeeper/internal/shared/middleware"
)

type NotificationHandler struct {
	notificationService *notification.Service
}

func NewNotificationHandler(notificationService *notification.Service) *NotificationHandler {
	return &NotificationHandler{notificationService: notificationService}
}

type RegisterDeviceRequest struct {
	Token      string `json:"token"`
	DeviceType string `json:"deviceType"`
}

type UnregisterDeviceRequest struct {
	Token string `json:"token"`
}

// HandleRegisterDevice stores an FCM device token for the
// authenticated user. Tokens already registered to another user are
// reassigned.
func (h *NotificationHandler) HandleRegisterDevice(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	userID, ok := r.Context().Value(middleware.UserIDKey).(int64)
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	var req RegisterDeviceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	token, err := h.notificationService.RegisterDevice(r.Context(), notification.CreateDeviceTokenParams{
		UserID:     userID,
		Token:      req.Token,
		DeviceType: req.DeviceType,
	})
	if err != nil {
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, token)
}

// HandleUnregisterDevice deactivates a device token
func (h *NotificationHandler) HandleUnregisterDevice(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	if _, ok := r.Context().Value(middleware.UserIDKey).(int64); !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	var req UnregisterDeviceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if err := h.notificationService.UnregisterDevice(r.Context(), req.Token); err != nil {
		respondError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

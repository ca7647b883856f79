package notification

import (
	"context"
	"errors"
	"log"
)

// Service contains the business logic for push notification operations
type Service struct {
	repo      Repository
	messenger Messenger
}

// NewService creates a new notification service
func NewService(repo Repository, messenger Messenger) *Service {
	return &Service{repo: repo, messenger: messenger}
}

// RegisterDevice registers a device token for the authenticated user.
// If the token already belongs to another user, it is reassigned.
func (s *Service) RegisterDevice(ctx context.Context, params CreateDeviceTokenParams) (*DeviceToken, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}
	return s.repo.UpsertDeviceToken(ctx, params)
}

// UnregisterDevice deactivates a device token
func (s *Service) UnregisterDevice(ctx context.Context, token string) error {
	if token == "" {
		return ErrInvalidToken
	}
	return s.repo.DeactivateToken(ctx, token)
}

// SendToUser sends a push notification to all of a user's active devices.
// A missing messenger or an empty token set is not an error; the send is
// skipped with a log line.
func (s *Service) SendToUser(ctx context.Context, userID int64, title, body, category string, data map[string]string) error {
	if userID <= 0 {
		return errors.New("valid user ID is required")
	}
	if !IsValidCategory(category) {
		return ErrInvalidCategory
	}

	tokens, err := s.repo.GetActiveTokensByUserID(ctx, userID)
	if err != nil {
		return err
	}
	if len(tokens) == 0 {
		log.Printf("No active device tokens for user %d", userID)
		return nil
	}

	return s.multicast(ctx, tokens, title, body, category, data)
}

// SendToAll sends a push notification to every active device. Used by
// the confirmation reminder job.
func (s *Service) SendToAll(ctx context.Context, title, body, category string, data map[string]string) error {
	if !IsValidCategory(category) {
		return ErrInvalidCategory
	}

	tokens, err := s.repo.GetAllActiveTokens(ctx)
	if err != nil {
		return err
	}
	if len(tokens) == 0 {
		log.Println("SendToAll: no active device tokens found")
		return nil
	}

	return s.multicast(ctx, tokens, title, body, category, data)
}

func (s *Service) multicast(ctx context.Context, tokens []*DeviceToken, title, body, category string, data map[string]string) error {
	if s.messenger == nil {
		log.Printf("Notification skipped (no messenger configured): %s", title)
		return nil
	}

	if data == nil {
		data = make(map[string]string)
	}
	if _, ok := data["route"]; !ok {
		data["route"] = category
	}

	tokenStrings := make([]string, len(tokens))
	for i, t := range tokens {
		tokenStrings[i] = t.Token
	}
	return s.messenger.SendMulticast(ctx, tokenStrings, title, body, data)
}

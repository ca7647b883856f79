package notification

import "context"

// Repository defines the interface for device token data access.
// Defined in the domain layer, implemented in the infrastructure layer.
type Repository interface {
	// UpsertDeviceToken registers a token, reactivating and reassigning
	// it if it already exists.
	UpsertDeviceToken(ctx context.Context, params CreateDeviceTokenParams) (*DeviceToken, error)
	GetActiveTokensByUserID(ctx context.Context, userID int64) ([]*DeviceToken, error)
	GetAllActiveTokens(ctx context.Context) ([]*DeviceToken, error)
	// DeactivateToken returns ErrDeviceTokenNotFound for unknown tokens.
	DeactivateToken(ctx context.Context, token string) error
}

package notification

import (
	"errors"
	"time"
)

// Notification categories
const (
	CategoryReminders = "reminders"
	CategoryImports   = "imports"
	CategoryGeneral   = "general"
)

var validCategories = map[string]struct{}{
	CategoryReminders: {},
	CategoryImports:   {},
	CategoryGeneral:   {},
}

var validDeviceTypes = map[string]struct{}{
	"ios":     {},
	"android": {},
}

// Domain errors
var (
	ErrDeviceTokenNotFound = errors.New("device token not found")
	ErrInvalidCategory     = errors.New("invalid notification category")
	ErrInvalidDeviceType   = errors.New("device type must be 'ios' or 'android'")
	ErrInvalidToken        = errors.New("device token is required")
)

// DeviceToken represents a registered FCM device token
type DeviceToken struct {
	ID         string    `json:"id"`
	UserID     int64     `json:"userId"`
	Token      string    `json:"token"`
	DeviceType string    `json:"deviceType"`
	IsActive   bool      `json:"isActive"`
	CreatedAt  time.Time `json:"createdAt"`
	LastUsed   time.Time `json:"lastUsed"`
}

// CreateDeviceTokenParams contains parameters for registering a device
type CreateDeviceTokenParams struct {
	UserID     int64
	Token      string
	DeviceType string
}

func (p CreateDeviceTokenParams) Validate() error {
	if p.UserID <= 0 {
		return errors.New("valid user ID is required")
	}
	if p.Token == "" {
		return ErrInvalidToken
	}
	if !IsValidDeviceType(p.DeviceType) {
		return ErrInvalidDeviceType
	}
	return nil
}

func IsValidCategory(c string) bool {
	_, ok := validCategories[c]
	return ok
}

func IsValidDeviceType(dt string) bool {
	_, ok := validDeviceTypes[dt]
	return ok
}

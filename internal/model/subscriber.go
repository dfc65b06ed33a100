package model

import (
	"strings"
	"time"
)

// Subscriber is keyed by normalized email. ExpiresAt only ever moves forward:
// every paid order extends from max(now, current expiry). Unsubscribing is
// soft (IsSubscribed=false), records are never deleted.
type Subscriber struct {
	Email        string     `json:"email"`
	IsSubscribed bool       `json:"isSubscribed"`
	ExpiresAt    *time.Time `json:"expiresAt,omitempty"`
	Language     string     `json:"language"`
	Level        string     `json:"level,omitempty"`
	Native       string     `json:"native,omitempty"`
	CreatedAt    time.Time  `json:"createdAt"`
	UpdatedAt    time.Time  `json:"updatedAt"`
}

func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

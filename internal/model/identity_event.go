package model

import "time"

type IdentityEventType string

const (
	IdentityEventTypeIdentify IdentityEventType = "identify"
	IdentityEventTypeReset    IdentityEventType = "reset"
)

type IdentityEventStatus string

const (
	IdentityEventStatusDelivered IdentityEventStatus = "delivered"
	IdentityEventStatusFailed    IdentityEventStatus = "failed"
)

// IdentityEvent is the audit record of one identify/reset delivery attempt
// made by the identity worker against the analytics collaborator.
type IdentityEvent struct {
	CreatedAt time.Time `json:"created_at"`
	Error     *string   `json:"error,omitempty"`
	AccountID string    `json:"account_id"`
	Email     *string   `json:"email,omitempty"`
	Name      *string   `json:"name,omitempty"`
	EventType string    `json:"event_type"`
	Status    string    `json:"status"`
	Attempt   int       `json:"attempt"`
	ID        int64     `json:"id"`
	SessionID int64     `json:"session_id"`
}

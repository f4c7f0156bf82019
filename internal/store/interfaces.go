package store

import (
	"context"
	"errors"

	"agentcloud.dev/console/internal/model"
)

// ErrNotFound is returned when a requested entity does not exist
var ErrNotFound = errors.New("not found")

// IdentityEventStore defines the contract for identity delivery audit records
type IdentityEventStore interface {
	GetByID(ctx context.Context, id int64) (*model.IdentityEvent, error)
	Create(ctx context.Context, event *model.IdentityEvent) error
	ListBySession(ctx context.Context, sessionID int64, limit int32) ([]model.IdentityEvent, error)
	ListByAccount(ctx context.Context, accountID string, limit int32) ([]model.IdentityEvent, error)
}

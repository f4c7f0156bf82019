package store

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"agentcloud.dev/console/internal/model"
)

type identityEventStore struct {
	pool *pgxpool.Pool
}

func newIdentityEventStore(pool *pgxpool.Pool) IdentityEventStore {
	return &identityEventStore{pool: pool}
}

const identityEventColumns = `id, session_id, account_id, email, name, event_type, status, error, attempt, created_at`

func (s *identityEventStore) GetByID(ctx context.Context, id int64) (*model.IdentityEvent, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT `+identityEventColumns+` FROM identity_events WHERE id = $1`, id)

	event, err := scanIdentityEvent(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return event, nil
}

func (s *identityEventStore) Create(ctx context.Context, event *model.IdentityEvent) error {
	row := s.pool.QueryRow(ctx,
		`INSERT INTO identity_events (id, session_id, account_id, email, name, event_type, status, error, attempt)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		 RETURNING `+identityEventColumns,
		event.ID,
		event.SessionID,
		event.AccountID,
		event.Email,
		event.Name,
		event.EventType,
		event.Status,
		event.Error,
		event.Attempt,
	)

	created, err := scanIdentityEvent(row)
	if err != nil {
		return err
	}
	*event = *created
	return nil
}

func (s *identityEventStore) ListBySession(ctx context.Context, sessionID int64, limit int32) ([]model.IdentityEvent, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT `+identityEventColumns+` FROM identity_events
		 WHERE session_id = $1 ORDER BY created_at DESC LIMIT $2`,
		sessionID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectIdentityEvents(rows)
}

func (s *identityEventStore) ListByAccount(ctx context.Context, accountID string, limit int32) ([]model.IdentityEvent, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT `+identityEventColumns+` FROM identity_events
		 WHERE account_id = $1 ORDER BY created_at DESC LIMIT $2`,
		accountID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectIdentityEvents(rows)
}

func scanIdentityEvent(row pgx.Row) (*model.IdentityEvent, error) {
	var event model.IdentityEvent
	err := row.Scan(
		&event.ID,
		&event.SessionID,
		&event.AccountID,
		&event.Email,
		&event.Name,
		&event.EventType,
		&event.Status,
		&event.Error,
		&event.Attempt,
		&event.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &event, nil
}

func collectIdentityEvents(rows pgx.Rows) ([]model.IdentityEvent, error) {
	result := []model.IdentityEvent{}
	for rows.Next() {
		event, err := scanIdentityEvent(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *event)
	}
	return result, rows.Err()
}

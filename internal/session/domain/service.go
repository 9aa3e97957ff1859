package domain

import (
	"context"
	"errors"
)

type Service interface {
	// Create allocates the next session id for today and stores the
	// snapshot. The count-and-insert is a single atomic unit.
	Create(ctx context.Context, roomID string, snapshot map[string]any) (string, error)
	Get(ctx context.Context, sessionID string) (map[string]any, error)
	// List returns session summaries, newest first, optionally
	// filtered by room.
	List(ctx context.Context, roomID string) ([]Summary, error)
}

var (
	ErrInvalidRoom       = errors.New("invalid_room_id")
	ErrInvalidSession    = errors.New("invalid_session_id")
	ErrSessionNotFound   = errors.New("session_not_found")
	ErrSequenceExhausted = errors.New("session_sequence_exhausted")
)

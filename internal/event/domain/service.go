package domain

import (
	"context"
	"errors"
	"time"
)

type AppendRequest struct {
	RoomID    string
	Type      string
	Timestamp time.Time
	Payload   map[string]any
}

type Service interface {
	Append(context.Context, AppendRequest) error
	// ListForStats returns a room's chat and gift records ordered by
	// timestamp ascending, ready for bucket aggregation.
	ListForStats(ctx context.Context, roomID string) ([]Record, error)
}

var (
	ErrInvalidRoom = errors.New("invalid_room_id")
	ErrInvalidType = errors.New("invalid_event_type")
)

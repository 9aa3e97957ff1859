package domain

import (
	"context"
	"errors"
)

type UpsertRequest struct {
	RoomID  string `json:"room_id"`
	Name    string `json:"name"`
	Address string `json:"address"`
}

type Service interface {
	Upsert(context.Context, UpsertRequest) (*Room, error)
	List(context.Context) ([]Room, error)
}

var ErrInvalidRoom = errors.New("invalid_room_id")

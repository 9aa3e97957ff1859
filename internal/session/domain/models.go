// Package domain contains persistence models for finished live sessions.
package domain

import (
	"time"

	"gorm.io/datatypes"
)

// Session is an immutable end-of-session snapshot. The session id is a
// YYYYMMDD day prefix followed by a two digit per-day sequence.
type Session struct {
	SessionID string            `json:"session_id" gorm:"column:session_id;primaryKey;type:text"`
	RoomID    string            `json:"room_id" gorm:"column:room_id;index;type:text;not null"`
	Snapshot  datatypes.JSONMap `json:"snapshot" gorm:"type:jsonb"`
	CreatedAt time.Time         `json:"created_at" gorm:"not null"`
}

// TableName sets the database table name.
func (Session) TableName() string { return "sessions" }

// Summary is the listing projection: everything but the snapshot body.
type Summary struct {
	SessionID string    `json:"session_id"`
	RoomID    string    `json:"room_id"`
	CreatedAt time.Time `json:"created_at"`
}

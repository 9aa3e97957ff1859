// Package domain contains the append-only store model for relayed
// live-stream events.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/datatypes"
)

const (
	TypeChat   = "chat"
	TypeGift   = "gift"
	TypeLike   = "like"
	TypeMember = "member"
)

// Record is one relayed event. Rows are never mutated or deleted;
// rows for a room may interleave across workers and are sorted by
// timestamp when read back.
type Record struct {
	ID        snowflake.ID      `json:"id" gorm:"primaryKey"`
	RoomID    string            `json:"room_id" gorm:"column:room_id;index;type:text;not null"`
	Type      string            `json:"type" gorm:"type:text;not null"`
	Timestamp time.Time         `json:"timestamp" gorm:"index;not null"`
	Payload   datatypes.JSONMap `json:"payload" gorm:"type:jsonb"`
	CreatedAt time.Time         `json:"created_at" gorm:"not null"`
}

// TableName sets the database table name.
func (Record) TableName() string { return "events" }

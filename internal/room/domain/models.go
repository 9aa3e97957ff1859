// Package domain contains persistence models for observed live rooms.
package domain

import "time"

// Room is an upserted record of a live room the system has observed.
type Room struct {
	RoomID    string    `json:"room_id" gorm:"column:room_id;primaryKey;type:text"`
	Name      string    `json:"name,omitempty" gorm:"type:text"`
	Address   string    `json:"address,omitempty" gorm:"type:text"`
	UpdatedAt time.Time `json:"updated_at" gorm:"not null"`
}

// TableName sets the database table name.
func (Room) TableName() string { return "rooms" }

package service

import (
	"context"
	"strings"

	"github.com/streamlens/streamlens/internal/clock"
	roomdomain "github.com/streamlens/streamlens/internal/room/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ServiceParam struct {
	fx.In

	DB    *gorm.DB
	Log   *zap.Logger
	Clock clock.Clock
}

type Service struct {
	db    *gorm.DB
	log   *zap.Logger
	clock clock.Clock
}

func NewService(p ServiceParam) roomdomain.Service {
	return &Service{
		db:    p.DB,
		log:   p.Log.Named("room.service"),
		clock: p.Clock,
	}
}

// Upsert creates the room on first reference and refreshes name,
// address, and updated_at on every re-registration.
func (s *Service) Upsert(ctx context.Context, req roomdomain.UpsertRequest) (*roomdomain.Room, error) {
	roomID := strings.TrimSpace(req.RoomID)
	if roomID == "" {
		return nil, roomdomain.ErrInvalidRoom
	}

	record := roomdomain.Room{
		RoomID:    roomID,
		Name:      strings.TrimSpace(req.Name),
		Address:   strings.TrimSpace(req.Address),
		UpdatedAt: s.clock.Now().UTC(),
	}

	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "room_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"name", "address", "updated_at"}),
	}).Create(&record).Error
	if err != nil {
		return nil, err
	}

	return &record, nil
}

func (s *Service) List(ctx context.Context) ([]roomdomain.Room, error) {
	var rooms []roomdomain.Room
	err := s.db.WithContext(ctx).
		Order("updated_at DESC").
		Find(&rooms).Error
	if err != nil {
		return nil, err
	}
	return rooms, nil
}

package service

import (
	"context"
	"strings"

	"github.com/bwmarrin/snowflake"
	eventdomain "github.com/streamlens/streamlens/internal/event/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type ServiceParam struct {
	fx.In

	DB    *gorm.DB
	Log   *zap.Logger
	GenID *snowflake.Node
}

type Service struct {
	db    *gorm.DB
	log   *zap.Logger
	genID *snowflake.Node
}

func NewService(p ServiceParam) eventdomain.Service {
	return &Service{
		db:    p.DB,
		log:   p.Log.Named("event.service"),
		genID: p.GenID,
	}
}

func (s *Service) Append(ctx context.Context, req eventdomain.AppendRequest) error {
	roomID := strings.TrimSpace(req.RoomID)
	if roomID == "" {
		return eventdomain.ErrInvalidRoom
	}
	switch req.Type {
	case eventdomain.TypeChat, eventdomain.TypeGift, eventdomain.TypeLike:
	default:
		return eventdomain.ErrInvalidType
	}

	record := eventdomain.Record{
		ID:        s.genID.Generate(),
		RoomID:    roomID,
		Type:      req.Type,
		Timestamp: req.Timestamp,
		Payload:   datatypes.JSONMap(req.Payload),
		CreatedAt: req.Timestamp,
	}
	return s.db.WithContext(ctx).Create(&record).Error
}

func (s *Service) ListForStats(ctx context.Context, roomID string) ([]eventdomain.Record, error) {
	roomID = strings.TrimSpace(roomID)
	if roomID == "" {
		return nil, eventdomain.ErrInvalidRoom
	}

	var records []eventdomain.Record
	err := s.db.WithContext(ctx).
		Where("room_id = ? AND type IN ?", roomID, []string{eventdomain.TypeChat, eventdomain.TypeGift}).
		Order("timestamp ASC").
		Find(&records).Error
	if err != nil {
		return nil, err
	}
	return records, nil
}

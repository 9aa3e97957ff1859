package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/streamlens/streamlens/internal/clock"
	sessiondomain "github.com/streamlens/streamlens/internal/session/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// daySequenceMax is the largest per-day sequence the two digit id
// suffix can carry.
const daySequenceMax = 99

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

	// seq serializes id allocation so two concurrent Create calls on
	// the same day can never count the same prefix twice.
	seq sync.Mutex
}

func NewService(p ServiceParam) sessiondomain.Service {
	return &Service{
		db:    p.DB,
		log:   p.Log.Named("session.service"),
		clock: p.Clock,
	}
}

func (s *Service) Create(ctx context.Context, roomID string, snapshot map[string]any) (string, error) {
	roomID = strings.TrimSpace(roomID)
	if roomID == "" {
		return "", sessiondomain.ErrInvalidRoom
	}

	now := s.clock.Now()
	day := now.Format("20060102")

	s.seq.Lock()
	defer s.seq.Unlock()

	var sessionID string
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&sessiondomain.Session{}).
			Where("session_id LIKE ?", day+"%").
			Count(&count).Error; err != nil {
			return err
		}
		if count >= daySequenceMax {
			return sessiondomain.ErrSequenceExhausted
		}

		sessionID = fmt.Sprintf("%s%02d", day, count+1)
		record := sessiondomain.Session{
			SessionID: sessionID,
			RoomID:    roomID,
			Snapshot:  datatypes.JSONMap(snapshot),
			CreatedAt: now,
		}
		return tx.Create(&record).Error
	})
	if err != nil {
		return "", err
	}

	s.log.Info("session recorded",
		zap.String("session_id", sessionID),
		zap.String("room_id", roomID),
	)
	return sessionID, nil
}

func (s *Service) Get(ctx context.Context, sessionID string) (map[string]any, error) {
	sessionID = strings.TrimSpace(sessionID)
	if sessionID == "" {
		return nil, sessiondomain.ErrInvalidSession
	}

	var record sessiondomain.Session
	err := s.db.WithContext(ctx).
		Where("session_id = ?", sessionID).
		First(&record).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, sessiondomain.ErrSessionNotFound
		}
		return nil, err
	}
	return map[string]any(record.Snapshot), nil
}

func (s *Service) List(ctx context.Context, roomID string) ([]sessiondomain.Summary, error) {
	query := s.db.WithContext(ctx).
		Model(&sessiondomain.Session{}).
		Order("created_at DESC")
	if roomID = strings.TrimSpace(roomID); roomID != "" {
		query = query.Where("room_id = ?", roomID)
	}

	var summaries []sessiondomain.Summary
	if err := query.
		Select("session_id", "room_id", "created_at").
		Find(&summaries).Error; err != nil {
		return nil, err
	}
	return summaries, nil
}

package stats

import (
	"context"

	eventdomain "github.com/streamlens/streamlens/internal/event/domain"
	"github.com/streamlens/streamlens/internal/pricebook"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

type ServiceParam struct {
	fx.In

	Events eventdomain.Service
	Book   *pricebook.Book
	Log    *zap.Logger
}

type Service struct {
	events eventdomain.Service
	book   *pricebook.Book
	log    *zap.Logger
}

func NewService(p ServiceParam) *Service {
	return &Service{
		events: p.Events,
		book:   p.Book,
		log:    p.Log.Named("stats.service"),
	}
}

// TimeStats aggregates a room's recorded events against the current
// price table.
func (s *Service) TimeStats(ctx context.Context, roomID string) ([]Bucket, error) {
	records, err := s.events.ListForStats(ctx, roomID)
	if err != nil {
		return nil, err
	}
	return Aggregate(records, s.book), nil
}

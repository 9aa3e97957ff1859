package stream

import (
	"context"

	eventdomain "github.com/streamlens/streamlens/internal/event/domain"
	obsmetrics "github.com/streamlens/streamlens/internal/observability/metrics"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

type RouterParam struct {
	fx.In

	Events  eventdomain.Service
	Log     *zap.Logger
	Metrics *obsmetrics.Metrics `optional:"true"`
}

// Router persists each persistable event and forwards every event to
// the owning subscriber. Persistence is best effort: a failed write is
// logged and never interrupts forwarding.
type Router struct {
	events  eventdomain.Service
	log     *zap.Logger
	metrics *obsmetrics.Metrics
}

func NewRouter(p RouterParam) *Router {
	return &Router{
		events:  p.Events,
		log:     p.Log.Named("stream.router"),
		metrics: p.Metrics,
	}
}

func (r *Router) Route(ctx context.Context, roomID string, ev Event, sink Sink) {
	payload := ev.Payload()

	if ev.Type.persistable() {
		err := r.events.Append(ctx, eventdomain.AppendRequest{
			RoomID:    roomID,
			Type:      string(ev.Type),
			Timestamp: ev.Timestamp,
			Payload:   payload,
		})
		if err != nil {
			r.metrics.IncPersistFailure()
			r.log.Warn("event persist failed",
				zap.String("room_id", roomID),
				zap.String("type", string(ev.Type)),
				zap.Error(err),
			)
		} else {
			r.metrics.IncPersisted(string(ev.Type))
		}
	}

	sink.Forward(ev.Type, payload)
	r.metrics.IncForwarded(string(ev.Type))
}

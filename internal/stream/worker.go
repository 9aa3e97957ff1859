package stream

import (
	"context"
	"errors"
	"sync"

	obsmetrics "github.com/streamlens/streamlens/internal/observability/metrics"
	"go.uber.org/zap"
)

// Status is a worker's lifecycle state. Disconnected is terminal.
type Status string

const (
	StatusIdle         Status = "idle"
	StatusConnecting   Status = "connecting"
	StatusConnected    Status = "connected"
	StatusDisconnected Status = "disconnected"
	StatusError        Status = "error"
)

const (
	stateConnected = "CONNECTED"

	reasonClosed      = "Connection Closed"
	reasonErrorPrefix = "Error: "
)

// Worker owns exactly one external connection for one subscriber. It
// runs a single receive loop; events are routed in arrival order and
// never after cancellation is observed.
type Worker struct {
	subscriberID string
	target       Target
	opts         Options
	connector    Connector
	router       *Router
	sink         Sink
	log          *zap.Logger
	metrics      *obsmetrics.Metrics

	cancel context.CancelFunc
	done   chan struct{}

	mu     sync.Mutex
	status Status
}

func newWorker(subscriberID string, target Target, opts Options, connector Connector, router *Router, sink Sink, log *zap.Logger, metrics *obsmetrics.Metrics) *Worker {
	return &Worker{
		subscriberID: subscriberID,
		target:       target,
		opts:         opts,
		connector:    connector,
		router:       router,
		sink:         sink,
		log:          log,
		metrics:      metrics,
		done:         make(chan struct{}),
		status:       StatusIdle,
	}
}

// Cancel requests the worker stop. Safe to call from any goroutine and
// more than once.
func (w *Worker) Cancel() {
	if w.cancel != nil {
		w.cancel()
	}
}

// Done closes once the worker has fully stopped.
func (w *Worker) Done() <-chan struct{} {
	return w.done
}

func (w *Worker) Status() Status {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.status
}

func (w *Worker) setStatus(s Status) {
	w.mu.Lock()
	w.status = s
	w.mu.Unlock()
}

// run drives the worker to completion. predecessor, when non-nil, is
// the Done channel of the worker this one replaces: forwarding must
// not begin until the old worker has fully stopped.
func (w *Worker) run(ctx context.Context, predecessor <-chan struct{}) {
	defer close(w.done)

	if predecessor != nil {
		select {
		case <-predecessor:
		case <-ctx.Done():
			w.finish(reasonClosed)
			return
		}
	}

	w.setStatus(StatusConnecting)
	conn, err := w.connector.Dial(ctx, w.target, w.opts.sanitized())
	if err != nil {
		if errors.Is(err, context.Canceled) {
			w.metrics.IncConnect("canceled")
			w.finish(reasonClosed)
			return
		}
		w.metrics.IncConnect("error")
		w.log.Warn("connect failed",
			zap.String("subscriber_id", w.subscriberID),
			zap.String("target", w.target.Value),
			zap.Error(err),
		)
		w.setStatus(StatusError)
		w.finish(reasonErrorPrefix + err.Error())
		return
	}
	w.metrics.IncConnect("ok")

	w.setStatus(StatusConnected)
	w.sink.Connected(stateConnected)
	w.log.Info("connected",
		zap.String("subscriber_id", w.subscriberID),
		zap.String("room_id", conn.RoomID()),
	)

	for {
		select {
		case <-ctx.Done():
			_ = conn.Close()
			w.finish(reasonClosed)
			return
		case ev, ok := <-conn.Events():
			if !ok {
				_ = conn.Close()
				if recvErr := conn.Err(); recvErr != nil {
					w.setStatus(StatusError)
					w.finish(reasonErrorPrefix + recvErr.Error())
				} else {
					w.finish(reasonClosed)
				}
				return
			}
			w.router.Route(ctx, conn.RoomID(), ev, w.sink)
		}
	}
}

// finish enters the terminal state and notifies the subscriber.
func (w *Worker) finish(reason string) {
	w.setStatus(StatusDisconnected)
	w.sink.Disconnected(reason)
}

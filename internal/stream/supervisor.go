package stream

import (
	"context"
	"sync"
	"time"

	obsmetrics "github.com/streamlens/streamlens/internal/observability/metrics"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

type SupervisorParam struct {
	fx.In

	Connector Connector
	Router    *Router
	Log       *zap.Logger
	Metrics   *obsmetrics.Metrics `optional:"true"`
}

// Supervisor is the registry of active connection workers, keyed by
// subscriber identity. It guarantees at most one live worker per
// subscriber: re-subscribing cancels the previous worker before the
// replacement may begin forwarding.
type Supervisor struct {
	connector Connector
	router    *Router
	log       *zap.Logger
	metrics   *obsmetrics.Metrics

	mu      sync.Mutex
	workers map[string]*Worker
	wg      sync.WaitGroup
}

func NewSupervisor(p SupervisorParam) *Supervisor {
	return &Supervisor{
		connector: p.Connector,
		router:    p.Router,
		log:       p.Log.Named("stream.supervisor"),
		metrics:   p.Metrics,
		workers:   make(map[string]*Worker),
	}
}

// Subscribe starts a connection worker for the subscriber. Any
// existing worker is signaled to cancel before this call returns; the
// replacement waits for it to fully stop before forwarding anything.
func (s *Supervisor) Subscribe(subscriberID, rawTarget string, opts Options, sink Sink) error {
	target, err := ParseTarget(rawTarget)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(context.Background())
	w := newWorker(subscriberID, target, opts, s.connector, s.router, sink, s.log, s.metrics)
	w.cancel = cancel

	s.mu.Lock()
	var predecessor <-chan struct{}
	if old := s.workers[subscriberID]; old != nil {
		old.Cancel()
		predecessor = old.Done()
	}
	s.workers[subscriberID] = w
	s.mu.Unlock()

	s.log.Info("subscribe",
		zap.String("subscriber_id", subscriberID),
		zap.String("target", target.Value),
		zap.String("kind", string(target.Kind)),
		zap.Bool("replacing", predecessor != nil),
	)

	s.metrics.WorkerStarted()
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		defer s.metrics.WorkerStopped()
		w.run(ctx, predecessor)
		s.remove(subscriberID, w)
	}()
	return nil
}

// Unsubscribe cancels and removes the subscriber's worker. No-op when
// none exists.
func (s *Supervisor) Unsubscribe(subscriberID string) {
	s.mu.Lock()
	w := s.workers[subscriberID]
	delete(s.workers, subscriberID)
	s.mu.Unlock()

	if w == nil {
		return
	}
	w.Cancel()
	s.log.Info("unsubscribe", zap.String("subscriber_id", subscriberID))
}

// Status reports the registered worker's state for a subscriber.
func (s *Supervisor) Status(subscriberID string) (Status, bool) {
	s.mu.Lock()
	w := s.workers[subscriberID]
	s.mu.Unlock()
	if w == nil {
		return "", false
	}
	return w.Status(), true
}

// Active returns the number of registered workers.
func (s *Supervisor) Active() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.workers)
}

// Close cancels every worker and waits for them to stop, bounded by
// the context deadline.
func (s *Supervisor) Close(ctx context.Context) error {
	s.mu.Lock()
	for id, w := range s.workers {
		w.Cancel()
		delete(s.workers, id)
	}
	s.mu.Unlock()

	stopped := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(stopped)
	}()
	select {
	case <-stopped:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *Supervisor) remove(subscriberID string, w *Worker) {
	s.mu.Lock()
	if s.workers[subscriberID] == w {
		delete(s.workers, subscriberID)
	}
	s.mu.Unlock()
}

// bound on waiting for workers to drain when fx stops the app.
const closeTimeout = 5 * time.Second

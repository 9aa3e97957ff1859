package stream

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	eventdomain "github.com/streamlens/streamlens/internal/event/domain"
	"go.uber.org/zap"
)

type fakeConn struct {
	roomID string
	events chan Event

	mu     sync.Mutex
	err    error
	closed bool
}

func newFakeConn(roomID string) *fakeConn {
	return &fakeConn{roomID: roomID, events: make(chan Event, 16)}
}

func (c *fakeConn) Events() <-chan Event { return c.events }
func (c *fakeConn) RoomID() string       { return c.roomID }

func (c *fakeConn) Err() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.err
}

func (c *fakeConn) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
	return nil
}

func (c *fakeConn) wasClosed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closed
}

func (c *fakeConn) push(ev Event) { c.events <- ev }

func (c *fakeConn) end(err error) {
	c.mu.Lock()
	c.err = err
	c.mu.Unlock()
	close(c.events)
}

type fakeConnector struct {
	mu      sync.Mutex
	conns   []*fakeConn
	dialErr error
	// blockDial makes Dial wait for ctx cancellation.
	blockDial bool
}

func (f *fakeConnector) Dial(ctx context.Context, target Target, opts Options) (Conn, error) {
	if f.blockDial {
		<-ctx.Done()
		return nil, ctx.Err()
	}
	if f.dialErr != nil {
		return nil, f.dialErr
	}
	conn := newFakeConn("9000" + target.Value)
	f.mu.Lock()
	f.conns = append(f.conns, conn)
	f.mu.Unlock()
	return conn, nil
}

func (f *fakeConnector) conn(i int) *fakeConn {
	f.mu.Lock()
	defer f.mu.Unlock()
	if i >= len(f.conns) {
		return nil
	}
	return f.conns[i]
}

type sinkCall struct {
	kind    string // "connected", "disconnected", "event"
	reason  string
	evType  Type
	payload map[string]any
}

type recordSink struct {
	mu    sync.Mutex
	calls []sinkCall
}

func (s *recordSink) Connected(state string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = append(s.calls, sinkCall{kind: "connected", reason: state})
}

func (s *recordSink) Disconnected(reason string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = append(s.calls, sinkCall{kind: "disconnected", reason: reason})
}

func (s *recordSink) Forward(eventType Type, payload map[string]any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = append(s.calls, sinkCall{kind: "event", evType: eventType, payload: payload})
}

func (s *recordSink) snapshot() []sinkCall {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]sinkCall(nil), s.calls...)
}

func (s *recordSink) lastDisconnectReason() (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := len(s.calls) - 1; i >= 0; i-- {
		if s.calls[i].kind == "disconnected" {
			return s.calls[i].reason, true
		}
	}
	return "", false
}

func (s *recordSink) forwarded() []Type {
	s.mu.Lock()
	defer s.mu.Unlock()
	var types []Type
	for _, call := range s.calls {
		if call.kind == "event" {
			types = append(types, call.evType)
		}
	}
	return types
}

type stubEvents struct {
	mu       sync.Mutex
	appended []eventdomain.AppendRequest
	err      error
}

func (s *stubEvents) Append(ctx context.Context, req eventdomain.AppendRequest) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	s.appended = append(s.appended, req)
	return nil
}

func (s *stubEvents) ListForStats(ctx context.Context, roomID string) ([]eventdomain.Record, error) {
	return nil, nil
}

func (s *stubEvents) appendedTypes() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	var types []string
	for _, req := range s.appended {
		types = append(types, req.Type)
	}
	return types
}

func newTestSupervisor(connector Connector, events eventdomain.Service) *Supervisor {
	router := NewRouter(RouterParam{Events: events, Log: zap.NewNop()})
	return NewSupervisor(SupervisorParam{
		Connector: connector,
		Router:    router,
		Log:       zap.NewNop(),
	})
}

func waitFor(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(2 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for %s", what)
}

func TestSubscribeInvalidTarget(t *testing.T) {
	supervisor := newTestSupervisor(&fakeConnector{}, &stubEvents{})

	err := supervisor.Subscribe("sub1", "  ", nil, &recordSink{})
	if !errors.Is(err, ErrInvalidTarget) {
		t.Fatalf("expected ErrInvalidTarget, got %v", err)
	}
	if supervisor.Active() != 0 {
		t.Fatalf("no worker may be spawned for an invalid target")
	}
}

func TestConnectFailureNotifiesSubscriber(t *testing.T) {
	connector := &fakeConnector{dialErr: errors.New("room offline")}
	supervisor := newTestSupervisor(connector, &stubEvents{})
	sink := &recordSink{}

	if err := supervisor.Subscribe("sub1", "someuser", nil, sink); err != nil {
		t.Fatalf("subscribe: %v", err)
	}

	waitFor(t, "disconnected notification", func() bool {
		reason, ok := sink.lastDisconnectReason()
		return ok && strings.Contains(reason, "room offline")
	})
	reason, _ := sink.lastDisconnectReason()
	if !strings.HasPrefix(reason, "Error: ") {
		t.Fatalf("expected Error: prefix, got %q", reason)
	}
	waitFor(t, "registry cleanup", func() bool { return supervisor.Active() == 0 })
}

func TestEventsRoutedInOrder(t *testing.T) {
	connector := &fakeConnector{}
	events := &stubEvents{}
	supervisor := newTestSupervisor(connector, events)
	sink := &recordSink{}

	if err := supervisor.Subscribe("sub1", "someuser", nil, sink); err != nil {
		t.Fatalf("subscribe: %v", err)
	}
	waitFor(t, "connection", func() bool { return connector.conn(0) != nil })
	conn := connector.conn(0)

	now := time.Now()
	conn.push(Event{Type: TypeChat, Timestamp: now, Chat: &Chat{UniqueID: "a", Comment: "hello"}})
	conn.push(Event{Type: TypeGift, Timestamp: now, Gift: &Gift{UniqueID: "b", GiftID: 7, RepeatCount: 2}})
	conn.push(Event{Type: TypeMember, Timestamp: now, Member: &Member{UniqueID: "c"}})
	conn.push(Event{Type: TypeLike, Timestamp: now, Like: &Like{UniqueID: "d", LikeCount: 3}})
	conn.end(nil)

	waitFor(t, "clean disconnect", func() bool {
		reason, ok := sink.lastDisconnectReason()
		return ok && reason == "Connection Closed"
	})

	got := sink.forwarded()
	want := []Type{TypeChat, TypeGift, TypeMember, TypeLike}
	if len(got) != len(want) {
		t.Fatalf("expected %d forwarded events, got %d", len(want), len(got))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("event %d forwarded out of order: got %s, want %s", i, got[i], want[i])
		}
	}

	// member events are forwarded but never persisted
	persisted := events.appendedTypes()
	if len(persisted) != 3 {
		t.Fatalf("expected 3 persisted events, got %v", persisted)
	}
	for _, typ := range persisted {
		if typ == string(TypeMember) {
			t.Fatal("member event must not be persisted")
		}
	}
}

func TestPersistFailureDoesNotStopForwarding(t *testing.T) {
	connector := &fakeConnector{}
	events := &stubEvents{err: errors.New("disk full")}
	supervisor := newTestSupervisor(connector, events)
	sink := &recordSink{}

	if err := supervisor.Subscribe("sub1", "someuser", nil, sink); err != nil {
		t.Fatalf("subscribe: %v", err)
	}
	waitFor(t, "connection", func() bool { return connector.conn(0) != nil })
	conn := connector.conn(0)

	conn.push(Event{Type: TypeChat, Timestamp: time.Now(), Chat: &Chat{Comment: "hi"}})
	conn.push(Event{Type: TypeChat, Timestamp: time.Now(), Chat: &Chat{Comment: "again"}})
	conn.end(nil)

	waitFor(t, "both events forwarded", func() bool { return len(sink.forwarded()) == 2 })
}

func TestUnsubscribeCancelsWorker(t *testing.T) {
	connector := &fakeConnector{}
	supervisor := newTestSupervisor(connector, &stubEvents{})
	sink := &recordSink{}

	if err := supervisor.Subscribe("sub1", "someuser", nil, sink); err != nil {
		t.Fatalf("subscribe: %v", err)
	}
	waitFor(t, "connection", func() bool { return connector.conn(0) != nil })

	supervisor.Unsubscribe("sub1")

	waitFor(t, "disconnected notification", func() bool {
		reason, ok := sink.lastDisconnectReason()
		return ok && reason == "Connection Closed"
	})
	waitFor(t, "connection release", func() bool { return connector.conn(0).wasClosed() })
	if supervisor.Active() != 0 {
		t.Fatalf("expected empty registry, got %d", supervisor.Active())
	}

	// idempotent when no worker exists
	supervisor.Unsubscribe("sub1")
}

func TestUnsubscribeDuringConnect(t *testing.T) {
	connector := &fakeConnector{blockDial: true}
	supervisor := newTestSupervisor(connector, &stubEvents{})
	sink := &recordSink{}

	if err := supervisor.Subscribe("sub1", "someuser", nil, sink); err != nil {
		t.Fatalf("subscribe: %v", err)
	}
	supervisor.Unsubscribe("sub1")

	waitFor(t, "cancellation during connect", func() bool {
		reason, ok := sink.lastDisconnectReason()
		return ok && reason == "Connection Closed"
	})
}

func TestResubscribeReplacesWorker(t *testing.T) {
	connector := &fakeConnector{}
	supervisor := newTestSupervisor(connector, &stubEvents{})
	oldSink := &recordSink{}
	newSink := &recordSink{}

	if err := supervisor.Subscribe("sub1", "olduser", nil, oldSink); err != nil {
		t.Fatalf("subscribe old: %v", err)
	}
	waitFor(t, "first connection", func() bool { return connector.conn(0) != nil })

	if err := supervisor.Subscribe("sub1", "newuser", nil, newSink); err != nil {
		t.Fatalf("subscribe new: %v", err)
	}

	// old worker is cancelled and reports closed
	waitFor(t, "old worker disconnect", func() bool {
		reason, ok := oldSink.lastDisconnectReason()
		return ok && reason == "Connection Closed"
	})
	waitFor(t, "old connection release", func() bool { return connector.conn(0).wasClosed() })

	// the replacement connects only after the old worker fully stopped
	waitFor(t, "second connection", func() bool { return connector.conn(1) != nil })
	waitFor(t, "new worker connected", func() bool {
		for _, call := range newSink.snapshot() {
			if call.kind == "connected" {
				return true
			}
		}
		return false
	})

	if supervisor.Active() != 1 {
		t.Fatalf("expected exactly one live worker, got %d", supervisor.Active())
	}

	// only the replacement forwards
	conn := connector.conn(1)
	conn.push(Event{Type: TypeChat, Timestamp: time.Now(), Chat: &Chat{Comment: "hi"}})
	waitFor(t, "forward on new worker", func() bool { return len(newSink.forwarded()) == 1 })
	if len(oldSink.forwarded()) != 0 {
		t.Fatalf("old worker must not forward after replacement")
	}
}

func TestReceiveErrorReportsError(t *testing.T) {
	connector := &fakeConnector{}
	supervisor := newTestSupervisor(connector, &stubEvents{})
	sink := &recordSink{}

	if err := supervisor.Subscribe("sub1", "someuser", nil, sink); err != nil {
		t.Fatalf("subscribe: %v", err)
	}
	waitFor(t, "connection", func() bool { return connector.conn(0) != nil })

	connector.conn(0).end(errors.New("stream reset"))

	waitFor(t, "error disconnect", func() bool {
		reason, ok := sink.lastDisconnectReason()
		return ok && reason == "Error: stream reset"
	})
}

func TestWorkerFailureIsIsolated(t *testing.T) {
	connector := &fakeConnector{}
	supervisor := newTestSupervisor(connector, &stubEvents{})
	sinkA := &recordSink{}
	sinkB := &recordSink{}

	if err := supervisor.Subscribe("subA", "usera", nil, sinkA); err != nil {
		t.Fatalf("subscribe A: %v", err)
	}
	// wait for A's dial so conn(0) is deterministically A's connection
	waitFor(t, "A connection", func() bool { return connector.conn(0) != nil })
	if err := supervisor.Subscribe("subB", "userb", nil, sinkB); err != nil {
		t.Fatalf("subscribe B: %v", err)
	}
	waitFor(t, "both connections", func() bool {
		return connector.conn(0) != nil && connector.conn(1) != nil
	})

	connector.conn(0).end(errors.New("boom"))
	waitFor(t, "A disconnect", func() bool {
		_, ok := sinkA.lastDisconnectReason()
		return ok
	})

	// B keeps forwarding
	connector.conn(1).push(Event{Type: TypeChat, Timestamp: time.Now(), Chat: &Chat{Comment: "still here"}})
	waitFor(t, "B forward", func() bool { return len(sinkB.forwarded()) == 1 })
	if supervisor.Active() != 1 {
		t.Fatalf("expected only B registered, got %d", supervisor.Active())
	}
}

func TestCloseStopsAllWorkers(t *testing.T) {
	connector := &fakeConnector{}
	supervisor := newTestSupervisor(connector, &stubEvents{})

	for _, id := range []string{"a", "b", "c"} {
		if err := supervisor.Subscribe(id, "user"+id, nil, &recordSink{}); err != nil {
			t.Fatalf("subscribe %s: %v", id, err)
		}
	}
	waitFor(t, "all connections", func() bool { return connector.conn(2) != nil })

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := supervisor.Close(ctx); err != nil {
		t.Fatalf("close: %v", err)
	}
	if supervisor.Active() != 0 {
		t.Fatalf("expected empty registry after close, got %d", supervisor.Active())
	}
}

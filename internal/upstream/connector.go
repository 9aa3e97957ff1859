// Package upstream adapts a JSON-over-websocket live event feed to the
// stream.Connector capability. The feed endpoint (typically a provider
// sidecar) accepts the target and connection options as query
// parameters, answers with a connected envelope carrying the resolved
// room id, then pushes typed event envelopes until either side closes.
package upstream

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/streamlens/streamlens/internal/stream"
	"go.uber.org/zap"
)

const handshakeTimeout = 15 * time.Second

type Connector struct {
	baseURL string
	log     *zap.Logger
}

func NewConnector(baseURL string, log *zap.Logger) *Connector {
	return &Connector{
		baseURL: baseURL,
		log:     log.Named("upstream"),
	}
}

func (c *Connector) Dial(ctx context.Context, target stream.Target, opts stream.Options) (stream.Conn, error) {
	endpoint, err := c.buildURL(target, opts)
	if err != nil {
		return nil, err
	}

	dialer := websocket.Dialer{HandshakeTimeout: handshakeTimeout}
	ws, _, err := dialer.DialContext(ctx, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("dial upstream: %w", err)
	}

	var hello envelope
	if err := ws.ReadJSON(&hello); err != nil {
		ws.Close()
		return nil, fmt.Errorf("upstream handshake: %w", err)
	}
	if hello.Event != "connected" || hello.RoomID == "" {
		ws.Close()
		return nil, fmt.Errorf("upstream handshake: unexpected %q envelope", hello.Event)
	}

	conn := &conn{
		ws:     ws,
		roomID: hello.RoomID,
		events: make(chan stream.Event, 64),
		done:   make(chan struct{}),
		log:    c.log.With(zap.String("room_id", hello.RoomID)),
	}
	go conn.receive()
	return conn, nil
}

func (c *Connector) buildURL(target stream.Target, opts stream.Options) (string, error) {
	parsed, err := url.Parse(c.baseURL)
	if err != nil {
		return "", fmt.Errorf("upstream url: %w", err)
	}

	query := parsed.Query()
	query.Set("target", target.Value)
	query.Set("kind", string(target.Kind))
	for key, value := range opts {
		query.Set(key, fmt.Sprint(value))
	}
	parsed.RawQuery = query.Encode()
	return parsed.String(), nil
}

type envelope struct {
	Event  string          `json:"event"`
	RoomID string          `json:"roomId,omitempty"`
	Data   json.RawMessage `json:"data,omitempty"`
}

type conn struct {
	ws     *websocket.Conn
	roomID string
	events chan stream.Event
	done   chan struct{}
	log    *zap.Logger

	closeOnce sync.Once

	mu  sync.Mutex
	err error
}

func (c *conn) Events() <-chan stream.Event { return c.events }

func (c *conn) RoomID() string { return c.roomID }

func (c *conn) Err() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.err
}

func (c *conn) Close() error {
	var err error
	c.closeOnce.Do(func() {
		close(c.done)
		err = c.ws.Close()
	})
	return err
}

func (c *conn) receive() {
	defer close(c.events)

	for {
		var msg envelope
		if err := c.ws.ReadJSON(&msg); err != nil {
			if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				return
			}
			c.setErr(err)
			return
		}

		ev, ok := decodeEvent(msg)
		if !ok {
			c.log.Debug("ignoring unknown upstream envelope", zap.String("event", msg.Event))
			continue
		}
		select {
		case c.events <- ev:
		case <-c.done:
			return
		}
	}
}

func (c *conn) setErr(err error) {
	c.mu.Lock()
	c.err = err
	c.mu.Unlock()
}

func decodeEvent(msg envelope) (stream.Event, bool) {
	ev := stream.Event{Timestamp: time.Now()}

	switch stream.Type(msg.Event) {
	case stream.TypeChat:
		var payload stream.Chat
		if json.Unmarshal(msg.Data, &payload) != nil {
			return stream.Event{}, false
		}
		ev.Type = stream.TypeChat
		ev.Chat = &payload
	case stream.TypeGift:
		var payload stream.Gift
		if json.Unmarshal(msg.Data, &payload) != nil {
			return stream.Event{}, false
		}
		ev.Type = stream.TypeGift
		ev.Gift = &payload
	case stream.TypeLike:
		var payload stream.Like
		if json.Unmarshal(msg.Data, &payload) != nil {
			return stream.Event{}, false
		}
		ev.Type = stream.TypeLike
		ev.Like = &payload
	case stream.TypeMember:
		var payload stream.Member
		if json.Unmarshal(msg.Data, &payload) != nil {
			return stream.Event{}, false
		}
		ev.Type = stream.TypeMember
		ev.Member = &payload
	default:
		return stream.Event{}, false
	}
	return ev, true
}

package server

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/streamlens/streamlens/internal/stream"
	"go.uber.org/zap"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingInterval   = (pongWait * 9) / 10
	maxMessageSize = 4096
	sendBuffer     = 256
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(*http.Request) bool { return true },
}

type wsEnvelope struct {
	Event string `json:"event"`
	Data  any    `json:"data,omitempty"`
}

type wsCommand struct {
	Event string `json:"event"`
	Data  struct {
		UniqueID string         `json:"uniqueId"`
		Options  stream.Options `json:"options"`
	} `json:"data"`
}

// liveClient is one connected subscriber. It implements stream.Sink:
// worker notifications are queued on the send channel and written by a
// single pump goroutine. Delivery is best effort; a full queue drops
// the notification rather than stall the worker.
type liveClient struct {
	id   string
	conn *websocket.Conn
	send chan []byte
	done chan struct{}
	log  *zap.Logger
}

func (c *liveClient) Connected(state string) {
	c.enqueue(wsEnvelope{Event: "tiktokConnected", Data: gin.H{"currentState": state}})
}

func (c *liveClient) Disconnected(reason string) {
	c.enqueue(wsEnvelope{Event: "tiktokDisconnected", Data: reason})
}

func (c *liveClient) Forward(eventType stream.Type, payload map[string]any) {
	c.enqueue(wsEnvelope{Event: string(eventType), Data: payload})
}

func (c *liveClient) enqueue(env wsEnvelope) {
	raw, err := json.Marshal(env)
	if err != nil {
		return
	}
	select {
	case c.send <- raw:
	case <-c.done:
	default:
		c.log.Debug("dropping notification for slow subscriber",
			zap.String("subscriber_id", c.id),
			zap.String("event", env.Event),
		)
	}
}

func (c *liveClient) writePump() {
	ticker := time.NewTicker(pingInterval)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-c.done:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			c.conn.WriteMessage(websocket.CloseMessage, []byte{})
			return
		}
	}
}

// Live upgrades the connection and serves one subscriber until it
// disconnects. Closing the socket implicitly unsubscribes.
func (s *Server) Live(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		s.log.Warn("websocket upgrade failed", zap.Error(err))
		return
	}

	client := &liveClient{
		id:   uuid.NewString(),
		conn: conn,
		send: make(chan []byte, sendBuffer),
		done: make(chan struct{}),
		log:  s.log,
	}
	go client.writePump()

	defer func() {
		s.supervisor.Unsubscribe(client.id)
		close(client.done)
	}()

	conn.SetReadLimit(maxMessageSize)
	conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, message, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				s.log.Debug("subscriber read error", zap.String("subscriber_id", client.id), zap.Error(err))
			}
			return
		}

		var cmd wsCommand
		if err := json.Unmarshal(message, &cmd); err != nil {
			continue
		}

		switch cmd.Event {
		case "setUniqueId":
			if err := s.supervisor.Subscribe(client.id, cmd.Data.UniqueID, cmd.Data.Options, client); err != nil {
				client.Disconnected("Error: " + err.Error())
			}
		case "unsubscribe":
			s.supervisor.Unsubscribe(client.id)
		}
	}
}

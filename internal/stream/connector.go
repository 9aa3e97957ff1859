package stream

import "context"

// Connector abstracts the external live-stream provider: connect to a
// target and receive a sequence of typed events until stopped.
type Connector interface {
	Dial(ctx context.Context, target Target, opts Options) (Conn, error)
}

// Conn is one established external connection.
type Conn interface {
	// Events yields the connection's event stream in arrival order.
	// The channel closes when the remote ends or the connection is
	// released.
	Events() <-chan Event
	// RoomID reports the resolved room id for the connected target.
	RoomID() string
	// Err reports the receive failure, if any, once Events is closed.
	Err() error
	// Close releases the connection. Safe to call from outside the
	// receive loop and more than once.
	Close() error
}

// Sink receives one subscriber's notifications. Implementations must
// tolerate calls after the subscriber is gone.
type Sink interface {
	Connected(state string)
	Disconnected(reason string)
	Forward(eventType Type, payload map[string]any)
}

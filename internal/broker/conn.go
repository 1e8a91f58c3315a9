package broker

import (
	"context"
	"encoding/json"
)

// Frame is one addressed broker message. Commands are published with a
// destination address; events arrive with the topic they were sent on.
type Frame struct {
	Destination string          `json:"destination"`
	Body        json.RawMessage `json:"body"`
}

// State is the transport's connection state.
type State string

const (
	StateDisconnected State = "DISCONNECTED"
	StateConnecting   State = "CONNECTING"
	StateConnected    State = "CONNECTED"
	StateReconnecting State = "RECONNECTING"
	StateFailed       State = "FAILED"
)

type FrameCallback func(frame *Frame)

type StateCallback func(state State)

// Conn is the single transport to the broker. Frames on the same topic
// are delivered in order; Publish is fire-and-forget.
type Conn interface {
	Connect(ctx context.Context) error
	Publish(ctx context.Context, frame Frame) error
	OnFrame(cb FrameCallback) int
	RemoveFrameCallback(id int)
	OnStateChange(cb StateCallback) int
	RemoveStateCallback(id int)
	Close(ctx context.Context) error
}

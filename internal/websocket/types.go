package websocket

import (
	"time"

	"github.com/coder/websocket"
)

// Message types sent to the browser.
const (
	MessageReload = "reload"
	MessageError  = "error"
)

// Client represents a WebSocket client connection
type Client struct {
	conn        *websocket.Conn
	send        chan UpdateMessage
	remoteAddr  string
	connectedAt time.Time
}

// UpdateMessage represents a message sent to the browser
type UpdateMessage struct {
	Type      string    `json:"type"`
	Target    string    `json:"target,omitempty"`
	Content   string    `json:"content,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// OriginValidator decides which origins may open a reload connection.
type OriginValidator interface {
	IsAllowedOrigin(origin string) bool
}

// Package websocket runs the live-reload hub: browsers connect, and build
// results are broadcast to every connected client as JSON messages.
package websocket

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"github.com/conneroisu/signet/internal/errors"
	"github.com/conneroisu/signet/internal/logging"
)

const (
	// Time allowed to write a message to the peer.
	writeWait = 10 * time.Second

	// Send pings to peer with this period.
	pingPeriod = 54 * time.Second

	// Maximum message size allowed from peer.
	maxMessageSize = 512

	sendBuffer = 64
)

// Manager owns the set of connected clients. A single hub goroutine
// serializes registration, removal and broadcast.
type Manager struct {
	clients      map[*Client]struct{}
	clientsMutex sync.RWMutex

	broadcast  chan UpdateMessage
	register   chan *Client
	unregister chan *Client

	originValidator OriginValidator
	logger          logging.Logger

	ctx          context.Context
	cancel       context.CancelFunc
	done         chan struct{}
	shutdownOnce sync.Once
}

// NewManager creates a manager and starts its hub.
func NewManager(originValidator OriginValidator, logger logging.Logger) *Manager {
	if originValidator == nil {
		panic("websocket: originValidator cannot be nil")
	}
	if logger == nil {
		logger = logging.Discard()
	}

	ctx, cancel := context.WithCancel(context.Background())
	wm := &Manager{
		clients:         make(map[*Client]struct{}),
		broadcast:       make(chan UpdateMessage, 256),
		register:        make(chan *Client, 32),
		unregister:      make(chan *Client, 32),
		originValidator: originValidator,
		logger:          logger.WithComponent("websocket"),
		ctx:             ctx,
		cancel:          cancel,
		done:            make(chan struct{}),
	}

	go wm.runHub()
	return wm
}

// HandleWebSocket upgrades the request and registers the client.
func (wm *Manager) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	if wm.ctx.Err() != nil {
		http.Error(w, "Service Unavailable", http.StatusServiceUnavailable)
		return
	}

	if origin := r.Header.Get("Origin"); origin != "" && !wm.originValidator.IsAllowedOrigin(origin) {
		wm.logger.Warn(r.Context(), errors.ErrInvalidOrigin(origin), "WebSocket connection rejected", "origin", origin, "remote", r.RemoteAddr)
		http.Error(w, "Forbidden", http.StatusForbidden)
		return
	}

	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		// Origins are validated above.
		OriginPatterns:  []string{"*"},
		CompressionMode: websocket.CompressionDisabled,
	})
	if err != nil {
		wm.logger.Warn(r.Context(), err, "WebSocket upgrade failed", "remote", r.RemoteAddr)
		return
	}
	conn.SetReadLimit(maxMessageSize)

	client := &Client{
		conn:        conn,
		send:        make(chan UpdateMessage, sendBuffer),
		remoteAddr:  r.RemoteAddr,
		connectedAt: time.Now(),
	}

	select {
	case wm.register <- client:
	case <-wm.ctx.Done():
		conn.Close(websocket.StatusServiceRestart, "Server shutting down")
		return
	}

	go wm.handleClient(client)
}

func (wm *Manager) runHub() {
	defer close(wm.done)
	for {
		select {
		case client := <-wm.register:
			wm.registerClient(client)

		case client := <-wm.unregister:
			wm.unregisterClient(client)

		case message := <-wm.broadcast:
			wm.broadcastToClients(message)

		case <-wm.ctx.Done():
			wm.clientsMutex.Lock()
			for client := range wm.clients {
				close(client.send)
			}
			wm.clients = make(map[*Client]struct{})
			wm.clientsMutex.Unlock()
			return
		}
	}
}

func (wm *Manager) registerClient(client *Client) {
	wm.clientsMutex.Lock()
	wm.clients[client] = struct{}{}
	total := len(wm.clients)
	wm.clientsMutex.Unlock()

	wm.logger.Debug(wm.ctx, "WebSocket client connected", "remote", client.remoteAddr, "clients", total)
}

func (wm *Manager) unregisterClient(client *Client) {
	wm.clientsMutex.Lock()
	_, exists := wm.clients[client]
	if exists {
		delete(wm.clients, client)
		close(client.send)
	}
	total := len(wm.clients)
	wm.clientsMutex.Unlock()

	if exists {
		wm.logger.Debug(wm.ctx, "WebSocket client disconnected",
			"remote", client.remoteAddr, "clients", total, "connected_for", time.Since(client.connectedAt))
	}
}

// broadcastToClients queues message for every client, dropping clients
// whose buffers are full.
func (wm *Manager) broadcastToClients(message UpdateMessage) {
	wm.clientsMutex.RLock()
	var slow []*Client
	for client := range wm.clients {
		select {
		case client.send <- message:
		default:
			slow = append(slow, client)
		}
	}
	wm.clientsMutex.RUnlock()

	for _, client := range slow {
		wm.unregisterClient(client)
	}
}

// handleClient writes queued messages until the client goes away.
func (wm *Manager) handleClient(client *Client) {
	// The browser never sends anything; CloseRead handles control frames and
	// cancels ctx once the peer disconnects.
	ctx := client.conn.CloseRead(wm.ctx)
	defer func() {
		select {
		case wm.unregister <- client:
		case <-wm.ctx.Done():
		}
		client.conn.CloseNow()
	}()

	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return

		case message, ok := <-client.send:
			if !ok {
				client.conn.Close(websocket.StatusNormalClosure, "Server shutting down")
				return
			}
			writeCtx, cancel := context.WithTimeout(ctx, writeWait)
			err := wsjson.Write(writeCtx, client.conn, message)
			cancel()
			if err != nil {
				wm.logger.Warn(ctx, err, "WebSocket write failed", "remote", client.remoteAddr)
				return
			}

		case <-ticker.C:
			pingCtx, cancel := context.WithTimeout(ctx, writeWait)
			err := client.conn.Ping(pingCtx)
			cancel()
			if err != nil {
				return
			}
		}
	}
}

// BroadcastMessage sends a message to all connected clients. It never
// blocks; messages are dropped once the manager is shut down or the queue
// is full.
func (wm *Manager) BroadcastMessage(message UpdateMessage) {
	if message.Timestamp.IsZero() {
		message.Timestamp = time.Now()
	}

	select {
	case wm.broadcast <- message:
	case <-wm.ctx.Done():
	default:
		wm.logger.Warn(wm.ctx, nil, "Broadcast queue full, dropping message", "type", message.Type)
	}
}

// ConnectedClients returns the number of connected clients.
func (wm *Manager) ConnectedClients() int {
	wm.clientsMutex.RLock()
	defer wm.clientsMutex.RUnlock()
	return len(wm.clients)
}

// Shutdown stops the hub and disconnects every client.
func (wm *Manager) Shutdown(ctx context.Context) error {
	wm.shutdownOnce.Do(wm.cancel)

	select {
	case <-wm.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// IsShutdown reports whether Shutdown has been called.
func (wm *Manager) IsShutdown() bool {
	return wm.ctx.Err() != nil
}

package websocket

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"github.com/sakura24999/data-analysis-dashboard/internal/infrastructure"
	"github.com/sakura24999/data-analysis-dashboard/pkg/contracts/events"
)

// outbound is a serialized message and the session it is addressed to.
// An empty sessionID addresses every client.
type outbound struct {
	sessionID string
	data      []byte
}

// Hub maintains the set of active clients and routes messages to them
type Hub struct {
	// Registered clients
	clients map[*Client]struct{}

	// Outbound messages
	broadcast chan outbound

	// Register requests from the clients
	register chan *Client

	// Unregister requests from clients
	unregister chan *Client

	mu     sync.RWMutex
	logger *slog.Logger

	metrics *infrastructure.BusinessMetrics

	totalConnections int64
	messagesSent     int64
	messagesDropped  int64

	quit    chan struct{}
	done    chan struct{}
	running bool
}

// NewHub creates a hub. metrics may be nil.
func NewHub(logger *slog.Logger, metrics *infrastructure.BusinessMetrics) *Hub {
	if logger == nil {
		logger = infrastructure.GetLogger()
	}

	return &Hub{
		clients:    make(map[*Client]struct{}),
		broadcast:  make(chan outbound, 64),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		logger:     infrastructure.WithComponent(logger, "websocket.hub"),
		metrics:    metrics,
		quit:       make(chan struct{}),
		done:       make(chan struct{}),
	}
}

// Start runs the hub loop in a new goroutine
func (h *Hub) Start() {
	h.mu.Lock()
	if h.running {
		h.mu.Unlock()
		return
	}
	h.running = true
	h.mu.Unlock()

	go h.run()
}

func (h *Hub) run() {
	defer close(h.done)
	for {
		select {
		case <-h.quit:
			h.logger.Info("Hub shutting down")
			return

		case client := <-h.register:
			h.addClient(client)

		case client := <-h.unregister:
			h.removeClient(client, "normal")

		case msg := <-h.broadcast:
			h.deliver(msg)
		}
	}
}

func (h *Hub) addClient(client *Client) {
	h.mu.Lock()
	h.clients[client] = struct{}{}
	count := len(h.clients)
	h.totalConnections++
	h.mu.Unlock()

	ctx := client.context()
	if h.metrics != nil {
		h.metrics.WebSocketConnection.Add(ctx, 1)
	}
	h.logger.InfoContext(ctx, "Client registered",
		slog.Int("total_clients", count),
		slog.String("client_id", client.id),
		slog.String("session_id", client.sessionID),
		slog.String("remote_addr", client.remoteAddr))

	data, err := encode(ctx, events.MessageTypeConnect, events.Connected{
		ClientID:  client.id,
		SessionID: client.sessionID,
		Message:   "Connected to the data analysis dashboard",
	})
	if err != nil {
		return
	}
	select {
	case client.send <- data:
	default:
		h.logger.WarnContext(ctx, "Failed to send connection message - client buffer full",
			slog.String("client_id", client.id))
	}
}

// removeClient drops client and closes its send channel. It runs on the
// hub goroutine only.
func (h *Hub) removeClient(client *Client, reason string) {
	h.mu.Lock()
	if _, ok := h.clients[client]; !ok {
		h.mu.Unlock()
		return
	}
	delete(h.clients, client)
	close(client.send)
	count := len(h.clients)
	h.mu.Unlock()

	ctx := client.context()
	if h.metrics != nil {
		h.metrics.WebSocketConnection.Add(ctx, -1)
	}
	h.logger.InfoContext(ctx, "Client unregistered",
		slog.Int("total_clients", count),
		slog.String("client_id", client.id),
		slog.String("reason", reason),
		slog.Duration("connection_duration", time.Since(client.connectedAt)))
}

func (h *Hub) deliver(msg outbound) {
	h.mu.RLock()
	targets := make([]*Client, 0, len(h.clients))
	for client := range h.clients {
		if msg.sessionID == "" || client.sessionID == msg.sessionID {
			targets = append(targets, client)
		}
	}
	h.mu.RUnlock()

	for _, client := range targets {
		select {
		case client.send <- msg.data:
			h.mu.Lock()
			h.messagesSent++
			h.mu.Unlock()
		default:
			// A client that cannot keep up is disconnected
			h.mu.Lock()
			h.messagesDropped++
			h.mu.Unlock()
			h.removeClient(client, "send buffer full")
		}
	}

	h.logger.Debug("Message delivered",
		slog.String("session_id", msg.sessionID),
		slog.Int("recipients", len(targets)),
		slog.Int("message_size", len(msg.data)))
}

func encode(ctx context.Context, t events.MessageType, data interface{}) ([]byte, error) {
	msg := events.New(t, data)
	msg.TraceID = infrastructure.GetTraceID(ctx)
	return json.Marshal(msg)
}

// Publish sends an event to the clients of one session
func (h *Hub) Publish(ctx context.Context, sessionID string, t events.MessageType, data interface{}) {
	payload, err := encode(ctx, t, data)
	if err != nil {
		h.logger.ErrorContext(ctx, "Error marshaling message",
			slog.String("error", err.Error()),
			slog.String("message_type", string(t)))
		return
	}
	select {
	case h.broadcast <- outbound{sessionID: sessionID, data: payload}:
	case <-h.quit:
	case <-ctx.Done():
		h.logger.WarnContext(ctx, "Message dropped, request context done",
			slog.String("message_type", string(t)))
	}
}

// Broadcast sends an event to every client
func (h *Hub) Broadcast(ctx context.Context, t events.MessageType, data interface{}) {
	h.Publish(ctx, "", t, data)
}

// Register adds a client to the hub
func (h *Hub) Register(client *Client) {
	select {
	case h.register <- client:
	case <-h.quit:
		close(client.send)
	}
}

// Unregister removes a client from the hub
func (h *Hub) Unregister(client *Client) {
	select {
	case h.unregister <- client:
	case <-h.quit:
	}
}

// ClientCount returns the number of connected clients
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Stats returns the hub counters
func (h *Hub) Stats() map[string]interface{} {
	h.mu.RLock()
	defer h.mu.RUnlock()

	return map[string]interface{}{
		"active_clients":    len(h.clients),
		"total_connections": h.totalConnections,
		"messages_sent":     h.messagesSent,
		"messages_dropped":  h.messagesDropped,
	}
}

// Stop ends the hub loop and disconnects every client
func (h *Hub) Stop() {
	h.mu.Lock()
	if !h.running {
		h.mu.Unlock()
		return
	}
	h.running = false
	h.mu.Unlock()

	close(h.quit)
	<-h.done

	h.mu.Lock()
	defer h.mu.Unlock()
	for client := range h.clients {
		close(client.send)
		delete(h.clients, client)
		if h.metrics != nil {
			h.metrics.WebSocketConnection.Add(context.Background(), -1)
		}
	}
}

package realtime

import (
	"context"
	"encoding/json"
	"html/template"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/rewardscraft/studio/internal/studio"
)

const (
	// PingInterval and PongWait are used for heartbeat.
	PingInterval = 30
	PongWait     = 60

	EventState         = "state"
	EventError         = "error"
	EventSessionClosed = "session_closed"

	publishQueueSize = 256
)

// StatePayload is pushed to every client of a session after each transition.
type StatePayload struct {
	studio.Snapshot
	PreviewHTML template.HTML `json:"preview_html"`
}

// Hub maintains session_id -> set of connections and pushes state to them.
// With Redis configured, state is published only and the subscription delivers it, so every
// instance's clients of a session see the same stream.
type Hub struct {
	sessions map[uuid.UUID]map[string]*Client
	subs     map[uuid.UUID]func() // cancel Redis subscription per session
	mu       sync.RWMutex
	logger   *zap.Logger
	redis    RedisPublisher
	redisSub RedisSubscriber
	queue    chan outbound
}

type outbound struct {
	sessionID uuid.UUID
	event     string
	data      []byte
}

// RedisPublisher is the interface for publishing to Redis (for cross-instance fan-out).
type RedisPublisher interface {
	PublishSessionEvent(ctx context.Context, sessionID uuid.UUID, event string, payload []byte) error
}

// RedisSubscriber subscribes to session channels and invokes handler for incoming events.
type RedisSubscriber interface {
	SubscribeSession(sessionID uuid.UUID, handler func(event string, payload []byte)) (cancel func(), err error)
}

// NewHub creates a new WebSocket hub. redisPub and redisSub may be nil.
func NewHub(logger *zap.Logger, redisPub RedisPublisher, redisSub RedisSubscriber) *Hub {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Hub{
		sessions: make(map[uuid.UUID]map[string]*Client),
		subs:     make(map[uuid.UUID]func()),
		logger:   logger,
		redis:    redisPub,
		redisSub: redisSub,
		queue:    make(chan outbound, publishQueueSize),
	}
}

// Fanout reports whether events travel through Redis.
func (h *Hub) Fanout() bool { return h.redis != nil && h.redisSub != nil }

// Run publishes queued events to Redis in order until ctx is done.
func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case m := <-h.queue:
			if err := h.redis.PublishSessionEvent(ctx, m.sessionID, m.event, m.data); err != nil {
				h.logger.Warn("publish session event", zap.String("session_id", m.sessionID.String()), zap.Error(err))
				// fall back to local delivery so this instance's clients still see it
				h.BroadcastToSession(m.sessionID, m.event, json.RawMessage(m.data))
			}
		}
	}
}

// Register adds a client to a session room. Starts the Redis subscription for the session if first client.
func (h *Hub) Register(c *Client) {
	h.mu.Lock()
	if h.sessions[c.SessionID] == nil {
		h.sessions[c.SessionID] = make(map[string]*Client)
		if h.Fanout() {
			sessionID := c.SessionID
			cancel, err := h.redisSub.SubscribeSession(sessionID, func(event string, payload []byte) {
				h.BroadcastToSession(sessionID, event, json.RawMessage(payload))
			})
			if err != nil {
				h.logger.Warn("subscribe session", zap.String("session_id", sessionID.String()), zap.Error(err))
			} else {
				h.subs[sessionID] = cancel
			}
		}
	}
	h.sessions[c.SessionID][c.ID] = c
	h.mu.Unlock()
	h.logger.Debug("client joined session", zap.String("client_id", c.ID), zap.String("session_id", c.SessionID.String()))
}

// Unregister removes a client. Cancels the Redis subscription when the last client leaves.
func (h *Hub) Unregister(c *Client) {
	h.mu.Lock()
	if m, ok := h.sessions[c.SessionID]; ok {
		if _, ok := m[c.ID]; ok {
			delete(m, c.ID)
			close(c.send)
		}
		if len(m) == 0 {
			delete(h.sessions, c.SessionID)
			if cancel, ok := h.subs[c.SessionID]; ok {
				cancel()
				delete(h.subs, c.SessionID)
			}
		}
	}
	h.mu.Unlock()
	h.logger.Debug("client left session", zap.String("client_id", c.ID), zap.String("session_id", c.SessionID.String()))
}

// Notify pushes a committed snapshot with its rendered preview to the session's clients.
func (h *Hub) Notify(snap studio.Snapshot) {
	payload, err := statePayload(snap)
	if err != nil {
		h.logger.Error("render state", zap.String("session_id", snap.SessionID.String()), zap.Error(err))
		return
	}
	h.emit(snap.SessionID, EventState, payload)
}

// SessionClosed tells the session's clients the draft is gone.
func (h *Hub) SessionClosed(id uuid.UUID) {
	h.emit(id, EventSessionClosed, map[string]string{"session_id": id.String()})
}

func (h *Hub) emit(sessionID uuid.UUID, event string, payload interface{}) {
	if !h.Fanout() {
		h.BroadcastToSession(sessionID, event, payload)
		return
	}
	data, err := json.Marshal(payload)
	if err != nil {
		h.logger.Error("marshal event", zap.String("event", event), zap.Error(err))
		return
	}
	select {
	case h.queue <- outbound{sessionID: sessionID, event: event, data: data}:
	default:
		h.logger.Warn("publish queue full, delivering locally", zap.String("session_id", sessionID.String()))
		h.BroadcastToSession(sessionID, event, json.RawMessage(data))
	}
}

// BroadcastToSession sends a message to all local clients of a session.
func (h *Hub) BroadcastToSession(sessionID uuid.UUID, event string, payload interface{}) {
	msg, err := encode(event, payload)
	if err != nil {
		h.logger.Error("marshal event", zap.String("event", event), zap.Error(err))
		return
	}
	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, c := range h.sessions[sessionID] {
		select {
		case c.send <- msg:
		default:
			// buffer full, skip
		}
	}
}

// SendToClient sends a message to a single client.
func (h *Hub) SendToClient(c *Client, event string, payload interface{}) {
	msg, err := encode(event, payload)
	if err != nil {
		return
	}
	h.mu.RLock()
	defer h.mu.RUnlock()
	if _, ok := h.sessions[c.SessionID][c.ID]; !ok {
		return
	}
	select {
	case c.send <- msg:
	default:
	}
}

// ClientCount returns the number of local connections for a session.
func (h *Hub) ClientCount(sessionID uuid.UUID) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.sessions[sessionID])
}

func statePayload(snap studio.Snapshot) (StatePayload, error) {
	html, err := studio.RenderPreview(snap)
	if err != nil {
		return StatePayload{}, err
	}
	return StatePayload{Snapshot: snap, PreviewHTML: html}, nil
}

func encode(event string, payload interface{}) (WSMessage, error) {
	var data []byte
	switch v := payload.(type) {
	case []byte:
		data = v
	case json.RawMessage:
		data = v
	default:
		var err error
		if data, err = json.Marshal(payload); err != nil {
			return WSMessage{}, err
		}
	}
	return WSMessage{Event: event, Data: data}, nil
}

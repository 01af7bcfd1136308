package realtime

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/rewardscraft/studio/internal/auth"
	"github.com/rewardscraft/studio/internal/customizer"
	"github.com/rewardscraft/studio/internal/middleware"
	"github.com/rewardscraft/studio/internal/models"
	"github.com/rewardscraft/studio/internal/studio"
)

const (
	readLimit    = 65536
	writeTimeout = 10 * time.Second
	saveTimeout  = 5 * time.Second
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // the session token authorizes the connection
	},
}

// WSMessage is the WebSocket message envelope.
type WSMessage struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data,omitempty"`
}

// ErrorPayload is sent when an inbound event cannot be applied.
type ErrorPayload struct {
	Event   string `json:"event"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Client represents a single WebSocket connection to a studio session.
// session is nil for watchers of a session held by another instance.
type Client struct {
	ID        string
	SessionID uuid.UUID
	session   *studio.Session
	hub       *Hub
	conn      *websocket.Conn
	send      chan WSMessage
	logger    *zap.Logger
}

// ServeWs handles the WebSocket upgrade and runs the client loop.
func ServeWs(hub *Hub, registry *studio.Registry, tokens *auth.TokenService, logger *zap.Logger) gin.HandlerFunc {
	if logger == nil {
		logger = zap.NewNop()
	}
	return func(c *gin.Context) {
		token, ok := middleware.TokenFromRequest(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "session token required"})
			return
		}
		claims, err := tokens.Validate(token)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			return
		}
		session, err := registry.Get(claims.SessionID)
		if err != nil && !hub.Fanout() {
			c.JSON(http.StatusNotFound, gin.H{"error": "session not found"})
			return
		}

		conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			logger.Warn("websocket upgrade failed", zap.Error(err))
			return
		}

		client := &Client{
			ID:        uuid.New().String(),
			SessionID: claims.SessionID,
			session:   session,
			hub:       hub,
			conn:      conn,
			send:      make(chan WSMessage, 256),
			logger:    logger,
		}
		hub.Register(client)
		if session != nil {
			client.sendState(session.Snapshot())
		}
		go client.writePump()
		client.readPump()
	}
}

func (c *Client) readPump() {
	defer func() {
		c.hub.Unregister(c)
		_ = c.conn.Close()
	}()

	c.conn.SetReadLimit(readLimit)
	_ = c.conn.SetReadDeadline(time.Now().Add(PongWait * time.Second))
	c.conn.SetPongHandler(func(string) error {
		_ = c.conn.SetReadDeadline(time.Now().Add(PongWait * time.Second))
		return nil
	})

	for {
		var msg WSMessage
		if err := c.conn.ReadJSON(&msg); err != nil {
			break
		}
		_ = c.conn.SetReadDeadline(time.Now().Add(PongWait * time.Second))

		if c.session == nil {
			c.sendError(msg.Event, "read_only", "session is held by another instance")
			continue
		}
		if err := c.handle(msg); err != nil {
			c.logger.Debug("ws event rejected", zap.String("event", msg.Event), zap.Error(err))
			c.sendError(msg.Event, errorCode(err), err.Error())
		}
	}
}

// handle applies one inbound event. Successful transitions reach every client through the hub.
func (c *Client) handle(msg WSMessage) error {
	s := c.session
	switch msg.Event {
	case "sync":
		c.sendState(s.Snapshot())
	case "campaign":
		u, err := studio.DecodeCampaignCommand(msg.Data)
		if err != nil {
			return err
		}
		if _, err := s.UpdateCampaign(u); err != nil {
			return err
		}
	case "voucher":
		updates, err := studio.DecodeVoucherCommands(msg.Data)
		if err != nil {
			return err
		}
		if _, err := s.UpdateVoucher(updates...); err != nil {
			return err
		}
	case "field":
		var in studio.FieldInput
		if err := json.Unmarshal(msg.Data, &in); err != nil {
			return err
		}
		if _, err := s.ApplyField(in); err != nil {
			return err
		}
	case "preset":
		var in studio.PresetInput
		if err := json.Unmarshal(msg.Data, &in); err != nil {
			return err
		}
		if _, err := s.ApplyPreset(in.Name); err != nil {
			return err
		}
	case "tab":
		var in studio.TabInput
		if err := json.Unmarshal(msg.Data, &in); err != nil {
			return err
		}
		tab, err := studio.ParseTab(in.Tab)
		if err != nil {
			return err
		}
		if _, err := s.SetTab(tab); err != nil {
			return err
		}
	case "drag_over":
		if _, err := s.DragOver(); err != nil {
			return err
		}
	case "drag_leave":
		if _, err := s.DragLeave(); err != nil {
			return err
		}
	case "remove_logo":
		if _, err := s.RemoveLogo(context.Background()); err != nil {
			return err
		}
	case "save":
		ctx, cancel := context.WithTimeout(context.Background(), saveTimeout)
		defer cancel()
		if _, err := s.Save(ctx); err != nil {
			return err
		}
		c.hub.SendToClient(c, "saved", map[string]string{"session_id": c.SessionID.String()})
	default:
		// ignore
	}
	return nil
}

func (c *Client) sendState(snap studio.Snapshot) {
	payload, err := statePayload(snap)
	if err != nil {
		c.logger.Error("render state", zap.Error(err))
		return
	}
	c.hub.SendToClient(c, EventState, payload)
}

func (c *Client) sendError(event, code, message string) {
	c.hub.SendToClient(c, EventError, ErrorPayload{Event: event, Code: code, Message: message})
}

func errorCode(err error) string {
	var (
		syntaxErr *json.SyntaxError
		typeErr   *json.UnmarshalTypeError
	)
	switch {
	case errors.Is(err, models.ErrUnknownField):
		return "unknown_field"
	case errors.Is(err, models.ErrInvalidValue), errors.As(err, &syntaxErr), errors.As(err, &typeErr):
		return "invalid_value"
	case errors.Is(err, customizer.ErrUnknownPreset):
		return "unknown_preset"
	case errors.Is(err, studio.ErrInvalidTab):
		return "invalid_tab"
	case errors.Is(err, studio.ErrSessionClosed):
		return "session_closed"
	default:
		return "internal"
	}
}

func (c *Client) writePump() {
	ticker := time.NewTicker(PingInterval * time.Second)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case msg, ok := <-c.send:
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
			if err := c.conn.WriteJSON(msg); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

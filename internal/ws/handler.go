package ws

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.opentelemetry.io/otel"
	"go.uber.org/zap"

	"factory-chat-service/internal/auth"
	"factory-chat-service/internal/chat"
	"factory-chat-service/internal/models"
	"factory-chat-service/internal/observability"
)

const wsEventsRoutingKey = "ws_events.chat"

// Handler owns the websocket endpoint: handshake authentication,
// registration with hub and presence, and the per-connection read loop.
type Handler struct {
	hub           *Hub
	presence      *Presence
	authenticator auth.Authenticator
	service       *chat.Service
	logger        *zap.Logger
}

// NewHandler constructs a Handler.
func NewHandler(hub *Hub, presence *Presence, authenticator auth.Authenticator, service *chat.Service, logger *zap.Logger) *Handler {
	return &Handler{hub: hub, presence: presence, authenticator: authenticator, service: service, logger: logger}
}

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

type connMeta struct {
	requestID string
	traceID   string
	deviceID  string
	ip        string
}

// Handle authenticates the handshake, upgrades the connection and
// starts the read loop. A failed authentication rejects the attempt
// before upgrade; no partial session is established.
func (h *Handler) Handle(c *gin.Context) {
	ctx, span := otel.Tracer("factory-chat-service/ws").Start(c.Request.Context(), "ws.handshake")
	defer span.End()
	c.Request = c.Request.WithContext(ctx)

	token := resolveToken(c.Request)
	identity, err := h.authenticator.Authenticate(ctx, token)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		return
	}

	client := NewClient(conn, identity)
	h.hub.Register(client)
	h.presence.AddConnection(identity.UserID, client.ID())

	meta := connMeta{
		requestID: observability.RequestIDFromRequest(c.Request),
		traceID:   span.SpanContext().TraceID().String(),
		deviceID:  observability.DeviceIDFromRequest(c.Request),
		ip:        observability.IPFromRequest(c.Request),
	}

	observability.IncWSActive()
	observability.IncWSEvent("ws_connect")
	h.publishConnEvent(ctx, client, meta, "ws_connect", "")

	go h.readLoop(client, meta)
}

// readLoop runs for the connection's lifetime. It uses a fresh
// context; the handshake request context dies when Handle returns.
func (h *Handler) readLoop(client *Client, meta connMeta) {
	ctx := context.Background()
	var closeReason string
	defer func() {
		h.hub.Unregister(client)
		h.presence.RemoveConnection(client.UserID(), client.ID())
		observability.DecWSActive()
		observability.IncWSEvent("ws_disconnect")
		h.publishConnEvent(ctx, client, meta, "ws_disconnect", closeReason)
		_ = client.Close()
	}()

	for {
		raw, err := client.ReadMessage()
		if err != nil {
			closeReason = err.Error()
			if !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				observability.IncWSEvent("ws_error")
				h.publishConnEvent(ctx, client, meta, "ws_error", closeReason)
			}
			return
		}
		h.dispatch(ctx, client, raw)
	}
}

// dispatch handles one inbound frame. Errors and panics stay scoped to
// this event; nothing here may close the connection or disturb other
// connections.
func (h *Handler) dispatch(ctx context.Context, client *Client, raw []byte) {
	defer func() {
		if r := recover(); r != nil {
			h.logger.Error("panic in event handler",
				zap.Any("panic", r),
				zap.String("conn_id", client.ID()),
				zap.Int("user_id", client.UserID()))
		}
	}()

	ev, err := ParseInbound(raw)
	if err != nil {
		observability.IncWSEvent("bad_event")
		_ = client.Send(models.EventMessageError, models.ErrorEvent{Error: err.Error()})
		return
	}

	switch ev := ev.(type) {
	case JoinConversations:
		observability.IncWSEvent("join_conversations")
		h.service.JoinConversations(ctx, client, ev.ConversationIDs)
	case SendMessage:
		observability.IncWSEvent("send_message")
		h.service.SendMessage(ctx, client, chat.SendMessageInput{
			ConversationID: ev.ConversationID,
			Content:        ev.Content,
			MessageType:    ev.MessageType,
		})
	case TypingStart:
		observability.IncWSEvent("typing_start")
		h.service.TypingStart(client, ev.ConversationID)
	case TypingStop:
		observability.IncWSEvent("typing_stop")
		h.service.TypingStop(client, ev.ConversationID)
	case MarkMessagesRead:
		observability.IncWSEvent("mark_messages_read")
		h.service.MarkMessagesRead(ctx, client, ev.ConversationID, ev.MessageIDs)
	case TokenRefreshed:
		// Client-driven refresh; the open connection is unaffected.
		observability.IncWSEvent("token_refreshed")
	}
}

func (h *Handler) publishConnEvent(ctx context.Context, client *Client, meta connMeta, event, reason string) {
	_ = observability.PublishEvent(ctx, wsEventsRoutingKey, observability.EventEnvelope{
		EventType: "ws_events",
		EventName: event,
		Service:   "factory-chat-service",
		Payload: map[string]interface{}{
			"ws": map[string]interface{}{
				"event":       event,
				"conn_id":     client.ID(),
				"duration_ms": time.Since(client.ConnectedAt()).Milliseconds(),
				"reason":      reason,
			},
			"identity": map[string]interface{}{
				"user_id":   client.UserID(),
				"device_id": meta.deviceID,
				"ip":        meta.ip,
			},
		},
	}, observability.BuildHeaders(meta.requestID, meta.traceID))
}

// resolveToken extracts the access credential from the handshake, in
// priority order: explicit auth field, bearer header, cookie.
func resolveToken(r *http.Request) string {
	if token := r.URL.Query().Get("token"); token != "" {
		return token
	}
	if header := r.Header.Get("Authorization"); header != "" {
		parts := strings.SplitN(header, " ", 2)
		if len(parts) == 2 && strings.EqualFold(parts[0], "bearer") {
			return parts[1]
		}
	}
	if cookie, err := r.Cookie("access_token"); err == nil {
		return cookie.Value
	}
	return ""
}

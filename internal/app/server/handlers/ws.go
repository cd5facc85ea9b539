package handlers

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/sidharthhcj/Real-time-chat-Call-application/internal/app/server/ws"
	"github.com/sidharthhcj/Real-time-chat-Call-application/internal/config"
	"github.com/sidharthhcj/Real-time-chat-Call-application/internal/core/contracts"
	"github.com/sidharthhcj/Real-time-chat-Call-application/internal/core/domain"
	"github.com/sidharthhcj/Real-time-chat-Call-application/internal/core/services"
	"github.com/sidharthhcj/Real-time-chat-Call-application/internal/platform/logger"
	"github.com/sidharthhcj/Real-time-chat-Call-application/pkg/middleware"
)

type eventHandler func(ctx context.Context, c contracts.Client, data json.RawMessage)

// WSHandler drives the per-connection lifecycle: the request arrives already
// authenticated (middleware), the connection registers presence, dispatches
// protocol events sequentially, and on close deregisters and drops its room
// memberships.
type WSHandler struct {
	presence contracts.Presence
	rooms    contracts.Rooms
	mirror   contracts.PresenceMirror
	chat     *services.ChatService
	relay    *services.SignalingService
	presCfg  config.PresenceConfig
	dispatch map[string]eventHandler
}

func NewWSHandler(
	presence contracts.Presence,
	rooms contracts.Rooms,
	mirror contracts.PresenceMirror,
	chat *services.ChatService,
	relay *services.SignalingService,
	presCfg config.PresenceConfig,
) *WSHandler {
	h := &WSHandler{
		presence: presence,
		rooms:    rooms,
		mirror:   mirror,
		chat:     chat,
		relay:    relay,
		presCfg:  presCfg,
	}
	h.dispatch = map[string]eventHandler{
		domain.EventJoinRoom:     h.onJoinRoom,
		domain.EventSendMessage:  h.onSendMessage,
		domain.EventCallUser:     h.onCallUser,
		domain.EventAnswerCall:   h.onAnswerCall,
		domain.EventIceCandidate: h.onIceCandidate,
		domain.EventEndCall:      h.onEndCall,
	}
	return h
}

func (h *WSHandler) Handler(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContext(r.Context())
	span := trace.SpanFromContext(r.Context())
	userID, ok := r.Context().Value(middleware.UserIDKey).(string)
	if !ok || userID == "" {
		log.ErrorContext(r.Context(), "ws handler - unauthorised missing user_id")
		http.Error(w, "Unauthorized: User ID missing", http.StatusUnauthorized)
		return
	}
	span.SetAttributes(attribute.String("user.id", userID))

	// The session outlives the HTTP request; detach from its cancellation.
	// The deferred cancel also covers transports that die without a close
	// frame, where the close handler never fires.
	sessionCtx := context.WithoutCancel(r.Context())
	ctx, cancel := context.WithCancel(sessionCtx)
	defer cancel()
	upgrader := websocket.Upgrader{
		ReadBufferSize:  32,
		WriteBufferSize: 32,
		CheckOrigin: func(r *http.Request) bool {
			return true // tighten later
		},
	}
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.ErrorContext(r.Context(), "ws handler - upgrade failed", "err", err)
		return
	}
	defer conn.Close()
	conn.SetCloseHandler(func(code int, text string) error {
		log.Info("ws handler - ws closed", "user_id", userID)
		cancel()
		return nil
	})

	socket := ws.NewWebSocket(ctx, conn)
	client := ws.NewClient(ctx, socket, uuid.NewString(), userID)

	// Registration overwrites any previous connection of this user: last
	// writer wins, the superseded connection is not notified.
	h.presence.Register(userID, client)
	if err := h.mirror.Touch(ctx, userID, h.presCfg.TTL); err != nil {
		log.Warn("ws handler - presence mirror touch failed", "user_id", userID, "err", err)
	}
	defer h.teardown(sessionCtx, log, client)
	log.InfoContext(r.Context(), "ws handler - connection established", "user_id", userID, "conn_id", client.ID())

	go h.heartbeat(ctx, log, userID)

	// Sequential dispatch preserves per-connection event order.
	socket.ReadLoop(func(data []byte) {
		h.route(ctx, log, client, data)
	})
	// Stop the heartbeat before teardown clears the mirror, so a late tick
	// cannot mark the user online again.
	cancel()
}

// route decodes the envelope and hands the payload to the handler for its
// tag. Malformed or unknown events are dropped; a bad frame never
// terminates the connection.
func (h *WSHandler) route(ctx context.Context, log *slog.Logger, c contracts.Client, raw []byte) {
	var env domain.Envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		log.Warn("ws handler - malformed frame dropped", "user_id", c.UserID())
		return
	}
	handle, ok := h.dispatch[env.Event]
	if !ok {
		log.Warn("ws handler - unknown event dropped", "event", env.Event, "user_id", c.UserID())
		return
	}
	handle(ctx, c, env.Data)
}

func (h *WSHandler) onJoinRoom(ctx context.Context, c contracts.Client, data json.RawMessage) {
	var d domain.JoinRoomData
	if err := json.Unmarshal(data, &d); err != nil || d.RoomID == "" {
		return
	}
	h.rooms.Join(d.RoomID, c)
}

func (h *WSHandler) onSendMessage(ctx context.Context, c contracts.Client, data json.RawMessage) {
	var d domain.SendMessageData
	if err := json.Unmarshal(data, &d); err != nil {
		return
	}
	// Send reports persistence failures to the sender itself; nothing to do
	// with the error here.
	_ = h.chat.Send(ctx, c, d)
}

func (h *WSHandler) onCallUser(ctx context.Context, c contracts.Client, data json.RawMessage) {
	var d domain.CallUserData
	if err := json.Unmarshal(data, &d); err != nil {
		return
	}
	h.relay.CallUser(ctx, c.UserID(), d)
}

func (h *WSHandler) onAnswerCall(ctx context.Context, c contracts.Client, data json.RawMessage) {
	var d domain.AnswerCallData
	if err := json.Unmarshal(data, &d); err != nil {
		return
	}
	h.relay.AnswerCall(ctx, c.UserID(), d)
}

func (h *WSHandler) onIceCandidate(ctx context.Context, c contracts.Client, data json.RawMessage) {
	var d domain.IceCandidateData
	if err := json.Unmarshal(data, &d); err != nil {
		return
	}
	h.relay.IceCandidate(ctx, c.UserID(), d)
}

func (h *WSHandler) onEndCall(ctx context.Context, c contracts.Client, data json.RawMessage) {
	var d domain.EndCallData
	if err := json.Unmarshal(data, &d); err != nil {
		return
	}
	h.relay.EndCall(ctx, c.UserID(), d)
}

// teardown runs once when the transport closes. Presence is removed only if
// this connection still owns the entry; a mid-call peer is not proactively
// notified, it discovers the disappearance when its next signal fails to
// resolve.
func (h *WSHandler) teardown(ctx context.Context, log *slog.Logger, c contracts.Client) {
	h.presence.Unregister(c.UserID(), c.ID())
	h.rooms.DropConnection(c.ID())
	c.Close()
	// Only clear the mirror when no newer connection took over the slot.
	if _, stillOnline := h.presence.Resolve(c.UserID()); !stillOnline {
		clearCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
		if err := h.mirror.Clear(clearCtx, c.UserID()); err != nil {
			log.Warn("ws handler - presence mirror clear failed", "user_id", c.UserID(), "err", err)
		}
	}
	log.Info("ws handler - connection torn down", "user_id", c.UserID(), "conn_id", c.ID())
}

func (h *WSHandler) heartbeat(ctx context.Context, log *slog.Logger, userID string) {
	ticker := time.NewTicker(h.presCfg.RefreshInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := h.mirror.Touch(ctx, userID, h.presCfg.TTL); err != nil {
				log.Warn("ws handler - heartbeat touch failed", "user_id", userID, "err", err)
			}
		}
	}
}

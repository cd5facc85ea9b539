package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/sidharthhcj/Real-time-chat-Call-application/internal/app/registry"
	"github.com/sidharthhcj/Real-time-chat-Call-application/internal/config"
	"github.com/sidharthhcj/Real-time-chat-Call-application/internal/core/domain"
	"github.com/sidharthhcj/Real-time-chat-Call-application/internal/core/services"
	"github.com/sidharthhcj/Real-time-chat-Call-application/pkg/middleware"
)

type memMirror struct {
	mu   sync.Mutex
	seen map[string]bool
}

func newMemMirror() *memMirror {
	return &memMirror{seen: make(map[string]bool)}
}

func (m *memMirror) Touch(ctx context.Context, userID string, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.seen[userID] = true
	return nil
}

func (m *memMirror) Online(ctx context.Context, userID string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.seen[userID], nil
}

func (m *memMirror) Clear(ctx context.Context, userID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.seen, userID)
	return nil
}

type memMessageRepo struct {
	mu       sync.Mutex
	messages []domain.Message
	failWith error
}

func (r *memMessageRepo) Append(ctx context.Context, msg *domain.Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failWith != nil {
		return r.failWith
	}
	r.messages = append(r.messages, *msg)
	return nil
}

func (r *memMessageRepo) ListByRoom(ctx context.Context, roomID string) ([]domain.Message, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.Message
	for _, m := range r.messages {
		if m.RoomID == roomID {
			out = append(out, m)
		}
	}
	return out, nil
}

type passTx struct{}

func (passTx) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

type relayFixture struct {
	srv      *httptest.Server
	tokenSvc *services.TokenService
	presence *registry.Presence
	repo     *memMessageRepo
	mirror   *memMirror
}

func newRelayFixture(t *testing.T) *relayFixture {
	t.Helper()
	return newRelayFixtureWithPresence(t, config.PresenceConfig{
		TTL:             time.Minute,
		RefreshInterval: time.Minute,
	})
}

func newRelayFixtureWithPresence(t *testing.T, presCfg config.PresenceConfig) *relayFixture {
	t.Helper()
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	presence := registry.NewPresence()
	rooms := registry.NewRooms()
	repo := &memMessageRepo{}
	mirror := newMemMirror()
	tokenSvc := services.NewTokenService("integration-secret")
	chatSvc := services.NewChatService(log, repo, rooms, passTx{})
	relaySvc := services.NewSignalingService(log, presence)
	wsHandler := NewWSHandler(presence, rooms, mirror, chatSvc, relaySvc, presCfg)

	mux := http.NewServeMux()
	auth := middleware.AuthMiddleware(tokenSvc)
	logging := middleware.RequestLogger(log)
	mux.Handle("/ws", logging(auth(http.HandlerFunc(wsHandler.Handler))))

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return &relayFixture{
		srv:      srv,
		tokenSvc: tokenSvc,
		presence: presence,
		repo:     repo,
		mirror:   mirror,
	}
}

func (f *relayFixture) dial(t *testing.T, userID string) *websocket.Conn {
	t.Helper()
	token, err := f.tokenSvc.GenerateToken(userID)
	if err != nil {
		t.Fatalf("GenerateToken(%s): %v", userID, err)
	}
	url := "ws" + strings.TrimPrefix(f.srv.URL, "http") + "/ws"
	header := http.Header{"Authorization": {"Bearer " + token}}
	prev, _ := f.presence.Resolve(userID)
	conn, _, err := websocket.DefaultDialer.Dial(url, header)
	if err != nil {
		t.Fatalf("dial as %s: %v", userID, err)
	}
	t.Cleanup(func() { conn.Close() })

	// Wait until this connection's registration landed, so a follow-up
	// signal toward this user cannot race it. On reconnect the entry must
	// have changed hands, not merely exist.
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cur, ok := f.presence.Resolve(userID); ok && cur != prev {
			return conn
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("presence for %s never appeared", userID)
	return nil
}

func sendEvent(t *testing.T, conn *websocket.Conn, event string, data any) {
	t.Helper()
	frame, err := domain.NewEnvelope(event, data)
	if err != nil {
		t.Fatalf("envelope: %v", err)
	}
	if err := conn.WriteMessage(websocket.TextMessage, frame); err != nil {
		t.Fatalf("write %s: %v", event, err)
	}
}

func readEvent(t *testing.T, conn *websocket.Conn) domain.Envelope {
	t.Helper()
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, raw, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	var env domain.Envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		t.Fatalf("unmarshal frame %q: %v", raw, err)
	}
	return env
}

// expectSilence asserts nothing arrives within the window.
func expectSilence(t *testing.T, conn *websocket.Conn) {
	t.Helper()
	conn.SetReadDeadline(time.Now().Add(250 * time.Millisecond))
	if _, raw, err := conn.ReadMessage(); err == nil {
		t.Fatalf("expected no delivery, got frame %s", raw)
	}
	conn.SetReadDeadline(time.Time{})
}

func TestWS_RejectsMissingAndInvalidToken(t *testing.T) {
	f := newRelayFixture(t)
	url := "ws" + strings.TrimPrefix(f.srv.URL, "http") + "/ws"

	_, resp, err := websocket.DefaultDialer.Dial(url, nil)
	if !errors.Is(err, websocket.ErrBadHandshake) {
		t.Fatalf("dial without token: err = %v, want bad handshake", err)
	}
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", resp.StatusCode)
	}

	header := http.Header{"Authorization": {"Bearer bogus"}}
	_, resp, err = websocket.DefaultDialer.Dial(url, header)
	if !errors.Is(err, websocket.ErrBadHandshake) || resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("dial with bogus token: err=%v status=%d, want bad handshake 401", err, resp.StatusCode)
	}
}

func TestWS_ChatRoundTrip(t *testing.T) {
	f := newRelayFixture(t)
	alice := f.dial(t, "alice")
	bob := f.dial(t, "bob")

	room := domain.RoomID("alice", "bob")
	sendEvent(t, alice, domain.EventJoinRoom, domain.JoinRoomData{RoomID: room})
	sendEvent(t, bob, domain.EventJoinRoom, domain.JoinRoomData{RoomID: room})

	// join-room has no reply; make sure both joins landed before sending by
	// waiting for the message to come through with a generous deadline.
	time.Sleep(50 * time.Millisecond)

	sendEvent(t, alice, domain.EventSendMessage, domain.SendMessageData{
		RoomID:   room,
		Message:  "hi",
		Receiver: "bob",
	})

	env := readEvent(t, bob)
	if env.Event != domain.EventReceiveMessage {
		t.Fatalf("bob got %q, want receive-message", env.Event)
	}
	var d domain.ReceiveMessageData
	if err := json.Unmarshal(env.Data, &d); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if d.Message != "hi" || d.Sender != "alice" || d.RoomID != room {
		t.Fatalf("receive-message = %+v", d)
	}

	// The sender's own connection receives nothing back.
	expectSilence(t, alice)

	f.repo.mu.Lock()
	persisted := len(f.repo.messages)
	f.repo.mu.Unlock()
	if persisted != 1 {
		t.Fatalf("persisted %d messages, want 1", persisted)
	}
}

func TestWS_PersistFailureNotifiesSenderOnly(t *testing.T) {
	f := newRelayFixture(t)
	alice := f.dial(t, "alice")
	bob := f.dial(t, "bob")

	room := domain.RoomID("alice", "bob")
	sendEvent(t, alice, domain.EventJoinRoom, domain.JoinRoomData{RoomID: room})
	sendEvent(t, bob, domain.EventJoinRoom, domain.JoinRoomData{RoomID: room})
	time.Sleep(50 * time.Millisecond)

	f.repo.mu.Lock()
	f.repo.failWith = errors.New("store rejected write")
	f.repo.mu.Unlock()

	sendEvent(t, alice, domain.EventSendMessage, domain.SendMessageData{
		RoomID:   room,
		Message:  "hi",
		Receiver: "bob",
	})

	env := readEvent(t, alice)
	if env.Event != domain.EventError {
		t.Fatalf("alice got %q, want error", env.Event)
	}
	expectSilence(t, bob)
}

func TestWS_CallSignalingRoundTrip(t *testing.T) {
	f := newRelayFixture(t)
	alice := f.dial(t, "alice")
	bob := f.dial(t, "bob")

	offer := json.RawMessage(`{"type":"offer","sdp":"v=0"}`)
	sendEvent(t, alice, domain.EventCallUser, domain.CallUserData{To: "bob", Offer: offer})

	env := readEvent(t, bob)
	if env.Event != domain.EventIncomingCall {
		t.Fatalf("bob got %q, want incoming-call", env.Event)
	}
	var in domain.IncomingCallData
	if err := json.Unmarshal(env.Data, &in); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if in.From != "alice" || string(in.Offer) != string(offer) {
		t.Fatalf("incoming-call = %+v", in)
	}

	answer := json.RawMessage(`{"type":"answer","sdp":"v=0"}`)
	sendEvent(t, bob, domain.EventAnswerCall, domain.AnswerCallData{To: "alice", Answer: answer})

	env = readEvent(t, alice)
	if env.Event != domain.EventCallAccepted {
		t.Fatalf("alice got %q, want call-accepted", env.Event)
	}
	var acc domain.CallAcceptedData
	if err := json.Unmarshal(env.Data, &acc); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if acc.From != "bob" || string(acc.Answer) != string(answer) {
		t.Fatalf("call-accepted = %+v", acc)
	}
}

func TestWS_CallToOfflineUserIsSilent(t *testing.T) {
	f := newRelayFixture(t)
	alice := f.dial(t, "alice")

	// carol never connected.
	sendEvent(t, alice, domain.EventCallUser, domain.CallUserData{
		To:    "carol",
		Offer: json.RawMessage(`{"type":"offer"}`),
	})

	expectSilence(t, alice)
}

func TestWS_DisconnectMidCall(t *testing.T) {
	f := newRelayFixture(t)
	alice := f.dial(t, "alice")
	bob := f.dial(t, "bob")

	sendEvent(t, alice, domain.EventCallUser, domain.CallUserData{
		To:    "bob",
		Offer: json.RawMessage(`{"type":"offer"}`),
	})
	if env := readEvent(t, bob); env.Event != domain.EventIncomingCall {
		t.Fatalf("bob got %q, want incoming-call", env.Event)
	}

	// bob drops mid-call.
	bob.Close()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if _, ok := f.presence.Resolve("bob"); !ok {
			break
		}
		time.Sleep(5 * time.Millisecond)
	}
	if _, ok := f.presence.Resolve("bob"); ok {
		t.Fatal("presence still resolves bob after disconnect")
	}

	// Subsequent signaling toward bob is silently dropped; alice gets no
	// error and no proactive end-call.
	sendEvent(t, alice, domain.EventIceCandidate, domain.IceCandidateData{
		To:        "bob",
		Candidate: json.RawMessage(`{"candidate":"c0"}`),
	})
	expectSilence(t, alice)
}

func TestWS_MalformedFrameDoesNotKillConnection(t *testing.T) {
	f := newRelayFixture(t)
	alice := f.dial(t, "alice")
	bob := f.dial(t, "bob")

	if err := alice.WriteMessage(websocket.TextMessage, []byte("{not json")); err != nil {
		t.Fatalf("write garbage: %v", err)
	}
	// Missing required fields: dropped, no error event mandated.
	sendEvent(t, alice, domain.EventJoinRoom, domain.JoinRoomData{})

	// The connection still works afterwards.
	sendEvent(t, alice, domain.EventCallUser, domain.CallUserData{
		To:    "bob",
		Offer: json.RawMessage(`{"type":"offer"}`),
	})
	if env := readEvent(t, bob); env.Event != domain.EventIncomingCall {
		t.Fatalf("bob got %q, want incoming-call after malformed frames", env.Event)
	}
}

func TestWS_AbnormalCloseStopsHeartbeat(t *testing.T) {
	f := newRelayFixtureWithPresence(t, config.PresenceConfig{
		TTL:             time.Minute,
		RefreshInterval: 50 * time.Millisecond,
	})
	bob := f.dial(t, "bob")

	// Kill the transport without a close frame, as a network drop would.
	bob.UnderlyingConn().Close()

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if _, ok := f.presence.Resolve("bob"); !ok {
			break
		}
		time.Sleep(5 * time.Millisecond)
	}
	if _, ok := f.presence.Resolve("bob"); ok {
		t.Fatal("presence still resolves bob after abnormal disconnect")
	}

	// Several refresh intervals later the mirror must stay clear: a
	// heartbeat that outlived the connection would re-touch it.
	time.Sleep(300 * time.Millisecond)
	online, err := f.mirror.Online(context.Background(), "bob")
	if err != nil {
		t.Fatalf("mirror read: %v", err)
	}
	if online {
		t.Fatal("bob still marked online after abnormal disconnect")
	}
}

func TestWS_ReconnectOverwritesPresence(t *testing.T) {
	f := newRelayFixture(t)
	alice := f.dial(t, "alice")
	first := f.dial(t, "bob")
	second := f.dial(t, "bob") // new device; last writer wins

	sendEvent(t, alice, domain.EventCallUser, domain.CallUserData{
		To:    "bob",
		Offer: json.RawMessage(`{"type":"offer"}`),
	})

	if env := readEvent(t, second); env.Event != domain.EventIncomingCall {
		t.Fatalf("newest connection got %q, want incoming-call", env.Event)
	}
	expectSilence(t, first)
}

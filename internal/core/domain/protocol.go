package domain

import "encoding/json"

// Event tags of the bidirectional WebSocket protocol. Client implementations
// must use these exact names and field spellings.
const (
	EventJoinRoom       = "join-room"
	EventSendMessage    = "send-message"
	EventReceiveMessage = "receive-message"
	EventCallUser       = "call-user"
	EventIncomingCall   = "incoming-call"
	EventAnswerCall     = "answer-call"
	EventCallAccepted   = "call-accepted"
	EventIceCandidate   = "ice-candidate"
	EventEndCall        = "end-call"
	EventError          = "error"
)

// Envelope wraps every frame on the wire in both directions.
type Envelope struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data,omitempty"`
}

func NewEnvelope(event string, data any) ([]byte, error) {
	raw, err := json.Marshal(data)
	if err != nil {
		return nil, err
	}
	return json.Marshal(Envelope{Event: event, Data: raw})
}

// JoinRoomData is sent by a client to join a pair room.
type JoinRoomData struct {
	RoomID string `json:"roomId"`
}

// SendMessageData carries a chat message toward a room.
type SendMessageData struct {
	RoomID   string `json:"roomId"`
	Message  string `json:"message"`
	Receiver string `json:"receiver"`
}

// ReceiveMessageData is delivered to the other room members after the
// message was persisted.
type ReceiveMessageData struct {
	Message string `json:"message"`
	Sender  string `json:"sender"`
	RoomID  string `json:"roomId"`
}

// The signaling payloads below are forwarded verbatim. Offer, answer and
// candidate bodies are opaque to the relay (SDP / ICE structures owned by
// the clients), hence json.RawMessage.

type CallUserData struct {
	To    string          `json:"to"`
	Offer json.RawMessage `json:"offer"`
}

type IncomingCallData struct {
	From  string          `json:"from"`
	Offer json.RawMessage `json:"offer"`
}

type AnswerCallData struct {
	To     string          `json:"to"`
	Answer json.RawMessage `json:"answer"`
}

type CallAcceptedData struct {
	From   string          `json:"from"`
	Answer json.RawMessage `json:"answer"`
}

// IceCandidateData is used in both directions: "to" inbound, "from" on the
// forwarded copy.
type IceCandidateData struct {
	To        string          `json:"to,omitempty"`
	From      string          `json:"from,omitempty"`
	Candidate json.RawMessage `json:"candidate"`
}

type EndCallData struct {
	To   string `json:"to,omitempty"`
	From string `json:"from,omitempty"`
}

// ErrorData is delivered only to the connection whose request failed.
type ErrorData struct {
	Message string `json:"message"`
}

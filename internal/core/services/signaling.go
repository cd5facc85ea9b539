package services

import (
	"context"
	"encoding/json"
	"log/slog"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/sidharthhcj/Real-time-chat-Call-application/internal/core/contracts"
	"github.com/sidharthhcj/Real-time-chat-Call-application/internal/core/domain"
)

var signalingTracer = otel.Tracer("signaling-service")

// SignalingService relays WebRTC negotiation payloads point-to-point. It
// carries no call-state machine: every operation resolves the target in the
// presence registry and forwards the payload verbatim, tagged with the
// caller's identity. An unresolvable target means the payload is dropped
// silently; the sender gets no error, no retry, no queue.
type SignalingService struct {
	presence contracts.Presence
	log      *slog.Logger
}

func NewSignalingService(log *slog.Logger, presence contracts.Presence) *SignalingService {
	return &SignalingService{
		log:      log,
		presence: presence,
	}
}

// CallUser forwards an offer to the callee as incoming-call.
func (s *SignalingService) CallUser(ctx context.Context, from string, data domain.CallUserData) {
	s.forward(ctx, domain.EventCallUser, from, data.To, domain.EventIncomingCall, domain.IncomingCallData{
		From:  from,
		Offer: data.Offer,
	})
}

// AnswerCall forwards an answer back to the caller as call-accepted.
func (s *SignalingService) AnswerCall(ctx context.Context, from string, data domain.AnswerCallData) {
	s.forward(ctx, domain.EventAnswerCall, from, data.To, domain.EventCallAccepted, domain.CallAcceptedData{
		From:   from,
		Answer: data.Answer,
	})
}

// IceCandidate forwards a candidate in either direction. Candidates may
// arrive repeatedly and in any order relative to the offer/answer exchange;
// no sequencing is imposed.
func (s *SignalingService) IceCandidate(ctx context.Context, from string, data domain.IceCandidateData) {
	s.forward(ctx, domain.EventIceCandidate, from, data.To, domain.EventIceCandidate, domain.IceCandidateData{
		From:      from,
		Candidate: data.Candidate,
	})
}

// EndCall forwards the hangup signal to the other party.
func (s *SignalingService) EndCall(ctx context.Context, from string, data domain.EndCallData) {
	s.forward(ctx, domain.EventEndCall, from, data.To, domain.EventEndCall, domain.EndCallData{
		From: from,
	})
}

func (s *SignalingService) forward(ctx context.Context, inEvent, from, to, outEvent string, payload any) {
	ctx, span := signalingTracer.Start(ctx, "SignalingService.forward", trace.WithAttributes(
		attribute.String("signal.event", inEvent),
		attribute.String("signal.from", from),
		attribute.String("signal.to", to),
	))
	defer span.End()
	if to == "" {
		s.log.Warn("signaling - forward - missing target", "event", inEvent, "from", from)
		return
	}
	target, ok := s.presence.Resolve(to)
	if !ok {
		// Target offline: drop silently. Best-effort relay by contract.
		span.SetAttributes(attribute.Bool("signal.target_online", false))
		s.log.InfoContext(ctx, "signaling - forward - target offline, dropped", "event", inEvent, "from", from, "to", to)
		return
	}
	raw, err := json.Marshal(payload)
	if err != nil {
		span.RecordError(err)
		s.log.ErrorContext(ctx, "signaling - forward - marshal failed", "event", outEvent, "err", err)
		return
	}
	frame, err := json.Marshal(domain.Envelope{Event: outEvent, Data: raw})
	if err != nil {
		span.RecordError(err)
		return
	}
	if err := target.Send(ctx, frame); err != nil {
		// The connection closed between resolve and send. Same policy as
		// offline: the sender is not told.
		s.log.InfoContext(ctx, "signaling - forward - send failed, dropped", "event", outEvent, "to", to, "err", err)
	}
}

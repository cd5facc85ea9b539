package services

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/sidharthhcj/Real-time-chat-Call-application/internal/app/registry"
	"github.com/sidharthhcj/Real-time-chat-Call-application/internal/core/domain"
)

func TestSignaling_CallAndAnswer(t *testing.T) {
	presence := registry.NewPresence()
	relay := NewSignalingService(testLogger(), presence)

	alice := newFakeClient("conn-a", "alice")
	bob := newFakeClient("conn-b", "bob")
	presence.Register("alice", alice)
	presence.Register("bob", bob)

	offer := mustRaw(t, map[string]string{"type": "offer", "sdp": "v=0"})
	relay.CallUser(context.Background(), "alice", domain.CallUserData{To: "bob", Offer: offer})

	envs := bob.envelopes(t)
	if len(envs) != 1 || envs[0].Event != domain.EventIncomingCall {
		t.Fatalf("bob got %v, want one incoming-call", envs)
	}
	var in domain.IncomingCallData
	if err := json.Unmarshal(envs[0].Data, &in); err != nil {
		t.Fatalf("unmarshal incoming-call: %v", err)
	}
	if in.From != "alice" {
		t.Fatalf("incoming-call.from = %q, want alice", in.From)
	}
	if string(in.Offer) != string(offer) {
		t.Fatalf("offer not forwarded verbatim: %s", in.Offer)
	}

	answer := mustRaw(t, map[string]string{"type": "answer", "sdp": "v=0"})
	relay.AnswerCall(context.Background(), "bob", domain.AnswerCallData{To: "alice", Answer: answer})

	envs = alice.envelopes(t)
	if len(envs) != 1 || envs[0].Event != domain.EventCallAccepted {
		t.Fatalf("alice got %v, want one call-accepted", envs)
	}
	var acc domain.CallAcceptedData
	if err := json.Unmarshal(envs[0].Data, &acc); err != nil {
		t.Fatalf("unmarshal call-accepted: %v", err)
	}
	if acc.From != "bob" || string(acc.Answer) != string(answer) {
		t.Fatalf("call-accepted = %+v, want from=bob with verbatim answer", acc)
	}
}

func TestSignaling_OfflineTargetDroppedSilently(t *testing.T) {
	presence := registry.NewPresence()
	relay := NewSignalingService(testLogger(), presence)

	alice := newFakeClient("conn-a", "alice")
	presence.Register("alice", alice)

	// carol never connected
	relay.CallUser(context.Background(), "alice", domain.CallUserData{
		To:    "carol",
		Offer: mustRaw(t, map[string]string{"type": "offer"}),
	})

	if got := len(alice.envelopes(t)); got != 0 {
		t.Fatalf("caller received %d frames, want 0 (no error on offline target)", got)
	}
}

func TestSignaling_IceAfterDisconnectDropped(t *testing.T) {
	presence := registry.NewPresence()
	relay := NewSignalingService(testLogger(), presence)

	alice := newFakeClient("conn-a", "alice")
	bob := newFakeClient("conn-b", "bob")
	presence.Register("alice", alice)
	presence.Register("bob", bob)

	// bob disconnects mid-call
	presence.Unregister("bob", "conn-b")

	relay.IceCandidate(context.Background(), "alice", domain.IceCandidateData{
		To:        "bob",
		Candidate: mustRaw(t, map[string]string{"candidate": "c0"}),
	})

	if got := len(bob.envelopes(t)); got != 0 {
		t.Fatalf("disconnected bob received %d frames, want 0", got)
	}
	if got := len(alice.envelopes(t)); got != 0 {
		t.Fatalf("alice received %d frames, want 0 (silent drop)", got)
	}
}

func TestSignaling_IceCandidatesAnyOrderAndRepeated(t *testing.T) {
	presence := registry.NewPresence()
	relay := NewSignalingService(testLogger(), presence)

	bob := newFakeClient("conn-b", "bob")
	presence.Register("bob", bob)

	// Candidates before any offer, several of them: all forwarded as-is.
	for i := 0; i < 3; i++ {
		relay.IceCandidate(context.Background(), "alice", domain.IceCandidateData{
			To:        "bob",
			Candidate: mustRaw(t, map[string]int{"n": i}),
		})
	}

	envs := bob.envelopes(t)
	if len(envs) != 3 {
		t.Fatalf("bob got %d candidates, want 3", len(envs))
	}
	for _, env := range envs {
		if env.Event != domain.EventIceCandidate {
			t.Fatalf("event = %q, want ice-candidate", env.Event)
		}
		var d domain.IceCandidateData
		if err := json.Unmarshal(env.Data, &d); err != nil {
			t.Fatalf("unmarshal: %v", err)
		}
		if d.From != "alice" || d.To != "" {
			t.Fatalf("forwarded candidate = %+v, want from=alice without to", d)
		}
	}
}

func TestSignaling_EndCallForwarded(t *testing.T) {
	presence := registry.NewPresence()
	relay := NewSignalingService(testLogger(), presence)

	bob := newFakeClient("conn-b", "bob")
	presence.Register("bob", bob)

	relay.EndCall(context.Background(), "alice", domain.EndCallData{To: "bob"})

	envs := bob.envelopes(t)
	if len(envs) != 1 || envs[0].Event != domain.EventEndCall {
		t.Fatalf("bob got %v, want one end-call", envs)
	}
	var d domain.EndCallData
	if err := json.Unmarshal(envs[0].Data, &d); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if d.From != "alice" {
		t.Fatalf("end-call.from = %q, want alice", d.From)
	}
}

func TestSignaling_MissingTargetIgnored(t *testing.T) {
	presence := registry.NewPresence()
	relay := NewSignalingService(testLogger(), presence)

	// Malformed event: no target. Must be dropped without panic.
	relay.CallUser(context.Background(), "alice", domain.CallUserData{Offer: mustRaw(t, "o")})
	relay.EndCall(context.Background(), "alice", domain.EndCallData{})
}

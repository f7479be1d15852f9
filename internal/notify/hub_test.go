package notify

import (
	"encoding/json"
	"testing"

	"github.com/tbourn/go-messenger-backend/internal/domain"
)

// newTestSession builds a session that is never pumped; tests read its send
// buffer directly. The nil conn is fine because Run is never called.
func newTestSession(hub *Hub, userID string) *Session {
	return NewSession(hub, nil, userID)
}

func TestHub_DeliverReachesAllUserSessions(t *testing.T) {
	hub := NewHub()
	s1 := newTestSession(hub, "u1")
	s2 := newTestSession(hub, "u1")
	other := newTestSession(hub, "u2")
	hub.Register(s1)
	hub.Register(s2)
	hub.Register(other)

	hub.Deliver("u1", MessageDeleted("c1", "m1"))

	for _, s := range []*Session{s1, s2} {
		select {
		case payload := <-s.send:
			var e Event
			if err := json.Unmarshal(payload, &e); err != nil {
				t.Fatalf("unmarshal: %v", err)
			}
			if e.Type != EventMessageDeleted || e.ChatID != "c1" || e.MessageID != "m1" {
				t.Fatalf("unexpected event: %+v", e)
			}
		default:
			t.Fatal("session did not receive the event")
		}
	}
	select {
	case <-other.send:
		t.Fatal("event leaked to another user's session")
	default:
	}
}

func TestHub_DeliverToAbsentUserIsNoop(t *testing.T) {
	hub := NewHub()
	// Must not panic or block.
	hub.Deliver("nobody", MembershipChanged(domain.ChatSummary{ID: "c1"}))
}

func TestHub_UnregisterIsIdempotent(t *testing.T) {
	hub := NewHub()
	s := newTestSession(hub, "u1")
	hub.Register(s)

	hub.Unregister(s)
	hub.Unregister(s)

	if n := hub.SessionCount("u1"); n != 0 {
		t.Fatalf("SessionCount = %d, want 0", n)
	}

	// done is closed; deliveries count as dropped, not sent.
	hub.Deliver("u1", MessageDeleted("c1", "m1"))
	select {
	case <-s.send:
		t.Fatal("delivered to detached session")
	default:
	}
}

func TestHub_SlowSessionIsDetached(t *testing.T) {
	hub := NewHub()
	s := newTestSession(hub, "u1")
	hub.Register(s)

	// Fill the buffer without draining, then one more to trip the detach.
	for i := 0; i < sendBuffer; i++ {
		hub.Deliver("u1", MessageDeleted("c1", "m"))
	}
	hub.Deliver("u1", MessageDeleted("c1", "overflow"))

	if n := hub.SessionCount("u1"); n != 0 {
		t.Fatalf("slow session still attached: SessionCount = %d", n)
	}
	select {
	case <-s.done:
	default:
		t.Fatal("detached session's done channel not closed")
	}
}

func TestHub_SessionCount(t *testing.T) {
	hub := NewHub()
	s1 := newTestSession(hub, "u1")
	s2 := newTestSession(hub, "u1")
	hub.Register(s1)
	hub.Register(s2)

	if n := hub.SessionCount("u1"); n != 2 {
		t.Fatalf("SessionCount = %d, want 2", n)
	}
	hub.Unregister(s1)
	if n := hub.SessionCount("u1"); n != 1 {
		t.Fatalf("SessionCount = %d, want 1", n)
	}
}

// Package notify implements best-effort real-time signaling: a registry of
// live websocket sessions keyed by user id, and a Deliver primitive that
// pushes state-change events to every session of one user. There is no
// durable queue and no replay; a user with zero connected sessions simply
// misses the event.
package notify

import "github.com/tbourn/go-messenger-backend/internal/domain"

// Event types delivered to a user's live sessions.
const (
	EventMembershipChanged = "membership_changed"
	EventMessageCreated    = "message_created"
	EventMessageEdited     = "message_edited"
	EventMessageDeleted    = "message_deleted"
)

// Event is the wire shape pushed to sessions. Exactly one of the optional
// payload fields is populated depending on Type.
type Event struct {
	Type      string              `json:"type"`
	Chat      *domain.ChatSummary `json:"chat,omitempty"`
	Message   *domain.MessageView `json:"message,omitempty"`
	ChatID    string              `json:"chat_id,omitempty"`
	MessageID string              `json:"message_id,omitempty"`
}

// MembershipChanged signals that the target user's chat list changed.
func MembershipChanged(c domain.ChatSummary) Event {
	return Event{Type: EventMembershipChanged, Chat: &c}
}

// MessageCreated signals a new message in a chat the user belongs to.
func MessageCreated(m domain.MessageView) Event {
	return Event{Type: EventMessageCreated, Message: &m}
}

// MessageEdited signals an edit to an existing message.
func MessageEdited(m domain.MessageView) Event {
	return Event{Type: EventMessageEdited, Message: &m}
}

// MessageDeleted signals that a message was removed.
func MessageDeleted(chatID, messageID string) Event {
	return Event{Type: EventMessageDeleted, ChatID: chatID, MessageID: messageID}
}

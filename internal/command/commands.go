package command

import "time"

// Caller is the identity placeholder embedded in every command. The
// dispatcher fills it from the authenticated context; a handler never
// trusts an identity named by the payload itself.
type Caller struct {
	userID string
}

// UserID returns the injected caller identity.
func (c Caller) UserID() string { return c.userID }

func (c *Caller) setIdentity(id string) { c.userID = id }

// identified is satisfied by every command via the embedded Caller.
type identified interface {
	setIdentity(id string)
}

// SendMessage posts a new message to a chat.
type SendMessage struct {
	Caller
	ChatID string
	Text   string
}

// JoinChannel adds the caller to a broadcast channel.
type JoinChannel struct {
	Caller
	ChatID string
}

// LeaveChannel removes the caller from a broadcast channel.
type LeaveChannel struct {
	Caller
	ChatID string
}

// CreateChannel creates a broadcast channel owned by the caller.
type CreateChannel struct {
	Caller
	Title string
}

// SearchChannels finds broadcast channels by title fragment.
type SearchChannels struct {
	Caller
	Title string
}

// EditMessage overwrites a message's text.
type EditMessage struct {
	Caller
	ChatID    string
	MessageID string
	Text      string
}

// DeleteMessage removes a message.
type DeleteMessage struct {
	Caller
	ChatID    string
	MessageID string
}

// ListMessages pages through a chat's messages.
type ListMessages struct {
	Caller
	ChatID   string
	Page     int
	PageSize int
}

// SearchMessages finds messages in a chat by text fragment.
type SearchMessages struct {
	Caller
	ChatID string
	Text   string
}

// ImposeRestriction mutes or bans a user in a chat for a duration.
// Moderator-only; the caller's role is checked against their membership.
// TargetID names the restricted user; the caller comes from the injected
// identity, never from the payload.
type ImposeRestriction struct {
	Caller
	ChatID   string
	TargetID string
	Kind     string
	Duration time.Duration
}

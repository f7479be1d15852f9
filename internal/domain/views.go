package domain

import "time"

// ChatSummary is the wire-facing projection of a chat returned by join,
// create, and search operations, and carried in membership-changed events.
type ChatSummary struct {
	ID           string `json:"id"`
	Title        string `json:"title"`
	Kind         string `json:"kind"`
	MembersCount int64  `json:"members_count"`
}

// Summary projects a chat into its ChatSummary.
func (c *Chat) Summary() ChatSummary {
	return ChatSummary{
		ID:           c.ID,
		Title:        c.Title,
		Kind:         c.Kind,
		MembersCount: c.MembersCount,
	}
}

// MessageView is the wire-facing projection of a message.
type MessageView struct {
	ID        string     `json:"id"`
	ChatID    string     `json:"chat_id"`
	UserID    string     `json:"user_id"`
	Text      string     `json:"text"`
	CreatedAt time.Time  `json:"created_at"`
	EditedAt  *time.Time `json:"edited_at,omitempty"`
}

// View projects a message into its MessageView.
func (m *Message) View() MessageView {
	return MessageView{
		ID:        m.ID,
		ChatID:    m.ChatID,
		UserID:    m.UserID,
		Text:      m.Text,
		CreatedAt: m.CreatedAt,
		EditedAt:  m.EditedAt,
	}
}

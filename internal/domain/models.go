// Package domain defines the persistence models for users, chats,
// memberships, messages, and moderation restrictions. These types are mapped
// with GORM and form the core data layer of the messenger backend.
package domain

import (
	"time"

	"gorm.io/gorm"
)

// Chat kinds. Only broadcast channels are joinable via JoinChannel; direct
// and group chats get their memberships at creation time.
const (
	ChatKindDirect  = "direct"
	ChatKindGroup   = "group"
	ChatKindChannel = "channel"
)

// Membership roles, ordered by privilege.
const (
	RoleMember    = "member"
	RoleModerator = "moderator"
	RoleOwner     = "owner"
)

// Restriction kinds. A mute blocks sending, a ban blocks joining. Both are
// scoped to a single chat.
const (
	RestrictionMute = "mute"
	RestrictionBan  = "ban"
)

// User is a registered account. Authentication resolves a User.ID which is
// then injected into every command as the caller identity.
type User struct {
	ID           string         `json:"id"       gorm:"type:char(36);primaryKey"`
	Username     string         `json:"username" gorm:"type:varchar(64);not null"`
	Email        string         `json:"email"    gorm:"type:varchar(255);not null;uniqueIndex"`
	PasswordHash string         `json:"-"        gorm:"type:varchar(128);not null"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
	DeletedAt    gorm.DeletedAt `json:"-"        gorm:"index"`
}

// TableName returns the database table name for User.
func (User) TableName() string { return "users" }

// Chat represents a conversation: a direct chat, a group, or a broadcast
// channel. MembersCount is a denormalized counter maintained alongside the
// membership rows; it is mutated only through atomic increments/decrements
// in the repo layer and may briefly trail the authoritative membership set.
type Chat struct {
	ID           string         `json:"id"            gorm:"type:char(36);primaryKey"`
	Title        string         `json:"title"         gorm:"type:varchar(255);not null"`
	Kind         string         `json:"kind"          gorm:"type:varchar(16);not null;index;check:kind IN ('direct','group','channel')"`
	OwnerID      string         `json:"owner_id"      gorm:"type:char(36);not null;index"`
	MembersCount int64          `json:"members_count" gorm:"not null;default:0"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
	DeletedAt    gorm.DeletedAt `json:"-"             gorm:"index"`
}

// TableName returns the database table name for Chat.
func (Chat) TableName() string { return "chats" }

// Membership is one user's participation in one chat. The (chat, user) pair
// is unique: joins create it, leaves delete it.
type Membership struct {
	ID        string    `json:"id"      gorm:"type:char(36);primaryKey"`
	ChatID    string    `json:"chat_id" gorm:"type:char(36);not null;uniqueIndex:ux_chat_user,priority:1"`
	UserID    string    `json:"user_id" gorm:"type:char(36);not null;uniqueIndex:ux_chat_user,priority:2;index"`
	Role      string    `json:"role"    gorm:"type:varchar(16);not null;default:'member';check:role IN ('member','moderator','owner')"`
	CreatedAt time.Time `json:"created_at"`
}

// TableName returns the database table name for Membership.
func (Membership) TableName() string { return "memberships" }

// IsModerator reports whether the membership carries moderation privileges.
func (m *Membership) IsModerator() bool {
	return m.Role == RoleModerator || m.Role == RoleOwner
}

// Restriction is a time-boxed moderation rule on a (chat, user) pair.
// At most one restriction per (chat, user, kind) is active at a time:
// imposing a new one replaces the old. Expired rows are inert and removed
// lazily on the next lookup.
type Restriction struct {
	ID        string    `json:"id"         gorm:"type:char(36);primaryKey"`
	ChatID    string    `json:"chat_id"    gorm:"type:char(36);not null;index:idx_limits_key,priority:1"`
	UserID    string    `json:"user_id"    gorm:"type:char(36);not null;index:idx_limits_key,priority:2"`
	Kind      string    `json:"kind"       gorm:"type:varchar(16);not null;index:idx_limits_key,priority:3;check:kind IN ('mute','ban')"`
	ImposedAt time.Time `json:"imposed_at" gorm:"not null"`
	ExpiresAt time.Time `json:"expires_at" gorm:"not null"`
}

// TableName returns the database table name for Restriction.
func (Restriction) TableName() string { return "user_limits" }

// Active reports whether the restriction is still in force at the given
// instant. A restriction is active strictly before its expiry.
func (r *Restriction) Active(now time.Time) bool {
	return now.Before(r.ExpiresAt)
}

// Message is a single chat message. Edits overwrite Text and stamp
// EditedAt; deletion is a soft delete so moderation history survives.
type Message struct {
	ID        string         `json:"id"        gorm:"type:char(36);primaryKey"`
	ChatID    string         `json:"chat_id"   gorm:"type:char(36);not null;index:idx_chat_msgs,priority:1"`
	UserID    string         `json:"user_id"   gorm:"type:char(36);not null;index"`
	Text      string         `json:"text"      gorm:"type:text;not null"`
	CreatedAt time.Time      `json:"created_at" gorm:"index:idx_chat_msgs,priority:2"`
	UpdatedAt time.Time      `json:"updated_at"`
	EditedAt  *time.Time     `json:"edited_at,omitempty"`
	DeletedAt gorm.DeletedAt `json:"-"         gorm:"index"`
}

// TableName returns the database table name for Message.
func (Message) TableName() string { return "messages" }

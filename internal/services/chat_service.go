// Package services – ChatService
//
// This file implements channel lifecycle and membership: creating broadcast
// channels, joining and leaving them, and title search. Join and leave for
// the same (chat, user) pair are serialized on a keyed mutex so a retried
// join can never produce two membership rows and a racing leave can never
// decrement the member counter twice. The counter itself is mutated with an
// atomic SQL increment, so joins by different users of the same chat only
// contend on that single UPDATE.
package services

import (
	"context"
	"errors"
	"regexp"
	"strings"
	"unicode/utf8"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"

	"github.com/tbourn/go-messenger-backend/internal/domain"
	"github.com/tbourn/go-messenger-backend/internal/notify"
	"github.com/tbourn/go-messenger-backend/internal/repo"
)

// Notifier is the fan-out contract services depend on. Delivery is
// best-effort and must never block or fail the calling command; the hub
// satisfies this, and tests plug in a recording fake.
type Notifier interface {
	Deliver(userID string, e notify.Event)
}

// noopNotifier is used when no hub is wired (tests, batch tooling).
type noopNotifier struct{}

func (noopNotifier) Deliver(string, notify.Event) {}

// ChatService manages channels and memberships.
type ChatService struct {
	DB         *gorm.DB
	Moderation *ModerationService
	Notifier   Notifier

	// TitleMaxLen caps channel titles by rune length.
	TitleMaxLen int

	memberKeys *keyedMutex
}

// NewChatService constructs a ChatService. A nil notifier is replaced with
// a no-op so handlers never have to nil-check fan-out.
func NewChatService(db *gorm.DB, mod *ModerationService, n Notifier) *ChatService {
	if n == nil {
		n = noopNotifier{}
	}
	return &ChatService{
		DB:          db,
		Moderation:  mod,
		Notifier:    n,
		TitleMaxLen: 50,
		memberKeys:  newKeyedMutex(),
	}
}

func memberKey(chatID, userID string) string { return chatID + "|" + userID }

// CreateChannel creates a broadcast channel owned by the caller. The owner
// membership row and the member counter are written in one transaction.
func (s *ChatService) CreateChannel(ctx context.Context, callerID, title string) (*domain.ChatSummary, error) {
	tr := otel.Tracer("services/ChatService")
	ctx, span := tr.Start(ctx, "CreateChannel",
		trace.WithAttributes(attribute.String("user.id", callerID)),
	)
	defer span.End()

	title = normalizeTitle(title)
	if title == "" {
		return nil, ErrEmptyText
	}
	if s.TitleMaxLen > 0 && utf8.RuneCountInString(title) > s.TitleMaxLen {
		return nil, ErrTextTooLong
	}

	var chat *domain.Chat
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		chat, err = repo.CreateChat(ctx, tx, callerID, title, domain.ChatKindChannel)
		if err != nil {
			return err
		}
		if _, err := repo.CreateMembership(ctx, tx, chat.ID, callerID, domain.RoleOwner); err != nil {
			return err
		}
		return repo.IncrementMembers(ctx, tx, chat.ID, 1)
	})
	if err != nil {
		return nil, err
	}
	chat.MembersCount = 1

	summary := chat.Summary()
	s.Notifier.Deliver(callerID, notify.MembershipChanged(summary))
	return &summary, nil
}

// JoinChannel makes the caller a member of a broadcast channel.
//
// Order of gates, all before any mutation: active ban (Restricted, with
// expiry), duplicate membership (Conflict), unknown or non-channel chat id
// (NotFound). The membership row and the counter increment commit as one
// unit; the membership-changed event fires only after that commit.
func (s *ChatService) JoinChannel(ctx context.Context, callerID, chatID string) (*domain.ChatSummary, error) {
	tr := otel.Tracer("services/ChatService")
	ctx, span := tr.Start(ctx, "JoinChannel",
		trace.WithAttributes(
			attribute.String("chat.id", chatID),
			attribute.String("user.id", callerID),
		),
	)
	defer span.End()

	unlock := s.memberKeys.Lock(memberKey(chatID, callerID))
	defer unlock()

	banned, until, err := s.Moderation.CheckRestriction(ctx, chatID, callerID, domain.RestrictionBan)
	if err != nil {
		return nil, err
	}
	if banned {
		return nil, &RestrictedError{Kind: domain.RestrictionBan, Until: until}
	}

	joined, err := repo.HasMembership(ctx, s.DB, chatID, callerID)
	if err != nil {
		return nil, err
	}
	if joined {
		return nil, ErrAlreadyJoined
	}

	chat, err := repo.GetChannel(ctx, s.DB, chatID)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, ErrChatNotFound
		}
		return nil, err
	}

	err = s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := repo.IncrementMembers(ctx, tx, chatID, 1); err != nil {
			return err
		}
		_, err := repo.CreateMembership(ctx, tx, chatID, callerID, domain.RoleMember)
		return err
	})
	if err != nil {
		return nil, err
	}
	chat.MembersCount++

	summary := chat.Summary()
	s.Notifier.Deliver(callerID, notify.MembershipChanged(summary))
	return &summary, nil
}

// LeaveChannel removes the caller's membership and decrements the counter
// in one unit. Leaving a chat the caller is not a member of is ErrNotMember.
func (s *ChatService) LeaveChannel(ctx context.Context, callerID, chatID string) (*domain.ChatSummary, error) {
	tr := otel.Tracer("services/ChatService")
	ctx, span := tr.Start(ctx, "LeaveChannel",
		trace.WithAttributes(
			attribute.String("chat.id", chatID),
			attribute.String("user.id", callerID),
		),
	)
	defer span.End()

	unlock := s.memberKeys.Lock(memberKey(chatID, callerID))
	defer unlock()

	chat, err := repo.GetChannel(ctx, s.DB, chatID)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, ErrChatNotFound
		}
		return nil, err
	}

	err = s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := repo.DeleteMembership(ctx, tx, chatID, callerID); err != nil {
			return err
		}
		return repo.IncrementMembers(ctx, tx, chatID, -1)
	})
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, ErrNotMember
		}
		return nil, err
	}
	chat.MembersCount--

	summary := chat.Summary()
	s.Notifier.Deliver(callerID, notify.MembershipChanged(summary))
	return &summary, nil
}

// SearchChannels returns broadcast channels whose title contains the given
// fragment, most popular first.
func (s *ChatService) SearchChannels(ctx context.Context, title string) ([]domain.ChatSummary, error) {
	chats, err := repo.SearchChannels(ctx, s.DB, normalizeTitle(title))
	if err != nil {
		return nil, err
	}
	out := make([]domain.ChatSummary, 0, len(chats))
	for i := range chats {
		out = append(out, chats[i].Summary())
	}
	return out, nil
}

// normalizeTitle trims whitespace and collapses multiple spaces to one.
func normalizeTitle(s string) string {
	return whitespaceRE.ReplaceAllString(strings.TrimSpace(s), " ")
}

// whitespaceRE collapses consecutive whitespace to a single space.
var whitespaceRE = regexp.MustCompile(`\s+`)

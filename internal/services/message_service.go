// Package services – MessageService
//
// This file implements the message lifecycle: sending (gated by mute),
// editing and deleting (author or moderator only), paginated listing, and
// text search. Mutations commit before any fan-out fires, and fan-out
// reuses the same per-user Deliver primitive for every member of the chat,
// so a failed or slow delivery can never roll back a stored message.
package services

import (
	"context"
	"errors"
	"strings"
	"time"
	"unicode/utf8"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"

	"github.com/tbourn/go-messenger-backend/internal/domain"
	"github.com/tbourn/go-messenger-backend/internal/notify"
	"github.com/tbourn/go-messenger-backend/internal/repo"
)

// MessageService coordinates message persistence and room fan-out.
type MessageService struct {
	DB         *gorm.DB
	Moderation *ModerationService
	Notifier   Notifier

	// MaxTextRunes caps message bodies; zero disables the cap.
	MaxTextRunes int

	// Now returns the current instant; tests inject a fake clock.
	Now func() time.Time
}

// NewMessageService constructs a MessageService with the wall clock and a
// 4000-rune body cap.
func NewMessageService(db *gorm.DB, mod *ModerationService, n Notifier) *MessageService {
	if n == nil {
		n = noopNotifier{}
	}
	return &MessageService{
		DB:           db,
		Moderation:   mod,
		Notifier:     n,
		MaxTextRunes: 4000,
		Now:          time.Now,
	}
}

// Send persists a new message unless the caller is muted in the chat. The
// caller must be a member. Under an active mute nothing is stored and the
// returned error carries the expiry. On success every current chat member's
// sessions receive a message-created event.
func (s *MessageService) Send(ctx context.Context, callerID, chatID, text string) (*domain.MessageView, error) {
	tr := otel.Tracer("services/MessageService")
	ctx, span := tr.Start(ctx, "Send",
		trace.WithAttributes(
			attribute.String("chat.id", chatID),
			attribute.String("user.id", callerID),
		),
	)
	defer span.End()

	text = strings.TrimSpace(text)
	if text == "" {
		return nil, ErrEmptyText
	}
	if s.MaxTextRunes > 0 && utf8.RuneCountInString(text) > s.MaxTextRunes {
		return nil, ErrTextTooLong
	}

	if err := s.requireMember(ctx, callerID, chatID); err != nil {
		return nil, err
	}

	muted, until, err := s.Moderation.CheckRestriction(ctx, chatID, callerID, domain.RestrictionMute)
	if err != nil {
		return nil, err
	}
	if muted {
		return nil, &RestrictedError{Kind: domain.RestrictionMute, Until: until}
	}

	msg, err := repo.CreateMessage(ctx, s.DB, chatID, callerID, text)
	if err != nil {
		return nil, err
	}

	view := msg.View()
	s.fanOut(ctx, chatID, notify.MessageCreated(view))
	return &view, nil
}

// Edit overwrites a message's text and stamps edited-at. Only the original
// author or a moderator/owner of the chat may edit.
func (s *MessageService) Edit(ctx context.Context, callerID, chatID, messageID, text string) (*domain.MessageView, error) {
	tr := otel.Tracer("services/MessageService")
	ctx, span := tr.Start(ctx, "Edit",
		trace.WithAttributes(
			attribute.String("chat.id", chatID),
			attribute.String("message.id", messageID),
			attribute.String("user.id", callerID),
		),
	)
	defer span.End()

	text = strings.TrimSpace(text)
	if text == "" {
		return nil, ErrEmptyText
	}
	if s.MaxTextRunes > 0 && utf8.RuneCountInString(text) > s.MaxTextRunes {
		return nil, ErrTextTooLong
	}

	msg, err := s.authorizeMutation(ctx, callerID, chatID, messageID)
	if err != nil {
		return nil, err
	}

	editedAt := s.Now().UTC()
	if err := repo.UpdateMessageText(ctx, s.DB, chatID, messageID, text, editedAt); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, ErrMessageNotFound
		}
		return nil, err
	}
	msg.Text = text
	msg.EditedAt = &editedAt

	view := msg.View()
	s.fanOut(ctx, chatID, notify.MessageEdited(view))
	return &view, nil
}

// Delete soft-deletes a message under the same author-or-moderator rule as
// Edit. Deleting an already-gone message is ErrMessageNotFound, not a crash.
func (s *MessageService) Delete(ctx context.Context, callerID, chatID, messageID string) error {
	tr := otel.Tracer("services/MessageService")
	ctx, span := tr.Start(ctx, "Delete",
		trace.WithAttributes(
			attribute.String("chat.id", chatID),
			attribute.String("message.id", messageID),
			attribute.String("user.id", callerID),
		),
	)
	defer span.End()

	if _, err := s.authorizeMutation(ctx, callerID, chatID, messageID); err != nil {
		return err
	}

	if err := repo.DeleteMessage(ctx, s.DB, chatID, messageID); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return ErrMessageNotFound
		}
		return err
	}

	s.fanOut(ctx, chatID, notify.MessageDeleted(chatID, messageID))
	return nil
}

// ListPage returns one page of a chat's messages, oldest first. The caller
// must be a member of the chat.
func (s *MessageService) ListPage(ctx context.Context, callerID, chatID string, page, pageSize int) ([]domain.MessageView, int64, error) {
	if err := s.requireMember(ctx, callerID, chatID); err != nil {
		return nil, 0, err
	}

	if page < 1 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = 50
	}
	offset := (page - 1) * pageSize

	total, err := repo.CountMessages(ctx, s.DB, chatID)
	if err != nil {
		return nil, 0, err
	}
	if total == 0 {
		return []domain.MessageView{}, 0, nil
	}

	msgs, err := repo.ListMessagesPage(ctx, s.DB, chatID, offset, pageSize)
	if err != nil {
		return nil, 0, err
	}
	return views(msgs), total, nil
}

// Search returns a chat's messages containing the given text, newest first.
// The caller must be a member of the chat.
func (s *MessageService) Search(ctx context.Context, callerID, chatID, text string) ([]domain.MessageView, error) {
	if err := s.requireMember(ctx, callerID, chatID); err != nil {
		return nil, err
	}
	msgs, err := repo.SearchMessages(ctx, s.DB, chatID, strings.TrimSpace(text))
	if err != nil {
		return nil, err
	}
	return views(msgs), nil
}

// authorizeMutation loads the message and enforces the author-or-moderator
// rule shared by Edit and Delete.
func (s *MessageService) authorizeMutation(ctx context.Context, callerID, chatID, messageID string) (*domain.Message, error) {
	msg, err := repo.GetMessage(ctx, s.DB, chatID, messageID)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, ErrMessageNotFound
		}
		return nil, err
	}
	if msg.UserID == callerID {
		return msg, nil
	}

	m, err := repo.GetMembership(ctx, s.DB, chatID, callerID)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, ErrForbidden
		}
		return nil, err
	}
	if !m.IsModerator() {
		return nil, ErrForbidden
	}
	return msg, nil
}

func (s *MessageService) requireMember(ctx context.Context, callerID, chatID string) error {
	ok, err := repo.HasMembership(ctx, s.DB, chatID, callerID)
	if err != nil {
		return err
	}
	if !ok {
		return ErrNotMember
	}
	return nil
}

// fanOut delivers an event to every current member of the chat. The member
// list is read after the mutation committed; a listing failure only costs
// the notification, never the command.
func (s *MessageService) fanOut(ctx context.Context, chatID string, e notify.Event) {
	ids, err := repo.ListMemberIDs(ctx, s.DB, chatID)
	if err != nil {
		span := trace.SpanFromContext(ctx)
		span.RecordError(err)
		return
	}
	for _, id := range ids {
		s.Notifier.Deliver(id, e)
	}
}

func views(msgs []domain.Message) []domain.MessageView {
	out := make([]domain.MessageView, 0, len(msgs))
	for i := range msgs {
		out = append(out, msgs[i].View())
	}
	return out
}

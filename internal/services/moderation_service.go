// Package services – ModerationService
//
// This file implements the moderation engine: evaluating mute/ban
// restrictions before gated operations and imposing new ones. Two
// invariants are enforced here rather than in the store:
//
//   - Per (chat, user, kind), Impose and CheckRestriction are linearizable.
//     A keyed mutex scopes the critical section to exactly that triple, so
//     unrelated chats and users never contend.
//   - At most one restriction per (chat, user, kind) is observable: Impose
//     replaces any existing row of the same kind, and CheckRestriction
//     removes expired rows on lookup so the store does not accumulate
//     stale entries.
package services

import (
	"context"
	"errors"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"

	"github.com/tbourn/go-messenger-backend/internal/domain"
	"github.com/tbourn/go-messenger-backend/internal/repo"
)

// ModerationService evaluates and imposes time-boxed restrictions.
type ModerationService struct {
	DB *gorm.DB

	// Now returns the current instant; tests inject a fake clock.
	Now func() time.Time

	keys *keyedMutex
}

// NewModerationService constructs a ModerationService using the wall clock.
func NewModerationService(db *gorm.DB) *ModerationService {
	return &ModerationService{
		DB:   db,
		Now:  time.Now,
		keys: newKeyedMutex(),
	}
}

func restrictionKey(chatID, userID, kind string) string {
	return chatID + "|" + userID + "|" + kind
}

// CheckRestriction reports whether (chatID, userID) is currently restricted
// by the given kind. When restricted it also returns the expiry so callers
// can tell the user when they may act again. Expired rows are deleted as a
// side effect; repeated checks after expiry stay not-restricted.
func (s *ModerationService) CheckRestriction(ctx context.Context, chatID, userID, kind string) (bool, time.Time, error) {
	tr := otel.Tracer("services/ModerationService")
	ctx, span := tr.Start(ctx, "CheckRestriction",
		trace.WithAttributes(
			attribute.String("chat.id", chatID),
			attribute.String("user.id", userID),
			attribute.String("restriction.kind", kind),
		),
	)
	defer span.End()

	unlock := s.keys.Lock(restrictionKey(chatID, userID, kind))
	defer unlock()

	r, err := repo.GetRestriction(ctx, s.DB, chatID, userID, kind)
	if err != nil {
		return false, time.Time{}, err
	}
	if r == nil {
		return false, time.Time{}, nil
	}
	if !r.Active(s.Now()) {
		// Lazy expiry: drop the stale row so the store stays bounded.
		if err := repo.DeleteRestriction(ctx, s.DB, r.ID); err != nil {
			return false, time.Time{}, err
		}
		return false, time.Time{}, nil
	}
	return true, r.ExpiresAt, nil
}

// Impose creates or replaces the restriction of the given kind for
// (chatID, userID) with expiry now + d. The replace happens under the same
// key lock as CheckRestriction, so a concurrent check observes either the
// old restriction or the new one, never a torn state.
func (s *ModerationService) Impose(ctx context.Context, chatID, userID, kind string, d time.Duration) (*domain.Restriction, error) {
	tr := otel.Tracer("services/ModerationService")
	ctx, span := tr.Start(ctx, "Impose",
		trace.WithAttributes(
			attribute.String("chat.id", chatID),
			attribute.String("user.id", userID),
			attribute.String("restriction.kind", kind),
			attribute.String("duration", d.String()),
		),
	)
	defer span.End()

	if d <= 0 {
		return nil, ErrInvalidDuration
	}
	if kind != domain.RestrictionMute && kind != domain.RestrictionBan {
		return nil, ErrInvalidKind
	}

	unlock := s.keys.Lock(restrictionKey(chatID, userID, kind))
	defer unlock()

	now := s.Now().UTC()
	return repo.ReplaceRestriction(ctx, s.DB, chatID, userID, kind, now, now.Add(d))
}

// ImposeRestriction is the moderator-facing command: caller must hold a
// moderator or owner membership in the chat. Restricting yourself is
// rejected as forbidden.
func (s *ModerationService) ImposeRestriction(ctx context.Context, callerID, chatID, targetID, kind string, d time.Duration) (*domain.Restriction, error) {
	if callerID == targetID {
		return nil, ErrForbidden
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

	return s.Impose(ctx, chatID, targetID, kind, d)
}

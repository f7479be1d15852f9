// Package services implements the business rules of the messenger core:
// moderation checks, channel membership, message lifecycle, and accounts.
// This file centralizes the service-level error values so that they can be
// consistently returned by service methods and checked by callers.
//
// Translation into envelope codes or HTTP statuses happens at the
// command/handler boundary, never here.
package services

import (
	"errors"
	"fmt"
	"time"
)

var (
	// ErrChatNotFound indicates the chat id does not resolve to an existing
	// chat of the expected kind.
	ErrChatNotFound = errors.New("chat not found")

	// ErrMessageNotFound indicates the message does not exist in the given
	// chat (including messages that were already deleted).
	ErrMessageNotFound = errors.New("message not found")

	// ErrAlreadyJoined is returned when a join targets a chat the caller is
	// already a member of.
	ErrAlreadyJoined = errors.New("already joined")

	// ErrNotMember is returned when an operation requires a membership the
	// caller does not hold.
	ErrNotMember = errors.New("not a member of this chat")

	// ErrForbidden is returned when the caller's role does not permit the
	// operation (editing others' messages, imposing restrictions, ...).
	ErrForbidden = errors.New("operation not permitted")

	// ErrEmptyText is returned when a message or title is blank after
	// normalization.
	ErrEmptyText = errors.New("text is empty")

	// ErrTextTooLong is returned when a message or title exceeds the
	// configured rune limit.
	ErrTextTooLong = errors.New("text too long")

	// ErrInvalidDuration is returned when a restriction duration is not
	// strictly positive.
	ErrInvalidDuration = errors.New("duration must be positive")

	// ErrInvalidKind is returned when a restriction kind is neither mute
	// nor ban.
	ErrInvalidKind = errors.New("unknown restriction kind")

	// ErrEmailTaken is returned when registration reuses an email address.
	ErrEmailTaken = errors.New("email already registered")

	// ErrInvalidCredentials is returned on login with an unknown email or a
	// wrong password.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrRestricted is the sentinel matched by errors.Is for any active
	// moderation restriction. The concrete error is a *RestrictedError
	// carrying the expiry.
	ErrRestricted = errors.New("restricted")
)

// RestrictedError reports that an active restriction blocks the operation.
// Until is surfaced to the end user as "you may act again at T".
type RestrictedError struct {
	Kind  string
	Until time.Time
}

// Error implements the error interface.
func (e *RestrictedError) Error() string {
	return fmt.Sprintf("%s active until %s", e.Kind, e.Until.Format(time.RFC3339))
}

// Is lets errors.Is(err, ErrRestricted) match any restriction error.
func (e *RestrictedError) Is(target error) bool { return target == ErrRestricted }

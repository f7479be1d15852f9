// Package command is the transport-agnostic surface of the messenger core.
// It defines the command shapes callers submit, the uniform Result envelope
// they get back, and the dispatcher that injects the authenticated caller
// identity before any handler runs. An HTTP or RPC layer maps endpoints
// onto these commands; nothing in this package knows about transports.
package command

import (
	"errors"

	"github.com/rs/zerolog/log"

	"github.com/tbourn/go-messenger-backend/internal/services"
)

// Code is the stable, machine-readable outcome taxonomy.
type Code string

const (
	CodeRestricted       Code = "restricted"
	CodeConflict         Code = "conflict"
	CodeNotFound         Code = "not_found"
	CodeForbidden        Code = "forbidden"
	CodeValidationFailed Code = "validation_failed"
	CodeUnavailable      Code = "unavailable"
)

// Unit is the empty payload for commands that return no data.
type Unit struct{}

// Result is the uniform envelope every command returns. Data is nil on
// failure; Code is empty on success.
type Result[T any] struct {
	OK      bool   `json:"ok"`
	Message string `json:"message"`
	Data    *T     `json:"data"`
	Code    Code   `json:"error_code,omitempty"`
}

// Ok wraps a successful payload.
func Ok[T any](data *T) Result[T] {
	return Result[T]{OK: true, Message: "ok", Data: data}
}

// Fail builds a failure envelope with a stable code and a user-facing
// message.
func Fail[T any](code Code, msg string) Result[T] {
	return Result[T]{OK: false, Message: msg, Code: code}
}

// FromError translates service-level errors into the envelope taxonomy.
// Every recoverable outcome maps to a stable code; anything unrecognized is
// a store or infrastructure fault and becomes Unavailable.
func FromError[T any](err error) Result[T] {
	var restricted *services.RestrictedError
	if errors.As(err, &restricted) {
		return Fail[T](CodeRestricted, restricted.Error())
	}

	switch {
	case errors.Is(err, services.ErrAlreadyJoined),
		errors.Is(err, services.ErrNotMember),
		errors.Is(err, services.ErrEmailTaken):
		return Fail[T](CodeConflict, err.Error())
	case errors.Is(err, services.ErrChatNotFound),
		errors.Is(err, services.ErrMessageNotFound):
		return Fail[T](CodeNotFound, err.Error())
	case errors.Is(err, services.ErrForbidden):
		return Fail[T](CodeForbidden, err.Error())
	case errors.Is(err, services.ErrEmptyText),
		errors.Is(err, services.ErrTextTooLong),
		errors.Is(err, services.ErrInvalidDuration),
		errors.Is(err, services.ErrInvalidKind):
		return Fail[T](CodeValidationFailed, err.Error())
	default:
		log.Error().Err(err).Msg("command: unhandled service error")
		return Fail[T](CodeUnavailable, "service temporarily unavailable")
	}
}

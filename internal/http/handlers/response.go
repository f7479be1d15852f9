// Package handlers provides HTTP handler implementations for the public API.
//
// Every endpoint answers with the same command.Result envelope the dispatcher
// produces, so success and failure responses share one machine-friendly shape:
//
//	HTTP/1.1 409 Conflict
//	{ "ok": false, "message": "already a member of this channel", "error_code": "conflict" }
//
//	HTTP/1.1 200 OK
//	{ "ok": true, "data": { "id": "abc123", "title": "announcements" } }
//
// respond() centralizes the error-code to status mapping and logs 5xx
// responses with the request-scoped logger.
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/go-messenger-backend/internal/command"
	"github.com/tbourn/go-messenger-backend/internal/http/middleware"
)

// statusFor maps a command error code to an HTTP status.
func statusFor(code command.Code) int {
	switch code {
	case command.CodeValidationFailed:
		return http.StatusBadRequest
	case command.CodeNotFound:
		return http.StatusNotFound
	case command.CodeRestricted, command.CodeForbidden:
		return http.StatusForbidden
	case command.CodeConflict:
		return http.StatusConflict
	case command.CodeUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// respond writes a command result as JSON with the status implied by its
// error code. Server-side failures are logged with request context.
func respond[T any](c *gin.Context, res command.Result[T]) {
	if res.OK {
		c.JSON(http.StatusOK, res)
		return
	}

	status := statusFor(res.Code)
	if status >= http.StatusInternalServerError {
		middleware.LoggerFrom(c).Error().
			Int("status", status).
			Str("code", string(res.Code)).
			Str("message", res.Message).
			Msg("api error")
	}
	c.AbortWithStatusJSON(status, res)
}

// badRequest rejects malformed input at the transport edge, before any
// command is dispatched, using the same envelope as everything else.
func badRequest(c *gin.Context, msg string) {
	respond(c, command.Fail[command.Unit](command.CodeValidationFailed, msg))
}

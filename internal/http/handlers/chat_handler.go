// Channel HTTP handlers.
//
// This file exposes REST endpoints for broadcast channels:
//   - POST   /channels              (create)
//   - GET    /channels              (search by title fragment)
//   - POST   /channels/{id}/join    (join, rejected while banned)
//   - POST   /channels/{id}/leave   (leave)
//
// Handlers are transport-thin: they validate and normalize input, build a
// command, and hand it to the dispatcher. The caller identity is never taken
// from the payload; the dispatcher resolves it from the request context.
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/tbourn/go-messenger-backend/internal/command"
)

// Handlers groups the HTTP endpoints routed through the command dispatcher.
type Handlers struct {
	dispatch *command.Dispatcher
}

// New constructs a Handlers instance bound to the given dispatcher.
func New(d *command.Dispatcher) *Handlers {
	return &Handlers{dispatch: d}
}

// chatIDParam validates the :id path segment as a UUID. The second return
// value is false when the handler already wrote a 400.
func chatIDParam(c *gin.Context) (string, bool) {
	id := c.Param("id")
	if _, err := uuid.Parse(id); err != nil {
		badRequest(c, "chat id must be a UUID")
		return "", false
	}
	return id, true
}

// CreateChannelRequest is the JSON payload for creating a channel.
type CreateChannelRequest struct {
	// Title is the channel name (1-50 chars after trimming).
	Title string `json:"title" binding:"required,min=1" example:"announcements"`
}

// CreateChannel handles POST /channels.
func (h *Handlers) CreateChannel(c *gin.Context) {
	var req CreateChannelRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "title required")
		return
	}
	respond(c, h.dispatch.CreateChannel(c.Request.Context(), command.CreateChannel{Title: req.Title}))
}

// SearchChannels handles GET /channels?title=frag. An empty fragment returns
// the most populated channels.
func (h *Handlers) SearchChannels(c *gin.Context) {
	respond(c, h.dispatch.SearchChannels(c.Request.Context(), command.SearchChannels{
		Title: c.Query("title"),
	}))
}

// JoinChannel handles POST /channels/:id/join.
func (h *Handlers) JoinChannel(c *gin.Context) {
	chatID, ok := chatIDParam(c)
	if !ok {
		return
	}
	respond(c, h.dispatch.JoinChannel(c.Request.Context(), command.JoinChannel{ChatID: chatID}))
}

// LeaveChannel handles POST /channels/:id/leave.
func (h *Handlers) LeaveChannel(c *gin.Context) {
	chatID, ok := chatIDParam(c)
	if !ok {
		return
	}
	respond(c, h.dispatch.LeaveChannel(c.Request.Context(), command.LeaveChannel{ChatID: chatID}))
}

// NotFound is installed as the router's NoRoute handler so unknown paths get
// the standard envelope instead of Gin's default empty 404.
func NotFound(c *gin.Context) {
	c.JSON(http.StatusNotFound, command.Fail[command.Unit](command.CodeNotFound, "route not found"))
}

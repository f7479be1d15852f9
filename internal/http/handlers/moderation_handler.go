// Moderation HTTP handlers.
//
// POST /chats/{id}/restrictions imposes a time-boxed mute or ban on a user.
// Only a moderator or the owner of the chat may call it; the service layer
// enforces the role check and rejects self-restriction.
package handlers

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/tbourn/go-messenger-backend/internal/command"
)

// ImposeRestrictionRequest is the JSON payload for restricting a user.
//
// Duration uses Go duration syntax ("10m", "1h30m") and must be positive.
// Imposing a new restriction of the same kind replaces the previous one
// atomically, so extending a mute is just another impose.
type ImposeRestrictionRequest struct {
	UserID   string `json:"user_id" binding:"required" example:"5b1c0c02-28b3-4a71-9f5e-2d7f6e8e11aa"`
	Kind     string `json:"kind" binding:"required,oneof=mute ban" example:"mute"`
	Duration string `json:"duration" binding:"required" example:"10m"`
}

// ImposeRestriction handles POST /chats/:id/restrictions.
func (h *Handlers) ImposeRestriction(c *gin.Context) {
	chatID, ok := chatIDParam(c)
	if !ok {
		return
	}
	var req ImposeRestrictionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "user_id, kind and duration required")
		return
	}
	if _, err := uuid.Parse(req.UserID); err != nil {
		badRequest(c, "user_id must be a UUID")
		return
	}
	d, err := time.ParseDuration(req.Duration)
	if err != nil {
		badRequest(c, "duration must be a valid duration string, e.g. 10m")
		return
	}
	respond(c, h.dispatch.ImposeRestriction(c.Request.Context(), command.ImposeRestriction{
		ChatID:   chatID,
		TargetID: req.UserID,
		Kind:     req.Kind,
		Duration: d,
	}))
}

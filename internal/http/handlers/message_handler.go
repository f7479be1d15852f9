// Message HTTP handlers.
//
// This file exposes REST endpoints for chat messages:
//   - POST   /chats/{id}/messages               (send, rejected while muted)
//   - GET    /chats/{id}/messages               (list paginated, members only)
//   - GET    /chats/{id}/messages/search        (search by text fragment)
//   - PUT    /chats/{id}/messages/{messageID}   (edit)
//   - DELETE /chats/{id}/messages/{messageID}   (delete)
//
// Text is normalized at the edge (line endings, excessive blank lines); the
// service layer enforces the rune cap and membership checks a second time.
package handlers

import (
	"regexp"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/tbourn/go-messenger-backend/internal/command"
	"github.com/tbourn/go-messenger-backend/internal/utils"
)

// MessageRequest is the JSON payload for sending or editing a message.
type MessageRequest struct {
	// Text is the message body. It must be non-empty after trimming.
	Text string `json:"text" binding:"required,min=1" example:"anyone up for lunch?"`
}

// nlCollapseRE collapses runs of 3+ newlines to two, preserving paragraphs.
var nlCollapseRE = regexp.MustCompile(`\n{3,}`)

// sanitizeText normalizes user text for consistent downstream behavior:
// CRLF/CR become LF, runs of 3+ LFs collapse to two, and surrounding
// whitespace is trimmed.
func sanitizeText(raw string) string {
	s := strings.ReplaceAll(raw, "\r\n", "\n")
	s = strings.ReplaceAll(s, "\r", "\n")
	s = nlCollapseRE.ReplaceAllString(s, "\n\n")
	return strings.TrimSpace(s)
}

// messageIDParam validates the :messageID path segment as a UUID.
func messageIDParam(c *gin.Context) (string, bool) {
	id := c.Param("messageID")
	if _, err := uuid.Parse(id); err != nil {
		badRequest(c, "message id must be a UUID")
		return "", false
	}
	return id, true
}

// SendMessage handles POST /chats/:id/messages.
func (h *Handlers) SendMessage(c *gin.Context) {
	chatID, ok := chatIDParam(c)
	if !ok {
		return
	}
	var req MessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "text required")
		return
	}
	respond(c, h.dispatch.SendMessage(c.Request.Context(), command.SendMessage{
		ChatID: chatID,
		Text:   sanitizeText(req.Text),
	}))
}

// EditMessage handles PUT /chats/:id/messages/:messageID.
func (h *Handlers) EditMessage(c *gin.Context) {
	chatID, ok := chatIDParam(c)
	if !ok {
		return
	}
	messageID, ok := messageIDParam(c)
	if !ok {
		return
	}
	var req MessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "text required")
		return
	}
	respond(c, h.dispatch.EditMessage(c.Request.Context(), command.EditMessage{
		ChatID:    chatID,
		MessageID: messageID,
		Text:      sanitizeText(req.Text),
	}))
}

// DeleteMessage handles DELETE /chats/:id/messages/:messageID.
func (h *Handlers) DeleteMessage(c *gin.Context) {
	chatID, ok := chatIDParam(c)
	if !ok {
		return
	}
	messageID, ok := messageIDParam(c)
	if !ok {
		return
	}
	respond(c, h.dispatch.DeleteMessage(c.Request.Context(), command.DeleteMessage{
		ChatID:    chatID,
		MessageID: messageID,
	}))
}

// ListMessages handles GET /chats/:id/messages with page/page_size query
// parameters. Defaults and caps are applied before dispatch.
func (h *Handlers) ListMessages(c *gin.Context) {
	chatID, ok := chatIDParam(c)
	if !ok {
		return
	}
	page, pageSize := utils.ClampPage(
		utils.AtoiDefault(c.Query("page"), 1),
		utils.AtoiDefault(c.Query("page_size"), 50),
		50, 100,
	)
	respond(c, h.dispatch.ListMessages(c.Request.Context(), command.ListMessages{
		ChatID:   chatID,
		Page:     page,
		PageSize: pageSize,
	}))
}

// SearchMessages handles GET /chats/:id/messages/search?text=frag.
func (h *Handlers) SearchMessages(c *gin.Context) {
	chatID, ok := chatIDParam(c)
	if !ok {
		return
	}
	text := strings.TrimSpace(c.Query("text"))
	if text == "" {
		badRequest(c, "text query parameter required")
		return
	}
	respond(c, h.dispatch.SearchMessages(c.Request.Context(), command.SearchMessages{
		ChatID: chatID,
		Text:   text,
	}))
}

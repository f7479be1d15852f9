// Realtime delivery endpoint.
//
// GET /ws upgrades the connection to a websocket and registers a session for
// the authenticated user. A user may hold several sessions at once (multiple
// tabs or devices); events are fanned out to all of them.
//
// Browsers cannot set headers on websocket handshakes, so the token is also
// accepted as a "token" query parameter in addition to the Authorization
// header.
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"github.com/tbourn/go-messenger-backend/internal/auth"
	"github.com/tbourn/go-messenger-backend/internal/http/middleware"
	"github.com/tbourn/go-messenger-backend/internal/notify"
)

// WSHandler upgrades HTTP requests to realtime sessions on the hub.
type WSHandler struct {
	hub      *notify.Hub
	secret   string
	upgrader websocket.Upgrader
}

// NewWS constructs a WSHandler. Origin checking is left permissive here; the
// API is token-authenticated and CORS policy is enforced at the router.
func NewWS(hub *notify.Hub, secret string) *WSHandler {
	return &WSHandler{
		hub:    hub,
		secret: secret,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(*http.Request) bool { return true },
		},
	}
}

// Serve handles GET /ws.
func (h *WSHandler) Serve(c *gin.Context) {
	token := c.Query("token")
	if token == "" {
		token = bearerFromHeader(c.GetHeader("Authorization"))
	}
	userID, err := auth.ParseAccessToken(token, h.secret)
	if err != nil {
		c.AbortWithStatus(http.StatusUnauthorized)
		return
	}

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		// Upgrade already wrote the handshake error.
		middleware.LoggerFrom(c).Warn().Err(err).Msg("websocket upgrade failed")
		return
	}

	// Run blocks until the peer disconnects.
	notify.NewSession(h.hub, conn, userID).Run()
}

// bearerFromHeader extracts the token from a Bearer Authorization header.
func bearerFromHeader(header string) string {
	const prefix = "Bearer "
	if len(header) > len(prefix) && header[:len(prefix)] == prefix {
		return header[len(prefix):]
	}
	return ""
}

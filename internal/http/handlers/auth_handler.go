// Authentication HTTP handlers.
//
// POST /auth/register and POST /auth/login are the only endpoints reachable
// without a token. They talk to UserService directly rather than through the
// command dispatcher, since no authenticated identity exists yet.
package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/go-messenger-backend/internal/command"
	"github.com/tbourn/go-messenger-backend/internal/domain"
	"github.com/tbourn/go-messenger-backend/internal/services"
)

// UserAccounts defines the account operations consumed by the auth endpoints.
// Implementations must be safe for concurrent use.
type UserAccounts interface {
	Register(ctx context.Context, username, email, password string) (*domain.User, error)
	Login(ctx context.Context, email, password string) (string, *domain.User, error)
}

// AuthHandlers serves registration and login.
type AuthHandlers struct {
	users UserAccounts
}

// NewAuth constructs AuthHandlers bound to the given account service.
func NewAuth(users UserAccounts) *AuthHandlers {
	return &AuthHandlers{users: users}
}

// RegisterRequest is the JSON payload for creating an account.
type RegisterRequest struct {
	Username string `json:"username" binding:"required,min=1,max=64" example:"alice"`
	Email    string `json:"email" binding:"required,email" example:"alice@example.com"`
	Password string `json:"password" binding:"required,min=8" example:"correct horse battery"`
}

// LoginRequest is the JSON payload for obtaining an access token.
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email" example:"alice@example.com"`
	Password string `json:"password" binding:"required" example:"correct horse battery"`
}

// AccountView is the public shape of a user account.
type AccountView struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
}

// TokenResponse carries a bearer token and the account it belongs to.
type TokenResponse struct {
	AccessToken string      `json:"access_token"`
	User        AccountView `json:"user"`
}

func accountView(u *domain.User) AccountView {
	return AccountView{ID: u.ID, Username: u.Username, Email: u.Email}
}

// Register handles POST /auth/register.
func (h *AuthHandlers) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "username, email and password required")
		return
	}

	u, err := h.users.Register(c.Request.Context(), req.Username, req.Email, req.Password)
	if err != nil {
		respond(c, command.FromError[AccountView](err))
		return
	}
	view := accountView(u)
	respond(c, command.Ok(&view))
}

// Login handles POST /auth/login. Invalid credentials answer 401 rather than
// leaking whether the email exists.
func (h *AuthHandlers) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "email and password required")
		return
	}

	token, u, err := h.users.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, services.ErrInvalidCredentials) {
			c.AbortWithStatusJSON(http.StatusUnauthorized,
				command.Fail[command.Unit](command.CodeForbidden, "invalid credentials"))
			return
		}
		respond(c, command.FromError[TokenResponse](err))
		return
	}
	resp := TokenResponse{AccessToken: token, User: accountView(u)}
	respond(c, command.Ok(&resp))
}

// Package services – UserService
//
// Registration and login. This sits outside the moderation-aware command
// core: its job is to mint the trusted identity (a user id inside a signed
// token) that the dispatcher later injects into every command.
package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"gorm.io/gorm"

	"github.com/tbourn/go-messenger-backend/internal/auth"
	"github.com/tbourn/go-messenger-backend/internal/domain"
	"github.com/tbourn/go-messenger-backend/internal/repo"
)

// UserService manages accounts and access tokens.
type UserService struct {
	DB *gorm.DB

	// TokenSecret signs access tokens; TokenTTL bounds their validity.
	TokenSecret string
	TokenTTL    time.Duration

	// NameLocale drives display-name casing; defaults to English.
	NameLocale language.Tag
}

// Register creates an account with a bcrypt-hashed password. The display
// name is normalized and title-cased per the configured locale.
func (s *UserService) Register(ctx context.Context, username, email, password string) (*domain.User, error) {
	username = normalizeTitle(username)
	email = strings.ToLower(strings.TrimSpace(email))
	if username == "" || email == "" || password == "" {
		return nil, ErrEmptyText
	}

	if _, err := repo.GetUserByEmail(ctx, s.DB, email); err == nil {
		return nil, ErrEmailTaken
	} else if !errors.Is(err, repo.ErrNotFound) {
		return nil, err
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return nil, err
	}

	caser := cases.Title(s.localeOrDefault())
	return repo.CreateUser(ctx, s.DB, caser.String(username), email, hash)
}

// Login verifies credentials and issues a signed access token whose subject
// is the user id.
func (s *UserService) Login(ctx context.Context, email, password string) (string, *domain.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	u, err := repo.GetUserByEmail(ctx, s.DB, email)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return "", nil, ErrInvalidCredentials
		}
		return "", nil, err
	}
	if !auth.VerifyPassword(u.PasswordHash, password) {
		return "", nil, ErrInvalidCredentials
	}

	token, err := auth.IssueAccessToken(u.ID, s.TokenSecret, s.tokenTTLOrDefault())
	if err != nil {
		return "", nil, err
	}
	return token, u, nil
}

func (s *UserService) localeOrDefault() language.Tag {
	if s.NameLocale == language.Und {
		return language.English
	}
	return s.NameLocale
}

func (s *UserService) tokenTTLOrDefault() time.Duration {
	if s.TokenTTL <= 0 {
		return 24 * time.Hour
	}
	return s.TokenTTL
}

package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/url"

	"github.com/gin-gonic/gin"
	"github.com/oneday/onedayclass/internal/app/models"
	"github.com/oneday/onedayclass/internal/pkg/apperrors"
	"github.com/oneday/onedayclass/internal/pkg/logger"
	"github.com/oneday/onedayclass/internal/pkg/session"
)

const (
	currentUserKey = "currentUser"

	// LoginPath is where unauthenticated requests to protected routes are sent
	LoginPath = "/auth/login"
)

// UserLoader maps a session user id to a user record
type UserLoader interface {
	LoadUser(ctx context.Context, id int64) (*models.User, error)
}

// AuthMiddleware restores the signed-in user from the session cookie and guards protected routes
type AuthMiddleware struct {
	sessions *session.Manager
	users    UserLoader
}

// NewAuthMiddleware creates a new AuthMiddleware
func NewAuthMiddleware(sessions *session.Manager, users UserLoader) *AuthMiddleware {
	return &AuthMiddleware{sessions: sessions, users: users}
}

// LoadUser puts the session's user into the request context. A session that points at a
// user that no longer exists is cleared.
func (m *AuthMiddleware) LoadUser() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := m.sessions.UserID(c.Request)
		if !ok {
			c.Next()
			return
		}

		user, err := m.users.LoadUser(c.Request.Context(), id)
		switch {
		case err == nil:
			c.Set(currentUserKey, user)
		case errors.Is(err, apperrors.ErrUserNotFound):
			if clearErr := m.sessions.Clear(c.Writer, c.Request); clearErr != nil {
				logger.Warn().Err(clearErr).Msg("Failed to clear stale session")
			}
		default:
			logger.Error().Err(err).Int64("userID", id).Msg("Failed to load session user")
		}
		c.Next()
	}
}

// RequireLogin redirects anonymous requests to the login page, keeping the requested
// path in the "next" query parameter.
func (m *AuthMiddleware) RequireLogin() gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, ok := CurrentUser(c); ok {
			c.Next()
			return
		}

		if err := m.sessions.AddFlash(c.Writer, c.Request, session.FlashInfo, "Please log in to access this page."); err != nil {
			logger.Warn().Err(err).Msg("Failed to store login flash")
		}
		c.Redirect(http.StatusFound, LoginPath+"?next="+url.QueryEscape(c.Request.URL.RequestURI()))
		c.Abort()
	}
}

// CurrentUser returns the signed-in user of the request, if any
func CurrentUser(c *gin.Context) (*models.User, bool) {
	v, exists := c.Get(currentUserKey)
	if !exists {
		return nil, false
	}
	user, ok := v.(*models.User)
	return user, ok && user != nil
}

// CurrentUserID returns the signed-in user's id or 0
func CurrentUserID(c *gin.Context) int64 {
	if user, ok := CurrentUser(c); ok {
		return user.ID
	}
	return 0
}

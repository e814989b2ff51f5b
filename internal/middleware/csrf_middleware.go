package middleware

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/oneday/onedayclass/internal/pkg/logger"
)

const (
	csrfTokenKey = "csrfToken"

	// CSRFField is the hidden form field carrying the session's form token
	CSRFField = "csrf_token"
	// CSRFHeader is accepted instead of the form field for scripted requests
	CSRFHeader = "X-CSRF-Token"

	formMemory = 8 << 20
)

// CSRFProtect binds a form token to every session and refuses state-changing
// requests that do not send it back. Safe methods only expose the token to
// the templates.
func (m *AuthMiddleware) CSRFProtect() gin.HandlerFunc {
	return func(c *gin.Context) {
		switch c.Request.Method {
		case http.MethodGet, http.MethodHead, http.MethodOptions:
			token, err := m.sessions.CSRFToken(c.Writer, c.Request)
			if err != nil {
				logger.Error().Err(err).Msg("Failed to issue form token")
			}
			c.Set(csrfTokenKey, token)
			c.Next()
			return
		}

		token := c.GetHeader(CSRFHeader)
		if token == "" {
			if err := c.Request.ParseMultipartForm(formMemory); err != nil && !errors.Is(err, http.ErrNotMultipart) {
				var tooLarge *http.MaxBytesError
				if errors.As(err, &tooLarge) {
					ErrorPage(c, http.StatusRequestEntityTooLarge, "The uploaded data is too large.")
					return
				}
				ErrorPage(c, http.StatusBadRequest, "The submitted form could not be read.")
				return
			}
			token = c.Request.PostForm.Get(CSRFField)
		}

		if !m.sessions.ValidCSRFToken(c.Request, token) {
			logger.Warn().
				Str("method", c.Request.Method).
				Str("path", c.Request.URL.Path).
				Str("ip", c.ClientIP()).
				Msg("Form token missing or invalid")
			ErrorPage(c, http.StatusForbidden, "The form has expired. Reload the page and try again.")
			return
		}
		c.Set(csrfTokenKey, token)
		c.Next()
	}
}

// CSRFToken returns the form token of the request for rendering into forms
func CSRFToken(c *gin.Context) string {
	return c.GetString(csrfTokenKey)
}

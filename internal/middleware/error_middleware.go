package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/oneday/onedayclass/internal/pkg/apperrors"
	"github.com/oneday/onedayclass/internal/pkg/logger"
)

// ErrorTemplate is the page rendered for every error status
const ErrorTemplate = "error.html"

// ErrorPage renders the error template with status and message and aborts the chain
func ErrorPage(c *gin.Context, status int, message string) {
	c.HTML(status, ErrorTemplate, gin.H{
		"Status":  status,
		"Title":   http.StatusText(status),
		"Message": message,
	})
	c.Abort()
}

// HandleError renders the not-found page for missing resources and a generic server
// error for anything unexpected. Every other error class is handled by the caller.
func HandleError(c *gin.Context, err error) {
	switch {
	case apperrors.IsNotFound(err):
		ErrorPage(c, http.StatusNotFound, apperrors.Message(err, "The requested page was not found."))
	case apperrors.Is(err, apperrors.ErrBadRequest):
		ErrorPage(c, http.StatusBadRequest, apperrors.Message(err, "The request could not be understood."))
	default:
		logger.Error().Err(err).
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Msg("Unhandled error")
		ErrorPage(c, http.StatusInternalServerError, "Something went wrong on our side.")
	}
}

// NotFound renders the not-found page for unknown routes
func NotFound() gin.HandlerFunc {
	return func(c *gin.Context) {
		ErrorPage(c, http.StatusNotFound, "The requested page was not found.")
	}
}

// Recovery turns a panic into the server error page
func Recovery() gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, recovered any) {
		logger.Error().Interface("panic", recovered).Str("path", c.Request.URL.Path).Msg("Recovered from panic")
		ErrorPage(c, http.StatusInternalServerError, "Something went wrong on our side.")
	})
}

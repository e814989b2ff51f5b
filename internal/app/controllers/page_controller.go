package controllers

import (
	"errors"
	"mime/multipart"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/oneday/onedayclass/internal/app/models/dto"
	"github.com/oneday/onedayclass/internal/middleware"
	"github.com/oneday/onedayclass/internal/pkg/apperrors"
	"github.com/oneday/onedayclass/internal/pkg/logger"
	"github.com/oneday/onedayclass/internal/pkg/session"
)

// multipartMemory is the part of a multipart body kept in memory; the rest spills to temp files
const multipartMemory = 8 << 20

// form is implemented by every dto form struct
type form interface {
	Normalize()
}

// parseIDParam parses a positive ID parameter from the request path
func parseIDParam(ctx *gin.Context, paramName string) (int64, error) {
	id, err := strconv.ParseInt(ctx.Param(paramName), 10, 64)
	if err != nil {
		return 0, err
	}
	if id <= 0 {
		return 0, apperrors.ErrBadRequest
	}
	return id, nil
}

// pageController holds what every page handler needs: the session for flashes
type pageController struct {
	sessions *session.Manager
}

// render adds the signed-in user, pending flashes and an empty error set to data
// before rendering the named template
func (p *pageController) render(ctx *gin.Context, status int, name string, data gin.H) {
	if data == nil {
		data = gin.H{}
	}
	if user, ok := middleware.CurrentUser(ctx); ok {
		data["User"] = user
	}
	if _, ok := data["Errors"]; !ok {
		data["Errors"] = dto.FieldErrors{}
	}
	data["CSRFToken"] = middleware.CSRFToken(ctx)
	data["Flashes"] = p.sessions.Flashes(ctx.Writer, ctx.Request)
	ctx.HTML(status, name, data)
}

// flash queues a one-time message for the next rendered page
func (p *pageController) flash(ctx *gin.Context, category, message string) {
	if err := p.sessions.AddFlash(ctx.Writer, ctx.Request, category, message); err != nil {
		logger.Warn().Err(err).Str("path", ctx.Request.URL.Path).Msg("Failed to store flash message")
	}
}

// redirect sends the browser to location with a flash message
func (p *pageController) redirect(ctx *gin.Context, category, message, location string) {
	p.flash(ctx, category, message)
	ctx.Redirect(http.StatusFound, location)
}

// refused handles an ownership refusal with a flash and a redirect. It reports
// whether err was one.
func (p *pageController) refused(ctx *gin.Context, err error, message, location string) bool {
	if !errors.Is(err, apperrors.ErrPermissionDenied) {
		return false
	}
	p.redirect(ctx, session.FlashDanger, message, location)
	return true
}

// pathID parses the named path parameter, rendering the not-found page when it is not an id
func pathID(ctx *gin.Context, name string) (int64, bool) {
	id, err := parseIDParam(ctx, name)
	if err != nil {
		middleware.ErrorPage(ctx, http.StatusNotFound, "The requested page was not found.")
		return 0, false
	}
	return id, true
}

// bindForm parses the urlencoded or multipart body into f, normalizes it and runs the
// binding rules. ok is false when a response has already been written.
func bindForm(ctx *gin.Context, f form) (errs dto.FieldErrors, ok bool) {
	if err := ctx.Request.ParseMultipartForm(multipartMemory); err != nil && !errors.Is(err, http.ErrNotMultipart) {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			middleware.ErrorPage(ctx, http.StatusRequestEntityTooLarge, "The upload is too large.")
			return nil, false
		}
		logger.Warn().Err(err).Str("path", ctx.Request.URL.Path).Msg("Failed to parse form")
		return dto.FieldErrors{}.Add(dto.FormKey, "The submitted form could not be read."), true
	}

	if err := binding.MapFormWithTag(f, ctx.Request.PostForm, "form"); err != nil {
		return dto.FieldErrors{}.Add(dto.FormKey, "The submitted form could not be read."), true
	}
	f.Normalize()
	if err := binding.Validator.ValidateStruct(f); err != nil {
		return dto.HandleValidationError(err), true
	}
	return dto.FieldErrors{}, true
}

// fieldErrors extracts a field-scoped error raised by a service, e.g. a rejected upload
func fieldErrors(err error) (dto.FieldErrors, bool) {
	var ce *apperrors.CustomError
	if errors.As(err, &ce) && ce.Field != "" {
		return dto.FieldErrors{}.Add(ce.Field, ce.Message), true
	}
	return nil, false
}

// formFile returns the first file of a multipart field, or nil
func formFile(ctx *gin.Context, field string) *multipart.FileHeader {
	files := formFiles(ctx, field)
	if len(files) == 0 {
		return nil
	}
	return files[0]
}

// formFiles returns every file of a multipart field
func formFiles(ctx *gin.Context, field string) []*multipart.FileHeader {
	if ctx.Request.MultipartForm == nil {
		return nil
	}
	return ctx.Request.MultipartForm.File[field]
}

// safeNext accepts only same-site relative paths as a post-login target
func safeNext(next string) (string, bool) {
	if next == "" || !strings.HasPrefix(next, "/") || strings.HasPrefix(next, "//") || strings.HasPrefix(next, "/\\") {
		return "", false
	}
	u, err := url.Parse(next)
	if err != nil || u.Scheme != "" || u.Host != "" {
		return "", false
	}
	return next, true
}

package controllers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/oneday/onedayclass/internal/app/models/dto"
	"github.com/oneday/onedayclass/internal/app/services"
	"github.com/oneday/onedayclass/internal/middleware"
	"github.com/oneday/onedayclass/internal/pkg/apperrors"
	"github.com/oneday/onedayclass/internal/pkg/logger"
	"github.com/oneday/onedayclass/internal/pkg/session"
)

// MyPagePath is where a login without a "next" target lands
const MyPagePath = "/auth/mypage"

// AuthController handles signup, login, logout and the profile page
type AuthController struct {
	pageController
	authService *services.AuthService
}

// NewAuthController creates a new AuthController
func NewAuthController(sessions *session.Manager, authService *services.AuthService) *AuthController {
	return &AuthController{
		pageController: pageController{sessions: sessions},
		authService:    authService,
	}
}

// SignupForm renders the signup page
func (c *AuthController) SignupForm(ctx *gin.Context) {
	c.render(ctx, http.StatusOK, "signup.html", gin.H{"Title": "Sign up", "Form": dto.SignupForm{}})
}

// Signup creates an account and sends the user to the login page
func (c *AuthController) Signup(ctx *gin.Context) {
	var form dto.SignupForm
	errs, ok := bindForm(ctx, &form)
	if !ok {
		return
	}
	if errs.HasErrors() {
		c.renderSignup(ctx, http.StatusBadRequest, form, errs)
		return
	}

	if _, err := c.authService.Signup(ctx.Request.Context(), form); err != nil {
		if fe, ok := fieldErrors(err); ok {
			c.renderSignup(ctx, http.StatusBadRequest, form, fe)
			return
		}
		if apperrors.IsConflict(err) {
			c.flash(ctx, session.FlashWarning, apperrors.Message(err, "That account already exists."))
			c.renderSignup(ctx, http.StatusConflict, form, nil)
			return
		}
		middleware.HandleError(ctx, err)
		return
	}

	c.redirect(ctx, session.FlashSuccess, "Your account was created. Please log in.", middleware.LoginPath)
}

func (c *AuthController) renderSignup(ctx *gin.Context, status int, form dto.SignupForm, errs dto.FieldErrors) {
	form.Password1, form.Password2 = "", ""
	data := gin.H{"Title": "Sign up", "Form": form}
	if errs != nil {
		data["Errors"] = errs
	}
	c.render(ctx, status, "signup.html", data)
}

// LoginForm renders the login page, carrying a safe "next" target through the form
func (c *AuthController) LoginForm(ctx *gin.Context) {
	next, _ := safeNext(ctx.Query("next"))
	c.render(ctx, http.StatusOK, "login.html", gin.H{"Title": "Log in", "Form": dto.LoginForm{}, "Next": next})
}

// Login starts a session and redirects to "next" or the profile page
func (c *AuthController) Login(ctx *gin.Context) {
	next, hasNext := safeNext(ctx.Query("next"))

	var form dto.LoginForm
	errs, ok := bindForm(ctx, &form)
	if !ok {
		return
	}
	if errs.HasErrors() {
		c.renderLogin(ctx, http.StatusBadRequest, form, next, errs)
		return
	}

	user, err := c.authService.Authenticate(ctx.Request.Context(), form.Username, form.Password)
	if err != nil {
		if errors.Is(err, apperrors.ErrInvalidCredentials) {
			c.flash(ctx, session.FlashDanger, "Incorrect username or password.")
			c.renderLogin(ctx, http.StatusUnauthorized, form, next, nil)
			return
		}
		middleware.HandleError(ctx, err)
		return
	}

	if err := c.sessions.Login(ctx.Writer, ctx.Request, user.ID); err != nil {
		middleware.HandleError(ctx, err)
		return
	}
	logger.Info().Int64("userID", user.ID).Msg("User logged in")

	target := MyPagePath
	if hasNext {
		target = next
	}
	c.redirect(ctx, session.FlashSuccess, "Welcome back, "+user.Username+"!", target)
}

func (c *AuthController) renderLogin(ctx *gin.Context, status int, form dto.LoginForm, next string, errs dto.FieldErrors) {
	form.Password = ""
	data := gin.H{"Title": "Log in", "Form": form, "Next": next}
	if errs != nil {
		data["Errors"] = errs
	}
	c.render(ctx, status, "login.html", data)
}

// Logout drops the whole session
func (c *AuthController) Logout(ctx *gin.Context) {
	if err := c.sessions.Clear(ctx.Writer, ctx.Request); err != nil {
		logger.Warn().Err(err).Msg("Failed to clear session on logout")
	}
	ctx.Redirect(http.StatusFound, middleware.LoginPath)
}

// MyPage renders the signed-in user's profile with their reservations
func (c *AuthController) MyPage(ctx *gin.Context) {
	user, _ := middleware.CurrentUser(ctx)
	page, err := c.authService.MyPage(ctx.Request.Context(), user)
	if err != nil {
		middleware.HandleError(ctx, err)
		return
	}
	c.render(ctx, http.StatusOK, "mypage.html", gin.H{"Title": user.Username, "Page": page})
}

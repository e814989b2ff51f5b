package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/oneday/onedayclass/internal/pkg/session"
)

// HomeController serves the landing page
type HomeController struct {
	pageController
}

// NewHomeController creates a new HomeController
func NewHomeController(sessions *session.Manager) *HomeController {
	return &HomeController{pageController{sessions: sessions}}
}

// Index renders the landing page
func (c *HomeController) Index(ctx *gin.Context) {
	c.render(ctx, http.StatusOK, "home.html", gin.H{"Title": "Welcome"})
}

package routes

import (
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/oneday/onedayclass/internal/app/controllers"
	"github.com/oneday/onedayclass/internal/middleware"
	"github.com/oneday/onedayclass/internal/pkg/validation"
	"github.com/oneday/onedayclass/internal/web"
)

// Controllers groups the page handlers mounted by SetupRouter
type Controllers struct {
	Home        *controllers.HomeController
	Question    *controllers.QuestionController
	Answer      *controllers.AnswerController
	Auth        *controllers.AuthController
	Course      *controllers.CourseController
	Reservation *controllers.ReservationController
}

// EngineOptions configures the global middleware chain
type EngineOptions struct {
	AllowedOrigins []string
	MaxBodyBytes   int64
}

// LoginLimit bounds POST /auth/login per client IP
type LoginLimit struct {
	Attempts int
	Window   time.Duration
}

var registerOnce sync.Once

// registerValidation installs the custom rules on gin's validator engine
func registerValidation() error {
	var err error
	registerOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			err = errors.New("gin validator engine is not go-playground/validator")
			return
		}
		err = validation.Register(v)
	})
	return err
}

// NewEngine creates a gin engine with the page templates and the global middleware:
// recovery, request logging, CORS, the body size limit, session user loading and
// form token checks.
func NewEngine(opts EngineOptions, authMiddleware *middleware.AuthMiddleware) (*gin.Engine, error) {
	if err := registerValidation(); err != nil {
		return nil, err
	}
	templates, err := web.Templates()
	if err != nil {
		return nil, err
	}

	router := gin.New()
	router.SetHTMLTemplate(templates)

	router.Use(middleware.Recovery())
	router.Use(middleware.RequestLogger())
	if len(opts.AllowedOrigins) > 0 {
		router.Use(cors.New(cors.Config{
			AllowOrigins:     opts.AllowedOrigins,
			AllowMethods:     []string{http.MethodGet, http.MethodPost},
			AllowHeaders:     []string{"Origin", "Content-Type", middleware.CSRFHeader},
			AllowCredentials: true,
			MaxAge:           12 * time.Hour,
		}))
	}
	if opts.MaxBodyBytes > 0 {
		router.Use(middleware.MaxBodySize(opts.MaxBodyBytes))
	}
	router.Use(authMiddleware.LoadUser())
	router.Use(authMiddleware.CSRFProtect())

	router.NoRoute(middleware.NotFound())
	return router, nil
}

// SetupRouter configures all application routes
func SetupRouter(
	router *gin.Engine,
	c Controllers,
	authMiddleware *middleware.AuthMiddleware,
	rateLimiter *middleware.RateLimiter,
	loginLimit LoginLimit,
) {
	requireLogin := authMiddleware.RequireLogin()

	router.GET("/", c.Home.Index)
	router.GET("/qna", c.Question.List)

	// --- Question board ---
	question := router.Group("/question")
	{
		question.GET("/list/", c.Question.List)
		question.GET("/detail/:id/", c.Question.Detail)

		owned := question.Group("", requireLogin)
		owned.GET("/create/", c.Question.CreateForm)
		owned.POST("/create/", c.Question.Create)
		owned.GET("/modify/:id/", c.Question.ModifyForm)
		owned.POST("/modify/:id/", c.Question.Modify)
		owned.GET("/delete/:id/", c.Question.Delete)
	}

	answer := router.Group("/answer", requireLogin)
	{
		answer.POST("/create/:question_id", c.Answer.Create)
		answer.GET("/modify/:id/", c.Answer.ModifyForm)
		answer.POST("/modify/:id/", c.Answer.Modify)
		answer.GET("/delete/:id/", c.Answer.Delete)
	}

	// --- Accounts ---
	auth := router.Group("/auth")
	{
		auth.GET("/signup", c.Auth.SignupForm)
		auth.POST("/signup", c.Auth.Signup)
		auth.GET("/login", c.Auth.LoginForm)
		auth.POST("/login",
			rateLimiter.Limit("login", loginLimit.Attempts, loginLimit.Window, http.MethodPost),
			c.Auth.Login)
		auth.GET("/logout", c.Auth.Logout)
		auth.POST("/logout", c.Auth.Logout)
		auth.GET("/mypage", requireLogin, c.Auth.MyPage)
	}

	// --- Courses ---
	course := router.Group("/course")
	{
		course.GET("", c.Course.Index)
		course.GET("/", c.Course.Index)
		course.GET("/workspace", c.Course.Workspace)
		course.GET("/uploads/*filepath", c.Course.Upload)

		owned := course.Group("", requireLogin)
		owned.GET("/create", c.Course.CreateForm)
		owned.POST("/create", c.Course.Create)
		owned.GET("/:id/manage", c.Course.Manage)
		owned.POST("/:id/edit", c.Course.Edit)
		owned.POST("/:id/delete", c.Course.Delete)
	}

	// --- Reservations: every route is scoped to the signed-in user ---
	reservations := router.Group("/reservations", requireLogin)
	{
		reservations.GET("/", c.Reservation.List)
		reservations.GET("/new", c.Reservation.NewForm)
		reservations.POST("/new", c.Reservation.Create)
		reservations.GET("/:id", c.Reservation.Detail)
		reservations.GET("/:id/edit", c.Reservation.EditForm)
		reservations.POST("/:id/edit", c.Reservation.Edit)
		reservations.POST("/:id/delete", c.Reservation.Delete)
	}
}

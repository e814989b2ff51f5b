package bootstrap

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	appControllers "github.com/oneday/onedayclass/internal/app/controllers"
	appMigrations "github.com/oneday/onedayclass/internal/app/migrations"
	appRepos "github.com/oneday/onedayclass/internal/app/repositories"
	appRoutes "github.com/oneday/onedayclass/internal/app/routes"
	appServices "github.com/oneday/onedayclass/internal/app/services"
	"github.com/oneday/onedayclass/internal/config"
	"github.com/oneday/onedayclass/internal/db"
	appMiddleware "github.com/oneday/onedayclass/internal/middleware"
	"github.com/oneday/onedayclass/internal/pkg/filestorage"
	"github.com/oneday/onedayclass/internal/pkg/helpers"
	"github.com/oneday/onedayclass/internal/pkg/logger"
	"github.com/oneday/onedayclass/internal/pkg/session"
	"github.com/oneday/onedayclass/internal/seed"
)

// Dependencies holds all the application dependencies
type Dependencies struct {
	Repos          *appRepos.Repositories
	Services       *appServices.Services
	Controllers    appRoutes.Controllers
	Sessions       *session.Manager
	AuthMiddleware *appMiddleware.AuthMiddleware
	RateLimiter    *appMiddleware.RateLimiter
	Redis          *redis.Client // nil when no redis.addr is configured
	FileStorage    *filestorage.LocalStorage
	Logger         zerolog.Logger
}

// LoadConfigAndSetupLogger loads configuration and initializes the logger.
func LoadConfigAndSetupLogger() (*config.Config, zerolog.Logger, error) {
	configPath := filepath.Join("configs", "config.yaml")
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		logger.Error().Err(err).Msg("Failed to load configuration")
		return nil, zerolog.Logger{}, err
	}

	logLevel := logger.ParseLevel(cfg.Logging.Level)
	prettyLog := strings.ToLower(cfg.Logging.Format) == "text"

	logger.Configure(logger.Config{
		Level:  logLevel,
		Pretty: prettyLog,
	})

	lgr := log.Logger
	lgr.Info().Str("logLevel", string(logLevel)).Str("logFormat", cfg.Logging.Format).Msg("Logger configured")
	return cfg, lgr, nil
}

// SetupDatabase establishes the database connection and runs migrations.
func SetupDatabase(cfg *config.Config, lgr zerolog.Logger) (*pgxpool.Pool, error) {
	lgr.Info().Msg("Establishing database connection...")
	database, err := db.NewPostgresDB(cfg)
	if err != nil {
		lgr.Error().Err(err).Msg("Failed to connect to database")
		return nil, err
	}
	dbPool := database.Pool
	lgr.Info().Msg("Database connection successfully established.")

	lgr.Info().Msg("Running database migrations...")
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()
	if err := appMigrations.NewMigrator(dbPool).Migrate(ctx); err != nil {
		lgr.Error().Err(err).Msg("Database migration error")
		dbPool.Close()
		return nil, fmt.Errorf("database migrations failed: %w", err)
	}
	lgr.Info().Msg("Database migrations successfully applied.")

	if cfg.Seed.DemoCourses {
		if err := seed.CreateDefaultData(ctx, appRepos.NewCourseRepository(dbPool, appRepos.NewCourseImageRepository(dbPool)), lgr); err != nil {
			lgr.Error().Err(err).Msg("Failed to create default data, proceeding anyway...")
		}
	}

	return dbPool, nil
}

// SetupRedis connects the optional Redis client backing the login rate limiter.
// It returns nil without error when no address is configured.
func SetupRedis(cfg *config.Config, lgr zerolog.Logger) (*redis.Client, error) {
	if cfg.Redis.Addr == "" {
		lgr.Info().Msg("Redis not configured, login rate limiting disabled")
		return nil, nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}
	lgr.Info().Str("addr", cfg.Redis.Addr).Msg("Redis connection established")
	return client, nil
}

// BuildDependencies initializes application repositories, services, and controllers.
func BuildDependencies(cfg *config.Config, dbPool *pgxpool.Pool, redisClient *redis.Client, lgr zerolog.Logger) (*Dependencies, error) {
	deps := &Dependencies{Logger: lgr, Redis: redisClient}

	deps.Repos = appRepos.NewRepositories(dbPool)

	var err error
	deps.FileStorage, err = filestorage.NewLocalStorage(cfg.Upload.Root)
	if err != nil {
		lgr.Error().Err(err).Msg("Failed to initialize file storage")
		return nil, fmt.Errorf("failed to initialize file storage: %w", err)
	}

	deps.Services = appServices.NewServices(appServices.Repos{
		Users:        deps.Repos.UserRepository,
		Questions:    deps.Repos.QuestionRepository,
		Answers:      deps.Repos.AnswerRepository,
		Reservations: deps.Repos.ReservationRepository,
		Courses:      deps.Repos.CourseRepository,
	}, deps.FileStorage, cfg.Upload.AllowedExtensions)

	deps.Sessions = session.NewManager([]byte(cfg.Session.Secret), session.Options{
		Name:     cfg.Session.Name,
		MaxAge:   cfg.Session.MaxAge,
		Secure:   cfg.Session.Secure,
		HTTPOnly: true,
	})
	deps.AuthMiddleware = appMiddleware.NewAuthMiddleware(deps.Sessions, deps.Services.Auth)
	deps.RateLimiter = appMiddleware.NewRateLimiter(redisClient)

	deps.Controllers = appRoutes.Controllers{
		Home:        appControllers.NewHomeController(deps.Sessions),
		Question:    appControllers.NewQuestionController(deps.Sessions, deps.Services.Question),
		Answer:      appControllers.NewAnswerController(deps.Sessions, deps.Services.Answer, deps.Services.Question),
		Auth:        appControllers.NewAuthController(deps.Sessions, deps.Services.Auth),
		Course:      appControllers.NewCourseController(deps.Sessions, deps.Services.Course),
		Reservation: appControllers.NewReservationController(deps.Sessions, deps.Services.Reservation),
	}

	return deps, nil
}

// SetupRouter configures the Gin engine with middleware and routes.
func SetupRouter(cfg *config.Config, deps *Dependencies, lgr zerolog.Logger) (*gin.Engine, error) {
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
		lgr.Info().Msg("Setting Gin mode to release")
	} else {
		gin.SetMode(gin.DebugMode)
		lgr.Info().Msg("Setting Gin mode to debug")
	}

	router, err := appRoutes.NewEngine(appRoutes.EngineOptions{
		AllowedOrigins: cfg.Server.AllowedOrigins,
		MaxBodyBytes:   cfg.Upload.MaxBodyBytes,
	}, deps.AuthMiddleware)
	if err != nil {
		return nil, fmt.Errorf("failed to create router: %w", err)
	}

	appRoutes.SetupRouter(router, deps.Controllers, deps.AuthMiddleware, deps.RateLimiter, appRoutes.LoginLimit{
		Attempts: cfg.RateLimit.LoginAttempts,
		Window:   helpers.ParseDuration(cfg.RateLimit.LoginWindow, time.Minute),
	})

	return router, nil
}

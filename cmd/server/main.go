package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"

	"github.com/prabhjot122/LawCourt/internal/config"
	"github.com/prabhjot122/LawCourt/internal/database"
	"github.com/prabhjot122/LawCourt/internal/handler"
	"github.com/prabhjot122/LawCourt/internal/oauth"
	"github.com/prabhjot122/LawCourt/internal/queue"
	"github.com/prabhjot122/LawCourt/internal/repository"
	"github.com/prabhjot122/LawCourt/internal/router"
	"github.com/prabhjot122/LawCourt/pkg/log"
)

func main() {
	_ = godotenv.Load()

	cfg := config.Load()
	logger := log.New(cfg.Env)

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName, cfg.DBPoolSize)
	if err != nil {
		logger.Fatal().Err(err).Msg("database connection failed")
	}
	defer db.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	if err := database.Migrate(ctx, db); err != nil {
		cancel()
		logger.Fatal().Err(err).Msg("migrations failed")
	}
	cancel()

	rdb := config.NewRedisClient()
	if rdb == nil {
		logger.Warn().Msg("redis unavailable; rate limiting and response cache disabled")
	}

	users := repository.NewUserRepo(db)
	profiles := repository.NewProfileRepo(db)
	sessions := repository.NewSessionRepo(db, cfg.SessionIdleTTL)
	requests := repository.NewAccessRequestRepo(db)
	audit := repository.NewAuditRepo(db)
	blogs := repository.NewBlogRepo(db)
	papers := repository.NewResearchRepo(db)
	notes := repository.NewNoteRepo(db)
	internships := repository.NewInternshipRepo(db)
	courses := repository.NewCourseRepo(db)
	quizzes := repository.NewQuizRepo(db)

	verifier := oauth.NewGoogleVerifier(cfg.GoogleClientID)

	go func() {
		if err := queue.StartAuditConsumer(logger); err != nil {
			logger.Error().Err(err).Msg("audit consumer stopped")
		}
	}()

	e := echo.New()
	e.HideBanner = true
	e.Use(echomw.Recover())
	e.Use(echomw.CORS())

	router.Register(e, router.Deps{
		Auth:        handler.NewAuthHandler(cfg, users, sessions, profiles),
		OAuth:       handler.NewOAuthHandler(verifier, users, sessions, profiles),
		Access:      handler.NewAccessHandler(requests),
		Admin:       handler.NewAdminHandler(cfg, users, profiles, audit),
		Email:       handler.NewEmailHandler(users, logger),
		Blogs:       handler.NewBlogHandler(blogs, users),
		Research:    handler.NewResearchHandler(papers, users),
		Notes:       handler.NewNoteHandler(notes),
		Internships: handler.NewInternshipHandler(internships, users),
		Courses:     handler.NewCourseHandler(courses, users),
		Quizzes:     handler.NewQuizHandler(quizzes, users),
		Health:      handler.Health(db),
		Sessions:    sessions,
		Users:       users,
		RateLimit:   config.LoadRateLimitConfig(),
		Cache:       config.LoadCacheConfig(),
		Redis:       rdb,
	})

	go func() {
		addr := ":" + cfg.Port
		logger.Info().Str("addr", addr).Str("env", cfg.Env).Msg("listening")
		if err := e.Start(addr); err != nil {
			logger.Info().Err(err).Msg("server stopped")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("shutdown failed")
	}
}

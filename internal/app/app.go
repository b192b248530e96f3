// Package app wires configuration, storage and transport into a runnable
// service. The CLI in cmd/server is a thin layer over it.
package app

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"

	"github.com/iliyamo/pdfsum/internal/config"
	"github.com/iliyamo/pdfsum/internal/database"
	"github.com/iliyamo/pdfsum/internal/database/migrations"
	"github.com/iliyamo/pdfsum/internal/handler"
	"github.com/iliyamo/pdfsum/internal/middleware"
	"github.com/iliyamo/pdfsum/internal/queue"
	"github.com/iliyamo/pdfsum/internal/repository"
	"github.com/iliyamo/pdfsum/internal/router"
	"github.com/iliyamo/pdfsum/internal/service"
	"github.com/iliyamo/pdfsum/internal/storage"
	"github.com/iliyamo/pdfsum/internal/summarizer"
)

// Deps are the collaborators an HTTP server is built from. Events,
// Summarizer and Redis may be nil.
type Deps struct {
	Cfg        config.Config
	Log        *slog.Logger
	DB         *sql.DB
	Blobs      storage.Store
	Summarizer summarizer.Summarizer
	Events     handler.UploadNotifier
	Redis      *redis.Client
	IDs        handler.IDGenerator
}

// App owns every long-lived resource of the process. The caller must call
// Close when done.
type App struct {
	Cfg       config.Config
	Log       *slog.Logger
	DB        *sql.DB
	Blobs     storage.Store
	Redis     *redis.Client
	Publisher *queue.Publisher
	Summaries *service.SummaryService
	Echo      *echo.Echo
}

// New opens the database, applies or verifies migrations, builds the blob
// store and the optional Redis, RabbitMQ and summarizer clients, and
// assembles the HTTP server.
func New(ctx context.Context, cfg config.Config, log *slog.Logger) (*App, error) {
	db, err := database.Open(cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	if cfg.Database.AutoMigrate {
		if err := migrations.MigrateUp(db, cfg.Database.Driver); err != nil {
			db.Close()
			return nil, fmt.Errorf("applying migrations: %w", err)
		}
	} else if err := migrations.CheckDBMigrationStatus(db, cfg.Database.Driver); err != nil {
		db.Close()
		return nil, fmt.Errorf("database schema out of date: %w", err)
	}

	blobs, err := storage.NewStoreFromConfig(ctx, cfg.Blob)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("creating blob store: %w", err)
	}

	a := &App{Cfg: cfg, Log: log, DB: db, Blobs: blobs}

	a.Redis = config.NewRedisClient(cfg.Redis)
	if cfg.Redis.Enabled && a.Redis == nil {
		log.Warn("redis unreachable, rate limit and cache disabled", "addr", cfg.Redis.Addr)
	}

	deps := Deps{
		Cfg:   cfg,
		Log:   log,
		DB:    db,
		Blobs: blobs,
		Redis: a.Redis,
	}
	// A nil *Client must not become a non-nil interface value.
	if c := summarizer.NewClient(cfg.Summarizer.URL, cfg.Summarizer.Timeout); c != nil {
		deps.Summarizer = c
	}
	if cfg.Events.Enabled {
		a.Publisher = queue.NewPublisher(cfg.Events.RabbitMQURL)
		deps.Events = a.Publisher
	}

	a.Summaries = newSummaryService(deps)
	a.Echo = newServer(deps, a.Summaries)
	return a, nil
}

// NewServer assembles the echo instance with middleware and routes.
func NewServer(d Deps) *echo.Echo {
	return newServer(d, newSummaryService(d))
}

func newSummaryService(d Deps) *service.SummaryService {
	db := d.DB
	return &service.SummaryService{
		PDFs:       repository.NewPDFRepo(db),
		Summaries:  repository.NewSummaryRepo(db),
		Blobs:      d.Blobs,
		Summarizer: d.Summarizer,
		Log:        d.Log,
	}
}

func newServer(d Deps, summaries *service.SummaryService) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(echomw.Recover())
	e.Use(echomw.RequestID())
	e.Use(middleware.RequestLogger(d.Log))
	e.Use(middleware.Identity(d.Cfg.Auth.JWTSecret))
	e.Use(middleware.NewTokenBucket(d.Cfg.Redis.RateLimit, d.Redis, d.Log))

	ids := d.IDs
	if ids == nil {
		ids = handler.UUIDGenerator{}
	}
	users := repository.NewUserRepo(d.DB)

	router.RegisterRoutes(e)
	router.RegisterUsers(e, &handler.UserHandler{
		Users:        users,
		BcryptCost:   d.Cfg.Auth.BcryptCost,
		PageLimitMax: d.Cfg.PageLimitMax,
		Log:          d.Log,
	})

	sh := &handler.SummaryHandler{Summaries: summaries, Log: d.Log}
	ph := &handler.PDFHandler{
		PDFs:           repository.NewPDFRepo(d.DB),
		Blobs:          d.Blobs,
		IDs:            ids,
		Events:         d.Events,
		DefaultOwnerID: d.Cfg.DefaultOwnerID,
		PageLimitMax:   d.Cfg.PageLimitMax,
		Log:            d.Log,
	}
	router.RegisterPDFs(e, ph, sh, d.Cfg.MaxUploadMB, middleware.NewRedisCache(d.Cfg.Redis.Cache, d.Redis))
	router.RegisterSummaries(e, sh)

	if d.Cfg.Auth.JWTSecret != "" {
		router.RegisterAuth(e, &handler.AuthHandler{
			Users:        users,
			JWTSecret:    d.Cfg.Auth.JWTSecret,
			AccessTTLMin: d.Cfg.Auth.AccessTTLMin,
			Log:          d.Log,
		})
	}
	return e
}

// Close releases all resources. It is safe to call after a failed Shutdown.
func (a *App) Close() error {
	var errs []error
	if a.Publisher != nil {
		errs = append(errs, a.Publisher.Close())
	}
	if a.Redis != nil {
		errs = append(errs, a.Redis.Close())
	}
	if a.DB != nil {
		errs = append(errs, a.DB.Close())
	}
	return errors.Join(errs...)
}

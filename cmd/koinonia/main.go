package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hibiken/asynq"
	"golang.org/x/sync/errgroup"

	"github.com/koinonia-app/koinonia/internal/app"
	"github.com/koinonia-app/koinonia/internal/auth"
	"github.com/koinonia-app/koinonia/internal/cellgroups"
	"github.com/koinonia-app/koinonia/internal/events"
	"github.com/koinonia-app/koinonia/internal/media"
	"github.com/koinonia-app/koinonia/internal/members"
	"github.com/koinonia-app/koinonia/internal/offerings"
	"github.com/koinonia-app/koinonia/internal/platform/cache"
	"github.com/koinonia-app/koinonia/internal/platform/db"
	"github.com/koinonia-app/koinonia/internal/platform/storage"
	"github.com/koinonia-app/koinonia/internal/rbac"
	"github.com/koinonia-app/koinonia/internal/roles"
	"github.com/koinonia-app/koinonia/internal/settings"
	"github.com/koinonia-app/koinonia/internal/shared"
	"github.com/koinonia-app/koinonia/internal/tags"
	"github.com/koinonia-app/koinonia/internal/users"
	"github.com/koinonia-app/koinonia/jobs"
)

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping runtime startup")
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := app.LoadConfig()
	if err != nil {
		slog.Default().Error("load config", slog.Any("error", err))
		os.Exit(1)
	}

	logger := app.NewLogger(cfg)

	pool, err := db.New(ctx, cfg.PGDSN)
	if err != nil {
		logger.Error("connect postgres", slog.Any("error", err))
		os.Exit(1)
	}
	defer pool.Close()

	redisClient, err := cache.New(ctx, cfg.RedisAddr)
	if err != nil {
		logger.Warn("redis ping", slog.Any("error", err))
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logger.Warn("redis close", slog.Any("error", err))
		}
	}()

	blobs, err := storage.NewS3Store(ctx, cfg.S3Region, cfg.S3Bucket)
	if err != nil {
		logger.Error("init blob store", slog.Any("error", err))
		os.Exit(1)
	}

	jobsClient, err := jobs.NewClient(asynq.RedisClientOpt{Addr: cfg.RedisAddr})
	if err != nil {
		logger.Error("init jobs client", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := jobsClient.Close(); err != nil {
			logger.Warn("jobs client close", slog.Any("error", err))
		}
	}()

	rolesRepo := roles.NewRepository(pool)
	permCache := rbac.NewPermissionCache(redisClient, cfg.PermissionCacheTTL)
	resolver := rbac.NewResolver(rolesRepo, permCache, logger)
	guard := rbac.Middleware{Logger: logger}

	issuer := auth.NewTokenIssuer(cfg.AuthSecret, cfg.TokenTTL)
	authRepo := auth.NewRepository(pool)
	authService := auth.NewService(authRepo, resolver, issuer, logger)
	authHandler := auth.NewHandler(logger, authService)
	authMiddleware := auth.NewMiddleware(authService)

	tagsService := tags.NewService(tags.NewRepository(pool), logger)
	tagsHandler := tags.NewHandler(logger, tagsService)

	membersService := members.NewService(members.NewRepository(pool), tagsService, logger)
	membersHandler := members.NewHandler(logger, membersService)

	cellGroupsService := cellgroups.NewService(cellgroups.NewRepository(pool), logger)
	eventsService := events.NewService(events.NewRepository(pool), logger)
	offeringsService := offerings.NewService(offerings.NewRepository(pool), logger)
	mediaService := media.NewService(media.NewRepository(pool), blobs, logger)
	settingsService := settings.NewService(settings.NewRepository(pool), logger)
	usersService := users.NewService(users.NewRepository(pool), jobsClient, logger)
	auditLogger := shared.NewAuditLogger(pool)
	rolesService := roles.NewService(rolesRepo, permCache, auditLogger, logger)

	inspector := asynq.NewInspector(asynq.RedisClientOpt{Addr: cfg.RedisAddr})
	defer func() {
		if err := inspector.Close(); err != nil {
			logger.Warn("inspector close", slog.Any("error", err))
		}
	}()

	router := app.NewRouter(app.RouterParams{
		Logger:             logger,
		Config:             cfg,
		AuthMiddleware:     authMiddleware,
		RBACMiddleware:     guard,
		AuthHandler:        authHandler,
		MembersHandler:     membersHandler,
		TagsHandler:        tagsHandler,
		CellGroupsHandler:  cellgroups.NewHandler(logger, cellGroupsService),
		EventsHandler:      events.NewHandler(logger, eventsService),
		OfferingsHandler:   offerings.NewHandler(logger, offeringsService),
		MediaHandler:       media.NewHandler(logger, mediaService),
		SettingsHandler:    settings.NewHandler(logger, settingsService),
		UsersHandler:       users.NewHandler(logger, usersService),
		RolesHandler:       roles.NewHandler(logger, rolesService),
		PermissionsHandler: rbac.NewPermissionsHandler(guard),
		JobHandler:         jobs.NewHandler(inspector, jobsClient, logger),
	})

	server := &http.Server{
		Addr:         cfg.AppAddr,
		Handler:      router,
		ReadTimeout:  cfg.AppReadTimeout,
		WriteTimeout: cfg.AppWriteTimeout,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("starting http server", slog.String("addr", cfg.AppAddr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		logger.Error("server exit", slog.Any("error", err))
		os.Exit(1)
	}
}

package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "github.com/kazumi-edu/kazumi-comm-gateway/api/swagger"
	"github.com/kazumi-edu/kazumi-comm-gateway/internal/handler"
	"github.com/kazumi-edu/kazumi-comm-gateway/internal/middleware"
	"github.com/kazumi-edu/kazumi-comm-gateway/internal/models"
	"github.com/kazumi-edu/kazumi-comm-gateway/internal/repository"
	"github.com/kazumi-edu/kazumi-comm-gateway/internal/service"
	"github.com/kazumi-edu/kazumi-comm-gateway/internal/session"
	"github.com/kazumi-edu/kazumi-comm-gateway/internal/thread"
	"github.com/kazumi-edu/kazumi-comm-gateway/internal/upstream"
	"github.com/kazumi-edu/kazumi-comm-gateway/pkg/cache"
	"github.com/kazumi-edu/kazumi-comm-gateway/pkg/config"
	"github.com/kazumi-edu/kazumi-comm-gateway/pkg/logger"
	corsmiddleware "github.com/kazumi-edu/kazumi-comm-gateway/pkg/middleware/cors"
	reqidmiddleware "github.com/kazumi-edu/kazumi-comm-gateway/pkg/middleware/requestid"
	"github.com/kazumi-edu/kazumi-comm-gateway/pkg/storage"
)

// @title Kazumi Communication Gateway
// @version 0.1.0
// @description Session-terminating gateway in front of the school communication service
// @BasePath /api/v1
// @schemes http

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	validate := validator.New()
	metrics := service.NewMetricsService()
	upstreamClient := upstream.New(cfg.Upstream, logr, metrics)

	// Redis backs the per-session credential store and the directory
	// cache. Without it sessions survive in memory only.
	var credStore session.CredentialStore
	var cacheSvc *service.CacheService
	redisClient, err := cache.NewRedis(cfg.Redis)
	if err != nil {
		logr.Sugar().Warnw("redis unavailable, using in-memory session store", "error", err)
		credStore = session.NewMemoryCredentialStore()
		cacheSvc = service.NewCacheService(nil, metrics, cfg.Cache.TTL, logr, false)
	} else {
		defer redisClient.Close() //nolint:errcheck
		credStore = session.NewRedisCredentialStore(redisClient, cfg.Session.TTL)
		cacheRepo := repository.NewCacheRepository(redisClient, logr)
		cacheSvc = service.NewCacheService(cacheRepo, metrics, cfg.Cache.TTL, logr, cfg.Cache.Enabled)
	}

	codec := session.NewCookieCodec(cfg.Session)
	sessions := session.NewManager(credStore, upstreamClient, logr, metrics)
	threads := thread.NewRegistry(upstreamClient, upstreamClient, logr, metrics)

	directorySvc := service.NewDirectoryService(upstreamClient, cacheSvc, validate, logr)
	calendarSvc := service.NewCalendarService(upstreamClient, validate, logr)
	studentSvc := service.NewStudentService(upstreamClient, validate, logr)
	activitySvc := service.NewActivityService(upstreamClient, validate, logr)
	notificationSvc := service.NewNotificationService(upstreamClient, logr)
	reportSvc := service.NewReportService(upstreamClient, logr)

	authHandler := handler.NewAuthHandler(sessions, threads, upstreamClient, validate)
	threadHandler := handler.NewThreadHandler(threads, cfg.Sync.Interval, validate, logr)
	directoryHandler := handler.NewDirectoryHandler(directorySvc)
	calendarHandler := handler.NewCalendarHandler(calendarSvc)
	studentHandler := handler.NewStudentHandler(studentSvc)
	activityHandler := handler.NewActivityHandler(activitySvc)
	notificationHandler := handler.NewNotificationHandler(notificationSvc)
	reportHandler := handler.NewReportHandler(reportSvc)

	var exportHandler *handler.ExportHandler
	if cfg.Exports.Enabled {
		exportStore, err := storage.NewLocalStorage(cfg.Exports.StorageDir)
		if err != nil {
			logr.Sugar().Fatalw("failed to init export storage", "error", err)
		}
		signer := storage.NewSignedURLSigner(cfg.Exports.SignedURLSecret, cfg.Exports.SignedURLTTL)
		exportSvc := service.NewExportService(upstreamClient, exportStore, signer, service.ExportConfig{
			ResultTTL:         cfg.Exports.SignedURLTTL,
			CleanupInterval:   cfg.Exports.CleanupInterval,
			WorkerConcurrency: cfg.Exports.WorkerConcurrency,
			WorkerRetries:     cfg.Exports.WorkerRetries,
		}, logr)
		exportSvc.Start(ctx)
		defer exportSvc.Stop()
		exportHandler = handler.NewExportHandler(exportSvc, threads, validate)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metrics))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/ready", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})
	r.GET("/metrics", gin.WrapH(metrics.Handler()))

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group("/api/v1")
	api.Use(middleware.Session(codec, sessions))

	auth := api.Group("/auth")
	{
		auth.POST("/login", authHandler.Login)
		auth.POST("/register", authHandler.Register)
		auth.POST("/logout", authHandler.Logout)
		auth.GET("/session", authHandler.Session)
	}

	// Everything below requires a resolved, authenticated session.
	authed := api.Group("")
	authed.Use(middleware.Gate())
	{
		threadsGroup := authed.Group("/threads")
		{
			threadsGroup.GET("", threadHandler.Thread)
			threadsGroup.POST("/refresh", threadHandler.Refresh)
			threadsGroup.GET("/stream", threadHandler.Stream)
			threadsGroup.GET("/selection", threadHandler.Selection)
			threadsGroup.POST("/selection/school", threadHandler.SelectSchool)
			threadsGroup.POST("/selection/class", threadHandler.SelectClass)
			threadsGroup.POST("/selection/contact", threadHandler.SelectContact)
			threadsGroup.POST("/messages", threadHandler.Send)
			threadsGroup.POST("/messages/:id/read", threadHandler.MarkRead)
		}

		authed.GET("/schools", directoryHandler.Schools)
		authed.GET("/schools/:id/classes", directoryHandler.SchoolClasses)
		authed.GET("/classes", directoryHandler.Classes)
		authed.GET("/classes/:id/teachers", directoryHandler.ClassTeachers)
		authed.GET("/classes/:id/guardians", directoryHandler.ClassGuardians)
		authed.GET("/teachers", directoryHandler.Teachers)

		authed.GET("/events", calendarHandler.List)
		authed.GET("/events/:id", calendarHandler.Get)

		authed.GET("/activities", activityHandler.List)
		authed.GET("/activities/:id", activityHandler.Get)

		authed.GET("/notifications", notificationHandler.List)
		authed.GET("/notifications/unread", notificationHandler.Unread)
		authed.POST("/notifications/:id/read", notificationHandler.MarkRead)

		authed.GET("/students", studentHandler.List)
		authed.GET("/students/:id", studentHandler.Get)
		authed.GET("/students/:id/pei", studentHandler.PEI)

		if exportHandler != nil {
			authed.POST("/exports/thread", exportHandler.ExportThread)
			authed.GET("/exports/jobs/:id", exportHandler.Status)
			authed.GET("/exports/download/:token", exportHandler.Download)
		}
	}

	// Administrative surface, gated on the manager role.
	admin := api.Group("")
	admin.Use(middleware.Gate(models.RoleAdmin))
	{
		admin.POST("/schools", directoryHandler.CreateSchool)
		admin.PUT("/schools/:id", directoryHandler.UpdateSchool)
		admin.DELETE("/schools/:id", directoryHandler.DeleteSchool)
		admin.POST("/classes", directoryHandler.CreateClass)
		admin.PUT("/classes/:id", directoryHandler.UpdateClass)
		admin.DELETE("/classes/:id", directoryHandler.DeleteClass)
		admin.POST("/classes/:id/teachers/:teacherId", directoryHandler.AssignTeacher)
		admin.DELETE("/classes/:id/teachers/:teacherId", directoryHandler.UnassignTeacher)

		admin.POST("/students", studentHandler.Create)
		admin.PUT("/students/:id", studentHandler.Update)

		admin.GET("/reports/engagement", reportHandler.Engagement)
		admin.GET("/reports/performance", reportHandler.Performance)
		admin.GET("/reports/pei", reportHandler.PEITracking)

		if exportHandler != nil {
			admin.POST("/exports/reports", exportHandler.ExportReport)
		}
	}

	// Teachers and managers publish events and activities.
	staff := api.Group("")
	staff.Use(middleware.Gate(models.RoleTeacher, models.RoleAdmin))
	{
		staff.POST("/events", calendarHandler.Create)
		staff.POST("/activities", activityHandler.Create)
	}

	addr := fmt.Sprintf(":%d", cfg.Port)
	srv := &http.Server{Addr: addr, Handler: r}

	go func() {
		logr.Sugar().Infow("server starting", "addr", addr, "env", cfg.Env, "upstream", cfg.Upstream.BaseURL)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logr.Sugar().Fatalw("server failed", "error", err)
		}
	}()

	<-ctx.Done()
	logr.Sugar().Infow("shutting down")
	if err := srv.Shutdown(context.Background()); err != nil {
		logr.Sugar().Errorw("shutdown failed", "error", err)
	}
}

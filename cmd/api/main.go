package main

import (
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "github.com/rmaia-dev/sgt-api/api/swagger"
	"github.com/rmaia-dev/sgt-api/internal/handler"
	"github.com/rmaia-dev/sgt-api/internal/middleware"
	"github.com/rmaia-dev/sgt-api/internal/repository"
	"github.com/rmaia-dev/sgt-api/internal/service"
	"github.com/rmaia-dev/sgt-api/pkg/cache"
	"github.com/rmaia-dev/sgt-api/pkg/config"
	"github.com/rmaia-dev/sgt-api/pkg/database"
	"github.com/rmaia-dev/sgt-api/pkg/logger"
	corsmiddleware "github.com/rmaia-dev/sgt-api/pkg/middleware/cors"
	reqidmiddleware "github.com/rmaia-dev/sgt-api/pkg/middleware/requestid"
)

// @title SGT API
// @version 1.0.0
// @description Training session, attendance and invite management
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

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Sugar().Fatalw("failed to connect to postgres", "error", err)
	}
	defer db.Close()

	redisClient, err := cache.NewRedis(cfg.Redis)
	if err != nil {
		// invite validation falls back to postgres without a cache
		logr.Sugar().Warnw("redis unavailable, continuing without cache", "error", err)
		redisClient = nil
	}

	classRepo := repository.NewClassRepository(db)
	instructorRepo := repository.NewInstructorRepository(db)
	trainingRepo := repository.NewTrainingRepository(db)

	authSvc := service.NewAuthService(cfg.Auth)
	metricsSvc := service.NewMetricsService()
	inviteSvc := service.NewInviteService(classRepo, redisClient, cfg.Invites, logr)
	classSvc := service.NewClassService(classRepo, instructorRepo, trainingRepo, inviteSvc, nil, logr)
	attendanceSvc := service.NewAttendanceService(classRepo, nil, logr)
	instructorSvc := service.NewInstructorService(instructorRepo, nil, logr)
	trainingSvc := service.NewTrainingService(trainingRepo, nil, logr)

	var exportSvc *service.ExportService
	if cfg.Exports.Enabled {
		exportSvc = service.NewExportService(classSvc, logr)
	}

	classHandler := handler.NewClassHandler(classSvc, exportSvc)
	attendanceHandler := handler.NewAttendanceHandler(attendanceSvc, metricsSvc)
	inviteHandler := handler.NewInviteHandler(inviteSvc, attendanceSvc, metricsSvc)
	instructorHandler := handler.NewInstructorHandler(instructorSvc)
	trainingHandler := handler.NewTrainingHandler(trainingSvc)

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metricsSvc))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	r.GET("/ready", func(c *gin.Context) {
		if err := db.PingContext(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "db unavailable"})
			return
		}
		if redisClient != nil {
			if err := redisClient.Ping(c.Request.Context()).Err(); err != nil {
				c.JSON(http.StatusServiceUnavailable, gin.H{"status": "cache unavailable"})
				return
			}
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})

	r.GET("/metrics", gin.WrapH(metricsSvc.Handler()))

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix)

	// self check-in entry points are deliberately unauthenticated; the
	// invite token is the credential
	api.GET("/checkin/:classId/:token", inviteHandler.Validate)
	api.POST("/checkin/:classId/:token", inviteHandler.SelfCheckIn)

	admin := api.Group("")
	admin.Use(middleware.Auth(authSvc), middleware.RequireAdmin())
	{
		admin.GET("/classes", classHandler.List)
		admin.POST("/classes", classHandler.Create)
		admin.GET("/classes/:id", classHandler.Get)
		admin.PUT("/classes/:id", classHandler.Update)
		admin.DELETE("/classes/:id", classHandler.Delete)
		admin.POST("/classes/:id/finish", classHandler.Finish)
		admin.POST("/classes/:id/cancel", classHandler.Cancel)
		admin.GET("/classes/:id/export", classHandler.Export)

		admin.GET("/classes/:id/attendees", attendanceHandler.Roster)
		admin.POST("/classes/:id/attendees", attendanceHandler.Register)
		admin.DELETE("/classes/:id/attendees/:registration", attendanceHandler.Remove)
		admin.POST("/classes/:id/attendees/:registration/early-leave", attendanceHandler.EarlyLeave)

		admin.POST("/classes/:id/invite", inviteHandler.Generate)

		admin.GET("/instructors", instructorHandler.List)
		admin.POST("/instructors", instructorHandler.Create)
		admin.GET("/instructors/:id", instructorHandler.Get)
		admin.PUT("/instructors/:id", instructorHandler.Update)
		admin.DELETE("/instructors/:id", instructorHandler.Delete)

		admin.GET("/trainings", trainingHandler.List)
		admin.POST("/trainings", trainingHandler.Create)
		admin.GET("/trainings/:id", trainingHandler.Get)
		admin.PUT("/trainings/:id", trainingHandler.Update)
		admin.DELETE("/trainings/:id", trainingHandler.Delete)
	}

	addr := fmt.Sprintf(":%d", cfg.Port)
	logr.Sugar().Infow("server starting", "addr", addr, "env", cfg.Env)

	srv := &http.Server{
		Addr:              addr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logr.Sugar().Fatalw("server failed", "error", err)
	}
}

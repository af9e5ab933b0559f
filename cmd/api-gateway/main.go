package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "github.com/edusphere/timetable-api/api/swagger"
	"github.com/edusphere/timetable-api/internal/dto"
	"github.com/edusphere/timetable-api/internal/handler"
	"github.com/edusphere/timetable-api/internal/middleware"
	"github.com/edusphere/timetable-api/internal/repository"
	"github.com/edusphere/timetable-api/internal/service"
	"github.com/edusphere/timetable-api/pkg/cache"
	"github.com/edusphere/timetable-api/pkg/config"
	"github.com/edusphere/timetable-api/pkg/database"
	"github.com/edusphere/timetable-api/pkg/export"
	"github.com/edusphere/timetable-api/pkg/jobs"
	"github.com/edusphere/timetable-api/pkg/logger"
	corsmiddleware "github.com/edusphere/timetable-api/pkg/middleware/cors"
	reqidmiddleware "github.com/edusphere/timetable-api/pkg/middleware/requestid"
)

// @title Timetable API
// @version 1.0.0
// @description Automatic lesson placement and timetable management
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
		logr.Sugar().Fatalw("failed to connect database", "error", err)
	}
	defer db.Close()

	var cacheRepo *repository.CacheRepository
	if cfg.Cache.Enabled {
		redisClient, err := cache.NewRedis(cfg.Redis)
		if err != nil {
			logr.Sugar().Warnw("redis unavailable, caching disabled", "error", err)
		} else {
			defer redisClient.Close()
			cacheRepo = repository.NewCacheRepository(redisClient, logr)
		}
	}

	lessonRepo := repository.NewLessonRepository(db)
	courseRepo := repository.NewCourseRepository(db)
	classGroupRepo := repository.NewClassGroupRepository(db)
	timeSlotRepo := repository.NewTimeSlotRepository(db)
	teacherRepo := repository.NewTeacherRepository(db)
	classroomRepo := repository.NewClassroomRepository(db)
	availabilityRepo := repository.NewTeacherAvailabilityRepository(db)

	metricsSvc := service.NewMetricsService()
	cacheSvc := service.NewCacheService(cacheRepo, metricsSvc, cfg.Cache.PopulationTTL, logr, cacheRepo != nil)
	calendarSvc := service.NewCalendarService(cfg.Planner, logr)
	availabilitySvc := service.NewAvailabilityService(lessonRepo, teacherRepo, classroomRepo, availabilityRepo, cacheSvc, cfg.Planner.AvailabilityOverride, logr)
	quotaSvc := service.NewQuotaService(courseRepo, lessonRepo, cfg.Planner.LessonHours, logr)
	plannerSvc := service.NewPlannerService(calendarSvc, availabilitySvc, quotaSvc, classGroupRepo, timeSlotRepo, lessonRepo, db, metricsSvc, cfg.Planner, logr)
	lessonSvc := service.NewLessonService(lessonRepo, logr)
	classGroupSvc := service.NewClassGroupService(classGroupRepo, logr)
	exportSvc := service.NewExportService(lessonRepo, classGroupRepo, calendarSvc, export.NewCSVExporter(), export.NewPDFExporter(), cfg.Exports.Enabled, logr)

	rangeQueue := jobs.NewQueue("planning-range", func(ctx context.Context, job jobs.Job) error {
		req, ok := job.Payload.(dto.GenerateRangeRequest)
		if !ok {
			return fmt.Errorf("unexpected payload for job %s", job.ID)
		}
		results, err := plannerSvc.GenerateRange(ctx, &req)
		if err != nil {
			return err
		}
		placed := 0
		for _, r := range results {
			placed += r.PlacedCount
		}
		logr.Info("range generation finished",
			zap.String("job_id", job.ID),
			zap.String("class_id", req.ClassID),
			zap.Int("weeks", len(results)),
			zap.Int("placed", placed),
		)
		return nil
	}, jobs.QueueConfig{
		Workers:    cfg.Jobs.Workers,
		BufferSize: cfg.Jobs.BufferSize,
		MaxRetries: cfg.Jobs.MaxRetries,
		RetryDelay: cfg.Jobs.RetryDelay,
		Logger:     logr,
	})
	rangeQueue.Start(context.Background())
	defer rangeQueue.Stop()

	plannerHandler := handler.NewPlannerHandler(plannerSvc, rangeQueue)
	lessonHandler := handler.NewLessonHandler(lessonSvc)
	availabilityHandler := handler.NewAvailabilityHandler(availabilitySvc)
	classGroupHandler := handler.NewClassGroupHandler(classGroupSvc)
	exportHandler := handler.NewExportHandler(exportSvc)

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
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()
		if err := db.PingContext(ctx); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded", "database": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})

	r.GET("/metrics", gin.WrapH(metricsSvc.Handler()))

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix)
	{
		api.POST("/planning/generate", plannerHandler.Generate)
		api.POST("/planning/generate-range", plannerHandler.GenerateRange)
		api.POST("/planning/proposals/accept", plannerHandler.AcceptProposal)
		api.POST("/planning/candidates/validate", plannerHandler.ValidateCandidates)

		api.GET("/lessons", lessonHandler.List)
		api.DELETE("/lessons/:id", lessonHandler.Delete)

		api.GET("/availability/free", availabilityHandler.FreeResources)
		api.GET("/teachers/:id/availabilities", availabilityHandler.TeacherTimeline)
		api.POST("/teachers/availabilities", availabilityHandler.DeclareWindow)

		api.GET("/classes", classGroupHandler.List)
		api.GET("/classes/:id/weeks", classGroupHandler.GetWeeks)
		api.PUT("/classes/:id/weeks", classGroupHandler.UpdateWeeks)
		api.POST("/classes/availabilities/generate", classGroupHandler.GenerateAvailabilities)

		if cfg.Exports.Enabled {
			api.GET("/exports/planning", exportHandler.WeekExport)
		}
	}

	addr := fmt.Sprintf(":%d", cfg.Port)
	logr.Sugar().Infow("server starting", "addr", addr, "env", cfg.Env)
	if err := r.Run(addr); err != nil {
		logr.Sugar().Fatalw("server failed", "error", err)
	}
}

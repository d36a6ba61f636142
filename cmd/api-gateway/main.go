package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/redis/go-redis/v9"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "github.com/noah-isme/course-schedule-api/api/swagger"
	"github.com/noah-isme/course-schedule-api/internal/handler"
	internalmiddleware "github.com/noah-isme/course-schedule-api/internal/middleware"
	"github.com/noah-isme/course-schedule-api/internal/repository"
	"github.com/noah-isme/course-schedule-api/internal/service"
	"github.com/noah-isme/course-schedule-api/pkg/cache"
	"github.com/noah-isme/course-schedule-api/pkg/config"
	"github.com/noah-isme/course-schedule-api/pkg/database"
	"github.com/noah-isme/course-schedule-api/pkg/logger"
	corsmiddleware "github.com/noah-isme/course-schedule-api/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/course-schedule-api/pkg/middleware/requestid"
)

// @title Course Schedule API
// @version 1.0.0
// @description Conflict checking, alternative suggestions and makeup planning for training-center classes
// @BasePath /api/v1
// @schemes http
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

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

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := database.NewPostgres(ctx, cfg.Database)
	if err != nil {
		logr.Sugar().Fatalw("database unavailable", "error", err)
	}
	defer db.Close() //nolint:errcheck

	var redisClient *redis.Client
	if cfg.GridCache.Enabled {
		redisClient, err = cache.NewRedis(ctx, cfg.Redis)
		if err != nil {
			logr.Warn("grid cache disabled, redis unavailable", zap.Error(err))
			redisClient = nil
		} else {
			defer redisClient.Close() //nolint:errcheck
		}
	}

	policy, err := service.PolicyFromConfig(cfg.Scheduler)
	if err != nil {
		logr.Sugar().Fatalw("invalid scheduler configuration", "error", err)
	}

	validate := validator.New()
	metrics := service.NewMetricsService()

	sessionRepo := repository.NewSessionRepository(db)
	classRepo := repository.NewCourseClassRepository(db)
	courseRepo := repository.NewCourseRepository(db)
	roomRepo := repository.NewRoomRepository(db)
	lecturerRepo := repository.NewLecturerRepository(db)
	lockRepo := repository.NewResourceLockRepository(cfg.Scheduler.TransactionLockTimeout)
	cacheRepo := repository.NewCacheRepository(redisClient, logr)

	cacheSvc := service.NewCacheService(cacheRepo, metrics, cfg.GridCache.TTL, logr, redisClient != nil)
	detector := service.NewConflictDetector(sessionRepo)
	resolver := service.NewAvailabilityResolver(roomRepo, lecturerRepo, detector)

	scheduleSvc := service.NewScheduleService(courseRepo, resolver, policy, validate, metrics, logr)
	resourceSvc := service.NewResourceService(roomRepo, lecturerRepo)
	classSvc := service.NewCourseClassService(service.CourseClassServiceDeps{
		Classes:   classRepo,
		Sessions:  sessionRepo,
		Courses:   courseRepo,
		Rooms:     roomRepo,
		Lecturers: lecturerRepo,
		Detector:  detector,
		Tx:        db,
		Locks:     lockRepo,
		Cache:     cacheSvc,
		Policy:    policy,
		Validator: validate,
		Metrics:   metrics,
		Logger:    logr,
	})
	sessionSvc := service.NewSessionService(sessionRepo, db, lockRepo, cacheSvc, validate, metrics, logr)
	makeupSvc := service.NewMakeupPlanner(service.MakeupPlannerDeps{
		Classes:   classRepo,
		Sessions:  sessionRepo,
		Rooms:     roomRepo,
		Lecturers: lecturerRepo,
		Detector:  detector,
		Tx:        db,
		Locks:     lockRepo,
		Cache:     cacheSvc,
		Policy:    policy,
		Validator: validate,
		Metrics:   metrics,
		Logger:    logr,
	})
	weekSvc := service.NewWeekScheduleService(sessionRepo, cacheSvc, logr, nil)
	authSvc := service.NewAuthService(service.AuthConfig{AccessTokenSecret: cfg.JWT.Secret, Issuer: cfg.JWT.Issuer})

	checks := map[string]handler.ReadinessCheck{"database": db.PingContext}
	if redisClient != nil {
		checks["redis"] = cacheRepo.Ping
	}

	var limiter *internalmiddleware.RateLimiter
	if cfg.RateLimit.Enabled {
		limiter = internalmiddleware.NewRateLimiter(cfg.RateLimit.RPS, cfg.RateLimit.Burst)
	}

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(internalmiddleware.Metrics(metrics))
	r.Use(internalmiddleware.ResponseMeta())

	handler.RegisterRoutes(r, handler.Handlers{
		Schedule:    handler.NewScheduleHandler(scheduleSvc, resourceSvc),
		CourseClass: handler.NewCourseClassHandler(classSvc, weekSvc),
		Session:     handler.NewSessionHandler(sessionSvc, makeupSvc),
		Metrics:     handler.NewMetricsHandler(metrics, checks),
	}, handler.RouteOptions{
		Prefix:      cfg.APIPrefix,
		Auth:        authSvc,
		RateLimiter: limiter,
	})

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		logr.Sugar().Infow("server starting", "addr", srv.Addr, "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logr.Sugar().Fatalw("server failed", "error", err)
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logr.Sugar().Errorw("graceful shutdown failed", "error", err)
	}
	logr.Info("server stopped")
}

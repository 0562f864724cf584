package main

import (
	"fmt"
	"log"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "github.com/raghad-alharthi/student-management-api/api/swagger"
	"github.com/raghad-alharthi/student-management-api/internal/handler"
	"github.com/raghad-alharthi/student-management-api/internal/middleware"
	"github.com/raghad-alharthi/student-management-api/internal/models"
	"github.com/raghad-alharthi/student-management-api/internal/repository"
	"github.com/raghad-alharthi/student-management-api/internal/service"
	"github.com/raghad-alharthi/student-management-api/pkg/cache"
	"github.com/raghad-alharthi/student-management-api/pkg/config"
	"github.com/raghad-alharthi/student-management-api/pkg/database"
	"github.com/raghad-alharthi/student-management-api/pkg/logger"
	corsmiddleware "github.com/raghad-alharthi/student-management-api/pkg/middleware/cors"
	reqidmiddleware "github.com/raghad-alharthi/student-management-api/pkg/middleware/requestid"
	"github.com/raghad-alharthi/student-management-api/pkg/storage"
)

// @title Student Management API
// @version 1.0.0
// @description Class scheduling, attendance and sick-leave management
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

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Sugar().Fatalw("failed to connect database", "error", err)
	}
	defer db.Close()

	var cacheRepo *repository.CacheRepository
	if cfg.Cache.Enabled {
		redisClient, err := cache.NewRedis(cfg.Redis)
		if err != nil {
			logr.Sugar().Warnw("redis unavailable, absence summary cache disabled", "error", err)
		} else {
			defer redisClient.Close()
			cacheRepo = repository.NewCacheRepository(redisClient, cfg.Cache.SummaryTTL, logr)
		}
	}

	fileStore, err := storage.NewLocalStorage(cfg.Storage.Dir)
	if err != nil {
		logr.Sugar().Fatalw("failed to init attachment storage", "error", err)
	}
	signer := storage.NewSignedURLSigner(cfg.Storage.SignedURLSecret, cfg.Storage.SignedURLTTL)

	validate := validator.New()

	userRepo := repository.NewUserRepository(db)
	classRepo := repository.NewClassRepository(db)
	lectureRepo := repository.NewLectureRepository(db)
	enrollmentRepo := repository.NewEnrollmentRepository(db)
	attendanceRepo := repository.NewAttendanceRepository(db)

	metricsSvc := service.NewMetricsService()
	authSvc := service.NewAuthService(userRepo, validate, logr, service.AuthConfig{
		Secret:     cfg.JWT.Secret,
		Expiration: cfg.JWT.Expiration,
		Issuer:     cfg.JWT.Issuer,
	})
	scheduleSvc := service.NewScheduleService(
		classRepo, lectureRepo, userRepo, cacheRepo, fileStore,
		validate, logr, cfg.Schedule.WeeksPerSemester, cfg.Schedule.BufferMinutes)
	userSvc := service.NewUserService(userRepo, classRepo, validate, logr)
	enrollmentSvc := service.NewEnrollmentService(enrollmentRepo, userRepo, classRepo, validate, logr)
	attendanceSvc := service.NewAttendanceService(
		attendanceRepo, enrollmentRepo, lectureRepo, classRepo, cacheRepo, fileStore,
		validate, logr).WithMetrics(metricsSvc)
	exportSvc := service.NewExportService(attendanceSvc, enrollmentRepo, logr)

	authHandler := handler.NewAuthHandler(authSvc, userSvc)
	userHandler := handler.NewUserHandler(userSvc)
	classHandler := handler.NewClassHandler(scheduleSvc, enrollmentSvc, exportSvc)
	enrollmentHandler := handler.NewEnrollmentHandler(enrollmentSvc)
	attendanceHandler := handler.NewAttendanceHandler(attendanceSvc, fileStore, signer, cfg.Storage.MaxFileSizeBytes)
	metricsHandler := handler.NewMetricsHandler(metricsSvc, db)

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metricsSvc))

	r.GET("/health", metricsHandler.Health)
	r.GET("/ready", metricsHandler.Ready)
	r.GET("/metrics", metricsHandler.Prometheus)
	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	// Signed URLs carry their own authorization.
	r.GET("/files/sick-leave", attendanceHandler.DownloadAppealFile)

	api := r.Group(cfg.APIPrefix)
	api.POST("/auth/login", authHandler.Login)

	authed := api.Group("")
	authed.Use(middleware.JWT(authSvc))
	authed.GET("/auth/me", authHandler.Me)
	authed.PUT("/auth/password", authHandler.ChangePassword)

	adminOnly := middleware.RequireRoles(models.RoleAdmin)
	staff := middleware.RequireRoles(models.RoleAdmin, models.RoleTeacher)

	authed.GET("/users", adminOnly, userHandler.List)
	authed.POST("/users", adminOnly, userHandler.Create)
	authed.GET("/users/:id", middleware.RBAC(string(models.RoleAdmin), "SELF"), userHandler.Get)
	authed.DELETE("/users/:id", adminOnly, userHandler.Delete)

	authed.GET("/classes", classHandler.List)
	authed.POST("/classes", adminOnly, classHandler.Create)
	authed.GET("/classes/:id", classHandler.Get)
	authed.DELETE("/classes/:id", adminOnly, classHandler.Delete)
	authed.PUT("/classes/:id/teacher", adminOnly, classHandler.ReassignTeacher)
	authed.GET("/classes/:id/lectures", classHandler.Lectures)
	authed.GET("/classes/:id/lectures/past", staff, attendanceHandler.PastLectures)
	authed.GET("/classes/:id/students", staff, classHandler.Students)
	authed.GET("/classes/:id/absence-report", staff, classHandler.AbsenceReport)
	authed.GET("/classes/:id/students/:studentId/absences", attendanceHandler.ClassSummary)

	authed.POST("/enrollments", adminOnly, enrollmentHandler.Create)
	authed.DELETE("/enrollments/:studentId/:classId", adminOnly, enrollmentHandler.Delete)
	authed.GET("/students/:id/classes", middleware.RBAC(string(models.RoleAdmin), string(models.RoleTeacher), "SELF"), enrollmentHandler.StudentClasses)
	authed.GET("/students/:id/absences", middleware.RBAC(string(models.RoleAdmin), string(models.RoleTeacher), "SELF"), attendanceHandler.StudentAbsences)

	authed.GET("/lectures/:id/roster", staff, attendanceHandler.Roster)
	authed.PUT("/lectures/:id/roster", staff, attendanceHandler.SaveRoster)
	authed.POST("/lectures/:id/sick-leave", middleware.RequireRoles(models.RoleStudent), attendanceHandler.SubmitSickLeave)
	authed.GET("/lectures/:id/sick-leave", staff, attendanceHandler.Appeals)
	authed.PUT("/attendance/:id/review", staff, attendanceHandler.Review)
	authed.GET("/attendance/:id/file-url", attendanceHandler.AppealFileURL)

	addr := fmt.Sprintf(":%d", cfg.Port)
	logr.Sugar().Infow("server starting", "addr", addr, "env", cfg.Env)
	if err := r.Run(addr); err != nil {
		logr.Sugar().Fatalw("server failed", "error", err)
	}
}

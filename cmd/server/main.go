package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/stemsi/jadwal-backend/internal/broker"
	"github.com/stemsi/jadwal-backend/internal/config"
	"github.com/stemsi/jadwal-backend/internal/database"
	"github.com/stemsi/jadwal-backend/internal/handler"
	"github.com/stemsi/jadwal-backend/internal/jobs"
	"github.com/stemsi/jadwal-backend/internal/logger"
	"github.com/stemsi/jadwal-backend/internal/middleware"
	"github.com/stemsi/jadwal-backend/internal/repository"
	"github.com/stemsi/jadwal-backend/internal/router"
	"github.com/stemsi/jadwal-backend/internal/service"
	"github.com/stemsi/jadwal-backend/internal/validator"
	"github.com/stemsi/jadwal-backend/internal/worker"
)

func main() {
	// ─── Load Configuration ────────────────────────────────────────────
	cfg := config.Load()

	// ─── Initialize Logger ─────────────────────────────────────────────
	log := logger.Setup(cfg.LogLevel, cfg.LogFormat)
	log.Info().
		Str("port", cfg.ServerPort).
		Str("mode", cfg.GinMode).
		Str("log_level", cfg.LogLevel).
		Msg("Starting Jadwal Backend")

	// ─── Initialize Validator ──────────────────────────────────────────
	validator.Setup()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// ─── Connect to PostgreSQL ─────────────────────────────────────────
	pool, err := database.NewPostgresPool(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to PostgreSQL")
	}
	defer pool.Close()

	// ─── Connect to Redis ──────────────────────────────────────────────
	rdb, err := database.NewRedisClient(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to Redis")
	}
	defer rdb.Close()

	// ─── Initialize Repositories ───────────────────────────────────────
	adminRepo := repository.NewAdminRepository(pool)
	roleRepo := repository.NewRoleRepository(pool)
	classRepo := repository.NewClassRepository(pool)
	subjectRepo := repository.NewSubjectRepository(pool)
	teacherRepo := repository.NewTeacherRepository(pool)
	timetableRepo := repository.NewTimetableRepository(pool)
	gradingRepo := repository.NewGradingRepository(pool)
	auditRepo := repository.NewAuditRepository(pool)
	dashboardRepo := repository.NewDashboardRepository(pool)

	// ─── Redis-backed cache and change feed ───────────────────────────
	timetableCache := broker.NewTimetableCache(rdb, cfg.TimetableCacheTTL, log)
	changeFeed := broker.NewChangeFeed(rdb, log)

	// ─── Initialize Services ──────────────────────────────────────────
	authService := service.NewAuthService(cfg, rdb)
	adminService := service.NewAdminService(adminRepo, roleRepo, authService)
	adminRoleService := service.NewAdminRoleService(roleRepo)
	classService := service.NewClassService(classRepo)
	subjectService := service.NewSubjectService(subjectRepo)
	teacherService := service.NewTeacherService(teacherRepo)
	timetableService := service.NewTimetableService(timetableRepo, subjectRepo, timetableCache, changeFeed, log)
	gradingService := service.NewGradingService(gradingRepo, changeFeed, log)
	auditService := service.NewAuditService(auditRepo, log)
	dashboardService := service.NewDashboardService(dashboardRepo)

	// ─── Initialize Handlers ──────────────────────────────────────────
	handlers := &router.Handlers{
		Auth:      handler.NewAuthHandler(authService, adminService),
		AdminUser: handler.NewAdminUserHandler(adminService, adminRoleService),
		AdminRole: handler.NewAdminRoleHandler(adminRoleService),
		Class:     handler.NewClassHandler(classService),
		Subject:   handler.NewSubjectHandler(subjectService),
		Teacher:   handler.NewTeacherHandler(teacherService),
		Timetable: handler.NewTimetableHandler(timetableService, classService, auditService),
		Grading:   handler.NewGradingHandler(gradingService, auditService),
		Dashboard: handler.NewDashboardHandler(dashboardService),
		Health:    handler.NewHealthHandler(database.NewChecker(pool, rdb), log),
		WS:        handler.NewWSHandler(changeFeed, timetableService, log, cfg.AllowedOrigins),
	}

	// ─── Start Background Workers ─────────────────────────────────────
	workerCtx, workerCancel := context.WithCancel(context.Background())
	workerDone := make(chan struct{})

	auditWorker := worker.NewAuditWorker(auditRepo, rdb, log)
	go func() {
		defer close(workerDone)
		auditWorker.Start(workerCtx)
	}()

	// ─── Scheduled Jobs ───────────────────────────────────────────────
	scheduler, err := jobs.New(jobs.Config{
		CacheWarmSchedule:  cfg.CacheWarmSchedule,
		AuditPruneSchedule: cfg.AuditPruneSchedule,
		AuditRetention:     cfg.AuditRetention,
	}, classService, timetableService, auditService, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Invalid job schedule")
	}
	// Load published timetables before accepting traffic.
	if err := scheduler.WarmCache(ctx); err != nil {
		log.Warn().Err(err).Msg("Cache prewarm failed")
	}
	scheduler.Start()

	// ─── Setup Router ──────────────────────────────────────────────────
	authLimiter := middleware.NewRateLimiter(cfg.AuthRateLimit, time.Minute)
	r := router.SetupRouter(authService, handlers, authLimiter, cfg, log)

	// ─── Create HTTP Server ────────────────────────────────────────────
	srv := &http.Server{
		Addr:              ":" + cfg.ServerPort,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// ─── Start Server in Goroutine ─────────────────────────────────────
	go func() {
		log.Info().Str("addr", ":"+cfg.ServerPort).Msg("Server listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Server error")
		}
	}()

	// ─── Graceful Shutdown ─────────────────────────────────────────────
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit

	log.Info().Str("signal", sig.String()).Msg("Shutting down gracefully...")

	// 1. Stop accepting new HTTP requests (5s timeout).
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("HTTP server shutdown error")
	}
	authLimiter.Stop()

	// 2. Let running jobs finish.
	select {
	case <-scheduler.Stop().Done():
	case <-shutdownCtx.Done():
		log.Warn().Msg("Scheduled jobs still running at shutdown")
	}

	// 3. Stop the audit worker and wait for its queue to drain.
	workerCancel()
	select {
	case <-workerDone:
	case <-time.After(5 * time.Second):
		log.Warn().Msg("Audit worker did not drain in time")
	}

	log.Info().Msg("Shutdown complete")
}

// init sets zerolog global defaults before main runs.
func init() {
	zerolog.TimeFieldFormat = time.RFC3339
}

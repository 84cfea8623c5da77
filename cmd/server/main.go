// Package main runs the TeamPulse HTTP API with graceful shutdown.
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/teampulse/backend/config"
	"github.com/teampulse/backend/internal/analysis"
	"github.com/teampulse/backend/internal/auth"
	"github.com/teampulse/backend/internal/members"
	"github.com/teampulse/backend/internal/middleware"
	"github.com/teampulse/backend/internal/notifications"
	"github.com/teampulse/backend/internal/period"
	"github.com/teampulse/backend/internal/reports"
	"github.com/teampulse/backend/internal/submissions"
	"github.com/teampulse/backend/internal/workspaces"
	"github.com/teampulse/backend/pkg/database"
	"github.com/teampulse/backend/pkg/redis"
	"github.com/teampulse/backend/pkg/response"
	"github.com/teampulse/backend/pkg/storage"
)

func main() {
	logger := newLogger()
	defer logger.Sync()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("load config", zap.Error(err))
	}

	loc, err := time.LoadLocation(cfg.Schedule.Timezone)
	if err != nil {
		logger.Fatal("load timezone", zap.String("tz", cfg.Schedule.Timezone), zap.Error(err))
	}
	clock := period.NewClock(loc)

	ctx := context.Background()
	pool, err := database.NewPostgresPool(ctx, cfg.Database.DSN(), int32(cfg.Database.MaxConns), logger)
	if err != nil {
		logger.Fatal("database", zap.Error(err))
	}
	defer pool.Close()

	if err := database.Migrate(ctx, pool); err != nil {
		logger.Fatal("migrate", zap.Error(err))
	}

	rdb, err := redis.NewClient(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB, logger)
	if err != nil {
		logger.Fatal("redis", zap.Error(err))
	}
	defer rdb.Close()

	var archive reports.Archiver
	if cfg.AWS.Region != "" {
		s3Client, err := storage.NewS3(ctx, storage.S3Config{
			Region:          cfg.AWS.Region,
			AccessKeyID:     cfg.AWS.AccessKeyID,
			SecretAccessKey: cfg.AWS.SecretAccessKey,
			ReportsBucket:   cfg.AWS.ReportsBucket,
		}, logger)
		if err != nil {
			logger.Warn("report archival disabled", zap.Error(err))
		} else {
			archive = s3Client
		}
	}

	jwtService := auth.NewJWTService(cfg.JWT.Secret, cfg.JWT.ExpireHours)

	// Tenant registry
	workspaceRepo := workspaces.NewRepository(pool)
	workspaceHandler := workspaces.NewHandler(workspaceRepo, logger)
	memberRepo := members.NewRepository(pool)
	memberHandler := members.NewHandler(memberRepo, workspaceRepo, logger)

	// Auth
	authHandler := auth.NewHandler(auth.NewGoogleVerifier(), workspaceRepo, jwtService, cfg.App.AllowedSignupDomains, logger)

	// Submissions
	submissionRepo := submissions.NewRepository(pool)
	submissionHandler := submissions.NewHandler(submissionRepo, memberRepo, workspaceRepo, clock, logger)

	// Reports
	var primary analysis.Analyzer
	if cfg.Analysis.BaseURL != "" {
		primary = analysis.NewRemoteAnalyzer(
			cfg.Analysis.BaseURL, cfg.Analysis.APIKey, cfg.Analysis.Model,
			time.Duration(cfg.Analysis.TimeoutSec)*time.Second,
		)
	} else {
		logger.Warn("analysis backend not configured, reports use the deterministic fallback")
	}
	analyzer := analysis.NewFailover(primary, logger)
	reportRepo := reports.NewRepository(pool)
	generator := reports.NewGenerator(submissionRepo, memberRepo, analyzer, reportRepo, archive, logger)
	reportHandler := reports.NewHandler(generator, reportRepo, workspaceRepo, clock, logger)

	// Notifications
	sender := buildSender(cfg, rdb, logger)
	emailLogRepo := notifications.NewRepository(pool)
	notifyService := notifications.NewService(sender, emailLogRepo, memberRepo, submissionRepo, cfg.App.FormURL, logger)
	notifyHandler := notifications.NewHandler(notifyService, emailLogRepo, workspaceRepo, memberRepo, workspaceRepo, clock, logger)

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.CORS(cfg.Server.CORSAllowedOrigins))
	router.Use(middleware.Logger(logger))

	router.GET("/health", func(c *gin.Context) { response.OK(c, gin.H{"status": "ok"}) })

	router.POST("/auth/verify", authHandler.Verify)

	api := router.Group("")
	api.Use(middleware.JWT(jwtService))
	api.Use(middleware.OptionalAdminKey(cfg.App.AdminKeyHash))
	{
		api.GET("/workspaces", workspaceHandler.List)
		api.PUT("/workspaces/:id", workspaceHandler.Update)
		api.GET("/workspaces/:id/settings", workspaceHandler.GetSettings)
		api.PUT("/workspaces/:id/settings", workspaceHandler.UpdateSettings)

		api.GET("/workspaces/:id/team", memberHandler.List)
		api.POST("/workspaces/:id/team", memberHandler.Add)
		api.PUT("/workspaces/:id/team/:memberId", memberHandler.Update)
		api.DELETE("/workspaces/:id/team/:memberId", memberHandler.Deactivate)

		api.GET("/workspaces/:id/status", submissionHandler.Status)
		api.GET("/workspaces/:id/submissions", submissionHandler.List)
		api.POST("/workspaces/:id/submissions", submissionHandler.Submit)
		api.GET("/workspaces/:id/submissions/previous", submissionHandler.Previous)

		api.POST("/workspaces/:id/report", reportHandler.Generate)
		api.GET("/workspaces/:id/reports", reportHandler.List)
		api.GET("/workspaces/:id/reports/:week/:year", reportHandler.Get)

		api.GET("/workspaces/:id/emails", notifyHandler.ListLogs)
	}

	admin := router.Group("/admin")
	admin.Use(middleware.AdminKey(cfg.App.AdminKeyHash))
	{
		admin.POST("/email/send", notifyHandler.Send)
		admin.POST("/backfill/:workspaceId", submissionHandler.Backfill)
	}

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
	}

	go func() {
		logger.Info("server listening", zap.String("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown", zap.Error(err))
	}
	logger.Info("server stopped")
}

func buildSender(cfg *config.Config, rdb *redis.Client, logger *zap.Logger) notifications.Sender {
	if cfg.Email.Mode == "api" {
		tokens := notifications.NewTokenSource(
			cfg.Email.TokenURL, cfg.Email.ClientID, cfg.Email.ClientSecret, rdb, logger,
		)
		return notifications.NewAPISender(cfg.Email.APIBaseURL, tokens, cfg.Email.FromAddress, cfg.Email.FromName)
	}
	return notifications.NewSMTPSender(
		cfg.Email.SMTPHost, cfg.Email.SMTPPort, cfg.Email.SMTPUser, cfg.Email.SMTPPass,
		cfg.Email.FromAddress, cfg.Email.FromName,
	)
}

func newLogger() *zap.Logger {
	config := zap.NewProductionConfig()
	config.EncoderConfig.TimeKey = "timestamp"
	config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	logger, _ := config.Build()
	return logger
}

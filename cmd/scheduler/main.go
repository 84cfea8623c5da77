// Package main runs the TeamPulse notification scheduler.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/teampulse/backend/config"
	"github.com/teampulse/backend/internal/members"
	"github.com/teampulse/backend/internal/notifications"
	"github.com/teampulse/backend/internal/period"
	"github.com/teampulse/backend/internal/scheduler"
	"github.com/teampulse/backend/internal/submissions"
	"github.com/teampulse/backend/internal/workspaces"
	"github.com/teampulse/backend/pkg/database"
	"github.com/teampulse/backend/pkg/redis"
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

	workspaceRepo := workspaces.NewRepository(pool)
	memberRepo := members.NewRepository(pool)
	submissionRepo := submissions.NewRepository(pool)

	sender := buildSender(cfg, rdb, logger)
	emailLogRepo := notifications.NewRepository(pool)
	notifyService := notifications.NewService(sender, emailLogRepo, memberRepo, submissionRepo, cfg.App.FormURL, logger)

	sched := scheduler.New(loc, workspaceRepo, notifyService, clock, logger)
	if err := sched.Register(cfg.Schedule.PromptCron, cfg.Schedule.ReminderCron); err != nil {
		logger.Fatal("register schedules", zap.Error(err))
	}
	sched.Start()
	logger.Info("schedules registered",
		zap.String("tz", cfg.Schedule.Timezone),
		zap.String("prompt", cfg.Schedule.PromptCron),
		zap.String("reminder", cfg.Schedule.ReminderCron),
	)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	<-sched.Stop().Done()
	logger.Info("scheduler stopped")
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

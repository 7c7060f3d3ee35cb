package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"

	"github.com/go-telegram/bot"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/Freeeeeet/classtrack_bot/internal/app"
	"github.com/Freeeeeet/classtrack_bot/internal/config"
	"github.com/Freeeeeet/classtrack_bot/internal/controller"
	"github.com/Freeeeeet/classtrack_bot/internal/repository"
	"github.com/Freeeeeet/classtrack_bot/internal/service"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger := app.NewLogger(cfg.Environment)
	defer logger.Sync()

	logger.Info("Starting classtrack bot",
		zap.String("environment", cfg.Environment),
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pool, err := pgxpool.New(ctx, cfg.DBDSN)
	if err != nil {
		logger.Fatal("Failed to create database pool", zap.Error(err))
	}
	defer pool.Close()

	if err := pool.Ping(ctx); err != nil {
		logger.Fatal("Failed to ping database", zap.Error(err))
	}

	migrator, err := app.NewMigrator(pool, cfg.MigrationsPath)
	if err != nil {
		logger.Fatal("Failed to create migrator", zap.Error(err))
	}
	if err := migrator.Run(ctx); err != nil {
		logger.Fatal("Failed to apply migrations", zap.Error(err))
	}
	migrator.Close()

	teacherRepo := repository.NewTeacherRepository(pool, logger)
	studentRepo := repository.NewStudentRepository(pool, logger)
	entryRepo := repository.NewEntryRepository(pool, logger)
	workLogRepo := repository.NewWorkLogRepository(pool, logger)
	attendanceRepo := repository.NewAttendanceRepository(pool, logger)

	teacherService := service.NewTeacherService(teacherRepo, logger)
	scheduleService := service.NewScheduleService(entryRepo, teacherRepo, studentRepo, workLogRepo, logger)
	attendanceService := service.NewAttendanceService(entryRepo, teacherRepo, workLogRepo, attendanceRepo, logger)

	scheduler := app.NewScheduler(attendanceService, logger)
	scheduler.Start(ctx)
	defer scheduler.Stop()

	b, err := bot.New(cfg.TelegramToken)
	if err != nil {
		logger.Fatal("Failed to create bot", zap.Error(err))
	}

	botController := controller.NewBotController(
		b,
		teacherService,
		scheduleService,
		attendanceService,
		logger,
	)
	if err := botController.RegisterHandlers(ctx); err != nil {
		logger.Fatal("Failed to register handlers", zap.Error(err))
	}

	if err := botController.Start(ctx); err != nil {
		logger.Fatal("Bot stopped with error", zap.Error(err))
	}

	logger.Info("Bot stopped")
}

package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hibiken/asynq"

	"github.com/comercia-pos/comercia-pos/internal/app"
	"github.com/comercia-pos/comercia-pos/internal/notify"
	"github.com/comercia-pos/comercia-pos/internal/platform/db"
	"github.com/comercia-pos/comercia-pos/internal/shared"
	"github.com/comercia-pos/comercia-pos/jobs"
)

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping worker startup")
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

	mailer := notify.NewMailer(logger, notify.SMTPConfig{
		Host: cfg.SMTPHost,
		Port: cfg.SMTPPort,
		From: cfg.SMTPFrom,
		User: cfg.SMTPUser,
		Pass: cfg.SMTPPass,
	})
	whatsapp := notify.NewWhatsAppClient(logger, notify.WhatsAppConfig{
		BaseURL:     cfg.WhatsAppBaseURL,
		PhoneID:     cfg.WhatsAppPhoneID,
		AccessToken: cfg.WhatsAppAccessToken,
	}, cfg.CompanyAddress)

	emailJob := jobs.NewReceiptEmailJob(mailer, logger)
	whatsappJob := jobs.NewWhatsAppReceiptJob(whatsapp, logger)
	cleanupJob := jobs.NewIdempotencyCleanupJob(shared.NewIdempotencyStore(pool), logger, 7*24*time.Hour)

	worker, err := jobs.NewWorker(jobs.WorkerConfig{
		RedisOpts: asynq.RedisClientOpt{Addr: cfg.RedisAddr},
		Logger:    logger,
		Handlers: []jobs.TaskHandler{
			{Type: jobs.TaskTypeReceiptEmail, Handler: emailJob.Handle},
			{Type: jobs.TaskTypeWhatsAppReceipt, Handler: whatsappJob.Handle},
			{Type: jobs.TaskTypeIdempotencyCleanup, Handler: cleanupJob.Handle},
		},
		Cron: []jobs.CronRegistration{
			{Spec: "0 3 * * *", Task: jobs.NewIdempotencyCleanupTask(), Options: []asynq.Option{asynq.MaxRetry(3)}},
		},
	})
	if err != nil {
		logger.Error("init worker", slog.Any("error", err))
		os.Exit(1)
	}

	if err := worker.Run(ctx); err != nil && err != context.Canceled {
		logger.Error("worker run", slog.Any("error", err))
		os.Exit(1)
	}
}

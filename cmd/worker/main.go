package main

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/hibiken/asynq"

	"github.com/gatekeep/gatekeep/internal/app"
	jobmetrics "github.com/gatekeep/gatekeep/internal/jobs"
	"github.com/gatekeep/gatekeep/internal/notify"
	"github.com/gatekeep/gatekeep/jobs"
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

	sender, err := newSender(cfg, logger)
	if err != nil {
		logger.Error("init sms sender", slog.Any("error", err))
		os.Exit(1)
	}
	smsJob := jobs.NewSendSMSJob(sender, logger, jobmetrics.NewMetrics(nil))

	worker, err := jobs.NewWorker(jobs.WorkerConfig{
		RedisOpts: asynq.RedisClientOpt{Addr: cfg.RedisAddr},
		Logger:    logger,
		Handlers: []jobs.TaskHandler{
			{Type: jobs.TaskTypeSendSMS, Handler: smsJob.Handle},
		},
	})
	if err != nil {
		logger.Error("init worker", slog.Any("error", err))
		os.Exit(1)
	}

	if err := worker.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("worker run", slog.Any("error", err))
		os.Exit(1)
	}
}

// newSender delivers through the configured gateway, or logs messages when none is set
// outside production.
func newSender(cfg *app.Config, logger *slog.Logger) (notify.Sender, error) {
	if cfg.SMSGatewayURL == "" {
		if cfg.IsProduction() {
			return nil, errors.New("SMS_GATEWAY_URL is required in production")
		}
		logger.Warn("no sms gateway configured, messages will only be logged")
		return notify.LogSender{Logger: logger}, nil
	}
	return notify.NewHTTPGateway(notify.GatewayConfig{
		URL:      cfg.SMSGatewayURL,
		Token:    cfg.SMSGatewayToken,
		SenderID: cfg.SMSSenderID,
	})
}

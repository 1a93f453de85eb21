package main

import (
	"context"
	"os"
	"time"

	"finfinance/internal/amqp"
	"finfinance/internal/cli"
	applog "finfinance/internal/log"
	"finfinance/internal/services"
)

func main() {
	cli.LoadEnvFile()
	cfg := cli.LoadAndValidateConfig()
	logger := cli.SetupLogger(cfg, applog.ComponentWorker)

	logger.Info("Starting alerts-worker", "interval", cfg.AlertsInterval)

	var opts []services.Option
	var amqpClient *amqp.Client
	if cfg.AMQPEnabled() {
		var err error
		amqpClient, err = amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		if err != nil {
			logger.Warn("Failed to initialize AMQP client, running without publishing", "error", err)
			amqpClient = nil
		} else {
			opts = append(opts, services.WithPublisher(amqpClient))
		}
	} else {
		logger.Info("AMQP disabled - regenerated alerts will not be published")
	}

	svc := cli.InitService(context.Background(), logger, cfg, opts...)
	processor := services.NewAlertsProcessor(svc, services.AlertsProcessorConfig{Interval: cfg.AlertsInterval})

	ctx, done := cli.GracefulShutdown(logger, 30*time.Second, func(shutdownCtx context.Context) {
		if err := processor.Stop(shutdownCtx); err != nil {
			logger.Warn("Alerts processor stop error", "error", err)
		}
		if amqpClient != nil {
			_ = amqpClient.Close()
		}
		if err := svc.Close(); err != nil {
			logger.Warn("Store close error", "error", err)
		}
	})

	if err := processor.Start(ctx); err != nil {
		logger.Error("Failed to start alerts processor", "error", err)
		os.Exit(1)
	}

	cli.WaitForShutdown(ctx, done)
}

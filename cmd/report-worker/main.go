package main

import (
	"context"
	"errors"
	"os"
	"time"

	"finfinance/internal/amqp"
	"finfinance/internal/analysis"
	"finfinance/internal/cache"
	"finfinance/internal/cli"
	applog "finfinance/internal/log"
	"finfinance/internal/services"
	"finfinance/internal/sheets"
	gsheet "finfinance/internal/sheets/google"
	memsheet "finfinance/internal/sheets/memory"
	"finfinance/internal/worker"
)

func main() {
	cli.LoadEnvFile()
	cfg := cli.LoadAndValidateConfig()
	logger := cli.SetupLogger(cfg, applog.ComponentWorker)

	logger.Info("Starting report-worker")

	if !cfg.AMQPEnabled() {
		logger.Error("AMQP_URL is required for the report worker")
		os.Exit(1)
	}

	var writer sheets.ReportWriter
	if cfg.GoogleSpreadsheetID != "" {
		client, err := gsheet.NewFromEnv(context.Background())
		if err != nil {
			logger.Error("Failed to initialize Google Sheets client", "error", err)
			os.Exit(1)
		}
		writer = client
		logger.Info("Google Sheets export enabled", "spreadsheet_id", cfg.GoogleSpreadsheetID)
	} else {
		writer = memsheet.New()
		logger.Info("Google Sheets disabled - reports are kept in memory only")
	}

	amqpClient, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
	if err != nil {
		logger.Error("Failed to initialize AMQP client", "error", err)
		os.Exit(1)
	}

	svc := cli.InitService(context.Background(), logger, cfg)
	reportWorker := worker.NewReportWorker(services.NewReportProcessor(svc, writer), worker.DefaultDedupWindow)

	caches := cache.NewManager()
	caches.Register(reportWorker.Seen())
	caches.StartCleanup(time.Minute)

	ctx, done := cli.GracefulShutdown(logger, 30*time.Second, func(context.Context) {
		caches.Stop()
		_ = amqpClient.Close()
		if err := svc.Close(); err != nil {
			logger.Warn("Store close error", "error", err)
		}
	})

	cur := analysis.CurrentPeriod(time.Now())
	alerts, err := svc.ListAlerts(ctx)
	if err != nil {
		logger.Warn("Could not read alerts for startup export", "error", err)
	}
	if err := reportWorker.StartupExport(ctx, cur.Year, cur.Month, len(alerts)); err != nil {
		logger.Error("Startup report export failed", "error", err)
	}

	go func() {
		err := amqpClient.ConsumeAlerts(ctx, reportWorker.HandleMessage)
		if err != nil && !errors.Is(err, context.Canceled) {
			logger.Error("Message consumption failed", "error", err)
			os.Exit(1)
		}
	}()

	cli.WaitForShutdown(ctx, done)
}

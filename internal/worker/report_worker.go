package worker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"finfinance/internal/amqp"
	"finfinance/internal/cache"
)

// DefaultDedupWindow is how long an identical alerts message is ignored
// after a report was exported for it.
const DefaultDedupWindow = 15 * time.Minute

const dedupCapacity = 256

// ReportExporter exports the report of one period.
type ReportExporter interface {
	HandleAlertsGenerated(ctx context.Context, year, month, alertCount int) error
}

// ReportWorker turns alerts generated messages into report rows. Every
// dashboard view regenerates alerts, so repeated messages for the same
// period and alert counts are dropped within the dedup window.
type ReportWorker struct {
	exporter ReportExporter
	seen     *cache.LRUCache[struct{}]
}

func NewReportWorker(exporter ReportExporter, dedupWindow time.Duration) *ReportWorker {
	if dedupWindow <= 0 {
		dedupWindow = DefaultDedupWindow
	}
	return &ReportWorker{
		exporter: exporter,
		seen:     cache.NewLRUCache[struct{}](dedupCapacity, dedupWindow),
	}
}

// WithClock replaces the clock of the dedup window.
func (w *ReportWorker) WithClock(now func() time.Time) *ReportWorker {
	w.seen.WithClock(now)
	return w
}

// Seen exposes the dedup cache so it can be registered for cleanup.
func (w *ReportWorker) Seen() cache.Cleaner { return w.seen }

func dedupKey(msg *amqp.AlertsGeneratedMessage) string {
	return fmt.Sprintf("%04d-%02d:%d:%d", msg.Year, msg.Month, msg.Count, msg.High)
}

// HandleMessage processes a single alerts generated message from AMQP.
// Returning an error requeues the message.
func (w *ReportWorker) HandleMessage(ctx context.Context, msg *amqp.AlertsGeneratedMessage) error {
	if msg == nil {
		return errors.New("nil alerts message")
	}
	key := dedupKey(msg)
	if _, ok := w.seen.Get(key); ok {
		slog.DebugContext(ctx, "Duplicate alerts message skipped", "key", key)
		return nil
	}

	slog.InfoContext(ctx, "Processing alerts message",
		"year", msg.Year,
		"month", msg.Month,
		"alerts", msg.Count,
		"high_priority", msg.High)

	if err := w.exporter.HandleAlertsGenerated(ctx, msg.Year, msg.Month, msg.Count); err != nil {
		return fmt.Errorf("export report: %w", err)
	}
	w.seen.Set(key, struct{}{})
	return nil
}

// StartupExport exports the given period once at startup, so a report
// exists even when messages were missed while the worker was down.
func (w *ReportWorker) StartupExport(ctx context.Context, year, month, alertCount int) error {
	slog.InfoContext(ctx, "Performing startup report export", "year", year, "month", month)
	return w.HandleMessage(ctx, &amqp.AlertsGeneratedMessage{
		Year:      year,
		Month:     month,
		Count:     alertCount,
		Timestamp: time.Now(),
	})
}

package services

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"finfinance/internal/analysis"
)

// AlertsProcessorConfig holds configuration for the alerts processor
type AlertsProcessorConfig struct {
	// Interval is how often alerts are regenerated (default: 1h)
	Interval time.Duration
}

// DefaultAlertsProcessorConfig returns sensible defaults
func DefaultAlertsProcessorConfig() AlertsProcessorConfig {
	return AlertsProcessorConfig{Interval: time.Hour}
}

// AlertsProcessor regenerates alerts for the current month on a ticker, so
// due date alerts stay fresh when nobody opens the dashboard.
type AlertsProcessor struct {
	service *FinanceService
	config  AlertsProcessorConfig

	mu      sync.Mutex
	running bool
	stopCh  chan struct{}
	doneCh  chan struct{}
}

func NewAlertsProcessor(service *FinanceService, config AlertsProcessorConfig) *AlertsProcessor {
	if config.Interval <= 0 {
		config.Interval = DefaultAlertsProcessorConfig().Interval
	}
	return &AlertsProcessor{service: service, config: config}
}

// Start begins the processing loop. Returns an error if already running.
func (p *AlertsProcessor) Start(ctx context.Context) error {
	p.mu.Lock()
	if p.running {
		p.mu.Unlock()
		return fmt.Errorf("alerts processor is already running")
	}
	p.running = true
	p.stopCh = make(chan struct{})
	p.doneCh = make(chan struct{})
	p.mu.Unlock()

	go p.runLoop(ctx)

	slog.InfoContext(ctx, "Alerts processor started", "interval", p.config.Interval)
	return nil
}

// Stop gracefully stops the processor and waits for completion.
func (p *AlertsProcessor) Stop(ctx context.Context) error {
	p.mu.Lock()
	if !p.running {
		p.mu.Unlock()
		return nil
	}
	p.mu.Unlock()

	close(p.stopCh)

	select {
	case <-p.doneCh:
		slog.InfoContext(ctx, "Alerts processor stopped gracefully")
	case <-ctx.Done():
		slog.WarnContext(ctx, "Alerts processor stop timed out")
		return ctx.Err()
	}

	p.mu.Lock()
	p.running = false
	p.mu.Unlock()
	return nil
}

// IsRunning returns whether the processor is currently running
func (p *AlertsProcessor) IsRunning() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.running
}

func (p *AlertsProcessor) runLoop(ctx context.Context) {
	defer close(p.doneCh)

	ticker := time.NewTicker(p.config.Interval)
	defer ticker.Stop()

	p.runOnceLogged(ctx)

	for {
		select {
		case <-p.stopCh:
			return
		case <-ctx.Done():
			return
		case <-ticker.C:
			p.runOnceLogged(ctx)
		}
	}
}

func (p *AlertsProcessor) runOnceLogged(ctx context.Context) {
	n, err := p.RunOnce(ctx)
	if err != nil {
		slog.ErrorContext(ctx, "Alert regeneration failed", "error", err)
		return
	}
	slog.InfoContext(ctx, "Alert regeneration completed", "alerts", n)
}

// RunOnce regenerates alerts for the month containing now.
func (p *AlertsProcessor) RunOnce(ctx context.Context) (int, error) {
	cur := analysis.CurrentPeriod(p.service.now())
	alerts, err := p.service.GenerateAlerts(ctx, cur.Year, cur.Month)
	if err != nil {
		return 0, err
	}
	return len(alerts), nil
}

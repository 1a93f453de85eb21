package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"finfinance/internal/sheets"
)

// ReportProcessor appends a monthly report row whenever alerts are
// regenerated for a period.
type ReportProcessor struct {
	service *FinanceService
	writer  sheets.ReportWriter
}

func NewReportProcessor(service *FinanceService, writer sheets.ReportWriter) *ReportProcessor {
	return &ReportProcessor{service: service, writer: writer}
}

// HandleAlertsGenerated recomputes the analysis of the period and exports it.
func (p *ReportProcessor) HandleAlertsGenerated(ctx context.Context, year, month, alertCount int) error {
	if p.service == nil || p.writer == nil {
		return errors.New("report processor not properly initialized")
	}
	a, err := p.service.Analysis(ctx, year, month)
	if err != nil {
		return fmt.Errorf("analysis %04d-%02d: %w", year, month, err)
	}
	report := sheets.NewReport(a, alertCount, p.service.now())
	ref, err := p.writer.AppendReport(ctx, report)
	if err != nil {
		return fmt.Errorf("append report: %w", err)
	}
	slog.InfoContext(ctx, "Monthly report exported",
		"period", a.Period.String(),
		"score", a.Score,
		"sheets_ref", ref)
	return nil
}

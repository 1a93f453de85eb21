package memory

import (
	"context"
	"errors"
	"fmt"
	"sync"

	ports "finfinance/internal/sheets"
)

// Writer keeps appended reports in memory. Used when no spreadsheet is
// configured and in tests.
type Writer struct {
	mu    sync.Mutex
	items []ports.Report
}

var _ ports.ReportWriter = (*Writer)(nil)

func New() *Writer {
	return &Writer{}
}

// AppendReport stores the report and returns a synthetic row reference.
func (w *Writer) AppendReport(_ context.Context, r ports.Report) (string, error) {
	if r.Period == "" {
		return "", errors.New("report period is required")
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	w.items = append(w.items, r)
	return fmt.Sprintf("mem:%d", len(w.items)), nil
}

// Reports returns a copy of everything appended so far.
func (w *Writer) Reports() []ports.Report {
	w.mu.Lock()
	defer w.mu.Unlock()
	return append([]ports.Report(nil), w.items...)
}

package worker

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"finfinance/internal/amqp"
)

type recordingExporter struct {
	calls [][3]int
	err   error
}

func (r *recordingExporter) HandleAlertsGenerated(_ context.Context, year, month, count int) error {
	if r.err != nil {
		return r.err
	}
	r.calls = append(r.calls, [3]int{year, month, count})
	return nil
}

func TestHandleMessageDeduplicates(t *testing.T) {
	now := time.Date(2025, 5, 15, 10, 0, 0, 0, time.UTC)
	exp := &recordingExporter{}
	w := NewReportWorker(exp, time.Minute).WithClock(func() time.Time { return now })
	ctx := context.Background()

	msg := &amqp.AlertsGeneratedMessage{Year: 2025, Month: 5, Count: 2, High: 1}
	require.NoError(t, w.HandleMessage(ctx, msg))
	require.NoError(t, w.HandleMessage(ctx, msg))
	assert.Len(t, exp.calls, 1)

	changed := &amqp.AlertsGeneratedMessage{Year: 2025, Month: 5, Count: 3, High: 1}
	require.NoError(t, w.HandleMessage(ctx, changed))
	assert.Len(t, exp.calls, 2)

	now = now.Add(2 * time.Minute)
	require.NoError(t, w.HandleMessage(ctx, msg))
	assert.Len(t, exp.calls, 3)
	assert.Equal(t, [3]int{2025, 5, 2}, exp.calls[2])
}

func TestHandleMessageErrorIsNotRemembered(t *testing.T) {
	exp := &recordingExporter{err: errors.New("sheets down")}
	w := NewReportWorker(exp, time.Minute)
	msg := &amqp.AlertsGeneratedMessage{Year: 2025, Month: 5}

	err := w.HandleMessage(context.Background(), msg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "sheets down")

	exp.err = nil
	require.NoError(t, w.HandleMessage(context.Background(), msg))
	assert.Len(t, exp.calls, 1)
}

func TestHandleMessageNil(t *testing.T) {
	w := NewReportWorker(&recordingExporter{}, 0)
	assert.Error(t, w.HandleMessage(context.Background(), nil))
}

func TestStartupExport(t *testing.T) {
	exp := &recordingExporter{}
	w := NewReportWorker(exp, time.Minute)
	require.NoError(t, w.StartupExport(context.Background(), 2025, 4, 0))
	assert.Equal(t, [][3]int{{2025, 4, 0}}, exp.calls)
	assert.Equal(t, 0, w.Seen().CleanExpired())
}

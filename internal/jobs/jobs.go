// Package jobs holds the periodic maintenance tasks. Each task reads the store
// through the crm operations and appends one line per event to its sink.
package jobs

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/talkincode/toughcrm/internal/crm"
	"github.com/talkincode/toughcrm/internal/repository"
	"go.uber.org/zap"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Timestamp layouts of the job log lines
const (
	RestockTimeLayout = "02/01/2006-15:04:05"
	TimeLayout        = "2006-01-02 15:04:05"
)

var now = time.Now

// RestockOptions configures RestockLowStock
type RestockOptions struct {
	Threshold int
	Increment int
}

// DefaultRestockOptions restocks products below 10 units by 10
func DefaultRestockOptions() RestockOptions {
	return RestockOptions{Threshold: 10, Increment: 10}
}

// ReminderOptions configures ReminderScan
type ReminderOptions struct {
	WindowDays int
}

// DefaultReminderOptions scans the last seven days
func DefaultReminderOptions() ReminderOptions {
	return ReminderOptions{WindowDays: 7}
}

// NewFileSink opens an append-only, size rotated log file
func NewFileSink(filename string) *lumberjack.Logger {
	return &lumberjack.Logger{
		Filename:   filename,
		MaxSize:    16,
		MaxBackups: 3,
		MaxAge:     30,
	}
}

func writeLine(w io.Writer, stamp, format string, args ...interface{}) error {
	_, err := io.WriteString(w, stamp+" - "+fmt.Sprintf(format, args...)+"\n")
	return err
}

// RestockLowStock bumps every product below the threshold and writes
// "<DD/MM/YYYY-HH:MM:SS> - <name> restocked to <stock>" per product. Runs are
// not deduplicated: a product still under the threshold after one run is
// bumped again by the next.
func RestockLowStock(ctx context.Context, store repository.Store, w io.Writer, opts RestockOptions) ([]crm.Restocked, error) {
	stamp := now().Format(RestockTimeLayout)
	restocked, err := crm.RestockLowStock(ctx, store, opts.Threshold, opts.Increment)
	for _, r := range restocked {
		if werr := writeLine(w, stamp, "%s restocked to %d", r.Name, r.Stock); werr != nil && err == nil {
			err = werr
		}
	}
	if err != nil {
		return restocked, err
	}
	zap.L().Info("low stock products restocked",
		zap.Int("count", len(restocked)),
		zap.Int("threshold", opts.Threshold),
		zap.Int("increment", opts.Increment))
	return restocked, nil
}

// GenerateReport writes one
// "<YYYY-MM-DD HH:MM:SS> - Report: N customers, M orders, R revenue" line
func GenerateReport(ctx context.Context, store repository.Store, w io.Writer) (*crm.Report, error) {
	report, err := crm.GenerateReport(ctx, store)
	if err != nil {
		return nil, err
	}
	err = writeLine(w, now().Format(TimeLayout), "Report: %d customers, %d orders, %s revenue",
		report.CustomerCount, report.OrderCount, report.Revenue.StringFixed(2))
	if err != nil {
		return nil, err
	}
	zap.L().Info("crm report generated",
		zap.Int64("customers", report.CustomerCount),
		zap.Int64("orders", report.OrderCount),
		zap.String("revenue", report.Revenue.StringFixed(2)))
	return report, nil
}

// ReminderScan writes "<YYYY-MM-DD HH:MM:SS> - Order <id>, Email: <email>" for
// each order placed within the window. Nothing is sent and nothing in the
// store changes.
func ReminderScan(ctx context.Context, store repository.Store, w io.Writer, opts ReminderOptions) ([]crm.Reminder, error) {
	window := time.Duration(opts.WindowDays) * 24 * time.Hour
	reminders, err := crm.OrderReminders(ctx, store, window)
	if err != nil {
		return nil, err
	}
	stamp := now().Format(TimeLayout)
	for _, r := range reminders {
		if err := writeLine(w, stamp, "Order %d, Email: %s", r.OrderID, r.Email); err != nil {
			return reminders, err
		}
	}
	zap.L().Info("order reminders processed", zap.Int("count", len(reminders)))
	return reminders, nil
}

// Heartbeat writes "<YYYY-MM-DD HH:MM:SS> - heartbeat"
func Heartbeat(w io.Writer) error {
	return writeLine(w, now().Format(TimeLayout), "heartbeat")
}

// Safely runs a scheduled job. Errors and panics are logged and appended to
// the sink as "<timestamp> - Error: <message>"; nothing reaches the caller.
func Safely(name string, w io.Writer, layout string, fn func() error) {
	defer func() {
		if r := recover(); r != nil {
			zap.S().Errorf("job %s panic: %v", name, r)
			_ = writeLine(w, now().Format(layout), "Error: %v", r)
		}
	}()
	if err := fn(); err != nil {
		zap.L().Error("job failed", zap.String("job", name), zap.Error(err))
		_ = writeLine(w, now().Format(layout), "Error: %v", err)
	}
}

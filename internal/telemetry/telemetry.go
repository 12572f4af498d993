// Package telemetry wires structured logging and counters. Until Setup is
// called, logs go to a plain text handler and counters are no-ops.
package telemetry

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"go.opentelemetry.io/contrib/bridges/otelslog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/stdout/stdoutlog"
	"go.opentelemetry.io/otel/exporters/stdout/stdoutmetric"
	"go.opentelemetry.io/otel/log/global"
	"go.opentelemetry.io/otel/metric"
	sdklog "go.opentelemetry.io/otel/sdk/log"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
)

const instrumentationName = "github.com/joshharrison/ganttloom"

// Counter names one of the engine's monotonic counters.
type Counter string

const (
	TasksIngested   Counter = "ganttloom.tasks.ingested"
	FallbackTasks   Counter = "ganttloom.tasks.fallback"
	DanglingRemoved Counter = "ganttloom.dependencies.dangling_removed"
	TogglesRejected Counter = "ganttloom.toggles.rejected"
	StaleLoads      Counter = "ganttloom.loads.stale"
)

var descriptions = map[Counter]string{
	TasksIngested:   "Tasks produced by spreadsheet ingestion",
	FallbackTasks:   "Tasks emitted with the default start and duration",
	DanglingRemoved: "Dependency edges dropped because their target does not exist",
	TogglesRejected: "Completion toggles refused because dependencies are pending",
	StaleLoads:      "Ingestion results discarded because a newer load began",
}

var (
	mu       sync.Mutex
	counters = make(map[Counter]metric.Int64Counter)
)

// UseText routes the default slog logger to a text handler on w.
func UseText(w io.Writer, level slog.Level) {
	slog.SetDefault(slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level})))
}

// Add increments c by n. Errors creating the instrument are logged and
// otherwise ignored.
func Add(ctx context.Context, c Counter, n int64) {
	if n == 0 {
		return
	}
	counter, err := instrument(c)
	if err != nil {
		slog.Warn("failed to create metric", "name", string(c), "error", err)
		return
	}
	counter.Add(ctx, n)
}

func instrument(c Counter) (metric.Int64Counter, error) {
	mu.Lock()
	defer mu.Unlock()

	if counter, ok := counters[c]; ok {
		return counter, nil
	}
	counter, err := otel.Meter(instrumentationName).Int64Counter(string(c),
		metric.WithDescription(descriptions[c]),
		metric.WithUnit("{count}"))
	if err != nil {
		return nil, err
	}
	counters[c] = counter
	return counter, nil
}

// Setup installs OpenTelemetry log and meter providers that export to w and
// points the default slog logger at the otelslog bridge. The returned
// function flushes and shuts both providers down.
func Setup(ctx context.Context, w io.Writer, interval time.Duration) (func(context.Context) error, error) {
	var shutdownFuncs []func(context.Context) error
	shutdown := func(ctx context.Context) error {
		var err error
		for _, fn := range shutdownFuncs {
			err = errors.Join(err, fn(ctx))
		}
		shutdownFuncs = nil
		return err
	}

	logExporter, err := stdoutlog.New(stdoutlog.WithWriter(w))
	if err != nil {
		return nil, fmt.Errorf("create log exporter: %w", err)
	}
	loggerProvider := sdklog.NewLoggerProvider(
		sdklog.WithProcessor(sdklog.NewBatchProcessor(logExporter)),
	)
	shutdownFuncs = append(shutdownFuncs, loggerProvider.Shutdown)
	global.SetLoggerProvider(loggerProvider)

	metricExporter, err := stdoutmetric.New(stdoutmetric.WithWriter(w))
	if err != nil {
		return nil, errors.Join(fmt.Errorf("create metric exporter: %w", err), shutdown(ctx))
	}
	if interval <= 0 {
		interval = time.Minute
	}
	meterProvider := sdkmetric.NewMeterProvider(
		sdkmetric.WithReader(sdkmetric.NewPeriodicReader(metricExporter, sdkmetric.WithInterval(interval))),
	)
	shutdownFuncs = append(shutdownFuncs, meterProvider.Shutdown)
	otel.SetMeterProvider(meterProvider)

	mu.Lock()
	counters = make(map[Counter]metric.Int64Counter)
	mu.Unlock()

	slog.SetDefault(otelslog.NewLogger(instrumentationName, otelslog.WithLoggerProvider(loggerProvider)))
	return shutdown, nil
}

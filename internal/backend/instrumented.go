package backend

import (
	"context"
	"log/slog"
	"time"

	"fintrack/internal/metrics"
	"fintrack/internal/sheets"
)

// InstrumentedBackend records latency and outcome of every store call.
type InstrumentedBackend struct {
	next    Backend
	metrics *metrics.Registry
}

var _ Backend = (*InstrumentedBackend)(nil)

func NewInstrumentedBackend(next Backend, reg *metrics.Registry) *InstrumentedBackend {
	return &InstrumentedBackend{next: next, metrics: reg}
}

func (b *InstrumentedBackend) ReadTable(ctx context.Context, sheet string) (sheets.Table, error) {
	start := time.Now()
	t, err := b.next.ReadTable(ctx, sheet)
	b.observe(ctx, "read", sheet, err, start)
	return t, err
}

func (b *InstrumentedBackend) AppendRows(ctx context.Context, sheet string, rows [][]string) (string, error) {
	start := time.Now()
	ref, err := b.next.AppendRows(ctx, sheet, rows)
	b.observe(ctx, "append", sheet, err, start)
	return ref, err
}

func (b *InstrumentedBackend) UpdateCell(ctx context.Context, sheet string, row, col int, value string) error {
	start := time.Now()
	err := b.next.UpdateCell(ctx, sheet, row, col, value)
	b.observe(ctx, "update", sheet, err, start)
	return err
}

func (b *InstrumentedBackend) Ping(ctx context.Context) error {
	start := time.Now()
	err := b.next.Ping(ctx)
	b.observe(ctx, "ping", "", err, start)
	return err
}

func (b *InstrumentedBackend) observe(ctx context.Context, op, sheet string, err error, start time.Time) {
	d := time.Since(start)
	b.metrics.ObserveStore(op, sheet, err, d)
	slog.DebugContext(ctx, "Store call",
		"op", op,
		"sheet", sheet,
		"duration_ms", d.Milliseconds(),
		"error", err)
}

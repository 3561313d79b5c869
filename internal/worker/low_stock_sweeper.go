package worker

import (
	"context"
	"log/slog"
	"time"

	"github.com/aryan0dhankhar/stockroom/internal/observability/metrics"
)

// LowStockCounter counts items at or below their minimum stock level
type LowStockCounter interface {
	CountLowStock(ctx context.Context) (int, error)
}

// LowStockSweeper periodically publishes the number of low-stock items
// as a gauge. Alerts themselves are raised by adjustments, not here.
type LowStockSweeper struct {
	items    LowStockCounter
	logger   *slog.Logger
	interval time.Duration
	timeout  time.Duration
}

// NewLowStockSweeper creates a new sweeper
func NewLowStockSweeper(items LowStockCounter, logger *slog.Logger, interval time.Duration) *LowStockSweeper {
	if logger == nil {
		logger = slog.Default()
	}
	if interval <= 0 {
		interval = time.Minute
	}
	return &LowStockSweeper{
		items:    items,
		logger:   logger,
		interval: interval,
		timeout:  10 * time.Second,
	}
}

// Start sweeps once immediately and then on every tick until ctx is done
func (w *LowStockSweeper) Start(ctx context.Context) {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	w.logger.Info("low-stock sweeper started", slog.Duration("interval", w.interval))
	w.sweep(ctx)

	for {
		select {
		case <-ctx.Done():
			w.logger.Info("low-stock sweeper stopped")
			return
		case <-ticker.C:
			w.sweep(ctx)
		}
	}
}

func (w *LowStockSweeper) sweep(ctx context.Context) {
	ctx, cancel := context.WithTimeout(ctx, w.timeout)
	defer cancel()

	count, err := w.items.CountLowStock(ctx)
	if err != nil {
		if ctx.Err() == nil {
			w.logger.Error("failed to count low-stock items", slog.String("error", err.Error()))
		}
		return
	}

	metrics.SetLowStockItems(count)
	w.logger.Debug("low-stock sweep completed", slog.Int("low_stock_items", count))
}

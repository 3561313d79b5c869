package notify

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/aryan0dhankhar/stockroom/internal/domain"
	"github.com/aryan0dhankhar/stockroom/internal/observability/metrics"
)

// ErrQueueFull is returned when an alert is dropped because the dispatcher
// is saturated
var ErrQueueFull = errors.New("alert queue full")

// Dispatcher decouples alert delivery from the request that raised it. It
// queues alerts and delivers them from a single worker goroutine.
type Dispatcher struct {
	queue    chan domain.LowStockAlert
	notifier domain.LowStockNotifier
	timeout  time.Duration
	logger   *slog.Logger
	done     chan struct{}
}

func NewDispatcher(notifier domain.LowStockNotifier, queueSize int, timeout time.Duration, logger *slog.Logger) *Dispatcher {
	if logger == nil {
		logger = slog.Default()
	}
	if queueSize <= 0 {
		queueSize = 1
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Dispatcher{
		queue:    make(chan domain.LowStockAlert, queueSize),
		notifier: notifier,
		timeout:  timeout,
		logger:   logger,
		done:     make(chan struct{}),
	}
}

// NotifyLowStock enqueues the alert without blocking
func (d *Dispatcher) NotifyLowStock(_ context.Context, alert domain.LowStockAlert) error {
	select {
	case d.queue <- alert:
		return nil
	default:
		d.logger.Error("dropping low-stock alert, queue full",
			slog.String("item_id", alert.ItemID.String()),
		)
		metrics.ObserveAlert("dispatch", "dropped")
		return ErrQueueFull
	}
}

// Run delivers queued alerts until ctx is done, then flushes what is
// already queued and returns.
func (d *Dispatcher) Run(ctx context.Context) {
	defer close(d.done)
	d.logger.Info("alert dispatcher started", slog.Int("queue_size", cap(d.queue)))

	for {
		select {
		case <-ctx.Done():
			d.drain()
			d.logger.Info("alert dispatcher stopped")
			return
		case alert := <-d.queue:
			d.deliver(alert)
		}
	}
}

// Done is closed once Run has returned
func (d *Dispatcher) Done() <-chan struct{} {
	return d.done
}

func (d *Dispatcher) drain() {
	for {
		select {
		case alert := <-d.queue:
			d.deliver(alert)
		default:
			return
		}
	}
}

func (d *Dispatcher) deliver(alert domain.LowStockAlert) {
	ctx, cancel := context.WithTimeout(context.Background(), d.timeout)
	defer cancel()

	if err := d.notifier.NotifyLowStock(ctx, alert); err != nil {
		d.logger.Error("low-stock alert delivery failed",
			slog.String("item_id", alert.ItemID.String()),
			slog.String("error", err.Error()),
		)
		metrics.ObserveAlert("dispatch", "error")
		return
	}
	metrics.ObserveAlert("dispatch", "delivered")
}

package notify

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/aryan0dhankhar/stockroom/internal/domain"
	"github.com/aryan0dhankhar/stockroom/internal/observability/metrics"
	"github.com/aryan0dhankhar/stockroom/internal/reliability/circuitbreaker"
	"github.com/aryan0dhankhar/stockroom/internal/reliability/retry"
)

// EmailNotifier mails low-stock alerts to the inventory's notification
// address. Sends are retried with backoff behind a circuit breaker so a
// dead relay is not hammered.
type EmailNotifier struct {
	mailer  Mailer
	breaker *circuitbreaker.CircuitBreaker
	retry   *retry.Config
	logger  *slog.Logger
}

func NewEmailNotifier(mailer Mailer, logger *slog.Logger) *EmailNotifier {
	if logger == nil {
		logger = slog.Default()
	}
	breaker := circuitbreaker.NewCircuitBreaker(5, 1, 30*time.Second)
	breaker.SetStateChangeCallback(func(from, to circuitbreaker.State) {
		logger.Warn("email circuit breaker state changed",
			slog.String("from", from.String()),
			slog.String("to", to.String()),
		)
	})
	return &EmailNotifier{
		mailer:  mailer,
		breaker: breaker,
		retry:   retry.DefaultConfig(),
		logger:  logger,
	}
}

func (n *EmailNotifier) NotifyLowStock(ctx context.Context, alert domain.LowStockAlert) error {
	if alert.NotificationEmail == "" {
		return nil
	}
	subject := LowStockSubject(alert.ProductName)
	body := FormatLowStockMessage(alert.InventoryName, alert.ProductName, alert.CurrentQuantity)

	_, err := retry.Do(ctx, n.retry, n.logger, "send low-stock email", func(ctx context.Context) (struct{}, error) {
		err := n.breaker.Execute(func() error {
			return n.mailer.Send(ctx, alert.NotificationEmail, subject, body)
		})
		if errors.Is(err, circuitbreaker.ErrOpen) || errors.Is(err, ErrInvalidRecipient) {
			return struct{}{}, retry.Permanent(err)
		}
		return struct{}{}, err
	})
	if err != nil {
		metrics.ObserveAlert("email", "error")
		return err
	}

	metrics.ObserveAlert("email", "sent")
	n.logger.Info("low-stock email sent",
		slog.String("item_id", alert.ItemID.String()),
		slog.String("inventory_id", alert.InventoryID.String()),
	)
	return nil
}

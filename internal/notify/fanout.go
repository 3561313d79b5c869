package notify

import (
	"context"
	"errors"

	"github.com/aryan0dhankhar/stockroom/internal/domain"
)

// Fanout delivers every alert to each notifier in turn. One failing
// notifier does not stop the others.
type Fanout []domain.LowStockNotifier

func (f Fanout) NotifyLowStock(ctx context.Context, alert domain.LowStockAlert) error {
	var errs []error
	for _, n := range f {
		if err := n.NotifyLowStock(ctx, alert); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

package commission

import (
	"context"
	"fmt"
	"time"

	"github.com/GlebRadaev/memberhub/internal/domain"
	"github.com/GlebRadaev/memberhub/internal/metrics"
	"go.uber.org/zap"
)

//go:generate mockgen -source=dispatcher.go -destination=mock_dispatcher.go -package=commission

type OrderProcessor interface {
	Process(ctx context.Context, order domain.Order) error
}

const (
	queueFactor    = 16
	enqueueTimeout = 2 * time.Second
	taskTimeout    = 30 * time.Second
)

// Dispatcher hands settled orders to the commission workers. It never makes
// the caller wait longer than the enqueue timeout and never returns an error;
// failures are logged and counted for manual follow-up.
type Dispatcher struct {
	pool           WorkerPoolI
	processor      OrderProcessor
	enqueueTimeout time.Duration
	taskTimeout    time.Duration
}

func NewDispatcher(processor OrderProcessor, workers int) *Dispatcher {
	return &Dispatcher{
		pool:           NewWorkerPool(workers, workers*queueFactor),
		processor:      processor,
		enqueueTimeout: enqueueTimeout,
		taskTimeout:    taskTimeout,
	}
}

func (d *Dispatcher) Dispatch(order domain.Order) {
	if !order.HasPromoter() {
		metrics.Commissions.WithLabelValues(metrics.CommissionSkipped).Inc()
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), d.enqueueTimeout)
	defer cancel()

	err := d.pool.AddTask(ctx, func() error {
		taskCtx, cancel := context.WithTimeout(context.Background(), d.taskTimeout)
		defer cancel()
		if err := d.processor.Process(taskCtx, order); err != nil {
			metrics.RecordCommissionFailure(metrics.CommissionFailed)
			return fmt.Errorf("commission for order %s, promoter %d: %w", order.OrderNo, order.PromoterID, err)
		}
		return nil
	})
	if err != nil {
		metrics.RecordCommissionFailure(metrics.CommissionDropped)
		zap.L().Error("commission dropped", zap.String("order_no", order.OrderNo),
			zap.Int("promoter_id", order.PromoterID), zap.Int64("pay_amount", order.PayAmount), zap.Error(err))
	}
}

// Close waits for queued commissions to finish.
func (d *Dispatcher) Close() {
	d.pool.Close()
}

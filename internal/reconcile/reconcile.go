package reconcile

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/GlebRadaev/memberhub/internal/config"
	"github.com/GlebRadaev/memberhub/internal/domain"
	"github.com/GlebRadaev/memberhub/internal/metrics"
	"github.com/GlebRadaev/memberhub/internal/payment"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

//go:generate mockgen -source=reconcile.go -destination=mock_reconcile.go -package=reconcile

type Orders interface {
	FindStalePending(ctx context.Context, olderThan, window time.Duration, limit int) ([]domain.Order, error)
	SettleSuccess(ctx context.Context, notice *domain.PaymentNotice) (*domain.Order, bool, error)
	MarkFailed(ctx context.Context, orderNo, state string) (bool, error)
}

type Querier interface {
	QueryOrder(ctx context.Context, orderNo string) (*domain.PaymentNotice, error)
}

type Dispatcher interface {
	Dispatch(order domain.Order)
}

const (
	batchLimit  = 200
	concurrency = 8

	resultSettled = "settled"
	resultClosed  = "closed"
	resultPending = "pending"
	resultFailed  = "failed"
)

// Service polls the gateway for orders whose notification never arrived.
// It goes through the same settlement path as the webhook, so a late
// notification and a poll cannot both apply a payment.
type Service struct {
	orders     Orders
	gateway    Querier
	dispatcher Dispatcher
	interval   time.Duration
	olderThan  time.Duration
	window     time.Duration
	limit      int
	inflight   sync.Map
}

func New(cfg *config.Config, orders Orders, gateway Querier, dispatcher Dispatcher) *Service {
	return &Service{
		orders:     orders,
		gateway:    gateway,
		dispatcher: dispatcher,
		interval:   cfg.ReconcileInterval,
		olderThan:  cfg.ReconcileAfter,
		window:     cfg.ReconcileWindow,
		limit:      batchLimit,
	}
}

// Run polls until ctx is done. A batch in flight finishes before Run returns.
func (s *Service) Run(ctx context.Context) {
	if s.interval <= 0 {
		zap.L().Info("reconciler disabled")
		return
	}
	zap.L().Info("reconciler started", zap.Duration("interval", s.interval))

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			zap.L().Info("context canceled, stopping reconciler")
			return
		case <-ticker.C:
			s.reconcile(ctx)
		}
	}
}

func (s *Service) reconcile(ctx context.Context) {
	orders, err := s.orders.FindStalePending(ctx, s.olderThan, s.window, s.limit)
	if err != nil {
		zap.L().Error("failed to fetch stale orders", zap.Error(err))
		return
	}

	var g errgroup.Group
	g.SetLimit(concurrency)
	for _, order := range orders {
		if _, loaded := s.inflight.LoadOrStore(order.OrderNo, struct{}{}); loaded {
			continue
		}
		g.Go(func() error {
			defer s.inflight.Delete(order.OrderNo)
			return s.handleOrder(ctx, order)
		})
	}

	if err := g.Wait(); err != nil {
		zap.L().Error("error reconciling orders", zap.Error(err))
	}
}

func (s *Service) handleOrder(ctx context.Context, order domain.Order) error {
	notice, err := s.gateway.QueryOrder(ctx, order.OrderNo)
	if errors.Is(err, payment.ErrTradeNotFound) {
		metrics.ReconciledOrders.WithLabelValues(resultPending).Inc()
		return nil
	}
	if err != nil {
		metrics.ReconciledOrders.WithLabelValues(resultFailed).Inc()
		return fmt.Errorf("query order %s: %w", order.OrderNo, err)
	}

	switch notice.TradeState {
	case domain.PayStatusSuccess:
		settled, newly, err := s.orders.SettleSuccess(ctx, notice)
		if err != nil {
			metrics.ReconciledOrders.WithLabelValues(resultFailed).Inc()
			return fmt.Errorf("settle order %s: %w", order.OrderNo, err)
		}
		if newly {
			metrics.ReconciledOrders.WithLabelValues(resultSettled).Inc()
			zap.L().Info("order settled by reconciler", zap.String("order_no", order.OrderNo))
		}
		// Crediting is idempotent per order, so a paid order is always handed
		// over again in case an earlier dispatch was lost.
		if settled.Paid() {
			s.dispatcher.Dispatch(*settled)
		}
	case "CLOSED", "REVOKED", "PAYERROR":
		if _, err := s.orders.MarkFailed(ctx, order.OrderNo, notice.TradeState); err != nil {
			metrics.ReconciledOrders.WithLabelValues(resultFailed).Inc()
			return fmt.Errorf("close order %s: %w", order.OrderNo, err)
		}
		metrics.ReconciledOrders.WithLabelValues(resultClosed).Inc()
	default:
		metrics.ReconciledOrders.WithLabelValues(resultPending).Inc()
	}
	return nil
}

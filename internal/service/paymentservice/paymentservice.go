package paymentservice

import (
	"context"
	"errors"

	"github.com/GlebRadaev/memberhub/internal/domain"
	"github.com/GlebRadaev/memberhub/internal/metrics"
	"github.com/GlebRadaev/memberhub/internal/payment"
	"go.uber.org/zap"
)

//go:generate mockgen -source=paymentservice.go -destination=mock_paymentservice.go -package=paymentservice

type Orders interface {
	CreateOrder(ctx context.Context, productID, userID, promoterID int) (*domain.Order, error)
	GetOrder(ctx context.Context, userID int, orderNo string) (*domain.Order, error)
	SettleSuccess(ctx context.Context, notice *domain.PaymentNotice) (*domain.Order, bool, error)
}

type Users interface {
	FindByID(ctx context.Context, id int) (*domain.User, error)
}

type Members interface {
	FindByUserID(ctx context.Context, userID int) (*domain.Membership, error)
}

type Dispatcher interface {
	Dispatch(order domain.Order)
}

type Service struct {
	orders     Orders
	users      Users
	members    Members
	gateway    payment.Gateway
	dispatcher Dispatcher
}

func New(orders Orders, users Users, members Members, gateway payment.Gateway, dispatcher Dispatcher) *Service {
	return &Service{
		orders:     orders,
		users:      users,
		members:    members,
		gateway:    gateway,
		dispatcher: dispatcher,
	}
}

// Pay creates an order and asks the gateway for prepay parameters. When the
// gateway fails the order stays PENDING and can be paid with Repay.
func (s *Service) Pay(ctx context.Context, productID, userID, promoterID int, clientIP string) (*payment.PrepaySignature, error) {
	user, err := s.payer(ctx, userID)
	if err != nil {
		return nil, err
	}
	order, err := s.orders.CreateOrder(ctx, productID, userID, promoterID)
	if err != nil {
		return nil, err
	}
	return s.prepay(ctx, order, user, clientIP)
}

// Repay reopens the payment sheet for an order that is still PENDING. A user
// who became a member since the order was placed, for example by redeeming a
// code, is refused before the gateway is asked to take money.
func (s *Service) Repay(ctx context.Context, userID int, orderNo, clientIP string) (*payment.PrepaySignature, error) {
	order, err := s.orders.GetOrder(ctx, userID, orderNo)
	if err != nil {
		return nil, err
	}
	if order.PayStatus != domain.PayStatusPending {
		return nil, domain.ErrOrderNotPayable
	}
	user, err := s.payer(ctx, userID)
	if err != nil {
		return nil, err
	}
	membership, err := s.members.FindByUserID(ctx, userID)
	if err != nil {
		zap.L().Error("failed to check membership", zap.Int("user_id", userID), zap.Error(err))
		return nil, err
	}
	if membership.Active() {
		return nil, domain.ErrAlreadyMember
	}
	return s.prepay(ctx, order, user, clientIP)
}

func (s *Service) payer(ctx context.Context, userID int) (*domain.User, error) {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user == nil || !user.Enabled {
		return nil, domain.ErrUserNotFound
	}
	return user, nil
}

func (s *Service) prepay(ctx context.Context, order *domain.Order, user *domain.User, clientIP string) (*payment.PrepaySignature, error) {
	sig, err := s.gateway.Prepay(ctx, payment.PrepayRequest{
		OrderNo:     order.OrderNo,
		Description: order.ProductName,
		Amount:      order.PayAmount,
		OpenID:      user.OpenID,
		ClientIP:    clientIP,
	})
	if err != nil {
		zap.L().Error("prepay failed", zap.String("order_no", order.OrderNo), zap.Error(err))
		return nil, err
	}
	zap.L().Info("prepay issued", zap.String("order_no", order.OrderNo), zap.Int64("amount", order.PayAmount))
	return sig, nil
}

// HandleNotification settles the order a verified webhook reports as paid
// and dispatches its commission. A redelivery for an order that is already
// paid dispatches again, since the process may have stopped between commit
// and dispatch; crediting is idempotent per order. It runs to completion even
// if the caller disconnects. The returned error is for logging only; the gateway
// is always acknowledged.
func (s *Service) HandleNotification(ctx context.Context, n payment.Notification) error {
	ctx = context.WithoutCancel(ctx)

	notice, err := s.gateway.Decode(ctx, n)
	if errors.Is(err, payment.ErrIgnoredEvent) {
		metrics.WebhookEvents.WithLabelValues(metrics.OutcomeIgnored).Inc()
		zap.L().Info("payment notification ignored", zap.Error(err))
		return nil
	}
	if err != nil {
		metrics.WebhookEvents.WithLabelValues(metrics.OutcomeRejected).Inc()
		zap.L().Warn("payment notification rejected", zap.String("serial", n.Serial), zap.Error(err))
		return err
	}

	order, newly, err := s.orders.SettleSuccess(ctx, notice)
	if err != nil {
		metrics.WebhookEvents.WithLabelValues(metrics.OutcomeFailed).Inc()
		zap.L().Error("payment notification not settled", zap.String("order_no", notice.OutTradeNo),
			zap.String("transaction_id", notice.TransactionID), zap.Error(err))
		return err
	}
	if newly {
		metrics.WebhookEvents.WithLabelValues(metrics.OutcomeSettled).Inc()
	} else {
		metrics.WebhookEvents.WithLabelValues(metrics.OutcomeDuplicate).Inc()
	}
	if order.Paid() {
		s.dispatcher.Dispatch(*order)
	}
	return nil
}

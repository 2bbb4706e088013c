package orderservice

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/GlebRadaev/memberhub/internal/domain"
	"github.com/GlebRadaev/memberhub/internal/metrics"
	"github.com/GlebRadaev/memberhub/internal/pg"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/sethvargo/go-retry"
	"go.uber.org/zap"
)

//go:generate mockgen -source=orderservice.go -destination=mock_orderservice.go -package=orderservice

type Repo interface {
	Create(ctx context.Context, order *domain.Order) (*domain.Order, error)
	FindByOrderNo(ctx context.Context, orderNo string) (*domain.Order, error)
	FindByOrderNoForUpdate(ctx context.Context, orderNo string) (*domain.Order, error)
	FindByUserID(ctx context.Context, userID int) ([]domain.Order, error)
	FindStalePending(ctx context.Context, from, to time.Time, limit int) ([]domain.Order, error)
	UpdateSettlement(ctx context.Context, order *domain.Order) error
	MarkFailed(ctx context.Context, orderNo, state string) (bool, error)
}

type UserRepo interface {
	FindByID(ctx context.Context, id int) (*domain.User, error)
}

type ProductRepo interface {
	FindByID(ctx context.Context, id int) (*domain.Product, error)
}

type MemberRepo interface {
	FindByUserID(ctx context.Context, userID int) (*domain.Membership, error)
}

type Activator interface {
	ActivateByPayment(ctx context.Context, order *domain.Order) (*domain.Membership, error)
}

const (
	maxOrderNoAttempts = 5
	orderNoRetryDelay  = 5 * time.Millisecond

	uniqueViolation   = "23505"
	orderNoConstraint = "orders_order_no_key"
)

type Service struct {
	repo      Repo
	users     UserRepo
	products  ProductRepo
	members   MemberRepo
	activator Activator
	txManager pg.TXManager
	prefix    string
	now       func() time.Time
	serial    func() int
}

func New(repo Repo, users UserRepo, products ProductRepo, members MemberRepo, activator Activator, txManager pg.TXManager, prefix string) *Service {
	return &Service{
		repo:      repo,
		users:     users,
		products:  products,
		members:   members,
		activator: activator,
		txManager: txManager,
		prefix:    prefix,
		now:       time.Now,
		serial:    func() int { return rand.IntN(1_000_000) },
	}
}

// CreateOrder opens a PENDING order priced from the product. A promoter that
// is unknown, disabled, not a promoter or the buyer themselves is dropped.
func (s *Service) CreateOrder(ctx context.Context, productID, userID, promoterID int) (*domain.Order, error) {
	if productID <= 0 || userID <= 0 {
		return nil, fmt.Errorf("%w: product and user are required", domain.ErrValidation)
	}

	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user == nil || !user.Enabled {
		return nil, domain.ErrUserNotFound
	}

	product, err := s.products.FindByID(ctx, productID)
	if err != nil {
		return nil, err
	}
	if product == nil || !product.Enabled {
		return nil, domain.ErrProductNotFound
	}

	membership, err := s.members.FindByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if membership.Active() {
		return nil, domain.ErrAlreadyMember
	}

	promoterID, err = s.resolvePromoter(ctx, promoterID, userID)
	if err != nil {
		return nil, err
	}

	order := &domain.Order{
		UserID:      userID,
		ProductID:   product.ID,
		ProductName: product.Name,
		PayAmount:   product.Price,
		PayStatus:   domain.PayStatusPending,
		PromoterID:  promoterID,
	}

	backoff := retry.WithMaxRetries(maxOrderNoAttempts-1, retry.NewConstant(orderNoRetryDelay))
	err = retry.Do(ctx, backoff, func(ctx context.Context) error {
		order.OrderNo = s.nextOrderNo()
		_, err := s.repo.Create(ctx, order)
		if isOrderNoCollision(err) {
			zap.L().Warn("order number collision", zap.String("order_no", order.OrderNo))
			return retry.RetryableError(err)
		}
		return err
	})
	if err != nil {
		if isOrderNoCollision(err) {
			return nil, fmt.Errorf("%w: no free order number after %d attempts", domain.ErrInternal, maxOrderNoAttempts)
		}
		zap.L().Error("can't create order", zap.Int("user_id", userID), zap.Error(err))
		return nil, err
	}

	metrics.OrdersCreated.Inc()
	zap.L().Info("order created", zap.String("order_no", order.OrderNo), zap.Int("user_id", userID),
		zap.Int64("amount", order.PayAmount), zap.Int("promoter_id", order.PromoterID))
	return order, nil
}

func (s *Service) resolvePromoter(ctx context.Context, promoterID, userID int) (int, error) {
	if promoterID <= 0 || promoterID == userID {
		return domain.NoPromoter, nil
	}
	promoter, err := s.users.FindByID(ctx, promoterID)
	if err != nil {
		return 0, err
	}
	if promoter == nil || !promoter.Enabled || !promoter.IsPromoter {
		zap.L().Debug("promoter dropped", zap.Int("promoter_id", promoterID))
		return domain.NoPromoter, nil
	}
	return promoter.ID, nil
}

func (s *Service) nextOrderNo() string {
	return fmt.Sprintf("%s%s%06d", s.prefix, s.now().Format("20060102"), s.serial())
}

func isOrderNoCollision(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolation && pgErr.ConstraintName == orderNoConstraint
}

// SettleSuccess applies a verified successful payment. The order row lock
// makes concurrent deliveries of the same payment settle it once; the bool
// reports whether this call did. Activation joins the same transaction.
func (s *Service) SettleSuccess(ctx context.Context, notice *domain.PaymentNotice) (*domain.Order, bool, error) {
	var (
		settled *domain.Order
		newly   bool
	)
	err := s.txManager.Begin(ctx, func(ctx context.Context) error {
		order, err := s.repo.FindByOrderNoForUpdate(ctx, notice.OutTradeNo)
		if err != nil {
			return err
		}
		if order == nil {
			return domain.ErrOrderNotFound
		}
		settled = order
		if order.Paid() {
			return nil
		}
		if notice.TradeState != domain.PayStatusSuccess {
			return nil
		}
		if notice.Total != order.PayAmount {
			return fmt.Errorf("%w: paid %d, expected %d", domain.ErrAmountMismatch, notice.Total, order.PayAmount)
		}

		order.PayStatus = domain.PayStatusSuccess
		order.PayType = notice.TradeType
		order.MchID = notice.MchID
		order.TransactionID = notice.TransactionID
		order.CallbackPayload = notice.Raw
		payTime := notice.SuccessTime
		if payTime.IsZero() {
			payTime = s.now()
		}
		order.PayTime = &payTime
		if err := s.repo.UpdateSettlement(ctx, order); err != nil {
			return err
		}

		if _, err := s.activator.ActivateByPayment(ctx, order); err != nil {
			return err
		}
		newly = true
		return nil
	})
	if err != nil {
		zap.L().Warn("settlement failed", zap.String("order_no", notice.OutTradeNo), zap.Error(err))
		return nil, false, err
	}

	if newly {
		metrics.Activations.WithLabelValues(domain.OpenTypePay).Inc()
		zap.L().Info("order settled", zap.String("order_no", settled.OrderNo), zap.String("transaction_id", settled.TransactionID))
	} else {
		zap.L().Info("settlement skipped", zap.String("order_no", settled.OrderNo),
			zap.String("pay_status", settled.PayStatus), zap.String("trade_state", notice.TradeState))
	}
	return settled, newly, nil
}

// MarkFailed closes a PENDING order the gateway reports as unpaid for good.
func (s *Service) MarkFailed(ctx context.Context, orderNo, state string) (bool, error) {
	changed, err := s.repo.MarkFailed(ctx, orderNo, state)
	if err != nil {
		return false, err
	}
	if changed {
		zap.L().Info("order closed", zap.String("order_no", orderNo), zap.String("state", state))
	}
	return changed, nil
}

func (s *Service) GetOrders(ctx context.Context, userID int) ([]domain.Order, error) {
	orders, err := s.repo.FindByUserID(ctx, userID)
	if err != nil {
		zap.L().Error("failed to get orders", zap.Error(err))
		return nil, err
	}
	return orders, nil
}

// GetOrder hides orders of other users behind ErrOrderNotFound.
func (s *Service) GetOrder(ctx context.Context, userID int, orderNo string) (*domain.Order, error) {
	order, err := s.repo.FindByOrderNo(ctx, orderNo)
	if err != nil {
		zap.L().Error("failed to get order", zap.String("order_no", orderNo), zap.Error(err))
		return nil, err
	}
	if order == nil || order.UserID != userID {
		return nil, domain.ErrOrderNotFound
	}
	return order, nil
}

// FindStalePending lists orders still PENDING between window and olderThan ago.
func (s *Service) FindStalePending(ctx context.Context, olderThan, window time.Duration, limit int) ([]domain.Order, error) {
	now := s.now()
	orders, err := s.repo.FindStalePending(ctx, now.Add(-window), now.Add(-olderThan), limit)
	if err != nil {
		zap.L().Error("failed to find stale orders", zap.Error(err))
		return nil, err
	}
	return orders, nil
}

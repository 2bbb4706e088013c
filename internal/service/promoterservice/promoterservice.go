package promoterservice

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/GlebRadaev/memberhub/internal/domain"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

//go:generate mockgen -source=promoterservice.go -destination=mock_promoterservice.go -package=promoterservice

type UserRepo interface {
	UpdatePromoter(ctx context.Context, id int, isPromoter bool, rate decimal.Decimal, link string) (*domain.Promoter, error)
}

const (
	landingPage = "pages/index/index"
	keyLen      = 8
	rateScale   = 4
)

// Service manages which users earn commission and at what rate. The rate is
// read again when a commission is credited, so a change applies to orders
// settled after it.
type Service struct {
	users UserRepo
	key   func() string
}

func New(users UserRepo) *Service {
	return &Service{
		users: users,
		key:   func() string { return strings.ReplaceAll(uuid.NewString(), "-", "")[:keyLen] },
	}
}

// SetPromoter updates the promoter flag and rate. The rate must lie in [0, 1]
// with at most four decimal places, matching the stored precision.
func (s *Service) SetPromoter(ctx context.Context, userID int, isPromoter bool, rate decimal.Decimal) (*domain.Promoter, error) {
	if userID <= 0 {
		return nil, fmt.Errorf("%w: user id must be positive", domain.ErrValidation)
	}
	if rate.IsNegative() || rate.GreaterThan(decimal.NewFromInt(1)) {
		return nil, fmt.Errorf("%w: commission rate must be between 0 and 1", domain.ErrValidation)
	}
	if !rate.Equal(rate.Round(rateScale)) {
		return nil, fmt.Errorf("%w: commission rate has more than %d decimal places", domain.ErrValidation, rateScale)
	}

	promoter, err := s.users.UpdatePromoter(ctx, userID, isPromoter, rate, s.link(userID))
	if err != nil {
		zap.L().Error("failed to update promoter", zap.Int("user_id", userID), zap.Error(err))
		return nil, err
	}
	if promoter == nil {
		return nil, domain.ErrUserNotFound
	}

	zap.L().Info("promoter updated", zap.Int("user_id", userID), zap.Bool("is_promoter", promoter.IsPromoter),
		zap.String("commission_rate", promoter.CommissionRate.String()))
	return promoter, nil
}

// link is the mini-program page a promoter shares; orders placed from it
// carry promoterId.
func (s *Service) link(userID int) string {
	return landingPage + "?key=" + s.key() + "&promoterId=" + strconv.Itoa(userID)
}

package balanceservice

import (
	"context"
	"fmt"

	"github.com/GlebRadaev/memberhub/internal/domain"
	"go.uber.org/zap"
)

//go:generate mockgen -source=balanceservice.go -destination=mock_balanceservice.go -package=balanceservice

type Repo interface {
	Get(ctx context.Context, userID int) (*domain.Balance, error)
	Ensure(ctx context.Context, userID int) (*domain.Balance, error)
	Credit(ctx context.Context, userID int, amount int64) (*domain.Balance, error)
	Debit(ctx context.Context, userID int, amount int64) (*domain.Balance, error)
	Freeze(ctx context.Context, userID int, amount int64) (*domain.Balance, error)
	Release(ctx context.Context, userID int, amount int64) (*domain.Balance, error)
	Unfreeze(ctx context.Context, userID int, amount int64) (*domain.Balance, error)
}

type PromotionRepo interface {
	FindByPromoter(ctx context.Context, promoterID int) ([]domain.PromotionRecord, error)
}

// Service is the balance ledger. It never reads and then writes: every
// primitive is delegated to one conditional statement, so it is safe to call
// concurrently and inside or outside a transaction.
type Service struct {
	repo          Repo
	promotionRepo PromotionRepo
}

func New(repo Repo, promotionRepo PromotionRepo) *Service {
	return &Service{
		repo:          repo,
		promotionRepo: promotionRepo,
	}
}

// GetBalance reads a missing row as a zero balance.
func (s *Service) GetBalance(ctx context.Context, userID int) (*domain.Balance, error) {
	balance, err := s.repo.Get(ctx, userID)
	if err != nil {
		zap.L().Error("failed to get balance", zap.Int("user_id", userID), zap.Error(err))
		return nil, err
	}
	if balance == nil {
		return &domain.Balance{UserID: userID}, nil
	}
	return balance, nil
}

func (s *Service) EnsureBalance(ctx context.Context, userID int) (*domain.Balance, error) {
	balance, err := s.repo.Ensure(ctx, userID)
	if err != nil {
		zap.L().Error("failed to ensure balance", zap.Int("user_id", userID), zap.Error(err))
		return nil, err
	}
	return balance, nil
}

func (s *Service) Credit(ctx context.Context, userID int, amount int64) (*domain.Balance, error) {
	return s.apply(ctx, "credit", s.repo.Credit, userID, amount)
}

func (s *Service) Debit(ctx context.Context, userID int, amount int64) (*domain.Balance, error) {
	return s.apply(ctx, "debit", s.repo.Debit, userID, amount)
}

func (s *Service) Freeze(ctx context.Context, userID int, amount int64) (*domain.Balance, error) {
	return s.apply(ctx, "freeze", s.repo.Freeze, userID, amount)
}

func (s *Service) Release(ctx context.Context, userID int, amount int64) (*domain.Balance, error) {
	return s.apply(ctx, "release", s.repo.Release, userID, amount)
}

func (s *Service) Unfreeze(ctx context.Context, userID int, amount int64) (*domain.Balance, error) {
	return s.apply(ctx, "unfreeze", s.repo.Unfreeze, userID, amount)
}

func (s *Service) GetPromotions(ctx context.Context, userID int) ([]domain.PromotionRecord, error) {
	records, err := s.promotionRepo.FindByPromoter(ctx, userID)
	if err != nil {
		zap.L().Error("failed to get promotion records", zap.Int("user_id", userID), zap.Error(err))
		return nil, err
	}
	return records, nil
}

type primitive func(ctx context.Context, userID int, amount int64) (*domain.Balance, error)

func (s *Service) apply(ctx context.Context, op string, fn primitive, userID int, amount int64) (*domain.Balance, error) {
	if amount <= 0 {
		return nil, fmt.Errorf("%w: %s amount must be positive, got %d", domain.ErrValidation, op, amount)
	}
	balance, err := fn(ctx, userID, amount)
	if err != nil {
		zap.L().Warn("ledger operation rejected", zap.String("op", op), zap.Int("user_id", userID), zap.Int64("amount", amount), zap.Error(err))
		return nil, err
	}
	zap.L().Debug("ledger operation applied", zap.String("op", op), zap.Int("user_id", userID), zap.Int64("amount", amount))
	return balance, nil
}

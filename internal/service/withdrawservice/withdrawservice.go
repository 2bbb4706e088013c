package withdrawservice

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/GlebRadaev/memberhub/internal/domain"
	"github.com/GlebRadaev/memberhub/internal/metrics"
	"github.com/GlebRadaev/memberhub/internal/pg"
	"go.uber.org/zap"
)

//go:generate mockgen -source=withdrawservice.go -destination=mock_withdrawservice.go -package=withdrawservice

type Repo interface {
	Create(ctx context.Context, record *domain.WithdrawRecord) (*domain.WithdrawRecord, error)
	FindByIDForUpdate(ctx context.Context, id int) (*domain.WithdrawRecord, error)
	UpdateStatus(ctx context.Context, record *domain.WithdrawRecord) error
	FindByUserID(ctx context.Context, userID int) ([]domain.WithdrawRecord, error)
	List(ctx context.Context, filter domain.WithdrawFilter) ([]domain.WithdrawRecord, int, error)
}

type Ledger interface {
	Freeze(ctx context.Context, userID int, amount int64) (*domain.Balance, error)
	Release(ctx context.Context, userID int, amount int64) (*domain.Balance, error)
	Unfreeze(ctx context.Context, userID int, amount int64) (*domain.Balance, error)
}

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

type Service struct {
	repo      Repo
	ledger    Ledger
	txManager pg.TXManager
	now       func() time.Time
}

func New(repo Repo, ledger Ledger, txManager pg.TXManager) *Service {
	return &Service{
		repo:      repo,
		ledger:    ledger,
		txManager: txManager,
		now:       time.Now,
	}
}

// Apply reserves amount from the available balance and files a pending
// request. Both happen in one transaction.
func (s *Service) Apply(ctx context.Context, userID int, amount int64, qrImageURL string) (*domain.WithdrawRecord, error) {
	if amount <= 0 {
		return nil, fmt.Errorf("%w: amount must be positive", domain.ErrValidation)
	}
	if strings.TrimSpace(qrImageURL) == "" {
		return nil, fmt.Errorf("%w: payout qr image is required", domain.ErrValidation)
	}

	var record *domain.WithdrawRecord
	err := s.txManager.Begin(ctx, func(ctx context.Context) error {
		if _, err := s.ledger.Freeze(ctx, userID, amount); err != nil {
			return err
		}
		created, err := s.repo.Create(ctx, &domain.WithdrawRecord{
			UserID:     userID,
			Amount:     amount,
			QRImageURL: qrImageURL,
			Status:     domain.WithdrawPending,
		})
		if err != nil {
			return err
		}
		record = created
		return nil
	})
	if err != nil {
		zap.L().Warn("withdraw apply failed", zap.Int("user_id", userID), zap.Int64("amount", amount), zap.Error(err))
		return nil, err
	}

	metrics.Withdrawals.WithLabelValues("apply").Inc()
	zap.L().Info("withdraw applied", zap.Int("user_id", userID), zap.Int("record_id", record.ID), zap.Int64("amount", amount))
	return record, nil
}

// Handle settles a pending request. Approval pays the frozen amount out,
// rejection returns it to the available balance.
func (s *Service) Handle(ctx context.Context, id, decision int, reason string, adminID int) (*domain.WithdrawRecord, error) {
	if decision != domain.WithdrawApproved && decision != domain.WithdrawRejected {
		return nil, fmt.Errorf("%w: unknown decision %d", domain.ErrValidation, decision)
	}

	var record *domain.WithdrawRecord
	err := s.txManager.Begin(ctx, func(ctx context.Context) error {
		found, err := s.repo.FindByIDForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if found == nil {
			return domain.ErrRecordNotFound
		}
		if found.Status != domain.WithdrawPending {
			return domain.ErrAlreadyHandled
		}

		if decision == domain.WithdrawApproved {
			_, err = s.ledger.Release(ctx, found.UserID, found.Amount)
		} else {
			_, err = s.ledger.Unfreeze(ctx, found.UserID, found.Amount)
		}
		if err != nil {
			return err
		}

		handledAt := s.now()
		found.Status = decision
		found.HandledAt = &handledAt
		found.AdminID = adminID
		if decision == domain.WithdrawRejected {
			found.RejectReason = reason
		}
		if err := s.repo.UpdateStatus(ctx, found); err != nil {
			return err
		}
		record = found
		return nil
	})
	if err != nil {
		zap.L().Warn("withdraw handle failed", zap.Int("record_id", id), zap.Int("decision", decision), zap.Error(err))
		return nil, err
	}

	action := "approve"
	if decision == domain.WithdrawRejected {
		action = "reject"
	}
	metrics.Withdrawals.WithLabelValues(action).Inc()
	zap.L().Info("withdraw handled", zap.Int("record_id", id), zap.String("action", action), zap.Int("admin_id", adminID))
	return record, nil
}

// List pages through all requests, pending ones first.
func (s *Service) List(ctx context.Context, filter domain.WithdrawFilter) ([]domain.WithdrawRecord, int, error) {
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.PageSize < 1 {
		filter.PageSize = defaultPageSize
	}
	if filter.PageSize > maxPageSize {
		filter.PageSize = maxPageSize
	}
	if filter.Status != nil && (*filter.Status < domain.WithdrawPending || *filter.Status > domain.WithdrawRejected) {
		return nil, 0, fmt.Errorf("%w: unknown status %d", domain.ErrValidation, *filter.Status)
	}

	records, total, err := s.repo.List(ctx, filter)
	if err != nil {
		zap.L().Error("failed to list withdraw records", zap.Error(err))
		return nil, 0, err
	}
	return records, total, nil
}

func (s *Service) GetUserRecords(ctx context.Context, userID int) ([]domain.WithdrawRecord, error) {
	records, err := s.repo.FindByUserID(ctx, userID)
	if err != nil {
		zap.L().Error("failed to get withdraw records", zap.Int("user_id", userID), zap.Error(err))
		return nil, err
	}
	return records, nil
}

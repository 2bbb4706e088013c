package memberservice

import (
	"context"
	"crypto/rand"
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/GlebRadaev/memberhub/internal/domain"
	"github.com/GlebRadaev/memberhub/internal/metrics"
	"github.com/GlebRadaev/memberhub/internal/pg"
	"go.uber.org/zap"
)

//go:generate mockgen -source=memberservice.go -destination=mock_memberservice.go -package=memberservice

type UserRepo interface {
	SetRole(ctx context.Context, userID, role int) error
}

type ProductRepo interface {
	FindByID(ctx context.Context, id int) (*domain.Product, error)
	FindByCode(ctx context.Context, code string) (*domain.Product, error)
}

type MemberRepo interface {
	FindByUserID(ctx context.Context, userID int) (*domain.Membership, error)
	FindByUserIDForUpdate(ctx context.Context, userID int) (*domain.Membership, error)
	Activate(ctx context.Context, membership *domain.Membership) (*domain.Membership, error)
}

type CodeRepo interface {
	FindForUpdate(ctx context.Context, code string) (*domain.ActivationCode, error)
	MarkUsed(ctx context.Context, codeID, userID int, at time.Time) (bool, error)
	CreateBatch(ctx context.Context, productID int, codes []string) ([]string, error)
	Revoke(ctx context.Context, code string) (bool, error)
}

const (
	MaxCodesPerBatch = 1000

	codeCharset       = "ABCDEFGHIJKLMNOPQRSTUVWXYZ23456789"
	codeGroupLen      = 4
	maxGenerateRounds = 5
)

type Service struct {
	users     UserRepo
	products  ProductRepo
	members   MemberRepo
	codes     CodeRepo
	txManager pg.TXManager
	now       func() time.Time
	random    func(n int) (string, error)
}

func New(users UserRepo, products ProductRepo, members MemberRepo, codes CodeRepo, txManager pg.TXManager) *Service {
	return &Service{
		users:     users,
		products:  products,
		members:   members,
		codes:     codes,
		txManager: txManager,
		now:       time.Now,
		random:    randomString,
	}
}

type promotion struct {
	UserID        int
	Level         int
	ProductID     int
	OpenType      string
	OriginOrderNo string
}

// ActivateByCode redeems a single-use code. The code row lock serializes
// concurrent redemptions of the same code.
func (s *Service) ActivateByCode(ctx context.Context, userID int, code string) (*domain.Membership, error) {
	code = strings.ToUpper(strings.TrimSpace(code))
	if code == "" {
		return nil, fmt.Errorf("%w: code is required", domain.ErrValidation)
	}

	var membership *domain.Membership
	err := s.txManager.Begin(ctx, func(ctx context.Context) error {
		ac, err := s.codes.FindForUpdate(ctx, code)
		if err != nil {
			return err
		}
		if ac == nil {
			return domain.ErrCodeNotFound
		}
		switch ac.Status {
		case domain.CodeUsed:
			return domain.ErrCodeUsed
		case domain.CodeRevoked:
			return domain.ErrCodeInactive
		}

		product, err := s.products.FindByID(ctx, ac.ProductID)
		if err != nil {
			return err
		}
		if product == nil {
			return domain.ErrProductNotFound
		}

		membership, err = s.promoteMembership(ctx, promotion{
			UserID:    userID,
			Level:     product.Level,
			ProductID: product.ID,
			OpenType:  domain.OpenTypeCode,
		})
		if err != nil {
			return err
		}

		marked, err := s.codes.MarkUsed(ctx, ac.ID, userID, *membership.ActivatedAt)
		if err != nil {
			return err
		}
		if !marked {
			return domain.ErrCodeUsed
		}
		return nil
	})
	if err != nil {
		zap.L().Warn("code activation failed", zap.Int("user_id", userID), zap.Error(err))
		return nil, err
	}

	metrics.Activations.WithLabelValues(domain.OpenTypeCode).Inc()
	zap.L().Info("membership activated by code", zap.Int("user_id", userID), zap.Int("level", membership.Level))
	return membership, nil
}

// ActivateByPayment joins the caller's transaction when there is one, so
// the settlement and the activation commit or roll back together.
func (s *Service) ActivateByPayment(ctx context.Context, order *domain.Order) (*domain.Membership, error) {
	var membership *domain.Membership
	err := s.txManager.Begin(ctx, func(ctx context.Context) error {
		product, err := s.products.FindByID(ctx, order.ProductID)
		if err != nil {
			return err
		}
		if product == nil {
			return domain.ErrProductNotFound
		}
		membership, err = s.promoteMembership(ctx, promotion{
			UserID:        order.UserID,
			Level:         product.Level,
			ProductID:     product.ID,
			OpenType:      domain.OpenTypePay,
			OriginOrderNo: order.OrderNo,
		})
		return err
	})
	if err != nil {
		return nil, err
	}
	return membership, nil
}

func (s *Service) promoteMembership(ctx context.Context, p promotion) (*domain.Membership, error) {
	current, err := s.members.FindByUserIDForUpdate(ctx, p.UserID)
	if err != nil {
		return nil, err
	}
	if current.Active() {
		return nil, domain.ErrAlreadyMember
	}

	activatedAt := s.now()
	membership, err := s.members.Activate(ctx, &domain.Membership{
		UserID:        p.UserID,
		Level:         p.Level,
		OpenType:      p.OpenType,
		ProductID:     p.ProductID,
		OriginOrderNo: p.OriginOrderNo,
		ActivatedAt:   &activatedAt,
	})
	if err != nil {
		return nil, err
	}
	if membership == nil {
		return nil, domain.ErrAlreadyMember
	}

	if err := s.users.SetRole(ctx, p.UserID, domain.RoleMember); err != nil {
		return nil, err
	}
	return membership, nil
}

// GetMembership reads a user without a membership row as inactive.
func (s *Service) GetMembership(ctx context.Context, userID int) (*domain.Membership, error) {
	membership, err := s.members.FindByUserID(ctx, userID)
	if err != nil {
		zap.L().Error("failed to get membership", zap.Int("user_id", userID), zap.Error(err))
		return nil, err
	}
	if membership == nil {
		return &domain.Membership{UserID: userID, Status: domain.MembershipInactive}, nil
	}
	return membership, nil
}

// GenerateCodes issues count fresh codes for the product. Collisions with
// existing codes are regenerated until the batch is full.
func (s *Service) GenerateCodes(ctx context.Context, productCode string, count int) ([]string, error) {
	if count < 1 || count > MaxCodesPerBatch {
		return nil, fmt.Errorf("%w: count must be between 1 and %d", domain.ErrValidation, MaxCodesPerBatch)
	}
	product, err := s.products.FindByCode(ctx, strings.ToUpper(strings.TrimSpace(productCode)))
	if err != nil {
		return nil, err
	}
	if product == nil || !product.Enabled {
		return nil, domain.ErrProductNotFound
	}

	prefix := strings.ToUpper(product.Code) + "-" + s.now().Format(time.DateOnly) + "-"
	issued := make([]string, 0, count)
	seen := make(map[string]struct{}, count)

	for round := 0; round < maxGenerateRounds && len(issued) < count; round++ {
		batch := make([]string, 0, count-len(issued))
		for len(batch) < count-len(issued) {
			code, err := s.newCode(prefix)
			if err != nil {
				return nil, err
			}
			if _, dup := seen[code]; dup {
				continue
			}
			seen[code] = struct{}{}
			batch = append(batch, code)
		}

		created, err := s.codes.CreateBatch(ctx, product.ID, batch)
		if err != nil {
			return nil, err
		}
		issued = append(issued, created...)
	}

	if len(issued) < count {
		zap.L().Error("activation code space exhausted", zap.String("product", product.Code), zap.Int("issued", len(issued)))
		return issued, fmt.Errorf("%w: issued %d of %d codes", domain.ErrInternal, len(issued), count)
	}
	zap.L().Info("activation codes generated", zap.String("product", product.Code), zap.Int("count", len(issued)))
	return issued, nil
}

// RevokeCode retires an UNUSED code.
func (s *Service) RevokeCode(ctx context.Context, code string) error {
	code = strings.ToUpper(strings.TrimSpace(code))
	revoked, err := s.codes.Revoke(ctx, code)
	if err != nil {
		return err
	}
	if !revoked {
		return domain.ErrCodeInactive
	}
	zap.L().Info("activation code revoked", zap.String("code", code))
	return nil
}

func (s *Service) newCode(prefix string) (string, error) {
	body, err := s.random(codeGroupLen * 2)
	if err != nil {
		return "", fmt.Errorf("generate code: %w", err)
	}
	return prefix + body[:codeGroupLen] + "-" + body[codeGroupLen:], nil
}

func randomString(n int) (string, error) {
	limit := big.NewInt(int64(len(codeCharset)))
	buf := make([]byte, n)
	for i := range buf {
		idx, err := rand.Int(rand.Reader, limit)
		if err != nil {
			return "", err
		}
		buf[i] = codeCharset[idx.Int64()]
	}
	return string(buf), nil
}

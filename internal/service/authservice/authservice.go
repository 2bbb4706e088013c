package authservice

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/GlebRadaev/memberhub/internal/domain"
	"github.com/GlebRadaev/memberhub/pkg/auth"
	"github.com/GlebRadaev/memberhub/pkg/clients"
	"go.uber.org/zap"
)

//go:generate mockgen -source=authservice.go -destination=mock_authservice.go -package=authservice

type UserRepo interface {
	FindOrCreate(ctx context.Context, openID, phone string) (*domain.User, error)
	TouchLastLogin(ctx context.Context, userID int, at time.Time) error
}

type AdminRepo interface {
	FindByLogin(ctx context.Context, login string) (*domain.Admin, error)
	CreateIfAbsent(ctx context.Context, login, passwordHash string) (bool, error)
}

type Ledger interface {
	EnsureBalance(ctx context.Context, userID int) (*domain.Balance, error)
}

type Sessions interface {
	Code2Session(ctx context.Context, code string) (*clients.Session, error)
}

const (
	userTokenTTL  = 30 * 24 * time.Hour
	adminTokenTTL = 12 * time.Hour
)

type LoginResult struct {
	Token   string
	User    *domain.User
	Balance *domain.Balance
}

type Service struct {
	userRepo    UserRepo
	adminRepo   AdminRepo
	ledger      Ledger
	sessions    Sessions
	hashService auth.HashServiceInterface
	jwtService  auth.JWTServiceInterface
	now         func() time.Time
}

func New(userRepo UserRepo, adminRepo AdminRepo, ledger Ledger, sessions Sessions, hashService auth.HashServiceInterface, jwtService auth.JWTServiceInterface) *Service {
	return &Service{
		userRepo:    userRepo,
		adminRepo:   adminRepo,
		ledger:      ledger,
		sessions:    sessions,
		hashService: hashService,
		jwtService:  jwtService,
		now:         time.Now,
	}
}

// Login exchanges a mini-program login code for a user token. First logins
// register the user; every login makes sure the balance row exists.
func (s *Service) Login(ctx context.Context, code, phone string) (*LoginResult, error) {
	if strings.TrimSpace(code) == "" {
		return nil, fmt.Errorf("%w: login code is required", domain.ErrValidation)
	}

	session, err := s.sessions.Code2Session(ctx, code)
	if err != nil {
		zap.L().Warn("can't resolve wechat session", zap.Error(err))
		if errors.Is(err, clients.ErrSessionRejected) {
			return nil, fmt.Errorf("%w: %v", domain.ErrInvalidCredentials, err)
		}
		return nil, err
	}

	user, err := s.userRepo.FindOrCreate(ctx, session.OpenID, phone)
	if err != nil {
		zap.L().Error("can't find or create user", zap.Error(err))
		return nil, err
	}
	if !user.Enabled {
		zap.L().Info("disabled user tried to log in", zap.Int("user_id", user.ID))
		return nil, domain.ErrInvalidCredentials
	}

	now := s.now()
	if err := s.userRepo.TouchLastLogin(ctx, user.ID, now); err != nil {
		return nil, err
	}
	user.LastLoginAt = &now

	balance, err := s.ledger.EnsureBalance(ctx, user.ID)
	if err != nil {
		return nil, err
	}

	token, err := s.jwtService.GenerateJWT(user.ID, auth.RoleUser, now.Add(userTokenTTL))
	if err != nil {
		zap.L().Error("can't generate token: ", zap.Error(err))
		return nil, err
	}

	zap.L().Info("user logged in", zap.Int("user_id", user.ID))
	return &LoginResult{Token: token, User: user, Balance: balance}, nil
}

func (s *Service) AdminLogin(ctx context.Context, login, password string) (string, error) {
	admin, err := s.adminRepo.FindByLogin(ctx, login)
	if err != nil {
		return "", err
	}
	if admin == nil || !s.hashService.ComparePassword(admin.PasswordHash, password) {
		zap.L().Info("invalid admin credentials", zap.String("login", login))
		return "", domain.ErrInvalidCredentials
	}

	token, err := s.jwtService.GenerateJWT(admin.ID, auth.RoleAdmin, s.now().Add(adminTokenTTL))
	if err != nil {
		zap.L().Error("can't generate token: ", zap.Error(err))
		return "", err
	}
	zap.L().Info("admin logged in", zap.String("login", login))
	return token, nil
}

// EnsureAdmin creates the bootstrap admin account unless it already exists.
// An empty login disables bootstrapping.
func (s *Service) EnsureAdmin(ctx context.Context, login, password string) error {
	if login == "" {
		return nil
	}
	hash, err := s.hashService.HashPassword(password)
	if err != nil {
		return fmt.Errorf("hash admin password: %w", err)
	}
	created, err := s.adminRepo.CreateIfAbsent(ctx, login, hash)
	if err != nil {
		return fmt.Errorf("create admin: %w", err)
	}
	if created {
		zap.L().Info("bootstrap admin created", zap.String("login", login))
	}
	return nil
}

package dto

import (
	"time"

	"github.com/GlebRadaev/memberhub/internal/domain"
)

type LoginRequestDTO struct {
	Code  string `json:"code" validate:"required,max=128" example:"0a1b2c3d"`
	Phone string `json:"phone" validate:"omitempty,max=20" example:"13800000000"`
}

type UserDTO struct {
	ID             int        `json:"id" example:"7"`
	Nickname       string     `json:"nickname" example:"wei"`
	Phone          string     `json:"phone" example:"13800000000"`
	Role           int        `json:"role" example:"1"`
	IsPromoter     bool       `json:"isPromoter" example:"false"`
	CommissionRate string     `json:"commissionRate" example:"0.1"`
	LastLoginAt    *time.Time `json:"lastLoginAt,omitempty" example:"2024-05-01T12:00:00Z"`
}

type LoginResponseDTO struct {
	Token   string     `json:"token"`
	User    UserDTO    `json:"user"`
	Balance BalanceDTO `json:"balance"`
}

type AdminLoginRequestDTO struct {
	Login    string `json:"login" validate:"required,max=50" example:"root"`
	Password string `json:"password" validate:"required" example:"secret"`
}

type TokenResponseDTO struct {
	Token string `json:"token"`
}

func NewUser(u *domain.User) UserDTO {
	return UserDTO{
		ID:             u.ID,
		Nickname:       u.Nickname,
		Phone:          u.Phone,
		Role:           u.Role,
		IsPromoter:     u.IsPromoter,
		CommissionRate: u.CommissionRate.String(),
		LastLoginAt:    u.LastLoginAt,
	}
}

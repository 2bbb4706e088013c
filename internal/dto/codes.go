package dto

import (
	"time"

	"github.com/GlebRadaev/memberhub/internal/domain"
)

type ActivateCodeRequestDTO struct {
	Code string `json:"code" validate:"required,max=64" example:"VIP-2024-05-01-AB3D-9KQ2"`
}

type MembershipResponseDTO struct {
	Level         int        `json:"level" example:"1"`
	Status        int        `json:"status" example:"1"`
	OpenType      string     `json:"openType,omitempty" example:"code"`
	ProductID     int        `json:"productId,omitempty" example:"1"`
	OriginOrderNo string     `json:"originOrderNo,omitempty" example:"AF20240501000042"`
	ActivatedAt   *time.Time `json:"activatedAt,omitempty" example:"2024-05-01T12:00:00Z"`
}

type GenerateCodesRequestDTO struct {
	ProductCode string `json:"productCode" validate:"required,max=32" example:"vip"`
	Count       int    `json:"count" validate:"required,min=1,max=1000" example:"10"`
}

type GenerateCodesResponseDTO struct {
	Codes []string `json:"codes"`
}

func NewMembership(m *domain.Membership) MembershipResponseDTO {
	return MembershipResponseDTO{
		Level:         m.Level,
		Status:        m.Status,
		OpenType:      m.OpenType,
		ProductID:     m.ProductID,
		OriginOrderNo: m.OriginOrderNo,
		ActivatedAt:   m.ActivatedAt,
	}
}

package dto

import (
	"github.com/GlebRadaev/memberhub/internal/domain"
	"github.com/shopspring/decimal"
)

type HandleWithdrawRequestDTO struct {
	Status       int    `json:"status" validate:"oneof=1 2" example:"2"`
	RejectReason string `json:"rejectReason" validate:"max=255" example:"blurry qr code"`
}

type WithdrawListResponseDTO struct {
	Items []WithdrawRecordDTO `json:"items"`
	Total int                 `json:"total" example:"1"`
}

// SetPromoterRequestDTO carries the rate as a JSON string or number, e.g.
// "0.1" for ten percent.
type SetPromoterRequestDTO struct {
	IsPromoter     *bool           `json:"isPromoter" validate:"required" example:"true"`
	CommissionRate decimal.Decimal `json:"commissionRate" swaggertype:"string" example:"0.1"`
}

type PromoterDTO struct {
	UserID         int    `json:"userId" example:"42"`
	IsPromoter     bool   `json:"isPromoter" example:"true"`
	CommissionRate string `json:"commissionRate" example:"0.1"`
	Link           string `json:"link" example:"pages/index/index?key=Ab3dEf9h&promoterId=42"`
}

func NewPromoter(p *domain.Promoter) PromoterDTO {
	return PromoterDTO{
		UserID:         p.UserID,
		IsPromoter:     p.IsPromoter,
		CommissionRate: p.CommissionRate.String(),
		Link:           p.Link,
	}
}

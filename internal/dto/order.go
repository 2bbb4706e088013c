package dto

import (
	"time"

	"github.com/GlebRadaev/memberhub/internal/domain"
)

type CreatePayOrderRequestDTO struct {
	ProductID  int `json:"productId" validate:"required,gt=0" example:"1"`
	PromoterID int `json:"promoterId" validate:"gte=-1" example:"42"`
}

type PayCallbackResponseDTO struct {
	Code    int    `json:"code" example:"200"`
	Message string `json:"message" example:"SUCCESS"`
}

type OrderResponseDTO struct {
	OrderNo       string     `json:"orderNo" example:"AF20240501000042"`
	ProductID     int        `json:"productId" example:"1"`
	ProductName   string     `json:"productName" example:"Annual membership"`
	PayAmount     int64      `json:"payAmount" example:"9900"`
	PayStatus     string     `json:"payStatus" example:"SUCCESS"`
	PromoterID    int        `json:"promoterId" example:"42"`
	TransactionID string     `json:"transactionId,omitempty" example:"4200001234202405011234567890"`
	PayTime       *time.Time `json:"payTime,omitempty" example:"2024-05-01T12:00:00Z"`
	CreatedAt     time.Time  `json:"createdAt" example:"2024-05-01T11:59:00Z"`
}

func NewOrder(o *domain.Order) OrderResponseDTO {
	return OrderResponseDTO{
		OrderNo:       o.OrderNo,
		ProductID:     o.ProductID,
		ProductName:   o.ProductName,
		PayAmount:     o.PayAmount,
		PayStatus:     o.PayStatus,
		PromoterID:    o.PromoterID,
		TransactionID: o.TransactionID,
		PayTime:       o.PayTime,
		CreatedAt:     o.CreatedAt,
	}
}

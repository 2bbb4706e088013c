package dto

import (
	"time"

	"github.com/GlebRadaev/memberhub/internal/domain"
)

// Amounts are in fen.
type BalanceDTO struct {
	Available      int64 `json:"available" example:"990"`
	Frozen         int64 `json:"frozen" example:"500"`
	WithdrawnTotal int64 `json:"withdrawnTotal" example:"0"`
}

type WithdrawRequestDTO struct {
	Amount     int64  `json:"amount" validate:"required,gt=0" example:"500"`
	QRImageURL string `json:"qrImageUrl" validate:"required,url,max=512" example:"https://cdn.example.com/qr/7.png"`
}

type WithdrawRecordDTO struct {
	ID           int        `json:"id" example:"3"`
	UserID       int        `json:"userId" example:"7"`
	Amount       int64      `json:"amount" example:"500"`
	QRImageURL   string     `json:"qrImageUrl" example:"https://cdn.example.com/qr/7.png"`
	Status       int        `json:"status" example:"0"`
	HandledAt    *time.Time `json:"handledAt,omitempty"`
	RejectReason string     `json:"rejectReason,omitempty" example:"blurry qr code"`
	AdminID      int        `json:"adminId,omitempty" example:"1"`
	CreatedAt    time.Time  `json:"createdAt" example:"2024-05-01T12:00:00Z"`
}

type PromotionRecordDTO struct {
	ID               int       `json:"id" example:"1"`
	InvitedUserID    int       `json:"invitedUserId" example:"7"`
	OrderNo          string    `json:"orderNo" example:"AF20240501000042"`
	CommissionAmount int64     `json:"commissionAmount" example:"990"`
	CommissionRate   string    `json:"commissionRate" example:"0.1"`
	PurchaseTime     time.Time `json:"purchaseTime" example:"2024-05-01T12:00:00Z"`
}

func NewBalance(b *domain.Balance) BalanceDTO {
	if b == nil {
		return BalanceDTO{}
	}
	return BalanceDTO{
		Available:      b.Available,
		Frozen:         b.Frozen,
		WithdrawnTotal: b.WithdrawnTotal,
	}
}

func NewWithdrawRecord(r *domain.WithdrawRecord) WithdrawRecordDTO {
	return WithdrawRecordDTO{
		ID:           r.ID,
		UserID:       r.UserID,
		Amount:       r.Amount,
		QRImageURL:   r.QRImageURL,
		Status:       r.Status,
		HandledAt:    r.HandledAt,
		RejectReason: r.RejectReason,
		AdminID:      r.AdminID,
		CreatedAt:    r.CreatedAt,
	}
}

func NewWithdrawRecords(records []domain.WithdrawRecord) []WithdrawRecordDTO {
	response := make([]WithdrawRecordDTO, len(records))
	for i := range records {
		response[i] = NewWithdrawRecord(&records[i])
	}
	return response
}

func NewPromotionRecords(records []domain.PromotionRecord) []PromotionRecordDTO {
	response := make([]PromotionRecordDTO, len(records))
	for i, rec := range records {
		response[i] = PromotionRecordDTO{
			ID:               rec.ID,
			InvitedUserID:    rec.InvitedUserID,
			OrderNo:          rec.OrderNo,
			CommissionAmount: rec.CommissionAmount,
			CommissionRate:   rec.CommissionRate.String(),
			PurchaseTime:     rec.PurchaseTime,
		}
	}
	return response
}

package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// NoPromoter marks an order that was not placed through a referral link.
const NoPromoter = -1

const (
	RoleUser   = 0
	RoleMember = 1
)

const (
	PayStatusPending = "PENDING"
	PayStatusSuccess = "SUCCESS"
)

const (
	MembershipInactive = 0
	MembershipActive   = 1
)

const (
	OpenTypeCode = "code"
	OpenTypePay  = "pay"
)

const (
	CodeUnused  = 0
	CodeUsed    = 1
	CodeRevoked = 2
)

const (
	WithdrawPending  = 0
	WithdrawApproved = 1
	WithdrawRejected = 2
)

type User struct {
	ID             int             `db:"id"`
	OpenID         string          `db:"openid"`
	Phone          string          `db:"phone"`
	Nickname       string          `db:"nickname"`
	Role           int             `db:"role"`
	IsPromoter     bool            `db:"is_promoter"`
	CommissionRate decimal.Decimal `db:"commission_rate"`
	Enabled        bool            `db:"enabled"`
	CreatedAt      time.Time       `db:"created_at"`
	LastLoginAt    *time.Time      `db:"last_login_at"`
}

// Promoter is the referral side of a user as an admin manages it.
type Promoter struct {
	UserID         int             `db:"id"`
	IsPromoter     bool            `db:"is_promoter"`
	CommissionRate decimal.Decimal `db:"commission_rate"`
	Link           string          `db:"promotion_link"`
}

type Admin struct {
	ID           int       `db:"id"`
	Login        string    `db:"login"`
	PasswordHash string    `db:"password_hash"`
	CreatedAt    time.Time `db:"created_at"`
}

type Product struct {
	ID      int    `db:"id"`
	Code    string `db:"code"`
	Name    string `db:"name"`
	Price   int64  `db:"price"`
	Level   int    `db:"level"`
	Enabled bool   `db:"enabled"`
}

// Order amounts are in minor units (fen).
type Order struct {
	ID              int        `db:"id"`
	OrderNo         string     `db:"order_no"`
	UserID          int        `db:"user_id"`
	ProductID       int        `db:"product_id"`
	ProductName     string     `db:"product_name"`
	PayAmount       int64      `db:"pay_amount"`
	PayStatus       string     `db:"pay_status"`
	PromoterID      int        `db:"promoter_id"`
	PayType         string     `db:"pay_type"`
	MchID           string     `db:"mchid"`
	TransactionID   string     `db:"transaction_id"`
	PayTime         *time.Time `db:"pay_time"`
	CallbackPayload string     `db:"callback_payload"`
	CreatedAt       time.Time  `db:"created_at"`
}

func (o *Order) Paid() bool {
	return o.PayStatus == PayStatusSuccess
}

func (o *Order) HasPromoter() bool {
	return o.PromoterID != NoPromoter
}

type Membership struct {
	ID            int        `db:"id"`
	UserID        int        `db:"user_id"`
	Level         int        `db:"level"`
	Status        int        `db:"status"`
	OpenType      string     `db:"open_type"`
	ProductID     int        `db:"product_id"`
	OriginOrderNo string     `db:"origin_order_no"`
	ActivatedAt   *time.Time `db:"activated_at"`
}

func (m *Membership) Active() bool {
	return m != nil && m.Status == MembershipActive
}

type ActivationCode struct {
	ID          int        `db:"id"`
	Code        string     `db:"code"`
	ProductID   int        `db:"product_id"`
	Status      int        `db:"status"`
	UserID      *int       `db:"user_id"`
	ActivatedAt *time.Time `db:"activated_at"`
	CreatedAt   time.Time  `db:"created_at"`
}

type Balance struct {
	ID             int   `db:"id"`
	UserID         int   `db:"user_id"`
	Available      int64 `db:"available"`
	Frozen         int64 `db:"frozen"`
	WithdrawnTotal int64 `db:"withdrawn_total"`
}

type WithdrawRecord struct {
	ID           int        `db:"id"`
	UserID       int        `db:"user_id"`
	Amount       int64      `db:"amount"`
	QRImageURL   string     `db:"qr_image_url"`
	Status       int        `db:"status"`
	HandledAt    *time.Time `db:"handled_at"`
	RejectReason string     `db:"reject_reason"`
	AdminID      int        `db:"admin_id"`
	CreatedAt    time.Time  `db:"created_at"`
}

type WithdrawFilter struct {
	UserID   *int
	Status   *int
	Page     int
	PageSize int
}

type PromotionRecord struct {
	ID               int             `db:"id"`
	PromoterID       int             `db:"promoter_id"`
	InvitedUserID    int             `db:"invited_user_id"`
	OrderNo          string          `db:"order_no"`
	CommissionAmount int64           `db:"commission_amount"`
	CommissionRate   decimal.Decimal `db:"commission_rate"`
	PurchaseTime     time.Time       `db:"purchase_time"`
}

// PaymentNotice is a verified, decoded gateway transaction.
type PaymentNotice struct {
	OutTradeNo    string
	TradeState    string
	TradeType     string
	MchID         string
	TransactionID string
	Total         int64
	SuccessTime   time.Time
	PayerOpenID   string
	Raw           string
}

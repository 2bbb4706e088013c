package payment

import (
	"context"
	"errors"

	"github.com/GlebRadaev/memberhub/internal/domain"
)

//go:generate mockgen -source=payment.go -destination=mock_payment.go -package=payment

// ErrIgnoredEvent marks an authentic notification that carries no payment
// success, such as a refund event.
var ErrIgnoredEvent = errors.New("notification event ignored")

// ErrTradeNotFound is returned by QueryOrder while the gateway has no trade
// for the order, which is normal until the user opens the payment sheet.
var ErrTradeNotFound = errors.New("trade not found at gateway")

type Gateway interface {
	Prepay(ctx context.Context, req PrepayRequest) (*PrepaySignature, error)
	Decode(ctx context.Context, n Notification) (*domain.PaymentNotice, error)
	QueryOrder(ctx context.Context, orderNo string) (*domain.PaymentNotice, error)
}

type PrepayRequest struct {
	OrderNo     string
	Description string
	Amount      int64
	OpenID      string
	ClientIP    string
}

// PrepaySignature is handed to the mini-program to open the payment sheet.
type PrepaySignature struct {
	AppID     string `json:"appId"`
	TimeStamp string `json:"timeStamp"`
	NonceStr  string `json:"nonceStr"`
	Package   string `json:"package"`
	SignType  string `json:"signType"`
	PaySign   string `json:"paySign"`
}

// Notification is a raw webhook delivery.
type Notification struct {
	Timestamp string
	Nonce     string
	Signature string
	Serial    string
	Body      []byte
}

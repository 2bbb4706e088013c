package pay

import (
	"context"
	"encoding/json"
	"io"
	"net"
	"net/http"

	"github.com/GlebRadaev/memberhub/internal/dto"
	"github.com/GlebRadaev/memberhub/internal/payment"
	"github.com/GlebRadaev/memberhub/pkg/auth"
	"github.com/GlebRadaev/memberhub/pkg/utils"
	"github.com/GlebRadaev/memberhub/pkg/validate"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

//go:generate mockgen -source=pay.go -destination=mock_pay.go -package=pay

const maxNotificationBytes = 1 << 20

type Service interface {
	Pay(ctx context.Context, productID, userID, promoterID int, clientIP string) (*payment.PrepaySignature, error)
	Repay(ctx context.Context, userID int, orderNo, clientIP string) (*payment.PrepaySignature, error)
	HandleNotification(ctx context.Context, n payment.Notification) error
}

type PayHandler struct {
	payService Service
}

func New(payService Service) *PayHandler {
	return &PayHandler{
		payService: payService,
	}
}

// CreateOrder godoc
//
//	@Summary		Buy a membership product
//	@Description	Create a pending order and return the JSAPI parameters for wx.requestPayment.
//	@Tags			Pay
//	@Security		BearerAuth
//	@Accept			json
//	@Produce		json
//	@Param			request	body		dto.CreatePayOrderRequestDTO	true	"Product and optional promoter"
//	@Success		200		{object}	payment.PrepaySignature
//	@Failure		400		{object}	utils.Response	"Invalid request body"
//	@Failure		401		{object}	utils.Response	"User not authorized"
//	@Failure		404		{object}	utils.Response	"Product not found"
//	@Failure		409		{object}	utils.Response	"Already a member"
//	@Failure		502		{object}	utils.Response	"Payment gateway error"
//	@Router			/api/pay/orders [post]
func (h *PayHandler) CreateOrder(w http.ResponseWriter, r *http.Request) {
	userID := r.Context().Value(auth.UserIDKey).(int)

	var req dto.CreatePayOrderRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := validate.Struct(req); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	signature, err := h.payService.Pay(r.Context(), req.ProductID, userID, req.PromoterID, clientIP(r))
	if err != nil {
		utils.RespondWithDomainError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, signature)
}

// Repay godoc
//
//	@Summary		Retry payment of a pending order
//	@Tags			Pay
//	@Security		BearerAuth
//	@Produce		json
//	@Param			orderNo	path		string	true	"Order number"
//	@Success		200		{object}	payment.PrepaySignature
//	@Failure		401		{object}	utils.Response	"User not authorized"
//	@Failure		404		{object}	utils.Response	"Order not found"
//	@Failure		409		{object}	utils.Response	"Order is not pending or user already a member"
//	@Failure		502		{object}	utils.Response	"Payment gateway error"
//	@Router			/api/pay/orders/{orderNo}/repay [post]
func (h *PayHandler) Repay(w http.ResponseWriter, r *http.Request) {
	userID := r.Context().Value(auth.UserIDKey).(int)

	signature, err := h.payService.Repay(r.Context(), userID, chi.URLParam(r, "orderNo"), clientIP(r))
	if err != nil {
		utils.RespondWithDomainError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, signature)
}

// Callback godoc
//
//	@Summary		Payment notification webhook
//	@Description	Always acknowledges so the gateway stops redelivering; failures are logged and reconciled later.
//	@Tags			Pay
//	@Accept			json
//	@Produce		json
//	@Success		200	{object}	dto.PayCallbackResponseDTO
//	@Router			/api/pay/callback [post]
func (h *PayHandler) Callback(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxNotificationBytes))
	if err != nil {
		zap.L().Warn("can't read payment notification", zap.Error(err))
	} else {
		err = h.payService.HandleNotification(r.Context(), payment.Notification{
			Timestamp: r.Header.Get("Wechatpay-Timestamp"),
			Nonce:     r.Header.Get("Wechatpay-Nonce"),
			Signature: r.Header.Get("Wechatpay-Signature"),
			Serial:    r.Header.Get("Wechatpay-Serial"),
			Body:      body,
		})
		if err != nil {
			zap.L().Warn("payment notification not applied", zap.Error(err))
		}
	}
	utils.RespondWithJSON(w, http.StatusOK, dto.PayCallbackResponseDTO{Code: http.StatusOK, Message: "SUCCESS"})
}

// clientIP reads RemoteAddr, which middleware.RealIP rewrites only when the
// server trusts its proxy.
func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

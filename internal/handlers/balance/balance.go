package balance

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/GlebRadaev/memberhub/internal/domain"
	"github.com/GlebRadaev/memberhub/internal/dto"
	"github.com/GlebRadaev/memberhub/pkg/auth"
	"github.com/GlebRadaev/memberhub/pkg/utils"
	"github.com/GlebRadaev/memberhub/pkg/validate"
)

//go:generate mockgen -source=balance.go -destination=mock_balance.go -package=balance

type Service interface {
	GetBalance(ctx context.Context, userID int) (*domain.Balance, error)
	GetPromotions(ctx context.Context, userID int) ([]domain.PromotionRecord, error)
}

type WithdrawService interface {
	Apply(ctx context.Context, userID int, amount int64, qrImageURL string) (*domain.WithdrawRecord, error)
	GetUserRecords(ctx context.Context, userID int) ([]domain.WithdrawRecord, error)
}

type BalanceHandler struct {
	balanceService  Service
	withdrawService WithdrawService
}

func New(balanceService Service, withdrawService WithdrawService) *BalanceHandler {
	return &BalanceHandler{
		balanceService:  balanceService,
		withdrawService: withdrawService,
	}
}

// GetBalance godoc
//
//	@Summary		Get current user balance
//	@Description	Available, frozen and withdrawn amounts in fen for the authenticated user.
//	@Tags			Balance
//	@Security		BearerAuth
//	@Produce		json
//	@Success		200	{object}	dto.BalanceDTO	"Current balance"
//	@Failure		401	{object}	utils.Response	"User not authorized"
//	@Failure		500	{object}	utils.Response	"Internal server error"
//	@Router			/api/balance [get]
func (h *BalanceHandler) GetBalance(w http.ResponseWriter, r *http.Request) {
	userID := r.Context().Value(auth.UserIDKey).(int)

	balance, err := h.balanceService.GetBalance(r.Context(), userID)
	if err != nil {
		utils.RespondWithDomainError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, dto.NewBalance(balance))
}

// Withdraw godoc
//
//	@Summary		Apply for a withdrawal
//	@Description	Freeze the amount and queue a withdraw record for admin review.
//	@Tags			Balance
//	@Security		BearerAuth
//	@Accept			json
//	@Produce		json
//	@Param			request	body		dto.WithdrawRequestDTO	true	"Withdrawal request payload"
//	@Success		200		{object}	dto.WithdrawRecordDTO
//	@Failure		400		{object}	utils.Response	"Invalid request body"
//	@Failure		401		{object}	utils.Response	"User not authorized"
//	@Failure		402		{object}	utils.Response	"Insufficient balance"
//	@Failure		500		{object}	utils.Response	"Internal server error"
//	@Router			/api/balance/withdraw [post]
func (h *BalanceHandler) Withdraw(w http.ResponseWriter, r *http.Request) {
	userID := r.Context().Value(auth.UserIDKey).(int)

	var req dto.WithdrawRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := validate.Struct(req); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	record, err := h.withdrawService.Apply(r.Context(), userID, req.Amount, req.QRImageURL)
	if err != nil {
		utils.RespondWithDomainError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, dto.NewWithdrawRecord(record))
}

// GetWithdrawals godoc
//
//	@Summary		Get withdrawals history
//	@Description	Withdraw records of the authenticated user, newest first.
//	@Tags			Balance
//	@Security		BearerAuth
//	@Produce		json
//	@Success		200	{array}		dto.WithdrawRecordDTO	"Withdrawals history"
//	@Success		204	{object}	utils.Response			"Withdrawals not found"
//	@Failure		401	{object}	utils.Response			"User not authorized"
//	@Failure		500	{object}	utils.Response			"Internal server error"
//	@Router			/api/balance/withdrawals [get]
func (h *BalanceHandler) GetWithdrawals(w http.ResponseWriter, r *http.Request) {
	userID := r.Context().Value(auth.UserIDKey).(int)

	records, err := h.withdrawService.GetUserRecords(r.Context(), userID)
	if err != nil {
		utils.RespondWithDomainError(w, err)
		return
	}
	if len(records) == 0 {
		utils.RespondWithJSON(w, http.StatusNoContent, nil)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, dto.NewWithdrawRecords(records))
}

// GetPromotions godoc
//
//	@Summary		Get commission history
//	@Description	Commissions credited to the authenticated promoter.
//	@Tags			Balance
//	@Security		BearerAuth
//	@Produce		json
//	@Success		200	{array}		dto.PromotionRecordDTO	"Commission records"
//	@Success		204	{object}	utils.Response			"No commissions"
//	@Failure		401	{object}	utils.Response			"User not authorized"
//	@Failure		500	{object}	utils.Response			"Internal server error"
//	@Router			/api/balance/promotions [get]
func (h *BalanceHandler) GetPromotions(w http.ResponseWriter, r *http.Request) {
	userID := r.Context().Value(auth.UserIDKey).(int)

	records, err := h.balanceService.GetPromotions(r.Context(), userID)
	if err != nil {
		utils.RespondWithDomainError(w, err)
		return
	}
	if len(records) == 0 {
		utils.RespondWithJSON(w, http.StatusNoContent, nil)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, dto.NewPromotionRecords(records))
}

package admin

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/GlebRadaev/memberhub/internal/domain"
	"github.com/GlebRadaev/memberhub/internal/dto"
	"github.com/GlebRadaev/memberhub/pkg/auth"
	"github.com/GlebRadaev/memberhub/pkg/utils"
	"github.com/GlebRadaev/memberhub/pkg/validate"
	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
)

//go:generate mockgen -source=admin.go -destination=mock_admin.go -package=admin

type WithdrawService interface {
	List(ctx context.Context, filter domain.WithdrawFilter) ([]domain.WithdrawRecord, int, error)
	Handle(ctx context.Context, id, decision int, reason string, adminID int) (*domain.WithdrawRecord, error)
}

type CodeService interface {
	GenerateCodes(ctx context.Context, productCode string, count int) ([]string, error)
	RevokeCode(ctx context.Context, code string) error
}

type PromoterService interface {
	SetPromoter(ctx context.Context, userID int, isPromoter bool, rate decimal.Decimal) (*domain.Promoter, error)
}

type AdminHandler struct {
	withdrawService WithdrawService
	codeService     CodeService
	promoterService PromoterService
}

func New(withdrawService WithdrawService, codeService CodeService, promoterService PromoterService) *AdminHandler {
	return &AdminHandler{
		withdrawService: withdrawService,
		codeService:     codeService,
		promoterService: promoterService,
	}
}

// ListWithdrawals godoc
//
//	@Summary		List withdraw records
//	@Tags			Admin
//	@Security		BearerAuth
//	@Produce		json
//	@Param			userId		query		int	false	"Filter by user"
//	@Param			status		query		int	false	"0 pending, 1 approved, 2 rejected"
//	@Param			page		query		int	false	"Page number, from 1"
//	@Param			pageSize	query		int	false	"Page size, at most 100"
//	@Success		200			{object}	dto.WithdrawListResponseDTO
//	@Failure		400			{object}	utils.Response	"Invalid query"
//	@Failure		401			{object}	utils.Response	"Not authorized"
//	@Failure		403			{object}	utils.Response	"Not an admin"
//	@Router			/api/admin/withdrawals [get]
func (h *AdminHandler) ListWithdrawals(w http.ResponseWriter, r *http.Request) {
	filter, err := parseFilter(r)
	if err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	records, total, err := h.withdrawService.List(r.Context(), filter)
	if err != nil {
		utils.RespondWithDomainError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, dto.WithdrawListResponseDTO{
		Items: dto.NewWithdrawRecords(records),
		Total: total,
	})
}

// HandleWithdrawal godoc
//
//	@Summary		Approve or reject a withdrawal
//	@Tags			Admin
//	@Security		BearerAuth
//	@Accept			json
//	@Produce		json
//	@Param			id		path		int								true	"Withdraw record id"
//	@Param			request	body		dto.HandleWithdrawRequestDTO	true	"Decision"
//	@Success		200		{object}	dto.WithdrawRecordDTO
//	@Failure		400		{object}	utils.Response	"Invalid request"
//	@Failure		404		{object}	utils.Response	"Record not found"
//	@Failure		409		{object}	utils.Response	"Already handled"
//	@Router			/api/admin/withdrawals/{id}/handle [post]
func (h *AdminHandler) HandleWithdrawal(w http.ResponseWriter, r *http.Request) {
	adminID := r.Context().Value(auth.UserIDKey).(int)

	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil || id <= 0 {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid withdraw record id")
		return
	}
	var req dto.HandleWithdrawRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := validate.Struct(req); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	record, err := h.withdrawService.Handle(r.Context(), id, req.Status, req.RejectReason, adminID)
	if err != nil {
		utils.RespondWithDomainError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, dto.NewWithdrawRecord(record))
}

// GenerateCodes godoc
//
//	@Summary		Issue activation codes
//	@Tags			Admin
//	@Security		BearerAuth
//	@Accept			json
//	@Produce		json
//	@Param			request	body		dto.GenerateCodesRequestDTO	true	"Product and count"
//	@Success		201		{object}	dto.GenerateCodesResponseDTO
//	@Failure		400		{object}	utils.Response	"Invalid request body"
//	@Failure		404		{object}	utils.Response	"Product not found or disabled"
//	@Failure		500		{object}	utils.Response	"Internal server error"
//	@Router			/api/admin/codes [post]
func (h *AdminHandler) GenerateCodes(w http.ResponseWriter, r *http.Request) {
	var req dto.GenerateCodesRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := validate.Struct(req); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	codes, err := h.codeService.GenerateCodes(r.Context(), req.ProductCode, req.Count)
	if err != nil {
		utils.RespondWithDomainError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusCreated, dto.GenerateCodesResponseDTO{Codes: codes})
}

// RevokeCode godoc
//
//	@Summary		Revoke an unused activation code
//	@Tags			Admin
//	@Security		BearerAuth
//	@Param			code	path	string	true	"Activation code"
//	@Success		204
//	@Failure		409	{object}	utils.Response	"Code already used or revoked"
//	@Router			/api/admin/codes/{code} [delete]
func (h *AdminHandler) RevokeCode(w http.ResponseWriter, r *http.Request) {
	if err := h.codeService.RevokeCode(r.Context(), chi.URLParam(r, "code")); err != nil {
		utils.RespondWithDomainError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusNoContent, nil)
}

// SetPromoter godoc
//
//	@Summary		Grant or revoke promoter status
//	@Tags			Admin
//	@Security		BearerAuth
//	@Accept			json
//	@Produce		json
//	@Param			id		path		int							true	"User id"
//	@Param			request	body		dto.SetPromoterRequestDTO	true	"Promoter flag and commission rate"
//	@Success		200		{object}	dto.PromoterDTO
//	@Failure		400		{object}	utils.Response	"Invalid request"
//	@Failure		404		{object}	utils.Response	"User not found"
//	@Router			/api/admin/users/{id}/promoter [put]
func (h *AdminHandler) SetPromoter(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil || id <= 0 {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid user id")
		return
	}
	var req dto.SetPromoterRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := validate.Struct(req); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	promoter, err := h.promoterService.SetPromoter(r.Context(), id, *req.IsPromoter, req.CommissionRate)
	if err != nil {
		utils.RespondWithDomainError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, dto.NewPromoter(promoter))
}

func parseFilter(r *http.Request) (domain.WithdrawFilter, error) {
	var filter domain.WithdrawFilter
	q := r.URL.Query()

	optional := func(key string) (*int, error) {
		raw := q.Get(key)
		if raw == "" {
			return nil, nil
		}
		v, err := strconv.Atoi(raw)
		if err != nil {
			return nil, &queryError{key: key}
		}
		return &v, nil
	}

	var err error
	if filter.UserID, err = optional("userId"); err != nil {
		return filter, err
	}
	if filter.Status, err = optional("status"); err != nil {
		return filter, err
	}
	page, err := optional("page")
	if err != nil {
		return filter, err
	}
	if page != nil {
		filter.Page = *page
	}
	size, err := optional("pageSize")
	if err != nil {
		return filter, err
	}
	if size != nil {
		filter.PageSize = *size
	}
	return filter, nil
}

type queryError struct {
	key string
}

func (e *queryError) Error() string {
	return "Invalid query parameter " + e.key
}

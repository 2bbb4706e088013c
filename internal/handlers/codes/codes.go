package codes

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

//go:generate mockgen -source=codes.go -destination=mock_codes.go -package=codes

type Service interface {
	ActivateByCode(ctx context.Context, userID int, code string) (*domain.Membership, error)
	GetMembership(ctx context.Context, userID int) (*domain.Membership, error)
}

type CodeHandler struct {
	memberService Service
}

func New(memberService Service) *CodeHandler {
	return &CodeHandler{
		memberService: memberService,
	}
}

// Activate godoc
//
//	@Summary		Redeem an activation code
//	@Tags			Membership
//	@Security		BearerAuth
//	@Accept			json
//	@Produce		json
//	@Param			request	body		dto.ActivateCodeRequestDTO	true	"Activation code"
//	@Success		200		{object}	dto.MembershipResponseDTO
//	@Failure		400		{object}	utils.Response	"Invalid request body"
//	@Failure		401		{object}	utils.Response	"User not authorized"
//	@Failure		404		{object}	utils.Response	"Code not found"
//	@Failure		409		{object}	utils.Response	"Code used or user already a member"
//	@Router			/api/codes/activate [post]
func (h *CodeHandler) Activate(w http.ResponseWriter, r *http.Request) {
	userID := r.Context().Value(auth.UserIDKey).(int)

	var req dto.ActivateCodeRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := validate.Struct(req); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	membership, err := h.memberService.ActivateByCode(r.Context(), userID, req.Code)
	if err != nil {
		utils.RespondWithDomainError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, dto.NewMembership(membership))
}

// GetMembership godoc
//
//	@Summary		Get current membership
//	@Tags			Membership
//	@Security		BearerAuth
//	@Produce		json
//	@Success		200	{object}	dto.MembershipResponseDTO
//	@Failure		401	{object}	utils.Response	"User not authorized"
//	@Failure		500	{object}	utils.Response	"Internal server error"
//	@Router			/api/membership [get]
func (h *CodeHandler) GetMembership(w http.ResponseWriter, r *http.Request) {
	userID := r.Context().Value(auth.UserIDKey).(int)

	membership, err := h.memberService.GetMembership(r.Context(), userID)
	if err != nil {
		utils.RespondWithDomainError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, dto.NewMembership(membership))
}

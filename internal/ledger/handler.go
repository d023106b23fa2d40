package ledger

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/fkhayef/groupledger/pkg/response"
)

// Handler serves the derived balance views
type Handler struct {
	service *Service
}

// NewHandler creates a new balance handler
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// Routes returns the router for balance endpoints
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Get("/group/{groupId}", h.GetBalances)
	r.Get("/group/{groupId}/debts", h.GetSimplifiedDebts)
	r.Get("/group/{groupId}/members/{memberId}", h.GetPosition)

	return r
}

// GetBalances handles GET /balances/group/{groupId}
// @Summary      Get group balances
// @Description  Net balance of every member; positive means the group owes the member
// @Tags         balances
// @Produce      json
// @Param        groupId path string true "Group ID"
// @Success      200 {object} response.APIResponse{data=GroupBalancesResponse}
// @Failure      404 {object} response.APIResponse
// @Router       /balances/group/{groupId} [get]
func (h *Handler) GetBalances(w http.ResponseWriter, r *http.Request) {
	groupID := chi.URLParam(r, "groupId")

	roster, err := h.service.Roster(r.Context(), groupID)
	if err != nil {
		WriteError(w, err, "Failed to get balances")
		return
	}
	b, err := h.service.BalancesFor(r.Context(), roster)
	if err != nil {
		WriteError(w, err, "Failed to get balances")
		return
	}

	response.JSON(w, http.StatusOK, ToBalancesResponse(roster, b))
}

// GetSimplifiedDebts handles GET /balances/group/{groupId}/debts
// @Summary      Get simplified debts
// @Description  Shortest deterministic list of transfers that settles the group
// @Tags         balances
// @Produce      json
// @Param        groupId path string true "Group ID"
// @Success      200 {object} response.APIResponse{data=DebtsResponse}
// @Failure      404 {object} response.APIResponse
// @Router       /balances/group/{groupId}/debts [get]
func (h *Handler) GetSimplifiedDebts(w http.ResponseWriter, r *http.Request) {
	groupID := chi.URLParam(r, "groupId")

	roster, err := h.service.Roster(r.Context(), groupID)
	if err != nil {
		WriteError(w, err, "Failed to get debts")
		return
	}
	transfers, err := h.service.SimplifiedDebtsFor(r.Context(), roster)
	if err != nil {
		WriteError(w, err, "Failed to get debts")
		return
	}

	response.JSON(w, http.StatusOK, &DebtsResponse{
		GroupID:   groupID,
		Currency:  roster.Currency,
		Transfers: ToTransferResponses(roster, transfers),
	})
}

// GetPosition handles GET /balances/group/{groupId}/members/{memberId}
// @Summary      Get member position
// @Description  What one member owes and is owed after simplification
// @Tags         balances
// @Produce      json
// @Param        groupId path string true "Group ID"
// @Param        memberId path string true "Member ID"
// @Success      200 {object} response.APIResponse{data=PositionResponse}
// @Failure      400 {object} response.APIResponse
// @Failure      404 {object} response.APIResponse
// @Router       /balances/group/{groupId}/members/{memberId} [get]
func (h *Handler) GetPosition(w http.ResponseWriter, r *http.Request) {
	groupID := chi.URLParam(r, "groupId")
	memberID := chi.URLParam(r, "memberId")

	roster, err := h.service.Roster(r.Context(), groupID)
	if err != nil {
		WriteError(w, err, "Failed to get position")
		return
	}
	p, err := h.service.PositionFor(r.Context(), roster, memberID)
	if err != nil {
		WriteError(w, err, "Failed to get position")
		return
	}

	response.JSON(w, http.StatusOK, ToPositionResponse(roster, p))
}

// WriteError maps ledger errors onto HTTP responses. Anything that is not a
// ledger error is logged and reported as fallback with status 500.
func WriteError(w http.ResponseWriter, err error, fallback string) {
	code := ErrorCode(err)
	switch {
	case errors.Is(err, ErrNotFound):
		response.Error(w, http.StatusNotFound, code, err.Error())
	case errors.Is(err, ErrMemberHasActivity):
		response.Error(w, http.StatusConflict, code, err.Error())
	case IsValidation(err):
		response.Error(w, http.StatusBadRequest, code, err.Error())
	default:
		slog.Error(fallback, "error", err)
		response.InternalError(w, fallback)
	}
}

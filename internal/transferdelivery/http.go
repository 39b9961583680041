// Package transferdelivery manages delivery layer of transfers.
package transferdelivery

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/go-petr/current-account/internal/domain"
	"github.com/go-petr/current-account/pkg/errorspkg"
	"github.com/go-petr/current-account/pkg/web"
)

// Service provides service layer interface needed by transfer delivery layer.
//
//go:generate mockgen -source http.go -destination http_mock.go -package transferdelivery
type Service interface {
	Transfer(ctx context.Context, fromBranchID, fromAccountID int32, amount decimal.Decimal, toBranchID, toAccountID int32) (domain.TransferResult, error)
}

// Handler facilitates transfer delivery layer logic.
type Handler struct {
	service Service
}

// NewHandler returns transfer handler.
func NewHandler(ts Service) *Handler {
	return &Handler{
		service: ts,
	}
}

type request struct {
	FromBranchID  *int32 `json:"from_branch_id" binding:"required"`
	FromAccountID *int32 `json:"from_account_id" binding:"required"`
	ToBranchID    *int32 `json:"to_branch_id" binding:"required"`
	ToAccountID   *int32 `json:"to_account_id" binding:"required"`
	Amount        string `json:"amount" binding:"required,decimal"`
}

type data struct {
	Transfer domain.TransferResult `json:"transfer"`
}

func errorStatus(err error) (int, error) {
	switch {
	case errors.Is(err, domain.ErrInvalidBranch),
		errors.Is(err, domain.ErrInvalidAccount):
		return http.StatusNotFound, err
	case errors.Is(err, domain.ErrInvalidAmount),
		errors.Is(err, domain.ErrInsufficientFunds),
		errors.Is(err, domain.ErrSameAccount):
		return http.StatusBadRequest, err
	}

	return http.StatusInternalServerError, errorspkg.ErrInternal
}

// Create handles http request to transfer money between two accounts.
func (h *Handler) Create(gctx *gin.Context) {
	ctx := gctx.Request.Context()
	l := zerolog.Ctx(ctx)

	var req request
	if err := gctx.ShouldBindJSON(&req); err != nil {
		l.Info().Err(err).Send()
		gctx.JSON(http.StatusBadRequest, web.BindingError(err))

		return
	}

	amount, err := decimal.NewFromString(req.Amount)
	if err != nil {
		gctx.JSON(http.StatusBadRequest, web.Error(domain.ErrInvalidAmount))
		return
	}

	result, err := h.service.Transfer(ctx,
		*req.FromBranchID, *req.FromAccountID, amount,
		*req.ToBranchID, *req.ToAccountID)
	if err != nil {
		status, err := errorStatus(err)
		gctx.JSON(status, web.Error(err))

		return
	}

	gctx.JSON(http.StatusOK, web.Data(data{result}))
}

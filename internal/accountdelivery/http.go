// Package accountdelivery manages delivery layer of current accounts.
package accountdelivery

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/go-petr/current-account/internal/domain"
	"github.com/go-petr/current-account/pkg/errorspkg"
	"github.com/go-petr/current-account/pkg/web"
)

// DateLayout is the layout of statement period query parameters.
const DateLayout = "2006-01-02"

// Service provides service layer interface needed by account delivery layer.
//
//go:generate mockgen -source http.go -destination http_mock.go -package accountdelivery
type Service interface {
	Deposit(ctx context.Context, branchID, accountID int32, amount decimal.Decimal) (domain.Entry, error)
	Withdraw(ctx context.Context, branchID, accountID int32, amount decimal.Decimal) (domain.Entry, error)
	Balance(ctx context.Context, branchID, accountID int32) (decimal.Decimal, error)
	Statement(ctx context.Context, branchID, accountID int32, start, end time.Time) ([]domain.Entry, error)
}

// Handler facilitates account delivery layer logic.
type Handler struct {
	service Service
}

// NewHandler returns account handler.
func NewHandler(as Service) Handler {
	return Handler{service: as}
}

type accountURI struct {
	BranchID  int32 `uri:"branch_id"`
	AccountID int32 `uri:"account_id"`
}

type amountRequest struct {
	Amount string `json:"amount" binding:"required,decimal"`
}

type entryData struct {
	Entry domain.Entry `json:"entry"`
}

type balanceData struct {
	BranchID  int32           `json:"branch_id"`
	AccountID int32           `json:"account_id"`
	Balance   decimal.Decimal `json:"balance"`
}

// StatementLine is one row of the statement response. The previous balance
// row carries neither date nor amount.
type StatementLine struct {
	Date        *time.Time       `json:"date,omitempty"`
	Description string           `json:"description"`
	Amount      *decimal.Decimal `json:"amount,omitempty"`
	Balance     decimal.Decimal  `json:"balance"`
}

type statementData struct {
	Lines []StatementLine `json:"lines"`
}

// errorStatus maps service errors to http status codes.
func errorStatus(err error) (int, error) {
	switch {
	case errors.Is(err, domain.ErrInvalidBranch),
		errors.Is(err, domain.ErrInvalidAccount):
		return http.StatusNotFound, err
	case errors.Is(err, domain.ErrInvalidAmount),
		errors.Is(err, domain.ErrInsufficientFunds),
		errors.Is(err, domain.ErrInvalidDateRange),
		errors.Is(err, domain.ErrRangeTooLong):
		return http.StatusBadRequest, err
	}

	return http.StatusInternalServerError, errorspkg.ErrInternal
}

func (h *Handler) bindAmount(gctx *gin.Context) (accountURI, decimal.Decimal, bool) {
	l := zerolog.Ctx(gctx.Request.Context())

	var uri accountURI
	if err := gctx.ShouldBindUri(&uri); err != nil {
		l.Info().Err(err).Send()
		gctx.JSON(http.StatusBadRequest, web.BindingError(err))

		return uri, decimal.Zero, false
	}

	var req amountRequest
	if err := gctx.ShouldBindJSON(&req); err != nil {
		l.Info().Err(err).Send()
		gctx.JSON(http.StatusBadRequest, web.BindingError(err))

		return uri, decimal.Zero, false
	}

	amount, err := decimal.NewFromString(req.Amount)
	if err != nil {
		gctx.JSON(http.StatusBadRequest, web.Error(domain.ErrInvalidAmount))
		return uri, decimal.Zero, false
	}

	return uri, amount, true
}

// Deposit handles http request to deposit money into the account.
func (h *Handler) Deposit(gctx *gin.Context) {
	uri, amount, ok := h.bindAmount(gctx)
	if !ok {
		return
	}

	entry, err := h.service.Deposit(gctx.Request.Context(), uri.BranchID, uri.AccountID, amount)
	if err != nil {
		status, err := errorStatus(err)
		gctx.JSON(status, web.Error(err))

		return
	}

	gctx.JSON(http.StatusOK, web.Data(entryData{entry}))
}

// Withdraw handles http request to withdraw money from the account.
func (h *Handler) Withdraw(gctx *gin.Context) {
	uri, amount, ok := h.bindAmount(gctx)
	if !ok {
		return
	}

	entry, err := h.service.Withdraw(gctx.Request.Context(), uri.BranchID, uri.AccountID, amount)
	if err != nil {
		status, err := errorStatus(err)
		gctx.JSON(status, web.Error(err))

		return
	}

	gctx.JSON(http.StatusOK, web.Data(entryData{entry}))
}

// Balance handles http request to get the account balance.
func (h *Handler) Balance(gctx *gin.Context) {
	ctx := gctx.Request.Context()
	l := zerolog.Ctx(ctx)

	var uri accountURI
	if err := gctx.ShouldBindUri(&uri); err != nil {
		l.Info().Err(err).Send()
		gctx.JSON(http.StatusBadRequest, web.BindingError(err))

		return
	}

	balance, err := h.service.Balance(ctx, uri.BranchID, uri.AccountID)
	if err != nil {
		status, err := errorStatus(err)
		gctx.JSON(status, web.Error(err))

		return
	}

	gctx.JSON(http.StatusOK, web.Data(balanceData{
		BranchID:  uri.BranchID,
		AccountID: uri.AccountID,
		Balance:   balance,
	}))
}

type statementRequest struct {
	From string `form:"from" binding:"required,datetime=2006-01-02"`
	To   string `form:"to" binding:"required,datetime=2006-01-02"`
}

// Statement handles http request to get the account statement for a period.
func (h *Handler) Statement(gctx *gin.Context) {
	ctx := gctx.Request.Context()
	l := zerolog.Ctx(ctx)

	var uri accountURI
	if err := gctx.ShouldBindUri(&uri); err != nil {
		l.Info().Err(err).Send()
		gctx.JSON(http.StatusBadRequest, web.BindingError(err))

		return
	}

	var req statementRequest
	if err := gctx.ShouldBindQuery(&req); err != nil {
		l.Info().Err(err).Send()
		gctx.JSON(http.StatusBadRequest, web.BindingError(err))

		return
	}

	// Layout already checked by the datetime binding. The to date is inclusive.
	start, _ := time.Parse(DateLayout, req.From)
	to, _ := time.Parse(DateLayout, req.To)
	end := domain.EndOfDay(to)

	entries, err := h.service.Statement(ctx, uri.BranchID, uri.AccountID, start, end)
	if err != nil {
		status, err := errorStatus(err)
		gctx.JSON(status, web.Error(err))

		return
	}

	gctx.JSON(http.StatusOK, web.Data(statementData{Lines: statementLines(entries)}))
}

func statementLines(entries []domain.Entry) []StatementLine {
	lines := make([]StatementLine, 0, len(entries))

	for i := range entries {
		e := entries[i]
		line := StatementLine{
			Description: e.Description,
			Balance:     e.Balance,
		}

		if e.Description != domain.DescriptionPreviousBalance || !e.CreatedAt.IsZero() {
			line.Date = &e.CreatedAt
			line.Amount = &e.Amount
		}

		lines = append(lines, line)
	}

	return lines
}

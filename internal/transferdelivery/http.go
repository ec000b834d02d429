// Package transferdelivery manages delivery layer of transfers.
package transferdelivery

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"github.com/corebank/ledger/internal/domain"
	"github.com/corebank/ledger/internal/middleware"
	"github.com/corebank/ledger/pkg/errorspkg"
	"github.com/corebank/ledger/pkg/web"
)

// Service provides service layer interface needed by transfer delivery layer.
//
//go:generate mockgen -source http.go -destination http_mock.go -package transferdelivery
type Service interface {
	Transfer(ctx context.Context, fromUsername string, arg domain.CreateTransferParams) (domain.TransferTxResult, error)
}

// Handler facilitates transfer delivery layer logic.
type Handler struct {
	service Service
}

// NewHandler returns transfer handler.
func NewHandler(ts Service) *Handler {
	return &Handler{service: ts}
}

type request struct {
	AccountNumber     string `json:"account_number" binding:"required,len=12,numeric"`
	Amount            string `json:"amount" binding:"required"`
	AccountHolderName string `json:"account_holder_name" binding:"required"`
	IfscCode          string `json:"ifsc_code" binding:"required"`
	Remarks           string `json:"remarks"`
	Method            string `json:"source" binding:"required,method"`
}

type data struct {
	TransactionID string `json:"transaction_id"`
}

type response struct {
	Data data `json:"data"`
}

// Create handles http request by a customer to transfer funds to
// another account. The sender account is resolved from the
// authenticated identity; the response carries the debit-side
// transaction id as the transfer's reference.
func (h *Handler) Create(gctx *gin.Context) {
	ctx := gctx.Request.Context()
	l := zerolog.Ctx(ctx)

	var req request
	if err := gctx.ShouldBindJSON(&req); err != nil {
		var (
			ve     validator.ValidationErrors
			errMsg string
		)

		if errors.As(err, &ve) {
			field := ve[0]
			errMsg = field.Field() + web.GetErrorMsg(field)
		}

		l.Info().Err(err).Send()
		gctx.JSON(http.StatusBadRequest, web.Response{Error: errMsg})

		return
	}

	identity := gctx.MustGet(middleware.IdentityKey).(middleware.Identity)

	arg := domain.CreateTransferParams{
		DestinationAccountNumber: req.AccountNumber,
		Amount:                   req.Amount,
		HolderName:               req.AccountHolderName,
		RoutingCode:              req.IfscCode,
		Remarks:                  req.Remarks,
		Method:                   domain.Method(req.Method),
	}

	result, err := h.service.Transfer(ctx, identity.Username, arg)
	if err != nil {
		l.Info().Err(err).Send()

		switch {
		case errors.Is(err, domain.ErrAccountNotFound):
			gctx.JSON(http.StatusNotFound, web.Error(err))
		case errors.Is(err, domain.ErrInvalidAmount),
			errors.Is(err, domain.ErrNegativeAmount),
			errors.Is(err, domain.ErrInvalidMethod),
			errors.Is(err, domain.ErrSelfTransfer),
			errors.Is(err, domain.ErrSenderInactive),
			errors.Is(err, domain.ErrInsufficientBalance),
			errors.Is(err, domain.ErrDestinationNotFound),
			errors.Is(err, domain.ErrDestinationInactive),
			errors.Is(err, domain.ErrHolderMismatch):
			gctx.JSON(http.StatusBadRequest, web.Error(err))
		case errors.Is(err, domain.ErrTxConflict):
			gctx.JSON(http.StatusConflict, web.Error(err))
		default:
			gctx.JSON(http.StatusInternalServerError, web.Error(errorspkg.ErrInternal))
		}

		return
	}

	gctx.JSON(http.StatusCreated, response{
		Data: data{TransactionID: result.DebitEntry.TransactionID},
	})
}

// Package entrydelivery manages delivery layer of ledger entries.
package entrydelivery

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"github.com/corebank/ledger/internal/domain"
	"github.com/corebank/ledger/internal/middleware"
	"github.com/corebank/ledger/pkg/errorspkg"
	"github.com/corebank/ledger/pkg/web"
)

// Service provides service layer interface needed by entry delivery layer.
//
//go:generate mockgen -source http.go -destination http_mock.go -package entrydelivery
type Service interface {
	PostEntry(ctx context.Context, staffID string, arg domain.CreateStaffEntryParams) (domain.EntryTxResult, error)
	ListByAccount(ctx context.Context, accountNumber string, limit, offset int32) ([]domain.Entry, error)
	ListStatement(ctx context.Context, arg domain.ListStatementParams) ([]domain.Entry, error)
}

// Handler facilitates entry delivery layer logic.
type Handler struct {
	service Service
}

// NewHandler returns entry handler.
func NewHandler(es Service) *Handler {
	return &Handler{service: es}
}

type createRequest struct {
	AccountNumber   string `json:"account_number" binding:"required,len=12,numeric"`
	TransactionType string `json:"transaction_type" binding:"required,oneof=Debit Credit"`
	Amount          string `json:"amount" binding:"required"`
	Method          string `json:"transaction_method" binding:"required,method"`
	Source          string `json:"source"`
	CustomerName    string `json:"customer_name"`
	ReferenceNumber string `json:"reference_number"`
}

type createData struct {
	TransactionID string         `json:"transaction_id"`
	Account       domain.Account `json:"account"`
}

type createResponse struct {
	Message string     `json:"message"`
	Data    createData `json:"data"`
}

// Create handles http request by staff to post a manual credit or debit.
func (h *Handler) Create(gctx *gin.Context) {
	ctx := gctx.Request.Context()
	l := zerolog.Ctx(ctx)

	var req createRequest
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

	arg := domain.CreateStaffEntryParams{
		AccountNumber:   req.AccountNumber,
		Direction:       domain.Direction(req.TransactionType),
		Amount:          req.Amount,
		Method:          domain.Method(req.Method),
		Source:          req.Source,
		HolderName:      req.CustomerName,
		ReferenceNumber: req.ReferenceNumber,
	}

	result, err := h.service.PostEntry(ctx, identity.Username, arg)
	if err != nil {
		l.Info().Err(err).Send()

		switch {
		case errors.Is(err, domain.ErrAccountNotFound):
			gctx.JSON(http.StatusNotFound, web.Error(err))
		case errors.Is(err, domain.ErrInvalidAmount),
			errors.Is(err, domain.ErrNegativeAmount),
			errors.Is(err, domain.ErrInvalidDirection),
			errors.Is(err, domain.ErrInvalidMethod),
			errors.Is(err, domain.ErrHolderMismatch):
			gctx.JSON(http.StatusBadRequest, web.Error(err))
		case errors.Is(err, domain.ErrTxConflict):
			gctx.JSON(http.StatusConflict, web.Error(err))
		default:
			gctx.JSON(http.StatusInternalServerError, web.Error(errorspkg.ErrInternal))
		}

		return
	}

	verb := "credited to"
	if result.Entry.Direction == domain.Debit {
		verb = "debited from"
	}

	gctx.JSON(http.StatusOK, createResponse{
		Message: fmt.Sprintf("%s has been %s account number %s",
			result.Entry.Amount, verb, result.Account.AccountNumber),
		Data: createData{
			TransactionID: result.Entry.TransactionID,
			Account:       result.Account,
		},
	})
}

type listRequest struct {
	PageID   int32 `form:"page_id" binding:"required,min=1"`
	PageSize int32 `form:"page_size" binding:"required,min=1,max=100"`
}

type listUri struct {
	AccountNumber string `uri:"account_number" binding:"required,len=12,numeric"`
}

type listData struct {
	Entries []domain.Entry `json:"entries"`
}

type listResponse struct {
	Data listData `json:"data,omitempty"`
}

// List handles http request to list an account's entry history ordered
// by commit time.
func (h *Handler) List(gctx *gin.Context) {
	ctx := gctx.Request.Context()
	l := zerolog.Ctx(ctx)

	var uri listUri
	if err := gctx.ShouldBindUri(&uri); err != nil {
		l.Info().Err(err).Send()
		gctx.JSON(http.StatusBadRequest, web.Error(err))

		return
	}

	var req listRequest
	if err := gctx.ShouldBindQuery(&req); err != nil {
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

	entries, err := h.service.ListByAccount(ctx, uri.AccountNumber, req.PageSize, (req.PageID-1)*req.PageSize)
	if err != nil {
		if errors.Is(err, domain.ErrAccountNotFound) {
			gctx.JSON(http.StatusNotFound, web.Error(err))
			return
		}

		gctx.JSON(http.StatusInternalServerError, web.Error(errorspkg.ErrInternal))

		return
	}

	gctx.JSON(http.StatusOK, listResponse{Data: listData{entries}})
}

type statementRequest struct {
	AccountNumbers []string `json:"acc_ids" binding:"required,min=1,dive,len=12,numeric"`
	StartDate      string   `json:"start_date"`
	EndDate        string   `json:"end_date"`
}

const dateLayout = "2006-01-02"

var errDateWindow = errors.New("end date can not be less then start date")

// statementWindow resolves the export window: start defaults to the
// first day of the current month, end defaults to now.
func statementWindow(req statementRequest) (time.Time, time.Time, error) {
	now := time.Now()

	start := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	if req.StartDate != "" {
		parsed, err := time.Parse(dateLayout, req.StartDate)
		if err != nil {
			return time.Time{}, time.Time{}, err
		}

		start = parsed
	}

	end := now
	if req.EndDate != "" {
		parsed, err := time.Parse(dateLayout, req.EndDate)
		if err != nil {
			return time.Time{}, time.Time{}, err
		}

		end = parsed
	}

	if end.Before(start) {
		return time.Time{}, time.Time{}, errDateWindow
	}

	return start, end, nil
}

var statementHeader = []string{
	"Transaction ID",
	"Transaction Type",
	"Amount",
	"Account Number",
	"Transaction Method",
	"Description",
	"Reference Number",
}

// ExportCSV handles http request by a bank manager to download entry
// history as CSV. It reads committed state only.
func (h *Handler) ExportCSV(gctx *gin.Context) {
	ctx := gctx.Request.Context()
	l := zerolog.Ctx(ctx)

	var req statementRequest
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

	start, end, err := statementWindow(req)
	if err != nil {
		l.Info().Err(err).Send()
		gctx.JSON(http.StatusBadRequest, web.Error(err))

		return
	}

	entries, err := h.service.ListStatement(ctx, domain.ListStatementParams{
		AccountNumbers: req.AccountNumbers,
		Start:          start,
		End:            end,
	})
	if err != nil {
		gctx.JSON(http.StatusInternalServerError, web.Error(errorspkg.ErrInternal))
		return
	}

	filename := fmt.Sprintf("transaction_history_%s.csv", time.Now().Format(dateLayout))
	gctx.Header("Content-Disposition", "attachment; filename="+filename)
	gctx.Header("Content-Type", "text/csv")
	gctx.Status(http.StatusOK)

	w := csv.NewWriter(gctx.Writer)

	if err := w.Write(statementHeader); err != nil {
		l.Error().Err(err).Send()
		return
	}

	for _, e := range entries {
		details, err := json.Marshal(e.Details)
		if err != nil {
			l.Error().Err(err).Send()
			return
		}

		row := []string{
			e.TransactionID,
			string(e.Direction),
			e.Amount,
			e.AccountNumber,
			string(e.Method),
			string(details),
			e.ReferenceNumber,
		}

		if err := w.Write(row); err != nil {
			l.Error().Err(err).Send()
			return
		}
	}

	w.Flush()

	if err := w.Error(); err != nil {
		l.Error().Err(err).Send()
	}
}

package handler

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"github.com/vinigdesouza/api-financial/internal/command"
	"github.com/vinigdesouza/api-financial/internal/middleware"
	"github.com/vinigdesouza/api-financial/internal/models"
)

// TransactionCommander defines the write-side operations used by TransactionHandler.
type TransactionCommander interface {
	CreateTransaction(ctx context.Context, cmd command.CreateTransactionCommand) (*models.Transaction, error)
}

// TransactionQuerier defines the read-side operations used by TransactionHandler.
type TransactionQuerier interface {
	GetTransaction(ctx context.Context, id string) (*models.Transaction, error)
	ListTransactionsByAccount(ctx context.Context, accountID string) ([]models.Transaction, error)
}

// TransactionDeleter removes a transaction record.
type TransactionDeleter interface {
	Delete(ctx context.Context, id string) error
}

type TransactionHandler struct {
	commands TransactionCommander
	queries  TransactionQuerier
	deleter  TransactionDeleter
}

type CreateTransactionRequest struct {
	AccountID            string          `json:"account_id" validate:"required,uuid4"`
	Amount               decimal.Decimal `json:"amount" validate:"required"`
	Currency             string          `json:"currency" validate:"required,oneof=BRL USD EUR"`
	TransactionType      string          `json:"transaction_type" validate:"required,oneof=DEPOSIT WITHDRAW TRANSFER"`
	DestinationAccountID *string         `json:"destination_account_id" validate:"omitempty,uuid4"`
	Description          string          `json:"description"`
	ScheduledAt          *time.Time      `json:"scheduled_at"`
}

type ListTransactionsResponse struct {
	Transactions []models.Transaction `json:"transactions"`
}

func NewTransactionHandler(commands TransactionCommander, queries TransactionQuerier, deleter TransactionDeleter) *TransactionHandler {
	return &TransactionHandler{commands: commands, queries: queries, deleter: deleter}
}

func (h *TransactionHandler) CreateTransaction(c *gin.Context) {
	var req CreateTransactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.RespondWithError(c, http.StatusBadRequest, "Invalid request body")
		return
	}
	if validationErrors := middleware.ValidateRequest(req); validationErrors != nil {
		middleware.RespondWithValidationError(c, validationErrors)
		return
	}

	transaction, err := h.commands.CreateTransaction(c.Request.Context(), command.CreateTransactionCommand{
		AccountID:            req.AccountID,
		Amount:               req.Amount,
		Currency:             models.Currency(req.Currency),
		Type:                 models.TransactionType(req.TransactionType),
		Description:          req.Description,
		DestinationAccountID: req.DestinationAccountID,
		ScheduledAt:          req.ScheduledAt,
	})
	if err != nil {
		respondWithDomainError(c, err)
		return
	}

	c.JSON(http.StatusCreated, transaction)
}

func (h *TransactionHandler) GetTransaction(c *gin.Context) {
	transaction, err := h.queries.GetTransaction(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondWithDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, transaction)
}

func (h *TransactionHandler) ListTransactionsByAccount(c *gin.Context) {
	transactions, err := h.queries.ListTransactionsByAccount(c.Request.Context(), c.Param("accountId"))
	if err != nil {
		respondWithDomainError(c, err)
		return
	}
	if len(transactions) == 0 {
		middleware.RespondWithError(c, http.StatusNotFound, "No transactions found for account")
		return
	}
	c.JSON(http.StatusOK, ListTransactionsResponse{Transactions: transactions})
}

func (h *TransactionHandler) DeleteTransaction(c *gin.Context) {
	if err := h.deleter.Delete(c.Request.Context(), c.Param("id")); err != nil {
		respondWithDomainError(c, err)
		return
	}
	c.Status(http.StatusOK)
}

// respondWithDomainError maps the domain error taxonomy onto transport codes.
func respondWithDomainError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, models.ErrInvalidRequest):
		middleware.RespondWithError(c, http.StatusBadRequest, err.Error())
	case errors.Is(err, models.ErrInsufficientBalance):
		middleware.RespondWithError(c, http.StatusBadRequest, "Insufficient balance")
	case errors.Is(err, models.ErrAccountNotFound):
		middleware.RespondWithError(c, http.StatusNotFound, "Account not found")
	case errors.Is(err, models.ErrTransactionNotFound):
		middleware.RespondWithError(c, http.StatusNotFound, "Transaction not found")
	case errors.Is(err, models.ErrConversionFailed), errors.Is(err, models.ErrPriceLookupFailed):
		middleware.RespondWithError(c, http.StatusInternalServerError, "Currency conversion failed")
	default:
		middleware.RespondWithError(c, http.StatusInternalServerError, "Internal server error")
	}
}

package handler

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"github.com/vinigdesouza/api-financial/internal/command"
	"github.com/vinigdesouza/api-financial/internal/middleware"
	"github.com/vinigdesouza/api-financial/internal/models"
)

// AccountCommander defines the write-side operations used by AccountHandler.
type AccountCommander interface {
	CreateAccount(ctx context.Context, cmd command.CreateAccountCommand) (*models.Account, error)
	UpdateAccount(ctx context.Context, cmd command.UpdateAccountCommand) (*models.Account, error)
	DeleteAccount(ctx context.Context, id string) error
}

// AccountQuerier defines the read-side operations used by AccountHandler.
type AccountQuerier interface {
	GetAccount(ctx context.Context, id string) (*models.Account, error)
	GetAccountByNumber(ctx context.Context, accountNumber int64) (*models.Account, error)
}

type AccountHandler struct {
	commands AccountCommander
	queries  AccountQuerier
}

type CreateAccountRequest struct {
	Name           string          `json:"name" validate:"required"`
	AccountNumber  int64           `json:"account_number" validate:"required,gt=0"`
	AccountBalance decimal.Decimal `json:"account_balance"`
	AccountType    string          `json:"account_type" validate:"required,oneof=CHECKING SAVINGS"`
}

type UpdateAccountRequest struct {
	Name        string `json:"name" validate:"required"`
	AccountType string `json:"account_type" validate:"required,oneof=CHECKING SAVINGS"`
}

func NewAccountHandler(commands AccountCommander, queries AccountQuerier) *AccountHandler {
	return &AccountHandler{commands: commands, queries: queries}
}

func (h *AccountHandler) CreateAccount(c *gin.Context) {
	var req CreateAccountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.RespondWithError(c, http.StatusBadRequest, "Invalid request body")
		return
	}
	if validationErrors := middleware.ValidateRequest(req); validationErrors != nil {
		middleware.RespondWithValidationError(c, validationErrors)
		return
	}

	account, err := h.commands.CreateAccount(c.Request.Context(), command.CreateAccountCommand{
		Name:          req.Name,
		AccountNumber: req.AccountNumber,
		Balance:       req.AccountBalance,
		AccountType:   models.AccountType(req.AccountType),
	})
	if err != nil {
		respondWithDomainError(c, err)
		return
	}

	c.JSON(http.StatusCreated, account)
}

func (h *AccountHandler) GetAccount(c *gin.Context) {
	account, err := h.queries.GetAccount(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondWithDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, account)
}

func (h *AccountHandler) GetAccountByNumber(c *gin.Context) {
	accountNumber, err := strconv.ParseInt(c.Param("accountNumber"), 10, 64)
	if err != nil {
		middleware.RespondWithError(c, http.StatusBadRequest, "Invalid account number")
		return
	}
	account, err := h.queries.GetAccountByNumber(c.Request.Context(), accountNumber)
	if err != nil {
		respondWithDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, account)
}

func (h *AccountHandler) UpdateAccount(c *gin.Context) {
	var req UpdateAccountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.RespondWithError(c, http.StatusBadRequest, "Invalid request body")
		return
	}
	if validationErrors := middleware.ValidateRequest(req); validationErrors != nil {
		middleware.RespondWithValidationError(c, validationErrors)
		return
	}

	account, err := h.commands.UpdateAccount(c.Request.Context(), command.UpdateAccountCommand{
		AccountID:   c.Param("id"),
		Name:        req.Name,
		AccountType: models.AccountType(req.AccountType),
	})
	if err != nil {
		respondWithDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, account)
}

func (h *AccountHandler) DeleteAccount(c *gin.Context) {
	if err := h.commands.DeleteAccount(c.Request.Context(), c.Param("id")); err != nil {
		respondWithDomainError(c, err)
		return
	}
	c.Status(http.StatusOK)
}

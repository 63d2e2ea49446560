package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/nimeshabuddhika/gojenga-ledger/pkg"
	"github.com/nimeshabuddhika/gojenga-ledger/pkg/models"
	"github.com/nimeshabuddhika/gojenga-ledger/pkg/views"
	"github.com/nimeshabuddhika/gojenga-ledger/services/ledger-api/internal/services"
	"go.uber.org/zap"
)

type AccountHandler struct {
	logger  *zap.Logger
	service services.LedgerService
	auth    gin.HandlerFunc
}

func NewAccountHandler(logger *zap.Logger, svc services.LedgerService, auth gin.HandlerFunc) *AccountHandler {
	return &AccountHandler{logger: logger, service: svc, auth: auth}
}

// RegisterRoutes registers account routes; every route requires a bearer token.
func (h *AccountHandler) RegisterRoutes(r *gin.RouterGroup) {
	account := r.Group("/account", h.auth)
	account.POST("/", h.CreateAccount)
	account.GET("/:username", h.GetAccount)
	account.PUT("/:username", h.SetBalance)
	account.DELETE("/:username", h.DeleteAccount)
	account.POST("/:username/deposit", h.Deposit)
	account.POST("/:username/transaction", h.Transfer)
}

// GetAccount godoc
// @Summary      Get an account balance
// @Tags         Account
// @Produce      json
// @Security     BearerAuth
// @Param        username  path    string  true   "account name"
// @Param        is-test   header  bool    false  "use the test partition"
// @Success      200  {object}  views.APIResponse{response=models.Account}
// @Failure      404  {object}  pkg.ErrorResponse
// @Router       /account/{username} [get]
func (h *AccountHandler) GetAccount(c *gin.Context) {
	traceID, env, ok := requestScope(c, h.logger)
	if !ok {
		return
	}
	username, ok := legalUsername(c, h.logger, traceID, c.Param("username"))
	if !ok {
		return
	}
	account, err := h.service.GetAccount(c.Request.Context(), traceID, env, username)
	if err != nil {
		writeError(c, h.logger, traceID, err)
		return
	}
	writeOK(c, account)
}

// CreateAccount godoc
// @Summary      Open an account
// @Tags         Account
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body     body    views.AccountRequest  true   "name and opening balance"
// @Param        is-test  header  bool                  false  "use the test partition"
// @Success      200  {object}  views.APIResponse{response=models.Account}
// @Failure      409  {object}  pkg.ErrorResponse
// @Router       /account/ [post]
func (h *AccountHandler) CreateAccount(c *gin.Context) {
	traceID, env, ok := requestScope(c, h.logger)
	if !ok {
		return
	}
	var req views.AccountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, h.logger, traceID, pkg.NewAppError(pkg.ErrInvalidInputCode, "invalid request body", err))
		return
	}
	username, ok := legalUsername(c, h.logger, traceID, req.Name)
	if !ok {
		return
	}
	account, err := h.service.CreateAccount(c.Request.Context(), traceID, env, username, req.Balance)
	if err != nil {
		writeError(c, h.logger, traceID, err)
		return
	}
	writeOK(c, account)
}

// SetBalance godoc
// @Summary      Overwrite an account balance
// @Tags         Account
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        username  path    string                true   "account name"
// @Param        body      body    views.AccountRequest  true   "new balance"
// @Param        is-test   header  bool                  false  "use the test partition"
// @Success      200  {object}  views.APIResponse{response=models.Account}
// @Failure      404  {object}  pkg.ErrorResponse
// @Router       /account/{username} [put]
func (h *AccountHandler) SetBalance(c *gin.Context) {
	traceID, env, ok := requestScope(c, h.logger)
	if !ok {
		return
	}
	username, ok := legalUsername(c, h.logger, traceID, c.Param("username"))
	if !ok {
		return
	}
	var req views.AccountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, h.logger, traceID, pkg.NewAppError(pkg.ErrInvalidInputCode, "invalid request body", err))
		return
	}
	account, err := h.service.SetBalance(c.Request.Context(), traceID, env, username, req.Balance)
	if err != nil {
		writeError(c, h.logger, traceID, err)
		return
	}
	writeOK(c, account)
}

// DeleteAccount godoc
// @Summary      Delete an account with its portfolio and credentials
// @Tags         Account
// @Produce      json
// @Security     BearerAuth
// @Param        username  path    string  true   "account name"
// @Param        is-test   header  bool    false  "use the test partition"
// @Success      200  {object}  views.APIResponse
// @Failure      500  {object}  pkg.ErrorResponse
// @Router       /account/{username} [delete]
func (h *AccountHandler) DeleteAccount(c *gin.Context) {
	traceID, env, ok := requestScope(c, h.logger)
	if !ok {
		return
	}
	username, ok := legalUsername(c, h.logger, traceID, c.Param("username"))
	if !ok {
		return
	}
	if err := h.service.DeleteAccount(c.Request.Context(), traceID, env, username); err != nil {
		writeError(c, h.logger, traceID, err)
		return
	}
	writeOK(c, gin.H{"deleted": username})
}

// Deposit godoc
// @Summary      Add a signed amount to an account
// @Tags         Deposit
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        username  path    string                true   "account name"
// @Param        body      body    views.AccountRequest  true   "balance holds the delta"
// @Param        is-test   header  bool                  false  "use the test partition"
// @Success      200  {object}  views.APIResponse{response=models.Account}
// @Failure      404  {object}  pkg.ErrorResponse
// @Router       /account/{username}/deposit [post]
func (h *AccountHandler) Deposit(c *gin.Context) {
	traceID, env, ok := requestScope(c, h.logger)
	if !ok {
		return
	}
	username, ok := legalUsername(c, h.logger, traceID, c.Param("username"))
	if !ok {
		return
	}
	var req views.AccountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, h.logger, traceID, pkg.NewAppError(pkg.ErrInvalidInputCode, "invalid request body", err))
		return
	}
	account, err := h.service.AdjustBalance(c.Request.Context(), traceID, env, username, req.Balance)
	if err != nil {
		writeError(c, h.logger, traceID, err)
		return
	}
	writeOK(c, account)
}

// Transfer godoc
// @Summary      Move money between two accounts
// @Tags         Transaction
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        username  path    string              true   "caller"
// @Param        body      body    models.Transaction  true   "transfer"
// @Param        is-test   header  bool                false  "use the test partition"
// @Success      200  {object}  views.APIResponse{response=views.Receipt}
// @Failure      404  {object}  pkg.ErrorResponse
// @Failure      500  {object}  pkg.ErrorResponse
// @Router       /account/{username}/transaction [post]
func (h *AccountHandler) Transfer(c *gin.Context) {
	traceID, env, ok := requestScope(c, h.logger)
	if !ok {
		return
	}
	var tx models.Transaction
	if err := c.ShouldBindJSON(&tx); err != nil {
		writeError(c, h.logger, traceID, pkg.NewAppError(pkg.ErrInvalidInputCode, "invalid request body", err))
		return
	}
	if tx.Sender, ok = legalUsername(c, h.logger, traceID, tx.Sender); !ok {
		return
	}
	if tx.Receiver, ok = legalUsername(c, h.logger, traceID, tx.Receiver); !ok {
		return
	}
	receipt, err := h.service.Transfer(c.Request.Context(), traceID, env, tx)
	if err != nil {
		writeError(c, h.logger, traceID, err)
		return
	}
	writeOK(c, receipt)
}

package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/nimeshabuddhika/gojenga-ledger/pkg"
	"github.com/nimeshabuddhika/gojenga-ledger/pkg/models"
	"github.com/nimeshabuddhika/gojenga-ledger/services/ledger-api/internal/services"
	"go.uber.org/zap"
)

type PortfolioHandler struct {
	logger  *zap.Logger
	service services.PortfolioService
	auth    gin.HandlerFunc
}

func NewPortfolioHandler(logger *zap.Logger, svc services.PortfolioService, auth gin.HandlerFunc) *PortfolioHandler {
	return &PortfolioHandler{logger: logger, service: svc, auth: auth}
}

func (h *PortfolioHandler) RegisterRoutes(r *gin.RouterGroup) {
	portfolio := r.Group("/portfolio", h.auth)
	portfolio.POST("/", h.CreatePortfolio)
	portfolio.GET("/:username", h.GetPortfolio)
	portfolio.PUT("/:username", h.UpdatePortfolio)
	portfolio.DELETE("/:username", h.DeletePortfolio)
}

// GetPortfolio godoc
// @Summary      Get a portfolio
// @Tags         Portfolio
// @Produce      json
// @Security     BearerAuth
// @Param        username  path    string  true   "owner"
// @Param        is-test   header  bool    false  "use the test partition"
// @Success      200  {object}  views.APIResponse{response=models.Portfolio}
// @Failure      404  {object}  pkg.ErrorResponse
// @Router       /portfolio/{username} [get]
func (h *PortfolioHandler) GetPortfolio(c *gin.Context) {
	traceID, env, ok := requestScope(c, h.logger)
	if !ok {
		return
	}
	username, ok := legalUsername(c, h.logger, traceID, c.Param("username"))
	if !ok {
		return
	}
	portfolio, err := h.service.GetPortfolio(c.Request.Context(), traceID, env, username)
	if err != nil {
		writeError(c, h.logger, traceID, err)
		return
	}
	writeOK(c, portfolio)
}

// CreatePortfolio godoc
// @Summary      Create a portfolio
// @Tags         Portfolio
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body     body    models.Portfolio  true   "owner and holdings"
// @Param        is-test  header  bool              false  "use the test partition"
// @Success      200  {object}  views.APIResponse{response=models.Portfolio}
// @Failure      409  {object}  pkg.ErrorResponse
// @Router       /portfolio/ [post]
func (h *PortfolioHandler) CreatePortfolio(c *gin.Context) {
	traceID, env, ok := requestScope(c, h.logger)
	if !ok {
		return
	}
	var req models.Portfolio
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, h.logger, traceID, pkg.NewAppError(pkg.ErrInvalidInputCode, "invalid request body", err))
		return
	}
	if req.Username, ok = legalUsername(c, h.logger, traceID, req.Username); !ok {
		return
	}
	portfolio, err := h.service.CreatePortfolio(c.Request.Context(), traceID, env, req)
	if err != nil {
		writeError(c, h.logger, traceID, err)
		return
	}
	writeOK(c, portfolio)
}

// UpdatePortfolio godoc
// @Summary      Update holdings
// @Description  update-type add sums quantities, remove subtracts them and drops empty holdings, anything else replaces.
// @Tags         Portfolio
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        username     path    string            true   "owner"
// @Param        update-type  header  string            false  "add | remove | replace"
// @Param        body         body    models.Portfolio  true   "holdings"
// @Param        is-test      header  bool              false  "use the test partition"
// @Success      200  {object}  views.APIResponse{response=models.Portfolio}
// @Failure      404  {object}  pkg.ErrorResponse
// @Router       /portfolio/{username} [put]
func (h *PortfolioHandler) UpdatePortfolio(c *gin.Context) {
	traceID, env, ok := requestScope(c, h.logger)
	if !ok {
		return
	}
	username, ok := legalUsername(c, h.logger, traceID, c.Param("username"))
	if !ok {
		return
	}
	var req models.Portfolio
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, h.logger, traceID, pkg.NewAppError(pkg.ErrInvalidInputCode, "invalid request body", err))
		return
	}
	req.Username = username
	updateType := services.ParseUpdateType(c.GetHeader(pkg.HeaderUpdateType))
	portfolio, err := h.service.UpdatePortfolio(c.Request.Context(), traceID, env, updateType, req)
	if err != nil {
		writeError(c, h.logger, traceID, err)
		return
	}
	writeOK(c, portfolio)
}

// DeletePortfolio godoc
// @Summary      Delete a portfolio
// @Tags         Portfolio
// @Produce      json
// @Security     BearerAuth
// @Param        username  path    string  true   "owner"
// @Param        is-test   header  bool    false  "use the test partition"
// @Success      200  {object}  views.APIResponse
// @Failure      404  {object}  pkg.ErrorResponse
// @Router       /portfolio/{username} [delete]
func (h *PortfolioHandler) DeletePortfolio(c *gin.Context) {
	traceID, env, ok := requestScope(c, h.logger)
	if !ok {
		return
	}
	username, ok := legalUsername(c, h.logger, traceID, c.Param("username"))
	if !ok {
		return
	}
	if err := h.service.DeletePortfolio(c.Request.Context(), traceID, env, username); err != nil {
		writeError(c, h.logger, traceID, err)
		return
	}
	writeOK(c, gin.H{"deleted": username})
}

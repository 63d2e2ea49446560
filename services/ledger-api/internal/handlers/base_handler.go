package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/nimeshabuddhika/gojenga-ledger/pkg"
	"github.com/nimeshabuddhika/gojenga-ledger/pkg/utils"
	"github.com/nimeshabuddhika/gojenga-ledger/pkg/views"
	"go.uber.org/zap"
)

// Pinger reports store connectivity.
type Pinger interface {
	Ping(ctx context.Context) error
}

type BaseHandler struct {
	logger *zap.Logger
	store  Pinger
}

func NewBaseHandler(logger *zap.Logger, store Pinger) *BaseHandler {
	return &BaseHandler{logger: logger, store: store}
}

func (b *BaseHandler) RegisterRoutes(r gin.IRoutes) {
	r.GET("/health", b.GetHealth)
}

// GetHealth godoc
// @Summary      Health check
// @Tags         Health
// @Produce      json
// @Success      200  {object}  map[string]string
// @Failure      503  {object}  map[string]string
// @Router       /health [get]
func (b *BaseHandler) GetHealth(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()
	if err := b.store.Ping(ctx); err != nil {
		b.logger.Warn("health_check_failed", zap.String(pkg.TraceId, c.GetString(pkg.TraceId)), zap.Error(err))
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// requestScope reads the trace id and the is-test partition selector. On failure the response is already written.
func requestScope(c *gin.Context, logger *zap.Logger) (string, pkg.Env, bool) {
	traceID, err := utils.GetTraceID(c)
	if err != nil {
		writeError(c, logger, "", pkg.NewAppError(pkg.ErrServerCode, "trace id is missing", err))
		return "", "", false
	}
	env, err := utils.GetEnv(c)
	if err != nil {
		writeError(c, logger, traceID, pkg.NewAppError(pkg.ErrInvalidInputCode, "invalid is-test header", err))
		return "", "", false
	}
	return traceID, env, true
}

// legalUsername lowercases raw and rejects names with special characters (206).
func legalUsername(c *gin.Context, logger *zap.Logger, traceID, raw string) (string, bool) {
	name := utils.NormalizeUsername(raw)
	if utils.HasSpecialCharacters(name) {
		writeError(c, logger, traceID, pkg.NewAppError(pkg.ErrIllegalNameCode, pkg.ErrIllegalNameCode.Message, nil))
		return "", false
	}
	return name, true
}

func writeError(c *gin.Context, logger *zap.Logger, traceID string, err error) {
	resp := pkg.ToErrorResponse(logger, traceID, err)
	c.AbortWithStatusJSON(resp.Status, resp)
}

func writeOK(c *gin.Context, payload interface{}) {
	c.JSON(http.StatusOK, views.APIResponse{Response: payload})
}

package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/nimeshabuddhika/gojenga-ledger/pkg"
	"github.com/nimeshabuddhika/gojenga-ledger/pkg/utils"
	"github.com/nimeshabuddhika/gojenga-ledger/pkg/views"
	"github.com/nimeshabuddhika/gojenga-ledger/services/ledger-api/internal/services"
	"go.uber.org/zap"
)

type AuthHandler struct {
	logger      *zap.Logger
	credentials services.CredentialService
	loginLimit  gin.HandlerFunc
}

// NewAuthHandler wires login behind loginLimit; pass nil to disable limiting.
func NewAuthHandler(logger *zap.Logger, credentials services.CredentialService, loginLimit gin.HandlerFunc) *AuthHandler {
	return &AuthHandler{logger: logger, credentials: credentials, loginLimit: loginLimit}
}

func (h *AuthHandler) RegisterRoutes(r *gin.RouterGroup) {
	auth := r.Group("/auth")
	login := []gin.HandlerFunc{h.Login}
	if h.loginLimit != nil {
		login = append([]gin.HandlerFunc{h.loginLimit}, login...)
	}
	auth.POST("/login", login...)
	auth.PUT("/refresh", h.Refresh)
}

// Login godoc
// @Summary      Exchange username and password for tokens
// @Tags         Auth
// @Accept       x-www-form-urlencoded
// @Produce      json
// @Param        username  formData  string  true   "username"
// @Param        password  formData  string  true   "password"
// @Param        is-test   header    bool    false  "use the test partition"
// @Success      200  {object}  views.TokenPair
// @Failure      401  {object}  pkg.ErrorResponse
// @Failure      429  {object}  pkg.ErrorResponse
// @Router       /auth/login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	traceID, env, ok := requestScope(c, h.logger)
	if !ok {
		return
	}
	username := utils.NormalizeUsername(c.PostForm("username"))
	password := c.PostForm("password")
	if utils.IsEmpty(username) || utils.IsEmpty(password) {
		writeError(c, h.logger, traceID, pkg.NewAppError(pkg.ErrInvalidInputCode, "username and password are required", nil))
		return
	}

	user, err := h.credentials.Authenticate(c.Request.Context(), traceID, env, username, password)
	if err != nil {
		if pkg.HasCode(err, pkg.ErrUnauthorizedCode) {
			c.Header("WWW-Authenticate", "Bearer")
		}
		writeError(c, h.logger, traceID, err)
		return
	}
	tokens, err := h.credentials.IssueTokenPair(user.Name)
	if err != nil {
		writeError(c, h.logger, traceID, err)
		return
	}
	h.logger.Info("user_logged_in", zap.String(pkg.TraceId, traceID), zap.String(pkg.Username, user.Name))
	c.JSON(http.StatusOK, tokens)
}

// Refresh godoc
// @Summary      Renew an access token
// @Tags         Auth
// @Accept       json
// @Produce      json
// @Param        body  body  views.RefreshRequest  true  "token to renew"
// @Success      200  {object}  views.RefreshResponse
// @Failure      401  {object}  pkg.ErrorResponse
// @Failure      403  {object}  pkg.ErrorResponse
// @Router       /auth/refresh [put]
func (h *AuthHandler) Refresh(c *gin.Context) {
	traceID, _, ok := requestScope(c, h.logger)
	if !ok {
		return
	}
	var req views.RefreshRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, h.logger, traceID, pkg.NewAppError(pkg.ErrInvalidInputCode, "invalid request body", err))
		return
	}
	token, err := h.credentials.Refresh(traceID, req.Token)
	if err != nil {
		writeError(c, h.logger, traceID, err)
		return
	}
	c.JSON(http.StatusOK, views.RefreshResponse{Token: token})
}

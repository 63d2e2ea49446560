package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/nimeshabuddhika/gojenga-ledger/pkg"
	"github.com/nimeshabuddhika/gojenga-ledger/pkg/views"
	"github.com/nimeshabuddhika/gojenga-ledger/services/ledger-api/internal/services"
	"go.uber.org/zap"
)

type UserHandler struct {
	logger  *zap.Logger
	service services.UserService
	auth    gin.HandlerFunc
}

func NewUserHandler(logger *zap.Logger, svc services.UserService, auth gin.HandlerFunc) *UserHandler {
	return &UserHandler{logger: logger, service: svc, auth: auth}
}

// RegisterRoutes registers user routes. Registration is open; everything else needs a bearer token.
func (h *UserHandler) RegisterRoutes(r *gin.RouterGroup) {
	user := r.Group("/user")
	user.POST("/", h.CreateUser)
	user.GET("/:username", h.auth, h.GetUser)
	user.PUT("/:username", h.auth, h.UpdatePassword)
	user.DELETE("/:username", h.auth, h.DeleteUser)
}

// CreateUser godoc
// @Summary      Register a user
// @Tags         User
// @Accept       json
// @Produce      json
// @Param        body     body    views.UserRequest  true   "name and password"
// @Param        is-test  header  bool               false  "use the test partition"
// @Success      200  {object}  views.APIResponse{response=models.User}
// @Failure      206  {object}  pkg.ErrorResponse
// @Failure      409  {object}  pkg.ErrorResponse
// @Router       /user/ [post]
func (h *UserHandler) CreateUser(c *gin.Context) {
	traceID, env, ok := requestScope(c, h.logger)
	if !ok {
		return
	}
	var req views.UserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, h.logger, traceID, pkg.NewAppError(pkg.ErrInvalidInputCode, "invalid request body", err))
		return
	}
	name, ok := legalUsername(c, h.logger, traceID, req.Name)
	if !ok {
		return
	}
	user, err := h.service.CreateUser(c.Request.Context(), traceID, env, name, req.Password)
	if err != nil {
		writeError(c, h.logger, traceID, err)
		return
	}
	writeOK(c, user)
}

// GetUser godoc
// @Summary      Get a user
// @Tags         User
// @Produce      json
// @Security     BearerAuth
// @Param        username  path    string  true   "user name"
// @Param        is-test   header  bool    false  "use the test partition"
// @Success      200  {object}  views.APIResponse{response=models.User}
// @Failure      404  {object}  pkg.ErrorResponse
// @Router       /user/{username} [get]
func (h *UserHandler) GetUser(c *gin.Context) {
	traceID, env, ok := requestScope(c, h.logger)
	if !ok {
		return
	}
	name, ok := legalUsername(c, h.logger, traceID, c.Param("username"))
	if !ok {
		return
	}
	user, err := h.service.GetUser(c.Request.Context(), traceID, env, name)
	if err != nil {
		writeError(c, h.logger, traceID, err)
		return
	}
	writeOK(c, user)
}

// UpdatePassword godoc
// @Summary      Change a user's password
// @Tags         User
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        username  path    string                 true   "user name"
// @Param        body      body    views.PasswordRequest  true   "new password"
// @Param        is-test   header  bool                   false  "use the test partition"
// @Success      200  {object}  views.APIResponse{response=models.User}
// @Failure      404  {object}  pkg.ErrorResponse
// @Router       /user/{username} [put]
func (h *UserHandler) UpdatePassword(c *gin.Context) {
	traceID, env, ok := requestScope(c, h.logger)
	if !ok {
		return
	}
	name, ok := legalUsername(c, h.logger, traceID, c.Param("username"))
	if !ok {
		return
	}
	var req views.PasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, h.logger, traceID, pkg.NewAppError(pkg.ErrInvalidInputCode, "invalid request body", err))
		return
	}
	user, err := h.service.UpdatePassword(c.Request.Context(), traceID, env, name, req.Password)
	if err != nil {
		writeError(c, h.logger, traceID, err)
		return
	}
	writeOK(c, user)
}

// DeleteUser godoc
// @Summary      Delete a user's credentials
// @Tags         User
// @Produce      json
// @Security     BearerAuth
// @Param        username  path    string  true   "user name"
// @Param        is-test   header  bool    false  "use the test partition"
// @Success      200  {object}  views.APIResponse
// @Failure      404  {object}  pkg.ErrorResponse
// @Router       /user/{username} [delete]
func (h *UserHandler) DeleteUser(c *gin.Context) {
	traceID, env, ok := requestScope(c, h.logger)
	if !ok {
		return
	}
	name, ok := legalUsername(c, h.logger, traceID, c.Param("username"))
	if !ok {
		return
	}
	if err := h.service.DeleteUser(c.Request.Context(), traceID, env, name); err != nil {
		writeError(c, h.logger, traceID, err)
		return
	}
	writeOK(c, gin.H{"deleted": name})
}

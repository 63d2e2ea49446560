package pkg

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/nimeshabuddhika/gojenga-ledger/pkg/store"
	"go.uber.org/zap"
)

var ExposeErrorDetails = false

func init() {
	if gin.DebugMode == gin.Mode() || gin.TestMode == gin.Mode() {
		ExposeErrorDetails = true
	}
}

// Reusable errors. They are joined into AppError causes so callers can use errors.Is.
var (
	ErrNotFound           = errors.New("record not found")
	ErrDuplicate          = errors.New("record already exists")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrTokenExpired       = errors.New("token has been expired")
	ErrTokenInvalid       = errors.New("token is invalid")
	ErrRecipientNotFound  = errors.New("recipient not found")
	ErrRollbackFailed     = errors.New("transfer rollback failed")
	ErrStore              = errors.New("store error")
)

// ErrorCode defines a standardized error code
type ErrorCode struct {
	Code    string
	Status  int
	Message string // default message
}

var (
	// Generic app
	ErrInvalidInputCode   = ErrorCode{Code: "APP_INVALID_INPUT", Status: http.StatusBadRequest, Message: "invalid input"}
	ErrIllegalNameCode    = ErrorCode{Code: "APP_ILLEGAL_USERNAME", Status: http.StatusPartialContent, Message: "please send legal username"}
	ErrServerCode         = ErrorCode{Code: "APP_INTERNAL", Status: http.StatusInternalServerError, Message: "internal server error"}
	ErrRecordNotFoundCode = ErrorCode{Code: "APP_NOT_FOUND", Status: http.StatusNotFound, Message: "record not found"}
	ErrRateLimitedCode    = ErrorCode{Code: "APP_RATE_LIMITED", Status: http.StatusTooManyRequests, Message: "too many requests"}

	// Authentication
	ErrUnauthorizedCode = ErrorCode{Code: "AUTH_UNAUTHORIZED", Status: http.StatusUnauthorized, Message: "could not validate credentials"}
	ErrTokenExpiredCode = ErrorCode{Code: "AUTH_TOKEN_EXPIRED", Status: http.StatusForbidden, Message: "token has been expired"}
	ErrInactiveUserCode = ErrorCode{Code: "AUTH_INACTIVE_USER", Status: http.StatusBadRequest, Message: "inactive user"}

	// Business/domain rules
	ErrRecipientNotFoundCode = ErrorCode{Code: "LEDGER_RECIPIENT_NOT_FOUND", Status: http.StatusNotFound, Message: "recipient not found"}
	ErrRollbackFailedCode    = ErrorCode{Code: "LEDGER_ROLLBACK_FAILED", Status: http.StatusInternalServerError, Message: "transfer failed and could not be rolled back"}

	// Store layer
	ErrStoreUnknownCode   = ErrorCode{Code: "STORE_UNKNOWN", Status: http.StatusInternalServerError, Message: "store error"}
	ErrStoreDuplicateCode = ErrorCode{Code: "STORE_DUPLICATE", Status: http.StatusConflict, Message: "duplicate record"}
)

type AppError struct {
	Code    ErrorCode
	Message string // public-facing message
	Cause   error  // internal cause (wrapped)
}

func (e AppError) Error() string {
	if e.Cause == nil {
		return e.Message
	}
	return fmt.Sprintf("%s: %v", e.Message, e.Cause)
}
func (e AppError) Unwrap() error { return e.Cause }

func NewAppError(code ErrorCode, msg string, cause error) error {
	return AppError{Code: code, Message: msg, Cause: cause}
}

// HasCode reports whether err is an AppError carrying code.
func HasCode(err error, code ErrorCode) bool {
	var appErr AppError
	if !errors.As(err, &appErr) {
		return false
	}
	return appErr.Code.Code == code.Code
}

// ErrorResponse defines the standardized error response format
type ErrorResponse struct {
	Status  int    `json:"-"`
	Code    string `json:"code"`
	Message string `json:"message"`
	Details string `json:"details,omitempty"`
}

// ToErrorResponse converts an error into an ErrorResponse, logging details and optionally exposing error messages.
// If the error is not an AppError, it is converted to a generic 500 error.
func ToErrorResponse(logger *zap.Logger, traceID string, err error) ErrorResponse {
	var appErr AppError
	if errors.As(err, &appErr) {
		resp := ErrorResponse{
			Status:  appErr.Code.Status,
			Code:    appErr.Code.Code,
			Message: appErr.Message,
		}
		if appErr.Code.Status >= http.StatusInternalServerError {
			logger.Error("application error", zap.String(TraceId, traceID), zap.Error(err))
		} else {
			logger.Warn("application error", zap.String(TraceId, traceID), zap.Error(err))
		}
		if ExposeErrorDetails {
			resp.Details = err.Error()
		}
		return resp
	}
	// Unknown error : 500
	resp := ErrorResponse{
		Status:  ErrServerCode.Status,
		Code:    ErrServerCode.Code,
		Message: ErrServerCode.Message,
	}
	logger.Error("application error", zap.String(TraceId, traceID), zap.Error(err))
	if ExposeErrorDetails {
		resp.Details = err.Error()
	}
	return resp
}

// HandleStoreError maps store errors -> AppError with proper codes/status.
// Raw store errors never leave the service layer uninterpreted.
func HandleStoreError(traceId string, logger *zap.Logger, err error) error {
	var appErr AppError
	if errors.As(err, &appErr) {
		return err
	}
	switch {
	case errors.Is(err, store.ErrNotFound):
		logger.Warn("store error : no records found", zap.String(TraceId, traceId))
		return NewAppError(ErrRecordNotFoundCode, "no records found", errors.Join(ErrNotFound, err))
	case errors.Is(err, store.ErrDuplicate):
		logger.Warn("store error : duplicate key", zap.String(TraceId, traceId))
		return NewAppError(ErrStoreDuplicateCode, "record already exists", errors.Join(ErrDuplicate, err))
	case errors.Is(err, store.ErrMalformedItem):
		logger.Error("store error : malformed item", zap.String(TraceId, traceId), zap.Error(err))
		return NewAppError(ErrStoreUnknownCode, "stored record is malformed", errors.Join(ErrStore, err))
	default:
		logger.Error("store error : unknown", zap.String(TraceId, traceId), zap.Error(err))
		return NewAppError(ErrStoreUnknownCode, "store error", errors.Join(ErrStore, err))
	}
}

package views

import (
	"time"

	"github.com/nimeshabuddhika/gojenga-ledger/pkg/models"
	"github.com/shopspring/decimal"
)

// APIResponse wraps every successful payload.
type APIResponse struct {
	Response interface{} `json:"response"`
}

// Receipt is the result of a completed transfer.
type Receipt struct {
	TransferID  string          `json:"transferId"`
	Sender      models.Account  `json:"sender"`
	Receiver    string          `json:"receiver"`
	Amount      decimal.Decimal `json:"amount"`
	CompletedAt time.Time       `json:"completedAt"`
}

type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	TokenType    string `json:"token_type"`
}

type RefreshRequest struct {
	Token string `json:"token" binding:"required"`
}

type RefreshResponse struct {
	Token string `json:"token"`
}

type AccountRequest struct {
	Name    string          `json:"name"`
	Balance decimal.Decimal `json:"balance"`
}

type UserRequest struct {
	Name     string `json:"name"`
	Password string `json:"password" binding:"required"`
}

type PasswordRequest struct {
	Password string `json:"password" binding:"required"`
}

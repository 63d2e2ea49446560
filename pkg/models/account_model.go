package models

import (
	"github.com/shopspring/decimal"
)

// Account is a ledger record, stored under its lowercase name.
type Account struct {
	Name    string          `json:"name"`
	Balance decimal.Decimal `json:"balance"`
}

// Transaction is a requested transfer. Amount is signed; a negative amount moves money the other way.
type Transaction struct {
	Sender   string          `json:"sender" binding:"required"`
	Receiver string          `json:"receiver" binding:"required"`
	Amount   decimal.Decimal `json:"amount"`
}

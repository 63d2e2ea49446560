package models

import (
	"github.com/shopspring/decimal"
)

type Holding struct {
	Symbol   string          `json:"symbol" binding:"required"`
	Quantity decimal.Decimal `json:"quantity"`
}

// Portfolio lists a user's holdings. Symbols are unique within a portfolio.
type Portfolio struct {
	Username string    `json:"username"`
	Holdings []Holding `json:"holdings"`
}

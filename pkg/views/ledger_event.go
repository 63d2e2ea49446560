package views

import (
	"time"

	"github.com/nimeshabuddhika/gojenga-ledger/pkg"
	"github.com/shopspring/decimal"
)

// LedgerEvent is published for every transfer outcome.
type LedgerEvent struct {
	ID          string              `json:"id"`
	TraceID     string              `json:"traceId"`
	Type        pkg.LedgerEventType `json:"type"`
	Environment pkg.Env             `json:"environment"`
	Sender      string              `json:"sender"`
	Receiver    string              `json:"receiver"`
	Amount      decimal.Decimal     `json:"amount"`
	Reason      string              `json:"reason,omitempty"`
	CreatedAt   time.Time           `json:"createdAt"`
}

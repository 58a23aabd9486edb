package models

import (
	"time"

	"github.com/google/uuid"
)

// Transaction currency and type enums. Embers fund project budgets,
// sparks pay for placing bids.
const (
	CurrencyEmber = "ember"
	CurrencySpark = "spark"

	TransactionReceived = "received"
	TransactionPayment  = "payment"
)

// Transaction is an append-only ledger record.
type Transaction struct {
	ID          uuid.UUID `json:"id"`
	UserID      uuid.UUID `json:"user"`
	Currency    string    `json:"currency"`
	Type        *string   `json:"type,omitempty"`
	Amount      int       `json:"amount"`
	Description *string   `json:"description,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

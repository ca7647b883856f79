package ledger

import (
	"errors"
	"time"
)

// Domain errors
var (
	ErrTransactionNotFound = errors.New("transaction not found")
	ErrLabelRequired       = errors.New("label is required")
	ErrAmountRequired      = errors.New("amount is required")
)

// Transaction is a single signed ledger entry for a card. Positive
// amounts are usage (charges), negative amounts are repayments.
// Entries are immutable once written; correction is delete + re-append.
type Transaction struct {
	ID                 string    `json:"id"`
	CardID             string    `json:"cardId"`
	TransactionDate    time.Time `json:"transactionDate"`
	Label              string    `json:"label"`
	Amount             float64   `json:"amount"`
	External           bool      `json:"external"`
	ExternalMultiplier float64   `json:"externalMultiplier"`
	CreatedAt          time.Time `json:"createdAt"`
	UpdatedAt          time.Time `json:"updatedAt"`
}

// AppendParams carries raw (pre-normalization) input for a new entry.
// Date and Amount are strings on purpose: the service owns
// normalization so every entry path (form, API, CSV) shares it.
type AppendParams struct {
	CardID             string
	Date               string
	Label              string
	Amount             string
	External           bool
	ExternalMultiplier float64
}

// CreateTransactionParams is the normalized shape handed to the repository.
type CreateTransactionParams struct {
	ID                 string
	CardID             string
	TransactionDate    time.Time
	Label              string
	Amount             float64
	External           bool
	ExternalMultiplier float64
}

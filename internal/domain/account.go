package domain

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

var (
	// ErrAccountNotFound indicates that the account is not found in the branch.
	ErrAccountNotFound = errors.New("account not found")
	// ErrInvalidBranch indicates that the requested branch does not exist.
	ErrInvalidBranch = errors.New("invalid branch")
	// ErrInvalidAccount indicates that the requested account does not exist in the branch.
	ErrInvalidAccount = errors.New("invalid account")
	// ErrInvalidAmount indicates that the amount is not greater than zero.
	ErrInvalidAmount = errors.New("amount must be greater than zero")
	// ErrInsufficientFunds indicates that the account balance does not cover the amount.
	ErrInsufficientFunds = errors.New("insufficient funds")
	// ErrPersistence indicates that the writes of an operation could not be committed.
	ErrPersistence = errors.New("persistence failure")
	// ErrRetrieval indicates that reading from a store failed unexpectedly.
	ErrRetrieval = errors.New("retrieval failure")
)

// Account holds the current account balance of a holder within a branch.
type Account struct {
	ID          int32           `json:"id"`
	BranchID    int32           `json:"branch_id"`
	HolderName  string          `json:"holder_name"`
	HolderTaxID string          `json:"holder_tax_id"`
	Balance     decimal.Decimal `json:"balance"`
	CreatedAt   time.Time       `json:"created_at"`
}

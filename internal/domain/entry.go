package domain

import (
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// Ledger entry descriptions.
const (
	DescriptionDeposit         = "Deposit"
	DescriptionWithdrawal      = "Withdrawal"
	DescriptionPreviousBalance = "Previous Balance"
	DescriptionOpeningBalance  = "Opening Balance"
)

// MaxStatementPeriod is the longest period a single statement may cover.
const MaxStatementPeriod = 120 * 24 * time.Hour

// EndOfDay returns the last instant of the day of t that PostgreSQL can store.
func EndOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d+1, 0, 0, 0, 0, t.Location()).Add(-time.Microsecond)
}

var (
	// ErrInvalidDateRange indicates that the statement start date is after its end date.
	ErrInvalidDateRange = errors.New("start date is after end date")
	// ErrRangeTooLong indicates that the statement period exceeds MaxStatementPeriod.
	ErrRangeTooLong = errors.New("statement period exceeds 120 days")
)

// Entry holds one balance change of an account.
type Entry struct {
	ID          int64           `json:"id,omitempty"`
	BranchID    int32           `json:"branch_id,omitempty"`
	AccountID   int32           `json:"account_id,omitempty"`
	Description string          `json:"description"`
	Amount      decimal.Decimal `json:"amount"` // can be negative or positive
	Balance     decimal.Decimal `json:"balance"`
	CreatedAt   time.Time       `json:"created_at,omitempty"`
}

// TransferToDescription describes the debit side of a transfer.
func TransferToDescription(branchID, accountID int32) string {
	return fmt.Sprintf("Transfer to AG %d CC %d", branchID, accountID)
}

// TransferFromDescription describes the credit side of a transfer.
func TransferFromDescription(branchID, accountID int32) string {
	return fmt.Sprintf("Transfer from AG %d CC %d", branchID, accountID)
}

// PreviousBalanceEntry returns the synthetic statement row holding the balance
// immediately before the statement period.
func PreviousBalanceEntry(balance decimal.Decimal) Entry {
	return Entry{
		Description: DescriptionPreviousBalance,
		Balance:     balance,
	}
}

package domain

import "errors"

// ErrSameAccount indicates that the transfer source and destination are the same account.
var ErrSameAccount = errors.New("transfer to the same account")

// TransferResult is the result of the transfer transaction.
type TransferResult struct {
	FromAccount Account `json:"from_account"`
	ToAccount   Account `json:"to_account"`
	FromEntry   Entry   `json:"from_entry"`
	ToEntry     Entry   `json:"to_entry"`
}

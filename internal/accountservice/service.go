// Package accountservice manages business logic layer of current accounts.
package accountservice

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-petr/current-account/internal/domain"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"
)

//go:generate mockgen -source service.go -destination service_mock.go -package accountservice

// BranchRepo provides branch lookups needed by account service layer.
type BranchRepo interface {
	Get(ctx context.Context, id int32) (domain.Branch, error)
}

// AccountRepo provides account data access needed by account service layer.
type AccountRepo interface {
	Get(ctx context.Context, branchID, accountID int32) (domain.Account, error)
	Save(ctx context.Context, account domain.Account) (domain.Account, error)
}

// EntryRepo provides ledger data access needed by account service layer.
type EntryRepo interface {
	Create(ctx context.Context, entry domain.Entry) (domain.Entry, error)
	ListByPeriod(ctx context.Context, branchID, accountID int32, start, end time.Time) ([]domain.Entry, error)
	PreviousBalance(ctx context.Context, branchID, accountID int32, start, end time.Time) (decimal.Decimal, error)
}

// TxManager runs fn inside a single transaction which is committed when fn
// returns nil and rolled back otherwise.
type TxManager interface {
	Do(ctx context.Context, fn func(ctx context.Context) error) error
}

// Service facilitates account service layer logic.
type Service struct {
	branches BranchRepo
	accounts AccountRepo
	entries  EntryRepo
	tm       TxManager
	now      func() time.Time
}

// New returns account service struct to manage current account business logic.
func New(br BranchRepo, ar AccountRepo, er EntryRepo, tm TxManager) *Service {
	return &Service{
		branches: br,
		accounts: ar,
		entries:  er,
		tm:       tm,
		now:      time.Now,
	}
}

// account validates that the branch and the account exist and returns the account.
func (s *Service) account(ctx context.Context, branchID, accountID int32) (domain.Account, error) {
	l := zerolog.Ctx(ctx)

	if _, err := s.branches.Get(ctx, branchID); err != nil {
		if errors.Is(err, domain.ErrBranchNotFound) {
			l.Info().Int32("branch_id", branchID).Err(domain.ErrInvalidBranch).Send()
			return domain.Account{}, domain.ErrInvalidBranch
		}

		l.Error().Err(err).Send()

		return domain.Account{}, fmt.Errorf("%w: %w", domain.ErrRetrieval, err)
	}

	account, err := s.accounts.Get(ctx, branchID, accountID)
	if err != nil {
		if errors.Is(err, domain.ErrAccountNotFound) {
			l.Info().Int32("branch_id", branchID).Int32("account_id", accountID).Err(domain.ErrInvalidAccount).Send()
			return domain.Account{}, domain.ErrInvalidAccount
		}

		l.Error().Err(err).Send()

		return domain.Account{}, fmt.Errorf("%w: %w", domain.ErrRetrieval, err)
	}

	return account, nil
}

// apply moves the account balance by the signed amount and returns the matching ledger entry.
func (s *Service) apply(account *domain.Account, amount decimal.Decimal, description string, at time.Time) domain.Entry {
	account.Balance = account.Balance.Add(amount)

	return domain.Entry{
		BranchID:    account.BranchID,
		AccountID:   account.ID,
		Description: description,
		Amount:      amount,
		Balance:     account.Balance,
		CreatedAt:   at,
	}
}

// persist saves the given accounts and entries as one atomic unit.
func (s *Service) persist(ctx context.Context, accounts []*domain.Account, entries []*domain.Entry) error {
	err := s.tm.Do(ctx, func(ctx context.Context) error {
		for _, a := range accounts {
			saved, err := s.accounts.Save(ctx, *a)
			if err != nil {
				return err
			}

			*a = saved
		}

		for _, e := range entries {
			created, err := s.entries.Create(ctx, *e)
			if err != nil {
				return err
			}

			*e = created
		}

		return nil
	})
	if err != nil {
		zerolog.Ctx(ctx).Error().Err(err).Send()
		return fmt.Errorf("%w: %w", domain.ErrPersistence, err)
	}

	return nil
}

// Deposit credits the account with amount.
func (s *Service) Deposit(ctx context.Context, branchID, accountID int32, amount decimal.Decimal) (domain.Entry, error) {
	account, err := s.account(ctx, branchID, accountID)
	if err != nil {
		return domain.Entry{}, err
	}

	if amount.LessThanOrEqual(decimal.Zero) {
		return domain.Entry{}, domain.ErrInvalidAmount
	}

	entry := s.apply(&account, amount, domain.DescriptionDeposit, s.now())

	if err := s.persist(ctx, []*domain.Account{&account}, []*domain.Entry{&entry}); err != nil {
		return domain.Entry{}, err
	}

	return entry, nil
}

// Withdraw debits the account with amount if the balance covers it.
func (s *Service) Withdraw(ctx context.Context, branchID, accountID int32, amount decimal.Decimal) (domain.Entry, error) {
	account, err := s.account(ctx, branchID, accountID)
	if err != nil {
		return domain.Entry{}, err
	}

	if amount.LessThanOrEqual(decimal.Zero) {
		return domain.Entry{}, domain.ErrInvalidAmount
	}

	if amount.GreaterThan(account.Balance) {
		return domain.Entry{}, domain.ErrInsufficientFunds
	}

	entry := s.apply(&account, amount.Neg(), domain.DescriptionWithdrawal, s.now())

	if err := s.persist(ctx, []*domain.Account{&account}, []*domain.Entry{&entry}); err != nil {
		return domain.Entry{}, err
	}

	return entry, nil
}

// Transfer moves amount from the source account to the destination account.
//
// Both balance updates and both ledger entries are written within a single transaction.
func (s *Service) Transfer(ctx context.Context, fromBranchID, fromAccountID int32, amount decimal.Decimal, toBranchID, toAccountID int32) (domain.TransferResult, error) {
	from, err := s.account(ctx, fromBranchID, fromAccountID)
	if err != nil {
		return domain.TransferResult{}, err
	}

	if amount.LessThanOrEqual(decimal.Zero) {
		return domain.TransferResult{}, domain.ErrInvalidAmount
	}

	if amount.GreaterThan(from.Balance) {
		return domain.TransferResult{}, domain.ErrInsufficientFunds
	}

	to, err := s.account(ctx, toBranchID, toAccountID)
	if err != nil {
		return domain.TransferResult{}, err
	}

	if from.BranchID == to.BranchID && from.ID == to.ID {
		return domain.TransferResult{}, domain.ErrSameAccount
	}

	now := s.now()

	result := domain.TransferResult{
		FromEntry: s.apply(&from, amount.Neg(), domain.TransferToDescription(toBranchID, toAccountID), now),
		ToEntry:   s.apply(&to, amount, domain.TransferFromDescription(fromBranchID, fromAccountID), now),
	}

	err = s.persist(ctx,
		[]*domain.Account{&from, &to},
		[]*domain.Entry{&result.FromEntry, &result.ToEntry},
	)
	if err != nil {
		return domain.TransferResult{}, err
	}

	result.FromAccount, result.ToAccount = from, to

	return result, nil
}

// Balance returns the current balance of the account.
func (s *Service) Balance(ctx context.Context, branchID, accountID int32) (decimal.Decimal, error) {
	account, err := s.account(ctx, branchID, accountID)
	if err != nil {
		return decimal.Zero, err
	}

	return account.Balance, nil
}

// Statement returns the ledger entries of the account within [start, end]
// preceded by the synthetic previous balance entry.
func (s *Service) Statement(ctx context.Context, branchID, accountID int32, start, end time.Time) ([]domain.Entry, error) {
	l := zerolog.Ctx(ctx)

	if _, err := s.account(ctx, branchID, accountID); err != nil {
		return nil, err
	}

	if start.After(end) {
		return nil, domain.ErrInvalidDateRange
	}

	if end.Sub(start) > domain.MaxStatementPeriod {
		return nil, domain.ErrRangeTooLong
	}

	var (
		entries  []domain.Entry
		previous decimal.Decimal
	)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		var err error
		entries, err = s.entries.ListByPeriod(gctx, branchID, accountID, start, end)
		return err
	})

	g.Go(func() error {
		var err error
		previous, err = s.entries.PreviousBalance(gctx, branchID, accountID, start, end)
		return err
	})

	if err := g.Wait(); err != nil {
		l.Error().Err(err).Send()
		return nil, fmt.Errorf("%w: %w", domain.ErrRetrieval, err)
	}

	statement := make([]domain.Entry, 0, len(entries)+1)
	statement = append(statement, domain.PreviousBalanceEntry(previous))
	statement = append(statement, entries...)

	return statement, nil
}

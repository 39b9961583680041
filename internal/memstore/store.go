// Package memstore provides in-memory branch, account and ledger repositories
// together with a transaction manager that commits staged writes atomically.
package memstore

import (
	"context"
	"sync"
	"time"

	"github.com/go-petr/current-account/internal/domain"
	"github.com/shopspring/decimal"
)

type accountKey struct {
	branchID  int32
	accountID int32
}

// Store holds all in-memory data. Use its repository views to access it.
type Store struct {
	mu          sync.RWMutex
	branches    map[int32]domain.Branch
	accounts    map[accountKey]domain.Account
	entries     []domain.Entry
	nextEntryID int64
}

// New returns an empty Store.
func New() *Store {
	return &Store{
		branches: make(map[int32]domain.Branch),
		accounts: make(map[accountKey]domain.Account),
	}
}

// AddBranch registers a branch.
func (s *Store) AddBranch(b domain.Branch) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.branches[b.ID] = b
}

// AddAccount registers an account. A non-zero balance is recorded as an
// opening ledger entry at the account creation time.
func (s *Store) AddAccount(a domain.Account) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if a.CreatedAt.IsZero() {
		a.CreatedAt = time.Now().UTC()
	}

	s.accounts[accountKey{a.BranchID, a.ID}] = a

	if a.Balance.IsZero() {
		return
	}

	s.nextEntryID++
	s.entries = append(s.entries, domain.Entry{
		ID:          s.nextEntryID,
		BranchID:    a.BranchID,
		AccountID:   a.ID,
		Description: domain.DescriptionOpeningBalance,
		Amount:      a.Balance,
		Balance:     a.Balance,
		CreatedAt:   a.CreatedAt,
	})
}

// Branches returns the branch repository view of the store.
func (s *Store) Branches() *BranchRepo {
	return &BranchRepo{s: s}
}

// Accounts returns the account repository view of the store.
func (s *Store) Accounts() *AccountRepo {
	return &AccountRepo{s: s}
}

// Entries returns the ledger repository view of the store.
func (s *Store) Entries() *EntryRepo {
	return &EntryRepo{s: s}
}

// TxManager returns the transaction manager of the store.
func (s *Store) TxManager() *TxManager {
	return &TxManager{s: s}
}

// tx stages writes until commit.
type tx struct {
	mu       sync.Mutex
	accounts map[accountKey]domain.Account
	entries  []domain.Entry
}

type txKey struct{}

func txFromContext(ctx context.Context) (*tx, bool) {
	t, ok := ctx.Value(txKey{}).(*tx)
	return t, ok
}

// TxManager runs functions within an all-or-nothing scope.
type TxManager struct {
	s *Store
}

// Do runs fn with a context carrying a new transaction and commits the staged
// writes when fn returns nil. A call within an existing transaction joins it.
func (m *TxManager) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	if _, ok := txFromContext(ctx); ok {
		return fn(ctx)
	}

	t := &tx{accounts: make(map[accountKey]domain.Account)}

	if err := fn(context.WithValue(ctx, txKey{}, t)); err != nil {
		return err
	}

	m.s.mu.Lock()
	defer m.s.mu.Unlock()

	for k, a := range t.accounts {
		m.s.accounts[k] = a
	}

	m.s.entries = append(m.s.entries, t.entries...)

	return nil
}

// BranchRepo is the in-memory branch lookup.
type BranchRepo struct {
	s *Store
}

// Get returns the branch with the given id.
func (r *BranchRepo) Get(_ context.Context, id int32) (domain.Branch, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	b, ok := r.s.branches[id]
	if !ok {
		return domain.Branch{}, domain.ErrBranchNotFound
	}

	return b, nil
}

// AccountRepo is the in-memory account store.
type AccountRepo struct {
	s *Store
}

// Get returns the account with the given id within the branch.
func (r *AccountRepo) Get(ctx context.Context, branchID, accountID int32) (domain.Account, error) {
	k := accountKey{branchID, accountID}

	if t, ok := txFromContext(ctx); ok {
		t.mu.Lock()
		a, staged := t.accounts[k]
		t.mu.Unlock()

		if staged {
			return a, nil
		}
	}

	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	a, ok := r.s.accounts[k]
	if !ok {
		return domain.Account{}, domain.ErrAccountNotFound
	}

	return a, nil
}

// Save upserts the account.
func (r *AccountRepo) Save(ctx context.Context, account domain.Account) (domain.Account, error) {
	k := accountKey{account.BranchID, account.ID}

	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.branches[account.BranchID]; !ok {
		return domain.Account{}, domain.ErrBranchNotFound
	}

	if existing, ok := r.s.accounts[k]; ok {
		account.CreatedAt = existing.CreatedAt
	} else if account.CreatedAt.IsZero() {
		account.CreatedAt = time.Now().UTC()
	}

	if t, ok := txFromContext(ctx); ok {
		t.mu.Lock()
		t.accounts[k] = account
		t.mu.Unlock()

		return account, nil
	}

	r.s.accounts[k] = account

	return account, nil
}

// EntryRepo is the in-memory append-only ledger.
type EntryRepo struct {
	s *Store
}

// Create appends the entry and returns it with its assigned id.
func (r *EntryRepo) Create(ctx context.Context, entry domain.Entry) (domain.Entry, error) {
	k := accountKey{entry.BranchID, entry.AccountID}
	t, inTx := txFromContext(ctx)

	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	_, exists := r.s.accounts[k]
	if !exists && inTx {
		t.mu.Lock()
		_, exists = t.accounts[k]
		t.mu.Unlock()
	}

	if !exists {
		return domain.Entry{}, domain.ErrAccountNotFound
	}

	// Ids are taken when staged so callers get them back before commit. Like a
	// database sequence, a rolled back transaction leaves a gap.
	r.s.nextEntryID++
	entry.ID = r.s.nextEntryID

	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now().UTC()
	}

	if inTx {
		t.mu.Lock()
		t.entries = append(t.entries, entry)
		t.mu.Unlock()

		return entry, nil
	}

	r.s.entries = append(r.s.entries, entry)

	return entry, nil
}

// accountEntries returns the entries of the account in insertion order,
// including the ones staged by the transaction in ctx.
func (r *EntryRepo) accountEntries(ctx context.Context, branchID, accountID int32) []domain.Entry {
	var items []domain.Entry

	r.s.mu.RLock()
	for _, e := range r.s.entries {
		if e.BranchID == branchID && e.AccountID == accountID {
			items = append(items, e)
		}
	}
	r.s.mu.RUnlock()

	if t, ok := txFromContext(ctx); ok {
		t.mu.Lock()
		for _, e := range t.entries {
			if e.BranchID == branchID && e.AccountID == accountID {
				items = append(items, e)
			}
		}
		t.mu.Unlock()
	}

	return items
}

// ListByPeriod returns the account entries created within [start, end].
func (r *EntryRepo) ListByPeriod(ctx context.Context, branchID, accountID int32, start, end time.Time) ([]domain.Entry, error) {
	items := []domain.Entry{}

	for _, e := range r.accountEntries(ctx, branchID, accountID) {
		if !e.CreatedAt.Before(start) && !e.CreatedAt.After(end) {
			items = append(items, e)
		}
	}

	return items, nil
}

// PreviousBalance returns the balance left by the last entry before start, or zero.
func (r *EntryRepo) PreviousBalance(ctx context.Context, branchID, accountID int32, start, _ time.Time) (decimal.Decimal, error) {
	balance := decimal.Zero

	for _, e := range r.accountEntries(ctx, branchID, accountID) {
		if e.CreatedAt.Before(start) {
			balance = e.Balance
		}
	}

	return balance, nil
}

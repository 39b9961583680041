package accountservice

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/go-petr/current-account/internal/domain"
	"github.com/go-petr/current-account/pkg/randompkg"
	"github.com/golang/mock/gomock"
	"github.com/google/go-cmp/cmp"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

var (
	testNow   = time.Date(2024, time.March, 10, 14, 30, 0, 0, time.UTC)
	errDB     = errors.New("connection reset")
	decimalEq = cmp.Comparer(func(x, y decimal.Decimal) bool { return x.Equal(y) })
)

type mocks struct {
	branches *MockBranchRepo
	accounts *MockAccountRepo
	entries  *MockEntryRepo
	tm       *MockTxManager
}

func newTestService(t *testing.T) (*Service, mocks) {
	t.Helper()

	ctrl := gomock.NewController(t)

	m := mocks{
		branches: NewMockBranchRepo(ctrl),
		accounts: NewMockAccountRepo(ctrl),
		entries:  NewMockEntryRepo(ctrl),
		tm:       NewMockTxManager(ctrl),
	}

	s := New(m.branches, m.accounts, m.entries, m.tm)
	s.now = func() time.Time { return testNow }

	return s, m
}

func runTx(ctx context.Context, fn func(context.Context) error) error {
	return fn(ctx)
}

func randomAccount(branchID, id int32, balance int64) domain.Account {
	return domain.Account{
		ID:          id,
		BranchID:    branchID,
		HolderName:  randompkg.HolderName(),
		HolderTaxID: randompkg.TaxID(),
		Balance:     decimal.NewFromInt(balance),
	}
}

func returnSaved(_ context.Context, a domain.Account) (domain.Account, error) {
	return a, nil
}

func returnCreated(_ context.Context, e domain.Entry) (domain.Entry, error) {
	e.ID = int64(randompkg.IntBetween(1, 1_000))
	return e, nil
}

func TestDeposit(t *testing.T) {
	branch := domain.Branch{ID: 100, Name: "Downtown"}
	account := randomAccount(branch.ID, 555, 100)

	testCases := []struct {
		name       string
		branchID   int32
		accountID  int32
		amount     decimal.Decimal
		buildStubs func(m mocks)
		wantErr    error
		wantEntry  domain.Entry
	}{
		{
			name:      "OK",
			branchID:  branch.ID,
			accountID: account.ID,
			amount:    decimal.NewFromInt(50),
			buildStubs: func(m mocks) {
				m.branches.EXPECT().Get(gomock.Any(), gomock.Eq(branch.ID)).Times(1).Return(branch, nil)
				m.accounts.EXPECT().Get(gomock.Any(), gomock.Eq(branch.ID), gomock.Eq(account.ID)).Times(1).Return(account, nil)
				m.tm.EXPECT().Do(gomock.Any(), gomock.Any()).Times(1).DoAndReturn(runTx)

				saved := account
				saved.Balance = decimal.NewFromInt(150)
				m.accounts.EXPECT().Save(gomock.Any(), gomock.Eq(saved)).Times(1).DoAndReturn(returnSaved)
				m.entries.EXPECT().Create(gomock.Any(), gomock.Eq(domain.Entry{
					BranchID:    branch.ID,
					AccountID:   account.ID,
					Description: domain.DescriptionDeposit,
					Amount:      decimal.NewFromInt(50),
					Balance:     decimal.NewFromInt(150),
					CreatedAt:   testNow,
				})).Times(1).DoAndReturn(returnCreated)
			},
			wantEntry: domain.Entry{
				BranchID:    branch.ID,
				AccountID:   account.ID,
				Description: "Deposit",
				Amount:      decimal.NewFromInt(50),
				Balance:     decimal.NewFromInt(150),
				CreatedAt:   testNow,
			},
		},
		{
			name:      "InvalidBranch",
			branchID:  0,
			accountID: account.ID,
			amount:    decimal.NewFromInt(50),
			buildStubs: func(m mocks) {
				m.branches.EXPECT().Get(gomock.Any(), gomock.Eq(int32(0))).Times(1).Return(domain.Branch{}, domain.ErrBranchNotFound)
				m.accounts.EXPECT().Get(gomock.Any(), gomock.Any(), gomock.Any()).Times(0)
				m.tm.EXPECT().Do(gomock.Any(), gomock.Any()).Times(0)
			},
			wantErr: domain.ErrInvalidBranch,
		},
		{
			name:      "InvalidAccount",
			branchID:  branch.ID,
			accountID: 1234,
			amount:    decimal.NewFromInt(50),
			buildStubs: func(m mocks) {
				m.branches.EXPECT().Get(gomock.Any(), gomock.Eq(branch.ID)).Times(1).Return(branch, nil)
				m.accounts.EXPECT().Get(gomock.Any(), gomock.Eq(branch.ID), gomock.Eq(int32(1234))).Times(1).Return(domain.Account{}, domain.ErrAccountNotFound)
				m.tm.EXPECT().Do(gomock.Any(), gomock.Any()).Times(0)
			},
			wantErr: domain.ErrInvalidAccount,
		},
		{
			name:      "ZeroAmount",
			branchID:  branch.ID,
			accountID: account.ID,
			amount:    decimal.Zero,
			buildStubs: func(m mocks) {
				m.branches.EXPECT().Get(gomock.Any(), gomock.Any()).Times(1).Return(branch, nil)
				m.accounts.EXPECT().Get(gomock.Any(), gomock.Any(), gomock.Any()).Times(1).Return(account, nil)
				m.tm.EXPECT().Do(gomock.Any(), gomock.Any()).Times(0)
			},
			wantErr: domain.ErrInvalidAmount,
		},
		{
			name:      "NegativeAmount",
			branchID:  branch.ID,
			accountID: account.ID,
			amount:    decimal.NewFromInt(-10),
			buildStubs: func(m mocks) {
				m.branches.EXPECT().Get(gomock.Any(), gomock.Any()).Times(1).Return(branch, nil)
				m.accounts.EXPECT().Get(gomock.Any(), gomock.Any(), gomock.Any()).Times(1).Return(account, nil)
				m.tm.EXPECT().Do(gomock.Any(), gomock.Any()).Times(0)
			},
			wantErr: domain.ErrInvalidAmount,
		},
		{
			name:      "BranchLookupFailure",
			branchID:  branch.ID,
			accountID: account.ID,
			amount:    decimal.NewFromInt(50),
			buildStubs: func(m mocks) {
				m.branches.EXPECT().Get(gomock.Any(), gomock.Any()).Times(1).Return(domain.Branch{}, errDB)
				m.accounts.EXPECT().Get(gomock.Any(), gomock.Any(), gomock.Any()).Times(0)
			},
			wantErr: domain.ErrRetrieval,
		},
		{
			name:      "EntryCreateFailure",
			branchID:  branch.ID,
			accountID: account.ID,
			amount:    decimal.NewFromInt(50),
			buildStubs: func(m mocks) {
				m.branches.EXPECT().Get(gomock.Any(), gomock.Any()).Times(1).Return(branch, nil)
				m.accounts.EXPECT().Get(gomock.Any(), gomock.Any(), gomock.Any()).Times(1).Return(account, nil)
				m.tm.EXPECT().Do(gomock.Any(), gomock.Any()).Times(1).DoAndReturn(runTx)
				m.accounts.EXPECT().Save(gomock.Any(), gomock.Any()).Times(1).DoAndReturn(returnSaved)
				m.entries.EXPECT().Create(gomock.Any(), gomock.Any()).Times(1).Return(domain.Entry{}, errDB)
			},
			wantErr: domain.ErrPersistence,
		},
		{
			name:      "CommitFailure",
			branchID:  branch.ID,
			accountID: account.ID,
			amount:    decimal.NewFromInt(50),
			buildStubs: func(m mocks) {
				m.branches.EXPECT().Get(gomock.Any(), gomock.Any()).Times(1).Return(branch, nil)
				m.accounts.EXPECT().Get(gomock.Any(), gomock.Any(), gomock.Any()).Times(1).Return(account, nil)
				m.tm.EXPECT().Do(gomock.Any(), gomock.Any()).Times(1).Return(errDB)
			},
			wantErr: domain.ErrPersistence,
		},
	}

	for i := range testCases {
		tc := testCases[i]

		t.Run(tc.name, func(t *testing.T) {
			s, m := newTestService(t)
			tc.buildStubs(m)

			got, err := s.Deposit(context.Background(), tc.branchID, tc.accountID, tc.amount)
			if tc.wantErr != nil {
				require.ErrorIs(t, err, tc.wantErr)
				require.Empty(t, got)

				return
			}

			require.NoError(t, err)
			require.NotZero(t, got.ID)

			if diff := cmp.Diff(tc.wantEntry, got, decimalEq, cmp.FilterPath(func(p cmp.Path) bool {
				return p.String() == "ID"
			}, cmp.Ignore())); diff != "" {
				t.Errorf("Deposit() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestPersistenceErrorKeepsCause(t *testing.T) {
	s, m := newTestService(t)
	account := randomAccount(100, 555, 100)

	m.branches.EXPECT().Get(gomock.Any(), gomock.Any()).Return(domain.Branch{ID: 100}, nil)
	m.accounts.EXPECT().Get(gomock.Any(), gomock.Any(), gomock.Any()).Return(account, nil)
	m.tm.EXPECT().Do(gomock.Any(), gomock.Any()).Return(errDB)

	_, err := s.Withdraw(context.Background(), 100, 555, decimal.NewFromInt(10))
	require.ErrorIs(t, err, domain.ErrPersistence)
	require.ErrorIs(t, err, errDB)
	require.EqualError(t, err, "persistence failure: connection reset")
}

func TestWithdraw(t *testing.T) {
	branch := domain.Branch{ID: 100}
	account := randomAccount(branch.ID, 555, 100)

	testCases := []struct {
		name        string
		amount      decimal.Decimal
		buildStubs  func(m mocks)
		wantErr     error
		wantAmount  decimal.Decimal
		wantBalance decimal.Decimal
	}{
		{
			name:   "OK",
			amount: decimal.RequireFromString("30.25"),
			buildStubs: func(m mocks) {
				m.tm.EXPECT().Do(gomock.Any(), gomock.Any()).Times(1).DoAndReturn(runTx)
				m.accounts.EXPECT().Save(gomock.Any(), gomock.Any()).Times(1).DoAndReturn(returnSaved)
				m.entries.EXPECT().Create(gomock.Any(), gomock.Any()).Times(1).DoAndReturn(returnCreated)
			},
			wantAmount:  decimal.RequireFromString("-30.25"),
			wantBalance: decimal.RequireFromString("69.75"),
		},
		{
			name:   "WholeBalance",
			amount: decimal.NewFromInt(100),
			buildStubs: func(m mocks) {
				m.tm.EXPECT().Do(gomock.Any(), gomock.Any()).Times(1).DoAndReturn(runTx)
				m.accounts.EXPECT().Save(gomock.Any(), gomock.Any()).Times(1).DoAndReturn(returnSaved)
				m.entries.EXPECT().Create(gomock.Any(), gomock.Any()).Times(1).DoAndReturn(returnCreated)
			},
			wantAmount:  decimal.NewFromInt(-100),
			wantBalance: decimal.Zero,
		},
		{
			name:   "InsufficientFunds",
			amount: decimal.RequireFromString("100.01"),
			buildStubs: func(m mocks) {
				m.tm.EXPECT().Do(gomock.Any(), gomock.Any()).Times(0)
			},
			wantErr: domain.ErrInsufficientFunds,
		},
		{
			name:   "InvalidAmount",
			amount: decimal.Zero,
			buildStubs: func(m mocks) {
				m.tm.EXPECT().Do(gomock.Any(), gomock.Any()).Times(0)
			},
			wantErr: domain.ErrInvalidAmount,
		},
	}

	for i := range testCases {
		tc := testCases[i]

		t.Run(tc.name, func(t *testing.T) {
			s, m := newTestService(t)
			m.branches.EXPECT().Get(gomock.Any(), gomock.Eq(branch.ID)).Times(1).Return(branch, nil)
			m.accounts.EXPECT().Get(gomock.Any(), gomock.Eq(branch.ID), gomock.Eq(account.ID)).Times(1).Return(account, nil)
			tc.buildStubs(m)

			got, err := s.Withdraw(context.Background(), branch.ID, account.ID, tc.amount)
			if tc.wantErr != nil {
				require.ErrorIs(t, err, tc.wantErr)
				return
			}

			require.NoError(t, err)
			require.Equal(t, domain.DescriptionWithdrawal, got.Description)
			require.True(t, tc.wantAmount.Equal(got.Amount), got.Amount.String())
			require.True(t, tc.wantBalance.Equal(got.Balance), got.Balance.String())
			require.Equal(t, testNow, got.CreatedAt)
		})
	}
}

func TestWithdrawInvalidBranch(t *testing.T) {
	s, m := newTestService(t)

	m.branches.EXPECT().Get(gomock.Any(), gomock.Eq(int32(0))).Times(1).Return(domain.Branch{}, domain.ErrBranchNotFound)
	m.accounts.EXPECT().Get(gomock.Any(), gomock.Any(), gomock.Any()).Times(0)

	_, err := s.Withdraw(context.Background(), 0, 555, decimal.NewFromInt(50))
	require.ErrorIs(t, err, domain.ErrInvalidBranch)
	require.EqualError(t, err, "invalid branch")
}

func TestTransfer(t *testing.T) {
	fromBranch := domain.Branch{ID: 100}
	toBranch := domain.Branch{ID: 200}
	from := randomAccount(fromBranch.ID, 555, 100)
	to := randomAccount(toBranch.ID, 700, 200)
	amount := decimal.NewFromInt(50)

	type input struct {
		fromBranchID  int32
		fromAccountID int32
		amount        decimal.Decimal
		toBranchID    int32
		toAccountID   int32
	}

	valid := input{fromBranch.ID, from.ID, amount, toBranch.ID, to.ID}

	testCases := []struct {
		name       string
		input      input
		buildStubs func(m mocks)
		wantErr    error
	}{
		{
			name:  "InvalidSourceBranch",
			input: input{1, from.ID, amount, toBranch.ID, to.ID},
			buildStubs: func(m mocks) {
				m.branches.EXPECT().Get(gomock.Any(), gomock.Eq(int32(1))).Times(1).Return(domain.Branch{}, domain.ErrBranchNotFound)
			},
			wantErr: domain.ErrInvalidBranch,
		},
		{
			name:  "InvalidSourceAccount",
			input: input{fromBranch.ID, 1, amount, toBranch.ID, to.ID},
			buildStubs: func(m mocks) {
				m.branches.EXPECT().Get(gomock.Any(), gomock.Eq(fromBranch.ID)).Times(1).Return(fromBranch, nil)
				m.accounts.EXPECT().Get(gomock.Any(), gomock.Eq(fromBranch.ID), gomock.Eq(int32(1))).Times(1).Return(domain.Account{}, domain.ErrAccountNotFound)
			},
			wantErr: domain.ErrInvalidAccount,
		},
		{
			// The amount is checked before the destination is looked up.
			name:  "InvalidAmountBeforeDestination",
			input: input{fromBranch.ID, from.ID, decimal.NewFromInt(-1), 1, 1},
			buildStubs: func(m mocks) {
				m.branches.EXPECT().Get(gomock.Any(), gomock.Eq(fromBranch.ID)).Times(1).Return(fromBranch, nil)
				m.accounts.EXPECT().Get(gomock.Any(), gomock.Eq(fromBranch.ID), gomock.Eq(from.ID)).Times(1).Return(from, nil)
			},
			wantErr: domain.ErrInvalidAmount,
		},
		{
			name:  "InsufficientFundsBeforeDestination",
			input: input{fromBranch.ID, from.ID, decimal.NewFromInt(101), 1, 1},
			buildStubs: func(m mocks) {
				m.branches.EXPECT().Get(gomock.Any(), gomock.Eq(fromBranch.ID)).Times(1).Return(fromBranch, nil)
				m.accounts.EXPECT().Get(gomock.Any(), gomock.Eq(fromBranch.ID), gomock.Eq(from.ID)).Times(1).Return(from, nil)
			},
			wantErr: domain.ErrInsufficientFunds,
		},
		{
			name:  "InvalidDestinationBranch",
			input: input{fromBranch.ID, from.ID, amount, 999, to.ID},
			buildStubs: func(m mocks) {
				gomock.InOrder(
					m.branches.EXPECT().Get(gomock.Any(), gomock.Eq(fromBranch.ID)).Return(fromBranch, nil),
					m.branches.EXPECT().Get(gomock.Any(), gomock.Eq(int32(999))).Return(domain.Branch{}, domain.ErrBranchNotFound),
				)
				m.accounts.EXPECT().Get(gomock.Any(), gomock.Eq(fromBranch.ID), gomock.Eq(from.ID)).Times(1).Return(from, nil)
			},
			wantErr: domain.ErrInvalidBranch,
		},
		{
			name:  "InvalidDestinationAccount",
			input: input{fromBranch.ID, from.ID, amount, toBranch.ID, 999},
			buildStubs: func(m mocks) {
				m.branches.EXPECT().Get(gomock.Any(), gomock.Eq(fromBranch.ID)).Return(fromBranch, nil)
				m.branches.EXPECT().Get(gomock.Any(), gomock.Eq(toBranch.ID)).Return(toBranch, nil)
				m.accounts.EXPECT().Get(gomock.Any(), gomock.Eq(fromBranch.ID), gomock.Eq(from.ID)).Return(from, nil)
				m.accounts.EXPECT().Get(gomock.Any(), gomock.Eq(toBranch.ID), gomock.Eq(int32(999))).Return(domain.Account{}, domain.ErrAccountNotFound)
			},
			wantErr: domain.ErrInvalidAccount,
		},
		{
			name:  "SameAccount",
			input: input{fromBranch.ID, from.ID, amount, fromBranch.ID, from.ID},
			buildStubs: func(m mocks) {
				m.branches.EXPECT().Get(gomock.Any(), gomock.Eq(fromBranch.ID)).Times(2).Return(fromBranch, nil)
				m.accounts.EXPECT().Get(gomock.Any(), gomock.Eq(fromBranch.ID), gomock.Eq(from.ID)).Times(2).Return(from, nil)
			},
			wantErr: domain.ErrSameAccount,
		},
		{
			name:  "PersistenceFailure",
			input: valid,
			buildStubs: func(m mocks) {
				m.branches.EXPECT().Get(gomock.Any(), gomock.Eq(fromBranch.ID)).Return(fromBranch, nil)
				m.branches.EXPECT().Get(gomock.Any(), gomock.Eq(toBranch.ID)).Return(toBranch, nil)
				m.accounts.EXPECT().Get(gomock.Any(), gomock.Eq(fromBranch.ID), gomock.Eq(from.ID)).Return(from, nil)
				m.accounts.EXPECT().Get(gomock.Any(), gomock.Eq(toBranch.ID), gomock.Eq(to.ID)).Return(to, nil)
				m.tm.EXPECT().Do(gomock.Any(), gomock.Any()).Times(1).DoAndReturn(runTx)
				m.accounts.EXPECT().Save(gomock.Any(), gomock.Any()).Times(2).DoAndReturn(returnSaved)
				m.entries.EXPECT().Create(gomock.Any(), gomock.Any()).Times(1).DoAndReturn(returnCreated)
				m.entries.EXPECT().Create(gomock.Any(), gomock.Any()).Times(1).Return(domain.Entry{}, errDB)
			},
			wantErr: domain.ErrPersistence,
		},
	}

	for i := range testCases {
		tc := testCases[i]

		t.Run(tc.name, func(t *testing.T) {
			s, m := newTestService(t)
			tc.buildStubs(m)

			got, err := s.Transfer(context.Background(),
				tc.input.fromBranchID, tc.input.fromAccountID, tc.input.amount,
				tc.input.toBranchID, tc.input.toAccountID)
			require.ErrorIs(t, err, tc.wantErr)
			require.Empty(t, got)
		})
	}
}

func TestTransferOK(t *testing.T) {
	s, m := newTestService(t)

	fromBranch := domain.Branch{ID: 100}
	toBranch := domain.Branch{ID: 200}
	from := randomAccount(fromBranch.ID, 555, 100)
	to := randomAccount(toBranch.ID, 700, 200)

	m.branches.EXPECT().Get(gomock.Any(), gomock.Eq(fromBranch.ID)).Return(fromBranch, nil)
	m.branches.EXPECT().Get(gomock.Any(), gomock.Eq(toBranch.ID)).Return(toBranch, nil)
	m.accounts.EXPECT().Get(gomock.Any(), gomock.Eq(fromBranch.ID), gomock.Eq(from.ID)).Return(from, nil)
	m.accounts.EXPECT().Get(gomock.Any(), gomock.Eq(toBranch.ID), gomock.Eq(to.ID)).Return(to, nil)
	m.tm.EXPECT().Do(gomock.Any(), gomock.Any()).Times(1).DoAndReturn(runTx)
	m.accounts.EXPECT().Save(gomock.Any(), gomock.Any()).Times(2).DoAndReturn(returnSaved)
	m.entries.EXPECT().Create(gomock.Any(), gomock.Any()).Times(2).DoAndReturn(returnCreated)

	got, err := s.Transfer(context.Background(), fromBranch.ID, from.ID, decimal.NewFromInt(50), toBranch.ID, to.ID)
	require.NoError(t, err)

	require.True(t, got.FromAccount.Balance.Equal(decimal.NewFromInt(50)))
	require.True(t, got.ToAccount.Balance.Equal(decimal.NewFromInt(250)))

	require.Equal(t, "Transfer to AG 200 CC 700", got.FromEntry.Description)
	require.True(t, got.FromEntry.Amount.Equal(decimal.NewFromInt(-50)))
	require.True(t, got.FromEntry.Balance.Equal(decimal.NewFromInt(50)))
	require.Equal(t, from.ID, got.FromEntry.AccountID)

	require.Equal(t, "Transfer from AG 100 CC 555", got.ToEntry.Description)
	require.True(t, got.ToEntry.Amount.Equal(decimal.NewFromInt(50)))
	require.True(t, got.ToEntry.Balance.Equal(decimal.NewFromInt(250)))
	require.Equal(t, to.ID, got.ToEntry.AccountID)

	require.True(t, got.FromEntry.Amount.Add(got.ToEntry.Amount).IsZero())
}

func TestBalance(t *testing.T) {
	branch := domain.Branch{ID: 100}
	account := randomAccount(branch.ID, 555, 100)

	testCases := []struct {
		name       string
		branchID   int32
		buildStubs func(m mocks)
		want       decimal.Decimal
		wantErr    error
	}{
		{
			name:     "OK",
			branchID: branch.ID,
			buildStubs: func(m mocks) {
				m.branches.EXPECT().Get(gomock.Any(), gomock.Eq(branch.ID)).Return(branch, nil)
				m.accounts.EXPECT().Get(gomock.Any(), gomock.Eq(branch.ID), gomock.Eq(account.ID)).Return(account, nil)
			},
			want: decimal.NewFromInt(100),
		},
		{
			name:     "InvalidBranch",
			branchID: 999,
			buildStubs: func(m mocks) {
				m.branches.EXPECT().Get(gomock.Any(), gomock.Eq(int32(999))).Return(domain.Branch{}, domain.ErrBranchNotFound)
				m.accounts.EXPECT().Get(gomock.Any(), gomock.Any(), gomock.Any()).Times(0)
			},
			want:    decimal.Zero,
			wantErr: domain.ErrInvalidBranch,
		},
		{
			name:     "InvalidAccount",
			branchID: branch.ID,
			buildStubs: func(m mocks) {
				m.branches.EXPECT().Get(gomock.Any(), gomock.Eq(branch.ID)).Return(branch, nil)
				m.accounts.EXPECT().Get(gomock.Any(), gomock.Any(), gomock.Any()).Return(domain.Account{}, domain.ErrAccountNotFound)
			},
			want:    decimal.Zero,
			wantErr: domain.ErrInvalidAccount,
		},
		{
			name:     "AccountLookupFailure",
			branchID: branch.ID,
			buildStubs: func(m mocks) {
				m.branches.EXPECT().Get(gomock.Any(), gomock.Eq(branch.ID)).Return(branch, nil)
				m.accounts.EXPECT().Get(gomock.Any(), gomock.Any(), gomock.Any()).Return(domain.Account{}, errDB)
			},
			want:    decimal.Zero,
			wantErr: domain.ErrRetrieval,
		},
	}

	for i := range testCases {
		tc := testCases[i]

		t.Run(tc.name, func(t *testing.T) {
			s, m := newTestService(t)
			m.tm.EXPECT().Do(gomock.Any(), gomock.Any()).Times(0)
			tc.buildStubs(m)

			got, err := s.Balance(context.Background(), tc.branchID, account.ID)
			if tc.wantErr != nil {
				require.ErrorIs(t, err, tc.wantErr)
			} else {
				require.NoError(t, err)
			}

			require.True(t, tc.want.Equal(got), got.String())
		})
	}
}

func TestStatement(t *testing.T) {
	branch := domain.Branch{ID: 100}
	account := randomAccount(branch.ID, 555, 180)
	start := time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC)

	periodEntries := []domain.Entry{
		{ID: 1, BranchID: 100, AccountID: 555, Description: domain.DescriptionDeposit, Amount: decimal.NewFromInt(100), Balance: decimal.NewFromInt(200), CreatedAt: start.Add(time.Hour)},
		{ID: 2, BranchID: 100, AccountID: 555, Description: domain.DescriptionWithdrawal, Amount: decimal.NewFromInt(-20), Balance: decimal.NewFromInt(180), CreatedAt: start.Add(2 * time.Hour)},
	}

	testCases := []struct {
		name       string
		start, end time.Time
		buildStubs func(m mocks)
		want       []domain.Entry
		wantErr    error
	}{
		{
			name:  "OK",
			start: start,
			end:   start.AddDate(0, 1, 0),
			buildStubs: func(m mocks) {
				m.entries.EXPECT().ListByPeriod(gomock.Any(), branch.ID, account.ID, start, start.AddDate(0, 1, 0)).Return(periodEntries, nil)
				m.entries.EXPECT().PreviousBalance(gomock.Any(), branch.ID, account.ID, start, start.AddDate(0, 1, 0)).Return(decimal.NewFromInt(100), nil)
			},
			want: append([]domain.Entry{{Description: "Previous Balance", Balance: decimal.NewFromInt(100)}}, periodEntries...),
		},
		{
			name:  "EmptyPeriod",
			start: start,
			end:   start,
			buildStubs: func(m mocks) {
				m.entries.EXPECT().ListByPeriod(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return([]domain.Entry{}, nil)
				m.entries.EXPECT().PreviousBalance(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return(decimal.NewFromInt(180), nil)
			},
			want: []domain.Entry{{Description: "Previous Balance", Balance: decimal.NewFromInt(180)}},
		},
		{
			name:  "Exactly120Days",
			start: start,
			end:   start.Add(domain.MaxStatementPeriod),
			buildStubs: func(m mocks) {
				m.entries.EXPECT().ListByPeriod(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return(nil, nil)
				m.entries.EXPECT().PreviousBalance(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return(decimal.Zero, nil)
			},
			want: []domain.Entry{{Description: "Previous Balance", Balance: decimal.Zero}},
		},
		{
			name:    "InvalidDateRange",
			start:   start,
			end:     start.Add(-time.Second),
			wantErr: domain.ErrInvalidDateRange,
		},
		{
			name:    "RangeTooLong",
			start:   start,
			end:     start.AddDate(0, 0, 121),
			wantErr: domain.ErrRangeTooLong,
		},
		{
			name:  "ListFailure",
			start: start,
			end:   start.AddDate(0, 0, 7),
			buildStubs: func(m mocks) {
				m.entries.EXPECT().ListByPeriod(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return(nil, errDB)
				m.entries.EXPECT().PreviousBalance(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).AnyTimes().Return(decimal.Zero, nil)
			},
			wantErr: domain.ErrRetrieval,
		},
		{
			name:  "PreviousBalanceFailure",
			start: start,
			end:   start.AddDate(0, 0, 7),
			buildStubs: func(m mocks) {
				m.entries.EXPECT().ListByPeriod(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).AnyTimes().Return(nil, nil)
				m.entries.EXPECT().PreviousBalance(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return(decimal.Zero, errDB)
			},
			wantErr: domain.ErrRetrieval,
		},
	}

	for i := range testCases {
		tc := testCases[i]

		t.Run(tc.name, func(t *testing.T) {
			s, m := newTestService(t)
			m.branches.EXPECT().Get(gomock.Any(), gomock.Eq(branch.ID)).Return(branch, nil)
			m.accounts.EXPECT().Get(gomock.Any(), gomock.Eq(branch.ID), gomock.Eq(account.ID)).Return(account, nil)

			if tc.buildStubs != nil {
				tc.buildStubs(m)
			}

			got, err := s.Statement(context.Background(), branch.ID, account.ID, tc.start, tc.end)
			if tc.wantErr != nil {
				require.ErrorIs(t, err, tc.wantErr)
				require.Nil(t, got)

				return
			}

			require.NoError(t, err)

			if diff := cmp.Diff(tc.want, got, decimalEq); diff != "" {
				t.Errorf("Statement() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestStatementInvalidAccount(t *testing.T) {
	s, m := newTestService(t)

	m.branches.EXPECT().Get(gomock.Any(), gomock.Any()).Return(domain.Branch{ID: 100}, nil)
	m.accounts.EXPECT().Get(gomock.Any(), gomock.Any(), gomock.Any()).Return(domain.Account{}, domain.ErrAccountNotFound)

	// Account existence is checked before the date range.
	end := time.Now()
	got, err := s.Statement(context.Background(), 100, 1, end.Add(time.Hour), end)
	require.ErrorIs(t, err, domain.ErrInvalidAccount)
	require.Nil(t, got)
}

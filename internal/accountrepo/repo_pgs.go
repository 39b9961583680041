// Package accountrepo manages repository layer of accounts.
package accountrepo

import (
	"context"
	"database/sql"
	"errors"

	"github.com/go-petr/current-account/internal/domain"
	"github.com/go-petr/current-account/pkg/dbpkg"
	"github.com/go-petr/current-account/pkg/errorspkg"

	trmsql "github.com/avito-tech/go-transaction-manager/drivers/sql/v2"
	"github.com/jackc/pgerrcode"
	"github.com/rs/zerolog"
)

// RepoPGS facilitates account repository layer logic.
type RepoPGS struct {
	db     dbpkg.SQLInterface
	getter *trmsql.CtxGetter
}

// NewRepoPGS returns account RepoPGS.
func NewRepoPGS(db dbpkg.SQLInterface, getter *trmsql.CtxGetter) *RepoPGS {
	return &RepoPGS{
		db:     db,
		getter: getter,
	}
}

const getQuery = `
SELECT
	branch_id, id, holder_name, holder_tax_id, balance, created_at
FROM accounts
WHERE branch_id = $1 AND id = $2
`

// Get returns the account with the given id within the given branch.
func (r *RepoPGS) Get(ctx context.Context, branchID, accountID int32) (domain.Account, error) {
	l := zerolog.Ctx(ctx)

	row := r.getter.DefaultTrOrDB(ctx, r.db).QueryRowContext(ctx, getQuery, branchID, accountID)

	var a domain.Account

	err := row.Scan(
		&a.BranchID,
		&a.ID,
		&a.HolderName,
		&a.HolderTaxID,
		&a.Balance,
		&a.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Account{}, domain.ErrAccountNotFound
		}

		l.Error().Err(err).Send()

		return domain.Account{}, errorspkg.ErrInternal
	}

	return a, nil
}

const saveQuery = `
INSERT INTO accounts (branch_id, id, holder_name, holder_tax_id, balance)
VALUES ($1, $2, $3, $4, $5)
ON CONFLICT (branch_id, id) DO UPDATE
SET
	holder_name = EXCLUDED.holder_name,
	holder_tax_id = EXCLUDED.holder_tax_id,
	balance = EXCLUDED.balance
RETURNING branch_id, id, holder_name, holder_tax_id, balance, created_at
`

// Save inserts the account or updates the stored one and returns the result.
func (r *RepoPGS) Save(ctx context.Context, account domain.Account) (domain.Account, error) {
	l := zerolog.Ctx(ctx)

	row := r.getter.DefaultTrOrDB(ctx, r.db).QueryRowContext(ctx, saveQuery,
		account.BranchID,
		account.ID,
		account.HolderName,
		account.HolderTaxID,
		account.Balance,
	)

	var a domain.Account

	err := row.Scan(
		&a.BranchID,
		&a.ID,
		&a.HolderName,
		&a.HolderTaxID,
		&a.Balance,
		&a.CreatedAt,
	)
	if err != nil {
		l.Error().Err(err).Send()

		if dbpkg.ErrorCode(err) == pgerrcode.ForeignKeyViolation {
			return domain.Account{}, domain.ErrBranchNotFound
		}

		return domain.Account{}, errorspkg.ErrInternal
	}

	return a, nil
}

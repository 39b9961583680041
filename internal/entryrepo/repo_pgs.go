// Package entryrepo manages repository layer of ledger entries.
package entryrepo

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/go-petr/current-account/internal/domain"
	"github.com/go-petr/current-account/pkg/dbpkg"
	"github.com/go-petr/current-account/pkg/errorspkg"

	trmsql "github.com/avito-tech/go-transaction-manager/drivers/sql/v2"
	"github.com/jackc/pgerrcode"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// RepoPGS facilitates entry repository layer logic.
type RepoPGS struct {
	db     dbpkg.SQLInterface
	getter *trmsql.CtxGetter
}

// NewRepoPGS returns entry RepoPGS.
func NewRepoPGS(db dbpkg.SQLInterface, getter *trmsql.CtxGetter) *RepoPGS {
	return &RepoPGS{
		db:     db,
		getter: getter,
	}
}

const createQuery = `
INSERT INTO
	entries (branch_id, account_id, description, amount, balance, created_at)
VALUES
	($1, $2, $3, $4, $5, $6)
RETURNING id, branch_id, account_id, description, amount, balance, created_at
`

// Create appends the entry to the account ledger and then returns it.
func (r *RepoPGS) Create(ctx context.Context, entry domain.Entry) (domain.Entry, error) {
	l := zerolog.Ctx(ctx)

	row := r.getter.DefaultTrOrDB(ctx, r.db).QueryRowContext(ctx, createQuery,
		entry.BranchID,
		entry.AccountID,
		entry.Description,
		entry.Amount,
		entry.Balance,
		entry.CreatedAt,
	)

	e, err := scan(row)
	if err != nil {
		l.Error().Err(err).Send()

		if dbpkg.ErrorCode(err) == pgerrcode.ForeignKeyViolation {
			return domain.Entry{}, domain.ErrAccountNotFound
		}

		return domain.Entry{}, errorspkg.ErrInternal
	}

	return e, nil
}

const listByPeriodQuery = `
SELECT
	id, branch_id, account_id, description, amount, balance, created_at
FROM entries
WHERE branch_id = $1 AND account_id = $2
	AND created_at >= $3 AND created_at <= $4
ORDER BY created_at, id
`

// ListByPeriod returns the account entries created within [start, end] in
// chronological order.
func (r *RepoPGS) ListByPeriod(ctx context.Context, branchID, accountID int32, start, end time.Time) ([]domain.Entry, error) {
	l := zerolog.Ctx(ctx)

	rows, err := r.getter.DefaultTrOrDB(ctx, r.db).QueryContext(ctx, listByPeriodQuery,
		branchID, accountID, start, end)
	if err != nil {
		l.Error().Err(err).Send()
		return nil, errorspkg.ErrInternal
	}
	defer rows.Close()

	items := []domain.Entry{}

	for rows.Next() {
		e, err := scan(rows)
		if err != nil {
			l.Error().Err(err).Send()
			return nil, errorspkg.ErrInternal
		}

		items = append(items, e)
	}

	if err := rows.Close(); err != nil {
		l.Error().Err(err).Send()
		return nil, errorspkg.ErrInternal
	}

	if err := rows.Err(); err != nil {
		l.Error().Err(err).Send()
		return nil, errorspkg.ErrInternal
	}

	return items, nil
}

const previousBalanceQuery = `
SELECT balance
FROM entries
WHERE branch_id = $1 AND account_id = $2 AND created_at < $3
ORDER BY created_at DESC, id DESC
LIMIT 1
`

// PreviousBalance returns the balance left by the last entry created before
// start, or zero when the account has no earlier entries.
func (r *RepoPGS) PreviousBalance(ctx context.Context, branchID, accountID int32, start, _ time.Time) (decimal.Decimal, error) {
	l := zerolog.Ctx(ctx)

	row := r.getter.DefaultTrOrDB(ctx, r.db).QueryRowContext(ctx, previousBalanceQuery, branchID, accountID, start)

	var balance decimal.Decimal

	if err := row.Scan(&balance); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return decimal.Zero, nil
		}

		l.Error().Err(err).Send()

		return decimal.Zero, errorspkg.ErrInternal
	}

	return balance, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scan(s scanner) (domain.Entry, error) {
	var e domain.Entry

	err := s.Scan(
		&e.ID,
		&e.BranchID,
		&e.AccountID,
		&e.Description,
		&e.Amount,
		&e.Balance,
		&e.CreatedAt,
	)

	return e, err
}

// Package branchrepo manages repository layer of branches.
package branchrepo

import (
	"context"
	"database/sql"
	"errors"

	"github.com/go-petr/current-account/internal/domain"
	"github.com/go-petr/current-account/pkg/dbpkg"
	"github.com/go-petr/current-account/pkg/errorspkg"

	trmsql "github.com/avito-tech/go-transaction-manager/drivers/sql/v2"
	"github.com/rs/zerolog"
)

// RepoPGS facilitates branch repository layer logic.
type RepoPGS struct {
	db     dbpkg.SQLInterface
	getter *trmsql.CtxGetter
}

// NewRepoPGS returns branch RepoPGS.
func NewRepoPGS(db dbpkg.SQLInterface, getter *trmsql.CtxGetter) *RepoPGS {
	return &RepoPGS{
		db:     db,
		getter: getter,
	}
}

const createQuery = `
INSERT INTO branches (id, name)
VALUES ($1, $2)
RETURNING id, name
`

// Create creates the branch and then returns it.
func (r *RepoPGS) Create(ctx context.Context, b domain.Branch) (domain.Branch, error) {
	l := zerolog.Ctx(ctx)

	row := r.getter.DefaultTrOrDB(ctx, r.db).QueryRowContext(ctx, createQuery, b.ID, b.Name)

	var created domain.Branch

	if err := row.Scan(&created.ID, &created.Name); err != nil {
		l.Error().Err(err).Send()
		return domain.Branch{}, errorspkg.ErrInternal
	}

	return created, nil
}

const getQuery = `
SELECT id, name
FROM branches
WHERE id = $1
`

// Get returns the branch with the given id.
func (r *RepoPGS) Get(ctx context.Context, id int32) (domain.Branch, error) {
	l := zerolog.Ctx(ctx)

	row := r.getter.DefaultTrOrDB(ctx, r.db).QueryRowContext(ctx, getQuery, id)

	var b domain.Branch

	if err := row.Scan(&b.ID, &b.Name); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Branch{}, domain.ErrBranchNotFound
		}

		l.Error().Err(err).Send()

		return domain.Branch{}, errorspkg.ErrInternal
	}

	return b, nil
}

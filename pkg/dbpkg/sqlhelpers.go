// Package dbpkg provides helpers to make db initialization and testing easier.
package dbpkg

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"
	"github.com/rs/zerolog"
	sqldblogger "github.com/simukti/sqldb-logger"
)

// SQLInterface provides necessary db methods to perform queries.
//
// It is satisfied by *sql.DB and *sql.Tx, and it carries the method set the
// transaction manager's context getter expects from its fallback handle.
type SQLInterface interface {
	Exec(string, ...interface{}) (sql.Result, error)
	ExecContext(context.Context, string, ...interface{}) (sql.Result, error)
	Prepare(string) (*sql.Stmt, error)
	PrepareContext(context.Context, string) (*sql.Stmt, error)
	Query(string, ...interface{}) (*sql.Rows, error)
	QueryContext(context.Context, string, ...interface{}) (*sql.Rows, error)
	QueryRow(string, ...interface{}) *sql.Row
	QueryRowContext(context.Context, string, ...interface{}) *sql.Row
}

// Setup sets up connection with database.
func Setup(driver, source string) (*sql.DB, error) {
	db, err := sql.Open(driver, source)
	if err != nil {
		return nil, err
	}

	if err = db.Ping(); err != nil {
		db.Close()
		return nil, err
	}

	return db, nil
}

// SetupWithLogger sets up connection with database and logs every query with the given logger.
func SetupWithLogger(driver, source string, logger zerolog.Logger) (*sql.DB, error) {
	drv, err := lookupDriver(driver, source)
	if err != nil {
		return nil, err
	}

	db := sqldblogger.OpenDriver(source, drv, QueryLogger(logger),
		sqldblogger.WithMinimumLevel(sqldblogger.LevelDebug),
	)

	if err = db.Ping(); err != nil {
		db.Close()
		return nil, err
	}

	return db, nil
}

// lookupDriver returns the registered driver by name. The handle opened for
// the lookup never connects and is closed before returning.
func lookupDriver(name, source string) (driver.Driver, error) {
	db, err := sql.Open(name, source)
	if err != nil {
		return nil, err
	}

	drv := db.Driver()

	if err := db.Close(); err != nil {
		return nil, err
	}

	return drv, nil
}

type queryLogger struct {
	logger zerolog.Logger
}

// QueryLogger adapts zerolog to the sqldb-logger interface.
func QueryLogger(logger zerolog.Logger) sqldblogger.Logger {
	return &queryLogger{logger: logger}
}

// Log implements sqldblogger.Logger.
func (q *queryLogger) Log(_ context.Context, level sqldblogger.Level, msg string, data map[string]interface{}) {
	var e *zerolog.Event

	switch level {
	case sqldblogger.LevelError:
		e = q.logger.Error()
	case sqldblogger.LevelInfo:
		e = q.logger.Info()
	case sqldblogger.LevelDebug:
		e = q.logger.Debug()
	default:
		e = q.logger.Trace()
	}

	e.Fields(data).Msg(msg)
}

// ConstraintName returns the name of the violated constraint for both the pq
// and the pgx drivers. It returns an empty string for any other error.
func ConstraintName(err error) string {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Constraint
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.ConstraintName
	}

	return ""
}

// ErrorCode returns the SQLSTATE code of a database error.
func ErrorCode(err error) string {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return string(pqErr.Code)
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code
	}

	return ""
}

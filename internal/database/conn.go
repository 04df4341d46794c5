package database

import (
	"context"
	"database/sql"

	"github.com/druscope/druscope/internal/errs"
)

// Conn is an open session with one database. A Manager owns at most one
// Conn at a time; dialects produce them from Connect.
type Conn interface {
	// Ping verifies the session is alive.
	Ping(ctx context.Context) error

	// Close releases the session. Implementations must tolerate being
	// called more than once.
	Close() error

	// Query executes a row-returning statement with native placeholders.
	Query(ctx context.Context, query string, args ...any) (Rows, error)

	// Exec executes a row-less statement and reports rows affected.
	// Statements run in per-statement autocommit mode.
	Exec(ctx context.Context, query string, args ...any) (int64, error)
}

// Rows is an abstraction over a native result set.
// Callers must always call Close() when done, even on error.
type Rows interface {
	// Next advances to the next row; false when exhausted or on error.
	Next() bool

	// Scan copies the current row's columns into the destinations.
	Scan(dest ...any) error

	// Columns returns the result's column names in statement order.
	Columns() ([]string, error)

	// Close releases resources held by the result set.
	Close()

	// Err returns any error encountered during iteration.
	Err() error
}

// SQLConn adapts a *sql.DB to the Conn interface. The MySQL, SQL Server,
// and Oracle dialects all connect through database/sql and share it;
// Postgres wraps pgx natively in its own package.
type SQLConn struct {
	db      *sql.DB
	wrapErr func(err error, msg string) error
}

// NewSQLConn wraps db. wrapErr translates native driver errors into
// *errs.Error; a nil wrapErr applies a generic query-failure mapping.
func NewSQLConn(db *sql.DB, wrapErr func(err error, msg string) error) *SQLConn {
	if wrapErr == nil {
		wrapErr = func(err error, msg string) error {
			if err == nil {
				return nil
			}
			return errs.Wrap(errs.ErrKindQueryFailed, msg, err)
		}
	}
	return &SQLConn{db: db, wrapErr: wrapErr}
}

func (c *SQLConn) Ping(ctx context.Context) error {
	if err := c.db.PingContext(ctx); err != nil {
		return c.wrapErr(err, "ping failed")
	}
	return nil
}

func (c *SQLConn) Close() error {
	return c.db.Close()
}

func (c *SQLConn) Query(ctx context.Context, query string, args ...any) (Rows, error) {
	rows, err := c.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, c.wrapErr(err, "query failed")
	}
	return &sqlRows{rows: rows}, nil
}

func (c *SQLConn) Exec(ctx context.Context, query string, args ...any) (int64, error) {
	res, err := c.db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, c.wrapErr(err, "exec failed")
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, c.wrapErr(err, "rows affected unavailable")
	}
	return n, nil
}

// --- sql.Rows wrapper ---

type sqlRows struct {
	rows *sql.Rows
}

func (r *sqlRows) Next() bool                 { return r.rows.Next() }
func (r *sqlRows) Scan(dest ...any) error     { return r.rows.Scan(dest...) }
func (r *sqlRows) Columns() ([]string, error) { return r.rows.Columns() }
func (r *sqlRows) Close()                     { _ = r.rows.Close() }
func (r *sqlRows) Err() error                 { return r.rows.Err() }

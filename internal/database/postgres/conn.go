package postgres

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/druscope/druscope/internal/database"
)

// pgxConn adapts a pgxpool.Pool to the database.Conn interface.
type pgxConn struct {
	pool *pgxpool.Pool
}

func (c *pgxConn) Ping(ctx context.Context) error {
	if err := c.pool.Ping(ctx); err != nil {
		return mapError(err, "ping failed")
	}
	return nil
}

// Close is safe to call more than once; pgxpool.Pool.Close is idempotent.
func (c *pgxConn) Close() error {
	c.pool.Close()
	return nil
}

func (c *pgxConn) Query(ctx context.Context, query string, args ...any) (database.Rows, error) {
	rows, err := c.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, mapError(err, "query failed")
	}
	return &pgxRows{rows: rows}, nil
}

func (c *pgxConn) Exec(ctx context.Context, query string, args ...any) (int64, error) {
	tag, err := c.pool.Exec(ctx, query, args...)
	if err != nil {
		return 0, mapError(err, "exec failed")
	}
	return tag.RowsAffected(), nil
}

// --- pgx.Rows wrapper ---

type pgxRows struct {
	rows pgx.Rows
}

func (r *pgxRows) Next() bool             { return r.rows.Next() }
func (r *pgxRows) Scan(dest ...any) error { return r.rows.Scan(dest...) }
func (r *pgxRows) Close()                 { r.rows.Close() }
func (r *pgxRows) Err() error             { return r.rows.Err() }

func (r *pgxRows) Columns() ([]string, error) {
	fields := r.rows.FieldDescriptions()
	cols := make([]string, len(fields))
	for i, f := range fields {
		cols[i] = f.Name
	}
	return cols, nil
}

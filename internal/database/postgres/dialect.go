// Package postgres implements the PostgreSQL dialect of the database
// access layer on top of pgx's native pool.
package postgres

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/druscope/druscope/internal/database"
)

// Dialect implements database.Dialect for PostgreSQL.
type Dialect struct{}

func init() {
	database.Register(&Dialect{})
}

func (d *Dialect) Name() database.Driver {
	return database.DriverPostgres
}

// Connect opens a pgx pool capped at a single connection.
func (d *Dialect) Connect(ctx context.Context, cfg *database.Config) (database.Conn, error) {
	dsn := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=disable",
		cfg.Host, cfg.Port, cfg.Username, cfg.Password, cfg.Database)

	poolCfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, mapError(err, "invalid postgres DSN")
	}
	poolCfg.MaxConns = 1

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, mapError(err, "failed to create postgres pool")
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, mapError(err, "failed to ping postgres database")
	}

	return &pgxConn{pool: pool}, nil
}

// QuoteIdentifier wraps name in double quotes, doubling embedded quotes.
func (d *Dialect) QuoteIdentifier(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

// Rebind renumbers '?' placeholders into $1, $2, ….
func (d *Dialect) Rebind(query string) string {
	return database.Rebind(database.PlaceholderDollar, query)
}

func (d *Dialect) LimitQuery(query string, n int) string {
	return fmt.Sprintf("%s LIMIT %d", query, n)
}

// TablesQuery lists base tables in the public schema.
func (d *Dialect) TablesQuery() string {
	return "SELECT tablename FROM pg_catalog.pg_tables WHERE schemaname = 'public' ORDER BY tablename"
}

func (d *Dialect) ColumnsQuery(physical string) (string, []any) {
	query := "SELECT column_name, data_type FROM information_schema.columns " +
		"WHERE table_schema = 'public' AND table_name = ? ORDER BY ordinal_position"
	return query, []any{physical}
}

func (d *Dialect) NormalizeTableName(name string) string {
	return name
}

func (d *Dialect) TextTypes() map[string]struct{} {
	return textTypes
}

// LikeCondition uses ILIKE for case-insensitive matching.
func (d *Dialect) LikeCondition(column string) string {
	return d.QuoteIdentifier(column) + " ILIKE ?"
}

func (d *Dialect) StringAgg(expr string) string {
	return fmt.Sprintf("STRING_AGG(DISTINCT %s, ',')", expr)
}

var textTypes = map[string]struct{}{
	"character":         {},
	"character varying": {},
	"char":              {},
	"varchar":           {},
	"text":              {},
	"citext":            {},
}

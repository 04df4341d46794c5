// Package mssql implements the SQL Server dialect of the database access
// layer via database/sql and microsoft/go-mssqldb.
package mssql

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	_ "github.com/microsoft/go-mssqldb" // register "sqlserver" driver

	"github.com/druscope/druscope/internal/database"
)

// Dialect implements database.Dialect for Microsoft SQL Server.
type Dialect struct{}

func init() {
	database.Register(&Dialect{})
}

func (d *Dialect) Name() database.Driver {
	return database.DriverMSSQL
}

// Connect opens a SQL Server session capped at a single connection.
func (d *Dialect) Connect(ctx context.Context, cfg *database.Config) (database.Conn, error) {
	dsn := fmt.Sprintf("server=%s;port=%d;database=%s;user id=%s;password=%s;encrypt=false",
		cfg.Host, cfg.Port, cfg.Database, cfg.Username, cfg.Password)

	db, err := sql.Open("sqlserver", dsn)
	if err != nil {
		return nil, mapError(err, "invalid sqlserver DSN")
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, mapError(err, "failed to ping sqlserver database")
	}

	return database.NewSQLConn(db, mapError), nil
}

// QuoteIdentifier wraps name in brackets, doubling embedded closing brackets.
func (d *Dialect) QuoteIdentifier(name string) string {
	return "[" + strings.ReplaceAll(name, "]", "]]") + "]"
}

// Rebind renumbers '?' placeholders into @p1, @p2, ….
func (d *Dialect) Rebind(query string) string {
	return database.Rebind(database.PlaceholderAt, query)
}

// LimitQuery injects TOP (n) after the first SELECT keyword. SQL Server has
// no trailing LIMIT clause; OFFSET/FETCH requires an ORDER BY this layer
// cannot assume.
func (d *Dialect) LimitQuery(query string, n int) string {
	trimmed := strings.TrimSpace(query)
	if len(trimmed) >= 6 && strings.EqualFold(trimmed[:6], "SELECT") {
		return fmt.Sprintf("SELECT TOP (%d)%s", n, trimmed[6:])
	}
	return trimmed
}

// TablesQuery lists base tables of the current database.
func (d *Dialect) TablesQuery() string {
	return "SELECT TABLE_NAME FROM INFORMATION_SCHEMA.TABLES " +
		"WHERE TABLE_TYPE = 'BASE TABLE' AND TABLE_CATALOG = DB_NAME() ORDER BY TABLE_NAME"
}

func (d *Dialect) ColumnsQuery(physical string) (string, []any) {
	query := "SELECT COLUMN_NAME, DATA_TYPE FROM INFORMATION_SCHEMA.COLUMNS " +
		"WHERE TABLE_NAME = ? ORDER BY ORDINAL_POSITION"
	return query, []any{physical}
}

func (d *Dialect) NormalizeTableName(name string) string {
	return name
}

func (d *Dialect) TextTypes() map[string]struct{} {
	return textTypes
}

// LikeCondition lowers both sides so matching is case-insensitive even
// under case-sensitive collations.
func (d *Dialect) LikeCondition(column string) string {
	return fmt.Sprintf("LOWER(%s) LIKE LOWER(?)", d.QuoteIdentifier(column))
}

func (d *Dialect) StringAgg(expr string) string {
	return fmt.Sprintf("STRING_AGG(%s, ',') WITHIN GROUP (ORDER BY %s)", expr, expr)
}

var textTypes = map[string]struct{}{
	"char":     {},
	"nchar":    {},
	"varchar":  {},
	"nvarchar": {},
	"text":     {},
	"ntext":    {},
}

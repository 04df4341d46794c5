// Package mysql implements the MySQL dialect of the database access layer,
// backed by database/sql and go-sql-driver/mysql.
package mysql

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	_ "github.com/go-sql-driver/mysql" // register "mysql" driver

	"github.com/druscope/druscope/internal/database"
)

// Dialect implements database.Dialect for MySQL.
type Dialect struct{}

func init() {
	database.Register(&Dialect{})
}

func (d *Dialect) Name() database.Driver {
	return database.DriverMySQL
}

// Connect opens a MySQL session. The pool underneath database/sql is capped
// at a single connection: the manager owns exactly one session at a time.
func (d *Dialect) Connect(ctx context.Context, cfg *database.Config) (database.Conn, error) {
	dsn := fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?parseTime=true",
		cfg.Username, cfg.Password, cfg.Host, cfg.Port, cfg.Database)

	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, mapError(err, "invalid mysql DSN")
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, mapError(err, "failed to ping mysql database")
	}

	return database.NewSQLConn(db, mapError), nil
}

// QuoteIdentifier wraps name in backticks, doubling embedded backticks.
func (d *Dialect) QuoteIdentifier(name string) string {
	return "`" + strings.ReplaceAll(name, "`", "``") + "`"
}

// Rebind is the identity: MySQL's native placeholder is already '?'.
func (d *Dialect) Rebind(query string) string {
	return database.Rebind(database.PlaceholderQuestion, query)
}

// LimitQuery appends a trailing LIMIT clause.
func (d *Dialect) LimitQuery(query string, n int) string {
	return fmt.Sprintf("%s LIMIT %d", query, n)
}

func (d *Dialect) TablesQuery() string {
	return "SHOW TABLES"
}

// ColumnsQuery uses DESCRIBE, which cannot be parameterized; the caller
// has already validated physical against the identifier allowlist.
func (d *Dialect) ColumnsQuery(physical string) (string, []any) {
	return "DESCRIBE " + d.QuoteIdentifier(physical), nil
}

func (d *Dialect) NormalizeTableName(name string) string {
	return name
}

func (d *Dialect) TextTypes() map[string]struct{} {
	return textTypes
}

// LikeCondition relies on MySQL's default case-insensitive collations.
func (d *Dialect) LikeCondition(column string) string {
	return d.QuoteIdentifier(column) + " LIKE ?"
}

func (d *Dialect) StringAgg(expr string) string {
	return fmt.Sprintf("GROUP_CONCAT(DISTINCT %s)", expr)
}

var textTypes = map[string]struct{}{
	"char":       {},
	"varchar":    {},
	"tinytext":   {},
	"text":       {},
	"mediumtext": {},
	"longtext":   {},
	"enum":       {},
	"set":        {},
}

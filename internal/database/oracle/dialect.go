// Package oracle implements the Oracle dialect of the database access
// layer via database/sql and godror.
package oracle

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	_ "github.com/godror/godror" // register "godror" driver

	"github.com/druscope/druscope/internal/database"
)

// Dialect implements database.Dialect for Oracle.
type Dialect struct{}

func init() {
	database.Register(&Dialect{})
}

func (d *Dialect) Name() database.Driver {
	return database.DriverOracle
}

// Connect opens an Oracle session capped at a single connection. The
// Database field is the service name.
func (d *Dialect) Connect(ctx context.Context, cfg *database.Config) (database.Conn, error) {
	dsn := fmt.Sprintf("%s/%s@%s:%d/%s",
		cfg.Username, cfg.Password, cfg.Host, cfg.Port, cfg.Database)

	db, err := sql.Open("godror", dsn)
	if err != nil {
		return nil, mapError(err, "invalid oracle DSN")
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, mapError(err, "failed to ping oracle database")
	}

	return database.NewSQLConn(db, mapError), nil
}

// QuoteIdentifier folds name to the data dictionary's upper case before
// quoting, so the lower-cased names this layer hands around still resolve
// to identifiers that were created unquoted.
func (d *Dialect) QuoteIdentifier(name string) string {
	upper := strings.ToUpper(name)
	return `"` + strings.ReplaceAll(upper, `"`, `""`) + `"`
}

// Rebind renumbers '?' placeholders into :1, :2, ….
func (d *Dialect) Rebind(query string) string {
	return database.Rebind(database.PlaceholderColon, query)
}

// LimitQuery wraps the statement in a ROWNUM filter; Oracle has no
// trailing LIMIT clause.
func (d *Dialect) LimitQuery(query string, n int) string {
	return fmt.Sprintf("SELECT * FROM (%s) WHERE ROWNUM <= %d", query, n)
}

func (d *Dialect) TablesQuery() string {
	return "SELECT table_name FROM user_tables ORDER BY table_name"
}

func (d *Dialect) ColumnsQuery(physical string) (string, []any) {
	query := "SELECT column_name, data_type FROM user_tab_columns " +
		"WHERE table_name = ? ORDER BY column_id"
	return query, []any{strings.ToUpper(physical)}
}

// NormalizeTableName lowers the dictionary's upper-cased names so table
// names look the same across all dialects.
func (d *Dialect) NormalizeTableName(name string) string {
	return strings.ToLower(name)
}

func (d *Dialect) TextTypes() map[string]struct{} {
	return textTypes
}

func (d *Dialect) LikeCondition(column string) string {
	return fmt.Sprintf("UPPER(%s) LIKE UPPER(?)", d.QuoteIdentifier(column))
}

func (d *Dialect) StringAgg(expr string) string {
	return fmt.Sprintf("LISTAGG(%s, ',') WITHIN GROUP (ORDER BY %s)", expr, expr)
}

var textTypes = map[string]struct{}{
	"char":      {},
	"nchar":     {},
	"varchar":   {},
	"varchar2":  {},
	"nvarchar2": {},
	"clob":      {},
	"nclob":     {},
	"long":      {},
}

package database

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"

	"github.com/druscope/druscope/internal/errs"
)

// stubDialect is a minimal MySQL-flavoured dialect whose Connect hands out
// pre-built connections, so manager tests can drive sqlmock through the
// full query path.
type stubDialect struct {
	conns      []Conn
	connects   int
	connectErr error
}

func (d *stubDialect) Name() Driver { return DriverMySQL }

func (d *stubDialect) Connect(ctx context.Context, cfg *Config) (Conn, error) {
	if d.connectErr != nil {
		return nil, d.connectErr
	}
	c := d.conns[d.connects]
	d.connects++
	return c, nil
}

func (d *stubDialect) QuoteIdentifier(name string) string {
	return "`" + strings.ReplaceAll(name, "`", "``") + "`"
}

func (d *stubDialect) Rebind(query string) string {
	return Rebind(PlaceholderQuestion, query)
}

func (d *stubDialect) LimitQuery(query string, n int) string {
	return fmt.Sprintf("%s LIMIT %d", query, n)
}

func (d *stubDialect) TablesQuery() string { return "SHOW TABLES" }

func (d *stubDialect) ColumnsQuery(physical string) (string, []any) {
	return "DESCRIBE " + d.QuoteIdentifier(physical), nil
}

func (d *stubDialect) NormalizeTableName(name string) string { return name }

func (d *stubDialect) TextTypes() map[string]struct{} {
	return map[string]struct{}{"varchar": {}, "text": {}}
}

func (d *stubDialect) LikeCondition(column string) string {
	return d.QuoteIdentifier(column) + " LIKE ?"
}

func (d *stubDialect) StringAgg(expr string) string {
	return fmt.Sprintf("GROUP_CONCAT(DISTINCT %s)", expr)
}

func testConfig() *Config {
	return &Config{
		Driver:   DriverMySQL,
		Host:     "localhost",
		Port:     3306,
		Username: "drupal",
		Password: "secret",
		Database: "drupal_db",
		Prefix:   "dr_",
	}
}

// newMockConn builds a sqlmock-backed Conn with exact query matching.
func newMockConn(t *testing.T, wrapErr func(error, string) error) (Conn, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherEqual))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return NewSQLConn(db, wrapErr), mock
}

// newTestManager builds a manager over a single sqlmock connection.
func newTestManager(t *testing.T) (*Manager, sqlmock.Sqlmock) {
	t.Helper()
	conn, mock := newMockConn(t, nil)
	m := NewManager(testConfig(), &stubDialect{conns: []Conn{conn}}, nil)
	return m, mock
}

// connWrap maps every failure to a connection-loss error, for tests that
// exercise the drop-and-reconnect path.
func connWrap(err error, msg string) error {
	if err == nil {
		return nil
	}
	return errs.Wrap(errs.ErrKindConnectionFailed, msg, err)
}

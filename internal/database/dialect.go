package database

import (
	"context"
	"sort"
	"sync"

	"github.com/druscope/druscope/internal/errs"
)

// Dialect is the contract every database engine implements. The Manager,
// introspector, templater, and search engine depend only on this interface —
// they never import the mysql, postgres, mssql, or oracle packages directly.
type Dialect interface {
	// Name returns the driver identifier this dialect registers under.
	Name() Driver

	// Connect opens a native connection for cfg and verifies it with a ping.
	Connect(ctx context.Context, cfg *Config) (Conn, error)

	// QuoteIdentifier wraps a table or column name in the dialect's native
	// quoting (backtick, double-quote, or bracket), doubling any embedded
	// quote characters.
	QuoteIdentifier(name string) string

	// Rebind translates canonical '?' placeholders into the dialect's
	// native placeholder syntax. Placeholders inside quoted literals and
	// quoted identifiers are left untouched.
	Rebind(query string) string

	// LimitQuery rewrites a SELECT statement so it returns at most n rows.
	// The shape is structural per dialect: a trailing LIMIT, a TOP clause
	// after SELECT, or a ROWNUM filter wrapped around a subquery.
	LimitQuery(query string, n int) string

	// TablesQuery returns the dialect's "list all user tables" statement.
	// The table name is the first column of the result.
	TablesQuery() string

	// ColumnsQuery returns the statement that lists (name, declared type)
	// for the columns of the given physical table, plus its bind arguments.
	// The caller has already validated physical against the identifier
	// safety pattern, so dialects whose statement cannot be parameterized
	// (MySQL DESCRIBE) may interpolate it.
	ColumnsQuery(physical string) (string, []any)

	// NormalizeTableName maps a native table name to its canonical form
	// (Oracle reports names upper-case; they are folded to lower-case).
	NormalizeTableName(name string) string

	// TextTypes returns the set of declared type names classified as
	// text-like for the cross-table search. Names are lower-case base
	// types without length suffixes.
	TextTypes() map[string]struct{}

	// LikeCondition returns a case-insensitive substring-match fragment
	// for the given column, containing exactly one canonical placeholder
	// for the pattern.
	LikeCondition(column string) string

	// StringAgg returns the dialect's expression for aggregating a grouped
	// column into one comma-separated string.
	StringAgg(expr string) string
}

var (
	registryMu sync.RWMutex
	registry   = make(map[Driver]Dialect)
)

// Register adds a dialect to the registry. Called by dialect packages in
// their init() functions; importing a dialect package makes it available.
func Register(d Dialect) {
	registryMu.Lock()
	defer registryMu.Unlock()
	registry[d.Name()] = d
}

// LookupDialect returns the registered dialect for the given driver name.
func LookupDialect(name Driver) (Dialect, error) {
	registryMu.RLock()
	defer registryMu.RUnlock()
	d, ok := registry[name]
	if !ok {
		return nil, errs.Newf(errs.ErrKindUnsupportedDriver,
			"unsupported database driver %q (registered: %v)", name, registeredLocked())
	}
	return d, nil
}

// registeredLocked returns sorted registered driver names.
// Caller must hold registryMu.
func registeredLocked() []string {
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, string(name))
	}
	sort.Strings(names)
	return names
}

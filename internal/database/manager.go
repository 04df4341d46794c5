// Package database is the multi-dialect access layer at the heart of
// druscope. One Manager hides four incompatible connection APIs, four
// placeholder conventions, four row-representation formats, and four
// row-limiting syntaxes behind a single contract: templated queries in,
// normalized rows out.
package database

import (
	"context"
	"sync"

	"github.com/druscope/druscope/internal/errs"
	"github.com/druscope/druscope/internal/logger"
)

// maxLoggedQueryLen caps how much query text goes into failure logs.
const maxLoggedQueryLen = 200

// Manager owns one database connection and executes queries against it.
// All operations serialize on an internal mutex: the layer is strictly
// one statement in flight at a time. Callers that need parallelism use
// independent Manager instances.
type Manager struct {
	cfg     *Config
	dialect Dialect
	log     *logger.Logger

	mu   sync.Mutex
	conn Conn
}

// Open validates cfg, resolves its dialect from the registry, and connects.
// Construction fails hard on an incomplete config, an unsupported driver,
// or a native connect error; later connection loss is recovered lazily by
// the reconnect-once policy in front of every query.
func Open(ctx context.Context, cfg *Config, log *logger.Logger) (*Manager, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	dialect, err := LookupDialect(cfg.Driver)
	if err != nil {
		return nil, err
	}

	m := NewManager(cfg, dialect, log)

	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.connectLocked(ctx); err != nil {
		return nil, err
	}
	return m, nil
}

// NewManager builds a Manager without connecting. The first query triggers
// the connection. Exported so tests and embedders can supply a custom
// Dialect implementation.
func NewManager(cfg *Config, dialect Dialect, log *logger.Logger) *Manager {
	if log == nil {
		log = logger.Nop()
	}
	return &Manager{
		cfg:     cfg,
		dialect: dialect,
		log: log.With().
			Str("driver", string(cfg.Driver)).
			Str("database", cfg.Database).
			Logger(),
	}
}

// Dialect returns the dialect the manager was opened with.
func (m *Manager) Dialect() Dialect {
	return m.dialect
}

// Prefix returns the configured table-name prefix.
func (m *Manager) Prefix() string {
	return m.cfg.Prefix
}

// Config returns a copy of the connection configuration.
func (m *Manager) Config() Config {
	return *m.cfg
}

// PrepareQuery expands every {logical_table} placeholder in template into
// its physical, prefix-qualified name.
func (m *Manager) PrepareQuery(template string) string {
	return ExpandTemplate(template, m.cfg.Prefix)
}

// Close releases the connection. It is idempotent, and the next operation
// after Close triggers a reconnect.
func (m *Manager) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.conn == nil {
		return nil
	}
	err := m.conn.Close()
	m.conn = nil
	if err != nil {
		return errs.Wrap(errs.ErrKindConnectionFailed, "error closing connection", err)
	}
	m.log.Info("database connection closed")
	return nil
}

// Query executes a row-returning statement written with canonical '?'
// placeholders and returns the full normalized result. Zero matching rows
// yield an empty (non-nil) ResultSet, distinct from an error.
func (m *Manager) Query(ctx context.Context, query string, args ...any) (*ResultSet, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	rows, err := m.queryLocked(ctx, query, args)
	if err != nil {
		return nil, err
	}
	return scanAll(rows)
}

// QueryOne executes a statement expected to match at most one row.
// No match is reported as a NotFound-kind error (errs.IsNotFound).
func (m *Manager) QueryOne(ctx context.Context, query string, args ...any) (Row, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	rows, err := m.queryLocked(ctx, query, args)
	if err != nil {
		return nil, err
	}
	return scanFirst(rows)
}

// Exec executes a row-less statement (INSERT/UPDATE/DELETE/DDL) in
// per-statement autocommit mode and returns the rows affected.
func (m *Manager) Exec(ctx context.Context, query string, args ...any) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	conn, err := m.acquireLocked(ctx)
	if err != nil {
		return 0, err
	}

	n, err := conn.Exec(ctx, m.dialect.Rebind(query), args...)
	if err != nil {
		m.noteFailure(query, args, err)
		return 0, err
	}
	return n, nil
}

// queryLocked rebinds and runs a statement on the live connection.
// Caller must hold m.mu.
func (m *Manager) queryLocked(ctx context.Context, query string, args []any) (Rows, error) {
	conn, err := m.acquireLocked(ctx)
	if err != nil {
		return nil, err
	}

	rows, err := conn.Query(ctx, m.dialect.Rebind(query), args...)
	if err != nil {
		m.noteFailure(query, args, err)
		return nil, err
	}
	return rows, nil
}

// acquireLocked returns a live connection. A held connection is validated
// with a ping first; a dead one is discarded and redialed. With no
// connection at all, one reconnect is attempted. A failed reconnect
// surfaces immediately — there is no further retry. Caller must hold m.mu.
func (m *Manager) acquireLocked(ctx context.Context) (Conn, error) {
	if m.conn != nil {
		err := m.conn.Ping(ctx)
		if err == nil {
			return m.conn, nil
		}
		m.log.WarnWith("connection liveness check failed, reconnecting", err, nil)
		_ = m.conn.Close()
		m.conn = nil
	} else {
		m.log.Warn("no active database connection, attempting to reconnect")
	}

	if err := m.connectLocked(ctx); err != nil {
		return nil, err
	}
	return m.conn, nil
}

// connectLocked dials a fresh connection, replacing any existing one.
// Caller must hold m.mu.
func (m *Manager) connectLocked(ctx context.Context) error {
	if m.conn != nil {
		_ = m.conn.Close()
		m.conn = nil
	}

	conn, err := m.dialect.Connect(ctx, m.cfg)
	if err != nil {
		m.log.ErrorWith("database connection failed", err, map[string]any{
			"host": m.cfg.Host,
			"port": m.cfg.Port,
		})
		return err
	}
	m.conn = conn
	m.log.Infof("connected to %s database %s at %s:%d",
		m.cfg.Driver, m.cfg.Database, m.cfg.Host, m.cfg.Port)
	return nil
}

// noteFailure logs a failed statement with truncated query text, and drops
// the connection when the failure looks like connection loss so the next
// operation reconnects.
func (m *Manager) noteFailure(query string, args []any, err error) {
	m.log.ErrorWith("query failed", err, map[string]any{
		"query":  truncateQuery(query),
		"params": args,
	})
	if errs.IsConnectionFailed(err) && m.conn != nil {
		_ = m.conn.Close()
		m.conn = nil
	}
}

func truncateQuery(query string) string {
	if len(query) <= maxLoggedQueryLen {
		return query
	}
	return query[:maxLoggedQueryLen] + "..."
}

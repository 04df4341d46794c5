package database

import (
	"context"
	"fmt"
	"strings"

	"github.com/druscope/druscope/internal/errs"
)

// ColumnDef is one column of an introspected table, in declaration order.
type ColumnDef struct {
	Name     string `json:"name"`
	DataType string `json:"data_type"`
}

// ListTables returns the logical names of every user table. The dialect's
// catalog statement is issued and the first result column extracted; table
// names carrying the configured prefix are returned with it stripped, so
// the output feeds straight back into TableSchema and query templates.
// When a prefix is configured, tables without it live outside the logical
// namespace and are omitted — every returned name resolves to a physical
// table when the prefix is re-applied.
func (m *Manager) ListTables(ctx context.Context) ([]string, error) {
	rs, err := m.Query(ctx, m.dialect.TablesQuery())
	if err != nil {
		return nil, err
	}
	if len(rs.Columns) == 0 {
		return nil, errs.New(errs.ErrKindQueryFailed, "table listing returned no columns")
	}

	nameCol := rs.Columns[0]
	tables := make([]string, 0, len(rs.Rows))
	for _, row := range rs.Rows {
		name := valueString(row[nameCol])
		if name == "" {
			continue
		}
		name = m.dialect.NormalizeTableName(name)
		if m.cfg.Prefix != "" {
			logical, found := strings.CutPrefix(name, m.cfg.Prefix)
			if !found {
				continue
			}
			name = logical
		}
		tables = append(tables, name)
	}
	return tables, nil
}

// TableSchema returns the declared type of every column of the logical
// table, keyed by column name. The physical name must pass the identifier
// safety check before it can reach a non-parameterizable statement; a
// missing table or one without columns is a NotFound-kind error.
func (m *Manager) TableSchema(ctx context.Context, logical string) (map[string]string, error) {
	cols, err := m.TableColumns(ctx, logical)
	if err != nil {
		return nil, err
	}

	schema := make(map[string]string, len(cols))
	for _, c := range cols {
		schema[c.Name] = c.DataType
	}
	return schema, nil
}

// TableColumns is the ordered variant of TableSchema, used where column
// order matters (the search engine scans columns deterministically).
func (m *Manager) TableColumns(ctx context.Context, logical string) ([]ColumnDef, error) {
	physical := m.cfg.Prefix + logical
	if !ValidIdentifier(physical) {
		return nil, errs.Newf(errs.ErrKindUnsafeIdentifier,
			"invalid table name for schema retrieval: %q", physical)
	}

	query, args := m.dialect.ColumnsQuery(physical)
	rs, err := m.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	if len(rs.Rows) == 0 {
		return nil, errs.Newf(errs.ErrKindNotFound,
			"table %q not found or has no columns", physical)
	}
	if len(rs.Columns) < 2 {
		return nil, errs.New(errs.ErrKindQueryFailed, "column listing returned too few columns")
	}

	// Column name and declared type are always the first two result
	// columns, whatever the dialect calls them (Field/Type, column_name/
	// data_type, COLUMN_NAME/DATA_TYPE).
	nameCol, typeCol := rs.Columns[0], rs.Columns[1]
	cols := make([]ColumnDef, 0, len(rs.Rows))
	for _, row := range rs.Rows {
		cols = append(cols, ColumnDef{
			Name:     valueString(row[nameCol]),
			DataType: valueString(row[typeCol]),
		})
	}
	return cols, nil
}

// IsTextType reports whether a declared column type counts as text-like
// for the active dialect. Length suffixes and case are ignored, so
// "VARCHAR(255)" matches "varchar".
func (m *Manager) IsTextType(declared string) bool {
	base := strings.ToLower(strings.TrimSpace(declared))
	if i := strings.IndexByte(base, '('); i >= 0 {
		base = strings.TrimSpace(base[:i])
	}
	_, ok := m.dialect.TextTypes()[base]
	return ok
}

// valueString renders a normalized scalar as a string. Rows are already
// normalized, so binary has been decoded; everything else goes through fmt.
func valueString(v any) string {
	switch s := v.(type) {
	case nil:
		return ""
	case string:
		return s
	default:
		return fmt.Sprint(v)
	}
}

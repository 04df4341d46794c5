package database

import (
	"context"
)

// DefaultSearchRowLimit caps matching rows per column when the caller
// passes a non-positive limit.
const DefaultSearchRowLimit = 10

// Finding is one search hit: a column of a table whose text matched,
// together with the matching rows (at most the per-column limit).
type Finding struct {
	Table  string `json:"table"`
	Column string `json:"column"`
	Rows   []Row  `json:"matching_rows"`
}

// SearchAllTables scans every text-like column of every table for a
// case-insensitive substring match of needle, without prior knowledge of
// the schema. One query is issued per text-like column, shaped with the
// dialect's native quoting and row-limiting syntax.
//
// The scan is fault-isolated: a failure on one table or column is logged
// and the sweep continues, so a single unreadable object never aborts the
// whole search. Only the initial table enumeration is fatal.
func (m *Manager) SearchAllTables(ctx context.Context, needle string, rowLimit int) ([]Finding, error) {
	if rowLimit <= 0 {
		rowLimit = DefaultSearchRowLimit
	}

	tables, err := m.ListTables(ctx)
	if err != nil {
		return nil, err
	}

	findings := make([]Finding, 0)
	for _, table := range tables {
		cols, err := m.TableColumns(ctx, table)
		if err != nil {
			m.log.WarnWith("skipping table during search", err, map[string]any{
				"table": table,
			})
			continue
		}

		for _, col := range cols {
			if !m.IsTextType(col.DataType) {
				continue
			}

			rows, err := m.searchColumn(ctx, table, col.Name, needle, rowLimit)
			if err != nil {
				m.log.WarnWith("skipping column during search", err, map[string]any{
					"table":  table,
					"column": col.Name,
				})
				continue
			}
			if len(rows) > 0 {
				findings = append(findings, Finding{
					Table:  table,
					Column: col.Name,
					Rows:   rows,
				})
			}
		}
	}
	return findings, nil
}

// searchColumn runs the single-column substring probe.
func (m *Manager) searchColumn(ctx context.Context, logical, column, needle string, rowLimit int) ([]Row, error) {
	physical := m.cfg.Prefix + logical
	query := "SELECT * FROM " + m.dialect.QuoteIdentifier(physical) +
		" WHERE " + m.dialect.LikeCondition(column)
	query = m.dialect.LimitQuery(query, rowLimit)

	rs, err := m.Query(ctx, query, "%"+needle+"%")
	if err != nil {
		return nil, err
	}
	return rs.Rows, nil
}

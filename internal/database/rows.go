package database

import (
	"unicode/utf8"

	"github.com/druscope/druscope/internal/errs"
)

// BinarySentinel replaces any binary value that cannot be decoded as UTF-8
// text. A single unreadable column must never fail an entire result set.
const BinarySentinel = "<unreadable binary data>"

// Row is the canonical column-name-to-value mapping returned by the layer
// regardless of originating dialect. Values are text, integers, floats,
// booleans, nil, or decoded-to-text binary.
type Row map[string]any

// ResultSet is a fully fetched, normalized query result. Columns preserves
// statement order; every Row has exactly the Columns key set.
type ResultSet struct {
	Columns []string `json:"columns"`
	Rows    []Row    `json:"rows"`
}

// scanAll drains rows into a ResultSet, closing rows before returning.
// The Rows slice is always non-nil, so a zero-match query is
// distinguishable from a failed one by the error value alone.
func scanAll(rows Rows) (*ResultSet, error) {
	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		return nil, errs.Wrap(errs.ErrKindQueryFailed, "failed to read column names", err)
	}

	result := &ResultSet{
		Columns: columns,
		Rows:    make([]Row, 0),
	}

	for rows.Next() {
		row, err := scanCurrent(rows, columns)
		if err != nil {
			return nil, err
		}
		result.Rows = append(result.Rows, row)
	}

	if err := rows.Err(); err != nil {
		return nil, errs.Wrap(errs.ErrKindQueryFailed, "error during row iteration", err)
	}
	return result, nil
}

// scanFirst reads at most one row and closes rows. A NotFound error marks
// "no row matched", keeping it distinct from an execution failure.
func scanFirst(rows Rows) (Row, error) {
	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		return nil, errs.Wrap(errs.ErrKindQueryFailed, "failed to read column names", err)
	}

	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return nil, errs.Wrap(errs.ErrKindQueryFailed, "error during row iteration", err)
		}
		return nil, errs.New(errs.ErrKindNotFound, "no row matched")
	}

	return scanCurrent(rows, columns)
}

// scanCurrent materializes the row the cursor is positioned on.
func scanCurrent(rows Rows, columns []string) (Row, error) {
	// Scan through *any so every driver can write its native type.
	dest := make([]any, len(columns))
	destPtrs := make([]any, len(columns))
	for i := range dest {
		destPtrs[i] = &dest[i]
	}

	if err := rows.Scan(destPtrs...); err != nil {
		return nil, errs.Wrap(errs.ErrKindQueryFailed, "failed to scan row", err)
	}

	row := make(Row, len(columns))
	for i, col := range columns {
		row[col] = normalizeValue(dest[i])
	}
	return row, nil
}

// normalizeValue maps a driver-native value to the canonical row shape.
// Byte slices are decoded as UTF-8 text; undecodable ones become the
// sentinel string instead of raising.
func normalizeValue(v any) any {
	b, ok := v.([]byte)
	if !ok {
		return v
	}
	if !utf8.Valid(b) {
		return BinarySentinel
	}
	return string(b)
}

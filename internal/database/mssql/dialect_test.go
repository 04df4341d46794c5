package mssql

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/druscope/druscope/internal/database"
)

func TestDialectIsRegistered(t *testing.T) {
	d, err := database.LookupDialect(database.DriverMSSQL)
	require.NoError(t, err)
	assert.IsType(t, &Dialect{}, d)
}

func TestQuoteIdentifier(t *testing.T) {
	d := &Dialect{}
	assert.Equal(t, "[users]", d.QuoteIdentifier("users"))
	assert.Equal(t, "[we]]ird]", d.QuoteIdentifier("we]ird"))
}

func TestRebind(t *testing.T) {
	d := &Dialect{}
	assert.Equal(t,
		"SELECT * FROM t WHERE a = @p1 AND b = @p2",
		d.Rebind("SELECT * FROM t WHERE a = ? AND b = ?"))
}

func TestLimitQuery(t *testing.T) {
	d := &Dialect{}

	assert.Equal(t,
		"SELECT TOP (10) * FROM t",
		d.LimitQuery("SELECT * FROM t", 10))

	// keyword match is case-insensitive and survives leading whitespace
	assert.Equal(t,
		"SELECT TOP (3) name FROM t",
		d.LimitQuery("  select name FROM t", 3))

	// non-SELECT statements pass through unchanged
	assert.Equal(t,
		"EXEC something",
		d.LimitQuery("EXEC something", 10))
}

func TestColumnsQueryIsParameterized(t *testing.T) {
	d := &Dialect{}
	query, args := d.ColumnsQuery("dr_users")
	assert.Contains(t, query, "INFORMATION_SCHEMA.COLUMNS")
	assert.Contains(t, query, "TABLE_NAME = ?")
	assert.Equal(t, []any{"dr_users"}, args)
}

func TestLikeCondition(t *testing.T) {
	d := &Dialect{}
	assert.Equal(t, "LOWER([name]) LIKE LOWER(?)", d.LikeCondition("name"))
}

func TestStringAgg(t *testing.T) {
	d := &Dialect{}
	assert.Equal(t,
		"STRING_AGG(r.id, ',') WITHIN GROUP (ORDER BY r.id)",
		d.StringAgg("r.id"))
}

func TestTextTypes(t *testing.T) {
	d := &Dialect{}
	types := d.TextTypes()
	assert.Contains(t, types, "nvarchar")
	assert.Contains(t, types, "text")
	assert.NotContains(t, types, "int")
}

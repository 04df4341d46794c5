package postgres

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/druscope/druscope/internal/database"
)

func TestDialectIsRegistered(t *testing.T) {
	d, err := database.LookupDialect(database.DriverPostgres)
	require.NoError(t, err)
	assert.IsType(t, &Dialect{}, d)
}

func TestQuoteIdentifier(t *testing.T) {
	d := &Dialect{}
	assert.Equal(t, `"users"`, d.QuoteIdentifier("users"))
	assert.Equal(t, `"we""ird"`, d.QuoteIdentifier(`we"ird`))
}

func TestRebind(t *testing.T) {
	d := &Dialect{}
	assert.Equal(t,
		"SELECT * FROM t WHERE a = $1 AND b = $2",
		d.Rebind("SELECT * FROM t WHERE a = ? AND b = ?"))
}

func TestLimitQuery(t *testing.T) {
	d := &Dialect{}
	assert.Equal(t, "SELECT * FROM t LIMIT 5", d.LimitQuery("SELECT * FROM t", 5))
}

func TestColumnsQueryIsParameterized(t *testing.T) {
	d := &Dialect{}
	query, args := d.ColumnsQuery("dr_users")
	assert.Contains(t, query, "information_schema.columns")
	assert.Contains(t, query, "table_name = ?")
	assert.Equal(t, []any{"dr_users"}, args)
}

func TestLikeCondition(t *testing.T) {
	d := &Dialect{}
	assert.Equal(t, `"name" ILIKE ?`, d.LikeCondition("name"))
}

func TestStringAgg(t *testing.T) {
	d := &Dialect{}
	assert.Equal(t, "STRING_AGG(DISTINCT r.id, ',')", d.StringAgg("r.id"))
}

func TestTextTypes(t *testing.T) {
	d := &Dialect{}
	types := d.TextTypes()
	assert.Contains(t, types, "text")
	assert.Contains(t, types, "character varying")
	assert.NotContains(t, types, "integer")
}

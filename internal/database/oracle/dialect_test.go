package oracle

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/druscope/druscope/internal/database"
)

func TestDialectIsRegistered(t *testing.T) {
	d, err := database.LookupDialect(database.DriverOracle)
	require.NoError(t, err)
	assert.IsType(t, &Dialect{}, d)
}

func TestQuoteIdentifierFoldsToDictionaryCase(t *testing.T) {
	d := &Dialect{}
	assert.Equal(t, `"USERS"`, d.QuoteIdentifier("users"))
	assert.Equal(t, `"DR_NODE"`, d.QuoteIdentifier("dr_node"))
}

func TestRebind(t *testing.T) {
	d := &Dialect{}
	assert.Equal(t,
		"SELECT * FROM t WHERE a = :1 AND b = :2",
		d.Rebind("SELECT * FROM t WHERE a = ? AND b = ?"))
}

func TestLimitQueryWrapsWithRownum(t *testing.T) {
	d := &Dialect{}
	assert.Equal(t,
		"SELECT * FROM (SELECT * FROM t) WHERE ROWNUM <= 10",
		d.LimitQuery("SELECT * FROM t", 10))
}

func TestColumnsQueryUppercasesTableName(t *testing.T) {
	d := &Dialect{}
	query, args := d.ColumnsQuery("dr_users")
	assert.Contains(t, query, "user_tab_columns")
	assert.Equal(t, []any{"DR_USERS"}, args)
}

func TestNormalizeTableName(t *testing.T) {
	d := &Dialect{}
	assert.Equal(t, "dr_users", d.NormalizeTableName("DR_USERS"))
}

func TestLikeCondition(t *testing.T) {
	d := &Dialect{}
	got := d.LikeCondition("name")
	assert.Equal(t, `UPPER("NAME") LIKE UPPER(?)`, got)

	// the placeholder inside the function call survives rebinding
	assert.Equal(t, `UPPER("NAME") LIKE UPPER(:1)`, d.Rebind(got))
}

func TestStringAgg(t *testing.T) {
	d := &Dialect{}
	assert.Equal(t,
		"LISTAGG(r.id, ',') WITHIN GROUP (ORDER BY r.id)",
		d.StringAgg("r.id"))
}

func TestTextTypes(t *testing.T) {
	d := &Dialect{}
	types := d.TextTypes()
	assert.Contains(t, types, "varchar2")
	assert.Contains(t, types, "clob")
	assert.NotContains(t, types, "number")
}

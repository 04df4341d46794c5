package database

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/druscope/druscope/internal/errs"
)

func TestListTables(t *testing.T) {
	m, mock := newTestManager(t)

	mock.ExpectQuery("SHOW TABLES").WillReturnRows(
		sqlmock.NewRows([]string{"Tables_in_drupal_db"}).
			AddRow("dr_node_field_data").
			AddRow("dr_users_field_data").
			AddRow("legacy_audit"))

	tables, err := m.ListTables(context.Background())
	require.NoError(t, err)

	// prefixed names come back logical; tables outside the prefix
	// namespace are omitted entirely
	assert.Equal(t, []string{"node_field_data", "users_field_data"}, tables)
}

func TestListTablesRoundTripsIntoTableColumns(t *testing.T) {
	m, mock := newTestManager(t)

	mock.ExpectQuery("SHOW TABLES").WillReturnRows(
		sqlmock.NewRows([]string{"Tables_in_drupal_db"}).
			AddRow("dr_users").
			AddRow("legacy_audit"))

	tables, err := m.ListTables(context.Background())
	require.NoError(t, err)
	require.Equal(t, []string{"users"}, tables)

	// every listed name resolves when the prefix is re-applied
	mock.ExpectQuery("DESCRIBE `dr_users`").WillReturnRows(
		sqlmock.NewRows([]string{"Field", "Type"}).
			AddRow("uid", "int"))

	cols, err := m.TableColumns(context.Background(), tables[0])
	require.NoError(t, err)
	assert.Equal(t, "uid", cols[0].Name)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestListTablesNoPrefixKeepsEverything(t *testing.T) {
	conn, mock := newMockConn(t, nil)
	cfg := testConfig()
	cfg.Prefix = ""
	m := NewManager(cfg, &stubDialect{conns: []Conn{conn}}, nil)

	mock.ExpectQuery("SHOW TABLES").WillReturnRows(
		sqlmock.NewRows([]string{"Tables_in_drupal_db"}).
			AddRow("users").
			AddRow("legacy_audit"))

	tables, err := m.ListTables(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"users", "legacy_audit"}, tables)
}

func TestListTablesEmpty(t *testing.T) {
	m, mock := newTestManager(t)

	mock.ExpectQuery("SHOW TABLES").
		WillReturnRows(sqlmock.NewRows([]string{"Tables_in_drupal_db"}))

	tables, err := m.ListTables(context.Background())
	require.NoError(t, err)
	assert.Empty(t, tables)
}

func TestTableColumns(t *testing.T) {
	m, mock := newTestManager(t)

	// DESCRIBE returns more columns than we consume; name and type are
	// taken positionally from the first two
	mock.ExpectQuery("DESCRIBE `dr_users`").WillReturnRows(
		sqlmock.NewRows([]string{"Field", "Type", "Null", "Key"}).
			AddRow("uid", "int(10) unsigned", "NO", "PRI").
			AddRow("name", "varchar(60)", "NO", ""))

	cols, err := m.TableColumns(context.Background(), "users")
	require.NoError(t, err)
	assert.Equal(t, []ColumnDef{
		{Name: "uid", DataType: "int(10) unsigned"},
		{Name: "name", DataType: "varchar(60)"},
	}, cols)
}

func TestTableSchema(t *testing.T) {
	m, mock := newTestManager(t)

	mock.ExpectQuery("DESCRIBE `dr_users`").WillReturnRows(
		sqlmock.NewRows([]string{"Field", "Type"}).
			AddRow("uid", "int").
			AddRow("name", "varchar(60)"))

	schema, err := m.TableSchema(context.Background(), "users")
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"uid": "int", "name": "varchar(60)"}, schema)
}

func TestTableColumnsUnsafeIdentifier(t *testing.T) {
	m, _ := newTestManager(t)

	_, err := m.TableColumns(context.Background(), "users; DROP TABLE x")
	require.Error(t, err)
	assert.True(t, errs.IsUnsafeIdentifier(err))
}

func TestTableColumnsMissingTableIsNotFound(t *testing.T) {
	m, mock := newTestManager(t)

	mock.ExpectQuery("DESCRIBE `dr_ghost`").
		WillReturnRows(sqlmock.NewRows([]string{"Field", "Type"}))

	_, err := m.TableColumns(context.Background(), "ghost")
	require.Error(t, err)
	assert.True(t, errs.IsNotFound(err))
}

func TestIsTextType(t *testing.T) {
	m, _ := newTestManager(t)

	assert.True(t, m.IsTextType("varchar"))
	assert.True(t, m.IsTextType("VARCHAR(255)"))
	assert.True(t, m.IsTextType("  text "))

	assert.False(t, m.IsTextType("int(11)"))
	assert.False(t, m.IsTextType("datetime"))
	assert.False(t, m.IsTextType(""))
}

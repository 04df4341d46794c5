package drupal

import (
	"context"
	"fmt"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/druscope/druscope/internal/database"
	"github.com/druscope/druscope/internal/errs"
)

// mysqlish is a question-placeholder dialect serving a sqlmock connection.
type mysqlish struct {
	conn database.Conn
}

func (d *mysqlish) Name() database.Driver { return database.DriverMySQL }

func (d *mysqlish) Connect(ctx context.Context, cfg *database.Config) (database.Conn, error) {
	return d.conn, nil
}

func (d *mysqlish) QuoteIdentifier(name string) string { return "`" + name + "`" }

func (d *mysqlish) Rebind(query string) string {
	return database.Rebind(database.PlaceholderQuestion, query)
}

func (d *mysqlish) LimitQuery(query string, n int) string {
	return fmt.Sprintf("%s LIMIT %d", query, n)
}

func (d *mysqlish) TablesQuery() string { return "SHOW TABLES" }

func (d *mysqlish) ColumnsQuery(physical string) (string, []any) {
	return "DESCRIBE `" + physical + "`", nil
}

func (d *mysqlish) NormalizeTableName(name string) string { return name }

func (d *mysqlish) TextTypes() map[string]struct{} {
	return map[string]struct{}{"varchar": {}, "text": {}}
}

func (d *mysqlish) LikeCondition(column string) string { return "`" + column + "` LIKE ?" }

func (d *mysqlish) StringAgg(expr string) string {
	return fmt.Sprintf("GROUP_CONCAT(DISTINCT %s)", expr)
}

func newTestStore(t *testing.T) (*Store, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	cfg := &database.Config{
		Driver:   database.DriverMySQL,
		Host:     "localhost",
		Port:     3306,
		Username: "u",
		Password: "p",
		Database: "drupal",
		Prefix:   "dr_",
	}
	m := database.NewManager(cfg, &mysqlish{conn: database.NewSQLConn(db, nil)}, nil)
	return NewStore(m), mock
}

func TestNodeByID(t *testing.T) {
	store, mock := newTestStore(t)

	mock.ExpectQuery("FROM dr_node_field_data nfd").
		WithArgs(int64(42)).
		WillReturnRows(sqlmock.NewRows(
			[]string{"nid", "type", "title", "author_name", "body_value"}).
			AddRow(42, "article", "Hello", "alice", "<p>Body</p>"))

	row, err := store.NodeByID(context.Background(), 42)
	require.NoError(t, err)
	assert.Equal(t, "Hello", row["title"])
	assert.Equal(t, "alice", row["author_name"])
}

func TestNodeByIDNotFound(t *testing.T) {
	store, mock := newTestStore(t)

	mock.ExpectQuery("FROM dr_node_field_data nfd").
		WithArgs(int64(404)).
		WillReturnRows(sqlmock.NewRows([]string{"nid"}))

	_, err := store.NodeByID(context.Background(), 404)
	require.Error(t, err)
	assert.True(t, errs.IsNotFound(err))
}

func TestContentTypes(t *testing.T) {
	store, mock := newTestStore(t)

	mock.ExpectQuery("SELECT type, name, description FROM dr_node_type").
		WillReturnRows(sqlmock.NewRows([]string{"type", "name", "description"}).
			AddRow("article", "Article", "Long-form content").
			AddRow("page", "Basic page", ""))

	rs, err := store.ContentTypes(context.Background())
	require.NoError(t, err)
	require.Len(t, rs.Rows, 2)
	assert.Equal(t, "article", rs.Rows[0]["type"])
}

func TestTermByID(t *testing.T) {
	store, mock := newTestStore(t)

	mock.ExpectQuery("FROM dr_taxonomy_term_field_data tfd").
		WithArgs(int64(7)).
		WillReturnRows(sqlmock.NewRows(
			[]string{"tid", "name", "vocabulary_name"}).
			AddRow(7, "Go", "Tags"))

	row, err := store.TermByID(context.Background(), 7)
	require.NoError(t, err)
	assert.Equal(t, "Go", row["name"])
	assert.Equal(t, "Tags", row["vocabulary_name"])
}

func TestVocabularies(t *testing.T) {
	store, mock := newTestStore(t)

	mock.ExpectQuery("SELECT vid, name, description FROM dr_taxonomy_vocabulary").
		WillReturnRows(sqlmock.NewRows([]string{"vid", "name", "description"}).
			AddRow("tags", "Tags", ""))

	rs, err := store.Vocabularies(context.Background())
	require.NoError(t, err)
	require.Len(t, rs.Rows, 1)
}

func TestUserByIDAggregatesRoles(t *testing.T) {
	store, mock := newTestStore(t)

	mock.ExpectQuery(`GROUP_CONCAT\(DISTINCT ur.roles_target_id\) AS roles`).
		WithArgs(int64(1)).
		WillReturnRows(sqlmock.NewRows(
			[]string{"uid", "name", "mail", "roles"}).
			AddRow(1, "admin", "admin@example.com", "administrator,editor"))

	row, err := store.UserByID(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, "admin", row["name"])
	assert.Equal(t, "administrator,editor", row["roles"])
}

func TestParagraphsByNodeID(t *testing.T) {
	store, mock := newTestStore(t)

	mock.ExpectQuery("FROM dr_node__field_sections p_ref").
		WithArgs(int64(42)).
		WillReturnRows(sqlmock.NewRows(
			[]string{"paragraph_id", "paragraph_type", "paragraph_status"}).
			AddRow(10, "hero", 1).
			AddRow(11, "text_block", 1))

	rs, err := store.ParagraphsByNodeID(context.Background(), 42, "field_sections")
	require.NoError(t, err)
	require.Len(t, rs.Rows, 2)
	assert.Equal(t, "hero", rs.Rows[0]["paragraph_type"])
}

func TestParagraphsByNodeIDRejectsUnsafeField(t *testing.T) {
	store, _ := newTestStore(t)

	_, err := store.ParagraphsByNodeID(context.Background(), 42, "field; DROP TABLE x")
	require.Error(t, err)
	assert.True(t, errs.IsUnsafeIdentifier(err))
}

// Package drupal provides read-only accessors for common Drupal entities:
// nodes, content types, taxonomy terms, vocabularies, users, and
// paragraphs. All table references are logical names expanded through the
// manager's prefix, so the same queries work on prefixed installations.
package drupal

import (
	"context"
	"fmt"

	"github.com/druscope/druscope/internal/database"
	"github.com/druscope/druscope/internal/errs"
)

// Store runs Drupal content queries through a database manager.
type Store struct {
	db *database.Manager
}

// NewStore wraps db.
func NewStore(db *database.Manager) *Store {
	return &Store{db: db}
}

// NodeByID fetches a node with its author and body. The body comes from
// node__body when the current revision carries one, falling back to
// node_revision__body otherwise.
func (s *Store) NodeByID(ctx context.Context, nid int64) (database.Row, error) {
	query := s.db.PrepareQuery(`
		SELECT
			nfd.nid, nfd.vid, nfd.type, nfd.langcode, nfd.status, nfd.uid,
			nfd.title, nfd.created, nfd.changed,
			ufd.name AS author_name,
			COALESCE(nb.body_value, nrb.body_value) AS body_value,
			COALESCE(nb.body_summary, nrb.body_summary) AS body_summary,
			COALESCE(nb.body_format, nrb.body_format) AS body_format
		FROM {node_field_data} nfd
		LEFT JOIN {users_field_data} ufd ON nfd.uid = ufd.uid
		LEFT JOIN {node__body} nb ON nfd.nid = nb.entity_id
			AND nfd.vid = nb.revision_id AND nb.deleted = 0 AND nb.langcode = nfd.langcode
		LEFT JOIN {node_revision__body} nrb ON nfd.vid = nrb.revision_id
			AND nrb.deleted = 0 AND nrb.langcode = nfd.langcode
		WHERE nfd.nid = ?`)
	return s.db.QueryOne(ctx, query, nid)
}

// ContentTypes lists all node types.
func (s *Store) ContentTypes(ctx context.Context) (*database.ResultSet, error) {
	query := s.db.PrepareQuery("SELECT type, name, description FROM {node_type}")
	return s.db.Query(ctx, query)
}

// TermByID fetches a taxonomy term with its vocabulary name.
func (s *Store) TermByID(ctx context.Context, tid int64) (database.Row, error) {
	query := s.db.PrepareQuery(`
		SELECT
			tfd.tid, tfd.vid, tfd.name, tfd.description, tfd.langcode,
			tv.name AS vocabulary_name
		FROM {taxonomy_term_field_data} tfd
		LEFT JOIN {taxonomy_vocabulary} tv ON tfd.vid = tv.vid
		WHERE tfd.tid = ?`)
	return s.db.QueryOne(ctx, query, tid)
}

// Vocabularies lists all taxonomy vocabularies.
func (s *Store) Vocabularies(ctx context.Context) (*database.ResultSet, error) {
	query := s.db.PrepareQuery("SELECT vid, name, description FROM {taxonomy_vocabulary}")
	return s.db.Query(ctx, query)
}

// UserByID fetches a user with a comma-joined roles column. Role
// aggregation uses the dialect's string-aggregation function, which is
// the one content query whose SQL differs per backend.
func (s *Store) UserByID(ctx context.Context, uid int64) (database.Row, error) {
	roles := s.db.Dialect().StringAgg("ur.roles_target_id")
	query := s.db.PrepareQuery(fmt.Sprintf(`
		SELECT
			ufd.uid, ufd.name, ufd.mail, ufd.status, ufd.created, ufd.changed, ufd.langcode,
			%s AS roles
		FROM {users_field_data} ufd
		LEFT JOIN {user__roles} ur ON ufd.uid = ur.entity_id
		WHERE ufd.uid = ?
		GROUP BY
			ufd.uid, ufd.name, ufd.mail, ufd.status, ufd.created, ufd.changed, ufd.langcode`, roles))
	return s.db.QueryOne(ctx, query, uid)
}

// ParagraphsByNodeID lists the paragraph entities a node references
// through the given paragraph field, in delta order. The field name
// becomes part of table and column identifiers, so it must pass the
// identifier check before being interpolated.
func (s *Store) ParagraphsByNodeID(ctx context.Context, nid int64, field string) (*database.ResultSet, error) {
	if !database.ValidIdentifier(field) {
		return nil, errs.Newf(errs.ErrKindUnsafeIdentifier, "invalid paragraph field name %q", field)
	}
	query := s.db.PrepareQuery(fmt.Sprintf(`
		SELECT
			p_ref.%[1]s_target_id AS paragraph_id,
			p_ref.%[1]s_target_revision_id AS paragraph_revision_id,
			pfd.id AS paragraph_item_id,
			pfd.type AS paragraph_type,
			pfd.langcode AS paragraph_langcode,
			pfd.status AS paragraph_status
		FROM {node__%[1]s} p_ref
		JOIN {paragraphs_item_field_data} pfd ON p_ref.%[1]s_target_id = pfd.id
			AND p_ref.%[1]s_target_revision_id = pfd.revision_id
		WHERE p_ref.entity_id = ? AND p_ref.deleted = 0
		ORDER BY p_ref.delta ASC`, field))
	return s.db.Query(ctx, query, nid)
}

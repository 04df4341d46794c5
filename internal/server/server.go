// Package server exposes the database access layer over HTTP. All
// responses are JSON; errors carry the unified error kind and map onto
// conventional status codes.
package server

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/druscope/druscope/internal/database"
	"github.com/druscope/druscope/internal/drupal"
	"github.com/druscope/druscope/internal/errs"
	"github.com/druscope/druscope/internal/logger"
	"github.com/druscope/druscope/internal/report"
)

// maxSearchRowLimit caps the per-column row limit a client may request.
const maxSearchRowLimit = 100

// Server wires the manager, the content store, and the optional report
// exporter behind an HTTP API.
type Server struct {
	db       *database.Manager
	content  *drupal.Store
	exporter *report.Exporter // nil when export is not configured
	log      *logger.Logger
}

// New builds a Server. exporter may be nil; the report endpoints then
// answer 503.
func New(db *database.Manager, exporter *report.Exporter, log *logger.Logger) *Server {
	if log == nil {
		log = logger.Nop()
	}
	return &Server{
		db:       db,
		content:  drupal.NewStore(db),
		exporter: exporter,
		log:      log,
	}
}

// Router builds the HTTP routing table.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(s.requestLogger)

	r.Get("/healthz", s.handleHealth)

	r.Route("/v1", func(r chi.Router) {
		r.Get("/tables", s.handleListTables)
		r.Get("/tables/{table}/schema", s.handleTableSchema)
		r.Post("/query", s.handleQuery)

		r.Get("/search", s.handleSearch)
		r.Post("/search/report", s.handleSearchReport)
		r.Post("/schema/report", s.handleSchemaReport)

		r.Get("/content-types", s.handleContentTypes)
		r.Get("/nodes/{nid}", s.handleNode)
		r.Get("/nodes/{nid}/paragraphs/{field}", s.handleParagraphs)
		r.Get("/vocabularies", s.handleVocabularies)
		r.Get("/terms/{tid}", s.handleTerm)
		r.Get("/users/{uid}", s.handleUser)
	})

	return r
}

// --- middleware ---

func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		s.log.With().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", ww.Status()).
			Str("duration", time.Since(start).String()).
			Logger().
			Info("request handled")
	})
}

// --- handlers ---

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleListTables(w http.ResponseWriter, r *http.Request) {
	tables, err := s.db.ListTables(r.Context())
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"tables": tables})
}

func (s *Server) handleTableSchema(w http.ResponseWriter, r *http.Request) {
	table := chi.URLParam(r, "table")
	columns, err := s.db.TableColumns(r.Context(), table)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"table": table, "columns": columns})
}

type queryRequest struct {
	SQL    string `json:"sql"`
	Params []any  `json:"params"`
}

// handleQuery runs a caller-supplied statement. Only SELECT is accepted;
// this layer is read-only by contract.
func (s *Server) handleQuery(w http.ResponseWriter, r *http.Request) {
	var req queryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, errs.Wrap(errs.ErrKindInvalidInput, "invalid request body", err))
		return
	}
	sql := strings.TrimSpace(req.SQL)
	if sql == "" {
		s.writeError(w, errs.New(errs.ErrKindInvalidInput, "sql is required"))
		return
	}
	if !strings.EqualFold(firstWord(sql), "SELECT") {
		s.writeError(w, errs.New(errs.ErrKindInvalidInput, "only SELECT statements are allowed"))
		return
	}

	result, err := s.db.Query(r.Context(), s.db.PrepareQuery(sql), req.Params...)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	needle := r.URL.Query().Get("q")
	if needle == "" {
		s.writeError(w, errs.New(errs.ErrKindInvalidInput, "query parameter q is required"))
		return
	}

	limit := database.DefaultSearchRowLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 || n > maxSearchRowLimit {
			s.writeError(w, errs.Newf(errs.ErrKindInvalidInput,
				"limit must be an integer between 1 and %d", maxSearchRowLimit))
			return
		}
		limit = n
	}

	findings, err := s.db.SearchAllTables(r.Context(), needle, limit)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"needle": needle, "findings": findings})
}

type searchReportRequest struct {
	Needle string `json:"needle"`
	Limit  int    `json:"limit"`
}

func (s *Server) handleSearchReport(w http.ResponseWriter, r *http.Request) {
	if s.exporter == nil {
		s.writeError(w, errs.New(errs.ErrKindConnectionFailed, "report export is not configured"))
		return
	}

	var req searchReportRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, errs.Wrap(errs.ErrKindInvalidInput, "invalid request body", err))
		return
	}
	if req.Needle == "" {
		s.writeError(w, errs.New(errs.ErrKindInvalidInput, "needle is required"))
		return
	}
	if req.Limit < 1 || req.Limit > maxSearchRowLimit {
		req.Limit = database.DefaultSearchRowLimit
	}

	findings, err := s.db.SearchAllTables(r.Context(), req.Needle, req.Limit)
	if err != nil {
		s.writeError(w, err)
		return
	}

	receipt, err := s.exporter.ExportSearch(r.Context(), &report.SearchReport{
		Database: s.db.Config().Database,
		Driver:   string(s.db.Dialect().Name()),
		Needle:   req.Needle,
		Findings: findings,
	})
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, receipt)
}

func (s *Server) handleSchemaReport(w http.ResponseWriter, r *http.Request) {
	if s.exporter == nil {
		s.writeError(w, errs.New(errs.ErrKindConnectionFailed, "report export is not configured"))
		return
	}

	tables, err := s.db.ListTables(r.Context())
	if err != nil {
		s.writeError(w, err)
		return
	}

	schema := make(map[string][]database.ColumnDef, len(tables))
	for _, table := range tables {
		columns, err := s.db.TableColumns(r.Context(), table)
		if err != nil {
			s.log.WarnWith("skipping table in schema report", err, map[string]any{"table": table})
			continue
		}
		schema[table] = columns
	}

	receipt, err := s.exporter.ExportSchema(r.Context(), &report.SchemaReport{
		Database: s.db.Config().Database,
		Driver:   string(s.db.Dialect().Name()),
		Tables:   schema,
	})
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, receipt)
}

func (s *Server) handleContentTypes(w http.ResponseWriter, r *http.Request) {
	result, err := s.content.ContentTypes(r.Context())
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleNode(w http.ResponseWriter, r *http.Request) {
	nid, ok := s.idParam(w, r, "nid")
	if !ok {
		return
	}
	row, err := s.content.NodeByID(r.Context(), nid)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, row)
}

func (s *Server) handleParagraphs(w http.ResponseWriter, r *http.Request) {
	nid, ok := s.idParam(w, r, "nid")
	if !ok {
		return
	}
	result, err := s.content.ParagraphsByNodeID(r.Context(), nid, chi.URLParam(r, "field"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleVocabularies(w http.ResponseWriter, r *http.Request) {
	result, err := s.content.Vocabularies(r.Context())
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleTerm(w http.ResponseWriter, r *http.Request) {
	tid, ok := s.idParam(w, r, "tid")
	if !ok {
		return
	}
	row, err := s.content.TermByID(r.Context(), tid)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, row)
}

func (s *Server) handleUser(w http.ResponseWriter, r *http.Request) {
	uid, ok := s.idParam(w, r, "uid")
	if !ok {
		return
	}
	row, err := s.content.UserByID(r.Context(), uid)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, row)
}

// --- helpers ---

func (s *Server) idParam(w http.ResponseWriter, r *http.Request, name string) (int64, bool) {
	raw := chi.URLParam(r, name)
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id < 0 {
		s.writeError(w, errs.Newf(errs.ErrKindInvalidInput, "%s must be a non-negative integer", name))
		return 0, false
	}
	return id, true
}

func firstWord(s string) string {
	if i := strings.IndexAny(s, " \t\r\n"); i >= 0 {
		return s[:i]
	}
	return s
}

type errorResponse struct {
	Error string `json:"error"`
	Kind  string `json:"kind"`
}

func (s *Server) writeError(w http.ResponseWriter, err error) {
	kind := errs.KindOf(err)
	status := statusForKind(kind)
	if status >= http.StatusInternalServerError {
		s.log.ErrorWith("request failed", err, nil)
	}
	writeJSON(w, status, errorResponse{Error: err.Error(), Kind: kind.String()})
}

func statusForKind(kind errs.ErrKind) int {
	switch kind {
	case errs.ErrKindNotFound:
		return http.StatusNotFound
	case errs.ErrKindInvalidInput, errs.ErrKindUnsafeIdentifier, errs.ErrKindUnsupportedDriver:
		return http.StatusBadRequest
	case errs.ErrKindPermissionDenied:
		return http.StatusForbidden
	case errs.ErrKindConnectionFailed:
		return http.StatusServiceUnavailable
	case errs.ErrKindTimeout:
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

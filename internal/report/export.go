// Package report serializes search and schema results to JSON and uploads
// them to object storage, returning a presigned download link.
package report

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/druscope/druscope/internal/database"
	"github.com/druscope/druscope/internal/errs"
	"github.com/druscope/druscope/internal/filestore"
	"github.com/druscope/druscope/internal/logger"
)

// DefaultLinkTTL is how long presigned report links stay valid.
const DefaultLinkTTL = 24 * time.Hour

// SearchReport is the exported shape of a cross-table search run.
type SearchReport struct {
	GeneratedAt time.Time          `json:"generated_at"`
	Database    string             `json:"database"`
	Driver      string             `json:"driver"`
	Needle      string             `json:"needle"`
	Findings    []database.Finding `json:"findings"`
}

// SchemaReport is the exported shape of a full-database schema dump.
type SchemaReport struct {
	GeneratedAt time.Time                       `json:"generated_at"`
	Database    string                          `json:"database"`
	Driver      string                          `json:"driver"`
	Tables      map[string][]database.ColumnDef `json:"tables"`
}

// Receipt points at an uploaded report. Size and ETag come from a stat
// of the stored object, confirming the upload landed intact.
type Receipt struct {
	Bucket    string    `json:"bucket"`
	Key       string    `json:"key"`
	URL       string    `json:"url"`
	Size      int64     `json:"size"`
	ETag      string    `json:"etag,omitempty"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Exporter uploads reports to a filestore bucket.
type Exporter struct {
	store  filestore.Store
	bucket string
	log    *logger.Logger
}

// NewExporter wraps store. A nil log discards output.
func NewExporter(store filestore.Store, bucket string, log *logger.Logger) *Exporter {
	if log == nil {
		log = logger.Nop()
	}
	return &Exporter{store: store, bucket: bucket, log: log}
}

// ExportSearch uploads a search report and returns its download receipt.
func (e *Exporter) ExportSearch(ctx context.Context, r *SearchReport) (*Receipt, error) {
	if r.GeneratedAt.IsZero() {
		r.GeneratedAt = time.Now().UTC()
	}
	return e.upload(ctx, "search", r)
}

// ExportSchema uploads a schema report and returns its download receipt.
func (e *Exporter) ExportSchema(ctx context.Context, r *SchemaReport) (*Receipt, error) {
	if r.GeneratedAt.IsZero() {
		r.GeneratedAt = time.Now().UTC()
	}
	return e.upload(ctx, "schema", r)
}

func (e *Exporter) upload(ctx context.Context, kind string, payload any) (*Receipt, error) {
	data, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		return nil, errs.Wrap(errs.ErrKindInvalidInput, "failed to marshal report", err)
	}

	key := objectKey(kind, time.Now().UTC())
	if err := e.store.PutObject(ctx, e.bucket, key, bytes.NewReader(data), int64(len(data)), "application/json"); err != nil {
		return nil, err
	}

	// Stat the stored object so the receipt reflects what the backend
	// actually holds, not what was sent.
	info, err := e.store.StatObject(ctx, e.bucket, key)
	if err != nil {
		return nil, err
	}

	url, err := e.store.PresignGetURL(ctx, e.bucket, key, DefaultLinkTTL)
	if err != nil {
		return nil, err
	}

	e.log.With().Str("bucket", e.bucket).Str("key", key).Logger().
		Infof("exported %s report (%d bytes)", kind, info.Size)

	return &Receipt{
		Bucket:    e.bucket,
		Key:       key,
		URL:       url,
		Size:      info.Size,
		ETag:      info.ETag,
		ExpiresAt: time.Now().UTC().Add(DefaultLinkTTL),
	}, nil
}

// objectKey builds keys like "search/20260826T153000-1a2b3c4d.json".
func objectKey(kind string, now time.Time) string {
	short := uuid.NewString()[:8]
	return fmt.Sprintf("%s/%s-%s.json", kind, now.Format("20060102T150405"), short)
}

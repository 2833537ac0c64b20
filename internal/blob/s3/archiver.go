package s3blob

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/predictwatch/arbscan/internal/domain"
)

// ArchiveImpl implements domain.Archiver by draining expired opportunities
// from the store, serializing them to JSONL, uploading the result to S3, and
// then pruning the archived rows. Rows are pruned only after the upload
// succeeded, so a failed upload leaves the store untouched.
type ArchiveImpl struct {
	writer domain.BlobWriter
	store  domain.OpportunityStore
	logger *slog.Logger
}

var _ domain.Archiver = (*ArchiveImpl)(nil)

// NewArchiver creates a new ArchiveImpl.
func NewArchiver(writer domain.BlobWriter, store domain.OpportunityStore, logger *slog.Logger) *ArchiveImpl {
	return &ArchiveImpl{
		writer: writer,
		store:  store,
		logger: logger,
	}
}

// ArchiveExpired uploads all expired opportunities detected before the
// cutoff to archive/opportunities/YYYY-MM.jsonl, deletes them from the
// store, and returns the number of archived records.
func (a *ArchiveImpl) ArchiveExpired(ctx context.Context, before time.Time) (int64, error) {
	opps, err := a.store.ListExpiredBefore(ctx, before)
	if err != nil {
		return 0, fmt.Errorf("s3blob: archive expired query: %w", err)
	}
	if len(opps) == 0 {
		return 0, nil
	}

	buf, err := marshalJSONL(opps)
	if err != nil {
		return 0, fmt.Errorf("s3blob: archive expired marshal: %w", err)
	}

	path := archivePath("opportunities", before)
	if err := a.writer.Put(ctx, path, bytes.NewReader(buf), "application/x-ndjson"); err != nil {
		return 0, fmt.Errorf("s3blob: archive expired upload: %w", err)
	}

	deleted, err := a.store.DeleteExpiredBefore(ctx, before)
	if err != nil {
		// The upload succeeded, so the data is safe; the rows will be
		// retried (and re-uploaded) on the next run.
		return int64(len(opps)), fmt.Errorf("s3blob: archive expired prune: %w", err)
	}

	a.logger.InfoContext(ctx, "s3blob: expired opportunities archived",
		slog.String("path", path),
		slog.Int("archived", len(opps)),
		slog.Int64("pruned", deleted),
		slog.Time("before", before),
	)
	return int64(len(opps)), nil
}

// archivePath builds the S3 key for an archive file, partitioned by the
// year-month of the cutoff time.
//
//	archive/opportunities/2025-01.jsonl
func archivePath(kind string, before time.Time) string {
	return fmt.Sprintf("archive/%s/%s.jsonl", kind, before.Format("2006-01"))
}

// marshalJSONL serialises a slice of values as newline-delimited JSON (JSONL).
// Each element is marshalled as a single compact JSON line followed by '\n'.
func marshalJSONL[T any](records []T) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)

	for i, rec := range records {
		if err := enc.Encode(rec); err != nil {
			return nil, fmt.Errorf("jsonl encode record %d: %w", i, err)
		}
	}
	return buf.Bytes(), nil
}

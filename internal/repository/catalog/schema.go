package catalog

import (
	"context"
	"fmt"
)

// schema is applied at startup; both statements are idempotent.
const schema = `
CREATE TABLE IF NOT EXISTS documents (
    id         VARCHAR(64) PRIMARY KEY,
    title      TEXT NOT NULL,
    doc_type   VARCHAR(50) NOT NULL DEFAULT '',
    state      VARCHAR(10) NOT NULL DEFAULT '',
    tags       TEXT[] NOT NULL DEFAULT '{}',
    page_count INTEGER NOT NULL DEFAULT 0,
    created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
    updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS citations (
    chunk_id         VARCHAR(64) PRIMARY KEY,
    document_id      VARCHAR(64) NOT NULL REFERENCES documents(id) ON DELETE CASCADE,
    page_number      INTEGER NOT NULL CHECK (page_number >= 1),
    paragraph_number INTEGER CHECK (paragraph_number >= 1),
    section_title    TEXT NOT NULL DEFAULT '',
    content_hash     CHAR(64) NOT NULL,
    url              TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS citations_document_id_idx ON citations (document_id);
`

// EnsureSchema creates the catalog tables if they do not exist.
func (r *Repo) EnsureSchema(ctx context.Context) error {
	if _, err := r.db.Exec(ctx, schema); err != nil {
		return fmt.Errorf("apply catalog schema: %w", err)
	}
	return nil
}

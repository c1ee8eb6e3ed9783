package catalog

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/claimsight/claimsight/internal/domain"
	"github.com/claimsight/claimsight/internal/domain/chunk"
	"github.com/claimsight/claimsight/internal/domain/suggestion"
)

// SaveCitations persists one citation row per chunk. Rows are keyed by chunk
// id, so re-ingesting a document overwrites its citations in place.
func (r *Repo) SaveCitations(ctx context.Context, documentID string, chunks []chunk.Chunk) error {
	query := `
		INSERT INTO citations (
			chunk_id, document_id, page_number, paragraph_number,
			section_title, content_hash, url
		) VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (chunk_id) DO UPDATE SET
			page_number = EXCLUDED.page_number,
			paragraph_number = EXCLUDED.paragraph_number,
			section_title = EXCLUDED.section_title,
			content_hash = EXCLUDED.content_hash,
			url = EXCLUDED.url`

	for i := range chunks {
		c := &chunks[i]
		_, err := r.db.Exec(ctx, query,
			c.ID(), documentID, c.PageNumber(), nullableInt(c.ParagraphNumber()),
			c.SectionTitle(), ContentHash(c.Content()), CitationURL(documentID, c.PageNumber(), c.ParagraphNumber()),
		)
		if err != nil {
			return fmt.Errorf("save citation for chunk %s: %w", c.ID(), err)
		}
	}
	return nil
}

// ResolveCitation returns the citation for a chunk, joined with the catalog
// document for title and freshness.
func (r *Repo) ResolveCitation(ctx context.Context, documentID, chunkID string) (suggestion.Citation, error) {
	query := `
		SELECT c.document_id, d.title, c.page_number, c.paragraph_number,
		       c.section_title, c.url, d.updated_at
		FROM citations c
		JOIN documents d ON d.id = c.document_id
		WHERE c.chunk_id = $1 AND c.document_id = $2`

	var (
		docID, title, sectionTitle, url string
		pageNumber                      int
		paragraphNumber                 *int
		updatedAt                       time.Time
	)
	err := r.db.QueryRow(ctx, query, chunkID, documentID).
		Scan(&docID, &title, &pageNumber, &paragraphNumber, &sectionTitle, &url, &updatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return suggestion.Citation{}, fmt.Errorf("chunk %s: %w", chunkID, domain.ErrCitationResolution)
		}
		return suggestion.Citation{}, fmt.Errorf("resolve citation for chunk %s: %w", chunkID, err)
	}

	return suggestion.Citation{
		DocumentID:      docID,
		DocumentTitle:   title,
		PageNumber:      pageNumber,
		ParagraphNumber: paragraphNumber,
		SectionTitle:    sectionTitle,
		URL:             url,
		LastUpdated:     &updatedAt,
	}, nil
}

// CitationURL builds the canonical in-app path for a cited location.
func CitationURL(documentID string, pageNumber, paragraphNumber int) string {
	if paragraphNumber > 0 {
		return fmt.Sprintf("/documents/%s/page/%d/paragraph/%d", documentID, pageNumber, paragraphNumber)
	}
	return fmt.Sprintf("/documents/%s/page/%d", documentID, pageNumber)
}

// ContentHash fingerprints chunk content for citation integrity checks.
func ContentHash(content string) string {
	h := sha256.Sum256([]byte(content))
	return hex.EncodeToString(h[:])
}

func nullableInt(n int) *int {
	if n <= 0 {
		return nil
	}
	return &n
}

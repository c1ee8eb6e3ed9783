// Package catalog persists registered documents and derived citation rows
// in Postgres. The vector index stores chunk text; the catalog is the source
// of truth for document identity and citation provenance.
package catalog

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/claimsight/claimsight/internal/domain"
	"github.com/claimsight/claimsight/internal/domain/document"
)

// querier is the consumer interface over a pgx pool (ISP).
type querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Repo implements the document/citation catalog over Postgres.
type Repo struct {
	db querier
}

// New creates a catalog repository.
func New(db querier) *Repo {
	return &Repo{db: db}
}

// SaveDocument registers a document. A duplicate id fails with ErrAlreadyExists.
func (r *Repo) SaveDocument(ctx context.Context, doc document.Document) error {
	query := `
		INSERT INTO documents (id, title, doc_type, state, tags, page_count, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

	_, err := r.db.Exec(ctx, query,
		doc.ID(), doc.Title(), doc.DocType(), doc.State(),
		doc.Tags(), doc.PageCount(), doc.CreatedAt(), doc.UpdatedAt(),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("document %s: %w", doc.ID(), domain.ErrAlreadyExists)
		}
		return fmt.Errorf("insert document %s: %w", doc.ID(), err)
	}
	return nil
}

// GetDocument returns a document by id.
func (r *Repo) GetDocument(ctx context.Context, id string) (document.Document, error) {
	query := `
		SELECT id, title, doc_type, state, tags, page_count, created_at, updated_at
		FROM documents
		WHERE id = $1`

	doc, err := scanDocument(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return document.Document{}, fmt.Errorf("document %s: %w", id, domain.ErrDocumentNotFound)
		}
		return document.Document{}, fmt.Errorf("get document %s: %w", id, err)
	}
	return doc, nil
}

// ListDocuments returns all registered documents, newest first.
func (r *Repo) ListDocuments(ctx context.Context) ([]document.Document, error) {
	query := `
		SELECT id, title, doc_type, state, tags, page_count, created_at, updated_at
		FROM documents
		ORDER BY created_at DESC`

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list documents: %w", err)
	}
	defer rows.Close()

	var docs []document.Document
	for rows.Next() {
		doc, err := scanDocument(rows)
		if err != nil {
			return nil, fmt.Errorf("scan document: %w", err)
		}
		docs = append(docs, doc)
	}
	return docs, rows.Err()
}

// DeleteDocument removes a document and, via FK cascade, its citation rows.
func (r *Repo) DeleteDocument(ctx context.Context, id string) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM documents WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete document %s: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("document %s: %w", id, domain.ErrDocumentNotFound)
	}
	return nil
}

// Ping checks catalog connectivity.
func (r *Repo) Ping(ctx context.Context) error {
	if _, err := r.db.Exec(ctx, `SELECT 1`); err != nil {
		return fmt.Errorf("catalog ping: %w", err)
	}
	return nil
}

// scanner covers both pgx.Row and pgx.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanDocument(row scanner) (document.Document, error) {
	var (
		id, title, docType, state string
		tags                      []string
		pageCount                 int
		createdAt, updatedAt      time.Time
	)
	if err := row.Scan(&id, &title, &docType, &state, &tags, &pageCount, &createdAt, &updatedAt); err != nil {
		return document.Document{}, err
	}
	return document.Reconstruct(id, title, docType, state, tags, pageCount, createdAt, updatedAt), nil
}

// isUniqueViolation reports a Postgres 23505 error.
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

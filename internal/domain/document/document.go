// Package document defines the catalog entry for a knowledge base document.
package document

import (
	"fmt"
	"strings"
	"time"

	"github.com/claimsight/claimsight/internal/domain"
)

// Document is a registered knowledge base document. Chunk records in the
// vector index always reference a catalog document by id.
type Document struct {
	id        string
	title     string
	docType   string
	state     string
	tags      []string
	pageCount int
	createdAt time.Time
	updatedAt time.Time
}

// New validates and creates a Document.
func New(id, title, docType, state string, tags []string, pageCount int) (Document, error) {
	if strings.TrimSpace(id) == "" {
		return Document{}, fmt.Errorf("document id is required: %w", domain.ErrInvalidDocument)
	}
	if strings.TrimSpace(title) == "" {
		return Document{}, fmt.Errorf("document %s: title is required: %w", id, domain.ErrInvalidDocument)
	}
	if pageCount < 0 {
		return Document{}, fmt.Errorf("document %s: page count must be non-negative: %w", id, domain.ErrInvalidDocument)
	}

	now := time.Now().UTC()
	return Document{
		id:        id,
		title:     title,
		docType:   docType,
		state:     state,
		tags:      append([]string(nil), tags...),
		pageCount: pageCount,
		createdAt: now,
		updatedAt: now,
	}, nil
}

// Reconstruct rebuilds a Document from stored fields without validation.
// Used by repositories when loading from the catalog.
func Reconstruct(id, title, docType, state string, tags []string, pageCount int, createdAt, updatedAt time.Time) Document {
	return Document{
		id:        id,
		title:     title,
		docType:   docType,
		state:     state,
		tags:      tags,
		pageCount: pageCount,
		createdAt: createdAt,
		updatedAt: updatedAt,
	}
}

// ID returns the document id.
func (d Document) ID() string { return d.id }

// Title returns the human-readable title.
func (d Document) Title() string { return d.title }

// DocType returns the document category (e.g. "policy", "regulation").
func (d Document) DocType() string { return d.docType }

// State returns the US state code the document applies to, if any.
func (d Document) State() string { return d.state }

// Tags returns a copy of the document tags.
func (d Document) Tags() []string { return append([]string(nil), d.tags...) }

// PageCount returns the number of pages, zero when unknown.
func (d Document) PageCount() int { return d.pageCount }

// CreatedAt returns the catalog registration time.
func (d Document) CreatedAt() time.Time { return d.createdAt }

// UpdatedAt returns the last catalog update time.
func (d Document) UpdatedAt() time.Time { return d.updatedAt }

package index

import (
	"encoding/binary"
	"math"
	"strconv"
	"strings"

	"github.com/claimsight/claimsight/internal/db"
	"github.com/claimsight/claimsight/internal/domain/chunk"
	"github.com/claimsight/claimsight/internal/domain/document"
	"github.com/claimsight/claimsight/internal/domain/search"
)

// buildHashFields flattens a chunk plus denormalized document metadata into
// the HSET field map the FT index is built over.
func buildHashFields(doc document.Document, c *chunk.Chunk, vector []float32) map[string]string {
	m := map[string]string{
		"content":          c.Content(),
		"document_id":      doc.ID(),
		"document_title":   doc.Title(),
		"page_number":      strconv.Itoa(c.PageNumber()),
		"paragraph_number": strconv.Itoa(c.ParagraphNumber()),
		"chunk_index":      strconv.Itoa(c.ChunkIndex()),
		"vector":           vectorToBytes(vector),
	}
	if c.SectionTitle() != "" {
		m["section_title"] = c.SectionTitle()
	}
	if doc.DocType() != "" {
		m["doc_type"] = doc.DocType()
	}
	if doc.State() != "" {
		m["state"] = doc.State()
	}
	if tags := doc.Tags(); len(tags) > 0 {
		m["tags"] = strings.Join(tags, ",")
	}
	return m
}

// parseHit converts a raw FT.SEARCH entry back into a domain hit.
// The chunk id is the key segment after the document id.
func parseHit(entry db.SearchEntry) search.Hit {
	f := entry.Fields

	docID := f["document_id"]
	chunkID := entry.Key
	if idx := strings.LastIndex(entry.Key, ":"); idx >= 0 {
		chunkID = entry.Key[idx+1:]
	}

	c := chunk.Reconstruct(
		chunkID,
		docID,
		f["content"],
		atoiOr(f["page_number"], 1),
		atoiOr(f["paragraph_number"], 0),
		atoiOr(f["chunk_index"], 0),
		f["section_title"],
	)

	return search.NewHit(c, f["document_title"], entry.Score)
}

func atoiOr(s string, def int) int {
	if s == "" {
		return def
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return n
}

// vectorToBytes serializes []float32 to a binary string (4 bytes per float, little-endian).
func vectorToBytes(v []float32) string {
	buf := make([]byte, len(v)*4)
	for i, f := range v {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(f))
	}
	return string(buf)
}

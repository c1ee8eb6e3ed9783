package document

import (
	"errors"
	"testing"

	"github.com/claimsight/claimsight/internal/domain"
)

func TestNew_Valid(t *testing.T) {
	doc, err := New("doc-1", "Florida Auto Policy Handbook", "policy", "FL", []string{"auto", "claims"}, 42)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if doc.ID() != "doc-1" || doc.Title() != "Florida Auto Policy Handbook" {
		t.Errorf("unexpected identity: %s / %s", doc.ID(), doc.Title())
	}
	if doc.PageCount() != 42 {
		t.Errorf("page count = %d, want 42", doc.PageCount())
	}
	if doc.CreatedAt().IsZero() || doc.UpdatedAt().IsZero() {
		t.Error("timestamps must be set")
	}
}

func TestNew_Invalid(t *testing.T) {
	cases := []struct {
		name          string
		id, title     string
		pageCount     int
	}{
		{"empty id", "", "Title", 0},
		{"blank id", "   ", "Title", 0},
		{"empty title", "doc-1", "", 0},
		{"negative pages", "doc-1", "Title", -1},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := New(tc.id, tc.title, "", "", nil, tc.pageCount)
			if !errors.Is(err, domain.ErrInvalidDocument) {
				t.Fatalf("expected ErrInvalidDocument, got %v", err)
			}
		})
	}
}

func TestTags_Copied(t *testing.T) {
	tags := []string{"auto"}
	doc, err := New("doc-1", "Title", "", "", tags, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	tags[0] = "mutated"
	if doc.Tags()[0] != "auto" {
		t.Error("tags must be copied on construction")
	}

	got := doc.Tags()
	got[0] = "mutated"
	if doc.Tags()[0] != "auto" {
		t.Error("tags must be copied on read")
	}
}

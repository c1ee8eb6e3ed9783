// Package casecontext holds the case metadata a support agent is working
// with and its deterministic translation into a search query.
package casecontext

import (
	"fmt"
	"strings"

	"github.com/claimsight/claimsight/internal/domain"
)

// Context is the structured description of the active case. It is consumed
// transiently by the suggestion engine and never persisted.
type Context struct {
	CaseID       string   `json:"case_id"`
	CaseType     string   `json:"case_type"`
	State        string   `json:"state,omitempty"`
	Status       string   `json:"status,omitempty"`
	Priority     string   `json:"priority,omitempty"`
	CustomerType string   `json:"customer_type,omitempty"`
	PolicyType   string   `json:"policy_type,omitempty"`
	ClaimAmount  *float64 `json:"claim_amount,omitempty"`
	Tags         []string `json:"tags,omitempty"`
}

// Validate checks the required fields. A context without case_id or
// case_type must never reach the vector index.
func (c *Context) Validate() error {
	if strings.TrimSpace(c.CaseID) == "" {
		return fmt.Errorf("case_id is required: %w", domain.ErrInvalidContext)
	}
	if strings.TrimSpace(c.CaseType) == "" {
		return fmt.Errorf("case_type is required: %w", domain.ErrInvalidContext)
	}
	if c.ClaimAmount != nil && *c.ClaimAmount < 0 {
		return fmt.Errorf("claim_amount must be non-negative: %w", domain.ErrInvalidContext)
	}
	return nil
}

// Normalize builds the canonical query string: present fields concatenated in
// a fixed priority order (most distinctive first), space-separated. The same
// context always yields the same string.
func (c *Context) Normalize() (string, error) {
	if err := c.Validate(); err != nil {
		return "", err
	}

	parts := make([]string, 0, 7+len(c.Tags))
	appendPart := func(s string) {
		if s = strings.TrimSpace(s); s != "" {
			parts = append(parts, s)
		}
	}

	appendPart(c.CaseType)
	appendPart(c.State)
	appendPart(c.PolicyType)
	appendPart(c.CustomerType)
	for _, tag := range c.Tags {
		appendPart(tag)
	}
	appendPart(c.Status)
	appendPart(c.Priority)

	return strings.Join(parts, " "), nil
}

// MatchedFields returns the names of the fields that contributed to the
// normalized query, in normalization order. Used for context-match metadata.
func (c *Context) MatchedFields() []string {
	fields := make([]string, 0, 7)
	add := func(name, value string) {
		if strings.TrimSpace(value) != "" {
			fields = append(fields, name)
		}
	}

	add("case_type", c.CaseType)
	add("state", c.State)
	add("policy_type", c.PolicyType)
	add("customer_type", c.CustomerType)
	if len(c.Tags) > 0 {
		fields = append(fields, "tags")
	}
	add("status", c.Status)
	add("priority", c.Priority)

	return fields
}

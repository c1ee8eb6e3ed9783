package search

import "fmt"

// MaxFilterConditions is the maximum number of filter conditions per query.
const MaxFilterConditions = 16

// Condition is a single exact-match filter on an indexed metadata field.
type Condition struct {
	key   string
	value string
}

// NewCondition creates a tag-match condition.
func NewCondition(key, value string) (Condition, error) {
	if key == "" {
		return Condition{}, fmt.Errorf("filter key is required")
	}
	if value == "" {
		return Condition{}, fmt.Errorf("filter value is required for key %q", key)
	}
	return Condition{key: key, value: value}, nil
}

// Key returns the field name.
func (c Condition) Key() string { return c.key }

// Value returns the exact match value.
func (c Condition) Value() string { return c.value }

// Filters is an ordered conjunction of match conditions applied before the
// KNN search (pre-filtering).
type Filters struct {
	conditions []Condition
}

// NewFilters validates and creates a filter set.
func NewFilters(conditions []Condition) (Filters, error) {
	if len(conditions) > MaxFilterConditions {
		return Filters{}, fmt.Errorf("too many filter conditions (max %d)", MaxFilterConditions)
	}
	return Filters{conditions: conditions}, nil
}

// Conditions returns the conditions in declaration order.
func (f Filters) Conditions() []Condition { return f.conditions }

// IsEmpty reports whether the filter set has no conditions.
func (f Filters) IsEmpty() bool { return len(f.conditions) == 0 }

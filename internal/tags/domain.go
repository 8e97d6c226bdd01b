// Package tags implements tag management, tag rules and the auto-tag
// rule engine.
package tags

import (
	"sort"
	"strconv"
	"strings"
	"time"
)

// Tag statuses.
const (
	TagStatusActive  = "active"
	TagStatusDeleted = "deleted"
)

// Rule statuses.
const (
	RuleStatusActive   = "active"
	RuleStatusInactive = "inactive"
	RuleStatusDeleted  = "deleted"
)

// Rule condition types.
const (
	ConditionField = "field"
	ConditionDate  = "date"
)

// Rule operators.
const (
	OpEquals      = "equals"
	OpContains    = "contains"
	OpGreaterThan = "greater_than"
	OpLessThan    = "less_than"
)

// Tag labels members for grouping and follow-up.
type Tag struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Category    string    `json:"category"`
	Color       string    `json:"color"`
	Description string    `json:"description"`
	Status      string    `json:"status"`
	Version     int64     `json:"version"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Rule is a stored predicate that applies a tag to matching members.
// Rules are additive and independent: priority fixes evaluation order
// for deterministic logging but does not gate mutual exclusion.
type Rule struct {
	ID                int64     `json:"id"`
	Name              string    `json:"name"`
	TagID             int64     `json:"tag_id"`
	ConditionType     string    `json:"condition_type"`
	ConditionField    string    `json:"condition_field"`
	ConditionOperator string    `json:"condition_operator"`
	ConditionValue    string    `json:"condition_value"`
	Priority          int       `json:"priority"`
	Status            string    `json:"status"`
	Version           int64     `json:"version"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`
}

// ParseIDList parses a comma-joined tag id list, discarding empty
// segments and unparseable entries.
func ParseIDList(raw string) []int64 {
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	var ids []int64
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		id, err := strconv.ParseInt(part, 10, 64)
		if err != nil {
			continue
		}
		ids = append(ids, id)
	}
	return ids
}

// JoinIDList renders a tag id set as the comma-joined storage form,
// sorted for stable output.
func JoinIDList(ids []int64) string {
	if len(ids) == 0 {
		return ""
	}
	sorted := make([]int64, len(ids))
	copy(sorted, ids)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })
	parts := make([]string, len(sorted))
	for i, id := range sorted {
		parts[i] = strconv.FormatInt(id, 10)
	}
	return strings.Join(parts, ",")
}

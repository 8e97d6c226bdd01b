package tags

import (
	"math"
	"sort"
	"strconv"
	"strings"
	"time"
)

// RuleOutcome records how a single rule evaluated, for operator-facing
// logging and the preview endpoint.
type RuleOutcome struct {
	RuleID   int64  `json:"rule_id"`
	RuleName string `json:"rule_name"`
	TagID    int64  `json:"tag_id"`
	Matched  bool   `json:"matched"`
	Skipped  bool   `json:"skipped"`
	Reason   string `json:"reason,omitempty"`
}

// ApplyAutoTags evaluates the rule set against a member's attributes
// and returns the resulting tag id set. The engine is pure: rules only
// add tags to the seeded set, bad rule data degrades to "does not
// match" instead of erroring, and repeated invocation with the same
// inputs yields the same output.
//
// attrs maps member attribute names to their string form; absent
// attributes read as empty strings. tagsByID resolves rule targets;
// rules whose target tag is missing are skipped.
func ApplyAutoTags(current []int64, attrs map[string]string, rules []Rule, tagsByID map[int64]Tag, now time.Time) ([]int64, []RuleOutcome) {
	result := make([]int64, 0, len(current))
	seen := make(map[int64]struct{}, len(current))
	for _, id := range current {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		result = append(result, id)
	}

	active := make([]Rule, 0, len(rules))
	for _, rule := range rules {
		if rule.Status == RuleStatusActive {
			active = append(active, rule)
		}
	}
	// Stable sort keeps the original relative order on priority ties so
	// evaluation logs stay reproducible.
	sort.SliceStable(active, func(i, j int) bool { return active[i].Priority < active[j].Priority })

	outcomes := make([]RuleOutcome, 0, len(active))
	for _, rule := range active {
		outcome := RuleOutcome{RuleID: rule.ID, RuleName: rule.Name, TagID: rule.TagID}
		if _, ok := tagsByID[rule.TagID]; !ok {
			outcome.Skipped = true
			outcome.Reason = "target tag does not exist"
			outcomes = append(outcomes, outcome)
			continue
		}
		matched, reason := evaluate(rule, attrs, now)
		outcome.Matched = matched
		outcome.Reason = reason
		outcomes = append(outcomes, outcome)
		if !matched {
			continue
		}
		if _, ok := seen[rule.TagID]; !ok {
			seen[rule.TagID] = struct{}{}
			result = append(result, rule.TagID)
		}
	}
	return result, outcomes
}

func evaluate(rule Rule, attrs map[string]string, now time.Time) (bool, string) {
	value := attrs[rule.ConditionField]
	switch rule.ConditionType {
	case ConditionField:
		return evaluateField(rule, value)
	case ConditionDate:
		return evaluateDate(rule, value, now)
	default:
		return false, "unknown condition type"
	}
}

func evaluateField(rule Rule, value string) (bool, string) {
	switch rule.ConditionOperator {
	case OpEquals:
		return value == rule.ConditionValue, ""
	case OpContains:
		return strings.Contains(strings.ToLower(value), strings.ToLower(rule.ConditionValue)), ""
	case OpGreaterThan, OpLessThan:
		fieldNum, err1 := strconv.ParseFloat(strings.TrimSpace(value), 64)
		condNum, err2 := strconv.ParseFloat(strings.TrimSpace(rule.ConditionValue), 64)
		if err1 != nil || err2 != nil {
			return false, "non-numeric comparison"
		}
		if rule.ConditionOperator == OpGreaterThan {
			return fieldNum > condNum, ""
		}
		return fieldNum < condNum, ""
	default:
		return false, "unknown operator"
	}
}

var dateLayouts = []string{"2006-01-02", time.RFC3339, "2006-01-02 15:04:05", "2006/01/02"}

func evaluateDate(rule Rule, value string, now time.Time) (bool, string) {
	value = strings.TrimSpace(value)
	if value == "" {
		return false, "empty date"
	}
	var parsed time.Time
	var err error
	for _, layout := range dateLayouts {
		parsed, err = time.Parse(layout, value)
		if err == nil {
			break
		}
	}
	if err != nil {
		return false, "unparseable date"
	}
	condNum, err := strconv.ParseFloat(strings.TrimSpace(rule.ConditionValue), 64)
	if err != nil {
		return false, "non-numeric condition value"
	}
	// Negative when the date is in the future.
	daysDiff := math.Floor(now.Sub(parsed).Hours() / 24)
	switch rule.ConditionOperator {
	case OpEquals:
		return daysDiff == condNum, ""
	case OpGreaterThan:
		return daysDiff > condNum, ""
	case OpLessThan:
		return daysDiff < condNum, ""
	default:
		return false, "unknown operator"
	}
}

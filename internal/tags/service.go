package tags

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/koinonia-app/koinonia/internal/shared"
)

// Service orchestrates tag and rule management.
type Service struct {
	repo   Repository
	logger *slog.Logger
}

// NewService constructs a Service.
func NewService(repo Repository, logger *slog.Logger) *Service {
	return &Service{repo: repo, logger: logger}
}

// GetTag fetches a tag by id.
func (s *Service) GetTag(ctx context.Context, id int64) (*Tag, error) {
	return s.repo.GetTag(ctx, id)
}

// ListTags returns non-deleted tags.
func (s *Service) ListTags(ctx context.Context) ([]Tag, error) {
	return s.repo.ListTags(ctx, false)
}

// CreateTag inserts a new tag.
func (s *Service) CreateTag(ctx context.Context, req CreateTagRequest) (*Tag, error) {
	tag := Tag{
		Name:        strings.TrimSpace(req.Name),
		Category:    strings.TrimSpace(req.Category),
		Color:       req.Color,
		Description: req.Description,
		Status:      TagStatusActive,
	}
	id, err := s.repo.CreateTag(ctx, tag)
	if err != nil {
		return nil, fmt.Errorf("create tag: %w", err)
	}
	return s.repo.GetTag(ctx, id)
}

// UpdateTag applies changes against the caller-supplied version.
func (s *Service) UpdateTag(ctx context.Context, id int64, req UpdateTagRequest) (*Tag, error) {
	tag, err := s.repo.GetTag(ctx, id)
	if err != nil {
		return nil, err
	}
	if req.Name != nil {
		tag.Name = strings.TrimSpace(*req.Name)
	}
	if req.Category != nil {
		tag.Category = strings.TrimSpace(*req.Category)
	}
	if req.Color != nil {
		tag.Color = *req.Color
	}
	if req.Description != nil {
		tag.Description = *req.Description
	}
	if req.Status != nil {
		tag.Status = *req.Status
	}
	tag.Version = req.Version
	if err := s.repo.UpdateTag(ctx, *tag); err != nil {
		return nil, err
	}
	return s.repo.GetTag(ctx, id)
}

// DeleteTag soft-deletes a tag. Rules referencing it are skipped by the
// engine from then on.
func (s *Service) DeleteTag(ctx context.Context, id int64) error {
	return s.repo.SoftDeleteTag(ctx, id)
}

// GetRule fetches a rule by id.
func (s *Service) GetRule(ctx context.Context, id int64) (*Rule, error) {
	return s.repo.GetRule(ctx, id)
}

// ListRules returns non-deleted rules in evaluation order.
func (s *Service) ListRules(ctx context.Context) ([]Rule, error) {
	return s.repo.ListRules(ctx, false)
}

// CreateRule validates and inserts a new rule.
func (s *Service) CreateRule(ctx context.Context, req CreateRuleRequest) (*Rule, error) {
	if err := validateCondition(req.ConditionType, req.ConditionOperator); err != nil {
		return nil, err
	}
	if _, err := s.repo.GetTag(ctx, req.TagID); err != nil {
		return nil, fmt.Errorf("rule target tag: %w", err)
	}
	rule := Rule{
		Name:              strings.TrimSpace(req.Name),
		TagID:             req.TagID,
		ConditionType:     req.ConditionType,
		ConditionField:    req.ConditionField,
		ConditionOperator: req.ConditionOperator,
		ConditionValue:    req.ConditionValue,
		Priority:          req.Priority,
		Status:            RuleStatusActive,
	}
	id, err := s.repo.CreateRule(ctx, rule)
	if err != nil {
		return nil, fmt.Errorf("create rule: %w", err)
	}
	return s.repo.GetRule(ctx, id)
}

// UpdateRule applies changes against the caller-supplied version.
func (s *Service) UpdateRule(ctx context.Context, id int64, req UpdateRuleRequest) (*Rule, error) {
	rule, err := s.repo.GetRule(ctx, id)
	if err != nil {
		return nil, err
	}
	if req.Name != nil {
		rule.Name = strings.TrimSpace(*req.Name)
	}
	if req.TagID != nil {
		rule.TagID = *req.TagID
	}
	if req.ConditionType != nil {
		rule.ConditionType = *req.ConditionType
	}
	if req.ConditionField != nil {
		rule.ConditionField = *req.ConditionField
	}
	if req.ConditionOperator != nil {
		rule.ConditionOperator = *req.ConditionOperator
	}
	if req.ConditionValue != nil {
		rule.ConditionValue = *req.ConditionValue
	}
	if req.Priority != nil {
		rule.Priority = *req.Priority
	}
	if req.Status != nil {
		rule.Status = *req.Status
	}
	if err := validateCondition(rule.ConditionType, rule.ConditionOperator); err != nil {
		return nil, err
	}
	rule.Version = req.Version
	if err := s.repo.UpdateRule(ctx, *rule); err != nil {
		return nil, err
	}
	return s.repo.GetRule(ctx, id)
}

// DeleteRule soft-deletes a rule.
func (s *Service) DeleteRule(ctx context.Context, id int64) error {
	return s.repo.SoftDeleteRule(ctx, id)
}

// ActiveRuleSet loads the active rules and a lookup of live tags for
// engine evaluation.
func (s *Service) ActiveRuleSet(ctx context.Context) ([]Rule, map[int64]Tag, error) {
	rules, err := s.repo.ListRules(ctx, false)
	if err != nil {
		return nil, nil, err
	}
	allTags, err := s.repo.ListTags(ctx, false)
	if err != nil {
		return nil, nil, err
	}
	byID := make(map[int64]Tag, len(allTags))
	for _, tag := range allTags {
		byID[tag.ID] = tag
	}
	return rules, byID, nil
}

// LogDegradedOutcomes warns about rules that were skipped or degraded
// during an evaluation run.
func (s *Service) LogDegradedOutcomes(memberID int64, outcomes []RuleOutcome) {
	if s.logger == nil {
		return
	}
	for _, o := range outcomes {
		if o.Skipped || (!o.Matched && o.Reason != "") {
			s.logger.Warn("tag rule degraded",
				slog.Int64("member_id", memberID),
				slog.Int64("rule_id", o.RuleID),
				slog.String("reason", o.Reason))
		}
	}
}

func validateCondition(conditionType, operator string) error {
	switch conditionType {
	case ConditionField:
		switch operator {
		case OpEquals, OpContains, OpGreaterThan, OpLessThan:
			return nil
		}
	case ConditionDate:
		switch operator {
		case OpEquals, OpGreaterThan, OpLessThan:
			return nil
		}
	default:
		return shared.NewValidationError("condition_type", "must be field or date")
	}
	return shared.NewValidationError("condition_operator", "not valid for condition type "+conditionType)
}

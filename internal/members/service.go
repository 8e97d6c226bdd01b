package members

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/koinonia-app/koinonia/internal/rbac"
	"github.com/koinonia-app/koinonia/internal/shared"
	"github.com/koinonia-app/koinonia/internal/tags"
)

// RuleSource supplies the active tag rule set for recomputation.
// *tags.Service satisfies it.
type RuleSource interface {
	ActiveRuleSet(ctx context.Context) ([]tags.Rule, map[int64]tags.Tag, error)
	LogDegradedOutcomes(memberID int64, outcomes []tags.RuleOutcome)
}

// Service orchestrates member operations, enforcing record-level
// access and sensitive-field filtering.
type Service struct {
	repo   Repository
	rules  RuleSource
	logger *slog.Logger
	now    func() time.Time
}

// NewService constructs a Service.
func NewService(repo Repository, rules RuleSource, logger *slog.Logger) *Service {
	return &Service{repo: repo, rules: rules, logger: logger, now: time.Now}
}

// List returns non-deleted members with sensitive fields stripped per
// the caller's role. List access is coarse: any caller holding
// members:read sees all non-deleted members.
func (s *Service) List(ctx context.Context, user shared.UserContext, req ListMembersRequest) ([]Member, int, error) {
	out, total, err := s.repo.List(ctx, req)
	if err != nil {
		return nil, 0, err
	}
	for i := range out {
		out[i] = FilterSensitive(out[i], user)
	}
	return out, total, nil
}

// Get returns a single member, enforcing the record-level guard.
func (s *Service) Get(ctx context.Context, user shared.UserContext, id int64) (*Member, error) {
	m, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if m.Status == StatusDeleted {
		return nil, shared.ErrNotFound
	}
	if !rbac.CanAccessMember(user, m.Ref()) {
		return nil, accessDenied()
	}
	filtered := FilterSensitive(*m, user)
	return &filtered, nil
}

// Create inserts a new member, normalizing the faith status.
func (s *Service) Create(ctx context.Context, req CreateMemberRequest) (*Member, error) {
	m := Member{
		FirstName:   strings.TrimSpace(req.FirstName),
		LastName:    strings.TrimSpace(req.LastName),
		Email:       strings.TrimSpace(req.Email),
		Phone:       req.Phone,
		Address:     req.Address,
		City:        req.City,
		Gender:      req.Gender,
		FaithStatus: NormalizeFaithStatus(req.FaithStatus),
		Notes:       req.Notes,
		HealthNotes: req.HealthNotes,
		Status:      StatusActive,
	}
	if req.CellGroupID != nil {
		m.CellGroupID = *req.CellGroupID
	}
	var err error
	if m.BirthDate, err = parseDate(req.BirthDate); err != nil {
		return nil, shared.NewValidationError("birth_date", "must be YYYY-MM-DD")
	}
	if m.JoinDate, err = parseDate(req.JoinDate); err != nil {
		return nil, shared.NewValidationError("join_date", "must be YYYY-MM-DD")
	}

	id, err := s.repo.Create(ctx, m)
	if err != nil {
		return nil, fmt.Errorf("create member: %w", err)
	}
	return s.repo.Get(ctx, id)
}

// Update applies changes to a member behind the record-level guard and
// the optimistic version check. Faith status is re-normalized on every
// write.
func (s *Service) Update(ctx context.Context, user shared.UserContext, id int64, req UpdateMemberRequest) (*Member, error) {
	m, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if m.Status == StatusDeleted {
		return nil, shared.ErrNotFound
	}
	if !rbac.CanAccessMember(user, m.Ref()) {
		return nil, accessDenied()
	}

	if req.FirstName != nil {
		m.FirstName = strings.TrimSpace(*req.FirstName)
	}
	if req.LastName != nil {
		m.LastName = strings.TrimSpace(*req.LastName)
	}
	if req.Email != nil {
		m.Email = strings.TrimSpace(*req.Email)
	}
	if req.Phone != nil {
		m.Phone = *req.Phone
	}
	if req.Address != nil {
		m.Address = *req.Address
	}
	if req.City != nil {
		m.City = *req.City
	}
	if req.Gender != nil {
		m.Gender = *req.Gender
	}
	if req.BirthDate != nil {
		if m.BirthDate, err = parseDate(req.BirthDate); err != nil {
			return nil, shared.NewValidationError("birth_date", "must be YYYY-MM-DD")
		}
	}
	if req.JoinDate != nil {
		if m.JoinDate, err = parseDate(req.JoinDate); err != nil {
			return nil, shared.NewValidationError("join_date", "must be YYYY-MM-DD")
		}
	}
	if req.FaithStatus != nil {
		m.FaithStatus = NormalizeFaithStatus(*req.FaithStatus)
	}
	if req.CellGroupID != nil {
		m.CellGroupID = *req.CellGroupID
	}
	if req.HealthNotes != nil {
		// Only callers who can see health notes may write them.
		if !rbac.CanViewSensitive(user) {
			return nil, fmt.Errorf("%w: requires role pastor or above to edit health notes", shared.ErrAuthorizationDenied)
		}
		m.HealthNotes = req.HealthNotes
	}
	if req.Notes != nil {
		m.Notes = *req.Notes
	}

	m.Version = req.Version
	if err := s.repo.Update(ctx, *m); err != nil {
		return nil, err
	}
	updated, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	filtered := FilterSensitive(*updated, user)
	return &filtered, nil
}

// Delete soft-deletes a member.
func (s *Service) Delete(ctx context.Context, id int64) error {
	return s.repo.SoftDelete(ctx, id)
}

// RecomputeTags runs the auto-tag engine for one member and persists
// the resulting tag set, replacing the stored value entirely.
func (s *Service) RecomputeTags(ctx context.Context, user shared.UserContext, id int64) (*Member, []tags.RuleOutcome, error) {
	m, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	if m.Status == StatusDeleted {
		return nil, nil, shared.ErrNotFound
	}
	if !rbac.CanAccessMember(user, m.Ref()) {
		return nil, nil, accessDenied()
	}

	result, outcomes, err := s.evaluate(ctx, m)
	if err != nil {
		return nil, nil, err
	}
	if err := s.repo.UpdateTags(ctx, id, tags.JoinIDList(result)); err != nil {
		return nil, nil, err
	}
	updated, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	filtered := FilterSensitive(*updated, user)
	return &filtered, outcomes, nil
}

// PreviewTags evaluates the rule set without persisting, returning the
// per-rule outcomes for the admin UI.
func (s *Service) PreviewTags(ctx context.Context, user shared.UserContext, id int64) ([]int64, []tags.RuleOutcome, error) {
	m, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	if !rbac.CanAccessMember(user, m.Ref()) {
		return nil, nil, accessDenied()
	}
	result, outcomes, err := s.evaluate(ctx, m)
	return result, outcomes, err
}

// RecomputeAllTags sweeps every active member, used by the nightly job.
// Individual member failures are logged and skipped so one bad record
// cannot stall the sweep.
func (s *Service) RecomputeAllTags(ctx context.Context) (int, error) {
	ids, err := s.repo.ListActiveIDs(ctx)
	if err != nil {
		return 0, err
	}
	updated := 0
	for _, id := range ids {
		m, err := s.repo.Get(ctx, id)
		if err != nil {
			if s.logger != nil {
				s.logger.Warn("tag sweep load member", slog.Int64("member_id", id), slog.Any("error", err))
			}
			continue
		}
		result, _, err := s.evaluate(ctx, m)
		if err != nil {
			return updated, err
		}
		next := tags.JoinIDList(result)
		if next == m.Tags {
			continue
		}
		if err := s.repo.UpdateTags(ctx, id, next); err != nil {
			if s.logger != nil {
				s.logger.Warn("tag sweep update member", slog.Int64("member_id", id), slog.Any("error", err))
			}
			continue
		}
		updated++
	}
	return updated, nil
}

func (s *Service) evaluate(ctx context.Context, m *Member) ([]int64, []tags.RuleOutcome, error) {
	rules, tagsByID, err := s.rules.ActiveRuleSet(ctx)
	if err != nil {
		return nil, nil, err
	}
	current := tags.ParseIDList(m.Tags)
	result, outcomes := tags.ApplyAutoTags(current, m.AttributeMap(), rules, tagsByID, s.now())
	s.rules.LogDegradedOutcomes(m.ID, outcomes)
	return result, outcomes, nil
}

func accessDenied() error {
	return fmt.Errorf("%w: requires role pastor or above, self access, or leadership of the member's cell group", shared.ErrAuthorizationDenied)
}

func parseDate(value *string) (*time.Time, error) {
	if value == nil || strings.TrimSpace(*value) == "" {
		return nil, nil
	}
	t, err := time.Parse("2006-01-02", *value)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

package events

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/koinonia-app/koinonia/internal/shared"
)

const defaultUpcomingLimit = 20

type Service struct {
	repo   Repository
	logger *slog.Logger
	now    func() time.Time
}

func NewService(repo Repository, logger *slog.Logger) *Service {
	return &Service{repo: repo, logger: logger, now: time.Now}
}

func (s *Service) List(ctx context.Context) ([]Event, error) {
	return s.repo.List(ctx)
}

// Upcoming returns public events starting from now, soonest first.
// Serves the unauthenticated website listing.
func (s *Service) Upcoming(ctx context.Context, limit int) ([]Event, error) {
	if limit <= 0 || limit > 100 {
		limit = defaultUpcomingLimit
	}
	return s.repo.ListPublicUpcoming(ctx, s.now(), limit)
}

func (s *Service) Get(ctx context.Context, id int64) (*Event, error) {
	e, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if e.Status == StatusDeleted {
		return nil, shared.ErrNotFound
	}
	return e, nil
}

func (s *Service) Create(ctx context.Context, req CreateEventRequest) (*Event, error) {
	e := Event{
		Title:       strings.TrimSpace(req.Title),
		Description: req.Description,
		Location:    req.Location,
		IsPublic:    req.IsPublic,
		Status:      StatusActive,
	}
	startsAt, err := parseTimestamp(req.StartsAt)
	if err != nil {
		return nil, shared.NewValidationError("starts_at", "must be an RFC 3339 timestamp")
	}
	e.StartsAt = *startsAt
	if e.EndsAt, err = parseOptionalTimestamp(req.EndsAt); err != nil {
		return nil, shared.NewValidationError("ends_at", "must be an RFC 3339 timestamp")
	}
	if e.EndsAt != nil && e.EndsAt.Before(e.StartsAt) {
		return nil, shared.NewValidationError("ends_at", "must not be before starts_at")
	}

	id, err := s.repo.Create(ctx, e)
	if err != nil {
		return nil, fmt.Errorf("create event: %w", err)
	}
	return s.repo.Get(ctx, id)
}

func (s *Service) Update(ctx context.Context, id int64, req UpdateEventRequest) (*Event, error) {
	e, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if req.Title != nil {
		title := strings.TrimSpace(*req.Title)
		if title == "" {
			return nil, shared.NewValidationError("title", "must not be blank")
		}
		e.Title = title
	}
	if req.Description != nil {
		e.Description = *req.Description
	}
	if req.Location != nil {
		e.Location = *req.Location
	}
	if req.StartsAt != nil {
		startsAt, err := parseTimestamp(*req.StartsAt)
		if err != nil {
			return nil, shared.NewValidationError("starts_at", "must be an RFC 3339 timestamp")
		}
		e.StartsAt = *startsAt
	}
	if req.EndsAt != nil {
		if e.EndsAt, err = parseOptionalTimestamp(req.EndsAt); err != nil {
			return nil, shared.NewValidationError("ends_at", "must be an RFC 3339 timestamp")
		}
	}
	if e.EndsAt != nil && e.EndsAt.Before(e.StartsAt) {
		return nil, shared.NewValidationError("ends_at", "must not be before starts_at")
	}
	if req.IsPublic != nil {
		e.IsPublic = *req.IsPublic
	}

	e.Version = req.Version
	if err := s.repo.Update(ctx, *e); err != nil {
		return nil, err
	}
	return s.repo.Get(ctx, id)
}

func (s *Service) Delete(ctx context.Context, id int64) error {
	return s.repo.SoftDelete(ctx, id)
}

func parseTimestamp(value string) (*time.Time, error) {
	t, err := time.Parse(time.RFC3339, strings.TrimSpace(value))
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func parseOptionalTimestamp(value *string) (*time.Time, error) {
	if value == nil || strings.TrimSpace(*value) == "" {
		return nil, nil
	}
	return parseTimestamp(*value)
}

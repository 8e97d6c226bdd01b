package cellgroups

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/koinonia-app/koinonia/internal/shared"
)

// Service orchestrates cell group operations.
type Service struct {
	repo   Repository
	logger *slog.Logger
}

// NewService constructs a Service.
func NewService(repo Repository, logger *slog.Logger) *Service {
	return &Service{repo: repo, logger: logger}
}

func (s *Service) List(ctx context.Context) ([]CellGroup, error) {
	return s.repo.List(ctx)
}

func (s *Service) Get(ctx context.Context, id int64) (*CellGroup, error) {
	g, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if g.Status == StatusDeleted {
		return nil, shared.ErrNotFound
	}
	return g, nil
}

func (s *Service) Create(ctx context.Context, req CreateCellGroupRequest) (*CellGroup, error) {
	g := CellGroup{
		Name:        strings.TrimSpace(req.Name),
		Description: req.Description,
		MeetingDay:  req.MeetingDay,
		Location:    req.Location,
		Status:      StatusActive,
	}
	if g.Name == "" {
		return nil, shared.NewValidationError("name", "must not be blank")
	}
	if req.LeaderMemberID != nil {
		g.LeaderMemberID = *req.LeaderMemberID
	}
	id, err := s.repo.Create(ctx, g)
	if err != nil {
		return nil, fmt.Errorf("create cell group: %w", err)
	}
	return s.repo.Get(ctx, id)
}

func (s *Service) Update(ctx context.Context, id int64, req UpdateCellGroupRequest) (*CellGroup, error) {
	g, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return nil, shared.NewValidationError("name", "must not be blank")
		}
		g.Name = name
	}
	if req.Description != nil {
		g.Description = *req.Description
	}
	if req.LeaderMemberID != nil {
		g.LeaderMemberID = *req.LeaderMemberID
	}
	if req.MeetingDay != nil {
		g.MeetingDay = *req.MeetingDay
	}
	if req.Location != nil {
		g.Location = *req.Location
	}
	g.Version = req.Version
	if err := s.repo.Update(ctx, *g); err != nil {
		return nil, err
	}
	return s.repo.Get(ctx, id)
}

func (s *Service) Delete(ctx context.Context, id int64) error {
	return s.repo.SoftDelete(ctx, id)
}

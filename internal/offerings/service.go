package offerings

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/koinonia-app/koinonia/internal/shared"
)

type Service struct {
	repo   Repository
	logger *slog.Logger
}

func NewService(repo Repository, logger *slog.Logger) *Service {
	return &Service{repo: repo, logger: logger}
}

// List returns offering records with amounts redacted for callers
// below staff.
func (s *Service) List(ctx context.Context, user shared.UserContext, req ListOfferingsRequest) ([]Offering, int, error) {
	out, total, err := s.repo.List(ctx, req)
	if err != nil {
		return nil, 0, err
	}
	for i := range out {
		out[i] = FilterAmount(out[i], user)
	}
	return out, total, nil
}

// Summary returns per-fund totals for the optional date range.
func (s *Service) Summary(ctx context.Context, from, to *time.Time) ([]FundTotal, error) {
	return s.repo.Summary(ctx, from, to)
}

// Create records an offering attributed to the calling user.
func (s *Service) Create(ctx context.Context, user shared.UserContext, req CreateOfferingRequest) (*Offering, error) {
	givenAt, err := time.Parse("2006-01-02", req.GivenAt)
	if err != nil {
		return nil, shared.NewValidationError("given_at", "must be YYYY-MM-DD")
	}
	amount := req.AmountCents
	o := Offering{
		Fund:        req.Fund,
		AmountCents: &amount,
		GivenAt:     givenAt,
		Note:        req.Note,
		RecordedBy:  user.UserID,
	}
	if req.MemberID != nil {
		o.MemberID = *req.MemberID
	}
	id, err := s.repo.Create(ctx, o)
	if err != nil {
		return nil, fmt.Errorf("create offering: %w", err)
	}
	return s.repo.Get(ctx, id)
}

func (s *Service) Delete(ctx context.Context, id int64) error {
	return s.repo.SoftDelete(ctx, id)
}

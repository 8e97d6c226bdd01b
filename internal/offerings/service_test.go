package offerings

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/koinonia-app/koinonia/internal/rbac"
	"github.com/koinonia-app/koinonia/internal/shared"
)

type memoryOfferings struct {
	offerings map[int64]*Offering
	nextID    int64
}

func newMemoryOfferings() *memoryOfferings {
	return &memoryOfferings{offerings: make(map[int64]*Offering), nextID: 1}
}

func (r *memoryOfferings) Get(_ context.Context, id int64) (*Offering, error) {
	o, ok := r.offerings[id]
	if !ok || o.DeletedAt != nil {
		return nil, shared.ErrNotFound
	}
	copied := *o
	return &copied, nil
}

func (r *memoryOfferings) List(_ context.Context, req ListOfferingsRequest) ([]Offering, int, error) {
	var out []Offering
	for _, o := range r.offerings {
		if o.DeletedAt != nil {
			continue
		}
		if req.Fund != "" && o.Fund != req.Fund {
			continue
		}
		out = append(out, *o)
	}
	return out, len(out), nil
}

func (r *memoryOfferings) Summary(_ context.Context, _, _ *time.Time) ([]FundTotal, error) {
	totals := make(map[string]*FundTotal)
	for _, o := range r.offerings {
		if o.DeletedAt != nil || o.AmountCents == nil {
			continue
		}
		ft, ok := totals[o.Fund]
		if !ok {
			ft = &FundTotal{Fund: o.Fund}
			totals[o.Fund] = ft
		}
		ft.TotalCents += *o.AmountCents
		ft.Count++
	}
	out := make([]FundTotal, 0, len(totals))
	for _, ft := range totals {
		out = append(out, *ft)
	}
	return out, nil
}

func (r *memoryOfferings) Create(_ context.Context, o Offering) (int64, error) {
	o.ID = r.nextID
	r.offerings[o.ID] = &o
	r.nextID++
	return o.ID, nil
}

func (r *memoryOfferings) SoftDelete(_ context.Context, id int64) error {
	o, ok := r.offerings[id]
	if !ok {
		return shared.ErrNotFound
	}
	now := time.Now()
	o.DeletedAt = &now
	return nil
}

func TestCreateAttributesRecorder(t *testing.T) {
	repo := newMemoryOfferings()
	svc := NewService(repo, slog.Default())
	staff := shared.UserContext{UserID: 12, Role: rbac.RoleStaff}

	o, err := svc.Create(context.Background(), staff, CreateOfferingRequest{
		Fund:        FundTithe,
		AmountCents: 250_00,
		GivenAt:     "2026-01-04",
	})
	require.NoError(t, err)
	assert.Equal(t, int64(12), o.RecordedBy)
	require.NotNil(t, o.AmountCents)
	assert.Equal(t, int64(25000), *o.AmountCents)
	assert.Equal(t, "2026-01-04", o.GivenAt.Format("2006-01-02"))
}

func TestCreateRejectsBadDate(t *testing.T) {
	svc := NewService(newMemoryOfferings(), slog.Default())

	_, err := svc.Create(context.Background(), shared.UserContext{UserID: 1}, CreateOfferingRequest{
		Fund:        FundGeneral,
		AmountCents: 100,
		GivenAt:     "04/01/2026",
	})
	verr, ok := shared.AsValidationError(err)
	require.True(t, ok)
	assert.Contains(t, verr.Fields, "given_at")
}

func TestListRedactsAmountsBelowStaff(t *testing.T) {
	repo := newMemoryOfferings()
	svc := NewService(repo, slog.Default())
	ctx := context.Background()
	staff := shared.UserContext{UserID: 1, Role: rbac.RoleStaff}

	_, err := svc.Create(ctx, staff, CreateOfferingRequest{
		Fund: FundGeneral, AmountCents: 5000, GivenAt: "2026-01-04",
	})
	require.NoError(t, err)

	// Volunteers holding offerings:read see the record without the
	// amount.
	out, total, err := svc.List(ctx, shared.UserContext{Role: rbac.RoleVolunteer}, ListOfferingsRequest{})
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	require.Len(t, out, 1)
	assert.Nil(t, out[0].AmountCents)
	assert.Equal(t, FundGeneral, out[0].Fund)

	out, _, err = svc.List(ctx, staff, ListOfferingsRequest{})
	require.NoError(t, err)
	require.NotNil(t, out[0].AmountCents)
	assert.Equal(t, int64(5000), *out[0].AmountCents)
}

func TestSummaryAggregatesPerFund(t *testing.T) {
	repo := newMemoryOfferings()
	svc := NewService(repo, slog.Default())
	ctx := context.Background()
	staff := shared.UserContext{UserID: 1, Role: rbac.RoleStaff}

	for _, amount := range []int64{1000, 2500} {
		_, err := svc.Create(ctx, staff, CreateOfferingRequest{
			Fund: FundTithe, AmountCents: amount, GivenAt: "2026-01-04",
		})
		require.NoError(t, err)
	}
	_, err := svc.Create(ctx, staff, CreateOfferingRequest{
		Fund: FundMissions, AmountCents: 700, GivenAt: "2026-01-04",
	})
	require.NoError(t, err)

	totals, err := svc.Summary(ctx, nil, nil)
	require.NoError(t, err)
	byFund := make(map[string]FundTotal, len(totals))
	for _, ft := range totals {
		byFund[ft.Fund] = ft
	}
	assert.Equal(t, int64(3500), byFund[FundTithe].TotalCents)
	assert.Equal(t, int64(2), byFund[FundTithe].Count)
	assert.Equal(t, int64(700), byFund[FundMissions].TotalCents)
}

func TestDeletedOfferingsLeaveListAndSummary(t *testing.T) {
	repo := newMemoryOfferings()
	svc := NewService(repo, slog.Default())
	ctx := context.Background()
	staff := shared.UserContext{UserID: 1, Role: rbac.RoleStaff}

	o, err := svc.Create(ctx, staff, CreateOfferingRequest{
		Fund: FundGeneral, AmountCents: 5000, GivenAt: "2026-01-04",
	})
	require.NoError(t, err)
	require.NoError(t, svc.Delete(ctx, o.ID))

	out, total, err := svc.List(ctx, staff, ListOfferingsRequest{})
	require.NoError(t, err)
	assert.Zero(t, total)
	assert.Empty(t, out)

	totals, err := svc.Summary(ctx, nil, nil)
	require.NoError(t, err)
	assert.Empty(t, totals)
}

func TestFilterAmountIdempotent(t *testing.T) {
	amount := int64(5000)
	o := Offering{Fund: FundGeneral, AmountCents: &amount}
	volunteer := shared.UserContext{Role: rbac.RoleVolunteer}

	once := FilterAmount(o, volunteer)
	twice := FilterAmount(once, volunteer)
	assert.Nil(t, once.AmountCents)
	assert.Nil(t, twice.AmountCents)
	require.NotNil(t, o.AmountCents, "input must not be mutated")
}

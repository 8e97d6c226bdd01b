package cellgroups

import (
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/koinonia-app/koinonia/internal/shared"
)

type memoryGroups struct {
	groups map[int64]*CellGroup
	nextID int64
}

func newMemoryGroups() *memoryGroups {
	return &memoryGroups{groups: make(map[int64]*CellGroup), nextID: 1}
}

func (r *memoryGroups) Get(_ context.Context, id int64) (*CellGroup, error) {
	g, ok := r.groups[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	copied := *g
	return &copied, nil
}

func (r *memoryGroups) List(_ context.Context) ([]CellGroup, error) {
	var out []CellGroup
	for _, g := range r.groups {
		if g.Status != StatusDeleted {
			out = append(out, *g)
		}
	}
	return out, nil
}

func (r *memoryGroups) Create(_ context.Context, g CellGroup) (int64, error) {
	g.ID = r.nextID
	g.Version = 1
	r.groups[g.ID] = &g
	r.nextID++
	return g.ID, nil
}

func (r *memoryGroups) Update(_ context.Context, g CellGroup) error {
	stored, ok := r.groups[g.ID]
	if !ok {
		return shared.ErrNotFound
	}
	if stored.Version != g.Version {
		return shared.ErrVersionConflict
	}
	g.Version++
	r.groups[g.ID] = &g
	return nil
}

func (r *memoryGroups) SoftDelete(_ context.Context, id int64) error {
	g, ok := r.groups[id]
	if !ok {
		return shared.ErrNotFound
	}
	g.Status = StatusDeleted
	return nil
}

func TestCreateRequiresName(t *testing.T) {
	svc := NewService(newMemoryGroups(), slog.Default())

	_, err := svc.Create(context.Background(), CreateCellGroupRequest{Name: "   "})
	verr, ok := shared.AsValidationError(err)
	require.True(t, ok)
	assert.Contains(t, verr.Fields, "name")

	leader := int64(4)
	g, err := svc.Create(context.Background(), CreateCellGroupRequest{
		Name:           " Northside Group ",
		LeaderMemberID: &leader,
		MeetingDay:     "wednesday",
	})
	require.NoError(t, err)
	assert.Equal(t, "Northside Group", g.Name)
	assert.Equal(t, leader, g.LeaderMemberID)
	assert.Equal(t, StatusActive, g.Status)
}

func TestUpdateClearsLeader(t *testing.T) {
	svc := NewService(newMemoryGroups(), slog.Default())
	leader := int64(4)
	g, err := svc.Create(context.Background(), CreateCellGroupRequest{
		Name:           "Northside Group",
		LeaderMemberID: &leader,
	})
	require.NoError(t, err)

	// Zero clears the leader assignment.
	none := int64(0)
	updated, err := svc.Update(context.Background(), g.ID, UpdateCellGroupRequest{
		LeaderMemberID: &none,
		Version:        g.Version,
	})
	require.NoError(t, err)
	assert.Zero(t, updated.LeaderMemberID)
}

func TestDeletedGroupIsNotFound(t *testing.T) {
	svc := NewService(newMemoryGroups(), slog.Default())
	g, err := svc.Create(context.Background(), CreateCellGroupRequest{Name: "Northside Group"})
	require.NoError(t, err)
	require.NoError(t, svc.Delete(context.Background(), g.ID))

	_, err = svc.Get(context.Background(), g.ID)
	assert.ErrorIs(t, err, shared.ErrNotFound)

	name := "Renamed"
	_, err = svc.Update(context.Background(), g.ID, UpdateCellGroupRequest{Name: &name, Version: 2})
	assert.ErrorIs(t, err, shared.ErrNotFound)
}

func TestUpdateVersionConflict(t *testing.T) {
	svc := NewService(newMemoryGroups(), slog.Default())
	g, err := svc.Create(context.Background(), CreateCellGroupRequest{Name: "Northside Group"})
	require.NoError(t, err)

	name := "Renamed"
	_, err = svc.Update(context.Background(), g.ID, UpdateCellGroupRequest{Name: &name, Version: g.Version + 1})
	assert.ErrorIs(t, err, shared.ErrVersionConflict)
}

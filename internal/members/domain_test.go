package members

import (
	"testing"
	"time"

	"github.com/koinonia-app/koinonia/internal/rbac"
	"github.com/koinonia-app/koinonia/internal/shared"
)

func strptr(s string) *string { return &s }

func TestNormalizeFaithStatus(t *testing.T) {
	cases := map[string]string{
		"newcomer":    FaithNewcomer,
		"seeker":      FaithSeeker,
		"baptized":    FaithBaptized,
		"transferred": FaithTransferred,
		"":            FaithNewcomer,
		"Member":      FaithNewcomer,
		"BAPTIZED":    FaithNewcomer,
		"garbage":     FaithNewcomer,
	}
	for input, want := range cases {
		if got := NormalizeFaithStatus(input); got != want {
			t.Errorf("NormalizeFaithStatus(%q) = %q, want %q", input, got, want)
		}
	}
}

func TestFilterSensitiveStripsHealthNotes(t *testing.T) {
	m := Member{ID: 1, FirstName: "Grace", HealthNotes: strptr("wheelchair access")}

	for _, role := range []string{rbac.RoleReadonly, rbac.RoleVolunteer, rbac.RoleStaff, rbac.RoleLeader} {
		got := FilterSensitive(m, shared.UserContext{Role: role})
		if got.HealthNotes != nil {
			t.Errorf("%s should not see health notes", role)
		}
		if got.FirstName != "Grace" {
			t.Errorf("non-sensitive fields must survive filtering")
		}
	}
	for _, role := range []string{rbac.RolePastor, rbac.RoleAdmin} {
		got := FilterSensitive(m, shared.UserContext{Role: role})
		if got.HealthNotes == nil || *got.HealthNotes != "wheelchair access" {
			t.Errorf("%s should see health notes", role)
		}
	}
}

func TestFilterSensitiveIdempotentAndNonMutating(t *testing.T) {
	m := Member{ID: 1, HealthNotes: strptr("notes")}
	user := shared.UserContext{Role: rbac.RoleLeader}

	once := FilterSensitive(m, user)
	twice := FilterSensitive(once, user)
	if once.HealthNotes != nil || twice.HealthNotes != nil {
		t.Fatal("filtering must be idempotent")
	}
	if m.HealthNotes == nil {
		t.Fatal("input must not be mutated")
	}
}

func TestAttributeMap(t *testing.T) {
	join := time.Date(2024, 2, 29, 0, 0, 0, 0, time.UTC)
	m := Member{
		FirstName:   "Daniel",
		City:        "Jakarta",
		FaithStatus: FaithBaptized,
		CellGroupID: 7,
		JoinDate:    &join,
	}
	attrs := m.AttributeMap()
	if attrs["join_date"] != "2024-02-29" {
		t.Errorf("join_date = %q", attrs["join_date"])
	}
	if attrs["cell_group_id"] != "7" {
		t.Errorf("cell_group_id = %q", attrs["cell_group_id"])
	}
	if attrs["faith_status"] != FaithBaptized {
		t.Errorf("faith_status = %q", attrs["faith_status"])
	}
	// Absent optional attributes are omitted so lookups read empty.
	if _, ok := attrs["birth_date"]; ok {
		t.Error("birth_date should be absent")
	}

	m.CellGroupID = 0
	if _, ok := m.AttributeMap()["cell_group_id"]; ok {
		t.Error("zero cell_group_id should be absent")
	}
}

// Package members implements member records, sensitive-field
// filtering and tag recomputation.
package members

import (
	"strconv"
	"time"

	"github.com/koinonia-app/koinonia/internal/rbac"
	"github.com/koinonia-app/koinonia/internal/shared"
)

// Faith status enum. Any other value is normalized to newcomer before
// persistence.
const (
	FaithNewcomer    = "newcomer"
	FaithSeeker      = "seeker"
	FaithBaptized    = "baptized"
	FaithTransferred = "transferred"
)

// Member statuses. Members are soft-deleted, never physically removed.
const (
	StatusActive  = "active"
	StatusDeleted = "deleted"
)

// Member is the person record underlying users, cell groups and tags.
// Tags holds a comma-joined tag id list. HealthNotes is sensitive and
// is stripped for callers below pastor.
type Member struct {
	ID          int64      `json:"id"`
	FirstName   string     `json:"first_name"`
	LastName    string     `json:"last_name"`
	Email       string     `json:"email,omitempty"`
	Phone       string     `json:"phone,omitempty"`
	Address     string     `json:"address,omitempty"`
	City        string     `json:"city,omitempty"`
	Gender      string     `json:"gender,omitempty"`
	BirthDate   *time.Time `json:"birth_date,omitempty"`
	JoinDate    *time.Time `json:"join_date,omitempty"`
	FaithStatus string     `json:"faith_status"`
	CellGroupID int64      `json:"cell_group_id,omitempty"`
	Tags        string     `json:"tags"`
	HealthNotes *string    `json:"health_notes,omitempty"`
	Notes       string     `json:"notes,omitempty"`
	Status      string     `json:"status"`
	Version     int64      `json:"version"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// NormalizeFaithStatus maps invalid or empty values to newcomer.
func NormalizeFaithStatus(value string) string {
	switch value {
	case FaithNewcomer, FaithSeeker, FaithBaptized, FaithTransferred:
		return value
	default:
		return FaithNewcomer
	}
}

// AttributeMap renders the member as the attribute-name to string-value
// view the tag rule engine evaluates conditions against. Absent
// attributes read as empty strings on lookup.
func (m Member) AttributeMap() map[string]string {
	attrs := map[string]string{
		"first_name":   m.FirstName,
		"last_name":    m.LastName,
		"email":        m.Email,
		"phone":        m.Phone,
		"address":      m.Address,
		"city":         m.City,
		"gender":       m.Gender,
		"faith_status": m.FaithStatus,
		"tags":         m.Tags,
		"status":       m.Status,
	}
	if m.CellGroupID != 0 {
		attrs["cell_group_id"] = strconv.FormatInt(m.CellGroupID, 10)
	}
	if m.BirthDate != nil {
		attrs["birth_date"] = m.BirthDate.Format("2006-01-02")
	}
	if m.JoinDate != nil {
		attrs["join_date"] = m.JoinDate.Format("2006-01-02")
	}
	return attrs
}

// FilterSensitive returns a copy of the member with sensitive fields
// removed unless the caller ranks pastor or above. The input is never
// mutated and the operation is idempotent.
func FilterSensitive(m Member, user shared.UserContext) Member {
	if rbac.CanViewSensitive(user) {
		return m
	}
	filtered := m
	filtered.HealthNotes = nil
	return filtered
}

// Ref projects the fields record-level access decisions need.
func (m Member) Ref() rbac.MemberRef {
	return rbac.MemberRef{ID: m.ID, CellGroupID: m.CellGroupID}
}

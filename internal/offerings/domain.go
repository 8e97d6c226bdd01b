// Package offerings implements offering record entry and reporting.
// Amounts are stored as integer cents. Callers below the staff rank
// see records with the amount redacted.
package offerings

import (
	"time"

	"github.com/koinonia-app/koinonia/internal/rbac"
	"github.com/koinonia-app/koinonia/internal/shared"
)

const (
	FundGeneral  = "general"
	FundTithe    = "tithe"
	FundMissions = "missions"
	FundBuilding = "building"
)

type Offering struct {
	ID          int64      `json:"id"`
	Fund        string     `json:"fund"`
	AmountCents *int64     `json:"amount_cents,omitempty"`
	GivenAt     time.Time  `json:"given_at"`
	MemberID    int64      `json:"member_id,omitempty"`
	Note        string     `json:"note,omitempty"`
	RecordedBy  int64      `json:"recorded_by"`
	CreatedAt   time.Time  `json:"created_at"`
	DeletedAt   *time.Time `json:"-"`
}

// FundTotal is one row of the per-fund summary.
type FundTotal struct {
	Fund       string `json:"fund"`
	TotalCents int64  `json:"total_cents"`
	Count      int64  `json:"count"`
}

// FilterAmount strips the amount for callers below staff. The input is
// untouched.
func FilterAmount(o Offering, user shared.UserContext) Offering {
	if rbac.HasMinimumRole(user.Role, rbac.RoleStaff) {
		return o
	}
	o.AmountCents = nil
	return o
}

type CreateOfferingRequest struct {
	Fund        string `json:"fund" validate:"required,oneof=general tithe missions building"`
	AmountCents int64  `json:"amount_cents" validate:"required,gt=0"`
	GivenAt     string `json:"given_at" validate:"required,datetime=2006-01-02"`
	MemberID    *int64 `json:"member_id,omitempty" validate:"omitempty,gt=0"`
	Note        string `json:"note" validate:"max=300"`
}

type ListOfferingsRequest struct {
	Fund    string
	From    *time.Time
	To      *time.Time
	Page    int
	PerPage int
}

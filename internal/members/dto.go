package members

type CreateMemberRequest struct {
	FirstName   string  `json:"first_name" validate:"required,max=100"`
	LastName    string  `json:"last_name" validate:"max=100"`
	Email       string  `json:"email" validate:"omitempty,email"`
	Phone       string  `json:"phone" validate:"max=50"`
	Address     string  `json:"address" validate:"max=300"`
	City        string  `json:"city" validate:"max=100"`
	Gender      string  `json:"gender" validate:"omitempty,oneof=male female"`
	BirthDate   *string `json:"birth_date,omitempty" validate:"omitempty,datetime=2006-01-02"`
	JoinDate    *string `json:"join_date,omitempty" validate:"omitempty,datetime=2006-01-02"`
	FaithStatus string  `json:"faith_status" validate:"max=50"`
	CellGroupID *int64  `json:"cell_group_id,omitempty" validate:"omitempty,gt=0"`
	HealthNotes *string `json:"health_notes,omitempty" validate:"omitempty,max=2000"`
	Notes       string  `json:"notes" validate:"max=2000"`
}

type UpdateMemberRequest struct {
	FirstName   *string `json:"first_name,omitempty" validate:"omitempty,max=100"`
	LastName    *string `json:"last_name,omitempty" validate:"omitempty,max=100"`
	Email       *string `json:"email,omitempty" validate:"omitempty,email"`
	Phone       *string `json:"phone,omitempty" validate:"omitempty,max=50"`
	Address     *string `json:"address,omitempty" validate:"omitempty,max=300"`
	City        *string `json:"city,omitempty" validate:"omitempty,max=100"`
	Gender      *string `json:"gender,omitempty" validate:"omitempty,oneof=male female"`
	BirthDate   *string `json:"birth_date,omitempty" validate:"omitempty,datetime=2006-01-02"`
	JoinDate    *string `json:"join_date,omitempty" validate:"omitempty,datetime=2006-01-02"`
	FaithStatus *string `json:"faith_status,omitempty" validate:"omitempty,max=50"`
	CellGroupID *int64  `json:"cell_group_id,omitempty" validate:"omitempty,gte=0"`
	HealthNotes *string `json:"health_notes,omitempty" validate:"omitempty,max=2000"`
	Notes       *string `json:"notes,omitempty" validate:"omitempty,max=2000"`
	Version     int64   `json:"version" validate:"required,gt=0"`
}

type ListMembersRequest struct {
	Search      string `json:"search"`
	FaithStatus string `json:"faith_status"`
	CellGroupID int64  `json:"cell_group_id"`
	TagID       int64  `json:"tag_id"`
	Page        int    `json:"page"`
	PerPage     int    `json:"per_page"`
}

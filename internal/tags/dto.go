package tags

type CreateTagRequest struct {
	Name        string `json:"name" validate:"required,max=100"`
	Category    string `json:"category" validate:"max=100"`
	Color       string `json:"color" validate:"omitempty,hexcolor"`
	Description string `json:"description" validate:"max=500"`
}

type UpdateTagRequest struct {
	Name        *string `json:"name,omitempty" validate:"omitempty,max=100"`
	Category    *string `json:"category,omitempty" validate:"omitempty,max=100"`
	Color       *string `json:"color,omitempty" validate:"omitempty,hexcolor"`
	Description *string `json:"description,omitempty" validate:"omitempty,max=500"`
	Status      *string `json:"status,omitempty" validate:"omitempty,oneof=active deleted"`
	Version     int64   `json:"version" validate:"required,gt=0"`
}

type CreateRuleRequest struct {
	Name              string `json:"name" validate:"required,max=100"`
	TagID             int64  `json:"tag_id" validate:"required,gt=0"`
	ConditionType     string `json:"condition_type" validate:"required,oneof=field date"`
	ConditionField    string `json:"condition_field" validate:"required,max=100"`
	ConditionOperator string `json:"condition_operator" validate:"required,oneof=equals contains greater_than less_than"`
	ConditionValue    string `json:"condition_value" validate:"required,max=200"`
	Priority          int    `json:"priority" validate:"gte=0"`
}

type UpdateRuleRequest struct {
	Name              *string `json:"name,omitempty" validate:"omitempty,max=100"`
	TagID             *int64  `json:"tag_id,omitempty" validate:"omitempty,gt=0"`
	ConditionType     *string `json:"condition_type,omitempty" validate:"omitempty,oneof=field date"`
	ConditionField    *string `json:"condition_field,omitempty" validate:"omitempty,max=100"`
	ConditionOperator *string `json:"condition_operator,omitempty" validate:"omitempty,oneof=equals contains greater_than less_than"`
	ConditionValue    *string `json:"condition_value,omitempty" validate:"omitempty,max=200"`
	Priority          *int    `json:"priority,omitempty" validate:"omitempty,gte=0"`
	Status            *string `json:"status,omitempty" validate:"omitempty,oneof=active inactive deleted"`
	Version           int64   `json:"version" validate:"required,gt=0"`
}

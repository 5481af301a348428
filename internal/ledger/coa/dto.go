package coa

// CreateRequest is the payload for POST /chart-of-account.
type CreateRequest struct {
	Code       string      `json:"coa_code" validate:"required,max=20"`
	Name       string      `json:"account_name" validate:"required,max=150"`
	Type       AccountType `json:"account_type" validate:"required,oneof=ASSET LIABILITY EQUITY REVENUE EXPENSE"`
	Level      Level       `json:"level" validate:"required,oneof=header subheader detail"`
	ParentCode *string     `json:"parent_coa_code,omitempty" validate:"omitempty,max=20"`
	IsPostable bool        `json:"is_postable"`
	IsActive   *bool       `json:"is_active,omitempty"`
}

// UpdateRequest replaces every mutable attribute of a node; the code is immutable.
type UpdateRequest struct {
	Name       string      `json:"account_name" validate:"required,max=150"`
	Type       AccountType `json:"account_type" validate:"required,oneof=ASSET LIABILITY EQUITY REVENUE EXPENSE"`
	Level      Level       `json:"level" validate:"required,oneof=header subheader detail"`
	ParentCode *string     `json:"parent_coa_code,omitempty" validate:"omitempty,max=20"`
	IsPostable bool        `json:"is_postable"`
	IsActive   *bool       `json:"is_active,omitempty"`
}

// ListFilters narrows the registry listing.
type ListFilters struct {
	Type       AccountType
	Level      Level
	ParentCode string
	Search     string
	IsActive   *bool
	Postable   bool
}

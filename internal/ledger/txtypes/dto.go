package txtypes

import "strings"

// CreateRequest is the payload for POST /transaction-type.
type CreateRequest struct {
	Code string `json:"code" validate:"required,max=30"`
	UpdateRequest
}

// UpdateRequest replaces every mutable attribute; the code is immutable.
type UpdateRequest struct {
	Name             string  `json:"name" validate:"required,max=150"`
	Description      string  `json:"description" validate:"max=500"`
	Category         string  `json:"category" validate:"max=50"`
	IsDebit          bool    `json:"is_debit"`
	IsCredit         bool    `json:"is_credit"`
	DefaultDebitCOA  *string `json:"default_debit_coa,omitempty" validate:"omitempty,max=20"`
	DefaultCreditCOA *string `json:"default_credit_coa,omitempty" validate:"omitempty,max=20"`
	IsActive         *bool   `json:"is_active,omitempty"`
}

// ListFilters narrows transaction type listings.
type ListFilters struct {
	Search   string
	Category string
	IsActive *bool
}

func (r UpdateRequest) apply(t *TransactionType) {
	t.Name = strings.TrimSpace(r.Name)
	t.Description = strings.TrimSpace(r.Description)
	t.Category = strings.TrimSpace(r.Category)
	t.IsDebit = r.IsDebit
	t.IsCredit = r.IsCredit
	t.DefaultDebitCOA = optionalCode(r.DefaultDebitCOA)
	t.DefaultCreditCOA = optionalCode(r.DefaultCreditCOA)
	if r.IsActive != nil {
		t.IsActive = *r.IsActive
	}
}

func optionalCode(code *string) *string {
	if code == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*code)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}

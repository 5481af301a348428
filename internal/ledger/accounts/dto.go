package accounts

import "github.com/santri-erp/santri-erp/internal/shared"

// OpenRequest is the payload for POST /account.
type OpenRequest struct {
	CustomerID int64 `json:"customer_id" validate:"required,gt=0"`
	ProductID  int64 `json:"product_id" validate:"required,gt=0"`
}

// UpdateRequest is the payload for PUT /account/{accountNumber}.
type UpdateRequest struct {
	ProductID *int64  `json:"product_id,omitempty" validate:"omitempty,gt=0"`
	Status    *string `json:"status,omitempty"`
}

// StatusRequest is the payload for PUT /account/{accountNumber}/status.
type StatusRequest struct {
	Status string `json:"status" validate:"required"`
}

// ListFilters narrows account listings.
type ListFilters struct {
	shared.ListFilters
	ProductID *int64
}

func parseStatusField(raw string) (Status, error) {
	status, ok := ParseStatus(raw)
	if !ok {
		return "", shared.NewValidationError("status", "must be one of: TIDAK AKTIF, AKTIF, TUTUP")
	}
	return status, nil
}

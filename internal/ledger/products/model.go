package products

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/santri-erp/santri-erp/internal/shared"
)

// ErrInUse blocks deleting a product that accounts are still opened against.
var ErrInUse = shared.NewConflict("Tidak dapat menghapus produk yang masih digunakan akun")

// Product represents a savings product accounts are opened against.
type Product struct {
	ID           int64           `json:"id"`
	Code         string          `json:"product_code"`
	Name         string          `json:"product_name"`
	Type         string          `json:"product_type"`
	InterestRate decimal.Decimal `json:"interest_rate"`
	AdminFee     decimal.Decimal `json:"admin_fee"`
	OpeningFee   decimal.Decimal `json:"opening_fee"`
	IsActive     bool            `json:"is_active"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
}

package accounts

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/santri-erp/santri-erp/internal/shared"
)

// Status is the lifecycle state of an account.
type Status string

const (
	StatusInactive Status = "TIDAK AKTIF"
	StatusActive   Status = "AKTIF"
	StatusClosed   Status = "TUTUP"
)

// ParseStatus accepts the stored spelling and the underscore alias used by older clients.
func ParseStatus(raw string) (Status, bool) {
	switch strings.ToUpper(strings.TrimSpace(raw)) {
	case string(StatusInactive), "TIDAK_AKTIF":
		return StatusInactive, true
	case string(StatusActive):
		return StatusActive, true
	case string(StatusClosed):
		return StatusClosed, true
	}
	return "", false
}

var (
	ErrCustomerHasAccount  = shared.NewConflict("Siswa sudah memiliki akun")
	ErrAccountNumberTaken  = shared.NewConflict("Nomor akun sudah digunakan")
	ErrCloseWithBalance    = shared.NewConflict("Tidak dapat mengubah status menjadi TUTUP dengan saldo aktif")
	ErrAlreadyClosed       = shared.NewConflict("Akun sudah ditutup")
	ErrDeleteWithBalance   = shared.NewConflict("Tidak dapat menghapus akun dengan saldo aktif")
	ErrInsufficientBalance = shared.NewConflict("Saldo tidak mencukupi")
	ErrNotActive           = shared.NewConflict("Akun tidak aktif")
)

// Account is a customer's balance-bearing record opened against a product.
type Account struct {
	Number     string          `json:"account_number"`
	CustomerID int64           `json:"customer_id"`
	ProductID  int64           `json:"product_id"`
	Balance    decimal.Decimal `json:"balance"`
	Status     Status          `json:"status"`
	OpenDate   time.Time       `json:"open_date"`
	CreatedAt  time.Time       `json:"created_at"`
	UpdatedAt  time.Time       `json:"updated_at"`
}

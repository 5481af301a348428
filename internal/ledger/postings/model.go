package postings

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/santri-erp/santri-erp/internal/shared"
)

// Direction is the side of the customer account a posting hits.
type Direction string

const (
	// Debit withdraws from the customer balance.
	Debit Direction = "DEBIT"
	// Credit deposits into the customer balance.
	Credit Direction = "CREDIT"
)

var (
	ErrDuplicateReference = shared.NewConflict("Referensi transaksi sudah digunakan")
	ErrTypeInactive       = shared.NewConflict("Jenis transaksi tidak aktif")
)

// Entry is an immutable ledger line recorded for every accepted posting.
type Entry struct {
	ID            string          `json:"id"`
	AccountNumber string          `json:"account_number"`
	TypeCode      string          `json:"type_code"`
	Direction     Direction       `json:"direction"`
	Amount        decimal.Decimal `json:"amount"`
	BalanceBefore decimal.Decimal `json:"balance_before"`
	BalanceAfter  decimal.Decimal `json:"balance_after"`
	DebitCOA      *string         `json:"debit_coa"`
	CreditCOA     *string         `json:"credit_coa"`
	Memo          string          `json:"memo"`
	Reference     *string         `json:"reference"`
	PostedBy      string          `json:"posted_by"`
	PostedAt      time.Time       `json:"posted_at"`
}

// PostRequest is the payload for POST /account/{accountNumber}/postings.
type PostRequest struct {
	TypeCode  string          `json:"type_code" validate:"required,max=30"`
	Amount    decimal.Decimal `json:"amount"`
	Direction string          `json:"direction,omitempty" validate:"max=10"`
	Memo      string          `json:"memo" validate:"max=255"`
	Reference string          `json:"reference,omitempty" validate:"max=64"`
}

// Drift reports an account whose stored balance disagrees with its entries.
type Drift struct {
	AccountNumber string          `json:"account_number"`
	Balance       decimal.Decimal `json:"balance"`
	LedgerBalance decimal.Decimal `json:"ledger_balance"`
}

func (d Direction) delta(amount decimal.Decimal) decimal.Decimal {
	if d == Debit {
		return amount.Neg()
	}
	return amount
}

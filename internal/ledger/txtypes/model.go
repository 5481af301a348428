package txtypes

import "time"

// TransactionType classifies postings and carries their default COA pair.
type TransactionType struct {
	ID               int64     `json:"id"`
	Code             string    `json:"code"`
	Name             string    `json:"name"`
	Description      string    `json:"description"`
	Category         string    `json:"category"`
	IsDebit          bool      `json:"is_debit"`
	IsCredit         bool      `json:"is_credit"`
	DefaultDebitCOA  *string   `json:"default_debit_coa"`
	DefaultCreditCOA *string   `json:"default_credit_coa"`
	IsActive         bool      `json:"is_active"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

// Posting is what a posting engine needs to know about a transaction type.
type Posting struct {
	TypeCode  string  `json:"code"`
	DebitCOA  *string `json:"default_debit_coa"`
	CreditCOA *string `json:"default_credit_coa"`
	IsDebit   bool    `json:"is_debit"`
	IsCredit  bool    `json:"is_credit"`
	IsActive  bool    `json:"is_active"`
}

// Posting projects the posting rule of t.
func (t TransactionType) Posting() Posting {
	return Posting{
		TypeCode:  t.Code,
		DebitCOA:  t.DefaultDebitCOA,
		CreditCOA: t.DefaultCreditCOA,
		IsDebit:   t.IsDebit,
		IsCredit:  t.IsCredit,
		IsActive:  t.IsActive,
	}
}

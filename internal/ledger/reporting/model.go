// Package reporting serves read-only ledger projections to export consumers.
package reporting

import (
	"time"

	"github.com/shopspring/decimal"
)

// AccountRow is an account joined with its customer and product names.
type AccountRow struct {
	AccountNumber string          `json:"account_number"`
	CustomerID    int64           `json:"customer_id"`
	CustomerName  string          `json:"customer_name"`
	ProductID     int64           `json:"product_id"`
	ProductCode   string          `json:"product_code"`
	ProductName   string          `json:"product_name"`
	Balance       decimal.Decimal `json:"balance"`
	Status        string          `json:"status"`
	OpenDate      time.Time       `json:"open_date"`
}

// ProductRow summarises a product and the accounts opened against it.
type ProductRow struct {
	ID           int64           `json:"id"`
	Code         string          `json:"product_code"`
	Name         string          `json:"product_name"`
	Type         string          `json:"product_type"`
	InterestRate decimal.Decimal `json:"interest_rate"`
	AdminFee     decimal.Decimal `json:"admin_fee"`
	OpeningFee   decimal.Decimal `json:"opening_fee"`
	IsActive     bool            `json:"is_active"`
	AccountCount int             `json:"account_count"`
	TotalBalance decimal.Decimal `json:"total_balance"`
}

// COARow is a chart of accounts node with its parent's name.
type COARow struct {
	Code       string  `json:"coa_code"`
	Name       string  `json:"account_name"`
	Type       string  `json:"account_type"`
	Level      string  `json:"level"`
	ParentCode *string `json:"parent_coa_code"`
	ParentName *string `json:"parent_account_name"`
	IsPostable bool    `json:"is_postable"`
	IsActive   bool    `json:"is_active"`
}

// TransactionTypeRow is a transaction type with its default COA names.
type TransactionTypeRow struct {
	Code              string  `json:"code"`
	Name              string  `json:"name"`
	Category          string  `json:"category"`
	IsDebit           bool    `json:"is_debit"`
	IsCredit          bool    `json:"is_credit"`
	DefaultDebitCOA   *string `json:"default_debit_coa"`
	DefaultDebitName  *string `json:"default_debit_name"`
	DefaultCreditCOA  *string `json:"default_credit_coa"`
	DefaultCreditName *string `json:"default_credit_name"`
	IsActive          bool    `json:"is_active"`
}

// AccountFilter narrows the account projection.
type AccountFilter struct {
	Status    string
	ProductID *int64
}

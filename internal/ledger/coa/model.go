package coa

import (
	"time"

	"github.com/santri-erp/santri-erp/internal/shared"
)

// AccountType enumerates CoA categories.
type AccountType string

const (
	AccountTypeAsset     AccountType = "ASSET"
	AccountTypeLiability AccountType = "LIABILITY"
	AccountTypeEquity    AccountType = "EQUITY"
	AccountTypeRevenue   AccountType = "REVENUE"
	AccountTypeExpense   AccountType = "EXPENSE"
)

// Level places a node in the header/subheader/detail hierarchy.
type Level string

const (
	LevelHeader    Level = "header"
	LevelSubheader Level = "subheader"
	LevelDetail    Level = "detail"
)

var (
	// ErrHasChildren blocks deleting a node other nodes point to as parent.
	ErrHasChildren = shared.NewConflict("Tidak dapat menghapus chart of account yang memiliki anak")
	// ErrInUse blocks deleting a node referenced by transaction types or ledger entries.
	ErrInUse = shared.NewConflict("Tidak dapat menghapus chart of account yang sudah digunakan")
	// ErrNotPostable indicates the node cannot receive postings.
	ErrNotPostable = shared.NewConflict("Chart of account tidak dapat menerima posting")
	// ErrReferencedMustStayPostable blocks turning a referenced posting node into one that
	// no longer accepts postings.
	ErrReferencedMustStayPostable = shared.NewConflict("Chart of account yang sudah digunakan harus tetap dapat menerima posting")
)

// ChartOfAccount models a chart of accounts node.
type ChartOfAccount struct {
	Code       string      `json:"coa_code"`
	Name       string      `json:"account_name"`
	Type       AccountType `json:"account_type"`
	Level      Level       `json:"level"`
	ParentCode *string     `json:"parent_coa_code"`
	IsPostable bool        `json:"is_postable"`
	IsActive   bool        `json:"is_active"`
	CreatedAt  time.Time   `json:"created_at"`
	UpdatedAt  time.Time   `json:"updated_at"`
}

// AcceptsPostings reports whether debits and credits may be recorded against the node.
func (c ChartOfAccount) AcceptsPostings() bool {
	return c.Level == LevelDetail && c.IsPostable && c.IsActive
}

package postings

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/santri-erp/santri-erp/internal/ledger/accounts"
	"github.com/santri-erp/santri-erp/internal/platform/db"
	"github.com/santri-erp/santri-erp/internal/shared"
)

const referenceIndex = "uq_ledger_entries_reference"

// Repository persists ledger entries.
type Repository interface {
	ListEntries(ctx context.Context, accountNumber string, filters shared.ListFilters) ([]Entry, int, error)
	FindDrift(ctx context.Context) ([]Drift, error)
	WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error
}

// TxRepository exposes the operations of a single posting transaction.
type TxRepository interface {
	LockAccount(ctx context.Context, number string) (accounts.Account, error)
	StoreBalance(ctx context.Context, number string, balance decimal.Decimal) error
	InsertEntry(ctx context.Context, entry Entry) (Entry, error)
}

type repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs the Postgres-backed ledger store.
func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{pool: pool}
}

const entryColumns = `id, account_number, type_code, direction, amount, balance_before, balance_after, debit_coa, credit_coa, memo, reference, posted_by, posted_at`

func (r *repository) ListEntries(ctx context.Context, accountNumber string, filters shared.ListFilters) ([]Entry, int, error) {
	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM ledger_entries WHERE account_number = $1`, accountNumber).Scan(&total); err != nil {
		return nil, 0, err
	}
	limit := filters.Limit
	if limit <= 0 {
		limit = shared.DefaultLimit
	}
	rows, err := r.pool.Query(ctx, `SELECT `+entryColumns+` FROM ledger_entries WHERE account_number = $1
ORDER BY posted_at DESC, id DESC LIMIT $2 OFFSET $3`, accountNumber, limit, filters.Offset())
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	var entries []Entry
	for rows.Next() {
		var e Entry
		if err := rows.Scan(&e.ID, &e.AccountNumber, &e.TypeCode, &e.Direction, &e.Amount, &e.BalanceBefore, &e.BalanceAfter,
			&e.DebitCOA, &e.CreditCOA, &e.Memo, &e.Reference, &e.PostedBy, &e.PostedAt); err != nil {
			return nil, 0, err
		}
		entries = append(entries, e)
	}
	return entries, total, rows.Err()
}

func (r *repository) FindDrift(ctx context.Context) ([]Drift, error) {
	rows, err := r.pool.Query(ctx, `SELECT a.account_number, a.balance,
	COALESCE(SUM(CASE WHEN e.direction = 'CREDIT' THEN e.amount ELSE -e.amount END), 0) AS ledger_balance
FROM accounts a
LEFT JOIN ledger_entries e ON e.account_number = a.account_number
GROUP BY a.account_number, a.balance
HAVING a.balance <> COALESCE(SUM(CASE WHEN e.direction = 'CREDIT' THEN e.amount ELSE -e.amount END), 0)
ORDER BY a.account_number`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var drift []Drift
	for rows.Next() {
		var d Drift
		if err := rows.Scan(&d.AccountNumber, &d.Balance, &d.LedgerBalance); err != nil {
			return nil, err
		}
		drift = append(drift, d)
	}
	return drift, rows.Err()
}

// WithTx runs fn inside a repeatable-read transaction.
func (r *repository) WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error {
	return db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		return fn(ctx, &txRepository{tx: tx})
	})
}

type txRepository struct {
	tx pgx.Tx
}

func (t *txRepository) LockAccount(ctx context.Context, number string) (accounts.Account, error) {
	return accounts.LockForUpdate(ctx, t.tx, number)
}

func (t *txRepository) StoreBalance(ctx context.Context, number string, balance decimal.Decimal) error {
	return accounts.StoreBalance(ctx, t.tx, number, balance)
}

func (t *txRepository) InsertEntry(ctx context.Context, e Entry) (Entry, error) {
	_, err := t.tx.Exec(ctx, `INSERT INTO ledger_entries (`+entryColumns+`)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`,
		e.ID, e.AccountNumber, e.TypeCode, e.Direction, e.Amount, e.BalanceBefore, e.BalanceAfter,
		e.DebitCOA, e.CreditCOA, e.Memo, e.Reference, e.PostedBy, e.PostedAt)
	if db.IsUniqueViolation(err, referenceIndex) {
		return Entry{}, ErrDuplicateReference
	}
	if err != nil {
		return Entry{}, err
	}
	return e, nil
}

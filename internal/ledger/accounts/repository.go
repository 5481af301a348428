package accounts

import (
	"context"
	"errors"
	"strconv"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/santri-erp/santri-erp/internal/platform/db"
	"github.com/santri-erp/santri-erp/internal/shared"
)

const (
	customerUniqueConstraint = "uq_accounts_customer"
	primaryKeyConstraint     = "accounts_pkey"
	productFKConstraint      = "fk_accounts_product"
)

// Repository persists accounts.
type Repository interface {
	List(ctx context.Context, filters ListFilters) ([]Account, int, error)
	Get(ctx context.Context, number string) (Account, error)
	ExistsForCustomer(ctx context.Context, customerID int64) (bool, error)
	WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error
}

// TxRepository exposes the row-locked operations used by lifecycle changes.
type TxRepository interface {
	GetForUpdate(ctx context.Context, number string) (Account, error)
	Insert(ctx context.Context, account Account) (Account, error)
	UpdateStatus(ctx context.Context, number string, status Status) error
	UpdateProduct(ctx context.Context, number string, productID int64) error
	UpdateBalance(ctx context.Context, number string, balance decimal.Decimal) error
	Delete(ctx context.Context, number string) error
}

type repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs the Postgres-backed account store.
func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{pool: pool}
}

const selectColumns = `SELECT account_number, customer_id, product_id, balance, status, open_date, created_at, updated_at FROM accounts`

func scanAccount(row pgx.Row) (Account, error) {
	var a Account
	err := row.Scan(&a.Number, &a.CustomerID, &a.ProductID, &a.Balance, &a.Status, &a.OpenDate, &a.CreatedAt, &a.UpdatedAt)
	return a, err
}

func (r *repository) List(ctx context.Context, filters ListFilters) ([]Account, int, error) {
	where := ` WHERE 1=1`
	args := []any{}
	add := func(clause string, value any) {
		args = append(args, value)
		where += strings.ReplaceAll(clause, "?", "$"+strconv.Itoa(len(args)))
	}
	if filters.Search != "" {
		add(` AND account_number ILIKE ?`, "%"+filters.Search+"%")
	}
	if filters.Status != "" {
		if status, ok := ParseStatus(filters.Status); ok {
			add(` AND status = ?`, status)
		}
	}
	if filters.ProductID != nil {
		add(` AND product_id = ?`, *filters.ProductID)
	}

	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM accounts`+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := selectColumns + where + ` ORDER BY ` + sortOrder(filters.SortBy, filters.SortDir)
	if filters.Limit > 0 {
		query += ` LIMIT $` + strconv.Itoa(len(args)+1) + ` OFFSET $` + strconv.Itoa(len(args)+2)
		args = append(args, filters.Limit, filters.Offset())
	}
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	var accounts []Account
	for rows.Next() {
		a, err := scanAccount(rows)
		if err != nil {
			return nil, 0, err
		}
		accounts = append(accounts, a)
	}
	return accounts, total, rows.Err()
}

func (r *repository) Get(ctx context.Context, number string) (Account, error) {
	return get(ctx, r.pool, number, false)
}

func (r *repository) ExistsForCustomer(ctx context.Context, customerID int64) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM accounts WHERE customer_id = $1)`, customerID).Scan(&exists)
	return exists, err
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

func (t *txRepository) GetForUpdate(ctx context.Context, number string) (Account, error) {
	return LockForUpdate(ctx, t.tx, number)
}

func (t *txRepository) Insert(ctx context.Context, a Account) (Account, error) {
	err := t.tx.QueryRow(ctx, `INSERT INTO accounts (account_number, customer_id, product_id, balance, status, open_date)
VALUES ($1, $2, $3, $4, $5, $6) RETURNING created_at, updated_at`,
		a.Number, a.CustomerID, a.ProductID, a.Balance, a.Status, a.OpenDate).Scan(&a.CreatedAt, &a.UpdatedAt)
	switch {
	case err == nil:
		return a, nil
	case db.IsUniqueViolation(err, customerUniqueConstraint):
		return Account{}, ErrCustomerHasAccount
	case db.IsUniqueViolation(err, primaryKeyConstraint):
		return Account{}, ErrAccountNumberTaken
	case db.IsForeignKeyViolation(err, productFKConstraint):
		return Account{}, shared.NewNotFound("produk", strconv.FormatInt(a.ProductID, 10))
	}
	return Account{}, err
}

func (t *txRepository) UpdateStatus(ctx context.Context, number string, status Status) error {
	return t.exec(ctx, number, `UPDATE accounts SET status = $2, updated_at = NOW() WHERE account_number = $1`, status)
}

func (t *txRepository) UpdateProduct(ctx context.Context, number string, productID int64) error {
	err := t.exec(ctx, number, `UPDATE accounts SET product_id = $2, updated_at = NOW() WHERE account_number = $1`, productID)
	if db.IsForeignKeyViolation(err, productFKConstraint) {
		return shared.NewNotFound("produk", strconv.FormatInt(productID, 10))
	}
	return err
}

func (t *txRepository) UpdateBalance(ctx context.Context, number string, balance decimal.Decimal) error {
	return StoreBalance(ctx, t.tx, number, balance)
}

func (t *txRepository) Delete(ctx context.Context, number string) error {
	cmd, err := t.tx.Exec(ctx, `DELETE FROM accounts WHERE account_number = $1`, number)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return notFound(number)
	}
	return nil
}

func (t *txRepository) exec(ctx context.Context, number, sql string, arg any) error {
	cmd, err := t.tx.Exec(ctx, sql, number, arg)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return notFound(number)
	}
	return nil
}

// LockForUpdate reads an account and holds its row lock until q's transaction ends.
func LockForUpdate(ctx context.Context, q db.Querier, number string) (Account, error) {
	return get(ctx, q, number, true)
}

// StoreBalance writes a balance computed by ApplyDelta.
func StoreBalance(ctx context.Context, q db.Querier, number string, balance decimal.Decimal) error {
	cmd, err := q.Exec(ctx, `UPDATE accounts SET balance = $2, updated_at = NOW() WHERE account_number = $1`, number, balance)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return notFound(number)
	}
	return nil
}

func get(ctx context.Context, q db.Querier, number string, lock bool) (Account, error) {
	query := selectColumns + ` WHERE account_number = $1`
	if lock {
		query += ` FOR UPDATE`
	}
	a, err := scanAccount(q.QueryRow(ctx, query, number))
	if errors.Is(err, pgx.ErrNoRows) {
		return Account{}, notFound(number)
	}
	return a, err
}

func notFound(number string) error {
	return shared.NewNotFound("akun", number)
}

func sortOrder(sortBy, sortDir string) string {
	dir := "ASC"
	if sortDir == "desc" {
		dir = "DESC"
	}
	switch sortBy {
	case "balance":
		return "balance " + dir
	case "open_date":
		return "open_date " + dir
	case "status":
		return "status " + dir
	default:
		return "account_number " + dir
	}
}

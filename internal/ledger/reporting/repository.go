package reporting

import (
	"context"
	"strconv"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository runs the explicit joins behind each projection.
type Repository interface {
	Accounts(ctx context.Context, filter AccountFilter) ([]AccountRow, error)
	Products(ctx context.Context) ([]ProductRow, error)
	ChartOfAccounts(ctx context.Context) ([]COARow, error)
	TransactionTypes(ctx context.Context) ([]TransactionTypeRow, error)
}

type repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs the Postgres projection reader.
func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{pool: pool}
}

func (r *repository) Accounts(ctx context.Context, filter AccountFilter) ([]AccountRow, error) {
	query := `SELECT a.account_number, a.customer_id, COALESCE(s.name, ''), a.product_id, p.product_code, p.product_name,
	a.balance, a.status, a.open_date
FROM accounts a
JOIN products p ON p.id = a.product_id
LEFT JOIN students s ON s.id = a.customer_id
WHERE 1=1`
	args := []any{}
	if filter.Status != "" {
		args = append(args, filter.Status)
		query += ` AND a.status = $` + strconv.Itoa(len(args))
	}
	if filter.ProductID != nil {
		args = append(args, *filter.ProductID)
		query += ` AND a.product_id = $` + strconv.Itoa(len(args))
	}
	query += ` ORDER BY a.account_number`
	return collect(ctx, r.pool, query, args, func(rows pgx.Rows) (AccountRow, error) {
		var row AccountRow
		err := rows.Scan(&row.AccountNumber, &row.CustomerID, &row.CustomerName, &row.ProductID, &row.ProductCode, &row.ProductName,
			&row.Balance, &row.Status, &row.OpenDate)
		return row, err
	})
}

func (r *repository) Products(ctx context.Context) ([]ProductRow, error) {
	query := `SELECT p.id, p.product_code, p.product_name, p.product_type, p.interest_rate, p.admin_fee, p.opening_fee, p.is_active,
	COUNT(a.account_number), COALESCE(SUM(a.balance), 0)
FROM products p
LEFT JOIN accounts a ON a.product_id = p.id
GROUP BY p.id
ORDER BY p.product_code`
	return collect(ctx, r.pool, query, nil, func(rows pgx.Rows) (ProductRow, error) {
		var row ProductRow
		err := rows.Scan(&row.ID, &row.Code, &row.Name, &row.Type, &row.InterestRate, &row.AdminFee, &row.OpeningFee, &row.IsActive,
			&row.AccountCount, &row.TotalBalance)
		return row, err
	})
}

func (r *repository) ChartOfAccounts(ctx context.Context) ([]COARow, error) {
	query := `SELECT c.coa_code, c.account_name, c.account_type, c.level, c.parent_coa_code, parent.account_name, c.is_postable, c.is_active
FROM chart_of_accounts c
LEFT JOIN chart_of_accounts parent ON parent.coa_code = c.parent_coa_code
ORDER BY c.coa_code`
	return collect(ctx, r.pool, query, nil, func(rows pgx.Rows) (COARow, error) {
		var row COARow
		err := rows.Scan(&row.Code, &row.Name, &row.Type, &row.Level, &row.ParentCode, &row.ParentName, &row.IsPostable, &row.IsActive)
		return row, err
	})
}

func (r *repository) TransactionTypes(ctx context.Context) ([]TransactionTypeRow, error) {
	query := `SELECT t.code, t.name, t.category, t.is_debit, t.is_credit, t.default_debit_coa, d.account_name, t.default_credit_coa, c.account_name, t.is_active
FROM transaction_types t
LEFT JOIN chart_of_accounts d ON d.coa_code = t.default_debit_coa
LEFT JOIN chart_of_accounts c ON c.coa_code = t.default_credit_coa
ORDER BY t.code`
	return collect(ctx, r.pool, query, nil, func(rows pgx.Rows) (TransactionTypeRow, error) {
		var row TransactionTypeRow
		err := rows.Scan(&row.Code, &row.Name, &row.Category, &row.IsDebit, &row.IsCredit,
			&row.DefaultDebitCOA, &row.DefaultDebitName, &row.DefaultCreditCOA, &row.DefaultCreditName, &row.IsActive)
		return row, err
	})
}

func collect[T any](ctx context.Context, pool *pgxpool.Pool, query string, args []any, scan func(pgx.Rows) (T, error)) ([]T, error) {
	rows, err := pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []T{}
	for rows.Next() {
		item, err := scan(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, item)
	}
	return out, rows.Err()
}

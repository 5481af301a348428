package coa

import (
	"context"
	"errors"
	"strconv"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/santri-erp/santri-erp/internal/platform/db"
	"github.com/santri-erp/santri-erp/internal/shared"
)

const parentFKConstraint = "chart_of_accounts_parent_coa_code_fkey"

// Repository persists chart of account nodes.
type Repository interface {
	List(ctx context.Context, filters ListFilters) ([]ChartOfAccount, error)
	Get(ctx context.Context, code string) (ChartOfAccount, error)
	Create(ctx context.Context, node ChartOfAccount) (ChartOfAccount, error)
	Update(ctx context.Context, node ChartOfAccount) (ChartOfAccount, error)
	Delete(ctx context.Context, code string) error
	CountChildren(ctx context.Context, code string) (int, error)
	CountReferences(ctx context.Context, code string) (int, error)
}

type repository struct {
	db *pgxpool.Pool
}

// NewRepository constructs the Postgres-backed registry store.
func NewRepository(db *pgxpool.Pool) Repository {
	return &repository{db: db}
}

const selectColumns = `SELECT coa_code, account_name, account_type, level, parent_coa_code, is_postable, is_active, created_at, updated_at FROM chart_of_accounts`

func scanNode(row pgx.Row) (ChartOfAccount, error) {
	var c ChartOfAccount
	err := row.Scan(&c.Code, &c.Name, &c.Type, &c.Level, &c.ParentCode, &c.IsPostable, &c.IsActive, &c.CreatedAt, &c.UpdatedAt)
	return c, err
}

func (r *repository) List(ctx context.Context, filters ListFilters) ([]ChartOfAccount, error) {
	query := selectColumns + ` WHERE 1=1`
	args := []any{}
	add := func(clause string, value any) {
		args = append(args, value)
		query += strings.ReplaceAll(clause, "?", "$"+strconv.Itoa(len(args)))
	}
	if filters.Type != "" {
		add(` AND account_type = ?`, filters.Type)
	}
	if filters.Level != "" {
		add(` AND level = ?`, filters.Level)
	}
	if filters.ParentCode != "" {
		add(` AND parent_coa_code = ?`, filters.ParentCode)
	}
	if filters.Search != "" {
		add(` AND (coa_code ILIKE ? OR account_name ILIKE ?)`, "%"+filters.Search+"%")
	}
	if filters.IsActive != nil {
		add(` AND is_active = ?`, *filters.IsActive)
	}
	if filters.Postable {
		query += ` AND is_postable AND level = 'detail'`
	}
	query += ` ORDER BY coa_code`

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var nodes []ChartOfAccount
	for rows.Next() {
		c, err := scanNode(rows)
		if err != nil {
			return nil, err
		}
		nodes = append(nodes, c)
	}
	return nodes, rows.Err()
}

func (r *repository) Get(ctx context.Context, code string) (ChartOfAccount, error) {
	c, err := scanNode(r.db.QueryRow(ctx, selectColumns+` WHERE coa_code = $1`, code))
	if errors.Is(err, pgx.ErrNoRows) {
		return ChartOfAccount{}, shared.NewNotFound("chart of account", code)
	}
	return c, err
}

func (r *repository) Create(ctx context.Context, node ChartOfAccount) (ChartOfAccount, error) {
	err := r.db.QueryRow(ctx, `INSERT INTO chart_of_accounts (coa_code, account_name, account_type, level, parent_coa_code, is_postable, is_active)
VALUES ($1, $2, $3, $4, $5, $6, $7) RETURNING created_at, updated_at`,
		node.Code, node.Name, node.Type, node.Level, node.ParentCode, node.IsPostable, node.IsActive).
		Scan(&node.CreatedAt, &node.UpdatedAt)
	if err != nil {
		if db.IsUniqueViolation(err, "") {
			return ChartOfAccount{}, shared.NewValidationError("coa_code", "has already been taken")
		}
		if db.IsForeignKeyViolation(err, parentFKConstraint) {
			return ChartOfAccount{}, shared.NewValidationError("parent_coa_code", "does not exist")
		}
		return ChartOfAccount{}, err
	}
	return node, nil
}

func (r *repository) Update(ctx context.Context, node ChartOfAccount) (ChartOfAccount, error) {
	err := r.db.QueryRow(ctx, `UPDATE chart_of_accounts SET account_name = $2, account_type = $3, level = $4, parent_coa_code = $5, is_postable = $6, is_active = $7, updated_at = NOW()
WHERE coa_code = $1 RETURNING created_at, updated_at`,
		node.Code, node.Name, node.Type, node.Level, node.ParentCode, node.IsPostable, node.IsActive).
		Scan(&node.CreatedAt, &node.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ChartOfAccount{}, shared.NewNotFound("chart of account", node.Code)
		}
		if db.IsForeignKeyViolation(err, parentFKConstraint) {
			return ChartOfAccount{}, shared.NewValidationError("parent_coa_code", "does not exist")
		}
		return ChartOfAccount{}, err
	}
	return node, nil
}

func (r *repository) Delete(ctx context.Context, code string) error {
	cmd, err := r.db.Exec(ctx, `DELETE FROM chart_of_accounts WHERE coa_code = $1`, code)
	if err != nil {
		if db.IsForeignKeyViolation(err, parentFKConstraint) {
			return ErrHasChildren
		}
		if db.IsForeignKeyViolation(err, "") {
			return ErrInUse
		}
		return err
	}
	if cmd.RowsAffected() == 0 {
		return shared.NewNotFound("chart of account", code)
	}
	return nil
}

func (r *repository) CountChildren(ctx context.Context, code string) (int, error) {
	var n int
	err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM chart_of_accounts WHERE parent_coa_code = $1`, code).Scan(&n)
	return n, err
}

func (r *repository) CountReferences(ctx context.Context, code string) (int, error) {
	var n int
	err := r.db.QueryRow(ctx, `SELECT
	(SELECT COUNT(*) FROM transaction_types WHERE default_debit_coa = $1 OR default_credit_coa = $1) +
	(SELECT COUNT(*) FROM ledger_entries WHERE debit_coa = $1 OR credit_coa = $1)`, code).Scan(&n)
	return n, err
}

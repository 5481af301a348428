package txtypes

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

const (
	uniqueCodeConstraint = "uq_transaction_types_code"
	debitFKConstraint    = "transaction_types_default_debit_coa_fkey"
	creditFKConstraint   = "transaction_types_default_credit_coa_fkey"
)

// Repository persists transaction types.
type Repository interface {
	List(ctx context.Context, filters ListFilters) ([]TransactionType, error)
	Get(ctx context.Context, code string) (TransactionType, error)
	Create(ctx context.Context, t TransactionType) (TransactionType, error)
	Update(ctx context.Context, t TransactionType) (TransactionType, error)
	Delete(ctx context.Context, code string) error
}

type repository struct {
	db *pgxpool.Pool
}

// NewRepository constructs the Postgres-backed registry.
func NewRepository(db *pgxpool.Pool) Repository {
	return &repository{db: db}
}

const selectColumns = `SELECT id, code, name, description, category, is_debit, is_credit, default_debit_coa, default_credit_coa, is_active, created_at, updated_at FROM transaction_types`

func scanType(row pgx.Row) (TransactionType, error) {
	var t TransactionType
	err := row.Scan(&t.ID, &t.Code, &t.Name, &t.Description, &t.Category, &t.IsDebit, &t.IsCredit,
		&t.DefaultDebitCOA, &t.DefaultCreditCOA, &t.IsActive, &t.CreatedAt, &t.UpdatedAt)
	return t, err
}

func (r *repository) List(ctx context.Context, filters ListFilters) ([]TransactionType, error) {
	query := selectColumns + ` WHERE 1=1`
	args := []any{}
	add := func(clause string, value any) {
		args = append(args, value)
		query += strings.ReplaceAll(clause, "?", "$"+strconv.Itoa(len(args)))
	}
	if filters.Search != "" {
		add(` AND (code ILIKE ? OR name ILIKE ?)`, "%"+filters.Search+"%")
	}
	if filters.Category != "" {
		add(` AND category = ?`, filters.Category)
	}
	if filters.IsActive != nil {
		add(` AND is_active = ?`, *filters.IsActive)
	}
	query += ` ORDER BY code`

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []TransactionType
	for rows.Next() {
		t, err := scanType(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

func (r *repository) Get(ctx context.Context, code string) (TransactionType, error) {
	t, err := scanType(r.db.QueryRow(ctx, selectColumns+` WHERE code = $1`, code))
	if errors.Is(err, pgx.ErrNoRows) {
		return TransactionType{}, shared.NewNotFound("jenis transaksi", code)
	}
	return t, err
}

func (r *repository) Create(ctx context.Context, t TransactionType) (TransactionType, error) {
	err := r.db.QueryRow(ctx, `INSERT INTO transaction_types (code, name, description, category, is_debit, is_credit, default_debit_coa, default_credit_coa, is_active)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9) RETURNING id, created_at, updated_at`,
		t.Code, t.Name, t.Description, t.Category, t.IsDebit, t.IsCredit, t.DefaultDebitCOA, t.DefaultCreditCOA, t.IsActive).
		Scan(&t.ID, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		return TransactionType{}, translate(err)
	}
	return t, nil
}

func (r *repository) Update(ctx context.Context, t TransactionType) (TransactionType, error) {
	err := r.db.QueryRow(ctx, `UPDATE transaction_types SET name = $2, description = $3, category = $4, is_debit = $5, is_credit = $6,
default_debit_coa = $7, default_credit_coa = $8, is_active = $9, updated_at = NOW()
WHERE code = $1 RETURNING id, created_at, updated_at`,
		t.Code, t.Name, t.Description, t.Category, t.IsDebit, t.IsCredit, t.DefaultDebitCOA, t.DefaultCreditCOA, t.IsActive).
		Scan(&t.ID, &t.CreatedAt, &t.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return TransactionType{}, shared.NewNotFound("jenis transaksi", t.Code)
	}
	if err != nil {
		return TransactionType{}, translate(err)
	}
	return t, nil
}

func (r *repository) Delete(ctx context.Context, code string) error {
	cmd, err := r.db.Exec(ctx, `DELETE FROM transaction_types WHERE code = $1`, code)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return shared.NewNotFound("jenis transaksi", code)
	}
	return nil
}

func translate(err error) error {
	switch {
	case db.IsUniqueViolation(err, uniqueCodeConstraint):
		return shared.NewValidationError("code", "has already been taken")
	case db.IsForeignKeyViolation(err, debitFKConstraint):
		return shared.NewValidationError("default_debit_coa", "does not exist")
	case db.IsForeignKeyViolation(err, creditFKConstraint):
		return shared.NewValidationError("default_credit_coa", "does not exist")
	}
	return err
}

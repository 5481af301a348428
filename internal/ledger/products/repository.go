package products

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
	uniqueCodeConstraint = "uq_products_code"
	accountFKConstraint  = "fk_accounts_product"
)

// Repository persists products.
type Repository interface {
	List(ctx context.Context, filters shared.ListFilters) ([]Product, int, error)
	Get(ctx context.Context, id int64) (Product, error)
	GetByCode(ctx context.Context, code string) (Product, error)
	Create(ctx context.Context, product Product) (Product, error)
	Update(ctx context.Context, id int64, product Product) (Product, error)
	Delete(ctx context.Context, id int64) error
	CountAccounts(ctx context.Context, id int64) (int, error)
}

type repository struct {
	db *pgxpool.Pool
}

// NewRepository constructs the Postgres-backed catalog store.
func NewRepository(db *pgxpool.Pool) Repository {
	return &repository{db: db}
}

const selectColumns = `SELECT id, product_code, product_name, product_type, interest_rate, admin_fee, opening_fee, is_active, created_at, updated_at FROM products`

func scanProduct(row pgx.Row) (Product, error) {
	var p Product
	err := row.Scan(&p.ID, &p.Code, &p.Name, &p.Type, &p.InterestRate, &p.AdminFee, &p.OpeningFee, &p.IsActive, &p.CreatedAt, &p.UpdatedAt)
	return p, err
}

func (r *repository) List(ctx context.Context, filters shared.ListFilters) ([]Product, int, error) {
	where := ` WHERE 1=1`
	args := []any{}
	add := func(clause string, value any) {
		args = append(args, value)
		where += strings.ReplaceAll(clause, "?", "$"+strconv.Itoa(len(args)))
	}
	if filters.Search != "" {
		add(` AND (product_name ILIKE ? OR product_code ILIKE ?)`, "%"+filters.Search+"%")
	}
	if filters.IsActive != nil {
		add(` AND is_active = ?`, *filters.IsActive)
	}

	var total int
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM products`+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := selectColumns + where + " ORDER BY " + sortOrder(filters.SortBy, filters.SortDir)
	if filters.Limit > 0 {
		query += ` LIMIT $` + strconv.Itoa(len(args)+1) + ` OFFSET $` + strconv.Itoa(len(args)+2)
		args = append(args, filters.Limit, filters.Offset())
	}

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var products []Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, 0, err
		}
		products = append(products, p)
	}
	return products, total, rows.Err()
}

func (r *repository) Get(ctx context.Context, id int64) (Product, error) {
	p, err := scanProduct(r.db.QueryRow(ctx, selectColumns+` WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return Product{}, shared.NewNotFound("produk", strconv.FormatInt(id, 10))
	}
	return p, err
}

func (r *repository) GetByCode(ctx context.Context, code string) (Product, error) {
	p, err := scanProduct(r.db.QueryRow(ctx, selectColumns+` WHERE product_code = $1`, code))
	if errors.Is(err, pgx.ErrNoRows) {
		return Product{}, shared.NewNotFound("produk", code)
	}
	return p, err
}

func (r *repository) Create(ctx context.Context, product Product) (Product, error) {
	err := r.db.QueryRow(ctx, `INSERT INTO products (product_code, product_name, product_type, interest_rate, admin_fee, opening_fee, is_active)
VALUES ($1, $2, $3, $4, $5, $6, $7) RETURNING id, created_at, updated_at`,
		product.Code, product.Name, product.Type, product.InterestRate, product.AdminFee, product.OpeningFee, product.IsActive).
		Scan(&product.ID, &product.CreatedAt, &product.UpdatedAt)
	if err != nil {
		if db.IsUniqueViolation(err, uniqueCodeConstraint) {
			return Product{}, shared.NewValidationError("product_code", "has already been taken")
		}
		return Product{}, err
	}
	return product, nil
}

func (r *repository) Update(ctx context.Context, id int64, product Product) (Product, error) {
	product.ID = id
	err := r.db.QueryRow(ctx, `UPDATE products SET product_code = $2, product_name = $3, product_type = $4, interest_rate = $5, admin_fee = $6, opening_fee = $7, is_active = $8, updated_at = NOW()
WHERE id = $1 RETURNING created_at, updated_at`,
		id, product.Code, product.Name, product.Type, product.InterestRate, product.AdminFee, product.OpeningFee, product.IsActive).
		Scan(&product.CreatedAt, &product.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Product{}, shared.NewNotFound("produk", strconv.FormatInt(id, 10))
		}
		if db.IsUniqueViolation(err, uniqueCodeConstraint) {
			return Product{}, shared.NewValidationError("product_code", "has already been taken")
		}
		return Product{}, err
	}
	return product, nil
}

func (r *repository) Delete(ctx context.Context, id int64) error {
	cmd, err := r.db.Exec(ctx, `DELETE FROM products WHERE id = $1`, id)
	if err != nil {
		if db.IsForeignKeyViolation(err, accountFKConstraint) {
			return ErrInUse
		}
		return err
	}
	if cmd.RowsAffected() == 0 {
		return shared.NewNotFound("produk", strconv.FormatInt(id, 10))
	}
	return nil
}

func (r *repository) CountAccounts(ctx context.Context, id int64) (int, error) {
	var n int
	err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM accounts WHERE product_id = $1`, id).Scan(&n)
	return n, err
}

func sortOrder(sortBy, sortDir string) string {
	dir := "ASC"
	if sortDir == "desc" {
		dir = "DESC"
	}
	switch sortBy {
	case "code":
		return "product_code " + dir
	case "interest_rate":
		return "interest_rate " + dir
	case "created_at":
		return "created_at " + dir
	default:
		return "product_name " + dir
	}
}

// Package customers reads student identities owned by the surrounding school system.
package customers

import (
	"context"
	"errors"
	"strconv"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/santri-erp/santri-erp/internal/shared"
)

// Customer is the identity an account is opened for.
type Customer struct {
	ID       int64  `json:"id"`
	NIS      string `json:"nis"`
	Name     string `json:"name"`
	IsActive bool   `json:"is_active"`
}

// Directory resolves opaque customer ids. Implementations never mutate the source.
type Directory interface {
	Lookup(ctx context.Context, id int64) (Customer, error)
}

type pgDirectory struct {
	db *pgxpool.Pool
}

// NewPostgresDirectory reads customers from the students table.
func NewPostgresDirectory(db *pgxpool.Pool) Directory {
	return &pgDirectory{db: db}
}

func (d *pgDirectory) Lookup(ctx context.Context, id int64) (Customer, error) {
	var c Customer
	err := d.db.QueryRow(ctx, `SELECT id, nis, name, is_active FROM students WHERE id = $1`, id).
		Scan(&c.ID, &c.NIS, &c.Name, &c.IsActive)
	if errors.Is(err, pgx.ErrNoRows) {
		return Customer{}, shared.NewNotFound("siswa", strconv.FormatInt(id, 10))
	}
	return c, err
}

// Static is an in-memory Directory used by tests and the seed script.
type Static map[int64]Customer

func (s Static) Lookup(_ context.Context, id int64) (Customer, error) {
	c, ok := s[id]
	if !ok {
		return Customer{}, shared.NewNotFound("siswa", strconv.FormatInt(id, 10))
	}
	return c, nil
}

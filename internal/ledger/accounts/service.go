package accounts

import (
	"context"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/santri-erp/santri-erp/internal/customers"
	"github.com/santri-erp/santri-erp/internal/ledger/products"
	"github.com/santri-erp/santri-erp/internal/shared"
)

// ProductCatalog is the slice of the product catalog the lifecycle depends on.
type ProductCatalog interface {
	RequireActive(ctx context.Context, id int64) (products.Product, error)
}

// Service owns the account lifecycle and balance invariants.
type Service struct {
	repo      Repository
	customers customers.Directory
	products  ProductCatalog
	audit     shared.AuditRecorder
	cache     shared.Invalidator
	now       func() time.Time
}

// NewService wires the lifecycle service. audit and cache may be nil.
func NewService(repo Repository, directory customers.Directory, catalog ProductCatalog, audit shared.AuditRecorder, cache shared.Invalidator) *Service {
	return &Service{
		repo:      repo,
		customers: directory,
		products:  catalog,
		audit:     audit,
		cache:     cache,
		now:       time.Now,
	}
}

// List returns accounts matching filters plus the unpaged total.
func (s *Service) List(ctx context.Context, filters ListFilters) ([]Account, int, error) {
	return s.repo.List(ctx, filters)
}

// Get returns an account by number.
func (s *Service) Get(ctx context.Context, number string) (Account, error) {
	return s.repo.Get(ctx, normaliseNumber(number))
}

// Open creates the customer's account with a zero balance in TIDAK AKTIF.
func (s *Service) Open(ctx context.Context, req OpenRequest) (Account, error) {
	if err := shared.ValidateStruct(req); err != nil {
		return Account{}, err
	}
	customer, err := s.customers.Lookup(ctx, req.CustomerID)
	if err != nil {
		return Account{}, err
	}
	exists, err := s.repo.ExistsForCustomer(ctx, customer.ID)
	if err != nil {
		return Account{}, err
	}
	if exists {
		return Account{}, ErrCustomerHasAccount
	}
	number := normaliseNumber(customer.NIS)
	if number == "" {
		return Account{}, shared.NewValidationError("customer_id", "customer has no NIS to derive an account number from")
	}
	if _, err := s.products.RequireActive(ctx, req.ProductID); err != nil {
		return Account{}, err
	}

	now := s.now()
	account := Account{
		Number:     number,
		CustomerID: customer.ID,
		ProductID:  req.ProductID,
		Balance:    decimal.Zero,
		Status:     StatusInactive,
		OpenDate:   time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location()),
	}
	err = s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		created, err := tx.Insert(ctx, account)
		if err != nil {
			return err
		}
		account = created
		return nil
	})
	if err != nil {
		return Account{}, err
	}
	s.record(ctx, "account.open", account.Number, map[string]any{"customer_id": account.CustomerID, "product_id": account.ProductID})
	return account, nil
}

// UpdateStatus moves the account through its lifecycle.
func (s *Service) UpdateStatus(ctx context.Context, number string, raw string) (Account, error) {
	number = normaliseNumber(number)
	status, err := parseStatusField(raw)
	if err != nil {
		return Account{}, err
	}
	var (
		account Account
		changed bool
	)
	err = s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		current, err := tx.GetForUpdate(ctx, number)
		if err != nil {
			return err
		}
		account = current
		changed, err = changeStatus(ctx, tx, &account, status)
		return err
	})
	if err != nil {
		return Account{}, err
	}
	if changed {
		s.record(ctx, "account.status", account.Number, map[string]any{"status": account.Status})
	}
	return account, nil
}

// UpdateProfile changes the product and/or status of an account.
func (s *Service) UpdateProfile(ctx context.Context, number string, req UpdateRequest) (Account, error) {
	number = normaliseNumber(number)
	if err := shared.ValidateStruct(req); err != nil {
		return Account{}, err
	}
	var status *Status
	if req.Status != nil {
		parsed, err := parseStatusField(*req.Status)
		if err != nil {
			return Account{}, err
		}
		status = &parsed
	}
	if req.ProductID != nil {
		if _, err := s.products.RequireActive(ctx, *req.ProductID); err != nil {
			return Account{}, err
		}
	}

	var (
		account Account
		changed bool
	)
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		current, err := tx.GetForUpdate(ctx, number)
		if err != nil {
			return err
		}
		account = current
		if req.ProductID != nil && *req.ProductID != account.ProductID {
			if account.Status == StatusClosed {
				return ErrAlreadyClosed
			}
			if err := tx.UpdateProduct(ctx, account.Number, *req.ProductID); err != nil {
				return err
			}
			account.ProductID = *req.ProductID
			changed = true
		}
		if status != nil {
			statusChanged, err := changeStatus(ctx, tx, &account, *status)
			if err != nil {
				return err
			}
			changed = changed || statusChanged
		}
		return nil
	})
	if err != nil {
		return Account{}, err
	}
	if changed {
		account.UpdatedAt = s.now()
		s.record(ctx, "account.update", account.Number, map[string]any{"product_id": account.ProductID, "status": account.Status})
	}
	return account, nil
}

// Delete hard-deletes an account whose balance is zero.
func (s *Service) Delete(ctx context.Context, number string) error {
	number = normaliseNumber(number)
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		account, err := tx.GetForUpdate(ctx, number)
		if err != nil {
			return err
		}
		if account.Balance.IsPositive() {
			return ErrDeleteWithBalance
		}
		return tx.Delete(ctx, account.Number)
	})
	if err != nil {
		return err
	}
	s.record(ctx, "account.delete", number, nil)
	return nil
}

// ApplyBalanceDelta adds a signed amount to the balance under a row lock.
func (s *Service) ApplyBalanceDelta(ctx context.Context, number string, delta decimal.Decimal) (Account, error) {
	number = normaliseNumber(number)
	var account Account
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		current, err := tx.GetForUpdate(ctx, number)
		if err != nil {
			return err
		}
		next, err := ApplyDelta(current, delta)
		if err != nil {
			return err
		}
		if err := tx.UpdateBalance(ctx, current.Number, next); err != nil {
			return err
		}
		current.Balance = next
		account = current
		return nil
	})
	if err != nil {
		return Account{}, err
	}
	s.record(ctx, "account.balance", account.Number, map[string]any{"delta": delta.String(), "balance": account.Balance.String()})
	return account, nil
}

// normaliseNumber strips the whitespace that path segments and form input carry.
func normaliseNumber(number string) string {
	return strings.TrimSpace(number)
}

func changeStatus(ctx context.Context, tx TxRepository, account *Account, to Status) (bool, error) {
	if err := account.TransitionTo(to); err != nil {
		return false, err
	}
	if account.Status == to {
		return false, nil
	}
	if err := tx.UpdateStatus(ctx, account.Number, to); err != nil {
		return false, err
	}
	account.Status = to
	return true, nil
}

func (s *Service) record(ctx context.Context, action, number string, meta map[string]any) {
	if s.audit != nil {
		_ = s.audit.Record(ctx, shared.AuditLog{
			Action:   action,
			Entity:   "account",
			EntityID: number,
			Meta:     meta,
			At:       s.now(),
		})
	}
	if s.cache != nil {
		_ = s.cache.Bump(ctx)
	}
}

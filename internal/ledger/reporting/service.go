package reporting

import (
	"context"
	"strconv"
	"strings"

	"github.com/santri-erp/santri-erp/internal/ledger/accounts"
	"github.com/santri-erp/santri-erp/internal/platform/cache"
	"github.com/santri-erp/santri-erp/internal/shared"
)

// Service reads projections through the versioned cache.
type Service struct {
	repo  Repository
	cache *cache.Versioned
}

// NewService wires a Repository with the cache. A nil cache reads through.
func NewService(repo Repository, c *cache.Versioned) *Service {
	return &Service{repo: repo, cache: c}
}

// Accounts returns the account projection.
func (s *Service) Accounts(ctx context.Context, filter AccountFilter) ([]AccountRow, error) {
	if filter.Status != "" {
		status, ok := accounts.ParseStatus(filter.Status)
		if !ok {
			return nil, shared.NewValidationError("status", "must be one of: TIDAK AKTIF, AKTIF, TUTUP")
		}
		filter.Status = string(status)
	}
	product := "-"
	if filter.ProductID != nil {
		product = strconv.FormatInt(*filter.ProductID, 10)
	}
	var rows []AccountRow
	err := s.fetch(ctx, &rows, func(ctx context.Context) (any, error) {
		return s.repo.Accounts(ctx, filter)
	}, "accounts", statusToken(filter.Status), product)
	return rows, err
}

// Products returns the product projection with account totals.
func (s *Service) Products(ctx context.Context) ([]ProductRow, error) {
	var rows []ProductRow
	err := s.fetch(ctx, &rows, func(ctx context.Context) (any, error) {
		return s.repo.Products(ctx)
	}, "products")
	return rows, err
}

// ChartOfAccounts returns the chart of accounts projection.
func (s *Service) ChartOfAccounts(ctx context.Context) ([]COARow, error) {
	var rows []COARow
	err := s.fetch(ctx, &rows, func(ctx context.Context) (any, error) {
		return s.repo.ChartOfAccounts(ctx)
	}, "coa")
	return rows, err
}

// TransactionTypes returns the transaction type projection.
func (s *Service) TransactionTypes(ctx context.Context) ([]TransactionTypeRow, error) {
	var rows []TransactionTypeRow
	err := s.fetch(ctx, &rows, func(ctx context.Context) (any, error) {
		return s.repo.TransactionTypes(ctx)
	}, "txtypes")
	return rows, err
}

// Warm fills the unfiltered projections for the current cache version.
func (s *Service) Warm(ctx context.Context) error {
	if _, err := s.ChartOfAccounts(ctx); err != nil {
		return err
	}
	if _, err := s.TransactionTypes(ctx); err != nil {
		return err
	}
	if _, err := s.Products(ctx); err != nil {
		return err
	}
	_, err := s.Accounts(ctx, AccountFilter{})
	return err
}

func (s *Service) fetch(ctx context.Context, dest any, loader func(context.Context) (any, error), parts ...string) error {
	key, err := s.cache.BuildKey(ctx, append([]string{"reports"}, parts...)...)
	if err != nil {
		return err
	}
	return s.cache.FetchJSON(ctx, key, dest, loader)
}

func statusToken(status string) string {
	if status == "" {
		return "-"
	}
	return strings.ReplaceAll(status, " ", "_")
}

package products

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/santri-erp/santri-erp/internal/shared"
)

type Service struct {
	repo  Repository
	audit shared.AuditRecorder
	cache shared.Invalidator
	now   func() time.Time
}

func NewService(repo Repository, audit shared.AuditRecorder, cache shared.Invalidator) *Service {
	return &Service{repo: repo, audit: audit, cache: cache, now: time.Now}
}

func (s *Service) List(ctx context.Context, filters shared.ListFilters) ([]Product, int, error) {
	return s.repo.List(ctx, filters)
}

func (s *Service) Get(ctx context.Context, id int64) (Product, error) {
	if id <= 0 {
		return Product{}, shared.NewValidationError("id", "must be greater than 0")
	}
	return s.repo.Get(ctx, id)
}

// RequireActive returns the product when accounts may be opened against it.
func (s *Service) RequireActive(ctx context.Context, id int64) (Product, error) {
	p, err := s.Get(ctx, id)
	if err != nil {
		return Product{}, err
	}
	if !p.IsActive {
		return p, shared.NewValidationError("product_id", "product is not active")
	}
	return p, nil
}

func (s *Service) Create(ctx context.Context, form ProductForm) (Product, error) {
	form.Code = strings.TrimSpace(form.Code)
	form.Name = strings.TrimSpace(form.Name)
	if err := s.validate(form); err != nil {
		return Product{}, err
	}
	if err := s.ensureCodeFree(ctx, form.Code, 0); err != nil {
		return Product{}, err
	}
	created, err := s.repo.Create(ctx, form.product())
	if err != nil {
		return Product{}, err
	}
	s.record(ctx, "product.create", created.ID)
	return created, nil
}

func (s *Service) Update(ctx context.Context, id int64, form ProductForm) (Product, error) {
	current, err := s.Get(ctx, id)
	if err != nil {
		return Product{}, err
	}
	form.Code = strings.TrimSpace(form.Code)
	form.Name = strings.TrimSpace(form.Name)
	if err := s.validate(form); err != nil {
		return Product{}, err
	}
	if err := s.ensureCodeFree(ctx, form.Code, current.ID); err != nil {
		return Product{}, err
	}
	updated, err := s.repo.Update(ctx, current.ID, form.product())
	if err != nil {
		return Product{}, err
	}
	s.record(ctx, "product.update", updated.ID)
	return updated, nil
}

func (s *Service) Delete(ctx context.Context, id int64) error {
	if _, err := s.Get(ctx, id); err != nil {
		return err
	}
	n, err := s.repo.CountAccounts(ctx, id)
	if err != nil {
		return err
	}
	if n > 0 {
		return ErrInUse
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.record(ctx, "product.delete", id)
	return nil
}

func (s *Service) ensureCodeFree(ctx context.Context, code string, self int64) error {
	existing, err := s.repo.GetByCode(ctx, code)
	switch {
	case errors.Is(err, shared.ErrNotFound):
		return nil
	case err != nil:
		return err
	case existing.ID != self:
		return shared.NewValidationError("product_code", "has already been taken")
	}
	return nil
}

func (s *Service) record(ctx context.Context, action string, id int64) {
	if s.audit != nil {
		_ = s.audit.Record(ctx, shared.AuditLog{
			Action:   action,
			Entity:   "product",
			EntityID: strconv.FormatInt(id, 10),
			At:       s.now(),
		})
	}
	if s.cache != nil {
		_ = s.cache.Bump(ctx)
	}
}

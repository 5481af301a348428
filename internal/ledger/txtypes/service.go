package txtypes

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/santri-erp/santri-erp/internal/ledger/coa"
	"github.com/santri-erp/santri-erp/internal/shared"
)

// COARegistry checks default COA references.
type COARegistry interface {
	RequirePostable(ctx context.Context, code string) (coa.ChartOfAccount, error)
}

// Options tunes registry validation.
type Options struct {
	// StrictCOA rejects defaults that are not postable detail accounts.
	// When false such defaults are only logged.
	StrictCOA bool
}

// Service manages transaction types.
type Service struct {
	repo   Repository
	coa    COARegistry
	opts   Options
	logger *slog.Logger
	audit  shared.AuditRecorder
	cache  shared.Invalidator
	now    func() time.Time
}

// NewService constructs the registry service.
func NewService(repo Repository, registry COARegistry, opts Options, logger *slog.Logger, audit shared.AuditRecorder, cache shared.Invalidator) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{repo: repo, coa: registry, opts: opts, logger: logger, audit: audit, cache: cache, now: time.Now}
}

func (s *Service) List(ctx context.Context, filters ListFilters) ([]TransactionType, error) {
	return s.repo.List(ctx, filters)
}

func (s *Service) Get(ctx context.Context, code string) (TransactionType, error) {
	return s.repo.Get(ctx, strings.TrimSpace(code))
}

func (s *Service) Create(ctx context.Context, req CreateRequest) (TransactionType, error) {
	if err := shared.ValidateStruct(req); err != nil {
		return TransactionType{}, err
	}
	t := TransactionType{Code: strings.TrimSpace(req.Code), IsActive: true}
	req.UpdateRequest.apply(&t)
	if _, err := s.repo.Get(ctx, t.Code); err == nil {
		return TransactionType{}, shared.NewValidationError("code", "has already been taken")
	} else if !errors.Is(err, shared.ErrNotFound) {
		return TransactionType{}, err
	}
	if err := s.checkDefaults(ctx, t); err != nil {
		return TransactionType{}, err
	}
	created, err := s.repo.Create(ctx, t)
	if err != nil {
		return TransactionType{}, err
	}
	s.record(ctx, "txtype.create", created.Code)
	return created, nil
}

func (s *Service) Update(ctx context.Context, code string, req UpdateRequest) (TransactionType, error) {
	if err := shared.ValidateStruct(req); err != nil {
		return TransactionType{}, err
	}
	t, err := s.Get(ctx, code)
	if err != nil {
		return TransactionType{}, err
	}
	req.apply(&t)
	if err := s.checkDefaults(ctx, t); err != nil {
		return TransactionType{}, err
	}
	updated, err := s.repo.Update(ctx, t)
	if err != nil {
		return TransactionType{}, err
	}
	s.record(ctx, "txtype.update", updated.Code)
	return updated, nil
}

// Delete removes a type. Ledger entries keep the code they were posted with.
func (s *Service) Delete(ctx context.Context, code string) error {
	code = strings.TrimSpace(code)
	if err := s.repo.Delete(ctx, code); err != nil {
		return err
	}
	s.record(ctx, "txtype.delete", code)
	return nil
}

// ResolvePosting returns the default COA pair and direction flags for code.
func (s *Service) ResolvePosting(ctx context.Context, code string) (Posting, error) {
	t, err := s.Get(ctx, code)
	if err != nil {
		return Posting{}, err
	}
	return t.Posting(), nil
}

func (s *Service) checkDefaults(ctx context.Context, t TransactionType) error {
	out := &shared.ValidationError{}
	for _, ref := range []struct {
		field string
		code  *string
	}{
		{"default_debit_coa", t.DefaultDebitCOA},
		{"default_credit_coa", t.DefaultCreditCOA},
	} {
		if ref.code == nil || s.coa == nil {
			continue
		}
		_, err := s.coa.RequirePostable(ctx, *ref.code)
		switch {
		case err == nil:
		case errors.Is(err, shared.ErrNotFound):
			out.Add(ref.field, "does not exist")
		case errors.Is(err, coa.ErrNotPostable):
			if s.opts.StrictCOA {
				out.Add(ref.field, "must reference an active postable detail account")
				continue
			}
			s.logger.Warn("transaction type default COA is not postable",
				slog.String("code", t.Code),
				slog.String(ref.field, *ref.code))
		default:
			return err
		}
	}
	return out.OrNil()
}

func (s *Service) record(ctx context.Context, action, code string) {
	if s.audit != nil {
		_ = s.audit.Record(ctx, shared.AuditLog{
			Action:   action,
			Entity:   "transaction_type",
			EntityID: code,
			At:       s.now(),
		})
	}
	if s.cache != nil {
		_ = s.cache.Bump(ctx)
	}
}

package postings

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/santri-erp/santri-erp/internal/ledger/accounts"
	"github.com/santri-erp/santri-erp/internal/ledger/coa"
	"github.com/santri-erp/santri-erp/internal/ledger/txtypes"
	"github.com/santri-erp/santri-erp/internal/platform/ids"
	"github.com/santri-erp/santri-erp/internal/shared"
)

// TypeResolver looks up the posting rule of a transaction type.
type TypeResolver interface {
	ResolvePosting(ctx context.Context, code string) (txtypes.Posting, error)
}

// COARegistry confirms a chart of account code may receive postings.
type COARegistry interface {
	RequirePostable(ctx context.Context, code string) (coa.ChartOfAccount, error)
}

// Recorder receives posting outcomes for instrumentation.
type Recorder interface {
	ObservePosting(typeCode, direction string, amount float64)
	ObserveRejection(reason string)
}

// Service applies transaction postings to account balances.
type Service struct {
	repo     Repository
	types    TypeResolver
	coas     COARegistry
	recorder Recorder
	audit    shared.AuditRecorder
	cache    shared.Invalidator
	now      func() time.Time
	newID    func(time.Time) string
}

// NewService constructs the posting engine. recorder, audit and cache may be nil.
func NewService(repo Repository, types TypeResolver, coas COARegistry, recorder Recorder, audit shared.AuditRecorder, cache shared.Invalidator) *Service {
	return &Service{
		repo:     repo,
		types:    types,
		coas:     coas,
		recorder: recorder,
		audit:    audit,
		cache:    cache,
		now:      time.Now,
		newID:    ids.NewAt,
	}
}

// Post moves amount into or out of the account and records the entry.
// Balance change and entry commit together or not at all.
func (s *Service) Post(ctx context.Context, accountNumber string, req PostRequest) (Entry, error) {
	entry, err := s.post(ctx, strings.TrimSpace(accountNumber), req)
	if err != nil {
		s.reject(err)
		return Entry{}, err
	}
	if s.recorder != nil {
		s.recorder.ObservePosting(entry.TypeCode, string(entry.Direction), entry.Amount.InexactFloat64())
	}
	if s.audit != nil {
		_ = s.audit.Record(ctx, shared.AuditLog{
			Action:   "ledger.post",
			Entity:   "account",
			EntityID: entry.AccountNumber,
			Meta: map[string]any{
				"entry_id":  entry.ID,
				"type":      entry.TypeCode,
				"direction": entry.Direction,
				"amount":    entry.Amount.String(),
			},
			At: entry.PostedAt,
		})
	}
	if s.cache != nil {
		_ = s.cache.Bump(ctx)
	}
	return entry, nil
}

func (s *Service) post(ctx context.Context, accountNumber string, req PostRequest) (Entry, error) {
	if err := s.validate(req); err != nil {
		return Entry{}, err
	}
	rule, err := s.types.ResolvePosting(ctx, strings.TrimSpace(req.TypeCode))
	if err != nil {
		return Entry{}, err
	}
	if !rule.IsActive {
		return Entry{}, ErrTypeInactive
	}
	direction, err := resolveDirection(rule, req.Direction)
	if err != nil {
		return Entry{}, err
	}
	if err := s.requirePostable(ctx, rule.DebitCOA, rule.CreditCOA); err != nil {
		return Entry{}, err
	}

	postedAt := s.now()
	entry := Entry{
		ID:            s.newID(postedAt),
		AccountNumber: accountNumber,
		TypeCode:      rule.TypeCode,
		Direction:     direction,
		Amount:        req.Amount,
		DebitCOA:      rule.DebitCOA,
		CreditCOA:     rule.CreditCOA,
		Memo:          strings.TrimSpace(req.Memo),
		PostedBy:      shared.ActorFromContext(ctx),
		PostedAt:      postedAt,
	}
	if ref := strings.TrimSpace(req.Reference); ref != "" {
		entry.Reference = &ref
	}

	err = s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		account, err := tx.LockAccount(ctx, accountNumber)
		if err != nil {
			return err
		}
		next, err := accounts.ApplyDelta(account, direction.delta(req.Amount))
		if err != nil {
			return err
		}
		if err := tx.StoreBalance(ctx, account.Number, next); err != nil {
			return err
		}
		entry.BalanceBefore = account.Balance
		entry.BalanceAfter = next
		inserted, err := tx.InsertEntry(ctx, entry)
		if err != nil {
			return err
		}
		entry = inserted
		return nil
	})
	if err != nil {
		return Entry{}, err
	}
	return entry, nil
}

// ListEntries pages through an account's entries, newest first.
func (s *Service) ListEntries(ctx context.Context, accountNumber string, filters shared.ListFilters) ([]Entry, int, error) {
	return s.repo.ListEntries(ctx, strings.TrimSpace(accountNumber), filters)
}

// CheckIntegrity lists accounts whose balance differs from the signed sum of their entries.
func (s *Service) CheckIntegrity(ctx context.Context) ([]Drift, error) {
	return s.repo.FindDrift(ctx)
}

// requirePostable rejects default COA codes that no longer accept postings.
func (s *Service) requirePostable(ctx context.Context, codes ...*string) error {
	if s.coas == nil {
		return errors.New("postings: chart of account registry not configured")
	}
	for _, code := range codes {
		if code == nil {
			continue
		}
		if _, err := s.coas.RequirePostable(ctx, *code); err != nil {
			return err
		}
	}
	return nil
}

func (s *Service) validate(req PostRequest) error {
	if err := shared.ValidateStruct(req); err != nil {
		return err
	}
	if !req.Amount.IsPositive() {
		return shared.NewValidationError("amount", "must be greater than 0")
	}
	if !req.Amount.Equal(req.Amount.Round(2)) {
		return shared.NewValidationError("amount", "must have at most 2 decimal places")
	}
	return nil
}

func (s *Service) reject(err error) {
	if s.recorder == nil {
		return
	}
	s.recorder.ObserveRejection(rejectionReason(err))
}

func rejectionReason(err error) string {
	switch {
	case errors.Is(err, accounts.ErrInsufficientBalance):
		return "insufficient_balance"
	case errors.Is(err, accounts.ErrNotActive):
		return "account_not_active"
	case errors.Is(err, ErrDuplicateReference):
		return "duplicate_reference"
	case errors.Is(err, ErrTypeInactive):
		return "type_inactive"
	case errors.Is(err, coa.ErrNotPostable):
		return "coa_not_postable"
	case errors.Is(err, shared.ErrValidation):
		return "validation"
	case errors.Is(err, shared.ErrNotFound):
		return "not_found"
	}
	return "error"
}

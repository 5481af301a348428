package coa

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/santri-erp/santri-erp/internal/shared"
)

// maxDepth bounds the ancestor walk used for cycle detection.
const maxDepth = 32

// Service guards the chart of accounts tree invariants.
type Service struct {
	repo  Repository
	audit shared.AuditRecorder
	cache shared.Invalidator
	now   func() time.Time
}

// NewService constructs the registry service. audit and cache may be nil.
func NewService(repo Repository, audit shared.AuditRecorder, cache shared.Invalidator) *Service {
	return &Service{repo: repo, audit: audit, cache: cache, now: time.Now}
}

// List returns nodes ordered by code.
func (s *Service) List(ctx context.Context, filters ListFilters) ([]ChartOfAccount, error) {
	return s.repo.List(ctx, filters)
}

// Get returns a node by code.
func (s *Service) Get(ctx context.Context, code string) (ChartOfAccount, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return ChartOfAccount{}, shared.NewValidationError("coa_code", "is required")
	}
	return s.repo.Get(ctx, code)
}

// Create registers a new node.
func (s *Service) Create(ctx context.Context, req CreateRequest) (ChartOfAccount, error) {
	if err := shared.ValidateStruct(req); err != nil {
		return ChartOfAccount{}, err
	}
	node := ChartOfAccount{
		Code:       strings.TrimSpace(req.Code),
		Name:       strings.TrimSpace(req.Name),
		Type:       req.Type,
		Level:      req.Level,
		ParentCode: normaliseParent(req.ParentCode),
		IsPostable: req.IsPostable,
		IsActive:   req.IsActive == nil || *req.IsActive,
	}
	if _, err := s.repo.Get(ctx, node.Code); err == nil {
		return ChartOfAccount{}, shared.NewValidationError("coa_code", "has already been taken")
	} else if !errors.Is(err, shared.ErrNotFound) {
		return ChartOfAccount{}, err
	}
	if err := s.validate(ctx, node); err != nil {
		return ChartOfAccount{}, err
	}
	created, err := s.repo.Create(ctx, node)
	if err != nil {
		return ChartOfAccount{}, err
	}
	s.record(ctx, "coa.create", created.Code, map[string]any{"level": created.Level, "parent": created.ParentCode})
	return created, nil
}

// Update replaces the mutable attributes of a node.
func (s *Service) Update(ctx context.Context, code string, req UpdateRequest) (ChartOfAccount, error) {
	if err := shared.ValidateStruct(req); err != nil {
		return ChartOfAccount{}, err
	}
	current, err := s.Get(ctx, code)
	if err != nil {
		return ChartOfAccount{}, err
	}
	node := current
	node.Name = strings.TrimSpace(req.Name)
	node.Type = req.Type
	node.Level = req.Level
	node.ParentCode = normaliseParent(req.ParentCode)
	node.IsPostable = req.IsPostable
	if req.IsActive != nil {
		node.IsActive = *req.IsActive
	}
	if err := s.validate(ctx, node); err != nil {
		return ChartOfAccount{}, err
	}
	if current.AcceptsPostings() && !node.AcceptsPostings() {
		refs, err := s.repo.CountReferences(ctx, node.Code)
		if err != nil {
			return ChartOfAccount{}, err
		}
		if refs > 0 {
			return ChartOfAccount{}, ErrReferencedMustStayPostable
		}
	}
	updated, err := s.repo.Update(ctx, node)
	if err != nil {
		return ChartOfAccount{}, err
	}
	s.record(ctx, "coa.update", updated.Code, nil)
	return updated, nil
}

// Delete removes a leaf node that nothing references.
func (s *Service) Delete(ctx context.Context, code string) error {
	node, err := s.Get(ctx, code)
	if err != nil {
		return err
	}
	children, err := s.repo.CountChildren(ctx, node.Code)
	if err != nil {
		return err
	}
	if children > 0 {
		return ErrHasChildren
	}
	refs, err := s.repo.CountReferences(ctx, node.Code)
	if err != nil {
		return err
	}
	if refs > 0 {
		return ErrInUse
	}
	if err := s.repo.Delete(ctx, node.Code); err != nil {
		return err
	}
	s.record(ctx, "coa.delete", node.Code, nil)
	return nil
}

// RequirePostable returns the node when it may receive postings.
func (s *Service) RequirePostable(ctx context.Context, code string) (ChartOfAccount, error) {
	node, err := s.Get(ctx, code)
	if err != nil {
		return ChartOfAccount{}, err
	}
	if !node.AcceptsPostings() {
		return node, ErrNotPostable
	}
	return node, nil
}

func (s *Service) record(ctx context.Context, action, code string, meta map[string]any) {
	if s.audit != nil {
		_ = s.audit.Record(ctx, shared.AuditLog{
			Action:   action,
			Entity:   "chart_of_account",
			EntityID: code,
			Meta:     meta,
			At:       s.now(),
		})
	}
	if s.cache != nil {
		_ = s.cache.Bump(ctx)
	}
}

func normaliseParent(code *string) *string {
	if code == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*code)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}

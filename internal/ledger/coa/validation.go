package coa

import (
	"context"
	"errors"

	"github.com/santri-erp/santri-erp/internal/shared"
)

func (s *Service) validate(ctx context.Context, node ChartOfAccount) error {
	out := &shared.ValidationError{}
	if node.Level == LevelHeader && node.IsPostable {
		out.Add("is_postable", "header accounts cannot receive postings")
	}
	if node.ParentCode != nil {
		if err := s.validateParent(ctx, node); err != nil {
			var ve *shared.ValidationError
			if !errors.As(err, &ve) {
				return err
			}
			out.Fields = append(out.Fields, ve.Fields...)
		}
	}
	return out.OrNil()
}

func (s *Service) validateParent(ctx context.Context, node ChartOfAccount) error {
	parentCode := *node.ParentCode
	if parentCode == node.Code {
		return shared.NewValidationError("parent_coa_code", "cannot reference itself")
	}
	parent, err := s.repo.Get(ctx, parentCode)
	if errors.Is(err, shared.ErrNotFound) {
		return shared.NewValidationError("parent_coa_code", "does not exist")
	}
	if err != nil {
		return err
	}
	// walk up from the parent; meeting node.Code means the update would close a cycle
	cursor := parent
	for depth := 0; cursor.ParentCode != nil; depth++ {
		if depth >= maxDepth {
			return shared.NewValidationError("parent_coa_code", "hierarchy is too deep")
		}
		if *cursor.ParentCode == node.Code {
			return shared.NewValidationError("parent_coa_code", "would create a cycle")
		}
		cursor, err = s.repo.Get(ctx, *cursor.ParentCode)
		if err != nil {
			return err
		}
	}
	return nil
}

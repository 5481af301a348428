package products

import (
	"github.com/santri-erp/santri-erp/internal/shared"
)

func (s *Service) validate(form ProductForm) error {
	if err := shared.ValidateStruct(form); err != nil {
		return err
	}
	out := &shared.ValidationError{}
	shared.NonNegative(out, "interest_rate", form.InterestRate)
	shared.NonNegative(out, "admin_fee", form.AdminFee)
	shared.NonNegative(out, "opening_fee", form.OpeningFee)
	return out.OrNil()
}

package postings

import (
	"strings"

	"github.com/santri-erp/santri-erp/internal/ledger/txtypes"
	"github.com/santri-erp/santri-erp/internal/shared"
)

// resolveDirection picks the posting side from the type flags. A type with
// both flags set needs the caller to choose; a requested side must be one the
// type allows.
func resolveDirection(p txtypes.Posting, requested string) (Direction, error) {
	requested = strings.ToUpper(strings.TrimSpace(requested))
	if requested != "" && requested != string(Debit) && requested != string(Credit) {
		return "", shared.NewValidationError("direction", "must be one of DEBIT CREDIT")
	}
	switch {
	case !p.IsDebit && !p.IsCredit:
		return "", shared.NewValidationError("type_code", "transaction type allows neither debit nor credit")
	case requested == "" && p.IsDebit && p.IsCredit:
		return "", shared.NewValidationError("direction", "is required for a transaction type that allows both debit and credit")
	case requested == "" && p.IsDebit:
		return Debit, nil
	case requested == "":
		return Credit, nil
	case requested == string(Debit) && p.IsDebit:
		return Debit, nil
	case requested == string(Credit) && p.IsCredit:
		return Credit, nil
	}
	return "", shared.NewValidationError("direction", "is not allowed by transaction type "+p.TypeCode)
}

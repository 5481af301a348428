package accounts

import "github.com/shopspring/decimal"

// TransitionTo checks whether the account may move to status. Moving to the
// current status is always allowed and changes nothing.
func (a Account) TransitionTo(to Status) error {
	switch {
	case a.Status == to:
		return nil
	case a.Status == StatusClosed:
		return ErrAlreadyClosed
	case to == StatusClosed && !a.Balance.IsZero():
		return ErrCloseWithBalance
	}
	return nil
}

// ApplyDelta returns the balance after adding delta. Only active accounts move
// money and the result may never drop below zero.
func ApplyDelta(a Account, delta decimal.Decimal) (decimal.Decimal, error) {
	if a.Status != StatusActive {
		return a.Balance, ErrNotActive
	}
	next := a.Balance.Add(delta)
	if next.IsNegative() {
		return a.Balance, ErrInsufficientBalance
	}
	return next, nil
}

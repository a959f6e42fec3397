// Copyright (C) 2024 Creditor Corp. Group.
// See LICENSE for copying information.

package txbuilder

import (
	"fmt"
	"math/big"
)

// InsufficientFundsError describes the wallet's inability to cover an
// output plus its fee from the available UTXO set.
type InsufficientFundsError struct {
	Need *big.Int
	Have *big.Int
}

// NewInsufficientFundsError is a constructor for InsufficientFundsError.
func NewInsufficientFundsError(need, have *big.Int) *InsufficientFundsError {
	return &InsufficientFundsError{Need: need, Have: have}
}

// Error returns the error description.
func (e *InsufficientFundsError) Error() string {
	return fmt.Sprintf("insufficient funds: need %s, have %s", e.Need, e.Have)
}

// Is implements the comparator method for the errors package.
func (e *InsufficientFundsError) Is(target error) bool {
	other, ok := target.(*InsufficientFundsError)

	return ok && e.Error() == other.Error()
}

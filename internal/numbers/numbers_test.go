// Copyright (C) 2022 Creditor Corp. Group.
// See LICENSE for copying information.

package numbers_test

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/H3imdall-dev/Dogecoin-Tools/internal/numbers"
)

func TestNumbers(t *testing.T) {
	negative := big.NewInt(-100)
	positive := big.NewInt(100)

	t.Run("IsLess", func(t *testing.T) {
		require.False(t, numbers.IsLess(positive, negative))
		require.True(t, numbers.IsLess(negative, positive))
		require.False(t, numbers.IsLess(positive, positive))
	})
}

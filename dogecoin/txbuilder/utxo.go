// Copyright (C) 2024 Creditor Corp. Group.
// See LICENSE for copying information.

package txbuilder

import (
	"math/big"
	"sort"

	"github.com/H3imdall-dev/Dogecoin-Tools/dogecoin/wallet"
	"github.com/H3imdall-dev/Dogecoin-Tools/internal/numbers"
)

var (
	// headerSizeVBytes is the rough transaction header size in vBytes.
	headerSizeVBytes = big.NewInt(11)
	// inputSizeVBytes is the rough size of one legacy P2SH input in
	// vBytes (larger than a segwit/taproot input, since the unlock
	// script carries the redeem script and envelope data in the clear).
	inputSizeVBytes = big.NewInt(180)
	// outputSizeVBytes is the rough size of one legacy output in vBytes.
	outputSizeVBytes = big.NewInt(34)
)

// RoughTxSizeEstimate returns a rough serialized transaction size in
// vBytes for a transaction with the given number of inputs and outputs.
func RoughTxSizeEstimate(inputs, outputs int) *big.Int {
	size := new(big.Int).Set(headerSizeVBytes)
	size.Add(size, new(big.Int).Mul(inputSizeVBytes, big.NewInt(int64(inputs))))
	size.Add(size, new(big.Int).Mul(outputSizeVBytes, big.NewInt(int64(outputs))))

	return size
}

// SelectUTXOs greedily selects from utxos, largest first, until their
// total covers minAmount. Returns the selected UTXOs and their total
// value, or InsufficientFundsError if the whole set falls short.
func SelectUTXOs(utxos []wallet.UTXO, minAmount *big.Int) ([]wallet.UTXO, *big.Int, error) {
	if len(utxos) == 0 {
		return nil, nil, ErrNoUTXOs
	}

	sorted := make([]wallet.UTXO, len(utxos))
	copy(sorted, utxos)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].Satoshis.Cmp(sorted[j].Satoshis) > 0
	})

	var selected []wallet.UTXO
	total := big.NewInt(0)
	for _, u := range sorted {
		selected = append(selected, u)
		total.Add(total, u.Satoshis)

		if !numbers.IsLess(total, minAmount) {
			return selected, total, nil
		}
	}

	return nil, nil, NewInsufficientFundsError(minAmount, total)
}

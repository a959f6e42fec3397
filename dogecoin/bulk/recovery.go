// Copyright (C) 2024 Creditor Corp. Group.
// See LICENSE for copying information.

package bulk

import (
	"errors"

	"github.com/H3imdall-dev/Dogecoin-Tools/dogecoin/rpc"
)

// ErrGenesisAncestorNotFound is returned when walking input history from
// a known-good transaction reaches a coinbase or otherwise dead end
// before finding a genesis-looking ancestor.
var ErrGenesisAncestorNotFound = errors.New("bulk: no genesis-looking ancestor found")

// ErrRevealNotFound is returned when no recent wallet transaction
// references the resolved genesis ancestor.
var ErrRevealNotFound = errors.New("bulk: no recent transaction references the genesis ancestor")

// isGenesisLooking reports whether tx has the shape of an inscription's
// commit transaction (the builder's very first transaction in a chain):
// exactly one input, exactly two outputs, and not a coinbase.
func isGenesisLooking(tx *rpc.RawTransaction) bool {
	return len(tx.Vin) == 1 && len(tx.Vout) == 2 && tx.Vin[0].Coinbase == "" && tx.Vin[0].TxID != ""
}

// findGenesisAncestor walks tx.Vin[0].TxID backwards from startTxID
// until it reaches a genesis-looking transaction.
func findGenesisAncestor(c client, startTxID string) (string, error) {
	current := startTxID
	for {
		tx, err := c.GetRawTransaction(current)
		if err != nil {
			return "", err
		}

		if isGenesisLooking(tx) {
			return current, nil
		}

		if len(tx.Vin) == 0 || tx.Vin[0].Coinbase != "" || tx.Vin[0].TxID == "" {
			return "", ErrGenesisAncestorNotFound
		}

		current = tx.Vin[0].TxID
	}
}

// RecoverRevealTxID resolves the reveal transaction's id after a
// chain-limit interruption: it walks input history backwards from
// knownGoodTxID to find the genesis-looking ancestor, then scans
// recentTxIDs, in the order given, for the first one with an input that
// spends that ancestor — that transaction is the reveal.
func RecoverRevealTxID(c client, knownGoodTxID string, recentTxIDs []string) (string, error) {
	ancestor, err := findGenesisAncestor(c, knownGoodTxID)
	if err != nil {
		return "", err
	}

	for _, candidate := range recentTxIDs {
		tx, err := c.GetRawTransaction(candidate)
		if err != nil {
			continue
		}

		for _, vin := range tx.Vin {
			if vin.TxID == ancestor {
				return candidate, nil
			}
		}
	}

	return "", ErrRevealNotFound
}

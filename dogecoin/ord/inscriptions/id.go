// Copyright (C) 2024 Creditor Corp. Group.
// See LICENSE for copying information.

// Package inscriptions implements the doginals envelope protocol: parsing
// the scripting envelope out of scriptSig assembly, sniffing media types,
// and identifying inscriptions by their reveal transaction id.
package inscriptions

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/btcsuite/btcd/chaincfg/chainhash"
)

// idSeparator defines the separator between TxID and Index in an inscription ID.
const idSeparator string = "i"

// ID describes an inscription identifier.
type ID struct {
	TxID  *chainhash.Hash // Reveal transaction ID.
	Index uint32          // Index of the inscription within the reveal transaction's outputs.
}

// NewID returns an ID for index 0 of txID.
func NewID(txID *chainhash.Hash) *ID {
	return &ID{TxID: txID, Index: 0}
}

// NewIDFromString parses an inscription ID from string. A bare txid (no
// "i<N>" suffix) is accepted and implies index 0.
func NewIDFromString(idStr string) (*ID, error) {
	parts := strings.SplitN(idStr, idSeparator, 2)

	txIDStr := parts[0]
	if len(txIDStr) != chainhash.MaxHashStringSize {
		return nil, fmt.Errorf("invalid txid format: %s", idStr)
	}

	txID, err := chainhash.NewHashFromStr(txIDStr)
	if err != nil {
		return nil, err
	}

	if len(parts) == 1 {
		return &ID{TxID: txID, Index: 0}, nil
	}

	index, err := strconv.ParseUint(parts[1], 10, 32)
	if err != nil {
		return nil, fmt.Errorf("invalid index format: %s", idStr)
	}

	return &ID{TxID: txID, Index: uint32(index)}, nil
}

// String returns the inscription ID as "<txid>i<index>".
func (id *ID) String() string {
	return fmt.Sprintf("%s%s%d", id.TxID.String(), idSeparator, id.Index)
}

// BaseTxID returns the reveal transaction id as a string, without the
// index suffix.
func (id *ID) BaseTxID() string {
	return id.TxID.String()
}

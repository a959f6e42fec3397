// Copyright (C) 2024 Creditor Corp. Group.
// See LICENSE for copying information.

package broadcast

import "strings"

// IsMempoolChainTooLong reports whether a sendrawtransaction error
// message indicates the node rejected the transaction for extending an
// unconfirmed chain past its configured limit. Exported so callers like
// the bulk mint controller can distinguish this case from any other
// broadcast failure without parsing error text themselves.
func IsMempoolChainTooLong(err error) bool {
	return isMempoolChainTooLong(err)
}

// isMempoolChainTooLong reports whether a sendrawtransaction error
// message indicates the node rejected the transaction for extending an
// unconfirmed chain past its configured limit.
func isMempoolChainTooLong(err error) bool {
	return err != nil && strings.Contains(err.Error(), "too-long-mempool-chain")
}

// isAlreadyAccepted reports whether a sendrawtransaction error message
// indicates the transaction (or its inputs) already landed on chain, so
// the broadcaster should treat it as delivered rather than failed.
func isAlreadyAccepted(err error) bool {
	if err == nil {
		return false
	}

	msg := err.Error()

	return strings.Contains(msg, "bad-txns-inputs-spent") ||
		strings.Contains(msg, "already in block chain")
}

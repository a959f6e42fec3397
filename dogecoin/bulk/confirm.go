// Copyright (C) 2024 Creditor Corp. Group.
// See LICENSE for copying information.

package bulk

import (
	"context"
	"errors"
	"time"

	"github.com/H3imdall-dev/Dogecoin-Tools/dogecoin/rpc"
)

// ErrNoPendingSend is returned by selectWatchedTx when the wallet has no
// unconfirmed send transaction to wait on.
var ErrNoPendingSend = errors.New("bulk: no pending send transaction for this wallet")

// confirmPollInterval is how often WaitForConfirmation polls the node.
var confirmPollInterval = 30 * time.Second

// WaitForConfirmation polls the node every 30 seconds for walletAddress's
// most recent unconfirmed send, and blocks until that specific
// transaction has at least one confirmation. The watched transaction is
// selected once and never changed mid-wait, even if a newer unconfirmed
// send appears. Confirmation is checked via gettransaction (wallet-scoped),
// not getrawtransaction, since the watched txid always belongs to this
// wallet and gettransaction needs no txindex on the node.
func WaitForConfirmation(ctx context.Context, c client, walletAddress, walletLabel string) (string, error) {
	watchTxID, err := selectWatchedTx(c, walletAddress, walletLabel)
	if err != nil {
		return "", err
	}

	for {
		tx, err := c.GetTransaction(watchTxID)
		if err == nil && tx.Confirmations >= 1 {
			return watchTxID, nil
		}

		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-time.After(confirmPollInterval):
		}
	}
}

// selectWatchedTx picks the wallet's newest unconfirmed send: from
// listtransactions, filtered to confirmations == 0, category == "send",
// and address == walletAddress (falling back to label == walletLabel
// when no entry matches by address).
func selectWatchedTx(c client, walletAddress, walletLabel string) (string, error) {
	txs, err := c.ListTransactions("*", 1000, 0)
	if err != nil {
		return "", err
	}

	var byAddress, byLabel *rpc.ListedTransaction
	for i := range txs {
		tx := &txs[i]
		if tx.Confirmations != 0 || tx.Category != "send" {
			continue
		}

		if tx.Address == walletAddress {
			if byAddress == nil || tx.Time > byAddress.Time {
				byAddress = tx
			}
		} else if tx.Label == walletLabel {
			if byLabel == nil || tx.Time > byLabel.Time {
				byLabel = tx
			}
		}
	}

	if byAddress != nil {
		return byAddress.TxID, nil
	}
	if byLabel != nil {
		return byLabel.TxID, nil
	}

	return "", ErrNoPendingSend
}

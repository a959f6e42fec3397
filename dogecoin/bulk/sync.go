// Copyright (C) 2024 Creditor Corp. Group.
// See LICENSE for copying information.

// Package bulk implements the wave-based bulk mint controller: fixed-
// width waves of inscription builds, wallet-scoped confirmation
// waiting, UTXO resync, and chain-limit recovery.
package bulk

import (
	"encoding/hex"
	"math/big"
	"time"

	"github.com/btcsuite/btcd/btcutil"
	"github.com/jpillora/backoff"

	"github.com/H3imdall-dev/Dogecoin-Tools/dogecoin/rpc"
	"github.com/H3imdall-dev/Dogecoin-Tools/dogecoin/wallet"
)

// client is the subset of the RPC client the sync/confirmation logic
// needs.
type client interface {
	ListUnspent(minConf, maxConf int, addrs []string) ([]rpc.UnspentOutput, error)
	ListTransactions(account string, count, skip int) ([]rpc.ListedTransaction, error)
	GetRawTransaction(txid string) (*rpc.RawTransaction, error)
	GetTransaction(txid string) (*rpc.WalletTransaction, error)
}

// SyncMaxRetries and syncBackoffStep bound the listunspent refresh: up to 5
// attempts, 30 seconds apart, before SyncUTXOs gives up.
const SyncMaxRetries = 5

var syncBackoffStep = 30 * time.Second

// SyncUTXOs refreshes w's UTXO set from the node's own listunspent view
// scoped to w's address, retrying up to SyncMaxRetries times with a flat
// 30-second backoff.
func SyncUTXOs(c client, w *wallet.Wallet) error {
	bk := &backoff.Backoff{Min: syncBackoffStep, Max: syncBackoffStep, Factor: 1}

	var lastErr error
	for attempt := 0; attempt < SyncMaxRetries; attempt++ {
		unspent, err := c.ListUnspent(0, 9999999, []string{w.Address()})
		if err == nil {
			utxos := make([]wallet.UTXO, 0, len(unspent))
			for _, u := range unspent {
				satoshis, amtErr := btcutil.NewAmount(u.Amount)
				if amtErr != nil {
					continue
				}

				script, scriptErr := hex.DecodeString(u.ScriptPubKey)
				if scriptErr != nil {
					continue
				}

				utxos = append(utxos, wallet.UTXO{
					TxID:     u.TxID,
					Vout:     u.Vout,
					Script:   script,
					Satoshis: big.NewInt(int64(satoshis)),
				})
			}

			w.ReplaceUTXOs(utxos)

			return w.Save()
		}

		lastErr = err
		time.Sleep(bk.Duration())
	}

	return lastErr
}

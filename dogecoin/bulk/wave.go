// Copyright (C) 2024 Creditor Corp. Group.
// See LICENSE for copying information.

package bulk

import (
	"math/big"

	"github.com/H3imdall-dev/Dogecoin-Tools/dogecoin/broadcast"
	"github.com/H3imdall-dev/Dogecoin-Tools/dogecoin/txbuilder"
	"github.com/H3imdall-dev/Dogecoin-Tools/dogecoin/wallet"
)

// MaxWaveSize is the largest number of inscriptions a single wave
// issues before the controller waits for confirmation and syncs.
const MaxWaveSize = 12

// Item is one planned inscription within a wave.
type Item struct {
	ContentType string
	Payload     []byte
	File        string // source filename, for file-inscribe run records; "" for DRC-20 mints.
}

// WaveOutcome is one item's result within a wave.
type WaveOutcome struct {
	Item       Item
	RevealTxID string
	CommitTxID string // the first transaction of this item's own chain.
}

// InterruptedItem describes the one item a chain-limit error broke off
// mid-broadcast: the item itself, and whatever transactions in its
// chain made it onto the node before the failure (possibly none).
type InterruptedItem struct {
	Item       Item
	SentTxIDs  []string // in chain order; empty if the first transaction itself was rejected.
}

// broadcastClient is the subset of the RPC client the broadcaster
// needs, re-declared here so Controller can hand it directly to
// broadcast.New without importing an rpc-specific type.
type broadcastClient interface {
	SendRawTransaction(hexTx string) (string, error)
}

// RunWave builds and broadcasts up to len(items) inscriptions against
// destination, stopping at the first chain-limit error (reporting
// partial successes) or the first non-chain-limit error (reporting the
// error).
func RunWave(rpcClient broadcastClient, w *wallet.Wallet, destination string, feeRatePerKB *big.Int, items []Item) (successes []WaveOutcome, interrupted *InterruptedItem, err error) {
	broadcaster := broadcast.New(rpcClient)

	for _, item := range items {
		chain, buildErr := txbuilder.Build(txbuilder.BuildParams{
			Wallet:       w,
			Destination:  destination,
			ContentType:  item.ContentType,
			Payload:      item.Payload,
			FeeRatePerKB: feeRatePerKB,
			Params:       w.Params(),
		})
		if buildErr != nil {
			return successes, nil, buildErr
		}

		result, broadcastErr := broadcaster.Broadcast(chain.Transactions, w.PendingJournalPath(), false)
		if broadcastErr != nil {
			if broadcast.IsMempoolChainTooLong(broadcastErr) {
				var sentTxIDs []string
				if result != nil {
					sentTxIDs = result.SentTxIDs
				}

				return successes, &InterruptedItem{Item: item, SentTxIDs: sentTxIDs}, nil
			}

			return successes, nil, broadcastErr
		}

		w.RemoveUTXOs(chain.SpentUTXOs)
		if chain.ChangeUTXO != nil {
			w.AddUTXO(*chain.ChangeUTXO)
		}
		if saveErr := w.Save(); saveErr != nil {
			return successes, nil, saveErr
		}

		successes = append(successes, WaveOutcome{
			Item:       item,
			RevealTxID: result.RevealTxID,
			CommitTxID: result.SentTxIDs[0],
		})
	}

	return successes, nil, nil
}

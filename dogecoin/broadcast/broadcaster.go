// Copyright (C) 2024 Creditor Corp. Group.
// See LICENSE for copying information.

package broadcast

import (
	"bytes"
	"encoding/hex"
	"log"
	"time"

	"github.com/btcsuite/btcd/wire"
	"github.com/jpillora/backoff"

	"github.com/H3imdall-dev/Dogecoin-Tools/dogecoin/txbuilder"
)

// client is the subset of the RPC client the broadcaster needs.
type client interface {
	SendRawTransaction(hexTx string) (string, error)
}

// Result summarizes one Broadcast call.
type Result struct {
	SentTxIDs []string
	// RevealTxID is the last transaction's hash (the one spending the
	// final P2SH output, i.e. the reveal), or empty if nothing was sent.
	RevealTxID string
}

// Broadcaster sends a built transaction chain to the node in order.
type Broadcaster struct {
	rpc          client
	chainLimitBk *backoff.Backoff
}

// New returns a Broadcaster backed by rpc, backing off a flat 1 second
// between too-long-mempool-chain retries.
func New(rpc client) *Broadcaster {
	return &Broadcaster{
		rpc:          rpc,
		chainLimitBk: &backoff.Backoff{Min: time.Second, Max: time.Second, Factor: 1},
	}
}

// Broadcast sends txs in order via sendrawtransaction.
//
//   - too-long-mempool-chain, with retryChainLimit set, backs off one
//     second and retries the same transaction indefinitely; without
//     retryChainLimit the error is returned immediately.
//   - bad-txns-inputs-spent or "already in block chain" is treated as
//     already delivered.
//   - any other error journals txs[i:] to journalPath and returns the
//     error.
func (b *Broadcaster) Broadcast(txs []wire.MsgTx, journalPath string, retryChainLimit bool) (*Result, error) {
	sent := make([]string, 0, len(txs))

	for i, tx := range txs {
		hexTx, err := serializeHex(&tx)
		if err != nil {
			return nil, err
		}

		txid, err := b.sendOne(hexTx, &tx, retryChainLimit)
		if err != nil {
			if journalErr := SaveJournal(journalPath, remainingHex(txs[i:])); journalErr != nil {
				return nil, journalErr
			}

			// Partial results are still returned on error: a caller
			// recovering from a chain-limit hit needs the txids that
			// did make it onto the chain before the failure.
			return &Result{SentTxIDs: sent, RevealTxID: revealOf(sent)}, err
		}

		sent = append(sent, txid)
	}

	return &Result{SentTxIDs: sent, RevealTxID: revealOf(sent)}, nil
}

// ResumeJournal re-broadcasts whatever a prior Broadcast call left
// unsent, removing the journal on success. A missing journal is
// reported via the returned bool.
func (b *Broadcaster) ResumeJournal(journalPath string) (resumed bool, result *Result, err error) {
	journal, err := LoadJournal(journalPath)
	if err != nil {
		return false, nil, err
	}

	sent := make([]string, 0, len(journal.Transactions))
	for i, hexTx := range journal.Transactions {
		raw, err := hex.DecodeString(hexTx)
		if err != nil {
			return true, nil, err
		}
		var tx wire.MsgTx
		if err := tx.DeserializeNoWitness(bytes.NewReader(raw)); err != nil {
			return true, nil, err
		}

		txid, err := b.sendOne(hexTx, &tx, true)
		if err != nil {
			remaining := journal.Transactions[i:]
			if journalErr := SaveJournal(journalPath, hexStringsToBytes(remaining)); journalErr != nil {
				return true, nil, journalErr
			}

			return true, nil, err
		}
		sent = append(sent, txid)
	}

	if err := RemoveJournal(journalPath); err != nil {
		return true, nil, err
	}

	return true, &Result{SentTxIDs: sent, RevealTxID: revealOf(sent)}, nil
}

// sendOne sends hexTx, retrying on a chain-limit error when
// retryChainLimit is set and treating an already-accepted error as
// success. tx is used only to recover a txid when the node reports the
// transaction as already accepted; when tx is nil, such a transaction is
// reported with an empty txid.
func (b *Broadcaster) sendOne(hexTx string, tx *wire.MsgTx, retryChainLimit bool) (string, error) {
	for {
		txid, err := b.rpc.SendRawTransaction(hexTx)
		if err == nil {
			b.chainLimitBk.Reset()

			return txid, nil
		}

		if isAlreadyAccepted(err) {
			log.Printf("broadcast: treating %q as already accepted", err)

			if tx != nil {
				return tx.TxHash().String(), nil
			}

			return "", nil
		}

		if isMempoolChainTooLong(err) {
			if !retryChainLimit {
				return "", err
			}

			time.Sleep(b.chainLimitBk.Duration())

			continue
		}

		return "", err
	}
}

// serializeHex serializes tx and hex-encodes it for sendrawtransaction.
func serializeHex(tx *wire.MsgTx) (string, error) {
	raw, err := txbuilder.SerializeTx(tx)
	if err != nil {
		return "", err
	}

	return hex.EncodeToString(raw), nil
}

// remainingHex serializes every transaction in txs.
func remainingHex(txs []wire.MsgTx) [][]byte {
	out := make([][]byte, 0, len(txs))
	for i := range txs {
		raw, err := txbuilder.SerializeTx(&txs[i])
		if err != nil {
			continue
		}
		out = append(out, raw)
	}

	return out
}

// hexStringsToBytes decodes a slice of hex-encoded transactions back to
// raw bytes for re-journaling.
func hexStringsToBytes(hexTxs []string) [][]byte {
	out := make([][]byte, 0, len(hexTxs))
	for _, h := range hexTxs {
		raw, err := hex.DecodeString(h)
		if err != nil {
			continue
		}
		out = append(out, raw)
	}

	return out
}

// revealOf picks the reported inscription txid out of a sent sequence:
// the last transaction broadcast, which is the one spending the final
// P2SH output regardless of how many partial envelopes preceded it.
func revealOf(sent []string) string {
	if len(sent) == 0 {
		return ""
	}

	return sent[len(sent)-1]
}

// Copyright (C) 2024 Creditor Corp. Group.
// See LICENSE for copying information.

// Package walker implements the Chain Walker (C4): it drives the envelope
// parser across one or more transactions by following output spends
// within a bounded block window.
package walker

import (
	"encoding/hex"
	"errors"
	"strings"
	"time"

	"github.com/btcsuite/btcd/txscript"

	"github.com/H3imdall-dev/Dogecoin-Tools/dogecoin/ord/inscriptions"
	"github.com/H3imdall-dev/Dogecoin-Tools/dogecoin/rpc"
)

// ErrNoNextHop defines that no spending transaction for the tracked output
// could be found within the configured block window.
var ErrNoNextHop = errors.New("no spending transaction found within the block window")

// Config bounds how far the walker is willing to search.
type Config struct {
	DepthBlocks int // Number of blocks to scan forward looking for the next hop.
	MaxHops     int // Hard cap on the number of transactions visited.
}

// DefaultConfig returns the recommended bounds (depthBlocks unified to
// 5000 across every caller, per the design note on the historical
// decoder's inconsistent 1000/5000 split).
func DefaultConfig() Config {
	return Config{DepthBlocks: 5000, MaxHops: 20000}
}

// politeSleepEvery defines how many scanned blocks elapse between a small
// sleep, so the walker does not hammer the node during a long search.
const politeSleepEvery = 100

// Result is the accumulated outcome of walking an inscription's envelope
// across every hop.
type Result struct {
	HexData        string
	MimeType       string
	ChunksFound    int
	EstimatedTotal int64
	Truncated      bool
}

// client is the subset of *rpc.Client the walker depends on.
type client interface {
	GetRawTransaction(txid string) (*rpc.RawTransaction, error)
	GetBlockHash(height int64) (string, error)
	GetBlock(hash string) (*rpc.Block, error)
}

// Walk follows the doginals envelope starting at startTxID until
// end-of-data, a broken chain, or a bound is reached.
func Walk(c client, startTxID string, cfg Config) (*Result, error) {
	result := &Result{}

	visited := map[string]bool{}
	txid := startTxID
	voutIndex := uint32(0)

	for hop := 0; hop < cfg.MaxHops; hop++ {
		tx, err := c.GetRawTransaction(txid)
		if err != nil {
			return nil, err
		}

		tokens, err := relevantScriptTokens(tx, hop == 0)
		if err != nil {
			if hop == 0 {
				return nil, err
			}
			// A broken subsequent hop still yields whatever was collected so far.
			result.Truncated = true

			break
		}

		var env *inscriptions.Envelope
		if hop == 0 {
			env, err = inscriptions.ParseGenesis(tokens)
		} else {
			env, err = inscriptions.ParseSubsequent(tokens)
		}
		if err != nil && env == nil {
			// Nothing was produced at all: there is nothing to salvage.
			if hop == 0 {
				return nil, err
			}

			result.Truncated = true

			break
		}

		result.HexData += env.HexData
		result.ChunksFound += env.ChunksConsumed
		if hop == 0 {
			result.MimeType = env.MimeType
		}
		if env.LastRemaining > result.EstimatedTotal {
			result.EstimatedTotal = env.LastRemaining
		}

		if err != nil {
			// A pair mid-hop failed to parse: what was collected before
			// it is still emitted, per env.Truncated.
			result.Truncated = true

			break
		}

		if env.EndOfData {
			return result, nil
		}

		if !tx.IsConfirmed() {
			result.Truncated = true

			break
		}

		visited[txid] = true

		next, err := findNextHop(c, txid, voutIndex, tx.BlockHash, cfg.DepthBlocks)
		if err != nil {
			result.Truncated = true

			break
		}

		if visited[next.TxID] {
			// One more attempt to escape the cycle before giving up: search
			// forward from the block that actually confirmed this hop,
			// rather than repeating the same search that produced it.
			retryBlockHash, err := c.GetBlockHash(next.Height)
			if err != nil {
				result.Truncated = true

				break
			}

			next, err = findNextHop(c, next.TxID, next.VoutIndex, retryBlockHash, cfg.DepthBlocks)
			if err != nil || visited[next.TxID] {
				result.Truncated = true

				break
			}
		}

		txid = next.TxID
		voutIndex = next.VoutIndex
	}

	return result, nil
}

// relevantScriptTokens returns the whitespace-separated scriptSig assembly
// tokens of the input carrying the envelope for this hop. On the genesis
// hop, inputs lacking the sentinel are skipped; the first input that has it
// wins. On subsequent hops the first input is used.
func relevantScriptTokens(tx *rpc.RawTransaction, genesis bool) ([]string, error) {
	for _, vin := range tx.Vin {
		tokens, err := disasmTokens(vin.ScriptSig.Hex)
		if err != nil {
			continue
		}

		if !genesis {
			return tokens, nil
		}

		if len(tokens) > 0 && tokens[0] == "6582895" {
			return tokens, nil
		}
	}

	return nil, inscriptions.ErrNotDoginal
}

// disasmTokens decodes a hex-encoded scriptSig and returns its
// whitespace-separated disassembly tokens. A data push whose bytes are
// themselves an ASCII decimal string (the wire encoding this module's
// builder uses for markers, see dogecoin/txbuilder) is rendered back to
// its decimal text rather than left as the hex of its ASCII bytes, so the
// decimal/hex token split described by the envelope format falls directly
// out of disassembly.
func disasmTokens(scriptSigHex string) ([]string, error) {
	raw, err := hex.DecodeString(scriptSigHex)
	if err != nil {
		return nil, err
	}

	disasm, err := txscript.DisasmString(raw)
	if err != nil {
		return nil, err
	}

	if disasm == "" {
		return nil, nil
	}

	rawTokens := strings.Split(disasm, " ")
	tokens := make([]string, len(rawTokens))
	for i, tok := range rawTokens {
		tokens[i] = normalizeToken(tok)
	}

	return tokens, nil
}

// normalizeToken rewrites a raw disasm token that is hex-encoded ASCII
// decimal digits back into its decimal text form.
func normalizeToken(tok string) string {
	data, err := hex.DecodeString(tok)
	if err != nil || len(data) == 0 {
		return tok
	}

	if !isASCIIDecimal(data) {
		return tok
	}

	return string(data)
}

// isASCIIDecimal reports whether data is an optional leading '-' followed
// by one or more ASCII digit characters.
func isASCIIDecimal(data []byte) bool {
	if data[0] == '-' {
		data = data[1:]
	}

	if len(data) == 0 {
		return false
	}

	for _, b := range data {
		if b < '0' || b > '9' {
			return false
		}
	}

	return true
}

// nextHop describes the transaction found to spend a tracked output.
type nextHop struct {
	TxID      string
	VoutIndex uint32
	Height    int64
}

// findNextHop scans forward from the block confirming fromTxid, that block
// included, up to depthBlocks blocks, looking for a transaction that
// spends output voutIndex of fromTxid. An empty blockHash (fromTxid not
// yet confirmed) returns ErrNoNextHop without scanning.
func findNextHop(c client, fromTxid string, voutIndex uint32, blockHash string, depthBlocks int) (*nextHop, error) {
	if blockHash == "" {
		return nil, ErrNoNextHop
	}

	startBlock, err := c.GetBlock(blockHash)
	if err != nil {
		return nil, err
	}

	startHeight := startBlock.Height

	for height := startHeight; height < startHeight+int64(depthBlocks); height++ {
		if (height-startHeight)%politeSleepEvery == 0 && height != startHeight {
			time.Sleep(time.Millisecond)
		}

		hash, err := c.GetBlockHash(height)
		if err != nil {
			// Reached the chain tip before the window was exhausted.
			return nil, ErrNoNextHop
		}

		block, err := c.GetBlock(hash)
		if err != nil {
			return nil, err
		}

		for _, candidateTxid := range block.Tx {
			candidate, err := c.GetRawTransaction(candidateTxid)
			if err != nil {
				continue
			}

			for _, vin := range candidate.Vin {
				if vin.TxID == fromTxid && vin.Vout == voutIndex {
					return &nextHop{TxID: candidateTxid, VoutIndex: 0, Height: height}, nil
				}
			}
		}
	}

	return nil, ErrNoNextHop
}

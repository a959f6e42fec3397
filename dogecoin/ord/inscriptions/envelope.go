// Copyright (C) 2024 Creditor Corp. Group.
// See LICENSE for copying information.

package inscriptions

import (
	"encoding/hex"
	"errors"
	"strconv"
	"strings"

	"github.com/H3imdall-dev/Dogecoin-Tools/internal/sequencereader"
)

// ErrNotDoginal defines that the first input's scriptSig assembly does not
// carry the genesis sentinel and is therefore not a doginals inscription.
var ErrNotDoginal = errors.New("input does not carry the doginals sentinel")

// ErrMalformedEnvelope defines that the envelope violates the wire format
// and cannot be parsed further.
var ErrMalformedEnvelope = errors.New("inscription envelope is malformed")

// GenesisSentinel defines the decimal token that opens a genesis hop's
// scriptSig assembly. It is the decimal value of the bytes of "ord"
// (0x6f 0x72 0x64) read little-endian as 0x64726f, the same marker the original ordinals
// protocol pushes as literal bytes; doginals pushes it as its decimal
// text instead. Shared between the parser and the builder (which must
// push the identical marker on the wire).
const GenesisSentinel string = "6582895"

// Envelope is the result of parsing one hop's worth of scriptSig assembly.
type Envelope struct {
	HexData        string // Accumulated hex payload for this hop, in order.
	MimeType       string // Only set by ParseGenesis; empty for subsequent hops.
	EndOfData      bool   // True if a remaining-chunks marker of 0 was observed.
	ChunksConsumed int    // Number of (marker, chunk) pairs consumed.
	LastRemaining  int64  // Last remaining-chunks value seen, used as an estimate.
	Truncated      bool   // True if a later pair in this hop failed to parse, ending consumption early.
}

// ParseGenesis parses the genesis hop of an inscription: the sentinel,
// a numParts marker, the hex-encoded mime type, and then zero or more
// (remainingAfterThis, hexChunk) pairs.
func ParseGenesis(tokens []string) (*Envelope, error) {
	sr := sequencereader.New[string](tokens)
	if sr.Len() < 3 {
		return nil, ErrMalformedEnvelope
	}

	sentinel, _ := sr.Next()
	if sentinel != GenesisSentinel {
		return nil, ErrNotDoginal
	}

	numPartsTok, _ := sr.Next()
	if _, err := strconv.ParseInt(numPartsTok, 10, 64); err != nil {
		return nil, ErrMalformedEnvelope
	}

	mimeTypeHex, _ := sr.Next()
	mimeTypeBytes, err := hex.DecodeString(mimeTypeHex)
	if err != nil {
		return nil, ErrMalformedEnvelope
	}

	env, err := consumeChunkPairs(sr)
	if env != nil {
		env.MimeType = string(mimeTypeBytes)
	}

	return env, err
}

// ParseSubsequent parses a non-genesis hop: zero or more (remainingAfterThis,
// hexChunk) pairs, without a sentinel or mime type preamble.
func ParseSubsequent(tokens []string) (*Envelope, error) {
	sr := sequencereader.New[string](tokens)

	return consumeChunkPairs(sr)
}

// consumeChunkPairs greedily consumes (integer, hex) pairs until the tokens
// are exhausted or a parsed integer equals 0, which ends the envelope. A
// pair that fails to parse ends consumption early rather than discarding
// the hop outright: whatever pairs already parsed are still returned,
// alongside ErrMalformedEnvelope, unless nothing was produced at all.
func consumeChunkPairs(sr *sequencereader.SequenceReader[string]) (*Envelope, error) {
	env := &Envelope{}

	var hexBuilder strings.Builder
	for sr.HasNext() {
		markerTok, _ := sr.Next()

		remaining, err := strconv.ParseInt(markerTok, 10, 64)
		if err != nil {
			return truncatedEnvelope(env, hexBuilder.String())
		}

		if !sr.HasNext() {
			return truncatedEnvelope(env, hexBuilder.String())
		}

		chunkHex, _ := sr.Next()
		if chunkHex == "0" {
			// An empty data push (OP_0) disassembles as "0": an empty chunk.
			chunkHex = ""
		}
		if _, err := hex.DecodeString(chunkHex); err != nil {
			return truncatedEnvelope(env, hexBuilder.String())
		}

		hexBuilder.WriteString(chunkHex)
		env.ChunksConsumed++
		env.LastRemaining = remaining

		if remaining == 0 {
			env.EndOfData = true
			break
		}
	}

	env.HexData = hexBuilder.String()

	return env, nil
}

// truncatedEnvelope finalizes env with hexData already accumulated and
// reports ErrMalformedEnvelope, unless no pair was ever consumed, in
// which case there is nothing to salvage and the hop fails outright.
func truncatedEnvelope(env *Envelope, hexData string) (*Envelope, error) {
	if env.ChunksConsumed == 0 {
		return nil, ErrMalformedEnvelope
	}

	env.HexData = hexData
	env.Truncated = true

	return env, ErrMalformedEnvelope
}

// oddHexPadding is appended to an odd-length accumulated hex string before
// decoding, reproducing the historical decoder's byte-exact behavior. See
// the design notes on the padding quirk for why this exists and when it
// must be suppressed.
const oddHexPadding string = "00000"

// DecodePayload decodes the full accumulated hex string of a decode into
// bytes. When the hex length is odd it pads with oddHexPadding first,
// unless suppressPadding is set (used for model-viewer GLB dependencies,
// where the stray trailing byte would corrupt the binary format).
func DecodePayload(accumulatedHex string, suppressPadding bool) ([]byte, error) {
	if len(accumulatedHex)%2 != 0 && !suppressPadding {
		accumulatedHex += oddHexPadding
	}

	return hex.DecodeString(accumulatedHex)
}

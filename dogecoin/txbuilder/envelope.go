// Copyright (C) 2024 Creditor Corp. Group.
// See LICENSE for copying information.

// Package txbuilder implements the Inscription Builder (C8): it fragments
// a payload into script pieces, packs a chain of partial envelopes under
// the protocol's size budget, and builds the P2SH commit-then-reveal
// transaction chain that carries them on-chain.
package txbuilder

import (
	"github.com/H3imdall-dev/Dogecoin-Tools/dogecoin/ord/inscriptions"
)

const (
	// MaxScriptElementSize is the largest single data push a legacy
	// Dogecoin script will accept.
	MaxScriptElementSize = 520
	// MaxChunkLen is the largest payload slice packed into one data push
	// of a partial envelope.
	MaxChunkLen = 240
	// MaxPayloadLen bounds one partial envelope's total serialized size.
	MaxPayloadLen = 1500
	// RevealValue is the output value, in base units, carried by every
	// P2SH commit output and the final reveal output.
	RevealValue int64 = 100000
	// DefaultFeeRatePerKB is the default fee rate, in base units per kB
	// of serialized transaction size, used when no override is given.
	DefaultFeeRatePerKB int64 = 100000000
)

// element is one data push that will end up in a partial envelope's
// commit scriptSig, in the order it must be pushed. A push whose bytes
// happen to be an ASCII decimal string disassembles back to decimal text
// (see dogecoin/walker's normalizeToken); every other push disassembles
// as the hex of its raw bytes, which is how the envelope's hex chunks
// round-trip without this builder ever hex-encoding anything itself.
type element []byte

// PartialEnvelope is one commit transaction's worth of envelope data: the
// ordered elements to push, bounded by MaxPayloadLen when serialized.
type PartialEnvelope struct {
	Elements []element
}

// size returns elem's contribution to a partial envelope's serialized
// size budget.
func (e element) size() int {
	return len(e)
}

// chunkPayload splits data into chunks of at most MaxChunkLen bytes.
func chunkPayload(data []byte) [][]byte {
	var chunks [][]byte
	for len(data) > 0 {
		n := MaxChunkLen
		if n > len(data) {
			n = len(data)
		}

		chunks = append(chunks, data[:n])
		data = data[n:]
	}

	return chunks
}

// markerToken renders an integer marker as its ASCII decimal text bytes,
// the wire encoding of a remaining-chunks or sentinel marker.
func markerToken(n int) element {
	if n == 0 {
		return element("0")
	}

	digits := []byte{}
	for n > 0 {
		digits = append([]byte{byte('0' + n%10)}, digits...)
		n /= 10
	}

	return element(digits)
}

// pair is one (remainingAfterThis marker, chunk data) push pair.
type pair struct {
	marker element
	chunk  element
}

// size returns the pair's contribution to a partial envelope's budget.
func (p pair) size() int {
	return p.marker.size() + p.chunk.size()
}

// BuildPartialEnvelopes packs payload, preceded by the genesis preamble
// (sentinel, numParts, content type), into a sequence of partial
// envelopes each bounded by MaxPayloadLen when serialized. The preamble
// always occupies the first partial; packing of the (marker, chunk)
// pairs across partials is greedy: pairs are appended until the next
// pair would overflow the budget, at which point the partial is closed
// and the pair rolls over into the next one.
func BuildPartialEnvelopes(contentType string, payload []byte) ([]PartialEnvelope, error) {
	if len(contentType) > MaxScriptElementSize {
		return nil, ErrContentTypeTooLarge
	}

	chunks := chunkPayload(payload)
	numParts := len(chunks)

	preamble := []element{
		markerToken(mustAtoi(inscriptions.GenesisSentinel)),
		markerToken(numParts),
		element(contentType),
	}

	var pairs []pair
	remaining := numParts
	for _, chunk := range chunks {
		remaining--
		pairs = append(pairs, pair{marker: markerToken(remaining), chunk: element(chunk)})
	}
	if numParts == 0 {
		// A payload with no chunks still signals end-of-data once.
		pairs = append(pairs, pair{marker: markerToken(0), chunk: element(nil)})
	}

	return packPartials(preamble, pairs), nil
}

// packPartials lays preamble into the first partial, then greedily packs
// pairs across as many partials as needed to respect MaxPayloadLen.
func packPartials(preamble []element, pairs []pair) []PartialEnvelope {
	preambleSize := 0
	for _, e := range preamble {
		preambleSize += e.size()
	}

	current := PartialEnvelope{Elements: append([]element{}, preamble...)}
	size := preambleSize
	first := true

	var partials []PartialEnvelope

	flush := func() {
		partials = append(partials, current)
		current = PartialEnvelope{}
		size = 0
		first = false
	}

	for _, p := range pairs {
		if size+p.size() > MaxPayloadLen && len(current.Elements) > 0 {
			flush()
		}

		current.Elements = append(current.Elements, p.marker, p.chunk)
		size += p.size()
	}

	if len(current.Elements) > 0 || first {
		partials = append(partials, current)
	}

	return partials
}

// mustAtoi parses a decimal literal known to be valid at compile time.
func mustAtoi(s string) int {
	n := 0
	for _, c := range s {
		n = n*10 + int(c-'0')
	}

	return n
}

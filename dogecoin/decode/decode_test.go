// Copyright (C) 2024 Creditor Corp. Group.
// See LICENSE for copying information.

package decode_test

import (
	"encoding/hex"
	"os"
	"testing"

	"github.com/btcsuite/btcd/txscript"
	"github.com/stretchr/testify/require"

	"github.com/H3imdall-dev/Dogecoin-Tools/dogecoin/decode"
	"github.com/H3imdall-dev/Dogecoin-Tools/dogecoin/progress"
	"github.com/H3imdall-dev/Dogecoin-Tools/dogecoin/rpc"
	"github.com/H3imdall-dev/Dogecoin-Tools/dogecoin/store"
)

// fakeClient is an in-memory stand-in for *rpc.Client, mirroring the one
// used by the walker's own tests.
type fakeClient struct {
	txs    map[string]*rpc.RawTransaction
	blocks map[string]*rpc.Block
	hashes map[int64]string
}

func (f *fakeClient) GetRawTransaction(txid string) (*rpc.RawTransaction, error) {
	tx, ok := f.txs[txid]
	if !ok {
		return nil, errNotFound
	}

	return tx, nil
}

func (f *fakeClient) GetBlockHash(height int64) (string, error) {
	hash, ok := f.hashes[height]
	if !ok {
		return "", errNotFound
	}

	return hash, nil
}

func (f *fakeClient) GetBlock(hash string) (*rpc.Block, error) {
	block, ok := f.blocks[hash]
	if !ok {
		return nil, errNotFound
	}

	return block, nil
}

type notFoundError struct{}

func (notFoundError) Error() string { return "not found" }

var errNotFound = notFoundError{}

func scriptSigHex(t *testing.T, tokens ...string) string {
	builder := txscript.NewScriptBuilder()
	for _, tok := range tokens {
		if isDecimalLiteral(tok) {
			builder.AddData([]byte(tok))

			continue
		}

		data, err := hex.DecodeString(tok)
		require.NoError(t, err)
		builder.AddData(data)
	}

	script, err := builder.Script()
	require.NoError(t, err)

	return hex.EncodeToString(script)
}

func isDecimalLiteral(tok string) bool {
	if tok == "" {
		return false
	}

	for _, r := range tok {
		if r < '0' || r > '9' {
			return false
		}
	}

	return true
}

const rootTxid = "521f8eccffa4c41a3a7728dd012ea5a4a02feed81f41159231251ecf1e5c79da"
const depTxid = "ffffff00ffa4c41a3a7728dd012ea5a4a02feed81f41159231251ecf1e5c79da"

func newTestDecoder(t *testing.T, c *fakeClient) (*decode.Decoder, *store.Store, *progress.Tracker) {
	dir, err := os.MkdirTemp("", "decode-test")
	require.NoError(t, err)
	t.Cleanup(func() { _ = os.RemoveAll(dir) })

	s, err := store.New(dir)
	require.NoError(t, err)

	tr := progress.New()

	return decode.New(c, s, tr), s, tr
}

func TestDecode_SingleHopPlainText(t *testing.T) {
	mimeHex := hex.EncodeToString([]byte("text/plain"))
	genesisScript := scriptSigHex(t, "6582895", "0", mimeHex, "0", hex.EncodeToString([]byte("hello")))

	c := &fakeClient{
		txs: map[string]*rpc.RawTransaction{
			rootTxid: {TxID: rootTxid, BlockHash: "block0", Vin: []rpc.Vin{{ScriptSig: rpc.ScriptSig{Hex: genesisScript}}}},
		},
		blocks: map[string]*rpc.Block{"block0": {Hash: "block0", Height: 100}},
		hashes: map[int64]string{},
	}

	d, _, tr := newTestDecoder(t, c)

	res, err := d.Decode(rootTxid, map[string]bool{})
	require.NoError(t, err)
	require.EqualValues(t, rootTxid+"i0", res.InscriptionID)
	require.EqualValues(t, "text/plain", res.MimeType)

	data, err := os.ReadFile(res.Path)
	require.NoError(t, err)
	require.EqualValues(t, "hello", string(data))

	snap, ok := tr.Snapshot(rootTxid)
	require.True(t, ok)
	require.False(t, snap.Active)
}

func TestDecode_CacheHitSkipsChainWalk(t *testing.T) {
	mimeHex := hex.EncodeToString([]byte("text/plain"))
	genesisScript := scriptSigHex(t, "6582895", "0", mimeHex, "0", hex.EncodeToString([]byte("hello")))

	c := &fakeClient{
		txs: map[string]*rpc.RawTransaction{
			rootTxid: {TxID: rootTxid, BlockHash: "block0", Vin: []rpc.Vin{{ScriptSig: rpc.ScriptSig{Hex: genesisScript}}}},
		},
		blocks: map[string]*rpc.Block{"block0": {Hash: "block0", Height: 100}},
		hashes: map[int64]string{},
	}

	d, _, _ := newTestDecoder(t, c)

	_, err := d.Decode(rootTxid, map[string]bool{})
	require.NoError(t, err)

	delete(c.txs, rootTxid) // removing the source tx must not break a cached re-decode.

	res, err := d.Decode(rootTxid, map[string]bool{})
	require.NoError(t, err)
	require.EqualValues(t, rootTxid+"i0", res.InscriptionID)
}

func TestDecode_RecursesIntoHTMLDependency(t *testing.T) {
	html := `<html><body><img src="/content/` + depTxid + `i0"></body></html>`
	htmlMimeHex := hex.EncodeToString([]byte("text/html"))
	genesisScript := scriptSigHex(t, "6582895", "0", htmlMimeHex, "0", hex.EncodeToString([]byte(html)))

	depMimeHex := hex.EncodeToString([]byte("text/plain"))
	depScript := scriptSigHex(t, "6582895", "0", depMimeHex, "0", hex.EncodeToString([]byte("dep-bytes")))

	c := &fakeClient{
		txs: map[string]*rpc.RawTransaction{
			rootTxid: {TxID: rootTxid, BlockHash: "block0", Vin: []rpc.Vin{{ScriptSig: rpc.ScriptSig{Hex: genesisScript}}}},
			depTxid:  {TxID: depTxid, BlockHash: "block0", Vin: []rpc.Vin{{ScriptSig: rpc.ScriptSig{Hex: depScript}}}},
		},
		blocks: map[string]*rpc.Block{"block0": {Hash: "block0", Height: 100}},
		hashes: map[int64]string{},
	}

	d, s, tr := newTestDecoder(t, c)

	res, err := d.Decode(rootTxid, map[string]bool{})
	require.NoError(t, err)
	require.EqualValues(t, "text/html", res.MimeType)

	_, _, ok := s.Lookup(depTxid)
	require.True(t, ok)

	snap, ok := tr.Snapshot(rootTxid)
	require.True(t, ok)
	require.NotNil(t, snap.DepTotal)
	require.EqualValues(t, 1, *snap.DepTotal)
	require.EqualValues(t, 1, snap.DepDone)
}

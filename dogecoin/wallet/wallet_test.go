// Copyright (C) 2024 Creditor Corp. Group.
// See LICENSE for copying information.

package wallet_test

import (
	"math/big"
	"os"
	"path/filepath"
	"testing"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/btcutil"
	"github.com/stretchr/testify/require"

	"github.com/H3imdall-dev/Dogecoin-Tools/dogecoin/params"
	"github.com/H3imdall-dev/Dogecoin-Tools/dogecoin/wallet"
)

func writeTestWallet(t *testing.T, dir string) string {
	privKey, err := btcec.NewPrivateKey()
	require.NoError(t, err)

	wif, err := btcutil.NewWIF(privKey, &params.MainNetParams, true)
	require.NoError(t, err)

	path := filepath.Join(dir, ".wallet.json")
	content := `{
		"privkey": "` + wif.String() + `",
		"address": "DTestAddress",
		"utxos": [
			{"txid": "a", "vout": 0, "script": "qg==", "satoshis": 1000},
			{"txid": "a", "vout": 0, "script": "qg==", "satoshis": 1000},
			{"txid": "b", "vout": 1, "script": "qg==", "satoshis": 2500}
		]
	}`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	return path
}

func TestWallet_LoadDeduplicatesUTXOs(t *testing.T) {
	dir := t.TempDir()
	path := writeTestWallet(t, dir)

	w, err := wallet.Load(path, &params.MainNetParams)
	require.NoError(t, err)
	require.EqualValues(t, "DTestAddress", w.Address())
	require.Len(t, w.UTXOs(), 2)
	require.EqualValues(t, big.NewInt(3500), w.Balance())
}

func TestWallet_SaveRoundTrips(t *testing.T) {
	dir := t.TempDir()
	path := writeTestWallet(t, dir)

	w, err := wallet.Load(path, &params.MainNetParams)
	require.NoError(t, err)

	w.AddUTXO(wallet.UTXO{TxID: "c", Vout: 0, Satoshis: big.NewInt(500)})
	require.NoError(t, w.Save())

	reloaded, err := wallet.Load(path, &params.MainNetParams)
	require.NoError(t, err)
	require.Len(t, reloaded.UTXOs(), 3)
	require.EqualValues(t, big.NewInt(4000), reloaded.Balance())
}

func TestWallet_RemoveUTXOs(t *testing.T) {
	dir := t.TempDir()
	path := writeTestWallet(t, dir)

	w, err := wallet.Load(path, &params.MainNetParams)
	require.NoError(t, err)

	w.RemoveUTXOs([]wallet.UTXO{{TxID: "a", Vout: 0}})
	require.Len(t, w.UTXOs(), 1)
	require.EqualValues(t, big.NewInt(2500), w.Balance())
}

func TestWallet_PendingJournalPath(t *testing.T) {
	dir := t.TempDir()
	path := writeTestWallet(t, dir)

	w, err := wallet.Load(path, &params.MainNetParams)
	require.NoError(t, err)

	require.EqualValues(t, filepath.Join(dir, "pending-txs.json"), w.PendingJournalPath())
}

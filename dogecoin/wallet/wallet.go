// Copyright (C) 2024 Creditor Corp. Group.
// See LICENSE for copying information.

// Package wallet owns the inscription builder's wallet state file: a WIF
// private key, its derived address, and an unordered UTXO set.
package wallet

import (
	"encoding/json"
	"math/big"
	"os"
	"path/filepath"
	"strconv"
	"sync"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/chaincfg"
)

// UTXO describes one unspent output owned by the wallet.
type UTXO struct {
	TxID     string   `json:"txid"`
	Vout     uint32   `json:"vout"`
	Script   []byte   `json:"script"`
	Satoshis *big.Int `json:"satoshis"`
}

// key returns the (txid,vout) identity of a UTXO.
func (u UTXO) key() string {
	return u.TxID + ":" + strconv.FormatUint(uint64(u.Vout), 10)
}

// state is the on-disk representation of a wallet.
type state struct {
	PrivKeyWIF string `json:"privkey"`
	Address    string `json:"address"`
	UTXOs      []UTXO `json:"utxos"`
}

// Wallet owns one wallet's private key, derived address, and UTXO set,
// serialized to a single JSON file.
type Wallet struct {
	path   string
	params *chaincfg.Params
	mu     sync.Mutex

	wif     *btcutil.WIF
	address string
	utxos   map[string]UTXO
}

// Load reads the wallet file at path, de-duplicating UTXOs by (txid,vout)
// on load.
func Load(path string, params *chaincfg.Params) (*Wallet, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var s state
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, err
	}

	wif, err := btcutil.DecodeWIF(s.PrivKeyWIF)
	if err != nil {
		return nil, err
	}

	w := &Wallet{
		path:    path,
		params:  params,
		wif:     wif,
		address: s.Address,
		utxos:   map[string]UTXO{},
	}

	for _, u := range s.UTXOs {
		w.utxos[u.key()] = u
	}

	return w, nil
}

// PrivKey returns the wallet's private key.
func (w *Wallet) PrivKey() *btcec.PrivateKey {
	return w.wif.PrivKey
}

// Address returns the wallet's derived address.
func (w *Wallet) Address() string {
	return w.address
}

// Params returns the network parameters this wallet was loaded with.
func (w *Wallet) Params() *chaincfg.Params {
	return w.params
}

// Balance returns the sum of every UTXO's satoshi amount.
func (w *Wallet) Balance() *big.Int {
	w.mu.Lock()
	defer w.mu.Unlock()

	total := big.NewInt(0)
	for _, u := range w.utxos {
		total.Add(total, u.Satoshis)
	}

	return total
}

// UTXOs returns a stable snapshot of the wallet's current UTXO set.
func (w *Wallet) UTXOs() []UTXO {
	w.mu.Lock()
	defer w.mu.Unlock()

	out := make([]UTXO, 0, len(w.utxos))
	for _, u := range w.utxos {
		out = append(out, u)
	}

	return out
}

// RemoveUTXOs removes the given UTXOs from the wallet's set, identified
// by (txid,vout).
func (w *Wallet) RemoveUTXOs(spent []UTXO) {
	w.mu.Lock()
	defer w.mu.Unlock()

	for _, u := range spent {
		delete(w.utxos, u.key())
	}
}

// AddUTXO adds or replaces a UTXO in the wallet's set.
func (w *Wallet) AddUTXO(u UTXO) {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.utxos[u.key()] = u
}

// ReplaceUTXOs resets the wallet's UTXO set to exactly utxos,
// de-duplicating by (txid,vout). Used after a SYNC refresh from the
// node's own listunspent view.
func (w *Wallet) ReplaceUTXOs(utxos []UTXO) {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.utxos = map[string]UTXO{}
	for _, u := range utxos {
		w.utxos[u.key()] = u
	}
}

// Save persists the wallet state to its file, atomically (write-to-temp
// + rename). Called after every transaction that mutates the UTXO set.
func (w *Wallet) Save() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	s := state{
		PrivKeyWIF: w.wif.String(),
		Address:    w.address,
		UTXOs:      make([]UTXO, 0, len(w.utxos)),
	}
	for _, u := range w.utxos {
		s.UTXOs = append(s.UTXOs, u)
	}

	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return err
	}

	tmp := w.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return err
	}

	return os.Rename(tmp, w.path)
}

// PendingJournalPath returns the path of the pending-broadcast journal
// that sits next to this wallet's file.
func (w *Wallet) PendingJournalPath() string {
	return filepath.Join(filepath.Dir(w.path), "pending-txs.json")
}

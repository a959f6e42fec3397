// Copyright (C) 2024 Creditor Corp. Group.
// See LICENSE for copying information.

// Package rpc implements a typed JSON-RPC 1.0 client for a dogecoind-
// compatible node, covering exactly the methods the decoder and builder
// subsystems need.
package rpc

// ScriptSig describes an input's unlocking script, as returned verbosely.
type ScriptSig struct {
	Asm string `json:"asm"`
	Hex string `json:"hex"`
}

// ScriptPubKey describes an output's locking script, as returned verbosely.
type ScriptPubKey struct {
	Asm       string   `json:"asm"`
	Hex       string   `json:"hex"`
	Type      string   `json:"type"`
	Addresses []string `json:"addresses"`
}

// Vin describes a transaction input.
type Vin struct {
	TxID      string    `json:"txid"`
	Vout      uint32    `json:"vout"`
	ScriptSig ScriptSig `json:"scriptSig"`
	Coinbase  string    `json:"coinbase"`
	Sequence  uint32    `json:"sequence"`
}

// Vout describes a transaction output.
type Vout struct {
	Value        float64      `json:"value"`
	N            uint32       `json:"n"`
	ScriptPubKey ScriptPubKey `json:"scriptPubKey"`
}

// RawTransaction is the verbose result of getrawtransaction.
type RawTransaction struct {
	TxID          string `json:"txid"`
	Hash          string `json:"hash"`
	Hex           string `json:"hex"`
	Size          int    `json:"size"`
	Version       int32  `json:"version"`
	LockTime      uint32 `json:"locktime"`
	Vin           []Vin  `json:"vin"`
	Vout          []Vout `json:"vout"`
	BlockHash     string `json:"blockhash"`
	Confirmations int64  `json:"confirmations"`
	Time          int64  `json:"time"`
	BlockTime     int64  `json:"blocktime"`
}

// IsConfirmed reports whether the transaction was returned with a block
// hash attached (as opposed to sitting unconfirmed in the mempool).
func (tx *RawTransaction) IsConfirmed() bool {
	return tx.BlockHash != ""
}

// Block is the verbose result of getblock.
type Block struct {
	Hash              string   `json:"hash"`
	Confirmations     int64    `json:"confirmations"`
	Height            int64    `json:"height"`
	Version           int32    `json:"version"`
	MerkleRoot        string   `json:"merkleroot"`
	Tx                []string `json:"tx"`
	Time              int64    `json:"time"`
	Nonce             uint32   `json:"nonce"`
	Bits              string   `json:"bits"`
	PreviousBlockHash string   `json:"previousblockhash"`
	NextBlockHash     string   `json:"nextblockhash"`
}

// UnspentOutput is one entry returned by listunspent.
type UnspentOutput struct {
	TxID          string  `json:"txid"`
	Vout          uint32  `json:"vout"`
	Address       string  `json:"address"`
	ScriptPubKey  string  `json:"scriptPubKey"`
	Amount        float64 `json:"amount"`
	Confirmations int64   `json:"confirmations"`
	Spendable     bool    `json:"spendable"`
}

// WalletTransaction is the result of gettransaction.
type WalletTransaction struct {
	TxID          string `json:"txid"`
	Confirmations int64  `json:"confirmations"`
	BlockHash     string `json:"blockhash"`
	Time          int64  `json:"time"`
	Hex           string `json:"hex"`
}

// ListedTransaction is one entry returned by listtransactions.
type ListedTransaction struct {
	Address       string  `json:"address"`
	Category      string  `json:"category"`
	Amount        float64 `json:"amount"`
	Label         string  `json:"label"`
	Confirmations int64   `json:"confirmations"`
	TxID          string  `json:"txid"`
	Time          int64   `json:"time"`
	TimeReceived  int64   `json:"timereceived"`
}

// Copyright (C) 2024 Creditor Corp. Group.
// See LICENSE for copying information.

package rpc

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
)

// RpcError describes a JSON-RPC error response returned by the node.
type RpcError struct {
	Code    int64
	Message string
}

// Error returns the error description.
func (e *RpcError) Error() string {
	return fmt.Sprintf("rpc error %d: %s", e.Code, e.Message)
}

// Is implements the comparator method for the errors package, matching on
// message content rather than identity so errors.Is works across
// deserialized instances.
func (e *RpcError) Is(target error) bool {
	other, ok := target.(*RpcError)
	if !ok {
		return false
	}

	return e.Message == other.Message
}

// Client is a minimal JSON-RPC 1.0 client speaking to a dogecoind-
// compatible node over HTTP with basic auth.
type Client struct {
	cfg        Config
	httpClient *http.Client
	nextID     int64
}

// NewClient is a constructor for Client.
func NewClient(cfg Config) *Client {
	return &Client{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: cfg.Timeout},
	}
}

// rpcRequest is the JSON-RPC 1.0 request envelope.
type rpcRequest struct {
	ID     string `json:"id"`
	Method string `json:"method"`
	Params []any  `json:"params"`
}

// rpcResponse is the JSON-RPC 1.0 response envelope.
type rpcResponse struct {
	Result json.RawMessage `json:"result"`
	Error  *RpcError       `json:"error"`
	ID     string          `json:"id"`
}

// call performs one JSON-RPC method invocation and decodes its result
// into out, when out is non-nil.
func (c *Client) call(method string, params []any, out any) error {
	c.nextID++
	req := rpcRequest{
		ID:     strconv.FormatInt(c.nextID, 10),
		Method: method,
		Params: params,
	}

	body, err := json.Marshal(req)
	if err != nil {
		return err
	}

	httpReq, err := http.NewRequest(http.MethodPost, c.cfg.URL, bytes.NewReader(body))
	if err != nil {
		return err
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.SetBasicAuth(c.cfg.User, c.cfg.Pass)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return fmt.Errorf("rpc unavailable: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	var rpcResp rpcResponse
	if err := json.NewDecoder(resp.Body).Decode(&rpcResp); err != nil {
		return fmt.Errorf("rpc unavailable: %w", err)
	}

	if rpcResp.Error != nil {
		return rpcResp.Error
	}

	if out == nil || len(rpcResp.Result) == 0 {
		return nil
	}

	return json.Unmarshal(rpcResp.Result, out)
}

// GetRawTransaction fetches a transaction by id, verbosely decoded.
func (c *Client) GetRawTransaction(txid string) (*RawTransaction, error) {
	var tx RawTransaction
	if err := c.call("getrawtransaction", []any{txid, true}, &tx); err != nil {
		return nil, err
	}

	return &tx, nil
}

// GetBlockHash returns the hash of the block at height.
func (c *Client) GetBlockHash(height int64) (string, error) {
	var hash string
	if err := c.call("getblockhash", []any{height}, &hash); err != nil {
		return "", err
	}

	return hash, nil
}

// GetBlock fetches a block by hash, verbosely decoded.
func (c *Client) GetBlock(hash string) (*Block, error) {
	var block Block
	if err := c.call("getblock", []any{hash, true}, &block); err != nil {
		return nil, err
	}

	return &block, nil
}

// ListUnspent lists spendable outputs for the given addresses.
func (c *Client) ListUnspent(minConf, maxConf int, addrs []string) ([]UnspentOutput, error) {
	var utxos []UnspentOutput
	if err := c.call("listunspent", []any{minConf, maxConf, addrs}, &utxos); err != nil {
		return nil, err
	}

	return utxos, nil
}

// SendRawTransaction broadcasts a serialized transaction, returning its
// txid on success. The returned error, when the call fails, carries the
// node's raw message so callers can recognize chain-limit / already-spent
// conditions by substring.
func (c *Client) SendRawTransaction(hexTx string) (string, error) {
	var txid string
	if err := c.call("sendrawtransaction", []any{hexTx}, &txid); err != nil {
		return "", err
	}

	return txid, nil
}

// GetTransaction fetches wallet metadata about a transaction the node's
// own wallet is aware of.
func (c *Client) GetTransaction(txid string) (*WalletTransaction, error) {
	var tx WalletTransaction
	if err := c.call("gettransaction", []any{txid}, &tx); err != nil {
		return nil, err
	}

	return &tx, nil
}

// ListTransactions lists the wallet's recent transactions for account.
func (c *Client) ListTransactions(account string, count, skip int) ([]ListedTransaction, error) {
	var txs []ListedTransaction
	if err := c.call("listtransactions", []any{account, count, skip, true}, &txs); err != nil {
		return nil, err
	}

	return txs, nil
}

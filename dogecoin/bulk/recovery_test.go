// Copyright (C) 2024 Creditor Corp. Group.
// See LICENSE for copying information.

package bulk_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/H3imdall-dev/Dogecoin-Tools/dogecoin/bulk"
	"github.com/H3imdall-dev/Dogecoin-Tools/dogecoin/rpc"
)

type fakeRecoveryClient struct {
	txs map[string]*rpc.RawTransaction
}

func (f *fakeRecoveryClient) ListUnspent(minConf, maxConf int, addrs []string) ([]rpc.UnspentOutput, error) {
	return nil, nil
}

func (f *fakeRecoveryClient) ListTransactions(account string, count, skip int) ([]rpc.ListedTransaction, error) {
	return nil, nil
}

func (f *fakeRecoveryClient) GetRawTransaction(txid string) (*rpc.RawTransaction, error) {
	tx, ok := f.txs[txid]
	if !ok {
		return nil, &rpc.RpcError{Code: -5, Message: "not found"}
	}

	return tx, nil
}

func (f *fakeRecoveryClient) GetTransaction(txid string) (*rpc.WalletTransaction, error) {
	return nil, &rpc.RpcError{Code: -5, Message: "not found"}
}

// chainOf builds a one-input chain funding -> commit (genesis-looking) ->
// reveal, the shape a single-partial inscription produces.
func chainOf() *fakeRecoveryClient {
	return &fakeRecoveryClient{txs: map[string]*rpc.RawTransaction{
		"funding": {
			TxID: "funding",
			Vin:  []rpc.Vin{{Coinbase: "01"}},
			Vout: []rpc.Vout{{}, {}},
		},
		"commit": {
			TxID: "commit",
			Vin:  []rpc.Vin{{TxID: "funding", Vout: 0}},
			Vout: []rpc.Vout{{}, {}},
		},
		"reveal": {
			TxID: "reveal",
			Vin:  []rpc.Vin{{TxID: "commit", Vout: 0}},
			Vout: []rpc.Vout{{}},
		},
		"unrelated": {
			TxID: "unrelated",
			Vin:  []rpc.Vin{{TxID: "someone-elses-tx", Vout: 0}},
			Vout: []rpc.Vout{{}},
		},
	}}
}

func TestRecoverRevealTxID_WalksBackToAncestorThenFindsReveal(t *testing.T) {
	c := chainOf()

	// "reveal" has only one output, so it isn't genesis-looking itself;
	// the walk must step back one generation to "commit" before it can
	// resolve the ancestor, then scan forward to find the reveal.
	txid, err := bulk.RecoverRevealTxID(c, "reveal", []string{"unrelated", "reveal"})
	require.NoError(t, err)
	require.Equal(t, "reveal", txid)
}

func TestRecoverRevealTxID_KnownGoodIsAlreadyTheAncestor(t *testing.T) {
	c := chainOf()

	// commit is itself genesis-looking (1 input, 2 outputs, non-coinbase),
	// so starting the walk there should resolve immediately.
	txid, err := bulk.RecoverRevealTxID(c, "commit", []string{"reveal"})
	require.NoError(t, err)
	require.Equal(t, "reveal", txid)
}

func TestRecoverRevealTxID_NoMatchingRecentTxReturnsErrRevealNotFound(t *testing.T) {
	c := chainOf()

	_, err := bulk.RecoverRevealTxID(c, "commit", []string{"unrelated"})
	require.ErrorIs(t, err, bulk.ErrRevealNotFound)
}

func TestRecoverRevealTxID_CoinbaseAncestorIsNotGenesisLooking(t *testing.T) {
	c := &fakeRecoveryClient{txs: map[string]*rpc.RawTransaction{
		"coinbase-spend": {
			TxID: "coinbase-spend",
			Vin:  []rpc.Vin{{Coinbase: "01"}},
			Vout: []rpc.Vout{{}, {}},
		},
	}}

	_, err := bulk.RecoverRevealTxID(c, "coinbase-spend", []string{"whatever"})
	require.ErrorIs(t, err, bulk.ErrGenesisAncestorNotFound)
}

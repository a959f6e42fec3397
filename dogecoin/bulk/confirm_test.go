// Copyright (C) 2024 Creditor Corp. Group.
// See LICENSE for copying information.

package bulk_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/H3imdall-dev/Dogecoin-Tools/dogecoin/bulk"
	"github.com/H3imdall-dev/Dogecoin-Tools/dogecoin/rpc"
)

type fakeConfirmClient struct {
	listed        []rpc.ListedTransaction
	listErr       error
	confirmations map[string][]int64 // txid -> successive confirmations returned across calls
	calls         map[string]int
}

func newFakeConfirmClient() *fakeConfirmClient {
	return &fakeConfirmClient{confirmations: map[string][]int64{}, calls: map[string]int{}}
}

func (f *fakeConfirmClient) ListUnspent(minConf, maxConf int, addrs []string) ([]rpc.UnspentOutput, error) {
	return nil, nil
}

func (f *fakeConfirmClient) ListTransactions(account string, count, skip int) ([]rpc.ListedTransaction, error) {
	return f.listed, f.listErr
}

func (f *fakeConfirmClient) GetRawTransaction(txid string) (*rpc.RawTransaction, error) {
	return &rpc.RawTransaction{TxID: txid}, nil
}

func (f *fakeConfirmClient) GetTransaction(txid string) (*rpc.WalletTransaction, error) {
	seq := f.confirmations[txid]
	i := f.calls[txid]
	f.calls[txid]++

	var conf int64
	switch {
	case len(seq) == 0:
		conf = 0
	case i < len(seq):
		conf = seq[i]
	default:
		conf = seq[len(seq)-1]
	}

	return &rpc.WalletTransaction{TxID: txid, Confirmations: conf}, nil
}

func TestSelectWatchedTx_PrefersNewestMatchByAddress(t *testing.T) {
	c := newFakeConfirmClient()
	c.listed = []rpc.ListedTransaction{
		{TxID: "older", Address: "nWallet", Category: "send", Confirmations: 0, Time: 100},
		{TxID: "newer", Address: "nWallet", Category: "send", Confirmations: 0, Time: 200},
		{TxID: "confirmed", Address: "nWallet", Category: "send", Confirmations: 1, Time: 300},
		{TxID: "receive", Address: "nWallet", Category: "receive", Confirmations: 0, Time: 400},
	}
	c.confirmations["newer"] = []int64{1}

	_, err := bulk.WaitForConfirmation(context.Background(), c, "nWallet", "mylabel")
	require.NoError(t, err)

	// The watched tx is "newer"; confirm it directly via GetTransaction's
	// recorded call count to avoid depending on unexported selection internals.
	require.Equal(t, 1, c.calls["newer"])
	require.Equal(t, 0, c.calls["older"])
}

func TestSelectWatchedTx_FallsBackToLabelWhenNoAddressMatch(t *testing.T) {
	c := newFakeConfirmClient()
	c.listed = []rpc.ListedTransaction{
		{TxID: "labeled", Address: "someoneElse", Category: "send", Label: "mylabel", Confirmations: 0, Time: 100},
	}
	c.confirmations["labeled"] = []int64{1}

	txid, err := bulk.WaitForConfirmation(context.Background(), c, "nWallet", "mylabel")
	require.NoError(t, err)
	require.Equal(t, "labeled", txid)
}

func TestSelectWatchedTx_NoCandidateReturnsErrNoPendingSend(t *testing.T) {
	c := newFakeConfirmClient()

	_, err := bulk.WaitForConfirmation(context.Background(), c, "nWallet", "mylabel")
	require.ErrorIs(t, err, bulk.ErrNoPendingSend)
}

func TestWaitForConfirmation_PollsUntilConfirmedWithoutSwitchingWatchedTx(t *testing.T) {
	c := newFakeConfirmClient()
	c.listed = []rpc.ListedTransaction{
		{TxID: "watched", Address: "nWallet", Category: "send", Confirmations: 0, Time: 100},
	}
	c.confirmations["watched"] = []int64{0, 0, 1}

	txid, err := bulk.WaitForConfirmation(context.Background(), c, "nWallet", "mylabel")
	require.NoError(t, err)
	require.Equal(t, "watched", txid)
	require.GreaterOrEqual(t, c.calls["watched"], 3)
}

func TestWaitForConfirmation_ContextCancellationStopsPolling(t *testing.T) {
	c := newFakeConfirmClient()
	c.listed = []rpc.ListedTransaction{
		{TxID: "stuck", Address: "nWallet", Category: "send", Confirmations: 0, Time: 100},
	}
	c.confirmations["stuck"] = []int64{0}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	_, err := bulk.WaitForConfirmation(ctx, c, "nWallet", "mylabel")
	require.ErrorIs(t, err, context.DeadlineExceeded)
}

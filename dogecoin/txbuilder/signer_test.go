// Copyright (C) 2024 Creditor Corp. Group.
// See LICENSE for copying information.

package txbuilder_test

import (
	"testing"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/btcsuite/btcd/txscript"
	"github.com/btcsuite/btcd/wire"
	"github.com/stretchr/testify/require"

	"github.com/H3imdall-dev/Dogecoin-Tools/dogecoin/params"
	"github.com/H3imdall-dev/Dogecoin-Tools/dogecoin/txbuilder"
)

func TestSigner_SignP2PKHInput_ProducesValidSignatureScript(t *testing.T) {
	privKey, err := btcec.NewPrivateKey()
	require.NoError(t, err)

	addr, err := btcutil.NewAddressPubKeyHash(btcutil.Hash160(privKey.PubKey().SerializeCompressed()), &params.MainNetParams)
	require.NoError(t, err)
	prevScript, err := txscript.PayToAddrScript(addr)
	require.NoError(t, err)

	tx := wire.NewMsgTx(1)
	prevHash, err := chainhash.NewHashFromStr("11" + hex62("a"))
	require.NoError(t, err)
	tx.AddTxIn(wire.NewTxIn(wire.NewOutPoint(prevHash, 0), nil, nil))
	tx.AddTxOut(wire.NewTxOut(1000, prevScript))

	signer := txbuilder.NewSigner(&params.MainNetParams)
	sig, err := signer.SignP2PKHInput(tx, 0, prevScript, privKey)
	require.NoError(t, err)
	tx.TxIn[0].SignatureScript = sig

	prevFetcher := txscript.NewCannedPrevOutputFetcher(prevScript, 1000)
	vm, err := txscript.NewEngine(prevScript, tx, 0,
		txscript.StandardVerifyFlags, nil, nil, 1000, prevFetcher)
	require.NoError(t, err)
	require.NoError(t, vm.Execute())
}

func TestSigner_SignRedeemInput_VerifiesAgainstRedeemScript(t *testing.T) {
	privKey, err := btcec.NewPrivateKey()
	require.NoError(t, err)

	redeem, err := txbuilder.RedeemScript(privKey.PubKey().SerializeCompressed(), 0)
	require.NoError(t, err)
	lock, err := txbuilder.LockScript(redeem, &params.MainNetParams)
	require.NoError(t, err)

	tx := wire.NewMsgTx(1)
	prevHash, err := chainhash.NewHashFromStr("22" + hex62("b"))
	require.NoError(t, err)
	tx.AddTxIn(wire.NewTxIn(wire.NewOutPoint(prevHash, 0), nil, nil))
	tx.AddTxOut(wire.NewTxOut(1000, lock))

	signer := txbuilder.NewSigner(&params.MainNetParams)
	sig, err := signer.SignRedeemInput(tx, 0, redeem, privKey)
	require.NoError(t, err)

	unlock, err := txbuilder.UnlockScript(nil, sig, redeem)
	require.NoError(t, err)
	tx.TxIn[0].SignatureScript = unlock

	prevFetcher := txscript.NewCannedPrevOutputFetcher(lock, 1000)
	vm, err := txscript.NewEngine(lock, tx, 0,
		txscript.StandardVerifyFlags, nil, nil, 1000, prevFetcher)
	require.NoError(t, err)
	require.NoError(t, vm.Execute())
}

func hex62(fill string) string {
	s := ""
	for len(s) < 62 {
		s += fill
	}

	return s
}

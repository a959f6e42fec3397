// Copyright (C) 2024 Creditor Corp. Group.
// See LICENSE for copying information.

package txbuilder

import (
	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/chaincfg"
	"github.com/btcsuite/btcd/txscript"
)

// RedeemScript builds the P2SH redeem script for a partial envelope:
// <pubkey> OP_CHECKSIGVERIFY (OP_DROP){N} OP_TRUE, where N is the number
// of data elements the partial envelope's unlock script pushes ahead of
// the signature.
func RedeemScript(pubKey []byte, numElements int) ([]byte, error) {
	builder := txscript.NewScriptBuilder()
	builder.AddData(pubKey)
	builder.AddOp(txscript.OP_CHECKSIGVERIFY)
	for i := 0; i < numElements; i++ {
		builder.AddOp(txscript.OP_DROP)
	}
	builder.AddOp(txscript.OP_TRUE)

	return builder.Script()
}

// LockScript builds the P2SH scriptPubKey hashing redeem:
// OP_HASH160 <ripemd160(sha256(redeem))> OP_EQUAL.
func LockScript(redeem []byte, params *chaincfg.Params) ([]byte, error) {
	addr, err := btcutil.NewAddressScriptHash(redeem, params)
	if err != nil {
		return nil, err
	}

	return txscript.PayToAddrScript(addr)
}

// UnlockScript builds the scriptSig that spends a P2SH output carrying a
// partial envelope's redeem script: every envelope element, in order,
// followed by the signature, followed by the serialized redeem script.
func UnlockScript(elements []element, sig, redeem []byte) ([]byte, error) {
	builder := txscript.NewScriptBuilder()
	for _, e := range elements {
		builder.AddData(e)
	}
	builder.AddData(sig)
	builder.AddData(redeem)

	return builder.Script()
}

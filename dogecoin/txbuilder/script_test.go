// Copyright (C) 2024 Creditor Corp. Group.
// See LICENSE for copying information.

package txbuilder_test

import (
	"encoding/hex"
	"strings"
	"testing"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/chaincfg"
	"github.com/btcsuite/btcd/txscript"
	"github.com/stretchr/testify/require"

	"github.com/H3imdall-dev/Dogecoin-Tools/dogecoin/txbuilder"
)

func TestRedeemScript_DisassemblesToExpectedOpcodes(t *testing.T) {
	privKey, err := btcec.NewPrivateKey()
	require.NoError(t, err)
	pubKey := privKey.PubKey().SerializeCompressed()

	redeem, err := txbuilder.RedeemScript(pubKey, 3)
	require.NoError(t, err)

	disasm, err := txscript.DisasmString(redeem)
	require.NoError(t, err)
	tokens := strings.Split(disasm, " ")

	require.Len(t, tokens, 6) // pubkey, CHECKSIGVERIFY, 3x DROP, TRUE
	require.EqualValues(t, "OP_CHECKSIGVERIFY", tokens[1])
	require.EqualValues(t, "OP_DROP", tokens[2])
	require.EqualValues(t, "OP_DROP", tokens[3])
	require.EqualValues(t, "OP_DROP", tokens[4])
	require.EqualValues(t, "1", tokens[5]) // OP_TRUE (OP_1) disassembles as the literal "1"
}

func TestLockScript_IsRecognizedAsPayToScriptHash(t *testing.T) {
	privKey, err := btcec.NewPrivateKey()
	require.NoError(t, err)
	redeem, err := txbuilder.RedeemScript(privKey.PubKey().SerializeCompressed(), 1)
	require.NoError(t, err)

	lock, err := txbuilder.LockScript(redeem, &chaincfg.MainNetParams)
	require.NoError(t, err)

	require.EqualValues(t, txscript.ScriptHashTy, txscript.GetScriptClass(lock))
}

// TestLockScript_HashesRedeemExactlyOnce guards against double-hashing
// redeem: the pushed 20-byte hash must be HASH160(redeem), not
// HASH160(HASH160(redeem)), or no node would recognize a spend
// presenting the real redeem script as matching this scriptPubKey.
func TestLockScript_HashesRedeemExactlyOnce(t *testing.T) {
	privKey, err := btcec.NewPrivateKey()
	require.NoError(t, err)
	redeem, err := txbuilder.RedeemScript(privKey.PubKey().SerializeCompressed(), 1)
	require.NoError(t, err)

	lock, err := txbuilder.LockScript(redeem, &chaincfg.MainNetParams)
	require.NoError(t, err)

	disasm, err := txscript.DisasmString(lock)
	require.NoError(t, err)
	tokens := strings.Split(disasm, " ")
	require.Len(t, tokens, 3) // OP_HASH160 <hash> OP_EQUAL

	pushedHash, err := hex.DecodeString(tokens[1])
	require.NoError(t, err)
	require.EqualValues(t, btcutil.Hash160(redeem), pushedHash)
}

func TestUnlockScript_PushesElementsThenSigThenRedeem(t *testing.T) {
	partials, err := txbuilder.BuildPartialEnvelopes("text/plain", []byte("hi"))
	require.NoError(t, err)
	require.Len(t, partials, 1)

	sig := []byte{0x01, 0x02, 0x03}
	redeem := []byte{0x51}

	unlock, err := txbuilder.UnlockScript(partials[0].Elements, sig, redeem)
	require.NoError(t, err)

	disasm, err := txscript.DisasmString(unlock)
	require.NoError(t, err)
	tokens := strings.Split(disasm, " ")
	require.Len(t, tokens, len(partials[0].Elements)+2)
}

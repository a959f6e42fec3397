// Copyright (C) 2024 Creditor Corp. Group.
// See LICENSE for copying information.

package txbuilder

import (
	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/chaincfg"
	"github.com/btcsuite/btcd/txscript"
	"github.com/btcsuite/btcd/wire"
)

// Signer produces legacy SIGHASH_ALL signatures for the builder's
// funding (P2PKH) and commit-chain (P2SH) inputs. Unlike a taproot
// signer it needs no prevout value or sighash cache: legacy sighashing
// only depends on the spent output's script.
type Signer struct {
	networkParams *chaincfg.Params
}

// NewSigner returns a Signer for the given network.
func NewSigner(networkParams *chaincfg.Params) *Signer {
	return &Signer{networkParams: networkParams}
}

// SignP2PKHInput signs tx's input at inputIndex, which spends a P2PKH
// output locked by prevScript, and returns the completed scriptSig
// (signature followed by the public key).
func (s *Signer) SignP2PKHInput(tx *wire.MsgTx, inputIndex int, prevScript []byte, privKey *btcec.PrivateKey) ([]byte, error) {
	return txscript.SignatureScript(tx, inputIndex, prevScript, txscript.SigHashAll, privKey, true)
}

// SignRedeemInput returns a raw SIGHASH_ALL signature over tx's input at
// inputIndex, sighashed against redeemScript rather than a scriptPubKey.
// The caller assembles the final scriptSig via UnlockScript, since a
// P2SH unlock also carries the envelope elements and the redeem script
// itself.
func (s *Signer) SignRedeemInput(tx *wire.MsgTx, inputIndex int, redeemScript []byte, privKey *btcec.PrivateKey) ([]byte, error) {
	return txscript.RawTxInSignature(tx, inputIndex, redeemScript, txscript.SigHashAll, privKey)
}

// Copyright (C) 2024 Creditor Corp. Group.
// See LICENSE for copying information.

package txbuilder

import (
	"bytes"
	"math/big"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/chaincfg"
	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/btcsuite/btcd/txscript"
	"github.com/btcsuite/btcd/wire"

	"github.com/H3imdall-dev/Dogecoin-Tools/dogecoin/wallet"
)

// txVersion is the transaction version used by every transaction this
// builder produces.
const txVersion int32 = 1

// BuildParams bundles the inputs to Build.
type BuildParams struct {
	Wallet       *wallet.Wallet
	Destination  string // recipient address of the final reveal.
	ContentType  string
	Payload      []byte
	FeeRatePerKB *big.Int // nil selects DefaultFeeRatePerKB.
	Params       *chaincfg.Params
}

// BuiltChain is the ordered, serialized transaction chain produced by
// Build: every commit transaction followed by the reveal.
type BuiltChain struct {
	Transactions []wire.MsgTx // in broadcast order; the last is the reveal.
	SpentUTXOs   []wallet.UTXO
	ChangeUTXO   *wallet.UTXO // nil when the funding transaction left no change.
}

// RevealTxID returns the txid of the chain's final (reveal) transaction,
// the inscription's identity.
func (c *BuiltChain) RevealTxID() chainhash.Hash {
	reveal := c.Transactions[len(c.Transactions)-1]

	return reveal.TxHash()
}

// Build constructs the commit-then-reveal transaction chain for one
// inscription: a chain of P2SH-locked partial envelopes funded from the
// wallet's UTXOs, followed by a reveal transaction paying RevealValue to
// Destination. Every transaction but the first spends exactly the
// previous transaction's single P2SH output.
func Build(params BuildParams) (*BuiltChain, error) {
	feeRate := params.FeeRatePerKB
	if feeRate == nil {
		feeRate = big.NewInt(DefaultFeeRatePerKB)
	}

	partials, err := BuildPartialEnvelopes(params.ContentType, params.Payload)
	if err != nil {
		return nil, err
	}

	pubKey := params.Wallet.PrivKey().PubKey().SerializeCompressed()

	redeemScripts := make([][]byte, len(partials))
	lockScripts := make([][]byte, len(partials))
	for i, p := range partials {
		redeem, err := RedeemScript(pubKey, len(p.Elements))
		if err != nil {
			return nil, err
		}
		lock, err := LockScript(redeem, params.Params)
		if err != nil {
			return nil, err
		}

		redeemScripts[i] = redeem
		lockScripts[i] = lock
	}

	// requiredValue[i] is the satoshi value the i'th partial's P2SH
	// output must carry so every transaction downstream, including the
	// final reveal, can pay its fee and still deliver RevealValue.
	requiredValue := make([]*big.Int, len(partials))
	requiredValue[len(partials)-1] = new(big.Int).Add(
		big.NewInt(RevealValue), feeFor(1, 1, feeRate))
	for i := len(partials) - 2; i >= 0; i-- {
		requiredValue[i] = new(big.Int).Add(requiredValue[i+1], feeFor(1, 1, feeRate))
	}

	fundingUTXOs, fundingTotal, err := SelectUTXOs(params.Wallet.UTXOs(),
		new(big.Int).Add(requiredValue[0], feeFor(1, 2, feeRate)))
	if err != nil {
		return nil, err
	}

	signer := NewSigner(params.Params)
	var txs []wire.MsgTx
	var spentUTXOs []wallet.UTXO

	fundingFee := feeFor(len(fundingUTXOs), 2, feeRate)
	changeValue := new(big.Int).Sub(fundingTotal, requiredValue[0])
	changeValue.Sub(changeValue, fundingFee)

	fundingTx, err := buildFundingTx(fundingUTXOs, params.Wallet, requiredValue[0], changeValue, lockScripts[0], signer)
	if err != nil {
		return nil, err
	}
	txs = append(txs, *fundingTx)
	spentUTXOs = append(spentUTXOs, fundingUTXOs...)

	prevTx := fundingTx
	for i := 1; i < len(partials); i++ {
		commitTx, err := buildCommitSpendTx(prevTx, partials[i-1].Elements, redeemScripts[i-1],
			requiredValue[i], lockScripts[i], signer, params.Wallet.PrivKey())
		if err != nil {
			return nil, err
		}
		txs = append(txs, *commitTx)
		prevTx = commitTx
	}

	destAddr, err := btcutil.DecodeAddress(params.Destination, params.Params)
	if err != nil {
		return nil, err
	}
	destScript, err := txscript.PayToAddrScript(destAddr)
	if err != nil {
		return nil, err
	}

	revealTx, err := buildCommitSpendTx(prevTx, partials[len(partials)-1].Elements, redeemScripts[len(partials)-1],
		big.NewInt(RevealValue), destScript, signer, params.Wallet.PrivKey())
	if err != nil {
		return nil, err
	}
	txs = append(txs, *revealTx)

	chain := &BuiltChain{Transactions: txs, SpentUTXOs: spentUTXOs}
	if changeValue.Sign() > 0 {
		chain.ChangeUTXO = &wallet.UTXO{
			TxID:     fundingTx.TxHash().String(),
			Vout:     1,
			Script:   scriptFor(params.Wallet.Address(), params.Params),
			Satoshis: changeValue,
		}
	}

	return chain, nil
}

// feeFor estimates the satoshi fee for a transaction with the given
// input/output counts at feeRatePerKB.
func feeFor(inputs, outputs int, feeRatePerKB *big.Int) *big.Int {
	size := RoughTxSizeEstimate(inputs, outputs)
	fee := new(big.Int).Mul(size, feeRatePerKB)

	return fee.Div(fee, big.NewInt(1000))
}

// scriptFor returns the scriptPubKey for a P2PKH address, swallowing any
// decode error by returning nil (the caller only uses it for a wallet
// change UTXO whose address was already validated on load).
func scriptFor(address string, params *chaincfg.Params) []byte {
	addr, err := btcutil.DecodeAddress(address, params)
	if err != nil {
		return nil
	}

	script, err := txscript.PayToAddrScript(addr)
	if err != nil {
		return nil
	}

	return script
}

// buildFundingTx spends fundingUTXOs and pays p2shValue to the first
// partial's P2SH lock script, returning change to the wallet's own
// address when positive.
func buildFundingTx(fundingUTXOs []wallet.UTXO, w *wallet.Wallet, p2shValue, changeValue *big.Int,
	lockScript []byte, signer *Signer) (*wire.MsgTx, error) {
	tx := wire.NewMsgTx(txVersion)

	for _, u := range fundingUTXOs {
		hash, err := chainhash.NewHashFromStr(u.TxID)
		if err != nil {
			return nil, err
		}
		tx.AddTxIn(wire.NewTxIn(wire.NewOutPoint(hash, u.Vout), nil, nil))
	}

	tx.AddTxOut(wire.NewTxOut(p2shValue.Int64(), lockScript))
	if changeValue.Sign() > 0 {
		changeScript := scriptFor(w.Address(), w.Params())
		tx.AddTxOut(wire.NewTxOut(changeValue.Int64(), changeScript))
	}

	for i, u := range fundingUTXOs {
		sig, err := signer.SignP2PKHInput(tx, i, u.Script, w.PrivKey())
		if err != nil {
			return nil, err
		}
		tx.TxIn[i].SignatureScript = sig
	}

	return tx, nil
}

// buildCommitSpendTx spends prevTx's single P2SH output (carrying the
// redeem script for a partial envelope) into a new output of outValue
// locked by outScript, providing the envelope elements, the signature,
// and the redeem script as the unlock.
func buildCommitSpendTx(prevTx *wire.MsgTx, elements []element, redeemScript []byte,
	outValue *big.Int, outScript []byte, signer *Signer, privKey *btcec.PrivateKey) (*wire.MsgTx, error) {
	tx := wire.NewMsgTx(txVersion)

	prevHash := prevTx.TxHash()
	tx.AddTxIn(wire.NewTxIn(wire.NewOutPoint(&prevHash, 0), nil, nil))
	tx.AddTxOut(wire.NewTxOut(outValue.Int64(), outScript))

	sig, err := signer.SignRedeemInput(tx, 0, redeemScript, privKey)
	if err != nil {
		return nil, err
	}

	unlock, err := UnlockScript(elements, sig, redeemScript)
	if err != nil {
		return nil, err
	}
	tx.TxIn[0].SignatureScript = unlock

	return tx, nil
}

// SerializeTx returns tx's plain (non-witness) serialization, ready for
// sendrawtransaction.
func SerializeTx(tx *wire.MsgTx) ([]byte, error) {
	buf := bytes.NewBuffer(nil)
	if err := tx.Serialize(buf); err != nil {
		return nil, err
	}

	return buf.Bytes(), nil
}

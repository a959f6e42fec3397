// Copyright (C) 2024 Creditor Corp. Group.
// See LICENSE for copying information.

// Package params defines Dogecoin network parameter sets for use with
// github.com/btcsuite/btcd/chaincfg-aware address and signing code.
package params

import (
	"github.com/btcsuite/btcd/chaincfg"
)

// MainNetParams defines chain parameters for the Dogecoin main network.
var MainNetParams = chaincfg.Params{
	Name: "mainnet",

	PubKeyHashAddrID: 0x1e,
	ScriptHashAddrID: 0x16,
	PrivateKeyID:     0x9e,
}

// TestNetParams defines chain parameters for the Dogecoin test network.
var TestNetParams = chaincfg.Params{
	Name: "testnet",

	PubKeyHashAddrID: 0x71,
	ScriptHashAddrID: 0xc4,
	PrivateKeyID:     0xf1,
}

// ForName returns the parameter set for "mainnet" or "testnet". Any other
// name, including the empty string, resolves to MainNetParams.
func ForName(name string) *chaincfg.Params {
	if name == "testnet" {
		return &TestNetParams
	}

	return &MainNetParams
}

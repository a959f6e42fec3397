// Copyright (C) 2024 Creditor Corp. Group.
// See LICENSE for copying information.

package txbuilder

import "errors"

// ErrContentTypeTooLarge defines that the declared content type exceeds
// MaxScriptElementSize.
var ErrContentTypeTooLarge = errors.New("content type exceeds the maximum script element size")

// ErrNoUTXOs defines that the wallet has no spendable outputs at all.
var ErrNoUTXOs = errors.New("wallet has no UTXOs")

// Copyright (C) 2024 Creditor Corp. Group.
// See LICENSE for copying information.

// Package broadcast sends a built transaction chain to the node in
// order, journaling whatever wasn't sent on failure so a later process
// start can resume delivery.
package broadcast

import (
	"encoding/hex"
	"encoding/json"
	"os"
)

// Journal is the ordered list of not-yet-broadcast transactions,
// persisted next to the wallet file.
type Journal struct {
	Transactions []string `json:"transactions"` // hex-encoded, broadcast order
}

// SaveJournal writes remaining (hex-encoded serialized transactions) to
// path, atomically (write-to-temp + rename).
func SaveJournal(path string, remaining [][]byte) error {
	j := Journal{Transactions: make([]string, len(remaining))}
	for i, tx := range remaining {
		j.Transactions[i] = hex.EncodeToString(tx)
	}

	data, err := json.MarshalIndent(j, "", "  ")
	if err != nil {
		return err
	}

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return err
	}

	return os.Rename(tmp, path)
}

// LoadJournal reads the journal at path. A missing file is reported via
// os.IsNotExist on the returned error.
func LoadJournal(path string) (*Journal, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var j Journal
	if err := json.Unmarshal(data, &j); err != nil {
		return nil, err
	}

	return &j, nil
}

// RemoveJournal deletes the journal file at path. Removing an
// already-absent journal is not an error.
func RemoveJournal(path string) error {
	err := os.Remove(path)
	if err != nil && os.IsNotExist(err) {
		return nil
	}

	return err
}

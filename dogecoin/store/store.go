// Copyright (C) 2024 Creditor Corp. Group.
// See LICENSE for copying information.

// Package store implements the Content Store (C2): a content-addressed
// on-disk cache of decoded inscription payloads, backed by a JSON master
// index that is the sole source of truth about what has been decoded.
package store

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/H3imdall-dev/Dogecoin-Tools/dogecoin/ord/inscriptions"
)

// Entry is one record of the master index.
type Entry struct {
	TxID      string    `json:"txid"`
	Filename  string    `json:"filename"`
	MimeType  string    `json:"mimeType"`
	Ext       string    `json:"ext"`
	Size      int64     `json:"size"`
	CreatedAt time.Time `json:"createdAt"`
}

// Store owns every file under its content root plus the master index
// that maps inscription ids to them.
type Store struct {
	root string

	mu     sync.Mutex
	master map[string]Entry
}

// masterFilename is the path, relative to root, of the master index.
const masterFilename = "master/master.json"

// New opens (or initializes) a Store rooted at dir. The master index and
// content directories are created if they do not already exist.
func New(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	if err := os.MkdirAll(filepath.Join(dir, "master"), 0o755); err != nil {
		return nil, err
	}

	s := &Store{root: dir, master: map[string]Entry{}}

	if err := s.loadMaster(); err != nil {
		return nil, err
	}

	return s, nil
}

// loadMaster reads the master index from disk, tolerating its absence.
func (s *Store) loadMaster() error {
	path := filepath.Join(s.root, masterFilename)

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return err
	}

	return json.Unmarshal(data, &s.master)
}

// saveMaster persists the master index atomically (write-to-temp +
// rename), so a crash mid-write never leaves a corrupt index.
func (s *Store) saveMaster() error {
	path := filepath.Join(s.root, masterFilename)

	data, err := json.MarshalIndent(s.master, "", "  ")
	if err != nil {
		return err
	}

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return err
	}

	return os.Rename(tmp, path)
}

// Lookup returns the stored entry for id, tolerating both a bare txid and
// a "<txid>iN" id: a bare txid is looked up as "<txid>i0". Stale entries
// (whose file no longer exists) are reported as not found.
func (s *Store) Lookup(id string) (Entry, string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	parsed, err := inscriptions.NewIDFromString(id)
	if err != nil {
		return Entry{}, "", false
	}

	entry, ok := s.master[parsed.String()]
	if !ok {
		return Entry{}, "", false
	}

	path := filepath.Join(s.root, entry.Filename)
	if _, err := os.Stat(path); err != nil {
		return Entry{}, "", false
	}

	return entry, path, true
}

// Write persists raw bytes under <inscriptionId>.<ext> and upserts the
// master index, preserving CreatedAt across updates. When the declared
// classification is weak, the caller should follow up with RenameExt once
// sniffing determines a better extension.
func (s *Store) Write(id string, mimeType, ext string, data []byte) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	filename := fmt.Sprintf("%s.%s", id, ext)
	path := filepath.Join(s.root, filename)

	if err := writeFileAtomic(path, data); err != nil {
		return "", err
	}

	s.upsert(id, Entry{
		TxID:     baseTxID(id),
		Filename: filename,
		MimeType: mimeType,
		Ext:      ext,
		Size:     int64(len(data)),
	})

	return path, s.saveMaster()
}

// RenameExt renames the file stored for id to use newExt, rewriting its
// master entry to match. Used when a weak declared classification is
// replaced by a sniffed one.
func (s *Store) RenameExt(id, newExt, newMime string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.master[id]
	if !ok {
		return "", fmt.Errorf("no master entry for %s", id)
	}

	oldPath := filepath.Join(s.root, entry.Filename)
	newFilename := fmt.Sprintf("%s.%s", id, newExt)
	newPath := filepath.Join(s.root, newFilename)

	if err := os.Rename(oldPath, newPath); err != nil {
		return "", err
	}

	entry.Filename = newFilename
	entry.Ext = newExt
	entry.MimeType = newMime
	s.master[id] = entry

	return newPath, s.saveMaster()
}

// upsert inserts or updates the master entry for id, preserving CreatedAt.
func (s *Store) upsert(id string, entry Entry) {
	if existing, ok := s.master[id]; ok {
		entry.CreatedAt = existing.CreatedAt
	} else {
		entry.CreatedAt = now()
	}

	s.master[id] = entry
}

// now is overridable in tests so CreatedAt assertions stay deterministic.
var now = time.Now

// baseTxID strips the "iN" suffix from an inscription id.
func baseTxID(id string) string {
	parsed, err := inscriptions.NewIDFromString(id)
	if err != nil {
		return id
	}

	return parsed.BaseTxID()
}

// writeFileAtomic writes data to path via a temp file plus rename.
func writeFileAtomic(path string, data []byte) error {
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return err
	}

	return os.Rename(tmp, path)
}

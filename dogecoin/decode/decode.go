// Copyright (C) 2024 Creditor Corp. Group.
// See LICENSE for copying information.

// Package decode orchestrates the decoder/resolver subsystem (C1-C7): it
// ties the RPC client, chain walker, content store, type sniffer, and
// dependency resolver into the single control flow described for a
// decode request, reporting progress as it goes.
package decode

import (
	"fmt"
	"strings"

	"github.com/H3imdall-dev/Dogecoin-Tools/dogecoin/ord/inscriptions"
	"github.com/H3imdall-dev/Dogecoin-Tools/dogecoin/progress"
	"github.com/H3imdall-dev/Dogecoin-Tools/dogecoin/resolver"
	"github.com/H3imdall-dev/Dogecoin-Tools/dogecoin/rpc"
	"github.com/H3imdall-dev/Dogecoin-Tools/dogecoin/store"
	"github.com/H3imdall-dev/Dogecoin-Tools/dogecoin/walker"
)

// client is the subset of *rpc.Client the decoder depends on, matching
// walker's own client interface so either a live *rpc.Client or a fake
// satisfies both.
type client interface {
	GetRawTransaction(txid string) (*rpc.RawTransaction, error)
	GetBlockHash(height int64) (string, error)
	GetBlock(hash string) (*rpc.Block, error)
}

// Decoder drives a decode request end to end: cache probe, chain walk,
// store, sniff, and recursive dependency resolution.
type Decoder struct {
	rpc        client
	store      *store.Store
	tracker    *progress.Tracker
	walkConfig walker.Config
}

// New is a constructor for Decoder.
func New(rpcClient client, contentStore *store.Store, tracker *progress.Tracker) *Decoder {
	return &Decoder{
		rpc:        rpcClient,
		store:      contentStore,
		tracker:    tracker,
		walkConfig: walker.DefaultConfig(),
	}
}

// Result is what a decode request resolves to.
type Result struct {
	InscriptionID string
	Path          string
	MimeType      string
	Truncated     bool
}

// Decode materializes the inscription identified by id: returning from
// cache on a hit, otherwise walking the chain, storing the payload,
// sniffing weak classifications, and recursing into any dependencies the
// payload references. visited guards the whole top-level request (and
// every recursive call it spawns) against cyclic references; pass a
// fresh empty map for a new top-level request.
func (d *Decoder) Decode(id string, visited map[string]bool) (*Result, error) {
	return d.decodeDependency(id, visited, false)
}

// decodeDependency is Decode's recursive form. suppressPadding disables
// the odd-hex padding quirk (see dogecoin/ord/inscriptions.DecodePayload)
// for dependencies reached through a <model-viewer src="..."> reference,
// since padding a GLB binary payload would corrupt it.
func (d *Decoder) decodeDependency(id string, visited map[string]bool, suppressPadding bool) (*Result, error) {
	parsed, err := inscriptions.NewIDFromString(id)
	if err != nil {
		return nil, fmt.Errorf("invalid inscription id %q: %w", id, err)
	}
	canonicalID := parsed.String()
	baseTxID := parsed.BaseTxID()

	if entry, path, ok := d.store.Lookup(canonicalID); ok {
		return &Result{InscriptionID: canonicalID, Path: path, MimeType: entry.MimeType}, nil
	}

	d.tracker.Start(baseTxID, "decode "+canonicalID)

	walkResult, err := walker.Walk(d.rpc, baseTxID, d.walkConfig)
	if err != nil {
		d.tracker.Complete(baseTxID)

		return nil, err
	}

	d.tracker.Update(baseTxID, walkResult.ChunksFound, walkResult.EstimatedTotal)

	payload, err := inscriptions.DecodePayload(walkResult.HexData, suppressPadding)
	if err != nil {
		d.tracker.Complete(baseTxID)

		return nil, err
	}

	normalizedMime := inscriptions.Normalize(walkResult.MimeType)
	ext := extFor(normalizedMime)

	path, err := d.store.Write(canonicalID, normalizedMime, ext, payload)
	if err != nil {
		d.tracker.Complete(baseTxID)

		return nil, err
	}

	if inscriptions.IsWeak(normalizedMime, ext) {
		if sniffed, ok := inscriptions.Sniff(payload); ok {
			if renamed, err := d.store.RenameExt(canonicalID, sniffed.Ext, sniffed.MimeType); err == nil {
				path = renamed
				normalizedMime = sniffed.MimeType
			}
		}
	}

	if inscriptions.IsTextLike(normalizedMime) {
		_, modelViewerSrcs := resolver.Scan(payload, normalizedMime)

		materialize := func(depID string) error {
			_, err := d.decodeDependency(depID, visited, modelViewerSrcs[depID])

			return err
		}

		if _, err := resolver.Resolve(payload, normalizedMime, baseTxID, d.tracker, visited, materialize); err != nil {
			d.tracker.Complete(baseTxID)

			return nil, err
		}
	}

	d.tracker.Complete(baseTxID)

	return &Result{
		InscriptionID: canonicalID,
		Path:          path,
		MimeType:      normalizedMime,
		Truncated:     walkResult.Truncated,
	}, nil
}

// extFor picks a default extension for a normalized mime type that did
// not arrive through sniffing. Binary/unknown mime types fall back to
// "bin", which IsWeak recognizes so the store can sniff and rename it.
func extFor(normalizedMime string) string {
	switch normalizedMime {
	case "text/plain":
		return "txt"
	case "text/html":
		return "html"
	case "text/css":
		return "css"
	case "text/javascript", "application/javascript", "application/x-javascript":
		return "js"
	case "application/json":
		return "json"
	case "application/xml", "text/xml":
		return "xml"
	case "image/svg+xml":
		return "svg"
	case "model/gltf+json":
		return "gltf"
	case "model/gltf-binary":
		return "glb"
	case "image/png":
		return "png"
	case "image/jpeg":
		return "jpg"
	case "image/gif":
		return "gif"
	case "image/webp":
		return "webp"
	}

	if subtype, ok := strings.CutPrefix(normalizedMime, "text/"); ok && subtype != "" {
		return subtype
	}

	return "bin"
}

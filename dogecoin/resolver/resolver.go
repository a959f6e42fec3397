// Copyright (C) 2024 Creditor Corp. Group.
// See LICENSE for copying information.

// Package resolver implements the Dependency Resolver (C6): it scans
// text-like decoded payloads for references to other inscriptions and
// drives their recursive materialization, with cycle protection.
package resolver

import (
	"encoding/json"
	"log"
	"regexp"

	"github.com/H3imdall-dev/Dogecoin-Tools/dogecoin/ord/inscriptions"
	"github.com/H3imdall-dev/Dogecoin-Tools/dogecoin/progress"
)

// contentRefPattern matches "/content/<64-hex>" with an optional "iN"
// suffix.
var contentRefPattern = regexp.MustCompile(`/content/([0-9a-fA-F]{64})(i\d+)?`)

// bareRefPattern matches a bare "<64-hex>iN" token, with no "/content/"
// prefix.
var bareRefPattern = regexp.MustCompile(`\b([0-9a-fA-F]{64})i(\d+)\b`)

// modelViewerSrcPattern matches <model-viewer src="..."> references.
var modelViewerSrcPattern = regexp.MustCompile(`<model-viewer[^>]*\ssrc=["']([^"']+)["']`)

// Scan runs the appropriate scanner for normalizedMime over payload and
// returns the set of referenced inscription ids plus the set of ids
// specifically referenced as a <model-viewer src="..."> target.
func Scan(payload []byte, normalizedMime string) (deps []string, modelViewerSrcs map[string]bool) {
	if normalizedMime == "model/gltf+json" {
		return scanGltfJSON(payload), nil
	}

	return scanGeneric(payload)
}

// scanGeneric runs the generic text scanner: /content/<64-hex>(iN)? and
// bare <64-hex>iN tokens, plus model-viewer src extraction.
func scanGeneric(payload []byte) (deps []string, modelViewerSrcs map[string]bool) {
	text := string(payload)

	seen := map[string]bool{}
	var ordered []string
	add := func(id string) {
		if !seen[id] {
			seen[id] = true
			ordered = append(ordered, id)
		}
	}

	for _, m := range contentRefPattern.FindAllStringSubmatch(text, -1) {
		id := m[1]
		if m[2] == "" {
			id += "i0"
		} else {
			id += m[2]
		}
		add(id)
	}

	for _, m := range bareRefPattern.FindAllStringSubmatch(text, -1) {
		add(m[1] + "i" + m[2])
	}

	modelViewerSrcs = map[string]bool{}
	for _, m := range modelViewerSrcPattern.FindAllStringSubmatch(text, -1) {
		if id, err := inscriptions.NewIDFromString(trimContentPrefix(m[1])); err == nil {
			modelViewerSrcs[id.String()] = true
			add(id.String())
		}
	}

	return ordered, modelViewerSrcs
}

// trimContentPrefix strips a leading "/content/" from a model-viewer src
// attribute, if present.
func trimContentPrefix(src string) string {
	const prefix = "/content/"
	if len(src) > len(prefix) && src[:len(prefix)] == prefix {
		return src[len(prefix):]
	}

	return src
}

// gltfDoc is the minimal shape needed to extract buffer/image URIs from a
// GLTF-JSON document. Regex-scanning GLTF would produce false positives
// from hex-looking asset names elsewhere in the document, so this parses
// the document structurally instead.
type gltfDoc struct {
	Buffers []struct {
		URI string `json:"uri"`
	} `json:"buffers"`
	Images []struct {
		URI string `json:"uri"`
	} `json:"images"`
}

// scanGltfJSON parses payload as a GLTF-JSON document and collects
// referenced inscription ids from buffers[].uri and images[].uri only.
func scanGltfJSON(payload []byte) []string {
	var doc gltfDoc
	if err := json.Unmarshal(payload, &doc); err != nil {
		return nil
	}

	seen := map[string]bool{}
	var ordered []string
	add := func(uri string) {
		id, err := inscriptions.NewIDFromString(trimContentPrefix(uri))
		if err != nil {
			return
		}
		if !seen[id.String()] {
			seen[id.String()] = true
			ordered = append(ordered, id.String())
		}
	}

	for _, b := range doc.Buffers {
		add(b.URI)
	}
	for _, img := range doc.Images {
		add(img.URI)
	}

	return ordered
}

// Materializer recursively decodes and stores one dependency, given its
// inscription id. Supplied by the decode orchestration layer; kept as a
// function value here so this package never imports it back, which would
// otherwise create an import cycle between resolution and decoding.
type Materializer func(depID string) error

// Resolve scans payload for dependencies, reports the plan to tracker,
// and materializes each dependency exactly once per request, guarding
// against cycles via visited (keyed by base txid, shared across the
// whole top-level request).
func Resolve(payload []byte, normalizedMime string, key string, tracker *progress.Tracker, visited map[string]bool, materialize Materializer) (map[string]bool, error) {
	deps, modelViewerSrcs := Scan(payload, normalizedMime)

	tracker.SetDependencyPlan(key, len(deps))

	for _, depID := range deps {
		parsed, err := inscriptions.NewIDFromString(depID)
		if err != nil {
			continue
		}

		if visited[parsed.BaseTxID()] {
			tracker.IncrementDependencyDone(key)

			continue
		}
		visited[parsed.BaseTxID()] = true

		if err := materialize(depID); err != nil {
			log.Printf("resolver: dependency %s failed to materialize: %v", depID, err)
		}

		tracker.IncrementDependencyDone(key)
	}

	return modelViewerSrcs, nil
}

// Copyright (C) 2024 Creditor Corp. Group.
// See LICENSE for copying information.

package inscriptions

import (
	"encoding/json"
	"strings"
)

// Kind is a closed tagged set of media-type classifications used for
// control-flow decisions (whether to run the dependency resolver, which
// extension to store under). The display mime string, not Kind, is what
// round-trips to consumers.
type Kind byte

const (
	// KindOctetStream defines an unclassified binary payload.
	KindOctetStream Kind = iota
	// KindText defines a generic text/* payload.
	KindText
	// KindHTML defines an HTML document.
	KindHTML
	// KindSVG defines an SVG image.
	KindSVG
	// KindJavascript defines a javascript program.
	KindJavascript
	// KindJSON defines a generic JSON document.
	KindJSON
	// KindGltfJSON defines a GLTF asset encoded as JSON.
	KindGltfJSON
	// KindPNG defines a PNG image.
	KindPNG
	// KindJPEG defines a JPEG image.
	KindJPEG
	// KindGIF defines a GIF image.
	KindGIF
	// KindWebP defines a WebP image.
	KindWebP
	// KindGLB defines a binary GLTF asset.
	KindGLB
)

// textLikeMimes lists the normalized mime types the dependency resolver
// (C6) is permitted to scan as text.
var textLikeMimes = map[string]Kind{
	"text/plain":               KindText,
	"text/html":                KindHTML,
	"text/css":                 KindText,
	"text/javascript":          KindJavascript,
	"image/svg+xml":            KindSVG,
	"application/javascript":   KindJavascript,
	"application/x-javascript": KindJavascript,
	"application/json":         KindJSON,
	"application/xml":          KindText,
	"model/gltf+json":          KindGltfJSON,
}

// KindOf classifies a normalized mime type into its Kind. Unknown mime
// types classify as KindOctetStream, except any mime carrying the
// text/ prefix, which defaults to KindText even when not one of the
// specific overrides above (e.g. text/markdown, text/csv).
func KindOf(normalizedMime string) Kind {
	if kind, ok := textLikeMimes[normalizedMime]; ok {
		return kind
	}

	switch normalizedMime {
	case "image/png":
		return KindPNG
	case "image/jpeg":
		return KindJPEG
	case "image/gif":
		return KindGIF
	case "image/webp":
		return KindWebP
	case "model/gltf-binary":
		return KindGLB
	}

	if strings.HasPrefix(normalizedMime, "text/") {
		return KindText
	}

	return KindOctetStream
}

// IsTextLike returns true if the normalized mime type should be scanned by
// the dependency resolver: one of the specific overrides above, or any
// mime carrying the text/ prefix.
func IsTextLike(normalizedMime string) bool {
	if _, ok := textLikeMimes[normalizedMime]; ok {
		return true
	}

	return strings.HasPrefix(normalizedMime, "text/")
}

// Normalize lowercases a mime type and strips any ";charset=..." style
// parameters, defaulting to application/octet-stream.
func Normalize(mime string) string {
	mime = strings.ToLower(strings.TrimSpace(mime))
	if mime == "" {
		return "application/octet-stream"
	}

	if idx := strings.IndexByte(mime, ';'); idx != -1 {
		mime = strings.TrimSpace(mime[:idx])
	}

	if mime == "" {
		return "application/octet-stream"
	}

	return mime
}

// Sniffed is the result of sniffing a byte prefix.
type Sniffed struct {
	MimeType string
	Ext      string
}

// sniffWindow is the maximum number of leading bytes inspected by Sniff.
const sniffWindow = 256

// Sniff inspects at most the first 256 bytes of data and reports a mime
// type and extension for a small set of well-known binary/JSON formats. It
// returns ok=false when nothing matches.
func Sniff(data []byte) (result Sniffed, ok bool) {
	if len(data) > sniffWindow {
		data = data[:sniffWindow]
	}

	switch {
	case hasPrefix(data, []byte{0x89, 0x50, 0x4E, 0x47, 0x0D, 0x0A, 0x1A, 0x0A}):
		return Sniffed{MimeType: "image/png", Ext: "png"}, true
	case hasPrefix(data, []byte{0xFF, 0xD8, 0xFF}):
		return Sniffed{MimeType: "image/jpeg", Ext: "jpg"}, true
	case hasPrefix(data, []byte("GIF87a")), hasPrefix(data, []byte("GIF89a")):
		return Sniffed{MimeType: "image/gif", Ext: "gif"}, true
	case len(data) >= 12 && hasPrefix(data, []byte("RIFF")) && string(data[8:12]) == "WEBP":
		return Sniffed{MimeType: "image/webp", Ext: "webp"}, true
	case hasPrefix(data, []byte("glTF")):
		return Sniffed{MimeType: "model/gltf-binary", Ext: "glb"}, true
	case looksLikeGltfJSON(data):
		return Sniffed{MimeType: "model/gltf+json", Ext: "gltf"}, true
	default:
		return Sniffed{}, false
	}
}

// hasPrefix returns true if data begins with prefix.
func hasPrefix(data, prefix []byte) bool {
	if len(data) < len(prefix) {
		return false
	}

	for i, b := range prefix {
		if data[i] != b {
			return false
		}
	}

	return true
}

// gltfAsset is the minimal shape needed to detect a GLTF-JSON asset.
type gltfAsset struct {
	Asset struct {
		Version string `json:"version"`
	} `json:"asset"`
}

// looksLikeGltfJSON returns true if data is a valid JSON object whose root
// carries an "asset": { "version": "..." } field.
func looksLikeGltfJSON(data []byte) bool {
	var asset gltfAsset
	if err := json.Unmarshal(data, &asset); err != nil {
		return false
	}

	return asset.Asset.Version != ""
}

// IsWeak reports whether a declared classification is unreliable enough
// that the Content Store should attempt to sniff and rename.
func IsWeak(normalizedMime, ext string) bool {
	return ext == "" || ext == "bin" || normalizedMime == "application/octet-stream"
}

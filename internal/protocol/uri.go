package protocol

import (
	"net/url"
	"path"
	"strings"
)

// AsPath converts a DocumentURI into a normalized, slash-separated path
// suitable for use as a DocumentStore key.
//
// Non-file schemes (e.g. "untitled:") are folded into the path under a
// leading "/<scheme>" segment so every open document gets a stable,
// collision-free key regardless of scheme — this mirrors the original
// server's `as_path_` helper, which maps
// "untitled:/path/to/file%20with%20space" to
// "/untitled/path/to/file with space".
func AsPath(uri DocumentURI) string {
	raw := string(uri)
	u, err := url.Parse(raw)
	if err != nil {
		return NormalizePath(raw)
	}

	decodedPath := u.Path
	if decoded, derr := url.PathUnescape(u.Path); derr == nil {
		decodedPath = decoded
	}

	switch u.Scheme {
	case "", "file":
		return NormalizePath(decodedPath)
	default:
		return NormalizePath("/" + u.Scheme + decodedPath)
	}
}

// NormalizePath collapses "." and ".." segments and redundant separators
// so that two URIs referring to the same resource always produce the
// same store key. NormalizePath is idempotent:
// NormalizePath(NormalizePath(p)) == NormalizePath(p).
func NormalizePath(p string) string {
	if p == "" {
		return "/"
	}
	p = strings.ReplaceAll(p, "\\", "/")
	leadingSlash := strings.HasPrefix(p, "/")
	cleaned := path.Clean(p)
	if leadingSlash && !strings.HasPrefix(cleaned, "/") {
		cleaned = "/" + cleaned
	}
	if cleaned == "." {
		cleaned = "/"
	}
	return cleaned
}

// PathToURI reverses AsPath for local filesystem paths, producing a
// "file://" URI. Non-file store keys (those synthesized from a
// non-file scheme by AsPath) are not round-trippable and are returned
// as-is with a "file://" prefix; callers that need exact round-tripping
// should retain the original URI alongside the normalized path.
func PathToURI(p string) DocumentURI {
	if !strings.HasPrefix(p, "/") {
		p = "/" + p
	}
	return DocumentURI("file://" + p)
}

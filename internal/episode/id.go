package episode

import (
	"encoding/hex"
	"regexp"
	"strings"

	"lukechampine.com/blake3"
)

// idPattern matches the 16 lowercase hex characters produced by ID. Used to
// reject path-traversal attempts before an id is turned into a filename.
var idPattern = regexp.MustCompile(`^[a-f0-9]{16}$`)

// ID derives the deterministic episode identifier for a source URL. The same
// URL always maps to the same id, so repeat requests hit the cache.
func ID(url string) string {
	sum := blake3.Sum256([]byte(strings.TrimSpace(url)))
	return hex.EncodeToString(sum[:8])
}

// ValidID reports whether s has the shape of an episode identifier.
func ValidID(s string) bool {
	return idPattern.MatchString(s)
}

package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
)

// LayoutKey returns the cache key for the layout descriptor of a circuit.
// The key is derived from the canonical CDC text, so semantically equal
// circuits share an entry regardless of how their graphs were built.
func LayoutKey(cdcText string) string {
	return hashKey("layout", cdcText)
}

// ArtifactKey returns the cache key for a rendered artifact.
func ArtifactKey(cdcText, format string, scale float64) string {
	return hashKey("artifact", cdcText, format, scale)
}

// hashKey generates a cache key by hashing the components.
// The key format is: prefix:hash(parts...)
func hashKey(prefix string, parts ...interface{}) string {
	data, _ := json.Marshal(parts)
	hash := sha256.Sum256(data)
	// Full SHA-256 (64 hex chars) to prevent collisions.
	return fmt.Sprintf("%s:%s", prefix, hex.EncodeToString(hash[:]))
}

// Hash computes a SHA-256 hash of the input data.
// Returns the full 64-character hex string.
func Hash(data []byte) string {
	hash := sha256.Sum256(data)
	return hex.EncodeToString(hash[:])
}

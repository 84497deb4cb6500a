package cache

import (
	"crypto/sha256"
	"encoding/hex"
)

// Hash returns the hex-encoded SHA-256 of data.
// Used to derive stable cache keys from request payloads.
func Hash(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// Key joins a namespace with a hashed payload into a cache key.
// Example: Key("tree", payload) -> "tree:ab12...".
func Key(namespace string, payload []byte) string {
	return namespace + ":" + Hash(payload)
}

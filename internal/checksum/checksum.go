// Package checksum computes version tags for optimistic concurrency and file change detection.
package checksum

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
)

// Sum returns the hex-encoded SHA-256 digest of data.
func Sum(data []byte) string {
	h := sha256.Sum256(data)
	return hex.EncodeToString(h[:])
}

// Of returns the digest of the JSON encoding of v, or "" if v cannot be encoded.
func Of(v any) string {
	data, err := json.Marshal(v)
	if err != nil {
		return ""
	}
	return Sum(data)
}

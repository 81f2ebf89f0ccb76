package domain

import (
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"hash"
)

// CacheKey derives the response cache key for a role and prompt.
// Fields are length-prefixed so ("ab", "c") and ("a", "bc") never share a key.
func CacheKey(role Role, prompt string) string {
	h := sha256.New()
	writeField(h, string(role))
	writeField(h, prompt)
	return hex.EncodeToString(h.Sum(nil))
}

func writeField(h hash.Hash, field string) {
	var size [8]byte
	binary.BigEndian.PutUint64(size[:], uint64(len(field)))
	_, _ = h.Write(size[:])
	_, _ = h.Write([]byte(field))
}

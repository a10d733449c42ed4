package canon

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// keyDomain versions the cache-key hash so a future algorithm change
// cannot collide with keys produced today.
const keyDomain = "omnique/cachekey/v1"

// Key builds a cache key from an operation name and its parameters.
//
// The key is operation + ":" + hash(canonical(params)), so the
// operation name stays a readable prefix for prefix invalidation while
// the parameter hash stays fixed-width. Parameter map ordering never
// affects the result.
func Key(operation string, params map[string]any) (string, error) {
	canonical, err := Marshal(params)
	if err != nil {
		return "", fmt.Errorf("cache key for %s: %w", operation, err)
	}
	return operation + ":" + hashWithDomain(keyDomain, canonical), nil
}

// hashWithDomain computes SHA-256 over domain || 0x00 || data. The null
// separator prevents domain/data boundary ambiguity.
func hashWithDomain(domain string, data []byte) string {
	h := sha256.New()
	h.Write([]byte(domain))
	h.Write([]byte{0x00})
	h.Write(data)
	return hex.EncodeToString(h.Sum(nil))
}

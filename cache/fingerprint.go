package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

// Fingerprint derives a content-addressed cache key from the semantic inputs
// of a request. Parts are length-prefixed before hashing so ("ab","c") and
// ("a","bc") never collide.
func Fingerprint(parts ...string) string {
	h := sha256.New()
	for _, p := range parts {
		var lenBuf [8]byte
		n := len(p)
		for i := 7; i >= 0; i-- {
			lenBuf[i] = byte(n)
			n >>= 8
		}
		h.Write(lenBuf[:])
		h.Write([]byte(p))
	}
	return hex.EncodeToString(h.Sum(nil))
}

// NormalizeMPN canonicalizes a manufacturer part number for cache addressing.
// Lookups for "mpn-123 " and "MPN-123" must share one fingerprint.
func NormalizeMPN(mpn string) string {
	return strings.ToUpper(strings.TrimSpace(mpn))
}

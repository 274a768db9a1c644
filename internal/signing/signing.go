// Package signing computes the request signatures the storage provider
// verifies on direct uploads and admin calls.
//
// The provider recomputes the digest independently from the parameters it
// receives, so the canonical form here has to match it byte for byte: keys
// sorted lexicographically, joined as "key=value" pairs with "&", the shared
// secret appended, SHA-256 over the whole string, hex-encoded. Any deviation
// makes every upload fail with a signature mismatch on the provider side.
package signing

import (
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"sort"
	"strings"

	"github.com/sketchmotion/sketchmotion/internal/common"
)

// Canonicalize returns the canonical parameter string: keys sorted
// lexicographically, "key=value" pairs joined by "&". Parameters with empty
// values are dropped, matching the provider, which never signs blanks.
func Canonicalize(params map[string]string) string {
	keys := make([]string, 0, len(params))
	for k, v := range params {
		if v == "" {
			continue
		}
		keys = append(keys, k)
	}
	sort.Strings(keys)

	pairs := make([]string, 0, len(keys))
	for _, k := range keys {
		pairs = append(pairs, k+"="+params[k])
	}
	return strings.Join(pairs, "&")
}

// Digest signs the canonicalized params with the shared secret.
// An empty secret is a misconfiguration, never something to sign with.
func Digest(params map[string]string, secret string) (string, error) {
	if secret == "" {
		return "", common.ErrMisconfigured
	}
	sum := sha256.Sum256([]byte(Canonicalize(params) + secret))
	return hex.EncodeToString(sum[:]), nil
}

// URLToken derives the short token embedded in signed delivery URLs:
// the first 8 bytes of SHA-256 over payload plus secret, base64url
// without padding. The delivery edge recomputes it the same way.
func URLToken(payload, secret string) string {
	sum := sha256.Sum256([]byte(payload + secret))
	return base64.RawURLEncoding.EncodeToString(sum[:8])
}

package fingerprint

import (
	"crypto/sha256"
	"encoding/hex"
)

// Digest returns the SHA-256 hex fingerprint of content. It is used only
// for change detection, not for anything security-sensitive; equality of
// digests stands in for byte-identical content.
func Digest(content []byte) string {
	sum := sha256.Sum256(content)
	return hex.EncodeToString(sum[:])
}

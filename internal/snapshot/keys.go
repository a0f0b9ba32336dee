package snapshot

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

// SourceKey derives the snapshot key of a catalog source from its driver
// and location. Credentials in the location never appear in the key.
func SourceKey(driver string, parts ...string) string {
	hash := sha256.Sum256([]byte(strings.Join(append([]string{driver}, parts...), "\x00")))
	return driver + ":" + hex.EncodeToString(hash[:16])
}

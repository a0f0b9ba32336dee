package catalog

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
)

// SnapshotVersion is bumped whenever the snapshot encoding changes
const SnapshotVersion = 1

// MarshalSnapshot encodes the catalog as JSON. Models are emitted in name
// order so equal catalogs produce identical bytes.
func (c *Catalog) MarshalSnapshot() ([]byte, error) {
	data, err := json.Marshal(document{Version: SnapshotVersion, Models: c.Models()})
	if err != nil {
		return nil, fmt.Errorf("failed to encode catalog snapshot: %w", err)
	}
	return data, nil
}

// UnmarshalSnapshot decodes a catalog produced by MarshalSnapshot
func UnmarshalSnapshot(data []byte) (*Catalog, error) {
	var doc document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to decode catalog snapshot: %w", err)
	}
	if doc.Version != SnapshotVersion {
		return nil, fmt.Errorf("unsupported catalog snapshot version %d", doc.Version)
	}
	return New(doc.Models...)
}

// Fingerprint returns a stable hash of the catalog contents
func (c *Catalog) Fingerprint() (string, error) {
	data, err := c.MarshalSnapshot()
	if err != nil {
		return "", err
	}
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:16]), nil
}

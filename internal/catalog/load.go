package catalog

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

// document is the on-disk shape of a catalog
//
//	models:
//	  - name: Post
//	    primaryKey: { fields: [authorId, slug] }
//	    fields:
//	      - { name: authorId, type: String, required: true }
//	      - { name: author, kind: relation, target: User }
type document struct {
	Version int      `yaml:"version,omitempty" json:"version"`
	Models  []*Model `yaml:"models" json:"models"`
}

// Load reads a YAML catalog document. Unknown keys are rejected.
func Load(r io.Reader) (*Catalog, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var doc document
	if err := dec.Decode(&doc); err != nil {
		if errors.Is(err, io.EOF) {
			return New()
		}
		return nil, fmt.Errorf("failed to parse catalog: %w", err)
	}

	return New(doc.Models...)
}

// Parse reads a YAML catalog document from memory
func Parse(data []byte) (*Catalog, error) {
	return Load(bytes.NewReader(data))
}

// LoadFile reads a YAML catalog document from path
func LoadFile(path string) (*Catalog, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open catalog: %w", err)
	}
	defer f.Close()

	c, err := Load(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return c, nil
}

// WriteYAML writes the catalog as a YAML document that Load reads back
func (c *Catalog) WriteYAML(w io.Writer) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)

	if err := enc.Encode(&document{Models: c.Models()}); err != nil {
		return fmt.Errorf("failed to write catalog: %w", err)
	}
	return enc.Close()
}

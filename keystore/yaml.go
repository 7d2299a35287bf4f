package keystore

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// File is the on-disk layout of a YAML key file:
//
//	keys:
//	  - id: client-1
//	    secret: c2VjcmV0
//	    realm: Acquia
type File struct {
	Keys []Key `yaml:"keys"`
}

// Parse decodes a YAML key document into a Memory store. Every key is
// validated and duplicate IDs are rejected.
func Parse(data []byte) (*Memory, error) {
	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("keystore: parse yaml: %w", err)
	}

	m := NewMemory()
	for i, k := range f.Keys {
		if err := k.Validate(); err != nil {
			return nil, fmt.Errorf("keys[%d]: %w", i, err)
		}

		if _, dup := m.Key(k.ID); dup {
			return nil, fmt.Errorf("keys[%d]: %w: duplicate id %q", i, ErrInvalidKey, k.ID)
		}

		m.keys[k.ID] = k
	}

	return m, nil
}

// LoadFile reads and parses a YAML key file.
func LoadFile(path string) (*Memory, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("keystore: %w", err)
	}

	return Parse(data)
}

// Marshal encodes keys as a YAML key document.
func Marshal(keys []Key) ([]byte, error) {
	return yaml.Marshal(File{Keys: keys})
}

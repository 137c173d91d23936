// Package seed reads a YAML library used to populate an empty store.
package seed

import (
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

// Loader reads a seed file from disk.
type Loader struct {
	filePath string
}

func NewLoader(filePath string) *Loader {
	return &Loader{filePath: filePath}
}

// Load reads and parses the seed file. Unknown keys are an error so that
// typos in field names do not silently drop data.
func (l *Loader) Load() (*Library, error) {
	f, err := os.Open(l.filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open seed file: %w", err)
	}
	defer f.Close()

	dec := yaml.NewDecoder(f)
	dec.KnownFields(true)

	var lib Library
	if err := dec.Decode(&lib); err != nil {
		if errors.Is(err, io.EOF) {
			return &lib, nil // empty file
		}
		return nil, fmt.Errorf("failed to parse seed yaml: %w", err)
	}
	return &lib, nil
}

package build

import (
	"fmt"
	"os"
	"path/filepath"
)

// Output is the produced build artifact. Bytes are loaded lazily on first
// use and cached; the file itself is never mutated.
type Output struct {
	Path string
	Name string

	data []byte
}

// NewOutput creates an Output for the artifact at path.
func NewOutput(path string) *Output {
	return &Output{Path: path, Name: filepath.Base(path)}
}

// Bytes returns the artifact's contents, reading the file on first call.
func (o *Output) Bytes() ([]byte, error) {
	if o.data != nil {
		return o.data, nil
	}
	data, err := os.ReadFile(o.Path)
	if err != nil {
		return nil, fmt.Errorf("read artifact %s: %w", o.Name, err)
	}
	o.data = data
	return o.data, nil
}

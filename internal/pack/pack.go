package pack

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// FileName is the packwiz pack descriptor file name.
const FileName = "pack.toml"

// File represents a packwiz pack.toml descriptor.
type File struct {
	Name       string   `toml:"name"`
	Author     string   `toml:"author,omitempty"`
	Version    string   `toml:"version"`
	PackFormat string   `toml:"pack-format,omitempty"`
	Index      Index    `toml:"index"`
	Versions   Versions `toml:"versions"`
}

// Index describes the pack's index file reference.
type Index struct {
	File       string `toml:"file"`
	HashFormat string `toml:"hash-format"`
	Hash       string `toml:"hash,omitempty"`
}

// Versions holds the pack's target game and loader versions. At most one
// loader field is expected to be set; ResolveLoader enforces exactly one.
type Versions struct {
	Minecraft  string `toml:"minecraft"`
	Fabric     string `toml:"fabric,omitempty"`
	Quilt      string `toml:"quilt,omitempty"`
	Forge      string `toml:"forge,omitempty"`
	LiteLoader string `toml:"liteloader,omitempty"`
}

// Load reads and parses the pack descriptor at path.
func Load(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read pack file: %w", err)
	}
	var f File
	if err := toml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse pack file: %w", err)
	}
	return &f, nil
}

// LoadDir loads the pack descriptor from dir/pack.toml.
func LoadDir(dir string) (*File, error) {
	return Load(filepath.Join(dir, FileName))
}

// Save serializes the descriptor back to path, atomically.
func (f *File) Save(path string) error {
	data, err := toml.Marshal(f)
	if err != nil {
		return fmt.Errorf("serialize pack file: %w", err)
	}
	return writeAtomic(path, data)
}

// SaveDir writes the descriptor to dir/pack.toml.
func (f *File) SaveDir(dir string) error {
	return f.Save(filepath.Join(dir, FileName))
}

// writeAtomic writes data via a temp file in the same directory plus rename,
// so a failed write never leaves a truncated descriptor behind.
func writeAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, ".tmp-*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()

	defer func() {
		if tmpName != "" {
			os.Remove(tmpName)
		}
	}()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}

	if err := os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("rename %s -> %s: %w", tmpName, path, err)
	}
	tmpName = ""
	return nil
}

package scratch

import (
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
)

// Dir is a scratch directory owned by a single pipeline run. The run builds
// and exports inside it; Release removes it and must run on every exit path.
type Dir struct {
	Path string
}

// Manager creates scratch copies of a project directory.
type Manager struct {
	baseDir string
}

// NewManager creates a scratch manager. An empty baseDir means the system
// temp directory.
func NewManager(baseDir string) *Manager {
	return &Manager{baseDir: baseDir}
}

// Acquire creates a fresh scratch directory and copies the project tree
// into it. The .git directory is skipped; neither the export nor the build
// reads it, and it dominates the copy cost on real projects.
func (m *Manager) Acquire(projectDir string) (*Dir, error) {
	path, err := os.MkdirTemp(m.baseDir, "mrpack-*")
	if err != nil {
		return nil, fmt.Errorf("create scratch directory: %w", err)
	}

	if err := copyTree(projectDir, path); err != nil {
		os.RemoveAll(path)
		return nil, fmt.Errorf("copy project into scratch: %w", err)
	}

	return &Dir{Path: path}, nil
}

// Release removes the scratch directory. Safe to call more than once.
func (d *Dir) Release() error {
	if d == nil || d.Path == "" {
		return nil
	}
	if err := os.RemoveAll(d.Path); err != nil {
		return fmt.Errorf("remove scratch directory: %w", err)
	}
	return nil
}

// copyTree copies src's contents into dst, which must already exist.
func copyTree(src, dst string) error {
	return filepath.WalkDir(src, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		rel, err := filepath.Rel(src, path)
		if err != nil {
			return err
		}
		if rel == "." {
			return nil
		}
		if d.IsDir() && d.Name() == ".git" {
			return fs.SkipDir
		}

		target := filepath.Join(dst, rel)
		if d.IsDir() {
			return os.MkdirAll(target, 0o755)
		}
		return copyFile(path, target, d)
	})
}

func copyFile(src, dst string, d fs.DirEntry) error {
	info, err := d.Info()
	if err != nil {
		return err
	}

	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.OpenFile(dst, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, info.Mode().Perm())
	if err != nil {
		return err
	}
	defer out.Close()

	if _, err := io.Copy(out, in); err != nil {
		return fmt.Errorf("copy %s: %w", filepath.Base(src), err)
	}
	return nil
}

package artifact_source

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"strings"
)

const FileSystemSourceIdentifier = "file_system"

// FileSystemSource is an [ArtifactSource] over a local directory laid out like the bucket,
// e.g. a synced copy of the access log prefix. Object keys are slash separated paths relative to Root.
type FileSystemSource struct {
	Root string
}

func NewFileSystemSource(root string) (*FileSystemSource, error) {
	info, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("invalid file system source root: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("file system source root %s is not a directory", root)
	}
	slog.Info("Initialized FileSystemSource", "root", root)
	return &FileSystemSource{Root: root}, nil
}

func (s *FileSystemSource) Identifier() string {
	return FileSystemSourceIdentifier
}

func (s *FileSystemSource) Close() error {
	return nil
}

// ListObjects implements ArtifactSource
func (s *FileSystemSource) ListObjects(ctx context.Context, prefix string, fn func(key string) error) error {
	// only walk the deepest directory the prefix names
	dir := path.Dir(prefix + "x")
	walkRoot := filepath.Join(s.Root, filepath.FromSlash(dir))

	err := filepath.WalkDir(walkRoot, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if d.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(s.Root, p)
		if err != nil {
			return err
		}
		key := filepath.ToSlash(rel)
		if !strings.HasPrefix(key, prefix) {
			return nil
		}
		return fn(key)
	})
	if errors.Is(err, fs.ErrNotExist) {
		// nothing under this prefix
		return nil
	}
	return err
}

// GetObject implements ArtifactSource
func (s *FileSystemSource) GetObject(_ context.Context, key string) ([]byte, error) {
	data, err := os.ReadFile(filepath.Join(s.Root, filepath.FromSlash(key)))
	if err != nil {
		return nil, fmt.Errorf("failed to read object %s: %w", key, err)
	}
	return data, nil
}

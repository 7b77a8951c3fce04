package flatfile

import (
	"context"
	"os"
	"path/filepath"

	"github.com/m-mizutani/goerr/v2"
)

// Storage reads and replaces whole named files
type Storage interface {
	// Read returns found=false when the file does not exist
	Read(ctx context.Context, name string) (data []byte, found bool, err error)

	// Write replaces the file. Readers see either the old or the new content, never a mix.
	Write(ctx context.Context, name string, data []byte) error
}

// LocalStorage keeps files in a local directory
type LocalStorage struct {
	dir string
}

// NewLocalStorage creates a Storage rooted at dir. The directory is created on first write.
func NewLocalStorage(dir string) *LocalStorage {
	return &LocalStorage{dir: dir}
}

func (s *LocalStorage) path(name string) string {
	return filepath.Join(s.dir, name)
}

// Read implements Storage
func (s *LocalStorage) Read(ctx context.Context, name string) ([]byte, bool, error) {
	data, err := os.ReadFile(s.path(name))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, false, nil
		}
		return nil, false, goerr.Wrap(err, "failed to read file", goerr.V("path", s.path(name)))
	}
	return data, true, nil
}

// Write implements Storage by writing a temporary file in the same directory
// and renaming it over the target
func (s *LocalStorage) Write(ctx context.Context, name string, data []byte) error {
	outPath := s.path(name)
	dir := filepath.Dir(outPath)

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return goerr.Wrap(err, "failed to create directory", goerr.V("dir", dir))
	}

	tmp, err := os.CreateTemp(dir, ".tmp-"+filepath.Base(name)+"-*")
	if err != nil {
		return goerr.Wrap(err, "failed to create temporary file", goerr.V("dir", dir))
	}
	tmpName := tmp.Name()

	// Removing after a successful rename is a no-op
	defer func() {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
	}()

	if _, err := tmp.Write(data); err != nil {
		return goerr.Wrap(err, "failed to write temporary file", goerr.V("path", tmpName))
	}
	if err := tmp.Sync(); err != nil {
		return goerr.Wrap(err, "failed to sync temporary file", goerr.V("path", tmpName))
	}
	if err := tmp.Close(); err != nil {
		return goerr.Wrap(err, "failed to close temporary file", goerr.V("path", tmpName))
	}

	if err := os.Rename(tmpName, outPath); err != nil {
		return goerr.Wrap(err, "failed to replace file", goerr.V("path", outPath))
	}

	if d, err := os.Open(dir); err == nil {
		_ = d.Sync()
		_ = d.Close()
	}

	return nil
}

package fs

import (
	"context"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"golang.org/x/crypto/sha3"

	"github.com/bft-labs/lockstep/internal/domain"
	"github.com/bft-labs/lockstep/internal/ports"
)

// DefaultUploadDir is the directory uploads land in, relative to the
// working directory.
const DefaultUploadDir = "uploads"

// DiskStore implements ports.UploadStore on a local directory.
// Concurrent writers of the same name race; the last writer wins.
type DiskStore struct {
	dir string
}

// NewDiskStore creates a store rooted at dir.
func NewDiskStore(dir string) *DiskStore {
	if dir == "" {
		dir = DefaultUploadDir
	}
	return &DiskStore{dir: dir}
}

// Dir returns the upload directory.
func (s *DiskStore) Dir() string {
	return s.dir
}

// PathFor returns the location name would be stored at.
func (s *DiskStore) PathFor(name string) string {
	return filepath.Join(s.dir, name)
}

// Put writes r to <dir>/<name>, truncating any existing file.
// The write is not atomic: a failure part way leaves a truncated file.
func (s *DiskStore) Put(ctx context.Context, name string, r io.Reader) (ports.StoredObject, error) {
	if err := domain.ValidateFileName(name); err != nil {
		return ports.StoredObject{}, err
	}
	if err := ctx.Err(); err != nil {
		return ports.StoredObject{}, err
	}

	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return ports.StoredObject{}, fmt.Errorf("create upload dir: %w", err)
	}

	path := s.PathFor(name)
	f, err := os.Create(path)
	if err != nil {
		return ports.StoredObject{}, fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()

	hash := sha3.New256()
	n, err := io.Copy(io.MultiWriter(f, hash), r)
	if err != nil {
		return ports.StoredObject{}, fmt.Errorf("write %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		return ports.StoredObject{}, fmt.Errorf("close %s: %w", path, err)
	}

	return ports.StoredObject{
		Path:   path,
		Size:   n,
		Digest: hex.EncodeToString(hash.Sum(nil)),
	}, nil
}

package fs

import (
	"bytes"
	"context"
	"encoding/hex"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"golang.org/x/crypto/sha3"

	"github.com/bft-labs/lockstep/internal/domain"
)

func TestDiskStore_Put(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "uploads")
	store := NewDiskStore(dir)

	obj, err := store.Put(context.Background(), "sample.txt", strings.NewReader("hello"))
	if err != nil {
		t.Fatalf("Put() error = %v", err)
	}

	wantPath := filepath.Join(dir, "sample.txt")
	if obj.Path != wantPath {
		t.Errorf("Path = %q, want %q", obj.Path, wantPath)
	}
	if obj.Size != 5 {
		t.Errorf("Size = %d, want 5", obj.Size)
	}
	sum := sha3.Sum256([]byte("hello"))
	if obj.Digest != hex.EncodeToString(sum[:]) {
		t.Errorf("Digest = %s, want sha3-256 of content", obj.Digest)
	}

	data, err := os.ReadFile(wantPath)
	if err != nil {
		t.Fatalf("read stored file: %v", err)
	}
	if string(data) != "hello" {
		t.Errorf("content = %q, want %q", data, "hello")
	}
}

func TestDiskStore_PutOverwrites(t *testing.T) {
	store := NewDiskStore(t.TempDir())
	ctx := context.Background()

	if _, err := store.Put(ctx, "sample.txt", strings.NewReader("first version, longer")); err != nil {
		t.Fatalf("first Put() error = %v", err)
	}
	if _, err := store.Put(ctx, "sample.txt", strings.NewReader("second")); err != nil {
		t.Fatalf("second Put() error = %v", err)
	}

	data, err := os.ReadFile(store.PathFor("sample.txt"))
	if err != nil {
		t.Fatalf("read stored file: %v", err)
	}
	if string(data) != "second" {
		t.Errorf("content = %q, want %q", data, "second")
	}
}

func TestDiskStore_PutEmptyContent(t *testing.T) {
	store := NewDiskStore(t.TempDir())

	obj, err := store.Put(context.Background(), "empty.bin", bytes.NewReader(nil))
	if err != nil {
		t.Fatalf("Put() error = %v", err)
	}
	if obj.Size != 0 {
		t.Errorf("Size = %d, want 0", obj.Size)
	}
}

func TestDiskStore_PutRejectsInvalidName(t *testing.T) {
	dir := t.TempDir()
	store := NewDiskStore(filepath.Join(dir, "uploads"))

	_, err := store.Put(context.Background(), "../escape.txt", strings.NewReader("x"))
	if !errors.Is(err, domain.ErrInvalidFileName) {
		t.Fatalf("Put() error = %v, want ErrInvalidFileName", err)
	}
	if _, err := os.Stat(filepath.Join(dir, "escape.txt")); !os.IsNotExist(err) {
		t.Errorf("file escaped upload dir: %v", err)
	}
}

func TestDiskStore_PutUnwritableDir(t *testing.T) {
	dir := t.TempDir()
	// A regular file where the upload directory should be.
	blocker := filepath.Join(dir, "uploads")
	if err := os.WriteFile(blocker, []byte("x"), 0o644); err != nil {
		t.Fatalf("write blocker: %v", err)
	}

	store := NewDiskStore(blocker)
	if _, err := store.Put(context.Background(), "a.txt", strings.NewReader("x")); err == nil {
		t.Fatal("Put() expected error for unwritable dir")
	}
}

func TestNewDiskStore_DefaultDir(t *testing.T) {
	if got := NewDiskStore("").Dir(); got != DefaultUploadDir {
		t.Errorf("Dir() = %q, want %q", got, DefaultUploadDir)
	}
}

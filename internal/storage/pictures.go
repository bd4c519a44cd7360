// Package storage stores uploaded profile pictures and hands back an
// opaque reference string; the user record keeps only the reference.
package storage

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// PictureStore saves an uploaded image and returns a stable reference.
type PictureStore interface {
	Save(r io.Reader, originalName string) (string, error)
}

// DiskStore writes pictures under Dir with random names so concurrent
// uploads never collide.
type DiskStore struct {
	Dir string
}

func NewDiskStore(dir string) *DiskStore { return &DiskStore{Dir: dir} }

var allowedExts = map[string]bool{".jpg": true, ".jpeg": true, ".png": true}

// Save stores the picture and returns its generated filename.
func (s *DiskStore) Save(r io.Reader, originalName string) (string, error) {
	ext := strings.ToLower(filepath.Ext(originalName))
	if !allowedExts[ext] {
		return "", fmt.Errorf("unsupported picture type %q", ext)
	}
	if err := os.MkdirAll(s.Dir, 0o755); err != nil {
		return "", fmt.Errorf("picture dir: %w", err)
	}
	name := strings.ReplaceAll(uuid.New().String(), "-", "") + ext
	f, err := os.Create(filepath.Join(s.Dir, name))
	if err != nil {
		return "", fmt.Errorf("create picture: %w", err)
	}
	defer f.Close()
	if _, err := io.Copy(f, r); err != nil {
		return "", fmt.Errorf("write picture: %w", err)
	}
	return name, nil
}

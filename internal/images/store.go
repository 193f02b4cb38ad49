package images

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"

	"github.com/Skotchmaster/storefront/internal/models"
)

var ErrExtension = errors.New("image extension not allowed")

var allowed = map[string]bool{".jpg": true, ".jpeg": true, ".png": true}

// Store keeps uploaded product images in a single directory.
type Store struct {
	Dir string
}

func Allowed(filename string) bool {
	return allowed[strings.ToLower(filepath.Ext(filename))]
}

// Save writes the upload under a random 16 hex char name, keeping the extension.
func (s *Store) Save(fh *multipart.FileHeader) (string, error) {
	if !Allowed(fh.Filename) {
		return "", ErrExtension
	}
	name, err := randomName(strings.ToLower(filepath.Ext(fh.Filename)))
	if err != nil {
		return "", err
	}

	src, err := fh.Open()
	if err != nil {
		return "", fmt.Errorf("open upload: %w", err)
	}
	defer src.Close()

	if err := os.MkdirAll(s.Dir, 0o755); err != nil {
		return "", fmt.Errorf("upload dir: %w", err)
	}
	dst, err := os.OpenFile(filepath.Join(s.Dir, name), os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return "", fmt.Errorf("create image: %w", err)
	}
	if _, err := io.Copy(dst, src); err != nil {
		dst.Close()
		_ = os.Remove(dst.Name())
		return "", fmt.Errorf("write image: %w", err)
	}
	if err := dst.Close(); err != nil {
		return "", fmt.Errorf("write image: %w", err)
	}
	return name, nil
}

// Delete removes a stored image. The default placeholder and missing files are ignored.
func (s *Store) Delete(name string) error {
	if name == "" || name == models.DefaultImage {
		return nil
	}
	err := os.Remove(filepath.Join(s.Dir, filepath.Base(name)))
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}

func randomName(ext string) (string, error) {
	b := make([]byte, 8)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b) + ext, nil
}

// Package attachments stores uploaded day-book receipts on local disk.
package attachments

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// MaxSize is the largest accepted upload in bytes.
const MaxSize = 10 << 20

// ErrNotImage is returned when the content is not a supported image.
var ErrNotImage = errors.New("attachment is not an image")

var extensions = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/gif":  ".gif",
	"image/webp": ".webp",
}

// Store writes attachments under a single directory with generated names.
type Store struct {
	dir string
}

// NewStore returns a store rooted at dir. The directory is created on first save.
func NewStore(dir string) *Store {
	return &Store{dir: dir}
}

// Dir is the directory files are written to.
func (s *Store) Dir() string { return s.dir }

// Save sniffs the content type, writes r to a new file, and returns the file name.
func (s *Store) Save(r io.Reader) (string, error) {
	head := make([]byte, 512)
	n, err := io.ReadFull(r, head)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("read attachment: %w", err)
	}
	head = head[:n]

	ext, ok := extensions[http.DetectContentType(head)]
	if !ok {
		return "", ErrNotImage
	}

	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return "", fmt.Errorf("create upload directory: %w", err)
	}

	name := uuid.NewString() + ext
	path := filepath.Join(s.dir, name)
	if err := writeFile(path, io.MultiReader(bytes.NewReader(head), r)); err != nil {
		_ = os.Remove(path)
		return "", err
	}
	return name, nil
}

func writeFile(path string, r io.Reader) error {
	dst, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create attachment: %w", err)
	}
	if _, err := io.Copy(dst, r); err != nil {
		dst.Close()
		return fmt.Errorf("write attachment: %w", err)
	}
	if err := dst.Close(); err != nil {
		return fmt.Errorf("close attachment: %w", err)
	}
	return nil
}

// URL builds the public URL of a stored file.
func URL(baseURL, name string) string {
	return strings.TrimRight(baseURL, "/") + "/uploads/" + name
}

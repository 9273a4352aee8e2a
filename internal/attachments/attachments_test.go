package attachments

import (
	"bytes"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"testing/iotest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var pngHeader = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR\x00\x00\x00\x01\x00\x00\x00\x01\x08\x06\x00\x00\x00")

func TestSaveImage(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "uploads")
	s := NewStore(dir)

	name, err := s.Save(bytes.NewReader(pngHeader))
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(name, ".png"))

	data, err := os.ReadFile(filepath.Join(dir, name))
	require.NoError(t, err)
	assert.Equal(t, pngHeader, data)
}

func TestSaveRejectsNonImage(t *testing.T) {
	s := NewStore(t.TempDir())
	_, err := s.Save(strings.NewReader("just some text"))
	assert.ErrorIs(t, err, ErrNotImage)
}

func TestURL(t *testing.T) {
	assert.Equal(t, "https://api.example.com/uploads/a.png", URL("https://api.example.com/", "a.png"))
	assert.Equal(t, "/uploads/a.png", URL("", "a.png"))
}

func TestSaveRemovesPartialFile(t *testing.T) {
	dir := t.TempDir()
	s := NewStore(dir)
	broken := errors.New("connection reset")
	r := io.MultiReader(bytes.NewReader(pngHeader), bytes.NewReader(make([]byte, 600)), iotest.ErrReader(broken))

	_, err := s.Save(r)
	assert.ErrorIs(t, err, broken)

	files, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, files)
}

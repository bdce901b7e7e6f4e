// Package testutil builds in-memory archive fixtures for tests.
package testutil

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

// Member is a fixture file: a stored path and its content.
type Member struct {
	Name string
	Data []byte
}

// SampleMembers returns a small fixture set with a nested path and an
// empty file. None of the contents contain a format signature.
func SampleMembers() []Member {
	return []Member{
		{Name: "hello.txt", Data: []byte("hello, world\n")},
		{Name: "dir/nested.txt", Data: []byte("nested content\n")},
		{Name: "empty.txt", Data: nil},
	}
}

// Names returns the stored paths of members in order.
func Names(members []Member) []string {
	names := make([]string, len(members))
	for i, m := range members {
		names[i] = m.Name
	}
	return names
}

// SeekOnly wraps a byte slice as an io.ReadSeeker that deliberately does
// not implement io.ReaderAt, so callers exercise their seek-based paths.
type SeekOnly struct {
	r *bytes.Reader
}

// NewSeekOnly returns a SeekOnly reader over data.
func NewSeekOnly(data []byte) *SeekOnly {
	return &SeekOnly{r: bytes.NewReader(data)}
}

// Read implements io.Reader.
func (s *SeekOnly) Read(p []byte) (int, error) {
	return s.r.Read(p)
}

// Seek implements io.Seeker.
func (s *SeekOnly) Seek(offset int64, whence int) (int64, error) {
	return s.r.Seek(offset, whence)
}

var _ io.ReadSeeker = (*SeekOnly)(nil)

// WriteFile writes data to a file named name inside a per-test directory
// and returns its path.
func WriteFile(t testing.TB, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, data, 0o644))
	return path
}

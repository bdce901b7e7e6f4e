package testutil

import (
	"archive/tar"
	"bytes"
	"io"
	"testing"
	"time"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zip"
	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
	"github.com/stretchr/testify/require"
	"github.com/ulikunitz/xz"
	"github.com/ulikunitz/xz/lzma"

	"github.com/meigma/archive/internal/arctype"
)

var fixtureTime = time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)

// BuildTar returns a ustar archive holding members in order.
func BuildTar(t testing.TB, members ...Member) []byte {
	t.Helper()

	var buf bytes.Buffer
	tw := tar.NewWriter(&buf)
	for _, m := range members {
		require.NoError(t, tw.WriteHeader(&tar.Header{
			Name:     m.Name,
			Size:     int64(len(m.Data)),
			Mode:     0o644,
			Typeflag: tar.TypeReg,
			ModTime:  fixtureTime,
			Format:   tar.FormatUSTAR,
		}))
		_, err := tw.Write(m.Data)
		require.NoError(t, err)
	}
	require.NoError(t, tw.Close())
	return buf.Bytes()
}

// BuildZip returns a zip archive holding members in order.
func BuildZip(t testing.TB, members ...Member) []byte {
	t.Helper()

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for _, m := range members {
		w, err := zw.CreateHeader(&zip.FileHeader{
			Name:     m.Name,
			Method:   zip.Deflate,
			Modified: fixtureTime,
		})
		require.NoError(t, err)
		_, err = w.Write(m.Data)
		require.NoError(t, err)
	}
	require.NoError(t, zw.Close())
	return buf.Bytes()
}

// Compress encodes data with the given compression. Bzip2 has no encoder
// available to tests; use the fixtures under testdata instead.
func Compress(t testing.TB, c arctype.Compression, data []byte) []byte {
	t.Helper()

	var buf bytes.Buffer
	var w io.WriteCloser
	var err error
	switch c {
	case arctype.CompressionNone:
		return data
	case arctype.CompressionGzip:
		w = gzip.NewWriter(&buf)
	case arctype.CompressionXz:
		w, err = xz.NewWriter(&buf)
	case arctype.CompressionLzma:
		w, err = lzma.NewWriter(&buf)
	case arctype.CompressionZstd:
		w, err = zstd.NewWriter(&buf)
	case arctype.CompressionLz4:
		w = lz4.NewWriter(&buf)
	default:
		t.Fatalf("no test encoder for %s", c)
	}
	require.NoError(t, err)

	_, err = w.Write(data)
	require.NoError(t, err)
	require.NoError(t, w.Close())
	return buf.Bytes()
}

package http_test

import (
	"bytes"
	"io"
	nethttp "net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meigma/archive"
	archivehttp "github.com/meigma/archive/http"
	"github.com/meigma/archive/internal/testutil"
)

func serve(t *testing.T, data []byte, requests *atomic.Int64) string {
	t.Helper()
	server := httptest.NewServer(nethttp.HandlerFunc(func(w nethttp.ResponseWriter, r *nethttp.Request) {
		if requests != nil {
			requests.Add(1)
		}
		nethttp.ServeContent(w, r, "data", time.Time{}, bytes.NewReader(data))
	}))
	t.Cleanup(server.Close)
	return server.URL
}

func TestSource_ReadAt(t *testing.T) {
	t.Parallel()

	data := []byte("hello world")
	src, err := archivehttp.NewSource(serve(t, data, nil))
	require.NoError(t, err)
	require.Equal(t, int64(len(data)), src.Size())

	tests := []struct {
		name    string
		bufSize int
		offset  int64
		wantN   int
		wantErr error
		want    string
	}{
		{name: "read from middle", bufSize: 5, offset: 6, wantN: 5, want: "world"},
		{name: "read past end returns EOF", bufSize: 10, offset: int64(len(data) - 3), wantN: 3, wantErr: io.EOF, want: "rld"},
		{name: "offset at end", bufSize: 4, offset: int64(len(data)), wantErr: io.EOF},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			buf := make([]byte, tt.bufSize)
			n, err := src.ReadAt(buf, tt.offset)
			assert.Equal(t, tt.wantErr, err)
			assert.Equal(t, tt.wantN, n)
			assert.Equal(t, tt.want, string(buf[:n]))
		})
	}
}

func TestNewSource_RangeUnsupported(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(nethttp.HandlerFunc(func(w nethttp.ResponseWriter, _ *nethttp.Request) {
		_, _ = w.Write([]byte("no ranges here"))
	}))
	t.Cleanup(server.Close)

	_, err := archivehttp.NewSource(server.URL)
	require.ErrorIs(t, err, archivehttp.ErrRangeUnsupported)
}

func TestSource_OpensRemoteZip(t *testing.T) {
	t.Parallel()

	var requests atomic.Int64
	data := testutil.BuildZip(t, testutil.SampleMembers()...)
	src, err := archivehttp.NewSource(serve(t, data, &requests), archivehttp.WithHeader("User-Agent", "archive-test"))
	require.NoError(t, err)

	o, err := archive.OpenReaderAt(src, src.Size())
	require.NoError(t, err)
	a, ok := o.(*archive.Archive)
	require.True(t, ok)
	defer a.Close()
	assert.Equal(t, archive.ContainerZip, a.Kind().Container)

	cur, err := a.Entries()
	require.NoError(t, err)
	assert.Equal(t, testutil.SampleMembers(), testutil.Drain(t, cur))
	assert.Greater(t, requests.Load(), int64(1))
}

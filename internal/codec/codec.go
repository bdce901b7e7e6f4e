// Package codec wraps byte sources in decompressing readers.
package codec

import (
	"compress/bzip2"
	"errors"
	"fmt"
	"io"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
	"github.com/ulikunitz/xz"
	"github.com/ulikunitz/xz/lzma"

	"github.com/meigma/archive/internal/arctype"
)

// DefaultMaxDecoderMemory is the default zstd decoder memory limit (256MB).
const DefaultMaxDecoderMemory = 256 << 20

type config struct {
	maxDecoderMemory   uint64
	decoderConcurrency int
	decoderLowmem      bool
}

// Option configures decoders created by Open.
type Option func(*config)

// WithMaxDecoderMemory limits the memory used by the zstd decoder.
// Set to 0 to disable the limit.
func WithMaxDecoderMemory(limit uint64) Option {
	return func(c *config) {
		c.maxDecoderMemory = limit
	}
}

// WithDecoderConcurrency sets the zstd decoder concurrency (default: 1).
// Values < 0 are treated as 0 (use GOMAXPROCS).
func WithDecoderConcurrency(n int) Option {
	return func(c *config) {
		if n < 0 {
			n = 0
		}
		c.decoderConcurrency = n
	}
}

// WithDecoderLowmem sets whether the zstd decoder should use low-memory mode (default: false).
func WithDecoderLowmem(enabled bool) Option {
	return func(c *config) {
		c.decoderLowmem = enabled
	}
}

// Open wraps r in a reader that decodes compression c.
//
// Errors while constructing the decoder and any non-EOF error returned by
// the decoder's Read are wrapped with arctype.ErrDecompression. Closing the
// returned reader releases the decoder but never closes r.
func Open(c arctype.Compression, r io.Reader, opts ...Option) (io.ReadCloser, error) {
	cfg := config{
		maxDecoderMemory:   DefaultMaxDecoderMemory,
		decoderConcurrency: 1,
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	dec, release, err := newDecoder(c, r, &cfg)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", arctype.ErrDecompression, c, err)
	}
	return &Reader{r: dec, release: release, compression: c}, nil
}

func newDecoder(c arctype.Compression, r io.Reader, cfg *config) (io.Reader, func() error, error) {
	noop := func() error { return nil }
	switch c {
	case arctype.CompressionNone:
		return r, noop, nil
	case arctype.CompressionGzip:
		zr, err := gzip.NewReader(r)
		if err != nil {
			return nil, nil, err
		}
		return zr, zr.Close, nil
	case arctype.CompressionBzip2:
		return bzip2.NewReader(r), noop, nil
	case arctype.CompressionXz:
		xr, err := xz.NewReader(r)
		if err != nil {
			return nil, nil, err
		}
		return xr, noop, nil
	case arctype.CompressionLzma:
		lr, err := lzma.NewReader(r)
		if err != nil {
			return nil, nil, err
		}
		return lr, noop, nil
	case arctype.CompressionZstd:
		zopts := []zstd.DOption{
			zstd.WithDecoderConcurrency(cfg.decoderConcurrency),
			zstd.WithDecoderLowmem(cfg.decoderLowmem),
		}
		if cfg.maxDecoderMemory != 0 {
			zopts = append(zopts, zstd.WithDecoderMaxMemory(cfg.maxDecoderMemory))
		}
		dec, err := zstd.NewReader(r, zopts...)
		if err != nil {
			return nil, nil, err
		}
		return dec, func() error {
			dec.Close()
			return nil
		}, nil
	case arctype.CompressionLz4:
		return lz4.NewReader(r), noop, nil
	default:
		return nil, nil, fmt.Errorf("compression %d: %w", c, arctype.ErrUnsupported)
	}
}

// Reader is a decoding stream that tags decoder failures.
type Reader struct {
	r           io.Reader
	release     func() error
	compression arctype.Compression
	closed      bool
}

// Read implements io.Reader.
func (d *Reader) Read(p []byte) (int, error) {
	if d.closed {
		return 0, arctype.ErrClosed
	}
	n, err := d.r.Read(p)
	if err != nil && err != io.EOF && !errors.Is(err, arctype.ErrDecompression) {
		err = fmt.Errorf("%w: %s: %w", arctype.ErrDecompression, d.compression, err)
	}
	return n, err
}

// Close releases the decoder. It is safe to call more than once.
func (d *Reader) Close() error {
	if d.closed {
		return nil
	}
	d.closed = true
	return d.release()
}

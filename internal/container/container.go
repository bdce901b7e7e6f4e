// Package container opens archive containers and drives their entry cursors.
//
// Each format adapts its library's member table or header stream to a
// lending.AdvanceFunc; the lending package enforces the one-cursor,
// one-entry borrowing rules uniformly.
package container

import (
	"errors"
	"fmt"
	"io"

	"github.com/meigma/archive/internal/arctype"
	"github.com/meigma/archive/internal/cabinet"
	"github.com/meigma/archive/internal/codec"
	"github.com/meigma/archive/internal/lending"
)

// Reader is an opened container.
type Reader interface {
	// Entries returns a cursor over the container's members. Only one
	// cursor may be open at a time.
	Entries() (arctype.Cursor, error)

	// Capability reports whether Entries may be called more than once.
	Capability() arctype.Capability

	// Close releases decoder state. It does not close the source.
	Close() error
}

// Option configures Open.
type Option func(*options)

type options struct {
	codec         []codec.Option
	maxFolderSize uint64
}

// WithCodec passes decoder options to the compression beneath tar.
func WithCodec(opts ...codec.Option) Option {
	return func(o *options) {
		o.codec = append(o.codec, opts...)
	}
}

// WithMaxFolderSize limits the decoded size of one cabinet folder.
// Set limit to 0 to disable the limit.
func WithMaxFolderSize(limit uint64) Option {
	return func(o *options) {
		o.maxFolderSize = limit
	}
}

// Open reads the directory or first header of a k container from src.
// Compression is only supported beneath tar.
//
// Open panics if k names a container without a reader; kinds come from
// the sniffer and the scanner, which only produce supported containers.
func Open(k arctype.Kind, src Source, opts ...Option) (Reader, error) {
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	if k.Compression != arctype.CompressionNone && k.Container != arctype.ContainerTar {
		return nil, fmt.Errorf("%s: %w", k, arctype.ErrUnsupported)
	}

	var (
		r   Reader
		err error
	)
	switch k.Container {
	case arctype.ContainerCabinet:
		r, err = openCabinet(src, cabinet.WithMaxFolderSize(o.maxFolderSize))
	case arctype.ContainerZip:
		r, err = openZip(src)
	case arctype.ContainerSevenZip:
		r, err = openSevenZip(src)
	case arctype.ContainerTar:
		r, err = openTar(src, k.Compression, o.codec...)
	case arctype.ContainerRar:
		r, err = openRar(src)
	default:
		panic(fmt.Sprintf("container: no reader for %s", k))
	}
	if err != nil {
		return nil, err
	}
	return r, nil
}

// Supported reports whether Open accepts k.
func Supported(k arctype.Kind) bool {
	switch k.Container {
	case arctype.ContainerCabinet, arctype.ContainerZip, arctype.ContainerSevenZip, arctype.ContainerRar:
		return k.Compression == arctype.CompressionNone
	case arctype.ContainerTar:
		return k.Compression <= arctype.CompressionLz4
	default:
		return false
	}
}

func randomAccess(src Source, c arctype.Container) (io.ReaderAt, int64, error) {
	ra, size, ok := src.RandomAccess()
	if !ok {
		return nil, 0, fmt.Errorf("%s needs a random-access source: %w", c, arctype.ErrUnsupported)
	}
	return ra, size, nil
}

// formatError tags err as a malformed container unless it already
// carries a decoder failure.
func formatError(c arctype.Container, err error) error {
	if errors.Is(err, arctype.ErrDecompression) || errors.Is(err, arctype.ErrFormat) {
		return fmt.Errorf("%s: %w", c, err)
	}
	return fmt.Errorf("%w: %s: %w", arctype.ErrFormat, c, err)
}

// indexed is the shared state of random-access readers: a member table of
// fixed length, opened one index at a time.
type indexed struct {
	lender lending.Lender
	closed bool
}

// cursor lends a cursor walking indices [0, n), opening each with open.
// A failed open is reported for that index only.
func (x *indexed) cursor(n int, open func(i int) (lending.Member, error)) (arctype.Cursor, error) {
	if x.closed {
		return nil, arctype.ErrClosed
	}
	i := 0
	c, err := x.lender.Lend(func() (lending.Member, error) {
		if x.closed {
			return lending.Member{}, lending.Fatal(arctype.ErrClosed)
		}
		if i >= n {
			return lending.Member{}, io.EOF
		}
		idx := i
		i++
		return open(idx)
	}, nil)
	if err != nil {
		return nil, err
	}
	return c, nil
}

func (x *indexed) Capability() arctype.Capability {
	return arctype.RandomAccess
}

func (x *indexed) Close() error {
	x.closed = true
	return nil
}

// sequential is the shared state of stream readers, which enumerate once.
type sequential struct {
	lender lending.Lender
	used   bool
	closed bool
}

func (s *sequential) cursor(advance lending.AdvanceFunc) (arctype.Cursor, error) {
	switch {
	case s.closed:
		return nil, arctype.ErrClosed
	case s.lender.Active():
		return nil, arctype.ErrCursorActive
	case s.used:
		return nil, arctype.ErrNotRepeatable
	}
	c, err := s.lender.Lend(func() (lending.Member, error) {
		if s.closed {
			return lending.Member{}, lending.Fatal(arctype.ErrClosed)
		}
		return advance()
	}, nil)
	if err != nil {
		return nil, err
	}
	s.used = true
	return c, nil
}

func (s *sequential) Capability() arctype.Capability {
	return arctype.Sequential
}

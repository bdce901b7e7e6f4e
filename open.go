package archive

import (
	"bytes"
	"fmt"
	"io"
	"os"

	"github.com/meigma/archive/internal/arctype"
	"github.com/meigma/archive/internal/container"
	"github.com/meigma/archive/internal/sizing"
	"github.com/meigma/archive/internal/sniff"
)

// Opened is the result of Open: either a classified *Archive or, when no
// signature identifies the source, a *Scanner over its bytes.
//
// Use a type switch to tell them apart, or Walk to enumerate either.
type Opened interface {
	Close() error

	opened()
}

var (
	_ Opened = (*Archive)(nil)
	_ Opened = (*Scanner)(nil)
)

// Open opens the file at path.
//
// The file's leading bytes select a container and compression. A
// classified file stays open until the returned Archive is closed. An
// unclassified file is read into memory in full (see WithMaxScanSize),
// closed, and returned as a Scanner.
func Open(path string, opts ...Option) (Opened, error) {
	cfg := newConfig(opts)

	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	o, err := openSource(f, &cfg)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	if a, ok := o.(*Archive); ok {
		a.source = f
		return a, nil
	}
	if err := f.Close(); err != nil {
		return nil, fmt.Errorf("close %s: %w", path, err)
	}
	return o, nil
}

// OpenReader opens the archive read from r.
//
// Random access is used when r is an io.ReaderAt or an io.Seeker; reading
// starts at r's current offset. A forward-only r holding a random-access
// container (cabinet, zip, seven-zip) is buffered in memory first, bounded
// by WithMaxScanSize. The caller keeps ownership of r and must keep it
// open while the result is in use.
func OpenReader(r io.Reader, opts ...Option) (Opened, error) {
	cfg := newConfig(opts)
	return openSource(r, &cfg)
}

// OpenReaderAt opens the size-byte archive readable through r, such as a
// remote source from the http subpackage. The caller keeps ownership of r.
func OpenReaderAt(r io.ReaderAt, size int64, opts ...Option) (Opened, error) {
	cfg := newConfig(opts)
	return openSource(io.NewSectionReader(r, 0, size), &cfg)
}

// OpenBytes opens the archive held in b. The result refers to b directly;
// b must not be modified while the result is in use.
func OpenBytes(b []byte, opts ...Option) (Opened, error) {
	cfg := newConfig(opts)
	k, ok := sniff.Classify(b[:min(len(b), sniff.PrefixSize)])
	if !ok {
		cfg.log().Debug("source not classified, scanning", "size", len(b))
		return scanned(b, cfg)
	}
	cfg.log().Debug("classified source", "kind", k.String())
	a, err := newArchive(k, container.FromReaderAt(bytes.NewReader(b), int64(len(b))), &cfg)
	if err != nil {
		return nil, err
	}
	return a, nil
}

// OpenKind opens r as an archive of kind k without sniffing.
// It fails with ErrUnsupported for kinds that have no reader.
func OpenKind(r io.Reader, k Kind, opts ...Option) (*Archive, error) {
	cfg := newConfig(opts)
	if !container.Supported(k) {
		return nil, fmt.Errorf("%s: %w", k, ErrUnsupported)
	}
	src, err := container.FromReader(r)
	if err != nil {
		return nil, err
	}
	return openClassified(k, src, &cfg)
}

// Sniff classifies prefix, the leading bytes of a source. The boolean is
// false when no known signature matches; that is not an error.
func Sniff(prefix []byte) (Kind, bool) {
	return sniff.Classify(prefix)
}

// SniffFile classifies the file at path by its leading bytes.
func SniffFile(path string) (Kind, bool, error) {
	f, err := os.Open(path)
	if err != nil {
		return Kind{}, false, err
	}
	defer f.Close()

	prefix, err := sniff.ReadPrefix(f)
	if err != nil {
		return Kind{}, false, fmt.Errorf("sniff %s: %w", path, err)
	}
	k, ok := sniff.Classify(prefix)
	return k, ok, nil
}

func openSource(r io.Reader, cfg *config) (Opened, error) {
	src, err := container.FromReader(r)
	if err != nil {
		return nil, err
	}

	var prefix []byte
	if ra, size, ok := src.RandomAccess(); ok {
		prefix, err = sniff.ReadPrefixAt(ra, size)
	} else {
		stream := src.Stream()
		prefix, err = sniff.ReadPrefix(stream)
		src = container.FromStream(io.MultiReader(bytes.NewReader(prefix), stream))
	}
	if err != nil {
		return nil, fmt.Errorf("sniff: %w", err)
	}

	k, ok := sniff.Classify(prefix)
	if !ok {
		buf, err := sizing.ReadAllWithLimit(src.Stream(), cfg.maxScanSize, ErrScanTooLarge)
		if err != nil {
			return nil, err
		}
		cfg.log().Debug("source not classified, scanning", "size", len(buf))
		return scanned(buf, *cfg)
	}
	cfg.log().Debug("classified source", "kind", k.String())
	a, err := openClassified(k, src, cfg)
	if err != nil {
		return nil, err
	}
	return a, nil
}

func scanned(buf []byte, cfg config) (Opened, error) {
	s, err := newScanner(buf, cfg)
	if err != nil {
		return nil, err
	}
	return s, nil
}

// openClassified buffers forward-only sources for random-access containers.
func openClassified(k Kind, src container.Source, cfg *config) (*Archive, error) {
	if _, _, ok := src.RandomAccess(); !ok && arctype.CapabilityOf(k.Container) == RandomAccess {
		buf, err := sizing.ReadAllWithLimit(src.Stream(), cfg.maxScanSize, ErrScanTooLarge)
		if err != nil {
			return nil, err
		}
		cfg.log().Debug("buffered forward-only source", "kind", k.String(), "size", len(buf))
		src = container.FromReaderAt(bytes.NewReader(buf), int64(len(buf)))
	}
	return newArchive(k, src, cfg)
}

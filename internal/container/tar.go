package container

import (
	"archive/tar"
	"io"

	"github.com/meigma/archive/internal/arctype"
	"github.com/meigma/archive/internal/codec"
	"github.com/meigma/archive/internal/lending"
)

type tarReader struct {
	sequential
	tr      *tar.Reader
	decoder io.Closer
}

func openTar(src Source, c arctype.Compression, opts ...codec.Option) (*tarReader, error) {
	dec, err := codec.Open(c, src.Stream(), opts...)
	if err != nil {
		return nil, err
	}
	return &tarReader{tr: tar.NewReader(dec), decoder: dec}, nil
}

// Entries walks the header stream once. A header error ends the walk:
// tar has no directory to resynchronise from.
func (r *tarReader) Entries() (arctype.Cursor, error) {
	return r.cursor(func() (lending.Member, error) {
		hdr, err := r.tr.Next()
		if err == io.EOF {
			return lending.Member{}, io.EOF
		}
		if err != nil {
			return lending.Member{}, lending.Fatal(formatError(arctype.ContainerTar, err))
		}
		return lending.Member{Name: hdr.Name, Body: r.tr}, nil
	})
}

func (r *tarReader) Close() error {
	if r.closed {
		return nil
	}
	r.closed = true
	return r.decoder.Close()
}

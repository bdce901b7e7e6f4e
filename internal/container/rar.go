package container

import (
	"io"

	"github.com/nwaples/rardecode"

	"github.com/meigma/archive/internal/arctype"
	"github.com/meigma/archive/internal/lending"
)

type rarReader struct {
	sequential
	rr *rardecode.Reader
}

// openRar reads the archive's main header. Encrypted archives are not
// supported, so no password is supplied.
func openRar(src Source) (*rarReader, error) {
	rr, err := rardecode.NewReader(src.Stream(), "")
	if err != nil {
		return nil, formatError(arctype.ContainerRar, err)
	}
	return &rarReader{rr: rr}, nil
}

// Entries walks the file headers once; like tar, a bad header ends the walk.
func (r *rarReader) Entries() (arctype.Cursor, error) {
	return r.cursor(func() (lending.Member, error) {
		hdr, err := r.rr.Next()
		if err == io.EOF {
			return lending.Member{}, io.EOF
		}
		if err != nil {
			return lending.Member{}, lending.Fatal(formatError(arctype.ContainerRar, err))
		}
		return lending.Member{Name: hdr.Name, Body: r.rr}, nil
	})
}

func (r *rarReader) Close() error {
	r.closed = true
	return nil
}

package container

import (
	"fmt"

	"github.com/klauspost/compress/zip"

	"github.com/meigma/archive/internal/arctype"
	"github.com/meigma/archive/internal/lending"
)

type zipReader struct {
	indexed
	zr *zip.Reader
}

func openZip(src Source) (*zipReader, error) {
	ra, size, err := randomAccess(src, arctype.ContainerZip)
	if err != nil {
		return nil, err
	}
	zr, err := zip.NewReader(ra, size)
	if err != nil {
		return nil, formatError(arctype.ContainerZip, err)
	}
	return &zipReader{zr: zr}, nil
}

func (r *zipReader) Entries() (arctype.Cursor, error) {
	return r.cursor(len(r.zr.File), func(i int) (lending.Member, error) {
		f := r.zr.File[i]
		rc, err := f.Open()
		if err != nil {
			return lending.Member{}, fmt.Errorf("zip: open %s: %w", f.Name, err)
		}
		return lending.Member{Name: f.Name, Body: rc}, nil
	})
}

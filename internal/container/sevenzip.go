package container

import (
	"fmt"

	"github.com/javi11/sevenzip"

	"github.com/meigma/archive/internal/arctype"
	"github.com/meigma/archive/internal/lending"
)

type sevenZipReader struct {
	indexed
	zr *sevenzip.Reader
}

func openSevenZip(src Source) (*sevenZipReader, error) {
	ra, size, err := randomAccess(src, arctype.ContainerSevenZip)
	if err != nil {
		return nil, err
	}
	zr, err := sevenzip.NewReader(ra, size)
	if err != nil {
		return nil, formatError(arctype.ContainerSevenZip, err)
	}
	return &sevenZipReader{zr: zr}, nil
}

func (r *sevenZipReader) Entries() (arctype.Cursor, error) {
	return r.cursor(len(r.zr.File), func(i int) (lending.Member, error) {
		f := r.zr.File[i]
		rc, err := f.Open()
		if err != nil {
			return lending.Member{}, fmt.Errorf("7z: open %s: %w", f.Name, err)
		}
		return lending.Member{Name: f.Name, Body: rc}, nil
	})
}

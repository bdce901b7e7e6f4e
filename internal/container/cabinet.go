package container

import (
	"github.com/meigma/archive/internal/arctype"
	"github.com/meigma/archive/internal/cabinet"
	"github.com/meigma/archive/internal/lending"
)

type cabinetReader struct {
	indexed
	cab *cabinet.Cabinet
}

func openCabinet(src Source, opts ...cabinet.Option) (*cabinetReader, error) {
	ra, size, err := randomAccess(src, arctype.ContainerCabinet)
	if err != nil {
		return nil, err
	}
	cab, err := cabinet.New(ra, size, opts...)
	if err != nil {
		return nil, formatError(arctype.ContainerCabinet, err)
	}
	return &cabinetReader{cab: cab}, nil
}

// Entries visits files folder by folder so each folder is decoded once.
func (r *cabinetReader) Entries() (arctype.Cursor, error) {
	files := r.cab.Files()
	order := r.cab.FolderOrder()
	return r.cursor(len(order), func(i int) (lending.Member, error) {
		idx := order[i]
		body, err := r.cab.OpenIndex(idx)
		if err != nil {
			return lending.Member{}, err
		}
		return lending.Member{Name: files[idx].Name, Body: body}, nil
	})
}

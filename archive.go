package archive

import (
	"errors"
	"io"
	"log/slog"

	"github.com/meigma/archive/internal/container"
)

// Archive is a classified archive: exactly one container reader of one
// Kind. The kind never changes after construction.
type Archive struct {
	kind   Kind
	offset int64
	reader container.Reader
	source io.Closer // nil unless the archive opened the source itself
	logger *slog.Logger
	closed bool
}

func newArchive(k Kind, src container.Source, cfg *config) (*Archive, error) {
	r, err := container.Open(k, src,
		container.WithCodec(cfg.codecOpts...),
		container.WithMaxFolderSize(cfg.maxFolderSize),
	)
	if err != nil {
		return nil, err
	}
	return &Archive{kind: k, reader: r, logger: cfg.log()}, nil
}

func (*Archive) opened() {}

// Kind returns the archive's classification.
func (a *Archive) Kind() Kind {
	return a.kind
}

// Capability reports whether Entries may be called more than once.
// Cabinet, zip, and seven-zip archives are random access; tar and rar are
// sequential and can be enumerated once per open.
func (a *Archive) Capability() Capability {
	return a.reader.Capability()
}

// Offset returns where the archive starts within a scanned source.
// It is zero for archives that were classified directly.
func (a *Archive) Offset() int64 {
	return a.offset
}

// Entries returns a cursor over the archive's members.
//
// Only one cursor may be open at a time; Entries fails with
// ErrCursorActive until the previous cursor is closed. Each entry the
// cursor yields expires when the cursor advances.
func (a *Archive) Entries() (Cursor, error) {
	if a.closed {
		return nil, ErrClosed
	}
	c, err := a.reader.Entries()
	if err != nil {
		return nil, err
	}
	a.logger.Debug("enumerating archive", "kind", a.kind.String(), "offset", a.offset)
	return c, nil
}

// Close releases the container reader and, when the archive was opened
// from a path, the underlying file. Close is idempotent.
func (a *Archive) Close() error {
	if a.closed {
		return nil
	}
	a.closed = true
	err := a.reader.Close()
	if a.source != nil {
		err = errors.Join(err, a.source.Close())
	}
	return err
}

package arctype

import "io"

// Entry is one member of an archive: a byte stream plus its logical path.
//
// An Entry borrows its parent reader. It stays readable only until the
// cursor that produced it advances or closes.
type Entry interface {
	io.Reader

	// Path returns the member's stored path.
	Path() (string, error)
}

// Cursor yields the entries of one container, one at a time.
//
// Next returns io.EOF once the container is exhausted. A non-EOF error
// describes a single member; callers may call Next again to continue.
// Close releases the cursor's exclusive hold on its reader.
type Cursor interface {
	Next() (Entry, error)
	Close() error
}

package archive

import (
	"errors"
	"fmt"
	"io"
	"iter"
)

// All adapts c to a range-over-func sequence. Each entry expires when the
// loop moves on. Per-step errors are yielded with a nil entry and the
// sequence continues. All does not close c; if c is closed during the
// loop, the sequence ends.
//
//	cur, err := a.Entries()
//	if err != nil {
//	    return err
//	}
//	defer cur.Close()
//	for e, err := range archive.All(cur) {
//	    ...
//	}
func All(c Cursor) iter.Seq2[Entry, error] {
	return func(yield func(Entry, error) bool) {
		for {
			e, err := c.Next()
			if errors.Is(err, io.EOF) || errors.Is(err, ErrCursorClosed) {
				return
			}
			if !yield(e, err) {
				return
			}
		}
	}
}

// Location identifies the archive an entry came from.
type Location struct {
	// Offset is where the archive starts in the opened source.
	Offset int64
	Kind   Kind
}

func (l Location) String() string {
	return fmt.Sprintf("%s@%d", l.Kind, l.Offset)
}

// WalkFunc is called by Walk for every entry, and for every error met
// while enumerating. On error the entry is nil.
//
// Returning SkipArchive skips the remaining entries of the current
// archive. Any other non-nil error stops the walk and is returned by Walk.
type WalkFunc func(loc Location, e Entry, err error) error

// Walk enumerates the entries of o. For an *Archive that is its own
// entries; for a *Scanner, the entries of every archive it yields, in
// offset order. Rejected signature matches are reported to fn as
// *ScanError values and do not stop the walk.
//
// Archives yielded by a Scanner are closed after they are walked.
func Walk(o Opened, fn WalkFunc) error {
	switch o := o.(type) {
	case *Archive:
		return walkArchive(o, fn)
	case *Scanner:
		return walkScanner(o, fn)
	default:
		panic(fmt.Sprintf("archive: unexpected Opened %T", o))
	}
}

func walkScanner(s *Scanner, fn WalkFunc) error {
	for {
		a, err := s.Next()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			var se *ScanError
			if !errors.As(err, &se) {
				return err
			}
			if err := fn(Location{Offset: se.Offset, Kind: se.Kind}, nil, err); err != nil && !errors.Is(err, SkipArchive) {
				return err
			}
			continue
		}

		err = walkArchive(a, fn)
		_ = a.Close()
		if err != nil {
			return err
		}
	}
}

func walkArchive(a *Archive, fn WalkFunc) error {
	loc := Location{Offset: a.Offset(), Kind: a.Kind()}

	cur, err := a.Entries()
	if err != nil {
		return skipped(fn(loc, nil, err))
	}
	defer cur.Close()

	for e, err := range All(cur) {
		if err := fn(loc, e, err); err != nil {
			return skipped(err)
		}
	}
	return nil
}

// skipped maps SkipArchive to nil.
func skipped(err error) error {
	if errors.Is(err, SkipArchive) {
		return nil
	}
	return err
}

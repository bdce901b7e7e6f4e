package container

import (
	"errors"
	"fmt"
	"io"
	"sync"
)

// Source is the byte source a container reads from. Random-access
// containers need ReaderAt; sequential containers only read the stream.
type Source struct {
	readerAt io.ReaderAt
	size     int64
	stream   io.Reader
}

// FromReaderAt returns a random-access source of size bytes.
func FromReaderAt(r io.ReaderAt, size int64) Source {
	return Source{readerAt: r, size: size}
}

// FromStream returns a forward-only source.
func FromStream(r io.Reader) Source {
	return Source{stream: r}
}

// FromReader inspects r for random access. An io.Seeker is sized by
// seeking to its end; seekers without ReadAt are adapted. The remaining
// bytes from the current position form the source.
//
// A seeker that cannot report its position, such as an *os.File over a
// pipe, is read as a stream.
func FromReader(r io.Reader) (Source, error) {
	seeker, ok := r.(io.Seeker)
	if !ok {
		return FromStream(r), nil
	}

	start, err := seeker.Seek(0, io.SeekCurrent)
	if err != nil {
		return FromStream(r), nil
	}
	end, err := seeker.Seek(0, io.SeekEnd)
	if err != nil {
		return Source{}, fmt.Errorf("probe source: %w", err)
	}
	if _, err := seeker.Seek(start, io.SeekStart); err != nil {
		return Source{}, fmt.Errorf("probe source: %w", err)
	}

	var ra io.ReaderAt
	if at, ok := r.(io.ReaderAt); ok {
		ra = at
	} else {
		ra = &seekReaderAt{r: r, s: seeker}
	}
	if start != 0 {
		ra = io.NewSectionReader(ra, start, end-start)
	}
	return FromReaderAt(ra, end-start), nil
}

// RandomAccess returns the source's ReaderAt and size, if it has one.
func (s Source) RandomAccess() (io.ReaderAt, int64, bool) {
	return s.readerAt, s.size, s.readerAt != nil
}

// Stream returns a reader over the source from its first byte.
func (s Source) Stream() io.Reader {
	if s.readerAt != nil {
		return io.NewSectionReader(s.readerAt, 0, s.size)
	}
	return s.stream
}

// seekReaderAt adapts a seekable reader to io.ReaderAt.
type seekReaderAt struct {
	mu sync.Mutex
	r  io.Reader
	s  io.Seeker
}

func (s *seekReaderAt) ReadAt(p []byte, off int64) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.s.Seek(off, io.SeekStart); err != nil {
		return 0, err
	}
	n, err := io.ReadFull(s.r, p)
	if errors.Is(err, io.ErrUnexpectedEOF) {
		err = io.EOF
	}
	return n, err
}

package archive

import (
	"bytes"
	"io"
	"log/slog"

	"github.com/meigma/archive/internal/container"
	"github.com/meigma/archive/internal/scan"
)

// Scanner searches an unclassified source for embedded archives.
//
// The scanner owns the source's bytes, read once in full. Archives it
// yields are read-only views into that buffer and may be used together.
type Scanner struct {
	matcher *scan.Matcher
	cfg     config
	logger  *slog.Logger
	closed  bool
}

func newScanner(buf []byte, cfg config) (*Scanner, error) {
	m, err := scan.New(buf, cfg.embedded)
	if err != nil {
		return nil, err
	}
	return &Scanner{matcher: m, cfg: cfg, logger: cfg.log()}, nil
}

func (*Scanner) opened() {}

// Size returns the number of bytes held for scanning.
func (s *Scanner) Size() int {
	return s.matcher.Len()
}

// Next opens the archive at the next signature match.
//
// Matches are visited in ascending offset order and never overlap. If the
// bytes at a match do not open as an archive, Next returns a *ScanError
// for that offset; calling Next again continues with the following match.
// Next returns io.EOF when no matches remain.
func (s *Scanner) Next() (*Archive, error) {
	if s.closed {
		return nil, ErrClosed
	}

	match, ok := s.matcher.Next()
	if !ok {
		return nil, io.EOF
	}
	k := Kind{Container: match.Container}

	view := s.matcher.View(match)
	src := container.FromReaderAt(bytes.NewReader(view), int64(len(view)))
	a, err := newArchive(k, src, &s.cfg)
	if err != nil {
		s.logger.Debug("rejected signature match", "kind", k.String(), "offset", match.Offset, "error", err)
		return nil, &ScanError{Offset: match.Offset, Kind: k, Err: err}
	}
	a.offset = match.Offset
	s.logger.Debug("found embedded archive", "kind", k.String(), "offset", match.Offset)
	return a, nil
}

// Close stops the scan. Archives already yielded stay usable.
func (s *Scanner) Close() error {
	s.closed = true
	return nil
}

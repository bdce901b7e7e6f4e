// Package scan locates embedded archive signatures inside an owned buffer.
//
// The buffer is never copied or modified after New. Matches are plain
// offsets; callers derive views with View on demand, so any number of
// views may coexist.
package scan

import (
	"bytes"
	"fmt"

	"github.com/meigma/archive/internal/arctype"
	"github.com/meigma/archive/internal/sniff"
)

// Match is one signature occurrence.
type Match struct {
	Offset    int64
	Container arctype.Container
}

type pattern struct {
	container arctype.Container
	magic     []byte

	// next is the cached offset of the first occurrence at or after the
	// matcher's position, or -1 when none remain.
	next   int
	cached bool
}

// Matcher yields signature matches in ascending, non-overlapping order.
type Matcher struct {
	buf      []byte
	patterns []*pattern
	pos      int
}

// New compiles a matcher over buf for the given containers. Duplicate
// containers are ignored. A container with no embeddable signature fails
// with ErrNotEmbeddable.
func New(buf []byte, containers []arctype.Container) (*Matcher, error) {
	m := &Matcher{buf: buf}
	seen := make(map[arctype.Container]bool, len(containers))
	for _, c := range containers {
		if seen[c] {
			continue
		}
		seen[c] = true
		magic, ok := sniff.EmbeddedSignature(c)
		if !ok {
			return nil, fmt.Errorf("%w: %s", arctype.ErrNotEmbeddable, c)
		}
		m.patterns = append(m.patterns, &pattern{container: c, magic: magic})
	}
	return m, nil
}

// Len returns the size of the scanned buffer.
func (m *Matcher) Len() int {
	return len(m.buf)
}

// Next returns the earliest match at or after the end of the previous one.
// The boolean is false once no signature occurs in the rest of the buffer.
func (m *Matcher) Next() (Match, bool) {
	var best *pattern
	for _, p := range m.patterns {
		if !p.cached || (p.next >= 0 && p.next < m.pos) {
			p.next = m.find(p.magic)
			p.cached = true
		}
		if p.next < 0 {
			continue
		}
		if best == nil || p.next < best.next {
			best = p
		}
	}
	if best == nil {
		m.pos = len(m.buf)
		return Match{}, false
	}

	off := best.next
	m.pos = off + len(best.magic)
	return Match{Offset: int64(off), Container: best.container}, true
}

func (m *Matcher) find(magic []byte) int {
	if m.pos >= len(m.buf) {
		return -1
	}
	i := bytes.Index(m.buf[m.pos:], magic)
	if i < 0 {
		return -1
	}
	return m.pos + i
}

// View returns the buffer from match's offset to the end.
func (m *Matcher) View(match Match) []byte {
	return m.buf[match.Offset:]
}

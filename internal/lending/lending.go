// Package lending enforces the borrowing rules of entry iteration at runtime.
//
// A container reader owns a Lender. Entries hands out at most one Cursor per
// Lender at a time, and each Cursor has at most one live entry: advancing or
// closing the cursor expires the entry it produced last.
package lending

import (
	"errors"
	"io"
	"io/fs"
	"unicode/utf8"

	"github.com/meigma/archive/internal/arctype"
)

// Member is one container member produced by an Advance function.
// If Body implements io.Closer it is closed when the member's entry expires.
type Member struct {
	Name string
	Body io.Reader
}

// AdvanceFunc moves a container to its next member. It returns io.EOF when
// no members remain. Errors wrapped with Fatal end iteration; any other
// error is reported for the current step only.
type AdvanceFunc func() (Member, error)

// State is the lifecycle position of a Cursor.
type State uint8

const (
	Fresh State = iota
	Positioned
	Exhausted
	Closed
)

func (s State) String() string {
	switch s {
	case Fresh:
		return "fresh"
	case Positioned:
		return "positioned"
	case Exhausted:
		return "exhausted"
	case Closed:
		return "closed"
	default:
		return "invalid"
	}
}

type fatalError struct {
	err error
}

func (e *fatalError) Error() string { return e.err.Error() }
func (e *fatalError) Unwrap() error { return e.err }

// Fatal marks err as ending iteration. Use it for formats that cannot
// resynchronise after a bad header.
func Fatal(err error) error {
	if err == nil {
		return nil
	}
	return &fatalError{err: err}
}

// Lender tracks the single cursor allowed over one reader.
// The zero value is ready to use.
type Lender struct {
	active bool
}

// Active reports whether a cursor is currently outstanding.
func (l *Lender) Active() bool {
	return l.active
}

// Lend returns a new cursor driven by advance. It fails with
// ErrCursorActive while a previous cursor is still open. onClose, if
// non-nil, runs once when the cursor closes.
func (l *Lender) Lend(advance AdvanceFunc, onClose func()) (*Cursor, error) {
	if l.active {
		return nil, arctype.ErrCursorActive
	}
	l.active = true
	return &Cursor{lender: l, advance: advance, onClose: onClose}, nil
}

// Cursor implements arctype.Cursor over an AdvanceFunc.
type Cursor struct {
	lender  *Lender
	advance AdvanceFunc
	onClose func()
	state   State
	gen     uint64
	body    io.Reader
}

var _ arctype.Cursor = (*Cursor)(nil)

// State returns the cursor's lifecycle position.
func (c *Cursor) State() State {
	return c.state
}

// Next expires the previous entry and yields the next one.
func (c *Cursor) Next() (arctype.Entry, error) {
	if c.state == Closed {
		return nil, arctype.ErrCursorClosed
	}
	if err := c.expire(); err != nil {
		return nil, err
	}
	if c.state == Exhausted {
		return nil, io.EOF
	}

	m, err := c.advance()
	if err == io.EOF {
		c.state = Exhausted
		return nil, io.EOF
	}
	if fe := (*fatalError)(nil); errors.As(err, &fe) {
		c.state = Exhausted
		return nil, fe.err
	}
	c.state = Positioned
	if err != nil {
		return nil, err
	}

	c.body = m.Body
	return &entry{cursor: c, gen: c.gen, name: m.Name, body: m.Body}, nil
}

// Close expires the live entry and releases the reader.
func (c *Cursor) Close() error {
	if c.state == Closed {
		return nil
	}
	err := c.expire()
	c.state = Closed
	c.lender.active = false
	if c.onClose != nil {
		c.onClose()
	}
	return err
}

// expire invalidates the live entry, closing its body if it holds resources.
func (c *Cursor) expire() error {
	c.gen++
	body := c.body
	c.body = nil
	if closer, ok := body.(io.Closer); ok {
		return closer.Close()
	}
	return nil
}

// entry is the borrowed view handed out by Cursor.Next.
type entry struct {
	cursor *Cursor
	gen    uint64
	name   string
	body   io.Reader
}

func (e *entry) live() bool {
	return e.cursor.gen == e.gen && e.cursor.state != Closed
}

func (e *entry) Read(p []byte) (int, error) {
	if !e.live() {
		return 0, arctype.ErrEntryExpired
	}
	if e.body == nil {
		return 0, io.EOF
	}
	return e.body.Read(p)
}

func (e *entry) Path() (string, error) {
	if !e.live() {
		return "", arctype.ErrEntryExpired
	}
	if e.name == "" || !utf8.ValidString(e.name) {
		return "", &fs.PathError{Op: "path", Path: e.name, Err: fs.ErrInvalid}
	}
	return e.name, nil
}

package lending

import (
	"errors"
	"io"
	"io/fs"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meigma/archive/internal/arctype"
)

// sliceAdvance yields members from a fixed list, then io.EOF.
func sliceAdvance(members ...Member) AdvanceFunc {
	i := 0
	return func() (Member, error) {
		if i >= len(members) {
			return Member{}, io.EOF
		}
		m := members[i]
		i++
		return m, nil
	}
}

type trackingBody struct {
	io.Reader
	closed bool
}

func (b *trackingBody) Close() error {
	b.closed = true
	return nil
}

func TestCursor_YieldsMembersInOrder(t *testing.T) {
	t.Parallel()

	var l Lender
	c, err := l.Lend(sliceAdvance(
		Member{Name: "a.txt", Body: strings.NewReader("alpha")},
		Member{Name: "b.txt", Body: strings.NewReader("beta")},
	), nil)
	require.NoError(t, err)
	assert.Equal(t, Fresh, c.State())

	e, err := c.Next()
	require.NoError(t, err)
	assert.Equal(t, Positioned, c.State())
	name, err := e.Path()
	require.NoError(t, err)
	assert.Equal(t, "a.txt", name)
	data, err := io.ReadAll(e)
	require.NoError(t, err)
	assert.Equal(t, "alpha", string(data))

	e, err = c.Next()
	require.NoError(t, err)
	data, err = io.ReadAll(e)
	require.NoError(t, err)
	assert.Equal(t, "beta", string(data))

	_, err = c.Next()
	require.ErrorIs(t, err, io.EOF)
	assert.Equal(t, Exhausted, c.State())

	_, err = c.Next()
	require.ErrorIs(t, err, io.EOF)
	require.NoError(t, c.Close())
}

func TestCursor_ReadAfterEndIsEOF(t *testing.T) {
	t.Parallel()

	var l Lender
	c, err := l.Lend(sliceAdvance(Member{Name: "x", Body: strings.NewReader("x")}), nil)
	require.NoError(t, err)

	e, err := c.Next()
	require.NoError(t, err)
	_, err = io.ReadAll(e)
	require.NoError(t, err)

	buf := make([]byte, 8)
	n, err := e.Read(buf)
	assert.Equal(t, 0, n)
	assert.Equal(t, io.EOF, err)
}

func TestCursor_AdvanceExpiresPreviousEntry(t *testing.T) {
	t.Parallel()

	first := &trackingBody{Reader: strings.NewReader("first")}
	var l Lender
	c, err := l.Lend(sliceAdvance(
		Member{Name: "one", Body: first},
		Member{Name: "two", Body: strings.NewReader("second")},
	), nil)
	require.NoError(t, err)

	e1, err := c.Next()
	require.NoError(t, err)
	_, err = c.Next()
	require.NoError(t, err)

	assert.True(t, first.closed)
	_, err = e1.Read(make([]byte, 4))
	require.ErrorIs(t, err, arctype.ErrEntryExpired)
	_, err = e1.Path()
	require.ErrorIs(t, err, arctype.ErrEntryExpired)
}

func TestCursor_StepErrorDoesNotTerminate(t *testing.T) {
	t.Parallel()

	errMissing := errors.New("missing member")
	calls := 0
	advance := func() (Member, error) {
		calls++
		switch calls {
		case 1:
			return Member{}, errMissing
		case 2:
			return Member{Name: "ok", Body: strings.NewReader("ok")}, nil
		default:
			return Member{}, io.EOF
		}
	}

	var l Lender
	c, err := l.Lend(advance, nil)
	require.NoError(t, err)

	_, err = c.Next()
	require.ErrorIs(t, err, errMissing)
	assert.Equal(t, Positioned, c.State())

	e, err := c.Next()
	require.NoError(t, err)
	name, err := e.Path()
	require.NoError(t, err)
	assert.Equal(t, "ok", name)

	_, err = c.Next()
	require.ErrorIs(t, err, io.EOF)
}

func TestCursor_FatalErrorTerminates(t *testing.T) {
	t.Parallel()

	errHeader := errors.New("bad header")
	calls := 0
	advance := func() (Member, error) {
		calls++
		return Member{}, Fatal(errHeader)
	}

	var l Lender
	c, err := l.Lend(advance, nil)
	require.NoError(t, err)

	_, err = c.Next()
	require.ErrorIs(t, err, errHeader)
	assert.Equal(t, Exhausted, c.State())

	_, err = c.Next()
	require.ErrorIs(t, err, io.EOF)
	assert.Equal(t, 1, calls)
}

func TestLender_SingleCursor(t *testing.T) {
	t.Parallel()

	var l Lender
	released := 0
	c, err := l.Lend(sliceAdvance(), func() { released++ })
	require.NoError(t, err)
	assert.True(t, l.Active())

	_, err = l.Lend(sliceAdvance(), nil)
	require.ErrorIs(t, err, arctype.ErrCursorActive)

	require.NoError(t, c.Close())
	require.NoError(t, c.Close())
	assert.Equal(t, 1, released)
	assert.False(t, l.Active())

	_, err = c.Next()
	require.ErrorIs(t, err, arctype.ErrCursorClosed)

	c2, err := l.Lend(sliceAdvance(), nil)
	require.NoError(t, err)
	require.NoError(t, c2.Close())
}

func TestCursor_CloseExpiresEntry(t *testing.T) {
	t.Parallel()

	var l Lender
	c, err := l.Lend(sliceAdvance(Member{Name: "x", Body: strings.NewReader("x")}), nil)
	require.NoError(t, err)
	e, err := c.Next()
	require.NoError(t, err)

	require.NoError(t, c.Close())
	_, err = e.Read(make([]byte, 1))
	require.ErrorIs(t, err, arctype.ErrEntryExpired)
}

func TestEntry_InvalidPath(t *testing.T) {
	t.Parallel()

	for _, name := range []string{"", "bad\xffname"} {
		var l Lender
		c, err := l.Lend(sliceAdvance(Member{Name: name}), nil)
		require.NoError(t, err)
		e, err := c.Next()
		require.NoError(t, err)

		_, err = e.Path()
		var pathErr *fs.PathError
		require.ErrorAs(t, err, &pathErr)
		require.ErrorIs(t, err, fs.ErrInvalid)

		n, err := e.Read(make([]byte, 1))
		assert.Equal(t, 0, n)
		assert.Equal(t, io.EOF, err)
		require.NoError(t, c.Close())
	}
}

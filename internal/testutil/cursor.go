package testutil

import (
	"errors"
	"io"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/meigma/archive/internal/arctype"
)

// Collect advances c to exhaustion, reading every entry fully. Per-step
// errors are gathered in order; the cursor is closed before returning.
func Collect(t testing.TB, c arctype.Cursor) ([]Member, []error) {
	t.Helper()
	defer c.Close()

	var members []Member
	var errs []error
	for {
		e, err := c.Next()
		if errors.Is(err, io.EOF) {
			return members, errs
		}
		if err != nil {
			errs = append(errs, err)
			continue
		}
		name, err := e.Path()
		require.NoError(t, err)
		data, err := io.ReadAll(e)
		require.NoError(t, err)
		if len(data) == 0 {
			data = nil
		}
		members = append(members, Member{Name: name, Data: data})
	}
}

// Drain is Collect for cursors expected to produce no errors.
func Drain(t testing.TB, c arctype.Cursor) []Member {
	t.Helper()
	members, errs := Collect(t, c)
	require.Empty(t, errs)
	return members
}

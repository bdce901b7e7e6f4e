package archive

import (
	"testing"

	"github.com/opencontainers/go-digest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meigma/archive/internal/testutil"
)

func TestList(t *testing.T) {
	t.Parallel()

	members := testutil.SampleMembers()
	o, err := OpenBytes(testutil.BuildCabinet(t, testutil.CabinetMSZIP, members...))
	require.NoError(t, err)
	a := requireArchive(t, o)

	manifest, err := List(a)
	require.NoError(t, err)
	require.Len(t, manifest, len(members))
	for i, m := range members {
		assert.Equal(t, m.Name, manifest[i].Path)
		assert.Equal(t, uint64(len(m.Data)), manifest[i].Size)
		assert.Equal(t, digest.FromBytes(m.Data), manifest[i].Digest)
		assert.NoError(t, manifest[i].Err)
	}
}

func TestList_RecordsMemberFailures(t *testing.T) {
	t.Parallel()

	const lzx = 3
	o, err := OpenBytes(testutil.BuildCabinet(t, lzx, testutil.Member{Name: "packed.bin", Data: []byte("data")}))
	require.NoError(t, err)
	a := requireArchive(t, o)

	manifest, err := List(a)
	require.NoError(t, err)
	require.Len(t, manifest, 1)
	require.ErrorIs(t, manifest[0].Err, ErrUnsupported)
}

func TestList_SequentialOnce(t *testing.T) {
	t.Parallel()

	o, err := Open("testdata/sample.tar.bz2")
	require.NoError(t, err)
	a := requireArchive(t, o)

	manifest, err := List(a)
	require.NoError(t, err)
	assert.Len(t, manifest, 3)

	_, err = List(a)
	require.ErrorIs(t, err, ErrNotRepeatable)
}

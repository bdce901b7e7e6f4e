package container

import (
	"bytes"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meigma/archive/internal/arctype"
	"github.com/meigma/archive/internal/testutil"
)

func kindOf(c arctype.Container) arctype.Kind {
	return arctype.Kind{Container: c}
}

func openBytes(t *testing.T, k arctype.Kind, data []byte) Reader {
	t.Helper()
	r, err := Open(k, FromReaderAt(bytes.NewReader(data), int64(len(data))))
	require.NoError(t, err)
	t.Cleanup(func() { _ = r.Close() })
	return r
}

func fixtures(t *testing.T) map[arctype.Container][]byte {
	members := testutil.SampleMembers()
	return map[arctype.Container][]byte{
		arctype.ContainerCabinet: testutil.BuildCabinet(t, testutil.CabinetMSZIP, members...),
		arctype.ContainerTar:     testutil.BuildTar(t, members...),
		arctype.ContainerZip:     testutil.BuildZip(t, members...),
	}
}

func TestEntries_DirectoryOrder(t *testing.T) {
	t.Parallel()

	for c, data := range fixtures(t) {
		t.Run(c.String(), func(t *testing.T) {
			t.Parallel()

			r := openBytes(t, kindOf(c), data)
			cur, err := r.Entries()
			require.NoError(t, err)

			assert.Equal(t, testutil.SampleMembers(), testutil.Drain(t, cur))
		})
	}
}

func TestEntries_RandomAccessIsRepeatable(t *testing.T) {
	t.Parallel()

	for _, c := range []arctype.Container{arctype.ContainerCabinet, arctype.ContainerZip} {
		r := openBytes(t, kindOf(c), fixtures(t)[c])
		require.Equal(t, arctype.RandomAccess, r.Capability())

		first, err := r.Entries()
		require.NoError(t, err)
		a := testutil.Drain(t, first)

		second, err := r.Entries()
		require.NoError(t, err)
		b := testutil.Drain(t, second)

		assert.Equal(t, testutil.Names(a), testutil.Names(b), c.String())
	}
}

func TestEntries_SequentialIsNotRepeatable(t *testing.T) {
	t.Parallel()

	r := openBytes(t, kindOf(arctype.ContainerTar), fixtures(t)[arctype.ContainerTar])
	require.Equal(t, arctype.Sequential, r.Capability())

	cur, err := r.Entries()
	require.NoError(t, err)
	testutil.Drain(t, cur)

	_, err = r.Entries()
	require.ErrorIs(t, err, arctype.ErrNotRepeatable)
}

func TestEntries_SingleCursor(t *testing.T) {
	t.Parallel()

	for c, data := range fixtures(t) {
		r := openBytes(t, kindOf(c), data)

		cur, err := r.Entries()
		require.NoError(t, err)
		_, err = r.Entries()
		require.ErrorIs(t, err, arctype.ErrCursorActive, c.String())
		require.NoError(t, cur.Close())
	}
}

func TestEntries_EntryExpiresOnAdvance(t *testing.T) {
	t.Parallel()

	for c, data := range fixtures(t) {
		r := openBytes(t, kindOf(c), data)
		cur, err := r.Entries()
		require.NoError(t, err)

		first, err := cur.Next()
		require.NoError(t, err)
		_, err = cur.Next()
		require.NoError(t, err)

		_, err = first.Read(make([]byte, 4))
		require.ErrorIs(t, err, arctype.ErrEntryExpired, c.String())
		_, err = first.Path()
		require.ErrorIs(t, err, arctype.ErrEntryExpired, c.String())
		require.NoError(t, cur.Close())
	}
}

func TestEntries_ReadPastEnd(t *testing.T) {
	t.Parallel()

	for c, data := range fixtures(t) {
		r := openBytes(t, kindOf(c), data)
		cur, err := r.Entries()
		require.NoError(t, err)

		e, err := cur.Next()
		require.NoError(t, err)
		got, err := io.ReadAll(e)
		require.NoError(t, err)
		assert.Equal(t, "hello, world\n", string(got))

		n, err := e.Read(make([]byte, 8))
		assert.Zero(t, n)
		require.ErrorIs(t, err, io.EOF, c.String())
		require.NoError(t, cur.Close())
	}
}

func TestEntries_CompressedTarMatchesPlain(t *testing.T) {
	t.Parallel()

	plain := testutil.BuildTar(t, testutil.SampleMembers()...)
	for _, comp := range []arctype.Compression{
		arctype.CompressionGzip,
		arctype.CompressionXz,
		arctype.CompressionLzma,
		arctype.CompressionZstd,
		arctype.CompressionLz4,
	} {
		t.Run(comp.String(), func(t *testing.T) {
			t.Parallel()

			k := arctype.Kind{Container: arctype.ContainerTar, Compression: comp}
			r := openBytes(t, k, testutil.Compress(t, comp, plain))
			cur, err := r.Entries()
			require.NoError(t, err)

			assert.Equal(t, testutil.SampleMembers(), testutil.Drain(t, cur))
		})
	}
}

func TestEntries_ZipMemberFailureIsNotTerminal(t *testing.T) {
	t.Parallel()

	data := testutil.BuildZip(t, testutil.SampleMembers()...)
	// Break the second local file header; the central directory still lists it.
	first := bytes.Index(data, []byte("PK\x03\x04"))
	second := first + 4 + bytes.Index(data[first+4:], []byte("PK\x03\x04"))
	data[second+3] = 0xFF

	r := openBytes(t, kindOf(arctype.ContainerZip), data)
	cur, err := r.Entries()
	require.NoError(t, err)

	members, errs := testutil.Collect(t, cur)
	require.Len(t, errs, 1)
	assert.Equal(t, []string{"hello.txt", "empty.txt"}, testutil.Names(members))
}

func TestEntries_TarHeaderFailureTerminates(t *testing.T) {
	t.Parallel()

	data := testutil.BuildTar(t, testutil.SampleMembers()...)
	// Corrupt the second header's checksum field.
	copy(data[1024+148:], "garbage!")

	r := openBytes(t, kindOf(arctype.ContainerTar), data)
	cur, err := r.Entries()
	require.NoError(t, err)

	e, err := cur.Next()
	require.NoError(t, err)
	name, err := e.Path()
	require.NoError(t, err)
	assert.Equal(t, "hello.txt", name)

	_, err = cur.Next()
	require.ErrorIs(t, err, arctype.ErrFormat)
	_, err = cur.Next()
	require.ErrorIs(t, err, io.EOF)
	require.NoError(t, cur.Close())
}

func TestOpen_Malformed(t *testing.T) {
	t.Parallel()

	garbage := []byte("this is not an archive of any kind, just text padding it out")
	for _, c := range []arctype.Container{
		arctype.ContainerCabinet,
		arctype.ContainerZip,
		arctype.ContainerSevenZip,
		arctype.ContainerRar,
	} {
		_, err := Open(kindOf(c), FromReaderAt(bytes.NewReader(garbage), int64(len(garbage))))
		require.ErrorIs(t, err, arctype.ErrFormat, c.String())
	}
}

func TestOpen_CompressionOnlyBeneathTar(t *testing.T) {
	t.Parallel()

	k := arctype.Kind{Container: arctype.ContainerZip, Compression: arctype.CompressionGzip}
	assert.False(t, Supported(k))
	_, err := Open(k, FromStream(bytes.NewReader(nil)))
	require.ErrorIs(t, err, arctype.ErrUnsupported)
}

func TestOpen_UnknownContainerPanics(t *testing.T) {
	t.Parallel()

	assert.False(t, Supported(arctype.Kind{}))
	assert.Panics(t, func() {
		_, _ = Open(arctype.Kind{}, FromStream(bytes.NewReader(nil)))
	})
}

func TestOpen_RandomAccessNeedsReaderAt(t *testing.T) {
	t.Parallel()

	data := testutil.BuildZip(t, testutil.SampleMembers()...)
	_, err := Open(kindOf(arctype.ContainerZip), FromStream(bytes.NewReader(data)))
	require.ErrorIs(t, err, arctype.ErrUnsupported)
}

func TestClose_RejectsFurtherUse(t *testing.T) {
	t.Parallel()

	for c, data := range fixtures(t) {
		r := openBytes(t, kindOf(c), data)
		cur, err := r.Entries()
		require.NoError(t, err)
		require.NoError(t, r.Close())

		_, err = cur.Next()
		require.ErrorIs(t, err, arctype.ErrClosed, c.String())
		require.NoError(t, cur.Close())

		_, err = r.Entries()
		require.ErrorIs(t, err, arctype.ErrClosed, c.String())
	}
}

func TestEntries_CabinetVisitsFolderByFolder(t *testing.T) {
	t.Parallel()

	data := testutil.BuildCabinetLayout(t, testutil.CabinetLayout{
		Folders: []testutil.CabinetFolder{
			{Method: testutil.CabinetStored, Members: []testutil.Member{
				{Name: "f0", Data: []byte("AA")},
				{Name: "f2", Data: []byte("cc")},
			}},
			{Method: testutil.CabinetMSZIP, Members: []testutil.Member{
				{Name: "f1", Data: []byte("BB")},
			}},
		},
		Files: []testutil.CabinetFile{
			{Folder: 0, Name: "f0"},
			{Folder: 1, Name: "f1"},
			{Folder: 0, Name: "f2"},
		},
	})

	r := openBytes(t, kindOf(arctype.ContainerCabinet), data)
	cur, err := r.Entries()
	require.NoError(t, err)
	assert.Equal(t, []testutil.Member{
		{Name: "f0", Data: []byte("AA")},
		{Name: "f2", Data: []byte("cc")},
		{Name: "f1", Data: []byte("BB")},
	}, testutil.Drain(t, cur))
}

func TestEntries_CabinetFolderLimit(t *testing.T) {
	t.Parallel()

	data := testutil.BuildCabinetLayout(t, testutil.CabinetLayout{
		Folders: []testutil.CabinetFolder{
			{Method: testutil.CabinetMSZIP, Members: []testutil.Member{
				{Name: "big.bin", Data: bytes.Repeat([]byte("z"), 100000)},
			}},
			{Method: testutil.CabinetStored, Members: []testutil.Member{
				{Name: "small.txt", Data: []byte("ok")},
			}},
		},
	})

	r, err := Open(kindOf(arctype.ContainerCabinet), FromReaderAt(bytes.NewReader(data), int64(len(data))),
		WithMaxFolderSize(64<<10))
	require.NoError(t, err)
	defer r.Close()

	cur, err := r.Entries()
	require.NoError(t, err)
	members, errs := testutil.Collect(t, cur)
	require.Len(t, errs, 1)
	require.ErrorIs(t, errs[0], arctype.ErrDecodeLimit)
	assert.Equal(t, []string{"small.txt"}, testutil.Names(members))
}

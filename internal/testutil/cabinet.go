package testutil

import (
	"bytes"
	"encoding/binary"
	"testing"

	"github.com/klauspost/compress/flate"
	"github.com/stretchr/testify/require"
)

// Cabinet folder compression methods understood by BuildCabinet.
const (
	CabinetStored uint16 = 0
	CabinetMSZIP  uint16 = 1
)

// CabinetContinued is the folder index of a file continued from a previous cabinet.
const CabinetContinued uint16 = 0xFFFD

const cabinetBlockSize = 32768

// CabinetFolder is one folder of a CabinetLayout.
type CabinetFolder struct {
	Method  uint16
	Members []Member
}

// CabinetFile places a member in the file table. Folder may name a folder
// of the layout or CabinetContinued, which writes an empty spanned entry.
type CabinetFile struct {
	Folder uint16
	Name   string
}

// CabinetLayout describes a cabinet for BuildCabinetLayout.
type CabinetLayout struct {
	Folders []CabinetFolder

	// Files orders the file table. If nil, files are listed folder by folder.
	Files []CabinetFile

	// Reserve sizes; any non-zero value sets the reserve-present flag.
	HeaderReserve int
	FolderReserve uint8
	DataReserve   uint8

	// Linked-cabinet names written after the header.
	PrevCabinet bool
	NextCabinet bool
}

// BuildCabinet returns a single-folder cabinet holding members in order.
// Data blocks carry no checksum.
func BuildCabinet(t testing.TB, method uint16, members ...Member) []byte {
	t.Helper()
	return BuildCabinetLayout(t, CabinetLayout{
		Folders: []CabinetFolder{{Method: method, Members: members}},
	})
}

// BuildCabinetLayout returns a cabinet with the folders, file table order,
// reserve areas, and linked-cabinet flags of layout.
func BuildCabinetLayout(t testing.TB, layout CabinetLayout) []byte {
	t.Helper()

	type placed struct {
		size, offset uint32
		folder       uint16
	}
	placement := map[CabinetFile]placed{}
	folderBlocks := make([][][]byte, len(layout.Folders))
	for fi, f := range layout.Folders {
		var content []byte
		for _, m := range f.Members {
			placement[CabinetFile{Folder: uint16(fi), Name: m.Name}] = placed{
				size:   uint32(len(m.Data)),
				offset: uint32(len(content)),
				folder: uint16(fi),
			}
			content = append(content, m.Data...)
		}
		folderBlocks[fi] = encodeCabinetBlocks(t, f.Method, content, int(layout.DataReserve))
	}

	files := layout.Files
	if files == nil {
		for fi, f := range layout.Folders {
			for _, m := range f.Members {
				files = append(files, CabinetFile{Folder: uint16(fi), Name: m.Name})
			}
		}
	}

	var flags uint16
	reserve := layout.HeaderReserve > 0 || layout.FolderReserve > 0 || layout.DataReserve > 0
	if layout.PrevCabinet {
		flags |= 0x0001
	}
	if layout.NextCabinet {
		flags |= 0x0002
	}
	if reserve {
		flags |= 0x0004
	}

	var links bytes.Buffer
	if layout.PrevCabinet {
		links.WriteString("prev.cab\x00disk 1\x00")
	}
	if layout.NextCabinet {
		links.WriteString("next.cab\x00disk 3\x00")
	}

	const headerSize, folderSize, fileHeaderSize = 36, 8, 16
	filesOffset := headerSize + links.Len() + len(layout.Folders)*(folderSize+int(layout.FolderReserve))
	if reserve {
		filesOffset += 4 + layout.HeaderReserve
	}
	dataOffset := filesOffset
	for _, f := range files {
		dataOffset += fileHeaderSize + len(f.Name) + 1
	}
	total := dataOffset
	for _, blocks := range folderBlocks {
		for _, b := range blocks {
			total += len(b)
		}
	}

	var buf bytes.Buffer
	le := binary.LittleEndian
	buf.WriteString("MSCF")
	write(t, &buf, le, uint32(0))           // reserved1
	write(t, &buf, le, uint32(total))       // cbCabinet
	write(t, &buf, le, uint32(0))           // reserved2
	write(t, &buf, le, uint32(filesOffset)) // coffFiles
	write(t, &buf, le, uint32(0))           // reserved3
	write(t, &buf, le, uint8(3))            // versionMinor
	write(t, &buf, le, uint8(1))            // versionMajor
	write(t, &buf, le, uint16(len(layout.Folders)))
	write(t, &buf, le, uint16(len(files)))
	write(t, &buf, le, flags)
	write(t, &buf, le, uint16(0)) // setID
	write(t, &buf, le, uint16(0)) // iCabinet
	if reserve {
		write(t, &buf, le, uint16(layout.HeaderReserve))
		write(t, &buf, le, layout.FolderReserve)
		write(t, &buf, le, layout.DataReserve)
		buf.Write(bytes.Repeat([]byte{0xAA}, layout.HeaderReserve))
	}
	buf.Write(links.Bytes())

	blockOffset := dataOffset
	for fi, f := range layout.Folders {
		write(t, &buf, le, uint32(blockOffset))
		write(t, &buf, le, uint16(len(folderBlocks[fi])))
		write(t, &buf, le, f.Method)
		buf.Write(bytes.Repeat([]byte{0xBB}, int(layout.FolderReserve)))
		for _, b := range folderBlocks[fi] {
			blockOffset += len(b)
		}
	}
	require.Equal(t, filesOffset, buf.Len())

	for _, f := range files {
		p := placed{folder: f.Folder}
		if f.Folder != CabinetContinued {
			var ok bool
			p, ok = placement[f]
			require.True(t, ok, "no member %q in folder %d", f.Name, f.Folder)
		}
		write(t, &buf, le, p.size)
		write(t, &buf, le, p.offset)
		write(t, &buf, le, p.folder)
		write(t, &buf, le, uint16(0)) // date
		write(t, &buf, le, uint16(0)) // time
		write(t, &buf, le, uint16(0)) // attribs
		buf.WriteString(f.Name)
		buf.WriteByte(0)
	}
	require.Equal(t, dataOffset, buf.Len())

	for _, blocks := range folderBlocks {
		for _, b := range blocks {
			buf.Write(b)
		}
	}
	return buf.Bytes()
}

// encodeCabinetBlocks splits content into CFDATA blocks, each with its header
// and reserve bytes.
func encodeCabinetBlocks(t testing.TB, method uint16, content []byte, reserve int) [][]byte {
	t.Helper()

	var blocks [][]byte
	var history []byte
	for start := 0; start < len(content); start += cabinetBlockSize {
		chunk := content[start:min(start+cabinetBlockSize, len(content))]

		payload := chunk
		if method == CabinetMSZIP {
			var deflated bytes.Buffer
			deflated.WriteString("CK")
			fw, err := flate.NewWriterDict(&deflated, flate.DefaultCompression, history)
			require.NoError(t, err)
			_, err = fw.Write(chunk)
			require.NoError(t, err)
			require.NoError(t, fw.Close())
			payload = deflated.Bytes()
			history = chunk
		}

		var block bytes.Buffer
		le := binary.LittleEndian
		write(t, &block, le, uint32(0)) // csum
		write(t, &block, le, uint16(len(payload)))
		write(t, &block, le, uint16(len(chunk)))
		block.Write(bytes.Repeat([]byte{0xCC}, reserve))
		block.Write(payload)
		blocks = append(blocks, block.Bytes())
	}
	return blocks
}

func write(t testing.TB, buf *bytes.Buffer, order binary.ByteOrder, v any) {
	t.Helper()
	require.NoError(t, binary.Write(buf, order, v))
}

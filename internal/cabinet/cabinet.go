// Package cabinet reads Microsoft Cabinet (.cab) files.
//
// Only single-cabinet sets are supported. Folders may be stored uncompressed
// or with MSZIP; Quantum and LZX folders parse but cannot be opened.
package cabinet

import (
	"bufio"
	"bytes"
	"cmp"
	"encoding/binary"
	"fmt"
	"io"
	"slices"

	"github.com/meigma/archive/internal/arctype"
)

// Signature is the magic marker at the start of every cabinet.
const Signature = "MSCF"

const (
	flagPrevCabinet    = 0x0001
	flagNextCabinet    = 0x0002
	flagReservePresent = 0x0004

	methodMask  = 0x000F
	methodNone  = 0
	methodMSZIP = 1

	// MaxBlockSize is the largest uncompressed size of one CFDATA block.
	MaxBlockSize = 32768

	// folder indices at or above this value mark files that span cabinets.
	folderContinued = 0xFFFD

	maxNameLen = 1024
)

type header struct {
	Signature    [4]byte
	Reserved1    uint32
	CabinetSize  uint32
	Reserved2    uint32
	FilesOffset  uint32
	Reserved3    uint32
	VersionMinor uint8
	VersionMajor uint8
	Folders      uint16
	Files        uint16
	Flags        uint16
	SetID        uint16
	Index        uint16
}

type folderHeader struct {
	DataOffset uint32
	Blocks     uint16
	Method     uint16
}

type fileHeader struct {
	Size         uint32
	FolderOffset uint32
	Folder       uint16
	Date         uint16
	Time         uint16
	Attributes   uint16
}

type blockHeader struct {
	Checksum     uint32
	Compressed   uint16
	Uncompressed uint16
}

// File describes one member in the cabinet's file table.
type File struct {
	Name         string
	Size         uint32
	FolderOffset uint32
	Folder       uint16
	Attributes   uint16
}

// Cabinet is a parsed cabinet file table over a random-access source.
type Cabinet struct {
	r           io.ReaderAt
	size        int64
	folders     []folderHeader
	files       []File
	dataReserve int

	maxFolderSize uint64

	// the most recently decoded folder, reused by files that share it
	cachedFolder int
	cachedData   []byte
}

// Option configures New.
type Option func(*Cabinet)

// WithMaxFolderSize limits the decoded size of one folder. Opening a file
// whose folder decodes past limit fails with arctype.ErrDecodeLimit.
// Set limit to 0 to disable the limit.
func WithMaxFolderSize(limit uint64) Option {
	return func(c *Cabinet) {
		c.maxFolderSize = limit
	}
}

// New parses the cabinet header, folder table, and file table from r.
func New(r io.ReaderAt, size int64, opts ...Option) (*Cabinet, error) {
	br := bufio.NewReader(io.NewSectionReader(r, 0, size))

	var hdr header
	if err := binary.Read(br, binary.LittleEndian, &hdr); err != nil {
		return nil, fmt.Errorf("%w: cabinet header: %v", arctype.ErrFormat, err)
	}
	if string(hdr.Signature[:]) != Signature {
		return nil, fmt.Errorf("%w: cabinet signature %q", arctype.ErrFormat, hdr.Signature[:])
	}
	if hdr.VersionMajor != 1 {
		return nil, fmt.Errorf("%w: cabinet version %d.%d", arctype.ErrUnsupported, hdr.VersionMajor, hdr.VersionMinor)
	}
	if int64(hdr.FilesOffset) >= size && hdr.Files > 0 {
		return nil, fmt.Errorf("%w: file table offset %d beyond source", arctype.ErrFormat, hdr.FilesOffset)
	}

	c := &Cabinet{r: r, size: size, cachedFolder: -1}
	for _, opt := range opts {
		opt(c)
	}

	folderReserve := 0
	if hdr.Flags&flagReservePresent != 0 {
		var reserve struct {
			Header uint16
			Folder uint8
			Data   uint8
		}
		if err := binary.Read(br, binary.LittleEndian, &reserve); err != nil {
			return nil, fmt.Errorf("%w: cabinet reserve: %v", arctype.ErrFormat, err)
		}
		if _, err := br.Discard(int(reserve.Header)); err != nil {
			return nil, fmt.Errorf("%w: cabinet reserve: %v", arctype.ErrFormat, err)
		}
		folderReserve = int(reserve.Folder)
		c.dataReserve = int(reserve.Data)
	}

	// Linked-cabinet names precede the folder table; they are skipped.
	skip := 0
	if hdr.Flags&flagPrevCabinet != 0 {
		skip += 2
	}
	if hdr.Flags&flagNextCabinet != 0 {
		skip += 2
	}
	for range skip {
		if _, err := readCString(br); err != nil {
			return nil, err
		}
	}

	c.folders = make([]folderHeader, hdr.Folders)
	for i := range c.folders {
		if err := binary.Read(br, binary.LittleEndian, &c.folders[i]); err != nil {
			return nil, fmt.Errorf("%w: folder %d: %v", arctype.ErrFormat, i, err)
		}
		if _, err := br.Discard(folderReserve); err != nil {
			return nil, fmt.Errorf("%w: folder %d: %v", arctype.ErrFormat, i, err)
		}
		if int64(c.folders[i].DataOffset) > size {
			return nil, fmt.Errorf("%w: folder %d data offset %d beyond source", arctype.ErrFormat, i, c.folders[i].DataOffset)
		}
	}

	fr := bufio.NewReader(io.NewSectionReader(r, int64(hdr.FilesOffset), size-int64(hdr.FilesOffset)))
	c.files = make([]File, hdr.Files)
	for i := range c.files {
		var fh fileHeader
		if err := binary.Read(fr, binary.LittleEndian, &fh); err != nil {
			return nil, fmt.Errorf("%w: file %d: %v", arctype.ErrFormat, i, err)
		}
		name, err := readCString(fr)
		if err != nil {
			return nil, err
		}
		c.files[i] = File{
			Name:         name,
			Size:         fh.Size,
			FolderOffset: fh.FolderOffset,
			Folder:       fh.Folder,
			Attributes:   fh.Attributes,
		}
	}

	return c, nil
}

// Files returns the file table in stored order.
func (c *Cabinet) Files() []File {
	return c.files
}

// FolderOrder returns indices into Files grouped by folder, keeping the
// stored order within each folder. Files continued from or into another
// cabinet sort last.
func (c *Cabinet) FolderOrder() []int {
	order := make([]int, len(c.files))
	for i := range order {
		order[i] = i
	}
	slices.SortStableFunc(order, func(a, b int) int {
		return cmp.Compare(c.files[a].Folder, c.files[b].Folder)
	})
	return order
}

// Open returns the content of the file with the given name.
func (c *Cabinet) Open(name string) (io.Reader, error) {
	for i := range c.files {
		if c.files[i].Name == name {
			return c.OpenIndex(i)
		}
	}
	return nil, fmt.Errorf("cabinet: %s: %w", name, arctype.ErrFormat)
}

// OpenIndex returns the content of the i-th file in the file table.
//
// The whole folder holding the file is decoded into memory; consecutive
// files of the same folder reuse that decoding.
func (c *Cabinet) OpenIndex(i int) (io.Reader, error) {
	if i < 0 || i >= len(c.files) {
		return nil, fmt.Errorf("cabinet: file index %d out of range", i)
	}
	f := c.files[i]
	if f.Folder >= folderContinued {
		return nil, fmt.Errorf("cabinet: %s: spans cabinets: %w", f.Name, arctype.ErrUnsupported)
	}
	if int(f.Folder) >= len(c.folders) {
		return nil, fmt.Errorf("%w: %s: folder %d not in cabinet", arctype.ErrFormat, f.Name, f.Folder)
	}

	data, err := c.folderData(int(f.Folder))
	if err != nil {
		return nil, fmt.Errorf("cabinet: %s: %w", f.Name, err)
	}
	start := uint64(f.FolderOffset)
	end := start + uint64(f.Size)
	if end > uint64(len(data)) {
		return nil, fmt.Errorf("%w: %s: range %d-%d outside folder of %d bytes", arctype.ErrFormat, f.Name, start, end, len(data))
	}
	return bytes.NewReader(data[start:end]), nil
}

// folderData decodes every data block of folder i.
func (c *Cabinet) folderData(i int) ([]byte, error) {
	if c.cachedFolder == i {
		return c.cachedData, nil
	}

	fh := c.folders[i]
	method := fh.Method & methodMask
	if method != methodNone && method != methodMSZIP {
		return nil, fmt.Errorf("compression method %d: %w", method, arctype.ErrUnsupported)
	}

	br := bufio.NewReader(io.NewSectionReader(c.r, int64(fh.DataOffset), c.size-int64(fh.DataOffset)))
	var out bytes.Buffer
	for b := range int(fh.Blocks) {
		var bh blockHeader
		if err := binary.Read(br, binary.LittleEndian, &bh); err != nil {
			return nil, fmt.Errorf("%w: block %d: %v", arctype.ErrFormat, b, err)
		}
		if _, err := br.Discard(c.dataReserve); err != nil {
			return nil, fmt.Errorf("%w: block %d: %v", arctype.ErrFormat, b, err)
		}
		if bh.Uncompressed > MaxBlockSize {
			return nil, fmt.Errorf("%w: block %d: %d bytes exceeds block limit", arctype.ErrFormat, b, bh.Uncompressed)
		}
		if c.maxFolderSize > 0 && uint64(out.Len())+uint64(bh.Uncompressed) > c.maxFolderSize {
			return nil, fmt.Errorf("folder %d exceeds %d bytes: %w", i, c.maxFolderSize, arctype.ErrDecodeLimit)
		}
		payload := make([]byte, bh.Compressed)
		if _, err := io.ReadFull(br, payload); err != nil {
			return nil, fmt.Errorf("%w: block %d: %v", arctype.ErrFormat, b, err)
		}

		switch method {
		case methodNone:
			if bh.Compressed != bh.Uncompressed {
				return nil, fmt.Errorf("%w: block %d: stored size mismatch", arctype.ErrFormat, b)
			}
			out.Write(payload)
		case methodMSZIP:
			history := out.Bytes()
			if len(history) > MaxBlockSize {
				history = history[len(history)-MaxBlockSize:]
			}
			block, err := inflateBlock(payload, history, int(bh.Uncompressed))
			if err != nil {
				return nil, fmt.Errorf("block %d: %w", b, err)
			}
			out.Write(block)
		}
	}

	c.cachedFolder = i
	c.cachedData = out.Bytes()
	return c.cachedData, nil
}

func readCString(br *bufio.Reader) (string, error) {
	var name []byte
	for {
		b, err := br.ReadByte()
		if err != nil {
			return "", fmt.Errorf("%w: name: %v", arctype.ErrFormat, err)
		}
		if b == 0 {
			return string(name), nil
		}
		if len(name) >= maxNameLen {
			return "", fmt.Errorf("%w: name exceeds %d bytes", arctype.ErrFormat, maxNameLen)
		}
		name = append(name, b)
	}
}

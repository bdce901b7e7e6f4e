// Package sniff classifies byte sources by their leading signature.
package sniff

import (
	"bytes"
	"errors"
	"io"

	"github.com/meigma/archive/internal/arctype"
)

// PrefixSize is the most bytes Classify ever looks at.
const PrefixSize = 512

// signature maps a byte pattern at a fixed offset to a kind.
type signature struct {
	Offset int
	Magic  []byte
	Kind   arctype.Kind
}

func tarWith(c arctype.Compression) arctype.Kind {
	return arctype.Kind{Container: arctype.ContainerTar, Compression: c}
}

// signatureTable is checked in order; longer magics come before their prefixes.
//
//nolint:gochecknoglobals
var signatureTable = []signature{
	{Offset: 0, Magic: []byte("MSCF"), Kind: arctype.Kind{Container: arctype.ContainerCabinet}},
	{Offset: 0, Magic: []byte{0x50, 0x4B, 0x03, 0x04}, Kind: arctype.Kind{Container: arctype.ContainerZip}},
	// Empty zip: end-of-central-directory record only.
	{Offset: 0, Magic: []byte{0x50, 0x4B, 0x05, 0x06}, Kind: arctype.Kind{Container: arctype.ContainerZip}},
	{Offset: 0, Magic: []byte{0x37, 0x7A, 0xBC, 0xAF, 0x27, 0x1C}, Kind: arctype.Kind{Container: arctype.ContainerSevenZip}},
	// RAR v4 and v5 share this prefix.
	{Offset: 0, Magic: []byte{0x52, 0x61, 0x72, 0x21, 0x1A, 0x07}, Kind: arctype.Kind{Container: arctype.ContainerRar}},
	{Offset: 0, Magic: []byte{0x1F, 0x8B}, Kind: tarWith(arctype.CompressionGzip)},
	{Offset: 0, Magic: []byte{0x42, 0x5A, 0x68}, Kind: tarWith(arctype.CompressionBzip2)},
	{Offset: 0, Magic: []byte{0xFD, 0x37, 0x7A, 0x58, 0x5A, 0x00}, Kind: tarWith(arctype.CompressionXz)},
	{Offset: 0, Magic: []byte{0x28, 0xB5, 0x2F, 0xFD}, Kind: tarWith(arctype.CompressionZstd)},
	{Offset: 0, Magic: []byte{0x04, 0x22, 0x4D, 0x18}, Kind: tarWith(arctype.CompressionLz4)},
	{Offset: 0, Magic: []byte{0x5D, 0x00, 0x00}, Kind: tarWith(arctype.CompressionLzma)},
	// POSIX and GNU tar both carry "ustar" in the first header block.
	{Offset: 257, Magic: []byte("ustar"), Kind: tarWith(arctype.CompressionNone)},
}

// embeddable lists the containers whose headers are self-relative, so a
// view starting at the signature opens as a complete archive.
//
//nolint:gochecknoglobals
var embeddable = map[arctype.Container][]byte{
	arctype.ContainerCabinet:  []byte("MSCF"),
	arctype.ContainerSevenZip: {0x37, 0x7A, 0xBC, 0xAF, 0x27, 0x1C},
	arctype.ContainerRar:      {0x52, 0x61, 0x72, 0x21, 0x1A, 0x07},
}

// Classify returns the kind identified by prefix. The boolean is false when
// no signature matches, including for an empty prefix.
func Classify(prefix []byte) (arctype.Kind, bool) {
	for _, sig := range signatureTable {
		end := sig.Offset + len(sig.Magic)
		if end > len(prefix) {
			continue
		}
		if bytes.Equal(prefix[sig.Offset:end], sig.Magic) {
			return sig.Kind, true
		}
	}
	return arctype.Kind{}, false
}

// ReadPrefix reads up to PrefixSize bytes from r. A short source is not an error.
func ReadPrefix(r io.Reader) ([]byte, error) {
	buf := make([]byte, PrefixSize)
	n, err := io.ReadFull(r, buf)
	if err != nil && !errors.Is(err, io.EOF) && !errors.Is(err, io.ErrUnexpectedEOF) {
		return nil, err
	}
	return buf[:n], nil
}

// ReadPrefixAt reads up to PrefixSize bytes from the start of r.
func ReadPrefixAt(r io.ReaderAt, size int64) ([]byte, error) {
	return ReadPrefix(io.NewSectionReader(r, 0, min(size, PrefixSize)))
}

// EmbeddedSignature returns the magic searched for when scanning an
// unclassified buffer for archives of container c.
func EmbeddedSignature(c arctype.Container) ([]byte, bool) {
	magic, ok := embeddable[c]
	return magic, ok
}

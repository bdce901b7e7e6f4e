package archive

import "github.com/meigma/archive/internal/arctype"

// --- Re-exports from internal/arctype ---

// Entry is one archive member: a byte stream plus its stored path.
// It stays valid only until the cursor that produced it advances or closes.
type Entry = arctype.Entry

// Cursor yields the entries of one archive, one at a time.
type Cursor = arctype.Cursor

// Container identifies an archive layout.
type Container = arctype.Container

// Compression identifies a byte-stream transform beneath a container.
type Compression = arctype.Compression

// Kind is a (container, compression) classification.
type Kind = arctype.Kind

// Capability reports whether an archive can be enumerated more than once.
type Capability = arctype.Capability

// ScanError records a signature match that did not open as an archive.
type ScanError = arctype.ScanError

// Container constants.
const (
	ContainerUnknown  = arctype.ContainerUnknown
	ContainerCabinet  = arctype.ContainerCabinet
	ContainerTar      = arctype.ContainerTar
	ContainerZip      = arctype.ContainerZip
	ContainerSevenZip = arctype.ContainerSevenZip
	ContainerRar      = arctype.ContainerRar
)

// Compression constants.
const (
	CompressionNone  = arctype.CompressionNone
	CompressionGzip  = arctype.CompressionGzip
	CompressionBzip2 = arctype.CompressionBzip2
	CompressionXz    = arctype.CompressionXz
	CompressionLzma  = arctype.CompressionLzma
	CompressionZstd  = arctype.CompressionZstd
	CompressionLz4   = arctype.CompressionLz4
)

// Capability constants.
const (
	RandomAccess = arctype.RandomAccess
	Sequential   = arctype.Sequential
)

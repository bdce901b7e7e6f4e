// Package arctype defines shared types used across the archive package and its
// internal packages. This avoids circular imports between archive and the
// container, codec, and lending packages.
package arctype

import "fmt"

// Container identifies the structured layout holding an archive's members.
type Container uint8

const (
	ContainerUnknown Container = iota
	ContainerCabinet
	ContainerTar
	ContainerZip
	ContainerSevenZip
	ContainerRar
)

func (c Container) String() string {
	switch c {
	case ContainerCabinet:
		return "cabinet"
	case ContainerTar:
		return "tar"
	case ContainerZip:
		return "zip"
	case ContainerSevenZip:
		return "7z"
	case ContainerRar:
		return "rar"
	default:
		return "unknown"
	}
}

// Compression identifies the byte-stream transform applied beneath a container.
type Compression uint8

const (
	CompressionNone Compression = iota
	CompressionGzip
	CompressionBzip2
	CompressionXz
	CompressionLzma
	CompressionZstd
	CompressionLz4
)

func (c Compression) String() string {
	switch c {
	case CompressionNone:
		return "none"
	case CompressionGzip:
		return "gzip"
	case CompressionBzip2:
		return "bzip2"
	case CompressionXz:
		return "xz"
	case CompressionLzma:
		return "lzma"
	case CompressionZstd:
		return "zstd"
	case CompressionLz4:
		return "lz4"
	default:
		return "unknown"
	}
}

// Kind is a (container, compression) classification.
// The zero value is the indeterminate kind.
type Kind struct {
	Container   Container
	Compression Compression
}

func (k Kind) String() string {
	if k.Compression == CompressionNone {
		return k.Container.String()
	}
	return fmt.Sprintf("%s+%s", k.Container, k.Compression)
}

// Capability describes how often a container's entries can be enumerated.
type Capability uint8

const (
	// RandomAccess containers read their directory up front and support
	// any number of enumeration passes.
	RandomAccess Capability = iota

	// Sequential containers discover members by reading the stream in
	// order. They can be enumerated exactly once per open.
	Sequential
)

func (c Capability) String() string {
	if c == Sequential {
		return "sequential"
	}
	return "random-access"
}

// CapabilityOf returns the enumeration capability of a container.
func CapabilityOf(c Container) Capability {
	switch c {
	case ContainerTar, ContainerRar:
		return Sequential
	default:
		return RandomAccess
	}
}

package arctype

import (
	"errors"
	"fmt"
)

// Sentinel errors for archive operations.
var (
	// ErrFormat is returned when a container's directory or headers are malformed.
	ErrFormat = errors.New("archive: malformed container")

	// ErrDecompression is returned when a compression stream fails to decode.
	ErrDecompression = errors.New("archive: decompression failed")

	// ErrDecodeLimit is returned when a member would decode past a configured
	// memory limit.
	ErrDecodeLimit = errors.New("archive: decode limit exceeded")

	// ErrUnsupported is returned for container features this package cannot read,
	// such as unknown cabinet compression methods.
	ErrUnsupported = errors.New("archive: unsupported feature")

	// ErrCursorActive is returned by Entries while another cursor over the
	// same reader is still open.
	ErrCursorActive = errors.New("archive: cursor already active")

	// ErrCursorClosed is returned by Next after the cursor was closed.
	ErrCursorClosed = errors.New("archive: cursor closed")

	// ErrEntryExpired is returned when reading an entry after its cursor advanced.
	ErrEntryExpired = errors.New("archive: entry expired")

	// ErrNotRepeatable is returned by Entries on a sequential container that
	// has already been enumerated.
	ErrNotRepeatable = errors.New("archive: sequential container already enumerated")

	// ErrClosed is returned when using an archive or scanner after Close.
	ErrClosed = errors.New("archive: closed")

	// ErrScanTooLarge is returned when an unclassified source exceeds the scan size limit.
	ErrScanTooLarge = errors.New("archive: source too large to scan")

	// ErrNotEmbeddable is returned when a container without a self-relative
	// header is requested for embedded scanning.
	ErrNotEmbeddable = errors.New("archive: container cannot be located by signature")
)

// ScanError records a signature match that could not be opened as an archive.
type ScanError struct {
	Offset int64
	Kind   Kind
	Err    error
}

func (e *ScanError) Error() string {
	return fmt.Sprintf("archive: %s at offset %d: %v", e.Kind, e.Offset, e.Err)
}

func (e *ScanError) Unwrap() error {
	return e.Err
}

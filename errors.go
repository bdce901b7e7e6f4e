package archive

import (
	"errors"

	"github.com/meigma/archive/internal/arctype"
)

// Sentinel errors re-exported from internal/arctype.
var (
	// ErrFormat is returned when a container's directory or headers are malformed.
	ErrFormat = arctype.ErrFormat

	// ErrDecompression is returned when a compression stream fails to decode.
	ErrDecompression = arctype.ErrDecompression

	// ErrDecodeLimit is returned by Next when a cabinet folder would decode
	// past WithMaxFolderSize.
	ErrDecodeLimit = arctype.ErrDecodeLimit

	// ErrUnsupported is returned for kinds or container features that cannot be read.
	ErrUnsupported = arctype.ErrUnsupported

	// ErrCursorActive is returned by Entries while another cursor is open.
	ErrCursorActive = arctype.ErrCursorActive

	// ErrCursorClosed is returned by Next after Close.
	ErrCursorClosed = arctype.ErrCursorClosed

	// ErrEntryExpired is returned when using an entry after its cursor advanced.
	ErrEntryExpired = arctype.ErrEntryExpired

	// ErrNotRepeatable is returned by Entries on a sequential archive that was
	// already enumerated.
	ErrNotRepeatable = arctype.ErrNotRepeatable

	// ErrClosed is returned when using an archive or scanner after Close.
	ErrClosed = arctype.ErrClosed

	// ErrScanTooLarge is returned when an unclassified source exceeds the scan limit.
	ErrScanTooLarge = arctype.ErrScanTooLarge

	// ErrNotEmbeddable is returned when WithEmbeddedFormats names a container
	// that cannot be located by signature.
	ErrNotEmbeddable = arctype.ErrNotEmbeddable
)

// SkipArchive may be returned by a WalkFunc to skip the rest of the current archive.
var SkipArchive = errors.New("skip this archive") //nolint:staticcheck // named like fs.SkipDir

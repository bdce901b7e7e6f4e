package archive

import (
	"log/slog"

	"github.com/meigma/archive/internal/codec"
)

// DefaultMaxScanSize is the default limit on unclassified sources read
// into memory for signature scanning (256MB).
const DefaultMaxScanSize = 256 << 20

// DefaultMaxFolderSize is the default limit on the decoded size of one
// cabinet folder (256MB).
const DefaultMaxFolderSize = 256 << 20

// Option configures Open, OpenReader, OpenBytes, and OpenKind.
type Option func(*config)

type config struct {
	logger      *slog.Logger
	maxScanSize   uint64
	maxFolderSize uint64
	embedded      []Container
	codecOpts     []codec.Option
}

func newConfig(opts []Option) config {
	cfg := config{
		maxScanSize:   DefaultMaxScanSize,
		maxFolderSize: DefaultMaxFolderSize,
		embedded:      []Container{ContainerCabinet},
	}
	for _, opt := range opts {
		opt(&cfg)
	}
	return cfg
}

// log returns the logger, falling back to a discard logger if nil.
func (c *config) log() *slog.Logger {
	if c.logger == nil {
		return slog.New(slog.DiscardHandler)
	}
	return c.logger
}

// WithLogger sets a logger for debug records about sniffing, opening,
// and scanning. If nil, a discard logger is used (default behavior).
func WithLogger(logger *slog.Logger) Option {
	return func(c *config) {
		c.logger = logger
	}
}

// WithMaxScanSize limits how many bytes of an unclassified source are read
// into memory for scanning. The same limit applies when a forward-only
// source must be buffered for a random-access container.
// Set limit to 0 to disable the limit.
func WithMaxScanSize(limit uint64) Option {
	return func(c *config) {
		c.maxScanSize = limit
	}
}

// WithMaxFolderSize limits the decoded size of one cabinet folder. Cabinet
// members are decoded a whole folder at a time; a member whose folder
// exceeds limit fails with ErrDecodeLimit. Set limit to 0 to disable the limit.
func WithMaxFolderSize(limit uint64) Option {
	return func(c *config) {
		c.maxFolderSize = limit
	}
}

// WithMaxDecoderMemory limits the maximum memory used by the zstd decoder.
// Set limit to 0 to disable the limit.
func WithMaxDecoderMemory(limit uint64) Option {
	return func(c *config) {
		c.codecOpts = append(c.codecOpts, codec.WithMaxDecoderMemory(limit))
	}
}

// WithDecoderConcurrency sets the zstd decoder concurrency (default: 1).
// Values < 0 are treated as 0 (use GOMAXPROCS).
func WithDecoderConcurrency(n int) Option {
	return func(c *config) {
		c.codecOpts = append(c.codecOpts, codec.WithDecoderConcurrency(n))
	}
}

// WithDecoderLowmem sets whether the zstd decoder should use low-memory mode (default: false).
func WithDecoderLowmem(enabled bool) Option {
	return func(c *config) {
		c.codecOpts = append(c.codecOpts, codec.WithDecoderLowmem(enabled))
	}
}

// WithEmbeddedFormats sets the containers the scanner searches for in
// unclassified sources. The default is cabinet only. Seven-zip and rar may
// be added; zip and tar cannot be located by signature and make opening
// an unclassified source fail with ErrNotEmbeddable.
func WithEmbeddedFormats(containers ...Container) Option {
	return func(c *config) {
		c.embedded = containers
	}
}

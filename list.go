package archive

import (
	_ "crypto/sha256" // registers digest.Canonical
	"fmt"
	"io"

	"github.com/opencontainers/go-digest"

	"github.com/meigma/archive/internal/sizing"
)

// ManifestEntry describes one member of an archive listing.
type ManifestEntry struct {
	// Path is the member's stored path. It is empty when the member
	// could not be opened.
	Path string

	// Size is the number of bytes read from the member.
	Size uint64

	// Digest is the SHA-256 digest of the member's content.
	Digest digest.Digest

	// Err is set when the member could not be opened or read. Listing
	// continues past it.
	Err error
}

// List enumerates a once, reading every member to record its size and
// content digest. Failures for single members are reported in the
// corresponding ManifestEntry; List itself fails only when enumeration
// cannot start.
func List(a *Archive) ([]ManifestEntry, error) {
	cur, err := a.Entries()
	if err != nil {
		return nil, err
	}
	defer cur.Close()

	var manifest []ManifestEntry
	for e, err := range All(cur) {
		if err != nil {
			manifest = append(manifest, ManifestEntry{Err: err})
			continue
		}
		manifest = append(manifest, describe(e))
	}
	return manifest, nil
}

func describe(e Entry) ManifestEntry {
	path, err := e.Path()
	if err != nil {
		return ManifestEntry{Err: err}
	}

	digester := digest.Canonical.Digester()
	cr := &sizing.CountingReader{R: e}
	if _, err := io.Copy(digester.Hash(), cr); err != nil {
		return ManifestEntry{Path: path, Size: cr.N, Err: fmt.Errorf("read %s: %w", path, err)}
	}
	return ManifestEntry{Path: path, Size: cr.N, Digest: digester.Digest()}
}

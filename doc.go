// Package archive reads cabinet, tar, zip, seven-zip, and rar archives
// through one streaming interface, without the caller naming the format.
//
// Open inspects a source's leading bytes to pick a container and, for tar,
// a compression transform (gzip, bzip2, xz, lzma, zstd, lz4). Sources no
// signature identifies are read into memory and scanned for embedded
// archives instead.
//
// # Quick Start
//
// Enumerate a classified archive:
//
//	o, err := archive.Open("sample.tar.gz")
//	if err != nil {
//	    return err
//	}
//	defer o.Close()
//
//	a, ok := o.(*archive.Archive)
//	if !ok {
//	    return errors.New("no archive signature")
//	}
//	cur, err := a.Entries()
//	if err != nil {
//	    return err
//	}
//	defer cur.Close()
//	for e, err := range archive.All(cur) {
//	    if err != nil {
//	        continue
//	    }
//	    name, _ := e.Path()
//	    data, err := io.ReadAll(e)
//	    ...
//	}
//
// # Borrowing
//
// A cursor lends out one entry at a time. Advancing or closing the cursor
// expires the previous entry; reading an expired entry fails with
// ErrEntryExpired. Each archive allows one open cursor at a time.
//
// Cabinet, zip, and seven-zip archives read their directory up front and
// can be enumerated repeatedly. Tar and rar archives are read as a stream
// and can be enumerated once; check [Archive.Capability].
//
// # Embedded Archives
//
// When Open returns a *Scanner, its Next method opens the archive found at
// each signature match in turn. A match that does not open yields a
// *ScanError and scanning continues. By default only cabinet signatures are
// searched; see [WithEmbeddedFormats]. Use [Walk] to enumerate either
// result uniformly.
package archive

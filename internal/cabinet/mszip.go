package cabinet

import (
	"bytes"
	"fmt"
	"io"

	"github.com/klauspost/compress/flate"

	"github.com/meigma/archive/internal/arctype"
)

// mszipMagic prefixes the deflate payload of every MSZIP block.
var mszipMagic = []byte("CK")

// inflateBlock decodes one MSZIP block. Each block is an independent
// deflate stream primed with the preceding output as its dictionary.
func inflateBlock(payload, history []byte, size int) ([]byte, error) {
	if !bytes.HasPrefix(payload, mszipMagic) {
		return nil, fmt.Errorf("%w: missing MSZIP block signature", arctype.ErrFormat)
	}
	fr := flate.NewReaderDict(bytes.NewReader(payload[len(mszipMagic):]), history)
	defer fr.Close()

	block := make([]byte, size)
	if _, err := io.ReadFull(fr, block); err != nil {
		return nil, fmt.Errorf("%w: %v", arctype.ErrDecompression, err)
	}
	return block, nil
}

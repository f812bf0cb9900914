package compress

import (
	"fmt"
	"io"

	"github.com/arloliu/oasix/errs"
	"github.com/arloliu/oasix/format"
)

// Codec is a streaming compressor/decompressor for CBLOCK payloads.
//
// CBLOCK spans are written and read as streams, not buffers: the writer
// side pipes record bytes through NewWriter into the file sink, the reader
// side pulls record bytes through NewReader from a length-limited source.
// Closing the stream returned by NewWriter finalizes the compressed frame
// but never closes the underlying writer, which continues to carry the
// rest of the file.
//
// Implementations are stateless values; the stream objects they hand out
// come from internal pools and return there on Close.
type Codec interface {
	// Method returns the wire identifier stored in the CBLOCK header.
	Method() format.CompressionType

	// NewWriter returns a stream that compresses everything written to it
	// into w. Close flushes and finalizes the frame.
	NewWriter(w io.Writer) io.WriteCloser

	// NewReader returns a stream that decompresses from r. Close releases
	// the decompressor without touching r.
	NewReader(r io.Reader) (io.ReadCloser, error)
}

var builtinCodecs = map[format.CompressionType]Codec{
	format.CompressionDeflate: NewDeflateCodec(),
	format.CompressionNone:    NewRawCodec(),
	format.CompressionZstd:    NewZstdCodec(),
	format.CompressionS2:      NewS2Codec(),
	format.CompressionLZ4:     NewLZ4Codec(),
}

// GetCodec returns the built-in Codec for a CBLOCK method.
//
// Method 0 (DEFLATE) is the only method the interchange format defines;
// the extension methods round-trip only through this library.
func GetCodec(method format.CompressionType) (Codec, error) {
	if codec, ok := builtinCodecs[method]; ok {
		return codec, nil
	}

	return nil, fmt.Errorf("%w: method %d", errs.ErrUnknownCompression, method)
}

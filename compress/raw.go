package compress

import (
	"io"

	"github.com/arloliu/oasix/format"
)

// RawCodec stores CBLOCK payloads without compression. Both byte counts in
// the block header come out equal, which makes it the reference method for
// exercising the block plumbing and the count backpatch protocol without a
// real compressor in the way.
type RawCodec struct{}

var _ Codec = RawCodec{}

// NewRawCodec creates a passthrough codec.
func NewRawCodec() RawCodec {
	return RawCodec{}
}

// Method returns format.CompressionNone.
func (RawCodec) Method() format.CompressionType {
	return format.CompressionNone
}

// NewWriter returns a passthrough stream; Close is a no-op that leaves w
// open.
func (RawCodec) NewWriter(w io.Writer) io.WriteCloser {
	return &rawWriter{w: w}
}

// NewReader returns a passthrough stream over r.
func (RawCodec) NewReader(r io.Reader) (io.ReadCloser, error) {
	return io.NopCloser(r), nil
}

type rawWriter struct {
	w io.Writer
}

func (rw *rawWriter) Write(p []byte) (int, error) {
	return rw.w.Write(p)
}

func (rw *rawWriter) Close() error {
	rw.w = nil

	return nil
}

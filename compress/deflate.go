package compress

import (
	"fmt"
	"io"
	"sync"

	"github.com/klauspost/compress/flate"

	"github.com/arloliu/oasix/format"
)

// DeflateCodec implements CBLOCK method 0, RFC 1951 DEFLATE. It is the
// only method the interchange format defines, so files meant for other
// tools must use it.
type DeflateCodec struct{}

var _ Codec = DeflateCodec{}

// NewDeflateCodec creates a DEFLATE codec with the default compression
// level.
func NewDeflateCodec() DeflateCodec {
	return DeflateCodec{}
}

// Method returns format.CompressionDeflate.
func (DeflateCodec) Method() format.CompressionType {
	return format.CompressionDeflate
}

// deflateWriterPool reuses flate writers; construction allocates large
// match-history tables that are expensive to rebuild per block.
var deflateWriterPool = sync.Pool{
	New: func() any {
		w, err := flate.NewWriter(nil, flate.DefaultCompression)
		if err != nil {
			// Only reachable with an invalid level constant.
			panic(fmt.Sprintf("failed to create flate writer for pool: %v", err))
		}

		return w
	},
}

var deflateReaderPool = sync.Pool{
	New: func() any {
		return flate.NewReader(nil)
	},
}

// NewWriter returns a DEFLATE stream writing into w.
func (DeflateCodec) NewWriter(w io.Writer) io.WriteCloser {
	fw, _ := deflateWriterPool.Get().(*flate.Writer)
	fw.Reset(w)

	return &deflateWriter{w: fw}
}

// NewReader returns a DEFLATE stream reading from r.
func (DeflateCodec) NewReader(r io.Reader) (io.ReadCloser, error) {
	fr, _ := deflateReaderPool.Get().(io.ReadCloser)
	if err := fr.(flate.Resetter).Reset(r, nil); err != nil {
		deflateReaderPool.Put(fr)

		return nil, err
	}

	return &deflateReader{r: fr}, nil
}

type deflateWriter struct {
	w *flate.Writer
}

func (d *deflateWriter) Write(p []byte) (int, error) {
	return d.w.Write(p)
}

// Close finalizes the DEFLATE stream and returns the writer to the pool.
// The underlying writer stays open.
func (d *deflateWriter) Close() error {
	if d.w == nil {
		return nil
	}
	err := d.w.Close()
	deflateWriterPool.Put(d.w)
	d.w = nil

	return err
}

type deflateReader struct {
	r io.ReadCloser
}

func (d *deflateReader) Read(p []byte) (int, error) {
	return d.r.Read(p)
}

func (d *deflateReader) Close() error {
	if d.r == nil {
		return nil
	}
	// flate's Close reports the sticky stream error, which the caller has
	// already seen from Read; Close here only releases the decompressor.
	_ = d.r.Close()
	deflateReaderPool.Put(d.r)
	d.r = nil

	return nil
}

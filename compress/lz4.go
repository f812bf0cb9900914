package compress

import (
	"io"
	"sync"

	"github.com/pierrec/lz4/v4"

	"github.com/arloliu/oasix/format"
)

// LZ4Codec implements the LZ4 extension method using the lz4 frame
// format. It trades a little ratio against deflate for much faster
// decompression.
type LZ4Codec struct{}

var _ Codec = LZ4Codec{}

// NewLZ4Codec creates an LZ4 codec.
func NewLZ4Codec() LZ4Codec {
	return LZ4Codec{}
}

// Method returns format.CompressionLZ4.
func (LZ4Codec) Method() format.CompressionType {
	return format.CompressionLZ4
}

var lz4WriterPool = sync.Pool{
	New: func() any {
		w := lz4.NewWriter(nil)
		_ = w.Apply(lz4.ConcurrencyOption(1))

		return w
	},
}

var lz4ReaderPool = sync.Pool{
	New: func() any {
		return lz4.NewReader(nil)
	},
}

// NewWriter returns an LZ4 frame writer writing into w.
func (LZ4Codec) NewWriter(w io.Writer) io.WriteCloser {
	lw, _ := lz4WriterPool.Get().(*lz4.Writer)
	lw.Reset(w)

	return &lz4Writer{w: lw}
}

// NewReader returns an LZ4 frame reader reading from r.
func (LZ4Codec) NewReader(r io.Reader) (io.ReadCloser, error) {
	lr, _ := lz4ReaderPool.Get().(*lz4.Reader)
	lr.Reset(r)

	return &lz4Reader{r: lr}, nil
}

type lz4Writer struct {
	w *lz4.Writer
}

func (l *lz4Writer) Write(p []byte) (int, error) {
	return l.w.Write(p)
}

func (l *lz4Writer) Close() error {
	if l.w == nil {
		return nil
	}
	err := l.w.Close()
	lz4WriterPool.Put(l.w)
	l.w = nil

	return err
}

type lz4Reader struct {
	r *lz4.Reader
}

func (l *lz4Reader) Read(p []byte) (int, error) {
	return l.r.Read(p)
}

func (l *lz4Reader) Close() error {
	if l.r == nil {
		return nil
	}
	lz4ReaderPool.Put(l.r)
	l.r = nil

	return nil
}

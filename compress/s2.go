package compress

import (
	"io"
	"sync"

	"github.com/klauspost/compress/s2"

	"github.com/arloliu/oasix/format"
)

// S2Codec implements the S2 extension method. S2 is the fastest of the
// bundled compressors and the usual pick for scratch files where encode
// throughput matters more than the last few percent of ratio.
type S2Codec struct{}

var _ Codec = S2Codec{}

// NewS2Codec creates an S2 codec.
func NewS2Codec() S2Codec {
	return S2Codec{}
}

// Method returns format.CompressionS2.
func (S2Codec) Method() format.CompressionType {
	return format.CompressionS2
}

var s2WriterPool = sync.Pool{
	New: func() any {
		return s2.NewWriter(nil, s2.WriterConcurrency(1))
	},
}

var s2ReaderPool = sync.Pool{
	New: func() any {
		return s2.NewReader(nil)
	},
}

// NewWriter returns an S2 stream writing into w.
func (S2Codec) NewWriter(w io.Writer) io.WriteCloser {
	sw, _ := s2WriterPool.Get().(*s2.Writer)
	sw.Reset(w)

	return &s2Writer{w: sw}
}

// NewReader returns an S2 stream reading from r.
func (S2Codec) NewReader(r io.Reader) (io.ReadCloser, error) {
	sr, _ := s2ReaderPool.Get().(*s2.Reader)
	sr.Reset(r)

	return &s2Reader{r: sr}, nil
}

type s2Writer struct {
	w *s2.Writer
}

func (s *s2Writer) Write(p []byte) (int, error) {
	return s.w.Write(p)
}

func (s *s2Writer) Close() error {
	if s.w == nil {
		return nil
	}
	err := s.w.Close()
	s2WriterPool.Put(s.w)
	s.w = nil

	return err
}

type s2Reader struct {
	r *s2.Reader
}

func (s *s2Reader) Read(p []byte) (int, error) {
	return s.r.Read(p)
}

func (s *s2Reader) Close() error {
	if s.r == nil {
		return nil
	}
	s2ReaderPool.Put(s.r)
	s.r = nil

	return nil
}

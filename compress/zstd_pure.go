//go:build !(gozstd && cgo)

package compress

import (
	"fmt"
	"io"
	"sync"

	"github.com/klauspost/compress/zstd"
)

// zstdEncoderPool pools zstd encoders for reuse. The klauspost encoder is
// designed to operate without allocations after a warmup, so keeping warm
// instances around pays off on every block.
var zstdEncoderPool = sync.Pool{
	New: func() any {
		enc, err := zstd.NewWriter(nil,
			zstd.WithEncoderConcurrency(1),
			zstd.WithEncoderLevel(zstd.SpeedDefault),
			zstd.WithEncoderCRC(false),
		)
		if err != nil {
			// Only reachable with invalid options.
			panic(fmt.Sprintf("failed to create zstd encoder for pool: %v", err))
		}

		return enc
	},
}

var zstdDecoderPool = sync.Pool{
	New: func() any {
		dec, err := zstd.NewReader(nil,
			zstd.WithDecoderConcurrency(1),
			zstd.WithDecoderLowmem(false),
		)
		if err != nil {
			panic(fmt.Sprintf("failed to create zstd decoder for pool: %v", err))
		}

		return dec
	},
}

// NewWriter returns a Zstandard stream writing into w.
func (ZstdCodec) NewWriter(w io.Writer) io.WriteCloser {
	enc, _ := zstdEncoderPool.Get().(*zstd.Encoder)
	enc.Reset(w)

	return &zstdWriter{enc: enc}
}

// NewReader returns a Zstandard stream reading from r.
func (ZstdCodec) NewReader(r io.Reader) (io.ReadCloser, error) {
	dec, _ := zstdDecoderPool.Get().(*zstd.Decoder)
	if err := dec.Reset(r); err != nil {
		zstdDecoderPool.Put(dec)

		return nil, err
	}

	return &zstdReader{dec: dec}, nil
}

type zstdWriter struct {
	enc *zstd.Encoder
}

func (z *zstdWriter) Write(p []byte) (int, error) {
	return z.enc.Write(p)
}

func (z *zstdWriter) Close() error {
	if z.enc == nil {
		return nil
	}
	err := z.enc.Close()
	zstdEncoderPool.Put(z.enc)
	z.enc = nil

	return err
}

type zstdReader struct {
	dec *zstd.Decoder
}

func (z *zstdReader) Read(p []byte) (int, error) {
	return z.dec.Read(p)
}

func (z *zstdReader) Close() error {
	if z.dec == nil {
		return nil
	}
	zstdDecoderPool.Put(z.dec)
	z.dec = nil

	return nil
}

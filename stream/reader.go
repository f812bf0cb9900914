package stream

import (
	"errors"
	"fmt"
	"hash/crc32"
	"io"

	"github.com/arloliu/oasix/compress"
	"github.com/arloliu/oasix/encoding"
	"github.com/arloliu/oasix/errs"
	"github.com/arloliu/oasix/format"
	"github.com/arloliu/oasix/internal/pool"
)

// Reader consumes the byte stream of one file. It mirrors the Writer's
// two-buffer design: outer bytes are read ahead into the file buffer, and
// inside a compressed block the decompressor's output stages in the block
// buffer so record parsing stays byte-oriented without paying a
// decompressor call per byte.
//
// The reader accumulates both signature flavors over every consumed outer
// byte (except the stored signature itself, read through ReadRaw), because
// the file's validation scheme is not known until the END record at the
// very end.
//
// Errors other than io.EOF are sticky: a malformed file stays failed.
type Reader struct {
	src      io.Reader
	validate bool
	crc      uint32
	sum      uint32

	window *pool.ByteBuffer // outer read-ahead
	pos    int              // consumption cursor in window.B
	off    int64            // absolute outer offset consumed

	state     streamState
	decomp    io.ReadCloser
	span      *blockSpan
	blockBuf  *pool.ByteBuffer // staged decompressed bytes
	blockPos  int
	blockLeft uint64 // declared uncompressed bytes not yet served

	closed bool
	err    error
}

var _ encoding.Reader = (*Reader)(nil)

// NewReader creates a Reader over src. When validate is true the reader
// accumulates signature values for comparison against the stored one.
func NewReader(src io.Reader, validate bool) *Reader {
	return &Reader{
		src:      src,
		validate: validate,
		window:   pool.GetFileBuffer(),
		blockBuf: pool.GetBlockBuffer(),
	}
}

// Offset returns the number of outer-stream bytes consumed so far. Inside
// a compressed block this tracks compressed bytes pulled from the source,
// not decompressed record bytes.
func (r *Reader) Offset() int64 {
	return r.off
}

// InBlock reports whether a compressed block is currently being consumed.
func (r *Reader) InBlock() bool {
	return r.state == stateCompressing
}

// Read fills p from the active stream: decompressed block bytes while a
// block is open, outer file bytes otherwise.
func (r *Reader) Read(p []byte) (int, error) {
	if r.err != nil {
		return 0, r.err
	}
	if len(p) == 0 {
		return 0, nil
	}
	if r.state == stateCompressing {
		return r.blockRead(p)
	}

	n, err := r.directRead(p)
	if err != nil && !errors.Is(err, io.EOF) {
		return n, r.fail(err)
	}

	return n, err
}

// ReadByte reads a single byte from the active stream.
func (r *Reader) ReadByte() (byte, error) {
	if r.err != nil {
		return 0, r.err
	}
	if r.state == stateCompressing {
		return r.blockReadByte()
	}

	if r.pos == len(r.window.B) {
		if err := r.fillWindow(); err != nil {
			if errors.Is(err, io.EOF) {
				return 0, io.EOF
			}

			return 0, r.fail(err)
		}
	}
	b := r.window.B[r.pos]
	r.pos++
	r.off++
	if r.validate {
		var one [1]byte
		one[0] = b
		r.crc = crc32.Update(r.crc, crc32.IEEETable, one[:])
		r.sum += uint32(b)
	}

	return b, nil
}

// ReadRaw fills p from the outer stream without accumulating the bytes
// into the signature. The stored signature is the only region a valid
// file excludes from validation. Truncation yields io.ErrUnexpectedEOF.
func (r *Reader) ReadRaw(p []byte) error {
	if r.err != nil {
		return r.err
	}
	if r.state == stateCompressing {
		return r.fail(fmt.Errorf("%w: raw read inside compressed block", errs.ErrSessionState))
	}

	for len(p) > 0 {
		if r.pos == len(r.window.B) {
			if err := r.fillWindow(); err != nil {
				if errors.Is(err, io.EOF) {
					return io.ErrUnexpectedEOF
				}

				return r.fail(err)
			}
		}
		n := copy(p, r.window.B[r.pos:])
		r.pos += n
		r.off += int64(n)
		p = p[n:]
	}

	return nil
}

// EnterBlock starts consuming a compressed block: exactly compressed outer
// bytes feed codec's decompressor, whose output must total exactly
// uncompressed bytes before the reader returns to the outer stream.
//
// The caller has already read the block record's tag, method, and both
// counts through the normal validated path.
func (r *Reader) EnterBlock(codec compress.Codec, uncompressed, compressed uint64) error {
	if r.err != nil {
		return r.err
	}
	if r.state == stateCompressing {
		return r.fail(fmt.Errorf("%w: block inside compressed block", errs.ErrNestedCBlock))
	}

	span := &blockSpan{r: r, remaining: compressed}
	dec, err := codec.NewReader(span)
	if err != nil {
		return r.fail(fmt.Errorf("%w: %v", errs.ErrCBlockCorrupt, err))
	}

	r.decomp = dec
	r.span = span
	r.blockLeft = uncompressed
	r.blockBuf.Reset()
	r.blockPos = 0
	r.state = stateCompressing

	if uncompressed == 0 {
		return r.exitBlock()
	}

	return nil
}

// Signature returns the accumulated signature value for the given scheme.
// The second return is false when validation is disabled or the scheme
// stores no signature.
func (r *Reader) Signature(scheme format.ValidationScheme) (uint32, bool) {
	if !r.validate {
		return 0, false
	}
	switch scheme {
	case format.SchemeCRC32:
		return r.crc, true
	case format.SchemeChecksum32:
		return r.sum, true
	default:
		return 0, false
	}
}

// Close releases both buffers back to their pools. It is idempotent.
func (r *Reader) Close() error {
	if r.closed {
		return nil
	}
	r.closed = true

	if r.decomp != nil {
		_ = r.decomp.Close()
		r.decomp = nil
	}
	pool.PutFileBuffer(r.window)
	pool.PutBlockBuffer(r.blockBuf)
	r.window = &pool.ByteBuffer{}
	r.blockBuf = &pool.ByteBuffer{}
	if r.err == nil {
		r.err = fmt.Errorf("%w: reader closed", errs.ErrSessionState)
	}

	return nil
}

// fail records the first sticky error and returns it.
func (r *Reader) fail(err error) error {
	if r.err == nil {
		r.err = err
	}

	return r.err
}

// fillWindow refills the outer read-ahead window. Returns io.EOF when the
// source is exhausted.
func (r *Reader) fillWindow() error {
	r.window.Reset()
	r.pos = 0
	for {
		n, err := r.src.Read(r.window.B[0:cap(r.window.B)])
		if n > 0 {
			r.window.B = r.window.B[:n]

			return nil
		}
		if err != nil {
			return err
		}
	}
}

// directRead serves outer bytes from the window, accumulating them into
// the signature.
func (r *Reader) directRead(p []byte) (int, error) {
	if r.pos == len(r.window.B) {
		if err := r.fillWindow(); err != nil {
			return 0, err
		}
	}
	n := copy(p, r.window.B[r.pos:])
	r.pos += n
	r.off += int64(n)
	if r.validate {
		consumed := r.window.B[r.pos-n : r.pos]
		r.crc = crc32.Update(r.crc, crc32.IEEETable, consumed)
		for _, b := range consumed {
			r.sum += uint32(b)
		}
	}

	return n, nil
}

// blockRead serves decompressed bytes from the block buffer, finishing the
// block when the declared uncompressed count is reached.
func (r *Reader) blockRead(p []byte) (int, error) {
	if r.blockPos == len(r.blockBuf.B) {
		if err := r.refillBlock(); err != nil {
			return 0, err
		}
	}
	n := copy(p, r.blockBuf.B[r.blockPos:])
	r.blockPos += n
	r.blockLeft -= uint64(n)
	if r.blockLeft == 0 {
		if err := r.exitBlock(); err != nil {
			return n, err
		}
	}

	return n, nil
}

func (r *Reader) blockReadByte() (byte, error) {
	if r.blockPos == len(r.blockBuf.B) {
		if err := r.refillBlock(); err != nil {
			return 0, err
		}
	}
	b := r.blockBuf.B[r.blockPos]
	r.blockPos++
	r.blockLeft--
	if r.blockLeft == 0 {
		if err := r.exitBlock(); err != nil {
			return 0, err
		}
	}

	return b, nil
}

// refillBlock stages the next run of decompressor output, capped at the
// declared uncompressed bytes still due.
func (r *Reader) refillBlock() error {
	want := cap(r.blockBuf.B)
	if r.blockLeft < uint64(want) {
		want = int(r.blockLeft)
	}
	r.blockBuf.Reset()
	r.blockPos = 0

	for {
		n, err := r.decomp.Read(r.blockBuf.B[0:want])
		if n > 0 {
			r.blockBuf.B = r.blockBuf.B[:n]

			return nil
		}
		if err == nil {
			continue
		}
		switch {
		case errors.Is(err, io.EOF):
			return r.fail(fmt.Errorf("%w: block ended %d bytes short of the declared uncompressed count",
				errs.ErrCBlockSize, r.blockLeft))
		case errors.Is(err, io.ErrUnexpectedEOF):
			return r.fail(fmt.Errorf("compressed block truncated: %w", io.ErrUnexpectedEOF))
		default:
			return r.fail(fmt.Errorf("%w: %v", errs.ErrCBlockCorrupt, err))
		}
	}
}

// exitBlock verifies the block ended exactly where declared: the
// decompressor must produce no further output and the compressed span must
// be fully consumed. Only then does the reader return to the outer stream.
func (r *Reader) exitBlock() error {
	var probe [1]byte
	n, err := io.ReadFull(r.decomp, probe[:])
	if n != 0 {
		return r.fail(fmt.Errorf("%w: decompressor produced more than the declared uncompressed count",
			errs.ErrCBlockSize))
	}
	if err != nil && !errors.Is(err, io.EOF) {
		return r.fail(fmt.Errorf("%w: %v", errs.ErrCBlockCorrupt, err))
	}
	if r.span.remaining != 0 {
		return r.fail(fmt.Errorf("%w: %d declared compressed bytes not consumed",
			errs.ErrCBlockSize, r.span.remaining))
	}

	_ = r.decomp.Close()
	r.decomp = nil
	r.span = nil
	r.state = stateDirect

	return nil
}

// blockSpan limits the decompressor's view of the outer stream to the
// declared compressed byte count, so its read-ahead can never swallow
// records that follow the block.
type blockSpan struct {
	r         *Reader
	remaining uint64
}

func (s *blockSpan) Read(p []byte) (int, error) {
	if s.remaining == 0 {
		return 0, io.EOF
	}
	if uint64(len(p)) > s.remaining {
		p = p[:s.remaining]
	}
	n, err := s.r.directRead(p)
	s.remaining -= uint64(n)
	if errors.Is(err, io.EOF) && s.remaining > 0 {
		// The outer stream ended inside the compressed span.
		return n, io.ErrUnexpectedEOF
	}

	return n, err
}

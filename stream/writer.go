package stream

import (
	"errors"
	"fmt"
	"io"

	"github.com/arloliu/oasix/compress"
	"github.com/arloliu/oasix/encoding"
	"github.com/arloliu/oasix/errs"
	"github.com/arloliu/oasix/format"
	"github.com/arloliu/oasix/internal/pool"
)

// flushAlign is the granularity auto-flushes round down to. Keeping sink
// writes page-sized avoids read-modify-write cycles on buffered files.
const flushAlign = 4096

// streamState selects which buffer receives emitted bytes.
type streamState uint8

const (
	// stateDirect routes bytes to the file buffer.
	stateDirect streamState = iota

	// stateCompressing routes bytes to the block buffer, whose drained
	// contents pass through the compressor into the file buffer.
	stateCompressing
)

// Writer emits the byte stream of one file. It owns two fixed-capacity
// buffers and a two-state machine: in the direct state record bytes land in
// the file buffer and flush to the sink when it fills; inside a compressed
// block record bytes stage in the block buffer and reach the file buffer
// only as compressor output.
//
// Errors are sticky. Once any write or flush fails, every later call
// returns the same error, so record emitters can write whole records and
// check once.
//
// A Writer belongs to a single encoding session on a single goroutine.
type Writer struct {
	sink      Sink
	validator *Validator

	fileBuf *pool.ByteBuffer
	flushed int64 // sink offset of fileBuf.B[0]

	state        streamState
	blockBuf     *pool.ByteBuffer
	comp         io.WriteCloser
	uncompressed uint64
	compressed   uint64
	uncompPatch  Patch
	compPatch    Patch

	pending int // reserved regions not yet filled
	closed  bool
	err     error
}

var _ encoding.Writer = (*Writer)(nil)

// NewWriter creates a Writer emitting into sink, validating with scheme.
func NewWriter(sink Sink, scheme format.ValidationScheme) *Writer {
	return &Writer{
		sink:      sink,
		validator: NewValidator(scheme),
		fileBuf:   pool.GetFileBuffer(),
		blockBuf:  pool.GetBlockBuffer(),
	}
}

// Offset returns the absolute file offset of the next emitted byte. While
// a compressed block is open this tracks compressor output, not the record
// bytes staged in the block buffer.
func (w *Writer) Offset() int64 {
	return w.flushed + int64(len(w.fileBuf.B))
}

// Write emits len(p) bytes through the active buffer.
func (w *Writer) Write(p []byte) (int, error) {
	if w.err != nil {
		return 0, w.err
	}

	if w.state == stateCompressing {
		if err := w.stageBlock(p); err != nil {
			return 0, err
		}
		w.uncompressed += uint64(len(p))

		return len(p), nil
	}

	w.validator.Consume(p)
	if err := w.push(p); err != nil {
		return 0, err
	}

	return len(p), nil
}

// WriteByte emits a single byte through the active buffer.
func (w *Writer) WriteByte(b byte) error {
	if w.err != nil {
		return w.err
	}

	if w.state == stateCompressing {
		if len(w.blockBuf.B) == cap(w.blockBuf.B) {
			if err := w.drainBlock(); err != nil {
				return err
			}
		}
		w.blockBuf.B = append(w.blockBuf.B, b)
		w.uncompressed++

		return nil
	}

	w.validator.ConsumeByte(b)
	if len(w.fileBuf.B) == cap(w.fileBuf.B) {
		if err := w.flushAligned(); err != nil {
			return err
		}
	}
	w.fileBuf.B = append(w.fileBuf.B, b)

	return nil
}

// WriteRaw emits bytes that are excluded from the validation signature.
// The stored signature itself is the only such region in a valid file.
// Raw writes are illegal inside a compressed block.
func (w *Writer) WriteRaw(p []byte) error {
	if w.err != nil {
		return w.err
	}
	if w.state == stateCompressing {
		return w.fail(fmt.Errorf("%w: raw write inside compressed block", errs.ErrSessionState))
	}

	return w.push(p)
}

// Reserve emits width provisional bytes at the current offset and returns
// a Patch ticket for writing their final contents later. The reserved
// bytes are left out of the validation signature until the patch is
// filled; under CRC32 the validator suspends at the first reserved byte.
//
// The width must be between 1 and encoding.MaxUintLen64, the widest
// zero-padded unsigned integer Fill can produce. Reserve is illegal inside
// a compressed block: a reserved region must have a stable file offset.
func (w *Writer) Reserve(width int) (Patch, error) {
	if w.err != nil {
		return Patch{}, w.err
	}
	if w.state == stateCompressing {
		return Patch{}, w.fail(fmt.Errorf("%w: reserve inside compressed block", errs.ErrSessionState))
	}
	if width < 1 || width > encoding.MaxUintLen64 {
		return Patch{}, w.fail(fmt.Errorf("%w: reserve width %d", errs.ErrSessionState, width))
	}

	offset := w.Offset()
	w.validator.Skip(width)

	var zeros [encoding.MaxUintLen64]byte
	if err := w.push(zeros[:width]); err != nil {
		return Patch{}, err
	}

	w.pending++

	return Patch{w: w, offset: offset, width: width}, nil
}

// BeginBlock opens a compressed block: the file buffer is flushed
// completely, two fixed-width count placeholders are reserved, and all
// later writes stage through the block buffer into codec's compressor.
//
// The caller emits the block record's tag and method fields first; the
// counts and the compressed payload follow in wire order.
func (w *Writer) BeginBlock(codec compress.Codec) error {
	if w.err != nil {
		return w.err
	}
	if w.state == stateCompressing {
		return w.fail(fmt.Errorf("%w: block already open", errs.ErrNestedCBlock))
	}

	// A complete flush maximizes the chance the count placeholders and the
	// whole compressed payload stay resident, keeping the patch in memory.
	if err := w.Flush(); err != nil {
		return err
	}

	var err error
	if w.uncompPatch, err = w.Reserve(encoding.MaxUintLen64); err != nil {
		return err
	}
	if w.compPatch, err = w.Reserve(encoding.MaxUintLen64); err != nil {
		return err
	}

	w.blockBuf.Reset()
	w.uncompressed = 0
	w.compressed = 0
	w.comp = codec.NewWriter((*compressedOutput)(w))
	w.state = stateCompressing

	return nil
}

// EndBlock closes the open compressed block: the staged bytes drain
// through the compressor, the frame is finalized, and both count
// placeholders are patched with the final byte totals.
func (w *Writer) EndBlock() error {
	if w.err != nil {
		return w.err
	}
	if w.state != stateCompressing {
		return w.fail(fmt.Errorf("%w: end block in direct state", errs.ErrNoCBlock))
	}

	if err := w.drainBlock(); err != nil {
		return err
	}
	if err := w.comp.Close(); err != nil {
		return w.fail(fmt.Errorf("failed to finalize compressed block: %w", err))
	}
	w.comp = nil
	w.state = stateDirect

	if err := w.uncompPatch.Fill(w.uncompressed); err != nil {
		return err
	}

	return w.compPatch.Fill(w.compressed)
}

// Flush writes every buffered byte to the sink. Unlike auto-flush it does
// not round down to the alignment granularity.
func (w *Writer) Flush() error {
	if w.err != nil {
		return w.err
	}

	return w.flushN(len(w.fileBuf.B))
}

// Signature finalizes validation and returns the signature value. Under
// CRC32 with a suspended validator this is where the finished file is
// re-read from the first patched offset to catch up.
//
// The second return is false for SchemeNone. Signature flushes the file
// buffer completely; the caller appends the signature bytes afterwards via
// WriteRaw so they stay outside the validated stream.
func (w *Writer) Signature() (uint32, bool, error) {
	if w.err != nil {
		return 0, false, w.err
	}
	if w.state == stateCompressing {
		return 0, false, w.fail(fmt.Errorf("%w: signature inside compressed block", errs.ErrSessionState))
	}
	if w.pending != 0 {
		return 0, false, w.fail(fmt.Errorf("%w: %d reserved regions not filled", errs.ErrSessionState, w.pending))
	}

	if err := w.Flush(); err != nil {
		return 0, false, err
	}

	if err := w.catchUp(); err != nil {
		return 0, false, err
	}

	value, ok := w.validator.Signature()

	return value, ok, nil
}

// Close flushes remaining bytes and releases both buffers back to their
// pools. It is idempotent; closing a failed writer still releases the
// buffers and returns the sticky error.
func (w *Writer) Close() error {
	if w.closed {
		return nil
	}
	w.closed = true

	err := w.err
	if err == nil && w.state == stateCompressing {
		err = w.fail(fmt.Errorf("%w: writer closed with open compressed block", errs.ErrNestedCBlock))
	}
	if err == nil {
		err = w.flushN(len(w.fileBuf.B))
	}

	pool.PutFileBuffer(w.fileBuf)
	pool.PutBlockBuffer(w.blockBuf)
	w.fileBuf = &pool.ByteBuffer{}
	w.blockBuf = &pool.ByteBuffer{}
	if w.err == nil {
		w.err = fmt.Errorf("%w: writer closed", errs.ErrSessionState)
	}

	return err
}

// fail records the first error and returns it.
func (w *Writer) fail(err error) error {
	if w.err == nil {
		w.err = err
	}

	return w.err
}

// push appends bytes to the file buffer, auto-flushing when the incoming
// bytes do not fit.
func (w *Writer) push(p []byte) error {
	for len(p) > 0 {
		free := cap(w.fileBuf.B) - len(w.fileBuf.B)
		if len(p) <= free {
			w.fileBuf.B = append(w.fileBuf.B, p...)

			return nil
		}
		if err := w.flushAligned(); err != nil {
			return err
		}
		if free = cap(w.fileBuf.B) - len(w.fileBuf.B); len(p) > free {
			// Larger than the whole buffer: take what fits and go around.
			w.fileBuf.B = append(w.fileBuf.B, p[:free]...)
			p = p[free:]
		}
	}

	return nil
}

// flushAligned flushes the buffered prefix rounded down to flushAlign,
// keeping the unaligned tail buffered. A buffer shorter than the alignment
// flushes completely, so forward progress is guaranteed.
func (w *Writer) flushAligned() error {
	n := len(w.fileBuf.B) &^ (flushAlign - 1)
	if n == 0 {
		n = len(w.fileBuf.B)
	}

	return w.flushN(n)
}

// flushN writes the first n buffered bytes to the sink and shifts the tail
// to the front.
func (w *Writer) flushN(n int) error {
	if n == 0 {
		return nil
	}
	if _, err := w.sink.Write(w.fileBuf.B[:n]); err != nil {
		return w.fail(fmt.Errorf("failed to flush file buffer: %w", err))
	}
	w.flushed += int64(n)
	rest := copy(w.fileBuf.B, w.fileBuf.B[n:])
	w.fileBuf.B = w.fileBuf.B[:rest]

	return nil
}

// stageBlock appends bytes to the block buffer, draining through the
// compressor whenever it fills.
func (w *Writer) stageBlock(p []byte) error {
	for len(p) > 0 {
		free := cap(w.blockBuf.B) - len(w.blockBuf.B)
		if free == 0 {
			if err := w.drainBlock(); err != nil {
				return err
			}

			continue
		}
		n := min(free, len(p))
		w.blockBuf.B = append(w.blockBuf.B, p[:n]...)
		p = p[n:]
	}

	return nil
}

// drainBlock feeds the staged block bytes to the compressor.
func (w *Writer) drainBlock() error {
	if len(w.blockBuf.B) == 0 {
		return nil
	}
	if _, err := w.comp.Write(w.blockBuf.B); err != nil {
		return w.fail(fmt.Errorf("failed to compress block bytes: %w", err))
	}
	w.blockBuf.Reset()

	return nil
}

// catchUp re-reads the finished sink from the first suspended offset so a
// suspended CRC validator covers the patched bytes.
func (w *Writer) catchUp() error {
	from, ok := w.validator.CatchUpFrom()
	if !ok {
		return nil
	}

	total := w.flushed
	scratch := w.fileBuf.B[:cap(w.fileBuf.B)]
	for off := from; off < total; {
		chunk := scratch
		if rem := total - off; rem < int64(len(chunk)) {
			chunk = chunk[:rem]
		}
		n, err := w.sink.ReadAt(chunk, off)
		if n > 0 {
			w.validator.CatchUp(chunk[:n])
			off += int64(n)
		}
		if err != nil && !errors.Is(err, io.EOF) {
			return w.fail(fmt.Errorf("failed to re-read sink for validation catch-up: %w", err))
		}
		if n == 0 {
			return w.fail(fmt.Errorf("failed to re-read sink for validation catch-up: short read at offset %d", off))
		}
	}
	w.validator.Resume(total)

	return nil
}

// compressedOutput adapts the writer's direct emission path as the
// compressor's destination, tallying compressed bytes as they appear.
type compressedOutput Writer

func (c *compressedOutput) Write(p []byte) (int, error) {
	w := (*Writer)(c)
	w.compressed += uint64(len(p))
	w.validator.Consume(p)
	if err := w.push(p); err != nil {
		return 0, err
	}

	return len(p), nil
}

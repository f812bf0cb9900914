package stream

import (
	"fmt"

	"github.com/arloliu/oasix/encoding"
	"github.com/arloliu/oasix/errs"
)

// Patch is a deferred-write ticket for a region reserved with
// (*Writer).Reserve. It remembers the region's absolute file offset and
// fixed width; Fill writes the final contents exactly once.
//
// The compressed-block count fields are the only patched regions in a
// conforming file, but the ticket is independent of the block machinery
// and works for any reserved region.
type Patch struct {
	w      *Writer
	offset int64
	width  int
	done   bool
}

// Offset returns the absolute file offset of the reserved region.
func (p *Patch) Offset() int64 {
	return p.offset
}

// Width returns the reserved width in bytes.
func (p *Patch) Width() int {
	return p.width
}

// Fill writes v into the reserved region as a zero-padded unsigned integer
// occupying exactly the reserved width, then feeds the final bytes to the
// validator. The region is patched in memory when still buffered, through
// one positioned sink write when already flushed, or split across both
// when the flush boundary falls inside it.
//
// Fill panics if the minimal encoding of v exceeds the reserved width;
// reserving too narrow a slot is a programming error, not a recoverable
// condition.
func (p *Patch) Fill(v uint64) error {
	if p.w == nil {
		return fmt.Errorf("%w: fill of unreserved patch", errs.ErrSessionState)
	}
	if p.done {
		return fmt.Errorf("%w: patch at offset %d filled twice", errs.ErrSessionState, p.offset)
	}
	w := p.w
	if w.err != nil {
		return w.err
	}

	var tmp [encoding.MaxUintLen64]byte
	b := encoding.AppendPaddedUint(tmp[:0], v, p.width)

	start := p.offset
	end := p.offset + int64(p.width)
	switch {
	case start >= w.flushed:
		// Still buffered in full.
		copy(w.fileBuf.B[start-w.flushed:], b)
	case end <= w.flushed:
		// Flushed in full: one positioned write.
		if _, err := w.sink.WriteAt(b, start); err != nil {
			return w.fail(fmt.Errorf("failed to patch reserved region at offset %d: %w", start, err))
		}
	default:
		// The flush boundary falls inside the region.
		split := w.flushed - start
		if _, err := w.sink.WriteAt(b[:split], start); err != nil {
			return w.fail(fmt.Errorf("failed to patch reserved region at offset %d: %w", start, err))
		}
		copy(w.fileBuf.B, b[split:])
	}

	w.validator.Patch(b)
	w.pending--
	p.done = true

	return nil
}

package stream

import (
	"hash/crc32"

	"github.com/arloliu/oasix/format"
)

// validatorMode is the state of the write-side validator.
type validatorMode uint8

const (
	// validatorLive means every byte crossing the writer is accumulated as
	// it is emitted.
	validatorLive validatorMode = iota

	// validatorSuspended means accumulation stopped at resumeFrom because a
	// reserved region was emitted with provisional contents. CRC is order
	// dependent, so nothing after that point can be accumulated until the
	// finished bytes are re-read from the sink.
	validatorSuspended
)

// Validator accumulates the whole-file validation signature on the write
// path.
//
// The two schemes behave differently around reserved (to-be-patched)
// regions:
//
//   - Checksum32 is an order-independent byte sum. Reserved bytes are simply
//     not summed when emitted; Patch feeds the final bytes instead. The
//     validator never leaves the live state.
//   - CRC32 is order dependent. The first reserved byte suspends the
//     validator, recording where accumulation stopped. At finalization the
//     writer re-reads the finished sink from that offset and catches up.
//
// Offsets are tracked by the validator itself: Consume and Skip advance an
// internal cursor that mirrors the absolute file offset, so callers only
// report what crossed the boundary, never where.
type Validator struct {
	scheme     format.ValidationScheme
	mode       validatorMode
	offset     int64 // absolute offset validated up to (live mode)
	resumeFrom int64 // where accumulation stopped (suspended mode)
	crc        uint32
	sum        uint32
}

// NewValidator creates a validator for the given scheme. A SchemeNone
// validator accepts all calls and reports no signature.
func NewValidator(scheme format.ValidationScheme) *Validator {
	return &Validator{scheme: scheme}
}

// Scheme returns the validation scheme.
func (v *Validator) Scheme() format.ValidationScheme {
	return v.scheme
}

// Consume accumulates sequentially emitted bytes.
func (v *Validator) Consume(p []byte) {
	switch v.scheme {
	case format.SchemeNone:
		return
	case format.SchemeChecksum32:
		for _, b := range p {
			v.sum += uint32(b)
		}
		v.offset += int64(len(p))
	case format.SchemeCRC32:
		if v.mode == validatorSuspended {
			return
		}
		v.crc = crc32.Update(v.crc, crc32.IEEETable, p)
		v.offset += int64(len(p))
	}
}

// ConsumeByte accumulates a single sequentially emitted byte.
func (v *Validator) ConsumeByte(b byte) {
	switch v.scheme {
	case format.SchemeNone:
		return
	case format.SchemeChecksum32:
		v.sum += uint32(b)
		v.offset++
	case format.SchemeCRC32:
		if v.mode == validatorSuspended {
			return
		}
		var one [1]byte
		one[0] = b
		v.crc = crc32.Update(v.crc, crc32.IEEETable, one[:])
		v.offset++
	}
}

// Skip records that n reserved bytes were emitted with provisional
// contents. The checksum scheme leaves them out of the sum and waits for
// Patch; the CRC scheme suspends at the first such byte.
func (v *Validator) Skip(n int) {
	switch v.scheme {
	case format.SchemeNone:
		return
	case format.SchemeChecksum32:
		v.offset += int64(n)
	case format.SchemeCRC32:
		if v.mode == validatorLive {
			v.mode = validatorSuspended
			v.resumeFrom = v.offset
		}
	}
}

// Patch accumulates the final bytes of a previously skipped region. Only
// the checksum scheme uses them; CRC recovers patched regions during
// catch-up.
func (v *Validator) Patch(p []byte) {
	if v.scheme != format.SchemeChecksum32 {
		return
	}
	for _, b := range p {
		v.sum += uint32(b)
	}
}

// CatchUpFrom reports whether accumulation is suspended, and from which
// absolute offset the finished file must be re-read to catch up.
func (v *Validator) CatchUpFrom() (int64, bool) {
	if v.mode != validatorSuspended {
		return 0, false
	}

	return v.resumeFrom, true
}

// CatchUp accumulates bytes re-read from the finished sink, in file order,
// starting at the offset reported by CatchUpFrom. The last call returns the
// validator to the live state via Resume.
func (v *Validator) CatchUp(p []byte) {
	if v.scheme != format.SchemeCRC32 || v.mode != validatorSuspended {
		return
	}
	v.crc = crc32.Update(v.crc, crc32.IEEETable, p)
	v.resumeFrom += int64(len(p))
}

// Resume returns a suspended validator to the live state once catch-up has
// covered every byte through the given absolute offset.
func (v *Validator) Resume(offset int64) {
	if v.mode != validatorSuspended {
		return
	}
	v.mode = validatorLive
	v.offset = offset
}

// Signature returns the accumulated signature value. The second return is
// false for SchemeNone, which stores no signature.
//
// Calling Signature while suspended returns the pre-suspension CRC; the
// writer finalization path always catches up first.
func (v *Validator) Signature() (uint32, bool) {
	switch v.scheme {
	case format.SchemeCRC32:
		return v.crc, true
	case format.SchemeChecksum32:
		return v.sum, true
	default:
		return 0, false
	}
}

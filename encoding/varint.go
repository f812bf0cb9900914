package encoding

import (
	"fmt"

	"github.com/arloliu/oasix/errs"
)

const (
	// MaxUintLen64 is the maximum number of bytes a 64-bit unsigned
	// variable-width integer may occupy on the wire.
	MaxUintLen64 = 10
	// MaxUintLen32 is the maximum number of bytes a 32-bit unsigned
	// variable-width integer may occupy on the wire.
	MaxUintLen32 = 5
)

// PutUint writes v as a variable-width unsigned integer.
//
// Each byte carries seven data bits, least significant group first, with
// the high bit set on every byte except the last. The minimal encoding is
// always produced; use PutPaddedUint for fixed-width slots.
func PutUint(w Writer, v uint64) error {
	for v >= 0x80 {
		if err := w.WriteByte(byte(v) | 0x80); err != nil {
			return err
		}
		v >>= 7
	}

	return w.WriteByte(byte(v))
}

// PutUint32 writes v as a variable-width unsigned integer.
func PutUint32(w Writer, v uint32) error {
	return PutUint(w, uint64(v))
}

// UintLen returns the number of bytes PutUint emits for v.
func UintLen(v uint64) int {
	n := 1
	for v >= 0x80 {
		v >>= 7
		n++
	}

	return n
}

// Uint reads a variable-width unsigned integer.
//
// Encodings longer than MaxUintLen64 bytes, or whose data bits exceed 64,
// fail with ErrMalformedVarint. Redundant zero padding within the width
// limit is accepted, so values written by PutPaddedUint decode normally.
func Uint(r Reader) (uint64, error) {
	var v uint64
	for i := 0; i < MaxUintLen64; i++ {
		b, err := r.ReadByte()
		if err != nil {
			return 0, eof(err)
		}
		if i == MaxUintLen64-1 && b > 1 {
			return 0, fmt.Errorf("%w: unsigned value exceeds 64 bits", errs.ErrMalformedVarint)
		}
		v |= uint64(b&0x7f) << (7 * i)
		if b < 0x80 {
			return v, nil
		}
	}

	return 0, fmt.Errorf("%w: continuation beyond %d bytes", errs.ErrMalformedVarint, MaxUintLen64)
}

// Uint32 reads a variable-width unsigned integer that must fit in 32 bits.
func Uint32(r Reader) (uint32, error) {
	var v uint32
	for i := 0; i < MaxUintLen32; i++ {
		b, err := r.ReadByte()
		if err != nil {
			return 0, eof(err)
		}
		if i == MaxUintLen32-1 && b > 0x0f {
			return 0, fmt.Errorf("%w: unsigned value exceeds 32 bits", errs.ErrMalformedVarint)
		}
		v |= uint32(b&0x7f) << (7 * i)
		if b < 0x80 {
			return v, nil
		}
	}

	return 0, fmt.Errorf("%w: continuation beyond %d bytes", errs.ErrMalformedVarint, MaxUintLen32)
}

// PutInt writes v as a variable-width signed integer.
//
// Signed integers are sign-magnitude: bit 0 of the first byte holds the
// sign (1 = negative), the first byte contributes six magnitude bits and
// each later byte seven, with the usual continuation bit.
func PutInt(w Writer, v int64) error {
	var sign byte
	m := uint64(v)
	if v < 0 {
		sign = 1
		m = -m
	}

	b := byte(m&0x3f)<<1 | sign
	m >>= 6
	if m != 0 {
		b |= 0x80
	}
	if err := w.WriteByte(b); err != nil {
		return err
	}

	for m != 0 {
		b = byte(m & 0x7f)
		m >>= 7
		if m != 0 {
			b |= 0x80
		}
		if err := w.WriteByte(b); err != nil {
			return err
		}
	}

	return nil
}

// IntLen returns the number of bytes PutInt emits for v.
func IntLen(v int64) int {
	m := uint64(v)
	if v < 0 {
		m = -m
	}

	n := 1
	m >>= 6
	for m != 0 {
		m >>= 7
		n++
	}

	return n
}

// Int reads a variable-width signed integer.
//
// The magnitude may occupy up to 64 bits; positive values above
// math.MaxInt64 and negative values below math.MinInt64 fail with
// ErrMalformedVarint.
func Int(r Reader) (int64, error) {
	b, err := r.ReadByte()
	if err != nil {
		return 0, eof(err)
	}

	neg := b&1 != 0
	m := uint64(b>>1) & 0x3f
	if b >= 0x80 {
		shift := uint(6)
		for i := 1; ; i++ {
			if i == MaxUintLen64 {
				return 0, fmt.Errorf("%w: continuation beyond %d bytes", errs.ErrMalformedVarint, MaxUintLen64)
			}
			b, err = r.ReadByte()
			if err != nil {
				return 0, eof(err)
			}
			if i == MaxUintLen64-1 && b > 3 {
				return 0, fmt.Errorf("%w: signed magnitude exceeds 64 bits", errs.ErrMalformedVarint)
			}
			m |= uint64(b&0x7f) << shift
			shift += 7
			if b < 0x80 {
				break
			}
		}
	}

	if neg {
		if m > 1<<63 {
			return 0, fmt.Errorf("%w: signed value below math.MinInt64", errs.ErrMalformedVarint)
		}

		return -int64(m), nil //nolint:gosec // wraps to math.MinInt64 for m == 1<<63
	}
	if m >= 1<<63 {
		return 0, fmt.Errorf("%w: signed value above math.MaxInt64", errs.ErrMalformedVarint)
	}

	return int64(m), nil
}

// PutPaddedUint writes v as exactly width bytes by zero-padding the
// continuation chain.
//
// Padded encodings decode through Uint like any other unsigned integer.
// They exist so length fields can be reserved before their final value is
// known and patched in place afterwards.
//
// Panics if v does not fit in width bytes or width exceeds MaxUintLen64;
// slot widths are fixed by the caller, so overflow is a programming error
// rather than a data error.
func PutPaddedUint(w Writer, v uint64, width int) error {
	if width > MaxUintLen64 || UintLen(v) > width {
		panic(fmt.Sprintf("encoding: value %d does not fit in %d padded bytes", v, width))
	}

	for i := 0; i < width-1; i++ {
		if err := w.WriteByte(byte(v&0x7f) | 0x80); err != nil {
			return err
		}
		v >>= 7
	}

	return w.WriteByte(byte(v))
}

// AppendPaddedUint appends the width-byte padded encoding of v to dst and
// returns the extended slice. It panics under the same conditions as
// PutPaddedUint.
func AppendPaddedUint(dst []byte, v uint64, width int) []byte {
	if width > MaxUintLen64 || UintLen(v) > width {
		panic(fmt.Sprintf("encoding: value %d does not fit in %d padded bytes", v, width))
	}

	for i := 0; i < width-1; i++ {
		dst = append(dst, byte(v&0x7f)|0x80)
		v >>= 7
	}

	return append(dst, byte(v))
}

package encoding

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/arloliu/oasix/errs"
	"github.com/arloliu/oasix/format"
)

// Real is a decoded real number. Exactly the fields required by Type are
// meaningful; the rest stay zero.
//
//   - format.RealPosInt / RealNegInt: Whole holds the magnitude.
//   - format.RealPosReciprocal / RealNegReciprocal: Denom holds the divisor.
//   - format.RealPosRatio / RealNegRatio: Num over Denom.
//   - format.RealFloat32 / RealFloat64: Float holds the value, widened
//     exactly for the 32-bit form.
//
// All integer fields are unsigned magnitudes; the sign lives in Type.
type Real struct {
	Type  format.RealType
	Whole uint64
	Num   uint64
	Denom uint64
	Float float64
}

// RealUint returns the positive integer form of v.
func RealUint(v uint64) Real {
	return Real{Type: format.RealPosInt, Whole: v}
}

// RealInt returns the integer form of v, choosing the sign variant.
func RealInt(v int64) Real {
	if v < 0 {
		m := uint64(v)

		return Real{Type: format.RealNegInt, Whole: -m}
	}

	return Real{Type: format.RealPosInt, Whole: uint64(v)}
}

// RealReciprocal returns the reciprocal form 1/denom, negated when neg.
func RealReciprocal(denom uint64, neg bool) Real {
	t := format.RealPosReciprocal
	if neg {
		t = format.RealNegReciprocal
	}

	return Real{Type: t, Denom: denom}
}

// RealRatio returns the ratio form num/denom, negated when neg.
func RealRatio(num, denom uint64, neg bool) Real {
	t := format.RealPosRatio
	if neg {
		t = format.RealNegRatio
	}

	return Real{Type: t, Num: num, Denom: denom}
}

// RealFloat32 returns the 32-bit float form of f.
func RealFloat32(f float32) Real {
	return Real{Type: format.RealFloat32, Float: float64(f)}
}

// RealFloat64 returns the 64-bit float form of v.
func RealFloat64(v float64) Real {
	return Real{Type: format.RealFloat64, Float: v}
}

// Float64 returns the numeric value of r.
//
// Rational forms are evaluated in float64 arithmetic, so a decoded Real
// converts to exactly the value the chooser in FromFloat64 verified.
func (r Real) Float64() float64 {
	switch r.Type {
	case format.RealPosInt:
		return float64(r.Whole)
	case format.RealNegInt:
		return -float64(r.Whole)
	case format.RealPosReciprocal:
		return 1 / float64(r.Denom)
	case format.RealNegReciprocal:
		return -1 / float64(r.Denom)
	case format.RealPosRatio:
		return float64(r.Num) / float64(r.Denom)
	case format.RealNegRatio:
		return -(float64(r.Num) / float64(r.Denom))
	case format.RealFloat32, format.RealFloat64:
		return r.Float
	default:
		return math.NaN()
	}
}

// Validate reports whether r is encodable: a known form, a non-zero
// denominator for the rational forms, and a Float that survives the
// 32-bit form unchanged.
func (r Real) Validate() error {
	switch r.Type {
	case format.RealPosInt, format.RealNegInt:
		return nil
	case format.RealPosReciprocal, format.RealNegReciprocal:
		if r.Denom == 0 {
			return fmt.Errorf("%w: zero denominator", errs.ErrInvalidReal)
		}

		return nil
	case format.RealPosRatio, format.RealNegRatio:
		if r.Denom == 0 {
			return fmt.Errorf("%w: zero denominator", errs.ErrInvalidReal)
		}

		return nil
	case format.RealFloat32:
		if f32 := float32(r.Float); float64(f32) != r.Float && !math.IsNaN(r.Float) {
			return fmt.Errorf("%w: value %v is not a float32", errs.ErrInvalidReal, r.Float)
		}

		return nil
	case format.RealFloat64:
		return nil
	default:
		return fmt.Errorf("%w: unknown form %d", errs.ErrInvalidReal, r.Type)
	}
}

// EncodedLen returns the number of bytes PutReal emits for r, including
// the leading form byte.
func (r Real) EncodedLen() int {
	switch r.Type {
	case format.RealPosInt, format.RealNegInt:
		return 1 + UintLen(r.Whole)
	case format.RealPosReciprocal, format.RealNegReciprocal:
		return 1 + UintLen(r.Denom)
	case format.RealPosRatio, format.RealNegRatio:
		return 1 + UintLen(r.Num) + UintLen(r.Denom)
	case format.RealFloat32:
		return 5
	default:
		return 9
	}
}

// PutReal writes r as a form byte followed by the form-specific payload.
// Float payloads are IEEE 754 little-endian.
func PutReal(w Writer, r Real) error {
	if err := r.Validate(); err != nil {
		return err
	}
	if err := PutUint(w, uint64(r.Type)); err != nil {
		return err
	}

	return putRealPayload(w, r)
}

// putRealPayload writes the payload of r without the leading form byte.
// PROPERTY values reuse it because their type byte doubles as the form.
func putRealPayload(w Writer, r Real) error {
	switch r.Type {
	case format.RealPosInt, format.RealNegInt:
		return PutUint(w, r.Whole)
	case format.RealPosReciprocal, format.RealNegReciprocal:
		return PutUint(w, r.Denom)
	case format.RealPosRatio, format.RealNegRatio:
		if err := PutUint(w, r.Num); err != nil {
			return err
		}

		return PutUint(w, r.Denom)
	case format.RealFloat32:
		var buf [4]byte
		binary.LittleEndian.PutUint32(buf[:], math.Float32bits(float32(r.Float)))
		_, err := w.Write(buf[:])

		return err
	default: // format.RealFloat64, validated upstream
		var buf [8]byte
		binary.LittleEndian.PutUint64(buf[:], math.Float64bits(r.Float))
		_, err := w.Write(buf[:])

		return err
	}
}

// ReadReal reads a form byte and its payload.
func ReadReal(r Reader) (Real, error) {
	form, err := Uint(r)
	if err != nil {
		return Real{}, err
	}
	if form > uint64(format.RealFloat64) {
		return Real{}, fmt.Errorf("%w: unknown form %d", errs.ErrInvalidReal, form)
	}

	return readRealPayload(r, format.RealType(form))
}

// readRealPayload reads the payload of a real whose form byte has already
// been consumed.
func readRealPayload(r Reader, form format.RealType) (Real, error) {
	out := Real{Type: form}

	switch form {
	case format.RealPosInt, format.RealNegInt:
		v, err := Uint(r)
		if err != nil {
			return Real{}, err
		}
		out.Whole = v
	case format.RealPosReciprocal, format.RealNegReciprocal:
		v, err := Uint(r)
		if err != nil {
			return Real{}, err
		}
		if v == 0 {
			return Real{}, fmt.Errorf("%w: zero denominator", errs.ErrInvalidReal)
		}
		out.Denom = v
	case format.RealPosRatio, format.RealNegRatio:
		num, err := Uint(r)
		if err != nil {
			return Real{}, err
		}
		denom, err := Uint(r)
		if err != nil {
			return Real{}, err
		}
		if denom == 0 {
			return Real{}, fmt.Errorf("%w: zero denominator", errs.ErrInvalidReal)
		}
		out.Num, out.Denom = num, denom
	case format.RealFloat32:
		var buf [4]byte
		if err := readFull(r, buf[:]); err != nil {
			return Real{}, err
		}
		out.Float = float64(math.Float32frombits(binary.LittleEndian.Uint32(buf[:])))
	case format.RealFloat64:
		var buf [8]byte
		if err := readFull(r, buf[:]); err != nil {
			return Real{}, err
		}
		out.Float = math.Float64frombits(binary.LittleEndian.Uint64(buf[:]))
	default:
		return Real{}, fmt.Errorf("%w: unknown form %d", errs.ErrInvalidReal, form)
	}

	return out, nil
}

// FromFloat64 returns the shortest Real whose Float64 reproduces v
// bit-exactly.
//
// Candidates are the integer, reciprocal and ratio forms discovered by
// continued-fraction expansion, the 32-bit float form when widening is
// exact, and the 64-bit float form as the universal fallback. Ties on
// encoded length prefer integer over reciprocal over ratio over float32
// over float64, so the choice is deterministic for a given v.
func FromFloat64(v float64) Real {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return RealFloat64(v)
	}

	best := RealFloat64(v)
	bestLen := best.EncodedLen()

	if f32 := float32(v); float64(f32) == v {
		if c := RealFloat32(f32); c.EncodedLen() <= bestLen {
			best, bestLen = c, c.EncodedLen()
		}
	}

	neg := math.Signbit(v)
	num, denom, ok := ratioOf(math.Abs(v))
	if !ok {
		return best
	}

	if num != 1 && denom != 1 {
		if c := RealRatio(num, denom, neg); c.EncodedLen() <= bestLen {
			best, bestLen = c, c.EncodedLen()
		}
	}
	if num == 1 && denom != 1 {
		if c := RealReciprocal(denom, neg); c.EncodedLen() <= bestLen {
			best, bestLen = c, c.EncodedLen()
		}
	}
	if denom == 1 {
		c := Real{Type: format.RealPosInt, Whole: num}
		if neg {
			c.Type = format.RealNegInt
		}
		if c.EncodedLen() <= bestLen {
			best = c
		}
	}

	return best
}

// ratioOf expands a (non-negative, finite) into a continued fraction and
// returns the first convergent num/denom whose float64 quotient equals a.
//
// Equality of the quotient is the round-trip criterion, so a returned
// ratio is exact by construction. Expansion stops when a term or a
// convergent overflows uint64, which means no encodable ratio reproduces a.
func ratioOf(a float64) (num, denom uint64, ok bool) {
	if a == 0 {
		return 0, 1, true
	}

	const maxTerm = float64(math.MaxUint64 >> 1)

	// Convergent state: p/q is the current candidate, pp/qq the previous.
	var (
		pp, p uint64 = 0, 1
		qq, q uint64 = 1, 0
	)

	x := a
	for i := 0; i < 64; i++ {
		if x > maxTerm {
			return 0, 0, false
		}
		term := uint64(x)

		var next, nextQ uint64
		if term != 0 {
			if p != 0 && term > (math.MaxUint64-pp)/p {
				return 0, 0, false
			}
			if q != 0 && term > (math.MaxUint64-qq)/q {
				return 0, 0, false
			}
		}
		next = term*p + pp
		nextQ = term*q + qq

		pp, p = p, next
		qq, q = q, nextQ

		if q != 0 && float64(p)/float64(q) == a {
			return p, q, true
		}

		frac := x - float64(term)
		if frac == 0 {
			return 0, 0, false
		}
		x = 1 / frac
	}

	return 0, 0, false
}

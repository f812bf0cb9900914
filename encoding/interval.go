package encoding

import (
	"fmt"
	"math"

	"github.com/arloliu/oasix/errs"
	"github.com/arloliu/oasix/format"
)

// Interval is a decoded layer or datatype interval from a LAYERNAME
// record. Decoding normalizes the bounds: Lower is 0 for unbounded-below
// forms and Upper is math.MaxUint64 for unbounded-above forms.
type Interval struct {
	Type  format.IntervalType
	Lower uint64
	Upper uint64
}

// Contains reports whether v lies inside the interval.
func (iv Interval) Contains(v uint64) bool {
	return v >= iv.Lower && v <= iv.Upper
}

// PutInterval writes iv as a type byte followed by the bounds the type
// requires. Fields implied by the type are not written, so only Range
// needs both bounds to be meaningful.
func PutInterval(w Writer, iv Interval) error {
	switch iv.Type {
	case format.IntervalAll:
		return PutUint(w, uint64(iv.Type))
	case format.IntervalUpTo:
		if err := PutUint(w, uint64(iv.Type)); err != nil {
			return err
		}

		return PutUint(w, iv.Upper)
	case format.IntervalFrom:
		if err := PutUint(w, uint64(iv.Type)); err != nil {
			return err
		}

		return PutUint(w, iv.Lower)
	case format.IntervalExact:
		if err := PutUint(w, uint64(iv.Type)); err != nil {
			return err
		}

		return PutUint(w, iv.Lower)
	case format.IntervalRange:
		if iv.Lower > iv.Upper {
			return fmt.Errorf("%w: bounds %d..%d out of order", errs.ErrInvalidInterval, iv.Lower, iv.Upper)
		}
		if err := PutUint(w, uint64(iv.Type)); err != nil {
			return err
		}
		if err := PutUint(w, iv.Lower); err != nil {
			return err
		}

		return PutUint(w, iv.Upper)
	default:
		return fmt.Errorf("%w: unknown type %d", errs.ErrInvalidInterval, iv.Type)
	}
}

// ReadInterval reads an interval and normalizes its bounds.
func ReadInterval(r Reader) (Interval, error) {
	t, err := Uint(r)
	if err != nil {
		return Interval{}, err
	}

	switch format.IntervalType(t) {
	case format.IntervalAll:
		return Interval{Type: format.IntervalAll, Upper: math.MaxUint64}, nil
	case format.IntervalUpTo:
		hi, err := Uint(r)
		if err != nil {
			return Interval{}, err
		}

		return Interval{Type: format.IntervalUpTo, Upper: hi}, nil
	case format.IntervalFrom:
		lo, err := Uint(r)
		if err != nil {
			return Interval{}, err
		}

		return Interval{Type: format.IntervalFrom, Lower: lo, Upper: math.MaxUint64}, nil
	case format.IntervalExact:
		v, err := Uint(r)
		if err != nil {
			return Interval{}, err
		}

		return Interval{Type: format.IntervalExact, Lower: v, Upper: v}, nil
	case format.IntervalRange:
		lo, err := Uint(r)
		if err != nil {
			return Interval{}, err
		}
		hi, err := Uint(r)
		if err != nil {
			return Interval{}, err
		}
		if lo > hi {
			return Interval{}, fmt.Errorf("%w: bounds %d..%d out of order", errs.ErrInvalidInterval, lo, hi)
		}

		return Interval{Type: format.IntervalRange, Lower: lo, Upper: hi}, nil
	default:
		return Interval{}, fmt.Errorf("%w: unknown type %d", errs.ErrInvalidInterval, t)
	}
}

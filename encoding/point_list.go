package encoding

import (
	"fmt"
	"slices"

	"github.com/arloliu/oasix/errs"
	"github.com/arloliu/oasix/format"
)

// PointList is a decoded vertex list. Points holds resolved displacements,
// each relative to the previous vertex (the first relative to the element
// anchor), regardless of how the wire packs them.
//
// The alternating types imply every displacement is axis-parallel with the
// axis flipping between entries; Manhattan and Octangular restrict the
// admissible directions; Any and DoubleDelta admit every displacement.
// Conversion between Points and the wire is lossless for a valid list.
type PointList struct {
	Type   format.PointListType
	Points []Point
}

// Validate reports whether pl can be written as its declared type.
func (pl *PointList) Validate() error {
	switch pl.Type {
	case format.PointsHorizontalFirst, format.PointsVerticalFirst:
		horizontal := pl.Type == format.PointsHorizontalFirst
		for i, p := range pl.Points {
			if horizontal && p.Y != 0 {
				return fmt.Errorf("%w: point %d must be horizontal", errs.ErrInvalidPointList, i)
			}
			if !horizontal && p.X != 0 {
				return fmt.Errorf("%w: point %d must be vertical", errs.ErrInvalidPointList, i)
			}
			horizontal = !horizontal
		}

		return nil
	case format.PointsManhattan:
		for i, p := range pl.Points {
			if dir, _, ok := Octangular(p); !ok || dir > format.South {
				return fmt.Errorf("%w: point %d is not axis-parallel", errs.ErrInvalidPointList, i)
			}
		}

		return nil
	case format.PointsOctangular:
		for i, p := range pl.Points {
			if _, _, ok := Octangular(p); !ok {
				return fmt.Errorf("%w: point %d is not octangular", errs.ErrInvalidPointList, i)
			}
		}

		return nil
	case format.PointsAny, format.PointsDoubleDelta:
		return nil
	default:
		return fmt.Errorf("%w: unknown type %d", errs.ErrInvalidPointList, pl.Type)
	}
}

// Equal reports whether pl and other hold the same type and points.
func (pl *PointList) Equal(other *PointList) bool {
	return pl.Type == other.Type && slices.Equal(pl.Points, other.Points)
}

// PutPointList writes pl as a type byte, a vertex count and the packed
// displacements.
func PutPointList(w Writer, pl *PointList) error {
	if err := pl.Validate(); err != nil {
		return err
	}
	if err := PutUint(w, uint64(pl.Type)); err != nil {
		return err
	}
	if err := PutUint(w, uint64(len(pl.Points))); err != nil {
		return err
	}

	switch pl.Type {
	case format.PointsHorizontalFirst, format.PointsVerticalFirst:
		horizontal := pl.Type == format.PointsHorizontalFirst
		for _, p := range pl.Points {
			v := p.X
			if !horizontal {
				v = p.Y
			}
			if err := PutInt(w, v); err != nil {
				return err
			}
			horizontal = !horizontal
		}
	case format.PointsManhattan:
		for _, p := range pl.Points {
			if err := Put2Delta(w, p); err != nil {
				return err
			}
		}
	case format.PointsOctangular:
		for _, p := range pl.Points {
			if err := Put3Delta(w, p); err != nil {
				return err
			}
		}
	case format.PointsAny:
		for _, p := range pl.Points {
			if err := PutGDelta(w, p); err != nil {
				return err
			}
		}
	case format.PointsDoubleDelta:
		var prev Point
		for _, p := range pl.Points {
			if err := PutGDelta(w, p.Sub(prev)); err != nil {
				return err
			}
			prev = p
		}
	}

	return nil
}

// ReadPointList reads a point list, resolving the wire packing back to
// plain displacements.
func ReadPointList(r Reader) (PointList, error) {
	t, err := Uint(r)
	if err != nil {
		return PointList{}, err
	}
	if t > uint64(format.MaxPointListType) {
		return PointList{}, fmt.Errorf("%w: unknown type %d", errs.ErrInvalidPointList, t)
	}

	count, err := Uint(r)
	if err != nil {
		return PointList{}, err
	}
	if count > format.MaxListLength {
		return PointList{}, fmt.Errorf("%w: point count %d exceeds %d", errs.ErrLimitExceeded, count, format.MaxListLength)
	}

	pl := PointList{
		Type:   format.PointListType(t),
		Points: make([]Point, count),
	}

	switch pl.Type {
	case format.PointsHorizontalFirst, format.PointsVerticalFirst:
		horizontal := pl.Type == format.PointsHorizontalFirst
		for i := range pl.Points {
			v, err := Int(r)
			if err != nil {
				return PointList{}, err
			}
			if horizontal {
				pl.Points[i] = Point{X: v}
			} else {
				pl.Points[i] = Point{Y: v}
			}
			horizontal = !horizontal
		}
	case format.PointsManhattan:
		for i := range pl.Points {
			if pl.Points[i], err = Read2Delta(r); err != nil {
				return PointList{}, err
			}
		}
	case format.PointsOctangular:
		for i := range pl.Points {
			if pl.Points[i], err = Read3Delta(r); err != nil {
				return PointList{}, err
			}
		}
	case format.PointsAny:
		for i := range pl.Points {
			if pl.Points[i], err = ReadGDelta(r); err != nil {
				return PointList{}, err
			}
		}
	case format.PointsDoubleDelta:
		var prev Point
		for i := range pl.Points {
			d, err := ReadGDelta(r)
			if err != nil {
				return PointList{}, err
			}
			prev = prev.Add(d)
			pl.Points[i] = prev
		}
	}

	return pl, nil
}

package encoding

import (
	"fmt"

	"github.com/arloliu/oasix/errs"
	"github.com/arloliu/oasix/format"
)

// Point is a displacement or position in database units.
type Point struct {
	X int64
	Y int64
}

// Add returns p translated by q.
func (p Point) Add(q Point) Point {
	return Point{X: p.X + q.X, Y: p.Y + q.Y}
}

// Sub returns the displacement from q to p.
func (p Point) Sub(q Point) Point {
	return Point{X: p.X - q.X, Y: p.Y - q.Y}
}

// DirectionPoint returns the displacement of magnitude m along d.
// Diagonal directions move m along both axes.
func DirectionPoint(d format.Direction, m int64) Point {
	switch d {
	case format.East:
		return Point{X: m}
	case format.North:
		return Point{Y: m}
	case format.West:
		return Point{X: -m}
	case format.South:
		return Point{Y: -m}
	case format.Northeast:
		return Point{X: m, Y: m}
	case format.Northwest:
		return Point{X: -m, Y: m}
	case format.Southwest:
		return Point{X: -m, Y: -m}
	default: // format.Southeast
		return Point{X: m, Y: -m}
	}
}

// magnitude returns |v| as a uint64, exact for math.MinInt64.
func magnitude(v int64) uint64 {
	m := uint64(v)
	if v < 0 {
		m = -m
	}

	return m
}

// Octangular classifies p as a direction and magnitude when p lies on one
// of the eight compass axes. The origin classifies as East with magnitude
// zero.
func Octangular(p Point) (format.Direction, uint64, bool) {
	switch {
	case p.Y == 0 && p.X >= 0:
		return format.East, uint64(p.X), true
	case p.Y == 0:
		return format.West, magnitude(p.X), true
	case p.X == 0 && p.Y > 0:
		return format.North, uint64(p.Y), true
	case p.X == 0:
		return format.South, magnitude(p.Y), true
	case p.X == p.Y && p.X > 0:
		return format.Northeast, uint64(p.X), true
	case p.X == p.Y:
		return format.Southwest, magnitude(p.X), true
	case p.X == -p.Y && p.Y > 0:
		return format.Northwest, magnitude(p.X), true
	case p.X == -p.Y:
		return format.Southeast, uint64(p.X), true
	default:
		return 0, 0, false
	}
}

// Put2Delta writes p as a 2-delta: direction in bits 0-1, magnitude above.
// Only axis-parallel displacements are representable.
func Put2Delta(w Writer, p Point) error {
	dir, m, ok := Octangular(p)
	if !ok || dir > format.South {
		return fmt.Errorf("%w: (%d,%d) is not axis-parallel", errs.ErrInvalidDelta, p.X, p.Y)
	}
	if m > maxUint64>>2 {
		return fmt.Errorf("%w: 2-delta magnitude %d overflows", errs.ErrInvalidDelta, m)
	}

	return PutUint(w, m<<2|uint64(dir))
}

// Read2Delta reads a 2-delta.
func Read2Delta(r Reader) (Point, error) {
	v, err := Uint(r)
	if err != nil {
		return Point{}, err
	}

	return DirectionPoint(format.Direction(v&3), int64(v>>2)), nil
}

// Put3Delta writes p as a 3-delta: direction in bits 0-2, magnitude above.
// Only octangular displacements are representable.
func Put3Delta(w Writer, p Point) error {
	dir, m, ok := Octangular(p)
	if !ok {
		return fmt.Errorf("%w: (%d,%d) is not octangular", errs.ErrInvalidDelta, p.X, p.Y)
	}
	if m > maxUint64>>3 {
		return fmt.Errorf("%w: 3-delta magnitude %d overflows", errs.ErrInvalidDelta, m)
	}

	return PutUint(w, m<<3|uint64(dir))
}

// Read3Delta reads a 3-delta.
func Read3Delta(r Reader) (Point, error) {
	v, err := Uint(r)
	if err != nil {
		return Point{}, err
	}

	return DirectionPoint(format.Direction(v&7), int64(v>>3)), nil
}

// PutGDelta writes p as a g-delta.
//
// Octangular displacements use the single-integer form (bit 0 clear,
// direction in bits 1-3, magnitude above) when the magnitude fits; all
// other displacements use the two-integer form (bit 0 set, x sign in
// bit 1, |x| above, then y as a signed integer).
func PutGDelta(w Writer, p Point) error {
	if dir, m, ok := Octangular(p); ok && m <= maxUint64>>4 {
		return PutUint(w, m<<4|uint64(dir)<<1)
	}

	mx := magnitude(p.X)
	if mx > maxUint64>>2 {
		return fmt.Errorf("%w: g-delta x magnitude %d overflows", errs.ErrInvalidDelta, mx)
	}
	first := mx << 2
	if p.X < 0 {
		first |= 2
	}
	first |= 1
	if err := PutUint(w, first); err != nil {
		return err
	}

	return PutInt(w, p.Y)
}

// ReadGDelta reads a g-delta in either form.
func ReadGDelta(r Reader) (Point, error) {
	v, err := Uint(r)
	if err != nil {
		return Point{}, err
	}
	if v&1 == 0 {
		return DirectionPoint(format.Direction(v>>1&7), int64(v>>4)), nil
	}

	x := int64(v >> 2)
	if v&2 != 0 {
		x = -x
	}
	y, err := Int(r)
	if err != nil {
		return Point{}, err
	}

	return Point{X: x, Y: y}, nil
}

const maxUint64 = ^uint64(0)

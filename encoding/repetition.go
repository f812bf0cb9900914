package encoding

import (
	"fmt"
	"iter"
	"math"
	"slices"

	"github.com/arloliu/oasix/errs"
	"github.com/arloliu/oasix/format"
)

// maxStoredDim keeps decoded dimensions within format.MaxListLength after
// the wire bias of two is added back.
const maxStoredDim = format.MaxListLength - 2

// Repetition describes how an element or placement is replicated.
//
// Field use by type:
//
//	RepPrevious:      none; the modal repetition is reused.
//	RepMatrix:        XCount, YCount, XSpace, YSpace
//	RepUniformX:      XCount, XSpace
//	RepUniformY:      YCount, YSpace
//	RepVaryingX:      Spaces, the x gaps between consecutive placements
//	RepVaryingXGrid:  Grid and Spaces, each gap a multiple of Grid
//	RepVaryingY:      Spaces, the y gaps between consecutive placements
//	RepVaryingYGrid:  Grid and Spaces, each gap a multiple of Grid
//	RepTiltedMatrix:  NCount, MCount, NDelta, MDelta
//	RepDiagonal:      NCount, NDelta
//	RepArbitrary:     Deltas, displacements between consecutive placements
//	RepArbitraryGrid: Grid and Deltas, each coordinate a multiple of Grid
//
// Counts are placement counts and must be at least two; the wire stores
// them biased by two. Varying and arbitrary forms derive their count from
// len(Spaces)+1 and len(Deltas)+1.
type Repetition struct {
	Type   format.RepetitionType
	XCount uint64
	YCount uint64
	XSpace uint64
	YSpace uint64
	NCount uint64
	MCount uint64
	Grid   uint64
	NDelta Point
	MDelta Point
	Spaces []uint64
	Deltas []Point
}

// Elements returns the number of placements rep expands to, or zero for
// RepPrevious, whose count lives in the modal state.
func (rep *Repetition) Elements() uint64 {
	switch rep.Type {
	case format.RepMatrix:
		return rep.XCount * rep.YCount
	case format.RepUniformX:
		return rep.XCount
	case format.RepUniformY:
		return rep.YCount
	case format.RepVaryingX, format.RepVaryingXGrid, format.RepVaryingY, format.RepVaryingYGrid:
		return uint64(len(rep.Spaces)) + 1
	case format.RepTiltedMatrix:
		return rep.NCount * rep.MCount
	case format.RepDiagonal:
		return rep.NCount
	case format.RepArbitrary, format.RepArbitraryGrid:
		return uint64(len(rep.Deltas)) + 1
	default:
		return 0
	}
}

// Points yields the placement offsets of rep in file order: the first
// offset is always (0,0), matrix forms advance x (or the n axis) fastest.
//
// The sequence is empty for RepPrevious.
func (rep *Repetition) Points() iter.Seq2[int, Point] {
	return func(yield func(int, Point) bool) {
		i := 0
		emit := func(p Point) bool {
			ok := yield(i, p)
			i++

			return ok
		}

		switch rep.Type {
		case format.RepMatrix:
			for y := uint64(0); y < rep.YCount; y++ {
				for x := uint64(0); x < rep.XCount; x++ {
					if !emit(Point{X: int64(x * rep.XSpace), Y: int64(y * rep.YSpace)}) {
						return
					}
				}
			}
		case format.RepUniformX:
			for x := uint64(0); x < rep.XCount; x++ {
				if !emit(Point{X: int64(x * rep.XSpace)}) {
					return
				}
			}
		case format.RepUniformY:
			for y := uint64(0); y < rep.YCount; y++ {
				if !emit(Point{Y: int64(y * rep.YSpace)}) {
					return
				}
			}
		case format.RepVaryingX, format.RepVaryingXGrid:
			var at int64
			if !emit(Point{}) {
				return
			}
			for _, s := range rep.Spaces {
				at += int64(s)
				if !emit(Point{X: at}) {
					return
				}
			}
		case format.RepVaryingY, format.RepVaryingYGrid:
			var at int64
			if !emit(Point{}) {
				return
			}
			for _, s := range rep.Spaces {
				at += int64(s)
				if !emit(Point{Y: at}) {
					return
				}
			}
		case format.RepTiltedMatrix:
			for m := uint64(0); m < rep.MCount; m++ {
				for n := uint64(0); n < rep.NCount; n++ {
					p := Point{
						X: int64(n)*rep.NDelta.X + int64(m)*rep.MDelta.X,
						Y: int64(n)*rep.NDelta.Y + int64(m)*rep.MDelta.Y,
					}
					if !emit(p) {
						return
					}
				}
			}
		case format.RepDiagonal:
			for n := uint64(0); n < rep.NCount; n++ {
				if !emit(Point{X: int64(n) * rep.NDelta.X, Y: int64(n) * rep.NDelta.Y}) {
					return
				}
			}
		case format.RepArbitrary, format.RepArbitraryGrid:
			var at Point
			if !emit(at) {
				return
			}
			for _, d := range rep.Deltas {
				at = at.Add(d)
				if !emit(at) {
					return
				}
			}
		}
	}
}

// Validate reports whether rep is encodable: counts at least two, explicit
// step lists non-empty, and grids positive divisors of every step.
func (rep *Repetition) Validate() error {
	switch rep.Type {
	case format.RepPrevious:
		return nil
	case format.RepMatrix:
		return validCounts(rep.XCount, rep.YCount)
	case format.RepUniformX:
		return validCounts(rep.XCount, 2)
	case format.RepUniformY:
		return validCounts(rep.YCount, 2)
	case format.RepVaryingX, format.RepVaryingY:
		if len(rep.Spaces) == 0 {
			return fmt.Errorf("%w: varying form without spaces", errs.ErrInvalidRepetition)
		}

		return nil
	case format.RepVaryingXGrid, format.RepVaryingYGrid:
		if len(rep.Spaces) == 0 {
			return fmt.Errorf("%w: varying form without spaces", errs.ErrInvalidRepetition)
		}
		if rep.Grid == 0 {
			return fmt.Errorf("%w: zero grid", errs.ErrInvalidRepetition)
		}
		for _, s := range rep.Spaces {
			if s%rep.Grid != 0 {
				return fmt.Errorf("%w: space %d not a multiple of grid %d", errs.ErrInvalidRepetition, s, rep.Grid)
			}
		}

		return nil
	case format.RepTiltedMatrix:
		return validCounts(rep.NCount, rep.MCount)
	case format.RepDiagonal:
		return validCounts(rep.NCount, 2)
	case format.RepArbitrary:
		if len(rep.Deltas) == 0 {
			return fmt.Errorf("%w: arbitrary form without deltas", errs.ErrInvalidRepetition)
		}

		return nil
	case format.RepArbitraryGrid:
		if len(rep.Deltas) == 0 {
			return fmt.Errorf("%w: arbitrary form without deltas", errs.ErrInvalidRepetition)
		}
		if rep.Grid == 0 || rep.Grid > math.MaxInt64 {
			return fmt.Errorf("%w: grid %d out of range", errs.ErrInvalidRepetition, rep.Grid)
		}
		g := int64(rep.Grid)
		for _, d := range rep.Deltas {
			if d.X%g != 0 || d.Y%g != 0 {
				return fmt.Errorf("%w: delta (%d,%d) not on grid %d", errs.ErrInvalidRepetition, d.X, d.Y, rep.Grid)
			}
		}

		return nil
	default:
		return fmt.Errorf("%w: unknown type %d", errs.ErrInvalidRepetition, rep.Type)
	}
}

func validCounts(a, b uint64) error {
	if a < 2 || b < 2 {
		return fmt.Errorf("%w: dimension below two", errs.ErrInvalidRepetition)
	}

	return nil
}

// Equal reports whether rep and other describe the same replication,
// comparing only the fields their type uses.
func (rep *Repetition) Equal(other *Repetition) bool {
	if rep == nil || other == nil {
		return rep == other
	}
	if rep.Type != other.Type {
		return false
	}

	switch rep.Type {
	case format.RepPrevious:
		return true
	case format.RepMatrix:
		return rep.XCount == other.XCount && rep.YCount == other.YCount &&
			rep.XSpace == other.XSpace && rep.YSpace == other.YSpace
	case format.RepUniformX:
		return rep.XCount == other.XCount && rep.XSpace == other.XSpace
	case format.RepUniformY:
		return rep.YCount == other.YCount && rep.YSpace == other.YSpace
	case format.RepVaryingX, format.RepVaryingY:
		return slices.Equal(rep.Spaces, other.Spaces)
	case format.RepVaryingXGrid, format.RepVaryingYGrid:
		return rep.Grid == other.Grid && slices.Equal(rep.Spaces, other.Spaces)
	case format.RepTiltedMatrix:
		return rep.NCount == other.NCount && rep.MCount == other.MCount &&
			rep.NDelta == other.NDelta && rep.MDelta == other.MDelta
	case format.RepDiagonal:
		return rep.NCount == other.NCount && rep.NDelta == other.NDelta
	case format.RepArbitrary:
		return slices.Equal(rep.Deltas, other.Deltas)
	case format.RepArbitraryGrid:
		return rep.Grid == other.Grid && slices.Equal(rep.Deltas, other.Deltas)
	default:
		return false
	}
}

// PutRepetition writes rep as a type byte followed by the type-specific
// fields. Dimensions are stored biased by two, gridded steps divided by
// the grid.
func PutRepetition(w Writer, rep *Repetition) error {
	if err := rep.Validate(); err != nil {
		return err
	}
	if err := PutUint(w, uint64(rep.Type)); err != nil {
		return err
	}

	switch rep.Type {
	case format.RepPrevious:
		return nil
	case format.RepMatrix:
		return putUints(w, rep.XCount-2, rep.YCount-2, rep.XSpace, rep.YSpace)
	case format.RepUniformX:
		return putUints(w, rep.XCount-2, rep.XSpace)
	case format.RepUniformY:
		return putUints(w, rep.YCount-2, rep.YSpace)
	case format.RepVaryingX, format.RepVaryingY:
		if err := PutUint(w, uint64(len(rep.Spaces))-1); err != nil {
			return err
		}
		for _, s := range rep.Spaces {
			if err := PutUint(w, s); err != nil {
				return err
			}
		}

		return nil
	case format.RepVaryingXGrid, format.RepVaryingYGrid:
		if err := putUints(w, uint64(len(rep.Spaces))-1, rep.Grid); err != nil {
			return err
		}
		for _, s := range rep.Spaces {
			if err := PutUint(w, s/rep.Grid); err != nil {
				return err
			}
		}

		return nil
	case format.RepTiltedMatrix:
		if err := putUints(w, rep.NCount-2, rep.MCount-2); err != nil {
			return err
		}
		if err := PutGDelta(w, rep.NDelta); err != nil {
			return err
		}

		return PutGDelta(w, rep.MDelta)
	case format.RepDiagonal:
		if err := PutUint(w, rep.NCount-2); err != nil {
			return err
		}

		return PutGDelta(w, rep.NDelta)
	case format.RepArbitrary:
		if err := PutUint(w, uint64(len(rep.Deltas))-1); err != nil {
			return err
		}
		for _, d := range rep.Deltas {
			if err := PutGDelta(w, d); err != nil {
				return err
			}
		}

		return nil
	default: // format.RepArbitraryGrid, validated upstream
		if err := putUints(w, uint64(len(rep.Deltas))-1, rep.Grid); err != nil {
			return err
		}
		g := int64(rep.Grid)
		for _, d := range rep.Deltas {
			if err := PutGDelta(w, Point{X: d.X / g, Y: d.Y / g}); err != nil {
				return err
			}
		}

		return nil
	}
}

// ReadRepetition reads a repetition. Gridded steps are multiplied back so
// the result carries resolved database units.
func ReadRepetition(r Reader) (Repetition, error) {
	t, err := Uint(r)
	if err != nil {
		return Repetition{}, err
	}
	if t > uint64(format.MaxRepetitionType) {
		return Repetition{}, fmt.Errorf("%w: unknown type %d", errs.ErrInvalidRepetition, t)
	}

	rep := Repetition{Type: format.RepetitionType(t)}

	switch rep.Type {
	case format.RepPrevious:
		return rep, nil
	case format.RepMatrix:
		if rep.XCount, err = readDim(r); err != nil {
			return Repetition{}, err
		}
		if rep.YCount, err = readDim(r); err != nil {
			return Repetition{}, err
		}
		if rep.XSpace, err = Uint(r); err != nil {
			return Repetition{}, err
		}
		if rep.YSpace, err = Uint(r); err != nil {
			return Repetition{}, err
		}
	case format.RepUniformX:
		if rep.XCount, err = readDim(r); err != nil {
			return Repetition{}, err
		}
		if rep.XSpace, err = Uint(r); err != nil {
			return Repetition{}, err
		}
	case format.RepUniformY:
		if rep.YCount, err = readDim(r); err != nil {
			return Repetition{}, err
		}
		if rep.YSpace, err = Uint(r); err != nil {
			return Repetition{}, err
		}
	case format.RepVaryingX, format.RepVaryingY:
		if rep.Spaces, err = readSpaces(r, 1); err != nil {
			return Repetition{}, err
		}
	case format.RepVaryingXGrid, format.RepVaryingYGrid:
		count, err := readDim(r)
		if err != nil {
			return Repetition{}, err
		}
		if rep.Grid, err = readGrid(r); err != nil {
			return Repetition{}, err
		}
		rep.Spaces = make([]uint64, count-1)
		for i := range rep.Spaces {
			s, err := Uint(r)
			if err != nil {
				return Repetition{}, err
			}
			rep.Spaces[i] = s * rep.Grid
		}
	case format.RepTiltedMatrix:
		if rep.NCount, err = readDim(r); err != nil {
			return Repetition{}, err
		}
		if rep.MCount, err = readDim(r); err != nil {
			return Repetition{}, err
		}
		if rep.NDelta, err = ReadGDelta(r); err != nil {
			return Repetition{}, err
		}
		if rep.MDelta, err = ReadGDelta(r); err != nil {
			return Repetition{}, err
		}
	case format.RepDiagonal:
		if rep.NCount, err = readDim(r); err != nil {
			return Repetition{}, err
		}
		if rep.NDelta, err = ReadGDelta(r); err != nil {
			return Repetition{}, err
		}
	case format.RepArbitrary:
		count, err := readDim(r)
		if err != nil {
			return Repetition{}, err
		}
		rep.Deltas = make([]Point, count-1)
		for i := range rep.Deltas {
			if rep.Deltas[i], err = ReadGDelta(r); err != nil {
				return Repetition{}, err
			}
		}
	case format.RepArbitraryGrid:
		count, err := readDim(r)
		if err != nil {
			return Repetition{}, err
		}
		if rep.Grid, err = readGrid(r); err != nil {
			return Repetition{}, err
		}
		g := int64(rep.Grid) //nolint:gosec // readGrid bounds the value
		rep.Deltas = make([]Point, count-1)
		for i := range rep.Deltas {
			d, err := ReadGDelta(r)
			if err != nil {
				return Repetition{}, err
			}
			rep.Deltas[i] = Point{X: d.X * g, Y: d.Y * g}
		}
	}

	return rep, nil
}

// readDim reads a dimension field and restores the bias of two.
func readDim(r Reader) (uint64, error) {
	stored, err := Uint(r)
	if err != nil {
		return 0, err
	}
	if stored > maxStoredDim {
		return 0, fmt.Errorf("%w: repetition dimension %d exceeds %d", errs.ErrLimitExceeded, stored, maxStoredDim)
	}

	return stored + 2, nil
}

func readGrid(r Reader) (uint64, error) {
	g, err := Uint(r)
	if err != nil {
		return 0, err
	}
	if g == 0 || g > math.MaxInt64 {
		return 0, fmt.Errorf("%w: grid %d out of range", errs.ErrInvalidRepetition, g)
	}

	return g, nil
}

// readSpaces reads a dimension and count-1 unsigned steps scaled by grid.
func readSpaces(r Reader, grid uint64) ([]uint64, error) {
	count, err := readDim(r)
	if err != nil {
		return nil, err
	}

	spaces := make([]uint64, count-1)
	for i := range spaces {
		s, err := Uint(r)
		if err != nil {
			return nil, err
		}
		spaces[i] = s * grid
	}

	return spaces, nil
}

func putUints(w Writer, vs ...uint64) error {
	for _, v := range vs {
		if err := PutUint(w, v); err != nil {
			return err
		}
	}

	return nil
}

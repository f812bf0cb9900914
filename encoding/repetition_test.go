package encoding

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arloliu/oasix/errs"
	"github.com/arloliu/oasix/format"
)

// =============================================================================
// Wire Format Tests
// =============================================================================

func TestPutRepetition_KnownVectors(t *testing.T) {
	tests := []struct {
		name string
		rep  Repetition
		want []byte
	}{
		{
			"previous",
			Repetition{Type: format.RepPrevious},
			[]byte{0x00},
		},
		{
			"matrix 3x2",
			Repetition{Type: format.RepMatrix, XCount: 3, YCount: 2, XSpace: 20, YSpace: 30},
			[]byte{0x01, 0x01, 0x00, 0x14, 0x1e},
		},
		{
			"uniform x",
			Repetition{Type: format.RepUniformX, XCount: 4, XSpace: 10},
			[]byte{0x02, 0x02, 0x0a},
		},
		{
			"uniform y",
			Repetition{Type: format.RepUniformY, YCount: 2, YSpace: 7},
			[]byte{0x03, 0x00, 0x07},
		},
		{
			"varying x",
			Repetition{Type: format.RepVaryingX, Spaces: []uint64{5, 6}},
			[]byte{0x04, 0x01, 0x05, 0x06},
		},
		{
			"varying x on grid",
			Repetition{Type: format.RepVaryingXGrid, Grid: 10, Spaces: []uint64{20, 50}},
			[]byte{0x05, 0x01, 0x0a, 0x02, 0x05},
		},
		{
			"diagonal",
			Repetition{Type: format.RepDiagonal, NCount: 3, NDelta: Point{X: 1, Y: 1}},
			[]byte{0x09, 0x01, 0x18},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := encodeTo(t, func(w Writer) error { return PutRepetition(w, &tt.rep) })
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestReadRepetition_RoundTrip(t *testing.T) {
	reps := []Repetition{
		{Type: format.RepPrevious},
		{Type: format.RepMatrix, XCount: 3, YCount: 2, XSpace: 20, YSpace: 30},
		{Type: format.RepUniformX, XCount: 4, XSpace: 10},
		{Type: format.RepUniformY, YCount: 2, YSpace: 0},
		{Type: format.RepVaryingX, Spaces: []uint64{5, 0, 6}},
		{Type: format.RepVaryingXGrid, Grid: 10, Spaces: []uint64{20, 50}},
		{Type: format.RepVaryingY, Spaces: []uint64{1}},
		{Type: format.RepVaryingYGrid, Grid: 2, Spaces: []uint64{4, 8, 2}},
		{Type: format.RepTiltedMatrix, NCount: 2, MCount: 3, NDelta: Point{X: 10, Y: 1}, MDelta: Point{X: -1, Y: 10}},
		{Type: format.RepDiagonal, NCount: 5, NDelta: Point{X: 3, Y: -7}},
		{Type: format.RepArbitrary, Deltas: []Point{{X: 1, Y: 2}, {X: -3, Y: -4}}},
		{Type: format.RepArbitraryGrid, Grid: 5, Deltas: []Point{{X: 10, Y: -15}, {X: 0, Y: 5}}},
	}

	for _, rep := range reps {
		t.Run(rep.Type.String(), func(t *testing.T) {
			data := encodeTo(t, func(w Writer) error { return PutRepetition(w, &rep) })

			got, err := ReadRepetition(bytes.NewReader(data))
			require.NoError(t, err)
			assert.Equal(t, rep, got)
		})
	}
}

func TestReadRepetition_RejectsUnknownType(t *testing.T) {
	_, err := ReadRepetition(bytes.NewReader([]byte{0x0c}))
	require.ErrorIs(t, err, errs.ErrInvalidRepetition)
}

func TestReadRepetition_RejectsOversizedDimension(t *testing.T) {
	data := encodeTo(t, func(w Writer) error {
		if err := PutUint(w, uint64(format.RepUniformX)); err != nil {
			return err
		}

		return PutUint(w, format.MaxListLength)
	})

	_, err := ReadRepetition(bytes.NewReader(data))
	require.ErrorIs(t, err, errs.ErrLimitExceeded)
}

func TestReadRepetition_RejectsZeroGrid(t *testing.T) {
	data := []byte{0x05, 0x00, 0x00, 0x01}

	_, err := ReadRepetition(bytes.NewReader(data))
	require.ErrorIs(t, err, errs.ErrInvalidRepetition)
}

// =============================================================================
// Validation Tests
// =============================================================================

func TestRepetition_Validate(t *testing.T) {
	tests := []struct {
		name    string
		rep     Repetition
		wantErr error
	}{
		{"matrix dimension below two", Repetition{Type: format.RepMatrix, XCount: 1, YCount: 2}, errs.ErrInvalidRepetition},
		{"varying without spaces", Repetition{Type: format.RepVaryingY}, errs.ErrInvalidRepetition},
		{"grid zero", Repetition{Type: format.RepVaryingXGrid, Spaces: []uint64{4}}, errs.ErrInvalidRepetition},
		{"space off grid", Repetition{Type: format.RepVaryingXGrid, Grid: 3, Spaces: []uint64{4}}, errs.ErrInvalidRepetition},
		{"delta off grid", Repetition{Type: format.RepArbitraryGrid, Grid: 4, Deltas: []Point{{X: 2, Y: 4}}}, errs.ErrInvalidRepetition},
		{"unknown type", Repetition{Type: 99}, errs.ErrInvalidRepetition},
		{"valid tilted", Repetition{Type: format.RepTiltedMatrix, NCount: 2, MCount: 2}, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.rep.Validate()
			if tt.wantErr == nil {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, tt.wantErr)
			}
		})
	}
}

// =============================================================================
// Expansion Tests
// =============================================================================

func TestRepetition_Elements(t *testing.T) {
	assert.Equal(t, uint64(0), (&Repetition{Type: format.RepPrevious}).Elements())
	assert.Equal(t, uint64(6), (&Repetition{Type: format.RepMatrix, XCount: 3, YCount: 2}).Elements())
	assert.Equal(t, uint64(4), (&Repetition{Type: format.RepUniformX, XCount: 4}).Elements())
	assert.Equal(t, uint64(3), (&Repetition{Type: format.RepVaryingX, Spaces: []uint64{5, 6}}).Elements())
	assert.Equal(t, uint64(6), (&Repetition{Type: format.RepTiltedMatrix, NCount: 2, MCount: 3}).Elements())
	assert.Equal(t, uint64(3), (&Repetition{Type: format.RepArbitrary, Deltas: []Point{{X: 1}, {Y: 1}}}).Elements())
}

func collectPoints(rep *Repetition) []Point {
	var out []Point
	for _, p := range rep.Points() {
		out = append(out, p)
	}

	return out
}

func TestRepetition_Points_Matrix(t *testing.T) {
	rep := Repetition{Type: format.RepMatrix, XCount: 3, YCount: 2, XSpace: 10, YSpace: 100}

	want := []Point{
		{X: 0, Y: 0}, {X: 10, Y: 0}, {X: 20, Y: 0},
		{X: 0, Y: 100}, {X: 10, Y: 100}, {X: 20, Y: 100},
	}
	assert.Equal(t, want, collectPoints(&rep))
}

func TestRepetition_Points_Varying(t *testing.T) {
	rep := Repetition{Type: format.RepVaryingX, Spaces: []uint64{5, 6}}

	want := []Point{{X: 0}, {X: 5}, {X: 11}}
	assert.Equal(t, want, collectPoints(&rep))
}

func TestRepetition_Points_TiltedMatrix(t *testing.T) {
	rep := Repetition{
		Type:   format.RepTiltedMatrix,
		NCount: 2, MCount: 2,
		NDelta: Point{X: 10, Y: 1},
		MDelta: Point{X: -1, Y: 10},
	}

	want := []Point{
		{X: 0, Y: 0}, {X: 10, Y: 1},
		{X: -1, Y: 10}, {X: 9, Y: 11},
	}
	assert.Equal(t, want, collectPoints(&rep))
}

func TestRepetition_Points_Arbitrary(t *testing.T) {
	rep := Repetition{Type: format.RepArbitrary, Deltas: []Point{{X: 1, Y: 2}, {X: -4, Y: 0}}}

	want := []Point{{X: 0, Y: 0}, {X: 1, Y: 2}, {X: -3, Y: 2}}
	assert.Equal(t, want, collectPoints(&rep))
}

func TestRepetition_Points_EarlyStop(t *testing.T) {
	rep := Repetition{Type: format.RepUniformX, XCount: 1 << 20, XSpace: 1}

	count := 0
	for range rep.Points() {
		count++
		if count == 3 {
			break
		}
	}
	assert.Equal(t, 3, count)
}

func TestRepetition_Equal(t *testing.T) {
	matrix := Repetition{Type: format.RepMatrix, XCount: 3, YCount: 4, XSpace: 10, YSpace: 20}
	same := matrix
	assert.True(t, matrix.Equal(&same))

	// Fields the type does not use are ignored.
	same.Grid = 99
	same.NCount = 7
	assert.True(t, matrix.Equal(&same))

	other := matrix
	other.XSpace = 11
	assert.False(t, matrix.Equal(&other))

	row := Repetition{Type: format.RepVaryingX, Spaces: []uint64{1, 2, 3}}
	rowSame := Repetition{Type: format.RepVaryingX, Spaces: []uint64{1, 2, 3}}
	rowDiff := Repetition{Type: format.RepVaryingX, Spaces: []uint64{1, 2, 4}}
	assert.True(t, row.Equal(&rowSame))
	assert.False(t, row.Equal(&rowDiff))
	assert.False(t, row.Equal(&matrix))

	arb := Repetition{Type: format.RepArbitrary, Deltas: []Point{{X: 1, Y: 2}}}
	arbSame := Repetition{Type: format.RepArbitrary, Deltas: []Point{{X: 1, Y: 2}}}
	assert.True(t, arb.Equal(&arbSame))

	var nilRep *Repetition
	assert.False(t, nilRep.Equal(&matrix))
	assert.False(t, matrix.Equal(nilRep))
	assert.True(t, nilRep.Equal(nil))
}

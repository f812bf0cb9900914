package encoding

import (
	"bytes"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arloliu/oasix/errs"
	"github.com/arloliu/oasix/format"
)

// =============================================================================
// Property Value Tests
// =============================================================================

func TestPutPropValue_RealEmbedsWithoutSecondForm(t *testing.T) {
	v := PropValueFromReal(RealRatio(3, 4, false))

	got := encodeTo(t, func(w Writer) error { return PutPropValue(w, &v) })
	// The leading byte is both the value type and the real form.
	assert.Equal(t, []byte{0x04, 0x03, 0x04}, got)
}

func TestReadPropValue_RoundTrip(t *testing.T) {
	values := []PropValue{
		PropValueFromReal(RealUint(42)),
		PropValueFromReal(RealInt(-42)),
		PropValueFromReal(RealReciprocal(8, false)),
		PropValueFromReal(RealReciprocal(8, true)),
		PropValueFromReal(RealRatio(22, 7, false)),
		PropValueFromReal(RealRatio(22, 7, true)),
		PropValueFromReal(RealFloat32(2.5)),
		PropValueFromReal(RealFloat64(math.Pi)),
		PropValueUint(math.MaxUint64),
		PropValueInt(math.MinInt64),
		PropValueAString("with space"),
		PropValueBString([]byte{0x00, 0xff}),
		PropValueNString("no-space"),
		PropValueRef(format.PropAStringRef, 12),
		PropValueRef(format.PropBStringRef, 0),
		PropValueRef(format.PropNStringRef, 1<<40),
	}

	for _, v := range values {
		t.Run(v.Type.String(), func(t *testing.T) {
			data := encodeTo(t, func(w Writer) error { return PutPropValue(w, &v) })

			got, err := ReadPropValue(bytes.NewReader(data))
			require.NoError(t, err)
			assert.Equal(t, v, got)
		})
	}
}

func TestPutPropValue_RejectsMismatchedRealForm(t *testing.T) {
	var buf bytes.Buffer
	v := PropValue{Type: format.PropRealPosInt, Real: RealFloat64(1)}

	err := PutPropValue(&buf, &v)
	require.ErrorIs(t, err, errs.ErrInvalidPropValue)
}

func TestPutPropValue_RejectsUnknownType(t *testing.T) {
	var buf bytes.Buffer
	v := PropValue{Type: 16}

	err := PutPropValue(&buf, &v)
	require.ErrorIs(t, err, errs.ErrInvalidPropValue)
}

func TestReadPropValue_RejectsUnknownType(t *testing.T) {
	_, err := ReadPropValue(bytes.NewReader([]byte{0x10}))
	require.ErrorIs(t, err, errs.ErrInvalidPropValue)
}

func TestReadPropValue_ValidatesInlineStrings(t *testing.T) {
	// An n-string value carrying a space.
	data := []byte{0x0c, 0x01, ' '}

	_, err := ReadPropValue(bytes.NewReader(data))
	require.ErrorIs(t, err, errs.ErrInvalidString)
}

package layout

import (
	"bytes"
	"io"
	"math"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/arloliu/oasix/encoding"
	"github.com/arloliu/oasix/errs"
	"github.com/arloliu/oasix/format"
	"github.com/arloliu/oasix/record"
	"github.com/arloliu/oasix/section"
	"github.com/arloliu/oasix/stream"
)

// encodeFile runs one full encoding session and returns the file bytes.
func encodeFile(t *testing.T, opts []EncoderOption, build func(*Encoder)) []byte {
	t.Helper()

	sink := stream.NewMemFile()
	enc, err := NewEncoder(sink, opts...)
	require.NoError(t, err)
	require.NoError(t, enc.Begin(1000))
	build(enc)
	require.NoError(t, enc.Finish())

	return sink.Bytes()
}

// decodeAll decodes a complete file and returns every record, START and
// END included.
func decodeAll(t *testing.T, data []byte, opts ...DecoderOption) []record.Record {
	t.Helper()

	dec, err := NewDecoder(bytes.NewReader(data), opts...)
	require.NoError(t, err)
	defer dec.Close()

	var recs []record.Record
	for rec, err := range dec.Records() {
		require.NoError(t, err)
		recs = append(recs, rec)
	}

	return recs
}

// decodeErr decodes until the first failure and returns it.
func decodeErr(t *testing.T, data []byte, opts ...DecoderOption) error {
	t.Helper()

	dec, err := NewDecoder(bytes.NewReader(data), opts...)
	if err != nil {
		return err
	}
	defer dec.Close()

	for _, err := range dec.Records() {
		if err != nil {
			return err
		}
	}

	return nil
}

func TestRoundTrip_MinimalFile(t *testing.T) {
	data := encodeFile(t, []EncoderOption{WithValidation(format.SchemeChecksum32)}, func(enc *Encoder) {
		require.NoError(t, enc.WriteRecord(&record.Cell{Ref: format.RefByName("TOP")}))
		require.NoError(t, enc.WriteRecord(&record.Rectangle{
			Layer: 1, Datatype: 0, Width: 100, Height: 50, X: 0, Y: 0,
		}))
	})

	require.Equal(t, []byte(section.Magic), data[:section.MagicSize])

	recs := decodeAll(t, data)
	require.Len(t, recs, 4)

	start, ok := recs[0].(*record.Start)
	require.True(t, ok)
	require.Equal(t, section.Version, start.Version)
	require.Equal(t, float64(1000), start.Unit.Float64())
	require.True(t, start.OffsetsInEnd)

	cell, ok := recs[1].(*record.Cell)
	require.True(t, ok)
	require.Equal(t, format.RefByName("TOP"), cell.Ref)

	rect, ok := recs[2].(*record.Rectangle)
	require.True(t, ok)
	require.Equal(t, &record.Rectangle{Layer: 1, Width: 100, Height: 50}, rect)

	end, ok := recs[3].(*record.End)
	require.True(t, ok)
	require.Equal(t, format.SchemeChecksum32, end.Scheme)
}

// TestRoundTrip_AllRecordKinds pushes every record kind through one file
// and requires the decoded sequence to equal the input records, with name
// numbers and interval bounds in their normalized form.
func TestRoundTrip_AllRecordKinds(t *testing.T) {
	rep := &encoding.Repetition{Type: format.RepMatrix, XCount: 3, YCount: 2, XSpace: 10, YSpace: 20}
	propValues := func() []encoding.PropValue {
		return []encoding.PropValue{
			encoding.PropValueUint(42),
			encoding.PropValueInt(-7),
			encoding.PropValueAString("hello"),
			encoding.PropValueFromReal(encoding.FromFloat64(0.5)),
			encoding.PropValueRef(format.PropBStringRef, 0),
		}
	}

	body := []record.Record{
		&record.Pad{},
		&record.LayerName{
			Name:   "metal1",
			Layers: encoding.Interval{Type: format.IntervalRange, Lower: 1, Upper: 5},
			Types:  encoding.Interval{Type: format.IntervalExact},
		},
		&record.LayerName{
			TextMapping: true,
			Name:        "labels",
			Layers:      encoding.Interval{Type: format.IntervalAll, Upper: math.MaxUint64},
			Types:       encoding.Interval{Type: format.IntervalUpTo, Upper: 3},
		},
		&record.TextString{Text: "VDD"},
		&record.PropName{Name: "PROP"},
		&record.PropString{Value: "property payload"},
		&record.XName{Attribute: 7, Name: "XN"},
		&record.Cell{Ref: format.RefByName("TOP")},
		&record.Placement{Cell: format.RefByName("SUB"), X: 100, Y: 200, Mag: 1, Angle: 90, Flip: true, Rep: rep},
		&record.Placement{Cell: format.RefByName("SUB2"), X: -50, Y: 0, Mag: 2.5, Angle: 45},
		&record.Text{Ref: format.RefByNumber(0), Layer: 3, Type: 4, X: 10, Y: -10},
		&record.Rectangle{Layer: 1, Datatype: 0, Width: 100, Height: 50, X: 0, Y: 0},
		&record.Rectangle{Layer: 1, Datatype: 0, Width: 30, Height: 30, X: 5, Y: 5},
		&record.Polygon{
			Layer: 2, Datatype: 1,
			Points: encoding.PointList{
				Type:   format.PointsHorizontalFirst,
				Points: []encoding.Point{{X: 10}, {Y: 5}, {X: -4}},
			},
			X: 7, Y: 8,
		},
		&record.Path{
			Layer: 2, Datatype: 1, Halfwidth: 5, StartExt: 0, EndExt: 5,
			Points: encoding.PointList{
				Type:   format.PointsManhattan,
				Points: []encoding.Point{{X: 20}, {Y: 10}},
			},
			X: 0, Y: 0,
		},
		&record.Trapezoid{Layer: 3, Datatype: 0, Width: 40, Height: 20, DeltaA: 5, X: 1, Y: 2},
		&record.Trapezoid{Layer: 3, Datatype: 0, Vertical: true, Width: 40, Height: 20, DeltaB: -3, X: 1, Y: 2},
		&record.Trapezoid{Layer: 3, Datatype: 0, Width: 40, Height: 20, DeltaA: 5, DeltaB: -3, X: 1, Y: 2},
		&record.CTrapezoid{Layer: 4, Datatype: 2, Shape: 10, Width: 25, Height: 15, X: 0, Y: 0},
		&record.Circle{Layer: 5, Datatype: 0, Radius: 50, X: 3, Y: 4},
		&record.Property{Name: format.RefByNumber(0), Standard: true, Values: propValues()},
		&record.Property{Name: format.RefByNumber(0), Standard: true, Values: propValues()},
		&record.XElement{Attribute: 9, Data: []byte{1, 2, 3}},
		&record.XGeometry{Attribute: 3, Data: []byte("blob"), Layer: 6, Datatype: 1, X: -2, Y: 9},
		&record.XYRelative{},
		&record.Rectangle{Layer: 6, Datatype: 1, Width: 10, Height: 10, X: 8, Y: 9},
		&record.XYAbsolute{},
	}

	data := encodeFile(t, nil, func(enc *Encoder) {
		for _, rec := range body {
			require.NoError(t, enc.WriteRecord(rec), "record %s", rec.Kind())
		}
	})

	recs := decodeAll(t, data)
	require.Len(t, recs, len(body)+2)
	require.Equal(t, body, recs[1:len(recs)-1])
}

func TestRoundTrip_CBlock(t *testing.T) {
	methods := []format.CompressionType{
		format.CompressionDeflate,
		format.CompressionNone,
		format.CompressionZstd,
		format.CompressionS2,
		format.CompressionLZ4,
	}
	for _, method := range methods {
		t.Run(method.String(), func(t *testing.T) {
			want := make([]record.Record, 0, 102)
			want = append(want, &record.Cell{Ref: format.RefByName("TOP")})
			for i := range 100 {
				want = append(want, &record.Rectangle{
					Layer: 1, Width: uint64(100 + i), Height: 50,
					X: int64(i * 200), Y: int64(i % 7),
				})
			}
			want = append(want, &record.Circle{Layer: 2, Radius: 9, X: 1, Y: 1})

			data := encodeFile(t, nil, func(enc *Encoder) {
				require.NoError(t, enc.BeginCBlock(method))
				for _, rec := range want {
					require.NoError(t, enc.WriteRecord(rec))
				}
				require.NoError(t, enc.EndCBlock())
				// One record outside the block, after the backpatch.
				require.NoError(t, enc.WriteRecord(&record.Pad{}))
			})

			recs := decodeAll(t, data)
			require.Len(t, recs, len(want)+3)
			require.Equal(t, want, recs[1:len(recs)-2])
			require.IsType(t, &record.Pad{}, recs[len(recs)-2])

			end, ok := recs[len(recs)-1].(*record.End)
			require.True(t, ok)
			require.Equal(t, format.SchemeCRC32, end.Scheme)
		})
	}
}

// TestRoundTrip_CBlockLargeSpan forces the compressed payload past the
// stream buffer capacity so the backpatch takes the positioned-write path,
// then checks that CRC validation still passes on re-read.
func TestRoundTrip_CBlockLargeSpan(t *testing.T) {
	data := encodeFile(t, nil, func(enc *Encoder) {
		require.NoError(t, enc.BeginCBlock(format.CompressionNone))
		require.NoError(t, enc.WriteRecord(&record.Cell{Ref: format.RefByName("TOP")}))
		for i := range 20000 {
			require.NoError(t, enc.WriteRecord(&record.Rectangle{
				Layer: uint64(i % 13), Width: uint64(1 + i), Height: uint64(1 + i*3),
				X: int64(i * 17), Y: int64(-i),
			}))
		}
		require.NoError(t, enc.EndCBlock())
	})

	recs := decodeAll(t, data)
	require.Len(t, recs, 20003)
	require.Equal(t, &record.Rectangle{
		Layer: 19999 % 13, Width: 20000, Height: 59998, X: 19999 * 17, Y: -19999,
	}, recs[len(recs)-2])
}

// TestRoundTrip_ChecksumOrderIndependence permutes two self-contained
// compressed blocks. The byte-sum signature must not change; the CRC must.
func TestRoundTrip_ChecksumOrderIndependence(t *testing.T) {
	blockA := func(enc *Encoder) {
		require.NoError(t, enc.BeginCBlock(format.CompressionNone))
		require.NoError(t, enc.WriteRecord(&record.Cell{Ref: format.RefByName("A")}))
		require.NoError(t, enc.WriteRecord(&record.Rectangle{Layer: 1, Width: 10, Height: 20, X: 1, Y: 2}))
		require.NoError(t, enc.EndCBlock())
	}
	blockB := func(enc *Encoder) {
		require.NoError(t, enc.BeginCBlock(format.CompressionNone))
		require.NoError(t, enc.WriteRecord(&record.Cell{Ref: format.RefByName("B")}))
		require.NoError(t, enc.WriteRecord(&record.Circle{Layer: 2, Radius: 5, X: 3, Y: 4}))
		require.NoError(t, enc.EndCBlock())
	}

	signature := func(scheme format.ValidationScheme, first, second func(*Encoder)) uint32 {
		data := encodeFile(t, []EncoderOption{WithValidation(scheme)}, func(enc *Encoder) {
			first(enc)
			second(enc)
		})
		recs := decodeAll(t, data)
		end, ok := recs[len(recs)-1].(*record.End)
		require.True(t, ok)

		return end.Signature
	}

	sumAB := signature(format.SchemeChecksum32, blockA, blockB)
	sumBA := signature(format.SchemeChecksum32, blockB, blockA)
	require.Equal(t, sumAB, sumBA)

	crcAB := signature(format.SchemeCRC32, blockA, blockB)
	crcBA := signature(format.SchemeCRC32, blockB, blockA)
	require.NotEqual(t, crcAB, crcBA)
}

func TestRoundTrip_RelativeMode(t *testing.T) {
	data := encodeFile(t, nil, func(enc *Encoder) {
		require.NoError(t, enc.WriteRecord(&record.Cell{Ref: format.RefByName("TOP")}))
		require.NoError(t, enc.WriteRecord(&record.XYRelative{}))
		require.NoError(t, enc.WriteRecord(&record.Rectangle{Layer: 1, Width: 5, Height: 5, X: 10, Y: 10}))
		require.NoError(t, enc.WriteRecord(&record.Rectangle{Layer: 1, Width: 5, Height: 5, X: 25, Y: 10}))
		require.NoError(t, enc.WriteRecord(&record.Rectangle{Layer: 1, Width: 5, Height: 5, X: 25, Y: -30}))
	})

	recs := decodeAll(t, data)
	require.Len(t, recs, 7)
	require.Equal(t, &record.Rectangle{Layer: 1, Width: 5, Height: 5, X: 10, Y: 10}, recs[3])
	require.Equal(t, &record.Rectangle{Layer: 1, Width: 5, Height: 5, X: 25, Y: 10}, recs[4])
	require.Equal(t, &record.Rectangle{Layer: 1, Width: 5, Height: 5, X: 25, Y: -30}, recs[5])
}

func TestRoundTrip_TableOffsetsInStart(t *testing.T) {
	var wantOffset int64
	data := encodeFile(t, []EncoderOption{WithTableOffsetsInStart()}, func(enc *Encoder) {
		wantOffset = enc.Offset()
		_, err := enc.InternCellName("TOP")
		require.NoError(t, err)
		require.NoError(t, enc.WriteRecord(&record.Cell{Ref: format.RefByNumber(0)}))
	})

	dec, err := NewDecoder(bytes.NewReader(data))
	require.NoError(t, err)
	defer dec.Close()

	_, ok := dec.TableOffsets()
	require.False(t, ok, "offsets unavailable before the START record")

	first, err := dec.Next()
	require.NoError(t, err)
	start, ok := first.(*record.Start)
	require.True(t, ok)
	require.False(t, start.OffsetsInEnd)

	offsets, ok := dec.TableOffsets()
	require.True(t, ok)
	require.Equal(t, uint64(wantOffset), offsets.CellName.Offset)
	require.Zero(t, offsets.TextString.Offset)
	require.Zero(t, offsets.LayerName.Offset)

	for {
		if _, err := dec.Next(); err != nil {
			require.ErrorIs(t, err, io.EOF)
			break
		}
	}
}

func TestRoundTrip_ValidationSchemes(t *testing.T) {
	schemes := []format.ValidationScheme{format.SchemeNone, format.SchemeCRC32, format.SchemeChecksum32}
	for _, scheme := range schemes {
		t.Run(scheme.String(), func(t *testing.T) {
			data := encodeFile(t, []EncoderOption{WithValidation(scheme)}, func(enc *Encoder) {
				require.NoError(t, enc.WriteRecord(&record.Cell{Ref: format.RefByName("TOP")}))
				require.NoError(t, enc.WriteRecord(&record.Rectangle{Layer: 1, Width: 2, Height: 3}))
			})

			recs := decodeAll(t, data)
			end, ok := recs[len(recs)-1].(*record.End)
			require.True(t, ok)
			require.Equal(t, scheme, end.Scheme)

			if scheme == format.SchemeNone {
				return
			}

			// A flipped padding byte leaves the structure intact but must
			// break the signature.
			corrupt := bytes.Clone(data)
			corrupt[len(corrupt)-10] ^= 0x01
			err := decodeErr(t, corrupt)
			require.ErrorIs(t, err, errs.ErrValidationFailed)

			// The same file passes with verification disabled.
			recs = decodeAll(t, corrupt, WithoutValidation())
			require.IsType(t, &record.End{}, recs[len(recs)-1])
		})
	}
}

func TestRoundTrip_EndRecordFixedSize(t *testing.T) {
	schemes := []format.ValidationScheme{format.SchemeNone, format.SchemeCRC32, format.SchemeChecksum32}
	for _, scheme := range schemes {
		t.Run(scheme.String(), func(t *testing.T) {
			sink := stream.NewMemFile()
			enc, err := NewEncoder(sink, WithValidation(scheme))
			require.NoError(t, err)
			require.NoError(t, enc.Begin(1000))
			require.NoError(t, enc.WriteRecord(&record.Cell{Ref: format.RefByName("TOP")}))

			endStart := enc.Offset()
			require.NoError(t, enc.Finish())
			require.Equal(t, int(endStart)+section.EndRecordSize, sink.Len())
		})
	}
}

// TestRoundTrip_Truncation cuts a valid file at every byte boundary and
// requires every prefix to fail decoding, never to succeed or hang.
func TestRoundTrip_Truncation(t *testing.T) {
	data := encodeFile(t, nil, func(enc *Encoder) {
		require.NoError(t, enc.WriteRecord(&record.CellName{Name: "TOP"}))
		require.NoError(t, enc.WriteRecord(&record.Cell{Ref: format.RefByNumber(0)}))
		require.NoError(t, enc.WriteRecord(&record.Rectangle{Layer: 1, Width: 100, Height: 50, X: -3, Y: 4}))
	})

	for cut := 0; cut < len(data); cut++ {
		require.Error(t, decodeErr(t, data[:cut], WithoutValidation()), "prefix of %d bytes", cut)
	}
	require.NoError(t, decodeErr(t, data, WithoutValidation()))
}

// Package record defines the typed, in-memory form of every wire record.
//
// Each struct carries fully resolved values: coordinates are absolute,
// fields a conformant file may omit are filled in from the modal state by
// the decoder, and reference numbers of implicitly numbered name records
// are assigned. The encoder works in the opposite direction, comparing a
// record against the modal state to decide which fields the wire form can
// drop.
//
// Record is a closed sum: the assembler and emitter switch exhaustively
// over the types below, so an unhandled record kind is a compile-time
// concern rather than a runtime surprise.
package record

import (
	"github.com/arloliu/oasix/encoding"
	"github.com/arloliu/oasix/format"
)

// Record is one decoded file record.
type Record interface {
	// Kind returns the wire record type this record encodes as. Types
	// that share one struct (the trapezoid and placement variants, the
	// paired name records) derive the tag from their field values.
	Kind() format.RecordType

	isRecord()
}

var (
	_ Record = (*Pad)(nil)
	_ Record = (*Start)(nil)
	_ Record = (*End)(nil)
	_ Record = (*CellName)(nil)
	_ Record = (*TextString)(nil)
	_ Record = (*PropName)(nil)
	_ Record = (*PropString)(nil)
	_ Record = (*LayerName)(nil)
	_ Record = (*Cell)(nil)
	_ Record = (*XYAbsolute)(nil)
	_ Record = (*XYRelative)(nil)
	_ Record = (*Placement)(nil)
	_ Record = (*Text)(nil)
	_ Record = (*Rectangle)(nil)
	_ Record = (*Polygon)(nil)
	_ Record = (*Path)(nil)
	_ Record = (*Trapezoid)(nil)
	_ Record = (*CTrapezoid)(nil)
	_ Record = (*Circle)(nil)
	_ Record = (*Property)(nil)
	_ Record = (*XName)(nil)
	_ Record = (*XElement)(nil)
	_ Record = (*XGeometry)(nil)
)

// Pad is a single filler byte with no content.
type Pad struct{}

func (*Pad) Kind() format.RecordType { return format.RecPad }
func (*Pad) isRecord()               {}

// Start opens the file. Unit is the number of grid steps per micron and
// must be positive. OffsetsInEnd selects where the table-offsets structure
// lives; encoders that place it in START reserve its byte region up front
// and patch the offsets in when the session finishes.
type Start struct {
	Version      string
	Unit         encoding.Real
	OffsetsInEnd bool
}

func (*Start) Kind() format.RecordType { return format.RecStart }
func (*Start) isRecord()               {}

// End closes the file. Scheme and Signature mirror the validation trailer;
// Signature is meaningful only when Scheme is not format.SchemeNone.
type End struct {
	Scheme    format.ValidationScheme
	Signature uint32
}

func (*End) Kind() format.RecordType { return format.RecEnd }
func (*End) isRecord()               {}

// CellName declares a cell name. Explicit selects the wire form that
// carries the reference number; otherwise the number is assigned by the
// implicit file-order counter and Number holds the resolved value after
// decoding.
type CellName struct {
	Name     string
	Number   uint64
	Explicit bool
}

func (r *CellName) Kind() format.RecordType {
	if r.Explicit {
		return format.RecCellNameNum
	}

	return format.RecCellName
}

func (*CellName) isRecord() {}

// TextString declares a text string, numbered like CellName.
type TextString struct {
	Text     string
	Number   uint64
	Explicit bool
}

func (r *TextString) Kind() format.RecordType {
	if r.Explicit {
		return format.RecTextStringNum
	}

	return format.RecTextString
}

func (*TextString) isRecord() {}

// PropName declares a property name, numbered like CellName.
type PropName struct {
	Name     string
	Number   uint64
	Explicit bool
}

func (r *PropName) Kind() format.RecordType {
	if r.Explicit {
		return format.RecPropNameNum
	}

	return format.RecPropName
}

func (*PropName) isRecord() {}

// PropString declares a property string, numbered like CellName. The
// value may hold arbitrary bytes.
type PropString struct {
	Value    string
	Number   uint64
	Explicit bool
}

func (r *PropString) Kind() format.RecordType {
	if r.Explicit {
		return format.RecPropStringNum
	}

	return format.RecPropString
}

func (*PropString) isRecord() {}

// LayerName maps a name to layer and datatype intervals. TextMapping
// selects the text-layer variant, in which the intervals constrain
// textlayer and texttype numbers instead.
type LayerName struct {
	TextMapping bool
	Name        string
	Layers      encoding.Interval
	Types       encoding.Interval
}

func (r *LayerName) Kind() format.RecordType {
	if r.TextMapping {
		return format.RecLayerNameText
	}

	return format.RecLayerName
}

func (*LayerName) isRecord() {}

// Cell opens a cell definition. The reference selects the wire form:
// by number or by literal name.
type Cell struct {
	Ref format.NameRef
}

func (r *Cell) Kind() format.RecordType {
	if r.Ref.ByName {
		return format.RecCellString
	}

	return format.RecCellRef
}

func (*Cell) isRecord() {}

// XYAbsolute switches the session to absolute coordinate interpretation.
type XYAbsolute struct{}

func (*XYAbsolute) Kind() format.RecordType { return format.RecXYAbsolute }
func (*XYAbsolute) isRecord()               {}

// XYRelative switches the session to relative coordinate interpretation:
// explicit element coordinates become offsets from the modal position.
type XYRelative struct{}

func (*XYRelative) Kind() format.RecordType { return format.RecXYRelative }
func (*XYRelative) isRecord()               {}

// Placement instantiates a cell at X, Y with a counterclockwise rotation
// of Angle degrees, scaled by Mag, mirrored about the x axis first when
// Flip is set. The compact quarter-turn wire form applies when Mag is one
// and Angle is a multiple of ninety degrees; any other combination uses
// the general form with explicit reals.
type Placement struct {
	Cell  format.NameRef
	X     int64
	Y     int64
	Mag   float64
	Angle float64
	Flip  bool
	Rep   *encoding.Repetition
}

func (r *Placement) Kind() format.RecordType {
	if r.Mag == 1 {
		if _, ok := QuarterTurns(r.Angle); ok {
			return format.RecPlacement
		}
	}

	return format.RecPlacementMag
}

func (*Placement) isRecord() {}

// QuarterTurns returns the number of ninety-degree turns encoding angle
// and whether angle is exactly such a multiple.
func QuarterTurns(angle float64) (uint8, bool) {
	switch angle {
	case 0:
		return 0, true
	case 90:
		return 1, true
	case 180:
		return 2, true
	case 270:
		return 3, true
	default:
		return 0, false
	}
}

// Text places a text element. Ref resolves through the TEXTSTRING table
// when it is a number; Layer and Type are the textlayer and texttype
// numbers.
type Text struct {
	Ref   format.NameRef
	Layer uint64
	Type  uint64
	X     int64
	Y     int64
	Rep   *encoding.Repetition
}

func (*Text) Kind() format.RecordType { return format.RecText }
func (*Text) isRecord()               {}

// Rectangle places an axis-aligned rectangle with its lower-left corner at
// X, Y. A zero-area rectangle is legal.
type Rectangle struct {
	Layer    uint64
	Datatype uint64
	Width    uint64
	Height   uint64
	X        int64
	Y        int64
	Rep      *encoding.Repetition
}

func (*Rectangle) Kind() format.RecordType { return format.RecRectangle }
func (*Rectangle) isRecord()               {}

// Polygon places a closed polygon anchored at X, Y. The point list holds
// the displacements between consecutive vertices; the edge closing the
// polygon is implied.
type Polygon struct {
	Layer    uint64
	Datatype uint64
	Points   encoding.PointList
	X        int64
	Y        int64
	Rep      *encoding.Repetition
}

func (*Polygon) Kind() format.RecordType { return format.RecPolygon }
func (*Polygon) isRecord()               {}

// Path places a wire of halfwidth Halfwidth along the point list, with
// signed end extensions measured along the first and last segments.
type Path struct {
	Layer     uint64
	Datatype  uint64
	Halfwidth uint64
	StartExt  int64
	EndExt    int64
	Points    encoding.PointList
	X         int64
	Y         int64
	Rep       *encoding.Repetition
}

func (*Path) Kind() format.RecordType { return format.RecPath }
func (*Path) isRecord()               {}

// Trapezoid places a trapezoid inside the Width by Height bounding box at
// X, Y. For the horizontal orientation DeltaA shifts the top-left corner
// right and DeltaB the bottom-right corner left; Vertical swaps the roles
// of the axes. The wire has three tags so that a zero delta can be left
// out; Kind picks the shortest.
type Trapezoid struct {
	Layer    uint64
	Datatype uint64
	Vertical bool
	Width    uint64
	Height   uint64
	DeltaA   int64
	DeltaB   int64
	X        int64
	Y        int64
	Rep      *encoding.Repetition
}

func (r *Trapezoid) Kind() format.RecordType {
	switch {
	case r.DeltaB == 0:
		return format.RecTrapezoidA
	case r.DeltaA == 0:
		return format.RecTrapezoidB
	default:
		return format.RecTrapezoid
	}
}

func (*Trapezoid) isRecord() {}

// CTrapezoid places one of the predefined compact trapezoid shapes. Shape
// selects which one; whether Width, Height or both are meaningful depends
// on the shape, the others stay zero.
type CTrapezoid struct {
	Layer    uint64
	Datatype uint64
	Shape    uint64
	Width    uint64
	Height   uint64
	X        int64
	Y        int64
	Rep      *encoding.Repetition
}

func (*CTrapezoid) Kind() format.RecordType { return format.RecCTrapezoid }
func (*CTrapezoid) isRecord()               {}

// Circle places a circle of the given radius centered at X, Y.
type Circle struct {
	Layer    uint64
	Datatype uint64
	Radius   uint64
	X        int64
	Y        int64
	Rep      *encoding.Repetition
}

func (*Circle) Kind() format.RecordType { return format.RecCircle }
func (*Circle) isRecord()               {}

// Property attaches a named value list to the element or name record that
// precedes it. Standard marks the property as one of the format's
// registered standard properties.
type Property struct {
	Name     format.NameRef
	Values   []encoding.PropValue
	Standard bool
}

func (*Property) Kind() format.RecordType { return format.RecProperty }
func (*Property) isRecord()               {}

// XName declares an extension name with an attribute code, numbered like
// CellName.
type XName struct {
	Attribute uint64
	Name      string
	Number    uint64
	Explicit  bool
}

func (r *XName) Kind() format.RecordType {
	if r.Explicit {
		return format.RecXNameNum
	}

	return format.RecXName
}

func (*XName) isRecord() {}

// XElement places an opaque extension element. The payload is not
// interpreted.
type XElement struct {
	Attribute uint64
	Data      []byte
}

func (*XElement) Kind() format.RecordType { return format.RecXElement }
func (*XElement) isRecord()               {}

// XGeometry places an opaque extension geometry that still participates in
// the layer, datatype and position modals.
type XGeometry struct {
	Attribute uint64
	Data      []byte
	Layer     uint64
	Datatype  uint64
	X         int64
	Y         int64
	Rep       *encoding.Repetition
}

func (*XGeometry) Kind() format.RecordType { return format.RecXGeometry }
func (*XGeometry) isRecord()               {}

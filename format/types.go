package format

type (
	RecordType       uint8
	RealType         uint8
	RepetitionType   uint8
	PointListType    uint8
	PropValueType    uint8
	IntervalType     uint8
	Direction        uint8
	ValidationScheme uint8
	CompressionType  uint8
)

// Record type tags as stored in the file. Name records come in pairs: the
// base form assigns reference numbers implicitly in file order, the *Num
// form carries an explicit reference number after the name.
const (
	RecPad           RecordType = 0  // RecPad is a single ignored filler byte.
	RecStart         RecordType = 1  // RecStart opens the file.
	RecEnd           RecordType = 2  // RecEnd closes the file, fixed 256 bytes.
	RecCellName      RecordType = 3  // RecCellName declares a cell name.
	RecCellNameNum   RecordType = 4  // RecCellNameNum declares a cell name with explicit number.
	RecTextString    RecordType = 5  // RecTextString declares a text string.
	RecTextStringNum RecordType = 6  // RecTextStringNum declares a text string with explicit number.
	RecPropName      RecordType = 7  // RecPropName declares a property name.
	RecPropNameNum   RecordType = 8  // RecPropNameNum declares a property name with explicit number.
	RecPropString    RecordType = 9  // RecPropString declares a property string.
	RecPropStringNum RecordType = 10 // RecPropStringNum declares a property string with explicit number.
	RecLayerName     RecordType = 11 // RecLayerName maps a name to geometry layer intervals.
	RecLayerNameText RecordType = 12 // RecLayerNameText maps a name to text layer intervals.
	RecCellRef       RecordType = 13 // RecCellRef opens a cell by reference number.
	RecCellString    RecordType = 14 // RecCellString opens a cell by name string.
	RecXYAbsolute    RecordType = 15 // RecXYAbsolute switches coordinates to absolute mode.
	RecXYRelative    RecordType = 16 // RecXYRelative switches coordinates to relative mode.
	RecPlacement     RecordType = 17 // RecPlacement places a cell at a quarter-turn orientation.
	RecPlacementMag  RecordType = 18 // RecPlacementMag places a cell with magnification and angle reals.
	RecText          RecordType = 19 // RecText places a text element.
	RecRectangle     RecordType = 20 // RecRectangle places an axis-aligned rectangle.
	RecPolygon       RecordType = 21 // RecPolygon places a polygon.
	RecPath          RecordType = 22 // RecPath places a path with halfwidth and end extensions.
	RecTrapezoid     RecordType = 23 // RecTrapezoid places a trapezoid with both edge deltas.
	RecTrapezoidA    RecordType = 24 // RecTrapezoidA places a trapezoid with delta-a only.
	RecTrapezoidB    RecordType = 25 // RecTrapezoidB places a trapezoid with delta-b only.
	RecCTrapezoid    RecordType = 26 // RecCTrapezoid places a compact trapezoid of a predefined kind.
	RecCircle        RecordType = 27 // RecCircle places a circle.
	RecProperty      RecordType = 28 // RecProperty attaches a property to the preceding element.
	RecPropertyLast  RecordType = 29 // RecPropertyLast repeats the previous property unchanged.
	RecXName         RecordType = 30 // RecXName declares an extension name.
	RecXNameNum      RecordType = 31 // RecXNameNum declares an extension name with explicit number.
	RecXElement      RecordType = 32 // RecXElement places an opaque extension element.
	RecXGeometry     RecordType = 33 // RecXGeometry places an opaque extension geometry.
	RecCBlock        RecordType = 34 // RecCBlock wraps compressed records.

	MaxRecordType = RecCBlock
)

var recordNames = [...]string{
	"PAD", "START", "END",
	"CELLNAME", "CELLNAME", "TEXTSTRING", "TEXTSTRING",
	"PROPNAME", "PROPNAME", "PROPSTRING", "PROPSTRING",
	"LAYERNAME", "LAYERNAME",
	"CELL", "CELL", "XYABSOLUTE", "XYRELATIVE",
	"PLACEMENT", "PLACEMENT", "TEXT", "RECTANGLE", "POLYGON", "PATH",
	"TRAPEZOID", "TRAPEZOID", "TRAPEZOID", "CTRAPEZOID", "CIRCLE",
	"PROPERTY", "PROPERTY", "XNAME", "XNAME", "XELEMENT", "XGEOMETRY",
	"CBLOCK",
}

func (t RecordType) String() string {
	if int(t) < len(recordNames) {
		return recordNames[t]
	}

	return "UNKNOWN"
}

// Real number forms. Integer, reciprocal and ratio forms store unsigned
// magnitudes with the sign carried by the form tag itself.
const (
	RealPosInt        RealType = 0 // RealPosInt is a non-negative whole number.
	RealNegInt        RealType = 1 // RealNegInt is a negated whole number.
	RealPosReciprocal RealType = 2 // RealPosReciprocal is 1/d for unsigned d.
	RealNegReciprocal RealType = 3 // RealNegReciprocal is -1/d for unsigned d.
	RealPosRatio      RealType = 4 // RealPosRatio is n/d for unsigned n, d.
	RealNegRatio      RealType = 5 // RealNegRatio is -n/d for unsigned n, d.
	RealFloat32       RealType = 6 // RealFloat32 is an IEEE 754 single, little-endian.
	RealFloat64       RealType = 7 // RealFloat64 is an IEEE 754 double, little-endian.
)

func (t RealType) String() string {
	switch t {
	case RealPosInt:
		return "PosInt"
	case RealNegInt:
		return "NegInt"
	case RealPosReciprocal:
		return "PosReciprocal"
	case RealNegReciprocal:
		return "NegReciprocal"
	case RealPosRatio:
		return "PosRatio"
	case RealNegRatio:
		return "NegRatio"
	case RealFloat32:
		return "Float32"
	case RealFloat64:
		return "Float64"
	default:
		return "Unknown"
	}
}

// Repetition types. Dimensions are stored on the wire with a bias of two,
// varying and arbitrary forms carry count-1 explicit steps.
const (
	RepPrevious     RepetitionType = 0  // RepPrevious reuses the modal repetition.
	RepMatrix       RepetitionType = 1  // RepMatrix is an x by y grid with uniform spacing.
	RepUniformX     RepetitionType = 2  // RepUniformX is a row with uniform x spacing.
	RepUniformY     RepetitionType = 3  // RepUniformY is a column with uniform y spacing.
	RepVaryingX     RepetitionType = 4  // RepVaryingX is a row with explicit x spacings.
	RepVaryingXGrid RepetitionType = 5  // RepVaryingXGrid is RepVaryingX with spacings on a grid.
	RepVaryingY     RepetitionType = 6  // RepVaryingY is a column with explicit y spacings.
	RepVaryingYGrid RepetitionType = 7  // RepVaryingYGrid is RepVaryingY with spacings on a grid.
	RepTiltedMatrix RepetitionType = 8  // RepTiltedMatrix is an n by m grid along two g-delta axes.
	RepDiagonal     RepetitionType = 9  // RepDiagonal is a row along one g-delta axis.
	RepArbitrary    RepetitionType = 10 // RepArbitrary is explicit g-delta displacements.
	RepArbitraryGrid RepetitionType = 11 // RepArbitraryGrid is RepArbitrary with displacements on a grid.

	MaxRepetitionType = RepArbitraryGrid
)

func (t RepetitionType) String() string {
	switch t {
	case RepPrevious:
		return "Previous"
	case RepMatrix:
		return "Matrix"
	case RepUniformX:
		return "UniformX"
	case RepUniformY:
		return "UniformY"
	case RepVaryingX:
		return "VaryingX"
	case RepVaryingXGrid:
		return "VaryingXGrid"
	case RepVaryingY:
		return "VaryingY"
	case RepVaryingYGrid:
		return "VaryingYGrid"
	case RepTiltedMatrix:
		return "TiltedMatrix"
	case RepDiagonal:
		return "Diagonal"
	case RepArbitrary:
		return "Arbitrary"
	case RepArbitraryGrid:
		return "ArbitraryGrid"
	default:
		return "Unknown"
	}
}

// Point list types, ordered from most to least constrained.
const (
	PointsHorizontalFirst PointListType = 0 // PointsHorizontalFirst alternates axis deltas, x first.
	PointsVerticalFirst   PointListType = 1 // PointsVerticalFirst alternates axis deltas, y first.
	PointsManhattan       PointListType = 2 // PointsManhattan uses 2-deltas on the four axes.
	PointsOctangular      PointListType = 3 // PointsOctangular uses 3-deltas on the eight axes.
	PointsAny             PointListType = 4 // PointsAny uses unrestricted g-deltas.
	PointsDoubleDelta     PointListType = 5 // PointsDoubleDelta uses g-deltas of successive differences.

	MaxPointListType = PointsDoubleDelta
)

func (t PointListType) String() string {
	switch t {
	case PointsHorizontalFirst:
		return "HorizontalFirst"
	case PointsVerticalFirst:
		return "VerticalFirst"
	case PointsManhattan:
		return "Manhattan"
	case PointsOctangular:
		return "Octangular"
	case PointsAny:
		return "Any"
	case PointsDoubleDelta:
		return "DoubleDelta"
	default:
		return "Unknown"
	}
}

// Property value types. Tags 0 through 7 embed a real number of the same
// form without a second form byte.
const (
	PropRealPosInt        PropValueType = 0  // PropRealPosInt embeds a RealPosInt payload.
	PropRealNegInt        PropValueType = 1  // PropRealNegInt embeds a RealNegInt payload.
	PropRealPosReciprocal PropValueType = 2  // PropRealPosReciprocal embeds a RealPosReciprocal payload.
	PropRealNegReciprocal PropValueType = 3  // PropRealNegReciprocal embeds a RealNegReciprocal payload.
	PropRealPosRatio      PropValueType = 4  // PropRealPosRatio embeds a RealPosRatio payload.
	PropRealNegRatio      PropValueType = 5  // PropRealNegRatio embeds a RealNegRatio payload.
	PropRealFloat32       PropValueType = 6  // PropRealFloat32 embeds a RealFloat32 payload.
	PropRealFloat64       PropValueType = 7  // PropRealFloat64 embeds a RealFloat64 payload.
	PropUnsigned          PropValueType = 8  // PropUnsigned is an unsigned integer.
	PropSigned            PropValueType = 9  // PropSigned is a signed integer.
	PropAString           PropValueType = 10 // PropAString is an inline a-string.
	PropBString           PropValueType = 11 // PropBString is an inline b-string.
	PropNString           PropValueType = 12 // PropNString is an inline n-string.
	PropAStringRef        PropValueType = 13 // PropAStringRef references a PROPSTRING by number.
	PropBStringRef        PropValueType = 14 // PropBStringRef references a PROPSTRING by number.
	PropNStringRef        PropValueType = 15 // PropNStringRef references a PROPSTRING by number.

	MaxPropValueType = PropNStringRef
)

func (t PropValueType) String() string {
	switch {
	case t <= PropRealFloat64:
		return "Real" + RealType(t).String()
	case t == PropUnsigned:
		return "Unsigned"
	case t == PropSigned:
		return "Signed"
	case t == PropAString:
		return "AString"
	case t == PropBString:
		return "BString"
	case t == PropNString:
		return "NString"
	case t == PropAStringRef:
		return "AStringRef"
	case t == PropBStringRef:
		return "BStringRef"
	case t == PropNStringRef:
		return "NStringRef"
	default:
		return "Unknown"
	}
}

// Interval types used by LAYERNAME records.
const (
	IntervalAll   IntervalType = 0 // IntervalAll covers 0 to infinity.
	IntervalUpTo  IntervalType = 1 // IntervalUpTo covers 0 to a bound.
	IntervalFrom  IntervalType = 2 // IntervalFrom covers a bound to infinity.
	IntervalExact IntervalType = 3 // IntervalExact covers a single value.
	IntervalRange IntervalType = 4 // IntervalRange covers an explicit pair of bounds.

	MaxIntervalType = IntervalRange
)

func (t IntervalType) String() string {
	switch t {
	case IntervalAll:
		return "All"
	case IntervalUpTo:
		return "UpTo"
	case IntervalFrom:
		return "From"
	case IntervalExact:
		return "Exact"
	case IntervalRange:
		return "Range"
	default:
		return "Unknown"
	}
}

// Directions for 2-delta, 3-delta and g-delta form 1 codes. The axis
// directions double as the 2-delta codes.
const (
	East      Direction = 0 // East is +x.
	North     Direction = 1 // North is +y.
	West      Direction = 2 // West is -x.
	South     Direction = 3 // South is -y.
	Northeast Direction = 4 // Northeast is +x +y.
	Northwest Direction = 5 // Northwest is -x +y.
	Southwest Direction = 6 // Southwest is -x -y.
	Southeast Direction = 7 // Southeast is +x -y.
)

func (d Direction) String() string {
	switch d {
	case East:
		return "E"
	case North:
		return "N"
	case West:
		return "W"
	case South:
		return "S"
	case Northeast:
		return "NE"
	case Northwest:
		return "NW"
	case Southwest:
		return "SW"
	case Southeast:
		return "SE"
	default:
		return "Unknown"
	}
}

// Validation schemes stored in the END record.
const (
	SchemeNone       ValidationScheme = 0 // SchemeNone stores no signature.
	SchemeCRC32      ValidationScheme = 1 // SchemeCRC32 stores an IEEE CRC-32 of the file bytes.
	SchemeChecksum32 ValidationScheme = 2 // SchemeChecksum32 stores a 32-bit byte sum of the file bytes.
)

func (s ValidationScheme) String() string {
	switch s {
	case SchemeNone:
		return "None"
	case SchemeCRC32:
		return "CRC32"
	case SchemeChecksum32:
		return "Checksum32"
	default:
		return "Unknown"
	}
}

// Compression methods for CBLOCK records. Deflate is the only method the
// interchange format defines; the remaining methods occupy the vendor
// extension range and round-trip only through this library.
const (
	CompressionDeflate CompressionType = 0  // CompressionDeflate is RFC 1951 DEFLATE.
	CompressionNone    CompressionType = 64 // CompressionNone stores bytes unchanged.
	CompressionZstd    CompressionType = 65 // CompressionZstd is Zstandard framing.
	CompressionS2      CompressionType = 66 // CompressionS2 is S2 framing.
	CompressionLZ4     CompressionType = 67 // CompressionLZ4 is LZ4 framing.
)

func (c CompressionType) String() string {
	switch c {
	case CompressionDeflate:
		return "Deflate"
	case CompressionNone:
		return "None"
	case CompressionZstd:
		return "Zstd"
	case CompressionS2:
		return "S2"
	case CompressionLZ4:
		return "LZ4"
	default:
		return "Unknown"
	}
}

// Decoder safety limits. Length and count fields above these values are
// rejected before any allocation is attempted.
const (
	// MaxStringLength bounds a single string payload.
	MaxStringLength = 1 << 24

	// MaxListLength bounds vertex counts, repetition dimensions and
	// property value counts.
	MaxListLength = 1 << 24

	// MaxCTrapezoidKind is the largest predefined compact trapezoid kind.
	MaxCTrapezoidKind = 25
)

package record

// Element info-byte bits shared by the geometry records. RECTANGLE, PATH,
// TRAPEZOID, CTRAPEZOID, POLYGON, CIRCLE and XGEOMETRY all end in the
// XYRDL pattern; TEXT shares the positions but reads L as textlayer and
// replaces D with its texttype bit.
const (
	ElemL uint8 = 1 << 0 // layer number follows
	ElemD uint8 = 1 << 1 // datatype number follows
	ElemR uint8 = 1 << 2 // repetition follows
	ElemY uint8 = 1 << 3 // y coordinate follows
	ElemX uint8 = 1 << 4 // x coordinate follows
)

// Rectangle info-byte, SWHXYRDL. S marks a square: the height equals the
// width and the H bit must be clear.
const (
	RectH uint8 = 1 << 5
	RectW uint8 = 1 << 6
	RectS uint8 = 1 << 7
)

// Polygon info-byte, 00PXYRDL.
const (
	PolygonP    uint8 = 1 << 5 // point list follows
	PolygonMask uint8 = PolygonP | ElemX | ElemY | ElemR | ElemD | ElemL
)

// Path info-byte, EWPXYRDL. When E is set an extension-scheme integer
// follows the halfwidth; its two-bit fields select how each end extension
// is determined.
const (
	PathP uint8 = 1 << 5 // point list follows
	PathW uint8 = 1 << 6 // halfwidth follows
	PathE uint8 = 1 << 7 // extension scheme follows
)

// Extension-scheme field values, two bits per path end. The scheme integer
// packs the start field in bits 3-2 and the end field in bits 1-0.
const (
	ExtModal     uint8 = 0 // reuse the modal extension
	ExtFlush     uint8 = 1 // flush end, extension zero
	ExtHalfwidth uint8 = 2 // extension equals the halfwidth
	ExtExplicit  uint8 = 3 // a signed integer follows
)

// Trapezoid info-byte, OWHXYRDL. O selects the vertical orientation.
const (
	TrapH uint8 = 1 << 5
	TrapW uint8 = 1 << 6
	TrapO uint8 = 1 << 7
)

// CTrapezoid info-byte, TWHXYRDL. T marks an explicit shape number.
const (
	CTrapH uint8 = 1 << 5
	CTrapW uint8 = 1 << 6
	CTrapT uint8 = 1 << 7
)

// Circle info-byte, 00rXYRDL.
const (
	CircleR    uint8 = 1 << 5 // radius follows
	CircleMask uint8 = CircleR | ElemX | ElemY | ElemR | ElemD | ElemL
)

// Text info-byte, 0CNXYRTL. The string reference follows the info byte:
// a number when N is set, a literal string otherwise.
const (
	TextT    uint8 = 1 << 1 // texttype number follows
	TextN    uint8 = 1 << 5 // reference is a number
	TextC    uint8 = 1 << 6 // text reference follows
	TextMask uint8 = TextC | TextN | ElemX | ElemY | ElemR | TextT | ElemL
)

// Placement info-bytes, CNXYRAAF for the quarter-turn form and CNXYRMAF
// for the general form. The AA field holds the number of ninety-degree
// turns; the general form spends those bits on presence flags for the
// magnification and angle reals instead.
const (
	PlacementF     uint8 = 1 << 0 // mirror about the x axis
	PlacementA     uint8 = 1 << 1 // angle real follows (general form)
	PlacementM     uint8 = 1 << 2 // magnification real follows (general form)
	PlacementR     uint8 = 1 << 3 // repetition follows
	PlacementY     uint8 = 1 << 4 // y coordinate follows
	PlacementX     uint8 = 1 << 5 // x coordinate follows
	PlacementN     uint8 = 1 << 6 // reference is a number
	PlacementC     uint8 = 1 << 7 // cell reference follows
	PlacementTurns uint8 = 3 << 1 // quarter-turn count (quarter-turn form)

	// PlacementTurnShift aligns the AA field with bit zero.
	PlacementTurnShift = 1
)

// Property info-byte, UUUUVCNS. U holds the value count, with fifteen
// escaping to an explicit count integer; V reuses the modal value list and
// requires a zero U field.
const (
	PropS uint8 = 1 << 0 // standard property
	PropN uint8 = 1 << 1 // name reference is a number
	PropC uint8 = 1 << 2 // name reference follows
	PropV uint8 = 1 << 3 // reuse the modal value list

	// PropUShift aligns the U field with bit zero.
	PropUShift = 4
	// PropUExplicit is the U value marking an explicit count integer.
	PropUExplicit uint8 = 15
)

// XGeometry info-byte, 000XYRDL.
const XGeometryMask uint8 = ElemX | ElemY | ElemR | ElemD | ElemL

package layout

import (
	"encoding/binary"
	"fmt"
	"math"
	"slices"

	"github.com/arloliu/oasix/compress"
	"github.com/arloliu/oasix/encoding"
	"github.com/arloliu/oasix/errs"
	"github.com/arloliu/oasix/format"
	"github.com/arloliu/oasix/internal/options"
	"github.com/arloliu/oasix/modal"
	"github.com/arloliu/oasix/record"
	"github.com/arloliu/oasix/section"
	"github.com/arloliu/oasix/stream"
)

// Encoder writes one layout file to a sink. Sessions are single use:
// NewEncoder, Begin, any number of record, intern and compressed-block
// calls, then Finish.
//
// The encoder owns the modal state. Records are handed over fully
// resolved; each field is compared against its modal variable and left off
// the wire when they match, and in relative coordinate mode resolved
// coordinates are translated into deltas on the way out. Slices inside a
// record (point lists, repetitions, property values) may be retained for
// those comparisons until the next modal reset, so callers must not mutate
// them mid-session.
//
// Errors are sticky. A failed write can leave a partial record behind,
// after which the bytes on disk and the modal state no longer agree, so
// the session refuses all further work and returns the first error from
// every later call.
type Encoder struct {
	w      *stream.Writer
	state  modal.State
	scheme format.ValidationScheme

	offsetsInEnd bool
	started      bool
	finished     bool
	inBlock      bool
	inCell       bool
	err          error

	startPatches [6]stream.Patch

	cellNames   nameClass
	textStrings nameClass
	propNames   nameClass
	propStrings nameClass
	layerNames  nameClass
	xNames      nameClass
}

// NewEncoder creates an encoding session writing to sink. The default
// configuration validates with CRC32 and stores the table offsets in the
// END record.
func NewEncoder(sink stream.Sink, opts ...EncoderOption) (*Encoder, error) {
	e := &Encoder{
		scheme:       format.SchemeCRC32,
		offsetsInEnd: true,
		cellNames:    newNameClass("CELLNAME"),
		textStrings:  newNameClass("TEXTSTRING"),
		propNames:    newNameClass("PROPNAME"),
		propStrings:  newNameClass("PROPSTRING"),
		layerNames:   newNameClass("LAYERNAME"),
		xNames:       newNameClass("XNAME"),
	}
	if err := options.Apply(e, opts...); err != nil {
		return nil, err
	}
	e.w = stream.NewWriter(sink, e.scheme)

	return e, nil
}

// Offset returns the absolute file offset of the next byte to be written.
// Inside a compressed block it reports the position of the compressed
// output, not of the record stream.
func (e *Encoder) Offset() int64 {
	return e.w.Offset()
}

// Begin writes the magic bytes and the START record. The unit is the
// number of grid steps per micron and must be positive and finite.
//
// When the table offsets live in the START record their bytes are reserved
// here and patched during Finish.
func (e *Encoder) Begin(unit float64) error {
	if e.err != nil {
		return e.err
	}
	if e.started {
		return fmt.Errorf("%w: Begin called twice", errs.ErrSessionState)
	}
	if unit <= 0 || math.IsInf(unit, 0) || math.IsNaN(unit) {
		return fmt.Errorf("%w: %v", errs.ErrInvalidUnit, unit)
	}

	if _, err := e.w.Write([]byte(section.Magic)); err != nil {
		return e.fail(err)
	}
	if err := encoding.PutUint(e.w, uint64(format.RecStart)); err != nil {
		return e.fail(err)
	}
	if err := encoding.PutAString(e.w, section.Version); err != nil {
		return e.fail(err)
	}
	if err := encoding.PutReal(e.w, encoding.FromFloat64(unit)); err != nil {
		return e.fail(err)
	}

	flag := uint64(1)
	if !e.offsetsInEnd {
		flag = 0
	}
	if err := encoding.PutUint(e.w, flag); err != nil {
		return e.fail(err)
	}
	if !e.offsetsInEnd {
		for i := range e.startPatches {
			// Strict-mode flag first; this encoder never promises a
			// contiguous table, so it is always zero and needs no patch.
			if err := encoding.PutUint(e.w, 0); err != nil {
				return e.fail(err)
			}
			p, err := e.w.Reserve(encoding.MaxUintLen64)
			if err != nil {
				return e.fail(err)
			}
			e.startPatches[i] = p
		}
	}

	e.state.Reset()
	e.started = true

	return nil
}

// WriteRecord encodes one record. START, END and CBLOCK records cannot be
// written this way; they are produced by Begin, Finish and the block
// methods.
func (e *Encoder) WriteRecord(rec record.Record) error {
	if err := e.writable(); err != nil {
		return err
	}

	off := e.w.Offset()
	if err := e.emit(rec); err != nil {
		return e.fail(fmt.Errorf("%s record at offset %d: %w", rec.Kind(), off, err))
	}

	return nil
}

// BeginCBlock opens a compressed block with the given method. Records
// written before the matching EndCBlock stage through the method's
// compressor; the block's byte counts are backpatched when it closes.
// Blocks do not nest, and the modal state runs through them unchanged.
func (e *Encoder) BeginCBlock(method format.CompressionType) error {
	if err := e.writable(); err != nil {
		return err
	}
	if e.inBlock {
		return fmt.Errorf("%w: block already open", errs.ErrNestedCBlock)
	}
	codec, err := compress.GetCodec(method)
	if err != nil {
		return err
	}

	if err := putUints(e.w, uint64(format.RecCBlock), uint64(method)); err != nil {
		return e.fail(err)
	}
	if err := e.w.BeginBlock(codec); err != nil {
		return e.fail(err)
	}
	e.inBlock = true

	return nil
}

// EndCBlock closes the open compressed block.
func (e *Encoder) EndCBlock() error {
	if err := e.writable(); err != nil {
		return err
	}
	if !e.inBlock {
		return fmt.Errorf("%w: EndCBlock without BeginCBlock", errs.ErrNoCBlock)
	}

	if err := e.w.EndBlock(); err != nil {
		return e.fail(err)
	}
	e.inBlock = false

	return nil
}

// Finish writes the END record, fills any reserved table-offset bytes,
// appends the validation signature and flushes the sink. The END record is
// padded to its fixed size; the session cannot be reused afterwards.
func (e *Encoder) Finish() error {
	if err := e.writable(); err != nil {
		return err
	}
	if e.inBlock {
		return fmt.Errorf("%w: Finish with an open compressed block", errs.ErrNestedCBlock)
	}

	firsts := [6]uint64{
		uint64(e.cellNames.first),
		uint64(e.textStrings.first),
		uint64(e.propNames.first),
		uint64(e.propStrings.first),
		uint64(e.layerNames.first),
		uint64(e.xNames.first),
	}
	if !e.offsetsInEnd {
		for i := range e.startPatches {
			if err := e.startPatches[i].Fill(firsts[i]); err != nil {
				return e.fail(err)
			}
		}
	}

	endStart := e.w.Offset()
	if err := encoding.PutUint(e.w, uint64(format.RecEnd)); err != nil {
		return e.fail(err)
	}
	if e.offsetsInEnd {
		offsets := section.TableOffsets{
			CellName:   section.TableEntry{Offset: firsts[0]},
			TextString: section.TableEntry{Offset: firsts[1]},
			PropName:   section.TableEntry{Offset: firsts[2]},
			PropString: section.TableEntry{Offset: firsts[3]},
			LayerName:  section.TableEntry{Offset: firsts[4]},
			XName:      section.TableEntry{Offset: firsts[5]},
		}
		if err := section.PutTableOffsets(e.w, &offsets); err != nil {
			return e.fail(err)
		}
	}

	sigLen := 0
	if e.scheme != format.SchemeNone {
		sigLen = section.SignatureSize
	}
	avail := section.EndRecordSize - int(e.w.Offset()-endStart) - 1 - sigLen
	if err := section.PutPadding(e.w, avail); err != nil {
		return e.fail(err)
	}
	if err := encoding.PutUint(e.w, uint64(e.scheme)); err != nil {
		return e.fail(err)
	}

	sig, ok, err := e.w.Signature()
	if err != nil {
		return e.fail(err)
	}
	if ok {
		var raw [section.SignatureSize]byte
		binary.LittleEndian.PutUint32(raw[:], sig)
		if err := e.w.WriteRaw(raw[:]); err != nil {
			return e.fail(err)
		}
	}
	if err := e.w.Flush(); err != nil {
		return e.fail(err)
	}
	e.finished = true

	return e.w.Close()
}

// Close releases the writer's buffers. Closing before Finish abandons the
// file without an END record; closing twice is harmless.
func (e *Encoder) Close() error {
	return e.w.Close()
}

func (e *Encoder) fail(err error) error {
	if e.err == nil {
		e.err = err
	}

	return e.err
}

func (e *Encoder) writable() error {
	if e.err != nil {
		return e.err
	}
	if !e.started {
		return fmt.Errorf("%w: Begin has not been called", errs.ErrSessionState)
	}
	if e.finished {
		return fmt.Errorf("%w: session already finished", errs.ErrSessionState)
	}

	return nil
}

func (e *Encoder) emit(rec record.Record) error {
	switch r := rec.(type) {
	case *record.Pad:
		return encoding.PutUint(e.w, uint64(format.RecPad))
	case *record.Start, *record.End:
		return fmt.Errorf("%w: written by Begin and Finish", errs.ErrMisplacedRecord)
	case *record.CellName:
		return e.emitName(&e.cellNames, format.RecCellName, r.Name, r.Number, r.Explicit, encoding.PutNString)
	case *record.TextString:
		return e.emitName(&e.textStrings, format.RecTextString, r.Text, r.Number, r.Explicit, encoding.PutAString)
	case *record.PropName:
		return e.emitName(&e.propNames, format.RecPropName, r.Name, r.Number, r.Explicit, encoding.PutNString)
	case *record.PropString:
		return e.emitName(&e.propStrings, format.RecPropString, r.Value, r.Number, r.Explicit, putBStringValue)
	case *record.LayerName:
		return e.emitLayerName(r)
	case *record.Cell:
		return e.emitCell(r)
	case *record.XYAbsolute:
		e.state.XYMode = modal.Absolute
		return encoding.PutUint(e.w, uint64(format.RecXYAbsolute))
	case *record.XYRelative:
		e.state.XYMode = modal.Relative
		return encoding.PutUint(e.w, uint64(format.RecXYRelative))
	case *record.Placement:
		return e.emitPlacement(r)
	case *record.Text:
		return e.emitText(r)
	case *record.Rectangle:
		return e.emitRectangle(r)
	case *record.Polygon:
		return e.emitPolygon(r)
	case *record.Path:
		return e.emitPath(r)
	case *record.Trapezoid:
		return e.emitTrapezoid(r)
	case *record.CTrapezoid:
		return e.emitCTrapezoid(r)
	case *record.Circle:
		return e.emitCircle(r)
	case *record.Property:
		return e.emitProperty(r)
	case *record.XName:
		return e.emitXName(r)
	case *record.XElement:
		return e.emitXElement(r)
	case *record.XGeometry:
		return e.emitXGeometry(r)
	default:
		return fmt.Errorf("%w: unsupported record %T", errs.ErrInvalidRecord, rec)
	}
}

// emitName writes one of the four paired name records. The explicit tag of
// each pair is the implicit tag plus one.
func (e *Encoder) emitName(c *nameClass, tag format.RecordType, name string, num uint64, explicit bool, put func(encoding.Writer, string) error) error {
	if explicit {
		if err := c.addExplicit(name, num); err != nil {
			return err
		}
		tag++
	} else if _, err := c.addImplicit(name); err != nil {
		return err
	}

	if !e.inBlock {
		c.markFirst(e.w.Offset())
	}
	if err := encoding.PutUint(e.w, uint64(tag)); err != nil {
		return err
	}
	if err := put(e.w, name); err != nil {
		return err
	}
	if explicit {
		if err := encoding.PutUint(e.w, num); err != nil {
			return err
		}
	}
	e.state.Reset()

	return nil
}

func (e *Encoder) emitLayerName(r *record.LayerName) error {
	if !e.inBlock {
		e.layerNames.markFirst(e.w.Offset())
	}
	if err := encoding.PutUint(e.w, uint64(r.Kind())); err != nil {
		return err
	}
	if err := encoding.PutNString(e.w, r.Name); err != nil {
		return err
	}
	if err := encoding.PutInterval(e.w, r.Layers); err != nil {
		return err
	}

	return encoding.PutInterval(e.w, r.Types)
}

func (e *Encoder) emitXName(r *record.XName) error {
	tag := format.RecXName
	if r.Explicit {
		if err := e.xNames.addExplicit(r.Name, r.Number); err != nil {
			return err
		}
		tag = format.RecXNameNum
	} else if _, err := e.xNames.addImplicit(r.Name); err != nil {
		return err
	}

	if !e.inBlock {
		e.xNames.markFirst(e.w.Offset())
	}
	if err := putUints(e.w, uint64(tag), r.Attribute); err != nil {
		return err
	}
	if err := encoding.PutBString(e.w, []byte(r.Name)); err != nil {
		return err
	}
	if r.Explicit {
		return encoding.PutUint(e.w, r.Number)
	}

	return nil
}

func (e *Encoder) emitCell(r *record.Cell) error {
	if r.Ref.ByName {
		if err := encoding.PutUint(e.w, uint64(format.RecCellString)); err != nil {
			return err
		}
		if err := encoding.PutNString(e.w, r.Ref.Name); err != nil {
			return err
		}
	} else if err := putUints(e.w, uint64(format.RecCellRef), r.Ref.Number); err != nil {
		return err
	}
	e.state.Reset()
	e.inCell = true

	return nil
}

func (e *Encoder) emitPlacement(r *record.Placement) error {
	if !e.inCell {
		return errMisplacedElement
	}

	kind := r.Kind()
	var info uint8
	if r.Flip {
		info |= record.PlacementF
	}
	if kind == format.RecPlacement {
		turns, _ := record.QuarterTurns(r.Angle)
		info |= turns << record.PlacementTurnShift
	} else {
		if r.Mag != 1 {
			info |= record.PlacementM
		}
		if r.Angle != 0 {
			info |= record.PlacementA
		}
	}

	writeRef := refField(&e.state.PlacementCell, r.Cell)
	if writeRef {
		info |= record.PlacementC
		if !r.Cell.ByName {
			info |= record.PlacementN
		}
	}
	x, writeX := e.xyField(&e.state.PlacementX, r.X)
	if writeX {
		info |= record.PlacementX
	}
	y, writeY := e.xyField(&e.state.PlacementY, r.Y)
	if writeY {
		info |= record.PlacementY
	}
	rep, err := e.repField(r.Rep)
	if err != nil {
		return err
	}
	if rep != nil {
		info |= record.PlacementR
	}

	if err := putTagInfo(e.w, kind, info); err != nil {
		return err
	}
	if writeRef {
		if err := putRef(e.w, r.Cell, encoding.PutNString); err != nil {
			return err
		}
	}
	if kind == format.RecPlacementMag {
		if info&record.PlacementM != 0 {
			if err := encoding.PutReal(e.w, encoding.FromFloat64(r.Mag)); err != nil {
				return err
			}
		}
		if info&record.PlacementA != 0 {
			if err := encoding.PutReal(e.w, encoding.FromFloat64(r.Angle)); err != nil {
				return err
			}
		}
	}
	if err := putXY(e.w, x, writeX, y, writeY); err != nil {
		return err
	}

	return putRep(e.w, rep)
}

func (e *Encoder) emitText(r *record.Text) error {
	if !e.inCell {
		return errMisplacedElement
	}

	var info uint8
	writeRef := refField(&e.state.TextString, r.Ref)
	if writeRef {
		info |= record.TextC
		if !r.Ref.ByName {
			info |= record.TextN
		}
	}
	if uintField(&e.state.TextLayer, r.Layer) {
		info |= record.ElemL
	}
	if uintField(&e.state.TextType, r.Type) {
		info |= record.TextT
	}
	x, writeX := e.xyField(&e.state.TextX, r.X)
	if writeX {
		info |= record.ElemX
	}
	y, writeY := e.xyField(&e.state.TextY, r.Y)
	if writeY {
		info |= record.ElemY
	}
	rep, err := e.repField(r.Rep)
	if err != nil {
		return err
	}
	if rep != nil {
		info |= record.ElemR
	}

	if err := putTagInfo(e.w, format.RecText, info); err != nil {
		return err
	}
	if writeRef {
		if err := putRef(e.w, r.Ref, encoding.PutAString); err != nil {
			return err
		}
	}
	if info&record.ElemL != 0 {
		if err := encoding.PutUint(e.w, r.Layer); err != nil {
			return err
		}
	}
	if info&record.TextT != 0 {
		if err := encoding.PutUint(e.w, r.Type); err != nil {
			return err
		}
	}
	if err := putXY(e.w, x, writeX, y, writeY); err != nil {
		return err
	}

	return putRep(e.w, rep)
}

func (e *Encoder) emitRectangle(r *record.Rectangle) error {
	if !e.inCell {
		return errMisplacedElement
	}

	info := e.layerBits(r.Layer, r.Datatype)
	square := r.Width == r.Height
	if square {
		info |= record.RectS
	}
	if uintField(&e.state.GeometryW, r.Width) {
		info |= record.RectW
	}
	if square {
		// The height tracks the width; the H bit stays clear.
		e.state.GeometryH.Set(r.Height)
	} else if uintField(&e.state.GeometryH, r.Height) {
		info |= record.RectH
	}
	x, writeX := e.xyField(&e.state.GeometryX, r.X)
	if writeX {
		info |= record.ElemX
	}
	y, writeY := e.xyField(&e.state.GeometryY, r.Y)
	if writeY {
		info |= record.ElemY
	}
	rep, err := e.repField(r.Rep)
	if err != nil {
		return err
	}
	if rep != nil {
		info |= record.ElemR
	}

	if err := putTagInfo(e.w, format.RecRectangle, info); err != nil {
		return err
	}
	if err := e.putLayerFields(info, r.Layer, r.Datatype); err != nil {
		return err
	}
	if info&record.RectW != 0 {
		if err := encoding.PutUint(e.w, r.Width); err != nil {
			return err
		}
	}
	if info&record.RectH != 0 {
		if err := encoding.PutUint(e.w, r.Height); err != nil {
			return err
		}
	}
	if err := putXY(e.w, x, writeX, y, writeY); err != nil {
		return err
	}

	return putRep(e.w, rep)
}

func (e *Encoder) emitPolygon(r *record.Polygon) error {
	if !e.inCell {
		return errMisplacedElement
	}

	info := e.layerBits(r.Layer, r.Datatype)
	writePoints, err := pointsField(&e.state.PolygonPoints, &r.Points)
	if err != nil {
		return err
	}
	if writePoints {
		info |= record.PolygonP
	}
	x, writeX := e.xyField(&e.state.GeometryX, r.X)
	if writeX {
		info |= record.ElemX
	}
	y, writeY := e.xyField(&e.state.GeometryY, r.Y)
	if writeY {
		info |= record.ElemY
	}
	rep, err := e.repField(r.Rep)
	if err != nil {
		return err
	}
	if rep != nil {
		info |= record.ElemR
	}

	if err := putTagInfo(e.w, format.RecPolygon, info); err != nil {
		return err
	}
	if err := e.putLayerFields(info, r.Layer, r.Datatype); err != nil {
		return err
	}
	if writePoints {
		if err := encoding.PutPointList(e.w, &r.Points); err != nil {
			return err
		}
	}
	if err := putXY(e.w, x, writeX, y, writeY); err != nil {
		return err
	}

	return putRep(e.w, rep)
}

func (e *Encoder) emitPath(r *record.Path) error {
	if !e.inCell {
		return errMisplacedElement
	}

	info := e.layerBits(r.Layer, r.Datatype)
	if uintField(&e.state.PathHalfwidth, r.Halfwidth) {
		info |= record.PathW
	}
	startScheme := extScheme(&e.state.PathStartExt, r.StartExt, r.Halfwidth)
	endScheme := extScheme(&e.state.PathEndExt, r.EndExt, r.Halfwidth)
	if startScheme != record.ExtModal || endScheme != record.ExtModal {
		info |= record.PathE
	}
	writePoints, err := pointsField(&e.state.PathPoints, &r.Points)
	if err != nil {
		return err
	}
	if writePoints {
		info |= record.PathP
	}
	x, writeX := e.xyField(&e.state.GeometryX, r.X)
	if writeX {
		info |= record.ElemX
	}
	y, writeY := e.xyField(&e.state.GeometryY, r.Y)
	if writeY {
		info |= record.ElemY
	}
	rep, err := e.repField(r.Rep)
	if err != nil {
		return err
	}
	if rep != nil {
		info |= record.ElemR
	}

	if err := putTagInfo(e.w, format.RecPath, info); err != nil {
		return err
	}
	if err := e.putLayerFields(info, r.Layer, r.Datatype); err != nil {
		return err
	}
	if info&record.PathW != 0 {
		if err := encoding.PutUint(e.w, r.Halfwidth); err != nil {
			return err
		}
	}
	if info&record.PathE != 0 {
		scheme := uint64(startScheme)<<2 | uint64(endScheme)
		if err := encoding.PutUint(e.w, scheme); err != nil {
			return err
		}
		if startScheme == record.ExtExplicit {
			if err := encoding.PutInt(e.w, r.StartExt); err != nil {
				return err
			}
		}
		if endScheme == record.ExtExplicit {
			if err := encoding.PutInt(e.w, r.EndExt); err != nil {
				return err
			}
		}
	}
	if writePoints {
		if err := encoding.PutPointList(e.w, &r.Points); err != nil {
			return err
		}
	}
	if err := putXY(e.w, x, writeX, y, writeY); err != nil {
		return err
	}

	return putRep(e.w, rep)
}

func (e *Encoder) emitTrapezoid(r *record.Trapezoid) error {
	if !e.inCell {
		return errMisplacedElement
	}

	kind := r.Kind()
	info := e.layerBits(r.Layer, r.Datatype)
	if r.Vertical {
		info |= record.TrapO
	}
	if uintField(&e.state.GeometryW, r.Width) {
		info |= record.TrapW
	}
	if uintField(&e.state.GeometryH, r.Height) {
		info |= record.TrapH
	}
	x, writeX := e.xyField(&e.state.GeometryX, r.X)
	if writeX {
		info |= record.ElemX
	}
	y, writeY := e.xyField(&e.state.GeometryY, r.Y)
	if writeY {
		info |= record.ElemY
	}
	rep, err := e.repField(r.Rep)
	if err != nil {
		return err
	}
	if rep != nil {
		info |= record.ElemR
	}

	if err := putTagInfo(e.w, kind, info); err != nil {
		return err
	}
	if err := e.putLayerFields(info, r.Layer, r.Datatype); err != nil {
		return err
	}
	if info&record.TrapW != 0 {
		if err := encoding.PutUint(e.w, r.Width); err != nil {
			return err
		}
	}
	if info&record.TrapH != 0 {
		if err := encoding.PutUint(e.w, r.Height); err != nil {
			return err
		}
	}
	if kind != format.RecTrapezoidB {
		if err := encoding.PutInt(e.w, r.DeltaA); err != nil {
			return err
		}
	}
	if kind != format.RecTrapezoidA {
		if err := encoding.PutInt(e.w, r.DeltaB); err != nil {
			return err
		}
	}
	if err := putXY(e.w, x, writeX, y, writeY); err != nil {
		return err
	}

	return putRep(e.w, rep)
}

func (e *Encoder) emitCTrapezoid(r *record.CTrapezoid) error {
	if !e.inCell {
		return errMisplacedElement
	}
	if r.Shape > format.MaxCTrapezoidKind {
		return fmt.Errorf("%w: ctrapezoid shape %d out of range", errs.ErrInvalidRecord, r.Shape)
	}

	info := e.layerBits(r.Layer, r.Datatype)
	if uintField(&e.state.CTrapShape, r.Shape) {
		info |= record.CTrapT
	}
	if uintField(&e.state.GeometryW, r.Width) {
		info |= record.CTrapW
	}
	if uintField(&e.state.GeometryH, r.Height) {
		info |= record.CTrapH
	}
	x, writeX := e.xyField(&e.state.GeometryX, r.X)
	if writeX {
		info |= record.ElemX
	}
	y, writeY := e.xyField(&e.state.GeometryY, r.Y)
	if writeY {
		info |= record.ElemY
	}
	rep, err := e.repField(r.Rep)
	if err != nil {
		return err
	}
	if rep != nil {
		info |= record.ElemR
	}

	if err := putTagInfo(e.w, format.RecCTrapezoid, info); err != nil {
		return err
	}
	if err := e.putLayerFields(info, r.Layer, r.Datatype); err != nil {
		return err
	}
	if info&record.CTrapT != 0 {
		if err := encoding.PutUint(e.w, r.Shape); err != nil {
			return err
		}
	}
	if info&record.CTrapW != 0 {
		if err := encoding.PutUint(e.w, r.Width); err != nil {
			return err
		}
	}
	if info&record.CTrapH != 0 {
		if err := encoding.PutUint(e.w, r.Height); err != nil {
			return err
		}
	}
	if err := putXY(e.w, x, writeX, y, writeY); err != nil {
		return err
	}

	return putRep(e.w, rep)
}

func (e *Encoder) emitCircle(r *record.Circle) error {
	if !e.inCell {
		return errMisplacedElement
	}

	info := e.layerBits(r.Layer, r.Datatype)
	if uintField(&e.state.CircleRadius, r.Radius) {
		info |= record.CircleR
	}
	x, writeX := e.xyField(&e.state.GeometryX, r.X)
	if writeX {
		info |= record.ElemX
	}
	y, writeY := e.xyField(&e.state.GeometryY, r.Y)
	if writeY {
		info |= record.ElemY
	}
	rep, err := e.repField(r.Rep)
	if err != nil {
		return err
	}
	if rep != nil {
		info |= record.ElemR
	}

	if err := putTagInfo(e.w, format.RecCircle, info); err != nil {
		return err
	}
	if err := e.putLayerFields(info, r.Layer, r.Datatype); err != nil {
		return err
	}
	if info&record.CircleR != 0 {
		if err := encoding.PutUint(e.w, r.Radius); err != nil {
			return err
		}
	}
	if err := putXY(e.w, x, writeX, y, writeY); err != nil {
		return err
	}

	return putRep(e.w, rep)
}

func (e *Encoder) emitProperty(r *record.Property) error {
	// The one-byte repeat form applies when the name, the value list and
	// the standard flag all match their modals.
	prevName, okName := e.state.PropName.Get()
	prevVals, okVals := e.state.PropValues.Get()
	prevStd, okStd := e.state.PropStandard.Get()
	if okName && okVals && okStd &&
		prevName.Equal(r.Name) && slices.Equal(prevVals, r.Values) && prevStd == r.Standard {
		return encoding.PutUint(e.w, uint64(format.RecPropertyLast))
	}

	var info uint8
	if r.Standard {
		info |= record.PropS
	}
	e.state.PropStandard.Set(r.Standard)

	writeName := refField(&e.state.PropName, r.Name)
	if writeName {
		info |= record.PropC
		if !r.Name.ByName {
			info |= record.PropN
		}
	}

	writeVals := true
	if okVals && slices.Equal(prevVals, r.Values) {
		writeVals = false
		info |= record.PropV
	} else {
		e.state.PropValues.Set(r.Values)
	}
	count := uint64(len(r.Values))
	if writeVals {
		if count >= uint64(record.PropUExplicit) {
			info |= record.PropUExplicit << record.PropUShift
		} else {
			info |= uint8(count) << record.PropUShift
		}
	}

	if err := putTagInfo(e.w, format.RecProperty, info); err != nil {
		return err
	}
	if writeName {
		if err := putRef(e.w, r.Name, encoding.PutNString); err != nil {
			return err
		}
	}
	if writeVals {
		if count >= uint64(record.PropUExplicit) {
			if err := encoding.PutUint(e.w, count); err != nil {
				return err
			}
		}
		for i := range r.Values {
			if err := encoding.PutPropValue(e.w, &r.Values[i]); err != nil {
				return err
			}
		}
	}

	return nil
}

func (e *Encoder) emitXElement(r *record.XElement) error {
	if !e.inCell {
		return errMisplacedElement
	}
	if err := putUints(e.w, uint64(format.RecXElement), r.Attribute); err != nil {
		return err
	}

	return encoding.PutBString(e.w, r.Data)
}

func (e *Encoder) emitXGeometry(r *record.XGeometry) error {
	if !e.inCell {
		return errMisplacedElement
	}

	info := e.layerBits(r.Layer, r.Datatype)
	x, writeX := e.xyField(&e.state.GeometryX, r.X)
	if writeX {
		info |= record.ElemX
	}
	y, writeY := e.xyField(&e.state.GeometryY, r.Y)
	if writeY {
		info |= record.ElemY
	}
	rep, err := e.repField(r.Rep)
	if err != nil {
		return err
	}
	if rep != nil {
		info |= record.ElemR
	}

	if err := putTagInfo(e.w, format.RecXGeometry, info); err != nil {
		return err
	}
	if err := encoding.PutUint(e.w, r.Attribute); err != nil {
		return err
	}
	if err := encoding.PutBString(e.w, r.Data); err != nil {
		return err
	}
	if err := e.putLayerFields(info, r.Layer, r.Datatype); err != nil {
		return err
	}
	if err := putXY(e.w, x, writeX, y, writeY); err != nil {
		return err
	}

	return putRep(e.w, rep)
}

// layerBits compares layer and datatype against their modals and returns
// the L and D info bits.
func (e *Encoder) layerBits(layer, datatype uint64) uint8 {
	var info uint8
	if uintField(&e.state.Layer, layer) {
		info |= record.ElemL
	}
	if uintField(&e.state.Datatype, datatype) {
		info |= record.ElemD
	}

	return info
}

// putLayerFields writes the layer and datatype integers selected by the
// info bits.
func (e *Encoder) putLayerFields(info uint8, layer, datatype uint64) error {
	if info&record.ElemL != 0 {
		if err := encoding.PutUint(e.w, layer); err != nil {
			return err
		}
	}
	if info&record.ElemD != 0 {
		if err := encoding.PutUint(e.w, datatype); err != nil {
			return err
		}
	}

	return nil
}

// xyField resolves the wire value for a coordinate against its modal
// variable: values equal to the modal are omitted, and in relative mode
// the wire carries the difference from the previous value.
func (e *Encoder) xyField(m *int64, v int64) (int64, bool) {
	if v == *m {
		return 0, false
	}
	wire := v
	if e.state.XYMode == modal.Relative {
		wire = v - *m
	}
	*m = v

	return wire, true
}

// repField validates and registers a repetition. It returns the form to
// write: nil keeps the R bit clear, and the type-0 form stands in when the
// repetition matches the modal one.
func (e *Encoder) repField(rep *encoding.Repetition) (*encoding.Repetition, error) {
	if rep == nil {
		return nil, nil
	}
	if rep.Type == format.RepPrevious {
		return nil, fmt.Errorf("%w: repetition type 0 is a wire form, pass the resolved repetition", errs.ErrInvalidRecord)
	}
	if prev, ok := e.state.Repetition.Get(); ok && prev.Equal(rep) {
		return &reusedRepetition, nil
	}
	if err := rep.Validate(); err != nil {
		return nil, err
	}
	e.state.Repetition.Set(*rep)

	return rep, nil
}

var reusedRepetition = encoding.Repetition{Type: format.RepPrevious}

// uintField compares v to the modal slot: matching values are omitted,
// anything else is written and becomes the new modal value.
func uintField(s *modal.Slot[uint64], v uint64) bool {
	if prev, ok := s.Get(); ok && prev == v {
		return false
	}
	s.Set(v)

	return true
}

func refField(s *modal.Slot[format.NameRef], v format.NameRef) bool {
	if prev, ok := s.Get(); ok && prev.Equal(v) {
		return false
	}
	s.Set(v)

	return true
}

func pointsField(s *modal.Slot[encoding.PointList], pl *encoding.PointList) (bool, error) {
	if prev, ok := s.Get(); ok && prev.Equal(pl) {
		return false, nil
	}
	if err := pl.Validate(); err != nil {
		return false, err
	}
	s.Set(*pl)

	return true, nil
}

// extScheme picks the wire form for one path end extension and updates its
// modal variable.
func extScheme(s *modal.Slot[int64], ext int64, halfwidth uint64) uint8 {
	if prev, ok := s.Get(); ok && prev == ext {
		return record.ExtModal
	}
	s.Set(ext)
	switch {
	case ext == 0:
		return record.ExtFlush
	case ext > 0 && uint64(ext) == halfwidth:
		return record.ExtHalfwidth
	default:
		return record.ExtExplicit
	}
}

func putTagInfo(w encoding.Writer, tag format.RecordType, info uint8) error {
	if err := encoding.PutUint(w, uint64(tag)); err != nil {
		return err
	}

	return w.WriteByte(info)
}

func putRef(w encoding.Writer, ref format.NameRef, put func(encoding.Writer, string) error) error {
	if ref.ByName {
		return put(w, ref.Name)
	}

	return encoding.PutUint(w, ref.Number)
}

func putXY(w encoding.Writer, x int64, writeX bool, y int64, writeY bool) error {
	if writeX {
		if err := encoding.PutInt(w, x); err != nil {
			return err
		}
	}
	if writeY {
		return encoding.PutInt(w, y)
	}

	return nil
}

func putRep(w encoding.Writer, rep *encoding.Repetition) error {
	if rep == nil {
		return nil
	}

	return encoding.PutRepetition(w, rep)
}

func putUints(w encoding.Writer, vs ...uint64) error {
	for _, v := range vs {
		if err := encoding.PutUint(w, v); err != nil {
			return err
		}
	}

	return nil
}

var errMisplacedElement = fmt.Errorf("%w: element record outside a cell", errs.ErrMisplacedRecord)

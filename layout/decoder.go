package layout

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"iter"
	"math"

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

// Decoder reads one layout file and yields fully resolved records in file
// order. Construction consumes and checks the magic bytes; Next then
// returns records until io.EOF after the END record.
//
// Modal substitution happens before a record is returned: omitted fields
// are filled from the modal state, relative coordinates are accumulated
// into absolute ones, and implicit name records receive their file-order
// reference numbers. Compressed blocks are entered transparently and never
// appear in the record sequence.
//
// Structural errors are sticky: after the first failure every call returns
// the same error. A clean io.EOF after END is not an error and is never
// retained.
type Decoder struct {
	r        *stream.Reader
	state    modal.State
	validate bool

	started      bool
	ended        bool
	inCell       bool
	offsetsInEnd bool
	haveOffsets  bool
	offsets      section.TableOffsets
	err          error

	cellNames   nameTable
	textStrings nameTable
	propNames   nameTable
	propStrings nameTable
	xNames      nameTable
}

// NewDecoder creates a decoding session and consumes the magic bytes.
func NewDecoder(src io.Reader, opts ...DecoderOption) (*Decoder, error) {
	d := &Decoder{
		validate:    true,
		cellNames:   nameTable{label: "CELLNAME"},
		textStrings: nameTable{label: "TEXTSTRING"},
		propNames:   nameTable{label: "PROPNAME"},
		propStrings: nameTable{label: "PROPSTRING"},
		xNames:      nameTable{label: "XNAME"},
	}
	if err := options.Apply(d, opts...); err != nil {
		return nil, err
	}
	d.r = stream.NewReader(src, d.validate)

	// The magic bytes count toward the validation signature, so they go
	// through the validated read path.
	var magic [section.MagicSize]byte
	if _, err := io.ReadFull(d.r, magic[:]); err != nil {
		_ = d.r.Close()
		return nil, fmt.Errorf("failed to read magic bytes: %w", err)
	}
	if string(magic[:]) != section.Magic {
		_ = d.r.Close()
		return nil, fmt.Errorf("%w: %q", errs.ErrInvalidMagic, magic[:])
	}

	return d, nil
}

// Next returns the next record. It returns io.EOF once the END record has
// been consumed.
func (d *Decoder) Next() (record.Record, error) {
	if d.err != nil {
		return nil, d.err
	}
	if d.ended {
		return nil, io.EOF
	}

	for {
		rec, err := d.next()
		if err != nil {
			return nil, d.fail(err)
		}
		if rec != nil {
			return rec, nil
		}
		// A compressed block was entered; its first record follows.
	}
}

// Records returns an iterator over the remaining records. Iteration ends
// after the END record; a structural failure yields a nil record with the
// error, then stops.
func (d *Decoder) Records() iter.Seq2[record.Record, error] {
	return func(yield func(record.Record, error) bool) {
		for {
			rec, err := d.Next()
			if errors.Is(err, io.EOF) {
				return
			}
			if !yield(rec, err) || err != nil {
				return
			}
		}
	}
}

// TableOffsets returns the table-offsets structure once the record
// carrying it has been decoded: after the first Next call when it lives in
// the START record, after the last when it lives in the END record.
func (d *Decoder) TableOffsets() (section.TableOffsets, bool) {
	return d.offsets, d.haveOffsets
}

// Offset returns the number of uncompressed stream bytes consumed so far.
func (d *Decoder) Offset() int64 {
	return d.r.Offset()
}

// Close releases the reader's buffers. It never reads ahead, so closing
// early is the way to abandon a partially decoded file.
func (d *Decoder) Close() error {
	return d.r.Close()
}

func (d *Decoder) fail(err error) error {
	if d.err == nil {
		d.err = err
	}

	return d.err
}

// next decodes one wire record. It returns a nil record after entering a
// compressed block, since the block tag itself carries no content.
func (d *Decoder) next() (record.Record, error) {
	off := d.r.Offset()
	t, err := d.readTag()
	if err != nil {
		if errors.Is(err, io.EOF) {
			if d.started {
				return nil, fmt.Errorf("%w: input ended at offset %d", errs.ErrMissingEnd, off)
			}

			return nil, fmt.Errorf("%w: no records after magic", io.ErrUnexpectedEOF)
		}

		return nil, err
	}
	if t > uint64(format.MaxRecordType) {
		return nil, fmt.Errorf("%w: tag %d at offset %d", errs.ErrInvalidRecordType, t, off)
	}
	tag := format.RecordType(t)

	if !d.started && tag != format.RecStart {
		return nil, fmt.Errorf("%w: %s before START", errs.ErrMisplacedRecord, tag)
	}

	var rec record.Record
	switch tag {
	case format.RecPad:
		rec = &record.Pad{}
	case format.RecStart:
		if d.started {
			return nil, fmt.Errorf("%w: duplicate START at offset %d", errs.ErrMisplacedRecord, off)
		}
		rec, err = d.readStart()
	case format.RecEnd:
		if d.r.InBlock() {
			return nil, fmt.Errorf("%w: END inside a compressed block", errs.ErrMisplacedRecord)
		}
		rec, err = d.readEnd(off)
	case format.RecCBlock:
		if d.r.InBlock() {
			return nil, fmt.Errorf("%w: at offset %d", errs.ErrNestedCBlock, off)
		}
		err = d.enterBlock()
	case format.RecCellName, format.RecCellNameNum:
		rec, err = d.readCellName(tag == format.RecCellNameNum)
	case format.RecTextString, format.RecTextStringNum:
		rec, err = d.readTextString(tag == format.RecTextStringNum)
	case format.RecPropName, format.RecPropNameNum:
		rec, err = d.readPropName(tag == format.RecPropNameNum)
	case format.RecPropString, format.RecPropStringNum:
		rec, err = d.readPropString(tag == format.RecPropStringNum)
	case format.RecLayerName, format.RecLayerNameText:
		rec, err = d.readLayerName(tag == format.RecLayerNameText)
	case format.RecCellRef, format.RecCellString:
		rec, err = d.readCell(tag == format.RecCellString)
	case format.RecXYAbsolute:
		d.state.XYMode = modal.Absolute
		rec = &record.XYAbsolute{}
	case format.RecXYRelative:
		d.state.XYMode = modal.Relative
		rec = &record.XYRelative{}
	case format.RecPlacement, format.RecPlacementMag:
		rec, err = d.readPlacement(tag == format.RecPlacementMag)
	case format.RecText:
		rec, err = d.readText()
	case format.RecRectangle:
		rec, err = d.readRectangle()
	case format.RecPolygon:
		rec, err = d.readPolygon()
	case format.RecPath:
		rec, err = d.readPath()
	case format.RecTrapezoid, format.RecTrapezoidA, format.RecTrapezoidB:
		rec, err = d.readTrapezoid(tag)
	case format.RecCTrapezoid:
		rec, err = d.readCTrapezoid()
	case format.RecCircle:
		rec, err = d.readCircle()
	case format.RecProperty, format.RecPropertyLast:
		rec, err = d.readProperty(tag == format.RecPropertyLast)
	case format.RecXName, format.RecXNameNum:
		rec, err = d.readXName(tag == format.RecXNameNum)
	case format.RecXElement:
		rec, err = d.readXElement()
	case format.RecXGeometry:
		rec, err = d.readXGeometry()
	}
	if err != nil {
		return nil, fmt.Errorf("%s record at offset %d: %w", tag, off, err)
	}

	return rec, nil
}

// readTag reads a record-type integer. The first byte is read directly so
// that a clean end of input surfaces as io.EOF rather than an unexpected
// one. Every defined tag fits in a single byte, so a continuation bit
// marks the tag invalid without consuming further bytes.
func (d *Decoder) readTag() (uint64, error) {
	b, err := d.r.ReadByte()
	if err != nil {
		return 0, err
	}
	if b&0x80 != 0 {
		return 0, fmt.Errorf("%w: multi-byte tag %#02x", errs.ErrInvalidRecordType, b)
	}

	return uint64(b), nil
}

func (d *Decoder) readStart() (record.Record, error) {
	version, err := encoding.AString(d.r)
	if err != nil {
		return nil, err
	}
	if version != section.Version {
		return nil, fmt.Errorf("%w: %q", errs.ErrInvalidVersion, version)
	}
	unit, err := encoding.ReadReal(d.r)
	if err != nil {
		return nil, err
	}
	if v := unit.Float64(); v <= 0 || math.IsInf(v, 0) || math.IsNaN(v) {
		return nil, fmt.Errorf("%w: %v", errs.ErrInvalidUnit, v)
	}
	flag, err := encoding.Uint(d.r)
	if err != nil {
		return nil, err
	}
	if flag > 1 {
		return nil, fmt.Errorf("%w: table-offset flag %d", errs.ErrInvalidRecord, flag)
	}
	d.offsetsInEnd = flag != 0
	if !d.offsetsInEnd {
		to, err := section.ReadTableOffsets(d.r)
		if err != nil {
			return nil, err
		}
		d.offsets = to
		d.haveOffsets = true
	}

	d.state.Reset()
	d.started = true

	return &record.Start{Version: version, Unit: unit, OffsetsInEnd: d.offsetsInEnd}, nil
}

// readEnd decodes the END record, enforces its fixed size, verifies the
// validation signature and confirms that no bytes follow. start is the
// file offset of the record's tag byte.
func (d *Decoder) readEnd(start int64) (record.Record, error) {
	if d.offsetsInEnd {
		to, err := section.ReadTableOffsets(d.r)
		if err != nil {
			return nil, err
		}
		d.offsets = to
		d.haveOffsets = true
	}

	remain := section.EndRecordSize - int(d.r.Offset()-start)
	if err := section.ReadPadding(d.r, remain); err != nil {
		return nil, err
	}

	sv, err := encoding.Uint(d.r)
	if err != nil {
		return nil, err
	}
	if sv > uint64(format.SchemeChecksum32) {
		return nil, fmt.Errorf("%w: %d", errs.ErrInvalidScheme, sv)
	}
	scheme := format.ValidationScheme(sv)

	var stored uint32
	if scheme != format.SchemeNone {
		var raw [section.SignatureSize]byte
		if err := d.r.ReadRaw(raw[:]); err != nil {
			return nil, err
		}
		stored = binary.LittleEndian.Uint32(raw[:])
	}

	if size := d.r.Offset() - start; size != section.EndRecordSize {
		return nil, fmt.Errorf("%w: %d bytes instead of %d", errs.ErrInvalidEndRecord, size, section.EndRecordSize)
	}
	if scheme != format.SchemeNone {
		if want, ok := d.r.Signature(scheme); ok && want != stored {
			return nil, fmt.Errorf("%w: computed %#08x, stored %#08x", errs.ErrValidationFailed, want, stored)
		}
	}
	if _, err := d.r.ReadByte(); err == nil {
		return nil, errs.ErrTrailingData
	} else if !errors.Is(err, io.EOF) {
		return nil, err
	}
	d.ended = true

	return &record.End{Scheme: scheme, Signature: stored}, nil
}

func (d *Decoder) enterBlock() error {
	mv, err := encoding.Uint(d.r)
	if err != nil {
		return err
	}
	if mv > math.MaxUint8 {
		return fmt.Errorf("%w: method %d", errs.ErrUnknownCompression, mv)
	}
	codec, err := compress.GetCodec(format.CompressionType(mv))
	if err != nil {
		return err
	}
	uncomp, err := encoding.Uint(d.r)
	if err != nil {
		return err
	}
	comp, err := encoding.Uint(d.r)
	if err != nil {
		return err
	}

	return d.r.EnterBlock(codec, uncomp, comp)
}

func (d *Decoder) readCellName(explicit bool) (record.Record, error) {
	name, err := encoding.NString(d.r)
	if err != nil {
		return nil, err
	}
	num, err := d.number(&d.cellNames, explicit)
	if err != nil {
		return nil, err
	}
	d.state.Reset()

	return &record.CellName{Name: name, Number: num, Explicit: explicit}, nil
}

func (d *Decoder) readTextString(explicit bool) (record.Record, error) {
	text, err := encoding.AString(d.r)
	if err != nil {
		return nil, err
	}
	num, err := d.number(&d.textStrings, explicit)
	if err != nil {
		return nil, err
	}
	d.state.Reset()

	return &record.TextString{Text: text, Number: num, Explicit: explicit}, nil
}

func (d *Decoder) readPropName(explicit bool) (record.Record, error) {
	name, err := encoding.NString(d.r)
	if err != nil {
		return nil, err
	}
	num, err := d.number(&d.propNames, explicit)
	if err != nil {
		return nil, err
	}
	d.state.Reset()

	return &record.PropName{Name: name, Number: num, Explicit: explicit}, nil
}

func (d *Decoder) readPropString(explicit bool) (record.Record, error) {
	value, err := encoding.BString(d.r)
	if err != nil {
		return nil, err
	}
	num, err := d.number(&d.propStrings, explicit)
	if err != nil {
		return nil, err
	}
	d.state.Reset()

	return &record.PropString{Value: string(value), Number: num, Explicit: explicit}, nil
}

// number assigns or claims the reference number of one name record.
func (d *Decoder) number(t *nameTable, explicit bool) (uint64, error) {
	if !explicit {
		return t.assignImplicit()
	}
	num, err := encoding.Uint(d.r)
	if err != nil {
		return 0, err
	}

	return num, t.claimExplicit(num)
}

func (d *Decoder) readLayerName(textMapping bool) (record.Record, error) {
	name, err := encoding.NString(d.r)
	if err != nil {
		return nil, err
	}
	layers, err := encoding.ReadInterval(d.r)
	if err != nil {
		return nil, err
	}
	types, err := encoding.ReadInterval(d.r)
	if err != nil {
		return nil, err
	}

	return &record.LayerName{TextMapping: textMapping, Name: name, Layers: layers, Types: types}, nil
}

func (d *Decoder) readCell(byName bool) (record.Record, error) {
	var ref format.NameRef
	if byName {
		name, err := encoding.NString(d.r)
		if err != nil {
			return nil, err
		}
		ref = format.RefByName(name)
	} else {
		num, err := encoding.Uint(d.r)
		if err != nil {
			return nil, err
		}
		ref = format.RefByNumber(num)
	}

	d.state.Reset()
	d.inCell = true

	return &record.Cell{Ref: ref}, nil
}

func (d *Decoder) readPlacement(magForm bool) (record.Record, error) {
	if !d.inCell {
		return nil, errMisplacedElement
	}
	info, err := d.r.ReadByte()
	if err != nil {
		return nil, err
	}

	ref, err := d.refModal(&d.state.PlacementCell, info&record.PlacementC != 0, info&record.PlacementN != 0,
		"placement-cell", encoding.NString)
	if err != nil {
		return nil, err
	}

	mag, angle := 1.0, 0.0
	if magForm {
		if info&record.PlacementM != 0 {
			r, err := encoding.ReadReal(d.r)
			if err != nil {
				return nil, err
			}
			mag = r.Float64()
		}
		if info&record.PlacementA != 0 {
			r, err := encoding.ReadReal(d.r)
			if err != nil {
				return nil, err
			}
			angle = r.Float64()
		}
	} else {
		angle = float64((info&record.PlacementTurns)>>record.PlacementTurnShift) * 90
	}

	x, err := d.xyModal(&d.state.PlacementX, info&record.PlacementX != 0)
	if err != nil {
		return nil, err
	}
	y, err := d.xyModal(&d.state.PlacementY, info&record.PlacementY != 0)
	if err != nil {
		return nil, err
	}
	rep, err := d.repModal(info&record.PlacementR != 0)
	if err != nil {
		return nil, err
	}

	return &record.Placement{
		Cell:  ref,
		X:     x,
		Y:     y,
		Mag:   mag,
		Angle: angle,
		Flip:  info&record.PlacementF != 0,
		Rep:   rep,
	}, nil
}

func (d *Decoder) readText() (record.Record, error) {
	if !d.inCell {
		return nil, errMisplacedElement
	}
	info, err := d.infoByte(record.TextMask)
	if err != nil {
		return nil, err
	}

	ref, err := d.refModal(&d.state.TextString, info&record.TextC != 0, info&record.TextN != 0,
		"text-string", encoding.AString)
	if err != nil {
		return nil, err
	}
	layer, err := d.uintModal(&d.state.TextLayer, info&record.ElemL != 0, "textlayer")
	if err != nil {
		return nil, err
	}
	typ, err := d.uintModal(&d.state.TextType, info&record.TextT != 0, "texttype")
	if err != nil {
		return nil, err
	}
	x, err := d.xyModal(&d.state.TextX, info&record.ElemX != 0)
	if err != nil {
		return nil, err
	}
	y, err := d.xyModal(&d.state.TextY, info&record.ElemY != 0)
	if err != nil {
		return nil, err
	}
	rep, err := d.repModal(info&record.ElemR != 0)
	if err != nil {
		return nil, err
	}

	return &record.Text{Ref: ref, Layer: layer, Type: typ, X: x, Y: y, Rep: rep}, nil
}

func (d *Decoder) readRectangle() (record.Record, error) {
	if !d.inCell {
		return nil, errMisplacedElement
	}
	info, err := d.r.ReadByte()
	if err != nil {
		return nil, err
	}
	if info&record.RectS != 0 && info&record.RectH != 0 {
		return nil, fmt.Errorf("%w: square with an explicit height", errs.ErrInvalidInfoByte)
	}

	layer, datatype, err := d.layerModal(info)
	if err != nil {
		return nil, err
	}
	width, err := d.uintModal(&d.state.GeometryW, info&record.RectW != 0, "geometry-w")
	if err != nil {
		return nil, err
	}
	var height uint64
	if info&record.RectS != 0 {
		height = width
		d.state.GeometryH.Set(height)
	} else if height, err = d.uintModal(&d.state.GeometryH, info&record.RectH != 0, "geometry-h"); err != nil {
		return nil, err
	}
	x, y, rep, err := d.trailerModal(info)
	if err != nil {
		return nil, err
	}

	return &record.Rectangle{
		Layer:    layer,
		Datatype: datatype,
		Width:    width,
		Height:   height,
		X:        x,
		Y:        y,
		Rep:      rep,
	}, nil
}

func (d *Decoder) readPolygon() (record.Record, error) {
	if !d.inCell {
		return nil, errMisplacedElement
	}
	info, err := d.infoByte(record.PolygonMask)
	if err != nil {
		return nil, err
	}

	layer, datatype, err := d.layerModal(info)
	if err != nil {
		return nil, err
	}
	points, err := d.pointsModal(&d.state.PolygonPoints, info&record.PolygonP != 0, "polygon-point-list")
	if err != nil {
		return nil, err
	}
	x, y, rep, err := d.trailerModal(info)
	if err != nil {
		return nil, err
	}

	return &record.Polygon{Layer: layer, Datatype: datatype, Points: points, X: x, Y: y, Rep: rep}, nil
}

func (d *Decoder) readPath() (record.Record, error) {
	if !d.inCell {
		return nil, errMisplacedElement
	}
	info, err := d.r.ReadByte()
	if err != nil {
		return nil, err
	}

	layer, datatype, err := d.layerModal(info)
	if err != nil {
		return nil, err
	}
	halfwidth, err := d.uintModal(&d.state.PathHalfwidth, info&record.PathW != 0, "path-halfwidth")
	if err != nil {
		return nil, err
	}

	var startExt, endExt int64
	if info&record.PathE != 0 {
		scheme, err := encoding.Uint(d.r)
		if err != nil {
			return nil, err
		}
		if scheme > 15 {
			return nil, fmt.Errorf("%w: extension scheme %d", errs.ErrInvalidRecord, scheme)
		}
		if startExt, err = d.extModal(&d.state.PathStartExt, uint8(scheme>>2)&3, halfwidth, "path-start-extension"); err != nil {
			return nil, err
		}
		if endExt, err = d.extModal(&d.state.PathEndExt, uint8(scheme)&3, halfwidth, "path-end-extension"); err != nil {
			return nil, err
		}
	} else {
		if startExt, err = modal.Value(&d.state.PathStartExt, "path-start-extension"); err != nil {
			return nil, err
		}
		if endExt, err = modal.Value(&d.state.PathEndExt, "path-end-extension"); err != nil {
			return nil, err
		}
	}

	points, err := d.pointsModal(&d.state.PathPoints, info&record.PathP != 0, "path-point-list")
	if err != nil {
		return nil, err
	}
	x, y, rep, err := d.trailerModal(info)
	if err != nil {
		return nil, err
	}

	return &record.Path{
		Layer:     layer,
		Datatype:  datatype,
		Halfwidth: halfwidth,
		StartExt:  startExt,
		EndExt:    endExt,
		Points:    points,
		X:         x,
		Y:         y,
		Rep:       rep,
	}, nil
}

func (d *Decoder) readTrapezoid(tag format.RecordType) (record.Record, error) {
	if !d.inCell {
		return nil, errMisplacedElement
	}
	info, err := d.r.ReadByte()
	if err != nil {
		return nil, err
	}

	layer, datatype, err := d.layerModal(info)
	if err != nil {
		return nil, err
	}
	width, err := d.uintModal(&d.state.GeometryW, info&record.TrapW != 0, "geometry-w")
	if err != nil {
		return nil, err
	}
	height, err := d.uintModal(&d.state.GeometryH, info&record.TrapH != 0, "geometry-h")
	if err != nil {
		return nil, err
	}

	var deltaA, deltaB int64
	if tag != format.RecTrapezoidB {
		if deltaA, err = encoding.Int(d.r); err != nil {
			return nil, err
		}
	}
	if tag != format.RecTrapezoidA {
		if deltaB, err = encoding.Int(d.r); err != nil {
			return nil, err
		}
	}

	x, y, rep, err := d.trailerModal(info)
	if err != nil {
		return nil, err
	}

	return &record.Trapezoid{
		Layer:    layer,
		Datatype: datatype,
		Vertical: info&record.TrapO != 0,
		Width:    width,
		Height:   height,
		DeltaA:   deltaA,
		DeltaB:   deltaB,
		X:        x,
		Y:        y,
		Rep:      rep,
	}, nil
}

func (d *Decoder) readCTrapezoid() (record.Record, error) {
	if !d.inCell {
		return nil, errMisplacedElement
	}
	info, err := d.r.ReadByte()
	if err != nil {
		return nil, err
	}

	layer, datatype, err := d.layerModal(info)
	if err != nil {
		return nil, err
	}
	var shape uint64
	if info&record.CTrapT != 0 {
		if shape, err = encoding.Uint(d.r); err != nil {
			return nil, err
		}
		if shape > format.MaxCTrapezoidKind {
			return nil, fmt.Errorf("%w: ctrapezoid shape %d out of range", errs.ErrInvalidRecord, shape)
		}
		d.state.CTrapShape.Set(shape)
	} else if shape, err = modal.Value(&d.state.CTrapShape, "ctrapezoid-shape"); err != nil {
		return nil, err
	}
	width, err := d.uintModal(&d.state.GeometryW, info&record.CTrapW != 0, "geometry-w")
	if err != nil {
		return nil, err
	}
	height, err := d.uintModal(&d.state.GeometryH, info&record.CTrapH != 0, "geometry-h")
	if err != nil {
		return nil, err
	}
	x, y, rep, err := d.trailerModal(info)
	if err != nil {
		return nil, err
	}

	return &record.CTrapezoid{
		Layer:    layer,
		Datatype: datatype,
		Shape:    shape,
		Width:    width,
		Height:   height,
		X:        x,
		Y:        y,
		Rep:      rep,
	}, nil
}

func (d *Decoder) readCircle() (record.Record, error) {
	if !d.inCell {
		return nil, errMisplacedElement
	}
	info, err := d.infoByte(record.CircleMask)
	if err != nil {
		return nil, err
	}

	layer, datatype, err := d.layerModal(info)
	if err != nil {
		return nil, err
	}
	radius, err := d.uintModal(&d.state.CircleRadius, info&record.CircleR != 0, "circle-radius")
	if err != nil {
		return nil, err
	}
	x, y, rep, err := d.trailerModal(info)
	if err != nil {
		return nil, err
	}

	return &record.Circle{Layer: layer, Datatype: datatype, Radius: radius, X: x, Y: y, Rep: rep}, nil
}

func (d *Decoder) readProperty(repeat bool) (record.Record, error) {
	if repeat {
		name, err := modal.Value(&d.state.PropName, "property-name")
		if err != nil {
			return nil, err
		}
		values, err := modal.Value(&d.state.PropValues, "property-value-list")
		if err != nil {
			return nil, err
		}
		standard, err := modal.Value(&d.state.PropStandard, "property-standard")
		if err != nil {
			return nil, err
		}

		return &record.Property{Name: name, Values: values, Standard: standard}, nil
	}

	info, err := d.r.ReadByte()
	if err != nil {
		return nil, err
	}
	standard := info&record.PropS != 0
	d.state.PropStandard.Set(standard)

	name, err := d.refModal(&d.state.PropName, info&record.PropC != 0, info&record.PropN != 0,
		"property-name", encoding.NString)
	if err != nil {
		return nil, err
	}

	count := uint64(info >> record.PropUShift)
	var values []encoding.PropValue
	if info&record.PropV != 0 {
		if count != 0 {
			return nil, fmt.Errorf("%w: value-count bits with the reuse bit set", errs.ErrInvalidInfoByte)
		}
		if values, err = modal.Value(&d.state.PropValues, "property-value-list"); err != nil {
			return nil, err
		}
	} else {
		if count == uint64(record.PropUExplicit) {
			if count, err = encoding.Uint(d.r); err != nil {
				return nil, err
			}
			if count > format.MaxListLength {
				return nil, fmt.Errorf("%w: value count %d exceeds %d", errs.ErrLimitExceeded, count, format.MaxListLength)
			}
		}
		values = make([]encoding.PropValue, count)
		for i := range values {
			if values[i], err = encoding.ReadPropValue(d.r); err != nil {
				return nil, err
			}
		}
		d.state.PropValues.Set(values)
	}

	return &record.Property{Name: name, Values: values, Standard: standard}, nil
}

func (d *Decoder) readXName(explicit bool) (record.Record, error) {
	attr, err := encoding.Uint(d.r)
	if err != nil {
		return nil, err
	}
	name, err := encoding.BString(d.r)
	if err != nil {
		return nil, err
	}
	num, err := d.number(&d.xNames, explicit)
	if err != nil {
		return nil, err
	}

	return &record.XName{Attribute: attr, Name: string(name), Number: num, Explicit: explicit}, nil
}

func (d *Decoder) readXElement() (record.Record, error) {
	if !d.inCell {
		return nil, errMisplacedElement
	}
	attr, err := encoding.Uint(d.r)
	if err != nil {
		return nil, err
	}
	data, err := encoding.BString(d.r)
	if err != nil {
		return nil, err
	}

	return &record.XElement{Attribute: attr, Data: data}, nil
}

func (d *Decoder) readXGeometry() (record.Record, error) {
	if !d.inCell {
		return nil, errMisplacedElement
	}
	info, err := d.infoByte(record.XGeometryMask)
	if err != nil {
		return nil, err
	}
	attr, err := encoding.Uint(d.r)
	if err != nil {
		return nil, err
	}
	data, err := encoding.BString(d.r)
	if err != nil {
		return nil, err
	}
	layer, datatype, err := d.layerModal(info)
	if err != nil {
		return nil, err
	}
	x, y, rep, err := d.trailerModal(info)
	if err != nil {
		return nil, err
	}

	return &record.XGeometry{
		Attribute: attr,
		Data:      data,
		Layer:     layer,
		Datatype:  datatype,
		X:         x,
		Y:         y,
		Rep:       rep,
	}, nil
}

// infoByte reads an info byte whose bits outside mask must be zero.
func (d *Decoder) infoByte(mask uint8) (uint8, error) {
	info, err := d.r.ReadByte()
	if err != nil {
		return 0, err
	}
	if info&^mask != 0 {
		return 0, fmt.Errorf("%w: reserved bits in %#02x", errs.ErrInvalidInfoByte, info)
	}

	return info, nil
}

// layerModal resolves the layer and datatype fields from the L and D info
// bits.
func (d *Decoder) layerModal(info uint8) (layer, datatype uint64, err error) {
	if layer, err = d.uintModal(&d.state.Layer, info&record.ElemL != 0, "layer"); err != nil {
		return 0, 0, err
	}
	if datatype, err = d.uintModal(&d.state.Datatype, info&record.ElemD != 0, "datatype"); err != nil {
		return 0, 0, err
	}

	return layer, datatype, nil
}

// trailerModal resolves the common geometry trailer: x, y and repetition.
func (d *Decoder) trailerModal(info uint8) (x, y int64, rep *encoding.Repetition, err error) {
	if x, err = d.xyModal(&d.state.GeometryX, info&record.ElemX != 0); err != nil {
		return 0, 0, nil, err
	}
	if y, err = d.xyModal(&d.state.GeometryY, info&record.ElemY != 0); err != nil {
		return 0, 0, nil, err
	}
	if rep, err = d.repModal(info&record.ElemR != 0); err != nil {
		return 0, 0, nil, err
	}

	return x, y, rep, nil
}

func (d *Decoder) uintModal(s *modal.Slot[uint64], present bool, name string) (uint64, error) {
	if !present {
		return modal.Value(s, name)
	}
	v, err := encoding.Uint(d.r)
	if err != nil {
		return 0, err
	}
	s.Set(v)

	return v, nil
}

// xyModal resolves one coordinate. An explicit value replaces the modal
// coordinate in absolute mode and advances it in relative mode; omission
// reuses it in both modes.
func (d *Decoder) xyModal(m *int64, present bool) (int64, error) {
	if present {
		v, err := encoding.Int(d.r)
		if err != nil {
			return 0, err
		}
		if d.state.XYMode == modal.Relative {
			*m += v
		} else {
			*m = v
		}
	}

	return *m, nil
}

func (d *Decoder) repModal(present bool) (*encoding.Repetition, error) {
	if !present {
		return nil, nil
	}
	rep, err := encoding.ReadRepetition(d.r)
	if err != nil {
		return nil, err
	}
	if rep.Type == format.RepPrevious {
		prev, err := modal.Value(&d.state.Repetition, "repetition")
		if err != nil {
			return nil, err
		}

		return &prev, nil
	}
	d.state.Repetition.Set(rep)

	return &rep, nil
}

func (d *Decoder) pointsModal(s *modal.Slot[encoding.PointList], present bool, name string) (encoding.PointList, error) {
	if !present {
		return modal.Value(s, name)
	}
	pl, err := encoding.ReadPointList(d.r)
	if err != nil {
		return encoding.PointList{}, err
	}
	s.Set(pl)

	return pl, nil
}

// refModal reads a name reference that may be inline, numbered, or omitted
// in favor of the modal value. The numbered bit without the explicit bit
// is malformed.
func (d *Decoder) refModal(s *modal.Slot[format.NameRef], explicit, numbered bool, name string,
	read func(encoding.Reader) (string, error),
) (format.NameRef, error) {
	if !explicit {
		if numbered {
			return format.NameRef{}, fmt.Errorf("%w: reference-number bit without a reference", errs.ErrInvalidInfoByte)
		}

		return modal.Value(s, name)
	}

	var ref format.NameRef
	if numbered {
		n, err := encoding.Uint(d.r)
		if err != nil {
			return format.NameRef{}, err
		}
		ref = format.RefByNumber(n)
	} else {
		str, err := read(d.r)
		if err != nil {
			return format.NameRef{}, err
		}
		ref = format.RefByName(str)
	}
	s.Set(ref)

	return ref, nil
}

func (d *Decoder) extModal(s *modal.Slot[int64], form uint8, halfwidth uint64, name string) (int64, error) {
	switch form {
	case record.ExtModal:
		return modal.Value(s, name)
	case record.ExtFlush:
		s.Set(0)
		return 0, nil
	case record.ExtHalfwidth:
		if halfwidth > math.MaxInt64 {
			return 0, fmt.Errorf("%w: halfwidth %d overflows a path extension", errs.ErrInvalidRecord, halfwidth)
		}
		v := int64(halfwidth)
		s.Set(v)
		return v, nil
	default: // record.ExtExplicit
		v, err := encoding.Int(d.r)
		if err != nil {
			return 0, err
		}
		s.Set(v)
		return v, nil
	}
}

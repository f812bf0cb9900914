package layout

import (
	"fmt"

	"github.com/arloliu/oasix/encoding"
	"github.com/arloliu/oasix/errs"
	"github.com/arloliu/oasix/format"
	"github.com/arloliu/oasix/internal/collision"
	"github.com/arloliu/oasix/internal/hash"
)

// numberingMode is the reference-number style a name class has committed
// to. The format forbids mixing implicitly and explicitly numbered records
// within one class, so the first record of a class fixes its mode.
type numberingMode uint8

const (
	numberingUnset numberingMode = iota
	numberingImplicit
	numberingExplicit
)

// nameClass is the encode-side state of one name-record class: its
// numbering mode, the names and numbers already written, and the file
// offset of the first record for the table-offsets structure.
//
// Implicit numbering assigns dense indexes in first-write order, which is
// exactly what the collision tracker produces; its hash map keeps interning
// cheap for large name sets while the exact-string fallback keeps it
// correct when two names collide.
type nameClass struct {
	label   string
	mode    numberingMode
	tracker *collision.Tracker
	names   map[string]struct{}
	numbers map[uint64]struct{}
	first   int64
}

func newNameClass(label string) nameClass {
	return nameClass{label: label, tracker: collision.NewTracker()}
}

// intern returns the reference number for name, assigning the next free
// number and reporting isNew the first time each distinct name is seen.
func (c *nameClass) intern(name string) (num uint64, isNew bool, err error) {
	if c.mode == numberingExplicit {
		return 0, false, fmt.Errorf("%w: cannot intern %s %q into an explicitly numbered class",
			errs.ErrNameNumbering, c.label, name)
	}
	c.mode = numberingImplicit

	id := hash.NameKey(name)
	if idx, ok := c.tracker.Index(name, id); ok {
		return uint64(idx), false, nil
	}

	return uint64(c.tracker.Track(name, id)), true, nil
}

// addImplicit registers a directly written implicit name record and
// returns its assigned reference number. Unlike intern, writing the same
// name twice is an error: the record would enter the table twice.
func (c *nameClass) addImplicit(name string) (uint64, error) {
	if c.mode == numberingExplicit {
		return 0, fmt.Errorf("%w: implicit %s record in an explicitly numbered class",
			errs.ErrNameNumbering, c.label)
	}
	c.mode = numberingImplicit

	id := hash.NameKey(name)
	if _, ok := c.tracker.Index(name, id); ok {
		return 0, fmt.Errorf("%w: %s %q", errs.ErrDuplicateName, c.label, name)
	}

	return uint64(c.tracker.Track(name, id)), nil
}

// addExplicit registers a name record that carries its own reference
// number. Both the name and the number must be fresh.
func (c *nameClass) addExplicit(name string, num uint64) error {
	switch c.mode {
	case numberingImplicit:
		return fmt.Errorf("%w: explicit %s record in an implicitly numbered class",
			errs.ErrNameNumbering, c.label)
	case numberingUnset:
		c.mode = numberingExplicit
		c.names = make(map[string]struct{})
		c.numbers = make(map[uint64]struct{})
	case numberingExplicit:
	}

	if _, ok := c.names[name]; ok {
		return fmt.Errorf("%w: %s %q", errs.ErrDuplicateName, c.label, name)
	}
	if _, ok := c.numbers[num]; ok {
		return fmt.Errorf("%w: %s number %d", errs.ErrDuplicateName, c.label, num)
	}
	c.names[name] = struct{}{}
	c.numbers[num] = struct{}{}

	return nil
}

// markFirst records the file offset of the first record of the class.
// Records inside compressed blocks have no stable offset and are never
// passed here.
func (c *nameClass) markFirst(off int64) {
	if c.first == 0 {
		c.first = off
	}
}

// nameTable is the decode-side numbering state of one name class. Only
// what legality requires is kept: the mode, the next implicit number, and
// the explicit numbers already claimed. Resolving numbers back to names is
// left to the caller, since a conformant file may place name records after
// the records that reference them.
type nameTable struct {
	label string
	mode  numberingMode
	next  uint64
	taken map[uint64]struct{}
}

// assignImplicit hands out the next file-order reference number.
func (t *nameTable) assignImplicit() (uint64, error) {
	if t.mode == numberingExplicit {
		return 0, fmt.Errorf("%w: implicit %s record in an explicitly numbered class",
			errs.ErrNameNumbering, t.label)
	}
	t.mode = numberingImplicit

	n := t.next
	t.next++

	return n, nil
}

// claimExplicit records an explicitly carried reference number, rejecting
// reuse.
func (t *nameTable) claimExplicit(num uint64) error {
	switch t.mode {
	case numberingImplicit:
		return fmt.Errorf("%w: explicit %s record in an implicitly numbered class",
			errs.ErrNameNumbering, t.label)
	case numberingUnset:
		t.mode = numberingExplicit
		t.taken = make(map[uint64]struct{})
	case numberingExplicit:
	}

	if _, ok := t.taken[num]; ok {
		return fmt.Errorf("%w: %s number %d", errs.ErrDuplicateName, t.label, num)
	}
	t.taken[num] = struct{}{}

	return nil
}

// InternCellName returns a numbered reference to name, writing its
// CELLNAME record the first time each distinct name is seen. Interned
// classes use implicit numbering, so mixing interning with explicitly
// numbered records of the same class is an error.
func (e *Encoder) InternCellName(name string) (format.NameRef, error) {
	return e.intern(&e.cellNames, format.RecCellName, name, encoding.PutNString)
}

// InternTextString returns a numbered reference to text, writing its
// TEXTSTRING record on first sight.
func (e *Encoder) InternTextString(text string) (format.NameRef, error) {
	return e.intern(&e.textStrings, format.RecTextString, text, encoding.PutAString)
}

// InternPropName returns a numbered reference to name, writing its
// PROPNAME record on first sight.
func (e *Encoder) InternPropName(name string) (format.NameRef, error) {
	return e.intern(&e.propNames, format.RecPropName, name, encoding.PutNString)
}

// InternPropString returns a numbered reference to value, writing its
// PROPSTRING record on first sight. The reference is meant for the
// string-reference property value types.
func (e *Encoder) InternPropString(value string) (format.NameRef, error) {
	return e.intern(&e.propStrings, format.RecPropString, value, putBStringValue)
}

func putBStringValue(w encoding.Writer, s string) error {
	return encoding.PutBString(w, []byte(s))
}

func (e *Encoder) intern(c *nameClass, tag format.RecordType, name string, put func(encoding.Writer, string) error) (format.NameRef, error) {
	if err := e.writable(); err != nil {
		return format.NameRef{}, err
	}

	num, isNew, err := c.intern(name)
	if err != nil {
		// Nothing was written; the session stays usable.
		return format.NameRef{}, err
	}
	if !isNew {
		return format.RefByNumber(num), nil
	}

	off := e.w.Offset()
	if !e.inBlock {
		c.markFirst(off)
	}
	if err := encoding.PutUint(e.w, uint64(tag)); err != nil {
		return format.NameRef{}, e.fail(fmt.Errorf("%s record at offset %d: %w", tag, off, err))
	}
	if err := put(e.w, name); err != nil {
		return format.NameRef{}, e.fail(fmt.Errorf("%s record at offset %d: %w", tag, off, err))
	}
	e.state.Reset()

	return format.RefByNumber(num), nil
}

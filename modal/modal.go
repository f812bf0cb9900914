// Package modal holds the modal variable set of one reader or writer
// session. Modal variables let consecutive records omit fields that repeat:
// a record that leaves a field out inherits the value the previous record
// established, and a record that spells a field out redefines it.
//
// The zero State is the post-reset state the format defines: every slot
// undefined, the six coordinate variables defined at zero, and absolute
// xy-mode. Reset restores exactly that, and is triggered by session begin,
// CELL, CELLNAME, TEXTSTRING, PROPNAME and PROPSTRING records only.
package modal

import (
	"fmt"

	"github.com/arloliu/oasix/encoding"
	"github.com/arloliu/oasix/errs"
	"github.com/arloliu/oasix/format"
)

// XYMode selects how explicit coordinates of element records are
// interpreted: as absolute positions or as offsets from the modal value.
type XYMode uint8

const (
	// Absolute interprets explicit coordinates as positions.
	Absolute XYMode = iota
	// Relative interprets explicit coordinates as offsets added to the
	// modal coordinate.
	Relative
)

func (m XYMode) String() string {
	if m == Relative {
		return "relative"
	}

	return "absolute"
}

// Slot is one modal variable: a value plus a defined flag. The zero Slot
// is undefined.
type Slot[T any] struct {
	val T
	ok  bool
}

// Set defines the slot.
func (s *Slot[T]) Set(v T) {
	s.val = v
	s.ok = true
}

// Get returns the value and whether the slot is defined.
func (s *Slot[T]) Get() (T, bool) {
	return s.val, s.ok
}

// Defined reports whether the slot has been set since the last reset.
func (s *Slot[T]) Defined() bool {
	return s.ok
}

// Clear marks the slot undefined.
func (s *Slot[T]) Clear() {
	var zero T
	s.val = zero
	s.ok = false
}

// Value returns the slot value, or ErrModalUndefined naming the variable
// when a record omitted a field no earlier record defined.
func Value[T any](s *Slot[T], name string) (T, error) {
	if v, ok := s.Get(); ok {
		return v, nil
	}

	var zero T

	return zero, fmt.Errorf("%w: %s", errs.ErrModalUndefined, name)
}

// State is the complete modal variable set. The coordinate variables are
// plain fields because they are always defined; everything else is a Slot.
type State struct {
	XYMode XYMode

	PlacementX int64
	PlacementY int64
	TextX      int64
	TextY      int64
	GeometryX  int64
	GeometryY  int64

	Repetition    Slot[encoding.Repetition]
	PlacementCell Slot[format.NameRef]
	Layer         Slot[uint64]
	Datatype      Slot[uint64]
	TextLayer     Slot[uint64]
	TextType      Slot[uint64]
	TextString    Slot[format.NameRef]
	GeometryW     Slot[uint64]
	GeometryH     Slot[uint64]
	PolygonPoints Slot[encoding.PointList]
	PathPoints    Slot[encoding.PointList]
	PathHalfwidth Slot[uint64]
	PathStartExt  Slot[int64]
	PathEndExt    Slot[int64]
	CTrapShape    Slot[uint64]
	CircleRadius  Slot[uint64]

	PropName     Slot[format.NameRef]
	PropValues   Slot[[]encoding.PropValue]
	PropStandard Slot[bool]
}

// NewState returns a freshly reset state.
func NewState() *State {
	return &State{}
}

// Reset returns every slot to undefined and restores the defined post-reset
// values: coordinates at zero, absolute xy-mode.
func (s *State) Reset() {
	*s = State{}
}

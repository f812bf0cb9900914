package encoding

import (
	"fmt"

	"github.com/arloliu/oasix/errs"
	"github.com/arloliu/oasix/format"
)

// PropValue is one value of a PROPERTY record. Exactly one of the payload
// fields is meaningful, selected by Type:
//
//   - the eight real types carry Real, whose form must match Type,
//   - format.PropUnsigned carries Uint,
//   - format.PropSigned carries Int,
//   - the three inline string types carry Str,
//   - the three reference types carry Ref, a PROPSTRING number.
type PropValue struct {
	Type format.PropValueType
	Real Real
	Uint uint64
	Int  int64
	Str  string
	Ref  uint64
}

// PropValueFromReal wraps r as a property value of the matching real type.
func PropValueFromReal(r Real) PropValue {
	return PropValue{Type: format.PropValueType(r.Type), Real: r}
}

// PropValueUint wraps v as an unsigned integer property value.
func PropValueUint(v uint64) PropValue {
	return PropValue{Type: format.PropUnsigned, Uint: v}
}

// PropValueInt wraps v as a signed integer property value.
func PropValueInt(v int64) PropValue {
	return PropValue{Type: format.PropSigned, Int: v}
}

// PropValueAString wraps s as an inline a-string property value.
func PropValueAString(s string) PropValue {
	return PropValue{Type: format.PropAString, Str: s}
}

// PropValueBString wraps b as an inline b-string property value.
func PropValueBString(b []byte) PropValue {
	return PropValue{Type: format.PropBString, Str: string(b)}
}

// PropValueNString wraps s as an inline n-string property value.
func PropValueNString(s string) PropValue {
	return PropValue{Type: format.PropNString, Str: s}
}

// PropValueRef wraps a PROPSTRING reference number, declaring the string
// class the reference stands for.
func PropValueRef(t format.PropValueType, ref uint64) PropValue {
	return PropValue{Type: t, Ref: ref}
}

// PutPropValue writes v as a type byte followed by the payload. Real
// payloads are written without a second form byte.
func PutPropValue(w Writer, v *PropValue) error {
	if v.Type > format.MaxPropValueType {
		return fmt.Errorf("%w: unknown type %d", errs.ErrInvalidPropValue, v.Type)
	}
	if v.Type <= format.PropRealFloat64 {
		if format.PropValueType(v.Real.Type) != v.Type {
			return fmt.Errorf("%w: real form %d under type %d", errs.ErrInvalidPropValue, v.Real.Type, v.Type)
		}
		if err := v.Real.Validate(); err != nil {
			return err
		}
	}
	if err := PutUint(w, uint64(v.Type)); err != nil {
		return err
	}

	switch v.Type {
	case format.PropUnsigned:
		return PutUint(w, v.Uint)
	case format.PropSigned:
		return PutInt(w, v.Int)
	case format.PropAString:
		return PutAString(w, v.Str)
	case format.PropBString:
		return PutBString(w, []byte(v.Str))
	case format.PropNString:
		return PutNString(w, v.Str)
	case format.PropAStringRef, format.PropBStringRef, format.PropNStringRef:
		return PutUint(w, v.Ref)
	default:
		return putRealPayload(w, v.Real)
	}
}

// ReadPropValue reads a property value.
func ReadPropValue(r Reader) (PropValue, error) {
	t, err := Uint(r)
	if err != nil {
		return PropValue{}, err
	}
	if t > uint64(format.MaxPropValueType) {
		return PropValue{}, fmt.Errorf("%w: unknown type %d", errs.ErrInvalidPropValue, t)
	}

	v := PropValue{Type: format.PropValueType(t)}

	switch v.Type {
	case format.PropUnsigned:
		if v.Uint, err = Uint(r); err != nil {
			return PropValue{}, err
		}
	case format.PropSigned:
		if v.Int, err = Int(r); err != nil {
			return PropValue{}, err
		}
	case format.PropAString:
		if v.Str, err = AString(r); err != nil {
			return PropValue{}, err
		}
	case format.PropBString:
		b, err := BString(r)
		if err != nil {
			return PropValue{}, err
		}
		v.Str = string(b)
	case format.PropNString:
		if v.Str, err = NString(r); err != nil {
			return PropValue{}, err
		}
	case format.PropAStringRef, format.PropBStringRef, format.PropNStringRef:
		if v.Ref, err = Uint(r); err != nil {
			return PropValue{}, err
		}
	default:
		if v.Real, err = readRealPayload(r, format.RealType(v.Type)); err != nil {
			return PropValue{}, err
		}
	}

	return v, nil
}

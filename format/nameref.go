package format

import "fmt"

// NameRef identifies a name-table entry, either by its reference number or
// by the literal name string. Records that accept both spellings carry a
// NameRef; which wire form is used follows from ByName.
type NameRef struct {
	ByName bool
	Name   string
	Number uint64
}

// RefByNumber returns a reference-number NameRef.
func RefByNumber(n uint64) NameRef {
	return NameRef{Number: n}
}

// RefByName returns a literal-name NameRef.
func RefByName(name string) NameRef {
	return NameRef{ByName: true, Name: name}
}

// Equal reports whether two references select the same entry through the
// same spelling. Only the field the spelling uses is compared.
func (r NameRef) Equal(o NameRef) bool {
	if r.ByName != o.ByName {
		return false
	}
	if r.ByName {
		return r.Name == o.Name
	}

	return r.Number == o.Number
}

func (r NameRef) String() string {
	if r.ByName {
		return fmt.Sprintf("%q", r.Name)
	}

	return fmt.Sprintf("#%d", r.Number)
}

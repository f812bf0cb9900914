package section

import (
	"fmt"

	"github.com/arloliu/oasix/encoding"
	"github.com/arloliu/oasix/errs"
)

// TableEntry locates one name table. Offset is the absolute file offset of
// the table's first record, zero when the file has none. Strict mirrors
// the wire flag; this codec writes non-strict tables only.
type TableEntry struct {
	Strict bool
	Offset uint64
}

// TableOffsets indexes the six name-record classes in their fixed wire
// order.
type TableOffsets struct {
	CellName   TableEntry
	TextString TableEntry
	PropName   TableEntry
	PropString TableEntry
	LayerName  TableEntry
	XName      TableEntry
}

// entries returns the members in wire order.
func (to *TableOffsets) entries() [6]*TableEntry {
	return [6]*TableEntry{
		&to.CellName, &to.TextString,
		&to.PropName, &to.PropString,
		&to.LayerName, &to.XName,
	}
}

// PutTableOffsets writes the six strict-flag and offset pairs.
func PutTableOffsets(w encoding.Writer, to *TableOffsets) error {
	for _, e := range to.entries() {
		var flag uint64
		if e.Strict {
			flag = 1
		}
		if err := encoding.PutUint(w, flag); err != nil {
			return err
		}
		if err := encoding.PutUint(w, e.Offset); err != nil {
			return err
		}
	}

	return nil
}

// ReadTableOffsets reads the six strict-flag and offset pairs. Flags above
// one are rejected.
func ReadTableOffsets(r encoding.Reader) (TableOffsets, error) {
	var to TableOffsets
	for i, e := range to.entries() {
		flag, err := encoding.Uint(r)
		if err != nil {
			return TableOffsets{}, err
		}
		if flag > 1 {
			return TableOffsets{}, fmt.Errorf("%w: table-offsets strict flag %d in entry %d", errs.ErrInvalidRecord, flag, i)
		}
		e.Strict = flag == 1

		if e.Offset, err = encoding.Uint(r); err != nil {
			return TableOffsets{}, err
		}
	}

	return to, nil
}

// Package section defines the fixed byte regions of a layout file: the
// magic bytes, the table-offsets structure and the END record sizing.
//
// # File Structure
//
// A file is a flat record sequence between two fixed landmarks:
//
//	┌─────────────────────────────────────────────────────────┐
//	│ Magic (13 bytes, fixed literal)                         │
//	├─────────────────────────────────────────────────────────┤
//	│ START record                                            │
//	│  - version a-string ("1.0")                             │
//	│  - unit real (grid steps per micron)                    │
//	│  - offset-flag uint                                     │
//	│  - table-offsets, when offset-flag is zero              │
//	├─────────────────────────────────────────────────────────┤
//	│ Name, cell and element records, plain or wrapped in     │
//	│ CBLOCK compressed spans (variable)                      │
//	├─────────────────────────────────────────────────────────┤
//	│ END record (256 bytes, fixed, tag included)             │
//	│  - table-offsets, when offset-flag is non-zero          │
//	│  - padding b-string sized to make the record exact      │
//	│  - validation scheme uint (0 none, 1 crc32, 2 checksum) │
//	│  - signature (4 bytes little-endian, absent for none)   │
//	└─────────────────────────────────────────────────────────┘
//
// # Table Offsets
//
// The table-offsets structure holds six (strict-flag, byte-offset) pairs
// locating the first CELLNAME, TEXTSTRING, PROPNAME, PROPSTRING, LAYERNAME
// and XNAME record, in that order. An offset of zero means the file
// carries no record of that class. The encoder always emits non-strict
// entries; strict tables impose placement rules this codec does not
// require on read.
//
// # END Sizing
//
// The END record occupies exactly EndRecordSize bytes so that a reader can
// find the validation trailer by seeking from the file end. The padding
// string absorbs whatever the other fields leave over; PutPadding solves
// the one awkward case where the string header itself changes size by
// zero-padding the length integer.
package section

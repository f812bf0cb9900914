// Package layout assembles and disassembles complete layout interchange
// files record by record.
//
// The package sits on top of the byte-level layers: encoding provides the
// primitive wire forms, modal tracks the implicit state shared between
// consecutive records, stream moves validated bytes with compressed-block
// and backpatch support, and section fixes the framing constants. layout
// ties them together behind two session types, Encoder and Decoder, that
// speak in terms of the resolved record structs from the record package.
//
// # Resolved Records
//
// Records cross the API boundary fully resolved: every field carries its
// actual value, never a "reuse the previous one" marker. The Encoder
// compares each field against the modal state and chooses the compact wire
// form automatically; the Decoder performs the inverse substitution before
// a record is returned. Callers never manage modal state themselves.
//
// # Writing
//
//	enc, _ := layout.NewEncoder(sink)
//	_ = enc.Begin(1000) // grid steps per micron
//	ref, _ := enc.InternCellName("TOP")
//	_ = enc.WriteRecord(&record.Cell{Ref: ref})
//	_ = enc.WriteRecord(&record.Rectangle{Layer: 1, Width: 100, Height: 50})
//	_ = enc.Finish()
//
// Any error marks the session failed and is returned again by every later
// call: a half-written record would desynchronize the modal state from the
// bytes already emitted, so there is no partial-success mode.
//
// # Reading
//
//	dec, _ := layout.NewDecoder(src)
//	for rec, err := range dec.Records() {
//		...
//	}
//
// Compressed blocks are transparent on both sides: BeginCBlock/EndCBlock
// bracket them while writing, and the Decoder enters them silently, so a
// CBLOCK never appears in the record sequence.
package layout

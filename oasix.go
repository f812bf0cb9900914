// Package oasix reads and writes the OASIS IC-layout interchange format at
// the record level.
//
// The codec translates between a byte stream and typed records: cells,
// placements, shapes, properties and name tables. It implements the
// format's variable-width integer and real-number encodings, the four
// delta displacement forms, the twelve repetition forms, modal-variable
// field omission, compressed CBLOCK spans with backpatched byte counts,
// and the whole-file CRC32/checksum validation signature. It does not
// interpret geometry; records go in and come out fully resolved, and what
// they mean is the caller's business.
//
// # Basic Usage
//
// Writing a file:
//
//	import "github.com/arloliu/oasix"
//
//	file, _ := os.Create("chip.oas")
//	enc, _ := oasix.NewEncoder(file)
//	enc.Begin(1000) // grid steps per micron
//
//	enc.WriteRecord(&record.Cell{Ref: format.RefByName("TOP")})
//	enc.WriteRecord(&record.Rectangle{Layer: 1, Width: 100, Height: 50})
//
//	enc.Finish() // END record, validation signature, flush
//
// Reading it back:
//
//	dec, _ := oasix.NewDecoder(file)
//	for rec, err := range dec.Records() {
//	    if err != nil {
//	        log.Fatal(err)
//	    }
//	    fmt.Printf("%s\n", rec.Kind())
//	}
//
// Compressed spans and name interning:
//
//	enc.BeginCBlock(format.CompressionDeflate)
//	ref, _ := enc.InternCellName("TOP") // CELLNAME written on first sight
//	enc.WriteRecord(&record.Cell{Ref: ref})
//	// ... bulk of the geometry ...
//	enc.EndCBlock() // byte counts backpatched into the block header
//
// # Package Structure
//
// This package wraps the session constructors in the layout package. The
// encoding package holds the primitive value codecs, record the typed
// record set, stream the buffered I/O with validation, and compress the
// CBLOCK codecs. Use those packages directly for fine-grained control.
package oasix

import (
	"io"

	"github.com/arloliu/oasix/layout"
	"github.com/arloliu/oasix/stream"
)

// NewEncoder creates an encoding session writing to sink. *os.File and
// stream.MemFile both satisfy stream.Sink. The default configuration
// validates with CRC32 and stores the table offsets in the END record.
//
// Call Begin before the first record and Finish after the last one.
func NewEncoder(sink stream.Sink, opts ...layout.EncoderOption) (*layout.Encoder, error) {
	return layout.NewEncoder(sink, opts...)
}

// NewDecoder creates a decoding session over src and consumes the magic
// bytes. Records come back from Next (or Records) fully resolved, with
// modal omissions filled in and compressed blocks entered transparently.
func NewDecoder(src io.Reader, opts ...layout.DecoderOption) (*layout.Decoder, error) {
	return layout.NewDecoder(src, opts...)
}

// NewMemFile creates an empty in-memory sink, useful for building a file
// in memory before handing the bytes elsewhere.
func NewMemFile() *stream.MemFile {
	return stream.NewMemFile()
}

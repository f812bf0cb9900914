// Package encoding implements the primitive wire forms of the layout
// interchange format: variable-width integers, real numbers, packed
// deltas, strings, repetitions, point lists, property values and
// intervals.
//
// Every primitive reads from an encoding.Reader and writes to an
// encoding.Writer, so the same codecs serve plain buffers, files and the
// compressed spans managed by the stream package. Decoders never trust
// length or count fields: everything is bounded by the limits in the
// format package before allocation.
//
// # Unsigned and Signed Integers
//
// Unsigned integers are little-endian base-128: each byte carries seven
// data bits, bit 7 set on every byte except the last.
//
//	Value 330 (0b10_1001010):
//
//	Byte 0: 0xCA  (continuation=1, bits 0-6  = 1001010)
//	Byte 1: 0x02  (continuation=0, bits 7-13 = 0000010)
//
// Signed integers are sign-magnitude. Bit 0 of the first byte is the sign
// (1 = negative), so the first byte holds six magnitude bits and later
// bytes seven.
//
// Decoders accept up to MaxUintLen64 bytes and reject encodings whose
// data bits exceed the target width with ErrMalformedVarint. Redundant
// zero padding is legal; PutPaddedUint exploits this to produce
// fixed-width fields that can be patched after the fact.
//
// # Real Numbers
//
// A real is a form byte followed by a form-specific payload:
//
//	Form | Payload                  | Value
//	-----|--------------------------|------------------
//	0    | unsigned d               | d
//	1    | unsigned d               | -d
//	2    | unsigned d               | 1/d
//	3    | unsigned d               | -1/d
//	4    | unsigned n, unsigned d   | n/d
//	5    | unsigned n, unsigned d   | -n/d
//	6    | 4 bytes, IEEE 754 LE     | float32
//	7    | 8 bytes, IEEE 754 LE     | float64
//
// FromFloat64 picks the shortest form that reproduces a float64
// bit-exactly, so unit grids like 0.001 stay compact without losing
// precision.
//
// # Deltas
//
// Displacements pack a direction and a magnitude into one unsigned
// integer. 2-deltas address the four axis directions in bits 0-1,
// 3-deltas the eight compass directions in bits 0-2. G-deltas choose
// between two forms by bit 0: form one packs a compass direction in bits
// 1-3, form two stores the x magnitude with its sign in bit 1 and appends
// y as a signed integer.
//
// # Composite Primitives
//
// Repetitions, point lists, property values and intervals combine the
// scalar forms. Their decoders resolve wire-side compaction immediately:
// grid multiples are multiplied back, dimension biases removed, interval
// bounds normalized. The structs returned to callers always hold plain
// database units, and the encoders reverse the compaction losslessly.
//
// # Error Handling
//
// Malformed input fails with a sentinel from the errs package wrapped
// with positional detail. Truncation surfaces as io.ErrUnexpectedEOF, so
// callers can distinguish a short file from a corrupt one.
package encoding

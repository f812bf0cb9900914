// Package errs defines the sentinel errors shared across the oasix packages.
//
// Errors returned by the library wrap one of these sentinels, so callers can
// classify failures with errors.Is while still receiving positional context
// (record type, file offset) from the wrapping message.
package errs

import "errors"

// Primitive decoding errors.
var (
	// ErrMalformedVarint indicates a variable-length integer whose
	// continuation bits run past the width of the target type, or whose
	// magnitude does not fit it.
	ErrMalformedVarint = errors.New("malformed variable-length integer")

	// ErrInvalidReal indicates an unknown real-number form tag or a payload
	// that is invalid for its form, such as a zero denominator.
	ErrInvalidReal = errors.New("invalid real number")

	// ErrInvalidString indicates a string whose length or content violates
	// its class: empty name strings, non-printable bytes in printable
	// classes, or a length above the configured limit.
	ErrInvalidString = errors.New("invalid string")

	// ErrInvalidDelta indicates a displacement that cannot be expressed in
	// the requested delta form, or an unknown direction code.
	ErrInvalidDelta = errors.New("invalid delta")

	// ErrInvalidRepetition indicates an unknown repetition type or a
	// repetition whose fields are inconsistent with its type.
	ErrInvalidRepetition = errors.New("invalid repetition")

	// ErrInvalidPointList indicates an unknown point-list type or vertex
	// displacements that violate the declared type.
	ErrInvalidPointList = errors.New("invalid point list")

	// ErrInvalidPropValue indicates an unknown property-value type tag.
	ErrInvalidPropValue = errors.New("invalid property value")

	// ErrInvalidInterval indicates an unknown interval type or a bound pair
	// with lower above upper.
	ErrInvalidInterval = errors.New("invalid interval")

	// ErrLimitExceeded indicates a length or count field above the decoder's
	// configured safety limit.
	ErrLimitExceeded = errors.New("limit exceeded")
)

// File structure errors.
var (
	// ErrInvalidMagic indicates the stream does not begin with the
	// "%SEMI-OASIS\r\n" magic bytes.
	ErrInvalidMagic = errors.New("invalid magic bytes")

	// ErrInvalidRecordType indicates an unknown record type tag.
	ErrInvalidRecordType = errors.New("invalid record type")

	// ErrInvalidInfoByte indicates an info byte with reserved bits set, or a
	// combination of bits the record type forbids.
	ErrInvalidInfoByte = errors.New("invalid info byte")

	// ErrInvalidVersion indicates a START record whose version string is not
	// "1.0".
	ErrInvalidVersion = errors.New("invalid version")

	// ErrInvalidUnit indicates a START record whose unit is not a positive
	// finite value.
	ErrInvalidUnit = errors.New("invalid unit")

	// ErrInvalidEndRecord indicates an END record with the wrong length or
	// an unknown validation scheme.
	ErrInvalidEndRecord = errors.New("invalid end record")

	// ErrMissingEnd indicates the stream finished before an END record.
	ErrMissingEnd = errors.New("missing end record")

	// ErrTrailingData indicates bytes after the END record.
	ErrTrailingData = errors.New("trailing data after end record")

	// ErrMisplacedRecord indicates a record that is not allowed at the
	// current position, such as START appearing twice or END inside a
	// compressed block.
	ErrMisplacedRecord = errors.New("misplaced record")
)

// Modal state errors.
var (
	// ErrModalUndefined indicates a record omitted a field whose modal
	// variable has not been defined since the last reset.
	ErrModalUndefined = errors.New("modal variable undefined")
)

// Name table errors.
var (
	// ErrNameNumbering indicates a name class that mixes implicit and
	// explicit reference-number records in one file.
	ErrNameNumbering = errors.New("mixed implicit and explicit name numbering")

	// ErrDuplicateName indicates two name records of one class carrying the
	// same reference number.
	ErrDuplicateName = errors.New("duplicate name reference number")
)

// Compressed block errors.
var (
	// ErrUnknownCompression indicates a comp-type value with no registered
	// codec.
	ErrUnknownCompression = errors.New("unknown compression method")

	// ErrNestedCBlock indicates a CBLOCK record inside a compressed block.
	ErrNestedCBlock = errors.New("nested compressed block")

	// ErrNoCBlock indicates a block operation while no compressed block is
	// active.
	ErrNoCBlock = errors.New("no compressed block active")

	// ErrCBlockSize indicates a compressed block whose payload does not
	// decompress to exactly the declared byte count.
	ErrCBlockSize = errors.New("compressed block size mismatch")

	// ErrCBlockCorrupt indicates a compressed block whose payload the codec
	// rejected as undecodable.
	ErrCBlockCorrupt = errors.New("compressed block corrupt")
)

// Validation errors.
var (
	// ErrInvalidScheme indicates an unknown validation scheme value.
	ErrInvalidScheme = errors.New("invalid validation scheme")

	// ErrValidationFailed indicates a stored signature that does not match
	// the computed one.
	ErrValidationFailed = errors.New("validation signature mismatch")
)

// Session errors.
var (
	// ErrSessionState indicates an encoder or decoder call that is illegal
	// in the session's current state, such as writing records before Begin
	// or after Finish.
	ErrSessionState = errors.New("invalid session state")

	// ErrInvalidRecord indicates a record whose fields are inconsistent
	// with each other or with its type, detected before any bytes are
	// written.
	ErrInvalidRecord = errors.New("invalid record")
)

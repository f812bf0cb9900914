package layout

import (
	"fmt"

	"github.com/arloliu/oasix/errs"
	"github.com/arloliu/oasix/format"
	"github.com/arloliu/oasix/internal/options"
)

// EncoderOption represents a functional option for configuring an Encoder.
// This is a type alias for the generic Option interface specialized for Encoder.
type EncoderOption = options.Option[*Encoder]

// WithValidation selects the validation scheme recorded in the END record.
// The default is CRC32.
func WithValidation(scheme format.ValidationScheme) EncoderOption {
	return options.New(func(e *Encoder) error {
		switch scheme {
		case format.SchemeNone, format.SchemeCRC32, format.SchemeChecksum32:
			e.scheme = scheme
			return nil
		default:
			return fmt.Errorf("%w: %d", errs.ErrInvalidScheme, scheme)
		}
	})
}

// WithTableOffsetsInStart stores the table-offsets structure inside the
// START record instead of the END record. Its bytes are reserved when
// Begin runs and patched with the final offsets during Finish, so the sink
// must support positioned writes that far back; MemFile and *os.File both
// do. The default stores the structure in the END record.
func WithTableOffsetsInStart() EncoderOption {
	return options.NoError(func(e *Encoder) {
		e.offsetsInEnd = false
	})
}

// DecoderOption represents a functional option for configuring a Decoder.
// This is a type alias for the generic Option interface specialized for Decoder.
type DecoderOption = options.Option[*Decoder]

// WithoutValidation disables signature verification: the stored signature
// is still returned inside the End record, but it is not checked against
// the stream contents, and the decoder skips the checksum bookkeeping
// entirely.
func WithoutValidation() DecoderOption {
	return options.NoError(func(d *Decoder) {
		d.validate = false
	})
}

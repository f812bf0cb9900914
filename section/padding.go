package section

import (
	"fmt"

	"github.com/arloliu/oasix/encoding"
	"github.com/arloliu/oasix/errs"
)

// PutPadding writes a zero-filled b-string occupying exactly avail bytes,
// length header included.
//
// The header is a variable-width integer, so growing the payload by one
// byte can grow the header too and overshoot. Where no minimal encoding
// lands exactly on avail, the header is zero-padded one byte wider; the
// string still decodes normally.
func PutPadding(w encoding.Writer, avail int) error {
	if avail < 1 {
		return fmt.Errorf("%w: END record content exceeds its fixed size by %d bytes", errs.ErrInvalidEndRecord, 1-avail)
	}

	for header := 1; header <= encoding.MaxUintLen64 && header <= avail; header++ {
		payload := avail - header
		if encoding.UintLen(uint64(payload)) > header {
			continue
		}
		if err := encoding.PutPaddedUint(w, uint64(payload), header); err != nil {
			return err
		}
		for range payload {
			if err := w.WriteByte(0); err != nil {
				return err
			}
		}

		return nil
	}

	return fmt.Errorf("%w: no padding string fits %d bytes", errs.ErrInvalidEndRecord, avail)
}

// ReadPadding consumes the padding b-string of an END record. The content
// is ignored; the payload may not exceed remain bytes. Callers enforce the
// record's total size through stream offsets, which also covers padded
// length headers.
func ReadPadding(r encoding.Reader, remain int) error {
	pad, err := encoding.BString(r)
	if err != nil {
		return err
	}
	if len(pad) > remain {
		return fmt.Errorf("%w: padding string of %d bytes exceeds the %d remaining", errs.ErrInvalidEndRecord, len(pad), remain)
	}

	return nil
}

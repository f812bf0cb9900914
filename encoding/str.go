package encoding

import (
	"fmt"

	"github.com/arloliu/oasix/errs"
	"github.com/arloliu/oasix/format"
)

// The three wire string classes share one layout, an unsigned byte count
// followed by the raw bytes, and differ only in the characters they admit:
//
//   - a-string: printable ASCII plus space (0x20..0x7e), any length.
//   - b-string: arbitrary bytes, any length.
//   - n-string: printable ASCII without space (0x21..0x7e), length >= 1.

// PutAString writes s as an a-string.
func PutAString(w Writer, s string) error {
	if err := validateAString(s); err != nil {
		return err
	}

	return putStringBytes(w, s)
}

// PutBString writes b as a b-string.
func PutBString(w Writer, b []byte) error {
	if err := PutUint(w, uint64(len(b))); err != nil {
		return err
	}
	_, err := w.Write(b)

	return err
}

// PutNString writes s as an n-string.
func PutNString(w Writer, s string) error {
	if err := validateNString(s); err != nil {
		return err
	}

	return putStringBytes(w, s)
}

// AString reads an a-string.
func AString(r Reader) (string, error) {
	b, err := readStringBytes(r)
	if err != nil {
		return "", err
	}
	s := string(b)
	if err := validateAString(s); err != nil {
		return "", err
	}

	return s, nil
}

// BString reads a b-string. The returned slice is freshly allocated.
func BString(r Reader) ([]byte, error) {
	return readStringBytes(r)
}

// NString reads an n-string.
func NString(r Reader) (string, error) {
	b, err := readStringBytes(r)
	if err != nil {
		return "", err
	}
	s := string(b)
	if err := validateNString(s); err != nil {
		return "", err
	}

	return s, nil
}

func putStringBytes(w Writer, s string) error {
	if err := PutUint(w, uint64(len(s))); err != nil {
		return err
	}
	_, err := w.Write([]byte(s))

	return err
}

func readStringBytes(r Reader) ([]byte, error) {
	n, err := Uint(r)
	if err != nil {
		return nil, err
	}
	if n > format.MaxStringLength {
		return nil, fmt.Errorf("%w: string length %d exceeds %d", errs.ErrLimitExceeded, n, format.MaxStringLength)
	}
	if n == 0 {
		return []byte{}, nil
	}

	b := make([]byte, n)
	if err := readFull(r, b); err != nil {
		return nil, err
	}

	return b, nil
}

func validateAString(s string) error {
	for i := 0; i < len(s); i++ {
		if s[i] < 0x20 || s[i] > 0x7e {
			return fmt.Errorf("%w: a-string byte 0x%02x at index %d", errs.ErrInvalidString, s[i], i)
		}
	}

	return nil
}

func validateNString(s string) error {
	if len(s) == 0 {
		return fmt.Errorf("%w: empty n-string", errs.ErrInvalidString)
	}
	for i := 0; i < len(s); i++ {
		if s[i] < 0x21 || s[i] > 0x7e {
			return fmt.Errorf("%w: n-string byte 0x%02x at index %d", errs.ErrInvalidString, s[i], i)
		}
	}

	return nil
}

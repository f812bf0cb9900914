package encoding

import (
	"errors"
	"io"
)

// Writer is the byte sink every primitive encoder writes to.
//
// It is intentionally small: *pool.ByteBuffer, *bytes.Buffer and the
// stream writer all satisfy it without adapters.
type Writer interface {
	io.Writer
	io.ByteWriter
}

// Reader is the byte source every primitive decoder reads from.
//
// *bytes.Reader, *bufio.Reader and the stream reader all satisfy it
// without adapters.
type Reader interface {
	io.Reader
	io.ByteReader
}

// readFull fills p from r, normalizing io.EOF to io.ErrUnexpectedEOF.
//
// The primitives are only invoked after an enclosing record has committed
// to a field, so running out of bytes mid-field is always a truncation.
func readFull(r Reader, p []byte) error {
	if _, err := io.ReadFull(r, p); err != nil {
		return eof(err)
	}

	return nil
}

// eof maps io.EOF to io.ErrUnexpectedEOF, leaving other errors untouched.
func eof(err error) error {
	if errors.Is(err, io.EOF) {
		return io.ErrUnexpectedEOF
	}

	return err
}

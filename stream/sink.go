package stream

import (
	"fmt"
	"io"
)

// Sink is the destination a Writer emits into. Sequential writes carry the
// bulk of the file; WriteAt serves the count backpatch when a reserved
// region has already been flushed, and ReadAt serves the CRC catch-up pass
// at finalization.
//
// *os.File satisfies Sink directly. MemFile is the in-memory equivalent.
type Sink interface {
	io.Writer
	io.WriterAt
	io.ReaderAt
}

// MemFile is an in-memory Sink. It behaves like a file that grows on write:
// sequential writes append, positioned writes may overwrite earlier bytes,
// and ReadAt serves any written region.
//
// The zero value is an empty file ready for use.
type MemFile struct {
	buf []byte
}

var _ Sink = (*MemFile)(nil)

// NewMemFile creates an empty in-memory sink.
func NewMemFile() *MemFile {
	return &MemFile{}
}

// Write appends p to the file.
func (m *MemFile) Write(p []byte) (int, error) {
	m.buf = append(m.buf, p...)

	return len(p), nil
}

// WriteAt overwrites len(p) bytes at offset off, growing the file if the
// region extends past the current end.
func (m *MemFile) WriteAt(p []byte, off int64) (int, error) {
	if off < 0 {
		return 0, fmt.Errorf("stream.MemFile.WriteAt: negative offset %d", off)
	}
	if end := off + int64(len(p)); end > int64(len(m.buf)) {
		grown := make([]byte, end)
		copy(grown, m.buf)
		m.buf = grown
	}
	copy(m.buf[off:], p)

	return len(p), nil
}

// ReadAt reads len(p) bytes from offset off. Reads past the end return
// io.EOF after the available bytes, matching the io.ReaderAt contract.
func (m *MemFile) ReadAt(p []byte, off int64) (int, error) {
	if off < 0 {
		return 0, fmt.Errorf("stream.MemFile.ReadAt: negative offset %d", off)
	}
	if off >= int64(len(m.buf)) {
		return 0, io.EOF
	}
	n := copy(p, m.buf[off:])
	if n < len(p) {
		return n, io.EOF
	}

	return n, nil
}

// Bytes returns the file contents. The slice aliases the internal storage
// and stays valid until the next write.
func (m *MemFile) Bytes() []byte {
	return m.buf
}

// Len returns the current file length.
func (m *MemFile) Len() int {
	return len(m.buf)
}

// Reset truncates the file to empty, keeping the allocated storage.
func (m *MemFile) Reset() {
	m.buf = m.buf[:0]
}

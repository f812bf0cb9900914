package stream

import (
	"bytes"
	"errors"
	"fmt"
	"hash/crc32"
	"io"
	"testing"

	"github.com/klauspost/compress/flate"
	"github.com/stretchr/testify/require"

	"github.com/arloliu/oasix/compress"
	"github.com/arloliu/oasix/encoding"
	"github.com/arloliu/oasix/errs"
	"github.com/arloliu/oasix/format"
	"github.com/arloliu/oasix/internal/pool"
)

// recordingSink wraps MemFile and records the size of every sequential
// write, so tests can assert the flush pattern.
type recordingSink struct {
	MemFile
	writes   []int
	writeAts []int64
}

func (s *recordingSink) Write(p []byte) (int, error) {
	s.writes = append(s.writes, len(p))

	return s.MemFile.Write(p)
}

func (s *recordingSink) WriteAt(p []byte, off int64) (int, error) {
	s.writeAts = append(s.writeAts, off)

	return s.MemFile.WriteAt(p, off)
}

// failingSink fails every sequential write.
type failingSink struct {
	MemFile
}

func (s *failingSink) Write(p []byte) (int, error) {
	return 0, errors.New("disk full")
}

func paddedUint(v uint64, width int) []byte {
	return encoding.AppendPaddedUint(nil, v, width)
}

// patternBytes returns n bytes that compress poorly, so block tests can
// force compressed output past the buffer capacity.
func patternBytes(n int) []byte {
	data := make([]byte, n)
	for i := range data {
		data[i] = byte((i*31 + i*i*7 + i*i*i*3) % 256)
	}

	return data
}

// ============================================================================
// Sequential writes and flushing
// ============================================================================

func TestWriter_SequentialWrites(t *testing.T) {
	sink := NewMemFile()
	w := NewWriter(sink, format.SchemeNone)

	n, err := w.Write([]byte("abc"))
	require.NoError(t, err)
	require.Equal(t, 3, n)
	require.NoError(t, w.WriteByte('d'))
	require.Equal(t, int64(4), w.Offset())

	// Nothing reaches the sink before a flush.
	require.Equal(t, 0, sink.Len())

	require.NoError(t, w.Flush())
	require.Equal(t, []byte("abcd"), sink.Bytes())
	require.Equal(t, int64(4), w.Offset())

	require.NoError(t, w.Close())
}

// TestWriter_AutoFlushAlignment forces an auto-flush with an unaligned
// buffer fill and checks that the flushed prefix rounds down to 4 KiB.
func TestWriter_AutoFlushAlignment(t *testing.T) {
	sink := &recordingSink{}
	w := NewWriter(sink, format.SchemeNone)

	first := patternBytes(65000)
	second := patternBytes(1000)

	_, err := w.Write(first)
	require.NoError(t, err)
	require.Empty(t, sink.writes, "65000 bytes fit in the 64 KiB buffer")

	_, err = w.Write(second)
	require.NoError(t, err)
	require.Equal(t, []int{61440}, sink.writes, "auto-flush keeps the unaligned tail buffered")

	require.NoError(t, w.Flush())
	require.Equal(t, []int{61440, 4560}, sink.writes)

	want := append(append([]byte{}, first...), second...)
	require.Equal(t, want, sink.Bytes())
	require.NoError(t, w.Close())
}

func TestWriter_ByteWritesAcrossFlush(t *testing.T) {
	sink := NewMemFile()
	w := NewWriter(sink, format.SchemeNone)

	const total = pool.FileBufferDefaultSize + 100
	for i := range total {
		require.NoError(t, w.WriteByte(byte(i%251)))
	}
	require.NoError(t, w.Flush())

	require.Equal(t, total, sink.Len())
	for i, b := range sink.Bytes() {
		if b != byte(i%251) {
			t.Fatalf("byte %d: got %#x, want %#x", i, b, byte(i%251))
		}
	}
	require.NoError(t, w.Close())
}

func TestWriter_JumboWriteLargerThanBuffer(t *testing.T) {
	sink := NewMemFile()
	w := NewWriter(sink, format.SchemeChecksum32)

	data := patternBytes(3*pool.FileBufferDefaultSize + 777)
	_, err := w.Write(data)
	require.NoError(t, err)
	require.NoError(t, w.Flush())
	require.Equal(t, data, sink.Bytes())

	sig, ok, err := w.Signature()
	require.NoError(t, err)
	require.True(t, ok)
	var sum uint32
	for _, b := range data {
		sum += uint32(b)
	}
	require.Equal(t, sum, sig)
	require.NoError(t, w.Close())
}

func TestWriter_SinkFailureIsSticky(t *testing.T) {
	w := NewWriter(&failingSink{}, format.SchemeNone)

	_, err := w.Write(patternBytes(100))
	require.NoError(t, err, "buffered write does not touch the sink")

	err = w.Flush()
	require.Error(t, err)

	_, err2 := w.Write([]byte{1})
	require.Equal(t, err, err2, "errors are sticky")
	require.Error(t, w.Close())
}

func TestWriter_CloseIdempotent(t *testing.T) {
	sink := NewMemFile()
	w := NewWriter(sink, format.SchemeNone)

	_, err := w.Write([]byte("tail"))
	require.NoError(t, err)

	require.NoError(t, w.Close())
	require.Equal(t, []byte("tail"), sink.Bytes(), "close flushes remaining bytes")
	require.NoError(t, w.Close())

	err = w.WriteByte(0)
	require.ErrorIs(t, err, errs.ErrSessionState)
}

// ============================================================================
// Reserve / Patch
// ============================================================================

func TestWriter_PatchInMemory(t *testing.T) {
	sink := &recordingSink{}
	w := NewWriter(sink, format.SchemeNone)

	_, err := w.Write([]byte("head"))
	require.NoError(t, err)

	patch, err := w.Reserve(10)
	require.NoError(t, err)
	require.Equal(t, int64(4), patch.Offset())
	require.Equal(t, 10, patch.Width())

	_, err = w.Write([]byte("tail"))
	require.NoError(t, err)

	require.NoError(t, patch.Fill(123456))
	require.Empty(t, sink.writeAts, "resident region patches in memory")

	require.NoError(t, w.Flush())
	file := sink.Bytes()
	require.Equal(t, []byte("head"), file[:4])
	require.Equal(t, paddedUint(123456, 10), file[4:14])
	require.Equal(t, []byte("tail"), file[14:])
	require.NoError(t, w.Close())
}

func TestWriter_PatchAfterFlush(t *testing.T) {
	sink := &recordingSink{}
	w := NewWriter(sink, format.SchemeNone)

	_, err := w.Write(patternBytes(10))
	require.NoError(t, err)

	patch, err := w.Reserve(10)
	require.NoError(t, err)
	require.Equal(t, int64(10), patch.Offset())

	// Overflowing the buffer flushes the reserved region to the sink.
	_, err = w.Write(patternBytes(pool.FileBufferDefaultSize - 6))
	require.NoError(t, err)

	require.NoError(t, patch.Fill(42))
	require.Equal(t, []int64{10}, sink.writeAts, "flushed region patches with one positioned write")

	require.NoError(t, w.Flush())
	require.Equal(t, paddedUint(42, 10), sink.Bytes()[10:20])
	require.NoError(t, w.Close())
}

// TestWriter_PatchStraddlesFlushBoundary places the reserved region so an
// aligned auto-flush lands inside it, exercising the split fill.
func TestWriter_PatchStraddlesFlushBoundary(t *testing.T) {
	sink := &recordingSink{}
	w := NewWriter(sink, format.SchemeNone)

	head := patternBytes(61435)
	_, err := w.Write(head)
	require.NoError(t, err)

	patch, err := w.Reserve(10)
	require.NoError(t, err)
	require.Equal(t, int64(61435), patch.Offset())

	tail := patternBytes(4200)
	_, err = w.Write(tail)
	require.NoError(t, err)
	require.Equal(t, []int{61440}, sink.writes, "flush boundary lands inside the reserved region")

	require.NoError(t, patch.Fill(987654321))
	require.Equal(t, []int64{61435}, sink.writeAts, "flushed prefix of the region patches positionally")

	require.NoError(t, w.Flush())
	file := sink.Bytes()
	require.Equal(t, head, file[:61435])
	require.Equal(t, paddedUint(987654321, 10), file[61435:61445])
	require.Equal(t, tail, file[61445:])
	require.NoError(t, w.Close())
}

func TestWriter_ReserveRejects(t *testing.T) {
	w := NewWriter(NewMemFile(), format.SchemeNone)

	_, err := w.Reserve(0)
	require.ErrorIs(t, err, errs.ErrSessionState)
}

func TestWriter_ReserveWidthAboveMax(t *testing.T) {
	w := NewWriter(NewMemFile(), format.SchemeNone)

	_, err := w.Reserve(encoding.MaxUintLen64 + 1)
	require.ErrorIs(t, err, errs.ErrSessionState)
}

func TestWriter_DoubleFill(t *testing.T) {
	w := NewWriter(NewMemFile(), format.SchemeNone)

	patch, err := w.Reserve(10)
	require.NoError(t, err)
	require.NoError(t, patch.Fill(1))
	require.ErrorIs(t, patch.Fill(2), errs.ErrSessionState)
	require.NoError(t, w.Close())
}

func TestWriter_UnfilledPatchBlocksSignature(t *testing.T) {
	w := NewWriter(NewMemFile(), format.SchemeChecksum32)

	_, err := w.Reserve(10)
	require.NoError(t, err)

	_, _, err = w.Signature()
	require.ErrorIs(t, err, errs.ErrSessionState)
}

// ============================================================================
// Compressed blocks
// ============================================================================

// TestWriter_BlockRawCodec isolates the count backpatch protocol from real
// compression: with the passthrough codec both counts must equal the
// payload length and the payload must appear verbatim after the counts.
func TestWriter_BlockRawCodec(t *testing.T) {
	sink := NewMemFile()
	w := NewWriter(sink, format.SchemeNone)

	payload := []byte("records staged through the block buffer")

	require.NoError(t, w.BeginBlock(compress.NewRawCodec()))
	_, err := w.Write(payload)
	require.NoError(t, err)
	require.NoError(t, w.EndBlock())
	require.NoError(t, w.Flush())

	file := bytes.NewReader(sink.Bytes())
	uncomp, err := encoding.Uint(file)
	require.NoError(t, err)
	comp, err := encoding.Uint(file)
	require.NoError(t, err)
	require.Equal(t, uint64(len(payload)), uncomp)
	require.Equal(t, uint64(len(payload)), comp)

	rest := sink.Bytes()[2*encoding.MaxUintLen64:]
	require.Equal(t, payload, rest)
	require.NoError(t, w.Close())
}

// TestWriter_BlockDeflateLarge pushes enough incompressible payload through
// a block that the compressed output overflows the file buffer, forcing
// the count placeholders to be patched through the sink.
func TestWriter_BlockDeflateLarge(t *testing.T) {
	sink := &recordingSink{}
	w := NewWriter(sink, format.SchemeNone)

	payload := patternBytes(200000)

	require.NoError(t, w.BeginBlock(compress.NewDeflateCodec()))
	_, err := w.Write(payload)
	require.NoError(t, err)
	require.NoError(t, w.EndBlock())
	require.NoError(t, w.Flush())
	require.NotEmpty(t, sink.writeAts, "counts must be patched positionally after auto-flush")

	file := bytes.NewReader(sink.Bytes())
	uncomp, err := encoding.Uint(file)
	require.NoError(t, err)
	comp, err := encoding.Uint(file)
	require.NoError(t, err)
	require.Equal(t, uint64(len(payload)), uncomp)
	require.Equal(t, uint64(sink.Len()-2*encoding.MaxUintLen64), comp)

	fr := flate.NewReader(bytes.NewReader(sink.Bytes()[2*encoding.MaxUintLen64:]))
	decompressed, err := io.ReadAll(fr)
	require.NoError(t, err)
	require.Equal(t, payload, decompressed)
	require.NoError(t, w.Close())
}

func TestWriter_BlockByteWrites(t *testing.T) {
	sink := NewMemFile()
	w := NewWriter(sink, format.SchemeNone)

	payload := patternBytes(3 * pool.BlockBufferDefaultSize / 2)

	require.NoError(t, w.BeginBlock(compress.NewRawCodec()))
	for _, b := range payload {
		require.NoError(t, w.WriteByte(b))
	}
	require.NoError(t, w.EndBlock())
	require.NoError(t, w.Flush())

	require.Equal(t, payload, sink.Bytes()[2*encoding.MaxUintLen64:])
	require.NoError(t, w.Close())
}

func TestWriter_BlockStateErrors(t *testing.T) {
	w := NewWriter(NewMemFile(), format.SchemeNone)

	require.ErrorIs(t, w.EndBlock(), errs.ErrNoCBlock)

	w2 := NewWriter(NewMemFile(), format.SchemeNone)
	require.NoError(t, w2.BeginBlock(compress.NewRawCodec()))
	require.ErrorIs(t, w2.BeginBlock(compress.NewRawCodec()), errs.ErrNestedCBlock)

	w3 := NewWriter(NewMemFile(), format.SchemeNone)
	require.NoError(t, w3.BeginBlock(compress.NewRawCodec()))
	_, err := w3.Reserve(10)
	require.ErrorIs(t, err, errs.ErrSessionState)

	w4 := NewWriter(NewMemFile(), format.SchemeNone)
	require.NoError(t, w4.BeginBlock(compress.NewRawCodec()))
	require.ErrorIs(t, w4.Close(), errs.ErrNestedCBlock)
}

// ============================================================================
// Signatures
// ============================================================================

// TestWriter_SignatureCRCWithPatch is the suspend/resume property: the CRC
// signature of a file containing a patched region must equal an
// independent CRC over the final bytes.
func TestWriter_SignatureCRCWithPatch(t *testing.T) {
	sink := NewMemFile()
	w := NewWriter(sink, format.SchemeCRC32)

	_, err := w.Write([]byte("before"))
	require.NoError(t, err)
	patch, err := w.Reserve(10)
	require.NoError(t, err)
	_, err = w.Write([]byte("after"))
	require.NoError(t, err)
	require.NoError(t, patch.Fill(7777777))

	sig, ok, err := w.Signature()
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, crc32.ChecksumIEEE(sink.Bytes()), sig)
	require.NoError(t, w.Close())
}

func TestWriter_SignatureChecksumWithPatch(t *testing.T) {
	sink := NewMemFile()
	w := NewWriter(sink, format.SchemeChecksum32)

	_, err := w.Write([]byte("before"))
	require.NoError(t, err)
	patch, err := w.Reserve(10)
	require.NoError(t, err)
	_, err = w.Write([]byte("after"))
	require.NoError(t, err)
	require.NoError(t, patch.Fill(7777777))

	sig, ok, err := w.Signature()
	require.NoError(t, err)
	require.True(t, ok)

	var sum uint32
	for _, b := range sink.Bytes() {
		sum += uint32(b)
	}
	require.Equal(t, sum, sig)
	require.NoError(t, w.Close())
}

// TestWriter_SignatureCRCLargePatchedFile exercises catch-up over more
// than one scratch buffer of sink bytes.
func TestWriter_SignatureCRCLargePatchedFile(t *testing.T) {
	sink := NewMemFile()
	w := NewWriter(sink, format.SchemeCRC32)

	patch, err := w.Reserve(10)
	require.NoError(t, err)
	_, err = w.Write(patternBytes(3 * pool.FileBufferDefaultSize))
	require.NoError(t, err)
	require.NoError(t, patch.Fill(uint64(3 * pool.FileBufferDefaultSize)))

	sig, ok, err := w.Signature()
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, crc32.ChecksumIEEE(sink.Bytes()), sig)
	require.NoError(t, w.Close())
}

func TestWriter_WriteRawExcludedFromSignature(t *testing.T) {
	sink := NewMemFile()
	w := NewWriter(sink, format.SchemeChecksum32)

	_, err := w.Write([]byte{1, 2, 3})
	require.NoError(t, err)

	sig, ok, err := w.Signature()
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, uint32(6), sig)

	require.NoError(t, w.WriteRaw([]byte{0xFF, 0xFF, 0xFF, 0xFF}))
	require.NoError(t, w.Flush())
	require.Equal(t, 7, sink.Len())
	require.NoError(t, w.Close())
}

func TestWriter_SignatureNone(t *testing.T) {
	w := NewWriter(NewMemFile(), format.SchemeNone)

	_, err := w.Write([]byte("data"))
	require.NoError(t, err)

	_, ok, err := w.Signature()
	require.NoError(t, err)
	require.False(t, ok)
	require.NoError(t, w.Close())
}

// ============================================================================
// Benchmarks
// ============================================================================

func BenchmarkWriter_Write(b *testing.B) {
	for _, size := range []int{64, 4096} {
		data := patternBytes(size)
		b.Run(fmt.Sprintf("%dB", size), func(b *testing.B) {
			sink := NewMemFile()
			w := NewWriter(sink, format.SchemeCRC32)
			defer w.Close()
			b.SetBytes(int64(size))

			for b.Loop() {
				if _, err := w.Write(data); err != nil {
					b.Fatal(err)
				}
				sink.Reset()
			}
		})
	}
}

func BenchmarkWriter_WriteByte(b *testing.B) {
	sink := NewMemFile()
	w := NewWriter(sink, format.SchemeChecksum32)
	defer w.Close()

	for b.Loop() {
		if err := w.WriteByte(0x42); err != nil {
			b.Fatal(err)
		}
		sink.Reset()
	}
}

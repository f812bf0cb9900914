package compress

import (
	"bytes"
	"fmt"
	"io"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/arloliu/oasix/errs"
	"github.com/arloliu/oasix/format"
)

// getAllCodecs returns every built-in codec keyed by a readable name.
func getAllCodecs() map[string]Codec {
	return map[string]Codec{
		"Deflate": NewDeflateCodec(),
		"Raw":     NewRawCodec(),
		"Zstd":    NewZstdCodec(),
		"S2":      NewS2Codec(),
		"LZ4":     NewLZ4Codec(),
	}
}

// compressAll runs data through a codec writer into a fresh buffer.
func compressAll(t *testing.T, codec Codec, data []byte) []byte {
	t.Helper()

	var buf bytes.Buffer
	w := codec.NewWriter(&buf)
	if len(data) > 0 {
		n, err := w.Write(data)
		require.NoError(t, err)
		require.Equal(t, len(data), n)
	}
	require.NoError(t, w.Close())

	return buf.Bytes()
}

// decompressAll reads a full compressed stream back out of a codec reader.
func decompressAll(t *testing.T, codec Codec, compressed []byte) []byte {
	t.Helper()

	r, err := codec.NewReader(bytes.NewReader(compressed))
	require.NoError(t, err)
	data, err := io.ReadAll(r)
	require.NoError(t, err)
	require.NoError(t, r.Close())

	return data
}

func TestGetCodec(t *testing.T) {
	methods := []format.CompressionType{
		format.CompressionDeflate,
		format.CompressionNone,
		format.CompressionZstd,
		format.CompressionS2,
		format.CompressionLZ4,
	}

	for _, method := range methods {
		t.Run(method.String(), func(t *testing.T) {
			codec, err := GetCodec(method)
			require.NoError(t, err)
			require.Equal(t, method, codec.Method())
		})
	}

	t.Run("unknown method", func(t *testing.T) {
		_, err := GetCodec(format.CompressionType(99))
		require.ErrorIs(t, err, errs.ErrUnknownCompression)
	})
}

// TestMethodValues pins the wire identifiers. CompressionDeflate is the
// interchange-standard method 0; the rest are extension values that must
// never collide with the standard range.
func TestMethodValues(t *testing.T) {
	require.Equal(t, format.CompressionType(0), format.CompressionDeflate)
	require.Equal(t, format.CompressionType(64), format.CompressionNone)
	require.Equal(t, format.CompressionType(65), format.CompressionZstd)
	require.Equal(t, format.CompressionType(66), format.CompressionS2)
	require.Equal(t, format.CompressionType(67), format.CompressionLZ4)
}

func TestAllCodecs_RoundTrip(t *testing.T) {
	testCases := []struct {
		name string
		data []byte
	}{
		{
			name: "small_text",
			data: []byte("TOP_CELL_A"),
		},
		{
			name: "repeated_records",
			data: bytes.Repeat([]byte{0x14, 0x7b, 0x01, 0x02, 0xa8, 0x0f, 0xd0, 0x1e}, 100),
		},
		{
			name: "binary_data",
			data: []byte{0x00, 0x01, 0x02, 0x03, 0xFF, 0xFE, 0xFD, 0xFC},
		},
		{
			name: "single_byte",
			data: []byte{0x42},
		},
		{
			name: "medium_payload",
			data: bytes.Repeat([]byte("CELLNAME_WITH_HIERARCHY/block_7/sram_macro_0042"), 256),
		},
		{
			name: "pseudo_random",
			data: func() []byte {
				data := make([]byte, 4096)
				for i := range data {
					if i%100 < 50 {
						data[i] = byte(i % 256)
					} else {
						data[i] = byte((i*7 + i*i) % 256)
					}
				}

				return data
			}(),
		},
		{
			name: "highly_compressible",
			data: make([]byte, 1024*1024),
		},
	}

	for codecName, codec := range getAllCodecs() {
		t.Run(codecName, func(t *testing.T) {
			for _, tc := range testCases {
				t.Run(tc.name, func(t *testing.T) {
					compressed := compressAll(t, codec, tc.data)

					ratio := float64(len(compressed)) / float64(len(tc.data)) * 100
					t.Logf("Original: %d bytes, Compressed: %d bytes, Ratio: %.2f%%",
						len(tc.data), len(compressed), ratio)

					decompressed := decompressAll(t, codec, compressed)
					require.Equal(t, tc.data, decompressed)
				})
			}
		})
	}
}

func TestAllCodecs_EmptyStream(t *testing.T) {
	for codecName, codec := range getAllCodecs() {
		t.Run(codecName, func(t *testing.T) {
			compressed := compressAll(t, codec, nil)

			decompressed := decompressAll(t, codec, compressed)
			require.Empty(t, decompressed)
		})
	}
}

func TestAllCodecs_CloseIdempotent(t *testing.T) {
	for codecName, codec := range getAllCodecs() {
		t.Run(codecName, func(t *testing.T) {
			var buf bytes.Buffer
			w := codec.NewWriter(&buf)
			_, err := w.Write([]byte("payload"))
			require.NoError(t, err)
			require.NoError(t, w.Close())
			require.NoError(t, w.Close())

			r, err := codec.NewReader(bytes.NewReader(buf.Bytes()))
			require.NoError(t, err)
			_, err = io.ReadAll(r)
			require.NoError(t, err)
			require.NoError(t, r.Close())
			require.NoError(t, r.Close())
		})
	}
}

// TestAllCodecs_UnderlyingWriterStaysOpen checks the contract that closing a
// codec stream finalizes the frame without closing the destination: bytes
// written to the destination after Close must land after the frame, and the
// frame must still decode from its own span.
func TestAllCodecs_UnderlyingWriterStaysOpen(t *testing.T) {
	payload := bytes.Repeat([]byte("geometry run "), 64)
	trailer := []byte{0x15, 0x00} // a plain record following the block

	for codecName, codec := range getAllCodecs() {
		t.Run(codecName, func(t *testing.T) {
			var buf bytes.Buffer
			w := codec.NewWriter(&buf)
			_, err := w.Write(payload)
			require.NoError(t, err)
			require.NoError(t, w.Close())

			frameLen := buf.Len()
			_, err = buf.Write(trailer)
			require.NoError(t, err)

			full := buf.Bytes()
			require.Equal(t, trailer, full[frameLen:])

			decompressed := decompressAll(t, codec, full[:frameLen])
			require.Equal(t, payload, decompressed)
		})
	}
}

func TestAllCodecs_CorruptStream(t *testing.T) {
	corrupt := [][]byte{
		{0xFF, 0xFF, 0xFF, 0xFF},
		[]byte("this is not a compressed stream"),
	}

	for codecName, codec := range getAllCodecs() {
		t.Run(codecName, func(t *testing.T) {
			if codecName == "Raw" {
				t.Skip("passthrough codec accepts any bytes")
			}

			for i, data := range corrupt {
				t.Run(fmt.Sprintf("input_%d", i), func(t *testing.T) {
					r, err := codec.NewReader(bytes.NewReader(data))
					if err != nil {
						return
					}
					_, err = io.ReadAll(r)
					require.Error(t, err)
					require.NoError(t, r.Close())
				})
			}
		})
	}
}

// TestAllCodecs_SequentialReuse exercises the pools: the compressor state a
// Close returns must come back clean for the next stream.
func TestAllCodecs_SequentialReuse(t *testing.T) {
	for codecName, codec := range getAllCodecs() {
		t.Run(codecName, func(t *testing.T) {
			for i := range 10 {
				payload := bytes.Repeat([]byte{byte(i)}, 100+i*37)
				compressed := compressAll(t, codec, payload)
				require.Equal(t, payload, decompressAll(t, codec, compressed))
			}
		})
	}
}

func TestAllCodecs_ConcurrentUsage(t *testing.T) {
	const numGoroutines = 20
	payload := bytes.Repeat([]byte("concurrent block payload "), 32)

	for codecName, codec := range getAllCodecs() {
		t.Run(codecName, func(t *testing.T) {
			done := make(chan error, numGoroutines)

			for range numGoroutines {
				go func() {
					var buf bytes.Buffer
					w := codec.NewWriter(&buf)
					if _, err := w.Write(payload); err != nil {
						done <- err
						return
					}
					if err := w.Close(); err != nil {
						done <- err
						return
					}

					r, err := codec.NewReader(bytes.NewReader(buf.Bytes()))
					if err != nil {
						done <- err
						return
					}
					decompressed, err := io.ReadAll(r)
					if err != nil {
						done <- err
						return
					}
					if err := r.Close(); err != nil {
						done <- err
						return
					}
					if !bytes.Equal(payload, decompressed) {
						done <- fmt.Errorf("decompressed data mismatch")
						return
					}
					done <- nil
				}()
			}

			for range numGoroutines {
				require.NoError(t, <-done)
			}
		})
	}
}

func TestRawCodec_Passthrough(t *testing.T) {
	codec := NewRawCodec()
	data := []byte{0x1b, 0x00, 0x7b, 0x04, 0x08, 0x30, 0x2c}

	compressed := compressAll(t, codec, data)
	require.Equal(t, data, compressed)
}

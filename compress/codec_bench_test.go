package compress

import (
	"bytes"
	"fmt"
	"io"
	"testing"
)

// generateBenchmarkData creates block payloads for benchmarks.
func generateBenchmarkData(size int, compressibility string) []byte {
	data := make([]byte, size)

	switch compressibility {
	case "highly_compressible":
		// All zeros - maximum compression
		// data already initialized to zeros
	case "compressible":
		// Repeated record bytes - good compression
		pattern := []byte{0x14, 0x7b, 0x01, 0x02, 0xa8, 0x0f, 0xd0, 0x1e, 0xbc, 0x03}
		for i := range data {
			data[i] = pattern[i%len(pattern)]
		}
	case "semi_compressible":
		// Semi-random data - moderate compression
		for i := range data {
			if i%100 < 50 {
				data[i] = byte(i % 256)
			} else {
				data[i] = byte((i*7 + i*i) % 256)
			}
		}
	default:
		// Default to incompressible
		for i := range data {
			data[i] = byte((i*31 + i*i*7 + i*i*i*3) % 256)
		}
	}

	return data
}

func BenchmarkCodec_Compress(b *testing.B) {
	benchSizes := []int{4096, 65536}

	for name, codec := range getAllCodecs() {
		for _, size := range benchSizes {
			data := generateBenchmarkData(size, "semi_compressible")

			b.Run(fmt.Sprintf("%s/%dKB", name, size/1024), func(b *testing.B) {
				b.SetBytes(int64(size))

				for b.Loop() {
					w := codec.NewWriter(io.Discard)
					if _, err := w.Write(data); err != nil {
						b.Fatal(err)
					}
					if err := w.Close(); err != nil {
						b.Fatal(err)
					}
				}
			})
		}
	}
}

func BenchmarkCodec_Decompress(b *testing.B) {
	benchSizes := []int{4096, 65536}

	for name, codec := range getAllCodecs() {
		for _, size := range benchSizes {
			data := generateBenchmarkData(size, "semi_compressible")

			var buf bytes.Buffer
			w := codec.NewWriter(&buf)
			if _, err := w.Write(data); err != nil {
				b.Fatal(err)
			}
			if err := w.Close(); err != nil {
				b.Fatal(err)
			}
			compressed := buf.Bytes()

			b.Run(fmt.Sprintf("%s/%dKB", name, size/1024), func(b *testing.B) {
				b.SetBytes(int64(size))

				for b.Loop() {
					r, err := codec.NewReader(bytes.NewReader(compressed))
					if err != nil {
						b.Fatal(err)
					}
					if _, err := io.Copy(io.Discard, r); err != nil {
						b.Fatal(err)
					}
					if err := r.Close(); err != nil {
						b.Fatal(err)
					}
				}
			})
		}
	}
}

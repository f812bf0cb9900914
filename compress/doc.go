// Package compress provides streaming compression codecs for CBLOCK spans.
//
// A CBLOCK wraps a run of records in a compressed byte stream. The layout
// writer hands the span to a codec as it is produced, and the reader
// decompresses it transparently while records are pulled out, so codecs here
// are streaming: each one wraps an io.Writer or io.Reader rather than
// transforming a byte slice in one shot.
//
// # Architecture
//
// The package defines a single interface:
//
//	type Codec interface {
//	    Method() format.CompressionType
//	    NewWriter(w io.Writer) io.WriteCloser
//	    NewReader(r io.Reader) (io.ReadCloser, error)
//	}
//
// NewWriter returns a stream that compresses everything written to it into w.
// Closing the stream finalizes the compressed frame but never closes w; the
// caller keeps writing plain records after the block ends. NewReader is the
// mirror image for decoding.
//
// # Supported Methods
//
// **Deflate** (format.CompressionDeflate)
//
// The interchange-standard method, compress-type 0 on the wire. Every
// conforming reader understands it, so it is the only method the encoder
// uses unless an extension method is requested explicitly.
//
// **Raw** (format.CompressionNone)
//
// A pass-through codec. Useful for measuring CBLOCK framing overhead and for
// tooling that wants block boundaries without paying for compression.
//
// **Zstd** (format.CompressionZstd)
//
// Best ratio of the bundled methods at a moderate CPU cost. The default
// implementation is pure Go; building with the gozstd tag (and cgo enabled)
// swaps in the libzstd-backed implementation.
//
// **S2** (format.CompressionS2)
//
// Fastest encode path. A good pick for scratch files that are written once
// and read back immediately.
//
// **LZ4** (format.CompressionLZ4)
//
// Fast decompression with moderate ratio, for read-heavy workloads.
//
// Raw, Zstd, S2, and LZ4 are extension methods: files using them are not
// interchangeable with other OASIS consumers. Their compress-type values
// live outside the range reserved by the interchange standard.
//
// # Memory Management
//
// Every codec pools its underlying compressor and decompressor state in a
// sync.Pool. NewWriter/NewReader reset a pooled object onto the destination
// or source, and Close returns it. Zstd compressor state in particular is
// expensive to build, so reuse matters for files with many CBLOCKs.
//
// Close is idempotent. Double closes are cheap no-ops, and a closed stream
// must not be used again.
//
// # Thread Safety
//
// Codec values are stateless and safe to share across goroutines. The
// writers and readers they produce are not; each belongs to a single
// encoding or decoding session.
package compress

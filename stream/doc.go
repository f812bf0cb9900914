// Package stream manages the buffered byte streams of one file session:
// two fixed-capacity buffers, the direct/compressing state machine around
// compressed blocks, the deferred-write tickets that serve the block count
// backpatch, and the whole-file validation signature.
//
// # Buffers and states
//
// A session owns a 64 KiB file buffer and a 64 KiB block buffer, both from
// internal pools. In the direct state record bytes land in the file buffer;
// when an incoming write no longer fits, the buffered prefix flushes to the
// sink rounded down to 4 KiB, keeping sink writes page-sized. Inside a
// compressed block record bytes stage in the block buffer instead and reach
// the file buffer only as compressor output; the reverse path stages
// decompressor output so record parsing stays byte-oriented.
//
// Block entry flushes the file buffer completely. A small block then stays
// resident from its count placeholders to its last compressed byte, and the
// backpatch is two in-memory copies instead of positioned writes.
//
// # The deferred patch protocol
//
// A compressed block's two byte counts are known only after the compressor
// finishes, yet they precede the payload on the wire. Reserve emits
// fixed-width placeholder bytes and hands back a Patch ticket holding the
// absolute offset; Fill later writes the final value as a zero-padded
// unsigned integer of exactly the reserved width. Depending on where the
// flush boundary sits, the fill is an in-memory copy, one positioned sink
// write, or a split across both. This positioned write is the only
// non-sequential operation in the package.
//
// # Validation
//
// The write-side Validator is a two-state machine. Checksum32 is an
// order-independent byte sum: reserved bytes are skipped and their final
// contents summed at Fill time, so it never suspends. CRC32 is order
// dependent: the first reserved byte suspends it, and at finalization the
// writer re-reads the finished sink from the suspension offset to catch up.
// The stored signature bytes themselves travel through WriteRaw/ReadRaw and
// stay outside the validated stream.
//
// The read side is simpler: no byte is ever provisional, so the reader just
// accumulates both signature flavors while consuming and compares whichever
// one the END record turns out to declare.
//
// # Sinks and sources
//
// The writer emits into a Sink (io.Writer + io.WriterAt + io.ReaderAt);
// *os.File satisfies it, and MemFile is the in-memory equivalent. The
// reader consumes any io.Reader.
package stream

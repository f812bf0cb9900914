package section

const (
	// Magic is the fixed literal that opens every file.
	Magic = "%SEMI-OASIS\r\n"

	// Version is the only format version this package reads or writes. It
	// is stored as the a-string immediately after the START tag.
	Version = "1.0"

	// MagicSize is the byte length of Magic.
	MagicSize = len(Magic)

	// EndRecordSize is the exact byte length of the END record, counted
	// from its tag byte through the optional signature.
	EndRecordSize = 256

	// SignatureSize is the byte length of the little-endian validation
	// signature stored after the scheme when validation is enabled.
	SignatureSize = 4
)

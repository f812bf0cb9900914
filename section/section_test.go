package section

import (
	"bytes"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arloliu/oasix/encoding"
	"github.com/arloliu/oasix/errs"
)

// =============================================================================
// Constants
// =============================================================================

func TestFixedSizes(t *testing.T) {
	require.Len(t, []byte(Magic), 13)
	require.Equal(t, 13, MagicSize)
	require.Equal(t, byte('%'), Magic[0])
	require.Equal(t, "\r\n", Magic[11:])
	require.Equal(t, 256, EndRecordSize)
	require.Equal(t, 4, SignatureSize)
}

// =============================================================================
// Table Offsets
// =============================================================================

func TestTableOffsets_RoundTrip(t *testing.T) {
	to := TableOffsets{
		CellName:   TableEntry{Offset: 14},
		TextString: TableEntry{Offset: 300},
		PropName:   TableEntry{Strict: true, Offset: 1 << 40},
		PropString: TableEntry{},
		LayerName:  TableEntry{Offset: 77},
		XName:      TableEntry{},
	}

	var buf bytes.Buffer
	require.NoError(t, PutTableOffsets(&buf, &to))

	got, err := ReadTableOffsets(bytes.NewReader(buf.Bytes()))
	require.NoError(t, err)
	require.Equal(t, to, got)
}

func TestTableOffsets_WireOrder(t *testing.T) {
	to := TableOffsets{
		CellName:   TableEntry{Offset: 1},
		TextString: TableEntry{Offset: 2},
		PropName:   TableEntry{Offset: 3},
		PropString: TableEntry{Offset: 4},
		LayerName:  TableEntry{Offset: 5},
		XName:      TableEntry{Offset: 6},
	}

	var buf bytes.Buffer
	require.NoError(t, PutTableOffsets(&buf, &to))

	// Six non-strict pairs with single-byte offsets.
	want := []byte{0, 1, 0, 2, 0, 3, 0, 4, 0, 5, 0, 6}
	assert.Equal(t, want, buf.Bytes())
}

func TestTableOffsets_RejectsBadFlag(t *testing.T) {
	_, err := ReadTableOffsets(bytes.NewReader([]byte{2, 1, 0, 2, 0, 3, 0, 4, 0, 5, 0, 6}))
	require.ErrorIs(t, err, errs.ErrInvalidRecord)
}

func TestTableOffsets_Truncated(t *testing.T) {
	_, err := ReadTableOffsets(bytes.NewReader([]byte{0, 1, 0}))
	require.ErrorIs(t, err, io.ErrUnexpectedEOF)
}

// =============================================================================
// END Padding
// =============================================================================

// Every target size must be hit exactly, including the sizes where the
// minimal length header overshoots and the zero-padded header takes over.
func TestPutPadding_ExactFill(t *testing.T) {
	for avail := 1; avail <= 300; avail++ {
		var buf bytes.Buffer
		require.NoError(t, PutPadding(&buf, avail))
		require.Equal(t, avail, buf.Len(), "avail=%d", avail)

		r := bytes.NewReader(buf.Bytes())
		n, err := encoding.Uint(r)
		require.NoError(t, err)
		require.Equal(t, avail, buf.Len()-r.Len()+int(n), "avail=%d header+payload", avail)
	}
}

func TestPutPadding_PaddedHeaderCase(t *testing.T) {
	// 129 = 2-byte header + 127 payload; the minimal header for 128 is
	// already 2 bytes, so the length integer must be written non-minimal.
	var buf bytes.Buffer
	require.NoError(t, PutPadding(&buf, 129))
	require.Equal(t, []byte{0xFF, 0x00}, buf.Bytes()[:2])

	n, err := encoding.Uint(bytes.NewReader(buf.Bytes()))
	require.NoError(t, err)
	require.Equal(t, uint64(127), n)
}

func TestPutPadding_NoRoom(t *testing.T) {
	var buf bytes.Buffer
	require.ErrorIs(t, PutPadding(&buf, 0), errs.ErrInvalidEndRecord)
	require.ErrorIs(t, PutPadding(&buf, -3), errs.ErrInvalidEndRecord)
}

func TestReadPadding(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, PutPadding(&buf, 100))
	require.NoError(t, ReadPadding(bytes.NewReader(buf.Bytes()), 100))

	// A padding string larger than the declared remainder is malformed.
	require.ErrorIs(t, ReadPadding(bytes.NewReader(buf.Bytes()), 50), errs.ErrInvalidEndRecord)

	// Truncation inside the padding payload.
	require.ErrorIs(t, ReadPadding(bytes.NewReader(buf.Bytes()[:20]), 100), io.ErrUnexpectedEOF)
}

package ntfs

import (
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestApplyFixup(t *testing.T) {
	buf := make([]byte, 1024)

	const usn = uint16(0xAA55)
	binary.LittleEndian.PutUint16(buf[0:2], usn)
	binary.LittleEndian.PutUint16(buf[2:4], 0x1234) // USA slot 1 (sub-sector 0)
	binary.LittleEndian.PutUint16(buf[4:6], 0x5678) // USA slot 2 (sub-sector 1)

	binary.LittleEndian.PutUint16(buf[510:512], usn)
	binary.LittleEndian.PutUint16(buf[1022:1024], usn)

	err := applyFixup(buf, 0, 3, 0)
	require.NoError(t, err)

	require.Equal(t, []byte{0x34, 0x12}, buf[510:512])
	require.Equal(t, []byte{0x78, 0x56}, buf[1022:1024])
}

func TestApplyFixupMismatch(t *testing.T) {
	buf := make([]byte, 1024)
	binary.LittleEndian.PutUint16(buf[0:2], 0xAA55)
	binary.LittleEndian.PutUint16(buf[2:4], 0x1234)
	binary.LittleEndian.PutUint16(buf[4:6], 0x5678)

	binary.LittleEndian.PutUint16(buf[510:512], 0xAA55)
	binary.LittleEndian.PutUint16(buf[1022:1024], 0xDEAD) // corrupted

	err := applyFixup(buf, 0, 3, 7)
	require.Error(t, err)

	var decErr *DecodeError
	require.ErrorAs(t, err, &decErr)
	require.Equal(t, ErrFixup, decErr.Kind)
	require.EqualValues(t, 7, decErr.Record)
}

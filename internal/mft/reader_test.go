package mft

import (
	"encoding/binary"
	"io"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ntfsinv/mftinv/internal/ntfs"
)

// memDevice is a device.Handle backed by an in-memory byte slice, standing
// in for a raw block device in tests (device.Handle is just io.ReaderAt +
// io.Closer, trivially satisfied off a []byte).
type memDevice struct {
	data []byte
}

func (m *memDevice) ReadAt(p []byte, off int64) (int, error) {
	if off >= int64(len(m.data)) {
		return 0, io.EOF
	}
	n := copy(p, m.data[off:])
	if n < len(p) {
		return n, io.EOF
	}
	return n, nil
}

func (m *memDevice) Close() error { return nil }

const (
	testUSAOffset    = 0x2A
	testFirstAttrOff = 0x30
)

// buildRawRecord constructs a valid, fixed-up NTFS record buffer of
// recordSize bytes: FILE signature, USA fixup applied over every 512-byte
// sub-sector, the given flags and base-record reference, followed by attrs
// and an end-of-attributes terminator.
func buildRawRecord(t *testing.T, id uint64, seq uint16, flags uint16, recordSize int, attrs [][]byte) []byte {
	t.Helper()

	usaCount := recordSize/512 + 1
	buf := make([]byte, recordSize)
	copy(buf[0:4], "FILE")
	binary.LittleEndian.PutUint16(buf[0x04:0x06], testUSAOffset)
	binary.LittleEndian.PutUint16(buf[0x06:0x08], uint16(usaCount))
	binary.LittleEndian.PutUint16(buf[0x14:0x16], testFirstAttrOff)
	binary.LittleEndian.PutUint16(buf[0x16:0x18], flags)

	baseRef := (id & 0x0000FFFFFFFFFFFF) | uint64(seq)<<48
	binary.LittleEndian.PutUint64(buf[0x20:0x28], baseRef)

	off := testFirstAttrOff
	for _, a := range attrs {
		copy(buf[off:], a)
		off += len(a)
	}
	binary.LittleEndian.PutUint32(buf[off:off+4], 0xFFFFFFFF)
	binary.LittleEndian.PutUint32(buf[0x18:0x1C], uint32(off+4))

	const usn = uint16(0x0001)
	binary.LittleEndian.PutUint16(buf[testUSAOffset:testUSAOffset+2], usn)
	for k := 0; k < usaCount-1; k++ {
		sectorEnd := (k+1)*512 - 2
		slotOff := testUSAOffset + 2 + 2*k
		copy(buf[slotOff:slotOff+2], buf[sectorEnd:sectorEnd+2])
		binary.LittleEndian.PutUint16(buf[sectorEnd:sectorEnd+2], usn)
	}
	return buf
}

func buildNonResidentDataAttr(allocSize, realSize uint64, runs []byte) []byte {
	const headerSize = 64
	buf := make([]byte, headerSize+len(runs))
	binary.LittleEndian.PutUint32(buf[0:4], 0x80) // $DATA
	binary.LittleEndian.PutUint32(buf[4:8], uint32(len(buf)))
	buf[8] = 1 // non-resident
	binary.LittleEndian.PutUint16(buf[32:34], uint16(headerSize))
	binary.LittleEndian.PutUint64(buf[40:48], allocSize)
	binary.LittleEndian.PutUint64(buf[48:56], realSize)
	copy(buf[headerSize:], runs)
	return buf
}

// buildTestVolume assembles a tiny synthetic volume: a boot sector at offset
// 0, sectorsPerCluster=1 (bytesPerCluster=512), recordSize=1024 (2 clusters
// per record), MFT starting at LCN 2, with numRecords contiguous records
// starting there. Record 0 is $MFT itself, describing its own run list.
func buildTestVolume(t *testing.T, numRecords int) []byte {
	t.Helper()

	const bytesPerCluster = 512
	const recordSize = 1024
	const clustersPerRecord = recordSize / bytesPerCluster
	const mftLCN = 2

	totalClusters := clustersPerRecord * numRecords
	runs := []byte{0x11, byte(totalClusters), byte(mftLCN), 0x00}
	dataAttr := buildNonResidentDataAttr(uint64(totalClusters)*bytesPerCluster, uint64(numRecords)*recordSize, runs)
	record0 := buildRawRecord(t, 0, 1, 1 /* in-use */, recordSize, [][]byte{dataAttr})

	boot := make([]byte, bootSectorSize)
	binary.LittleEndian.PutUint16(boot[offBytesPerSector:offBytesPerSector+2], 512)
	boot[offSectorsPerCluster] = 1
	binary.LittleEndian.PutUint64(boot[offMFTStartLCN:offMFTStartLCN+8], mftLCN)
	// Positive clusters-per-record form: record size = clustersPerRecord *
	// bytesPerCluster, matching recordSize above.
	boot[offClustersPerRecord] = byte(clustersPerRecord)

	vol := make([]byte, mftLCN*bytesPerCluster+numRecords*recordSize)
	copy(vol[0:], boot)
	copy(vol[mftLCN*bytesPerCluster:], record0)

	for n := 1; n < numRecords; n++ {
		rec := buildRawRecord(t, uint64(n), 1, 1, recordSize, nil)
		copy(vol[mftLCN*bytesPerCluster+n*recordSize:], rec)
	}

	return vol
}

func TestBootstrapAndReadRecord(t *testing.T) {
	vol := buildTestVolume(t, 3)
	h := &memDevice{data: vol}

	r, err := Bootstrap(h)
	require.NoError(t, err)
	require.EqualValues(t, 1024, r.BootSector().RecordSize)
	require.EqualValues(t, 3, r.RecordCount())

	buf, err := r.ReadRecord(1)
	require.NoError(t, err)
	require.Equal(t, "FILE", string(buf[0:4]))
}

func TestBootstrapReadRecordOutOfRange(t *testing.T) {
	vol := buildTestVolume(t, 2)
	h := &memDevice{data: vol}

	r, err := Bootstrap(h)
	require.NoError(t, err)

	_, err = r.ReadRecord(r.RecordCount())
	require.Error(t, err)
}

func TestRecordsIteratesAllAndSkipsBadOnes(t *testing.T) {
	vol := buildTestVolume(t, 3)
	// Corrupt record 2's signature so it fails to decode but doesn't stop
	// iteration.
	const bytesPerCluster, recordSize, mftLCN = 512, 1024, 2
	offset := mftLCN*bytesPerCluster + 2*recordSize
	vol[offset] = 'X'

	h := &memDevice{data: vol}
	r, err := Bootstrap(h)
	require.NoError(t, err)

	var ok, failed int
	for id, res := range r.Records() {
		if res.Err != nil {
			failed++
			continue
		}
		require.NotNil(t, res.Record)
		ok++
		_ = id
	}
	require.Equal(t, 2, ok)
	require.Equal(t, 1, failed)
}

func TestSpliceRunsSparseReturnsZeroes(t *testing.T) {
	h := &memDevice{data: make([]byte, 4096)}
	runs := []ntfs.Run{{LCN: 0, Length: 2, Sparse: true}}
	stream, err := spliceRuns(h, runs, 512)
	require.NoError(t, err)

	buf := make([]byte, 1024)
	n, err := stream.Read(buf)
	require.NoError(t, err)
	require.Equal(t, 1024, n)
	for _, b := range buf {
		require.Zero(t, b)
	}
}

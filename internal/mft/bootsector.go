// Package mft bootstraps and reads the NTFS Master File Table: decoding the
// boot sector, locating MFT record 0, and exposing random-access and
// iterator primitives over the record stream.
package mft

import (
	"encoding/binary"
	"fmt"
)

// BootSector holds the fields of the NTFS volume boot record relevant to
// locating and reading the MFT.
type BootSector struct {
	BytesPerSector    uint16
	SectorsPerCluster uint8
	BytesPerCluster   uint32
	MFTStartLCN       uint64
	RecordSize        uint32
	ClustersPerRecord int8 // as stored on disk; negative means log2(size)
}

const bootSectorSize = 512

const (
	offBytesPerSector    = 0x0B
	offSectorsPerCluster = 0x0D
	offMFTStartLCN       = 0x30
	offClustersPerRecord = 0x40
)

// DecodeBootSector parses sector 0 of an NTFS volume.
func DecodeBootSector(sector []byte) (*BootSector, error) {
	if len(sector) < bootSectorSize {
		return nil, fmt.Errorf("mft: boot sector too short: %d bytes", len(sector))
	}

	bs := &BootSector{
		BytesPerSector:    binary.LittleEndian.Uint16(sector[offBytesPerSector : offBytesPerSector+2]),
		SectorsPerCluster: sector[offSectorsPerCluster],
		MFTStartLCN:       binary.LittleEndian.Uint64(sector[offMFTStartLCN : offMFTStartLCN+8]),
		ClustersPerRecord: int8(sector[offClustersPerRecord]),
	}

	if bs.BytesPerSector == 0 || bs.SectorsPerCluster == 0 {
		return nil, fmt.Errorf("mft: implausible boot sector (bytes/sector=%d, sectors/cluster=%d)", bs.BytesPerSector, bs.SectorsPerCluster)
	}

	bs.BytesPerCluster = uint32(bs.BytesPerSector) * uint32(bs.SectorsPerCluster)

	if bs.ClustersPerRecord < 0 {
		bs.RecordSize = 1 << uint(-bs.ClustersPerRecord)
	} else {
		bs.RecordSize = uint32(bs.ClustersPerRecord) * bs.BytesPerCluster
	}
	if bs.RecordSize == 0 {
		return nil, fmt.Errorf("mft: implausible record size derived from boot sector")
	}

	return bs, nil
}

// MFTStartOffset is the byte offset of MFT record 0 on the volume.
func (bs *BootSector) MFTStartOffset() int64 {
	return int64(bs.MFTStartLCN) * int64(bs.BytesPerCluster)
}

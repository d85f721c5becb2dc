package ntfs

import (
	"encoding/binary"
	"fmt"
)

const subSectorSize = 512

// applyFixup undoes the NTFS Update Sequence Array protection scheme over
// buf in place: the last two bytes of every 512-byte sub-sector were
// overwritten on disk with a shared update-sequence number (USN); this
// restores the original bytes, which are stashed in the USA slots that
// immediately follow the USN at usaOffset.
//
// A mismatch between a sub-sector's trailing bytes and the USN indicates a
// torn write (or a corrupt/foreign record) and is reported as ErrFixup; the
// caller drops the record but keeps iterating.
func applyFixup(buf []byte, usaOffset, usaCount int, record uint64) error {
	if usaCount == 0 {
		return nil
	}
	if usaOffset+2*usaCount > len(buf) {
		return newDecodeError(ErrFixup, record, fmt.Errorf("update sequence array out of bounds"))
	}

	usn := binary.LittleEndian.Uint16(buf[usaOffset : usaOffset+2])
	subSectors := usaCount - 1

	for k := 0; k < subSectors; k++ {
		sectorEnd := (k+1)*subSectorSize - 2
		if sectorEnd+2 > len(buf) {
			return newDecodeError(ErrFixup, record, fmt.Errorf("sub-sector %d extends past record", k))
		}

		got := binary.LittleEndian.Uint16(buf[sectorEnd : sectorEnd+2])
		if got != usn {
			return newDecodeError(ErrFixup, record, fmt.Errorf("sub-sector %d: usn mismatch (want 0x%04x, got 0x%04x)", k, usn, got))
		}

		slotOff := usaOffset + 2 + 2*k
		copy(buf[sectorEnd:sectorEnd+2], buf[slotOff:slotOff+2])
	}
	return nil
}

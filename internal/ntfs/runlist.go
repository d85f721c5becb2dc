package ntfs

import "fmt"

// Run is a single extent of a non-resident attribute's value: Length
// contiguous clusters starting at absolute logical cluster number LCN.
// A Run with LCN == 0 and Sparse == true is a zero-filled hole that
// contributes to logical but not allocated size.
type Run struct {
	LCN    int64
	Length uint64
	Sparse bool
}

// decodeRunList parses an NTFS data-run list: a sequence of
// (header byte, length field, offset field) triples terminated by a 0x00
// header byte. The header's low nibble is the byte width of the run's
// cluster count, the high nibble is the byte width of the signed LCN delta.
// LCN deltas are relative to the previous run's LCN and are accumulated into
// absolute cluster numbers; a zero-width offset field (high nibble == 0)
// marks a sparse run.
func decodeRunList(data []byte) ([]Run, error) {
	var runs []Run
	var lcn int64
	off := 0

	for off < len(data) {
		header := data[off]
		off++
		if header == 0 {
			return runs, nil
		}

		lenBytes := int(header & 0x0F)
		offBytes := int(header>>4) & 0x0F

		if off+lenBytes+offBytes > len(data) {
			return nil, fmt.Errorf("run list truncated at offset %d", off)
		}

		length := readUintLE(data[off : off+lenBytes])
		off += lenBytes

		if offBytes == 0 {
			// Sparse hole: no LCN delta on disk, sentinel LCN 0.
			runs = append(runs, Run{LCN: 0, Length: length, Sparse: true})
			continue
		}

		delta := readIntLE(data[off : off+offBytes])
		off += offBytes
		lcn += delta

		runs = append(runs, Run{LCN: lcn, Length: length})
	}
	return runs, nil
}

func readUintLE(b []byte) uint64 {
	var v uint64
	for i, c := range b {
		v |= uint64(c) << (8 * uint(i))
	}
	return v
}

// readIntLE decodes a little-endian two's-complement signed integer of
// arbitrary byte width (NTFS run-list LCN deltas are 1-8 bytes), sign
// extending from the most significant byte present.
func readIntLE(b []byte) int64 {
	v := readUintLE(b)
	if len(b) == 0 {
		return 0
	}
	signBit := uint64(1) << (8*uint(len(b)) - 1)
	if v&signBit != 0 {
		v |= ^uint64(0) << (8 * uint(len(b)))
	}
	return int64(v)
}

// Package ntfs decodes individual NTFS MFT file records: the fixup pass,
// the record header, and the attribute stream. It has
// no notion of the MFT as a whole (that's internal/mft) or of paths and
// inventories (that's internal/inventory).
package ntfs

import (
	"encoding/binary"
	"fmt"
)

// Attribute type codes relevant to the core; all others are skipped by
// length during the attribute walk.
const (
	attrStandardInformation uint32 = 0x10
	attrAttributeList       uint32 = 0x20
	attrFileName            uint32 = 0x30
	attrData                uint32 = 0x80
	attrEnd                 uint32 = 0xFFFFFFFF
)

// RecordFlags mirrors the 16-bit flags field in an NTFS record header.
type RecordFlags uint16

const (
	FlagInUse      RecordFlags = 1 << 0
	FlagIsDir      RecordFlags = 1 << 1
	FlagExtension  RecordFlags = 1 << 2 // reserved by NTFS, unused by the core
	FlagSpecialIdx RecordFlags = 1 << 3 // reserved by NTFS, unused by the core
)

func (f RecordFlags) InUse() bool       { return f&FlagInUse != 0 }
func (f RecordFlags) IsDirectory() bool { return f&FlagIsDir != 0 }

// DataAttr summarises a single $DATA attribute instance: its stream name
// (empty for the unnamed default stream), and the logical/allocated size
// pair retained for aggregation. The run list is decoded only when the
// caller calls Runs (internal/mft does so for $MFT's own unnamed $DATA
// attribute; ordinary file records never decode it).
type DataAttr struct {
	Name          string
	LogicalSize   uint64
	AllocatedSize uint64
	NonResident   bool

	runsValue []byte // raw run-list bytes, kept only for non-resident streams
}

// Runs decodes and returns this attribute's run list. It is a method rather
// than a pre-decoded field because the core only ever needs it for the
// $MFT's own $DATA attribute; decoding it eagerly for every file's every
// data stream would be wasted work at scale.
func (d DataAttr) Runs() ([]Run, error) {
	if !d.NonResident || d.runsValue == nil {
		return nil, nil
	}
	return decodeRunList(d.runsValue)
}

// Record is the structured result of decoding one raw MFT record buffer.
type Record struct {
	ID             uint64
	SequenceNumber uint16
	Flags          RecordFlags
	Parents        []FileReference
	Names          []FileName
	Data           []DataAttr
}

// BestName returns the display name chosen by the namespace-priority
// policy, and the parent this name is filed under.
func (r *Record) BestName() (FileName, bool) {
	return bestFileName(r.Names)
}

// RealSize sums the logical size of every $DATA attribute, the "real size"
// used for both the file's own inventory entry and ancestor aggregation.
func (r *Record) RealSize() uint64 {
	var total uint64
	for _, d := range r.Data {
		total += d.LogicalSize
	}
	return total
}

// AllocSize sums the allocated size of every $DATA attribute.
func (r *Record) AllocSize() uint64 {
	var total uint64
	for _, d := range r.Data {
		total += d.AllocatedSize
	}
	return total
}

const (
	headerUSAOffset     = 0x04
	headerUSACount      = 0x06
	headerFirstAttrOff  = 0x14
	headerFlags         = 0x16
	headerUsedSize      = 0x18
	headerBaseReference = 0x20
	minRecordHeaderSize = 0x30
)

var fileSignature = [4]byte{'F', 'I', 'L', 'E'}

// Decode applies the per-sector fixup, parses the record header, and walks
// the attribute stream of one raw record buffer. fallbackID is the virtual
// record number the caller read the buffer from; it is used only when the
// header's own base-record reference can't supply one.
//
// Decode never returns a partially-filled Record on error: failures are
// either ErrFixup (buf is unusable) or ErrSignature/ErrAttribute (buf parses
// enough to name the failing record but is dropped by the caller).
func Decode(buf []byte, fallbackID uint64) (*Record, error) {
	if len(buf) < minRecordHeaderSize {
		return nil, newDecodeError(ErrSignature, fallbackID, fmt.Errorf("record buffer too short: %d bytes", len(buf)))
	}

	usaOffset := int(binary.LittleEndian.Uint16(buf[headerUSAOffset : headerUSAOffset+2]))
	usaCount := int(binary.LittleEndian.Uint16(buf[headerUSACount : headerUSACount+2]))
	if err := applyFixup(buf, usaOffset, usaCount, fallbackID); err != nil {
		return nil, err
	}

	if string(buf[0:4]) != string(fileSignature[:]) {
		return nil, newDecodeError(ErrSignature, fallbackID, fmt.Errorf("bad magic %q", buf[0:4]))
	}

	flags := RecordFlags(binary.LittleEndian.Uint16(buf[headerFlags : headerFlags+2]))
	if !flags.InUse() {
		return nil, newDecodeError(ErrSignature, fallbackID, fmt.Errorf("record not in use"))
	}

	firstAttrOffset := int(binary.LittleEndian.Uint16(buf[headerFirstAttrOff : headerFirstAttrOff+2]))
	usedSize := int(binary.LittleEndian.Uint32(buf[headerUsedSize : headerUsedSize+4]))
	if usedSize > len(buf) {
		usedSize = len(buf)
	}

	baseRef := binary.LittleEndian.Uint64(buf[headerBaseReference : headerBaseReference+8])
	id := baseRef & 0x0000FFFFFFFFFFFF
	seq := uint16(baseRef >> 48)
	if id == 0 {
		id = fallbackID
	}

	rec := &Record{ID: id, SequenceNumber: seq, Flags: flags}

	if err := walkAttributes(buf, firstAttrOffset, usedSize, rec); err != nil {
		return nil, err
	}
	return rec, nil
}

const (
	attrHeaderType        = 0x00
	attrHeaderLength      = 0x04
	attrHeaderNonResident = 0x08
	attrHeaderNameLength  = 0x09
	attrHeaderNameOffset  = 0x0A
	attrHeaderMinSize     = 0x10
	residentValueLength   = 0x10
	residentValueOffset   = 0x14
	nonResidentStartVCN   = 0x10
	nonResidentLastVCN    = 0x18
	nonResidentRunOffset  = 0x20
	nonResidentAllocSize  = 0x28
	nonResidentRealSize   = 0x30
	nonResidentHeaderSize = 0x40
)

func walkAttributes(buf []byte, start, used int, rec *Record) error {
	off := start
	for off+4 <= used {
		attrType := binary.LittleEndian.Uint32(buf[off : off+4])
		if attrType == attrEnd {
			break
		}
		if off+attrHeaderMinSize > len(buf) {
			return newDecodeError(ErrAttribute, rec.ID, fmt.Errorf("attribute header truncated at %d", off))
		}

		length := int(binary.LittleEndian.Uint32(buf[off+attrHeaderLength : off+attrHeaderLength+4]))
		if length <= 0 || off+length > len(buf) {
			return newDecodeError(ErrAttribute, rec.ID, fmt.Errorf("attribute length %d out of bounds at offset %d", length, off))
		}

		nonResident := buf[off+attrHeaderNonResident] != 0
		nameLength := int(buf[off+attrHeaderNameLength])
		nameOffset := int(binary.LittleEndian.Uint16(buf[off+attrHeaderNameOffset : off+attrHeaderNameOffset+2]))

		var name string
		if nameLength > 0 {
			n, err := decodeAttrName(buf[off:off+length], nameOffset, nameLength)
			if err != nil {
				return newDecodeError(ErrAttribute, rec.ID, err)
			}
			name = n
		}

		switch attrType {
		case attrStandardInformation:
			// Ignored.
		case attrAttributeList:
			// Extension records referenced from here are not dereferenced;
			// a record whose attributes overflowed may under-report sizes
			// or lack a name.
		case attrFileName:
			value, err := residentValue(buf, off, length)
			if err != nil {
				return newDecodeError(ErrAttribute, rec.ID, err)
			}
			fn, err := decodeFileNameAttribute(value)
			if err != nil {
				return newDecodeError(ErrAttribute, rec.ID, err)
			}
			rec.Names = append(rec.Names, fn)
			rec.Parents = append(rec.Parents, fn.Parent)
		case attrData:
			d, err := decodeDataAttribute(buf, off, length, nonResident, name)
			if err != nil {
				return newDecodeError(ErrAttribute, rec.ID, err)
			}
			rec.Data = append(rec.Data, d)
		}

		off += length
	}
	return nil
}

func decodeAttrName(attr []byte, nameOffset, nameLength int) (string, error) {
	end := nameOffset + nameLength*2
	if end > len(attr) {
		return "", fmt.Errorf("attribute name out of bounds")
	}
	units := make([]uint16, nameLength)
	for i := 0; i < nameLength; i++ {
		units[i] = binary.LittleEndian.Uint16(attr[nameOffset+2*i : nameOffset+2*i+2])
	}
	return decodeUTF16(units), nil
}

func residentValue(buf []byte, off, length int) ([]byte, error) {
	if off+residentValueOffset+6 > len(buf) {
		return nil, fmt.Errorf("resident attribute header truncated")
	}
	valueLength := int(binary.LittleEndian.Uint32(buf[off+residentValueLength : off+residentValueLength+4]))
	valueOffset := int(binary.LittleEndian.Uint16(buf[off+residentValueOffset : off+residentValueOffset+2]))
	start := off + valueOffset
	end := start + valueLength
	if valueOffset < 0 || end > off+length || end > len(buf) {
		return nil, fmt.Errorf("resident value out of bounds")
	}
	return buf[start:end], nil
}

func decodeDataAttribute(buf []byte, off, length int, nonResident bool, name string) (DataAttr, error) {
	if !nonResident {
		value, err := residentValue(buf, off, length)
		if err != nil {
			return DataAttr{}, err
		}
		size := uint64(len(value))
		return DataAttr{
			Name:          name,
			LogicalSize:   size,
			AllocatedSize: size,
			NonResident:   false,
		}, nil
	}

	if off+nonResidentHeaderSize > len(buf) {
		return DataAttr{}, fmt.Errorf("non-resident attribute header truncated")
	}

	allocSize := binary.LittleEndian.Uint64(buf[off+nonResidentAllocSize : off+nonResidentAllocSize+8])
	realSize := binary.LittleEndian.Uint64(buf[off+nonResidentRealSize : off+nonResidentRealSize+8])
	runOffset := int(binary.LittleEndian.Uint16(buf[off+nonResidentRunOffset : off+nonResidentRunOffset+2]))

	runStart := off + runOffset
	runEnd := off + length
	var runsValue []byte
	if runStart >= off && runStart <= runEnd && runEnd <= len(buf) {
		runsValue = buf[runStart:runEnd]
	}

	return DataAttr{
		Name:          name,
		LogicalSize:   realSize,
		AllocatedSize: allocSize,
		NonResident:   true,
		runsValue:     runsValue,
	}, nil
}

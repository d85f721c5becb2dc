package ntfs

import (
	"encoding/binary"
	"fmt"
	"unicode/utf16"
)

// Namespace is the encoding family of a $FILE_NAME entry.
type Namespace uint8

const (
	NamespacePOSIX Namespace = 0
	NamespaceWIN32 Namespace = 1
	NamespaceDOS   Namespace = 2
	// NamespaceWIN32AndDOS marks a name valid as both the long (WIN32) and
	// short (DOS) form, e.g. a name that already fits 8.3.
	NamespaceWIN32AndDOS Namespace = 3
)

// priority ranks namespaces for best-filename selection: higher
// wins. WIN32+DOS beats WIN32 beats POSIX beats plain DOS.
func (n Namespace) priority() int {
	switch n {
	case NamespaceWIN32AndDOS:
		return 3
	case NamespaceWIN32:
		return 2
	case NamespacePOSIX:
		return 1
	case NamespaceDOS:
		return 0
	default:
		return -1
	}
}

// FileReference is an NTFS file reference: a 48-bit MFT segment number plus
// a 16-bit sequence number used to detect stale references after reuse.
type FileReference struct {
	SegmentNumber  uint64
	SequenceNumber uint16
}

func decodeFileReference(raw uint64) FileReference {
	return FileReference{
		SegmentNumber:  raw & 0x0000FFFFFFFFFFFF,
		SequenceNumber: uint16(raw >> 48),
	}
}

// FileName is a single $FILE_NAME attribute value: the parent directory
// reference and the name in one of the four NTFS namespaces.
type FileName struct {
	Parent    FileReference
	Namespace Namespace
	Name      string
}

const fileNameHeaderSize = 0x42

// decodeFileNameAttribute parses a $FILE_NAME attribute's resident value.
// Layout: parent file reference (8 bytes) @0x00, timestamps and size fields
// (unused by the core) up to 0x40, name length in UTF-16 code units @0x40,
// namespace @0x41, then the UTF-16LE name itself.
func decodeFileNameAttribute(value []byte) (FileName, error) {
	if len(value) < fileNameHeaderSize {
		return FileName{}, fmt.Errorf("$FILE_NAME value too short: %d bytes", len(value))
	}

	parentRaw := binary.LittleEndian.Uint64(value[0:8])
	nameLen := int(value[0x40])
	namespace := Namespace(value[0x41])

	nameBytes := value[fileNameHeaderSize:]
	wantBytes := nameLen * 2
	if len(nameBytes) < wantBytes {
		return FileName{}, fmt.Errorf("$FILE_NAME name truncated: want %d bytes, have %d", wantBytes, len(nameBytes))
	}

	units := make([]uint16, nameLen)
	for i := 0; i < nameLen; i++ {
		units[i] = binary.LittleEndian.Uint16(nameBytes[2*i : 2*i+2])
	}

	return FileName{
		Parent:    decodeFileReference(parentRaw),
		Namespace: namespace,
		Name:      string(utf16.Decode(units)),
	}, nil
}

func decodeUTF16(units []uint16) string {
	return string(utf16.Decode(units))
}

// bestFileName implements the namespace-priority selection: pick
// the highest-priority namespace; if that winner is DOS and a non-DOS name
// also exists, prefer the non-DOS one, since a short name is never the
// display form when a long form is present.
func bestFileName(names []FileName) (FileName, bool) {
	if len(names) == 0 {
		return FileName{}, false
	}

	best := names[0]
	for _, n := range names[1:] {
		if n.Namespace.priority() > best.Namespace.priority() {
			best = n
		}
	}

	if best.Namespace == NamespaceDOS {
		for _, n := range names {
			if n.Namespace != NamespaceDOS {
				return n, true
			}
		}
	}
	return best, true
}

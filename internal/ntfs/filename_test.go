package ntfs

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestBestFileNamePrefersLongOverDOS(t *testing.T) {
	names := []FileName{
		{Namespace: NamespaceDOS, Name: "README~1"},
		{Namespace: NamespaceWIN32, Name: "README.md"},
	}

	best, ok := bestFileName(names)
	require.True(t, ok)
	require.Equal(t, "README.md", best.Name)
}

func TestBestFileNamePriorityOrder(t *testing.T) {
	combined := FileName{Namespace: NamespaceWIN32AndDOS, Name: "a.txt"}
	win32 := FileName{Namespace: NamespaceWIN32, Name: "b.txt"}
	posix := FileName{Namespace: NamespacePOSIX, Name: "c.txt"}

	best, _ := bestFileName([]FileName{win32, posix, combined})
	require.Equal(t, "a.txt", best.Name)

	best, _ = bestFileName([]FileName{win32, posix})
	require.Equal(t, "b.txt", best.Name)
}

func TestBestFileNameEmpty(t *testing.T) {
	_, ok := bestFileName(nil)
	require.False(t, ok)
}

func TestDecodeFileReference(t *testing.T) {
	raw := uint64(7)<<48 | 0x2A // seq=7, segment=0x2A
	ref := decodeFileReference(raw)
	require.EqualValues(t, 0x2A, ref.SegmentNumber)
	require.EqualValues(t, 7, ref.SequenceNumber)
}

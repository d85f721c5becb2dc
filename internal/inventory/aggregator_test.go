package inventory

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ntfsinv/mftinv/internal/ntfs"
)

func fileRecord(realSize uint64) *ntfs.Record {
	return &ntfs.Record{
		Flags: ntfs.FlagInUse,
		Data:  []ntfs.DataAttr{{LogicalSize: realSize, AllocatedSize: realSize}},
	}
}

// TestAggregation adds three files under C:\A and C:\A\B and expects
// real-size totals to propagate to every ancestor directory.
func TestAggregation(t *testing.T) {
	agg := NewAggregator()

	agg.Add(fileRecord(100), `C:\A\x`)
	agg.Add(fileRecord(200), `C:\A\y`)
	agg.Add(fileRecord(50), `C:\A\B\z`)

	inv := agg.Inventory()

	require.EqualValues(t, 350, inv[`C:\A`].RealSize)
	require.True(t, inv[`C:\A`].IsDir)

	require.EqualValues(t, 50, inv[`C:\A\B`].RealSize)
	require.True(t, inv[`C:\A\B`].IsDir)

	require.EqualValues(t, 100, inv[`C:\A\x`].RealSize)
	require.False(t, inv[`C:\A\x`].IsDir)
}

// A directory's own (typically zero-size) record must not overwrite the
// real-size total a child already accumulated into its synthesized
// placeholder entry.
func TestAggregationDirectoryRecordDoesNotOverwritePlaceholder(t *testing.T) {
	agg := NewAggregator()

	agg.Add(fileRecord(100), `C:\A\x`)

	dirRec := &ntfs.Record{Flags: ntfs.FlagInUse | ntfs.FlagIsDir}
	agg.Add(dirRec, `C:\A`)

	inv := agg.Inventory()
	require.EqualValues(t, 100, inv[`C:\A`].RealSize)
	require.True(t, inv[`C:\A`].IsDir)
}

func TestAggregationEntryNames(t *testing.T) {
	agg := NewAggregator()
	agg.Add(fileRecord(10), `C:\A\B\file.txt`)

	inv := agg.Inventory()
	require.Equal(t, "file.txt", inv[`C:\A\B\file.txt`].Name)
	require.Equal(t, "B", inv[`C:\A\B`].Name)
	require.Equal(t, "A", inv[`C:\A`].Name)
}

// TestAggregationReachesDriveRoot confirms the ancestor walk climbs all the
// way to the drive root itself (a bare "C:" has no further backslash to
// strip, so it is the last ancestor inserted before the walk terminates).
func TestAggregationReachesDriveRoot(t *testing.T) {
	agg := NewAggregator()
	agg.Add(fileRecord(10), `C:\file.txt`)

	inv := agg.Inventory()
	require.Len(t, inv, 2)
	require.EqualValues(t, 10, inv[`C:`].RealSize)
	require.True(t, inv[`C:`].IsDir)
}

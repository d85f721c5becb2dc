package inventory

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ntfsinv/mftinv/internal/ntfs"
)

func rec(id uint64, name string, parent uint64, isDir bool) *ntfs.Record {
	var flags ntfs.RecordFlags = ntfs.FlagInUse
	if isDir {
		flags |= ntfs.FlagIsDir
	}
	return &ntfs.Record{
		ID:    id,
		Flags: flags,
		Names: []ntfs.FileName{{
			Parent: ntfs.FileReference{SegmentNumber: parent},
			Name:   name,
		}},
	}
}

// TestResolvePath walks a three-level chain: root (id 5) is its own parent,
// dir 30 ("Users") is parented at root, file 42 ("notes.txt") is parented
// at 30.
func TestResolvePath(t *testing.T) {
	records := map[uint64]*ntfs.Record{
		RootRecordID: rec(RootRecordID, "", RootRecordID, true),
		30:           rec(30, "Users", RootRecordID, true),
		42:           rec(42, "notes.txt", 30, false),
	}

	r := NewResolver(records, `C:\`)

	path, ok := r.Resolve(42)
	require.True(t, ok)
	require.Equal(t, `C:\Users\notes.txt`, path)

	rootPath, ok := r.Resolve(RootRecordID)
	require.True(t, ok)
	require.Equal(t, `C:`, rootPath)
}

func TestResolveMissingParentIsUnresolved(t *testing.T) {
	records := map[uint64]*ntfs.Record{
		42: rec(42, "orphan.txt", 999, false), // parent 999 doesn't exist
	}

	r := NewResolver(records, `C:\`)
	_, ok := r.Resolve(42)
	require.False(t, ok)
}

// TestResolveCycleIsBounded guards against a malformed non-root cycle: two
// records that parent each other must not hang Resolve.
func TestResolveCycleIsBounded(t *testing.T) {
	records := map[uint64]*ntfs.Record{
		10:           rec(10, "a", 11, true),
		11:           rec(11, "b", 10, true),
		12:           rec(12, "c", RootRecordID, false),
		RootRecordID: rec(RootRecordID, "", RootRecordID, true),
	}

	r := NewResolver(records, `C:\`)
	_, ok := r.Resolve(10)
	require.False(t, ok)

	// A subsequent, unrelated resolve on the same Resolver must still work:
	// the visited set is reset between calls.
	path, ok := r.Resolve(12)
	require.True(t, ok)
	require.Equal(t, `C:\c`, path)
}

func TestResolveRootHasNoTrailingSlash(t *testing.T) {
	records := map[uint64]*ntfs.Record{
		RootRecordID: rec(RootRecordID, "", RootRecordID, true),
	}
	r := NewResolver(records, `D:\`)
	path, ok := r.Resolve(RootRecordID)
	require.True(t, ok)
	require.Equal(t, `D:`, path)
}

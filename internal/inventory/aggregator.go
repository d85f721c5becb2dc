package inventory

import (
	"strings"

	"github.com/ntfsinv/mftinv/internal/ntfs"
)

// Aggregator streams decoded records into a path-keyed Inventory, creating
// directory entries on demand and propagating each file's real size up the
// ancestor chain by string-suffix stripping rather than walking parent ids a
// second time. This stays robust for a record whose parent id can't be
// resolved, since the path already encodes the ancestry.
//
// An Aggregator must process each record exactly once: processing the same
// record twice double-counts its contribution to ancestor totals.
type Aggregator struct {
	inv Inventory
}

// NewAggregator returns an aggregator building into a fresh Inventory.
func NewAggregator() *Aggregator {
	return &Aggregator{inv: Inventory{}}
}

// Inventory returns the inventory built so far.
func (a *Aggregator) Inventory() Inventory { return a.inv }

// Add inserts rec's file entry at path and propagates its real size to
// every ancestor directory entry, creating them on demand.
func (a *Aggregator) Add(rec *ntfs.Record, path string) {
	realSize := rec.RealSize()
	allocSize := rec.AllocSize()
	isDir := rec.Flags.IsDirectory()

	entry, exists := a.inv[path]
	if !exists {
		name := path
		if idx := strings.LastIndex(path, `\`); idx >= 0 {
			name = path[idx+1:]
		}
		entry = &Entry{Name: name, Path: path, RealSize: realSize, AllocSize: allocSize, IsDir: isDir}
		a.inv[path] = entry
	} else {
		// A directory's own record is sometimes decoded after a child
		// synthesised its placeholder entry first. Keep the placeholder's
		// accumulated real-size rather than overwrite it with the
		// directory record's own (typically zero) size, and only promote
		// IsDir, never demote it.
		if isDir {
			entry.IsDir = true
		}
		entry.AllocSize = allocSize
	}

	a.propagate(path, realSize)
}

// propagate walks path upward by stripping the last `\<component>`, adding
// realSize to each ancestor directory's real-size total and creating
// synthetic directory entries as needed. It stops once the remaining path
// contains no backslash or equals the root sentinel.
func (a *Aggregator) propagate(path string, realSize uint64) {
	for {
		idx := strings.LastIndex(path, `\`)
		if idx < 0 {
			return
		}
		ancestor := path[:idx]
		if ancestor == "" || ancestor == `\` {
			return
		}

		entry, exists := a.inv[ancestor]
		if !exists {
			name := ancestor
			if ai := strings.LastIndex(ancestor, `\`); ai >= 0 {
				name = ancestor[ai+1:]
			}
			entry = &Entry{Name: name, Path: ancestor, IsDir: true, RealSize: realSize}
			a.inv[ancestor] = entry
		} else {
			entry.RealSize += realSize
			entry.IsDir = true
		}

		path = ancestor
	}
}

package inventory

import (
	"strings"

	"github.com/boljen/go-bitmap"

	"github.com/ntfsinv/mftinv/internal/ntfs"
)

// RootRecordID is the well-known NTFS record number of the volume root
// directory, which lists itself as its own parent.
const RootRecordID = 5

// Resolver computes canonical paths for decoded records by walking each
// record's parent chain to the root. It owns a single reusable
// cycle-detection bitmap sized to the record set; a bitmap indexed by
// record id is far denser than a map[uint64]bool, which matters because
// Resolve is called once per record in a multi-million-record volume.
type Resolver struct {
	records   map[uint64]*ntfs.Record
	mountPath string

	visited     bitmap.Bitmap
	visitedSize uint64
	touched     []uint64
}

// NewResolver builds a resolver over the complete record map produced by a
// volume's MFT scan, rooting resolved paths at mountPath (e.g. `C:\`).
func NewResolver(records map[uint64]*ntfs.Record, mountPath string) *Resolver {
	var maxID uint64
	for id := range records {
		if id > maxID {
			maxID = id
		}
	}

	return &Resolver{
		records:     records,
		mountPath:   strings.TrimSuffix(mountPath, `\`),
		visited:     bitmap.New(int(maxID) + 1),
		visitedSize: maxID + 1,
	}
}

// Resolve walks id's parent chain to the root and returns the case-preserved,
// backslash-separated absolute path rooted at the resolver's mount path.
// It returns false if an intermediate parent is missing or the chain cycles
// before reaching the root; the aggregator skips such records rather than
// treating them as fatal.
func (r *Resolver) Resolve(id uint64) (string, bool) {
	defer r.resetVisited()

	var parts []string
	current := id

	for {
		if !r.markVisited(current) {
			return "", false // cycle: current already seen in this walk
		}

		rec, ok := r.records[current]
		if !ok {
			return "", false // missing intermediate parent
		}

		name, ok := rec.BestName()
		if !ok {
			if current == RootRecordID {
				break
			}
			return "", false
		}

		if name.Parent.SegmentNumber == current {
			// Self-referential root: stop without appending its own name.
			break
		}

		parts = append(parts, name.Name)
		current = name.Parent.SegmentNumber
	}

	if len(parts) == 0 {
		return r.mountPath, true
	}

	// parts were appended leaf-first; reverse in place before joining.
	for i, j := 0, len(parts)-1; i < j; i, j = i+1, j-1 {
		parts[i], parts[j] = parts[j], parts[i]
	}
	return r.mountPath + `\` + strings.Join(parts, `\`), true
}

// markVisited returns false if idx was already visited during this Resolve
// call (a cycle), otherwise marks it visited and returns true. IDs outside
// the bitmap's range (can't happen for records genuinely present in the
// map, but guards against a corrupt parent reference) are tracked with the
// plain touched slice instead of the bitmap.
func (r *Resolver) markVisited(idx uint64) bool {
	if idx >= r.visitedSize {
		for _, t := range r.touched {
			if t == idx {
				return false
			}
		}
		r.touched = append(r.touched, idx)
		return true
	}

	if r.visited.Get(int(idx)) {
		return false
	}
	r.visited.Set(int(idx), true)
	r.touched = append(r.touched, idx)
	return true
}

func (r *Resolver) resetVisited() {
	for _, idx := range r.touched {
		if idx < r.visitedSize {
			r.visited.Set(int(idx), false)
		}
	}
	r.touched = r.touched[:0]
}

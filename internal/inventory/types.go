// Package inventory resolves decoded MFT records into full paths and
// aggregates them into a path-keyed inventory with propagated directory
// sizes.
package inventory

// Entry is one file or directory in the inventory.
type Entry struct {
	Name      string
	Path      string
	RealSize  uint64
	AllocSize uint64
	IsDir     bool
}

// Inventory maps a volume-rooted path to its entry. Keys are unique.
type Inventory map[string]*Entry

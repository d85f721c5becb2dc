//go:build !windows

package device

import (
	"fmt"
	"os"
)

// osHandle backs Handle with a plain *os.File. The production target is
// Windows, but volume images and loopback block devices can be read the
// same way on any OS, which keeps the MFT pipeline buildable and testable
// off Windows.
type osHandle struct {
	f      *os.File
	closed bool
}

// Open opens path (a regular file, disk image, or a Unix block device) for
// exclusive positional reads.
func Open(path string) (Handle, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("device: open %q: %w", path, err)
	}
	return &osHandle{f: f}, nil
}

func (d *osHandle) ReadAt(p []byte, off int64) (int, error) {
	return d.f.ReadAt(p, off)
}

func (d *osHandle) Close() error {
	if d.closed {
		return nil
	}
	d.closed = true
	return d.f.Close()
}

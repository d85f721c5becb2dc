//go:build windows

package device

import (
	"fmt"
	"syscall"

	"golang.org/x/sys/windows"
)

// windowsHandle wraps a raw volume/device handle. Reads on a raw volume
// handle must be sector-aligned, which the MFT reader and bootstrap code
// already guarantee by only ever reading whole boot sectors, whole records,
// or whole clusters.
type windowsHandle struct {
	h      windows.Handle
	closed bool
}

// Open acquires exclusive read access to a volume or physical device path
// (e.g. `\\.\C:` or `\\.\PhysicalDrive0`). The handle must be released with
// Close on every exit path, including error returns upstream of Open's
// caller.
func Open(path string) (Handle, error) {
	h, err := windows.CreateFile(
		windows.StringToUTF16Ptr(path),
		windows.GENERIC_READ,
		windows.FILE_SHARE_READ|windows.FILE_SHARE_WRITE,
		nil,
		windows.OPEN_EXISTING,
		0,
		0,
	)
	if err != nil {
		return nil, fmt.Errorf("device: open %q: %w", path, err)
	}
	return &windowsHandle{h: h}, nil
}

// ReadAt performs an aligned read at the given byte offset, passed to
// ReadFile through an OVERLAPPED structure.
// Offsets and lengths must be multiples of the volume's sector size; the
// MFT bootstrap and reader only ever request boot-sector-, record-, or
// cluster-sized reads, which satisfies this for every real NTFS layout in
// scope.
func (d *windowsHandle) ReadAt(p []byte, off int64) (int, error) {
	var bytesRead uint32
	ov := &windows.Overlapped{
		Offset:     uint32(off),
		OffsetHigh: uint32(off >> 32),
	}

	err := windows.ReadFile(d.h, p, &bytesRead, ov)
	if err != nil {
		if err == syscall.ERROR_IO_PENDING {
			err = windows.GetOverlappedResult(d.h, ov, &bytesRead, true)
		}
		if err != nil {
			return int(bytesRead), fmt.Errorf("device: read at %d: %w", off, err)
		}
	}
	return int(bytesRead), nil
}

// Close releases the underlying OS handle exactly once; later calls are
// no-ops.
func (d *windowsHandle) Close() error {
	if d.closed {
		return nil
	}
	d.closed = true
	return windows.CloseHandle(d.h)
}

//go:build windows

package volume

import (
	"fmt"
	"strings"

	"golang.org/x/sys/windows"
)

// Enumerate iterates the host's volume registry via
// FindFirstVolumeW/FindNextVolumeW and resolves each volume's mount paths
// with GetVolumePathNamesForVolumeNameW, yielding a finite, non-restartable
// sequence of Results. A volume that exists but can't have its mount
// paths resolved is yielded as an Err item rather than aborting the whole
// enumeration.
func Enumerate() func(yield func(Result) bool) {
	return func(yield func(Result) bool) {
		var nameBuf [windows.MAX_PATH + 1]uint16

		h, err := windows.FindFirstVolume(&nameBuf[0], uint32(len(nameBuf)))
		if err != nil {
			yield(Result{Err: fmt.Errorf("volume: FindFirstVolume: %w", err)})
			return
		}
		defer windows.FindVolumeClose(h)

		for {
			volumeName := windows.UTF16ToString(nameBuf[:])

			mountPaths, mpErr := mountPaths(volumeName)
			devicePath := strings.TrimSuffix(volumeName, `\`)

			var result Result
			if mpErr != nil {
				result = Result{Err: fmt.Errorf("volume: resolving mount paths for %s: %w", volumeName, mpErr)}
			} else {
				result = Result{Descriptor: Descriptor{DevicePath: devicePath, MountPaths: mountPaths}}
			}
			if !yield(result) {
				return
			}

			err := windows.FindNextVolume(h, &nameBuf[0], uint32(len(nameBuf)))
			if err != nil {
				if err == windows.ERROR_NO_MORE_FILES {
					return
				}
				yield(Result{Err: fmt.Errorf("volume: FindNextVolume: %w", err)})
				return
			}
		}
	}
}

func mountPaths(volumeName string) ([]string, error) {
	volumeNamePtr, err := windows.UTF16PtrFromString(volumeName)
	if err != nil {
		return nil, err
	}

	var returnLen uint32
	buf := make([]uint16, windows.MAX_PATH)
	for {
		err := windows.GetVolumePathNamesForVolumeName(volumeNamePtr, &buf[0], uint32(len(buf)), &returnLen)
		if err == nil {
			break
		}
		if err == windows.ERROR_MORE_DATA {
			buf = make([]uint16, returnLen)
			continue
		}
		return nil, err
	}

	var paths []string
	start := 0
	for i, u := range buf {
		if u == 0 {
			if i > start {
				paths = append(paths, windows.UTF16ToString(buf[start:i]))
			}
			start = i + 1
			if i+1 < len(buf) && buf[i+1] == 0 {
				break
			}
		}
	}
	return paths, nil
}

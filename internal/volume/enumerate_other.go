//go:build !windows

package volume

import (
	"bufio"
	"os"
)

// Enumerate on a non-Windows host has no volume registry to walk; the
// production target is Windows. For development and testing off Windows, it
// reads /proc/mounts as a stand-in volume registry (real device paths and
// mount points, just not NTFS ones) so the rest of the pipeline can be
// exercised end to end. It is not a supported production code path.
func Enumerate() func(yield func(Result) bool) {
	return func(yield func(Result) bool) {
		f, err := os.Open("/proc/mounts")
		if err != nil {
			yield(Result{Err: err})
			return
		}
		defer f.Close()

		scanner := bufio.NewScanner(f)
		for scanner.Scan() {
			fields := splitFields(scanner.Text())
			if len(fields) < 2 {
				continue
			}
			device, mountPoint := fields[0], fields[1]
			if device == "" || mountPoint == "" {
				continue
			}
			if !yield(Result{Descriptor: Descriptor{DevicePath: device, MountPaths: []string{mountPoint}}}) {
				return
			}
		}
	}
}

func splitFields(line string) []string {
	var fields []string
	start := -1
	for i, r := range line {
		if r == ' ' || r == '\t' {
			if start >= 0 {
				fields = append(fields, line[start:i])
				start = -1
			}
			continue
		}
		if start < 0 {
			start = i
		}
	}
	if start >= 0 {
		fields = append(fields, line[start:])
	}
	return fields
}

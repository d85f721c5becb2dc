// Package volume enumerates the host's mounted volumes: a lazy,
// per-item-fallible sequence of device paths and the mount points each
// volume is reachable from.
package volume

import (
	"runtime"
	"strings"
	"unicode"
)

// Descriptor is one volume: a device path suitable for a raw-device open,
// and the ordered mount paths (drive letters or mount-point directories) it
// is reachable from. A volume needs at least one mount path to be
// processable by the orchestrator.
type Descriptor struct {
	DevicePath string
	MountPaths []string
}

// PrimaryMountPath is the mount path the path resolver roots paths at: the
// first one reported by the enumerator.
func (d Descriptor) PrimaryMountPath() string {
	if len(d.MountPaths) == 0 {
		return ""
	}
	return d.MountPaths[0]
}

// Result is one item of the enumerator's sequence: either a usable
// Descriptor, or a per-volume Err; a single inaccessible volume does not
// halt enumeration of the rest.
type Result struct {
	Descriptor Descriptor
	Err        error
}

// NormalizeDevicePath rewrites a drive letter like "C:" or "C:\" into the
// `\\.\C:` raw-device form Windows requires for CreateFile against a
// volume, upper-cases an already-normalized `\\.\` path, and passes any
// other path through unchanged. Also runs (as a no-op) on non-Windows hosts so callers
// don't need a build-tag branch of their own.
func NormalizeDevicePath(path string) string {
	if runtime.GOOS != "windows" {
		return path
	}

	path = strings.TrimSpace(path)
	path = strings.ReplaceAll(path, "/", `\`)
	upper := strings.ToUpper(path)

	if strings.HasPrefix(upper, `\\.\`) {
		return upper
	}

	if len(upper) >= 2 && upper[1] == ':' && unicode.IsLetter(rune(upper[0])) {
		return `\\.\` + strings.ToUpper(string(upper[0])) + `:`
	}

	return path
}

// DriveLetter extracts the single uppercase drive-letter initial from a
// mount path like "C:\" or "C:", or "" if mountPath isn't drive-letter
// shaped (e.g. a mounted directory on a volume with no drive letter).
func DriveLetter(mountPath string) string {
	trimmed := strings.TrimSpace(mountPath)
	if len(trimmed) >= 2 && trimmed[1] == ':' && unicode.IsLetter(rune(trimmed[0])) {
		return strings.ToUpper(string(trimmed[0]))
	}
	return ""
}

// MatchesFilter reports whether d has a mount path whose drive letter is in
// filter. An empty filter matches every volume (no filtering).
func (d Descriptor) MatchesFilter(filter map[string]bool) bool {
	if len(filter) == 0 {
		return true
	}
	for _, mp := range d.MountPaths {
		if letter := DriveLetter(mp); letter != "" && filter[letter] {
			return true
		}
	}
	return false
}

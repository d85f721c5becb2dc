//go:build windows

package privilege

import "golang.org/x/sys/windows"

// Probe reports whether the current process token is elevated; reading a
// raw volume device requires administrator rights.
func Probe() Level {
	if windows.GetCurrentProcessToken().IsElevated() {
		return Elevated
	}
	return NotElevated
}

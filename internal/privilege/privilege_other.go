//go:build !windows

package privilege

// Probe always returns Unknown off Windows; there's no raw volume handle
// concept to gate on this platform.
func Probe() Level {
	return Unknown
}

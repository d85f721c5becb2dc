// Package errs aggregates per-volume failures from a multi-volume run
// without aborting it, so a caller can inspect each failure without losing
// the rest of the run's results.
package errs

import (
	"fmt"

	"github.com/hashicorp/go-multierror"
)

// VolumeError wraps a failure for one volume with the device path it came
// from, so an aggregated report can attribute each failure to its source.
type VolumeError struct {
	DevicePath string
	Err        error
}

func (e *VolumeError) Error() string {
	return fmt.Sprintf("volume %s: %v", e.DevicePath, e.Err)
}

func (e *VolumeError) Unwrap() error { return e.Err }

// Collector accumulates per-volume failures across a run, building a
// *multierror.Error a caller can range over after the run completes.
type Collector struct {
	merr *multierror.Error
}

// Add records a volume failure. A nil err is a no-op.
func (c *Collector) Add(devicePath string, err error) {
	if err == nil {
		return
	}
	c.merr = multierror.Append(c.merr, &VolumeError{DevicePath: devicePath, Err: err})
}

// Err returns the aggregated error, or nil if no volume failed.
func (c *Collector) Err() error {
	return c.merr.ErrorOrNil()
}

// Len reports how many volumes failed so far.
func (c *Collector) Len() int {
	if c.merr == nil {
		return 0
	}
	return len(c.merr.Errors)
}

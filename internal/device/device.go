// Package device provides scoped, exclusive acquisition of a raw block
// device handle: Open never returns a handle the caller doesn't also own
// the release of, on every exit path.
package device

import "io"

// Handle is a raw block-device handle: positional reads of aligned byte
// ranges, and a single Close. It is not clonable; ownership is exclusive
// to whichever component called Open.
type Handle interface {
	io.ReaderAt
	io.Closer
}

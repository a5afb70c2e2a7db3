// Package framebuffer provides access to the operating system's native framebuffer
//
// This requires framebuffer device support in the operating system. The framebuffer
// can be opened with the [Open] call, and will otherwise function like a regular
// display.
//
// Writes go straight to the mapped video memory, Refresh only resets the dirty
// area. Show and SetContrast are no-ops.
package framebuffer

import "errors"

// Errors
var (
	ErrNotSupported = errors.New("framebuffer: not supported")
	ErrColorModel   = errors.New("framebuffer: unsupported color model")
)

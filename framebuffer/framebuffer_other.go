//go:build !linux

package framebuffer

import (
	"github.com/BeatGlow/oled"
)

// Open is not supported on this operating system.
func Open(_ string) (oled.Display, error) {
	return nil, ErrNotSupported
}

package oled

import (
	"image"
	"image/draw"

	"github.com/BeatGlow/oled/pixel"
)

// Sink receives the changed pixels of a Buffered plane.
type Sink[C pixel.Color] interface {
	// Bounds of the sink, the origin must be (0, 0).
	Bounds() image.Rectangle

	// DrawPixels writes the pixels to the sink. Pixels outside of the bounds
	// are ignored.
	DrawPixels([]pixel.Pixel[C]) error

	// Flush commits the pixels drawn since the last flush.
	Flush() error
}

type flushingSink[C pixel.Color] struct {
	dst   draw.Image
	flush func() error
}

// NewSink returns a Sink that sets the pixels on dst and calls flush to commit
// them. A nil flush function makes Flush a no-op.
func NewSink[C pixel.Color](dst draw.Image, flush func() error) Sink[C] {
	return &flushingSink[C]{
		dst:   dst,
		flush: flush,
	}
}

// DisplaySink returns a Sink that sets pixels in the display buffer and calls
// Refresh on flush.
func DisplaySink[C pixel.Color](d Display) Sink[C] {
	return NewSink[C](d, d.Refresh)
}

func (s *flushingSink[C]) Bounds() image.Rectangle {
	return s.dst.Bounds()
}

func (s *flushingSink[C]) DrawPixels(pixels []pixel.Pixel[C]) error {
	r := s.dst.Bounds()
	for _, p := range pixels {
		if p.In(r) {
			s.dst.Set(p.X, p.Y, p.Color)
		}
	}
	return nil
}

func (s *flushingSink[C]) Flush() error {
	if s.flush == nil {
		return nil
	}
	return s.flush()
}

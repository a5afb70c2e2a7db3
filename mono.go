package oled

import (
	"github.com/BeatGlow/oled/pixel"
)

// monoDisplay is a page addressed monochrome display, every byte of display
// RAM holds a column of 8 pixels.
type monoDisplay struct {
	baseDisplay
	buf *pixel.VerticalLSB
}

func (d *monoDisplay) init(config *Config) {
	d.buf = pixel.NewVerticalLSB(config.Width, config.Height)
	d.Image = d.buf
}

func (d *monoDisplay) Close() error {
	if !d.halted {
		if err := d.Show(false); err != nil {
			_ = d.c.Close()
			return err
		}
		d.halted = true
	}
	return d.c.Close()
}

func (d *monoDisplay) Show(show bool) error {
	if show {
		return d.send(ssd1xxxSetDisplayOn)
	}
	return d.send(ssd1xxxSetDisplayOff)
}

func (d *monoDisplay) SetContrast(level uint8) error {
	return d.send(ssd1xxxSetContrast, level)
}

// dirty returns the columns and pages written since the last refresh.
func (d *monoDisplay) dirty() (x0, x1, page0, page1 int) {
	r := d.buf.Dirty().Intersect(d.buf.Rect)
	if r.Empty() {
		return
	}
	return r.Min.X, r.Max.X, r.Min.Y >> 3, (r.Max.Y + 7) >> 3
}

package oled

import (
	"fmt"

	"github.com/BeatGlow/oled/pixel"
)

const (
	sh1122DefaultWidth  = 256
	sh1122DefaultHeight = 64
)

const (
	sh1122SetDischargeVSLLevel = 0x30
	sh1122SetDisplayStartLine  = 0x40
	sh1122SetRemap             = 0xA0
	sh1122SetDCDC              = 0xAD
	sh1122SetRowAddress        = 0xB0
	sh1122SetComScanInc        = 0xC0
	sh1122SetVSEGMLevel        = 0xDC
)

type sh1122 struct {
	baseDisplay
	buf *pixel.HorizontalNibble
}

// SH1122 is a driver for the Sino Wealth SH1122 4-bit grayscale OLED display.
func SH1122(conn Conn, config *Config) (Display, error) {
	d := &sh1122{
		baseDisplay: baseDisplay{
			c: conn,
		},
	}

	if config.Width == 0 {
		config.Width = sh1122DefaultWidth
	}
	if config.Height == 0 {
		config.Height = sh1122DefaultHeight
	}

	if err := d.init(config); err != nil {
		return nil, err
	}

	return d, nil
}

func (d *sh1122) String() string {
	bounds := d.Bounds()
	return fmt.Sprintf("SH1122 %dx%d", bounds.Dx(), bounds.Dy())
}

func (d *sh1122) init(config *Config) (err error) {
	var displayOffset byte
	switch {
	case config.Width == 128 && config.Height == 32:
		displayOffset = 0x0f
	case config.Width == 128 && config.Height == 64:
		displayOffset = 0x00
	case config.Width == 128 && config.Height == 128:
		displayOffset = 0x02
	case config.Width == 256 && config.Height == 64:
		displayOffset = 0x00
	default:
		return fmt.Errorf("oled: SH1122 unsupported size %dx%d", config.Width, config.Height)
	}

	d.buf = pixel.NewHorizontalNibble(config.Width, config.Height)
	d.Image = d.buf

	if err = d.reset(); err != nil {
		return
	}

	// Double byte commands keep DC low for the argument.
	if err = d.send(
		ssd1xxxSetDisplayOff,
		sh1122SetDisplayStartLine,
		sh1122SetRemap,
		sh1122SetComScanInc,
		ssd1xxxSetMultiplexRatio, byte(config.Height-1),
		sh1122SetDCDC, 0x81,
		ssd1xxxSetDisplayClockDiv, 0x50,
		ssd1xxxSetDisplayOffset, displayOffset,
		ssd1xxxSetPrecharge, 0x21,
		ssd1xxxSetVCOMDeselect, 0x35,
		sh1122SetVSEGMLevel, 0x35,
		sh1122SetDischargeVSLLevel,
		ssd1xxxSetNormalDisplay,
	); err != nil {
		return fmt.Errorf("oled: SH1122 init: %w", err)
	}

	if err = d.SetContrast(0x7F); err != nil {
		return
	}
	if err = d.Refresh(); err != nil {
		return
	}
	return d.Show(true)
}

func (d *sh1122) Close() error {
	if !d.halted {
		if err := d.Show(false); err != nil {
			_ = d.c.Close()
			return err
		}
		d.halted = true
	}
	return d.c.Close()
}

func (d *sh1122) Show(show bool) error {
	if show {
		return d.send(ssd1xxxSetDisplayOn)
	}
	return d.send(ssd1xxxSetDisplayOff)
}

func (d *sh1122) SetContrast(level uint8) error {
	return d.send(ssd1xxxSetContrast, level)
}

// Refresh sends the full width rows spanned by the dirty area. The column
// address wraps to the next row at the end of a row.
func (d *sh1122) Refresh() error {
	if d.halted {
		return ErrClosed
	}

	dirty := d.buf.Dirty().Intersect(d.buf.Rect)
	if dirty.Empty() {
		return nil
	}

	if err := d.send(
		sh1122SetRowAddress, byte(dirty.Min.Y),
		ssd1xxxSetLowColumn,
		ssd1xxxSetHighColumn,
	); err != nil {
		return err
	}
	if err := d.data(d.buf.Rows(dirty.Min.Y, dirty.Max.Y)...); err != nil {
		return err
	}

	d.buf.Clean()
	return nil
}

var _ Display = (*sh1122)(nil)

package oled

import (
	"fmt"
)

const (
	ssd1305DefaultWidth  = 128
	ssd1305DefaultHeight = 32
)

const (
	ssd1305SetLUT          = 0x91
	ssd1305SetMasterConfig = 0xAD
	ssd1305SetAreaColor    = 0xD8
)

type ssd1305 struct {
	monoDisplay
	colStart int
}

// SSD1305 is a driver for the Solomon Systech SSD1305 OLED display.
func SSD1305(conn Conn, config *Config) (Display, error) {
	d := &ssd1305{
		monoDisplay: monoDisplay{
			baseDisplay: baseDisplay{
				c: conn,
			},
		},
	}

	if config.Width == 0 {
		config.Width = ssd1305DefaultWidth
	}
	if config.Height == 0 {
		config.Height = ssd1305DefaultHeight
	}

	if err := d.init(config); err != nil {
		return nil, err
	}

	return d, nil
}

func (d *ssd1305) String() string {
	bounds := d.Bounds()
	return fmt.Sprintf("SSD1305 %dx%d", bounds.Dx(), bounds.Dy())
}

func (d *ssd1305) init(config *Config) (err error) {
	// The SSD1305 has 132 columns of RAM.
	switch {
	case config.Width == 128 && config.Height == 32:
		d.colStart = 0
	case config.Width == 128 && config.Height == 64:
		d.colStart = 4
	default:
		return fmt.Errorf("oled: SSD1305 unsupported size %dx%d", config.Width, config.Height)
	}

	d.monoDisplay.init(config)

	if err = d.reset(); err != nil {
		return
	}

	if err = d.send(
		ssd1xxxSetDisplayOff,
		ssd1xxxSetMemoryMode, ssd1xxxPageAddressing,
		ssd1xxxSetStartLine,
		ssd1xxxSetSegmentRemap,
		ssd1xxxSetNormalDisplay,
		ssd1xxxSetMultiplexRatio, byte(config.Height-1),
		ssd1305SetMasterConfig, 0x8E,
		ssd1xxxSetComScanDec,
		ssd1xxxSetDisplayOffset, 0x40,
		ssd1xxxSetDisplayClockDiv, 0xF0,
		ssd1305SetAreaColor, 0x05,
		ssd1xxxSetPrecharge, 0xF1,
		ssd1xxxSetComPins, 0x12,
		ssd1305SetLUT, 0x3F, 0x3F, 0x3F, 0x3F,
	); err != nil {
		return
	}

	if err = d.SetContrast(0x7F); err != nil {
		return
	}
	if err = d.Refresh(); err != nil {
		return
	}
	return d.Show(true)
}

// Refresh sends the dirty columns of each dirty page.
func (d *ssd1305) Refresh() (err error) {
	if d.halted {
		return ErrClosed
	}

	x0, x1, page0, page1 := d.dirty()
	column := byte(d.colStart + x0)
	for page := page0; page < page1; page++ {
		if err = d.send(
			ssd1xxxSetPageStart|byte(page&0x07),
			ssd1xxxSetLowColumn|column&0x0f,
			ssd1xxxSetHighColumn|column>>4,
		); err != nil {
			return
		}
		if err = d.data(d.buf.Page(page)[x0:x1]...); err != nil {
			return
		}
	}

	d.buf.Clean()
	return nil
}

var _ Display = (*ssd1305)(nil)

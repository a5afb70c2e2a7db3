package oled

import (
	"fmt"
)

const (
	sh1106DefaultWidth  = 128
	sh1106DefaultHeight = 64

	// The SH1106 has 132 columns of RAM, 128 pixel panels are centered.
	sh1106ColumnOffset = 2
)

type sh1106 struct {
	monoDisplay
}

// SH1106 is a driver for the Sino Wealth SH1106 OLED display.
func SH1106(conn Conn, config *Config) (Display, error) {
	d := &sh1106{
		monoDisplay: monoDisplay{
			baseDisplay: baseDisplay{
				c: conn,
			},
		},
	}

	if config.Width == 0 {
		config.Width = sh1106DefaultWidth
	}
	if config.Height == 0 {
		config.Height = sh1106DefaultHeight
	}

	if err := d.init(config); err != nil {
		return nil, err
	}

	return d, nil
}

func (d *sh1106) String() string {
	bounds := d.Bounds()
	return fmt.Sprintf("SH1106 %dx%d", bounds.Dx(), bounds.Dy())
}

func (d *sh1106) init(config *Config) (err error) {
	var (
		multiplexRatio byte
		displayOffset  byte
	)
	switch {
	case config.Width == 128 && config.Height == 32:
		multiplexRatio, displayOffset = 0x20, 0x0f
	case config.Width == 128 && config.Height == 64:
		multiplexRatio, displayOffset = 0x3f, 0x00
	case config.Width == 128 && config.Height == 128:
		multiplexRatio, displayOffset = 0xff, 0x02
	default:
		return fmt.Errorf("oled: SH1106 unsupported size %dx%d", config.Width, config.Height)
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
		ssd1xxxSetComScanDec,
		ssd1xxxSetNormalDisplay,
		ssd1xxxSetMultiplexRatio, multiplexRatio,
		ssd1xxxSetDisplayAllOnResume,
		ssd1xxxSetDisplayOffset, displayOffset,
		ssd1xxxSetDisplayClockDiv, 0xF0,
		ssd1xxxSetPrecharge, 0x22,
		ssd1xxxSetComPins, 0x12,
		ssd1xxxSetVCOMDeselect, 0x20,
		ssd1xxxSetChargePump, 0x14,
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

// Refresh sends the dirty columns of each dirty page, the SH1106 only supports
// page addressing so every page is a separate transfer.
func (d *sh1106) Refresh() (err error) {
	if d.halted {
		return ErrClosed
	}

	x0, x1, page0, page1 := d.dirty()
	column := byte(sh1106ColumnOffset + x0)
	for page := page0; page < page1; page++ {
		if err = d.send(
			ssd1xxxSetPageStart|byte(page&0x0f),
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

var _ Display = (*sh1106)(nil)

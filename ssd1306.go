package oled

import (
	"fmt"
)

const (
	ssd1306DefaultWidth  = 128
	ssd1306DefaultHeight = 64
)

type ssd1306 struct {
	monoDisplay
	colStart int
}

// SSD1306 is a driver for the Solomon Systech SSD1306 OLED display.
func SSD1306(conn Conn, config *Config) (Display, error) {
	d := &ssd1306{
		monoDisplay: monoDisplay{
			baseDisplay: baseDisplay{
				c: conn,
			},
		},
	}

	if config.Width == 0 {
		config.Width = ssd1306DefaultWidth
	}
	if config.Height == 0 {
		config.Height = ssd1306DefaultHeight
	}

	if err := d.init(config); err != nil {
		return nil, err
	}

	return d, nil
}

func (d *ssd1306) String() string {
	bounds := d.Bounds()
	return fmt.Sprintf("SSD1306 OLED %dx%d", bounds.Dx(), bounds.Dy())
}

func (d *ssd1306) init(config *Config) (err error) {
	var (
		displayClockDiv byte
		comPins         byte
	)
	switch {
	case config.Width == 64 && config.Height == 32:
		displayClockDiv, comPins, d.colStart = 0x80, 0x12, 32
	case config.Width == 64 && config.Height == 48:
		displayClockDiv, comPins, d.colStart = 0x80, 0x12, 32
	case config.Width == 96 && config.Height == 16:
		displayClockDiv, comPins, d.colStart = 0x60, 0x02, 0
	case config.Width == 128 && config.Height == 32:
		displayClockDiv, comPins, d.colStart = 0x80, 0x02, 0
	case config.Width == 128 && config.Height == 64:
		displayClockDiv, comPins, d.colStart = 0x80, 0x12, 0
	default:
		return fmt.Errorf("oled: SSD1306 unsupported size %dx%d", config.Width, config.Height)
	}

	d.monoDisplay.init(config)

	if err = d.reset(); err != nil {
		return
	}

	if err = d.send(
		ssd1xxxSetDisplayOff,
		ssd1xxxSetDisplayClockDiv, displayClockDiv,
		ssd1xxxSetMultiplexRatio, byte(config.Height-1),
		ssd1xxxSetDisplayOffset, 0x00,
		ssd1xxxSetStartLine,
		ssd1xxxSetChargePump, 0x14,
		ssd1xxxSetMemoryMode, ssd1xxxHorizontalAddressing,
		ssd1xxxSetSegmentRemap,
		ssd1xxxSetComScanDec,
		ssd1xxxSetComPins, comPins,
		ssd1xxxSetPrecharge, 0xF1,
		ssd1xxxSetVCOMDeselect, 0x40,
		ssd1xxxSetDisplayAllOnResume,
		ssd1xxxSetNormalDisplay,
	); err != nil {
		return
	}

	if err = d.SetContrast(0xCF); err != nil {
		return
	}
	if err = d.Refresh(); err != nil {
		return
	}
	return d.Show(true)
}

// Refresh sends the dirty column range of every dirty page. In horizontal
// addressing mode the controller wraps to the next page at the end of the
// column window, so the whole area goes out in one transfer.
func (d *ssd1306) Refresh() (err error) {
	if d.halted {
		return ErrClosed
	}

	x0, x1, page0, page1 := d.dirty()
	if page0 == page1 {
		return nil
	}

	if err = d.send(
		ssd1xxxSetColumnAddr, byte(d.colStart+x0), byte(d.colStart+x1-1),
		ssd1xxxSetPageAddr, byte(page0), byte(page1-1),
	); err != nil {
		return
	}

	data := make([]byte, 0, (x1-x0)*(page1-page0))
	for page := page0; page < page1; page++ {
		data = append(data, d.buf.Page(page)[x0:x1]...)
	}
	if err = d.data(data...); err != nil {
		return
	}

	d.buf.Clean()
	return nil
}

var _ Display = (*ssd1306)(nil)

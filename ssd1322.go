package oled

import (
	"fmt"
	"image"

	"github.com/BeatGlow/oled/pixel"
)

const (
	ssd1322DefaultWidth  = 256
	ssd1322DefaultHeight = 64

	// The controller drives 480 segments, narrower panels are centered.
	ssd1322Segments = 480
)

// Commands.
const (
	ssd1322SetColumnAddress       = 0x15
	ssd1322WriteRAM               = 0x5C
	ssd1322SetRowAddress          = 0x75
	ssd1322SetRemap               = 0xA0
	ssd1322SetDisplayStartLine    = 0xA1
	ssd1322SetDisplayOffset       = 0xA2
	ssd1322SetDisplayNormal       = 0xA6
	ssd1322SetExitPartialDisplay  = 0xA9
	ssd1322SetFunction            = 0xAB
	ssd1322SetDisplayOff          = 0xAE
	ssd1322SetDisplayOn           = 0xAF
	ssd1322SetPhaseLength         = 0xB1
	ssd1322SetFrontClockDiv       = 0xB3
	ssd1322SetDisplayEnhancementA = 0xB4
	ssd1322SetGPIO                = 0xB5
	ssd1322SetSecondPrecharge     = 0xB6
	ssd1322SetDefaultGrayscale    = 0xB9
	ssd1322SetPrechargeVoltage    = 0xBB
	ssd1322SetVCOMHVoltage        = 0xBE
	ssd1322SetContrast            = 0xC1
	ssd1322SetMasterCurrent       = 0xC7
	ssd1322SetMultiplexRatio      = 0xCA
	ssd1322SetDisplayEnhancementB = 0xD1
	ssd1322SetCommandLock         = 0xFD
)

var ssd1322SupportedSizes = []image.Point{
	image.Pt(256, 64),
	image.Pt(256, 48),
	image.Pt(256, 32),
	image.Pt(128, 64),
	image.Pt(128, 48),
	image.Pt(128, 32),
	image.Pt(64, 64),
	image.Pt(64, 48),
	image.Pt(64, 32),
}

type ssd1322 struct {
	baseDisplay
	buf          *pixel.HorizontalNibble
	columnOffset int
}

// SSD1322 is a driver for the Solomon Systech SSD1322 4-bit grayscale OLED display.
func SSD1322(conn Conn, config *Config) (Display, error) {
	d := &ssd1322{
		baseDisplay: baseDisplay{
			c: conn,
		},
	}

	if config.Width == 0 {
		config.Width = ssd1322DefaultWidth
	}
	if config.Height == 0 {
		config.Height = ssd1322DefaultHeight
	}

	if err := d.init(config); err != nil {
		return nil, err
	}

	return d, nil
}

func (d *ssd1322) String() string {
	bounds := d.Bounds()
	return fmt.Sprintf("SSD1322 %dx%d", bounds.Dx(), bounds.Dy())
}

func (d *ssd1322) init(config *Config) (err error) {
	var supported bool
	for _, size := range ssd1322SupportedSizes {
		if supported = size.X == config.Width && size.Y == config.Height; supported {
			break
		}
	}
	if !supported {
		return fmt.Errorf("oled: SSD1322 unsupported size %dx%d", config.Width, config.Height)
	}

	d.buf = pixel.NewHorizontalNibble(config.Width, config.Height)
	d.Image = d.buf
	d.columnOffset = (ssd1322Segments - config.Width) >> 1

	if err = d.reset(); err != nil {
		return
	}

	if err = d.commands(
		[]byte{ssd1322SetCommandLock, 0x12},                       // Unlock IC
		[]byte{ssd1322SetDisplayOff},                              // Display off
		[]byte{ssd1322SetFrontClockDiv, 0xF2},                     // Display divide clockratio/freq
		[]byte{ssd1322SetMultiplexRatio, byte(config.Height - 1)}, // Set MUX ratio
		[]byte{ssd1322SetDisplayOffset, 0x00},                     // Display offset
		[]byte{ssd1322SetDisplayStartLine, 0x00},                  // Display start Line
		[]byte{ssd1322SetRemap, 0x14, 0x11},                       // Set remap & dual COM Line
		[]byte{ssd1322SetGPIO, 0x00},                              // Set GPIO (disabled)
		[]byte{ssd1322SetFunction, 0x01},                          // Function select (internal Vdd)
		[]byte{ssd1322SetDisplayEnhancementA, 0xA0, 0xFD},         // Display enhancement A (External VSL)
		[]byte{ssd1322SetMasterCurrent, 0x0F},                     // Master contrast (reset)
		[]byte{ssd1322SetDefaultGrayscale},                        // Set default greyscale table
		[]byte{ssd1322SetPhaseLength, 0xF0},                       // Phase length
		[]byte{ssd1322SetDisplayEnhancementB, 0x82, 0x20},         // Display enhancement B (reset)
		[]byte{ssd1322SetPrechargeVoltage, 0x0D},                  // Pre-charge voltage
		[]byte{ssd1322SetSecondPrecharge, 0x08},                   // 2nd precharge period
		[]byte{ssd1322SetVCOMHVoltage, 0x00},                      // Set VcomH
		[]byte{ssd1322SetDisplayNormal},                           // Normal display mode
		[]byte{ssd1322SetExitPartialDisplay},                      // Exit partial display
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

func (d *ssd1322) Close() error {
	if !d.halted {
		if err := d.Show(false); err != nil {
			_ = d.c.Close()
			return err
		}
		d.halted = true
	}
	return d.c.Close()
}

func (d *ssd1322) Show(show bool) error {
	if show {
		return d.command(ssd1322SetDisplayOn)
	}
	return d.command(ssd1322SetDisplayOff)
}

func (d *ssd1322) SetContrast(level uint8) error {
	return d.command(ssd1322SetContrast, level)
}

// SetWindow selects the RAM area written by the following data. Columns are
// addressed in groups of 4 pixels, so the horizontal edges of r must be
// multiples of 4.
func (d *ssd1322) SetWindow(r image.Rectangle) error {
	if r.Empty() || !r.In(d.buf.Rect) || r.Min.X&3 != 0 || r.Max.X&3 != 0 {
		return ErrBounds
	}

	var (
		columnStart = byte((d.columnOffset + r.Min.X) >> 2)
		columnEnd   = byte((d.columnOffset+r.Max.X)>>2) - 1
	)
	return d.commands(
		[]byte{ssd1322SetColumnAddress, columnStart, columnEnd},
		[]byte{ssd1322SetRowAddress, byte(r.Min.Y), byte(r.Max.Y - 1)},
		[]byte{ssd1322WriteRAM},
	)
}

// Refresh sends the full width rows spanned by the dirty area.
func (d *ssd1322) Refresh() error {
	if d.halted {
		return ErrClosed
	}

	dirty := d.buf.Dirty().Intersect(d.buf.Rect)
	if dirty.Empty() {
		return nil
	}

	window := image.Rect(0, dirty.Min.Y, d.buf.Rect.Dx(), dirty.Max.Y)
	if err := d.SetWindow(window); err != nil {
		return err
	}
	if err := d.data(d.buf.Rows(window.Min.Y, window.Max.Y)...); err != nil {
		return err
	}

	d.buf.Clean()
	return nil
}

var _ Display = (*ssd1322)(nil)

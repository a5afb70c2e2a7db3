package oled

import (
	"fmt"
	"time"

	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/physic"

	"github.com/BeatGlow/oled/conn"
	"github.com/BeatGlow/oled/pixel"
)

const (
	st7789DefaultWidth  = 240
	st7789DefaultHeight = 240
	st7789MaxWidth      = 240
	st7789MaxHeight     = 320
)

// Bus settings for the ST7789, it needs SPI mode 3.
const (
	ST7789SPIMode  = conn.SPIMode3
	ST7789SPISpeed = 40 * physic.MegaHertz
)

// Registers (from st7789.pdf).
const (
	st7789SWRESET   = 0x01 // Software Reset
	st7789SLPOUT    = 0x11 // Sleep Out
	st7789NORON     = 0x13 // Normal Display Mode On
	st7789INVON     = 0x21 // Display Inversion On
	st7789DISPOFF   = 0x28 // Display Off
	st7789DISPON    = 0x29 // Display On
	st7789CASET     = 0x2A // Column Address Set
	st7789RASET     = 0x2B // Row Address Set
	st7789RAMWR     = 0x2C // Memory Write
	st7789MADCTL    = 0x36 // Memory Data Access Control
	st7789COLMOD    = 0x3A // Interface Pixel Format
	st7789WRDISBV   = 0x51 // Write Display Brightness
	st7789WRCTRLD   = 0x53 // Write CTRL Display
	st7789PORCTRL   = 0xB2 // Porch Setting
	st7789GCTRL     = 0xB7 // Gate Control
	st7789VCOMS     = 0xBB // VCOM Setting
	st7789LCMCTRL   = 0xC0 // LCM Control
	st7789VDVVRHEN  = 0xC2 // VDV and VRH Command Enable
	st7789VRHS      = 0xC3 // VRH Set
	st7789VDVSET    = 0xC4 // VDV Set
	st7789VCMOFSET  = 0xC5 // VCOM Offset Set
	st7789FRCTR2    = 0xC6 // Frame Rate Control in Normal Mode
	st7789PWCTRL1   = 0xD0 // Power Control 1
	st7789PVGAMCTRL = 0xE0 // Positive Voltage Gamma Control
	st7789NVGAMCTRL = 0xE1 // Negative Voltage Gamma Control
)

type st7789 struct {
	baseDisplay
	buf       *pixel.RGB565Image
	backlight gpio.PinOut
}

// ST7789 is a driver for the Sitronix ST7789 TFT LCD controller. It needs a
// 4-wire SPI connection opened with ST7789SPIMode.
func ST7789(c Conn, config *Config) (Display, error) {
	if spi, ok := c.(SPI); ok {
		spi.SetDataLow(false)
	}

	d := &st7789{
		baseDisplay: baseDisplay{c: c},
		backlight:   config.Backlight,
	}

	if err := d.init(config); err != nil {
		return nil, err
	}

	return d, nil
}

func (d *st7789) Close() error {
	if !d.halted {
		if err := d.Show(false); err != nil {
			_ = d.c.Close()
			return err
		}
		d.halted = true
	}
	return d.c.Close()
}

func (d *st7789) String() string {
	bounds := d.Bounds()
	return fmt.Sprintf("ST7789 %dx%d", bounds.Dx(), bounds.Dy())
}

func (d *st7789) init(config *Config) (err error) {
	if config.Width == 0 {
		config.Width = st7789DefaultWidth
	}
	if config.Height == 0 {
		config.Height = st7789DefaultHeight
	}
	if config.Width > st7789MaxWidth || config.Height > st7789MaxHeight {
		return fmt.Errorf("oled: ST7789 invalid size %dx%d, maximum size is %dx%d",
			config.Width, config.Height, st7789MaxWidth, st7789MaxHeight)
	}

	d.buf = pixel.NewRGB565Image(config.Width, config.Height)
	d.Image = d.buf

	if err = d.reset(); err != nil {
		return
	}
	if err = d.command(st7789SWRESET); err != nil {
		return
	}
	sleep(150 * time.Millisecond)
	if err = d.command(st7789SLPOUT); err != nil {
		return
	}
	sleep(150 * time.Millisecond)

	if err = d.commands(
		[]byte{st7789MADCTL, 0x00},                          // Memory Data Access Control: top to bottom, left to right, RGB
		[]byte{st7789COLMOD, 0x55},                          // Interface Pixel Format: 16-bit/pixel (RGB 5-6-5-bit input)
		[]byte{st7789PORCTRL, 0x0C, 0x0C, 0x00, 0x33, 0x33}, // Porch Setting: default
		[]byte{st7789GCTRL, 0x35},                           // Gate Control: 13.26V / -10.43V (default)
		[]byte{st7789VCOMS, 0x1A},                           // VCOM Setting: 0.75V
		[]byte{st7789LCMCTRL, 0x2C},                         // LCM Control: default
		[]byte{st7789VDVVRHEN, 0x01},                        // VDV and VRH Command Enable: default
		[]byte{st7789VRHS, 0x0B},                            // VRH Set
		[]byte{st7789VDVSET, 0x20},                          // VDV Set: default (0V)
		[]byte{st7789VCMOFSET, 0x20},                        // VCOM Offset Set: default (0V)
		[]byte{st7789FRCTR2, 0x0F},                          // Frame Rate Control in Normal Mode: 60Hz (default)
		[]byte{st7789PWCTRL1, 0xA4, 0xA1},                   // Power Control 1: default
		[]byte{st7789INVON},                                 // Display Inversion On
		[]byte{st7789PVGAMCTRL, 0x00, 0x19, 0x1E, 0x0A, 0x09, 0x15, 0x3D, 0x44, 0x51, 0x12, 0x03, 0x00, 0x3F, 0x3F}, // Positive Voltage Gamma Control
		[]byte{st7789NVGAMCTRL, 0x00, 0x18, 0x1E, 0x0A, 0x09, 0x25, 0x3F, 0x43, 0x52, 0x33, 0x03, 0x00, 0x3F, 0x3F}, // Negative Voltage Gamma Control
		[]byte{st7789WRCTRLD, 0x24},                         // Brightness control on
		[]byte{st7789NORON},                                 // Normal Display Mode On
	); err != nil {
		return
	}
	sleep(10 * time.Millisecond)

	if err = d.Refresh(); err != nil {
		return
	}
	return d.Show(true)
}

func (d *st7789) Show(show bool) (err error) {
	var command byte = st7789DISPOFF
	if show {
		command = st7789DISPON
	}
	if err = d.command(command); err != nil {
		return
	}
	if d.backlight != nil {
		return d.backlight.Out(gpio.Level(show))
	}
	return
}

func (d *st7789) SetContrast(level uint8) error {
	return d.command(st7789WRDISBV, level)
}

// SetWindow selects the RAM area [x0, x1]×[y0, y1] written by the following data.
func (d *st7789) SetWindow(x0, y0, x1, y1 int) error {
	return d.commands(
		[]byte{st7789CASET, byte(x0 >> 8), byte(x0), byte(x1 >> 8), byte(x1)}, // Column address
		[]byte{st7789RASET, byte(y0 >> 8), byte(y0), byte(y1 >> 8), byte(y1)}, // Row address
		[]byte{st7789RAMWR}, // Write to RAM
	)
}

// Refresh sends the full width rows spanned by the dirty area.
func (d *st7789) Refresh() error {
	if d.halted {
		return ErrClosed
	}

	dirty := d.buf.Dirty().Intersect(d.buf.Rect)
	if dirty.Empty() {
		return nil
	}

	if err := d.SetWindow(0, dirty.Min.Y, d.buf.Rect.Dx()-1, dirty.Max.Y-1); err != nil {
		return err
	}
	if err := d.data(d.buf.Rows(dirty.Min.Y, dirty.Max.Y)...); err != nil {
		return err
	}

	d.buf.Clean()
	return nil
}

var _ Display = (*st7789)(nil)

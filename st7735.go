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
	st7735DefaultWidth  = 128
	st7735DefaultHeight = 160
	st7735MaxWidth      = 240
	st7735MaxHeight     = 320
)

// Bus settings for the ST7735.
const (
	ST7735SPIMode  = conn.SPIMode3
	ST7735SPISpeed = 40 * physic.MegaHertz
)

// Registers (from st7735.pdf).
const (
	st7735SWRESET = 0x01
	st7735SLPOUT  = 0x11
	st7735NORON   = 0x13
	st7735DISPOFF = 0x28
	st7735DISPON  = 0x29
	st7735CASET   = 0x2A
	st7735RASET   = 0x2B
	st7735RAMWR   = 0x2C
	st7735MADCTL  = 0x36
	st7735COLMOD  = 0x3A
	st7735FRMCTR1 = 0xB1
	st7735FRMCTR2 = 0xB2
	st7735FRMCTR3 = 0xB3
	st7735INVCTR  = 0xB4
	st7735PWCTR1  = 0xC0
	st7735PWCTR2  = 0xC1
	st7735PWCTR3  = 0xC2
	st7735PWCTR4  = 0xC3
	st7735PWCTR5  = 0xC4
	st7735VMCTR1  = 0xC5
	st7735GMCTRP1 = 0xE0
	st7735GMCTRN1 = 0xE1
)

// Backlight PWM settings.
const (
	st7735BacklightStep = gpio.DutyMax / 0xFF
	st7735BacklightRate = 2 * physic.KiloHertz
)

type st7735 struct {
	baseDisplay
	buf       *pixel.RGB565Image
	backlight gpio.PinOut
}

// ST7735 is a driver for the Sitronix ST7735 TFT LCD controller. It needs a
// 4-wire SPI connection opened with ST7735SPIMode. The contrast level drives
// the backlight PWM duty cycle.
func ST7735(c Conn, config *Config) (Display, error) {
	if spi, ok := c.(SPI); ok {
		spi.SetDataLow(false)
	}

	d := &st7735{
		baseDisplay: baseDisplay{c: c},
		backlight:   config.Backlight,
	}

	if err := d.init(config); err != nil {
		return nil, err
	}

	return d, nil
}

func (d *st7735) String() string {
	bounds := d.Bounds()
	return fmt.Sprintf("ST7735 %dx%d", bounds.Dx(), bounds.Dy())
}

func (d *st7735) init(config *Config) (err error) {
	if config.Width == 0 {
		config.Width = st7735DefaultWidth
	}
	if config.Height == 0 {
		config.Height = st7735DefaultHeight
	}
	if config.Width > st7735MaxWidth || config.Height > st7735MaxHeight {
		return fmt.Errorf("oled: ST7735 invalid size %dx%d, maximum size is %dx%d",
			config.Width, config.Height, st7735MaxWidth, st7735MaxHeight)
	}

	d.buf = pixel.NewRGB565Image(config.Width, config.Height)
	d.Image = d.buf

	if err = d.reset(); err != nil {
		return
	}
	if err = d.command(st7735SWRESET); err != nil {
		return
	}
	sleep(150 * time.Millisecond)
	if err = d.command(st7735SLPOUT); err != nil {
		return
	}
	sleep(150 * time.Millisecond)

	if err = d.commands(
		[]byte{st7735FRMCTR1, 0x01, 0x2C, 0x2D},                   // Frame rate in normal mode
		[]byte{st7735FRMCTR2, 0x01, 0x2C, 0x2D},                   // Frame rate in idle mode
		[]byte{st7735FRMCTR3, 0x01, 0x2C, 0x2D, 0x01, 0x2C, 0x2D}, // Frame rate in partial mode
		[]byte{st7735INVCTR, 0x07},                                // No inversion
		[]byte{st7735PWCTR1, 0xA2, 0x02, 0x84},
		[]byte{st7735PWCTR2, 0xC5},
		[]byte{st7735PWCTR3, 0x0A, 0x00},
		[]byte{st7735PWCTR4, 0x8A, 0x2A},
		[]byte{st7735PWCTR5, 0x8A, 0xEE},
		[]byte{st7735VMCTR1, 0x0E},
		[]byte{st7735MADCTL, 0x00}, // Top to bottom, left to right, RGB
		[]byte{st7735COLMOD, 0x05}, // 16-bits per pixel
		[]byte{st7735GMCTRP1, 0x02, 0x1C, 0x07, 0x12, 0x37, 0x32, 0x29, 0x2D, 0x29, 0x25, 0x2B, 0x39, 0x00, 0x01, 0x03, 0x10},
		[]byte{st7735GMCTRN1, 0x03, 0x1D, 0x07, 0x06, 0x2E, 0x2C, 0x29, 0x2D, 0x2E, 0x2E, 0x37, 0x3F, 0x00, 0x00, 0x02, 0x10},
		[]byte{st7735NORON},
	); err != nil {
		return
	}
	sleep(10 * time.Millisecond)

	if err = d.SetContrast(0xFF); err != nil {
		return
	}
	if err = d.Refresh(); err != nil {
		return
	}
	return d.Show(true)
}

func (d *st7735) Close() error {
	if !d.halted {
		if err := d.Show(false); err != nil {
			_ = d.c.Close()
			return err
		}
		d.halted = true
	}
	return d.c.Close()
}

func (d *st7735) Show(show bool) error {
	if show {
		return d.command(st7735DISPON)
	}
	return d.command(st7735DISPOFF)
}

// SetContrast sets the backlight duty cycle, it does nothing without a
// backlight pin.
func (d *st7735) SetContrast(level uint8) error {
	if d.backlight == nil {
		return nil
	}
	return d.backlight.PWM(st7735BacklightStep*gpio.Duty(level), st7735BacklightRate)
}

// SetWindow selects the RAM area [x0, x1]×[y0, y1] written by the following data.
func (d *st7735) SetWindow(x0, y0, x1, y1 int) error {
	return d.commands(
		[]byte{st7735CASET, byte(x0 >> 8), byte(x0), byte(x1 >> 8), byte(x1)}, // Column address
		[]byte{st7735RASET, byte(y0 >> 8), byte(y0), byte(y1 >> 8), byte(y1)}, // Row address
		[]byte{st7735RAMWR}, // Write to RAM
	)
}

// Refresh sends the full width rows spanned by the dirty area.
func (d *st7735) Refresh() error {
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

var _ Display = (*st7735)(nil)

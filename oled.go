// Package oled contains drivers for hardware displays and a double buffer that
// only sends changed pixels to them.
//
// Drawing happens in a packed [Buffered] plane in memory; nothing reaches the
// display until [Buffered.Flush] compares the plane with what was sent before
// and forwards the difference to a [Sink].
package oled

import (
	"errors"
	"image"
	"image/color"
	"os"
	"time"

	"periph.io/x/conn/v3/gpio"

	"github.com/BeatGlow/oled/pixel"
)

var debug bool

func init() {
	debug = os.Getenv("DISPLAY_DEBUG") != ""
}

// Errors
var (
	ErrBounds = errors.New("oled: out of display bounds")
	ErrClosed = errors.New("oled: display is closed")
)

// Display is an OLED display.
type Display interface {
	// Close the display driver.
	Close() error

	// Clear the display buffer.
	Clear()

	// At returns the color of the pixel at (x, y).
	At(x, y int) color.Color

	// Set the pixel color at (x, y).
	Set(x, y int, c color.Color)

	// Bounds is the display bounding box (dimensions).
	Bounds() image.Rectangle

	// ColorModel used by the display.
	ColorModel() color.Model

	// Show toggles the display on or off.
	Show(bool) error

	// SetContrast adjusts the contrast level.
	SetContrast(level uint8) error

	// Refresh sends the pixels changed since the last refresh to the display.
	Refresh() error
}

// Config is the display configuration.
type Config struct {
	// Width of the display in pixels.
	Width int

	// Height of the display in pixels.
	Height int

	// Reset pin
	Reset gpio.PinOut

	// Backlight pin
	Backlight gpio.PinOut
}

type baseDisplay struct {
	pixel.Image
	c      Conn
	halted bool
}

func (d *baseDisplay) data(data ...byte) error {
	return d.c.Data(data...)
}

func (d *baseDisplay) command(command byte, data ...byte) error {
	return d.c.Command(command, data...)
}

func (d *baseDisplay) commands(commands ...[]byte) (err error) {
	for _, command := range commands {
		if err = d.c.Command(command[0], command[1:]...); err != nil {
			return
		}
	}
	return
}

// send issues every byte as a separate command, for controllers that
// expect command arguments with the DC line low.
func (d *baseDisplay) send(commands ...byte) (err error) {
	for _, command := range commands {
		if err = d.command(command); err != nil {
			return
		}
	}
	return
}

// reset pulses the reset line, if the connection has one.
func (d *baseDisplay) reset() (err error) {
	if err = d.c.Reset(gpio.Low); err != nil {
		return
	}
	sleep(resetPulse)
	if err = d.c.Reset(gpio.High); err != nil {
		return
	}
	sleep(resetPulse)
	return
}

// sleep is replaced in tests.
var sleep = time.Sleep

const resetPulse = 10 * time.Millisecond

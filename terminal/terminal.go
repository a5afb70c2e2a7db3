// Package terminal previews displays in a terminal.
//
// Every terminal cell shows two pixels stacked on top of each other, using the
// upper half block with the top pixel as foreground and the bottom pixel as
// background color. Terminals need 24-bit color support.
package terminal

import (
	"fmt"
	"image"

	"github.com/gdamore/tcell/v2"

	"github.com/BeatGlow/oled/pixel"
)

const upperHalfBlock = '▀'

// Sink draws pixels into a tcell screen.
type Sink[C pixel.Color] struct {
	screen tcell.Screen
	rect   image.Rectangle
	origin image.Point
	pix    []tcell.Color
}

// Open initializes the terminal and returns a w×h pixel sink in its top left
// corner.
func Open[C pixel.Color](w, h int) (*Sink[C], error) {
	screen, err := tcell.NewScreen()
	if err != nil {
		return nil, err
	}
	if err = screen.Init(); err != nil {
		return nil, err
	}
	return New[C](screen, image.Point{}, w, h)
}

// New returns a w×h pixel sink drawing on an initialized screen, with its top
// left pixel in the cell at origin.
func New[C pixel.Color](screen tcell.Screen, origin image.Point, w, h int) (*Sink[C], error) {
	if w <= 0 || h <= 0 {
		return nil, fmt.Errorf("terminal: invalid size %dx%d", w, h)
	}
	pix := make([]tcell.Color, w*h)
	for i := range pix {
		pix[i] = tcell.ColorBlack
	}
	return &Sink[C]{
		screen: screen,
		rect:   image.Rect(0, 0, w, h),
		origin: origin,
		pix:    pix,
	}, nil
}

// Screen returns the screen drawn on.
func (s *Sink[C]) Screen() tcell.Screen {
	return s.screen
}

func (s *Sink[C]) Bounds() image.Rectangle {
	return s.rect
}

// DrawPixels updates the cells of the pixels, out of bounds pixels are ignored.
func (s *Sink[C]) DrawPixels(pixels []pixel.Pixel[C]) error {
	w := s.rect.Dx()
	for _, p := range pixels {
		if !p.In(s.rect) {
			continue
		}
		s.pix[p.Y*w+p.X] = tcell.FromImageColor(p.Color)
		s.setCell(p.X, p.Y>>1)
	}
	return nil
}

func (s *Sink[C]) setCell(x, row int) {
	var (
		w      = s.rect.Dx()
		top    = s.pix[row*2*w+x]
		bottom = tcell.ColorBlack
	)
	if y := row*2 + 1; y < s.rect.Dy() {
		bottom = s.pix[y*w+x]
	}
	style := tcell.StyleDefault.Foreground(top).Background(bottom)
	s.screen.SetContent(s.origin.X+x, s.origin.Y+row, upperHalfBlock, nil, style)
}

// Flush shows the updated cells.
func (s *Sink[C]) Flush() error {
	s.screen.Show()
	return nil
}

// Close restores the terminal.
func (s *Sink[C]) Close() error {
	s.screen.Fini()
	return nil
}

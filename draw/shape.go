package draw

import (
	"image"
	"iter"

	"github.com/BeatGlow/oled/pixel"
)

// Line draws a line between two points, both ends included.
func Line[C pixel.Color](dst Target[C], a, b image.Point, c C) {
	dst.DrawIter(colored(bresenham(a, b), c))
}

// HorizontalLine draws a line between (x,y) and (x+w-1,y).
func HorizontalLine[C pixel.Color](dst Target[C], x, y, w int, c C) {
	dst.FillSolid(image.Rect(x, y, x+w, y+1), c)
}

// VerticalLine draws a line between (x,y) and (x,y+h-1).
func VerticalLine[C pixel.Color](dst Target[C], x, y, h int, c C) {
	dst.FillSolid(image.Rect(x, y, x+1, y+h), c)
}

// Rectangle draws the outline of rect.
func Rectangle[C pixel.Color](dst Target[C], rect image.Rectangle, c C) {
	rect = rect.Canon()
	if rect.Empty() {
		return
	}
	var (
		w = rect.Dx()
		h = rect.Dy()
	)
	HorizontalLine(dst, rect.Min.X, rect.Min.Y, w, c)
	HorizontalLine(dst, rect.Min.X, rect.Max.Y-1, w, c)
	VerticalLine(dst, rect.Min.X, rect.Min.Y, h, c)
	VerticalLine(dst, rect.Max.X-1, rect.Min.Y, h, c)
}

// Box draws a filled rectangle.
func Box[C pixel.Color](dst Target[C], rect image.Rectangle, c C) {
	dst.FillSolid(rect.Canon(), c)
}

// RoundedRectangle draws the outline of rect with radius pixels rounded corners.
func RoundedRectangle[C pixel.Color](dst Target[C], rect image.Rectangle, radius int, c C) {
	rect = rect.Canon()
	if rect.Empty() {
		return
	}
	var (
		r = clampRadius(rect, radius)
		x = rect.Min.X
		y = rect.Min.Y
		w = rect.Dx()
		h = rect.Dy()
	)
	HorizontalLine(dst, x+r, y, w-2*r, c)
	HorizontalLine(dst, x+r, y+h-1, w-2*r, c)
	VerticalLine(dst, x, y+r, h-2*r, c)
	VerticalLine(dst, x+w-1, y+r, h-2*r, c)
	if r == 0 {
		return
	}
	dst.DrawIter(colored(roundedCorner(image.Pt(x+r, y+r), r, topLeft), c))
	dst.DrawIter(colored(roundedCorner(image.Pt(x+w-r-1, y+r), r, topRight), c))
	dst.DrawIter(colored(roundedCorner(image.Pt(x+w-r-1, y+h-r-1), r, bottomRight), c))
	dst.DrawIter(colored(roundedCorner(image.Pt(x+r, y+h-r-1), r, bottomLeft), c))
}

// RoundedBox draws a filled rectangle with radius pixels rounded corners.
func RoundedBox[C pixel.Color](dst Target[C], rect image.Rectangle, radius int, c C) {
	rect = rect.Canon()
	if rect.Empty() {
		return
	}
	var (
		r = clampRadius(rect, radius)
		x = rect.Min.X
		y = rect.Min.Y
		w = rect.Dx()
		h = rect.Dy()
	)
	dst.FillSolid(image.Rect(x+r, y, x+w-r, y+h), c)
	if r == 0 {
		return
	}
	// Columns left of and right of the center band.
	dst.FillSolid(image.Rect(x, y+r, x+r, y+h-r), c)
	dst.FillSolid(image.Rect(x+w-r, y+r, x+w, y+h-r), c)
	filledRoundedCorner(dst, image.Pt(x+w-r-1, y+r), r, right, h-2*r-1, c)
	filledRoundedCorner(dst, image.Pt(x+r, y+r), r, left, h-2*r-1, c)
}

// Corner quadrants.
const (
	topLeft = 1 << iota
	topRight
	bottomRight
	bottomLeft

	left  = topLeft | bottomLeft
	right = topRight | bottomRight
)

func clampRadius(rect image.Rectangle, radius int) int {
	return max(0, min(radius, rect.Dx()/2, rect.Dy()/2))
}

// circle yields the octant offsets of a midpoint circle of the given radius.
func circle(radius int) iter.Seq[image.Point] {
	return func(yield func(image.Point) bool) {
		var (
			f    = 1 - radius
			ddFx = 1
			ddFy = -2 * radius
			x    = 0
			y    = radius
		)
		for x < y {
			if f >= 0 {
				y--
				ddFy += 2
				f += ddFy
			}

			x++
			ddFx += 2
			f += ddFx

			if !yield(image.Pt(x, y)) {
				return
			}
		}
	}
}

func roundedCorner(center image.Point, radius, quadrant int) iter.Seq[image.Point] {
	return func(yield func(image.Point) bool) {
		emit := func(dx, dy int) bool {
			return yield(center.Add(image.Pt(dx, dy)))
		}
		for p := range circle(radius) {
			x, y := p.X, p.Y
			if quadrant&bottomRight != 0 && !(emit(x, y) && emit(y, x)) {
				return
			}
			if quadrant&topRight != 0 && !(emit(x, -y) && emit(y, -x)) {
				return
			}
			if quadrant&bottomLeft != 0 && !(emit(-y, x) && emit(-x, y)) {
				return
			}
			if quadrant&topLeft != 0 && !(emit(-y, -x) && emit(-x, -y)) {
				return
			}
		}
	}
}

// filledRoundedCorner fills the vertical spans of the left or right pair of
// corners, which are delta rows apart.
func filledRoundedCorner[C pixel.Color](dst Target[C], center image.Point, radius, side, delta int, c C) {
	x0, y0 := center.X, center.Y
	for p := range circle(radius) {
		x, y := p.X, p.Y
		if side&right != 0 {
			VerticalLine(dst, x0+x, y0-y, 2*y+1+delta, c)
			VerticalLine(dst, x0+y, y0-x, 2*x+1+delta, c)
		}
		if side&left != 0 {
			VerticalLine(dst, x0-x, y0-y, 2*y+1+delta, c)
			VerticalLine(dst, x0-y, y0-x, 2*x+1+delta, c)
		}
	}
}

// bresenham yields the points of the line from a to b.
func bresenham(a, b image.Point) iter.Seq[image.Point] {
	return func(yield func(image.Point) bool) {
		var (
			dx = abs(b.X - a.X)
			dy = -abs(b.Y - a.Y)
			sx = 1
			sy = 1
			e  = dx + dy
			p  = a
		)
		if a.X > b.X {
			sx = -1
		}
		if a.Y > b.Y {
			sy = -1
		}
		for {
			if !yield(p) || p == b {
				return
			}
			e2 := 2 * e
			if e2 >= dy {
				e += dy
				p.X += sx
			}
			if e2 <= dx {
				e += dx
				p.Y += sy
			}
		}
	}
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

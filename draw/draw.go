// Package draw has drawing primitives for packed framebuffers and double
// buffered displays.
package draw

import (
	"image"
	"iter"

	"golang.org/x/image/draw"

	"github.com/BeatGlow/oled/pixel"
)

// Target is a surface of colors of type C.
//
// It is implemented by *pixel.Framebuffer and *oled.Buffered.
type Target[C pixel.Color] interface {
	// Bounds of the target, drawing outside of it is clipped.
	Bounds() image.Rectangle

	// DrawIter sets individual pixels.
	DrawIter(iter.Seq[pixel.Pixel[C]])

	// FillSolid sets every pixel in the rectangle to one color.
	FillSolid(image.Rectangle, C)

	// FillContiguous sets the pixels in the rectangle, in row-major order, to
	// the colors from the sequence.
	FillContiguous(image.Rectangle, iter.Seq[C])
}

// Image is an alias for [image/draw.Image].
type Image = draw.Image

// Op is an alias for [image/draw.Op].
type Op = draw.Op

const (
	// Over specifies ``(src in mask) over dst''.
	Over = draw.Over

	// Src specifies ``src in mask''.
	Src = draw.Src
)

// Draw calls [DrawMask] with a nil mask.
func Draw(dst Image, r image.Rectangle, src image.Image, sp image.Point, op Op) {
	DrawMask(dst, r, src, sp, nil, image.Point{}, op)
}

// DrawMask aligns r.Min in dst with sp in src and mp in mask and then replaces the rectangle r
// in dst with the result of a Porter-Duff composition. A nil mask is treated as opaque.
func DrawMask(dst Image, r image.Rectangle, src image.Image, sp image.Point, mask image.Image, mp image.Point, op Op) {
	draw.DrawMask(dst, r, src, sp, mask, mp, op)
}

// Scale draws src scaled from sr into r of dst, using the nearest neighbour so
// hard pixel edges survive on low bit depth targets.
func Scale(dst Image, r image.Rectangle, src image.Image, sr image.Rectangle) {
	draw.NearestNeighbor.Scale(dst, r, src, sr, draw.Src, nil)
}

// Bitmap copies the area of src starting at sp into r of dst, converting every
// color with codec. Only a single bulk fill is issued to dst.
func Bitmap[C pixel.Color](dst Target[C], codec *pixel.Codec[C], r image.Rectangle, src image.Image, sp image.Point) {
	clipped := r.Intersect(dst.Bounds())
	if clipped.Empty() {
		return
	}
	sp = sp.Add(clipped.Min.Sub(r.Min))

	dst.FillContiguous(clipped, func(yield func(C) bool) {
		for y := 0; y < clipped.Dy(); y++ {
			for x := 0; x < clipped.Dx(); x++ {
				if !yield(codec.Convert(src.At(sp.X+x, sp.Y+y))) {
					return
				}
			}
		}
	})
}

// colored pairs every point with c.
func colored[C pixel.Color](points iter.Seq[image.Point], c C) iter.Seq[pixel.Pixel[C]] {
	return func(yield func(pixel.Pixel[C]) bool) {
		for p := range points {
			if !yield(pixel.Pixel[C]{Point: p, Color: c}) {
				return
			}
		}
	}
}

package draw

import (
	"image"

	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"

	"github.com/BeatGlow/oled/pixel"
)

// DefaultFace is a small bitmap font that needs no font file.
var DefaultFace font.Face = basicfont.Face7x13

// ParseFont parses a TrueType font and returns a face at the given size in
// points, rendered at 72 DPI so points equal pixels.
func ParseFont(data []byte, size float64) (font.Face, error) {
	f, err := truetype.Parse(data)
	if err != nil {
		return nil, err
	}
	return truetype.NewFace(f, &truetype.Options{
		Size:    size,
		DPI:     72,
		Hinting: font.HintingFull,
	}), nil
}

// TextBounds returns the pixels covered by s drawn with its baseline starting
// at dot.
func TextBounds(face font.Face, dot image.Point, s string) image.Rectangle {
	b, _ := font.BoundString(face, s)
	return image.Rect(
		b.Min.X.Floor(), b.Min.Y.Floor(),
		b.Max.X.Ceil(), b.Max.Y.Ceil(),
	).Add(dot)
}

// Text draws s with its baseline starting at dot. Glyph pixels with at least
// half coverage are set to c, there is no blending.
func Text[C pixel.Color](dst Target[C], face font.Face, dot image.Point, s string, c C) {
	r := TextBounds(face, dot, s).Intersect(dst.Bounds())
	if r.Empty() {
		return
	}

	mask := image.NewAlpha(r)
	d := &font.Drawer{
		Dst:  mask,
		Src:  image.Opaque,
		Face: face,
		Dot:  fixed.P(dot.X, dot.Y),
	}
	d.DrawString(s)

	dst.DrawIter(func(yield func(pixel.Pixel[C]) bool) {
		for y := r.Min.Y; y < r.Max.Y; y++ {
			for x := r.Min.X; x < r.Max.X; x++ {
				if mask.AlphaAt(x, y).A < 0x80 {
					continue
				}
				if !yield(pixel.Px(x, y, c)) {
					return
				}
			}
		}
	})
}

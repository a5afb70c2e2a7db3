package main

import (
	"context"
	"fmt"
	"image"
	"image/color"
	"iter"
	"os"
	"time"

	"golang.org/x/image/bmp"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gomono"

	"github.com/BeatGlow/oled"
	"github.com/BeatGlow/oled/draw"
	"github.com/BeatGlow/oled/pixel"
)

func loadFace() (font.Face, error) {
	switch fontFlag {
	case "":
		return draw.DefaultFace, nil
	case "gomono":
		return draw.ParseFont(gomono.TTF, fontSizeFlag)
	default:
		data, err := os.ReadFile(fontFlag)
		if err != nil {
			return nil, err
		}
		return draw.ParseFont(data, fontSizeFlag)
	}
}

// animate draws frames into a double buffer in front of sink until the frame
// count is reached or ctx is done.
func animate[C pixel.Color](ctx context.Context, codec *pixel.Codec[C], sink oled.Sink[C]) error {
	size := sink.Bounds().Size()
	n := codec.BufferSize(size.X, size.Y)
	b, err := oled.NewBuffered(codec, make([]byte, n), make([]byte, n), sink)
	if err != nil {
		return err
	}
	// Whatever the display showed before is unknown.
	b.Invalidate()

	face, err := loadFace()
	if err != nil {
		return err
	}

	ticker := time.NewTicker(intervalFlag)
	defer ticker.Stop()

	if verboseFlag {
		fmt.Println("hit control-c to stop...")
	}

	var total int
loop:
	for frame := 0; framesFlag <= 0 || frame < framesFlag; frame++ {
		drawFrame(b, codec, face, frame)

		changed, err := b.Flush()
		if err != nil {
			return err
		}
		total += changed
		if verboseFlag {
			fmt.Printf("frame %d: %d/%d pixels changed\n", frame, changed, size.X*size.Y)
		}

		select {
		case <-ctx.Done():
			break loop
		case <-ticker.C:
		}
	}

	if verboseFlag {
		fmt.Printf("sent %d pixels in total\n", total)
	}
	if snapshotFlag != "" {
		return writeSnapshot(snapshotFlag, b.Image())
	}
	return nil
}

func drawFrame[C pixel.Color](b *oled.Buffered[C], codec *pixel.Codec[C], face font.Face, frame int) {
	var (
		r     = b.Bounds()
		fg    = codec.Convert(color.White)
		bg    = codec.Convert(color.Black)
		inner = r.Inset(1)
	)
	b.Clear(bg)

	// Diagonal gradient inside a border.
	b.FillContiguous(inner, gradient(codec, inner, frame))
	draw.Rectangle(b, r, fg)

	// Bouncing rounded box.
	box := image.Rect(0, 0, r.Dx()/4, r.Dy()/4)
	if span := r.Dx() - box.Dx(); span > 0 {
		box = box.Add(image.Pt(bounce(frame*2, span), bounce(frame, r.Dy()-box.Dy())))
	}
	draw.RoundedBox(b, box, box.Dy()/3, bg)
	draw.RoundedRectangle(b, box, box.Dy()/3, fg)

	// Sweeping line through the center.
	c := r.Max.Div(2)
	x := bounce(frame*3, r.Dx())
	draw.Line(b, image.Pt(x, 0), image.Pt(r.Dx()-1-x, r.Dy()-1), fg)
	draw.HorizontalLine(b, 0, c.Y, r.Dx(), fg)

	// Frame counter.
	text := fmt.Sprintf("%d", frame)
	dot := image.Pt(2, r.Dy()-2)
	draw.Box(b, draw.TextBounds(face, dot, text).Inset(-1), bg)
	draw.Text(b, face, dot, text, fg)
}

func gradient[C pixel.Color](codec *pixel.Codec[C], r image.Rectangle, frame int) iter.Seq[C] {
	return func(yield func(C) bool) {
		for y := r.Min.Y; y < r.Max.Y; y++ {
			for x := r.Min.X; x < r.Max.X; x++ {
				v := uint8((x + y + frame) * 4)
				if !yield(codec.Convert(color.RGBA{R: v, G: v ^ 0x80, B: 0xff - v, A: 0xff})) {
					return
				}
			}
		}
	}
}

// bounce moves back and forth between 0 and span-1.
func bounce(v, span int) int {
	if span <= 1 {
		return 0
	}
	period := 2 * (span - 1)
	v %= period
	if v >= span {
		return period - v
	}
	return v
}

func writeSnapshot(name string, img image.Image) error {
	f, err := os.Create(name)
	if err != nil {
		return err
	}
	if err = bmp.Encode(f, img); err != nil {
		_ = f.Close()
		return err
	}
	if err = f.Close(); err != nil {
		return err
	}
	fmt.Printf("wrote snapshot to %s\n", name)
	return nil
}

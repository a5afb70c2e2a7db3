package oled

import (
	"errors"
	"image"
	"image/color"
	"math/rand"
	"slices"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/BeatGlow/oled/pixel"
)

type recordSink[C pixel.Color] struct {
	rect    image.Rectangle
	frames  [][]pixel.Pixel[C]
	flushes int
	drawErr error
	syncErr error
}

func (s *recordSink[C]) Bounds() image.Rectangle { return s.rect }

func (s *recordSink[C]) DrawPixels(pixels []pixel.Pixel[C]) error {
	if s.drawErr != nil {
		return s.drawErr
	}
	s.frames = append(s.frames, slices.Clone(pixels))
	return nil
}

func (s *recordSink[C]) Flush() error {
	s.flushes++
	return s.syncErr
}

func (s *recordSink[C]) last() []pixel.Pixel[C] {
	if len(s.frames) == 0 {
		return nil
	}
	return s.frames[len(s.frames)-1]
}

func newTestBuffered[C pixel.Color](t *testing.T, codec *pixel.Codec[C], w, h int) (*Buffered[C], *recordSink[C]) {
	t.Helper()
	sink := &recordSink[C]{rect: image.Rect(0, 0, w, h)}
	size := codec.BufferSize(w, h)
	b, err := NewBuffered(codec, make([]byte, size), make([]byte, size), sink)
	require.NoError(t, err)
	return b, sink
}

func TestNewBuffered(t *testing.T) {
	sink := &recordSink[pixel.Mono]{rect: image.Rect(0, 0, 16, 2)}

	_, err := NewBuffered(pixel.MonoCodec, make([]byte, 4), make([]byte, 4), sink)
	require.NoError(t, err)

	_, err = NewBuffered(pixel.MonoCodec, make([]byte, 3), make([]byte, 4), sink)
	assert.ErrorIs(t, err, pixel.ErrBufferSize)

	_, err = NewBuffered(pixel.MonoCodec, make([]byte, 4), make([]byte, 5), sink)
	assert.ErrorIs(t, err, pixel.ErrBufferSize)

	offset := &recordSink[pixel.Mono]{rect: image.Rect(8, 0, 24, 2)}
	_, err = NewBuffered(pixel.MonoCodec, make([]byte, 4), make([]byte, 4), offset)
	assert.ErrorIs(t, err, ErrSinkBounds)
}

func TestBufferedFlushSinglePixel(t *testing.T) {
	b, sink := newTestBuffered(t, pixel.GrayCodec, 4, 1)
	a := color.Gray{Y: 0xa5}

	b.SetPixel(2, 0, a)
	assert.Empty(t, sink.frames, "drawing must not reach the sink")

	n, err := b.Flush()
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	if diff := cmp.Diff([]pixel.Pixel[color.Gray]{pixel.Px(2, 0, a)}, sink.last()); diff != "" {
		t.Errorf("first flush mismatch (-want +got):\n%s", diff)
	}

	n, err = b.Flush()
	require.NoError(t, err)
	assert.Equal(t, 0, n)
	assert.Len(t, sink.frames, 2)
	assert.Empty(t, sink.last())
	assert.Equal(t, 2, sink.flushes)
}

func TestBufferedFlushDiff(t *testing.T) {
	t.Run("mono", func(it *testing.T) {
		testBufferedDiff(it, pixel.MonoCodec, 32, 8)
	})
	t.Run("gray2", func(it *testing.T) {
		testBufferedDiff(it, pixel.Gray2Codec, 12, 5)
	})
	t.Run("gray4", func(it *testing.T) {
		testBufferedDiff(it, pixel.Gray4Codec, 16, 16)
	})
	t.Run("rgb332", func(it *testing.T) {
		testBufferedDiff(it, pixel.RGB332Codec, 7, 9)
	})
}

func testBufferedDiff[C pixel.Color](t *testing.T, codec *pixel.Codec[C], w, h int) {
	t.Helper()

	b, sink := newTestBuffered(t, codec, w, h)
	rnd := rand.New(rand.NewSource(int64(w * h)))
	randomColor := func() C {
		return codec.Decode(uint8(rnd.Intn(1 << codec.Depth())))
	}

	// What the sink shows, rebuilt from the pixels it receives.
	shown := make(map[image.Point]C)
	zero := codec.Decode(0)
	shownAt := func(p image.Point) C {
		if c, ok := shown[p]; ok {
			return c
		}
		return zero
	}

	for round := 0; round < 5; round++ {
		for i := 0; i < w*h/3; i++ {
			b.SetPixel(rnd.Intn(w+4)-2, rnd.Intn(h+4)-2, randomColor())
		}
		if round%2 == 1 {
			b.FillSolid(image.Rect(rnd.Intn(w), rnd.Intn(h), w+1, h), randomColor())
		}

		var want []pixel.Pixel[C]
		for y := 0; y < h; y++ {
			for x := 0; x < w; x++ {
				if c := b.Pixel(x, y); c != shownAt(image.Pt(x, y)) {
					want = append(want, pixel.Px(x, y, c))
				}
			}
		}

		n, err := b.Flush()
		require.NoError(t, err)
		require.Equal(t, len(want), n)
		if diff := cmp.Diff(want, sink.last()); diff != "" && len(want) > 0 {
			t.Fatalf("round %d: changed pixels mismatch (-want +got):\n%s", round, diff)
		}

		for _, p := range sink.last() {
			shown[p.Point] = p.Color
		}
		require.Equal(t, b.current.Pix, b.reference.Pix, "reference must equal current after flush")

		n, err = b.Flush()
		require.NoError(t, err)
		require.Zero(t, n, "second flush must be empty")
	}
}

func TestBufferedInvalidate(t *testing.T) {
	b, sink := newTestBuffered(t, pixel.MonoCodec, 8, 2)
	b.SetPixel(3, 1, pixel.On)

	n, err := b.Flush()
	require.NoError(t, err)
	require.Equal(t, 1, n)

	b.Invalidate()
	n, err = b.Flush()
	require.NoError(t, err)
	assert.Equal(t, 16, n)
	assert.Len(t, sink.last(), 16)
	assert.Equal(t, pixel.Px(3, 1, pixel.On), sink.last()[11])

	n, err = b.Flush()
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestBufferedInvalidateResync(t *testing.T) {
	sink := &recordSink[pixel.Gray2]{rect: image.Rect(0, 0, 8, 2)}
	current := make([]byte, 4)
	reference := []byte{0xff, 0x1b, 0xe4, 0x55}
	b, err := NewBuffered(pixel.Gray2Codec, current, reference, sink)
	require.NoError(t, err)
	b.SetPixel(5, 0, pixel.Gray2{Y: 2})

	b.Invalidate()
	n, err := b.Flush()
	require.NoError(t, err)
	assert.Equal(t, 16, n)
	assert.Equal(t, current, reference, "reference plane must match what was sent")

	n, err = b.Flush()
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestBufferedFlushError(t *testing.T) {
	errBus := errors.New("bus error")

	t.Run("draw", func(it *testing.T) {
		b, sink := newTestBuffered(it, pixel.Gray4Codec, 4, 4)
		b.FillSolid(image.Rect(0, 0, 2, 2), pixel.Gray4{Y: 9})

		sink.drawErr = errBus
		_, err := b.Flush()
		require.ErrorIs(it, err, errBus)
		assert.Zero(it, sink.flushes)

		sink.drawErr = nil
		n, err := b.Flush()
		require.NoError(it, err)
		assert.Equal(it, 16, n, "failed flush must force a full resend")
	})

	t.Run("flush", func(it *testing.T) {
		b, sink := newTestBuffered(it, pixel.MonoCodec, 8, 1)
		b.SetPixel(0, 0, pixel.On)

		sink.syncErr = errBus
		_, err := b.Flush()
		require.ErrorIs(it, err, errBus)

		sink.syncErr = nil
		n, err := b.Flush()
		require.NoError(it, err)
		assert.Equal(it, 8, n)
	})
}

func TestBufferedDrawOps(t *testing.T) {
	b, sink := newTestBuffered(t, pixel.Gray2Codec, 4, 2)

	b.FillContiguous(image.Rect(1, 0, 3, 2), slices.Values([]pixel.Gray2{{Y: 1}, {Y: 2}, {Y: 3}}))
	b.Clear(pixel.Gray2{})
	b.DrawIter(slices.Values([]pixel.Pixel[pixel.Gray2]{
		pixel.Px(0, 0, pixel.Gray2{Y: 3}),
		pixel.Px(9, 9, pixel.Gray2{Y: 3}),
	}))
	assert.Empty(t, sink.frames)
	assert.Equal(t, image.Pt(4, 2), b.Size())
	assert.Equal(t, pixel.Gray2{Y: 3}, b.Image().At(0, 0))

	n, err := b.Flush()
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestNewSink(t *testing.T) {
	dst := pixel.NewVerticalLSB(8, 8)
	var flushed int
	s := NewSink[pixel.Mono](dst, func() error {
		flushed++
		return nil
	})
	assert.Equal(t, dst.Bounds(), s.Bounds())
	dst.Clean()

	require.NoError(t, s.DrawPixels([]pixel.Pixel[pixel.Mono]{
		pixel.Px(1, 1, pixel.On),
		pixel.Px(1, 1, pixel.On),
		pixel.Px(-1, 3, pixel.On),
		pixel.Px(8, 8, pixel.On),
	}))
	require.NoError(t, s.Flush())
	assert.Equal(t, 1, flushed)
	assert.Equal(t, pixel.On, dst.At(1, 1))
	assert.Equal(t, image.Rect(1, 1, 2, 2), dst.Dirty())

	require.NoError(t, NewSink[pixel.Mono](dst, nil).Flush())
}

package framebuffer

import (
	"encoding/binary"
	"image"
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/BeatGlow/oled/pixel"
)

var (
	testRGB565 = linuxVarScreenInfo{
		Xres: 4, Yres: 2, BitsPerPixel: 16,
		Red:   linuxBitField{Offset: 11, Length: 5},
		Green: linuxBitField{Offset: 5, Length: 6},
		Blue:  linuxBitField{Offset: 0, Length: 5},
	}
	testXRGB8888 = linuxVarScreenInfo{
		Xres: 4, Yres: 2, BitsPerPixel: 32,
		Red:   linuxBitField{Offset: 16, Length: 8},
		Green: linuxBitField{Offset: 8, Length: 8},
		Blue:  linuxBitField{Offset: 0, Length: 8},
	}
)

func TestParsePixelFormat(t *testing.T) {
	tests := []struct {
		Name string
		Info linuxVarScreenInfo
		Want linuxPixelFormat
	}{
		{"rgb565", testRGB565, linuxRGB565},
		{"xrgb8888", testXRGB8888, linuxXRGB8888},
		{"bgr565", linuxVarScreenInfo{
			BitsPerPixel: 16,
			Red:          linuxBitField{Offset: 0, Length: 5},
			Green:        linuxBitField{Offset: 5, Length: 6},
			Blue:         linuxBitField{Offset: 11, Length: 5},
		}, linuxUnknownPixelFormat},
		{"8bpp", linuxVarScreenInfo{BitsPerPixel: 8}, linuxUnknownPixelFormat},
	}
	for _, test := range tests {
		t.Run(test.Name, func(it *testing.T) {
			assert.Equal(it, test.Want, linuxParsePixelFormat(&test.Info))
		})
	}
}

func TestNewImageRGB565(t *testing.T) {
	// Rows are padded to 10 bytes.
	mem := make([]byte, 20)
	img, err := newImage(mem, &linuxFixScreenInfo{LineLength: 10}, &testRGB565)
	require.NoError(t, err)
	assert.Equal(t, image.Rect(0, 0, 4, 2), img.Bounds())
	assert.IsType(t, &pixel.RGB565Image{}, img)

	img.Set(1, 1, color.RGBA{R: 0xff, A: 0xff})
	assert.Equal(t, uint16(0xf800), binary.LittleEndian.Uint16(mem[12:]))
	assert.Equal(t, image.Rect(0, 0, 4, 2), img.Dirty())

	img.Clean()
	img.Set(3, 0, color.White)
	assert.Equal(t, image.Rect(3, 0, 4, 1), img.Dirty())
}

func TestNewImageXRGB8888(t *testing.T) {
	mem := make([]byte, 4*4*3)
	info := testXRGB8888
	info.Yoffset = 1
	img, err := newImage(mem, &linuxFixScreenInfo{LineLength: 16}, &info)
	require.NoError(t, err)

	img.Set(2, 0, color.RGBA{R: 0x11, G: 0x22, B: 0x33, A: 0xff})
	assert.Equal(t, []byte{0x33, 0x22, 0x11, 0xff}, mem[16+8:16+12])
	assert.Equal(t, color.RGBA{R: 0x11, G: 0x22, B: 0x33, A: 0xff}, img.At(2, 0))
	assert.Equal(t, color.Transparent, img.At(4, 0))

	img.Clean()
	img.Fill(color.White)
	assert.Equal(t, img.Bounds(), img.Dirty())
	assert.Equal(t, []byte{0xff, 0xff, 0xff, 0xff}, mem[16:20])
	assert.Zero(t, mem[0], "memory above the visible area is untouched")
}

func TestNewImageErrors(t *testing.T) {
	_, err := newImage(make([]byte, 8), &linuxFixScreenInfo{LineLength: 8}, &testRGB565)
	assert.Error(t, err, "memory too small")

	_, err = newImage(make([]byte, 64), &linuxFixScreenInfo{LineLength: 8}, &linuxVarScreenInfo{Xres: 4, Yres: 2, BitsPerPixel: 8})
	assert.ErrorIs(t, err, ErrColorModel)
}
